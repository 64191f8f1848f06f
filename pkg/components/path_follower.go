package components

// PathFollowerComponent 记录敌人在路径上的进度
// 路径本身由 PathFollowSystem 持有（整关共享一条路径）
type PathFollowerComponent struct {
	// WaypointIndex 当前正在前往的路径点索引
	WaypointIndex int

	// DistanceTravelled 累计移动距离，通过 sim.EnemyView 对外提供
	DistanceTravelled float64
}
