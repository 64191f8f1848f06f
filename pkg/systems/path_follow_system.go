package systems

import (
	"log"

	"github.com/decker502/tdsim/pkg/entities"
	"github.com/decker502/tdsim/pkg/types"
)

// PathFollowSystem 推动敌人沿路径前进
//
// 每帧朝当前路径点移动 speed*deltaTime，不会越过路径点；
// 与路径点的距离不超过 epsilon 时前往下一个路径点。
// 越过最后一个路径点的敌人被标记 ReachedEnd，由 LifecycleSystem 在本帧伤害结算之后裁决。
type PathFollowSystem struct {
	world   *entities.World
	path    []types.Vec2
	epsilon float64
	verbose bool
}

// NewPathFollowSystem 创建路径跟随系统
// 少于两个路径点时敌人不会移动
func NewPathFollowSystem(w *entities.World, path []types.Vec2, epsilon float64) *PathFollowSystem {
	if len(path) < 2 {
		log.Printf("[PathFollowSystem] Path has %d waypoints, enemies will stay put", len(path))
	}
	return &PathFollowSystem{
		world:   w,
		path:    path,
		epsilon: epsilon,
	}
}

// SetVerbose 设置是否输出详细日志
func (s *PathFollowSystem) SetVerbose(verbose bool) {
	s.verbose = verbose
}

// Update 移动所有在场的敌人
func (s *PathFollowSystem) Update(deltaTime float64) {
	if len(s.path) < 2 {
		return
	}

	for _, id := range s.world.Enemies.IDs() {
		enemy, _ := s.world.Enemies.Get(id)
		if !enemy.Active || enemy.ReachedEnd || enemy.Resolved {
			continue
		}
		follower, ok := s.world.Paths.Get(id)
		if !ok {
			continue
		}
		pos, ok := s.world.Positions.Get(id)
		if !ok {
			continue
		}

		if follower.WaypointIndex >= len(s.path) {
			enemy.ReachedEnd = true
			continue
		}

		target := s.path[follower.WaypointIndex]
		next := pos.Pos.MoveTowards(target, enemy.CurrentSpeed()*deltaTime)
		follower.DistanceTravelled += pos.Pos.DistanceTo(next)
		pos.Pos = next

		if pos.Pos.DistanceTo(target) > s.epsilon {
			continue
		}
		follower.WaypointIndex++
		if follower.WaypointIndex >= len(s.path) {
			enemy.ReachedEnd = true
			log.Printf("[PathFollowSystem] Enemy %d (%s) reached the end of the path", id, enemy.EnemyType)
		} else if s.verbose {
			log.Printf("[PathFollowSystem] Enemy %d heading to waypoint %d", id, follower.WaypointIndex)
		}
	}
}

// Path 返回路径点
func (s *PathFollowSystem) Path() []types.Vec2 {
	return s.path
}
