package components

// WaveState 波次调度器状态
type WaveState int

const (
	// WaveStateIdle 尚未开始，或关卡没有任何波次
	WaveStateIdle WaveState = iota
	// WaveStateCountdown 波次开始前的倒计时
	WaveStateCountdown
	// WaveStateSpawning 正在按分组依次生成敌人
	WaveStateSpawning
	// WaveStateWaitingForClear 生成完毕，等待场上敌人全部移除
	WaveStateWaitingForClear
	// WaveStateAllWavesCompleted 所有波次已完成
	WaveStateAllWavesCompleted
	// WaveStateStopped 已被外部停止（游戏结束），不再有任何行为
	WaveStateStopped
)

// String 返回状态名称（日志使用）
func (s WaveState) String() string {
	switch s {
	case WaveStateIdle:
		return "Idle"
	case WaveStateCountdown:
		return "Countdown"
	case WaveStateSpawning:
		return "Spawning"
	case WaveStateWaitingForClear:
		return "WaitingForClear"
	case WaveStateAllWavesCompleted:
		return "AllWavesCompleted"
	case WaveStateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// WaveScheduleComponent 波次调度状态
// 只存储数据，由 WaveSchedulerSystem 推进
//
// 所有延迟都以倒计时字段表示，每帧按 deltaTime 递减；
// 递减到 0 以下的部分会结转到下一次计时（一个大步长内可能连续生成多个敌人）。
type WaveScheduleComponent struct {
	State WaveState

	// CurrentWaveIndex 当前（或即将开始的）波次索引（0-based）
	CurrentWaveIndex int

	// TotalWaves 总波次数
	TotalWaves int

	// Countdown 波次开始前剩余的倒计时（秒）
	Countdown float64

	// SpawnTimer 距离下一次生成的时间（秒）
	SpawnTimer float64

	// GroupIndex 当前分组索引
	GroupIndex int

	// SpawnedInGroup 当前分组已生成的数量
	SpawnedInGroup int

	// FinishedSpawning 本波是否已生成完毕
	FinishedSpawning bool

	// EnemiesRemainingToSpawn 本波尚未生成的敌人数
	EnemiesRemainingToSpawn int

	// EnemiesRemainingAlive 已生成且尚未移除的敌人数
	EnemiesRemainingAlive int

	// CompletedWaves 已完成的波次数
	CompletedWaves int
}
