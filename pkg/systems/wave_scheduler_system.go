package systems

import (
	"log"

	"github.com/decker502/tdsim/pkg/components"
	"github.com/decker502/tdsim/pkg/config"
	"github.com/decker502/tdsim/pkg/entities"
	"github.com/decker502/tdsim/pkg/event"
	"github.com/decker502/tdsim/pkg/utils"
)

// WaveSchedulerSystem 波次调度系统
//
// 状态机：Idle → Countdown → Spawning → WaitingForClear → (Countdown | AllWavesCompleted)，
// 外部调用 Stop 后进入 Stopped，不再有任何行为。
//
// 职责：
//   - 倒计时结束时开始新一波，并在同一帧生成第一个敌人
//   - 按分组声明顺序生成敌人：组内间隔 spawnInterval，相邻非空分组之间间隔 interGroupDelay
//   - 记录待生成与存活的敌人数
//   - 敌人全部移除后完成本波（由 LifecycleSystem 调用 CompleteWaveIfCleared）
//
// 架构说明：
//   - 延迟全部由 WaveScheduleComponent 中的倒计时字段表示，超出部分结转
//   - 不直接修改经济状态，波次奖励与胜负由 LifecycleSystem 处理
type WaveSchedulerSystem struct {
	world      *entities.World
	level      *config.LevelConfig
	enemies    *config.EnemyTableConfig
	dispatcher *event.Dispatcher

	schedule components.WaveScheduleComponent

	// verbose 是否输出详细日志
	verbose bool
}

// NewWaveSchedulerSystem 创建波次调度系统
//
// 参数：
//   - w: 实体注册表
//   - level: 关卡配置（路径与波次）
//   - enemies: 敌人属性表
//   - dispatcher: 事件分发器
func NewWaveSchedulerSystem(w *entities.World, level *config.LevelConfig, enemies *config.EnemyTableConfig, dispatcher *event.Dispatcher) *WaveSchedulerSystem {
	totalWaves := 0
	if level != nil {
		totalWaves = len(level.Waves)
	}
	return &WaveSchedulerSystem{
		world:      w,
		level:      level,
		enemies:    enemies,
		dispatcher: dispatcher,
		schedule: components.WaveScheduleComponent{
			State:      components.WaveStateIdle,
			TotalWaves: totalWaves,
		},
	}
}

// SetVerbose 设置是否输出详细日志
func (s *WaveSchedulerSystem) SetVerbose(verbose bool) {
	s.verbose = verbose
}

// Start 开始第一波的倒计时
// 没有任何波次时保持 Idle，永远不会生成敌人
func (s *WaveSchedulerSystem) Start() {
	if s.schedule.State != components.WaveStateIdle {
		return
	}
	if s.schedule.TotalWaves == 0 {
		log.Printf("[WaveSchedulerSystem] No waves configured, scheduler stays idle")
		return
	}
	s.enterCountdown(0)
}

// Update 推进倒计时与敌人生成
func (s *WaveSchedulerSystem) Update(deltaTime float64) {
	switch s.schedule.State {
	case components.WaveStateCountdown:
		s.schedule.Countdown -= deltaTime
		if s.schedule.Countdown > utils.FloatEpsilon {
			return
		}
		// 倒计时超出的部分计入生成计时
		overshoot := -s.schedule.Countdown
		if overshoot < 0 {
			overshoot = 0
		}
		s.beginWave()
		s.advanceSpawning(overshoot)

	case components.WaveStateSpawning:
		s.advanceSpawning(deltaTime)
	}
}

// enterCountdown 进入第 index 波之前的倒计时
func (s *WaveSchedulerSystem) enterCountdown(index int) {
	s.schedule.State = components.WaveStateCountdown
	s.schedule.CurrentWaveIndex = index
	s.schedule.Countdown = s.level.WaveDelay(index)
	s.schedule.FinishedSpawning = false

	log.Printf("[WaveSchedulerSystem] Wave %d/%d countdown: %.2fs", index+1, s.schedule.TotalWaves, s.schedule.Countdown)
}

// beginWave 倒计时结束，开始生成当前波次
func (s *WaveSchedulerSystem) beginWave() {
	wave := s.level.Waves[s.schedule.CurrentWaveIndex]

	s.schedule.State = components.WaveStateSpawning
	s.schedule.Countdown = 0
	s.schedule.SpawnTimer = 0
	s.schedule.GroupIndex = 0
	s.schedule.SpawnedInGroup = 0
	s.schedule.FinishedSpawning = false
	s.schedule.EnemiesRemainingToSpawn = wave.TotalEnemies()

	s.dispatcher.Publish(event.Event{
		Type:      event.WaveStarted,
		WaveIndex: s.schedule.CurrentWaveIndex,
		Amount:    s.schedule.EnemiesRemainingToSpawn,
	})
	log.Printf("[WaveSchedulerSystem] Wave %d started: %d enemies", s.schedule.CurrentWaveIndex+1, s.schedule.EnemiesRemainingToSpawn)

	if s.schedule.EnemiesRemainingToSpawn == 0 {
		s.finishSpawning()
	}
}

// advanceSpawning 递减生成计时，到期时生成敌人
// 一个较大的时间步长内可能连续生成多个敌人
func (s *WaveSchedulerSystem) advanceSpawning(deltaTime float64) {
	if s.schedule.State != components.WaveStateSpawning {
		return
	}
	wave := s.level.Waves[s.schedule.CurrentWaveIndex]

	s.schedule.SpawnTimer -= deltaTime
	for s.schedule.State == components.WaveStateSpawning && s.schedule.SpawnTimer <= utils.FloatEpsilon {
		s.spawnNext(wave)

		if s.schedule.EnemiesRemainingToSpawn == 0 {
			s.finishSpawning()
			return
		}

		// 当前分组还有剩余用组内间隔，否则用分组间隔
		if s.schedule.SpawnedInGroup < wave.Groups[s.schedule.GroupIndex].Count {
			s.schedule.SpawnTimer += wave.SpawnInterval
		} else {
			s.schedule.SpawnTimer += wave.InterGroupDelay
		}
	}
}

// spawnNext 生成当前分组的下一个敌人，跳过空分组
func (s *WaveSchedulerSystem) spawnNext(wave config.WaveConfig) {
	for s.schedule.GroupIndex < len(wave.Groups) && s.schedule.SpawnedInGroup >= wave.Groups[s.schedule.GroupIndex].Count {
		s.schedule.GroupIndex++
		s.schedule.SpawnedInGroup = 0
	}
	if s.schedule.GroupIndex >= len(wave.Groups) {
		// 计数与分组不一致时直接结束生成
		s.schedule.EnemiesRemainingToSpawn = 0
		return
	}

	group := wave.Groups[s.schedule.GroupIndex]
	s.schedule.SpawnedInGroup++
	s.schedule.EnemiesRemainingToSpawn--

	stats, ok := s.enemies.GetEnemyStats(group.Enemy)
	if !ok {
		log.Printf("[WaveSchedulerSystem] ERROR: unknown enemy type %q in wave %d, skipping spawn", group.Enemy, s.schedule.CurrentWaveIndex+1)
		return
	}
	id, err := entities.NewEnemyEntity(s.world, group.Enemy, stats, s.level.Path, s.schedule.CurrentWaveIndex)
	if err != nil {
		log.Printf("[WaveSchedulerSystem] ERROR: failed to spawn %s: %v", group.Enemy, err)
		return
	}
	s.schedule.EnemiesRemainingAlive++

	s.dispatcher.Publish(event.Event{
		Type:      event.EnemySpawned,
		Entity:    id,
		Kind:      group.Enemy,
		WaveIndex: s.schedule.CurrentWaveIndex,
	})
	if s.verbose {
		log.Printf("[WaveSchedulerSystem] Spawned %s (%d left to spawn)", group.Enemy, s.schedule.EnemiesRemainingToSpawn)
	}
}

// finishSpawning 本波生成完毕，等待清场
func (s *WaveSchedulerSystem) finishSpawning() {
	s.schedule.FinishedSpawning = true
	s.schedule.SpawnTimer = 0
	s.schedule.State = components.WaveStateWaitingForClear
	log.Printf("[WaveSchedulerSystem] Wave %d finished spawning", s.schedule.CurrentWaveIndex+1)
}

// OnEnemyRemoved 一个已生成的敌人被移除（死亡或漏怪）
func (s *WaveSchedulerSystem) OnEnemyRemoved() {
	if s.schedule.EnemiesRemainingAlive > 0 {
		s.schedule.EnemiesRemainingAlive--
	}
}

// CompleteWaveIfCleared 生成完毕且敌人全部移除时完成当前波次
//
// 返回：
//   - waveIndex: 完成的波次索引
//   - final: 是否为最后一波（此时进入 AllWavesCompleted）
//   - completed: 本次调用是否完成了一个波次
func (s *WaveSchedulerSystem) CompleteWaveIfCleared() (waveIndex int, final bool, completed bool) {
	if s.schedule.State != components.WaveStateWaitingForClear || s.schedule.EnemiesRemainingAlive > 0 {
		return -1, false, false
	}

	waveIndex = s.schedule.CurrentWaveIndex
	s.schedule.CompletedWaves++
	log.Printf("[WaveSchedulerSystem] Wave %d/%d completed", waveIndex+1, s.schedule.TotalWaves)

	if waveIndex+1 >= s.schedule.TotalWaves {
		s.schedule.State = components.WaveStateAllWavesCompleted
		log.Printf("[WaveSchedulerSystem] All waves completed")
		return waveIndex, true, true
	}

	s.enterCountdown(waveIndex + 1)
	return waveIndex, false, true
}

// CallNextWave 跳过剩余倒计时，下一帧开始生成
// 只在倒计时状态下有效
func (s *WaveSchedulerSystem) CallNextWave() bool {
	if s.schedule.State != components.WaveStateCountdown {
		return false
	}
	s.schedule.Countdown = 0
	log.Printf("[WaveSchedulerSystem] Wave %d called early", s.schedule.CurrentWaveIndex+1)
	return true
}

// Stop 停止调度：丢弃剩余的生成计划并清零所有计时
func (s *WaveSchedulerSystem) Stop() {
	if s.schedule.State == components.WaveStateStopped {
		return
	}
	s.schedule.State = components.WaveStateStopped
	s.schedule.Countdown = 0
	s.schedule.SpawnTimer = 0
	s.schedule.EnemiesRemainingToSpawn = 0
	s.schedule.EnemiesRemainingAlive = 0
	log.Printf("[WaveSchedulerSystem] Stopped")
}

// State 返回当前状态
func (s *WaveSchedulerSystem) State() components.WaveState {
	return s.schedule.State
}

// Schedule 返回调度状态的副本
func (s *WaveSchedulerSystem) Schedule() components.WaveScheduleComponent {
	return s.schedule
}

// CurrentWaveIndex 返回当前波次索引（0-based）
func (s *WaveSchedulerSystem) CurrentWaveIndex() int {
	return s.schedule.CurrentWaveIndex
}

// TotalWaves 返回总波次数
func (s *WaveSchedulerSystem) TotalWaves() int {
	return s.schedule.TotalWaves
}

// EnemiesRemaining 返回剩余敌人数（存活 + 待生成）
func (s *WaveSchedulerSystem) EnemiesRemaining() int {
	return s.schedule.EnemiesRemainingAlive + s.schedule.EnemiesRemainingToSpawn
}
