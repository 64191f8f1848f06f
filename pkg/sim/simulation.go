// Package sim 是塔防模拟核心的驱动器
//
// Simulation 持有一局游戏的全部状态（实体注册表、经济、事件分发器与各个系统），
// 按固定顺序推进每一帧，并提供建造、升级、出售等玩家操作。
// 所有方法都只能在驱动模拟的同一个 goroutine 中调用；Snapshot 返回的值可以交给其他 goroutine。
package sim

import (
	"fmt"
	"log"
	"math"

	"github.com/decker502/tdsim/pkg/components"
	"github.com/decker502/tdsim/pkg/config"
	"github.com/decker502/tdsim/pkg/ecs"
	"github.com/decker502/tdsim/pkg/entities"
	"github.com/decker502/tdsim/pkg/event"
	"github.com/decker502/tdsim/pkg/game"
	"github.com/decker502/tdsim/pkg/systems"
	"github.com/decker502/tdsim/pkg/types"
)

// Options 创建模拟时的可选参数
type Options struct {
	// Placement 建造位置规则
	// 为 nil 时：关卡配置了 grid 则使用 game.BuildGrid，否则任意位置都可建造
	Placement PlacementValidator

	// Verbose 是否输出每帧的详细日志
	Verbose bool
}

// Simulation 一局塔防模拟
//
// 每帧执行顺序：
//  1. 波次调度（倒计时、生成敌人）
//  2. 沿路径移动，标记到达终点的敌人
//  3. 减速效果计时
//  4. 索敌
//  5. 弹道飞行与命中
//  6. 防御塔开火
//  7. 裁决死亡/漏怪，结算经济与胜负
//  8. 失败时停止并清场
//  9. 回收被标记删除的实体，分发本帧事件
type Simulation struct {
	level   *config.LevelConfig
	towers  *config.TowerTableConfig
	enemies *config.EnemyTableConfig

	world      *entities.World
	economy    *game.Economy
	dispatcher *event.Dispatcher
	placement  PlacementValidator

	scheduler  *systems.WaveSchedulerSystem
	pathFollow *systems.PathFollowSystem
	status     *systems.StatusEffectSystem
	targeting  *systems.TargetingSystem
	projectile *systems.ProjectileSystem
	combat     *systems.CombatSystem
	lifecycle  *systems.LifecycleSystem

	time      float64
	ticks     int
	timeScale float64
	paused    bool
	started   bool
	cleared   bool

	enemiesKilled int
	enemiesLeaked int
	towersBuilt   int
}

// New 创建模拟
//
// 参数：
//   - level: 关卡配置（应通过 config.LoadLevelConfig/ParseLevelConfig 得到，已填充默认值）
//   - towers: 防御塔属性表
//   - enemies: 敌人属性表
//   - opts: 可选参数
//
// 返回：
//   - *Simulation: 尚未开始的模拟，第一次 Tick 或调用 Start 后开始第一波倒计时
//   - error: 配置缺失或建造网格无效时返回错误
func New(level *config.LevelConfig, towers *config.TowerTableConfig, enemies *config.EnemyTableConfig, opts Options) (*Simulation, error) {
	if level == nil {
		return nil, fmt.Errorf("level config cannot be nil")
	}
	if towers == nil {
		return nil, fmt.Errorf("tower table cannot be nil")
	}
	if enemies == nil {
		return nil, fmt.Errorf("enemy table cannot be nil")
	}

	// 使用副本，模拟参数缺省值不回写到调用方的配置
	lvl := *level
	lvl.Simulation.ApplyDefaults()

	if err := lvl.ValidateAgainst(enemies); err != nil {
		// 未知敌人类型在生成时跳过，不阻止模拟运行
		log.Printf("[Simulation] Warning: %v", err)
	}

	placement := opts.Placement
	if placement == nil {
		if lvl.Grid != nil {
			grid, err := game.NewBuildGrid(lvl.Grid, lvl.Path)
			if err != nil {
				return nil, fmt.Errorf("failed to build grid for level %s: %w", lvl.ID, err)
			}
			placement = grid
		} else {
			placement = openField{}
		}
	}

	w := entities.NewWorld()
	dispatcher := event.NewDispatcher()
	economy := game.NewEconomy(lvl.InitialGold, lvl.Lives, lvl.WaveBonus)

	s := &Simulation{
		level:      &lvl,
		towers:     towers,
		enemies:    enemies,
		world:      w,
		economy:    economy,
		dispatcher: dispatcher,
		placement:  placement,
		timeScale:  1,
	}

	s.scheduler = systems.NewWaveSchedulerSystem(w, s.level, enemies, dispatcher)
	s.pathFollow = systems.NewPathFollowSystem(w, lvl.Path, lvl.Simulation.WaypointEpsilon)
	s.status = systems.NewStatusEffectSystem(w)
	s.targeting = systems.NewTargetingSystem(w, lvl.Simulation.RetargetInterval)
	s.projectile = systems.NewProjectileSystem(w)
	s.combat = systems.NewCombatSystem(w, s.targeting, lvl.Simulation.ProjectileMaxLifetime)
	s.lifecycle = systems.NewLifecycleSystem(w, economy, s.scheduler, dispatcher)

	s.SetVerbose(opts.Verbose)

	// 统计
	dispatcher.Subscribe(event.EnemyDied, func(event.Event) { s.enemiesKilled++ })
	dispatcher.Subscribe(event.EnemyLeaked, func(event.Event) { s.enemiesLeaked++ })

	log.Printf("[Simulation] Created level %s (%s): %d waves, %d gold, %d lives",
		lvl.ID, lvl.Name, len(lvl.Waves), lvl.InitialGold, lvl.Lives)

	return s, nil
}

// SetVerbose 设置所有系统是否输出详细日志
func (s *Simulation) SetVerbose(verbose bool) {
	s.scheduler.SetVerbose(verbose)
	s.pathFollow.SetVerbose(verbose)
	s.status.SetVerbose(verbose)
	s.targeting.SetVerbose(verbose)
	s.projectile.SetVerbose(verbose)
	s.combat.SetVerbose(verbose)
}

// Start 开始第一波倒计时，重复调用无效
func (s *Simulation) Start() {
	if s.started {
		return
	}
	s.started = true
	s.scheduler.Start()
	s.dispatcher.Flush()
}

// Tick 推进一帧
//
// deltaTime 会乘以时间倍率后原样推进，不做截断；负数、NaN 视为 0。
// 暂停或游戏结束后不做任何事。需要限制卡顿帧时用 Stepper 驱动。
func (s *Simulation) Tick(deltaTime float64) {
	if !s.started {
		s.Start()
	}
	if s.paused || s.economy.IsEnded() {
		return
	}

	dt := deltaTime * s.timeScale
	if math.IsNaN(dt) || dt < 0 {
		dt = 0
	}

	s.time += dt
	s.ticks++
	s.dispatcher.SetTime(s.time)

	s.scheduler.Update(dt)
	s.pathFollow.Update(dt)
	s.status.Update(dt)
	s.targeting.Update(dt)
	s.projectile.Update(dt)
	s.combat.Update(dt)
	s.lifecycle.Update()

	if s.economy.IsGameOver() {
		s.StopAndClear()
	}

	s.world.EM.RemoveMarkedEntities()
	s.dispatcher.Flush()
}

// StopAndClear 停止波次调度并立即清场
//
// 所有敌人与飞行中的弹道被移除，剩余的生成计划被丢弃；防御塔保留，
// 但目标与冷却被重置。失败时由 Tick 自动调用，也可以由外部直接调用。
func (s *Simulation) StopAndClear() {
	s.scheduler.Stop()

	for _, id := range s.world.Enemies.IDs() {
		s.world.EM.DestroyEntity(id)
	}
	for _, id := range s.world.Projectiles.IDs() {
		s.world.EM.DestroyEntity(id)
	}
	s.world.EM.RemoveMarkedEntities()

	s.world.Towers.Each(func(id ecs.EntityID, t *components.TowerComponent) bool {
		t.CooldownRemaining = 0
		if tc, ok := s.world.Targets.Get(id); ok {
			tc.Target = ecs.InvalidEntity
			tc.RetargetTimer = 0
		}
		return true
	})

	if !s.cleared {
		s.cleared = true
		log.Printf("[Simulation] Stopped and cleared at t=%.2fs", s.time)
	}
}

// PlaceTower 在 pos 处建造 towerType 类型的防御塔
//
// 返回：
//   - ecs.EntityID: 新防御塔的ID
//   - error: ErrGameEnded / ErrUnknownTowerType / ErrInvalidPosition / ErrInsufficientGold
func (s *Simulation) PlaceTower(pos types.Vec2, towerType string) (ecs.EntityID, error) {
	if s.economy.IsEnded() {
		return ecs.InvalidEntity, ErrGameEnded
	}
	stats, ok := s.towers.GetTowerStats(towerType)
	if !ok {
		return ecs.InvalidEntity, fmt.Errorf("%w: %q", ErrUnknownTowerType, towerType)
	}
	if !s.placement.IsValidPlacement(pos) {
		log.Printf("[Simulation] Placement of %s rejected at (%.2f, %.2f)", towerType, pos.X, pos.Y)
		return ecs.InvalidEntity, ErrInvalidPosition
	}
	if s.economy.Gold() < stats.Cost {
		log.Printf("[Simulation] Placement of %s rejected: need %d gold, have %d", towerType, stats.Cost, s.economy.Gold())
		return ecs.InvalidEntity, ErrInsufficientGold
	}

	id, err := entities.NewTowerEntity(s.world, towerType, stats, pos)
	if err != nil {
		return ecs.InvalidEntity, fmt.Errorf("failed to create tower %s: %w", towerType, err)
	}
	if tracker, ok := s.placement.(placementTracker); ok {
		if err := tracker.OccupyAt(pos, id); err != nil {
			s.world.EM.DestroyEntity(id)
			s.world.EM.RemoveMarkedEntities()
			return ecs.InvalidEntity, fmt.Errorf("%w: %v", ErrInvalidPosition, err)
		}
	}
	s.economy.SpendGold(stats.Cost)
	s.towersBuilt++

	s.publishNow(event.Event{Type: event.TowerPlaced, Entity: id, Kind: towerType, WaveIndex: -1, Amount: stats.Cost})
	log.Printf("[Simulation] Placed %s (ID: %d) at (%.2f, %.2f) for %d gold", towerType, id, pos.X, pos.Y, stats.Cost)
	return id, nil
}

// UpgradeTower 升级防御塔
//
// 每次升级各属性倍率只应用一次，下一次升级费用乘以 costMultiplier。
// 返回 ErrGameEnded / ErrUnknownTower / ErrMaxLevelReached / ErrInsufficientGold
func (s *Simulation) UpgradeTower(id ecs.EntityID) error {
	if s.economy.IsEnded() {
		return ErrGameEnded
	}
	tower, ok := s.liveTower(id)
	if !ok {
		return ErrUnknownTower
	}
	if !tower.CanUpgrade() {
		return ErrMaxLevelReached
	}
	cost := tower.UpgradeCost
	if !s.economy.SpendGold(cost) {
		log.Printf("[Simulation] Upgrade of tower %d rejected: need %d gold, have %d", id, cost, s.economy.Gold())
		return ErrInsufficientGold
	}

	upgrade := config.UpgradeStats{
		DamageMultiplier:   config.DefaultUpgradeDamageMultiplier,
		RangeMultiplier:    config.DefaultUpgradeRangeMultiplier,
		FireRateMultiplier: config.DefaultUpgradeFireRateMultiplier,
		CostMultiplier:     config.DefaultUpgradeCostMultiplier,
	}
	if stats, ok := s.towers.GetTowerStats(tower.TowerType); ok {
		upgrade = stats.Upgrade
	}

	tower.Damage *= upgrade.DamageMultiplier
	tower.Range *= upgrade.RangeMultiplier
	tower.FireRate *= upgrade.FireRateMultiplier
	tower.UpgradeLevel++
	tower.Invested += cost
	tower.UpgradeCost = int(math.Round(float64(cost) * upgrade.CostMultiplier))

	s.publishNow(event.Event{Type: event.TowerUpgraded, Entity: id, Kind: tower.TowerType, WaveIndex: -1, Amount: cost})
	log.Printf("[Simulation] Upgraded tower %d to level %d/%d for %d gold", id, tower.UpgradeLevel, tower.MaxUpgradeLevel, cost)
	return nil
}

// SellTower 出售防御塔，按 sellRefundRatio 返还累计投入的金币
// 已发射的弹道继续飞行
func (s *Simulation) SellTower(id ecs.EntityID) (int, error) {
	if s.economy.IsEnded() {
		return 0, ErrGameEnded
	}
	tower, ok := s.liveTower(id)
	if !ok {
		return 0, ErrUnknownTower
	}

	refund := int(math.Floor(float64(tower.Invested) * s.level.SellRefundRatio))
	towerType := tower.TowerType

	if pos, ok := s.world.Positions.Get(id); ok {
		if tracker, ok := s.placement.(placementTracker); ok {
			tracker.ReleaseAt(pos.Pos)
		}
	}
	s.world.EM.DestroyEntity(id)
	s.world.EM.RemoveMarkedEntities()
	s.economy.AddGold(refund)

	s.publishNow(event.Event{Type: event.TowerSold, Entity: id, Kind: towerType, WaveIndex: -1, Amount: refund})
	log.Printf("[Simulation] Sold tower %d (%s) for %d gold", id, towerType, refund)
	return refund, nil
}

// CallNextWave 跳过当前倒计时，下一帧开始生成下一波
func (s *Simulation) CallNextWave() bool {
	if s.economy.IsEnded() {
		return false
	}
	return s.scheduler.CallNextWave()
}

// SpendGold 扣除金币，余额不足或游戏已结束时返回 false 且不做修改
func (s *Simulation) SpendGold(amount int) bool {
	return s.economy.SpendGold(amount)
}

// AddGold 增加金币
func (s *Simulation) AddGold(amount int) {
	s.economy.AddGold(amount)
}

// SetPaused 暂停或恢复模拟
func (s *Simulation) SetPaused(paused bool) {
	if s.paused != paused {
		log.Printf("[Simulation] Paused: %v", paused)
	}
	s.paused = paused
}

// SetTimeScale 设置时间倍率（0 等同于冻结，1 为正常速度）
func (s *Simulation) SetTimeScale(scale float64) error {
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale < 0 {
		return fmt.Errorf("time scale must be a finite non-negative number, got %v", scale)
	}
	s.timeScale = scale
	return nil
}

// Subscribe 订阅指定类型的事件，事件在每帧结束时统一分发
func (s *Simulation) Subscribe(eventType event.EventType, listener event.Listener) {
	s.dispatcher.Subscribe(eventType, listener)
}

// SubscribeAll 订阅所有事件
func (s *Simulation) SubscribeAll(listener event.Listener) {
	s.dispatcher.SubscribeAll(listener)
}

// publishNow 玩家操作发生在两帧之间，事件立即分发
// 在订阅者回调中调用时，事件由正在进行的分发继续送出
func (s *Simulation) publishNow(e event.Event) {
	s.dispatcher.Publish(e)
	s.dispatcher.Flush()
}

func (s *Simulation) liveTower(id ecs.EntityID) (*components.TowerComponent, bool) {
	if !s.world.EM.IsAlive(id) {
		return nil, false
	}
	return s.world.Towers.Get(id)
}

// Gold 当前金币
func (s *Simulation) Gold() int { return s.economy.Gold() }

// Lives 当前基地生命
func (s *Simulation) Lives() int { return s.economy.Lives() }

// MaxLives 基地生命上限
func (s *Simulation) MaxLives() int { return s.economy.MaxLives() }

// WaveIndex 当前波次索引（0-based）
func (s *Simulation) WaveIndex() int { return s.scheduler.CurrentWaveIndex() }

// TotalWaves 总波次数
func (s *Simulation) TotalWaves() int { return s.scheduler.TotalWaves() }

// WavesCompleted 已完成的波次数
func (s *Simulation) WavesCompleted() int { return s.economy.WavesCompleted() }

// WaveState 波次调度状态
func (s *Simulation) WaveState() components.WaveState { return s.scheduler.State() }

// EnemiesRemaining 本波剩余敌人数（存活 + 待生成）
func (s *Simulation) EnemiesRemaining() int { return s.scheduler.EnemiesRemaining() }

// Time 已模拟的时间（秒）
func (s *Simulation) Time() float64 { return s.time }

// Ticks 已执行的帧数（暂停的帧不计）
func (s *Simulation) Ticks() int { return s.ticks }

// IsPaused 是否暂停
func (s *Simulation) IsPaused() bool { return s.paused }

// TimeScale 当前时间倍率
func (s *Simulation) TimeScale() float64 { return s.timeScale }

// IsGameOver 是否失败
func (s *Simulation) IsGameOver() bool { return s.economy.IsGameOver() }

// IsVictorious 是否胜利
func (s *Simulation) IsVictorious() bool { return s.economy.IsVictorious() }

// IsEnded 是否已进入终结状态
func (s *Simulation) IsEnded() bool { return s.economy.IsEnded() }

// Level 关卡配置（已填充模拟参数默认值的副本）
func (s *Simulation) Level() *config.LevelConfig { return s.level }
