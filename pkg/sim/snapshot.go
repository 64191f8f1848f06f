package sim

import (
	"github.com/decker502/tdsim/pkg/components"
	"github.com/decker502/tdsim/pkg/ecs"
	"github.com/decker502/tdsim/pkg/types"
)

// TowerView 防御塔的只读视图
type TowerView struct {
	ID        ecs.EntityID
	TowerType string
	Pos       types.Vec2

	Range           float64
	FireRate        float64
	Damage          float64
	DamageType      types.DamageType
	SplashRadius    float64
	ProjectileSpeed float64

	Level       int
	MaxLevel    int
	UpgradeCost int
	Invested    int

	Target            ecs.EntityID
	CooldownRemaining float64
	ShotsFired        int
}

// EnemyView 敌人的只读视图
type EnemyView struct {
	ID        ecs.EntityID
	EnemyType string
	Pos       types.Vec2

	Health    float64
	MaxHealth float64
	Speed     float64 // 当前实际速度（已计入减速）
	Slowed    bool

	WaveIndex         int
	WaypointIndex     int
	DistanceTravelled float64 // 沿路径累计移动的距离
}

// ProjectileView 飞行中弹道的只读视图
type ProjectileView struct {
	ID     ecs.EntityID
	Pos    types.Vec2
	Target ecs.EntityID
}

// Snapshot 一帧结束时的完整状态副本
// 与模拟不共享任何内存，可以安全地交给其他 goroutine（如渲染层）读取
type Snapshot struct {
	Time  float64
	Ticks int

	Gold     int
	Lives    int
	MaxLives int

	WaveIndex        int
	TotalWaves       int
	WavesCompleted   int
	WaveState        components.WaveState
	WaveCountdown    float64
	EnemiesRemaining int

	Paused   bool
	GameOver bool
	Victory  bool

	Towers      []TowerView
	Enemies     []EnemyView
	Projectiles []ProjectileView
}

// Tower 查询防御塔
func (s *Simulation) Tower(id ecs.EntityID) (TowerView, bool) {
	t, ok := s.liveTower(id)
	if !ok {
		return TowerView{}, false
	}
	return s.towerView(id, t), true
}

func (s *Simulation) towerView(id ecs.EntityID, t *components.TowerComponent) TowerView {
	v := TowerView{
		ID:                id,
		TowerType:         t.TowerType,
		Range:             t.Range,
		FireRate:          t.FireRate,
		Damage:            t.Damage,
		DamageType:        t.DamageType,
		SplashRadius:      t.SplashRadius,
		ProjectileSpeed:   t.ProjectileSpeed,
		Level:             t.UpgradeLevel,
		MaxLevel:          t.MaxUpgradeLevel,
		UpgradeCost:       t.UpgradeCost,
		Invested:          t.Invested,
		Target:            ecs.InvalidEntity,
		CooldownRemaining: t.CooldownRemaining,
		ShotsFired:        t.ShotsFired,
	}
	if pos, ok := s.world.Positions.Get(id); ok {
		v.Pos = pos.Pos
	}
	if tc, ok := s.world.Targets.Get(id); ok {
		v.Target = tc.Target
	}
	return v
}

// Enemy 查询在场的敌人
func (s *Simulation) Enemy(id ecs.EntityID) (EnemyView, bool) {
	if !s.world.EM.IsAlive(id) {
		return EnemyView{}, false
	}
	e, ok := s.world.Enemies.Get(id)
	if !ok {
		return EnemyView{}, false
	}
	return s.enemyView(id, e), true
}

func (s *Simulation) enemyView(id ecs.EntityID, e *components.EnemyComponent) EnemyView {
	v := EnemyView{
		ID:        id,
		EnemyType: e.EnemyType,
		Speed:     e.CurrentSpeed(),
		Slowed:    s.world.Slows.Has(id),
		WaveIndex: e.WaveIndex,
	}
	if pos, ok := s.world.Positions.Get(id); ok {
		v.Pos = pos.Pos
	}
	if h, ok := s.world.Healths.Get(id); ok {
		v.Health = h.CurrentHealth
		v.MaxHealth = h.MaxHealth
	}
	if pf, ok := s.world.Paths.Get(id); ok {
		v.WaypointIndex = pf.WaypointIndex
		v.DistanceTravelled = pf.DistanceTravelled
	}
	return v
}

// Snapshot 返回当前状态的副本
// 实体按加入顺序排列（敌人即生成顺序）
func (s *Simulation) Snapshot() Snapshot {
	sched := s.scheduler.Schedule()
	snap := Snapshot{
		Time:             s.time,
		Ticks:            s.ticks,
		Gold:             s.economy.Gold(),
		Lives:            s.economy.Lives(),
		MaxLives:         s.economy.MaxLives(),
		WaveIndex:        sched.CurrentWaveIndex,
		TotalWaves:       sched.TotalWaves,
		WavesCompleted:   s.economy.WavesCompleted(),
		WaveState:        sched.State,
		WaveCountdown:    sched.Countdown,
		EnemiesRemaining: s.scheduler.EnemiesRemaining(),
		Paused:           s.paused,
		GameOver:         s.economy.IsGameOver(),
		Victory:          s.economy.IsVictorious(),
		Towers:           make([]TowerView, 0, s.world.Towers.Len()),
		Enemies:          make([]EnemyView, 0, s.world.Enemies.Len()),
		Projectiles:      make([]ProjectileView, 0, s.world.Projectiles.Len()),
	}

	s.world.Towers.Each(func(id ecs.EntityID, t *components.TowerComponent) bool {
		snap.Towers = append(snap.Towers, s.towerView(id, t))
		return true
	})
	s.world.Enemies.Each(func(id ecs.EntityID, e *components.EnemyComponent) bool {
		snap.Enemies = append(snap.Enemies, s.enemyView(id, e))
		return true
	})
	s.world.Projectiles.Each(func(id ecs.EntityID, p *components.ProjectileComponent) bool {
		v := ProjectileView{ID: id, Target: p.Target}
		if pos, ok := s.world.Positions.Get(id); ok {
			v.Pos = pos.Pos
		}
		snap.Projectiles = append(snap.Projectiles, v)
		return true
	})

	return snap
}
