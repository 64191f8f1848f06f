package systems

import (
	"log"
	"math"

	"github.com/decker502/tdsim/pkg/ecs"
	"github.com/decker502/tdsim/pkg/entities"
	"github.com/decker502/tdsim/pkg/utils"
)

// CombatSystem 防御塔开火
//
// 冷却结束（<= 0）且持有目标时开火，冷却重置为 1/fireRate；
// 空闲时冷却停在 0，不会为负，因此开火频率不超过 fireRate。
// projectileSpeed 为 0 的塔瞬间命中，否则发射追踪弹道交给 ProjectileSystem。
type CombatSystem struct {
	world     *entities.World
	targeting *TargetingSystem

	projectileMaxLifetime float64
	verbose               bool
}

// NewCombatSystem 创建战斗系统
//
// 参数：
//   - w: 实体注册表
//   - targeting: 索敌系统（目标在本帧被其他塔击杀时用于立即重新索敌）
//   - projectileMaxLifetime: 弹道最长存活时间（秒）
func NewCombatSystem(w *entities.World, targeting *TargetingSystem, projectileMaxLifetime float64) *CombatSystem {
	return &CombatSystem{
		world:                 w,
		targeting:             targeting,
		projectileMaxLifetime: projectileMaxLifetime,
	}
}

// SetVerbose 设置是否输出详细日志
func (s *CombatSystem) SetVerbose(verbose bool) {
	s.verbose = verbose
}

// Update 推进冷却并让就绪的防御塔开火
func (s *CombatSystem) Update(deltaTime float64) {
	for _, id := range s.world.Towers.IDs() {
		tower, _ := s.world.Towers.Get(id)
		tower.CooldownRemaining = math.Max(0, tower.CooldownRemaining-deltaTime)
		if tower.CooldownRemaining > utils.FloatEpsilon {
			continue
		}
		tower.CooldownRemaining = 0

		tc, ok := s.world.Targets.Get(id)
		if !ok || !tc.HasTarget() {
			continue
		}
		// 目标可能刚被其他塔击杀
		if !s.targeting.IsValidTarget(id, tc.Target) {
			tc.Target = ecs.InvalidEntity
			if s.targeting.Acquire(id) == ecs.InvalidEntity {
				continue
			}
		}

		s.fire(id)
	}
}

// fire 开火并重置冷却
func (s *CombatSystem) fire(towerID ecs.EntityID) {
	tower, _ := s.world.Towers.Get(towerID)
	tc, _ := s.world.Targets.Get(towerID)
	towerPos, _ := s.world.Positions.Get(towerID)

	tower.CooldownRemaining = 1 / tower.FireRate
	tower.ShotsFired++

	if tower.ProjectileSpeed > 0 {
		if _, err := entities.NewProjectileEntity(s.world, towerID, tower, towerPos.Pos, tc.Target, s.projectileMaxLifetime); err != nil {
			log.Printf("[CombatSystem] ERROR: tower %d failed to fire: %v", towerID, err)
		}
		return
	}

	targetPos, _ := s.world.Positions.Get(tc.Target)
	hits := ResolveAttack(s.world, AttackFromTower(towerID, tower), tc.Target, targetPos.Pos)
	if s.verbose {
		for _, h := range hits {
			log.Printf("[CombatSystem] Tower %d hit enemy %d for %.2f (killed=%v)", towerID, h.Enemy, h.Damage, h.Killed)
		}
	}
}
