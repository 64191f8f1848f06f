package systems

import (
	"log"

	"github.com/decker502/tdsim/pkg/components"
	"github.com/decker502/tdsim/pkg/ecs"
	"github.com/decker502/tdsim/pkg/entities"
	"github.com/decker502/tdsim/pkg/utils"
)

// StatusEffectSystem 维护敌人身上的减速效果
//
// 职责：
//   - 每帧递减剩余时间
//   - 到期时移除效果并把速度倍率恢复为 1.0
type StatusEffectSystem struct {
	world   *entities.World
	verbose bool
}

// NewStatusEffectSystem 创建状态效果系统
func NewStatusEffectSystem(w *entities.World) *StatusEffectSystem {
	return &StatusEffectSystem{world: w}
}

// SetVerbose 设置是否输出详细日志
func (s *StatusEffectSystem) SetVerbose(verbose bool) {
	s.verbose = verbose
}

// Update 推进所有减速效果的计时
func (s *StatusEffectSystem) Update(deltaTime float64) {
	for _, id := range s.world.Slows.IDs() {
		slow, _ := s.world.Slows.Get(id)
		slow.Remaining -= deltaTime
		if slow.Remaining > utils.FloatEpsilon {
			continue
		}

		s.world.Slows.Remove(id)
		if enemy, ok := s.world.Enemies.Get(id); ok {
			enemy.SpeedMultiplier = 1.0
		}
		if s.verbose {
			log.Printf("[StatusEffectSystem] Slow expired on enemy %d", id)
		}
	}
}

// ApplySlow 对敌人施加减速
//
// 叠加规则（最强者优先）：已有减速时，只有新的倍率严格更低才会替换，
// 否则保留原效果及其剩余时间。返回是否施加/替换成功。
func ApplySlow(w *entities.World, id ecs.EntityID, slowPercentage, duration float64) bool {
	if slowPercentage <= 0 || duration <= 0 {
		return false
	}
	enemy, ok := w.Enemies.Get(id)
	if !ok {
		return false
	}

	multiplier := utils.Clamp(1-slowPercentage, utils.FloatEpsilon, 1)
	if existing, ok := w.Slows.Get(id); ok && multiplier >= existing.Multiplier {
		return false
	}

	w.Slows.Add(id, &components.SlowEffectComponent{
		Multiplier: multiplier,
		Remaining:  duration,
	})
	enemy.SpeedMultiplier = multiplier
	return true
}
