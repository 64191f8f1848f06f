package systems

import (
	"github.com/decker502/tdsim/pkg/components"
	"github.com/decker502/tdsim/pkg/ecs"
	"github.com/decker502/tdsim/pkg/entities"
	"github.com/decker502/tdsim/pkg/types"
	"github.com/decker502/tdsim/pkg/utils"
)

// Attack 一次攻击的参数（瞬间命中的塔或命中的弹道）
type Attack struct {
	Source         ecs.EntityID // 发起攻击的防御塔
	Damage         float64
	DamageType     types.DamageType
	SplashRadius   float64
	SlowPercentage float64
	SlowDuration   float64
}

// AttackFromTower 以防御塔当前属性构造攻击
func AttackFromTower(id ecs.EntityID, t *components.TowerComponent) Attack {
	return Attack{
		Source:         id,
		Damage:         t.Damage,
		DamageType:     t.DamageType,
		SplashRadius:   t.SplashRadius,
		SlowPercentage: t.SlowPercentage,
		SlowDuration:   t.SlowDuration,
	}
}

// AttackFromProjectile 以弹道携带的属性构造攻击
func AttackFromProjectile(p *components.ProjectileComponent) Attack {
	return Attack{
		Source:         p.SourceTower,
		Damage:         p.Damage,
		DamageType:     p.DamageType,
		SplashRadius:   p.SplashRadius,
		SlowPercentage: p.SlowPercentage,
		SlowDuration:   p.SlowDuration,
	}
}

// appliesSlow 冰霜攻击且减速比例大于 0 时附带减速
func (a Attack) appliesSlow() bool {
	return a.DamageType == types.DamageFrost && a.SlowPercentage > 0 && a.SlowDuration > 0
}

// Hit 攻击对单个敌人的结算结果
type Hit struct {
	Enemy  ecs.EntityID
	Damage float64 // 实际扣除的生命值
	Killed bool    // 本次攻击使其生命值从正数变为 0
}

// DamageAfterResistance 计算抗性削减后的伤害
// Pure 伤害无视抗性；其余类型为 amount * (1 - resistance)
func DamageAfterResistance(amount float64, damageType types.DamageType, enemy *components.EnemyComponent) float64 {
	if amount <= 0 {
		return 0
	}
	if damageType == types.DamagePure || enemy == nil {
		return amount
	}
	return amount * (1 - utils.Clamp01(enemy.Resistance(damageType)))
}

// ApplyDamage 扣除生命值并截断到 0
// 返回实际扣除量，以及是否由本次伤害致死（之前 > 0，之后 == 0）
func ApplyDamage(health *components.HealthComponent, amount float64) (applied float64, killed bool) {
	if health == nil || health.CurrentHealth <= 0 || amount <= 0 {
		return 0, false
	}
	before := health.CurrentHealth
	health.CurrentHealth = utils.Clamp(before-amount, 0, health.MaxHealth)
	return before - health.CurrentHealth, health.CurrentHealth == 0
}

// SplashFalloff 溅射衰减系数
// 距离 0 时为 1，距离 >= radius 时为 0，之间线性递减
func SplashFalloff(distance, radius float64) float64 {
	if radius <= 0 {
		return 0
	}
	return utils.Clamp01(1 - distance/radius)
}

// ResolveAttack 结算一次攻击
//
// 单体攻击只作用于 target；溅射攻击以 impact 为中心，作用于半径内所有可被攻击的敌人，
// 伤害乘以衰减系数。冰霜攻击对本次命中的每个敌人施加减速。
// 返回按生成顺序排列的命中结果。
func ResolveAttack(w *entities.World, a Attack, target ecs.EntityID, impact types.Vec2) []Hit {
	var hits []Hit

	if a.SplashRadius <= 0 {
		if !w.IsLiveEnemy(target) {
			return nil
		}
		hits = append(hits, hitEnemy(w, target, a, 1))
	} else {
		for _, id := range w.LiveEnemies() {
			pos, ok := w.Positions.Get(id)
			if !ok {
				continue
			}
			d := impact.DistanceTo(pos.Pos)
			if d >= a.SplashRadius {
				continue
			}
			hits = append(hits, hitEnemy(w, id, a, SplashFalloff(d, a.SplashRadius)))
		}
	}

	if a.appliesSlow() {
		for _, h := range hits {
			if h.Killed {
				continue
			}
			ApplySlow(w, h.Enemy, a.SlowPercentage, a.SlowDuration)
		}
	}
	return hits
}

func hitEnemy(w *entities.World, id ecs.EntityID, a Attack, factor float64) Hit {
	enemy, _ := w.Enemies.Get(id)
	health, _ := w.Healths.Get(id)
	amount := DamageAfterResistance(a.Damage, a.DamageType, enemy) * factor
	applied, killed := ApplyDamage(health, amount)
	return Hit{Enemy: id, Damage: applied, Killed: killed}
}
