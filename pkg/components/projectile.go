package components

import (
	"github.com/decker502/tdsim/pkg/ecs"
	"github.com/decker502/tdsim/pkg/types"
)

// ProjectileComponent 飞行中的弹道
// 追踪目标敌人；命中、目标丢失或超过最长存活时间时销毁
type ProjectileComponent struct {
	SourceTower ecs.EntityID // 发射的防御塔
	Target      ecs.EntityID // 追踪的敌人

	Damage         float64
	DamageType     types.DamageType
	SplashRadius   float64
	SlowPercentage float64
	SlowDuration   float64

	Speed       float64 // 飞行速度（世界单位/秒）
	Age         float64 // 已飞行时间（秒）
	MaxLifetime float64 // 最长存活时间（秒）
}
