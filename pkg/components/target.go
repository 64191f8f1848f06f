package components

import "github.com/decker502/tdsim/pkg/ecs"

// TargetComponent 防御塔当前锁定的目标
type TargetComponent struct {
	// Target 当前目标，ecs.InvalidEntity 表示无目标
	Target ecs.EntityID

	// RetargetTimer 距离下一次周期性重新索敌的时间（秒）
	RetargetTimer float64
}

// HasTarget 是否持有目标
func (t *TargetComponent) HasTarget() bool {
	return t.Target != ecs.InvalidEntity
}
