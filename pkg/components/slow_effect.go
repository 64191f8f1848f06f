package components

// SlowEffectComponent 敌人身上当前生效的减速效果
// 每个敌人至多一个；叠加规则见 systems.ApplySlow
type SlowEffectComponent struct {
	Multiplier float64 // 速度倍率 (0,1]
	Remaining  float64 // 剩余持续时间（秒）
}
