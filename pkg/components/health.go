package components

// HealthComponent 存储实体的生命值信息
// CurrentHealth 始终位于 [0, MaxHealth]，由 systems.ApplyDamage 负责截断
type HealthComponent struct {
	CurrentHealth float64 // 当前生命值
	MaxHealth     float64 // 最大生命值
}

// IsDead 生命值是否已归零
func (h *HealthComponent) IsDead() bool {
	return h.CurrentHealth <= 0
}
