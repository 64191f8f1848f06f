package components

import "github.com/decker502/tdsim/pkg/types"

// TowerComponent 标识实体为防御塔
// 属性在建造时由 towers.yaml 初始化，升级时按倍率修改
type TowerComponent struct {
	TowerType string // 防御塔类型ID

	Range           float64          // 射程
	FireRate        float64          // 攻速（次/秒）
	Damage          float64          // 单次伤害
	DamageType      types.DamageType // 伤害类型
	SplashRadius    float64          // 溅射半径，0 表示单体
	SlowPercentage  float64          // 减速比例（冰霜）
	SlowDuration    float64          // 减速持续时间（秒）
	ProjectileSpeed float64          // 弹道速度，0 表示瞬间命中

	// CooldownRemaining 距离下一次可开火的剩余时间（秒），不会小于 0
	CooldownRemaining float64

	UpgradeLevel    int // 当前等级（从 1 开始）
	MaxUpgradeLevel int // 最高等级
	UpgradeCost     int // 下一次升级费用

	// Invested 累计投入的金币（建造 + 升级），出售时按比例返还
	Invested int

	// ShotsFired 累计开火次数（统计）
	ShotsFired int
}

// CanUpgrade 是否还能继续升级
func (t *TowerComponent) CanUpgrade() bool {
	return t.UpgradeLevel < t.MaxUpgradeLevel
}
