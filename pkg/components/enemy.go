package components

import "github.com/decker502/tdsim/pkg/types"

// EnemyComponent 标识实体为敌人
//
// 生命周期：由 WaveSchedulerSystem 生成；PathFollowSystem 在越过最后一个路径点时
// 置 ReachedEnd（待结算的漏怪）；LifecycleSystem 在同一帧的伤害结算之后统一裁决
// 死亡或漏怪，二者只会发生一个，裁决后 Resolved 置位。
type EnemyComponent struct {
	// EnemyType 敌人类型ID（对应 enemies.yaml 中的键）
	EnemyType string

	// BaseSpeed 基础移动速度（世界单位/秒）
	BaseSpeed float64

	// SpeedMultiplier 当前速度倍率 (0,1]，由 StatusEffectSystem 维护
	SpeedMultiplier float64

	// Resistances 伤害类型 -> 抗性 [0,1)，Pure 不参与
	Resistances map[types.DamageType]float64

	GoldReward   int // 击杀奖励
	DamageToBase int // 漏怪伤害

	// WaveIndex 所属波次索引（0-based）
	WaveIndex int

	// SpawnSeq 全局生成序号，FindNearestEnemy 距离相同时序号小者优先
	SpawnSeq uint64

	// Active 是否仍在场上参与移动与索敌
	Active bool

	// ReachedEnd 已越过最后一个路径点，等待本帧结算漏怪
	ReachedEnd bool

	// Resolved 终结状态（死亡/漏怪）已裁决，之后不会再次触发
	Resolved bool
}

// CurrentSpeed 当前实际移动速度
func (e *EnemyComponent) CurrentSpeed() float64 {
	return e.BaseSpeed * e.SpeedMultiplier
}

// Resistance 返回指定伤害类型的抗性
func (e *EnemyComponent) Resistance(damageType types.DamageType) float64 {
	if e.Resistances == nil {
		return 0
	}
	return e.Resistances[damageType]
}
