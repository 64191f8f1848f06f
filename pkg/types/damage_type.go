// Package types 定义共享的基础类型
package types

import "fmt"

// DamageType 伤害类型
//
// Physical / Magic / Frost 受敌人对应抗性削减，Pure 无视抗性。
type DamageType string

const (
	DamagePhysical DamageType = "physical" // 物理伤害
	DamageMagic    DamageType = "magic"    // 魔法伤害
	DamageFrost    DamageType = "frost"    // 冰霜伤害（可附带减速）
	DamagePure     DamageType = "pure"     // 纯粹伤害（无视抗性）
)

// ResistibleDamageTypes 可被抗性削减的伤害类型
var ResistibleDamageTypes = []DamageType{DamagePhysical, DamageMagic, DamageFrost}

// IsValid 检查伤害类型是否合法
func (d DamageType) IsValid() bool {
	switch d {
	case DamagePhysical, DamageMagic, DamageFrost, DamagePure:
		return true
	}
	return false
}

// ParseDamageType 从字符串解析伤害类型
func ParseDamageType(s string) (DamageType, error) {
	d := DamageType(s)
	if !d.IsValid() {
		return "", fmt.Errorf("unknown damage type %q (expected physical, magic, frost or pure)", s)
	}
	return d, nil
}
