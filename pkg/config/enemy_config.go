package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/decker502/tdsim/pkg/types"
	"gopkg.in/yaml.v3"
)

// EnemyStats 单个敌人类型的属性配置
type EnemyStats struct {
	Name         string                       `yaml:"name"`         // 显示名称
	MaxHealth    float64                      `yaml:"maxHealth"`    // 最大生命值
	Speed        float64                      `yaml:"speed"`        // 基础移动速度（世界单位/秒）
	Resistances  map[types.DamageType]float64 `yaml:"resistances"`  // 伤害类型 -> 抗性 [0,1)
	GoldReward   int                          `yaml:"goldReward"`   // 击杀奖励金币
	DamageToBase int                          `yaml:"damageToBase"` // 漏怪时对基地造成的伤害
}

// EnemyTableConfig 敌人属性表配置文件结构
type EnemyTableConfig struct {
	Enemies map[string]EnemyStats `yaml:"enemies"` // 敌人类型ID到属性的映射
}

// LoadEnemyTable 从 YAML 文件加载敌人属性表
// 参数：
//
//	filepath - 配置文件路径（相对或绝对路径）
//
// 返回：
//
//	*EnemyTableConfig - 解析后的配置对象
//	error - 如果文件读取或解析失败，返回错误信息
func LoadEnemyTable(filepath string) (*EnemyTableConfig, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read enemy table file %s: %w", filepath, err)
	}

	config, err := ParseEnemyTable(data)
	if err != nil {
		return nil, fmt.Errorf("invalid enemy table in %s: %w", filepath, err)
	}
	return config, nil
}

// ParseEnemyTable 从内存中的 YAML 数据解析敌人属性表
func ParseEnemyTable(data []byte) (*EnemyTableConfig, error) {
	var config EnemyTableConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse enemy table YAML: %w", err)
	}

	for id, stats := range config.Enemies {
		if stats.Name == "" {
			stats.Name = id
		}
		if stats.Resistances == nil {
			stats.Resistances = map[types.DamageType]float64{}
		}
		config.Enemies[id] = stats
	}

	if err := validateEnemyTable(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// validateEnemyTable 验证敌人属性表的完整性和合法性
func validateEnemyTable(config *EnemyTableConfig) error {
	if len(config.Enemies) == 0 {
		return fmt.Errorf("at least one enemy type is required")
	}

	for _, id := range config.EnemyIDs() {
		stats := config.Enemies[id]
		if stats.MaxHealth <= 0 {
			return fmt.Errorf("enemy %s: maxHealth must be positive, got %v", id, stats.MaxHealth)
		}
		if stats.Speed < 0 {
			return fmt.Errorf("enemy %s: speed cannot be negative, got %v", id, stats.Speed)
		}
		if stats.GoldReward < 0 {
			return fmt.Errorf("enemy %s: goldReward cannot be negative, got %d", id, stats.GoldReward)
		}
		if stats.DamageToBase < 0 {
			return fmt.Errorf("enemy %s: damageToBase cannot be negative, got %d", id, stats.DamageToBase)
		}
		for damageType, resistance := range stats.Resistances {
			switch damageType {
			case types.DamagePhysical, types.DamageMagic, types.DamageFrost:
			case types.DamagePure:
				return fmt.Errorf("enemy %s: pure damage cannot be resisted", id)
			default:
				return fmt.Errorf("enemy %s: unknown resistance type %q", id, damageType)
			}
			if resistance < 0 || resistance >= 1 {
				return fmt.Errorf("enemy %s: %s resistance must be in [0, 1), got %v", id, damageType, resistance)
			}
		}
	}

	return nil
}

// EnemyIDs 返回排序后的敌人类型ID列表
func (c *EnemyTableConfig) EnemyIDs() []string {
	ids := make([]string, 0, len(c.Enemies))
	for id := range c.Enemies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GetEnemyStats 获取指定敌人类型的完整属性
// 如果敌人类型不存在，返回 nil 和 false
func (c *EnemyTableConfig) GetEnemyStats(enemyType string) (*EnemyStats, bool) {
	if c == nil {
		return nil, false
	}
	stats, ok := c.Enemies[enemyType]
	if !ok {
		return nil, false
	}
	return &stats, true
}
