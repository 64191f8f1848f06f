package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/decker502/tdsim/pkg/types"
	"gopkg.in/yaml.v3"
)

// 升级倍率默认值（配置缺省时使用）
const (
	DefaultUpgradeDamageMultiplier   = 1.25
	DefaultUpgradeRangeMultiplier    = 1.0
	DefaultUpgradeFireRateMultiplier = 1.0
	DefaultUpgradeCostMultiplier     = 1.5
)

// UpgradeStats 每次升级时应用的属性倍率
// 每次升级各倍率只应用一次
type UpgradeStats struct {
	DamageMultiplier   float64 `yaml:"damageMultiplier"`   // 伤害倍率
	RangeMultiplier    float64 `yaml:"rangeMultiplier"`    // 射程倍率
	FireRateMultiplier float64 `yaml:"fireRateMultiplier"` // 攻速倍率
	CostMultiplier     float64 `yaml:"costMultiplier"`     // 下一次升级费用倍率
}

// TowerStats 单个防御塔类型的属性配置
type TowerStats struct {
	Name            string           `yaml:"name"`            // 显示名称
	Cost            int              `yaml:"cost"`            // 建造费用（金币）
	Range           float64          `yaml:"range"`           // 射程（世界单位）
	FireRate        float64          `yaml:"fireRate"`        // 攻速（次/秒）
	Damage          float64          `yaml:"damage"`          // 单次伤害
	DamageType      types.DamageType `yaml:"damageType"`      // 伤害类型
	SplashRadius    float64          `yaml:"splashRadius"`    // 溅射半径，0 表示单体
	SlowPercentage  float64          `yaml:"slowPercentage"`  // 减速比例 [0,1)，仅冰霜塔有效
	SlowDuration    float64          `yaml:"slowDuration"`    // 减速持续时间（秒）
	ProjectileSpeed float64          `yaml:"projectileSpeed"` // 弹道速度，0 表示瞬间命中
	MaxUpgradeLevel int              `yaml:"maxUpgradeLevel"` // 最高等级（初始等级为 1）
	UpgradeCost     int              `yaml:"upgradeCost"`     // 首次升级费用
	Upgrade         UpgradeStats     `yaml:"upgrade"`         // 升级倍率
}

// TowerTableConfig 防御塔属性表配置文件结构
type TowerTableConfig struct {
	Towers map[string]TowerStats `yaml:"towers"` // 防御塔类型ID到属性的映射
}

// LoadTowerTable 从 YAML 文件加载防御塔属性表
// 参数：
//
//	filepath - 配置文件路径（相对或绝对路径）
//
// 返回：
//
//	*TowerTableConfig - 解析后的配置对象
//	error - 如果文件读取或解析失败，返回错误信息
func LoadTowerTable(filepath string) (*TowerTableConfig, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read tower table file %s: %w", filepath, err)
	}

	config, err := ParseTowerTable(data)
	if err != nil {
		return nil, fmt.Errorf("invalid tower table in %s: %w", filepath, err)
	}
	return config, nil
}

// ParseTowerTable 从内存中的 YAML 数据解析防御塔属性表
func ParseTowerTable(data []byte) (*TowerTableConfig, error) {
	var config TowerTableConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse tower table YAML: %w", err)
	}

	applyTowerDefaults(&config)

	if err := validateTowerTable(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// applyTowerDefaults 为缺失的可选字段设置默认值
func applyTowerDefaults(config *TowerTableConfig) {
	for id, stats := range config.Towers {
		if stats.Name == "" {
			stats.Name = id
		}
		if stats.DamageType == "" {
			stats.DamageType = types.DamagePhysical
		}
		if stats.MaxUpgradeLevel == 0 {
			stats.MaxUpgradeLevel = 1
		}
		if stats.Upgrade.DamageMultiplier == 0 {
			stats.Upgrade.DamageMultiplier = DefaultUpgradeDamageMultiplier
		}
		if stats.Upgrade.RangeMultiplier == 0 {
			stats.Upgrade.RangeMultiplier = DefaultUpgradeRangeMultiplier
		}
		if stats.Upgrade.FireRateMultiplier == 0 {
			stats.Upgrade.FireRateMultiplier = DefaultUpgradeFireRateMultiplier
		}
		if stats.Upgrade.CostMultiplier == 0 {
			stats.Upgrade.CostMultiplier = DefaultUpgradeCostMultiplier
		}
		config.Towers[id] = stats
	}
}

// validateTowerTable 验证防御塔属性表的完整性和合法性
func validateTowerTable(config *TowerTableConfig) error {
	if len(config.Towers) == 0 {
		return fmt.Errorf("at least one tower type is required")
	}

	for _, id := range config.TowerIDs() {
		stats := config.Towers[id]
		if stats.Cost < 0 {
			return fmt.Errorf("tower %s: cost cannot be negative, got %d", id, stats.Cost)
		}
		if stats.Range <= 0 {
			return fmt.Errorf("tower %s: range must be positive, got %v", id, stats.Range)
		}
		if stats.FireRate <= 0 {
			return fmt.Errorf("tower %s: fireRate must be positive, got %v", id, stats.FireRate)
		}
		if stats.Damage < 0 {
			return fmt.Errorf("tower %s: damage cannot be negative, got %v", id, stats.Damage)
		}
		if !stats.DamageType.IsValid() {
			return fmt.Errorf("tower %s: unknown damageType %q", id, stats.DamageType)
		}
		if stats.SplashRadius < 0 {
			return fmt.Errorf("tower %s: splashRadius cannot be negative, got %v", id, stats.SplashRadius)
		}
		if stats.SlowPercentage < 0 || stats.SlowPercentage >= 1 {
			return fmt.Errorf("tower %s: slowPercentage must be in [0, 1), got %v", id, stats.SlowPercentage)
		}
		if stats.SlowDuration < 0 {
			return fmt.Errorf("tower %s: slowDuration cannot be negative, got %v", id, stats.SlowDuration)
		}
		if stats.ProjectileSpeed < 0 {
			return fmt.Errorf("tower %s: projectileSpeed cannot be negative, got %v", id, stats.ProjectileSpeed)
		}
		if stats.MaxUpgradeLevel < 1 {
			return fmt.Errorf("tower %s: maxUpgradeLevel must be at least 1, got %d", id, stats.MaxUpgradeLevel)
		}
		if stats.UpgradeCost < 0 {
			return fmt.Errorf("tower %s: upgradeCost cannot be negative, got %d", id, stats.UpgradeCost)
		}
		u := stats.Upgrade
		if u.DamageMultiplier < 0 || u.RangeMultiplier < 0 || u.FireRateMultiplier < 0 || u.CostMultiplier < 0 {
			return fmt.Errorf("tower %s: upgrade multipliers cannot be negative", id)
		}
	}

	return nil
}

// TowerIDs 返回排序后的防御塔类型ID列表（保证遍历顺序确定）
func (c *TowerTableConfig) TowerIDs() []string {
	ids := make([]string, 0, len(c.Towers))
	for id := range c.Towers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GetTowerStats 获取指定防御塔类型的完整属性
// 如果类型不存在，返回 nil 和 false
func (c *TowerTableConfig) GetTowerStats(towerType string) (*TowerStats, bool) {
	if c == nil {
		return nil, false
	}
	stats, ok := c.Towers[towerType]
	if !ok {
		return nil, false
	}
	return &stats, true
}

// AppliesSlow 是否为会附带减速效果的塔
func (s *TowerStats) AppliesSlow() bool {
	return s.DamageType == types.DamageFrost && s.SlowPercentage > 0 && s.SlowDuration > 0
}
