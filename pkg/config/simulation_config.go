package config

import "fmt"

// 模拟参数默认值
const (
	DefaultWaypointEpsilon       = 0.01
	DefaultRetargetInterval      = 0.5
	DefaultProjectileMaxLifetime = 5.0
	DefaultMaxDeltaTime          = 0.25
	DefaultFixedStep             = 1.0 / 60.0
)

// SimulationConfig 模拟核心的数值参数
// 作为关卡配置的 simulation 段出现，未配置的字段使用默认值
type SimulationConfig struct {
	WaypointEpsilon       float64 `yaml:"waypointEpsilon"`       // 到达路径点的判定距离
	RetargetInterval      float64 `yaml:"retargetInterval"`      // 防御塔周期性重新索敌的间隔（秒）
	ProjectileMaxLifetime float64 `yaml:"projectileMaxLifetime"` // 弹道最长存活时间（秒）
	MaxDeltaTime          float64 `yaml:"maxDeltaTime"`          // Stepper 单帧最多计入的真实时间（秒）
	FixedStep             float64 `yaml:"fixedStep"`             // 固定步长驱动器的步长（秒）
}

// DefaultSimulationConfig 返回全部使用默认值的模拟参数
func DefaultSimulationConfig() SimulationConfig {
	var c SimulationConfig
	c.ApplyDefaults()
	return c
}

// ApplyDefaults 为未配置（零值）的字段填充默认值
func (c *SimulationConfig) ApplyDefaults() {
	if c.WaypointEpsilon == 0 {
		c.WaypointEpsilon = DefaultWaypointEpsilon
	}
	if c.RetargetInterval == 0 {
		c.RetargetInterval = DefaultRetargetInterval
	}
	if c.ProjectileMaxLifetime == 0 {
		c.ProjectileMaxLifetime = DefaultProjectileMaxLifetime
	}
	if c.MaxDeltaTime == 0 {
		c.MaxDeltaTime = DefaultMaxDeltaTime
	}
	if c.FixedStep == 0 {
		c.FixedStep = DefaultFixedStep
	}
}

// Validate 检查参数是否合法
func (c *SimulationConfig) Validate() error {
	if c.WaypointEpsilon < 0 {
		return fmt.Errorf("simulation.waypointEpsilon cannot be negative")
	}
	if c.RetargetInterval < 0 {
		return fmt.Errorf("simulation.retargetInterval cannot be negative")
	}
	if c.ProjectileMaxLifetime < 0 {
		return fmt.Errorf("simulation.projectileMaxLifetime cannot be negative")
	}
	if c.MaxDeltaTime < 0 {
		return fmt.Errorf("simulation.maxDeltaTime cannot be negative")
	}
	if c.FixedStep < 0 {
		return fmt.Errorf("simulation.fixedStep cannot be negative")
	}
	return nil
}
