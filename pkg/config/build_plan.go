package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// 建造计划动作类型
const (
	ActionPlace    = "place"
	ActionUpgrade  = "upgrade"
	ActionSell     = "sell"
	ActionCallWave = "callWave"
)

// BuildPlan 无界面运行时按时间执行的玩家操作脚本
type BuildPlan struct {
	Level     string       `yaml:"level"`     // 适用的关卡ID（可选，仅用于校验）
	TimeLimit float64      `yaml:"timeLimit"` // 模拟时长上限（秒），0 表示运行到游戏结束
	Actions   []PlanAction `yaml:"actions"`   // 动作列表，加载后按 at 稳定排序
}

// PlanAction 单个计划动作
type PlanAction struct {
	At     float64 `yaml:"at"`     // 执行时间（模拟秒）
	Action string  `yaml:"action"` // place / upgrade / sell / callWave
	Tower  string  `yaml:"tower"`  // place: 防御塔类型ID
	X      float64 `yaml:"x"`      // place: 世界坐标
	Y      float64 `yaml:"y"`      // place: 世界坐标
	Label  string  `yaml:"label"`  // place: 给建成的塔命名；upgrade/sell: 引用该名称
}

// LoadBuildPlan 从 YAML 文件加载建造计划
func LoadBuildPlan(filepath string) (*BuildPlan, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read build plan file %s: %w", filepath, err)
	}

	plan, err := ParseBuildPlan(data)
	if err != nil {
		return nil, fmt.Errorf("invalid build plan in %s: %w", filepath, err)
	}
	return plan, nil
}

// ParseBuildPlan 从内存中的 YAML 数据解析建造计划
func ParseBuildPlan(data []byte) (*BuildPlan, error) {
	var plan BuildPlan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse build plan YAML: %w", err)
	}

	sort.SliceStable(plan.Actions, func(i, j int) bool {
		return plan.Actions[i].At < plan.Actions[j].At
	})

	if err := validateBuildPlan(&plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// validateBuildPlan 检查动作是否合法，upgrade/sell 引用的名称必须已由更早的 place 定义
func validateBuildPlan(plan *BuildPlan) error {
	if plan.TimeLimit < 0 {
		return fmt.Errorf("timeLimit cannot be negative")
	}

	labels := make(map[string]bool)
	for i, a := range plan.Actions {
		if a.At < 0 {
			return fmt.Errorf("action %d: at cannot be negative", i)
		}
		switch a.Action {
		case ActionPlace:
			if a.Tower == "" {
				return fmt.Errorf("action %d: place requires a tower type", i)
			}
			if a.Label != "" {
				if labels[a.Label] {
					return fmt.Errorf("action %d: duplicate label %q", i, a.Label)
				}
				labels[a.Label] = true
			}
		case ActionUpgrade, ActionSell:
			if a.Label == "" {
				return fmt.Errorf("action %d: %s requires a label", i, a.Action)
			}
			if !labels[a.Label] {
				return fmt.Errorf("action %d: label %q is not placed before it is used", i, a.Label)
			}
		case ActionCallWave:
		default:
			return fmt.Errorf("action %d: unknown action %q", i, a.Action)
		}
	}
	return nil
}

// ValidateAgainst 检查计划中引用的防御塔类型是否存在
func (p *BuildPlan) ValidateAgainst(towers *TowerTableConfig) error {
	for i, a := range p.Actions {
		if a.Action != ActionPlace {
			continue
		}
		if _, ok := towers.GetTowerStats(a.Tower); !ok {
			return fmt.Errorf("action %d: unknown tower type %q", i, a.Tower)
		}
	}
	return nil
}
