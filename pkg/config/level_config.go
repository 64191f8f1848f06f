package config

import (
	"fmt"
	"log"
	"os"

	"github.com/decker502/tdsim/pkg/types"
	"gopkg.in/yaml.v3"
)

// 关卡默认值（配置缺省时使用）
const (
	DefaultInitialGold      = 100
	DefaultLives            = 20
	DefaultSellRefundRatio  = 0.5
	DefaultWaveBonusPerWave = 25
)

// 波次奖励模式
const (
	WaveBonusLinear = "linear" // bonus = (waveIndex+1) * perWave
	WaveBonusTable  = "table"  // amounts[waveIndex]，超出后使用 lateAmount
)

// LevelConfig 关卡配置数据结构
// 定义了关卡的经济参数、路径几何、建造网格和敌人波次
type LevelConfig struct {
	ID          string `yaml:"id"`          // 关卡ID，如 "meadow-1"
	Name        string `yaml:"name"`        // 关卡名称
	Description string `yaml:"description"` // 关卡描述（可选）

	InitialGold int `yaml:"initialGold"` // 初始金币，默认 100
	Lives       int `yaml:"lives"`       // 基地生命值，默认 20

	Path []types.Vec2 `yaml:"path"` // 路径点（按行进顺序）

	FirstWaveDelay float64 `yaml:"firstWaveDelay"` // 第一波之前的倒计时（秒）
	InterWaveDelay float64 `yaml:"interWaveDelay"` // 波次之间的倒计时（秒）

	WaveBonus       WaveBonusConfig  `yaml:"waveBonus"`       // 波次完成奖励
	SellRefundRatio float64          `yaml:"sellRefundRatio"` // 出售返还比例，默认 0.5
	Grid            *GridConfig      `yaml:"grid"`            // 建造网格（可选）
	Simulation      SimulationConfig `yaml:"simulation"`      // 模拟参数（可选）

	Waves []WaveConfig `yaml:"waves"` // 敌人波次配置列表
}

// WaveBonusConfig 波次完成奖励策略
type WaveBonusConfig struct {
	Mode       string `yaml:"mode"`       // "linear" 或 "table"
	PerWave    int    `yaml:"perWave"`    // linear 模式下每波递增的奖励
	Amounts    []int  `yaml:"amounts"`    // table 模式下前几波的固定奖励
	LateAmount int    `yaml:"lateAmount"` // table 模式下超出 amounts 后的固定奖励
}

// Bonus 计算第 waveIndex 波（从0开始）完成时的奖励金币
func (b WaveBonusConfig) Bonus(waveIndex int) int {
	if waveIndex < 0 {
		return 0
	}
	switch b.Mode {
	case WaveBonusTable:
		if waveIndex < len(b.Amounts) {
			return b.Amounts[waveIndex]
		}
		return b.LateAmount
	default:
		return (waveIndex + 1) * b.PerWave
	}
}

// GridConfig 建造网格配置
// 网格覆盖 [origin, origin + (cols,rows)*cellSize) 的矩形区域
type GridConfig struct {
	Origin        types.Vec2  `yaml:"origin"`        // 左上角世界坐标
	CellSize      float64     `yaml:"cellSize"`      // 格子边长
	Cols          int         `yaml:"cols"`          // 列数
	Rows          int         `yaml:"rows"`          // 行数
	PathClearance float64     `yaml:"pathClearance"` // 格子中心与路径的最小距离，默认 cellSize/2
	Blocked       []GridCoord `yaml:"blocked"`       // 额外的不可建造格子
}

// GridCoord 网格坐标（从0开始）
type GridCoord struct {
	Col int `yaml:"col"`
	Row int `yaml:"row"`
}

// WaveConfig 单个波次配置
// 按声明顺序依次生成各个分组（难度梯队）的敌人
type WaveConfig struct {
	Delay           *float64     `yaml:"delay"`           // 可选：覆盖本波之前的倒计时（秒）
	SpawnInterval   float64      `yaml:"spawnInterval"`   // 同一分组内相邻两次生成的间隔（秒）
	InterGroupDelay float64      `yaml:"interGroupDelay"` // 相邻两个非空分组之间的间隔（秒）
	Groups          []SpawnGroup `yaml:"groups"`          // 分组列表
}

// SpawnGroup 波次中的一个分组
type SpawnGroup struct {
	Enemy string `yaml:"enemy"` // 敌人类型ID
	Count int    `yaml:"count"` // 生成数量，0 表示该分组为空
}

// TotalEnemies 返回本波次所有分组的敌人总数
func (w WaveConfig) TotalEnemies() int {
	total := 0
	for _, g := range w.Groups {
		total += g.Count
	}
	return total
}

// LoadLevelConfig 从YAML文件加载关卡配置
// 参数：
//
//	filepath - 关卡配置文件的路径（相对或绝对路径）
//
// 返回：
//
//	*LevelConfig - 解析后的关卡配置对象
//	error - 如果文件读取或解析失败，返回错误信息
func LoadLevelConfig(filepath string) (*LevelConfig, error) {
	// 读取文件内容
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read level config file %s: %w", filepath, err)
	}

	levelConfig, err := ParseLevelConfig(data)
	if err != nil {
		return nil, fmt.Errorf("invalid level config in %s: %w", filepath, err)
	}
	return levelConfig, nil
}

// ParseLevelConfig 从内存中的 YAML 数据解析关卡配置
func ParseLevelConfig(data []byte) (*LevelConfig, error) {
	var levelConfig LevelConfig
	if err := yaml.Unmarshal(data, &levelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse level config YAML: %w", err)
	}

	// 应用默认值
	applyDefaults(&levelConfig)

	// 验证必填字段
	if err := validateLevelConfig(&levelConfig); err != nil {
		return nil, err
	}

	return &levelConfig, nil
}

// applyDefaults 为 LevelConfig 中缺失的可选字段设置默认值
func applyDefaults(config *LevelConfig) {
	if config.InitialGold == 0 {
		config.InitialGold = DefaultInitialGold
	}
	if config.Lives == 0 {
		config.Lives = DefaultLives
	}
	if config.SellRefundRatio == 0 {
		config.SellRefundRatio = DefaultSellRefundRatio
	}

	// 未配置奖励模式时使用线性奖励
	if config.WaveBonus.Mode == "" {
		config.WaveBonus.Mode = WaveBonusLinear
		if config.WaveBonus.PerWave == 0 {
			config.WaveBonus.PerWave = DefaultWaveBonusPerWave
		}
	}

	if config.Grid != nil && config.Grid.PathClearance == 0 {
		config.Grid.PathClearance = config.Grid.CellSize / 2
	}

	config.Simulation.ApplyDefaults()
}

// validateLevelConfig 验证关卡配置的完整性和合法性
// 缺少路径或波次不是错误：模拟核心会降级运行（敌人不移动 / 不生成敌人）
func validateLevelConfig(config *LevelConfig) error {
	if config.ID == "" {
		return fmt.Errorf("level ID is required")
	}
	if config.Name == "" {
		return fmt.Errorf("level name is required")
	}
	if config.InitialGold < 0 {
		return fmt.Errorf("initialGold cannot be negative, got %d", config.InitialGold)
	}
	if config.Lives < 0 {
		return fmt.Errorf("lives cannot be negative, got %d", config.Lives)
	}
	if config.FirstWaveDelay < 0 {
		return fmt.Errorf("firstWaveDelay cannot be negative")
	}
	if config.InterWaveDelay < 0 {
		return fmt.Errorf("interWaveDelay cannot be negative")
	}
	if config.SellRefundRatio < 0 || config.SellRefundRatio > 1 {
		return fmt.Errorf("sellRefundRatio must be in [0, 1], got %v", config.SellRefundRatio)
	}

	switch config.WaveBonus.Mode {
	case WaveBonusLinear, WaveBonusTable:
	default:
		return fmt.Errorf("waveBonus.mode must be one of: linear, table, got %q", config.WaveBonus.Mode)
	}
	if config.WaveBonus.PerWave < 0 || config.WaveBonus.LateAmount < 0 {
		return fmt.Errorf("waveBonus amounts cannot be negative")
	}
	for i, amount := range config.WaveBonus.Amounts {
		if amount < 0 {
			return fmt.Errorf("waveBonus.amounts[%d] cannot be negative, got %d", i, amount)
		}
	}

	if len(config.Path) < 2 {
		log.Printf("[LevelConfig] Warning: level %s has %d waypoints, enemies will not move", config.ID, len(config.Path))
	}
	if len(config.Waves) == 0 {
		log.Printf("[LevelConfig] Warning: level %s has no waves", config.ID)
	}

	// 验证每个波次的配置
	for i, wave := range config.Waves {
		if wave.Delay != nil && *wave.Delay < 0 {
			return fmt.Errorf("wave %d: delay cannot be negative", i)
		}
		if wave.SpawnInterval < 0 {
			return fmt.Errorf("wave %d: spawnInterval cannot be negative", i)
		}
		if wave.InterGroupDelay < 0 {
			return fmt.Errorf("wave %d: interGroupDelay cannot be negative", i)
		}
		for j, group := range wave.Groups {
			if group.Enemy == "" {
				return fmt.Errorf("wave %d, group %d: enemy is required", i, j)
			}
			if group.Count < 0 {
				return fmt.Errorf("wave %d, group %d: count cannot be negative, got %d", i, j, group.Count)
			}
		}
	}

	if config.Grid != nil {
		if err := validateGrid(config.Grid); err != nil {
			return err
		}
	}

	return config.Simulation.Validate()
}

func validateGrid(grid *GridConfig) error {
	if grid.CellSize <= 0 {
		return fmt.Errorf("grid.cellSize must be positive, got %v", grid.CellSize)
	}
	if grid.Cols <= 0 || grid.Rows <= 0 {
		return fmt.Errorf("grid must have positive cols and rows, got %dx%d", grid.Cols, grid.Rows)
	}
	if grid.PathClearance < 0 {
		return fmt.Errorf("grid.pathClearance cannot be negative")
	}
	for i, c := range grid.Blocked {
		if c.Col < 0 || c.Col >= grid.Cols || c.Row < 0 || c.Row >= grid.Rows {
			return fmt.Errorf("grid.blocked[%d]: (%d,%d) is outside the %dx%d grid", i, c.Col, c.Row, grid.Cols, grid.Rows)
		}
	}
	return nil
}

// ValidateAgainst 检查关卡中引用的敌人类型是否都存在于敌人属性表中
func (c *LevelConfig) ValidateAgainst(enemies *EnemyTableConfig) error {
	if enemies == nil {
		return fmt.Errorf("level %s: enemy table is required", c.ID)
	}
	for i, wave := range c.Waves {
		for j, group := range wave.Groups {
			if _, ok := enemies.Enemies[group.Enemy]; !ok {
				return fmt.Errorf("level %s: wave %d, group %d: unknown enemy type %q", c.ID, i, j, group.Enemy)
			}
		}
	}
	return nil
}

// WaveDelay 返回第 index 波之前的倒计时
// 波次自身的 delay 优先；否则第一波用 firstWaveDelay，其余用 interWaveDelay
func (c *LevelConfig) WaveDelay(index int) float64 {
	if index < 0 || index >= len(c.Waves) {
		return 0
	}
	if d := c.Waves[index].Delay; d != nil {
		return *d
	}
	if index == 0 {
		return c.FirstWaveDelay
	}
	return c.InterWaveDelay
}
