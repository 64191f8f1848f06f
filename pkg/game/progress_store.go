package game

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// LevelResult 一次关卡运行的结果
type LevelResult struct {
	RunID          string  `yaml:"runId"`          // 运行ID（UUID）
	LevelID        string  `yaml:"levelId"`        // 关卡ID
	Plan           string  `yaml:"plan"`           // 使用的建造计划（可选）
	Victory        bool    `yaml:"victory"`        // 是否胜利
	GameOver       bool    `yaml:"gameOver"`       // 是否失败（两者皆否表示超时中止）
	Lives          int     `yaml:"lives"`          // 剩余生命
	MaxLives       int     `yaml:"maxLives"`       // 生命上限
	Gold           int     `yaml:"gold"`           // 结束时的金币
	WavesCompleted int     `yaml:"wavesCompleted"` // 完成的波次数
	TotalWaves     int     `yaml:"totalWaves"`     // 总波次数
	EnemiesKilled  int     `yaml:"enemiesKilled"`  // 击杀数
	EnemiesLeaked  int     `yaml:"enemiesLeaked"`  // 漏怪数
	SimTime        float64 `yaml:"simTime"`        // 模拟时长（秒）
}

// BetterThan 判断 r 是否优于 other
// 比较顺序：胜利 > 剩余生命多 > 完成波次多 > 用时短
func (r LevelResult) BetterThan(other LevelResult) bool {
	if r.Victory != other.Victory {
		return r.Victory
	}
	if r.Lives != other.Lives {
		return r.Lives > other.Lives
	}
	if r.WavesCompleted != other.WavesCompleted {
		return r.WavesCompleted > other.WavesCompleted
	}
	return r.SimTime < other.SimTime
}

// 存储路径常量
const (
	progressObject   = "progress"
	progressIndex    = "index"
	runResultsObject = "runs"
)

// ProgressStore 关卡运行记录
// 负责保存每次运行的 LevelResult，并维护每个关卡的最佳记录
//
// gdataManager 为 nil 时进入降级模式：记录只保存在内存中
type ProgressStore struct {
	gdataManager *gdata.Manager

	runIDs  []string
	results map[string]LevelResult
	best    map[string]LevelResult
}

// NewProgressStore 创建运行记录存储
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存记录）
//
// 返回：
//   - *ProgressStore: 记录存储实例
//   - error: 始终为 nil，加载失败只记录警告
func NewProgressStore(gdataManager *gdata.Manager) (*ProgressStore, error) {
	ps := &ProgressStore{
		gdataManager: gdataManager,
		results:      make(map[string]LevelResult),
		best:         make(map[string]LevelResult),
	}

	if err := ps.Load(); err != nil {
		log.Printf("[ProgressStore] Warning: Failed to load progress: %v (starting empty)", err)
	}

	return ps, nil
}

// Load 从 gdata 加载所有运行记录，并重新计算每个关卡的最佳记录
func (ps *ProgressStore) Load() error {
	ps.runIDs = nil
	ps.results = make(map[string]LevelResult)
	ps.best = make(map[string]LevelResult)

	if ps.gdataManager == nil {
		return nil
	}
	if !ps.gdataManager.ObjectPropExists(progressObject, progressIndex) {
		return nil
	}

	data, err := ps.gdataManager.LoadObjectProp(progressObject, progressIndex)
	if err != nil {
		return fmt.Errorf("failed to load progress index: %w", err)
	}
	var runIDs []string
	if err := yaml.Unmarshal(data, &runIDs); err != nil {
		return fmt.Errorf("failed to unmarshal progress index: %w", err)
	}

	for _, id := range runIDs {
		data, err := ps.gdataManager.LoadObjectProp(runResultsObject, id)
		if err != nil {
			log.Printf("[ProgressStore] Warning: Failed to load run %s: %v", id, err)
			continue
		}
		var result LevelResult
		if err := yaml.Unmarshal(data, &result); err != nil {
			log.Printf("[ProgressStore] Warning: Failed to unmarshal run %s: %v", id, err)
			continue
		}
		ps.remember(result)
	}

	log.Printf("[ProgressStore] Loaded %d runs for %d levels", len(ps.runIDs), len(ps.best))
	return nil
}

// Record 保存一次运行结果
// RunID 为空时自动生成
//
// 返回：
//   - LevelResult: 实际保存的结果（含 RunID）
//   - bool: 是否刷新了该关卡的最佳记录
//   - error: 结果无效或持久化失败时返回错误（内存记录仍然生效）
func (ps *ProgressStore) Record(result LevelResult) (LevelResult, bool, error) {
	if result.LevelID == "" {
		return result, false, fmt.Errorf("level ID is required")
	}
	if result.RunID == "" {
		result.RunID = uuid.NewString()
	}
	if _, exists := ps.results[result.RunID]; exists {
		return result, false, fmt.Errorf("run %s is already recorded", result.RunID)
	}

	isBest := ps.remember(result)
	if isBest {
		log.Printf("[ProgressStore] New best for %s: victory=%v lives=%d/%d", result.LevelID, result.Victory, result.Lives, result.MaxLives)
	}

	if err := ps.save(result); err != nil {
		return result, isBest, err
	}
	return result, isBest, nil
}

// remember 更新内存中的记录，返回是否刷新了最佳记录
func (ps *ProgressStore) remember(result LevelResult) bool {
	ps.runIDs = append(ps.runIDs, result.RunID)
	ps.results[result.RunID] = result

	current, ok := ps.best[result.LevelID]
	if !ok || result.BetterThan(current) {
		ps.best[result.LevelID] = result
		return true
	}
	return false
}

// save 持久化单条记录并更新索引
func (ps *ProgressStore) save(result LevelResult) error {
	// 降级模式：无法持久化，但不报错
	if ps.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal run %s: %w", result.RunID, err)
	}
	if err := ps.gdataManager.SaveObjectProp(runResultsObject, result.RunID, data); err != nil {
		return fmt.Errorf("failed to save run %s: %w", result.RunID, err)
	}

	index, err := yaml.Marshal(ps.runIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal progress index: %w", err)
	}
	if err := ps.gdataManager.SaveObjectProp(progressObject, progressIndex, index); err != nil {
		return fmt.Errorf("failed to save progress index: %w", err)
	}
	return nil
}

// Result 按运行ID查询记录
func (ps *ProgressStore) Result(runID string) (LevelResult, bool) {
	r, ok := ps.results[runID]
	return r, ok
}

// Best 返回关卡的最佳记录
func (ps *ProgressStore) Best(levelID string) (LevelResult, bool) {
	r, ok := ps.best[levelID]
	return r, ok
}

// RunIDs 按记录顺序返回所有运行ID
func (ps *ProgressStore) RunIDs() []string {
	out := make([]string, len(ps.runIDs))
	copy(out, ps.runIDs)
	return out
}

// Len 返回记录数
func (ps *ProgressStore) Len() int {
	return len(ps.runIDs)
}
