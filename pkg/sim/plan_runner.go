package sim

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/decker502/tdsim/pkg/config"
	"github.com/decker502/tdsim/pkg/ecs"
	"github.com/decker502/tdsim/pkg/game"
	"github.com/decker502/tdsim/pkg/types"
	"github.com/decker502/tdsim/pkg/utils"
)

// DefaultRunTimeLimit 建造计划未设置 timeLimit 时的模拟时长上限（秒）
const DefaultRunTimeLimit = 3600.0

// ctxCheckInterval 每隔多少帧检查一次 context 是否被取消
const ctxCheckInterval = 600

// RejectedAction 执行失败的计划动作
type RejectedAction struct {
	At     float64 // 实际执行时间
	Action string
	Label  string
	Reason string
}

// RunResult 一次无界面运行的结果
type RunResult struct {
	RunID   string
	LevelID string
	Plan    string

	Victory  bool
	GameOver bool
	TimedOut bool

	SimTime float64
	Ticks   int

	Gold           int
	Lives          int
	MaxLives       int
	WavesCompleted int
	TotalWaves     int
	EnemiesKilled  int
	EnemiesLeaked  int
	TowersBuilt    int

	Rejected []RejectedAction
}

// LevelResult 转换为运行记录存储使用的结构
func (r RunResult) LevelResult() game.LevelResult {
	return game.LevelResult{
		RunID:          r.RunID,
		LevelID:        r.LevelID,
		Plan:           r.Plan,
		Victory:        r.Victory,
		GameOver:       r.GameOver,
		Lives:          r.Lives,
		MaxLives:       r.MaxLives,
		Gold:           r.Gold,
		WavesCompleted: r.WavesCompleted,
		TotalWaves:     r.TotalWaves,
		EnemiesKilled:  r.EnemiesKilled,
		EnemiesLeaked:  r.EnemiesLeaked,
		SimTime:        r.SimTime,
	}
}

// PlanRunner 按建造计划驱动模拟直到结束
//
// 每帧开始前执行所有到期（at <= 当前模拟时间）的动作，然后以固定步长 Tick。
// 运行在胜利、失败或达到时长上限时结束。
type PlanRunner struct {
	plan     *config.BuildPlan
	planName string
	step     float64
}

// NewPlanRunner 创建计划执行器
//
// 参数：
//   - plan: 建造计划，为 nil 时只观察模拟（不做任何操作）
//   - planName: 计划名称（记录到结果中）
//   - step: 固定步长（秒），<= 0 时使用关卡的 simulation.fixedStep
func NewPlanRunner(plan *config.BuildPlan, planName string, step float64) *PlanRunner {
	if plan == nil {
		plan = &config.BuildPlan{}
	}
	return &PlanRunner{plan: plan, planName: planName, step: step}
}

// Run 执行计划，context 被取消时返回已运行部分的结果和 ctx.Err()
func (r *PlanRunner) Run(ctx context.Context, s *Simulation) (RunResult, error) {
	if s == nil {
		return RunResult{}, fmt.Errorf("simulation cannot be nil")
	}
	if s.TimeScale() == 0 {
		return RunResult{}, fmt.Errorf("simulation time scale is 0, run would never finish")
	}
	s.SetPaused(false)

	step := r.step
	if step <= 0 {
		step = s.Level().Simulation.FixedStep
	}
	limit := r.plan.TimeLimit
	if limit <= 0 {
		limit = DefaultRunTimeLimit
	}

	result := RunResult{
		RunID:   uuid.NewString(),
		LevelID: s.Level().ID,
		Plan:    r.planName,
	}
	labels := make(map[string]ecs.EntityID)
	next := 0

	log.Printf("[PlanRunner] Run %s: level %s, plan %q, %d actions", result.RunID, result.LevelID, r.planName, len(r.plan.Actions))

	s.Start()
	var runErr error
	for !s.IsEnded() {
		for next < len(r.plan.Actions) && r.plan.Actions[next].At <= s.Time()+utils.FloatEpsilon {
			if rej := r.execute(s, r.plan.Actions[next], labels); rej != nil {
				result.Rejected = append(result.Rejected, *rej)
			}
			next++
		}

		if s.Time() >= limit-utils.FloatEpsilon {
			result.TimedOut = true
			break
		}
		if s.Ticks()%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				runErr = err
				break
			}
		}
		s.Tick(step)
	}

	result.Victory = s.IsVictorious()
	result.GameOver = s.IsGameOver()
	result.SimTime = s.Time()
	result.Ticks = s.Ticks()
	result.Gold = s.Gold()
	result.Lives = s.Lives()
	result.MaxLives = s.MaxLives()
	result.WavesCompleted = s.WavesCompleted()
	result.TotalWaves = s.TotalWaves()
	result.EnemiesKilled = s.enemiesKilled
	result.EnemiesLeaked = s.enemiesLeaked
	result.TowersBuilt = s.towersBuilt

	log.Printf("[PlanRunner] Run %s finished: victory=%v gameOver=%v timedOut=%v t=%.2fs lives=%d/%d",
		result.RunID, result.Victory, result.GameOver, result.TimedOut, result.SimTime, result.Lives, result.MaxLives)
	return result, runErr
}

// execute 执行单个动作，失败时返回拒绝记录
func (r *PlanRunner) execute(s *Simulation, a config.PlanAction, labels map[string]ecs.EntityID) *RejectedAction {
	var err error
	switch a.Action {
	case config.ActionPlace:
		var id ecs.EntityID
		id, err = s.PlaceTower(types.Vec2{X: a.X, Y: a.Y}, a.Tower)
		if err == nil && a.Label != "" {
			labels[a.Label] = id
		}
	case config.ActionUpgrade:
		id, ok := labels[a.Label]
		if !ok {
			err = fmt.Errorf("%w: label %q was never placed", ErrUnknownTower, a.Label)
			break
		}
		err = s.UpgradeTower(id)
	case config.ActionSell:
		id, ok := labels[a.Label]
		if !ok {
			err = fmt.Errorf("%w: label %q was never placed", ErrUnknownTower, a.Label)
			break
		}
		_, err = s.SellTower(id)
		if err == nil {
			delete(labels, a.Label)
		}
	case config.ActionCallWave:
		if !s.CallNextWave() {
			err = errors.New("no wave countdown to skip")
		}
	default:
		err = fmt.Errorf("unknown action %q", a.Action)
	}

	if err == nil {
		return nil
	}
	log.Printf("[PlanRunner] Action %s %q at t=%.2fs rejected: %v", a.Action, a.Label, s.Time(), err)
	return &RejectedAction{At: s.Time(), Action: a.Action, Label: a.Label, Reason: err.Error()}
}
