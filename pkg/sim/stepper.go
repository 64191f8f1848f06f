package sim

import (
	"github.com/decker502/tdsim/pkg/utils"
)

// Ticker 可以按固定步长推进的模拟
type Ticker interface {
	Tick(deltaTime float64)
}

// Stepper 固定步长驱动器
//
// 渲染帧的时长不固定，Stepper 把真实时间累积起来，每凑满一个 step 就执行一次 Tick，
// 剩余的小数部分留到下一帧。单帧时长超过 maxFrame 时截断，避免卡顿后一次追赶过多帧。
type Stepper struct {
	ticker      Ticker
	step        float64
	maxFrame    float64
	accumulator float64
}

// NewStepper 创建固定步长驱动器
//
// 参数：
//   - ticker: 被驱动的模拟
//   - step: 固定步长（秒），<= 0 时使用 1/60
//   - maxFrame: 单帧最多计入的真实时间（秒），<= 0 表示不限制
func NewStepper(ticker Ticker, step, maxFrame float64) *Stepper {
	if step <= 0 {
		step = 1.0 / 60.0
	}
	return &Stepper{
		ticker:   ticker,
		step:     step,
		maxFrame: maxFrame,
	}
}

// NewLevelStepper 按关卡 simulation 段的 fixedStep 与 maxDeltaTime 创建驱动器
func NewLevelStepper(s *Simulation) *Stepper {
	cfg := s.Level().Simulation
	return NewStepper(s, cfg.FixedStep, cfg.MaxDeltaTime)
}

// Advance 计入 realDelta 秒的真实时间，返回本次执行的 Tick 次数
func (s *Stepper) Advance(realDelta float64) int {
	if realDelta <= 0 {
		return 0
	}
	if s.maxFrame > 0 && realDelta > s.maxFrame {
		realDelta = s.maxFrame
	}
	s.accumulator += realDelta

	ticks := 0
	for s.accumulator >= s.step-utils.FloatEpsilon {
		s.ticker.Tick(s.step)
		s.accumulator -= s.step
		ticks++
	}
	if s.accumulator < 0 {
		s.accumulator = 0
	}
	return ticks
}

// Alpha 返回累积余量占一个步长的比例 [0,1)，供渲染层插值
func (s *Stepper) Alpha() float64 {
	return utils.Clamp01(s.accumulator / s.step)
}

// Step 返回固定步长
func (s *Stepper) Step() float64 {
	return s.step
}

// Reset 丢弃累积的时间
func (s *Stepper) Reset() {
	s.accumulator = 0
}
