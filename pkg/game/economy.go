package game

import (
	"log"

	"github.com/decker502/tdsim/pkg/config"
)

// Economy 金币、基地生命与胜负状态
//
// 每个模拟实例持有一个 Economy，由驱动器注入到需要它的系统中。
// 胜利与失败都是终结状态：一旦进入，任何金币或生命的修改都会被拒绝。
type Economy struct {
	gold     int
	lives    int
	maxLives int

	wavesCompleted int
	isGameOver     bool
	isVictorious   bool

	bonus config.WaveBonusConfig
}

// NewEconomy 创建经济状态
//
// 参数：
//   - initialGold: 初始金币
//   - lives: 基地生命（同时作为上限）
//   - bonus: 波次完成奖励策略
func NewEconomy(initialGold, lives int, bonus config.WaveBonusConfig) *Economy {
	if initialGold < 0 {
		initialGold = 0
	}
	if lives < 0 {
		lives = 0
	}
	return &Economy{
		gold:     initialGold,
		lives:    lives,
		maxLives: lives,
		bonus:    bonus,
	}
}

// AddGold 增加金币（无上限）
// 终结状态下或 amount <= 0 时不做任何修改
func (e *Economy) AddGold(amount int) {
	if e.IsEnded() || amount <= 0 {
		return
	}
	e.gold += amount
}

// SpendGold 扣除金币，如果金币不足返回 false
// 只有当金币充足时才会扣除，否则不做任何修改
func (e *Economy) SpendGold(amount int) bool {
	if e.IsEnded() || amount < 0 {
		return false
	}
	if e.gold < amount {
		return false
	}
	e.gold -= amount
	return true
}

// EnemyDied 敌人被击杀，发放奖励
func (e *Economy) EnemyDied(reward int) {
	e.AddGold(reward)
}

// EnemyLeaked 敌人漏到终点，扣除基地生命（最低为 0）
// 生命归零时进入失败状态，返回 true 表示本次调用触发了失败（只会发生一次）
func (e *Economy) EnemyLeaked(damageToBase int) bool {
	if e.IsEnded() {
		return false
	}
	if damageToBase > 0 {
		e.lives -= damageToBase
		if e.lives < 0 {
			e.lives = 0
		}
	}
	if e.lives == 0 {
		e.isGameOver = true
		log.Printf("[Economy] Base destroyed, game over")
		return true
	}
	return false
}

// WaveCompleted 波次完成，发放波次奖励
// final 表示这是最后一波且场上没有剩余敌人，此时进入胜利状态（只会发生一次）
// 返回实际发放的奖励金币
func (e *Economy) WaveCompleted(waveIndex int, final bool) int {
	if e.IsEnded() {
		return 0
	}
	bonus := e.bonus.Bonus(waveIndex)
	e.AddGold(bonus)
	e.wavesCompleted++

	if final {
		e.isVictorious = true
		log.Printf("[Economy] All waves cleared with %d/%d lives, victory", e.lives, e.maxLives)
	}
	return bonus
}

// Gold 返回当前金币
func (e *Economy) Gold() int { return e.gold }

// Lives 返回当前基地生命
func (e *Economy) Lives() int { return e.lives }

// MaxLives 返回基地生命上限
func (e *Economy) MaxLives() int { return e.maxLives }

// WavesCompleted 返回已完成的波次数
func (e *Economy) WavesCompleted() int { return e.wavesCompleted }

// IsGameOver 是否已失败
func (e *Economy) IsGameOver() bool { return e.isGameOver }

// IsVictorious 是否已胜利
func (e *Economy) IsVictorious() bool { return e.isVictorious }

// IsEnded 是否处于终结状态
func (e *Economy) IsEnded() bool { return e.isGameOver || e.isVictorious }
