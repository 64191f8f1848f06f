package systems

import (
	"log"

	"github.com/decker502/tdsim/pkg/ecs"
	"github.com/decker502/tdsim/pkg/entities"
	"github.com/decker502/tdsim/pkg/event"
	"github.com/decker502/tdsim/pkg/game"
)

// LifecycleSystem 敌人终结状态裁决与胜负判定
//
// 执行流程（每帧在伤害结算之后）：
//  1. 按生成顺序裁决终结状态：生命值为 0 → 死亡（发放奖励）；否则已到终点 → 漏怪（扣除生命）
//     死亡优先于漏怪，每个敌人只会裁决一次
//  2. 检查失败条件（优先级高于胜利）
//  3. 检查波次完成，发放波次奖励，最后一波完成时判定胜利
//
// 架构说明：
//   - 经济状态通过构造函数注入，不使用全局单例
//   - 被裁决的敌人只标记删除，帧末由驱动器统一回收
type LifecycleSystem struct {
	world      *entities.World
	economy    *game.Economy
	scheduler  *WaveSchedulerSystem
	dispatcher *event.Dispatcher
}

// NewLifecycleSystem 创建生命周期系统
func NewLifecycleSystem(w *entities.World, economy *game.Economy, scheduler *WaveSchedulerSystem, dispatcher *event.Dispatcher) *LifecycleSystem {
	return &LifecycleSystem{
		world:      w,
		economy:    economy,
		scheduler:  scheduler,
		dispatcher: dispatcher,
	}
}

// Update 裁决本帧的死亡与漏怪，并推进胜负状态
func (s *LifecycleSystem) Update() {
	if s.economy.IsEnded() {
		return
	}

	for _, id := range s.world.Enemies.IDs() {
		s.resolveEnemy(id)
		// 失败后停止裁决，剩余敌人由驱动器统一清场
		if s.economy.IsGameOver() {
			return
		}
	}

	idx, final, completed := s.scheduler.CompleteWaveIfCleared()
	if !completed {
		return
	}

	bonus := s.economy.WaveCompleted(idx, final)
	s.dispatcher.Publish(event.Event{
		Type:      event.WaveCompleted,
		WaveIndex: idx,
		Amount:    bonus,
	})
	log.Printf("[LifecycleSystem] Wave %d bonus: %d gold", idx+1, bonus)

	if final {
		s.dispatcher.Publish(event.Event{Type: event.AllWavesCompleted, WaveIndex: idx})
		if s.economy.IsVictorious() {
			s.dispatcher.Publish(event.Event{Type: event.Victory, WaveIndex: idx, Amount: s.economy.Lives()})
		}
	}
}

// resolveEnemy 裁决单个敌人的终结状态
func (s *LifecycleSystem) resolveEnemy(id ecs.EntityID) {
	enemy, _ := s.world.Enemies.Get(id)
	if enemy.Resolved {
		return
	}
	health, ok := s.world.Healths.Get(id)
	if !ok {
		return
	}

	switch {
	case health.IsDead():
		enemy.Resolved = true
		enemy.Active = false
		s.economy.EnemyDied(enemy.GoldReward)
		s.dispatcher.Publish(event.Event{
			Type:      event.EnemyDied,
			Entity:    id,
			Kind:      enemy.EnemyType,
			WaveIndex: enemy.WaveIndex,
			Amount:    enemy.GoldReward,
		})

	case enemy.ReachedEnd:
		enemy.Resolved = true
		enemy.Active = false
		gameOver := s.economy.EnemyLeaked(enemy.DamageToBase)
		s.dispatcher.Publish(event.Event{
			Type:      event.EnemyLeaked,
			Entity:    id,
			Kind:      enemy.EnemyType,
			WaveIndex: enemy.WaveIndex,
			Amount:    enemy.DamageToBase,
		})
		log.Printf("[LifecycleSystem] Enemy %d leaked for %d, lives left: %d", id, enemy.DamageToBase, s.economy.Lives())
		if gameOver {
			s.dispatcher.Publish(event.Event{Type: event.GameOver, WaveIndex: enemy.WaveIndex})
		}

	default:
		return
	}

	s.world.EM.DestroyEntity(id)
	s.scheduler.OnEnemyRemoved()
}
