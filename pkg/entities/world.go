package entities

import (
	"github.com/decker502/tdsim/pkg/components"
	"github.com/decker502/tdsim/pkg/ecs"
)

// World 汇总实体管理器与各类组件存储，是所有系统共享的实体注册表
//
// 各存储按实体加入的先后顺序迭代；敌人在生成时加入，因此
// Enemies 的迭代顺序就是生成顺序。
type World struct {
	EM *ecs.EntityManager

	Positions   *ecs.Store[*components.PositionComponent]
	Healths     *ecs.Store[*components.HealthComponent]
	Enemies     *ecs.Store[*components.EnemyComponent]
	Paths       *ecs.Store[*components.PathFollowerComponent]
	Slows       *ecs.Store[*components.SlowEffectComponent]
	Towers      *ecs.Store[*components.TowerComponent]
	Targets     *ecs.Store[*components.TargetComponent]
	Projectiles *ecs.Store[*components.ProjectileComponent]

	nextSpawnSeq uint64
}

// NewWorld 创建空的实体注册表
func NewWorld() *World {
	em := ecs.NewEntityManager()
	return &World{
		EM:          em,
		Positions:   ecs.NewStore[*components.PositionComponent](em),
		Healths:     ecs.NewStore[*components.HealthComponent](em),
		Enemies:     ecs.NewStore[*components.EnemyComponent](em),
		Paths:       ecs.NewStore[*components.PathFollowerComponent](em),
		Slows:       ecs.NewStore[*components.SlowEffectComponent](em),
		Towers:      ecs.NewStore[*components.TowerComponent](em),
		Targets:     ecs.NewStore[*components.TargetComponent](em),
		Projectiles: ecs.NewStore[*components.ProjectileComponent](em),
	}
}

// IsLiveEnemy 敌人是否仍可被索敌和攻击
// 存活、在场、尚未裁决终结状态且生命值大于 0
func (w *World) IsLiveEnemy(id ecs.EntityID) bool {
	if !w.EM.IsAlive(id) {
		return false
	}
	enemy, ok := w.Enemies.Get(id)
	if !ok || !enemy.Active || enemy.Resolved {
		return false
	}
	health, ok := w.Healths.Get(id)
	return ok && !health.IsDead()
}

// LiveEnemies 按生成顺序返回所有可被攻击的敌人
func (w *World) LiveEnemies() []ecs.EntityID {
	result := make([]ecs.EntityID, 0, w.Enemies.Len())
	w.Enemies.Each(func(id ecs.EntityID, _ *components.EnemyComponent) bool {
		if w.IsLiveEnemy(id) {
			result = append(result, id)
		}
		return true
	})
	return result
}

// Clear 立即清空所有实体（停止并清场）
func (w *World) Clear() {
	w.EM.Clear()
}
