package entities

import (
	"fmt"
	"log"

	"github.com/decker502/tdsim/pkg/components"
	"github.com/decker502/tdsim/pkg/config"
	"github.com/decker502/tdsim/pkg/ecs"
	"github.com/decker502/tdsim/pkg/types"
)

// NewEnemyEntity 创建敌人实体
// 敌人出生在路径的第一个路径点，朝第二个路径点前进；
// 路径为空时出生在原点且永远不会移动
//
// 参数:
//   - w: 实体注册表
//   - enemyType: 敌人类型ID
//   - stats: 敌人属性
//   - path: 关卡路径
//   - waveIndex: 所属波次
//
// 返回:
//   - ecs.EntityID: 创建的敌人实体ID，如果失败返回 0
//   - error: 如果创建失败返回错误信息
func NewEnemyEntity(w *World, enemyType string, stats *config.EnemyStats, path []types.Vec2, waveIndex int) (ecs.EntityID, error) {
	if w == nil {
		return 0, fmt.Errorf("world cannot be nil")
	}
	if stats == nil {
		return 0, fmt.Errorf("stats for enemy type %q cannot be nil", enemyType)
	}

	var spawnPos types.Vec2
	if len(path) > 0 {
		spawnPos = path[0]
	}

	// 属性表在关卡内不可变，复制抗性以免实体间共享
	resistances := make(map[types.DamageType]float64, len(stats.Resistances))
	for k, v := range stats.Resistances {
		resistances[k] = v
	}

	entityID := w.EM.CreateEntity()
	w.nextSpawnSeq++

	w.Positions.Add(entityID, &components.PositionComponent{Pos: spawnPos})
	w.Healths.Add(entityID, &components.HealthComponent{
		CurrentHealth: stats.MaxHealth,
		MaxHealth:     stats.MaxHealth,
	})
	w.Enemies.Add(entityID, &components.EnemyComponent{
		EnemyType:       enemyType,
		BaseSpeed:       stats.Speed,
		SpeedMultiplier: 1.0,
		Resistances:     resistances,
		GoldReward:      stats.GoldReward,
		DamageToBase:    stats.DamageToBase,
		WaveIndex:       waveIndex,
		SpawnSeq:        w.nextSpawnSeq,
		Active:          true,
	})
	w.Paths.Add(entityID, &components.PathFollowerComponent{WaypointIndex: 1})

	log.Printf("[EnemyFactory] Spawned %s (id=%d, wave=%d) at (%.2f, %.2f)",
		enemyType, entityID, waveIndex, spawnPos.X, spawnPos.Y)

	return entityID, nil
}
