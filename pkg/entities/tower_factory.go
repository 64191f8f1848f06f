package entities

import (
	"fmt"

	"github.com/decker502/tdsim/pkg/components"
	"github.com/decker502/tdsim/pkg/config"
	"github.com/decker502/tdsim/pkg/ecs"
	"github.com/decker502/tdsim/pkg/types"
)

// NewTowerEntity 创建防御塔实体（等级 1，可立即开火）
// 费用检查与扣除由调用方负责
func NewTowerEntity(w *World, towerType string, stats *config.TowerStats, pos types.Vec2) (ecs.EntityID, error) {
	if w == nil {
		return 0, fmt.Errorf("world cannot be nil")
	}
	if stats == nil {
		return 0, fmt.Errorf("stats for tower type %q cannot be nil", towerType)
	}

	entityID := w.EM.CreateEntity()

	w.Positions.Add(entityID, &components.PositionComponent{Pos: pos})
	w.Towers.Add(entityID, &components.TowerComponent{
		TowerType:       towerType,
		Range:           stats.Range,
		FireRate:        stats.FireRate,
		Damage:          stats.Damage,
		DamageType:      stats.DamageType,
		SplashRadius:    stats.SplashRadius,
		SlowPercentage:  stats.SlowPercentage,
		SlowDuration:    stats.SlowDuration,
		ProjectileSpeed: stats.ProjectileSpeed,
		UpgradeLevel:    1,
		MaxUpgradeLevel: stats.MaxUpgradeLevel,
		UpgradeCost:     stats.UpgradeCost,
		Invested:        stats.Cost,
	})
	w.Targets.Add(entityID, &components.TargetComponent{Target: ecs.InvalidEntity})

	return entityID, nil
}
