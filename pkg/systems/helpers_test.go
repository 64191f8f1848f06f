package systems

import (
	"testing"

	"github.com/decker502/tdsim/pkg/config"
	"github.com/decker502/tdsim/pkg/ecs"
	"github.com/decker502/tdsim/pkg/entities"
	"github.com/decker502/tdsim/pkg/types"
)

// testEnemy 创建测试敌人并放置到指定位置
func testEnemy(t *testing.T, w *entities.World, pos types.Vec2, stats config.EnemyStats) ecs.EntityID {
	t.Helper()
	if stats.MaxHealth == 0 {
		stats.MaxHealth = 100
	}
	id, err := entities.NewEnemyEntity(w, "grunt", &stats, nil, 0)
	if err != nil {
		t.Fatalf("NewEnemyEntity() failed: %v", err)
	}
	p, _ := w.Positions.Get(id)
	p.Pos = pos
	return id
}

// testTower 创建测试防御塔
func testTower(t *testing.T, w *entities.World, pos types.Vec2, stats config.TowerStats) ecs.EntityID {
	t.Helper()
	if stats.FireRate == 0 {
		stats.FireRate = 1
	}
	if stats.DamageType == "" {
		stats.DamageType = types.DamagePhysical
	}
	if stats.MaxUpgradeLevel == 0 {
		stats.MaxUpgradeLevel = 1
	}
	id, err := entities.NewTowerEntity(w, "test", &stats, pos)
	if err != nil {
		t.Fatalf("NewTowerEntity() failed: %v", err)
	}
	return id
}

func healthOf(w *entities.World, id ecs.EntityID) float64 {
	h, ok := w.Healths.Get(id)
	if !ok {
		return -1
	}
	return h.CurrentHealth
}
