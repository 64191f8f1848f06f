package systems

import (
	"testing"

	"github.com/decker502/tdsim/pkg/config"
	"github.com/decker502/tdsim/pkg/ecs"
	"github.com/decker502/tdsim/pkg/entities"
	"github.com/decker502/tdsim/pkg/types"
)

func targetOf(w *entities.World, towerID ecs.EntityID) ecs.EntityID {
	tc, _ := w.Targets.Get(towerID)
	return tc.Target
}

// TestTargetingSystem_OutOfRange 射程 5、敌人距离 6：不持有目标，也不开火
func TestTargetingSystem_OutOfRange(t *testing.T) {
	w := entities.NewWorld()
	tower := testTower(t, w, types.Vec2{}, config.TowerStats{Range: 5, Damage: 10})
	enemy := testEnemy(t, w, types.Vec2{X: 6}, config.EnemyStats{})

	targeting := NewTargetingSystem(w, 0.5)
	combat := NewCombatSystem(w, targeting, 5)
	for i := 0; i < 20; i++ {
		targeting.Update(0.1)
		combat.Update(0.1)
	}

	if targetOf(w, tower) != ecs.InvalidEntity {
		t.Errorf("tower should hold no target, got %d", targetOf(w, tower))
	}
	tc, _ := w.Towers.Get(tower)
	if tc.ShotsFired != 0 || healthOf(w, enemy) != 100 {
		t.Errorf("tower fired %d shots, enemy health %v", tc.ShotsFired, healthOf(w, enemy))
	}
}

func TestTargetingSystem_RangeBoundaryIsInclusive(t *testing.T) {
	w := entities.NewWorld()
	tower := testTower(t, w, types.Vec2{}, config.TowerStats{Range: 5})
	enemy := testEnemy(t, w, types.Vec2{X: 3, Y: 4}, config.EnemyStats{})

	NewTargetingSystem(w, 0.5).Update(0.1)

	if targetOf(w, tower) != enemy {
		t.Errorf("enemy at exactly range should be targeted")
	}
}

func TestTargetingSystem_PicksNearest(t *testing.T) {
	w := entities.NewWorld()
	tower := testTower(t, w, types.Vec2{}, config.TowerStats{Range: 10})
	testEnemy(t, w, types.Vec2{X: 4}, config.EnemyStats{})
	nearest := testEnemy(t, w, types.Vec2{X: 0, Y: 2}, config.EnemyStats{})
	testEnemy(t, w, types.Vec2{X: 9}, config.EnemyStats{})

	NewTargetingSystem(w, 0.5).Update(0.1)

	if targetOf(w, tower) != nearest {
		t.Errorf("target = %d, want nearest %d", targetOf(w, tower), nearest)
	}
}

// TestTargetingSystem_TieGoesToFirstSpawned 距离相同时先生成的敌人优先
func TestTargetingSystem_TieGoesToFirstSpawned(t *testing.T) {
	w := entities.NewWorld()
	tower := testTower(t, w, types.Vec2{}, config.TowerStats{Range: 10})
	first := testEnemy(t, w, types.Vec2{X: 3}, config.EnemyStats{})
	testEnemy(t, w, types.Vec2{Y: 3}, config.EnemyStats{})
	testEnemy(t, w, types.Vec2{X: -3}, config.EnemyStats{})

	NewTargetingSystem(w, 0.5).Update(0.1)

	if targetOf(w, tower) != first {
		t.Errorf("target = %d, want first spawned %d", targetOf(w, tower), first)
	}
}

func TestFindNearestEnemy_TieUsesSpawnSeq(t *testing.T) {
	w := entities.NewWorld()
	early := testEnemy(t, w, types.Vec2{X: 3}, config.EnemyStats{})
	late := testEnemy(t, w, types.Vec2{Y: 3}, config.EnemyStats{})

	// 存储顺序与生成序号相反时仍以生成序号为准
	e1, _ := w.Enemies.Get(early)
	e2, _ := w.Enemies.Get(late)
	e1.SpawnSeq, e2.SpawnSeq = e2.SpawnSeq, e1.SpawnSeq

	if got := FindNearestEnemy(w, types.Vec2{}, 10); got != late {
		t.Errorf("FindNearestEnemy() = %d, want lower spawn sequence %d", got, late)
	}
}

func TestFindNearestEnemy_RoundingNoiseIsATie(t *testing.T) {
	w := entities.NewWorld()
	first := testEnemy(t, w, types.Vec2{X: 3}, config.EnemyStats{})
	testEnemy(t, w, types.Vec2{X: -3 + 1e-12}, config.EnemyStats{})

	if got := FindNearestEnemy(w, types.Vec2{}, 10); got != first {
		t.Errorf("FindNearestEnemy() = %d, want first spawned %d", got, first)
	}
}

func TestTargetingSystem_InvalidTargetReacquiresImmediately(t *testing.T) {
	tests := []struct {
		name       string
		invalidate func(w *entities.World, id ecs.EntityID)
	}{
		{"moved out of range", func(w *entities.World, id ecs.EntityID) {
			p, _ := w.Positions.Get(id)
			p.Pos = types.Vec2{X: 50}
		}},
		{"killed", func(w *entities.World, id ecs.EntityID) {
			h, _ := w.Healths.Get(id)
			h.CurrentHealth = 0
		}},
		{"resolved", func(w *entities.World, id ecs.EntityID) {
			e, _ := w.Enemies.Get(id)
			e.Resolved = true
		}},
		{"recycled", func(w *entities.World, id ecs.EntityID) {
			w.EM.DestroyEntity(id)
			w.EM.RemoveMarkedEntities()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := entities.NewWorld()
			tower := testTower(t, w, types.Vec2{}, config.TowerStats{Range: 5})
			near := testEnemy(t, w, types.Vec2{X: 1}, config.EnemyStats{})
			backup := testEnemy(t, w, types.Vec2{X: 4}, config.EnemyStats{})

			targeting := NewTargetingSystem(w, 10)
			targeting.Update(0.1)
			if targetOf(w, tower) != near {
				t.Fatalf("initial target = %d, want %d", targetOf(w, tower), near)
			}

			tt.invalidate(w, near)
			targeting.Update(0.1)

			if targetOf(w, tower) != backup {
				t.Errorf("target = %d, want backup %d", targetOf(w, tower), backup)
			}
		})
	}
}

func TestTargetingSystem_PeriodicRetarget(t *testing.T) {
	w := entities.NewWorld()
	tower := testTower(t, w, types.Vec2{}, config.TowerStats{Range: 10})
	far := testEnemy(t, w, types.Vec2{X: 4}, config.EnemyStats{})

	targeting := NewTargetingSystem(w, 0.5)
	targeting.Update(0.25)
	if targetOf(w, tower) != far {
		t.Fatalf("initial target = %d, want %d", targetOf(w, tower), far)
	}

	closer := testEnemy(t, w, types.Vec2{X: 1}, config.EnemyStats{})

	// 周期未到：保持原目标
	targeting.Update(0.25)
	if targetOf(w, tower) != far {
		t.Errorf("target switched before retarget interval")
	}

	// 周期到达：切换到更近的敌人
	targeting.Update(0.25)
	if targetOf(w, tower) != closer {
		t.Errorf("target = %d, want closer %d after interval", targetOf(w, tower), closer)
	}
}

func TestTargetingSystem_NoTargetWaitsForPeriodicScan(t *testing.T) {
	w := entities.NewWorld()
	tower := testTower(t, w, types.Vec2{}, config.TowerStats{Range: 5})
	targeting := NewTargetingSystem(w, 0.5)

	targeting.Update(0.25) // 空场扫描，计时重置为 0.5
	enemy := testEnemy(t, w, types.Vec2{X: 1}, config.EnemyStats{})

	targeting.Update(0.25)
	if targetOf(w, tower) != ecs.InvalidEntity {
		t.Errorf("tower without target should wait for the periodic scan")
	}
	targeting.Update(0.25)
	if targetOf(w, tower) != enemy {
		t.Errorf("periodic scan should find the enemy")
	}
}
