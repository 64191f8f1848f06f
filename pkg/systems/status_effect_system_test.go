package systems

import (
	"testing"

	"github.com/decker502/tdsim/pkg/config"
	"github.com/decker502/tdsim/pkg/entities"
	"github.com/decker502/tdsim/pkg/types"
	"github.com/decker502/tdsim/pkg/utils"
)

// TestApplySlow_StrongestWins 新减速倍率严格更低时才替换，否则保留原效果与剩余时间
func TestApplySlow_StrongestWins(t *testing.T) {
	tests := []struct {
		name          string
		first         float64 // 第一次减速比例
		second        float64 // 第二次减速比例
		wantReplaced  bool
		wantMult      float64
		wantRemaining float64
	}{
		{"stronger replaces", 0.2, 0.5, true, 0.5, 4},
		{"weaker ignored", 0.5, 0.2, false, 0.5, 1.5},
		{"equal ignored keeps duration", 0.3, 0.3, false, 0.7, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := entities.NewWorld()
			id := testEnemy(t, w, types.Vec2{}, config.EnemyStats{Speed: 2})

			if !ApplySlow(w, id, tt.first, 2) {
				t.Fatal("first slow should apply")
			}
			// 让第一次减速消耗一部分时间
			NewStatusEffectSystem(w).Update(0.5)

			if got := ApplySlow(w, id, tt.second, 4); got != tt.wantReplaced {
				t.Errorf("ApplySlow() = %v, want %v", got, tt.wantReplaced)
			}
			slow, _ := w.Slows.Get(id)
			if tt.wantReplaced {
				if !utils.ApproxEqual(slow.Multiplier, 1-tt.second, 1e-9) || slow.Remaining != tt.wantRemaining {
					t.Errorf("slow = %+v", slow)
				}
			} else {
				if !utils.ApproxEqual(slow.Multiplier, 1-tt.first, 1e-9) || !utils.ApproxEqual(slow.Remaining, tt.wantRemaining, 1e-9) {
					t.Errorf("slow = %+v, want untouched", slow)
				}
			}
		})
	}
}

func TestApplySlow_IgnoresNonPositive(t *testing.T) {
	w := entities.NewWorld()
	id := testEnemy(t, w, types.Vec2{}, config.EnemyStats{})

	if ApplySlow(w, id, 0, 3) || ApplySlow(w, id, 0.3, 0) {
		t.Error("zero percentage or duration should not slow")
	}
	if w.Slows.Has(id) {
		t.Error("no slow component expected")
	}
}

// TestSlow_ExpiresExactlyAfterDuration 30% 减速持续 3 秒：速度 2 的敌人 3 秒内以 1.4 移动，到期恢复 2.0
func TestSlow_ExpiresExactlyAfterDuration(t *testing.T) {
	w := entities.NewWorld()
	stats := &config.EnemyStats{MaxHealth: 100, Speed: 2}
	path := []types.Vec2{{X: 0, Y: 0}, {X: 100, Y: 0}}
	id, err := entities.NewEnemyEntity(w, "grunt", stats, path, 0)
	if err != nil {
		t.Fatalf("NewEnemyEntity() failed: %v", err)
	}

	movement := NewPathFollowSystem(w, path, config.DefaultWaypointEpsilon)
	status := NewStatusEffectSystem(w)
	ApplySlow(w, id, 0.3, 3)

	enemy, _ := w.Enemies.Get(id)
	const dt = 0.1
	for i := 1; i <= 30; i++ {
		if !utils.ApproxEqual(enemy.CurrentSpeed(), 1.4, 1e-9) {
			t.Fatalf("tick %d: speed = %v, want 1.4", i, enemy.CurrentSpeed())
		}
		movement.Update(dt)
		status.Update(dt)
	}

	// 3 秒后恰好恢复
	if enemy.CurrentSpeed() != 2.0 {
		t.Errorf("speed after expiry = %v, want 2.0", enemy.CurrentSpeed())
	}
	if w.Slows.Has(id) {
		t.Error("slow component should be removed at expiry")
	}
	pos, _ := w.Positions.Get(id)
	if !utils.ApproxEqual(pos.Pos.X, 4.2, 1e-6) {
		t.Errorf("distance covered while slowed = %v, want 4.2", pos.Pos.X)
	}

	movement.Update(dt)
	if !utils.ApproxEqual(pos.Pos.X, 4.4, 1e-6) {
		t.Errorf("position after one unslowed tick = %v, want 4.4", pos.Pos.X)
	}
}
