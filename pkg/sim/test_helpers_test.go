package sim

import (
	"testing"

	"github.com/decker502/tdsim/pkg/config"
	"github.com/decker502/tdsim/pkg/event"
)

const testTowersYAML = `
towers:
  arrow:
    cost: 50
    range: 5
    fireRate: 2
    damage: 10
    maxUpgradeLevel: 3
    upgradeCost: 40
    upgrade:
      damageMultiplier: 1.5
      rangeMultiplier: 1.2
      fireRateMultiplier: 1.0
      costMultiplier: 1.5
  cannon:
    cost: 80
    range: 4
    fireRate: 0.5
    damage: 30
    splashRadius: 2
    projectileSpeed: 10
  frost:
    cost: 60
    range: 4
    fireRate: 1
    damage: 2
    damageType: frost
    slowPercentage: 0.5
    slowDuration: 2
`

const testEnemiesYAML = `
enemies:
  grunt:
    maxHealth: 30
    speed: 2
    goldReward: 5
    damageToBase: 1
  tank:
    maxHealth: 1000
    speed: 1
    goldReward: 20
    damageToBase: 5
`

// 3 个 grunt，路径沿 x 轴长 10
const testLevelYAML = `
id: test-run
name: Test Run
path:
  - {x: 0, y: 0}
  - {x: 10, y: 0}
waves:
  - spawnInterval: 1
    groups:
      - {enemy: grunt, count: 3}
`

// 与 testLevelYAML 相同，但带建造网格：第 1 行被路径占用
const testGridLevelYAML = `
id: test-grid
name: Test Grid
path:
  - {x: 0, y: 1.5}
  - {x: 10, y: 1.5}
grid:
  origin: {x: 0, y: 0}
  cellSize: 1
  cols: 10
  rows: 3
waves:
  - spawnInterval: 1
    groups:
      - {enemy: grunt, count: 3}
`

// 3 个 tank，生命 10：第二个漏怪时失败
const testDefeatLevelYAML = `
id: test-defeat
name: Test Defeat
lives: 10
path:
  - {x: 0, y: 0}
  - {x: 10, y: 0}
waves:
  - spawnInterval: 1
    groups:
      - {enemy: tank, count: 3}
`

func newTestSim(t *testing.T, levelYAML string) *Simulation {
	t.Helper()
	level, err := config.ParseLevelConfig([]byte(levelYAML))
	if err != nil {
		t.Fatalf("ParseLevelConfig() error: %v", err)
	}
	towers, err := config.ParseTowerTable([]byte(testTowersYAML))
	if err != nil {
		t.Fatalf("ParseTowerTable() error: %v", err)
	}
	enemies, err := config.ParseEnemyTable([]byte(testEnemiesYAML))
	if err != nil {
		t.Fatalf("ParseEnemyTable() error: %v", err)
	}
	s, err := New(level, towers, enemies, Options{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s
}

// recordEvents 记录模拟分发的所有事件
func recordEvents(s *Simulation) *[]event.Event {
	var events []event.Event
	s.SubscribeAll(func(e event.Event) { events = append(events, e) })
	return &events
}

func countEvents(events []event.Event, eventType event.EventType) int {
	n := 0
	for _, e := range events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

// runUntilEnded 以 1/60 秒步长推进直到游戏结束或达到 maxTicks
func runUntilEnded(t *testing.T, s *Simulation, maxTicks int) {
	t.Helper()
	for i := 0; i < maxTicks && !s.IsEnded(); i++ {
		s.Tick(1.0 / 60.0)
	}
	if !s.IsEnded() {
		t.Fatalf("game did not end within %d ticks (t=%.2f)", maxTicks, s.Time())
	}
}
