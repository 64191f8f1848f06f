package systems

import (
	"testing"

	"github.com/decker502/tdsim/pkg/components"
	"github.com/decker502/tdsim/pkg/config"
	"github.com/decker502/tdsim/pkg/entities"
	"github.com/decker502/tdsim/pkg/event"
	"github.com/decker502/tdsim/pkg/types"
)

func testEnemyTable() *config.EnemyTableConfig {
	return &config.EnemyTableConfig{
		Enemies: map[string]config.EnemyStats{
			"grunt": {Name: "Grunt", MaxHealth: 10, Speed: 1, GoldReward: 5, DamageToBase: 1},
			"brute": {Name: "Brute", MaxHealth: 40, Speed: 0.5, GoldReward: 12, DamageToBase: 3},
		},
	}
}

func testLevel(waves ...config.WaveConfig) *config.LevelConfig {
	return &config.LevelConfig{
		ID:        "test",
		Name:      "Test",
		Lives:     10,
		Path:      []types.Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}},
		WaveBonus: config.WaveBonusConfig{Mode: config.WaveBonusLinear, PerWave: 10},
		Waves:     waves,
	}
}

func newTestScheduler(level *config.LevelConfig) (*entities.World, *WaveSchedulerSystem, *event.Dispatcher) {
	w := entities.NewWorld()
	d := event.NewDispatcher()
	return w, NewWaveSchedulerSystem(w, level, testEnemyTable(), d), d
}

// TestWaveScheduler_SpawnCadence 生成间隔 1 秒、3 个敌人：在 t=0,1,2 生成
func TestWaveScheduler_SpawnCadence(t *testing.T) {
	level := testLevel(config.WaveConfig{
		SpawnInterval: 1,
		Groups:        []config.SpawnGroup{{Enemy: "grunt", Count: 3}},
	})
	w, s, _ := newTestScheduler(level)
	s.Start()

	steps := []struct {
		dt        float64
		wantAlive int
	}{
		{0, 1},
		{1, 2},
		{1, 3},
	}
	for i, step := range steps {
		s.Update(step.dt)
		if w.Enemies.Len() != step.wantAlive {
			t.Fatalf("step %d: %d enemies, want %d", i, w.Enemies.Len(), step.wantAlive)
		}
	}

	sched := s.Schedule()
	if !sched.FinishedSpawning || s.State() != components.WaveStateWaitingForClear {
		t.Errorf("wave should be finished spawning, state = %s", s.State())
	}
	if sched.EnemiesRemainingToSpawn != 0 || sched.EnemiesRemainingAlive != 3 {
		t.Errorf("toSpawn=%d alive=%d, want 0/3", sched.EnemiesRemainingToSpawn, sched.EnemiesRemainingAlive)
	}

	// 敌人生成在路径起点
	for _, id := range w.Enemies.IDs() {
		p, _ := w.Positions.Get(id)
		if p.Pos != level.Path[0] {
			t.Errorf("enemy %d spawned at %+v, want path start", id, p.Pos)
		}
	}
}

func TestWaveScheduler_FirstWaveDelay(t *testing.T) {
	level := testLevel(config.WaveConfig{
		SpawnInterval: 1,
		Groups:        []config.SpawnGroup{{Enemy: "grunt", Count: 1}},
	})
	level.FirstWaveDelay = 2
	w, s, d := newTestScheduler(level)
	s.Start()

	s.Update(1.5)
	if w.Enemies.Len() != 0 || s.State() != components.WaveStateCountdown {
		t.Fatalf("no spawn expected during countdown, state = %s", s.State())
	}
	s.Update(0.5)
	if w.Enemies.Len() != 1 {
		t.Fatalf("first enemy should spawn when the countdown ends")
	}

	events := d.Flush()
	if len(events) != 2 || events[0].Type != event.WaveStarted || events[1].Type != event.EnemySpawned {
		t.Errorf("events = %v, want WaveStarted then EnemySpawned", events)
	}
	if events[0].Amount != 1 {
		t.Errorf("WaveStarted amount = %d, want 1", events[0].Amount)
	}
}

func TestWaveScheduler_InterGroupDelaySkipsEmptyGroups(t *testing.T) {
	level := testLevel(config.WaveConfig{
		SpawnInterval:   1,
		InterGroupDelay: 3,
		Groups: []config.SpawnGroup{
			{Enemy: "grunt", Count: 2},
			{Enemy: "brute", Count: 0},
			{Enemy: "brute", Count: 1},
		},
	})
	w, s, _ := newTestScheduler(level)
	s.Start()

	s.Update(0)
	s.Update(1)
	if w.Enemies.Len() != 2 {
		t.Fatalf("first group should be spawned, got %d", w.Enemies.Len())
	}
	s.Update(2.9)
	if w.Enemies.Len() != 2 {
		t.Fatalf("inter-group delay not honoured")
	}
	s.Update(0.1)
	if w.Enemies.Len() != 3 {
		t.Fatalf("third group should spawn after the inter-group delay")
	}

	last := w.Enemies.IDs()[2]
	e, _ := w.Enemies.Get(last)
	if e.EnemyType != "brute" {
		t.Errorf("last enemy type = %s, want brute", e.EnemyType)
	}
	if !s.Schedule().FinishedSpawning {
		t.Error("wave should be finished spawning")
	}
}

func TestWaveScheduler_CarriesOvershoot(t *testing.T) {
	level := testLevel(config.WaveConfig{
		SpawnInterval: 1,
		Groups:        []config.SpawnGroup{{Enemy: "grunt", Count: 4}},
	})
	w, s, _ := newTestScheduler(level)
	s.Start()

	s.Update(0)   // t=0.0 生成第 1 个
	s.Update(0.6) // t=0.6
	s.Update(0.6) // t=1.2 生成第 2 个，超出 0.2
	if w.Enemies.Len() != 2 {
		t.Fatalf("got %d enemies at t=1.2, want 2", w.Enemies.Len())
	}
	s.Update(0.8) // t=2.0 生成第 3 个
	if w.Enemies.Len() != 3 {
		t.Errorf("overshoot should carry into the next interval, got %d enemies at t=2.0", w.Enemies.Len())
	}
}

func TestWaveScheduler_LargeStepSpawnsSeveral(t *testing.T) {
	level := testLevel(config.WaveConfig{
		SpawnInterval: 1,
		Groups:        []config.SpawnGroup{{Enemy: "grunt", Count: 3}},
	})
	w, s, _ := newTestScheduler(level)
	s.Start()

	s.Update(0)
	s.Update(2.5)
	if w.Enemies.Len() != 3 {
		t.Errorf("got %d enemies, want 3", w.Enemies.Len())
	}
	if s.EnemiesRemaining() != 3 {
		t.Errorf("EnemiesRemaining() = %d, want 3", s.EnemiesRemaining())
	}
}

func TestWaveScheduler_UnknownEnemySkipped(t *testing.T) {
	level := testLevel(config.WaveConfig{
		SpawnInterval: 1,
		Groups: []config.SpawnGroup{
			{Enemy: "ghost", Count: 1},
			{Enemy: "grunt", Count: 1},
		},
	})
	w, s, _ := newTestScheduler(level)
	s.Start()
	s.Update(0)

	if w.Enemies.Len() != 1 {
		t.Fatalf("got %d enemies, want 1", w.Enemies.Len())
	}
	sched := s.Schedule()
	if sched.EnemiesRemainingAlive != 1 || sched.EnemiesRemainingToSpawn != 0 {
		t.Errorf("alive=%d toSpawn=%d, want 1/0", sched.EnemiesRemainingAlive, sched.EnemiesRemainingToSpawn)
	}
}

func TestWaveScheduler_CompleteWaveExactlyOnce(t *testing.T) {
	wave := config.WaveConfig{SpawnInterval: 1, Groups: []config.SpawnGroup{{Enemy: "grunt", Count: 1}}}
	level := testLevel(wave, wave)
	level.InterWaveDelay = 5
	_, s, _ := newTestScheduler(level)
	s.Start()
	s.Update(0)

	if _, _, completed := s.CompleteWaveIfCleared(); completed {
		t.Fatal("wave with a live enemy should not complete")
	}

	s.OnEnemyRemoved()
	idx, final, completed := s.CompleteWaveIfCleared()
	if !completed || idx != 0 || final {
		t.Fatalf("CompleteWaveIfCleared() = (%d, %v, %v), want (0, false, true)", idx, final, completed)
	}
	if _, _, completed := s.CompleteWaveIfCleared(); completed {
		t.Error("a wave must complete only once")
	}
	if s.State() != components.WaveStateCountdown || s.CurrentWaveIndex() != 1 {
		t.Errorf("state = %s wave = %d, want countdown for wave 1", s.State(), s.CurrentWaveIndex())
	}
	if s.Schedule().Countdown != 5 {
		t.Errorf("countdown = %v, want interWaveDelay 5", s.Schedule().Countdown)
	}

	s.Update(5)
	s.OnEnemyRemoved()
	idx, final, completed = s.CompleteWaveIfCleared()
	if !completed || idx != 1 || !final {
		t.Fatalf("CompleteWaveIfCleared() = (%d, %v, %v), want (1, true, true)", idx, final, completed)
	}
	if s.State() != components.WaveStateAllWavesCompleted {
		t.Errorf("state = %s, want AllWavesCompleted", s.State())
	}
}

func TestWaveScheduler_EmptyWaveCompletesImmediately(t *testing.T) {
	level := testLevel(config.WaveConfig{Groups: []config.SpawnGroup{{Enemy: "grunt", Count: 0}}})
	w, s, _ := newTestScheduler(level)
	s.Start()
	s.Update(0)

	if w.Enemies.Len() != 0 {
		t.Fatal("empty wave should not spawn")
	}
	if _, final, completed := s.CompleteWaveIfCleared(); !completed || !final {
		t.Error("empty wave should complete as soon as it starts")
	}
}

func TestWaveScheduler_NoWavesStaysIdle(t *testing.T) {
	w, s, d := newTestScheduler(testLevel())
	s.Start()
	for i := 0; i < 10; i++ {
		s.Update(1)
	}
	if s.State() != components.WaveStateIdle || w.Enemies.Len() != 0 || d.Pending() != 0 {
		t.Errorf("scheduler without waves should stay idle, state = %s", s.State())
	}
	if _, _, completed := s.CompleteWaveIfCleared(); completed {
		t.Error("idle scheduler must not complete waves")
	}
}

func TestWaveScheduler_CallNextWave(t *testing.T) {
	wave := config.WaveConfig{SpawnInterval: 1, Groups: []config.SpawnGroup{{Enemy: "grunt", Count: 2}}}
	level := testLevel(wave)
	level.FirstWaveDelay = 30
	w, s, _ := newTestScheduler(level)

	if s.CallNextWave() {
		t.Error("CallNextWave should fail before Start")
	}
	s.Start()
	if !s.CallNextWave() {
		t.Fatal("CallNextWave should succeed during countdown")
	}
	s.Update(0.1)
	if w.Enemies.Len() != 1 || s.State() != components.WaveStateSpawning {
		t.Fatalf("wave should start on the next update, state = %s", s.State())
	}
	if s.CallNextWave() {
		t.Error("CallNextWave should fail while spawning")
	}
}

func TestWaveScheduler_Stop(t *testing.T) {
	level := testLevel(config.WaveConfig{
		SpawnInterval: 1,
		Groups:        []config.SpawnGroup{{Enemy: "grunt", Count: 5}},
	})
	w, s, _ := newTestScheduler(level)
	s.Start()
	s.Update(0)

	s.Stop()
	s.Update(10)

	if s.State() != components.WaveStateStopped {
		t.Errorf("state = %s, want Stopped", s.State())
	}
	if w.Enemies.Len() != 1 {
		t.Errorf("stopped scheduler spawned more enemies: %d", w.Enemies.Len())
	}
	if s.EnemiesRemaining() != 0 {
		t.Errorf("EnemiesRemaining() = %d after Stop, want 0", s.EnemiesRemaining())
	}
	if s.CallNextWave() {
		t.Error("CallNextWave should fail after Stop")
	}
}
