package event

import (
	"testing"
)

func TestDispatcher_QueuesUntilFlush(t *testing.T) {
	d := NewDispatcher()

	var got []EventType
	d.Subscribe(EnemyDied, func(e Event) { got = append(got, e.Type) })

	d.Publish(Event{Type: EnemyDied, Amount: 5})
	if len(got) != 0 {
		t.Fatalf("Publish should not deliver immediately, got %v", got)
	}
	if d.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", d.Pending())
	}

	delivered := d.Flush()
	if len(got) != 1 || len(delivered) != 1 {
		t.Fatalf("Expected one delivery, got listener=%d returned=%d", len(got), len(delivered))
	}
	if d.Pending() != 0 {
		t.Errorf("Queue should be empty after Flush")
	}
	if d.Flush() != nil {
		t.Errorf("Flushing an empty queue should return nil")
	}
}

func TestDispatcher_PreservesPublishOrder(t *testing.T) {
	d := NewDispatcher()

	var order []EventType
	d.SubscribeAll(func(e Event) { order = append(order, e.Type) })

	d.Publish(Event{Type: EnemyLeaked})
	d.Publish(Event{Type: WaveCompleted})
	d.Publish(Event{Type: GameOver})
	d.Flush()

	want := []EventType{EnemyLeaked, WaveCompleted, GameOver}
	if len(order) != len(want) {
		t.Fatalf("Got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, order[i], want[i])
		}
	}
}

func TestDispatcher_TypeFiltering(t *testing.T) {
	d := NewDispatcher()

	died, victory := 0, 0
	d.Subscribe(EnemyDied, func(Event) { died++ })
	d.Subscribe(Victory, func(Event) { victory++ })

	d.Publish(Event{Type: EnemyDied})
	d.Publish(Event{Type: EnemyDied})
	d.Publish(Event{Type: TowerPlaced})
	d.Flush()

	if died != 2 || victory != 0 {
		t.Errorf("died=%d victory=%d, want 2/0", died, victory)
	}
}

func TestDispatcher_PublishDuringFlush(t *testing.T) {
	d := NewDispatcher()

	var order []EventType
	d.Subscribe(WaveCompleted, func(Event) {
		d.Publish(Event{Type: Victory})
	})
	d.SubscribeAll(func(e Event) { order = append(order, e.Type) })

	d.Publish(Event{Type: WaveCompleted})
	delivered := d.Flush()

	if len(order) != 2 || order[1] != Victory {
		t.Errorf("Expected chained event delivered in same flush, got %v", order)
	}
	if len(delivered) != 2 {
		t.Errorf("Flush returned %d events, want 2", len(delivered))
	}
}

func TestDispatcher_NestedFlushDeliversOnce(t *testing.T) {
	d := NewDispatcher()

	counts := make(map[EventType]int)
	var order []EventType
	d.SubscribeAll(func(e Event) {
		counts[e.Type]++
		order = append(order, e.Type)
	})
	// 订阅者在回调中发布并立即 Flush（如玩家在事件回调中建造防御塔）
	d.Subscribe(EnemySpawned, func(Event) {
		d.Publish(Event{Type: TowerPlaced})
		if got := d.Flush(); got != nil {
			t.Errorf("nested Flush() returned %d events, want nil", len(got))
		}
	})

	d.Publish(Event{Type: WaveStarted})
	d.Publish(Event{Type: EnemySpawned})
	d.Publish(Event{Type: EnemySpawned})
	delivered := d.Flush()

	want := map[EventType]int{WaveStarted: 1, EnemySpawned: 2, TowerPlaced: 2}
	for eventType, n := range want {
		if counts[eventType] != n {
			t.Errorf("%s delivered %d times, want %d", eventType, counts[eventType], n)
		}
	}
	if len(delivered) != 5 {
		t.Errorf("Flush returned %d events, want 5", len(delivered))
	}
	wantOrder := []EventType{WaveStarted, EnemySpawned, EnemySpawned, TowerPlaced, TowerPlaced}
	for i, eventType := range wantOrder {
		if i >= len(order) || order[i] != eventType {
			t.Fatalf("delivery order = %v, want %v", order, wantOrder)
		}
	}
	if d.Pending() != 0 {
		t.Errorf("Pending() = %d after Flush, want 0", d.Pending())
	}

	// 外层 Flush 结束后可以正常再次分发
	d.Publish(Event{Type: WaveStarted})
	if got := d.Flush(); len(got) != 1 {
		t.Errorf("Flush after nested dispatch returned %d events, want 1", len(got))
	}
}

func TestDispatcher_Discard(t *testing.T) {
	d := NewDispatcher()
	called := false
	d.SubscribeAll(func(Event) { called = true })

	d.Publish(Event{Type: EnemySpawned})
	d.Discard()
	d.Flush()

	if called {
		t.Error("Discarded events should not be delivered")
	}
}

func TestDispatcher_StampsTime(t *testing.T) {
	d := NewDispatcher()
	d.SetTime(12.5)
	d.Publish(Event{Type: WaveStarted, WaveIndex: 0})

	events := d.Flush()
	if len(events) != 1 || events[0].Time != 12.5 {
		t.Errorf("Expected event stamped with t=12.5, got %v", events)
	}
}
