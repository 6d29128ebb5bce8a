package settings

import "testing"

func TestEmitterDeliversToSubscribers(t *testing.T) {
	em := NewEmitter()

	var got []string
	em.Subscribe(EventChanged, func(ev Event) {
		got = append(got, ev.UserID)
	})
	em.Subscribe(EventChanged, func(ev Event) {
		got = append(got, ev.UserID)
	})

	em.Emit(Event{Name: EventChanged, UserID: "user-1"})
	if len(got) != 2 {
		t.Fatalf("delivered %d times, want 2", len(got))
	}
}

func TestEmitterUnsubscribeStopsDelivery(t *testing.T) {
	em := NewEmitter()

	calls := 0
	unsubscribe := em.Subscribe(EventChanged, func(Event) { calls++ })

	em.Emit(Event{Name: EventChanged, UserID: "user-1"})
	unsubscribe()
	em.Emit(Event{Name: EventChanged, UserID: "user-1"})

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestEmitterIgnoresOtherEvents(t *testing.T) {
	em := NewEmitter()

	calls := 0
	em.Subscribe(EventChanged, func(Event) { calls++ })

	em.Emit(Event{Name: "something.else", UserID: "user-1"})
	if calls != 0 {
		t.Fatalf("calls = %d, want 0", calls)
	}
}

func TestEmitterSurvivesPanickingSubscriber(t *testing.T) {
	em := NewEmitter()

	em.Subscribe(EventChanged, func(Event) { panic("boom") })
	healthy := 0
	em.Subscribe(EventChanged, func(Event) { healthy++ })

	em.Emit(Event{Name: EventChanged, UserID: "user-1"})
	if healthy != 1 {
		t.Fatalf("healthy subscriber was not invoked, calls = %d", healthy)
	}
}
