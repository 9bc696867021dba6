package calendar

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

type eventRecorder struct {
	events []Event
}

func (r *eventRecorder) HandleEvent(e Event) {
	r.events = append(r.events, e)
}

func (r *eventRecorder) kinds() []string {
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind()
	}
	return out
}

func TestPeriodChangeOnOrdinaryAdvance(t *testing.T) {
	c := NewFromTime(time.Date(1979, 6, 22, 15, 0, 0, 0, time.UTC), zap.NewNop())
	rec := &eventRecorder{}
	c.Subscribe(rec)

	// 15:00 afternoon -> 18:00 evening, same day.
	if err := c.AdvanceHours(3); err != nil {
		t.Fatalf("AdvanceHours(3) error = %v", err)
	}

	if len(rec.events) != 2 {
		t.Fatalf("got %d events %v, want 2", len(rec.events), rec.kinds())
	}

	pc, ok := rec.events[0].(PeriodChangeEvent)
	if !ok {
		t.Fatalf("events[0] = %T, want PeriodChangeEvent", rec.events[0])
	}
	if pc.From != "afternoon" || pc.To != "evening" {
		t.Errorf("PeriodChangeEvent = (%v, %v), want (afternoon, evening)", pc.From, pc.To)
	}

	dc, ok := rec.events[1].(DateChangeEvent)
	if !ok {
		t.Fatalf("events[1] = %T, want DateChangeEvent", rec.events[1])
	}
	if !dc.Date.Equal(c.Time()) {
		t.Errorf("DateChangeEvent.Date = %v, want %v", dc.Date, c.Time())
	}
}

func TestNoPeriodChangeWithinPeriod(t *testing.T) {
	c := NewFromTime(time.Date(1979, 6, 22, 13, 0, 0, 0, time.UTC), zap.NewNop())
	rec := &eventRecorder{}
	c.Subscribe(rec)

	// 13:00 -> 14:00, still afternoon.
	if err := c.AdvanceHour(); err != nil {
		t.Fatalf("AdvanceHour() error = %v", err)
	}

	if len(rec.events) != 1 {
		t.Fatalf("got events %v, want only dateChange", rec.kinds())
	}
	if rec.events[0].Kind() != EventKindDateChange {
		t.Errorf("events[0].Kind() = %v, want %v", rec.events[0].Kind(), EventKindDateChange)
	}
}

func TestSetDateEmitsTimeWarp(t *testing.T) {
	c := NewFromTime(time.Date(1979, 6, 22, 15, 0, 0, 0, time.UTC), zap.NewNop())
	rec := &eventRecorder{}
	c.Subscribe(rec)

	from := c.Time()
	target := time.Date(1985, 10, 26, 1, 0, 0, 0, time.UTC)
	if err := c.SetDate(target); err != nil {
		t.Fatalf("SetDate() error = %v", err)
	}

	// 15:00 afternoon -> 01:00 night plus the warp marker.
	want := []string{EventKindPeriodChange, EventKindDateChange, EventKindTimeWarp}
	got := rec.kinds()
	if len(got) != len(want) {
		t.Fatalf("got events %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}

	warp := rec.events[2].(TimeWarpEvent)
	if !warp.From.Equal(from) || !warp.To.Equal(target) {
		t.Errorf("TimeWarpEvent = (%v, %v), want (%v, %v)", warp.From, warp.To, from, target)
	}
}

func TestNoEventsOnRejectedOrUnchangedMutation(t *testing.T) {
	c := NewFromTime(time.Date(1979, 6, 22, 15, 0, 0, 0, time.UTC), zap.NewNop())
	rec := &eventRecorder{}
	c.Subscribe(rec)

	if err := c.SetDate(time.Time{}); err == nil {
		t.Error("SetDate(zero) error = nil, want error")
	}
	if err := c.AdvanceHours(0); err != nil {
		t.Errorf("AdvanceHours(0) error = %v", err)
	}
	if err := c.SetDate(c.Time()); err != nil {
		t.Errorf("SetDate(current) error = %v", err)
	}

	if len(rec.events) != 0 {
		t.Errorf("got events %v, want none", rec.kinds())
	}
}

func TestSubscriptionOrder(t *testing.T) {
	c := NewFromTime(time.Date(1979, 6, 22, 15, 0, 0, 0, time.UTC), zap.NewNop())

	var order []string
	c.Subscribe(ObserverFunc(func(e Event) {
		if e.Kind() == EventKindDateChange {
			order = append(order, "first")
		}
	}))
	c.Subscribe(ObserverFunc(func(e Event) {
		if e.Kind() == EventKindDateChange {
			order = append(order, "second")
		}
	}))

	if err := c.AdvanceHour(); err != nil {
		t.Fatalf("AdvanceHour() error = %v", err)
	}

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("delivery order = %v, want [first second]", order)
	}
}

func TestUnsubscribe(t *testing.T) {
	c := NewFromTime(time.Date(1979, 6, 22, 15, 0, 0, 0, time.UTC), zap.NewNop())
	rec := &eventRecorder{}
	handle := c.Subscribe(rec)

	if !c.Unsubscribe(handle) {
		t.Fatal("Unsubscribe() = false, want true")
	}
	if c.Unsubscribe(handle) {
		t.Error("second Unsubscribe() = true, want false")
	}

	if err := c.AdvanceHour(); err != nil {
		t.Fatalf("AdvanceHour() error = %v", err)
	}
	if len(rec.events) != 0 {
		t.Errorf("unsubscribed observer received events %v", rec.kinds())
	}
}

func TestObserverMayQueryCalendar(t *testing.T) {
	c := NewFromTime(time.Date(1979, 6, 22, 15, 0, 0, 0, time.UTC), zap.NewNop())

	var seen Season
	c.Subscribe(ObserverFunc(func(e Event) {
		if e.Kind() == EventKindDateChange {
			seen = c.Season()
		}
	}))

	if err := c.AdvanceHour(); err != nil {
		t.Fatalf("AdvanceHour() error = %v", err)
	}
	if seen != SeasonSummer {
		t.Errorf("observer saw season %v, want summer", seen)
	}
}
