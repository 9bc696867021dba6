package calendar

import "time"

// Event kinds emitted by a Calendar
const (
	EventKindDateChange   = "dateChange"
	EventKindPeriodChange = "periodChange"
	EventKindTimeWarp     = "timeWarp"
)

// Event is a calendar state transition delivered to observers
type Event interface {
	Kind() string
	When() time.Time
}

// DateChangeEvent reports that the calendar's current instant changed
type DateChangeEvent struct {
	Date time.Time // the new instant
}

func (e DateChangeEvent) Kind() string    { return EventKindDateChange }
func (e DateChangeEvent) When() time.Time { return e.Date }

// PeriodChangeEvent reports that the resolved day period changed
type PeriodChangeEvent struct {
	From string // previous period id, empty if unresolvable
	To   string // new period id, empty if unresolvable
	Date time.Time
}

func (e PeriodChangeEvent) Kind() string    { return EventKindPeriodChange }
func (e PeriodChangeEvent) When() time.Time { return e.Date }

// TimeWarpEvent reports a discontinuous jump, as opposed to ordinary
// forward advancement
type TimeWarpEvent struct {
	From time.Time
	To   time.Time
}

func (e TimeWarpEvent) Kind() string    { return EventKindTimeWarp }
func (e TimeWarpEvent) When() time.Time { return e.To }

// Observer receives calendar events synchronously, in subscription order
type Observer interface {
	HandleEvent(e Event)
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(Event)

// HandleEvent calls f(e)
func (f ObserverFunc) HandleEvent(e Event) { f(e) }
