package calendar

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrInvalidPeriod      = errors.New("invalid period")
	ErrDuplicatePeriod    = errors.New("period id already registered")
	ErrDuplicateStartHour = errors.New("start hour already taken")
	ErrPeriodNotFound     = errors.New("period not found")
	ErrNoPeriods          = errors.New("cycle has no periods")
)

// DailyCycle divides the day into named periods and answers which period
// owns any given hour. Safe for concurrent use; registration normally
// happens once during setup.
type DailyCycle struct {
	mu      sync.RWMutex
	periods map[string]Period
	ordered []Period   // ascending by start hour
	hours   [24]string // hour -> period id, valid only when periods exist
}

// NewDailyCycle creates an empty cycle
func NewDailyCycle() *DailyCycle {
	return &DailyCycle{
		periods: make(map[string]Period),
	}
}

// AddPeriod validates and registers a period, then rebuilds the hour table.
// On any failure the cycle is left unchanged.
func (dc *DailyCycle) AddPeriod(p Period) error {
	if p.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidPeriod)
	}
	if p.StartHour < 0 || p.StartHour > 23 {
		return fmt.Errorf("%w: start hour %d out of range 0-23 for %q", ErrInvalidPeriod, p.StartHour, p.ID)
	}

	dc.mu.Lock()
	defer dc.mu.Unlock()

	if _, ok := dc.periods[p.ID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicatePeriod, p.ID)
	}
	for _, existing := range dc.ordered {
		if existing.StartHour == p.StartHour {
			return fmt.Errorf("%w: hour %d claimed by both %q and %q",
				ErrDuplicateStartHour, p.StartHour, existing.ID, p.ID)
		}
	}

	dc.periods[p.ID] = p
	dc.ordered = append(dc.ordered, p)
	sort.Slice(dc.ordered, func(i, j int) bool {
		return dc.ordered[i].StartHour < dc.ordered[j].StartHour
	})
	dc.rebuildHourTable()

	return nil
}

// AddPeriods registers several periods, stopping at the first failure
func (dc *DailyCycle) AddPeriods(ps ...Period) error {
	for _, p := range ps {
		if err := dc.AddPeriod(p); err != nil {
			return err
		}
	}
	return nil
}

// rebuildHourTable recomputes the dense hour -> period id mapping.
// Every hour maps to the latest-starting period whose start hour is at or
// before it; hours before the earliest start belong to the highest-starting
// period (midnight wraparound). Caller must hold the write lock.
func (dc *DailyCycle) rebuildHourTable() {
	if len(dc.ordered) == 0 {
		return
	}

	// The last period's span wraps past midnight into the early hours.
	carry := dc.ordered[len(dc.ordered)-1].ID
	cursor := 0
	for _, p := range dc.ordered {
		for ; cursor < p.StartHour; cursor++ {
			dc.hours[cursor] = carry
		}
		carry = p.ID
	}
	for ; cursor < 24; cursor++ {
		dc.hours[cursor] = carry
	}
}

// Match returns the id of the period owning the given hour. The hour is
// normalized modulo 24 first, so values outside 0-23 (including negatives
// from cross-day arithmetic) are accepted.
func (dc *DailyCycle) Match(hour int) (string, error) {
	dc.mu.RLock()
	defer dc.mu.RUnlock()

	if len(dc.periods) == 0 {
		return "", ErrNoPeriods
	}
	return dc.hours[normalizeHour(hour)], nil
}

// Period returns the registered period with the given id
func (dc *DailyCycle) Period(id string) (Period, error) {
	dc.mu.RLock()
	defer dc.mu.RUnlock()

	p, ok := dc.periods[id]
	if !ok {
		return Period{}, fmt.Errorf("%w: %q", ErrPeriodNotFound, id)
	}
	return p, nil
}

// Periods returns a copy of the period sequence in ascending start-hour order
func (dc *DailyCycle) Periods() []Period {
	dc.mu.RLock()
	defer dc.mu.RUnlock()

	out := make([]Period, len(dc.ordered))
	copy(out, dc.ordered)
	return out
}

// After returns the period following the given one in ascending start-hour
// order. Past the last period it wraps to the first and reports wrapped=true.
func (dc *DailyCycle) After(id string) (next Period, wrapped bool, err error) {
	dc.mu.RLock()
	defer dc.mu.RUnlock()

	if len(dc.ordered) == 0 {
		return Period{}, false, ErrNoPeriods
	}
	for i, p := range dc.ordered {
		if p.ID == id {
			if i == len(dc.ordered)-1 {
				return dc.ordered[0], true, nil
			}
			return dc.ordered[i+1], false, nil
		}
	}
	return Period{}, false, fmt.Errorf("%w: %q", ErrPeriodNotFound, id)
}

// Len returns the number of registered periods
func (dc *DailyCycle) Len() int {
	dc.mu.RLock()
	defer dc.mu.RUnlock()
	return len(dc.periods)
}

// normalizeHour reduces an hour into 0-23, treating negative values as
// hours before midnight
func normalizeHour(hour int) int {
	h := hour % 24
	if h < 0 {
		h += 24
	}
	return h
}

// DayParts returns the classic four-part day split
func DayParts() *DailyCycle {
	dc := NewDailyCycle()
	// Static definitions, registration cannot fail
	_ = dc.AddPeriods(
		Period{ID: "night", StartHour: 0},
		Period{ID: "morning", StartHour: 6},
		Period{ID: "afternoon", StartHour: 12},
		Period{ID: "evening", StartHour: 18},
	)
	return dc
}

// CanonicalHours returns the eight canonical hours of the liturgical day
func CanonicalHours() *DailyCycle {
	dc := NewDailyCycle()
	_ = dc.AddPeriods(
		Period{ID: "matins", Name: "Matins", StartHour: 0},
		Period{ID: "lauds", Name: "Lauds", StartHour: 3},
		Period{ID: "prime", Name: "Prime", StartHour: 6},
		Period{ID: "terce", Name: "Terce", StartHour: 9},
		Period{ID: "sext", Name: "Sext", StartHour: 12},
		Period{ID: "nones", Name: "Nones", StartHour: 15},
		Period{ID: "vespers", Name: "Vespers", StartHour: 18},
		Period{ID: "compline", Name: "Compline", StartHour: 21},
	)
	return dc
}

// BuiltinCycle resolves a built-in cycle by name
func BuiltinCycle(name string) (*DailyCycle, bool) {
	switch name {
	case "dayparts":
		return DayParts(), true
	case "canonical":
		return CanonicalHours(), true
	}
	return nil, false
}

var (
	defaultCycleOnce sync.Once
	defaultCycle     *DailyCycle
)

// DefaultCycle returns the shared cycle used by calendars with no cycle
// assigned: the day-parts split.
func DefaultCycle() *DailyCycle {
	defaultCycleOnce.Do(func() {
		defaultCycle = DayParts()
	})
	return defaultCycle
}
