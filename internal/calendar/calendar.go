// Package calendar implements a game-world calendrical engine: a mutable
// current date-time, named sub-day periods resolved through a daily cycle,
// day-scoped almanac values (season, moon phase, sidereal time), and typed
// change notifications to subscribed observers.
package calendar

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/username/almanac/pkg/dateutil"
	"github.com/username/almanac/pkg/julian"
)

// ErrInvalidDate rejects mutations carrying a zero or malformed date
var ErrInvalidDate = errors.New("invalid date")

// almanacSnapshot holds the derived values for one day. It is replaced or
// cleared wholesale, never field by field, so the three values are always
// consistent with the key.
type almanacSnapshot struct {
	season   Season
	moon     MoonPhase
	sidereal float64
	yearDay  int // key: day of year the snapshot was computed for
	year     int // key: year the snapshot was computed for
}

type subscription struct {
	handle   string
	observer Observer
}

// Calendar owns a session's current in-world instant and everything derived
// from it. Hosts construct calendars explicitly and pass them by reference;
// there is no package-level shared instance.
type Calendar struct {
	mu       sync.RWMutex
	current  time.Time
	starting time.Time
	loc      *time.Location
	cycle    *DailyCycle // nil means DefaultCycle()
	snapshot *almanacSnapshot
	subs     []subscription
	logger   *zap.Logger
}

// New creates a calendar starting at the host's current moment
func New(loc *time.Location, logger *zap.Logger) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	return NewFromTime(time.Now().In(loc), logger)
}

// NewYMD creates a calendar starting at midnight of the given date.
// Zero month and day default to January and 1.
func NewYMD(year int, month time.Month, day int, loc *time.Location, logger *zap.Logger) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	if month == 0 {
		month = time.January
	}
	if day == 0 {
		day = 1
	}
	return NewFromTime(time.Date(year, month, day, 0, 0, 0, 0, loc), logger)
}

// NewFromTime creates a calendar starting at the given instant, adopting
// its location
func NewFromTime(t time.Time, logger *zap.Logger) *Calendar {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calendar{
		current:  t,
		starting: t,
		loc:      t.Location(),
		logger:   logger,
	}
}

// local returns the current instant in the calendar's location
func (c *Calendar) local() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.In(c.loc)
}

// Time returns the current instant
func (c *Calendar) Time() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// StartingTime returns the instant the calendar was constructed with
func (c *Calendar) StartingTime() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.starting
}

// Location returns the calendar's timezone
func (c *Calendar) Location() *time.Location {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loc
}

// Field accessors: pure projections of the current instant through the
// calendar's location.

func (c *Calendar) Day() int              { return c.local().Day() }
func (c *Calendar) Month() time.Month     { return c.local().Month() }
func (c *Calendar) MonthName() string     { return c.local().Month().String() }
func (c *Calendar) Year() int             { return c.local().Year() }
func (c *Calendar) DayOfYear() int        { return c.local().YearDay() }
func (c *Calendar) Weekday() time.Weekday { return c.local().Weekday() }
func (c *Calendar) Hour() int             { return c.local().Hour() }
func (c *Calendar) Unix() int64           { return c.local().Unix() }
func (c *Calendar) JulianDay() float64    { return julian.Day(c.local()) }

// Zone returns the timezone abbreviation and offset in seconds east of UTC
// at the current instant
func (c *Calendar) Zone() (string, int) { return c.local().Zone() }

// Probe accessors: projections of an explicit instant with the calendar's
// location applied. They never touch cached state.

func (c *Calendar) at(t time.Time) time.Time            { return t.In(c.Location()) }
func (c *Calendar) DayAt(t time.Time) int               { return c.at(t).Day() }
func (c *Calendar) MonthAt(t time.Time) time.Month      { return c.at(t).Month() }
func (c *Calendar) MonthNameAt(t time.Time) string      { return c.at(t).Month().String() }
func (c *Calendar) YearAt(t time.Time) int              { return c.at(t).Year() }
func (c *Calendar) DayOfYearAt(t time.Time) int         { return c.at(t).YearDay() }
func (c *Calendar) WeekdayAt(t time.Time) time.Weekday  { return c.at(t).Weekday() }
func (c *Calendar) HourAt(t time.Time) int              { return c.at(t).Hour() }
func (c *Calendar) JulianDayAt(t time.Time) float64     { return julian.Day(c.at(t)) }

// almanac returns the derived snapshot for the current day, computing and
// caching it on first access
func (c *Calendar) almanac() almanacSnapshot {
	c.mu.RLock()
	if s := c.snapshot; s != nil {
		c.mu.RUnlock()
		return *s
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		t := c.current.In(c.loc)
		c.snapshot = &almanacSnapshot{
			season:   seasonOf(t),
			moon:     moonPhaseOf(t),
			sidereal: siderealOf(t),
			yearDay:  t.YearDay(),
			year:     t.Year(),
		}
		c.logger.Debug("Computed almanac snapshot",
			zap.Int("year", t.Year()),
			zap.Int("day_of_year", t.YearDay()))
	}
	return *c.snapshot
}

// Season returns the current season, cached for the current day
func (c *Calendar) Season() Season { return c.almanac().season }

// MoonPhase returns the current lunar phase, cached for the current day
func (c *Calendar) MoonPhase() MoonPhase { return c.almanac().moon }

// SiderealTime returns the Greenwich sidereal hour at local midnight of the
// current date, cached for the current day
func (c *Calendar) SiderealTime() float64 { return c.almanac().sidereal }

// SeasonAt returns the season of an explicit date without touching the cache
func (c *Calendar) SeasonAt(t time.Time) Season { return seasonOf(c.at(t)) }

// MoonPhaseAt returns the lunar phase of an explicit date without touching
// the cache
func (c *Calendar) MoonPhaseAt(t time.Time) MoonPhase { return moonPhaseOf(c.at(t)) }

// SiderealTimeAt returns the sidereal hour of an explicit date without
// touching the cache
func (c *Calendar) SiderealTimeAt(t time.Time) float64 { return siderealOf(c.at(t)) }

// LocalSiderealTime returns the local sidereal hour for the calendar's
// current hour at the given longitude (degrees, east positive)
func (c *Calendar) LocalSiderealTime(longitude float64) float64 {
	return c.LocalSiderealTimeAt(c.Hour(), longitude)
}

// LocalSiderealTimeAt returns the local sidereal hour at the given hour of
// the current date and longitude. Cheap and input-dependent, never cached.
func (c *Calendar) LocalSiderealTimeAt(hour int, longitude float64) float64 {
	return normalizeHours(c.almanac().sidereal + float64(normalizeHour(hour)) + longitude/15)
}

// invalidateIfDayChanged clears the almanac snapshot when the (dayOfYear,
// year) key changed. The single cache invalidation point; caller must hold
// the write lock and pass instants already in the calendar's location.
func (c *Calendar) invalidateIfDayChanged(prev, next time.Time) {
	if c.snapshot == nil || dateutil.IsSameDay(prev, next) {
		return
	}
	c.snapshot = nil
	c.logger.Debug("Almanac cache invalidated",
		zap.Time("old", prev),
		zap.Time("new", next))
}

// matchLocked resolves the period id for an hour against the active cycle,
// returning the empty string when unresolvable. Caller must hold a lock.
func (c *Calendar) matchLocked(hour int) string {
	cycle := c.cycle
	if cycle == nil {
		cycle = DefaultCycle()
	}
	id, err := cycle.Match(hour)
	if err != nil {
		return ""
	}
	return id
}

// setInstant is the mutation chokepoint: every mutator funnels through it.
// It assigns the new instant, invalidates the almanac snapshot when the day
// changed, and delivers events. On any failure the calendar is untouched.
func (c *Calendar) setInstant(t time.Time, warp bool) error {
	if t.IsZero() {
		return ErrInvalidDate
	}

	c.mu.Lock()
	if t.Equal(c.current) {
		c.mu.Unlock()
		return nil
	}

	old := c.current
	oldLocal := old.In(c.loc)
	newLocal := t.In(c.loc)

	// Period comparison brackets the assignment: before on the old value,
	// after on the new one.
	oldPeriod := c.matchLocked(oldLocal.Hour())
	c.current = t
	c.invalidateIfDayChanged(oldLocal, newLocal)
	newPeriod := c.matchLocked(newLocal.Hour())

	subs := make([]subscription, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	c.logger.Debug("Date changed",
		zap.Time("from", oldLocal),
		zap.Time("to", newLocal),
		zap.Bool("warp", warp))

	// Delivered outside the lock so observers may query the calendar.
	if oldPeriod != newPeriod {
		c.emit(subs, PeriodChangeEvent{From: oldPeriod, To: newPeriod, Date: t})
	}
	c.emit(subs, DateChangeEvent{Date: t})
	if warp {
		c.emit(subs, TimeWarpEvent{From: old, To: t})
	}

	return nil
}

func (c *Calendar) emit(subs []subscription, e Event) {
	for _, s := range subs {
		s.observer.HandleEvent(e)
	}
}

// SetDate jumps the calendar to an explicit instant. Flagged as a time warp.
func (c *Calendar) SetDate(t time.Time) error {
	return c.setInstant(t, true)
}

// SetYMD jumps to the given date, keeping the current time of day.
// Date parts that do not name a real calendar date are rejected.
func (c *Calendar) SetYMD(year int, month time.Month, day int) error {
	return c.SetYMDIn(year, month, day, nil)
}

// SetYMDIn is SetYMD with a timezone swap; nil keeps the current location
func (c *Calendar) SetYMDIn(year int, month time.Month, day int, loc *time.Location) error {
	c.mu.RLock()
	target := c.loc
	if loc != nil {
		target = loc
	}
	cur := c.current.In(target)
	c.mu.RUnlock()

	t := time.Date(year, month, day, cur.Hour(), cur.Minute(), cur.Second(), 0, target)
	// time.Date normalizes out-of-range parts (Feb 30 becomes Mar 2);
	// a round-trip mismatch means the request was malformed.
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return ErrInvalidDate
	}

	if loc != nil {
		c.mu.Lock()
		c.loc = loc
		c.mu.Unlock()
	}
	return c.setInstant(t, true)
}

// SetTime moves to the given hour of the current date, minutes and seconds
// zeroed. The hour is normalized modulo 24. Flagged as a time warp.
func (c *Calendar) SetTime(hour int) error {
	cur := c.local()
	t := time.Date(cur.Year(), cur.Month(), cur.Day(), normalizeHour(hour), 0, 0, 0, cur.Location())
	return c.setInstant(t, true)
}

// AdvanceDay moves one day forward. Ordinary advancement, not a warp.
func (c *Calendar) AdvanceDay() error {
	return c.setInstant(c.Time().AddDate(0, 0, 1), false)
}

// AdvanceMonth moves one calendar month forward
func (c *Calendar) AdvanceMonth() error {
	return c.setInstant(c.Time().AddDate(0, 1, 0), false)
}

// AdvanceYear moves one calendar year forward
func (c *Calendar) AdvanceYear() error {
	return c.setInstant(c.Time().AddDate(1, 0, 0), false)
}

// AdvanceHour moves one hour forward
func (c *Calendar) AdvanceHour() error {
	return c.AdvanceHours(1)
}

// AdvanceHours moves n hours forward. n == 0 leaves the calendar unchanged
// and emits nothing.
func (c *Calendar) AdvanceHours(n int) error {
	if n == 0 {
		return nil
	}
	return c.setInstant(c.Time().Add(time.Duration(n)*time.Hour), false)
}

// SetCycle swaps the daily cycle reference; nil restores the default cycle.
// Not a date mutation, so no events fire.
func (c *Calendar) SetCycle(dc *DailyCycle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cycle = dc
}

// Cycle returns the active daily cycle
func (c *Calendar) Cycle() *DailyCycle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cycle == nil {
		return DefaultCycle()
	}
	return c.cycle
}

// CurrentPeriod returns the period id owning the calendar's current hour
func (c *Calendar) CurrentPeriod() (string, error) {
	return c.Cycle().Match(c.Hour())
}

// MatchPeriod returns the period id owning an arbitrary hour
func (c *Calendar) MatchPeriod(hour int) (string, error) {
	return c.Cycle().Match(hour)
}

// SetPeriod moves to the start hour of the named period, date unchanged.
// Flagged as a time warp.
func (c *Calendar) SetPeriod(id string) error {
	p, err := c.Cycle().Period(id)
	if err != nil {
		return err
	}
	return c.SetTime(p.StartHour)
}

// SetPeriodNextDay moves to the named period's start hour on the following
// day, as a single mutation
func (c *Calendar) SetPeriodNextDay(id string) error {
	p, err := c.Cycle().Period(id)
	if err != nil {
		return err
	}
	cur := c.local()
	t := time.Date(cur.Year(), cur.Month(), cur.Day(), p.StartHour, 0, 0, 0, cur.Location()).AddDate(0, 0, 1)
	return c.setInstant(t, true)
}

// SetDateAndPeriod jumps to the given date at the named period's start hour.
// The period is validated before the date is touched, so a bad id leaves the
// calendar unchanged.
func (c *Calendar) SetDateAndPeriod(year int, month time.Month, day int, id string) error {
	p, err := c.Cycle().Period(id)
	if err != nil {
		return err
	}
	loc := c.Location()
	t := time.Date(year, month, day, p.StartHour, 0, 0, 0, loc)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return ErrInvalidDate
	}
	return c.setInstant(t, true)
}

// AdvancePeriod moves to the next period in ascending start-hour order as a
// single mutation; from the last period of the day it wraps to the next
// day's first period. Ordinary advancement, not a warp.
func (c *Calendar) AdvancePeriod() error {
	cycle := c.Cycle()
	cur := c.local()

	id, err := cycle.Match(cur.Hour())
	if err != nil {
		return err
	}
	next, wrapped, err := cycle.After(id)
	if err != nil {
		return err
	}

	t := time.Date(cur.Year(), cur.Month(), cur.Day(), next.StartHour, 0, 0, 0, cur.Location())
	if wrapped {
		t = t.AddDate(0, 0, 1)
	}
	return c.setInstant(t, false)
}

// Subscribe registers an observer and returns its handle. Events are
// delivered synchronously in subscription order.
func (c *Calendar) Subscribe(o Observer) string {
	handle := uuid.NewString()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, subscription{handle: handle, observer: o})
	return handle
}

// Unsubscribe removes the observer registered under the handle
func (c *Calendar) Unsubscribe(handle string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, s := range c.subs {
		if s.handle == handle {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			return true
		}
	}
	return false
}
