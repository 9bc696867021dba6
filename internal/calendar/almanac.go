package calendar

import (
	"math"
	"time"

	"github.com/username/almanac/pkg/dateutil"
	"github.com/username/almanac/pkg/julian"
)

// Season represents a quarter of the year
type Season int

const (
	SeasonWinter Season = iota
	SeasonSpring
	SeasonSummer
	SeasonFall
)

func (s Season) String() string {
	switch s {
	case SeasonWinter:
		return "winter"
	case SeasonSpring:
		return "spring"
	case SeasonSummer:
		return "summer"
	case SeasonFall:
		return "fall"
	}
	return "unknown"
}

// MoonPhase represents one of the eight named lunar phases
type MoonPhase int

const (
	MoonNew MoonPhase = iota + 1
	MoonWaxingCrescent
	MoonFirstQuarter
	MoonWaxingGibbous
	MoonFull
	MoonWaningGibbous
	MoonLastQuarter
	MoonWaningCrescent
)

func (m MoonPhase) String() string {
	switch m {
	case MoonNew:
		return "new"
	case MoonWaxingCrescent:
		return "waxing crescent"
	case MoonFirstQuarter:
		return "first quarter"
	case MoonWaxingGibbous:
		return "waxing gibbous"
	case MoonFull:
		return "full"
	case MoonWaningGibbous:
		return "waning gibbous"
	case MoonLastQuarter:
		return "last quarter"
	case MoonWaningCrescent:
		return "waning crescent"
	}
	return "unknown"
}

// Season boundaries as month*100+day keys. Mid-month approximations of the
// solstice and equinox dates, accurate to within about a day.
const (
	springStart = 315  // Mar 15
	summerStart = 615  // Jun 15
	fallStart   = 915  // Sep 15
	winterStart = 1215 // Dec 15
)

// seasonOf classifies a date by its (month, day) against the fixed
// boundaries; winter wraps across year-end.
func seasonOf(t time.Time) Season {
	md := int(t.Month())*100 + t.Day()

	switch {
	case md >= winterStart || md < springStart:
		return SeasonWinter
	case md < summerStart:
		return SeasonSpring
	case md < fallStart:
		return SeasonSummer
	default:
		return SeasonFall
	}
}

// moonPhaseOf computes the lunar phase from (year, day-of-year) using the
// golden-number/epact closed form. Approximate to within about a day; not
// an ephemeris.
func moonPhaseOf(t time.Time) MoonPhase {
	d := t.YearDay()
	g := t.Year()%19 + 1
	e := (11*g + 18) % 30
	if (e == 25 && g > 11) || e == 24 {
		e++
	}
	return MoonPhase((((d+e)*6+11)%177/22)&7 + 1)
}

// siderealOf approximates Greenwich sidereal time at local midnight of the
// given date, as a whole hour in [0, 24).
func siderealOf(t time.Time) float64 {
	days := julian.Day(dateutil.StartOfDay(t)) - julian.J2000
	gst := 18.697375 + 24.065709824279*days
	return normalizeHours(math.Round(gst))
}

// normalizeHours reduces a fractional hour into [0, 24)
func normalizeHours(h float64) float64 {
	for h < 0 {
		h += 24
	}
	for h >= 24 {
		h -= 24
	}
	return h
}
