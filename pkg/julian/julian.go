// Package julian converts between civil dates and Julian days.
package julian

import "time"

const (
	// UnixEpoch is the Julian day of 1970-01-01T00:00:00Z.
	UnixEpoch = 2440587.5

	// J2000 is the Julian day of the J2000.0 epoch (2000-01-01T12:00:00 TT).
	J2000 = 2451545.0
)

// Day returns the fractional astronomical Julian day of the given instant.
func Day(t time.Time) float64 {
	return float64(t.Unix())/86400.0 + UnixEpoch
}

// DayNumber returns the Julian Day Number of a Gregorian calendar date.
// The JDN labels the astronomical day beginning at noon of the civil date.
func DayNumber(year int, month time.Month, day int) int {
	a := (14 - int(month)) / 12
	y := year + 4800 - a
	m := int(month) + 12*a - 3

	return day + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
}

// YMD is the inverse of DayNumber.
func YMD(n int) (year int, month time.Month, day int) {
	a := n + 32044
	b := (4*a + 3) / 146097
	c := a - 146097*b/4
	d := (4*c + 3) / 1461
	e := c - 1461*d/4
	m := (5*e + 2) / 153

	day = e - (153*m+2)/5 + 1
	month = time.Month(m + 3 - 12*(m/10))
	year = 100*b + d - 4800 + m/10
	return
}
