package calendar

import (
	"errors"
	"testing"
)

func watchCycle(t *testing.T) *DailyCycle {
	t.Helper()

	dc := NewDailyCycle()
	err := dc.AddPeriods(
		Period{ID: "p4", StartHour: 4},
		Period{ID: "p8", StartHour: 8},
		Period{ID: "p12", StartHour: 12},
		Period{ID: "p19", StartHour: 19},
		Period{ID: "p22", StartHour: 22},
	)
	if err != nil {
		t.Fatalf("AddPeriods() error = %v", err)
	}
	return dc
}

func TestMatchWraparound(t *testing.T) {
	dc := watchCycle(t)

	tests := []struct {
		name string
		hour int
		want string
	}{
		{"Before earliest start wraps to latest", 3, "p22"},
		{"Exact start hour", 4, "p4"},
		{"Last hour of span", 7, "p4"},
		{"Next span start", 8, "p8"},
		{"Midday", 13, "p12"},
		{"Evening", 20, "p19"},
		{"Late night", 23, "p22"},
		{"Midnight", 0, "p22"},
		{"Negative hour normalizes", -1, "p22"},
		{"Hour 24 normalizes to midnight", 24, "p22"},
		{"Cross-day arithmetic", 28, "p4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dc.Match(tt.hour)
			if err != nil {
				t.Fatalf("Match(%d) error = %v", tt.hour, err)
			}
			if got != tt.want {
				t.Errorf("Match(%d) = %v, want %v", tt.hour, got, tt.want)
			}
		})
	}
}

func TestMatchEmptyCycle(t *testing.T) {
	dc := NewDailyCycle()

	_, err := dc.Match(12)
	if !errors.Is(err, ErrNoPeriods) {
		t.Errorf("Match() error = %v, want ErrNoPeriods", err)
	}
}

func TestSinglePeriodOwnsAllHours(t *testing.T) {
	dc := NewDailyCycle()
	if err := dc.AddPeriod(Period{ID: "allday", StartHour: 7}); err != nil {
		t.Fatalf("AddPeriod() error = %v", err)
	}

	for hour := 0; hour < 24; hour++ {
		got, err := dc.Match(hour)
		if err != nil {
			t.Fatalf("Match(%d) error = %v", hour, err)
		}
		if got != "allday" {
			t.Errorf("Match(%d) = %v, want allday", hour, got)
		}
	}
}

func TestAddPeriodValidation(t *testing.T) {
	tests := []struct {
		name    string
		period  Period
		wantErr error
	}{
		{"Empty id", Period{ID: "", StartHour: 5}, ErrInvalidPeriod},
		{"Negative start hour", Period{ID: "x", StartHour: -1}, ErrInvalidPeriod},
		{"Start hour past 23", Period{ID: "x", StartHour: 24}, ErrInvalidPeriod},
		{"Duplicate id", Period{ID: "p4", StartHour: 10}, ErrDuplicatePeriod},
		{"Duplicate start hour", Period{ID: "other", StartHour: 8}, ErrDuplicateStartHour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dc := watchCycle(t)

			err := dc.AddPeriod(tt.period)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddPeriod() error = %v, want %v", err, tt.wantErr)
			}

			// Failed registration must leave the table untouched.
			if dc.Len() != 5 {
				t.Errorf("Len() = %d, want 5", dc.Len())
			}
			if got, _ := dc.Match(10); got != "p8" {
				t.Errorf("Match(10) = %v, want p8", got)
			}
		})
	}
}

func TestAfter(t *testing.T) {
	dc := DayParts()

	tests := []struct {
		name        string
		id          string
		wantNext    string
		wantWrapped bool
		wantErr     bool
	}{
		{"Inner period", "morning", "afternoon", false, false},
		{"First period", "night", "morning", false, false},
		{"Last period wraps", "evening", "night", true, false},
		{"Unknown period", "dusk", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, wrapped, err := dc.After(tt.id)

			if (err != nil) != tt.wantErr {
				t.Fatalf("After(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if next.ID != tt.wantNext || wrapped != tt.wantWrapped {
				t.Errorf("After(%q) = (%v, %v), want (%v, %v)",
					tt.id, next.ID, wrapped, tt.wantNext, tt.wantWrapped)
			}
		})
	}

	if _, _, err := NewDailyCycle().After("anything"); !errors.Is(err, ErrNoPeriods) {
		t.Errorf("After() on empty cycle error = %v, want ErrNoPeriods", err)
	}
}

func TestPeriodLookup(t *testing.T) {
	dc := CanonicalHours()

	p, err := dc.Period("vespers")
	if err != nil {
		t.Fatalf("Period(vespers) error = %v", err)
	}
	if p.StartHour != 18 || p.Label() != "Vespers" {
		t.Errorf("Period(vespers) = %+v, want StartHour 18, label Vespers", p)
	}

	if _, err := dc.Period("siesta"); !errors.Is(err, ErrPeriodNotFound) {
		t.Errorf("Period(siesta) error = %v, want ErrPeriodNotFound", err)
	}
}

func TestBuiltinCycles(t *testing.T) {
	tests := []struct {
		name       string
		cycleName  string
		wantOK     bool
		wantLen    int
	}{
		{"Day parts", "dayparts", true, 4},
		{"Canonical hours", "canonical", true, 8},
		{"Unknown name", "martian", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dc, ok := BuiltinCycle(tt.cycleName)
			if ok != tt.wantOK {
				t.Fatalf("BuiltinCycle(%q) ok = %v, want %v", tt.cycleName, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if dc.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", dc.Len(), tt.wantLen)
			}

			// Every hour of the day must resolve to exactly one period.
			for hour := 0; hour < 24; hour++ {
				if _, err := dc.Match(hour); err != nil {
					t.Errorf("Match(%d) error = %v", hour, err)
				}
			}
		})
	}
}

func TestPeriodsReturnsCopy(t *testing.T) {
	dc := DayParts()

	ps := dc.Periods()
	if len(ps) != 4 {
		t.Fatalf("Periods() len = %d, want 4", len(ps))
	}
	for i := 1; i < len(ps); i++ {
		if ps[i-1].StartHour >= ps[i].StartHour {
			t.Errorf("Periods() not ascending at %d: %v", i, ps)
		}
	}

	ps[0].ID = "mutated"
	if got, _ := dc.Match(0); got != "night" {
		t.Errorf("Match(0) after external mutation = %v, want night", got)
	}
}
