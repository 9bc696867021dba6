package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/username/almanac/internal/calendar"
	"github.com/username/almanac/internal/config"
	"github.com/username/almanac/pkg/dateutil"
)

func infoCmd() *cobra.Command {
	var dateStr string
	var hour int
	var cycleName string
	var longitude float64

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the almanac for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg.ExpandEnvVars()

			if cycleName != "" {
				cfg.Calendar.Cycle = cycleName
			}
			if cmd.Flags().Changed("longitude") {
				cfg.Calendar.Longitude = longitude
			}

			cal, activeCycle, err := initializeCalendar(cfg)
			if err != nil {
				return err
			}

			if dateStr != "" {
				d, err := dateutil.ParseDate(dateStr)
				if err != nil {
					return err
				}
				if err := cal.SetYMD(d.Year(), d.Month(), d.Day()); err != nil {
					return fmt.Errorf("failed to set date: %w", err)
				}
			}
			if cmd.Flags().Changed("hour") {
				if err := cal.SetTime(hour); err != nil {
					return fmt.Errorf("failed to set hour: %w", err)
				}
			}

			printAlmanac(cal, activeCycle, cfg.Calendar.Longitude)
			return nil
		},
	}

	cmd.Flags().StringVar(&dateStr, "date", "", "Date to probe (YYYY-MM-DD, default from config)")
	cmd.Flags().IntVar(&hour, "hour", 0, "Hour of day 0-23")
	cmd.Flags().StringVar(&cycleName, "cycle", "", "Daily cycle name (overrides config)")
	cmd.Flags().Float64Var(&longitude, "longitude", 0, "Observer longitude for local sidereal time")

	return cmd
}

func printAlmanac(cal *calendar.Calendar, cycleName string, longitude float64) {
	fmt.Printf("🌙 Almanac for %04d-%02d-%02d (%s)\n", cal.Year(), int(cal.Month()), cal.Day(), cal.Weekday())
	fmt.Println("═══════════════════════════════════════════════════════")
	fmt.Printf("  Day of year:    %d\n", cal.DayOfYear())
	fmt.Printf("  Julian day:     %.2f\n", cal.JulianDay())
	fmt.Printf("  Season:         %s\n", cal.Season())
	fmt.Printf("  Moon phase:     %s (%d/8)\n", cal.MoonPhase(), int(cal.MoonPhase()))
	fmt.Printf("  Sidereal time:  %.2fh at midnight, %.2fh local (longitude %.2f°)\n",
		cal.SiderealTime(), cal.LocalSiderealTime(longitude), longitude)

	if id, err := cal.CurrentPeriod(); err == nil {
		fmt.Printf("  Period:         %s at %02d:00\n", id, cal.Hour())
	}

	fmt.Printf("\n📅 Period table (%s):\n", cycleName)
	printPeriodTable(cal.Cycle())
}

func cyclesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cycles",
		Short: "List available daily cycles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg.ExpandEnvVars()

			for _, name := range []string{"dayparts", "canonical"} {
				dc, _ := calendar.BuiltinCycle(name)
				fmt.Printf("📅 %s (built-in, %d periods)\n", name, dc.Len())
				fmt.Println("═══════════════════════════════════════════════════════")
				printPeriodTable(dc)
				fmt.Println()
			}

			if cfg.Calendar.CyclesFile == "" {
				return nil
			}
			cycles, err := calendar.LoadCycleFile(cfg.Calendar.CyclesFile, logger)
			if err != nil {
				return fmt.Errorf("failed to load cycles file: %w", err)
			}
			names := make([]string, 0, len(cycles))
			for name := range cycles {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				dc := cycles[name]
				fmt.Printf("📅 %s (from %s, %d periods)\n", name, cfg.Calendar.CyclesFile, dc.Len())
				fmt.Println("═══════════════════════════════════════════════════════")
				printPeriodTable(dc)
				fmt.Println()
			}

			return nil
		},
	}
}

func printPeriodTable(dc *calendar.DailyCycle) {
	ps := dc.Periods()
	for i, p := range ps {
		// A period runs to the hour before the next one starts; the last
		// period wraps past midnight to the first.
		end := (ps[(i+1)%len(ps)].StartHour + 23) % 24
		fmt.Printf("  %-12s %02d:00 – %02d:59\n", p.Label(), p.StartHour, end)
	}
}
