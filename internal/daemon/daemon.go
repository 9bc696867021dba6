// Package daemon drives a game calendar forward in real time: one game hour
// per configured pace, with optional catch-up after suspend and a system
// tray presence on Windows.
package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/username/almanac/internal/calendar"
	"github.com/username/almanac/internal/config"
)

// Daemon represents the clock daemon process
type Daemon struct {
	cal        *calendar.Calendar
	cycleName  string
	pace       time.Duration // real time per game hour
	catchUp    bool
	systemTray bool
	longitude  float64
	logger     *zap.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	trayApp    *TrayApp
	subHandle  string
	mu         sync.Mutex // protects lastTick and guards against overlapping advances
	lastTick   time.Time
}

// NewDaemon creates a new daemon driving the given calendar
func NewDaemon(cal *calendar.Calendar, cycleName string, cfg *config.Config, logger *zap.Logger) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		cal:        cal,
		cycleName:  cycleName,
		pace:       cfg.Daemon.GetPace(),
		catchUp:    cfg.Daemon.CatchUp,
		systemTray: cfg.Daemon.SystemTray,
		longitude:  cfg.Calendar.Longitude,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start starts the daemon and blocks until it stops
func (d *Daemon) Start() error {
	d.subHandle = d.cal.Subscribe(calendar.ObserverFunc(d.logEvent))

	// System tray is Windows-only; fall back to console mode elsewhere.
	if d.systemTray {
		d.logger.Info("Initializing system tray")
		trayApp, err := NewTrayApp(d, d.logger)
		if err != nil {
			d.logger.Warn("Failed to initialize system tray", zap.Error(err))
			return d.runClock()
		}
		d.trayApp = trayApp
		// Run tray (blocks until Quit)
		d.trayApp.Run()
		return nil
	}

	d.logger.Info("Running without system tray")
	return d.runClock()
}

// logEvent is the daemon's calendar observer
func (d *Daemon) logEvent(e calendar.Event) {
	switch ev := e.(type) {
	case calendar.DateChangeEvent:
		d.logger.Info("Game time advanced", zap.Time("date", ev.Date))
	case calendar.PeriodChangeEvent:
		d.logger.Info("Period changed",
			zap.String("from", ev.From),
			zap.String("to", ev.To))
	case calendar.TimeWarpEvent:
		d.logger.Warn("Time warp",
			zap.Time("from", ev.From),
			zap.Time("to", ev.To))
	}
}

// runClock runs the tick loop until a signal or Stop
func (d *Daemon) runClock() error {
	d.logger.Info("Clock daemon started",
		zap.Duration("pace", d.pace),
		zap.String("cycle", d.cycleName),
		zap.Bool("catch_up", d.catchUp))

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	d.mu.Lock()
	d.lastTick = time.Now()
	d.mu.Unlock()

	ticker := time.NewTicker(d.pace)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			d.logger.Info("Clock daemon stopped")
			if d.trayApp != nil {
				d.trayApp.Stop()
			}
			return nil

		case sig := <-sigChan:
			d.logger.Info("Received signal, shutting down",
				zap.String("signal", sig.String()))
			if d.trayApp != nil {
				d.trayApp.Stop()
			}
			d.Stop()
			return nil

		case <-ticker.C:
			d.tick()
		}
	}
}

// tick advances the calendar, catching up on hours missed while the host
// was suspended
func (d *Daemon) tick() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	hours := 1
	if d.catchUp && !d.lastTick.IsZero() {
		elapsed := now.Sub(d.lastTick)
		if missed := int(elapsed / d.pace); missed > 1 {
			hours = missed
			d.logger.Info("Catching up missed ticks",
				zap.Duration("elapsed", elapsed),
				zap.Int("hours", hours))
		}
	}
	d.lastTick = now

	if err := d.cal.AdvanceHours(hours); err != nil {
		d.logger.Error("Failed to advance game time",
			zap.Int("hours", hours),
			zap.Error(err))
	}
}

// AdvanceNow advances one game hour immediately (tray menu action)
func (d *Daemon) AdvanceNow() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.logger.Info("Manual advance triggered")
	if err := d.cal.AdvanceHour(); err != nil {
		d.logger.Error("Manual advance failed", zap.Error(err))
	}
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	if d.subHandle != "" {
		d.cal.Unsubscribe(d.subHandle)
		d.subHandle = ""
	}
	d.cancel()
}

// RunWithTimeout runs the daemon for a bounded duration (for testing)
func (d *Daemon) RunWithTimeout(timeout time.Duration) error {
	d.logger.Info("Clock daemon started with timeout",
		zap.Duration("timeout", timeout),
		zap.Duration("pace", d.pace))

	timeoutCtx, timeoutCancel := context.WithTimeout(d.ctx, timeout)
	defer timeoutCancel()

	d.mu.Lock()
	d.lastTick = time.Now()
	d.mu.Unlock()

	ticker := time.NewTicker(d.pace)
	defer ticker.Stop()

	for {
		select {
		case <-timeoutCtx.Done():
			d.logger.Info("Clock daemon stopped (timeout reached)")
			return nil

		case <-ticker.C:
			d.tick()
		}
	}
}

// GetStatus returns daemon status for the tray and logs
func (d *Daemon) GetStatus() map[string]interface{} {
	status := map[string]interface{}{
		"date":          d.cal.Time().Format("2006-01-02"),
		"hour":          d.cal.Hour(),
		"season":        d.cal.Season().String(),
		"moon_phase":    d.cal.MoonPhase().String(),
		"sidereal_hour": d.cal.LocalSiderealTime(d.longitude),
		"cycle":         d.cycleName,
		"pace":          d.pace.String(),
	}

	if id, err := d.cal.CurrentPeriod(); err == nil {
		status["period"] = id
	}

	return status
}

// statusLine formats a one-line summary for the tray tooltip
func (d *Daemon) statusLine() string {
	period := "?"
	if id, err := d.cal.CurrentPeriod(); err == nil {
		period = id
	}
	return fmt.Sprintf("%s %02d:00 (%s)", d.cal.Time().Format("2006-01-02"), d.cal.Hour(), period)
}
