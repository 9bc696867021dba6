//go:build windows
// +build windows

package daemon

import (
	"fmt"
	"syscall"
	"unsafe"

	"fyne.io/systray"
	"go.uber.org/zap"

	"github.com/username/almanac/internal/calendar"
)

var (
	user32      = syscall.NewLazyDLL("user32.dll")
	messageBoxW = user32.NewProc("MessageBoxW")
)

const (
	MB_OK              = 0x00000000
	MB_ICONINFORMATION = 0x00000040
)

// TrayApp represents system tray application
type TrayApp struct {
	daemon *Daemon
	logger *zap.Logger
	quit   chan struct{}
}

// NewTrayApp creates a new system tray application
func NewTrayApp(daemon *Daemon, logger *zap.Logger) (*TrayApp, error) {
	return &TrayApp{
		daemon: daemon,
		logger: logger,
		quit:   make(chan struct{}),
	}, nil
}

// Run starts the system tray application (blocks until Quit)
func (t *TrayApp) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *TrayApp) onReady() {
	systray.SetTitle("AL")
	systray.SetTooltip(t.daemon.statusLine())

	// Add menu items
	mAdvance := systray.AddMenuItem("Advance Hour", "Advance game time one hour")
	systray.AddSeparator()
	mStatus := systray.AddMenuItem("Status", "Show current game time")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit the application")

	// Keep the tooltip current as game time moves.
	t.daemon.cal.Subscribe(calendar.ObserverFunc(func(e calendar.Event) {
		if e.Kind() == calendar.EventKindDateChange {
			systray.SetTooltip(t.daemon.statusLine())
		}
	}))

	// Start the clock loop in background
	go t.daemon.runClock()

	// Handle menu item clicks
	go func() {
		for {
			select {
			case <-mAdvance.ClickedCh:
				t.logger.Info("Advance Hour clicked from tray")
				go t.daemon.AdvanceNow()
			case <-mStatus.ClickedCh:
				t.logger.Info("Status clicked from tray")
				t.showStatus()
			case <-mQuit.ClickedCh:
				t.logger.Info("Quit clicked from tray")
				t.daemon.Stop()
				systray.Quit()
				return
			case <-t.quit:
				systray.Quit()
				return
			}
		}
	}()
}

func (t *TrayApp) onExit() {
	t.logger.Info("System tray exited")
}

// Stop stops the system tray application
func (t *TrayApp) Stop() {
	close(t.quit)
}

// showStatus shows current game time status
func (t *TrayApp) showStatus() {
	status := t.daemon.GetStatus()
	t.logger.Info("Current status", zap.Any("status", status))

	message := fmt.Sprintf(
		"Date: %v %02d:00\nPeriod: %v\nSeason: %v\nMoon: %v\nSidereal: %vh\nPace: %v per game hour",
		status["date"],
		status["hour"],
		status["period"],
		status["season"],
		status["moon_phase"],
		status["sidereal_hour"],
		status["pace"],
	)
	systray.SetTooltip(t.daemon.statusLine())

	// Show MessageBox with status
	showMessageBox("Almanac Status", message)
}

func showMessageBox(title, message string) {
	titlePtr, _ := syscall.UTF16PtrFromString(title)
	messagePtr, _ := syscall.UTF16PtrFromString(message)
	messageBoxW.Call(
		0,
		uintptr(unsafe.Pointer(messagePtr)),
		uintptr(unsafe.Pointer(titlePtr)),
		uintptr(MB_OK|MB_ICONINFORMATION),
	)
}
