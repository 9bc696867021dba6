package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/username/almanac/internal/calendar"
	"github.com/username/almanac/internal/config"
	"github.com/username/almanac/internal/daemon"
)

var (
	configPath string
	logger     *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "almanac",
		Short: "Game-world calendrical engine",
		Long:  "Track in-world dates, day periods, seasons, moon phases and sidereal time for game sessions",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load config to get log file path
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Logging.File != "" {
				logger, err = initFileLogger(cfg.Logging.File, cfg.Logging.Level)
				if err != nil {
					initLogger() // Fallback to console
				}
			} else {
				initLogger() // Default console logger
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path")

	rootCmd.AddCommand(infoCmd())
	rootCmd.AddCommand(cyclesCmd())
	rootCmd.AddCommand(daemonCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func daemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the game clock daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg.ExpandEnvVars()

			cal, cycleName, err := initializeCalendar(cfg)
			if err != nil {
				return err
			}

			logger.Info("Starting clock daemon",
				zap.Time("start", cal.Time()),
				zap.String("cycle", cycleName),
				zap.String("pace", cfg.Daemon.GetPace().String()))

			d := daemon.NewDaemon(cal, cycleName, cfg, logger)
			return d.Start()
		},
	}
}

// initializeCalendar builds the calendar and daily cycle from configuration
func initializeCalendar(cfg *config.Config) (*calendar.Calendar, string, error) {
	loc, err := cfg.Calendar.GetStartLocation()
	if err != nil {
		return nil, "", err
	}

	var cal *calendar.Calendar
	if cfg.Calendar.Year != 0 {
		cal = calendar.NewYMD(cfg.Calendar.Year, time.Month(cfg.Calendar.Month), cfg.Calendar.Day, loc, logger)
		if cfg.Calendar.Hour != 0 {
			if err := cal.SetTime(cfg.Calendar.Hour); err != nil {
				return nil, "", fmt.Errorf("failed to set starting hour: %w", err)
			}
		}
	} else {
		cal = calendar.New(loc, logger)
	}

	cycleName := cfg.Calendar.Cycle
	if cycleName == "" {
		cycleName = "dayparts"
	}

	dc, err := resolveCycle(cfg, cycleName)
	if err != nil {
		return nil, "", err
	}
	cal.SetCycle(dc)

	return cal, cycleName, nil
}

// resolveCycle looks a cycle up by name: built-ins first, then the
// configured cycles file
func resolveCycle(cfg *config.Config, name string) (*calendar.DailyCycle, error) {
	if dc, ok := calendar.BuiltinCycle(name); ok {
		return dc, nil
	}
	if cfg.Calendar.CyclesFile == "" {
		return nil, fmt.Errorf("unknown cycle %q and no cycles file configured", name)
	}

	cycles, err := calendar.LoadCycleFile(cfg.Calendar.CyclesFile, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load cycles file: %w", err)
	}
	dc, ok := cycles[name]
	if !ok {
		return nil, fmt.Errorf("cycle %q not found in %s", name, cfg.Calendar.CyclesFile)
	}
	return dc, nil
}

func initLogger() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	// Setup encoder
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Parse log level
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	// Create core with lumberjack writer
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
