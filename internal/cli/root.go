package cli

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smokyabdulrahman/prayer-times/internal/config"
)

// Global flags shared across all subcommands.
var (
	FlagLatitude         float64
	FlagLongitude        float64
	FlagTimezone         string
	FlagMethod           string
	FlagMadhab           string
	FlagHighLatitudeRule string
	FlagJSON             bool
	FlagCacheDir         string
	FlagTimeFormat       string
	FlagLogLevel         string
	FlagEnvFile          string
)

// flagKeys maps persistent flags onto the config keys they override.
var flagKeys = []struct{ flag, key string }{
	{"latitude", "latitude"},
	{"longitude", "longitude"},
	{"timezone", "timezone"},
	{"method", "method"},
	{"madhab", "madhab"},
	{"high-latitude-rule", "high_latitude_rule"},
	{"cache-dir", "cache_dir"},
	{"time-format", "time_format"},
}

// loadedConfig holds the config loaded during PersistentPreRunE, with the
// environment applied. Available to all subcommand handlers.
var loadedConfig *config.Config

// logger is built during PersistentPreRunE and writes to stderr.
var logger = zerolog.Nop()

// nowFunc is the clock used by every command.
var nowFunc = time.Now

// NewRootCmd creates the root command for the prayer-times CLI.
// The version parameter is set by the calling binary via ldflags.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "prayer-times",
		Short:   "Islamic prayer times CLI",
		Long:    "A full-featured CLI for Islamic prayer times computed locally from the position of the sun.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(FlagEnvFile); err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.ApplyEnv(); err != nil {
				return err
			}
			loadedConfig = cfg

			level := cfg.LogLevel
			if flagWasSet(cmd.Flags(), cmd.Root().PersistentFlags(), "log-level") {
				level = FlagLogLevel
			}
			l, err := newLogger(cmd.ErrOrStderr(), level)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		// Default action: show today's prayer schedule.
		RunE:          runToday,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Register global persistent flags.
	pf := rootCmd.PersistentFlags()
	pf.Float64Var(&FlagLatitude, "latitude", 0, "Override latitude")
	pf.Float64Var(&FlagLongitude, "longitude", 0, "Override longitude")
	pf.StringVar(&FlagTimezone, "timezone", "", "Override IANA time zone (default: config, then the system zone)")
	pf.StringVar(&FlagMethod, "method", "", "Override calculation method (see 'methods')")
	pf.StringVar(&FlagMadhab, "madhab", "", "Override madhab for asr: shafi or hanafi")
	pf.StringVar(&FlagHighLatitudeRule, "high-latitude-rule", "", "Override rule: middle-of-the-night, seventh-of-the-night, twilight-angle")
	pf.BoolVar(&FlagJSON, "json", false, "Output as JSON (where supported)")
	pf.StringVar(&FlagCacheDir, "cache-dir", "", "Cache directory (default: ~/.cache/prayer-times/)")
	pf.StringVar(&FlagTimeFormat, "time-format", "", "Time format: 12h or 24h (overrides config)")
	pf.StringVar(&FlagLogLevel, "log-level", "", "Log level: trace, debug, info, warn, error, disabled (default warn)")
	pf.StringVar(&FlagEnvFile, "env-file", ".env", "Optional dotenv file with PRAYER_TIMES_* variables")

	// Register subcommands.
	rootCmd.AddCommand(newNextCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newWeekCmd())
	rootCmd.AddCommand(newMonthCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newQiblaCmd())
	rootCmd.AddCommand(newScheduleCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newMethodsCmd())

	return rootCmd
}

// PrintVersion prints the version string in the expected format.
func PrintVersion(version string) string {
	return fmt.Sprintf("prayer-times %s\n", version)
}

// effectiveConfig returns the merged configuration values,
// applying the priority: CLI flags > environment > config file > defaults.
// It uses cobra's Changed() to detect whether a flag was explicitly set.
func effectiveConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg config.Config
	if loadedConfig != nil {
		cfg = *loadedConfig
	}

	flags := cmd.Flags()
	root := cmd.Root().PersistentFlags()

	for _, fk := range flagKeys {
		if !flagWasSet(flags, root, fk.flag) {
			continue
		}
		f := flags.Lookup(fk.flag)
		if f == nil {
			f = root.Lookup(fk.flag)
		}
		if err := cfg.Set(fk.key, f.Value.String()); err != nil {
			return nil, fmt.Errorf("--%s: %w", fk.flag, err)
		}
	}

	// Fill unset values from the defaults.
	defaults := config.Defaults()
	if cfg.Method == "" {
		cfg.Method = defaults.Method
	}
	if cfg.Madhab == "" {
		cfg.Madhab = defaults.Madhab
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = defaults.TimeFormat
	}
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = defaults.ServerAddr
	}

	return &cfg, nil
}

// flagWasSet checks if a flag was explicitly set on either the local or persistent flag set.
func flagWasSet(local, persistent *pflag.FlagSet, name string) bool {
	if f := local.Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := persistent.Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}
