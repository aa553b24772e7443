package config

import (
	"os"

	"codeberg.org/mutker/lightctl/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel = "info"

	defaultTickRate      = 60
	defaultCooldown      = 2
	defaultFocusedScale  = 1.0
	defaultOverviewScale = 0.35
	defaultStressMillis  = 0
)

type Config struct {
	// TickRate is the simulated host loop rate in ticks per second.
	TickRate int `mapstructure:"tick_rate"`
	// Cooldown is the minimum number of seconds between quality adjustments.
	Cooldown int `mapstructure:"cooldown"`
	// FocusedScale and OverviewScale are the two defined camera scales.
	FocusedScale  float64 `mapstructure:"focused_scale"`
	OverviewScale float64 `mapstructure:"overview_scale"`
	// StressMillis adds synthetic frame time during the stress phase of the
	// simulated loop so governor transitions can be observed.
	StressMillis int  `mapstructure:"stress_millis"`
	Overview     bool `mapstructure:"overview"`
	Monitor      bool `mapstructure:"monitor"`
	Debug        bool
	Verbose      bool
	LogLevel     string `mapstructure:"log_level"`
	Telemetry    bool   `mapstructure:"telemetry"`
	TelemetryDB  string `mapstructure:"database"`
	MonitorAddr  string `mapstructure:"monitor_addr"`
}

func Load() (*Config, error) {
	errFactory := errors.New()
	v := viper.New()

	v.SetDefault("tick_rate", defaultTickRate)
	v.SetDefault("cooldown", defaultCooldown)
	v.SetDefault("focused_scale", defaultFocusedScale)
	v.SetDefault("overview_scale", defaultOverviewScale)
	v.SetDefault("stress_millis", defaultStressMillis)
	v.SetDefault("overview", false)
	v.SetDefault("monitor", false)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("telemetry", false)
	v.SetDefault("database", "")
	v.SetDefault("monitor_addr", "")

	flags := pflag.NewFlagSet("lightctl", pflag.ContinueOnError)
	flags.Int("tick-rate", defaultTickRate, "Simulated host loop rate in ticks per second")
	flags.Int("cooldown", defaultCooldown, "Minimum seconds between quality adjustments")
	flags.Int("stress-millis", defaultStressMillis, "Synthetic frame time injected during stress phases")
	flags.Bool("overview", false, "Start the camera in overview mode")
	flags.Bool("monitor", false, "Only observe: no synthetic stress is injected")
	flags.Bool("debug", false, "Enable debugging mode")
	flags.Bool("verbose", false, "Enable verbose logging")
	flags.String("log-level", "", "Log level (debug, info, warning, error)")
	flags.String("monitor-addr", "", "Address for the websocket monitor endpoint")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	// Load configuration from file
	if path := os.Getenv("LIGHTCTL_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("lightctl")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("LIGHTCTL")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err).
				WithMessage("Failed to read config file")
		}
	}

	// Override config file values with command line flags
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "tick-rate":
			v.Set("tick_rate", f.Value.String())
		case "stress-millis":
			v.Set("stress_millis", f.Value.String())
		case "log-level":
			v.Set("log_level", f.Value.String())
		case "monitor-addr":
			v.Set("monitor_addr", f.Value.String())
		default:
			v.Set(f.Name, f.Value.String())
		}
	})

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	debug, _ := flags.GetBool("debug")
	verbose, _ := flags.GetBool("verbose")
	config.Debug = debug
	config.Verbose = verbose

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.TickRate <= 0 {
		return errFactory.WithData(errors.ErrInvalidTickRate, c.TickRate)
	}

	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	if c.Telemetry && c.TelemetryDB == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "telemetry enabled without a database path")
	}

	return nil
}
