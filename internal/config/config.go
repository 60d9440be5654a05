package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration. Values are resolved in flag >
// environment > config file > default order by Viper.
type Config struct {
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	LogFile        string        `mapstructure:"log_file"`
	LogMaxSizeMB   int           `mapstructure:"log_max_size_mb"`
	LogMaxBackups  int           `mapstructure:"log_max_backups"`
	PresetsFile    string        `mapstructure:"presets_file"`
	EnableHRM      bool          `mapstructure:"enable_hrm"`
	HRMScanTimeout time.Duration `mapstructure:"hrm_scan_timeout"`
}

// DefaultDir is where the app keeps its config, presets and preferences.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".intervally")
}

// Load parses args (excluding the program name) and resolves the full
// configuration. A missing config file is not an error; a malformed one is.
func Load(args []string) (Config, error) {
	dir := DefaultDir()

	flags := pflag.NewFlagSet("intervally", pflag.ContinueOnError)
	flags.Duration("poll-interval", 50*time.Millisecond, "timer tick granularity")
	flags.String("log-file", filepath.Join(dir, "intervally.log"), "log file path")
	flags.String("presets-file", filepath.Join(dir, "presets.yaml"), "user workout presets")
	flags.Bool("enable-hrm", false, "scan for a Bluetooth heart rate monitor")
	flags.Duration("hrm-scan-timeout", 30*time.Second, "how long to scan for a heart rate monitor")
	if err := flags.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parsing flags: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("INTERVALLY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("poll_interval", "50ms")
	v.SetDefault("log_file", filepath.Join(dir, "intervally.log"))
	v.SetDefault("log_max_size_mb", 5)
	v.SetDefault("log_max_backups", 3)
	v.SetDefault("presets_file", filepath.Join(dir, "presets.yaml"))
	v.SetDefault("enable_hrm", false)
	v.SetDefault("hrm_scan_timeout", "30s")

	// Flags the user actually passed win over everything else.
	flags.Visit(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		v.Set(key, f.Value.String())
	})

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if cfg.PollInterval <= 0 {
		return Config{}, fmt.Errorf("poll_interval must be positive, got %v", cfg.PollInterval)
	}
	return cfg, nil
}
