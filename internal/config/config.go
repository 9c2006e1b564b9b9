// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	AppName       = "ttltiming"
	ConfigType    = "yaml"
	DefaultConfig = `# TTL timing configuration

# Recording
stim_channel: "Status"  # label of the trigger channel
shortest_event: 2       # runs shorter than this many samples are not events

# Output
format: "tsv"           # tsv or table
verbose: false          # log code histograms and per-interval gaps
debug: false            # log pattern matching and decoder details (also any non-empty DEBUG)

# Extra task definitions (TOML), checked before the built-in tasks
task_files: []

# "newest" discovery
newest_root: "/Volumes/Hera/Raw/EEG"
newest_max_age: "24h"   # session directories modified within this window
newest_depth: 2         # session directories sit this many levels below the root
`
)

// DebugEnv enables debug output when set to any non-empty value.
const DebugEnv = "DEBUG"

// Output formats
const (
	FormatTSV   = "tsv"
	FormatTable = "table"
)

// Settings holds all application configuration
type Settings struct {
	// Recording
	StimChannel   string `mapstructure:"stim_channel"`
	ShortestEvent int    `mapstructure:"shortest_event"`

	// Output
	Format  string `mapstructure:"format"`
	Verbose bool   `mapstructure:"verbose"`
	Debug   bool   `mapstructure:"debug"`

	// Task definitions
	TaskFiles []string `mapstructure:"task_files"`

	// Discovery
	NewestRoot   string        `mapstructure:"newest_root"`
	NewestMaxAge time.Duration `mapstructure:"newest_max_age"`
	NewestDepth  int           `mapstructure:"newest_depth"`
}

// Init initializes Viper with defaults and config file.
// Config file search order: current directory, then ~/.config/ttltiming/
func Init() error {
	viper.SetDefault("stim_channel", "Status")
	viper.SetDefault("shortest_event", 2)
	viper.SetDefault("format", FormatTSV)
	viper.SetDefault("verbose", false)
	viper.SetDefault("debug", false)
	viper.SetDefault("task_files", []string{})
	viper.SetDefault("newest_root", "/Volumes/Hera/Raw/EEG")
	viper.SetDefault("newest_max_age", "24h")
	viper.SetDefault("newest_depth", 2)

	// DEBUG is a presence switch: any non-empty value turns debug on
	if os.Getenv(DebugEnv) != "" {
		viper.Set("debug", true)
	}

	// Support both config.yaml and .config.yaml
	viper.SetConfigType(ConfigType)

	// Priority order: current directory first, then XDG config
	viper.AddConfigPath(".")

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	viper.AddConfigPath(filepath.Join(configDir, AppName))

	// Try .config.yaml first (hidden file), then config.yaml
	viper.SetConfigName(".config")
	if err = viper.ReadInConfig(); err != nil {
		viper.SetConfigName("config")
		err = viper.ReadInConfig()
	}

	// Read config file - if not found, create default in XDG config dir
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("read config: %w", err)
		}
		if err = ensureConfigExists(filepath.Join(configDir, AppName)); err != nil {
			return err
		}
		if err = viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return nil
}

func ensureConfigExists(configPath string) error {
	configFile := filepath.Join(configPath, "config.yaml")

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err = os.MkdirAll(configPath, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
		if err = os.WriteFile(configFile, []byte(DefaultConfig), 0644); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
	}
	return nil
}

// Get returns the current settings
func Get() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &s, nil
}

// Validate checks that all settings are within acceptable ranges
func (s *Settings) Validate() error {
	var errs []error

	if s.StimChannel == "" {
		errs = append(errs, errors.New("stim_channel must not be empty"))
	}
	if s.ShortestEvent < 1 || s.ShortestEvent > 1000 {
		errs = append(errs, fmt.Errorf("shortest_event must be between 1 and 1000 samples, got %d", s.ShortestEvent))
	}
	if s.Format != FormatTSV && s.Format != FormatTable {
		errs = append(errs, fmt.Errorf("format must be %q or %q, got %q", FormatTSV, FormatTable, s.Format))
	}
	for i, f := range s.TaskFiles {
		if f == "" {
			errs = append(errs, fmt.Errorf("task_files[%d] is empty", i))
		}
	}
	if s.NewestMaxAge <= 0 {
		errs = append(errs, fmt.Errorf("newest_max_age must be positive, got %v", s.NewestMaxAge))
	}
	if s.NewestDepth < 1 || s.NewestDepth > 10 {
		errs = append(errs, fmt.Errorf("newest_depth must be between 1 and 10, got %d", s.NewestDepth))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
