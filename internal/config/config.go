// Package config loads brr settings from an optional YAML file and BRR_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/metcalfc/brrtoc/internal/autotoc"
)

const envPrefix = "BRR"

// Config is the full set of user settings.
type Config struct {
	WPM      int            `mapstructure:"wpm" yaml:"wpm"`
	LogLevel string         `mapstructure:"log_level" yaml:"log_level"`
	Detector autotoc.Params `mapstructure:"detector" yaml:"detector"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		WPM:      300,
		LogLevel: "info",
		Detector: autotoc.DefaultParams(),
	}
}

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	v         *viper.Viper
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a config manager and loads the initial config. An
// empty cfgFile searches the default config directory; a missing file there
// is not an error.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{v: viper.New()}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// Load is NewManager(cfgFile).Get() for callers that never reload.
func Load(cfgFile string) (*Config, error) {
	cm, err := NewManager(cfgFile)
	if err != nil {
		return nil, err
	}
	return cm.Get(), nil
}

func (cm *Manager) initViper(cfgFile string) error {
	defaults, err := flatten(DefaultConfig())
	if err != nil {
		return err
	}
	for key, value := range defaults {
		cm.v.SetDefault(key, value)
	}

	// BRR_WPM, BRR_DETECTOR_SECOND_STAGE_MIN, BRR_DETECTOR_SIZE_FENCE_FACTOR, ...
	cm.v.SetEnvPrefix(envPrefix)
	cm.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cm.v.AutomaticEnv()

	if cfgFile != "" {
		cm.v.SetConfigFile(cfgFile)
	} else {
		cm.v.SetConfigName("config")
		cm.v.SetConfigType("yaml")
		cm.v.AddConfigPath(Dir())
	}

	if err := cm.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.WPM <= 0 {
		return nil, fmt.Errorf("wpm must be positive, got %d", cfg.WPM)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// ConfigFile returns the file the configuration was read from, or "".
func (cm *Manager) ConfigFile() string {
	return cm.v.ConfigFileUsed()
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig reloads the configuration whenever the config file changes.
// A reload that fails to parse keeps the previous configuration.
func (cm *Manager) WatchConfig() {
	if cm.v.ConfigFileUsed() == "" {
		return
	}
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cm.reload()
	})
	cm.v.WatchConfig()
}

func (cm *Manager) reload() {
	cfg, err := cm.load()
	if err != nil {
		return
	}

	cm.mu.Lock()
	cm.config = cfg
	callbacks := make([]func(*Config), len(cm.callbacks))
	copy(callbacks, cm.callbacks)
	cm.mu.Unlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
}

// Dir returns XDG_CONFIG_HOME/brr or ~/.config/brr
func Dir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "brr")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "brr")
}

// DefaultPath is where WriteDefault puts the config when no path is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// WriteDefault writes the default configuration to path, creating parent
// directories. It refuses to overwrite an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	header := []byte(`# brr configuration
# Every key can be overridden from the environment, e.g. BRR_WPM=450 or
# BRR_DETECTOR_SECOND_STAGE_MIN=0.5

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}

// flatten renders cfg as dotted viper keys so every leaf gets a default and
// is therefore reachable from the environment.
func flatten(cfg *Config) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to unmarshal defaults: %w", err)
	}
	out := make(map[string]any)
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if sub, ok := v.(map[string]any); ok {
				walk(key, sub)
				continue
			}
			out[key] = v
		}
	}
	walk("", tree)
	return out, nil
}
