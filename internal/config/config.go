// Package config handles configuration management using Viper
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Pointer  PointerConfig  `mapstructure:"pointer" toml:"pointer"`
	Keyboard KeyboardConfig `mapstructure:"keyboard" toml:"keyboard"`
	Engine   EngineConfig   `mapstructure:"engine" toml:"engine"`
	Logging  LoggingConfig  `mapstructure:"logging" toml:"logging"`
	Journal  JournalConfig  `mapstructure:"journal" toml:"journal"`
	Server   ServerConfig   `mapstructure:"server" toml:"server"`

	// Global shortcuts bound by `inputkit listen`
	Shortcuts []ShortcutConfig `mapstructure:"shortcuts" toml:"shortcuts"`
}

// PointerConfig contains pointer facade settings
type PointerConfig struct {
	Delay     int  `mapstructure:"delay" toml:"delay"`         // Milliseconds after each pointer action
	Propagate bool `mapstructure:"propagate" toml:"propagate"` // Let clicks reach other applications while hooked
}

// KeyboardConfig contains keyboard facade settings
type KeyboardConfig struct {
	Delay int `mapstructure:"delay" toml:"delay"`
}

// EngineConfig selects the native backend
type EngineConfig struct {
	Backend    string `mapstructure:"backend" toml:"backend"`         // "robot" or "uinput"
	UInputPath string `mapstructure:"uinput_path" toml:"uinput_path"` // Only used by the uinput backend
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	LogLevel string `mapstructure:"log_level" toml:"log_level"` // Override LOG_LEVEL env var
}

// JournalConfig controls the event journal
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled"`
	Path    string `mapstructure:"path" toml:"path"`
}

// ServerConfig contains the remote feed and SSH settings
type ServerConfig struct {
	WSAddress  string `mapstructure:"ws_address" toml:"ws_address"`
	SSHAddress string `mapstructure:"ssh_address" toml:"ssh_address"`

	SSHHostKeyPath   string   `mapstructure:"ssh_host_key_path" toml:"ssh_host_key_path"`
	SSHWhitelist     []string `mapstructure:"ssh_whitelist" toml:"ssh_whitelist"`           // List of allowed SSH key fingerprints
	SSHWhitelistOnly bool     `mapstructure:"ssh_whitelist_only" toml:"ssh_whitelist_only"` // Only allow whitelisted keys
}

// ShortcutConfig binds a key combination to a script file
type ShortcutConfig struct {
	Combination string `mapstructure:"combination" toml:"combination"`
	Script      string `mapstructure:"script" toml:"script"`
	Description string `mapstructure:"description" toml:"description"`
}

// Backend names
const (
	BackendRobot  = "robot"
	BackendUInput = "uinput"
)

var (
	// ErrShortcutNotFound is returned when removing an unknown combination
	ErrShortcutNotFound = errors.New("shortcut not found")

	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Pointer: PointerConfig{
			Delay:     10,
			Propagate: true,
		},
		Keyboard: KeyboardConfig{
			Delay: 10,
		},
		Engine: EngineConfig{
			Backend:    BackendRobot,
			UInputPath: "/dev/uinput",
		},
		Logging: LoggingConfig{
			LogLevel: "", // Empty means use LOG_LEVEL env var
		},
		Journal: JournalConfig{
			Enabled: false,
			Path:    defaultJournalPath(),
		},
		Server: ServerConfig{
			WSAddress:        "127.0.0.1:52526",
			SSHAddress:       "127.0.0.1:52525",
			SSHHostKeyPath:   defaultHostKeyPath(),
			SSHWhitelist:     []string{},
			SSHWhitelistOnly: true,
		},
		Shortcuts: []ShortcutConfig{},
	}

	// Global config instance
	cfg *Config
	mu  sync.RWMutex

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName("inputkit")
	viper.SetConfigType("toml")

	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		if dir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(dir, "inputkit"))
		}
		viper.AddConfigPath(".")
	}

	// Set defaults - need to set individual fields for proper merging
	viper.SetDefault("pointer.delay", DefaultConfig.Pointer.Delay)
	viper.SetDefault("pointer.propagate", DefaultConfig.Pointer.Propagate)
	viper.SetDefault("keyboard.delay", DefaultConfig.Keyboard.Delay)

	viper.SetDefault("engine.backend", DefaultConfig.Engine.Backend)
	viper.SetDefault("engine.uinput_path", DefaultConfig.Engine.UInputPath)

	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)

	viper.SetDefault("journal.enabled", DefaultConfig.Journal.Enabled)
	viper.SetDefault("journal.path", DefaultConfig.Journal.Path)

	viper.SetDefault("server.ws_address", DefaultConfig.Server.WSAddress)
	viper.SetDefault("server.ssh_address", DefaultConfig.Server.SSHAddress)
	viper.SetDefault("server.ssh_host_key_path", DefaultConfig.Server.SSHHostKeyPath)
	viper.SetDefault("server.ssh_whitelist", DefaultConfig.Server.SSHWhitelist)
	viper.SetDefault("server.ssh_whitelist_only", DefaultConfig.Server.SSHWhitelistOnly)

	viper.SetDefault("shortcuts", DefaultConfig.Shortcuts)

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(configPathOverride != "" && errors.Is(err, os.ErrNotExist)) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults
	}

	return reload()
}

func reload() error {
	next := &Config{}
	if err := viper.Unmarshal(next); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if err := next.Validate(); err != nil {
		return err
	}

	mu.Lock()
	cfg = next
	mu.Unlock()
	return nil
}

// Validate checks values that viper cannot type check
func (c *Config) Validate() error {
	if c.Pointer.Delay < 0 {
		return fmt.Errorf("pointer.delay must be non-negative, got %d", c.Pointer.Delay)
	}
	if c.Keyboard.Delay < 0 {
		return fmt.Errorf("keyboard.delay must be non-negative, got %d", c.Keyboard.Delay)
	}
	switch c.Engine.Backend {
	case BackendRobot, BackendUInput:
	default:
		return fmt.Errorf("engine.backend must be %q or %q, got %q", BackendRobot, BackendUInput, c.Engine.Backend)
	}
	for i, s := range c.Shortcuts {
		if strings.TrimSpace(s.Combination) == "" {
			return fmt.Errorf("shortcuts[%d].combination is empty", i)
		}
	}
	return nil
}

// Get returns the current configuration
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if cfg == nil {
		// Return defaults if not initialized
		return &DefaultConfig
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	mu.Lock()
	defer mu.Unlock()
	cfg = c
}

// Save saves the current configuration to file
func Save() error {
	configPath := GetConfigPath()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// WriteDefault writes DefaultConfig to path. An existing file is left alone.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(DefaultConfig); err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}
	return nil
}

// Watch reloads the configuration whenever the file changes and then calls
// onChange with the new value. Reload failures keep the previous value.
func Watch(onChange func(*Config), onError func(error)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		if err := viper.ReadInConfig(); err != nil {
			if onError != nil {
				onError(fmt.Errorf("failed to re-read %s: %w", e.Name, err))
			}
			return
		}
		if err := reload(); err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onChange != nil {
			onChange(Get())
		}
	})
	viper.WatchConfig()
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	if configPathOverride != "" {
		return configPathOverride
	}

	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "inputkit.toml"
	}
	return filepath.Join(dir, "inputkit", "inputkit.toml")
}

// AddShortcut adds or replaces the shortcut bound to sc.Combination
func AddShortcut(sc ShortcutConfig) error {
	c := Get()

	for i, s := range c.Shortcuts {
		if strings.EqualFold(s.Combination, sc.Combination) {
			c.Shortcuts[i] = sc
			viper.Set("shortcuts", c.Shortcuts)
			return Save()
		}
	}

	c.Shortcuts = append(c.Shortcuts, sc)
	viper.Set("shortcuts", c.Shortcuts)
	return Save()
}

// RemoveShortcut removes the shortcut bound to combination
func RemoveShortcut(combination string) error {
	c := Get()

	for i, s := range c.Shortcuts {
		if strings.EqualFold(s.Combination, combination) {
			c.Shortcuts = append(c.Shortcuts[:i], c.Shortcuts[i+1:]...)
			viper.Set("shortcuts", c.Shortcuts)
			return Save()
		}
	}

	return fmt.Errorf("%w: %s", ErrShortcutNotFound, combination)
}

// ListShortcuts returns all configured shortcuts
func ListShortcuts() []ShortcutConfig {
	return Get().Shortcuts
}

// IsSSHKeyWhitelisted checks if an SSH key fingerprint is whitelisted
func IsSSHKeyWhitelisted(fingerprint string) bool {
	for _, fp := range Get().Server.SSHWhitelist {
		if fp == fingerprint {
			return true
		}
	}
	return false
}

// AddSSHKeyToWhitelist adds an SSH key fingerprint to the whitelist
func AddSSHKeyToWhitelist(fingerprint string) error {
	c := Get()

	for _, fp := range c.Server.SSHWhitelist {
		if fp == fingerprint {
			return nil
		}
	}

	c.Server.SSHWhitelist = append(c.Server.SSHWhitelist, fingerprint)
	viper.Set("server.ssh_whitelist", c.Server.SSHWhitelist)
	return Save()
}

// RemoveSSHKeyFromWhitelist removes an SSH key fingerprint from the whitelist
func RemoveSSHKeyFromWhitelist(fingerprint string) error {
	c := Get()

	for i, fp := range c.Server.SSHWhitelist {
		if fp == fingerprint {
			c.Server.SSHWhitelist = append(c.Server.SSHWhitelist[:i], c.Server.SSHWhitelist[i+1:]...)
			viper.Set("server.ssh_whitelist", c.Server.SSHWhitelist)
			return Save()
		}
	}

	return fmt.Errorf("SSH key not found in whitelist: %s", fingerprint)
}

func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "inputkit")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "inputkit")
	}
	return "."
}

func defaultJournalPath() string {
	return filepath.Join(dataDir(), "journal.db")
}

func defaultHostKeyPath() string {
	return filepath.Join(dataDir(), "host_key")
}
