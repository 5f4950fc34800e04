package config

import (
	"fmt"
	"time"
)

// Defaults.
const (
	DefaultFile        = "tweakrunner.yaml"
	DefaultSettingsDir = ".tweakrunner"
	DefaultHostVersion = 15
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "pretty"
	DefaultNamespace   = "/"
	DefaultTimeout     = 15 * time.Second
)

// Config is the loaded configuration.
type Config struct {
	// SettingsDir holds one <pkg>.<Type>.hcl file per settings type.
	// Env: TWEAKRUNNER_SETTINGS_DIR
	SettingsDir string `mapstructure:"settings_dir"`

	// HostVersion is the version overrides are gated on.
	// Env: TWEAKRUNNER_HOST_VERSION
	HostVersion int `mapstructure:"host_version"`

	// PreGUI draws the tweak panel before the host's own panel.
	// Env: TWEAKRUNNER_PRE_GUI
	PreGUI bool `mapstructure:"pre_gui"`

	Log    LogConfig    `mapstructure:"log"`
	Remote RemoteConfig `mapstructure:"remote"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Env: TWEAKRUNNER_LOG_LEVEL
	Level string `mapstructure:"level"`
	// Format is one of pretty, text, json.
	// Env: TWEAKRUNNER_LOG_FORMAT
	Format string `mapstructure:"format"`
}

// RemoteConfig points the bridge at a socket.io server that delivers host
// callbacks.
type RemoteConfig struct {
	// Env: TWEAKRUNNER_REMOTE_URL
	URL string `mapstructure:"url"`
	// Env: TWEAKRUNNER_REMOTE_NAMESPACE
	Namespace string `mapstructure:"namespace"`
	// Env: TWEAKRUNNER_REMOTE_INSECURE_SKIP_VERIFY
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify"`
	// Timeout bounds the initial connection.
	// Env: TWEAKRUNNER_REMOTE_TIMEOUT
	Timeout time.Duration `mapstructure:"timeout"`
}

// Validate checks the enumerated fields.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", c.Log.Level)
	}
	switch c.Log.Format {
	case "pretty", "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be 'pretty', 'text', or 'json'", c.Log.Format)
	}
	if c.SettingsDir == "" {
		return fmt.Errorf("settings directory cannot be empty")
	}
	if c.Remote.Timeout <= 0 {
		return fmt.Errorf("remote timeout must be positive, got %s", c.Remote.Timeout)
	}
	return nil
}
