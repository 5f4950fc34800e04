package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "TWEAKRUNNER"

// keys lists every configuration key with its default. Each is bound to
// TWEAKRUNNER_<KEY> with dots replaced by underscores.
var keys = map[string]any{
	"settings_dir":                DefaultSettingsDir,
	"host_version":                DefaultHostVersion,
	"pre_gui":                     false,
	"log.level":                   DefaultLogLevel,
	"log.format":                  DefaultLogFormat,
	"remote.url":                  "",
	"remote.namespace":            DefaultNamespace,
	"remote.insecure_skip_verify": false,
	"remote.timeout":              DefaultTimeout,
}

// Loader reads configuration from a YAML file and the environment.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader with defaults and environment bindings set.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, def := range keys {
		v.SetDefault(key, def)
		_ = v.BindEnv(key)
	}
	return &Loader{v: v}
}

// Set overrides a key, e.g. from a command-line flag. Overrides win over the
// file and the environment.
func (l *Loader) Set(key string, value any) {
	l.v.Set(key, value)
}

// Load reads path, or DefaultFile when path is empty, and returns the
// validated configuration. A missing default file is not an error; a
// missing explicit file is.
func (l *Loader) Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	l.v.SetConfigFile(path)
	l.v.SetConfigType("yaml")

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
		if !missing || explicit {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
