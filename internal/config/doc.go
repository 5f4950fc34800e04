// Package config loads the runtime configuration of tweakrunner: where
// settings are stored, which host version overrides are evaluated against,
// logging, and the optional remote host bridge.
//
// Values come from tweakrunner.yaml (or the file given with --config) and
// are overridden by TWEAKRUNNER_* environment variables.
package config
