package config

import (
	"fmt"
	"reflect"
	"sync/atomic"
)

// current is the process-wide configuration. Readers get the instance that
// was current when they asked; a reload swaps in a new one and never mutates
// the old.
var current atomic.Pointer[Config]

// GetConfig returns the process-wide configuration, or nil before
// SetConfig or ReloadConfig has run.
func GetConfig() *Config {
	return current.Load()
}

// SetConfig installs cfg as the process-wide configuration.
func SetConfig(cfg *Config) {
	current.Store(cfg)
}

// ReloadConfig loads path with environment overrides and installs the result.
// On error the installed configuration is left alone.
func ReloadConfig(path string) (*Config, error) {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, fmt.Errorf("failed to reload configuration: %w", err)
	}
	current.Store(cfg)
	return cfg, nil
}

// RestartRequired lists the sections that differ between prev and next but
// are only read at startup: server, history, secrets, telemetry and watch.
// Source and export changes apply live and are not reported.
func RestartRequired(prev, next *Config) []string {
	if prev == nil || next == nil {
		return nil
	}
	var sections []string
	for _, s := range []struct {
		name      string
		old, next any
	}{
		{"server", prev.Server, next.Server},
		{"history", prev.History, next.History},
		{"secrets", prev.Secrets, next.Secrets},
		{"telemetry", prev.Telemetry, next.Telemetry},
		{"watch", prev.Watch, next.Watch},
	} {
		if !reflect.DeepEqual(s.old, s.next) {
			sections = append(sections, s.name)
		}
	}
	return sections
}
