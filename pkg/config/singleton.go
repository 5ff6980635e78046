package config

import (
	"fmt"
	"sync"
)

var (
	globalConfig *Config
	configMutex  sync.RWMutex
	initOnce     sync.Once
)

// Initialize loads configuration from path with environment overrides
// and stores it as the process-wide singleton. Subsequent calls are
// ignored (guarded by sync.Once).
func Initialize(path string) error {
	var initErr error

	initOnce.Do(func() {
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			initErr = err
			return
		}

		configMutex.Lock()
		globalConfig = cfg
		configMutex.Unlock()
	})

	return initErr
}

// GetConfig returns the global configuration, or nil if Initialize
// has not succeeded yet. Thread-safe.
func GetConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// SetConfig installs cfg as the global configuration. Intended for
// tests; production code should use Initialize.
func SetConfig(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = cfg
}

// ReloadConfig reloads configuration from path and replaces the
// global instance only if loading and validation succeed.
func ReloadConfig(path string) error {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}

	configMutex.Lock()
	globalConfig = cfg
	configMutex.Unlock()

	return nil
}

// MustGetConfig returns the global configuration, panicking if
// Initialize has not been called successfully.
func MustGetConfig() *Config {
	cfg := GetConfig()
	if cfg == nil {
		panic("configuration not initialized: call Initialize first")
	}
	return cfg
}
