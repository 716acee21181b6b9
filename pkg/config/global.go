package config

import "sync"

var (
	globalMu     sync.RWMutex
	globalConfig *Config
)

// SetGlobalConfig installs the process-wide configuration. Called once at startup
// before any resource is opened.
func SetGlobalConfig(cfg *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = cfg
}

// GetGlobalConfig returns the process-wide configuration, or nil before startup.
func GetGlobalConfig() *Config {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalConfig
}
