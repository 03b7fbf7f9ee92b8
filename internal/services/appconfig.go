package services

import (
	"sync"

	"github.com/clearview-hq/clearview/backend/internal/config"
)

var (
	appConfig   *config.AppConfig
	appConfigMu sync.RWMutex
)

// SetAppConfig stores the application settings for services that build
// client-facing URLs. Called once during bootstrap.
func SetAppConfig(cfg *config.AppConfig) {
	appConfigMu.Lock()
	defer appConfigMu.Unlock()
	appConfig = cfg
}

// GetAppConfig returns the stored application settings, or nil before
// bootstrap
func GetAppConfig() *config.AppConfig {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}
