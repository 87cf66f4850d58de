package boot

import (
	"os"
	"sync"
)

// ConfigPathEnv overrides the default configuration path.
const ConfigPathEnv = "XHOOK_CONFIG_PATH"

// ConfigManager manages the configuration path of the process
type ConfigManager struct {
	configPath string
	mu         sync.RWMutex
}

var (
	configManager *ConfigManager
	once          sync.Once
)

// GetConfigManager returns singleton configuration manager instance
func GetConfigManager() *ConfigManager {
	once.Do(func() {
		configManager = &ConfigManager{}
	})
	return configManager
}

// SetConfigPath sets configuration path
func (cm *ConfigManager) SetConfigPath(path string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.configPath = path
}

// GetConfigPath gets the configuration path, falling back to the default
func (cm *ConfigManager) GetConfigPath() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if cm.configPath == "" {
		return cm.GetDefaultConfigPath()
	}
	return cm.configPath
}

// GetDefaultConfigPath gets default configuration path
func (cm *ConfigManager) GetDefaultConfigPath() string {
	// Prioritize environment variable
	if envPath := os.Getenv(ConfigPathEnv); envPath != "" {
		return envPath
	}
	return "/data/xhook/conf/xhook.yaml"
}

// IsConfigPathSet checks if configuration path is set
func (cm *ConfigManager) IsConfigPathSet() bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.configPath != ""
}
