// Package conf holds the configuration structures scanned from the kratos
// config tree. All keys live under the top-level "xhook" node.
package conf

// Default values applied when a key is absent.
const (
	DefaultBaseDir              = "/data/xhook"
	DefaultModulesList          = "conf/modules.list"
	DefaultDisableResourcesFile = "conf/disable_resources"
	DefaultPriority             = 50
	DefaultLogLevel             = "info"
)

// Bootstrap is the root of the configuration tree.
type Bootstrap struct {
	Xhook *Xhook `json:"xhook"`
}

// Xhook configures the framework.
type Xhook struct {
	// BaseDir is the directory relative paths below are resolved against.
	BaseDir string `json:"base_dir"`

	// ModulesList is the newline-delimited list of bundle paths.
	ModulesList string `json:"modules_list"`

	// DisableResourcesFile disables resource substitution when it exists.
	DisableResourcesFile string `json:"disable_resources_file"`

	// DisableResources disables resource substitution unconditionally.
	DisableResources bool `json:"disable_resources"`

	// ConflictingPackages never get substituted resources.
	ConflictingPackages []string `json:"conflicting_packages"`

	// DefaultPriority is used for callbacks registered without a priority.
	DefaultPriority int `json:"default_priority"`

	Log *Log `json:"log"`
}

// Log configures the logging backend.
type Log struct {
	Level         string `json:"level"`
	ConsoleOutput bool   `json:"console_output"`
	FilePath      string `json:"file_path"`
	MaxSizeMB     int    `json:"max_size_mb"`
	MaxBackups    int    `json:"max_backups"`
	MaxAgeDays    int    `json:"max_age_days"`
	Compress      bool   `json:"compress"`
}

// GetXhook returns the xhook node, never nil.
func (b *Bootstrap) GetXhook() *Xhook {
	if b == nil || b.Xhook == nil {
		return &Xhook{}
	}
	return b.Xhook
}

// GetLog returns the log node, never nil.
func (x *Xhook) GetLog() *Log {
	if x == nil || x.Log == nil {
		return &Log{Level: DefaultLogLevel, ConsoleOutput: true}
	}
	return x.Log
}

// ApplyDefaults fills unset fields with their defaults.
func (x *Xhook) ApplyDefaults() {
	if x.BaseDir == "" {
		x.BaseDir = DefaultBaseDir
	}
	if x.ModulesList == "" {
		x.ModulesList = DefaultModulesList
	}
	if x.DisableResourcesFile == "" {
		x.DisableResourcesFile = DefaultDisableResourcesFile
	}
	if x.DefaultPriority == 0 {
		x.DefaultPriority = DefaultPriority
	}
	if x.Log == nil {
		x.Log = &Log{Level: DefaultLogLevel, ConsoleOutput: true}
	}
	if x.Log.Level == "" {
		x.Log.Level = DefaultLogLevel
	}
}

// Default returns a fully defaulted configuration.
func Default() *Xhook {
	x := &Xhook{}
	x.ApplyDefaults()
	return x
}
