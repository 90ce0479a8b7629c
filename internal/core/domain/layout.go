package domain

import "path/filepath"

const (
	// SwcacheDirName is the name of the working directory holding persisted state.
	SwcacheDirName = ".swcache"

	// StoreDirName is the name of the durable cache store directory.
	StoreDirName = "caches"

	// ConfigFileName is the name of the configuration file looked up in the working directory.
	ConfigFileName = "swcache.yaml"

	// ConfigEnvVar overrides the configuration file path.
	ConfigEnvVar = "SWCACHE_CONFIG"

	// EnvPrefix is the prefix for environment overrides of config keys.
	EnvPrefix = "SWCACHE"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultDataDir returns the default root directory for persisted state.
func DefaultDataDir() string {
	return SwcacheDirName
}

// StorePath returns the durable store directory below dataDir.
func StorePath(dataDir string) string {
	return filepath.Join(dataDir, StoreDirName)
}
