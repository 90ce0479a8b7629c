package ports

import "go.trai.ch/swcache/internal/core/domain"

// ConfigLoader defines the interface for loading settings.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads settings from path, or from the default locations when path is empty.
	// Missing files are not an error; defaults apply.
	Load(path string) (domain.Settings, error)
}
