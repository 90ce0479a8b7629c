package config

import (
	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// document is the printed form of settings. Durations are written the way they are read.
type document struct {
	domain.Settings `yaml:",inline"`
	FetchTimeout    string `yaml:"fetch_timeout"`
}

// Marshal renders settings as YAML that Load accepts.
func Marshal(s domain.Settings) ([]byte, error) {
	out, err := yaml.Marshal(document{Settings: s, FetchTimeout: s.FetchTimeout.String()})
	if err != nil {
		return nil, zerr.Wrap(err, "failed to render configuration")
	}
	return out, nil
}
