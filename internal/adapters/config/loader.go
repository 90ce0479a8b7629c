// Package config loads settings with viper: a YAML file, SWCACHE_ environment overrides and
// built-in defaults for every key.
package config

import (
	"errors"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/swcache/internal/core/ports"
	"go.trai.ch/zerr"
)

// Loader implements ports.ConfigLoader.
type Loader struct {
	logger ports.Logger
}

var _ ports.ConfigLoader = (*Loader)(nil)

// NewLoader creates a Loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads settings from path. An empty path means $SWCACHE_CONFIG, then swcache.yaml in
// the working directory; when neither exists the defaults are used. An explicit path must exist.
func (l *Loader) Load(path string) (domain.Settings, error) {
	if path == "" {
		path = os.Getenv(domain.ConfigEnvVar)
	}

	v := viper.New()
	setupViper(v, path)

	found, err := readConfigFile(v, path != "")
	if err != nil {
		return domain.Settings{}, err
	}
	if found {
		l.logger.Info("loaded configuration from " + v.ConfigFileUsed())
	}

	var settings domain.Settings
	if err := v.Unmarshal(&settings); err != nil {
		return domain.Settings{}, zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}
	if settings.DataDir == "" {
		settings.DataDir = domain.DefaultDataDir()
	}

	if err := Validate(settings); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

func setupViper(v *viper.Viper, path string) {
	v.SetEnvPrefix(domain.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, domain.DefaultSettings())

	if path != "" {
		v.SetConfigFile(path)
		return
	}
	v.AddConfigPath(".")
	v.SetConfigName(strings.TrimSuffix(domain.ConfigFileName, ".yaml"))
	v.SetConfigType("yaml")
}

func setDefaults(v *viper.Viper, d domain.Settings) {
	v.SetDefault("version", d.Version)
	v.SetDefault("origin", d.Origin)
	v.SetDefault("upstream", d.Upstream)
	v.SetDefault("listen", d.Listen)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("static_dir", d.StaticDir)
	v.SetDefault("ephemeral", d.Ephemeral)
	v.SetDefault("skip_waiting", d.SkipWaiting)
	v.SetDefault("fetch_timeout", d.FetchTimeout)
	v.SetDefault("logging.json", d.Logging.JSON)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("policy.tracking_hosts", d.Policy.TrackingHosts)
	v.SetDefault("policy.cdn_hosts", d.Policy.CDNHosts)
	v.SetDefault("policy.api_prefix", d.Policy.APIPrefix)
	v.SetDefault("policy.character_paths", d.Policy.CharacterPaths)
	v.SetDefault("policy.character_fallback", d.Policy.CharacterFallback)
	v.SetDefault("policy.placeholder_colors", d.Policy.PlaceholderColors)
	v.SetDefault("policy.default_placeholder_color", d.Policy.DefaultPlaceholderColor)
	v.SetDefault("precache.core", d.Precache.Core)
	v.SetDefault("precache.rest", d.Precache.Rest)
}

// readConfigFile reports whether a config file was read. A missing file is only an error
// when it was named explicitly.
func readConfigFile(v *viper.Viper, explicit bool) (bool, error) {
	err := v.ReadInConfig()
	if err == nil {
		return true, nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return false, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		if explicit {
			return false, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", v.ConfigFileUsed())
		}
		return false, nil
	}

	var parseErr viper.ConfigParseError
	if errors.As(err, &parseErr) {
		return false, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", v.ConfigFileUsed())
	}
	return false, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", v.ConfigFileUsed())
}

// Validate checks settings that the rest of the program relies on.
func Validate(s domain.Settings) error {
	if s.Version == "" || domain.IsReservedCache(s.Version) {
		return zerr.With(domain.ErrConfigInvalid, "version", s.Version)
	}
	if !absoluteURL(s.Origin) {
		return zerr.With(domain.ErrConfigInvalid, "origin", s.Origin)
	}
	if s.Upstream != "" && !absoluteURL(s.Upstream) {
		return zerr.With(domain.ErrConfigInvalid, "upstream", s.Upstream)
	}
	if s.Listen == "" {
		return zerr.With(domain.ErrConfigInvalid, "listen", s.Listen)
	}
	if s.FetchTimeout <= 0 {
		return zerr.With(domain.ErrConfigInvalid, "fetch_timeout", s.FetchTimeout.String())
	}
	return nil
}

func absoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
