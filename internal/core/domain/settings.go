package domain

import (
	"net/url"
	"strings"
	"time"
)

// Policy holds the routing and fallback knobs consulted by the router.
type Policy struct {
	TrackingHosts           []string          `yaml:"tracking_hosts" mapstructure:"tracking_hosts"`
	CDNHosts                []string          `yaml:"cdn_hosts" mapstructure:"cdn_hosts"`
	APIPrefix               string            `yaml:"api_prefix" mapstructure:"api_prefix"`
	CharacterPaths          []string          `yaml:"character_paths" mapstructure:"character_paths"`
	CharacterFallback       string            `yaml:"character_fallback" mapstructure:"character_fallback"`
	PlaceholderColors       map[string]string `yaml:"placeholder_colors" mapstructure:"placeholder_colors"`
	DefaultPlaceholderColor string            `yaml:"default_placeholder_color" mapstructure:"default_placeholder_color"`
}

// IsTrackingHost reports whether host matches the tracking list or is obviously analytics.
func (p Policy) IsTrackingHost(host string) bool {
	host = strings.ToLower(host)
	if strings.Contains(host, "analytics") {
		return true
	}
	return matchesHost(p.TrackingHosts, host)
}

// IsCDNHost reports whether host is in the CDN allow-list.
func (p Policy) IsCDNHost(host string) bool {
	return matchesHost(p.CDNHosts, strings.ToLower(host))
}

// IsAPIPath reports whether path is below the API prefix.
func (p Policy) IsAPIPath(path string) bool {
	return p.APIPrefix != "" && strings.HasPrefix(path, p.APIPrefix)
}

// IsCharacterPath reports whether path points at a character asset.
func (p Policy) IsCharacterPath(path string) bool {
	for _, prefix := range p.CharacterPaths {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// PlaceholderColor returns the color mapped from the name's prefix, or the default color.
// The longest matching prefix wins.
func (p Policy) PlaceholderColor(name string) string {
	name = strings.ToLower(name)
	best, color := -1, p.DefaultPlaceholderColor
	for prefix, c := range p.PlaceholderColors {
		if strings.HasPrefix(name, prefix) && len(prefix) > best {
			best, color = len(prefix), c
		}
	}
	return color
}

// matchesHost reports whether host equals or is a subdomain of an entry.
func matchesHost(hosts []string, host string) bool {
	for _, h := range hosts {
		h = strings.ToLower(h)
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// Precache lists the assets pre-populated at install, core first.
type Precache struct {
	Core []string `yaml:"core" mapstructure:"core"`
	Rest []string `yaml:"rest" mapstructure:"rest"`
}

// All returns core then rest.
func (p Precache) All() []string {
	out := make([]string, 0, len(p.Core)+len(p.Rest))
	out = append(out, p.Core...)
	return append(out, p.Rest...)
}

// Logging configures the logger.
type Logging struct {
	JSON bool `yaml:"json" mapstructure:"json"`
}

// Metrics configures the metrics endpoint.
type Metrics struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// Settings is the effective configuration of the process.
type Settings struct {
	Version      string        `yaml:"version" mapstructure:"version"`
	Origin       string        `yaml:"origin" mapstructure:"origin"`
	Upstream     string        `yaml:"upstream" mapstructure:"upstream"`
	Listen       string        `yaml:"listen" mapstructure:"listen"`
	DataDir      string        `yaml:"data_dir" mapstructure:"data_dir"`
	StaticDir    string        `yaml:"static_dir" mapstructure:"static_dir"`
	Ephemeral    bool          `yaml:"ephemeral" mapstructure:"ephemeral"`
	SkipWaiting  bool          `yaml:"skip_waiting" mapstructure:"skip_waiting"`
	FetchTimeout time.Duration `yaml:"-" mapstructure:"fetch_timeout"`
	Logging      Logging       `yaml:"logging" mapstructure:"logging"`
	Metrics      Metrics       `yaml:"metrics" mapstructure:"metrics"`
	Policy       Policy        `yaml:"policy" mapstructure:"policy"`
	Precache     Precache      `yaml:"precache" mapstructure:"precache"`
}

// CacheVersion returns the configured cache generation.
func (s Settings) CacheVersion() CacheVersion {
	return CacheVersion(s.Version)
}

// OriginURL parses the configured origin.
func (s Settings) OriginURL() (*url.URL, error) {
	return url.Parse(s.Origin)
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Version:      DefaultCacheVersion,
		Origin:       "http://localhost:8080",
		Upstream:     "http://localhost:3000",
		Listen:       ":8080",
		DataDir:      DefaultDataDir(),
		SkipWaiting:  true,
		FetchTimeout: 10 * time.Second,
		Metrics:      Metrics{Enabled: true},
		Policy: Policy{
			TrackingHosts: []string{
				"www.google-analytics.com",
				"www.googletagmanager.com",
				"stats.g.doubleclick.net",
			},
			CDNHosts: []string{
				"cdn.tailwindcss.com",
				"fonts.googleapis.com",
				"fonts.gstatic.com",
			},
			APIPrefix: "/api/",
			CharacterPaths: []string{
				"/assets/images/arona",
				"/assets/images/plana",
				"/assets/images/characters/",
			},
			CharacterFallback: "/assets/images/arona.png",
			PlaceholderColors: map[string]string{
				"focus_master": "#10b981",
				"early_bird":   "#f59e0b",
				"night_owl":    "#6366f1",
				"streak":       "#ef4444",
				"marathon":     "#8b5cf6",
			},
			DefaultPlaceholderColor: "#38bdf8",
		},
		Precache: Precache{
			Core: []string{
				"/",
				"/index.html",
				"/assets/images/arona.png",
			},
			Rest: []string{
				"/assets/images/plana.png",
				"/assets/music/lofi-study.mp3",
				"/assets/music/rainy-coding.mp3",
				"/assets/music/coffee-vibes.mp3",
				"https://cdn.tailwindcss.com",
				"https://fonts.googleapis.com/css2?family=Inter:wght@300;400;500;600&display=swap",
			},
		},
	}
}
