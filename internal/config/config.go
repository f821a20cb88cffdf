package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// DefaultFilename is the configuration file looked up when --config is not given.
const DefaultFilename = "docsite.yaml"

// Config represents the site configuration.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Pages   Pages         `yaml:"pages"`
	Paths   PathsConfig   `yaml:"paths"`
	Server  ServerConfig  `yaml:"server"`
	Watch   WatchConfig   `yaml:"watch"`
	Build   BuildConfig   `yaml:"build"`
	Cache   CacheConfig   `yaml:"cache"`
	Search  SearchConfig  `yaml:"search"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// SiteConfig describes the site itself.
type SiteConfig struct {
	// Root is the project folder. Relative paths below are resolved against it.
	// Defaults to the folder holding the configuration file.
	Root             string    `yaml:"root,omitempty"`
	URL              string    `yaml:"site_url,omitempty"`
	DefaultLanguage  string    `yaml:"default_language,omitempty"`
	Languages        Languages `yaml:"languages,omitempty"`
	DefaultComponent string    `yaml:"default_component,omitempty"`
	SocialComponent  string    `yaml:"social_component,omitempty"`
	GitLastmod       bool      `yaml:"git_lastmod,omitempty"`
}

// PathsConfig holds the project folders.
type PathsConfig struct {
	Content    string `yaml:"content,omitempty"`
	Static     string `yaml:"static,omitempty"`
	Components string `yaml:"components,omitempty"`
	Theme      string `yaml:"theme,omitempty"`
	Build      string `yaml:"build,omitempty"`
}

// ServerConfig configures the preview server.
type ServerConfig struct {
	Host          string        `yaml:"host,omitempty"`
	Port          int           `yaml:"port,omitempty"`
	PollTimeout   time.Duration `yaml:"poll_timeout,omitempty"`
	ShutdownDelay time.Duration `yaml:"shutdown_delay,omitempty"`
}

// WatchConfig configures the file watcher.
type WatchConfig struct {
	Mode         WatchMode     `yaml:"mode,omitempty"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
}

// WatchMode selects how file changes are detected.
type WatchMode string

const (
	WatchModePoll   WatchMode = "poll"
	WatchModeNative WatchMode = "native"
)

// BuildConfig configures the static build.
type BuildConfig struct {
	RelativizeStatic bool `yaml:"relativize_static,omitempty"`
	Report           bool `yaml:"report,omitempty"`
}

// CacheConfig configures the render cache used by the preview server.
type CacheConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// SearchConfig configures the search index.
type SearchConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`
	// KeepRaw keeps the plain text of every section in the index artifacts.
	KeepRaw bool `yaml:"keep_raw,omitempty"`
}

// MetricsConfig toggles the prometheus endpoint of the preview server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled,omitempty"`
}

// CacheEnabled reports whether the render cache is on (default true).
func (c *Config) CacheEnabled() bool {
	return c.Cache.Enabled == nil || *c.Cache.Enabled
}

// SearchEnabled reports whether search indexing is on (default true).
func (c *Config) SearchEnabled() bool {
	return c.Search.Enabled == nil || *c.Search.Enabled
}

// Abs resolves p against the site root.
func (c *Config) Abs(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Site.Root, p)
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	return LoadWithEnv(configPath, "")
}

// LoadWithEnv loads the .env files (envFile first when given), then the
// configuration at configPath, expanding ${VAR} references.
func LoadWithEnv(configPath, envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil && envFile != "" {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to load env file").
			WithContext("file", envFile).
			Fatal().
			Build()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError(fmt.Sprintf("configuration file not found: %s", configPath)).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").Fatal().Build()
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, err
	}
	if cfg.Site.Root == "" {
		cfg.Site.Root = filepath.Dir(configPath)
	}
	if cfg.Site.Root, err = filepath.Abs(cfg.Site.Root); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid site root").Fatal().Build()
	}

	if err := NewDefaultApplier().ApplyDefaults(cfg); err != nil {
		return nil, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a configuration document without applying defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").
			Fatal().
			UserAction().
			Build()
	}
	return &cfg, nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ValidationError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).Build()
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").Build()
	}
	return nil
}

const exampleConfig = `site:
  site_url: /
  default_language: en
  # languages:
  #   en: English
  #   es: Español

# "auto" builds the page tree from the content folder.
pages:
  - index.md
  - [Guide, [guide/index.md, guide/install.md]]
  - faq.md

server:
  host: 0.0.0.0
  port: 8080

search:
  enabled: true
`
