package config

import (
	"fmt"
	"time"
)

// Default values shared by the CLI and tests.
const (
	DefaultHost             = "0.0.0.0"
	DefaultPort             = 8080
	DefaultLanguage         = "en"
	DefaultComponent        = "theme.Page"
	DefaultSocialComponent  = "theme.SocialCard"
	DefaultPollTimeout      = 60 * time.Second
	DefaultShutdownDelay    = time.Second
	DefaultPollInterval     = time.Second
	DefaultCacheDirName     = ".docsite-cache"
	DefaultContentFolder    = "content"
	DefaultStaticFolder     = "static"
	DefaultComponentsFolder = "components"
	DefaultBuildFolder      = "build"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// SiteDefaultApplier handles site defaults.
type SiteDefaultApplier struct{}

func (s *SiteDefaultApplier) Domain() string { return "site" }

func (s *SiteDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Site.URL == "" {
		cfg.Site.URL = "/"
	}
	if cfg.Site.DefaultLanguage == "" {
		cfg.Site.DefaultLanguage = DefaultLanguage
	}
	if cfg.Site.DefaultComponent == "" {
		cfg.Site.DefaultComponent = DefaultComponent
	}
	if cfg.Site.SocialComponent == "" {
		cfg.Site.SocialComponent = DefaultSocialComponent
	}
	if cfg.Pages.IsZero() {
		cfg.Pages.Auto = true
	}
	return nil
}

// PathsDefaultApplier resolves project folders against the site root.
type PathsDefaultApplier struct{}

func (p *PathsDefaultApplier) Domain() string { return "paths" }

func (p *PathsDefaultApplier) ApplyDefaults(cfg *Config) error {
	defaults := []struct {
		field *string
		value string
	}{
		{&cfg.Paths.Content, DefaultContentFolder},
		{&cfg.Paths.Static, DefaultStaticFolder},
		{&cfg.Paths.Components, DefaultComponentsFolder},
		{&cfg.Paths.Build, DefaultBuildFolder},
		{&cfg.Cache.Dir, DefaultCacheDirName},
	}
	for _, d := range defaults {
		if *d.field == "" {
			*d.field = d.value
		}
		*d.field = cfg.Abs(*d.field)
	}
	cfg.Paths.Theme = cfg.Abs(cfg.Paths.Theme)
	return nil
}

// ServerDefaultApplier handles preview server and watcher defaults.
type ServerDefaultApplier struct{}

func (s *ServerDefaultApplier) Domain() string { return "server" }

func (s *ServerDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Server.PollTimeout <= 0 {
		cfg.Server.PollTimeout = DefaultPollTimeout
	}
	if cfg.Server.ShutdownDelay <= 0 {
		cfg.Server.ShutdownDelay = DefaultShutdownDelay
	}
	if cfg.Watch.Mode == "" {
		cfg.Watch.Mode = WatchModePoll
	}
	if cfg.Watch.PollInterval <= 0 {
		cfg.Watch.PollInterval = DefaultPollInterval
	}
	return nil
}

// CompositeDefaultApplier applies defaults across all configuration domains.
type CompositeDefaultApplier struct {
	appliers []DefaultApplier
}

// NewDefaultApplier creates a composite default applier with all domain appliers.
func NewDefaultApplier() *CompositeDefaultApplier {
	return &CompositeDefaultApplier{
		appliers: []DefaultApplier{
			&SiteDefaultApplier{},
			&PathsDefaultApplier{},
			&ServerDefaultApplier{},
		},
	}
}

// ApplyDefaults applies defaults for all configuration domains.
func (c *CompositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, applier := range c.appliers {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("applying defaults for %s: %w", applier.Domain(), err)
		}
	}
	return nil
}
