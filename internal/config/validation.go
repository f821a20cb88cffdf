package config

import (
	"fmt"
	"slices"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/foundation/normalization"
)

// ValidateConfig checks cross-field constraints after defaults are applied.
func ValidateConfig(cfg *Config) error {
	validator := &configurationValidator{config: cfg}
	return validator.validate()
}

type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validate() error {
	if err := cv.validateLanguages(); err != nil {
		return err
	}
	if err := cv.validateServer(); err != nil {
		return err
	}
	return cv.validateWatch()
}

func (cv *configurationValidator) validateLanguages() error {
	site := cv.config.Site
	pages := cv.config.Pages
	if !pages.MultiLanguage() {
		return nil
	}
	if len(site.Languages) == 0 {
		return errors.ValidationError("pages are keyed by language but site.languages is empty").Build()
	}
	codes := make([]string, 0, len(site.Languages))
	for _, lang := range site.Languages {
		if _, ok := pages.ByLang[lang.Code]; !ok {
			return errors.ValidationError(fmt.Sprintf("no pages configured for language %q", lang.Code)).
				WithContext("lang", lang.Code).
				Build()
		}
		codes = append(codes, lang.Code)
	}
	if !slices.Contains(codes, site.DefaultLanguage) {
		return errors.ValidationError(fmt.Sprintf("default language %q is not in site.languages", site.DefaultLanguage)).Build()
	}
	return nil
}

func (cv *configurationValidator) validateServer() error {
	port := cv.config.Server.Port
	if port < 0 || port > 65535 {
		return errors.ValidationError(fmt.Sprintf("invalid server port: %d", port)).Build()
	}
	return nil
}

var watchModes = normalization.NewEnum("watch mode", map[string]WatchMode{
	"poll":     WatchModePoll,
	"polling":  WatchModePoll,
	"native":   WatchModeNative,
	"fsnotify": WatchModeNative,
})

// validateWatch normalizes watch.mode in place.
func (cv *configurationValidator) validateWatch() error {
	mode, err := watchModes.Normalize(string(cv.config.Watch.Mode), WatchModePoll)
	if err != nil {
		return err
	}
	cv.config.Watch.Mode = mode
	return nil
}
