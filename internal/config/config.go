// Package config loads application configuration from defaults, an optional
// TOML file and THREADPANEL_ environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ericfisherdev/threadpanel/internal/domain/model"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "THREADPANEL_"

// RefreshAdaptive selects the activity-based refresh interval.
const RefreshAdaptive = "adaptive"

// Config holds the application configuration.
type Config struct {
	Portal struct {
		URL      string        `koanf:"url"`
		APIToken string        `koanf:"api_token"`
		Timeout  time.Duration `koanf:"timeout"`
	} `koanf:"portal"`

	Thread struct {
		SubjectID   string `koanf:"subject_id"`
		SubjectType string `koanf:"subject_type"`
		AjaxReload  bool   `koanf:"ajax_reload"`
		NewestFirst bool   `koanf:"newest_first"`
		// Refresh is "adaptive", "off" or a duration such as "45s".
		Refresh string `koanf:"refresh"`
	} `koanf:"thread"`

	Store struct {
		DBPath string `koanf:"db_path"`
	} `koanf:"store"`

	Log struct {
		File  string `koanf:"file"`
		Level string `koanf:"level"`
	} `koanf:"log"`
}

var defaults = map[string]any{
	"portal.timeout":      "30s",
	"thread.subject_type": string(model.SubjectTypePackage),
	"thread.ajax_reload":  false,
	"thread.newest_first": false,
	"thread.refresh":      RefreshAdaptive,
	"store.db_path":       "threadpanel.db",
	"log.level":           "info",
}

// defaultPaths are tried in order when no config file is given.
var defaultPaths = []string{"./threadpanel.toml", "$HOME/.config/threadpanel/config.toml"}

// Load reads configuration and returns a validated Config. path may be empty,
// in which case the first existing default path is used, if any.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	} else {
		for _, p := range defaultPaths {
			p = os.ExpandEnv(p)
			if _, err := os.Stat(p); err != nil {
				continue
			}
			if err := k.Load(file.Provider(p), toml.Parser()); err != nil {
				return nil, fmt.Errorf("loading config file %s: %w", p, err)
			}
			slog.Debug("loaded config file", "path", p)
			break
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps THREADPANEL_PORTAL_API_TOKEN to portal.api_token: the first
// underscore separates the section, the rest belong to the key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, key, ok := strings.Cut(s, "_")
	if !ok {
		return s
	}
	return section + "." + key
}

// Validate checks the fields every command needs.
func (c *Config) Validate() error {
	var errs []error

	if c.Portal.URL == "" {
		errs = append(errs, errors.New("portal.url is required"))
	}
	if c.Thread.SubjectID == "" {
		errs = append(errs, errors.New("thread.subject_id is required"))
	}
	if !model.SubjectType(c.Thread.SubjectType).Valid() {
		errs = append(errs, fmt.Errorf("thread.subject_type %q is not one of package, resource, user, group", c.Thread.SubjectType))
	}
	if _, err := c.RefreshInterval(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Subject returns the thread subject the page is bound to.
func (c *Config) Subject() model.Subject {
	return model.Subject{ID: c.Thread.SubjectID, Type: model.SubjectType(c.Thread.SubjectType)}
}

// RefreshInterval converts thread.refresh into a period. Zero disables
// periodic refresh; a negative value requests the adaptive interval.
func (c *Config) RefreshInterval() (time.Duration, error) {
	switch strings.ToLower(strings.TrimSpace(c.Thread.Refresh)) {
	case RefreshAdaptive:
		return -1, nil
	case "", "off", "0":
		return 0, nil
	}

	d, err := time.ParseDuration(c.Thread.Refresh)
	if err != nil {
		return 0, fmt.Errorf("thread.refresh has invalid duration %q: %w", c.Thread.Refresh, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("thread.refresh must not be negative, got %s", d)
	}
	return d, nil
}

// LogLevel parses log.level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", c.Log.Level, err)
	}
	return level, nil
}
