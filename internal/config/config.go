package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAddr         = ":8080"
	DefaultCacheTTL     = 10 * time.Minute
	DefaultNotifyBefore = 30 * time.Minute
)

type CommuteConfig struct {
	Name         string        `yaml:"name" validate:"required"`
	From         string        `yaml:"from" validate:"required"`
	To           string        `yaml:"to" validate:"required"`
	Departure    string        `yaml:"departure" validate:"required"`
	Days         []string      `yaml:"days" validate:"dive,required"` // e.g., ["monday", "wednesday", "friday"]
	NotifyBefore time.Duration `yaml:"notify_before" validate:"gte=0"`
}

// DepartureTime returns today's departure time.
func (c CommuteConfig) DepartureTime() (time.Time, error) {
	return c.DepartureOn(time.Now())
}

// DepartureOn returns the departure time on the same calendar day as day.
func (c CommuteConfig) DepartureOn(day time.Time) (time.Time, error) {
	parsed, err := time.Parse("1504", c.Departure)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid departure time %q", c.Departure)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, day.Location()), nil
}

// IsActiveDay returns true if the given weekday is in the configured days list.
// If no days are configured, returns true (runs every day).
func (c CommuteConfig) IsActiveDay(weekday time.Weekday) bool {
	if len(c.Days) == 0 {
		return true
	}
	dayName := strings.ToLower(weekday.String())
	for _, d := range c.Days {
		if strings.ToLower(d) == dayName {
			return true
		}
	}
	return false
}

type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	CacheTTL       time.Duration `yaml:"cache_ttl" validate:"gte=0"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

type Config struct {
	// Catalog is a file path or an http(s) URL of the bus routes JSON.
	Catalog  string          `yaml:"catalog" validate:"required"`
	Server   ServerConfig    `yaml:"server"`
	Commutes []CommuteConfig `yaml:"commutes" validate:"unique=Name,dive"`
}

// Default returns a configuration that only names a catalog.
func Default(catalog string) *Config {
	cfg := &Config{Catalog: catalog}
	cfg.applyDefaults()
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config file")
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.CacheTTL == 0 {
		c.Server.CacheTTL = DefaultCacheTTL
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	for i := range c.Commutes {
		if c.Commutes[i].NotifyBefore == 0 {
			c.Commutes[i].NotifyBefore = DefaultNotifyBefore
		}
	}
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	for _, commute := range c.Commutes {
		if strings.TrimSpace(commute.From) == "" || strings.TrimSpace(commute.To) == "" {
			return errors.Errorf("commute %s: from and to must not be blank", commute.Name)
		}
		if _, err := commute.DepartureTime(); err != nil {
			return errors.Wrapf(err, "commute %s", commute.Name)
		}
		for _, d := range commute.Days {
			if !isWeekday(d) {
				return errors.Errorf("commute %s: unknown day %q", commute.Name, d)
			}
		}
	}

	return nil
}

func isWeekday(name string) bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), name) {
			return true
		}
	}
	return false
}
