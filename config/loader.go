package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/theoremus-urban-solutions/netex-to-lc/uri"
)

// templateKinds maps YAML template keys, including the legacy
// aliases, onto resource kinds.
var templateKinds = map[string]uri.Kind{
	"stop":            uri.KindStop,
	"stop_place":      uri.KindStop,
	"quay":            uri.KindQuay,
	"line":            uri.KindLine,
	"journey":         uri.KindJourney,
	"service_journey": uri.KindJourney,
	"connection":      uri.KindConnection,
	"operator":        uri.KindOperator,
	"vehicle":         uri.KindVehicle,
	"alert":           uri.KindAlert,
}

// Default returns the configuration used when no file is supplied.
func Default() AppConfig {
	return AppConfig{
		Input: InputConfig{
			NeTEx: NeTExInputConfig{Validate: true},
			SIRI:  SIRIInputConfig{PollIntervalSeconds: 30},
		},
		Output: OutputConfig{
			Format:      "jsonld",
			Destination: "-",
			Pretty:      true,
		},
		URIs: URIConfig{BaseURI: uri.DefaultBaseURI},
		Processing: ProcessingConfig{
			DelayThresholdSeconds: 60,
		},
	}
}

// Load reads and validates the configuration file at path. An empty
// path yields the defaults.
func Load(path string) (AppConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	for key := range cfg.URIs.Templates {
		if _, ok := templateKinds[key]; !ok {
			return cfg, fmt.Errorf("invalid config: unknown URI template key %q", key)
		}
	}
	return cfg, nil
}

// Strategy builds the shared URI strategy from the uris section.
func (c AppConfig) Strategy() *uri.Strategy {
	overrides := make(map[uri.Kind]string, len(c.URIs.Templates))
	for key, tmpl := range c.URIs.Templates {
		overrides[templateKinds[key]] = tmpl
	}
	return uri.NewStrategy(c.URIs.BaseURI, overrides)
}

// ServiceDate parses the configured service date; ok is false when
// none is set.
func (c AppConfig) ServiceDate() (date time.Time, ok bool, err error) {
	if c.Processing.ServiceDate == "" {
		return time.Time{}, false, nil
	}
	date, err = time.Parse("2006-01-02", c.Processing.ServiceDate)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid service_date: %w", err)
	}
	return date, true, nil
}

// Location resolves the configured timezone, defaulting to UTC.
func (c AppConfig) Location() (*time.Location, error) {
	if c.Processing.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Processing.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone: %w", err)
	}
	return loc, nil
}

// DelayThreshold returns the configured threshold as a duration.
func (c AppConfig) DelayThreshold() time.Duration {
	return time.Duration(c.Processing.DelayThresholdSeconds) * time.Second
}
