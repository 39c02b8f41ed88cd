package config

// NeTExInputConfig lists static timetable inputs.
type NeTExInputConfig struct {
	Files    []string `yaml:"files"`
	Validate bool     `yaml:"validate"`
}

// SIRIEndpoints names the per-profile feed endpoints used by an
// external poller. The core never fetches them itself.
type SIRIEndpoints struct {
	EstimatedTimetable string `yaml:"estimated_timetable" validate:"omitempty,url"`
	VehicleMonitoring  string `yaml:"vehicle_monitoring" validate:"omitempty,url"`
	SituationExchange  string `yaml:"situation_exchange" validate:"omitempty,url"`
}

// SIRIInputConfig contains real-time feed configuration.
type SIRIInputConfig struct {
	Endpoints           SIRIEndpoints `yaml:"endpoints"`
	PollIntervalSeconds int           `yaml:"poll_interval" validate:"gte=0"`
}

// InputConfig groups static and real-time inputs.
type InputConfig struct {
	NeTEx NeTExInputConfig `yaml:"netex"`
	SIRI  SIRIInputConfig  `yaml:"siri"`
}

// OutputConfig controls serialization.
type OutputConfig struct {
	Format      string `yaml:"format" validate:"omitempty,oneof=jsonld json-ld json turtle ttl ntriples n-triples nt rdfxml rdf-xml xml"`
	Destination string `yaml:"destination"`
	Pretty      bool   `yaml:"pretty"`
}

// URIConfig holds the base URI and per-resource template overrides,
// keyed by resource kind (stop, quay, line, journey, connection,
// operator, vehicle, alert).
type URIConfig struct {
	BaseURI   string            `yaml:"base_uri" validate:"omitempty,uri"`
	Templates map[string]string `yaml:"templates"`
}

// ProcessingConfig carries the options consumed by the extractors.
type ProcessingConfig struct {
	Strict bool `yaml:"strict"`
	// ServiceDate (YYYY-MM-DD) anchors time-only SIRI values.
	ServiceDate string `yaml:"service_date" validate:"omitempty,datetime=2006-01-02"`
	// Timezone is an IANA name applied to offset-less timestamps.
	Timezone              string `yaml:"timezone"`
	DelayThresholdSeconds int    `yaml:"delay_threshold_seconds" validate:"gte=0"`
	// Profile forces a SIRI profile (et, vm, sx), overriding detection.
	Profile string `yaml:"profile" validate:"omitempty,oneof=et vm sx"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	Input      InputConfig      `yaml:"input"`
	Output     OutputConfig     `yaml:"output"`
	URIs       URIConfig        `yaml:"uris"`
	Processing ProcessingConfig `yaml:"processing"`

	Verbose bool `yaml:"verbose"`
	Quiet   bool `yaml:"quiet"`
}
