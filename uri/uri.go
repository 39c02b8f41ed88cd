// Package uri derives stable resource identifiers from domain ids via
// parametrized templates. A Strategy is a pure function of (kind,
// parameters): identical inputs yield byte-identical URIs, and a
// constructed Strategy is never mutated, so one instance may be shared
// across concurrent runs.
package uri

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/theoremus-urban-solutions/netex-to-lc/lc"
)

// Kind names a resource family with its own template.
type Kind string

const (
	KindStop       Kind = "stop"
	KindQuay       Kind = "quay"
	KindLine       Kind = "line"
	KindJourney    Kind = "journey"
	KindConnection Kind = "connection"
	KindOperator   Kind = "operator"
	KindVehicle    Kind = "vehicle"
	KindAlert      Kind = "alert"
)

// DefaultBaseURI is used when no base URI is configured.
const DefaultBaseURI = "http://transport.example.org"

// Unknown is the sentinel substituted for unresolvable template
// parameters in lenient mode.
const Unknown = "unknown"

// defaultTemplates are the documented fallbacks derived from the base
// URI for kinds without a configured override.
var defaultTemplates = map[Kind]string{
	KindStop:       "{base_uri}/stops/{stop_id}",
	KindQuay:       "{base_uri}/stops/{stop_place_id}/quays/{quay_id}",
	KindLine:       "{base_uri}/lines/{line_id}",
	KindJourney:    "{base_uri}/journeys/{service_journey_id}",
	KindConnection: "{base_uri}/connections/{departure_date}/{service_journey_id}/{sequence}",
	KindOperator:   "{base_uri}/operators/{operator_id}",
	KindVehicle:    "{base_uri}/vehicles/{vehicle_id}",
	KindAlert:      "{base_uri}/alerts/{situation_number}",
}

// Strategy resolves (kind, parameters) to URIs. Read-only after
// construction.
type Strategy struct {
	baseURI   string
	templates map[Kind]string
}

// NewStrategy builds a Strategy from a base URI and per-kind template
// overrides. Unconfigured kinds fall back to the default templates.
func NewStrategy(baseURI string, overrides map[Kind]string) *Strategy {
	if baseURI == "" {
		baseURI = DefaultBaseURI
	}
	templates := make(map[Kind]string, len(defaultTemplates))
	for kind, tmpl := range defaultTemplates {
		templates[kind] = tmpl
	}
	for kind, tmpl := range overrides {
		if tmpl != "" {
			templates[kind] = tmpl
		}
	}
	return &Strategy{baseURI: strings.TrimRight(baseURI, "/"), templates: templates}
}

// BaseURI returns the configured base URI without a trailing slash.
func (s *Strategy) BaseURI() string { return s.baseURI }

// Resolve substitutes params into the kind's template, percent-encoding
// every value. Parameter names match placeholders case- and
// underscore-insensitively, so {serviceJourneyId} and
// {service_journey_id} are interchangeable. Missing parameters are
// substituted with the Unknown sentinel and reported through the
// returned UnresolvedReferenceError; the returned URI is still usable
// by lenient callers.
func (s *Strategy) Resolve(kind Kind, params map[string]string) (string, error) {
	template := s.templates[kind]
	if template == "" {
		return "", &lc.UnresolvedReferenceError{Kind: string(kind), Ref: "template"}
	}

	normalized := make(map[string]string, len(params)+1)
	normalized[normalizeKey("base_uri")] = s.baseURI
	for key, value := range params {
		normalized[normalizeKey(key)] = value
	}

	var out strings.Builder
	var unresolved error

	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			out.WriteString(rest)
			break
		}
		close := strings.IndexByte(rest[open:], '}')
		if close < 0 {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:open])

		name := rest[open+1 : open+close]
		rest = rest[open+close+1:]

		key := normalizeKey(name)
		if key == normalizeKey("base_uri") {
			// The base URI is substituted verbatim, not escaped.
			out.WriteString(s.baseURI)
			continue
		}
		value, ok := normalized[key]
		if !ok || value == "" {
			value = Unknown
			if unresolved == nil {
				unresolved = &lc.UnresolvedReferenceError{Kind: string(kind), Ref: name}
			}
		}
		out.WriteString(url.PathEscape(value))
	}

	return out.String(), unresolved
}

// normalizeKey makes placeholder matching tolerant of snake_case vs
// camelCase template variants.
func normalizeKey(key string) string {
	return strings.ToLower(strings.ReplaceAll(key, "_", ""))
}

// Stop resolves a stop URI.
func (s *Strategy) Stop(stopID string) (string, error) {
	return s.Resolve(KindStop, map[string]string{"stop_id": stopID})
}

// Quay resolves a quay URI under its parent stop place.
func (s *Strategy) Quay(stopPlaceID, quayID string) (string, error) {
	return s.Resolve(KindQuay, map[string]string{
		"stop_place_id": stopPlaceID,
		"quay_id":       quayID,
	})
}

// Line resolves a line URI.
func (s *Strategy) Line(lineID string) (string, error) {
	return s.Resolve(KindLine, map[string]string{"line_id": lineID})
}

// Journey resolves a service journey URI.
func (s *Strategy) Journey(serviceJourneyID string) (string, error) {
	return s.Resolve(KindJourney, map[string]string{"service_journey_id": serviceJourneyID})
}

// Operator resolves an operator URI.
func (s *Strategy) Operator(operatorID string) (string, error) {
	return s.Resolve(KindOperator, map[string]string{"operator_id": operatorID})
}

// Vehicle resolves a vehicle URI.
func (s *Strategy) Vehicle(vehicleID string) (string, error) {
	return s.Resolve(KindVehicle, map[string]string{"vehicle_id": vehicleID})
}

// Alert resolves an alert URI.
func (s *Strategy) Alert(situationNumber string) (string, error) {
	return s.Resolve(KindAlert, map[string]string{"situation_number": situationNumber})
}

// Connection resolves a connection URI. The same parameters are used
// for static and real-time connections so a real-time update shares
// the static connection's identity.
func (s *Strategy) Connection(departureDate, serviceJourneyID string, sequence int) (string, error) {
	return s.Resolve(KindConnection, map[string]string{
		"departure_date":     departureDate,
		"service_journey_id": serviceJourneyID,
		"sequence":           strconv.Itoa(sequence),
	})
}
