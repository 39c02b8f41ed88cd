// Package diag collects per-unit diagnostics during lenient
// extraction and reports them as consolidated summaries instead of one
// log line per skipped element.
package diag

import (
	"github.com/rs/zerolog/log"
)

// Diagnostic codes emitted by the extractors.
const (
	CodeOrdering       = "non_monotonic_times"
	CodeSchemaShape    = "schema_shape"
	CodeMissingTime    = "missing_time"
	CodeMissingStopRef = "missing_stop_ref"
	CodeUnresolvedRef  = "unresolved_reference"
	CodeBadValue       = "bad_value"
)

// Diagnostic is one recorded per-unit failure.
type Diagnostic struct {
	Code    string
	Unit    string
	Message string
}

type codeInfo struct {
	count    int
	examples []string
}

// Sink accumulates diagnostics with a bound on retained detail. Counts
// per code are always exact; full Diagnostic records are kept only up
// to the configured limit so a pathological document cannot grow the
// sink without bound.
type Sink struct {
	limit   int
	entries []Diagnostic
	dropped int
	byCode  map[string]*codeInfo
}

// DefaultLimit bounds retained diagnostic records per run.
const DefaultLimit = 1000

// NewSink creates a sink retaining at most limit full records. A
// non-positive limit selects DefaultLimit.
func NewSink(limit int) *Sink {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Sink{
		limit:  limit,
		byCode: make(map[string]*codeInfo),
	}
}

// Add records one diagnostic.
func (s *Sink) Add(code, unit, message string) {
	info := s.byCode[code]
	if info == nil {
		info = &codeInfo{examples: make([]string, 0, 3)}
		s.byCode[code] = info
	}
	info.count++
	if len(info.examples) < 3 && unit != "" {
		info.examples = append(info.examples, unit)
	}

	if len(s.entries) < s.limit {
		s.entries = append(s.entries, Diagnostic{Code: code, Unit: unit, Message: message})
	} else {
		s.dropped++
	}

	log.Debug().Str("code", code).Str("unit", unit).Msg(message)
}

// Entries returns the retained diagnostic records.
func (s *Sink) Entries() []Diagnostic {
	return s.entries
}

// Count returns the total number of diagnostics recorded, including
// any whose full records were dropped at the limit.
func (s *Sink) Count() int {
	total := 0
	for _, info := range s.byCode {
		total += info.count
	}
	return total
}

// CountByCode returns how many diagnostics carried the given code.
func (s *Sink) CountByCode(code string) int {
	if info := s.byCode[code]; info != nil {
		return info.count
	}
	return 0
}

// LogSummary emits one consolidated log event per diagnostic code.
func (s *Sink) LogSummary() {
	for code, info := range s.byCode {
		log.Warn().
			Str("code", code).
			Int("occurrences", info.count).
			Strs("examples", info.examples).
			Msg("Units skipped during extraction")
	}
	if s.dropped > 0 {
		log.Warn().Int("dropped", s.dropped).Msg("Diagnostic detail truncated at sink limit")
	}
}
