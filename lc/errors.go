package lc

import "fmt"

// The error taxonomy shared by all extractors. Document-level errors
// (syntax, unsupported profile, missing service date) always abort the
// run; the per-unit ones abort only in strict mode and otherwise turn
// into diagnostics.

// SchemaShapeError reports a unit missing a structurally required
// element, e.g. a journey with fewer than two passing times.
type SchemaShapeError struct {
	Unit    string
	Missing string
}

func (e *SchemaShapeError) Error() string {
	return fmt.Sprintf("schema shape error in %s: missing %s", e.Unit, e.Missing)
}

// OrderingError reports non-monotonic passing or call times within a
// journey.
type OrderingError struct {
	Unit     string
	Position int
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("ordering error in %s: time at position %d precedes its predecessor", e.Unit, e.Position)
}

// UnresolvedReferenceError reports a reference that could not be
// resolved, either an in-document id lookup or a URI template
// parameter.
type UnresolvedReferenceError struct {
	Kind string
	Ref  string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("unresolved %s reference %q", e.Kind, e.Ref)
}

// UnsupportedProfileError reports a SIRI delivery kind the converter
// does not handle.
type UnsupportedProfileError struct {
	Root string
}

func (e *UnsupportedProfileError) Error() string {
	return fmt.Sprintf("unsupported SIRI profile: %s", e.Root)
}

// MissingServiceDateError reports a time-only value that cannot be
// resolved because no service date was configured.
type MissingServiceDateError struct {
	Value string
}

func (e *MissingServiceDateError) Error() string {
	return fmt.Sprintf("time-only value %q requires a configured service date", e.Value)
}
