// Package rdf renders entity sequences as RDF in four concrete
// syntaxes. Every encoder consumes the same per-entity triple stream,
// so any two serializations of one entity set describe the same triple
// set by construction.
package rdf

// TermKind discriminates the object position of a triple.
type TermKind int

const (
	// TermIRI is a resource reference.
	TermIRI TermKind = iota
	// TermLiteral is a literal value, optionally datatyped.
	TermLiteral
)

// Term is the object of a triple. Subjects and predicates are always
// IRIs here; situation consequences are skolemized under the alert URI
// instead of using blank nodes, so the graph never contains one.
type Term struct {
	Kind     TermKind
	Value    string
	Datatype string
}

// IRI returns an IRI term.
func IRI(value string) Term { return Term{Kind: TermIRI, Value: value} }

// Text returns a plain literal term.
func Text(value string) Term { return Term{Kind: TermLiteral, Value: value} }

// Typed returns a datatyped literal term.
func Typed(value, datatype string) Term {
	return Term{Kind: TermLiteral, Value: value, Datatype: datatype}
}

// Triple is one subject-predicate-object statement. Subject and
// Predicate hold full IRIs.
type Triple struct {
	Subject   string
	Predicate string
	Object    Term
}
