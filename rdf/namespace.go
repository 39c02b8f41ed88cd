package rdf

// Namespace IRIs of the vocabulary used in the output graph.
const (
	NSRDF   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NSLC    = "http://semweb.mmlab.be/ns/linkedconnections#"
	NSNeTEx = "http://data.europa.eu/949/"
	NSGTFS  = "http://vocab.gtfs.org/terms#"
	NSSIRI  = "http://www.siri.org.uk/siri#"
	NSGeo   = "http://www.w3.org/2003/01/geo/wgs84_pos#"
	NSXSD   = "http://www.w3.org/2001/XMLSchema#"
)

// RDFType is the rdf:type predicate.
const RDFType = NSRDF + "type"

// XSD datatypes used by the mapping.
const (
	XSDDateTime = NSXSD + "dateTime"
	XSDInteger  = NSXSD + "integer"
	XSDBoolean  = NSXSD + "boolean"
	XSDDouble   = NSXSD + "double"
)

type prefixBinding struct {
	Prefix string
	IRI    string
}

// prefixes is the fixed, ordered prefix set carried by every
// serialization format.
var prefixes = []prefixBinding{
	{"rdf", NSRDF},
	{"lc", NSLC},
	{"netex", NSNeTEx},
	{"gtfs", NSGTFS},
	{"siri", NSSIRI},
	{"geo", NSGeo},
	{"xsd", NSXSD},
}

// compact shortens iri to prefix:local when a known namespace matches
// and the remainder is a safe local name.
func compact(iri string) (string, bool) {
	for _, binding := range prefixes {
		if rest, ok := cutPrefix(iri, binding.IRI); ok && safeLocal(rest) {
			return binding.Prefix + ":" + rest, true
		}
	}
	return iri, false
}

// expand resolves a prefix:local form back to a full IRI.
func expand(curie string) (string, bool) {
	for i := 0; i < len(curie); i++ {
		if curie[i] == ':' {
			prefix := curie[:i]
			for _, binding := range prefixes {
				if binding.Prefix == prefix {
					return binding.IRI + curie[i+1:], true
				}
			}
			return "", false
		}
	}
	return "", false
}

func cutPrefix(s, prefix string) (string, bool) {
	if len(s) > len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):], true
	}
	return "", false
}

// safeLocal reports whether rest can appear as the local part of a
// prefixed name in Turtle without escaping.
func safeLocal(rest string) bool {
	if rest == "" {
		return false
	}
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '-':
		default:
			return false
		}
	}
	return true
}
