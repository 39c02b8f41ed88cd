package rdf

import (
	"bufio"
	"fmt"
	"strings"
)

// ntriplesEncoder writes one fully expanded triple per line.
type ntriplesEncoder struct{}

func (e *ntriplesEncoder) begin(w *bufio.Writer) error { return nil }

func (e *ntriplesEncoder) entity(w *bufio.Writer, triples []Triple) error {
	for _, t := range triples {
		if _, err := fmt.Fprintf(w, "<%s> <%s> %s .\n",
			t.Subject, t.Predicate, ntriplesObject(t.Object)); err != nil {
			return err
		}
	}
	return nil
}

func (e *ntriplesEncoder) end(w *bufio.Writer) error { return nil }

func ntriplesObject(o Term) string {
	if o.Kind == TermIRI {
		return "<" + o.Value + ">"
	}
	lit := `"` + escapeLiteral(o.Value) + `"`
	if o.Datatype != "" {
		lit += "^^<" + o.Datatype + ">"
	}
	return lit
}

// escapeLiteral escapes a literal for N-Triples and Turtle.
func escapeLiteral(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
