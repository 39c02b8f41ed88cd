package rdf

import (
	"bufio"
	"fmt"
)

// turtleEncoder writes prefixed triples grouped by subject. Subjects
// within one entity batch are grouped; a subject reappearing in a later
// batch simply starts a new block, which describes the same triple
// set.
type turtleEncoder struct{}

func (e *turtleEncoder) begin(w *bufio.Writer) error {
	for _, binding := range prefixes {
		if _, err := fmt.Fprintf(w, "@prefix %s: <%s> .\n", binding.Prefix, binding.IRI); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

func (e *turtleEncoder) entity(w *bufio.Writer, triples []Triple) error {
	// Group by subject, preserving first-seen order.
	order := make([]string, 0, 2)
	grouped := make(map[string][]Triple, 2)
	for _, t := range triples {
		if _, seen := grouped[t.Subject]; !seen {
			order = append(order, t.Subject)
		}
		grouped[t.Subject] = append(grouped[t.Subject], t)
	}

	for _, subject := range order {
		group := grouped[subject]
		if _, err := fmt.Fprintf(w, "<%s>", subject); err != nil {
			return err
		}
		for i, t := range group {
			sep := " ;"
			if i == len(group)-1 {
				sep = " ."
			}
			if _, err := fmt.Fprintf(w, "\n    %s %s%s",
				turtlePredicate(t.Predicate), turtleObject(t.Object), sep); err != nil {
				return err
			}
		}
		if _, err := w.WriteString("\n\n"); err != nil {
			return err
		}
	}
	return nil
}

func (e *turtleEncoder) end(w *bufio.Writer) error { return nil }

func turtlePredicate(iri string) string {
	if iri == RDFType {
		return "a"
	}
	if curie, ok := compact(iri); ok {
		return curie
	}
	return "<" + iri + ">"
}

func turtleObject(o Term) string {
	if o.Kind == TermIRI {
		if curie, ok := compact(o.Value); ok {
			return curie
		}
		return "<" + o.Value + ">"
	}
	lit := `"` + escapeLiteral(o.Value) + `"`
	if o.Datatype != "" {
		if curie, ok := compact(o.Datatype); ok {
			return lit + "^^" + curie
		}
		return lit + "^^<" + o.Datatype + ">"
	}
	return lit
}
