package rdf

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
)

// rdfxmlEncoder writes rdf:Description blocks. Every predicate in the
// mapping belongs to a declared namespace, so prefixed element names
// always resolve.
type rdfxmlEncoder struct {
	pretty bool
}

func (e *rdfxmlEncoder) begin(w *bufio.Writer) error {
	if _, err := w.WriteString(xml.Header); err != nil {
		return err
	}
	if _, err := w.WriteString("<rdf:RDF"); err != nil {
		return err
	}
	for _, binding := range prefixes {
		sep := " "
		if e.pretty {
			sep = "\n    "
		}
		if _, err := fmt.Fprintf(w, `%sxmlns:%s="%s"`, sep, binding.Prefix, binding.IRI); err != nil {
			return err
		}
	}
	_, err := w.WriteString(">")
	return err
}

func (e *rdfxmlEncoder) entity(w *bufio.Writer, triples []Triple) error {
	order := make([]string, 0, 2)
	grouped := make(map[string][]Triple, 2)
	for _, t := range triples {
		if _, seen := grouped[t.Subject]; !seen {
			order = append(order, t.Subject)
		}
		grouped[t.Subject] = append(grouped[t.Subject], t)
	}

	for _, subject := range order {
		if err := e.writeNewline(w, 1); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<rdf:Description rdf:about="%s">`, xmlEscape(subject)); err != nil {
			return err
		}
		for _, t := range grouped[subject] {
			if err := e.writeNewline(w, 2); err != nil {
				return err
			}
			if err := e.writeProperty(w, t); err != nil {
				return err
			}
		}
		if err := e.writeNewline(w, 1); err != nil {
			return err
		}
		if _, err := w.WriteString("</rdf:Description>"); err != nil {
			return err
		}
	}
	return nil
}

func (e *rdfxmlEncoder) end(w *bufio.Writer) error {
	if e.pretty {
		if _, err := w.WriteString("\n</rdf:RDF>\n"); err != nil {
			return err
		}
		return nil
	}
	_, err := w.WriteString("</rdf:RDF>")
	return err
}

func (e *rdfxmlEncoder) writeProperty(w *bufio.Writer, t Triple) error {
	name, ok := compact(t.Predicate)
	if !ok {
		return fmt.Errorf("predicate %s outside the declared namespaces", t.Predicate)
	}

	if t.Object.Kind == TermIRI {
		_, err := fmt.Fprintf(w, `<%s rdf:resource="%s"/>`, name, xmlEscape(t.Object.Value))
		return err
	}
	if t.Object.Datatype != "" {
		_, err := fmt.Fprintf(w, `<%s rdf:datatype="%s">%s</%s>`,
			name, xmlEscape(t.Object.Datatype), xmlEscape(t.Object.Value), name)
		return err
	}
	_, err := fmt.Fprintf(w, `<%s>%s</%s>`, name, xmlEscape(t.Object.Value), name)
	return err
}

func (e *rdfxmlEncoder) writeNewline(w *bufio.Writer, depth int) error {
	if !e.pretty {
		return nil
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	for i := 0; i < depth; i++ {
		if _, err := w.WriteString("  "); err != nil {
			return err
		}
	}
	return nil
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
