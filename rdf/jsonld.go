package rdf

import (
	"bufio"
	"encoding/json"
)

// jsonldEncoder writes an @graph array under the fixed @context. Each
// entity batch becomes one node object per subject; encoding/json
// handles escaping and produces deterministic (sorted-key) output.
type jsonldEncoder struct {
	pretty bool
	wrote  bool
}

func (e *jsonldEncoder) begin(w *bufio.Writer) error {
	context := make(map[string]string, len(prefixes))
	for _, binding := range prefixes {
		context[binding.Prefix] = binding.IRI
	}
	raw, err := e.marshal(context, "  ")
	if err != nil {
		return err
	}
	if e.pretty {
		_, err = w.WriteString("{\n  \"@context\": " + string(raw) + ",\n  \"@graph\": [")
	} else {
		_, err = w.WriteString(`{"@context":` + string(raw) + `,"@graph":[`)
	}
	return err
}

func (e *jsonldEncoder) entity(w *bufio.Writer, triples []Triple) error {
	for _, node := range groupNodes(triples) {
		raw, err := e.marshal(node, "    ")
		if err != nil {
			return err
		}
		if e.wrote {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if e.pretty {
			if _, err := w.WriteString("\n    "); err != nil {
				return err
			}
		}
		if _, err := w.Write(raw); err != nil {
			return err
		}
		e.wrote = true
	}
	return nil
}

func (e *jsonldEncoder) end(w *bufio.Writer) error {
	if e.pretty {
		_, err := w.WriteString("\n  ]\n}\n")
		return err
	}
	_, err := w.WriteString(`]}`)
	return err
}

func (e *jsonldEncoder) marshal(v any, indent string) ([]byte, error) {
	if e.pretty {
		return json.MarshalIndent(v, indent, "  ")
	}
	return json.Marshal(v)
}

// groupNodes turns an entity's triples into JSON-LD node objects, one
// per subject.
func groupNodes(triples []Triple) []map[string]any {
	order := make([]string, 0, 2)
	nodes := make(map[string]map[string]any, 2)

	for _, t := range triples {
		node, seen := nodes[t.Subject]
		if !seen {
			node = map[string]any{"@id": t.Subject}
			nodes[t.Subject] = node
			order = append(order, t.Subject)
		}

		key, value := jsonldPair(t)
		switch existing := node[key].(type) {
		case nil:
			node[key] = value
		case []any:
			node[key] = append(existing, value)
		default:
			node[key] = []any{existing, value}
		}
	}

	out := make([]map[string]any, 0, len(order))
	for _, subject := range order {
		out = append(out, nodes[subject])
	}
	return out
}

func jsonldPair(t Triple) (string, any) {
	if t.Predicate == RDFType {
		value, _ := compact(t.Object.Value)
		return "@type", value
	}

	key, _ := compact(t.Predicate)

	switch {
	case t.Object.Kind == TermIRI:
		return key, map[string]any{"@id": t.Object.Value}
	case t.Object.Datatype != "":
		datatype, _ := compact(t.Object.Datatype)
		return key, map[string]any{"@value": t.Object.Value, "@type": datatype}
	default:
		return key, t.Object.Value
	}
}
