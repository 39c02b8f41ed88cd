package rdf

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/theoremus-urban-solutions/netex-to-lc/lc"
)

// Format selects a concrete RDF syntax.
type Format string

const (
	FormatJSONLD   Format = "jsonld"
	FormatTurtle   Format = "turtle"
	FormatNTriples Format = "ntriples"
	FormatRDFXML   Format = "rdfxml"
)

// ParseFormat maps user-facing format names, including the usual
// aliases, onto a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "jsonld", "json-ld", "json":
		return FormatJSONLD, nil
	case "turtle", "ttl":
		return FormatTurtle, nil
	case "ntriples", "n-triples", "nt":
		return FormatNTriples, nil
	case "rdfxml", "rdf-xml", "xml":
		return FormatRDFXML, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", name)
	}
}

// Options controls whitespace only; triple content is identical either
// way.
type Options struct {
	Pretty bool
}

// Source yields entities one at a time as triple batches, returning
// io.EOF when exhausted. Encoders hold at most one batch in memory.
type Source interface {
	Next() ([]Triple, error)
}

// ConnectionIterator is the pull interface the extractors expose for
// lazy connection sequences.
type ConnectionIterator interface {
	Next() (*lc.Connection, error)
}

type connectionSource struct {
	it ConnectionIterator
}

// Connections adapts a lazy connection sequence into a Source.
func Connections(it ConnectionIterator) Source {
	return &connectionSource{it: it}
}

func (s *connectionSource) Next() ([]Triple, error) {
	conn, err := s.it.Next()
	if err != nil {
		return nil, err
	}
	return ConnectionTriples(conn), nil
}

type vehicleSource struct {
	positions []lc.VehiclePosition
	index     int
}

// VehiclePositions adapts a vehicle position collection into a Source.
func VehiclePositions(positions []lc.VehiclePosition) Source {
	return &vehicleSource{positions: positions}
}

func (s *vehicleSource) Next() ([]Triple, error) {
	if s.index >= len(s.positions) {
		return nil, io.EOF
	}
	v := &s.positions[s.index]
	s.index++
	return VehiclePositionTriples(v), nil
}

type alertSource struct {
	alerts []lc.Alert
	index  int
}

// Alerts adapts an alert collection into a Source.
func Alerts(alerts []lc.Alert) Source {
	return &alertSource{alerts: alerts}
}

func (s *alertSource) Next() ([]Triple, error) {
	if s.index >= len(s.alerts) {
		return nil, io.EOF
	}
	a := &s.alerts[s.index]
	s.index++
	return AlertTriples(a), nil
}

type encoder interface {
	begin(w *bufio.Writer) error
	entity(w *bufio.Writer, triples []Triple) error
	end(w *bufio.Writer) error
}

// Encode streams src into w in the chosen format, one entity at a
// time.
func Encode(w io.Writer, format Format, opts Options, src Source) error {
	var enc encoder
	switch format {
	case FormatJSONLD:
		enc = &jsonldEncoder{pretty: opts.Pretty}
	case FormatTurtle:
		enc = &turtleEncoder{}
	case FormatNTriples:
		enc = &ntriplesEncoder{}
	case FormatRDFXML:
		enc = &rdfxmlEncoder{pretty: opts.Pretty}
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}

	bw := bufio.NewWriter(w)
	if err := enc.begin(bw); err != nil {
		return err
	}
	for {
		triples, err := src.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		if len(triples) == 0 {
			continue
		}
		if err := enc.entity(bw, triples); err != nil {
			return err
		}
	}
	if err := enc.end(bw); err != nil {
		return err
	}
	return bw.Flush()
}
