package rdf

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/theoremus-urban-solutions/netex-to-lc/lc"
)

type sliceIterator struct {
	conns []lc.Connection
	index int
}

func (s *sliceIterator) Next() (*lc.Connection, error) {
	if s.index >= len(s.conns) {
		return nil, io.EOF
	}
	conn := &s.conns[s.index]
	s.index++
	return conn, nil
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func testConnections() []lc.Connection {
	return []lc.Connection{
		{
			ID:            "http://transport.example.org/connections/20260205/SJ001/1",
			DepartureStop: "http://transport.example.org/stops/SP001",
			ArrivalStop:   "http://transport.example.org/stops/SP002",
			DepartureTime: time.Date(2026, 2, 5, 8, 30, 0, 0, time.UTC),
			ArrivalTime:   time.Date(2026, 2, 5, 8, 45, 0, 0, time.UTC),
			Sequence:      1,
			Route:         "http://transport.example.org/lines/Line1",
			Trip:          "http://transport.example.org/journeys/SJ001",
			Headsign:      "Harbour via \"Centre\"",

			Realtime:        true,
			DepartureDelay:  intPtr(120),
			ArrivalDelay:    intPtr(0),
			DepartureStatus: lc.StatusDelayed,
			ArrivalStatus:   lc.StatusOnTime,
			Status:          lc.StatusDelayed,

			DepartureStopName: "Central Station",
			DepartureLat:      floatPtr(59.911),
			DepartureLon:      floatPtr(10.753),
		},
		{
			ID:            "http://transport.example.org/connections/20260205/SJ001/2",
			DepartureStop: "http://transport.example.org/stops/SP002",
			ArrivalStop:   "http://transport.example.org/stops/SP003",
			DepartureTime: time.Date(2026, 2, 5, 8, 46, 0, 0, time.UTC),
			ArrivalTime:   time.Date(2026, 2, 5, 9, 0, 0, 0, time.UTC),
			Sequence:      2,
		},
	}
}

func encode(t *testing.T, format Format, opts Options) string {
	t.Helper()
	var buf bytes.Buffer
	src := Connections(&sliceIterator{conns: testConnections()})
	if err := Encode(&buf, format, opts, src); err != nil {
		t.Fatalf("Encode(%s) failed: %v", format, err)
	}
	return buf.String()
}

func countTriples(conns []lc.Connection) int {
	total := 0
	for i := range conns {
		total += len(ConnectionTriples(&conns[i]))
	}
	return total
}

// TestEncode_NTriples tests the line-per-triple shape and escaping.
func TestEncode_NTriples(t *testing.T) {
	out := encode(t, FormatNTriples, Options{})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	want := countTriples(testConnections())
	if len(lines) != want {
		t.Errorf("got %d lines, want %d triples", len(lines), want)
	}
	for i, line := range lines {
		if !strings.HasSuffix(line, " .") || !strings.HasPrefix(line, "<") {
			t.Errorf("line %d not in N-Triples shape: %q", i, line)
		}
	}

	if !strings.Contains(out,
		"<http://transport.example.org/connections/20260205/SJ001/1> "+
			"<http://www.w3.org/1999/02/22-rdf-syntax-ns#type> "+
			"<http://semweb.mmlab.be/ns/linkedconnections#Connection> .") {
		t.Error("missing rdf:type triple")
	}
	if !strings.Contains(out,
		`"2026-02-05T08:30:00Z"^^<http://www.w3.org/2001/XMLSchema#dateTime>`) {
		t.Error("missing typed departureTime literal")
	}
	if !strings.Contains(out, `"Harbour via \"Centre\""`) {
		t.Error("quote escaping missing in headsign literal")
	}
	if !strings.Contains(out,
		`<http://semweb.mmlab.be/ns/linkedconnections#departureDelay> "120"^^<http://www.w3.org/2001/XMLSchema#integer>`) {
		t.Error("missing departureDelay triple")
	}
}

// TestEncode_Turtle tests prefixed output grouped by subject.
func TestEncode_Turtle(t *testing.T) {
	out := encode(t, FormatTurtle, Options{})

	if !strings.HasPrefix(out, "@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .\n") {
		t.Error("output does not start with the prefix block")
	}
	if !strings.Contains(out, "a lc:Connection") {
		t.Error("missing 'a lc:Connection'")
	}
	if !strings.Contains(out, "lc:departureTime \"2026-02-05T08:30:00Z\"^^xsd:dateTime") {
		t.Error("missing compacted departureTime")
	}
	if !strings.Contains(out, "siri:status \"delayed\"") {
		t.Error("missing realtime status")
	}

	// Each predicate line is indented once; the count matches the
	// triple stream.
	predicateLines := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "    ") {
			predicateLines++
		}
	}
	if want := countTriples(testConnections()); predicateLines != want {
		t.Errorf("got %d predicate lines, want %d", predicateLines, want)
	}
}

// TestEncode_JSONLD tests that the output is valid JSON with the
// expected graph shape, and carries exactly the same statements.
func TestEncode_JSONLD(t *testing.T) {
	for _, pretty := range []bool{true, false} {
		out := encode(t, FormatJSONLD, Options{Pretty: pretty})

		var doc struct {
			Context map[string]string        `json:"@context"`
			Graph   []map[string]interface{} `json:"@graph"`
		}
		if err := json.Unmarshal([]byte(out), &doc); err != nil {
			t.Fatalf("pretty=%v: invalid JSON: %v", pretty, err)
		}
		if doc.Context["lc"] != "http://semweb.mmlab.be/ns/linkedconnections#" {
			t.Errorf("lc namespace = %q", doc.Context["lc"])
		}

		// Count statements across all nodes: one per value, @type
		// included, @id excluded.
		statements := 0
		for _, node := range doc.Graph {
			for key, value := range node {
				if key == "@id" {
					continue
				}
				if list, ok := value.([]interface{}); ok {
					statements += len(list)
				} else {
					statements++
				}
			}
		}
		if want := countTriples(testConnections()); statements != want {
			t.Errorf("pretty=%v: got %d statements, want %d", pretty, statements, want)
		}

		first := doc.Graph[0]
		if first["@id"] != "http://transport.example.org/connections/20260205/SJ001/1" {
			t.Errorf("first node @id = %v", first["@id"])
		}
		if first["@type"] != "lc:Connection" {
			t.Errorf("first node @type = %v", first["@type"])
		}
		depStop, _ := first["lc:departureStop"].(map[string]interface{})
		if depStop["@id"] != "http://transport.example.org/stops/SP001" {
			t.Errorf("departureStop = %v", first["lc:departureStop"])
		}
		depTime, _ := first["lc:departureTime"].(map[string]interface{})
		if depTime["@value"] != "2026-02-05T08:30:00Z" || depTime["@type"] != "xsd:dateTime" {
			t.Errorf("departureTime = %v", first["lc:departureTime"])
		}
	}
}

// TestEncode_RDFXML tests namespace declarations and description
// blocks.
func TestEncode_RDFXML(t *testing.T) {
	out := encode(t, FormatRDFXML, Options{Pretty: true})

	if !strings.Contains(out, `xmlns:lc="http://semweb.mmlab.be/ns/linkedconnections#"`) {
		t.Error("missing lc namespace declaration")
	}
	if !strings.Contains(out,
		`<rdf:Description rdf:about="http://transport.example.org/connections/20260205/SJ001/1">`) {
		t.Error("missing rdf:Description for the first connection")
	}
	if !strings.Contains(out,
		`<lc:departureStop rdf:resource="http://transport.example.org/stops/SP001"/>`) {
		t.Error("missing departureStop resource property")
	}
	if !strings.Contains(out,
		`<lc:departureTime rdf:datatype="http://www.w3.org/2001/XMLSchema#dateTime">2026-02-05T08:30:00Z</lc:departureTime>`) {
		t.Error("missing typed departureTime property")
	}
	if !strings.HasSuffix(out, "</rdf:RDF>\n") {
		t.Error("output not closed")
	}
}

// TestEncode_AlertSkolemization tests that consequence nodes hang off
// the alert URI instead of blank nodes.
func TestEncode_AlertSkolemization(t *testing.T) {
	alert := lc.Alert{
		ID:              "http://transport.example.org/alerts/S1",
		SituationNumber: "S1",
		CreationTime:    "2026-02-05T07:00:00Z",
		Consequences: []lc.Consequence{
			{Condition: "diverted", BlockingJourneyPlanner: true},
		},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, FormatNTriples, Options{}, Alerts([]lc.Alert{alert})); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	out := buf.String()

	if strings.Contains(out, "_:") {
		t.Error("output contains a blank node")
	}
	if !strings.Contains(out,
		"<http://www.siri.org.uk/siri#consequence> <http://transport.example.org/alerts/S1/consequences/1>") {
		t.Error("missing skolemized consequence link")
	}
	if !strings.Contains(out,
		"<http://transport.example.org/alerts/S1/consequences/1> <http://www.siri.org.uk/siri#condition> \"diverted\"") {
		t.Error("missing consequence condition triple")
	}
}

// TestEncode_VehiclePosition tests the vehicle mapping through the
// encoder.
func TestEncode_VehiclePosition(t *testing.T) {
	position := lc.VehiclePosition{
		ID:         "http://transport.example.org/vehicles/V123",
		VehicleID:  "V123",
		RecordedAt: "2026-02-05T08:31:12Z",
		Latitude:   floatPtr(59.911),
		Longitude:  floatPtr(10.753),
		Monitored:  true,
	}

	var buf bytes.Buffer
	if err := Encode(&buf, FormatNTriples, Options{}, VehiclePositions([]lc.VehiclePosition{position})); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "<http://www.siri.org.uk/siri#VehicleActivity>") {
		t.Error("missing VehicleActivity type")
	}
	if !strings.Contains(out,
		`<http://www.w3.org/2003/01/geo/wgs84_pos#lat> "59.911"^^<http://www.w3.org/2001/XMLSchema#double>`) {
		t.Error("missing latitude triple")
	}
}

// TestParseFormat tests format aliases.
func TestParseFormat(t *testing.T) {
	for name, want := range map[string]Format{
		"jsonld": FormatJSONLD, "json-ld": FormatJSONLD,
		"ttl": FormatTurtle, "turtle": FormatTurtle,
		"nt": FormatNTriples, "ntriples": FormatNTriples,
		"rdfxml": FormatRDFXML, "xml": FormatRDFXML,
	} {
		got, err := ParseFormat(name)
		if err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", name, err)
		}
		if got != want {
			t.Errorf("ParseFormat(%q) = %q, want %q", name, got, want)
		}
	}
	if _, err := ParseFormat("trig"); err == nil {
		t.Error("ParseFormat should reject unknown formats")
	}
}
