package siri

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/theoremus-urban-solutions/netex-to-lc/lc"
	"github.com/theoremus-urban-solutions/netex-to-lc/xmltree"
)

func parseDoc(t *testing.T, xml string) *xmltree.Node {
	t.Helper()
	doc, err := xmltree.Parse(strings.NewReader(xml))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return doc
}

func collectET(t *testing.T, e *ETExtractor) []lc.Connection {
	t.Helper()
	var conns []lc.Connection
	for {
		conn, err := e.Next()
		if err == io.EOF {
			return conns
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		conns = append(conns, *conn)
	}
}

func etDocument(calls string) string {
	return `<Siri xmlns="http://www.siri.org.uk/siri">
  <ServiceDelivery>
    <EstimatedTimetableDelivery>
      <EstimatedJourneyVersionFrame>
        <EstimatedVehicleJourney>
          <LineRef>Line:1</LineRef>
          <DatedVehicleJourneyRef>SJ001</DatedVehicleJourneyRef>
          <EstimatedCalls>` + calls + `</EstimatedCalls>
        </EstimatedVehicleJourney>
      </EstimatedJourneyVersionFrame>
    </EstimatedTimetableDelivery>
  </ServiceDelivery>
</Siri>`
}

// TestET_DelayAndStatus tests the delay computation and threshold
// classification.
func TestET_DelayAndStatus(t *testing.T) {
	xml := etDocument(`
    <EstimatedCall>
      <StopPointRef>SP001</StopPointRef>
      <AimedDepartureTime>2026-02-05T08:30:00Z</AimedDepartureTime>
      <ExpectedDepartureTime>2026-02-05T08:32:00Z</ExpectedDepartureTime>
    </EstimatedCall>
    <EstimatedCall>
      <StopPointRef>SP002</StopPointRef>
      <AimedArrivalTime>2026-02-05T08:45:00Z</AimedArrivalTime>
      <ExpectedArrivalTime>2026-02-05T08:45:00Z</ExpectedArrivalTime>
    </EstimatedCall>`)

	e := NewETExtractor(parseDoc(t, xml), Options{})
	conns := collectET(t, e)
	if len(conns) != 1 {
		t.Fatalf("got %d connections, want 1", len(conns))
	}

	conn := conns[0]
	if !conn.Realtime {
		t.Error("connection not marked realtime")
	}
	if conn.DepartureDelay == nil || *conn.DepartureDelay != 120 {
		t.Errorf("departure delay = %v, want 120", conn.DepartureDelay)
	}
	if conn.DepartureStatus != lc.StatusDelayed {
		t.Errorf("departure status = %q, want delayed", conn.DepartureStatus)
	}
	if conn.ArrivalDelay == nil || *conn.ArrivalDelay != 0 {
		t.Errorf("arrival delay = %v, want 0", conn.ArrivalDelay)
	}
	if conn.ArrivalStatus != lc.StatusOnTime {
		t.Errorf("arrival status = %q, want onTime", conn.ArrivalStatus)
	}
	if conn.Status != lc.StatusDelayed {
		t.Errorf("roll-up status = %q, want delayed", conn.Status)
	}
	// Expected time wins over aimed.
	if conn.DepartureTime.Minute() != 32 {
		t.Errorf("departure time = %v, want expected time", conn.DepartureTime)
	}
}

// TestET_Early tests negative delay classification.
func TestET_Early(t *testing.T) {
	xml := etDocument(`
    <EstimatedCall>
      <StopPointRef>SP001</StopPointRef>
      <AimedDepartureTime>2026-02-05T08:30:00Z</AimedDepartureTime>
      <ExpectedDepartureTime>2026-02-05T08:28:30Z</ExpectedDepartureTime>
    </EstimatedCall>
    <EstimatedCall>
      <StopPointRef>SP002</StopPointRef>
      <ExpectedArrivalTime>2026-02-05T08:45:00Z</ExpectedArrivalTime>
    </EstimatedCall>`)

	e := NewETExtractor(parseDoc(t, xml), Options{})
	conns := collectET(t, e)
	if len(conns) != 1 {
		t.Fatalf("got %d connections, want 1", len(conns))
	}
	if conns[0].DepartureDelay == nil || *conns[0].DepartureDelay != -90 {
		t.Errorf("departure delay = %v, want -90", conns[0].DepartureDelay)
	}
	if conns[0].DepartureStatus != lc.StatusEarly {
		t.Errorf("departure status = %q, want early", conns[0].DepartureStatus)
	}
	// Arrival has no aimed time, so no delay and noData.
	if conns[0].ArrivalDelay != nil {
		t.Errorf("arrival delay = %v, want nil", conns[0].ArrivalDelay)
	}
	if conns[0].ArrivalStatus != lc.StatusNoData {
		t.Errorf("arrival status = %q, want noData", conns[0].ArrivalStatus)
	}
}

// TestET_Cancelled tests that cancellation wins regardless of delay.
func TestET_Cancelled(t *testing.T) {
	xml := etDocument(`
    <EstimatedCall>
      <StopPointRef>SP001</StopPointRef>
      <Cancellation>true</Cancellation>
      <AimedDepartureTime>2026-02-05T08:30:00Z</AimedDepartureTime>
      <ExpectedDepartureTime>2026-02-05T08:30:00Z</ExpectedDepartureTime>
    </EstimatedCall>
    <EstimatedCall>
      <StopPointRef>SP002</StopPointRef>
      <ExpectedArrivalTime>2026-02-05T08:45:00Z</ExpectedArrivalTime>
    </EstimatedCall>`)

	e := NewETExtractor(parseDoc(t, xml), Options{})
	conns := collectET(t, e)
	if len(conns) != 1 {
		t.Fatalf("got %d connections, want 1", len(conns))
	}
	if conns[0].DepartureStatus != lc.StatusCancelled {
		t.Errorf("departure status = %q, want cancelled", conns[0].DepartureStatus)
	}
	if conns[0].Status != lc.StatusCancelled {
		t.Errorf("roll-up status = %q, want cancelled", conns[0].Status)
	}
}

// TestET_SharedConnectionIdentity tests that a real-time connection
// resolves the same URI its static counterpart would.
func TestET_SharedConnectionIdentity(t *testing.T) {
	xml := etDocument(`
    <EstimatedCall>
      <StopPointRef>SP001</StopPointRef>
      <ExpectedDepartureTime>2026-02-05T08:30:00Z</ExpectedDepartureTime>
    </EstimatedCall>
    <EstimatedCall>
      <StopPointRef>SP002</StopPointRef>
      <ExpectedArrivalTime>2026-02-05T08:45:00Z</ExpectedArrivalTime>
    </EstimatedCall>`)

	e := NewETExtractor(parseDoc(t, xml), Options{})
	conns := collectET(t, e)
	if len(conns) != 1 {
		t.Fatalf("got %d connections, want 1", len(conns))
	}
	want := "http://transport.example.org/connections/20260205/SJ001/1"
	if conns[0].ID != want {
		t.Errorf("connection ID = %q, want %q", conns[0].ID, want)
	}
}

// TestET_TimeOnlyRequiresServiceDate tests the document-fatal missing
// service date error and its resolution when configured.
func TestET_TimeOnlyRequiresServiceDate(t *testing.T) {
	xml := etDocument(`
    <EstimatedCall>
      <StopPointRef>SP001</StopPointRef>
      <ExpectedDepartureTime>08:30:00</ExpectedDepartureTime>
    </EstimatedCall>
    <EstimatedCall>
      <StopPointRef>SP002</StopPointRef>
      <ExpectedArrivalTime>08:45:00</ExpectedArrivalTime>
    </EstimatedCall>`)

	// Without a service date the run fails, lenient or not.
	e := NewETExtractor(parseDoc(t, xml), Options{})
	_, err := e.Next()
	var missing *lc.MissingServiceDateError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want MissingServiceDateError", err)
	}

	serviceDate := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)
	e = NewETExtractor(parseDoc(t, xml), Options{ServiceDate: serviceDate})
	conns := collectET(t, e)
	if len(conns) != 1 {
		t.Fatalf("got %d connections, want 1", len(conns))
	}
	want := time.Date(2026, 2, 5, 8, 30, 0, 0, time.UTC)
	if !conns[0].DepartureTime.Equal(want) {
		t.Errorf("departure time = %v, want %v", conns[0].DepartureTime, want)
	}
}

// TestET_JourneyCancellation tests journey-level cancellation
// propagating to every call.
func TestET_JourneyCancellation(t *testing.T) {
	xml := `<Siri>
  <EstimatedVehicleJourney>
    <DatedVehicleJourneyRef>SJ002</DatedVehicleJourneyRef>
    <Cancellation>true</Cancellation>
    <EstimatedCalls>
      <EstimatedCall>
        <StopPointRef>SP001</StopPointRef>
        <ExpectedDepartureTime>2026-02-05T08:30:00Z</ExpectedDepartureTime>
      </EstimatedCall>
      <EstimatedCall>
        <StopPointRef>SP002</StopPointRef>
        <ExpectedArrivalTime>2026-02-05T08:45:00Z</ExpectedArrivalTime>
      </EstimatedCall>
    </EstimatedCalls>
  </EstimatedVehicleJourney>
</Siri>`

	e := NewETExtractor(parseDoc(t, xml), Options{})
	conns := collectET(t, e)
	if len(conns) != 1 {
		t.Fatalf("got %d connections, want 1", len(conns))
	}
	if conns[0].Status != lc.StatusCancelled {
		t.Errorf("status = %q, want cancelled", conns[0].Status)
	}
}

// TestET_CustomThreshold tests that the threshold boundary is
// inclusive for delayed.
func TestET_CustomThreshold(t *testing.T) {
	xml := etDocument(`
    <EstimatedCall>
      <StopPointRef>SP001</StopPointRef>
      <AimedDepartureTime>2026-02-05T08:30:00Z</AimedDepartureTime>
      <ExpectedDepartureTime>2026-02-05T08:31:00Z</ExpectedDepartureTime>
    </EstimatedCall>
    <EstimatedCall>
      <StopPointRef>SP002</StopPointRef>
      <ExpectedArrivalTime>2026-02-05T08:45:00Z</ExpectedArrivalTime>
    </EstimatedCall>`)

	// 60s delay at the default 60s threshold is delayed.
	e := NewETExtractor(parseDoc(t, xml), Options{})
	conns := collectET(t, e)
	if conns[0].DepartureStatus != lc.StatusDelayed {
		t.Errorf("default threshold: status = %q, want delayed", conns[0].DepartureStatus)
	}

	// With a larger threshold the same delay counts as onTime.
	e = NewETExtractor(parseDoc(t, xml), Options{DelayThreshold: 2 * time.Minute})
	conns = collectET(t, e)
	if conns[0].DepartureStatus != lc.StatusOnTime {
		t.Errorf("120s threshold: status = %q, want onTime", conns[0].DepartureStatus)
	}
}
