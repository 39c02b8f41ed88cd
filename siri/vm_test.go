package siri

import (
	"testing"

	"github.com/theoremus-urban-solutions/netex-to-lc/diag"
)

const vmDocument = `<Siri xmlns="http://www.siri.org.uk/siri">
  <ServiceDelivery>
    <VehicleMonitoringDelivery>
      <VehicleActivity>
        <RecordedAtTime>2026-02-05T08:31:12Z</RecordedAtTime>
        <MonitoredVehicleJourney>
          <LineRef>Line:1</LineRef>
          <DatedVehicleJourneyRef>SJ001</DatedVehicleJourneyRef>
          <OperatorRef>OP:1</OperatorRef>
          <OriginName>Central Station</OriginName>
          <DestinationName>Harbour</DestinationName>
          <DestinationRef>SP002</DestinationRef>
          <Monitored>true</Monitored>
          <InCongestion>true</InCongestion>
          <VehicleLocation>
            <Longitude>10.753</Longitude>
            <Latitude>59.911</Latitude>
          </VehicleLocation>
          <Bearing>182.5</Bearing>
          <Delay>PT2M30S</Delay>
          <ProgressRate>normalProgress</ProgressRate>
          <Occupancy>seatsAvailable</Occupancy>
          <OnwardCalls>
            <OnwardCall><StopPointRef>SP003</StopPointRef></OnwardCall>
          </OnwardCalls>
          <VehicleRef>V123</VehicleRef>
        </MonitoredVehicleJourney>
      </VehicleActivity>
    </VehicleMonitoringDelivery>
  </ServiceDelivery>
</Siri>`

// TestVM_Extract tests the 1:1 VehicleActivity mapping.
func TestVM_Extract(t *testing.T) {
	positions, err := ExtractVehiclePositions(parseDoc(t, vmDocument), Options{})
	if err != nil {
		t.Fatalf("ExtractVehiclePositions failed: %v", err)
	}
	if len(positions) != 1 {
		t.Fatalf("got %d positions, want 1", len(positions))
	}

	p := positions[0]
	if p.ID != "http://transport.example.org/vehicles/V123" {
		t.Errorf("ID = %q", p.ID)
	}
	if p.VehicleID != "V123" {
		t.Errorf("vehicle id = %q", p.VehicleID)
	}
	if p.RecordedAt != "2026-02-05T08:31:12Z" {
		t.Errorf("recorded at = %q", p.RecordedAt)
	}
	if p.Latitude == nil || *p.Latitude != 59.911 {
		t.Errorf("latitude = %v", p.Latitude)
	}
	if p.Longitude == nil || *p.Longitude != 10.753 {
		t.Errorf("longitude = %v", p.Longitude)
	}
	if p.Bearing == nil || *p.Bearing != 182.5 {
		t.Errorf("bearing = %v", p.Bearing)
	}
	if p.DelaySeconds == nil || *p.DelaySeconds != 150 {
		t.Errorf("delay = %v, want 150", p.DelaySeconds)
	}
	if p.Line != "http://transport.example.org/lines/Line:1" {
		t.Errorf("line = %q", p.Line)
	}
	if p.Journey != "http://transport.example.org/journeys/SJ001" {
		t.Errorf("journey = %q", p.Journey)
	}
	if p.Operator != "http://transport.example.org/operators/OP:1" {
		t.Errorf("operator = %q", p.Operator)
	}
	if p.Destination != "http://transport.example.org/stops/SP002" {
		t.Errorf("destination = %q", p.Destination)
	}
	if p.NextStop != "http://transport.example.org/stops/SP003" {
		t.Errorf("next stop = %q", p.NextStop)
	}
	if !p.Monitored || !p.InCongestion {
		t.Errorf("flags: monitored=%v inCongestion=%v", p.Monitored, p.InCongestion)
	}
	if p.ProgressRate != "normalProgress" || p.Occupancy != "seatsAvailable" {
		t.Errorf("progress=%q occupancy=%q", p.ProgressRate, p.Occupancy)
	}
}

// TestVM_NegativeDelay tests signed ISO 8601 delay parsing.
func TestVM_NegativeDelay(t *testing.T) {
	xml := `<Siri>
  <VehicleActivity>
    <RecordedAtTime>2026-02-05T08:31:12Z</RecordedAtTime>
    <MonitoredVehicleJourney>
      <VehicleRef>V9</VehicleRef>
      <Delay>-PT90S</Delay>
    </MonitoredVehicleJourney>
  </VehicleActivity>
</Siri>`
	positions, err := ExtractVehiclePositions(parseDoc(t, xml), Options{})
	if err != nil {
		t.Fatalf("ExtractVehiclePositions failed: %v", err)
	}
	if positions[0].DelaySeconds == nil || *positions[0].DelaySeconds != -90 {
		t.Errorf("delay = %v, want -90", positions[0].DelaySeconds)
	}
}

// TestVM_SkipsIncompleteActivities tests the lenient skip for
// activities missing required elements.
func TestVM_SkipsIncompleteActivities(t *testing.T) {
	xml := `<Siri>
  <VehicleActivity>
    <MonitoredVehicleJourney><VehicleRef>V1</VehicleRef></MonitoredVehicleJourney>
  </VehicleActivity>
  <VehicleActivity>
    <RecordedAtTime>2026-02-05T08:31:12Z</RecordedAtTime>
    <MonitoredVehicleJourney><VehicleRef>V2</VehicleRef></MonitoredVehicleJourney>
  </VehicleActivity>
</Siri>`

	sink := diag.NewSink(0)
	positions, err := ExtractVehiclePositions(parseDoc(t, xml), Options{Sink: sink})
	if err != nil {
		t.Fatalf("ExtractVehiclePositions failed: %v", err)
	}
	if len(positions) != 1 {
		t.Fatalf("got %d positions, want 1", len(positions))
	}
	if positions[0].VehicleID != "V2" {
		t.Errorf("surviving vehicle = %q", positions[0].VehicleID)
	}
	if sink.CountByCode(diag.CodeSchemaShape) != 1 {
		t.Errorf("schema_shape count = %d, want 1", sink.CountByCode(diag.CodeSchemaShape))
	}

	// Strict mode fails on the first incomplete activity.
	if _, err := ExtractVehiclePositions(parseDoc(t, xml), Options{Strict: true}); err == nil {
		t.Error("strict extraction should fail")
	}
}
