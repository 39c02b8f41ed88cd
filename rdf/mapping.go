package rdf

import (
	"fmt"
	"strconv"
	"time"

	"github.com/theoremus-urban-solutions/netex-to-lc/lc"
)

// ConnectionTriples maps one Connection to its triples. Stop and line
// metadata attach to the stop/line resources, not the connection, so
// repeated entities converge on the same statements.
func ConnectionTriples(c *lc.Connection) []Triple {
	triples := []Triple{
		{c.ID, RDFType, IRI(NSLC + "Connection")},
		{c.ID, NSLC + "departureStop", IRI(c.DepartureStop)},
		{c.ID, NSLC + "arrivalStop", IRI(c.ArrivalStop)},
		{c.ID, NSLC + "departureTime", Typed(formatInstant(c.DepartureTime), XSDDateTime)},
		{c.ID, NSLC + "arrivalTime", Typed(formatInstant(c.ArrivalTime), XSDDateTime)},
	}

	if c.Route != "" {
		triples = append(triples, Triple{c.ID, NSNeTEx + "line", IRI(c.Route)})
	}
	if c.Trip != "" {
		triples = append(triples, Triple{c.ID, NSNeTEx + "serviceJourney", IRI(c.Trip)})
	}
	if c.Operator != "" {
		triples = append(triples, Triple{c.ID, NSNeTEx + "operator", IRI(c.Operator)})
	}
	if c.Headsign != "" {
		triples = append(triples, Triple{c.ID, NSGTFS + "headsign", Text(c.Headsign)})
	}
	if c.TransportMode != "" {
		triples = append(triples, Triple{c.ID, NSNeTEx + "transportMode", Text(c.TransportMode)})
	}
	if c.WheelchairAccessible != nil {
		triples = append(triples, Triple{c.ID, NSNeTEx + "wheelchairAccessible",
			Typed(strconv.FormatBool(*c.WheelchairAccessible), XSDBoolean)})
	}
	if c.BikesAllowed != nil {
		triples = append(triples, Triple{c.ID, NSGTFS + "bikesAllowed",
			Typed(strconv.FormatBool(*c.BikesAllowed), XSDBoolean)})
	}

	if c.DepartureDelay != nil {
		triples = append(triples, Triple{c.ID, NSLC + "departureDelay",
			Typed(strconv.Itoa(*c.DepartureDelay), XSDInteger)})
	}
	if c.ArrivalDelay != nil {
		triples = append(triples, Triple{c.ID, NSLC + "arrivalDelay",
			Typed(strconv.Itoa(*c.ArrivalDelay), XSDInteger)})
	}
	if c.DepartureStatus != "" {
		triples = append(triples, Triple{c.ID, NSSIRI + "departureStatus", Text(string(c.DepartureStatus))})
	}
	if c.ArrivalStatus != "" {
		triples = append(triples, Triple{c.ID, NSSIRI + "arrivalStatus", Text(string(c.ArrivalStatus))})
	}
	if c.Realtime && c.Status != "" {
		triples = append(triples, Triple{c.ID, NSSIRI + "status", Text(string(c.Status))})
	}

	if c.DepartureStopName != "" {
		triples = append(triples, Triple{c.DepartureStop, NSNeTEx + "Name", Text(c.DepartureStopName)})
	}
	if c.ArrivalStopName != "" {
		triples = append(triples, Triple{c.ArrivalStop, NSNeTEx + "Name", Text(c.ArrivalStopName)})
	}
	triples = appendCoords(triples, c.DepartureStop, c.DepartureLat, c.DepartureLon)
	triples = appendCoords(triples, c.ArrivalStop, c.ArrivalLat, c.ArrivalLon)

	if c.Route != "" && c.LineName != "" {
		triples = append(triples, Triple{c.Route, NSNeTEx + "Name", Text(c.LineName)})
	}
	if c.Route != "" && c.LinePublicCode != "" {
		triples = append(triples, Triple{c.Route, NSNeTEx + "PublicCode", Text(c.LinePublicCode)})
	}

	return triples
}

// VehiclePositionTriples maps one VehiclePosition to its triples. The
// location flattens onto the vehicle resource.
func VehiclePositionTriples(v *lc.VehiclePosition) []Triple {
	triples := []Triple{
		{v.ID, RDFType, IRI(NSSIRI + "VehicleActivity")},
		{v.ID, NSSIRI + "recordedAtTime", Typed(v.RecordedAt, XSDDateTime)},
		{v.ID, NSSIRI + "monitored", Typed(strconv.FormatBool(v.Monitored), XSDBoolean)},
	}

	triples = appendCoords(triples, v.ID, v.Latitude, v.Longitude)

	if v.Bearing != nil {
		triples = append(triples, Triple{v.ID, NSSIRI + "bearing", Typed(formatFloat(*v.Bearing), XSDDouble)})
	}
	if v.Speed != nil {
		triples = append(triples, Triple{v.ID, NSSIRI + "speed", Typed(formatFloat(*v.Speed), XSDDouble)})
	}
	if v.DelaySeconds != nil {
		triples = append(triples, Triple{v.ID, NSSIRI + "delay", Typed(strconv.Itoa(*v.DelaySeconds), XSDInteger)})
	}
	if v.ProgressRate != "" {
		triples = append(triples, Triple{v.ID, NSSIRI + "progressRate", Text(v.ProgressRate)})
	}
	if v.Occupancy != "" {
		triples = append(triples, Triple{v.ID, NSSIRI + "occupancy", Text(v.Occupancy)})
	}
	if v.Line != "" {
		triples = append(triples, Triple{v.ID, NSNeTEx + "line", IRI(v.Line)})
	}
	if v.Journey != "" {
		triples = append(triples, Triple{v.ID, NSNeTEx + "serviceJourney", IRI(v.Journey)})
	}
	if v.Operator != "" {
		triples = append(triples, Triple{v.ID, NSNeTEx + "operator", IRI(v.Operator)})
	}
	if v.OriginName != "" {
		triples = append(triples, Triple{v.ID, NSSIRI + "originName", Text(v.OriginName)})
	}
	if v.DestinationName != "" {
		triples = append(triples, Triple{v.ID, NSSIRI + "destinationName", Text(v.DestinationName)})
	}
	if v.Destination != "" {
		triples = append(triples, Triple{v.ID, NSSIRI + "destinationRef", IRI(v.Destination)})
	}
	if v.InCongestion {
		triples = append(triples, Triple{v.ID, NSSIRI + "inCongestion", Typed("true", XSDBoolean)})
	}
	if v.CurrentStop != "" {
		triples = append(triples, Triple{v.ID, NSSIRI + "currentStopPoint", IRI(v.CurrentStop)})
	}
	if v.NextStop != "" {
		triples = append(triples, Triple{v.ID, NSSIRI + "nextStopPoint", IRI(v.NextStop)})
	}

	return triples
}

// AlertTriples maps one Alert to its triples. Consequences get
// skolemized identifiers beneath the alert URI.
func AlertTriples(a *lc.Alert) []Triple {
	triples := []Triple{
		{a.ID, RDFType, IRI(NSSIRI + "PtSituationElement")},
		{a.ID, NSSIRI + "situationNumber", Text(a.SituationNumber)},
		{a.ID, NSSIRI + "creationTime", Typed(a.CreationTime, XSDDateTime)},
	}

	plain := []struct {
		predicate string
		value     string
	}{
		{"participantRef", a.ParticipantRef},
		{"version", a.Version},
		{"progress", a.Progress},
		{"severity", a.Severity},
		{"summary", a.Summary},
		{"description", a.Description},
		{"reason", a.Reason},
		{"audience", a.Audience},
		{"reportType", a.ReportType},
	}
	for _, p := range plain {
		if p.value != "" {
			triples = append(triples, Triple{a.ID, NSSIRI + p.predicate, Text(p.value)})
		}
	}

	if a.ValidityStart != "" {
		triples = append(triples, Triple{a.ID, NSSIRI + "validityStart", Typed(a.ValidityStart, XSDDateTime)})
	}
	if a.ValidityEnd != "" {
		triples = append(triples, Triple{a.ID, NSSIRI + "validityEnd", Typed(a.ValidityEnd, XSDDateTime)})
	}

	for _, stop := range a.AffectedStops {
		triples = append(triples, Triple{a.ID, NSSIRI + "affectedStopPoint", IRI(stop.Stop)})
		if stop.Name != "" {
			triples = append(triples, Triple{stop.Stop, NSSIRI + "stopPointName", Text(stop.Name)})
		}
		triples = appendCoords(triples, stop.Stop, stop.Latitude, stop.Longitude)
	}

	for _, line := range a.AffectedLines {
		triples = append(triples, Triple{a.ID, NSSIRI + "affectedLine", IRI(line.Line)})
	}

	for i, consequence := range a.Consequences {
		subject := fmt.Sprintf("%s/consequences/%d", a.ID, i+1)
		triples = append(triples, Triple{a.ID, NSSIRI + "consequence", IRI(subject)})
		if consequence.Condition != "" {
			triples = append(triples, Triple{subject, NSSIRI + "condition", Text(consequence.Condition)})
		}
		if consequence.Severity != "" {
			triples = append(triples, Triple{subject, NSSIRI + "severity", Text(consequence.Severity)})
		}
		if consequence.BlockingJourneyPlanner {
			triples = append(triples, Triple{subject, NSSIRI + "blockingJourneyPlanner", Typed("true", XSDBoolean)})
		}
		if consequence.BlockingRealtime {
			triples = append(triples, Triple{subject, NSSIRI + "blockingRealTime", Typed("true", XSDBoolean)})
		}
		if consequence.ArrivalBoarding != "" {
			triples = append(triples, Triple{subject, NSSIRI + "arrivalBoardingActivity", Text(consequence.ArrivalBoarding)})
		}
		if consequence.DepartureBoarding != "" {
			triples = append(triples, Triple{subject, NSSIRI + "departureBoardingActivity", Text(consequence.DepartureBoarding)})
		}
	}

	return triples
}

func appendCoords(triples []Triple, subject string, lat, lon *float64) []Triple {
	if lat == nil || lon == nil {
		return triples
	}
	triples = append(triples, Triple{subject, NSGeo + "lat", Typed(formatFloat(*lat), XSDDouble)})
	triples = append(triples, Triple{subject, NSGeo + "long", Typed(formatFloat(*lon), XSDDouble)})
	return triples
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatInstant(t time.Time) string {
	return t.Format(time.RFC3339)
}
