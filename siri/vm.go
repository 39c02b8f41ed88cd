package siri

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	iso8601 "github.com/senseyeio/duration"

	"github.com/theoremus-urban-solutions/netex-to-lc/diag"
	"github.com/theoremus-urban-solutions/netex-to-lc/lc"
	"github.com/theoremus-urban-solutions/netex-to-lc/xmltree"
)

// ExtractVehiclePositions maps each VehicleActivity element of a
// SIRI-VM document onto one VehiclePosition. Activities without a
// timestamp or vehicle reference are skipped with a diagnostic.
func ExtractVehiclePositions(doc *xmltree.Node, opts Options) ([]lc.VehiclePosition, error) {
	opts = opts.withDefaults()

	activities := doc.Descendants("VehicleActivity")
	positions := make([]lc.VehiclePosition, 0, len(activities))
	for _, activity := range activities {
		position, err := parseVehicleActivity(activity, opts)
		if err != nil {
			if opts.Strict {
				return nil, err
			}
			opts.Sink.Add(diag.CodeSchemaShape, activity.FindText("ItemIdentifier"), err.Error())
			continue
		}
		positions = append(positions, position)
	}
	return positions, nil
}

func parseVehicleActivity(activity *xmltree.Node, opts Options) (lc.VehiclePosition, error) {
	recordedAt := activity.FindText("RecordedAtTime")
	if recordedAt == "" {
		return lc.VehiclePosition{}, &lc.SchemaShapeError{Unit: "VehicleActivity", Missing: "RecordedAtTime"}
	}

	journey := activity.First("MonitoredVehicleJourney")
	if journey == nil {
		return lc.VehiclePosition{}, &lc.SchemaShapeError{Unit: "VehicleActivity", Missing: "MonitoredVehicleJourney"}
	}

	vehicleID := journey.FindText("VehicleRef")
	if vehicleID == "" {
		vehicleID = activity.FindText("VehicleMonitoringRef", "ItemIdentifier")
	}
	if vehicleID == "" {
		return lc.VehiclePosition{}, &lc.SchemaShapeError{Unit: "VehicleActivity", Missing: "VehicleRef"}
	}

	id, err := opts.Strategy.Vehicle(vehicleID)
	if err := resolveURIError(err, opts, vehicleID); err != nil {
		return lc.VehiclePosition{}, err
	}

	position := lc.VehiclePosition{
		ID:           id,
		VehicleID:    vehicleID,
		RecordedAt:   recordedAt,
		ProgressRate: journey.FindText("ProgressRate"),
		Occupancy:    journey.FindText("Occupancy", "OccupancyLevel"),

		OriginName:      journey.FindText("OriginName"),
		DestinationName: journey.FindText("DestinationName"),

		Monitored:    parseBool(journey.FindText("Monitored")),
		InCongestion: parseBool(journey.FindText("InCongestion")),
	}

	if location := journey.First("VehicleLocation"); location != nil {
		position.Latitude = parseFloat(location.FindText("Latitude"))
		position.Longitude = parseFloat(location.FindText("Longitude"))
	}
	position.Bearing = parseFloat(journey.FindText("Bearing"))
	position.Speed = parseFloat(journey.FindText("Velocity", "Speed"))

	if delayText := journey.FindText("Delay"); delayText != "" {
		seconds, err := parseDelay(delayText)
		if err != nil {
			if opts.Strict {
				return lc.VehiclePosition{}, err
			}
			opts.Sink.Add(diag.CodeBadValue, vehicleID, err.Error())
		} else {
			position.DelaySeconds = &seconds
		}
	}

	if lineRef := journey.FindRef("LineRef"); lineRef != "" {
		line, err := opts.Strategy.Line(lineRef)
		if err := resolveURIError(err, opts, vehicleID); err != nil {
			return lc.VehiclePosition{}, err
		}
		position.Line = line
	}
	if journeyRef := vmJourneyRef(journey); journeyRef != "" {
		trip, err := opts.Strategy.Journey(journeyRef)
		if err := resolveURIError(err, opts, vehicleID); err != nil {
			return lc.VehiclePosition{}, err
		}
		position.Journey = trip
	}
	if operatorRef := journey.FindRef("OperatorRef"); operatorRef != "" {
		operator, err := opts.Strategy.Operator(operatorRef)
		if err := resolveURIError(err, opts, vehicleID); err != nil {
			return lc.VehiclePosition{}, err
		}
		position.Operator = operator
	}

	if destinationRef := journey.FindRef("DestinationRef"); destinationRef != "" {
		destination, err := opts.Strategy.Stop(destinationRef)
		if err := resolveURIError(err, opts, vehicleID); err != nil {
			return lc.VehiclePosition{}, err
		}
		position.Destination = destination
	}
	if currentRef := vmCurrentStopRef(journey); currentRef != "" {
		stop, err := opts.Strategy.Stop(currentRef)
		if err := resolveURIError(err, opts, vehicleID); err != nil {
			return lc.VehiclePosition{}, err
		}
		position.CurrentStop = stop
	}
	if nextRef := vmNextStopRef(journey); nextRef != "" {
		stop, err := opts.Strategy.Stop(nextRef)
		if err := resolveURIError(err, opts, vehicleID); err != nil {
			return lc.VehiclePosition{}, err
		}
		position.NextStop = stop
	}

	return position, nil
}

func vmJourneyRef(journey *xmltree.Node) string {
	if ref := journey.FindText("DatedVehicleJourneyRef", "VehicleJourneyRef"); ref != "" {
		return ref
	}
	if framed := journey.First("FramedVehicleJourneyRef"); framed != nil {
		return framed.FindText("DatedVehicleJourneyRef")
	}
	return ""
}

func vmCurrentStopRef(journey *xmltree.Node) string {
	if call := journey.First("MonitoredCall"); call != nil {
		return call.FindRef("StopPointRef")
	}
	return ""
}

func vmNextStopRef(journey *xmltree.Node) string {
	if calls := journey.First("OnwardCalls"); calls != nil {
		if call := calls.First("OnwardCall"); call != nil {
			return call.FindRef("StopPointRef")
		}
	}
	return ""
}

func parseFloat(text string) *float64 {
	if text == "" {
		return nil
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	return &value
}

// parseDelay converts a SIRI ISO 8601 duration, e.g. "PT2M30S" or
// "-PT90S", into signed whole seconds.
func parseDelay(text string) (int, error) {
	negative := strings.HasPrefix(text, "-")
	trimmed := strings.TrimPrefix(text, "-")

	d, err := iso8601.ParseISO8601(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid delay duration %q: %w", text, err)
	}

	ref := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	seconds := int(d.Shift(ref).Sub(ref) / time.Second)
	if negative {
		seconds = -seconds
	}
	return seconds, nil
}
