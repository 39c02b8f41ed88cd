package siri

import (
	"github.com/theoremus-urban-solutions/netex-to-lc/diag"
	"github.com/theoremus-urban-solutions/netex-to-lc/lc"
	"github.com/theoremus-urban-solutions/netex-to-lc/xmltree"
)

// ExtractAlerts maps each PtSituationElement or RoadSituationElement
// of a SIRI-SX document onto one Alert. Situations without a number or
// creation time are skipped with a diagnostic.
func ExtractAlerts(doc *xmltree.Node, opts Options) ([]lc.Alert, error) {
	opts = opts.withDefaults()

	situations := doc.Descendants("PtSituationElement")
	situations = append(situations, doc.Descendants("RoadSituationElement")...)

	alerts := make([]lc.Alert, 0, len(situations))
	for _, situation := range situations {
		alert, err := parseSituation(situation, opts)
		if err != nil {
			if opts.Strict {
				return nil, err
			}
			opts.Sink.Add(diag.CodeSchemaShape, situation.FindText("SituationNumber"), err.Error())
			continue
		}
		alerts = append(alerts, alert)
	}
	return alerts, nil
}

func parseSituation(situation *xmltree.Node, opts Options) (lc.Alert, error) {
	number := situation.FindText("SituationNumber")
	if number == "" {
		return lc.Alert{}, &lc.SchemaShapeError{Unit: "PtSituationElement", Missing: "SituationNumber"}
	}
	creationTime := situation.FindText("CreationTime")
	if creationTime == "" {
		return lc.Alert{}, &lc.SchemaShapeError{Unit: number, Missing: "CreationTime"}
	}

	id, err := opts.Strategy.Alert(number)
	if err := resolveURIError(err, opts, number); err != nil {
		return lc.Alert{}, err
	}

	alert := lc.Alert{
		ID:              id,
		SituationNumber: number,
		CreationTime:    creationTime,

		ParticipantRef: situation.FindText("ParticipantRef"),
		Version:        situation.FindText("Version"),
		Progress:       situation.FindText("Progress"),
		Severity:       situation.FindText("Severity"),

		Summary:     situation.FindText("Summary"),
		Description: situation.FindText("Description"),
		Reason: situation.FindText(
			"MiscellaneousReason", "PersonnelReason", "EquipmentReason", "EnvironmentReason"),
		Audience:   situation.FindText("Audience"),
		ReportType: situation.FindText("ReportType"),
	}

	if period := situation.First("ValidityPeriod"); period != nil {
		alert.ValidityStart = period.FindText("StartTime")
		alert.ValidityEnd = period.FindText("EndTime")
	}

	stops, err := parseAffectedStops(situation, opts, number)
	if err != nil {
		return lc.Alert{}, err
	}
	alert.AffectedStops = stops

	lines, err := parseAffectedLines(situation, opts, number)
	if err != nil {
		return lc.Alert{}, err
	}
	alert.AffectedLines = lines

	alert.Consequences = parseConsequences(situation)

	return alert, nil
}

func parseAffectedStops(situation *xmltree.Node, opts Options, unit string) ([]lc.AffectedStop, error) {
	var stops []lc.AffectedStop

	for _, elem := range situation.Descendants("AffectedStopPoint") {
		ref := elem.FindRef("StopPointRef")
		if ref == "" {
			continue
		}
		stopURI, err := opts.Strategy.Stop(ref)
		if err := resolveURIError(err, opts, unit); err != nil {
			return nil, err
		}
		stop := lc.AffectedStop{
			Stop:     stopURI,
			Name:     elem.FindText("StopPointName"),
			StopType: elem.FindText("StopPointType"),
		}
		if location := elem.First("Location"); location != nil {
			stop.Latitude = parseFloat(location.FindText("Latitude"))
			stop.Longitude = parseFloat(location.FindText("Longitude"))
		}
		stops = append(stops, stop)
	}

	for _, elem := range situation.Descendants("AffectedStopPlace") {
		ref := elem.FindRef("StopPlaceRef")
		if ref == "" {
			continue
		}
		stopURI, err := opts.Strategy.Stop(ref)
		if err := resolveURIError(err, opts, unit); err != nil {
			return nil, err
		}
		stops = append(stops, lc.AffectedStop{
			Stop: stopURI,
			Name: elem.FindText("StopPlaceName"),
		})
	}

	return stops, nil
}

func parseAffectedLines(situation *xmltree.Node, opts Options, unit string) ([]lc.AffectedLine, error) {
	var lines []lc.AffectedLine
	seen := map[string]bool{}

	for _, elem := range situation.Descendants("AffectedLine") {
		ref := elem.FindRef("LineRef")
		if ref == "" || seen[ref] {
			continue
		}
		seen[ref] = true
		lineURI, err := opts.Strategy.Line(ref)
		if err := resolveURIError(err, opts, unit); err != nil {
			return nil, err
		}
		lines = append(lines, lc.AffectedLine{
			Line:      lineURI,
			Name:      elem.FindText("PublishedLineName", "LineName"),
			Direction: elem.FindRef("DirectionRef"),
		})
	}

	// Bare LineRef children of Affects, outside any AffectedLine.
	for _, affects := range situation.Descendants("Affects") {
		for _, child := range affects.Descendants("LineRef") {
			ref := child.Attr("ref")
			if ref == "" {
				ref = child.Text
			}
			if ref == "" || seen[ref] {
				continue
			}
			seen[ref] = true
			lineURI, err := opts.Strategy.Line(ref)
			if err := resolveURIError(err, opts, unit); err != nil {
				return nil, err
			}
			lines = append(lines, lc.AffectedLine{Line: lineURI})
		}
	}

	return lines, nil
}

func parseConsequences(situation *xmltree.Node) []lc.Consequence {
	var consequences []lc.Consequence

	for _, elem := range situation.Descendants("Consequence") {
		consequence := lc.Consequence{
			Condition: elem.FindText("Condition"),
			Severity:  elem.FindText("Severity"),
		}
		if blocking := elem.First("Blocking"); blocking != nil {
			consequence.BlockingJourneyPlanner = parseBool(blocking.FindText("JourneyPlanner"))
			consequence.BlockingRealtime = parseBool(blocking.FindText("RealTime"))
		}
		if boarding := elem.First("Boarding"); boarding != nil {
			consequence.ArrivalBoarding = boarding.FindText("ArrivalBoardingActivity")
			consequence.DepartureBoarding = boarding.FindText("DepartureBoardingActivity")
		}
		consequences = append(consequences, consequence)
	}

	return consequences
}
