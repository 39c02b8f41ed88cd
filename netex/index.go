// Package netex generates Linked Connections from NeTEx
// PublicationDelivery documents. Extraction is two-pass: an id→entity
// index over the whole document first, then reference resolution by
// lookup while journeys are walked.
package netex

import (
	"strconv"

	"github.com/theoremus-urban-solutions/netex-to-lc/xmltree"
)

type stopEntry struct {
	Name      string
	Latitude  *float64
	Longitude *float64
}

type lineEntry struct {
	Name          string
	PublicCode    string
	TransportMode string
	OperatorRef   string
}

type routeEntry struct {
	LineRef string
}

type journeyPatternEntry struct {
	RouteRef              string
	DestinationDisplayRef string
}

// docIndex is the pass-1 lookup table for in-document references.
type docIndex struct {
	stops               map[string]stopEntry
	lines               map[string]lineEntry
	routes              map[string]routeEntry
	journeyPatterns     map[string]journeyPatternEntry
	destinationDisplays map[string]string
}

func buildIndex(doc *xmltree.Node) *docIndex {
	idx := &docIndex{
		stops:               make(map[string]stopEntry),
		lines:               make(map[string]lineEntry),
		routes:              make(map[string]routeEntry),
		journeyPatterns:     make(map[string]journeyPatternEntry),
		destinationDisplays: make(map[string]string),
	}

	for _, name := range []string{"StopPlace", "Quay", "ScheduledStopPoint"} {
		for _, node := range doc.Descendants(name) {
			id := node.Attr("id")
			if id == "" {
				continue
			}
			entry := stopEntry{Name: node.FindText("Name")}
			entry.Latitude = parseCoord(node.FindText("Latitude"))
			entry.Longitude = parseCoord(node.FindText("Longitude"))
			if existing, ok := idx.stops[id]; ok && entry.Name == "" {
				entry.Name = existing.Name
			}
			idx.stops[id] = entry
		}
	}

	for _, node := range doc.Descendants("Line") {
		id := node.Attr("id")
		if id == "" {
			continue
		}
		idx.lines[id] = lineEntry{
			Name:          node.FindText("Name"),
			PublicCode:    node.FindText("PublicCode"),
			TransportMode: node.FindText("TransportMode"),
			OperatorRef:   node.FindRef("OperatorRef"),
		}
	}

	for _, node := range doc.Descendants("Route") {
		id := node.Attr("id")
		if id == "" {
			continue
		}
		idx.routes[id] = routeEntry{LineRef: node.FindRef("LineRef")}
	}

	for _, name := range []string{"ServiceJourneyPattern", "JourneyPattern"} {
		for _, node := range doc.Descendants(name) {
			id := node.Attr("id")
			if id == "" {
				continue
			}
			idx.journeyPatterns[id] = journeyPatternEntry{
				RouteRef:              node.FindRef("RouteRef"),
				DestinationDisplayRef: node.FindRef("DestinationDisplayRef"),
			}
		}
	}

	for _, node := range doc.Descendants("DestinationDisplay") {
		id := node.Attr("id")
		if id == "" {
			continue
		}
		if text := node.FindText("FrontText", "Name"); text != "" {
			idx.destinationDisplays[id] = text
		}
	}

	return idx
}

// lineForJourney resolves the journey's line: a direct LineRef wins,
// else the journey pattern's route leads to one.
func (idx *docIndex) lineForJourney(journey *xmltree.Node) (string, lineEntry, bool) {
	if ref := journey.FindRef("LineRef"); ref != "" {
		entry, ok := idx.lines[ref]
		return ref, entry, ok || ref != ""
	}
	jpRef := journey.FindRef("JourneyPatternRef", "ServiceJourneyPatternRef")
	if jpRef == "" {
		return "", lineEntry{}, false
	}
	jp, ok := idx.journeyPatterns[jpRef]
	if !ok || jp.RouteRef == "" {
		return "", lineEntry{}, false
	}
	route, ok := idx.routes[jp.RouteRef]
	if !ok || route.LineRef == "" {
		return "", lineEntry{}, false
	}
	entry, ok := idx.lines[route.LineRef]
	return route.LineRef, entry, true
}

// headsignForJourney resolves the destination display text through the
// journey pattern.
func (idx *docIndex) headsignForJourney(journey *xmltree.Node) string {
	if text := journey.FindText("DestinationDisplay"); text != "" {
		return text
	}
	jpRef := journey.FindRef("JourneyPatternRef", "ServiceJourneyPatternRef")
	if jpRef == "" {
		return ""
	}
	jp, ok := idx.journeyPatterns[jpRef]
	if !ok || jp.DestinationDisplayRef == "" {
		return ""
	}
	return idx.destinationDisplays[jp.DestinationDisplayRef]
}

func parseCoord(text string) *float64 {
	if text == "" {
		return nil
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	return &value
}
