// Package validate runs structural pre-flight checks over parsed
// NeTEx/SIRI trees: format detection plus presence warnings for the
// elements the extractors need. Deep schema validation against the
// NeTEx/SIRI XSDs is out of scope.
package validate

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/theoremus-urban-solutions/netex-to-lc/siri"
	"github.com/theoremus-urban-solutions/netex-to-lc/xmltree"
)

// Format is the detected input family.
type Format string

const (
	FormatNeTEx   Format = "netex"
	FormatSIRI    Format = "siri"
	FormatUnknown Format = ""
)

// DetectFormat classifies a parsed document as NeTEx or SIRI by its
// root element and declared namespaces.
func DetectFormat(doc *xmltree.Node) Format {
	switch doc.Local {
	case "PublicationDelivery", "CompositeFrame", "TimetableFrame":
		return FormatNeTEx
	case "Siri", "ServiceDelivery":
		return FormatSIRI
	}
	space := strings.ToLower(doc.Space)
	if strings.Contains(space, "netex") {
		return FormatNeTEx
	}
	if strings.Contains(space, "siri") {
		return FormatSIRI
	}
	return FormatUnknown
}

// CheckNeTEx returns presence warnings for a NeTEx document.
func CheckNeTEx(doc *xmltree.Node) []string {
	var warnings []string
	if len(doc.Descendants("ServiceJourney")) == 0 {
		warnings = append(warnings, "no ServiceJourney elements found; file may not contain timetable data")
	}
	if doc.First("TimetabledPassingTime", "PassingTime", "Call") == nil {
		warnings = append(warnings, "no passing time or call elements found; connections cannot be generated")
	}
	return warnings
}

// CheckSIRI returns presence warnings for a SIRI document. When the
// caller forced a profile that contradicts detection, that mismatch is
// the first warning.
func CheckSIRI(doc *xmltree.Node, forced siri.Profile) []string {
	var warnings []string

	detected, err := siri.DetectProfile(doc)
	if err == nil && forced != siri.ProfileUnknown && forced != detected {
		warnings = append(warnings, "forced profile "+string(forced)+" does not match detected profile "+string(detected))
	}

	profile := detected
	if forced != siri.ProfileUnknown {
		profile = forced
	}
	switch profile {
	case siri.ProfileET:
		if len(doc.Descendants("EstimatedVehicleJourney")) == 0 {
			warnings = append(warnings, "no EstimatedVehicleJourney elements found")
		}
	case siri.ProfileVM:
		if len(doc.Descendants("VehicleActivity")) == 0 {
			warnings = append(warnings, "no VehicleActivity elements found")
		}
	case siri.ProfileSX:
		if len(doc.Descendants("PtSituationElement")) == 0 && len(doc.Descendants("RoadSituationElement")) == 0 {
			warnings = append(warnings, "no situation elements found")
		}
	}
	return warnings
}

// LogWarnings writes each warning through the shared logger.
func LogWarnings(warnings []string) {
	for _, warning := range warnings {
		log.Warn().Msg(warning)
	}
}
