package lc

// AffectedStop references a stop point or stop place hit by a
// situation.
type AffectedStop struct {
	Stop      string
	Name      string
	StopType  string
	Latitude  *float64
	Longitude *float64
}

// AffectedLine references a line hit by a situation.
type AffectedLine struct {
	Line      string
	Name      string
	Direction string
}

// Consequence is one impact record of a situation.
type Consequence struct {
	Condition              string
	Severity               string
	BlockingJourneyPlanner bool
	BlockingRealtime       bool
	ArrivalBoarding        string
	DepartureBoarding      string
}

// Alert is the 1:1 mapping of a SIRI-SX PtSituationElement or
// RoadSituationElement.
type Alert struct {
	ID              string
	SituationNumber string
	CreationTime    string

	ParticipantRef string
	Version        string
	Progress       string
	Severity       string

	Summary     string
	Description string
	Reason      string
	Audience    string
	ReportType  string

	ValidityStart string
	ValidityEnd   string

	AffectedStops []AffectedStop
	AffectedLines []AffectedLine
	Consequences  []Consequence
}
