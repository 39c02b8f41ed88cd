package lc

// VehiclePosition is the 1:1 mapping of a SIRI-VM VehicleActivity
// element.
type VehiclePosition struct {
	ID        string
	VehicleID string

	// RecordedAt keeps the source timestamp verbatim; SIRI feeds are
	// inconsistent about fractional seconds and offsets.
	RecordedAt string

	Latitude  *float64
	Longitude *float64
	Bearing   *float64
	Speed     *float64

	// DelaySeconds is parsed from the ISO 8601 Delay element when
	// present, signed, positive when late.
	DelaySeconds *int

	ProgressRate string
	Occupancy    string

	Line     string
	Journey  string
	Operator string

	OriginName      string
	DestinationName string
	Destination     string

	CurrentStop string
	NextStop    string

	Monitored    bool
	InCongestion bool
}
