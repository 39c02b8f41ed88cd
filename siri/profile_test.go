package siri

import (
	"errors"
	"testing"

	"github.com/theoremus-urban-solutions/netex-to-lc/lc"
)

// TestDetectProfile tests delivery-element based detection.
func TestDetectProfile(t *testing.T) {
	cases := []struct {
		name string
		xml  string
		want Profile
	}{
		{
			"estimated timetable",
			`<Siri><ServiceDelivery><EstimatedTimetableDelivery/></ServiceDelivery></Siri>`,
			ProfileET,
		},
		{
			"vehicle monitoring",
			`<Siri><ServiceDelivery><VehicleMonitoringDelivery/></ServiceDelivery></Siri>`,
			ProfileVM,
		},
		{
			"situation exchange",
			`<Siri><ServiceDelivery><SituationExchangeDelivery/></ServiceDelivery></Siri>`,
			ProfileSX,
		},
		{
			"bare vehicle activity",
			`<Siri><VehicleActivity/></Siri>`,
			ProfileVM,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DetectProfile(parseDoc(t, tc.xml))
			if err != nil {
				t.Fatalf("DetectProfile failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("profile = %q, want %q", got, tc.want)
			}
		})
	}
}

// TestDetectProfile_Unsupported tests the failure for unknown
// delivery kinds.
func TestDetectProfile_Unsupported(t *testing.T) {
	doc := parseDoc(t, `<Siri><ServiceDelivery><StopMonitoringDelivery/></ServiceDelivery></Siri>`)
	_, err := DetectProfile(doc)
	var unsupported *lc.UnsupportedProfileError
	if !errors.As(err, &unsupported) {
		t.Fatalf("error = %v, want UnsupportedProfileError", err)
	}
}

// TestParseProfile tests the explicit type flag values.
func TestParseProfile(t *testing.T) {
	for name, want := range map[string]Profile{"et": ProfileET, "vm": ProfileVM, "sx": ProfileSX} {
		got, err := ParseProfile(name)
		if err != nil {
			t.Errorf("ParseProfile(%q) failed: %v", name, err)
		}
		if got != want {
			t.Errorf("ParseProfile(%q) = %q, want %q", name, got, want)
		}
	}
	if _, err := ParseProfile("sm"); err == nil {
		t.Error("ParseProfile should reject unknown profiles")
	}
}
