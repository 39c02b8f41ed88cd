package validate

import (
	"strings"
	"testing"

	"github.com/theoremus-urban-solutions/netex-to-lc/siri"
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

// TestDetectFormat tests root-element and namespace classification.
func TestDetectFormat(t *testing.T) {
	cases := []struct {
		name string
		xml  string
		want Format
	}{
		{"netex root", `<PublicationDelivery/>`, FormatNeTEx},
		{"netex namespace", `<Document xmlns="http://www.netex.org.uk/netex"/>`, FormatNeTEx},
		{"siri root", `<Siri/>`, FormatSIRI},
		{"siri namespace", `<Document xmlns="http://www.siri.org.uk/siri"/>`, FormatSIRI},
		{"unknown", `<Unrelated/>`, FormatUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectFormat(parseDoc(t, tc.xml)); got != tc.want {
				t.Errorf("DetectFormat = %q, want %q", got, tc.want)
			}
		})
	}
}

// TestCheckNeTEx tests presence warnings.
func TestCheckNeTEx(t *testing.T) {
	empty := parseDoc(t, `<PublicationDelivery/>`)
	if warnings := CheckNeTEx(empty); len(warnings) != 2 {
		t.Errorf("empty document warnings = %v", warnings)
	}

	full := parseDoc(t, `<PublicationDelivery>
  <ServiceJourney id="SJ1">
    <TimetabledPassingTime/>
  </ServiceJourney>
</PublicationDelivery>`)
	if warnings := CheckNeTEx(full); len(warnings) != 0 {
		t.Errorf("complete document warnings = %v", warnings)
	}
}

// TestCheckSIRI tests the profile mismatch warning.
func TestCheckSIRI(t *testing.T) {
	doc := parseDoc(t, `<Siri><ServiceDelivery><VehicleMonitoringDelivery>
    <VehicleActivity/>
  </VehicleMonitoringDelivery></ServiceDelivery></Siri>`)

	if warnings := CheckSIRI(doc, siri.ProfileUnknown); len(warnings) != 0 {
		t.Errorf("matching document warnings = %v", warnings)
	}

	warnings := CheckSIRI(doc, siri.ProfileET)
	if len(warnings) == 0 || !strings.Contains(warnings[0], "does not match") {
		t.Errorf("mismatch warnings = %v", warnings)
	}
}
