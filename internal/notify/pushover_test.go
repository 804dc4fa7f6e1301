package notify

import (
	"strings"
	"testing"
)

func TestTripPlanTitle(t *testing.T) {
	got := TripPlanTitle("Howrah", "Airport")
	if got != "Bus plan: Howrah to Airport" {
		t.Errorf("got %q", got)
	}
}

func TestNoRouteMessage(t *testing.T) {
	got := NoRouteMessage("Howrah", "Airport")
	if !strings.HasPrefix(got, "No direct or single-transfer bus found from Howrah to Airport.") {
		t.Errorf("got %q", got)
	}
}
