package bullhorn

import (
	"strings"
	"testing"
)

func TestClampCount(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{-100, 1},
		{0, 1},
		{1, 1},
		{20, 20},
		{500, 500},
		{501, 500},
		{99999, 500},
	}
	for _, tc := range cases {
		if got := ClampCount(tc.in); got != tc.want {
			t.Fatalf("ClampCount(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestDefaultFieldsKnownEntities(t *testing.T) {
	for _, entity := range []string{"JobOrder", "Candidate", "Placement", "ClientCorporation", "ClientContact"} {
		fields := DefaultFields(entity, "id")
		if fields == "id" {
			t.Fatalf("expected documented default fields for %s", entity)
		}
		if !strings.HasPrefix(fields, "id,") {
			t.Fatalf("default fields for %s should start with id, got %q", entity, fields)
		}
		if !KnownEntity(entity) {
			t.Fatalf("expected %s to be a known entity", entity)
		}
	}
}

func TestDefaultFieldsUnknownEntityFallsBack(t *testing.T) {
	if got := DefaultFields("Appointment", "id"); got != "id" {
		t.Fatalf("expected id-only fallback for unknown entity, got %q", got)
	}
	if got := DefaultFields("Appointment", "*"); got != "*" {
		t.Fatalf("expected wildcard fallback for unknown entity, got %q", got)
	}
	if KnownEntity("Appointment") {
		t.Fatalf("Appointment should not be a known entity")
	}
}
