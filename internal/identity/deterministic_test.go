package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestOptionUUIDIsStable(t *testing.T) {
	first := OptionUUID("country", "Rwanda")
	second := OptionUUID(" COUNTRY ", " rwanda ")
	if first == uuid.Nil {
		t.Fatal("expected non-nil id")
	}
	if first != second {
		t.Fatalf("expected normalized keys to match, got %s and %s", first, second)
	}
}

func TestOptionUUIDSeparatesKinds(t *testing.T) {
	if OptionUUID("country", "Other") == OptionUUID("tender_type", "Other") {
		t.Fatal("expected different kinds to yield different ids")
	}
}

func TestOptionUUIDRejectsBlank(t *testing.T) {
	if OptionUUID("country", "  ") != uuid.Nil {
		t.Fatal("expected nil id for blank name")
	}
	if UUID("") != uuid.Nil {
		t.Fatal("expected nil id for blank key")
	}
}
