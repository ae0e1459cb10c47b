// Package uuid includes tests for the UUID generator wrapper.
package uuid

import (
	"testing"

	goUUID "github.com/google/uuid"
)

// TestGeneratorNewRawID ensures generated IDs are unique and valid.
func TestGeneratorNewRawID(t *testing.T) {
	t.Parallel()

	gen := New()
	id1, err := gen.NewRawID()
	if err != nil {
		t.Fatalf("NewRawID() error = %v", err)
	}
	id2, err := gen.NewRawID()
	if err != nil {
		t.Fatalf("NewRawID() error = %v", err)
	}
	if id1 == id2 {
		t.Fatalf("expected unique IDs, got %s and %s", id1, id2)
	}
	if id1.Version() != goUUID.Version(7) {
		t.Fatalf("expected UUID v7, got version %d", id1.Version())
	}
}
