package session

import (
	"testing"

	"github.com/waikato-datamining/kasperl/internal/record"
)

func TestNewSeedsWellKnownPlaceholders(t *testing.T) {
	s := New()

	if s.ID() == "" {
		t.Error("expected non-empty run ID")
	}
	if !s.HasPlaceholder(PlaceholderTmp) {
		t.Error("expected TMP placeholder to be seeded")
	}
	if !s.HasPlaceholder(PlaceholderCWD) {
		t.Error("expected CWD placeholder to be seeded")
	}
}

func TestGetPlaceholderUnset(t *testing.T) {
	s := New()

	_, err := s.GetPlaceholder("no-such-placeholder")
	if err == nil {
		t.Fatal("expected error for unset placeholder")
	}
}

func TestSetAndGetPlaceholder(t *testing.T) {
	s := New()
	s.SetPlaceholder("OUT", "/data/out")

	got, err := s.GetPlaceholder("OUT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/data/out" {
		t.Errorf("expected /data/out, got %q", got)
	}
}

func TestResolve(t *testing.T) {
	s := New()
	s.SetPlaceholder("IN", "/data/in")
	s.SetPlaceholder("EXT", "txt")

	got, err := s.Resolve("{IN}/file.{EXT}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/data/in/file.txt" {
		t.Errorf("unexpected resolution: %q", got)
	}
}

func TestResolveUnsetPlaceholderFails(t *testing.T) {
	s := New()

	_, err := s.Resolve("{MISSING}/file.txt")
	if err == nil {
		t.Fatal("expected error for unresolved placeholder")
	}
}

func TestPlaceholdersReturnsCopy(t *testing.T) {
	s := New()
	s.SetPlaceholder("A", "1")

	snapshot := s.Placeholders()
	snapshot["A"] = "mutated"

	got, err := s.GetPlaceholder("A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "1" {
		t.Error("mutating the snapshot must not affect the session")
	}
}

func TestCloneRecordIndependence(t *testing.T) {
	s := New()

	original := record.NewFileRecord("/data/a.txt")
	record.SetMetaValue(original, "subject", "s1")

	cloned, err := s.CloneRecord(original)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clone, ok := cloned.(*record.FileRecord)
	if !ok {
		t.Fatalf("expected *record.FileRecord clone, got %T", cloned)
	}

	clone.SetName("renamed.txt")
	record.SetMetaValue(clone, "subject", "s2")

	if original.Name() != "a.txt" {
		t.Errorf("clone mutation leaked into original name: %q", original.Name())
	}
	if v, _ := record.MetaValue(original, "subject"); v != "s1" {
		t.Errorf("clone mutation leaked into original metadata: %v", v)
	}
}

func TestStorageSharedAcrossCalls(t *testing.T) {
	s := New()
	s.Storage()["items"] = []string{"a"}

	got, ok := s.Storage()["items"]
	if !ok {
		t.Fatal("expected stored value to be visible")
	}
	if items, ok := got.([]string); !ok || len(items) != 1 {
		t.Errorf("unexpected stored value: %v", got)
	}
}

func TestAnnotationsOnlyFlag(t *testing.T) {
	s := New()

	if s.AnnotationsOnly() {
		t.Error("annotations-only must default to false")
	}
	s.SetAnnotationsOnly(true)
	if !s.AnnotationsOnly() {
		t.Error("expected annotations-only to be enabled")
	}
}
