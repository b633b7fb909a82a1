package catalog

import (
	"reflect"
	"testing"

	"github.com/pagegrid/storelens/internal/registry"
)

func TestNew_BuildsValidRegistry(t *testing.T) {
	reg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var names []string
	for _, e := range reg.List() {
		names = append(names, e.Name())
	}
	want := []string{"articles", "authors", "categories", "banners", "tags", "activity_log"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("expected collections %v, got %v", want, names)
	}
}

func TestCollections_ReferencesResolve(t *testing.T) {
	reg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry, err := reg.Get("articles")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, ok := entry.Model()
	if !ok {
		t.Fatal("expected articles to carry a model")
	}
	author, ok := m.FieldByName("author_id")
	if !ok {
		t.Fatal("expected author_id field")
	}
	if author.Ref() != "authors" {
		t.Errorf("expected author_id to reference authors, got %q", author.Ref())
	}
}

func TestCollections_TagsUseDefaultSearchTargets(t *testing.T) {
	reg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fields, err := reg.SearchableFields("tags")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(fields, registry.DefaultSearchableFields) {
		t.Errorf("expected default search targets %v, got %v", registry.DefaultSearchableFields, fields)
	}
}

func TestCollections_ActivityLogHasNoModel(t *testing.T) {
	reg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry, err := reg.Get("activity_log")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := entry.Model(); ok {
		t.Error("expected activity_log to have no model")
	}
}
