package model

import (
	"strings"
	"testing"

	"github.com/pagegrid/storelens/internal/domain/model/field"
)

func TestNew_AddsIdentityAndRevisionFields(t *testing.T) {
	m, err := New("articles", []field.Field{
		field.String("title").Required(),
		field.String("status").WithDefault("draft"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fields := m.Fields()
	if len(fields) != 4 {
		t.Fatalf("expected 4 fields, got %d", len(fields))
	}
	if fields[0].Name() != IdentityField {
		t.Errorf("expected first field %q, got %q", IdentityField, fields[0].Name())
	}
	if fields[0].FieldType() != field.TypeObjectID {
		t.Errorf("expected identity type %q, got %q", field.TypeObjectID, fields[0].FieldType())
	}
	if !fields[0].IsRequired() {
		t.Error("expected identity field to be required")
	}
	if last := fields[len(fields)-1]; last.Name() != RevisionField {
		t.Errorf("expected last field %q, got %q", RevisionField, last.Name())
	}
}

func TestNew_KeepsDeclarationOrder(t *testing.T) {
	m, err := New("authors", []field.Field{
		field.String("name").Required(),
		field.String("email"),
		field.DateTime("joined_at"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{IdentityField, "name", "email", "joined_at", RevisionField}
	fields := m.Fields()
	for i, name := range want {
		if fields[i].Name() != name {
			t.Errorf("field %d: expected %q, got %q", i, name, fields[i].Name())
		}
	}
}

func TestNew_ValidatesName(t *testing.T) {
	tests := []struct {
		testName string
		name     string
		wantErr  string
	}{
		{"empty", "", "cannot be empty"},
		{"too long", strings.Repeat("a", 65), "cannot exceed 64"},
		{"invalid characters", "my collection!", "can only contain"},
	}

	for _, tt := range tests {
		t.Run(tt.testName, func(t *testing.T) {
			_, err := New(tt.name, []field.Field{field.String("title")})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestNew_RejectsDuplicateFields(t *testing.T) {
	_, err := New("articles", []field.Field{
		field.String("title"),
		field.Int("title"),
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "duplicate field") {
		t.Errorf("expected duplicate field error, got %q", err.Error())
	}
}

func TestNew_RejectsReservedFieldNames(t *testing.T) {
	for _, reserved := range []string{IdentityField, RevisionField} {
		_, err := New("articles", []field.Field{field.String(reserved)})
		if err == nil {
			t.Fatalf("expected error declaring %q, got nil", reserved)
		}
		if !strings.Contains(err.Error(), "duplicate field") {
			t.Errorf("expected duplicate field error for %q, got %q", reserved, err.Error())
		}
	}
}

func TestNew_RejectsReferenceWithoutTarget(t *testing.T) {
	_, err := New("articles", []field.Field{field.Reference("author_id", "")})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "must name a target collection") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_ValidatesIndexes(t *testing.T) {
	fields := []field.Field{field.String("slug"), field.DateTime("published_at")}

	if _, err := New("articles", fields, NewIndex("slug"), NewIndex("published_at", IdentityField)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := New("articles", fields, NewIndex()); err == nil {
		t.Error("expected error for empty index, got nil")
	}
	if _, err := New("articles", fields, NewIndex("missing")); err == nil {
		t.Error("expected error for undeclared index field, got nil")
	}
}

func TestFieldByName(t *testing.T) {
	m, err := New("categories", []field.Field{
		field.String("name").Required(),
		field.Reference("parent_id", "categories"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, ok := m.FieldByName("parent_id")
	if !ok {
		t.Fatal("expected to find field parent_id")
	}
	if f.FieldType() != field.TypeReference {
		t.Errorf("expected type %q, got %q", field.TypeReference, f.FieldType())
	}
	if f.Ref() != "categories" {
		t.Errorf("expected ref %q, got %q", "categories", f.Ref())
	}

	if _, ok := m.FieldByName("nope"); ok {
		t.Error("expected lookup miss for unknown field")
	}
}

func TestField_Withers(t *testing.T) {
	base := field.String("status")
	withDefault := base.WithDefault("draft")

	if base.Default() != nil {
		t.Error("expected base field to keep nil default")
	}
	if withDefault.Default() != "draft" {
		t.Errorf("expected default %q, got %v", "draft", withDefault.Default())
	}
	if base.IsRequired() {
		t.Error("expected base field to stay optional")
	}
	if !base.Required().IsRequired() {
		t.Error("expected Required to mark the copy")
	}
}
