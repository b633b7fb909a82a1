// Package model declares content models: ordered field declarations and
// index definitions for registered collections.
package model

import (
	"fmt"
	"regexp"

	"github.com/pagegrid/storelens/internal/domain/model/field"
)

// Store-managed fields every model carries implicitly.
const (
	// IdentityField is the store identifier, present on every document.
	IdentityField = "_id"
	// RevisionField is the store's internal revision counter. It is kept
	// out of introspection output.
	RevisionField = "__v"
)

const (
	maxNameLength  = 64
	maxFieldsCount = 64
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Index is an ordered index key declaration.
type Index struct {
	fields []string
}

// NewIndex declares an index over the given fields, in key order.
func NewIndex(fields ...string) Index {
	return Index{fields: fields}
}

// Fields returns the index key fields in order.
func (i Index) Fields() []string {
	return i.fields
}

// Model is an immutable content model declaration.
type Model struct {
	name    string
	fields  []field.Field
	indexes []Index
}

// New validates and creates a Model. The identity and revision fields are
// added implicitly: _id first, __v last.
func New(name string, fields []field.Field, indexes ...Index) (Model, error) {
	if err := validateName(name); err != nil {
		return Model{}, err
	}

	all := make([]field.Field, 0, len(fields)+2)
	all = append(all, field.ObjectID(IdentityField).Required())
	all = append(all, fields...)
	all = append(all, field.Int(RevisionField))

	if err := validateFields(all); err != nil {
		return Model{}, fmt.Errorf("model %q: %w", name, err)
	}
	if err := validateIndexes(indexes, all); err != nil {
		return Model{}, fmt.Errorf("model %q: %w", name, err)
	}

	return Model{name: name, fields: all, indexes: indexes}, nil
}

// Name returns the model name.
func (m Model) Name() string {
	return m.name
}

// Fields returns all fields in declaration order, including the implicit
// identity and revision fields.
func (m Model) Fields() []field.Field {
	return m.fields
}

// Indexes returns the declared indexes in declaration order.
func (m Model) Indexes() []Index {
	return m.indexes
}

// FieldByName looks up a field declaration by name.
func (m Model) FieldByName(name string) (field.Field, bool) {
	for _, f := range m.fields {
		if f.Name() == name {
			return f, true
		}
	}
	return field.Field{}, false
}

// IsZero reports whether the model is the zero value.
func (m Model) IsZero() bool {
	return m.name == ""
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("model name cannot exceed %d characters", maxNameLength)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("model name can only contain letters, numbers, underscores, and hyphens")
	}
	return nil
}

func validateFields(fields []field.Field) error {
	if len(fields) > maxFieldsCount {
		return fmt.Errorf("cannot declare more than %d fields", maxFieldsCount)
	}
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f.Name() == "" {
			return fmt.Errorf("field name cannot be empty")
		}
		if len(f.Name()) > maxNameLength {
			return fmt.Errorf("field name %q cannot exceed %d characters", f.Name(), maxNameLength)
		}
		if _, dup := seen[f.Name()]; dup {
			return fmt.Errorf("duplicate field %q", f.Name())
		}
		seen[f.Name()] = struct{}{}
		if !f.FieldType().IsValid() {
			return fmt.Errorf("field %q has unknown type %q", f.Name(), f.FieldType())
		}
		if f.FieldType() == field.TypeReference && f.Ref() == "" {
			return fmt.Errorf("reference field %q must name a target collection", f.Name())
		}
	}
	return nil
}

func validateIndexes(indexes []Index, fields []field.Field) error {
	declared := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		declared[f.Name()] = struct{}{}
	}
	for _, idx := range indexes {
		if len(idx.Fields()) == 0 {
			return fmt.Errorf("index must cover at least one field")
		}
		for _, name := range idx.Fields() {
			if _, ok := declared[name]; !ok {
				return fmt.Errorf("index covers undeclared field %q", name)
			}
		}
	}
	return nil
}
