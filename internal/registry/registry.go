// Package registry holds the collection allowlist. Only collections
// registered here are visible to introspection or reachable by queries.
package registry

import (
	"fmt"
	"regexp"

	"github.com/pagegrid/storelens/internal/domain"
	"github.com/pagegrid/storelens/internal/domain/model"
	"github.com/pagegrid/storelens/internal/domain/model/field"
)

// DefaultSearchableFields is used for keyword search when an entry does not
// declare its own searchable fields.
var DefaultSearchableFields = []string{"name", "title"}

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Entry is one allowlisted collection: its store name, display metadata,
// keyword search targets, and optionally its declared content model.
type Entry struct {
	name        string
	displayName string
	description string
	searchable  []string
	model       model.Model
}

// NewEntry declares an allowlisted collection.
func NewEntry(name, displayName, description string) Entry {
	return Entry{name: name, displayName: displayName, description: description}
}

// WithModel attaches the declared content model.
func (e Entry) WithModel(m model.Model) Entry {
	e.model = m
	return e
}

// WithSearchableFields declares which fields keyword search targets.
func (e Entry) WithSearchableFields(fields ...string) Entry {
	e.searchable = fields
	return e
}

// Name returns the store collection name.
func (e Entry) Name() string { return e.name }

// DisplayName returns the human-facing collection name.
func (e Entry) DisplayName() string { return e.displayName }

// Description returns the collection description.
func (e Entry) Description() string { return e.description }

// Model returns the declared content model, ok=false when none was attached.
func (e Entry) Model() (model.Model, bool) {
	return e.model, !e.model.IsZero()
}

// SearchableFields returns the entry's keyword search targets, falling back
// to DefaultSearchableFields when none were declared.
func (e Entry) SearchableFields() []string {
	if len(e.searchable) == 0 {
		return DefaultSearchableFields
	}
	return e.searchable
}

// Registry is the immutable set of allowlisted collections.
type Registry struct {
	entries []Entry
	byName  map[string]Entry
}

// New validates the entries and builds the registry. Entries keep their
// registration order.
func New(entries []Entry) (*Registry, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("registry needs at least one collection")
	}

	byName := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if err := validateEntry(e); err != nil {
			return nil, err
		}
		if _, dup := byName[e.name]; dup {
			return nil, fmt.Errorf("collection %q registered twice", e.name)
		}
		byName[e.name] = e
	}

	for _, e := range entries {
		if err := validateReferences(e, byName); err != nil {
			return nil, err
		}
	}

	return &Registry{entries: append([]Entry(nil), entries...), byName: byName}, nil
}

// IsAllowed reports whether the collection is on the allowlist.
func (r *Registry) IsAllowed(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Get returns the entry for an allowlisted collection.
func (r *Registry) Get(name string) (Entry, error) {
	e, ok := r.byName[name]
	if !ok {
		return Entry{}, domain.NewCollectionNotFound(name)
	}
	return e, nil
}

// List returns all entries in registration order.
func (r *Registry) List() []Entry {
	return r.entries
}

// SearchableFields returns the keyword search targets for a collection.
func (r *Registry) SearchableFields(name string) ([]string, error) {
	e, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return e.SearchableFields(), nil
}

func validateEntry(e Entry) error {
	if e.name == "" {
		return fmt.Errorf("collection name cannot be empty")
	}
	if !namePattern.MatchString(e.name) {
		return fmt.Errorf("collection name %q can only contain letters, numbers, underscores, and hyphens", e.name)
	}

	m, ok := e.Model()
	if !ok {
		if len(e.searchable) > 0 {
			return fmt.Errorf("collection %q declares searchable fields without a model", e.name)
		}
		return nil
	}
	for _, name := range e.searchable {
		if _, declared := m.FieldByName(name); !declared {
			return fmt.Errorf("collection %q: searchable field %q is not declared on its model", e.name, name)
		}
	}
	return nil
}

func validateReferences(e Entry, byName map[string]Entry) error {
	m, ok := e.Model()
	if !ok {
		return nil
	}
	for _, f := range m.Fields() {
		if f.FieldType() != field.TypeReference {
			continue
		}
		if _, registered := byName[f.Ref()]; !registered {
			return fmt.Errorf("collection %q: field %q references unregistered collection %q", e.name, f.Name(), f.Ref())
		}
	}
	return nil
}
