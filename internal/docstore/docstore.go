// Package docstore is a schema-flexible document store addressed by
// collection and document id. Documents are untyped maps; every write
// publishes a change so live listeners can re-read the full result set.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var ErrNotFound = errors.New("document not found")

// Snapshot is one document as read from the store. Data is owned by the
// caller.
type Snapshot struct {
	ID   string
	Data map[string]any
}

type Filter struct {
	Field string
	Value any
}

// Query selects documents from one collection. A zero OrderBy sorts by
// document id.
type Query struct {
	Collection string
	DocumentID string
	Where      []Filter
	OrderBy    string
	Descending bool
}

// Collection starts a query over every document in name.
func Collection(name string) Query {
	return Query{Collection: name}
}

// Doc starts a query matching a single document.
func Doc(collection, id string) Query {
	return Query{Collection: collection, DocumentID: id}
}

func (q Query) WhereEqual(field string, value any) Query {
	q.Where = append(append([]Filter(nil), q.Where...), Filter{Field: field, Value: value})
	return q
}

func (q Query) Order(field string, descending bool) Query {
	q.OrderBy = field
	q.Descending = descending
	return q
}

var fieldNameRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (q Query) validate() error {
	if q.Collection == "" {
		return errors.New("query: collection is required")
	}
	for _, f := range q.Where {
		if !fieldNameRegexp.MatchString(f.Field) {
			return fmt.Errorf("query: invalid field name %q", f.Field)
		}
	}
	if q.OrderBy != "" && !fieldNameRegexp.MatchString(q.OrderBy) {
		return fmt.Errorf("query: invalid order field %q", q.OrderBy)
	}
	return nil
}

// Store is the document store contract consumed by the social layer.
type Store interface {
	Get(ctx context.Context, collection, id string) (Snapshot, error)
	Query(ctx context.Context, q Query) ([]Snapshot, error)
	// Set creates or fully replaces a document.
	Set(ctx context.Context, collection, id string, data map[string]any) error
	// Update merges top-level fields into an existing document. Values may
	// be ArrayUnion, ArrayRemove or DeleteField transforms.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	// Listen delivers the full result of q now and after every change to
	// q's collection until the subscription is closed or ctx ends.
	Listen(ctx context.Context, q Query) (*Subscription, error)
}
