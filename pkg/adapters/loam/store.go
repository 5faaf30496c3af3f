package loam

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/ports"
	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
)

// Record is the front matter written next to every stored value.
type Record struct {
	Kind string `json:"kind" yaml:"kind" mapstructure:"kind"`
	ID   string `json:"id" yaml:"id" mapstructure:"id"`
}

// Repository implements ports.Repository on top of a Loam document store.
// Each value becomes one document: the front matter carries its Record and
// the body carries the JSON encoding of the value. Several kinds can share
// one Loam directory.
type Repository[T any] struct {
	raw   core.Repository
	typed *loam.TypedRepository[Record]
	kind  string
}

var _ ports.Repository[struct{}] = (*Repository[struct{}])(nil)

// NewRepository creates a repository storing documents of the given kind.
func NewRepository[T any](repo core.Repository, kind string) *Repository[T] {
	return &Repository[T]{
		raw:   repo,
		typed: loam.NewTypedRepository[Record](repo),
		kind:  kind,
	}
}

func (r *Repository[T]) docID(id string) string {
	return r.kind + "-" + id
}

// Save writes v as a document.
func (r *Repository[T]) Save(ctx context.Context, id string, v T) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", id, err)
	}
	err = r.typed.Save(ctx, &loam.DocumentModel[Record]{
		ID:      r.docID(id),
		Content: string(body),
		Data:    Record{Kind: r.kind, ID: id},
	})
	if err != nil {
		return fmt.Errorf("loam save failed for %s: %w", id, err)
	}
	return nil
}

// Load reads the document stored under id.
// Any lookup failure is reported as domain.ErrNotFound.
func (r *Repository[T]) Load(ctx context.Context, id string) (T, error) {
	var v T
	doc, err := r.typed.Get(ctx, r.docID(id))
	if err != nil {
		return v, fmt.Errorf("loam get failed for %s: %w: %w", id, domain.ErrNotFound, err)
	}
	if err := json.Unmarshal([]byte(doc.Content), &v); err != nil {
		return v, fmt.Errorf("failed to decode %s: %w", id, err)
	}
	return v, nil
}

// Delete removes the document for id. Missing documents are ignored.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	if _, err := r.typed.Get(ctx, r.docID(id)); err != nil {
		return nil
	}
	if err := r.raw.Delete(ctx, r.docID(id)); err != nil {
		return fmt.Errorf("loam delete failed for %s: %w", id, err)
	}
	return nil
}

// List returns every document of this kind ordered by id.
func (r *Repository[T]) List(ctx context.Context) ([]T, error) {
	docs, err := r.typed.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	type entry struct {
		id   string
		body string
	}
	entries := make([]entry, 0, len(docs))
	for _, doc := range docs {
		if doc.Data.Kind != r.kind {
			continue
		}
		entries = append(entries, entry{id: doc.Data.ID, body: doc.Content})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	out := make([]T, 0, len(entries))
	for _, e := range entries {
		var v T
		if err := json.Unmarshal([]byte(e.body), &v); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", e.id, err)
		}
		out = append(out, v)
	}
	return out, nil
}
