package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrNotFound is returned when no document exists for the requested id.
var ErrNotFound = errors.New("document not found")

// Backend persists raw JSON documents grouped by collection.
type Backend interface {
	List(ctx context.Context, collection string) ([][]byte, error)
	Get(ctx context.Context, collection, id string) ([]byte, error)
	Put(ctx context.Context, collection, id string, body []byte) error
	Ping(ctx context.Context) error
}

// Document is anything addressable by a stable primary key.
type Document interface {
	DocumentID() string
}

// DocumentStore is the get/list/put contract the ticket engine is written against.
// Put upserts and overwrites the whole document.
type DocumentStore[T Document] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Put(ctx context.Context, doc T) error
}

// Collection is a typed DocumentStore over a Backend, encoding documents as JSON.
type Collection[T Document] struct {
	backend Backend
	name    string
}

// NewCollection binds a named collection on the backend.
func NewCollection[T Document](backend Backend, name string) *Collection[T] {
	return &Collection[T]{backend: backend, name: name}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string {
	return c.name
}

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	raw, err := c.backend.List(ctx, c.name)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.name, err)
	}
	docs := make([]T, 0, len(raw))
	for _, body := range raw {
		var doc T
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("decode %s document: %w", c.name, err)
		}
		docs = append(docs, doc)
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].DocumentID() < docs[j].DocumentID()
	})
	return docs, nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var doc T
	body, err := c.backend.Get(ctx, c.name, id)
	if err != nil {
		return doc, err
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return doc, fmt.Errorf("decode %s/%s: %w", c.name, id, err)
	}
	return doc, nil
}

func (c *Collection[T]) Put(ctx context.Context, doc T) error {
	id := doc.DocumentID()
	if id == "" {
		return fmt.Errorf("put %s: empty document id", c.name)
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", c.name, id, err)
	}
	if err := c.backend.Put(ctx, c.name, id, body); err != nil {
		return fmt.Errorf("put %s/%s: %w", c.name, id, err)
	}
	return nil
}
