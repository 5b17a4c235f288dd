// Package store persists processed crawl documents: etag lookups for
// event-discovery idempotence, plus the get/put surface the worker needs
// to land processed documents.
package store

import (
	"context"

	"github.com/meshhq/ghcrawler/processor"
)

// Store is the widened collaborator surface: processor.Store's Etag, plus
// Get/Put so the crawler has somewhere to actually land a processed
// document.
type Store interface {
	processor.Store
	Get(ctx context.Context, urn processor.URN) ([]byte, bool, error)
	Put(ctx context.Context, doc Document) error
}

// Document is one stored crawl document, keyed by both its canonical URN
// and the URL it was fetched from (event discovery's Etag lookup is by
// URL; everything else addresses a document by URN).
type Document struct {
	URN  processor.URN
	URL  string
	Type processor.ElementType
	Etag string
	Body []byte
}
