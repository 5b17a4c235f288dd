package processor

import "context"

// Policy decides whether a given request should be processed at all.
type Policy interface {
	ShouldProcess(req *Request, version string) bool
}

// AllowAll is the default Policy: never excludes anything. Handlers and
// tests that don't care about policy gating use this.
type AllowAll struct{}

// ShouldProcess always returns true.
func (AllowAll) ShouldProcess(*Request, string) bool { return true }

// PolicyFunc adapts a plain function to the Policy interface.
type PolicyFunc func(req *Request, version string) bool

// ShouldProcess calls the wrapped function.
func (f PolicyFunc) ShouldProcess(req *Request, version string) bool { return f(req, version) }

// QueueSet is the narrow collaborator interface for the surrounding queue
// backend. Push must accept bulk pushes and be safe for concurrent use;
// the processor never locks it.
type QueueSet interface {
	Push(ctx context.Context, priority Priority, reqs ...*Request) error
}

// QueueSetFunc adapts a plain function to QueueSet, handy in tests.
type QueueSetFunc func(ctx context.Context, priority Priority, reqs ...*Request) error

// Push calls the wrapped function.
func (f QueueSetFunc) Push(ctx context.Context, priority Priority, reqs ...*Request) error {
	return f(ctx, priority, reqs...)
}

// Store is the narrow collaborator interface the event-discovery path uses
// to detect events already known. A present, empty-string etag is a valid
// "known, but not yet etagged" result; ok=false means the URL has never
// been seen.
type Store interface {
	Etag(ctx context.Context, typ ElementType, url string) (etag string, ok bool, err error)
}

// StoreFunc adapts a plain function to Store, handy in tests.
type StoreFunc func(ctx context.Context, typ ElementType, url string) (string, bool, error)

// Etag calls the wrapped function.
func (f StoreFunc) Etag(ctx context.Context, typ ElementType, url string) (string, bool, error) {
	return f(ctx, typ, url)
}
