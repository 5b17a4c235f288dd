// Package processor implements the document processor at the heart of the
// crawler: given a fetched GitHub resource and the request that produced
// it, it stamps canonical URNs, records typed links on the document, and
// enqueues follow-up requests for everything the document references.
package processor

import (
	"encoding/json"
	"net/http"
	"time"
)

// ElementType names a GitHub resource kind ("org", "repo", "issue", ...) or,
// in the event path, a GitHub event-type string ("PushEvent", ...). It also
// carries collection-shaped type names ("repos", "issues", ...) that route
// through the pagination engine rather than a per-resource handler.
type ElementType string

// Root types are globally keyed by id alone; every other type is a child
// type, scoped by a qualifier URN.
const (
	TypeUser ElementType = "user"
	TypeOrg  ElementType = "org"
	TypeRepo ElementType = "repo"
	TypeTeam ElementType = "team"
)

// Priority names a queue lane. The processor never blocks on priority
// ordering itself — it is a hint interpreted by the queue backend.
type Priority string

const (
	PriorityImmediate Priority = "immediate"
	PrioritySoon      Priority = "soon"
	PriorityDefault   Priority = "default"
)

// LinkKind is the tagged-variant discriminator for a recorded link value.
type LinkKind string

const (
	LinkSelf       LinkKind = "self"
	LinkSiblings   LinkKind = "siblings"
	LinkResource   LinkKind = "resource"
	LinkCollection LinkKind = "collection"
	LinkRelation   LinkKind = "relation"
)

// Link is one entry of a document's _metadata.links map. Resource links may
// carry either a single URN (Href) or an array of URNs (Hrefs); every other
// kind carries exactly one URN in Href.
type Link struct {
	Kind  LinkKind `json:"kind"`
	Href  URN      `json:"href,omitempty"`
	Hrefs []URN    `json:"hrefs,omitempty"`
}

// MarshalJSON renders a single-valued resource/self/siblings/collection/
// relation link as its href directly, and a multi-valued resource link as
// an array of hrefs.
func (l Link) MarshalJSON() ([]byte, error) {
	if l.Hrefs != nil {
		return json.Marshal(l.Hrefs)
	}
	return json.Marshal(l.Href)
}

// RelationDescriptor brands a multi-page relation traversal so consumers
// can detect which pages belong to the same coherent snapshot.
type RelationDescriptor struct {
	Origin ElementType `json:"origin"`
	Name   string      `json:"name"`
	Type   ElementType `json:"type"`
	GUID   string      `json:"guid"`
}

// Context is the traversal state a parent handler hands down to every
// request it enqueues.
type Context struct {
	// Qualifier is the URN prefix this request's document is scoped under.
	Qualifier URN
	// Relation, when set, marks this request as a page of a relation
	// traversal; see the relation engine (processor/relation.go).
	Relation *RelationDescriptor
	// ElementType is the type to give each element discovered on a
	// collection/relation page. Whether an element of this type is
	// enqueued as a root fetch or a child fetch is derived from the type
	// itself (isRootType), not stored separately.
	ElementType ElementType
	// RepoType is advisory context set by the repo handler; nothing in
	// this package branches on it, but it is propagated so downstream
	// consumers (store, dashboard) can see it.
	RepoType string
}

// SkipReason records why a request was not processed. Skips are reported
// on the request, never surfaced as errors.
type SkipReason struct {
	Kind   string // "no handler" | "excluded"
	Reason string
}

// ResponseMeta is the HTTP response metadata the fetcher attaches to a
// Request once its document has been fetched.
type ResponseMeta struct {
	StatusCode int
	LinkHeader string
	Headers    http.Header
}

// Document is a fetched GitHub resource plus its processing envelope.
// The decoded JSON top-level value is held in Object for a single
// resource, or in Array for a paginated collection listing.
type Document struct {
	Object   map[string]any
	Array    []any
	Metadata Metadata
}

// Metadata is the _metadata envelope attached to every processed document.
type Metadata struct {
	Links       map[string]Link `json:"links"`
	Version     string          `json:"version"`
	ProcessedAt time.Time       `json:"processedAt"`
	FetchedAt   time.Time       `json:"fetchedAt"`
	Type        ElementType     `json:"type,omitempty"`
	SourceURL   string          `json:"sourceUrl,omitempty"`
}

// NewObjectDocument wraps a decoded single-resource JSON object.
func NewObjectDocument(body map[string]any) *Document {
	return &Document{Object: body, Metadata: Metadata{Links: map[string]Link{}}}
}

// NewArrayDocument wraps a decoded paginated-listing JSON array.
func NewArrayDocument(body []any) *Document {
	return &Document{Array: body, Metadata: Metadata{Links: map[string]Link{}}}
}

func (d *Document) ensureLinks() {
	if d.Metadata.Links == nil {
		d.Metadata.Links = map[string]Link{}
	}
}

// MarshalJSON flattens a single-object document's fields alongside
// "_metadata" at the top level, and wraps an array document's elements
// under "elements" next to "_metadata" (collection listings are arrays at
// the top level, which have no room for a sibling key).
func (d *Document) MarshalJSON() ([]byte, error) {
	if d.Array != nil {
		return json.Marshal(struct {
			Elements []any    `json:"elements"`
			Metadata Metadata `json:"_metadata"`
		}{Elements: d.Array, Metadata: d.Metadata})
	}
	flat := make(map[string]any, len(d.Object)+1)
	for k, v := range d.Object {
		flat[k] = v
	}
	flat["_metadata"] = d.Metadata
	return json.Marshal(flat)
}

// Request is one fetch-and-process work item. Its identity (Type, URL,
// Context) is set at construction time; Document/Response/Payload/Skip are
// filled in as it moves through the fetcher and processor.
type Request struct {
	Type     ElementType
	URL      string
	Context  Context
	Policy   Policy
	Document *Document
	Response ResponseMeta
	Payload  map[string]any

	Skip *SkipReason

	enqueue func(Priority, ...*Request) error
	tracked []trackedTask
}

type trackedTask struct {
	name string
	run  func() error
}

// NewRequest builds a Request with the given identity. Policy defaults to
// AllowAll if nil.
func NewRequest(typ ElementType, url string, ctx Context, policy Policy) *Request {
	if policy == nil {
		policy = AllowAll{}
	}
	return &Request{Type: typ, URL: url, Context: ctx, Policy: policy}
}

// Qualifier returns the request's inherited qualifier URN.
func (r *Request) Qualifier() URN {
	return r.Context.Qualifier
}

// MarkSkip records that this request was not processed.
func (r *Request) MarkSkip(kind, reason string) {
	r.Skip = &SkipReason{Kind: kind, Reason: reason}
}

// Track registers pending work (event discovery's etag lookups) that must
// complete before the request is considered finished.
func (r *Request) Track(name string, fn func() error) {
	r.tracked = append(r.tracked, trackedTask{name: name, run: fn})
}

func (r *Request) runTracked() error {
	for _, t := range r.tracked {
		if err := t.run(); err != nil {
			return FieldErrorf("", r.Type, "tracked task %q failed: %w", t.name, err)
		}
	}
	return nil
}
