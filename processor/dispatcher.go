package processor

import (
	"context"
	"fmt"
	"time"
)

// HandlerFunc processes one request, recording links and enqueueing
// follow-ups on it.
type HandlerFunc func(ctx context.Context, req *Request) error

// collectionTypeNames are the request types that route through the
// pagination engine's collection processor rather than a per-resource
// handler. These are the link names the resource handlers pass to
// AddCollection/AddRelation, plus pull_requests, which the repo handler
// records through AddEmptyCollection.
var collectionTypeNames = map[ElementType]bool{
	"repos":           true,
	"members":         true,
	"teams":           true,
	"collaborators":   true,
	"contributors":    true,
	"subscribers":     true,
	"issues":          true,
	"commits":         true,
	"review_comments": true,
	"statuses":        true,
	"issue_comments":  true,
	"pull_requests":   true,
}

// Processor turns a freshly fetched GitHub resource into a link-stamped
// document plus a set of follow-up requests. It holds no shared mutable
// state besides its queue/store handles (assumed safe for concurrent use
// by contract) and its config.
type Processor struct {
	cfg      Config
	queue    QueueSet
	store    Store
	handlers map[ElementType]HandlerFunc
}

// NewProcessor builds a Processor wired to the given queue and store
// collaborators.
func NewProcessor(queue QueueSet, store Store, cfg Config) *Processor {
	cfg.defaults()
	p := &Processor{cfg: cfg, queue: queue, store: store}
	p.handlers = map[ElementType]HandlerFunc{
		"org":            p.handleOrg,
		"user":           p.handleUser,
		"repo":           p.handleRepo,
		"commit":         p.handleCommit,
		"pull_request":   p.handlePullRequest,
		"issue":          p.handleIssue,
		"issue_comment":  p.handleIssueComment,
		"review_comment": p.handleReviewComment,
		"team":           p.handleTeam,
		"event_trigger":  p.handleEventTrigger,
		"update_events":  p.handleUpdateEvents,
	}
	p.registerEventHandlers()
	return p
}

func (p *Processor) resolveHandler(req *Request) (HandlerFunc, bool) {
	if n, ok := pageOfURL(req.URL); ok {
		page := n
		return func(ctx context.Context, r *Request) error {
			return p.page(ctx, page, r)
		}, true
	}
	if req.IsCollectionType() {
		return p.collection, true
	}
	h, ok := p.handlers[req.Type]
	return h, ok
}

// Process is the processor's entry point. It resolves a handler, applies
// policy gating, invokes the handler, waits on any tracked work the
// handler registered, and stamps _metadata.version/processedAt on the way
// out. Handler errors propagate unchanged; skip markings are not errors.
func (p *Processor) Process(ctx context.Context, req *Request) (*Document, error) {
	req.enqueue = func(priority Priority, reqs ...*Request) error {
		if p.queue == nil {
			return nil
		}
		return p.queue.Push(ctx, priority, reqs...)
	}

	handler, ok := p.resolveHandler(req)
	if !ok {
		req.MarkSkip("no handler", fmt.Sprintf("no handler registered for type %q", req.Type))
		p.cfg.Logger.Debug("skip: no handler", "type", req.Type, "url", req.URL)
		return req.Document, nil
	}

	policy := req.Policy
	if policy == nil {
		policy = AllowAll{}
	}
	if !policy.ShouldProcess(req, p.cfg.Version) {
		req.MarkSkip("excluded", "policy excluded this request/version")
		p.cfg.Logger.Debug("skip: excluded", "type", req.Type, "url", req.URL, "version", p.cfg.Version)
		return req.Document, nil
	}

	if err := handler(ctx, req); err != nil {
		p.cfg.Logger.Error("handler failed", "type", req.Type, "url", req.URL, "error", err)
		return req.Document, err
	}
	if err := req.runTracked(); err != nil {
		p.cfg.Logger.Error("tracked work failed", "type", req.Type, "url", req.URL, "error", err)
		return req.Document, err
	}

	if req.Document != nil {
		req.Document.Metadata.Version = p.cfg.Version
		req.Document.Metadata.ProcessedAt = time.Now().UTC()
		req.Document.Metadata.Type = req.Type
		req.Document.Metadata.SourceURL = req.URL
	}
	p.cfg.Logger.Info("request processed", "type", req.Type, "url", req.URL)
	return req.Document, nil
}
