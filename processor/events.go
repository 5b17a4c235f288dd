package processor

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// handleEventTrigger synthesizes the one update_events request that kicks
// off incremental re-crawling for a qualifier. A qualifier containing "/"
// names a repo; anything else an org.
func (p *Processor) handleEventTrigger(_ context.Context, req *Request) error {
	q := req.Qualifier().String()
	q = strings.TrimPrefix(q, "urn:")

	var url string
	if strings.Contains(q, "/") {
		url = fmt.Sprintf("https://api.github.com/repos/%s/events", q)
	} else {
		url = fmt.Sprintf("https://api.github.com/orgs/%s/events", q)
	}

	child := NewRequest("update_events", url, req.Context, req.Policy)
	return req.QueueRequestsOn(PriorityImmediate, child)
}

// handleUpdateEvents filters a fetched page of events down to those the
// store has not yet seen, and enqueues one follow-up request per new
// event, typed by the event's own GitHub event-type string. Discovery is
// registered as tracked work so the request is not finalized before the
// store lookups and enqueues finish.
func (p *Processor) handleUpdateEvents(ctx context.Context, req *Request) error {
	if req.Document == nil || req.Document.Array == nil {
		return nil
	}
	events := req.Document.Array

	req.Track("event discovery", func() error {
		return p.discoverEvents(ctx, req, events)
	})
	return nil
}

func (p *Processor) discoverEvents(ctx context.Context, req *Request, events []any) error {
	if p.store == nil {
		return fmt.Errorf("event discovery requires a store, none configured")
	}

	type found struct {
		typ     ElementType
		url     string
		payload map[string]any
	}

	results := make([]*found, len(events))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.MaxEventBatchConcurrency)

	var mu sync.Mutex
	for i, raw := range events {
		i, raw := i, raw
		ev, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		url, ok := ev["url"].(string)
		if !ok || url == "" {
			continue
		}
		g.Go(func() error {
			_, known, err := p.store.Etag(gctx, req.Type, url)
			if err != nil {
				return err
			}
			if known {
				return nil
			}
			typ, ok := ev["type"].(string)
			if !ok || typ == "" {
				return nil
			}
			mu.Lock()
			results[i] = &found{typ: ElementType(typ), url: url, payload: ev}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var children []*Request
	for _, f := range results {
		if f == nil {
			continue
		}
		child := NewRequest(f.typ, f.url, req.Context, req.Policy)
		child.Payload = f.payload
		children = append(children, child)
	}
	return req.QueueRequests(children...)
}

// EventBasics records the links common to every event-type handler and
// returns the event's document, the resolved repo id (if any), and its raw
// payload. Repo-scoped events anchor under urn:repo:<id>; org-feed events
// without a repo fall back to urn:org:<id>.
func EventBasics(req *Request) (*Document, any, map[string]any) {
	payload := req.Payload

	var repoID any
	if repo, ok := payload["repo"].(map[string]any); ok {
		if id, ok := idOf(repo["id"]); ok {
			repoID = id
		}
	}

	var urn URN
	if repoID != nil {
		urn = RootURN(TypeRepo, repoID)
	} else if org, ok := payload["org"].(map[string]any); ok {
		if id, ok := idOf(org["id"]); ok {
			urn = RootURN(TypeOrg, id)
		}
	}

	id, _ := idOf(payload["id"])
	req.linkSelf(urn.Extend(string(req.Type), id))
	req.LinkSiblings(urn.Extend(string(req.Type)))

	if actor, ok := payload["actor"].(map[string]any); ok {
		linkEventRoot(req, "actor", TypeUser, actor)
	}
	if repo, ok := payload["repo"].(map[string]any); ok {
		linkEventRoot(req, "repo", TypeRepo, repo)
	}
	if org, ok := payload["org"].(map[string]any); ok {
		linkEventRoot(req, "org", TypeOrg, org)
	}

	return req.Document, repoID, payload
}

func linkEventRoot(req *Request, name string, typ ElementType, nested map[string]any) {
	id, ok := idOf(nested["id"])
	if !ok {
		return
	}
	url, _ := nested["url"].(string)
	req.LinkResource(name, RootURN(typ, id))
	if url != "" {
		_ = req.QueueRoot(typ, url)
	}
}

// EventResource derives a URN for a payload-nested sub-resource and
// enqueues its fetch, repo-scoped when the event carries a repo.
func EventResource(req *Request, repo any, name string, typ ElementType) {
	nested, ok := req.Payload[name].(map[string]any)
	if !ok {
		return
	}
	id, ok := idOf(nested["id"])
	if !ok {
		return
	}
	url, _ := nested["url"].(string)

	var urn URN
	if repo != nil {
		urn = RootURN(TypeRepo, repo).Extend(name, id)
	} else {
		urn = RootURN(typ, id)
	}
	req.LinkResource(name, urn)
	if url != "" {
		_ = req.QueueRoot(typ, url)
	}
}
