package processor

import (
	"context"
	"strings"
)

// parseLinkHeader parses a GitHub-style HTTP Link header into its rel ->
// URL entries: `<url>; rel="next", <url>; rel="last"`.
func parseLinkHeader(header string) map[string]string {
	out := map[string]string{}
	if header == "" {
		return out
	}
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		segs := strings.Split(part, ";")
		if len(segs) < 2 {
			continue
		}
		url := strings.TrimSpace(segs[0])
		url = strings.TrimPrefix(url, "<")
		url = strings.TrimSuffix(url, ">")

		var rel string
		for _, attr := range segs[1:] {
			attr = strings.TrimSpace(attr)
			if strings.HasPrefix(attr, "rel=") {
				rel = strings.Trim(strings.TrimPrefix(attr, "rel="), `"`)
			}
		}
		if rel != "" {
			out[rel] = url
		}
	}
	return out
}

// collection parses the fetched response's Link header, enqueues the
// remaining pages on the "soon" priority, and processes page 1. The extra
// pages go out before page 1 is walked so queue back-pressure is visible
// early.
func (p *Processor) collection(ctx context.Context, req *Request) error {
	if req.Response.LinkHeader != "" {
		links := parseLinkHeader(req.Response.LinkHeader)
		if lastURL, ok := links["last"]; ok {
			lastPage, ok := pageOfURL(lastURL)
			if ok && lastPage > 1 {
				base := basePath(req.URL)
				extra := make([]*Request, 0, lastPage-1)
				for i := 2; i <= lastPage; i++ {
					child := NewRequest(req.Type, pagedURL(base, i), req.Context, req.Policy)
					extra = append(extra, child)
				}
				if err := req.QueueRequestsOn(PrioritySoon, extra...); err != nil {
					return err
				}
			}
		}
	}
	return p.page(ctx, 1, req)
}

// page records this page's self link, runs the relation engine when this
// page belongs to a relation traversal, and enqueues a fetch for every
// element on the page. The relation's element type wins over the context's
// own when both are set.
func (p *Processor) page(ctx context.Context, n int, req *Request) error {
	qualifier := req.Qualifier()
	req.linkSelf(qualifier.Extend(string(req.Type), "page", n))

	elementType := req.Context.ElementType
	if req.Context.Relation != nil {
		if err := p.processRelation(req, req.Context.Relation); err != nil {
			return err
		}
		elementType = req.Context.Relation.Type
	}

	if req.Document == nil || req.Document.Array == nil {
		return nil
	}

	for _, raw := range req.Document.Array {
		elem, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		url, ok := elem["url"].(string)
		if !ok || url == "" {
			continue
		}
		if err := req.QueueCollectionElement(elementType, url, qualifier); err != nil {
			return err
		}
	}
	return nil
}
