package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/meshhq/ghcrawler/processor"
	"github.com/meshhq/ghcrawler/store"
)

// StatsSink receives per-request outcome counts. dashboard.Stats implements
// this; it is declared here rather than imported to keep queue independent
// of dashboard.
type StatsSink interface {
	IncProcessed(elementType string)
	IncSkipped(kind string)
	IncFailed()
}

// Fetcher performs the HTTP GET a popped Request names, filling in its
// Document/Response fields. fetcher.Client implements this; declared here,
// not imported, so queue stays independent of the fetcher's HTTP-specific
// types. etag, if non-empty, short-circuits the fetch on a 304; ok reports
// whether a fresh document was actually fetched.
type Fetcher interface {
	Fetch(ctx context.Context, req *processor.Request, etag string) (ok bool, err error)
}

// Worker drains a Backend, fetches each request's document, hands it to
// the processor, and persists the result. The processor pushes its own
// follow-ups back onto the same backend as it goes, so the loop never
// re-enqueues anything itself.
type Worker struct {
	backend   Backend
	fetcher   Fetcher
	store     store.Store
	processor *processor.Processor
	logger    *slog.Logger

	// Concurrency bounds how many requests are processed in parallel.
	// Defaults to 1 (sequential) when zero.
	Concurrency int

	// Stats, if set, is updated with each request's outcome.
	Stats StatsSink
}

// NewWorker builds a Worker draining backend: fetching through f, processing
// through proc, and persisting results in s.
func NewWorker(backend Backend, f Fetcher, s store.Store, proc *processor.Processor, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{backend: backend, fetcher: f, store: s, processor: proc, logger: logger}
}

// Run drains the backend until ctx is canceled. It never returns a non-nil
// error except ctx.Err() on cancellation; individual request failures are
// logged, not fatal.
func (w *Worker) Run(ctx context.Context) error {
	concurrency := w.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for {
		req, err := w.backend.Pop(ctx)
		if err != nil {
			wg.Wait()
			return ctx.Err()
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(r *processor.Request) {
			defer wg.Done()
			defer func() { <-sem }()
			w.process(ctx, r)
		}(req)
	}
}

func (w *Worker) process(ctx context.Context, req *processor.Request) {
	priorEtag, _, err := w.store.Etag(ctx, req.Type, req.URL)
	if err != nil {
		w.logger.Error("etag lookup failed", "type", req.Type, "url", req.URL, "error", err)
	}

	fetched, err := w.fetcher.Fetch(ctx, req, priorEtag)
	if err != nil {
		w.logger.Error("fetch failed", "type", req.Type, "url", req.URL, "error", err)
		if w.Stats != nil {
			w.Stats.IncFailed()
		}
		return
	}
	if !fetched {
		w.logger.Debug("not modified, skipping reprocess", "type", req.Type, "url", req.URL)
		return
	}

	w.logger.Info("processing request", "type", req.Type, "url", req.URL)
	doc, err := w.processor.Process(ctx, req)
	if err != nil {
		w.logger.Error("request failed", "type", req.Type, "url", req.URL, "error", err)
		if w.Stats != nil {
			w.Stats.IncFailed()
		}
		return
	}
	if req.Skip != nil {
		w.logger.Debug("request skipped", "type", req.Type, "kind", req.Skip.Kind, "reason", req.Skip.Reason)
		if w.Stats != nil {
			w.Stats.IncSkipped(req.Skip.Kind)
		}
		return
	}

	if err := w.persist(ctx, req, doc); err != nil {
		w.logger.Error("persist failed", "type", req.Type, "url", req.URL, "error", err)
		if w.Stats != nil {
			w.Stats.IncFailed()
		}
		return
	}

	w.logger.Info("request processed", "type", req.Type, "url", req.URL)
	if w.Stats != nil {
		w.Stats.IncProcessed(string(req.Type))
	}
}

func (w *Worker) persist(ctx context.Context, req *processor.Request, doc *processor.Document) error {
	if doc == nil {
		return nil
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	return w.store.Put(ctx, store.Document{
		URN:  URNFromLinks(doc),
		URL:  req.URL,
		Type: req.Type,
		Etag: req.Response.Headers.Get("Etag"),
		Body: body,
	})
}

// URNFromLinks reads the self link a handler must have recorded and
// returns its URN, or "" if none was recorded. Policy-gated skips never
// reach persist, so an empty URN should not happen on the success path.
func URNFromLinks(doc *processor.Document) processor.URN {
	self, ok := doc.Metadata.Links[string(processor.LinkSelf)]
	if !ok {
		return ""
	}
	return self.Href
}
