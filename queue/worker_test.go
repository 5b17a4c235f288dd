package queue_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/meshhq/ghcrawler/processor"
	"github.com/meshhq/ghcrawler/queue"
	"github.com/meshhq/ghcrawler/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher stubs fetcher.Client: it fills in req.Document/Response
// exactly as a real HTTP fetch would, without performing one.
type fakeFetcher struct {
	body       map[string]any
	etag       string
	fetchCalls int
}

func (f *fakeFetcher) Fetch(_ context.Context, req *processor.Request, _ string) (bool, error) {
	f.fetchCalls++
	req.Document = processor.NewObjectDocument(f.body)
	req.Response = processor.ResponseMeta{
		StatusCode: http.StatusOK,
		Headers:    http.Header{"Etag": []string{f.etag}},
	}
	return true, nil
}

// fakeStore is an in-memory store.Store recording every Put.
type fakeStore struct {
	puts []store.Document
}

func (s *fakeStore) Etag(_ context.Context, _ processor.ElementType, _ string) (string, bool, error) {
	return "", false, nil
}

func (s *fakeStore) Get(_ context.Context, _ processor.URN) ([]byte, bool, error) {
	return nil, false, nil
}

func (s *fakeStore) Put(_ context.Context, doc store.Document) error {
	s.puts = append(s.puts, doc)
	return nil
}

// fakeStats records outcome counts without pulling in the dashboard package.
type fakeStats struct {
	processed map[string]int
	skipped   map[string]int
	failed    int
}

func newFakeStats() *fakeStats {
	return &fakeStats{processed: map[string]int{}, skipped: map[string]int{}}
}
func (s *fakeStats) IncProcessed(t string) { s.processed[t]++ }
func (s *fakeStats) IncSkipped(k string)   { s.skipped[k]++ }
func (s *fakeStats) IncFailed()            { s.failed++ }

func TestWorker_FetchesProcessesAndPersists(t *testing.T) {
	backend := queue.NewMemoryQueue(4)
	fetch := &fakeFetcher{body: map[string]any{"id": float64(7)}, etag: `"team-etag"`}
	st := &fakeStore{}
	stats := newFakeStats()

	proc := processor.NewProcessor(backend, st, processor.Config{Version: "test"})
	w := queue.NewWorker(backend, fetch, st, proc, nil)
	w.Stats = stats

	req := processor.NewRequest("team", "https://api.github.com/teams/7", processor.Context{}, nil)
	require.NoError(t, backend.Push(context.Background(), processor.PriorityDefault, req))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = w.Run(ctx)

	require.Equal(t, 1, fetch.fetchCalls)
	require.Len(t, st.puts, 1)
	assert.Equal(t, processor.URN("urn:team:7"), st.puts[0].URN)
	assert.Equal(t, `"team-etag"`, st.puts[0].Etag)
	assert.Equal(t, 1, stats.processed["team"])
}

type erroringFetcher struct{}

func (erroringFetcher) Fetch(_ context.Context, _ *processor.Request, _ string) (bool, error) {
	return false, assert.AnError
}

func TestWorker_FetchErrorCountsAsFailure(t *testing.T) {
	backend := queue.NewMemoryQueue(4)
	st := &fakeStore{}
	stats := newFakeStats()

	proc := processor.NewProcessor(backend, st, processor.Config{Version: "test"})
	w := queue.NewWorker(backend, erroringFetcher{}, st, proc, nil)
	w.Stats = stats

	req := processor.NewRequest("team", "https://api.github.com/teams/7", processor.Context{}, nil)
	require.NoError(t, backend.Push(context.Background(), processor.PriorityDefault, req))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = w.Run(ctx)

	assert.Empty(t, st.puts)
	assert.Equal(t, 1, stats.failed)
}
