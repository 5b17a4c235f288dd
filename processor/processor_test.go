package processor_test

import (
	"context"
	"testing"

	"github.com/meshhq/ghcrawler/processor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingQueue records every pushed request alongside the priority it was
// pushed on, so tests can assert on what a handler enqueued.
type capturingQueue struct {
	pushes []push
}

type push struct {
	priority processor.Priority
	req      *processor.Request
}

func (q *capturingQueue) Push(_ context.Context, priority processor.Priority, reqs ...*processor.Request) error {
	for _, r := range reqs {
		q.pushes = append(q.pushes, push{priority: priority, req: r})
	}
	return nil
}

func newTestProcessor(t *testing.T, queue *capturingQueue, store processor.Store) *processor.Processor {
	t.Helper()
	return processor.NewProcessor(queue, store, processor.Config{Version: "test"})
}

// A repos page response advertising last page 3 enqueues exactly pages 2
// and 3 on the "soon" priority, and processes page 1 in place.
func TestPagination_EnqueuesRemainingPages(t *testing.T) {
	queue := &capturingQueue{}
	p := newTestProcessor(t, queue, nil)

	req := processor.NewRequest("repos", "https://api.github.com/orgs/acme/repos",
		processor.Context{Qualifier: "urn:org:42"}, nil)
	req.Document = processor.NewArrayDocument([]any{})
	req.Response.LinkHeader = `<https://api.github.com/orgs/acme/repos?page=3>; rel="last"`

	doc, err := p.Process(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, queue.pushes, 2)
	for i, pg := range queue.pushes {
		assert.Equal(t, processor.PrioritySoon, pg.priority)
		assert.Equal(t, "repos", string(pg.req.Type))
		assert.Contains(t, pg.req.URL, "per_page=100")
		_ = i
	}
	assert.Contains(t, queue.pushes[0].req.URL, "page=2")
	assert.Contains(t, queue.pushes[1].req.URL, "page=3")

	self := doc.Metadata.Links["self"]
	assert.Equal(t, processor.URN("urn:org:42:repos:page:1"), self.Href)
}

// An org document records self/siblings plus its user twin, repos
// collection, and guid-branded members relation.
func TestOrg_LinksAndFollowUps(t *testing.T) {
	queue := &capturingQueue{}
	p := newTestProcessor(t, queue, nil)

	req := processor.NewRequest("org", "https://api.github.com/orgs/acme", processor.Context{}, nil)
	req.Document = processor.NewObjectDocument(map[string]any{
		"id":          float64(7),
		"url":         "https://api.github.com/orgs/acme",
		"members_url": "https://api.github.com/orgs/acme/members{/member}",
		"repos_url":   "https://api.github.com/orgs/acme/repos",
	})

	doc, err := p.Process(context.Background(), req)
	require.NoError(t, err)

	links := doc.Metadata.Links
	assert.Equal(t, processor.URN("urn:org:7"), links["self"].Href)
	assert.Equal(t, processor.URN("urn:orgs"), links["siblings"].Href)
	assert.Equal(t, processor.URN("urn:user:7"), links["user"].Href)
	assert.Equal(t, processor.URN("urn:user:7:repos"), links["repos"].Href)

	membersLink := links["members"]
	require.NotEmpty(t, string(membersLink.Href))
	assert.Contains(t, string(membersLink.Href), "urn:org:7:members:pages:")

	var userPush, reposPush, membersPush *push
	for i := range queue.pushes {
		pg := &queue.pushes[i]
		switch pg.req.Type {
		case "user":
			userPush = pg
		case "repos":
			reposPush = pg
		case "members":
			membersPush = pg
		}
	}
	require.NotNil(t, userPush)
	assert.Equal(t, "https://api.github.com/users/acme", userPush.req.URL)
	require.NotNil(t, reposPush)
	require.NotNil(t, membersPush)
	assert.NotContains(t, membersPush.req.URL, "{/member}")
}

// A commit is self-keyed by sha, not id, and every file entry is scrubbed
// of its patch field.
func TestCommit_ShaKeyedAndScrubbed(t *testing.T) {
	queue := &capturingQueue{}
	p := newTestProcessor(t, queue, nil)

	req := processor.NewRequest("commit", "https://api.github.com/repos/o/r/commits/abc",
		processor.Context{Qualifier: "urn:repo:9"}, nil)
	req.Document = processor.NewObjectDocument(map[string]any{
		"sha": "abc",
		"url": "https://api.github.com/repos/o/r/commits/abc",
		"author": map[string]any{
			"id":  float64(1),
			"url": "https://api.github.com/users/a",
		},
		"committer": map[string]any{
			"id":  float64(2),
			"url": "https://api.github.com/users/b",
		},
		"files": []any{
			map[string]any{"filename": "a.go", "patch": "@@ -1 +1 @@"},
			map[string]any{"filename": "b.go", "patch": "@@ -2 +2 @@"},
		},
	})

	doc, err := p.Process(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, processor.URN("urn:repo:9:commit:abc"), doc.Metadata.Links["self"].Href)

	var repoPush *push
	for i := range queue.pushes {
		if queue.pushes[i].req.Type == "repo" {
			repoPush = &queue.pushes[i]
		}
	}
	require.NotNil(t, repoPush)
	assert.Equal(t, "https://api.github.com/repos/o/r", repoPush.req.URL)
	assert.Equal(t, processor.URN("urn:repo:9"), doc.Metadata.Links["repo"].Href)

	files, _ := doc.Object["files"].([]any)
	require.Len(t, files, 2)
	for _, f := range files {
		entry := f.(map[string]any)
		_, hasPatch := entry["patch"]
		assert.False(t, hasPatch)
	}
}

// With ScrubCommitPatches disabled, the patch field survives.
func TestCommit_ScrubDisabled(t *testing.T) {
	queue := &capturingQueue{}
	disabled := false
	p := processor.NewProcessor(queue, nil, processor.Config{ScrubCommitPatches: &disabled})

	req := processor.NewRequest("commit", "https://api.github.com/repos/o/r/commits/abc",
		processor.Context{Qualifier: "urn:repo:9"}, nil)
	req.Document = processor.NewObjectDocument(map[string]any{
		"sha": "abc",
		"files": []any{
			map[string]any{"filename": "a.go", "patch": "@@ -1 +1 @@"},
		},
	})

	doc, err := p.Process(context.Background(), req)
	require.NoError(t, err)

	files := doc.Object["files"].([]any)
	entry := files[0].(map[string]any)
	assert.Equal(t, "@@ -1 +1 @@", entry["patch"])
}

// An issue with two assignees records a single assignees resource link to
// both URNs, and enqueues its pull_request resource keyed by the issue's
// own id, not the PR's.
func TestIssue_AssigneesAndPullRequestTwin(t *testing.T) {
	queue := &capturingQueue{}
	p := newTestProcessor(t, queue, nil)

	req := processor.NewRequest("issue", "https://api.github.com/repos/o/r/issues/11",
		processor.Context{Qualifier: "urn:repo:9"}, nil)
	req.Document = processor.NewObjectDocument(map[string]any{
		"id": float64(11),
		"assignees": []any{
			map[string]any{"id": float64(1)},
			map[string]any{"id": float64(2)},
		},
		"pull_request": map[string]any{
			"url": "https://api.github.com/repos/o/r/pulls/11",
		},
	})

	doc, err := p.Process(context.Background(), req)
	require.NoError(t, err)

	assignees := doc.Metadata.Links["assignees"]
	require.Len(t, assignees.Hrefs, 2)
	assert.ElementsMatch(t, []processor.URN{"urn:user:1", "urn:user:2"}, assignees.Hrefs)

	var prPush *push
	for i := range queue.pushes {
		if queue.pushes[i].req.Type == "pull_request" {
			prPush = &queue.pushes[i]
		}
	}
	require.NotNil(t, prPush)
	assert.Equal(t, "https://api.github.com/repos/o/r/pulls/11", prPush.req.URL)
}

// update_events enqueues only the events the store hasn't seen.
func TestUpdateEvents_OnlyNewEvents(t *testing.T) {
	queue := &capturingQueue{}
	seen := map[string]bool{"https://api.github.com/events/B": true}
	store := processor.StoreFunc(func(_ context.Context, _ processor.ElementType, url string) (string, bool, error) {
		return "", seen[url], nil
	})
	p := newTestProcessor(t, queue, store)

	req := processor.NewRequest("update_events", "https://api.github.com/orgs/acme/events", processor.Context{}, nil)
	req.Document = processor.NewArrayDocument([]any{
		map[string]any{"id": "A", "type": "PushEvent", "url": "https://api.github.com/events/A"},
		map[string]any{"id": "B", "type": "PushEvent", "url": "https://api.github.com/events/B"},
		map[string]any{"id": "C", "type": "PushEvent", "url": "https://api.github.com/events/C"},
	})

	_, err := p.Process(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, queue.pushes, 2)
	var urls []string
	for _, pg := range queue.pushes {
		assert.Equal(t, processor.ElementType("PushEvent"), pg.req.Type)
		urls = append(urls, pg.req.Payload["url"].(string))
	}
	assert.ElementsMatch(t, []string{
		"https://api.github.com/events/A",
		"https://api.github.com/events/C",
	}, urls)
}

// A PullRequestReviewCommentEvent links comment and pull under the event's
// repo and enqueues both follow-up fetches.
func TestPullRequestReviewCommentEvent(t *testing.T) {
	queue := &capturingQueue{}
	p := newTestProcessor(t, queue, nil)

	req := processor.NewRequest("PullRequestReviewCommentEvent", "", processor.Context{}, nil)
	req.Document = processor.NewObjectDocument(map[string]any{})
	req.Payload = map[string]any{
		"id":   "evt1",
		"repo": map[string]any{"id": float64(3)},
		"pull_request": map[string]any{
			"id":  float64(5),
			"url": "https://api.github.com/repos/o/r/pulls/5",
		},
		"comment": map[string]any{
			"id":  float64(9),
			"url": "https://api.github.com/repos/o/r/pulls/comments/9",
		},
	}

	doc, err := p.Process(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, processor.URN("urn:repo:3:pull:5"), doc.Metadata.Links["pull"].Href)
	assert.Equal(t, processor.URN("urn:repo:3:pull:5:comment:9"), doc.Metadata.Links["comment"].Href)

	var pullPush, commentPush *push
	for i := range queue.pushes {
		switch queue.pushes[i].req.Type {
		case "pull":
			pullPush = &queue.pushes[i]
		case "pull_comment":
			commentPush = &queue.pushes[i]
		}
	}
	require.NotNil(t, pullPush)
	assert.Equal(t, "https://api.github.com/repos/o/r/pulls/5", pullPush.req.URL)
	require.NotNil(t, commentPush)
	assert.Equal(t, "https://api.github.com/repos/o/r/pulls/comments/9", commentPush.req.URL)
}

// A policy that excludes a request prevents every link and enqueue the
// handler would otherwise have produced.
func TestPolicyGating(t *testing.T) {
	queue := &capturingQueue{}
	p := newTestProcessor(t, queue, nil)

	req := processor.NewRequest("org", "https://api.github.com/orgs/acme",
		processor.Context{}, processor.PolicyFunc(func(*processor.Request, string) bool { return false }))
	req.Document = processor.NewObjectDocument(map[string]any{
		"id":  float64(7),
		"url": "https://api.github.com/orgs/acme",
	})

	doc, err := p.Process(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, doc.Metadata.Links)
	assert.Empty(t, queue.pushes)
	assert.NotNil(t, req.Skip)
	assert.Equal(t, "excluded", req.Skip.Kind)
}

// Every processed document's self URN is well-formed.
func TestSelfLinkWellFormedness(t *testing.T) {
	queue := &capturingQueue{}
	p := newTestProcessor(t, queue, nil)

	req := processor.NewRequest("user", "https://api.github.com/users/acme", processor.Context{}, nil)
	req.Document = processor.NewObjectDocument(map[string]any{
		"id":        float64(7),
		"url":       "https://api.github.com/users/acme",
		"repos_url": "https://api.github.com/users/acme/repos",
	})

	doc, err := p.Process(context.Background(), req)
	require.NoError(t, err)
	self := doc.Metadata.Links["self"]
	assert.True(t, self.Href.IsWellFormed())
}

// A request with no registered handler is skipped, not an error.
func TestUnknownTypeSkips(t *testing.T) {
	queue := &capturingQueue{}
	p := newTestProcessor(t, queue, nil)

	req := processor.NewRequest("gollum", "https://example.invalid", processor.Context{}, nil)
	req.Document = processor.NewObjectDocument(map[string]any{"id": float64(1)})

	_, err := p.Process(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, req.Skip)
	assert.Equal(t, "no handler", req.Skip.Kind)
}
