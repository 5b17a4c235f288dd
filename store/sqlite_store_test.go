package store_test

import (
	"context"
	"testing"

	"github.com/meshhq/ghcrawler/processor"
	"github.com/meshhq/ghcrawler/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.OpenSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_PutAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := store.Document{
		URN:  processor.URN("urn:repo:9"),
		URL:  "https://api.github.com/repos/acme/x",
		Type: processor.ElementType("repo"),
		Etag: `"etag-1"`,
		Body: []byte(`{"id":9}`),
	}
	require.NoError(t, s.Put(ctx, doc))

	body, ok, err := s.Get(ctx, doc.URN)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, doc.Body, body)
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	s := openTestStore(t)
	_, ok, err := s.Get(context.Background(), processor.URN("urn:repo:404"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStore_EtagLookupByURL(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := store.Document{
		URN:  processor.URN("urn:repo:9"),
		URL:  "https://api.github.com/repos/acme/x",
		Type: processor.ElementType("repo"),
		Etag: `"etag-1"`,
		Body: []byte(`{"id":9}`),
	}
	require.NoError(t, s.Put(ctx, doc))

	etag, ok, err := s.Etag(ctx, doc.Type, doc.URL)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `"etag-1"`, etag)

	_, ok, err = s.Etag(ctx, doc.Type, "https://api.github.com/repos/acme/unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStore_PutUpsertsOnConflict(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	urn := processor.URN("urn:repo:9")
	require.NoError(t, s.Put(ctx, store.Document{
		URN: urn, URL: "https://api.github.com/repos/acme/x",
		Type: "repo", Etag: `"v1"`, Body: []byte(`{"id":9,"v":1}`),
	}))
	require.NoError(t, s.Put(ctx, store.Document{
		URN: urn, URL: "https://api.github.com/repos/acme/x",
		Type: "repo", Etag: `"v2"`, Body: []byte(`{"id":9,"v":2}`),
	}))

	body, ok, err := s.Get(ctx, urn)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"id":9,"v":2}`, string(body))

	etag, ok, err := s.Etag(ctx, "repo", "https://api.github.com/repos/acme/x")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `"v2"`, etag)
}
