package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/meshhq/ghcrawler/processor"
	"github.com/meshhq/ghcrawler/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryQueue_DrainsImmediateFirst(t *testing.T) {
	q := queue.NewMemoryQueue(4)
	ctx := context.Background()

	def := processor.NewRequest("repo", "https://api.github.com/repos/acme/x", processor.Context{}, nil)
	soon := processor.NewRequest("repo", "https://api.github.com/repos/acme/y", processor.Context{}, nil)
	imm := processor.NewRequest("repo", "https://api.github.com/repos/acme/z", processor.Context{}, nil)

	require.NoError(t, q.Push(ctx, processor.PriorityDefault, def))
	require.NoError(t, q.Push(ctx, processor.PrioritySoon, soon))
	require.NoError(t, q.Push(ctx, processor.PriorityImmediate, imm))

	first, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, imm.URL, first.URL)

	second, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, soon.URL, second.URL)

	third, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, def.URL, third.URL)
}

func TestMemoryQueue_PopBlocksUntilCanceled(t *testing.T) {
	q := queue.NewMemoryQueue(1)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := q.Pop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryQueue_Depths(t *testing.T) {
	q := queue.NewMemoryQueue(4)
	ctx := context.Background()

	req := processor.NewRequest("repo", "https://api.github.com/repos/acme/x", processor.Context{}, nil)
	require.NoError(t, q.Push(ctx, processor.PrioritySoon, req))

	depths := q.Depths()
	assert.Equal(t, 0, depths[processor.PriorityImmediate])
	assert.Equal(t, 1, depths[processor.PrioritySoon])
	assert.Equal(t, 0, depths[processor.PriorityDefault])
}
