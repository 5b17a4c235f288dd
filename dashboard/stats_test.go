package dashboard_test

import (
	"sync"
	"testing"

	"github.com/meshhq/ghcrawler/dashboard"
	"github.com/stretchr/testify/assert"
)

func TestStats_Snapshot(t *testing.T) {
	s := dashboard.NewStats()

	s.IncProcessed("repo")
	s.IncProcessed("repo")
	s.IncProcessed("commit")
	s.IncSkipped("excluded")
	s.IncFailed()

	snap := s.Snapshot()
	assert.Equal(t, int64(2), snap.ProcessedByType["repo"])
	assert.Equal(t, int64(1), snap.ProcessedByType["commit"])
	assert.Equal(t, int64(1), snap.SkippedByKind["excluded"])
	assert.Equal(t, int64(1), snap.Failed)
}

func TestStats_ConcurrentIncrements(t *testing.T) {
	s := dashboard.NewStats()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.IncProcessed("repo")
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), s.Snapshot().ProcessedByType["repo"])
}

func TestStats_SnapshotIsIndependentCopy(t *testing.T) {
	s := dashboard.NewStats()
	s.IncProcessed("repo")

	snap := s.Snapshot()
	snap.ProcessedByType["repo"] = 999

	assert.Equal(t, int64(1), s.Snapshot().ProcessedByType["repo"])
}
