package processor

import (
	"context"
	"strings"
)

// handleCommit records a commit keyed by sha rather than id, its parent
// repo (URN equal to the qualifier), and its author/committer.
func (p *Processor) handleCommit(_ context.Context, req *Request) error {
	if err := req.AddSelfLink("sha"); err != nil {
		return err
	}
	req.LinkSiblings(req.Qualifier().Extend("commits"))

	if url, ok := req.stringField("url"); ok {
		if idx := strings.Index(url, "/commits/"); idx >= 0 {
			repoURL := url[:idx]
			if err := req.AddRoot("repo", TypeRepo, WithURL(repoURL), WithURN(req.Qualifier())); err != nil {
				return err
			}
		}
	}

	if err := req.AddRoot("author", TypeUser); err != nil {
		return err
	}
	if err := req.AddRoot("committer", TypeUser); err != nil {
		return err
	}

	if p.cfg.scrubCommitPatches() {
		scrubPatches(req.Document.Object["files"])
	}
	return nil
}

// scrubPatches removes the "patch" field from every file entry. Diffs can
// dwarf the rest of the document; Config.ScrubCommitPatches gates this.
func scrubPatches(files any) {
	arr, ok := files.([]any)
	if !ok {
		return
	}
	for _, f := range arr {
		if m, ok := f.(map[string]any); ok {
			delete(m, "patch")
		}
	}
}
