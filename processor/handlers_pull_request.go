package processor

import "context"

// handlePullRequest records a PR's user/merged_by/assignee roots, its
// head/base repos, its comment/status/commit collections, and — when the
// PR exposes a linked issue — the issue twin sharing the PR's id.
func (p *Processor) handlePullRequest(_ context.Context, req *Request) error {
	if err := req.AddSelfLink("id"); err != nil {
		return err
	}
	req.LinkSiblings(req.Qualifier().Extend("pull_requests"))

	for _, name := range []string{"user", "merged_by", "assignee"} {
		if err := req.AddRoot(name, TypeUser); err != nil {
			return err
		}
	}

	if err := req.addPullRequestSide("head"); err != nil {
		return err
	}
	if err := req.addPullRequestSide("base"); err != nil {
		return err
	}

	if url, ok := req.stringField("review_comments_url"); ok {
		if err := req.AddCollection("review_comments", "review_comment", WithURL(url)); err != nil {
			return err
		}
	}
	if url, ok := req.stringField("statuses_url"); ok {
		var urn URN
		if head, ok := req.nestedObject("head"); ok {
			if sha, ok := head["sha"].(string); ok {
				urn = req.Qualifier().Extend("commit", sha, "statuses")
			}
		}
		opts := []LinkOption{WithURL(url)}
		if urn != "" {
			opts = append(opts, WithURN(urn))
		}
		if err := req.AddCollection("statuses", "status", opts...); err != nil {
			return err
		}
	}
	if url, ok := req.stringField("commits_url"); ok {
		if err := req.AddCollection("commits", "commit", WithURL(url)); err != nil {
			return err
		}
	}

	if links, ok := req.nestedObject("_links"); ok {
		if _, ok := links["issue"]; ok {
			id, ok := req.idField("id")
			if !ok {
				return NewFieldError("id", req.Type)
			}
			issueCommentsURN := req.Qualifier().Extend("issue", id, "issue_comments")
			if commentsURL, ok := req.stringField("comments_url"); ok {
				if err := req.AddCollection("issue_comments", "issue_comment", WithURL(commentsURL), WithURN(issueCommentsURN)); err != nil {
					return err
				}
			}
			if issue, ok := links["issue"].(map[string]any); ok {
				if href, ok := issue["href"].(string); ok {
					if err := req.AddResource("issue", "issue", id, WithURL(href)); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// addPullRequestSide records a root repo reference derived from
// document[side].repo (head/base), keyed by the nested repo's own id.
func (r *Request) addPullRequestSide(side string) error {
	sideObj, ok := r.nestedObject(side)
	if !ok {
		return nil
	}
	repo, ok := sideObj["repo"].(map[string]any)
	if !ok || repo == nil {
		return nil
	}
	id, ok := idOf(repo["id"])
	if !ok {
		return NewFieldError(side+".repo.id", r.Type)
	}
	url, ok := repo["url"].(string)
	if !ok {
		return NewFieldError(side+".repo.url", r.Type)
	}
	r.LinkResource(side, RootURN(TypeRepo, id))
	return r.QueueRoot(TypeRepo, url)
}
