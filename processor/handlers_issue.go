package processor

import "context"

// handleIssue records an issue's assignee set, user/assignee/closed_by
// roots, comment collection, and — for issues that are PRs — the
// pull_request twin keyed by the issue's own id.
func (p *Processor) handleIssue(_ context.Context, req *Request) error {
	if err := req.AddSelfLink("id"); err != nil {
		return err
	}
	req.LinkSiblings(req.Qualifier().Extend("issues"))

	if assignees, ok := req.Document.Object["assignees"].([]any); ok && len(assignees) > 0 {
		hrefs := make([]URN, 0, len(assignees))
		for _, raw := range assignees {
			if a, ok := raw.(map[string]any); ok {
				if id, ok := idOf(a["id"]); ok {
					hrefs = append(hrefs, RootURN(TypeUser, id))
				}
			}
		}
		if len(hrefs) > 0 {
			req.LinkResource("assignees", hrefs...)
		}
	}

	for _, name := range []string{"user", "assignee", "closed_by"} {
		if err := req.AddRoot(name, TypeUser); err != nil {
			return err
		}
	}
	if url, ok := req.stringField("repository_url"); ok {
		if err := req.AddRoot("repo", TypeRepo, WithURL(url), WithURN(req.Qualifier())); err != nil {
			return err
		}
	}

	if url, ok := req.stringField("comments_url"); ok {
		if err := req.AddCollection("issue_comments", "issue_comment", WithURL(url)); err != nil {
			return err
		}
	}

	if pr, ok := req.nestedObject("pull_request"); ok {
		if url, ok := pr["url"].(string); ok {
			id, ok := req.idField("id")
			if !ok {
				return NewFieldError("id", req.Type)
			}
			if err := req.AddResource("pull_request", "pull_request", id, WithURL(url)); err != nil {
				return err
			}
		}
	}
	return nil
}
