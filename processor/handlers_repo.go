package processor

import "context"

// handleRepo records a repo's owner/organization roots, its teams/
// collaborators/contributors/subscribers relations, and its issues and
// commits collections.
func (p *Processor) handleRepo(_ context.Context, req *Request) error {
	if err := req.AddRootSelfLink(); err != nil {
		return err
	}

	if owner, ok := req.nestedObject("owner"); ok {
		if id, ok := idOf(owner["id"]); ok {
			req.LinkSiblings(RootURN(TypeUser, id).Extend("repos"))
		}
	}

	req.AddEmptyCollection("pull_requests")

	if err := req.AddRoot("owner", TypeUser); err != nil {
		return err
	}
	if _, ok := req.nestedObject("organization"); ok {
		if err := req.AddRoot("organization", TypeOrg); err != nil {
			return err
		}
	}

	if err := req.AddRelation("teams", TypeTeam); err != nil {
		return err
	}
	if url, ok := req.stringField("collaborators_url"); ok {
		if err := req.AddRelation("collaborators", TypeUser, WithURL(stripTemplate(url))); err != nil {
			return err
		}
	}
	if err := req.AddRelation("contributors", TypeUser); err != nil {
		return err
	}
	if err := req.AddRelation("subscribers", TypeUser); err != nil {
		return err
	}

	if url, ok := req.stringField("issues_url"); ok {
		if err := req.AddCollection("issues", "issue", WithURL(stripTemplate(url))); err != nil {
			return err
		}
	}
	if url, ok := req.stringField("commits_url"); ok {
		if err := req.AddCollection("commits", "commit", WithURL(stripTemplate(url))); err != nil {
			return err
		}
	}

	if private, ok := req.Document.Object["private"].(bool); ok && private {
		req.Context.RepoType = "private"
	}
	return nil
}
