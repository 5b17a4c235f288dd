package processor

import (
	"context"
	"strings"
)

// handleOrg records an org's identity and its user twin, repos collection,
// and members relation. The user reference reuses the org's own id: GitHub
// serves every org at a /users/ URL too.
func (p *Processor) handleOrg(_ context.Context, req *Request) error {
	if err := req.AddRootSelfLink(); err != nil {
		return err
	}
	req.LinkSiblings(URN("urn:orgs"))

	if url, ok := req.stringField("url"); ok {
		id, ok := req.idField("id")
		if !ok {
			return NewFieldError("id", req.Type)
		}
		userURL := strings.Replace(url, "/orgs/", "/users/", 1)
		if err := req.AddRoot("user", TypeUser, WithURL(userURL), WithURN(RootURN(TypeUser, id))); err != nil {
			return err
		}
	}

	if id, ok := req.idField("id"); ok {
		if err := req.AddCollection("repos", "repo", WithURN(RootURN(TypeUser, id).Extend("repos"))); err != nil {
			return err
		}
	}

	if membersURL, ok := req.stringField("members_url"); ok {
		if err := req.AddRelation("members", TypeUser, WithURL(stripTemplate(membersURL))); err != nil {
			return err
		}
	}
	return nil
}
