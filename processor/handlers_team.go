package processor

import "context"

// handleTeam records a team's organization root and its members and repos
// relations.
func (p *Processor) handleTeam(_ context.Context, req *Request) error {
	if err := req.AddRootSelfLink(); err != nil {
		return err
	}
	if org, ok := req.nestedObject("organization"); ok {
		if id, ok := idOf(org["id"]); ok {
			req.LinkSiblings(RootURN(TypeOrg, id).Extend("teams"))
		}
	}

	if err := req.AddRoot("organization", TypeOrg); err != nil {
		return err
	}

	if url, ok := req.stringField("members_url"); ok {
		if err := req.AddRelation("members", TypeUser, WithURL(stripTemplate(url))); err != nil {
			return err
		}
	}
	if url, ok := req.stringField("repositories_url"); ok {
		if err := req.AddRelation("repos", TypeRepo, WithURL(url)); err != nil {
			return err
		}
	}
	return nil
}
