package processor

import "context"

// handleUser records a user's identity and repos collection.
func (p *Processor) handleUser(_ context.Context, req *Request) error {
	if err := req.AddRootSelfLink(); err != nil {
		return err
	}
	req.LinkSiblings(URN("urn:users"))
	return req.AddCollection("repos", TypeRepo)
}
