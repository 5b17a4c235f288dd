package processor

import "context"

// handleIssueComment and handleReviewComment share the same shape,
// differing only in which *_comments collection the comment belongs to.
func (p *Processor) handleIssueComment(ctx context.Context, req *Request) error {
	return handleComment(req)
}

func (p *Processor) handleReviewComment(ctx context.Context, req *Request) error {
	return handleComment(req)
}

func handleComment(req *Request) error {
	if err := req.AddSelfLink("id"); err != nil {
		return err
	}
	req.LinkSiblings(req.Qualifier().Extend(string(req.Type) + "s"))
	return req.AddRoot("user", TypeUser)
}
