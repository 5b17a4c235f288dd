package processor

import "context"

// registerEventHandlers populates the handler registry with one entry per
// GitHub event type. Event types form a closed enumeration; an event type
// not in this map is skipped, handled uniformly by Processor.resolveHandler.
func (p *Processor) registerEventHandlers() {
	simple := map[ElementType]struct {
		field string
		typ   ElementType
	}{
		"CommitCommentEvent": {"comment", "commit_comment"},
		"DeploymentEvent":    {"deployment", "deployment"},
		"ForkEvent":          {"forkee", TypeRepo},
		"IssuesEvent":        {"issue", "issue"},
		"MilestoneEvent":     {"milestone", "milestone"},
		"PullRequestEvent":   {"pull_request", "pull_request"},
	}
	for evType, entry := range simple {
		field, typ := entry.field, entry.typ
		p.handlers[evType] = func(_ context.Context, req *Request) error {
			_, repo, _ := EventBasics(req)
			EventResource(req, repo, field, typ)
			return nil
		}
	}

	// Events with no single nested fetchable resource: basics only.
	for _, evType := range []ElementType{
		"CreateEvent", "DeleteEvent", "GollumEvent", "PublicEvent", "PushEvent",
	} {
		p.handlers[evType] = func(_ context.Context, req *Request) error {
			EventBasics(req)
			return nil
		}
	}

	p.handlers["IssueCommentEvent"] = p.handleIssueCommentEvent
	p.handlers["LabelEvent"] = p.handleLabelEvent
	p.handlers["MemberEvent"] = p.handleMemberEvent
	p.handlers["MembershipEvent"] = p.handleMembershipEvent
	p.handlers["DeploymentStatusEvent"] = p.handleDeploymentStatusEvent
	p.handlers["PageBuildEvent"] = p.handlePageBuildEvent
	p.handlers["PullRequestReviewEvent"] = p.handlePullRequestReviewEvent
	p.handlers["PullRequestReviewCommentEvent"] = p.handlePullRequestReviewCommentEvent
}

func (p *Processor) handleIssueCommentEvent(_ context.Context, req *Request) error {
	_, repo, _ := EventBasics(req)
	EventResource(req, repo, "issue", "issue")
	EventResource(req, repo, "comment", "issue_comment")
	return nil
}

func (p *Processor) handleLabelEvent(_ context.Context, req *Request) error {
	_, repo, payload := EventBasics(req)
	if label, ok := payload["label"].(map[string]any); ok {
		if name, ok := label["name"].(string); ok {
			urn := RootURN(TypeRepo, repo).Extend("label", name)
			req.LinkResource("label", urn)
		}
	}
	return nil
}

func (p *Processor) handleMemberEvent(_ context.Context, req *Request) error {
	_, repo, _ := EventBasics(req)
	EventResource(req, repo, "member", TypeUser)
	return nil
}

// handleMembershipEvent rewrites self to a team-scoped URN and adds
// member/team/organization resources.
func (p *Processor) handleMembershipEvent(_ context.Context, req *Request) error {
	EventBasics(req)
	payload := req.Payload

	team, ok := payload["team"].(map[string]any)
	if !ok {
		return nil
	}
	teamID, ok := idOf(team["id"])
	if !ok {
		return nil
	}
	eventID, _ := idOf(payload["id"])
	teamURN := RootURN(TypeTeam, teamID)
	req.linkSelf(teamURN.Extend(string(req.Type), eventID))

	if teamURL, ok := team["url"].(string); ok {
		req.LinkResource("team", teamURN)
		_ = req.QueueRoot(TypeTeam, teamURL)
	}
	if org, ok := payload["organization"].(map[string]any); ok {
		if orgID, ok := idOf(org["id"]); ok {
			req.LinkResource("organization", RootURN(TypeOrg, orgID))
			if orgURL, ok := org["url"].(string); ok {
				_ = req.QueueRoot(TypeOrg, orgURL)
			}
		}
	}
	EventResource(req, nil, "member", TypeUser)
	return nil
}

// handleDeploymentStatusEvent additionally records a deployment_status URN
// nested under the deployment's own URN.
func (p *Processor) handleDeploymentStatusEvent(_ context.Context, req *Request) error {
	_, repo, payload := EventBasics(req)
	EventResource(req, repo, "deployment", "deployment")

	deployment, ok := payload["deployment"].(map[string]any)
	if !ok {
		return nil
	}
	deploymentID, ok := idOf(deployment["id"])
	if !ok {
		return nil
	}
	status, ok := payload["deployment_status"].(map[string]any)
	if !ok {
		return nil
	}
	statusID, ok := idOf(status["id"])
	if !ok {
		return nil
	}
	urn := RootURN(TypeRepo, repo).Extend("deployment", deploymentID, "deployment_status", statusID)
	req.LinkResource("deployment_status", urn)
	return nil
}

// handlePageBuildEvent links the page build and enqueues its build URL.
func (p *Processor) handlePageBuildEvent(_ context.Context, req *Request) error {
	_, repo, _ := EventBasics(req)
	EventResource(req, repo, "build", "page_build")
	return nil
}

// handlePullRequestReviewEvent links the review/pull request and enqueues
// the parent pull request and the review comments URL, substituting the
// review id into the "{/number}" URL template.
func (p *Processor) handlePullRequestReviewEvent(_ context.Context, req *Request) error {
	_, repo, payload := EventBasics(req)

	pr, ok := payload["pull_request"].(map[string]any)
	if !ok {
		return nil
	}
	prID, ok := idOf(pr["id"])
	if !ok {
		return nil
	}
	pullURN := RootURN(TypeRepo, repo).Extend("pull", prID)
	req.LinkResource("pull", pullURN)
	if url, ok := pr["url"].(string); ok {
		_ = req.QueueRoot("pull_request", url)
	}

	review, ok := payload["review"].(map[string]any)
	if !ok {
		return nil
	}
	reviewID, ok := idOf(review["id"])
	if !ok {
		return nil
	}
	req.LinkResource("review", pullURN.Extend("review", reviewID))

	if tmpl, ok := pr["review_comment_url"].(string); ok {
		_ = req.QueueRoot("review_comments", substituteNumber(tmpl, reviewID))
	}
	return nil
}

// handlePullRequestReviewCommentEvent links the review comment/parent pull
// request and enqueues both.
func (p *Processor) handlePullRequestReviewCommentEvent(_ context.Context, req *Request) error {
	_, repo, payload := EventBasics(req)

	pr, ok := payload["pull_request"].(map[string]any)
	if !ok {
		return nil
	}
	prID, ok := idOf(pr["id"])
	if !ok {
		return nil
	}
	pullURN := RootURN(TypeRepo, repo).Extend("pull", prID)
	req.LinkResource("pull", pullURN)
	if url, ok := pr["url"].(string); ok {
		_ = req.QueueRoot("pull", url)
	}

	comment, ok := payload["comment"].(map[string]any)
	if !ok {
		return nil
	}
	commentID, ok := idOf(comment["id"])
	if !ok {
		return nil
	}
	req.LinkResource("comment", pullURN.Extend("comment", commentID))
	if url, ok := comment["url"].(string); ok {
		_ = req.QueueRoot("pull_comment", url)
	}
	return nil
}
