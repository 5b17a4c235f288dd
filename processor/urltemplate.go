package processor

import (
	"fmt"
	"strings"
)

// Recognized GitHub URL template placeholders. The set is fixed and tiny,
// so this stays four strings.Replace calls rather than an RFC 6570
// URI-template engine.
const (
	templateMember       = "{/member}"
	templateCollaborator = "{/collaborator}"
	templateNumber       = "{/number}"
	templateSHA          = "{/sha}"
)

// stripTemplate removes every recognized placeholder from a URL, leaving
// the bare collection URL (e.g. members_url with "{/member}" stripped).
func stripTemplate(url string) string {
	for _, t := range []string{templateMember, templateCollaborator, templateNumber, templateSHA} {
		url = strings.ReplaceAll(url, t, "")
	}
	return url
}

// substituteNumber replaces the "{/number}" placeholder with an explicit
// id, as used by the event path's review-comment URL template.
func substituteNumber(url string, id any) string {
	return strings.ReplaceAll(url, templateNumber, fmt.Sprintf("/%v", id))
}
