// Package issue normalizes raw tracker records for rendering.
//
// A Normalized issue exists only for the duration of one reconciliation
// pass: it is built from exactly one remote record, consumed once by the
// template renderer, then discarded.
package issue

import (
	"strings"

	"github.com/fyrsmithlabs/notesync/internal/gitlab"
)

// dateLayout is the format used for timestamps exposed to templates.
const dateLayout = "2006-01-02 15:04"

// Normalized is a remote issue plus its derived, filesystem-safe note
// filename (without the .md extension).
type Normalized struct {
	gitlab.Issue
	Filename string
}

// Normalize derives the local representation of one remote record. The
// filename comes from the sanitized title, falling back to the full
// reference when the title sanitizes away to nothing.
func Normalize(raw gitlab.Issue) Normalized {
	name := Sanitize(raw.Title)
	if name == "" {
		name = Sanitize(raw.References.Full)
	}
	return Normalized{Issue: raw, Filename: name}
}

// sanitizer strips colons and replaces the remaining characters that are
// unsafe in note filenames with a hyphen.
var sanitizer = strings.NewReplacer(
	":", "",
	"*", "-",
	`"`, "-",
	"/", "-",
	`\`, "-",
	"<", "-",
	">", "-",
	"|", "-",
	"?", "-",
)

// Sanitize makes a title safe for use as a note filename.
func Sanitize(name string) string {
	return strings.TrimSpace(sanitizer.Replace(name))
}

// TemplateContext returns the fields exposed to note templates.
func (n Normalized) TemplateContext() map[string]any {
	assignees := make([]string, 0, len(n.Assignees))
	for _, a := range n.Assignees {
		assignees = append(assignees, a.Name)
	}

	ctx := map[string]any{
		"id":          n.ID,
		"iid":         n.IID,
		"title":       n.Title,
		"description": n.Description,
		"state":       n.State,
		"web_url":     n.WebURL,
		"created_at":  n.CreatedAt.Format(dateLayout),
		"updated_at":  n.UpdatedAt.Format(dateLayout),
		"due_date":    n.DueDate,
		"author":      n.Author.Name,
		"assignees":   assignees,
		"labels":      n.Labels,
		"reference":   n.References.Short,
		"project":     n.References.Full,
		"filename":    n.Filename,
	}
	if n.Milestone != nil {
		ctx["milestone"] = n.Milestone.Title
	}
	return ctx
}
