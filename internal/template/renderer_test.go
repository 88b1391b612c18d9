package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/notesync/internal/gitlab"
	"github.com/fyrsmithlabs/notesync/internal/issue"
)

func sampleIssue() issue.Normalized {
	return issue.Normalize(gitlab.Issue{
		ID:          501,
		IID:         1,
		Title:       "Bug A",
		Description: "it breaks",
		State:       gitlab.StateOpened,
		WebURL:      "https://gitlab.example.com/group/proj/-/issues/1",
		References:  gitlab.References{Short: "#1", Full: "group/proj#1"},
		DueDate:     "2026-02-01",
	})
}

func TestRender_DefaultTemplateRoundTrip(t *testing.T) {
	r, err := NewRenderer("", nil)
	require.NoError(t, err)

	doc, err := r.Render(sampleIssue())
	require.NoError(t, err)

	// Frontmatter derived from rendered content must carry the issue's
	// identity back out.
	assert.Equal(t, 501, doc.Frontmatter["id"])
	assert.Equal(t, "https://gitlab.example.com/group/proj/-/issues/1", doc.Frontmatter["web_url"])
	assert.Equal(t, "Bug A", doc.Frontmatter["title"])
	assert.Equal(t, "group/proj#1", doc.Frontmatter["project"])
	assert.Equal(t, "2026-02-01", doc.Frontmatter["due_date"])

	assert.Contains(t, doc.Content, "it breaks")
}

func TestRender_UserTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tpl.md")
	require.NoError(t, os.WriteFile(path, []byte("---\niid: {{iid}}\n---\n# {{{title}}}\n"), 0o644))

	r, err := NewRenderer(path, nil)
	require.NoError(t, err)

	doc, err := r.Render(sampleIssue())
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Frontmatter["iid"])
	assert.Contains(t, doc.Content, "# Bug A")
}

func TestNewRenderer_MissingUserTemplateFallsBack(t *testing.T) {
	r, err := NewRenderer(filepath.Join(t.TempDir(), "nope.md"), nil)
	require.NoError(t, err)

	doc, err := r.Render(sampleIssue())
	require.NoError(t, err)
	assert.Equal(t, 501, doc.Frontmatter["id"])
}

func TestNewRenderer_UnparseableUserTemplateFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.md")
	require.NoError(t, os.WriteFile(path, []byte("{{#if}}"), 0o644))

	r, err := NewRenderer(path, nil)
	require.NoError(t, err)

	doc, err := r.Render(sampleIssue())
	require.NoError(t, err)
	assert.Equal(t, 501, doc.Frontmatter["id"])
}
