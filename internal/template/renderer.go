// Package template renders normalized issues into note content.
//
// Templates use Handlebars syntax. A user template file is honored when
// present and readable; otherwise the built-in default is used and the
// fallback is logged, never surfaced.
package template

import (
	"fmt"
	"os"

	"github.com/mailgun/raymond/v2"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/notesync/internal/issue"
	"github.com/fyrsmithlabs/notesync/internal/vault"
)

// defaultTemplate is used when no user template is configured or the
// configured file cannot be read or parsed. Triple-stache interpolation
// keeps markdown and YAML punctuation unescaped.
const defaultTemplate = `---
id: {{id}}
title: "{{{title}}}"
due_date: "{{due_date}}"
web_url: {{web_url}}
project: "{{{project}}}"
---

{{{description}}}
`

// RenderedDocument is the template output: full note content plus the
// frontmatter mapping derived from that content's leading block.
type RenderedDocument struct {
	Content     string
	Frontmatter map[string]any
}

// Renderer compiles one template and renders issues against it.
type Renderer struct {
	tpl    *raymond.Template
	logger *zap.Logger
}

// NewRenderer compiles the template at templateFile, or the built-in
// default when templateFile is empty, unreadable, or does not parse.
func NewRenderer(templateFile string, logger *zap.Logger) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	src := defaultTemplate
	if templateFile != "" {
		data, err := os.ReadFile(templateFile)
		if err != nil {
			logger.Warn("template file unreadable, using default template",
				zap.String("path", templateFile), zap.Error(err))
		} else {
			src = string(data)
		}
	}

	tpl, err := raymond.Parse(src)
	if err != nil {
		if src == defaultTemplate {
			return nil, fmt.Errorf("failed to parse default template: %w", err)
		}
		logger.Warn("template file does not parse, using default template",
			zap.String("path", templateFile), zap.Error(err))
		tpl = raymond.MustParse(defaultTemplate)
	}

	return &Renderer{tpl: tpl, logger: logger}, nil
}

// Render produces a note document for one issue. Frontmatter is derived
// from the rendered content, never stored independently.
func (r *Renderer) Render(n issue.Normalized) (*RenderedDocument, error) {
	content, err := r.tpl.Exec(n.TemplateContext())
	if err != nil {
		return nil, fmt.Errorf("failed to render template: %w", err)
	}
	fm, _ := vault.ExtractFrontmatter(content)
	return &RenderedDocument{Content: content, Frontmatter: fm}, nil
}
