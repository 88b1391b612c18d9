// Package decorate enriches markdown issue links with fetched summary
// cards.
//
// The scan is synchronous; each matched link then resolves independently
// of the others. A link whose fetch fails is left exactly as written —
// one log line, nothing surfaced to the reader.
package decorate

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/notesync/internal/gitlab"
)

// maxDescriptionLen caps the description shown on a summary card.
const maxDescriptionLen = 200

var (
	// linkPattern matches inline markdown links with an http(s) address.
	linkPattern = regexp.MustCompile(`\[([^\]]*)\]\((https?://[^)\s]+)\)`)

	// issuePathPattern matches the tracker's issue URL shape:
	// /<project-path>/-/issues/<number>.
	issuePathPattern = regexp.MustCompile(`^/(.+)/-/issues/(\d+)$`)
)

// Link is one matched tracker issue link inside a content block.
type Link struct {
	Text        string
	URL         string
	ProjectPath string
	IID         int

	start, end int
}

// Decorator replaces tracker issue links with summary cards.
type Decorator struct {
	host   string
	client gitlab.Client
	logger *zap.Logger
	now    func() time.Time
}

// New creates a decorator bound to the tracker at trackerURL. Links whose
// host differs are never touched.
func New(trackerURL string, client gitlab.Client, logger *zap.Logger) (*Decorator, error) {
	if client == nil {
		return nil, fmt.Errorf("gitlab client is required")
	}
	u, err := url.Parse(trackerURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid tracker URL %q", trackerURL)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decorator{host: u.Host, client: client, logger: logger, now: time.Now}, nil
}

// Scan returns the tracker issue links found in content, in order.
func (d *Decorator) Scan(content string) []Link {
	var links []Link
	for _, m := range linkPattern.FindAllStringSubmatchIndex(content, -1) {
		text := content[m[2]:m[3]]
		address := content[m[4]:m[5]]

		u, err := url.Parse(address)
		if err != nil || u.Host != d.host {
			continue
		}
		pm := issuePathPattern.FindStringSubmatch(u.Path)
		if pm == nil {
			continue
		}
		iid, err := strconv.Atoi(pm[2])
		if err != nil {
			continue
		}

		links = append(links, Link{
			Text:        text,
			URL:         address,
			ProjectPath: pm[1],
			IID:         iid,
			start:       m[0],
			end:         m[1],
		})
	}
	return links
}

// Decorate replaces every tracker issue link in content with a fetched
// summary card. Each link resolves in its own task with no shared state;
// links that fail to resolve stay as written.
func (d *Decorator) Decorate(ctx context.Context, content string) string {
	links := d.Scan(content)
	if len(links) == 0 {
		return content
	}

	// Each task owns exactly one slot.
	cards := make([]string, len(links))
	var wg sync.WaitGroup
	for i, link := range links {
		wg.Add(1)
		go func() {
			defer wg.Done()
			iss, err := d.client.GetIssue(ctx, link.ProjectPath, link.IID)
			if err != nil {
				d.logger.Warn("failed to resolve issue link",
					zap.String("url", link.URL), zap.Error(err))
				return
			}
			cards[i] = renderCard(iss, d.now())
		}()
	}
	wg.Wait()

	// Splice back to front so earlier offsets stay valid.
	out := content
	for i := len(links) - 1; i >= 0; i-- {
		if cards[i] == "" {
			continue
		}
		out = out[:links[i].start] + cards[i] + out[links[i].end:]
	}
	return out
}

// renderCard formats one issue as a blockquote summary card.
func renderCard(iss *gitlab.Issue, now time.Time) string {
	badge := "OPEN"
	if iss.State == gitlab.StateClosed {
		badge = "CLOSED"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "> **[%s]** [%s](%s) %s\n", badge, iss.Title, iss.WebURL, iss.References.Full)
	fmt.Fprintf(&b, "> created %s, updated %s, by %s\n",
		FormatRelative(iss.CreatedAt, now), FormatRelative(iss.UpdatedAt, now), iss.Author.Name)

	if len(iss.Assignees) > 0 {
		names := make([]string, 0, len(iss.Assignees))
		for _, a := range iss.Assignees {
			names = append(names, a.Name)
		}
		fmt.Fprintf(&b, "> assignees: %s\n", strings.Join(names, ", "))
	}
	if len(iss.Labels) > 0 {
		fmt.Fprintf(&b, "> labels: %s\n", strings.Join(iss.Labels, ", "))
	}

	if desc := truncate(strings.TrimSpace(iss.Description)); desc != "" {
		fmt.Fprintf(&b, "> %s\n", strings.ReplaceAll(desc, "\n", "\n> "))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// truncate caps a description at maxDescriptionLen runes with an
// ellipsis marker.
func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxDescriptionLen {
		return s
	}
	return string(runes[:maxDescriptionLen]) + "..."
}
