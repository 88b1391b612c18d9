package gitlab

import "time"

// Issue states as reported by the API.
const (
	StateOpened = "opened"
	StateClosed = "closed"
)

// User identifies an issue author or assignee.
type User struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// References holds the short, relative and full reference forms of an
// issue (e.g. "#42", "proj#42", "group/proj#42").
type References struct {
	Short    string `json:"short"`
	Relative string `json:"relative"`
	Full     string `json:"full"`
}

// Milestone is the subset of milestone fields exposed to note templates.
type Milestone struct {
	Title string `json:"title"`
}

// Issue is a raw issue record as returned by the API. Records are
// immutable once fetched and never persisted directly.
type Issue struct {
	ID          int        `json:"id"`
	IID         int        `json:"iid"`
	ProjectID   int        `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	State       string     `json:"state"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	WebURL      string     `json:"web_url"`
	Author      User       `json:"author"`
	Assignees   []User     `json:"assignees"`
	Labels      []string   `json:"labels"`
	References  References `json:"references"`
	DueDate     string     `json:"due_date"` // "2006-01-02", empty when unset
	Milestone   *Milestone `json:"milestone"`
}
