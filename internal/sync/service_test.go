package sync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	stdsync "sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/notesync/internal/gitlab"
	"github.com/fyrsmithlabs/notesync/internal/issue"
	"github.com/fyrsmithlabs/notesync/internal/source"
	"github.com/fyrsmithlabs/notesync/internal/template"
	"github.com/fyrsmithlabs/notesync/internal/vault"
)

// mockClient implements gitlab.Client for tests.
type mockClient struct {
	listFunc func(target source.RequestTarget) ([]gitlab.Issue, error)
}

func (m *mockClient) ListIssues(ctx context.Context, target source.RequestTarget) ([]gitlab.Issue, error) {
	return m.listFunc(target)
}

func (m *mockClient) GetIssue(ctx context.Context, projectPath string, iid int) (*gitlab.Issue, error) {
	return nil, errors.New("not implemented")
}

// recordingNotifier captures notification events.
type recordingNotifier struct {
	mu      stdsync.Mutex
	created []string
	updated []string
	failed  []error
}

func (r *recordingNotifier) IssueCreated(ctx context.Context, n issue.Normalized) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, n.Filename)
}

func (r *recordingNotifier) IssueUpdated(ctx context.Context, n issue.Normalized) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated = append(r.updated, n.Filename)
}

func (r *recordingNotifier) RunFailed(ctx context.Context, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, err)
}

func bugA() gitlab.Issue {
	return gitlab.Issue{
		ID:          501,
		IID:         1,
		Title:       "Bug A",
		Description: "it breaks",
		State:       gitlab.StateOpened,
		WebURL:      "https://gitlab.example.com/group/proj/-/issues/1",
		References:  gitlab.References{Short: "#1", Full: "group/proj#1"},
	}
}

func newTestService(t *testing.T, cfg *Config, client gitlab.Client, notifier Notifier) (Service, *vault.Store) {
	t.Helper()
	store, err := vault.NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	renderer, err := template.NewRenderer("", nil)
	require.NoError(t, err)
	svc, err := New(cfg, client, store, renderer, notifier, nil)
	require.NoError(t, err)
	return svc, store
}

func TestNew_RequiredDependencies(t *testing.T) {
	_, err := New(nil, nil, nil, nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config is required")

	_, err = New(&Config{}, nil, nil, nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client is required")
}

func TestRun_CreatesNewIssueFile(t *testing.T) {
	client := &mockClient{listFunc: func(target source.RequestTarget) ([]gitlab.Issue, error) {
		return []gitlab.Issue{bugA()}, nil
	}}
	notifier := &recordingNotifier{}
	svc, store := newTestService(t, &Config{Level: source.LevelProject, Targets: "9"}, client, notifier)

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Zero(t, res.Updated)
	assert.Zero(t, res.Failed)

	require.True(t, store.Exists("Bug A.md"))
	content, err := store.Read("Bug A.md")
	require.NoError(t, err)
	fm, _ := vault.ExtractFrontmatter(content)
	assert.Equal(t, 501, fm["id"])

	assert.Equal(t, []string{"Bug A"}, notifier.created)
	assert.Empty(t, notifier.updated)
}

func TestRun_SecondRunIsIdempotent(t *testing.T) {
	client := &mockClient{listFunc: func(target source.RequestTarget) ([]gitlab.Issue, error) {
		return []gitlab.Issue{bugA()}, nil
	}}
	svc, store := newTestService(t, &Config{Level: source.LevelProject, Targets: "9"}, client, nil)

	_, err := svc.Run(context.Background())
	require.NoError(t, err)
	first, err := store.Read("Bug A.md")
	require.NoError(t, err)

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Created)
	assert.Zero(t, res.Updated)
	assert.Equal(t, 1, res.Skipped)

	second, err := store.Read("Bug A.md")
	require.NoError(t, err)
	assert.Equal(t, first, second, "unchanged remote data must produce zero writes")
}

func TestRun_ChangedFrontmatterMergesInPlace(t *testing.T) {
	changed := bugA()
	changed.Title = "Bug A v2"

	client := &mockClient{listFunc: func(target source.RequestTarget) ([]gitlab.Issue, error) {
		return []gitlab.Issue{changed}, nil
	}}
	notifier := &recordingNotifier{}
	svc, store := newTestService(t, &Config{Level: source.LevelProject, Targets: "9"}, client, notifier)

	// Existing note at the issue's filename, still carrying the old title
	// and a hand-written body.
	existing := "---\nid: 501\ntitle: \"Bug A\"\nweb_url: https://gitlab.example.com/group/proj/-/issues/1\n---\n\nmy own notes below\n"
	require.NoError(t, store.Write("Bug A v2.md", existing))

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	assert.Zero(t, res.Created)

	content, err := store.Read("Bug A v2.md")
	require.NoError(t, err)
	fm, body := vault.ExtractFrontmatter(content)
	assert.Equal(t, "Bug A v2", fm["title"])
	assert.Equal(t, 501, fm["id"])
	assert.Contains(t, body, "my own notes below", "body below frontmatter stays untouched")

	assert.Equal(t, []string{"Bug A v2"}, notifier.updated)
}

func TestRun_PurgeDeletesBeforeWriting(t *testing.T) {
	client := &mockClient{listFunc: func(target source.RequestTarget) ([]gitlab.Issue, error) {
		return []gitlab.Issue{bugA()}, nil
	}}
	svc, store := newTestService(t, &Config{Level: source.LevelProject, Targets: "9", Purge: true}, client, nil)

	for _, name := range []string{"stale1.md", "stale2.md", "unrelated.txt"} {
		require.NoError(t, store.Write(name, "old"))
	}

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Purged)
	assert.Equal(t, 1, res.Created)

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"Bug A.md"}, names)
}

func TestRun_CustomScopeFlattensInTargetOrder(t *testing.T) {
	second := bugA()
	second.ID = 502
	second.IID = 2
	second.Title = "Bug B"

	client := &mockClient{listFunc: func(target source.RequestTarget) ([]gitlab.Issue, error) {
		if target.Scope == source.ScopeProject {
			return []gitlab.Issue{bugA()}, nil
		}
		return []gitlab.Issue{second}, nil
	}}
	svc, store := newTestService(t, &Config{Level: source.LevelCustom, Targets: "P:9, G:4"}, client, nil)

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Issues)
	assert.Equal(t, 2, res.Created)
	assert.True(t, store.Exists("Bug A.md"))
	assert.True(t, store.Exists("Bug B.md"))
}

func TestRun_CustomScopeFailsWhollyOnAnyTargetFailure(t *testing.T) {
	client := &mockClient{listFunc: func(target source.RequestTarget) ([]gitlab.Issue, error) {
		if target.Scope == source.ScopeGroup {
			return nil, &gitlab.StatusError{Status: 500}
		}
		return []gitlab.Issue{bugA()}, nil
	}}
	notifier := &recordingNotifier{}
	svc, store := newTestService(t, &Config{Level: source.LevelCustom, Targets: "P:9, G:4"}, client, notifier)

	_, err := svc.Run(context.Background())
	require.Error(t, err)

	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names, "no partial success: nothing written when any target fails")
	require.Len(t, notifier.failed, 1)
}

func TestRun_InvalidSourceSpecFailsRun(t *testing.T) {
	client := &mockClient{listFunc: func(target source.RequestTarget) ([]gitlab.Issue, error) {
		t.Error("must not fetch with an invalid source spec")
		return nil, nil
	}}
	svc, _ := newTestService(t, &Config{Level: source.LevelCustom, Targets: "X:1"}, client, nil)

	_, err := svc.Run(context.Background())
	assert.ErrorIs(t, err, source.ErrInvalidSourceSpec)
}

func TestRun_PerIssueFailureDoesNotAbortRun(t *testing.T) {
	second := bugA()
	second.ID = 502
	second.IID = 2
	second.Title = "Bug B"

	client := &mockClient{listFunc: func(target source.RequestTarget) ([]gitlab.Issue, error) {
		return []gitlab.Issue{bugA(), second}, nil
	}}
	svc, store := newTestService(t, &Config{Level: source.LevelProject, Targets: "9"}, client, nil)

	// A directory squatting on the first issue's path makes its write
	// fail while the second issue still reconciles.
	require.NoError(t, os.Mkdir(filepath.Join(store.Dir(), "Bug A.md"), 0o755))

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Created)
	assert.True(t, store.Exists("Bug B.md"))
}

func TestTryRun_DropsOverlappingTrigger(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var startOnce stdsync.Once
	client := &mockClient{listFunc: func(target source.RequestTarget) ([]gitlab.Issue, error) {
		startOnce.Do(func() { close(started) })
		<-release
		return nil, nil
	}}
	svc, _ := newTestService(t, &Config{Level: source.LevelPersonal}, client, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := svc.TryRun(context.Background())
		assert.NoError(t, err)
	}()

	<-started
	assert.True(t, svc.Running())

	_, err := svc.TryRun(context.Background())
	assert.ErrorIs(t, err, ErrRunInFlight)

	close(release)
	<-done
	assert.False(t, svc.Running())

	// The gate is free again after the first run finishes.
	_, err = svc.TryRun(context.Background())
	assert.NoError(t, err)
}

func TestLastResult(t *testing.T) {
	client := &mockClient{listFunc: func(target source.RequestTarget) ([]gitlab.Issue, error) {
		return []gitlab.Issue{bugA()}, nil
	}}
	svc, _ := newTestService(t, &Config{Level: source.LevelPersonal}, client, nil)

	assert.Nil(t, svc.LastResult())

	res, err := svc.Run(context.Background())
	require.NoError(t, err)

	last := svc.LastResult()
	require.NotNil(t, last)
	assert.Equal(t, res.RunID, last.RunID)
}
