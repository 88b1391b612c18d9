package sync

import (
	"context"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/notesync/internal/issue"
)

// Notifier receives per-issue and per-run outcome notifications. Skipped
// issues are silent.
type Notifier interface {
	IssueCreated(ctx context.Context, n issue.Normalized)
	IssueUpdated(ctx context.Context, n issue.Normalized)
	RunFailed(ctx context.Context, err error)
}

// logNotifier is the default Notifier; it writes one log line per event.
type logNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier returns a Notifier backed by the given logger.
func NewLogNotifier(logger *zap.Logger) Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &logNotifier{logger: logger}
}

func (n *logNotifier) IssueCreated(ctx context.Context, iss issue.Normalized) {
	n.logger.Info("issue created",
		zap.String("issue", iss.References.Full),
		zap.String("filename", iss.Filename))
}

func (n *logNotifier) IssueUpdated(ctx context.Context, iss issue.Normalized) {
	n.logger.Info("issue updated",
		zap.String("issue", iss.References.Full),
		zap.String("filename", iss.Filename))
}

func (n *logNotifier) RunFailed(ctx context.Context, err error) {
	n.logger.Error("failed to update issues", zap.Error(err))
}
