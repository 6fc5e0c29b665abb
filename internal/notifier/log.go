package notifier

import (
	"context"
	"log/slog"

	"usajobs-watch/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier is used when no webhook is configured: every message that
// would have been delivered is logged instead.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that writes messages to the logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send logs the message. It never fails.
func (n *LogNotifier) Send(_ context.Context, message string) error {
	n.logger.Info("webhook disabled, logging notification", "message", message)
	return nil
}
