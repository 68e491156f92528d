// Package notify is the seam to the external notification collaborator.
// Delivery is best effort: callers log failures and move on.
package notify

import (
	"context"

	"go.uber.org/zap"
)

type Notifier interface {
	Notify(ctx context.Context, toAddress, subject, body string) error
}

// LogNotifier writes notifications to the log instead of delivering them.
// It stands in wherever no real delivery backend is configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, toAddress, subject, body string) error {
	n.log.Info("notification",
		zap.String("to", toAddress),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}
