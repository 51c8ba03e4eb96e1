// Package notify carries account events to the outside world. Real mail
// delivery is an external collaborator; the log notifier records the event
// so the activation flow is observable in environments without a mailer.
package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/oakrise/shopcart/internal/domain/account"
)

var _ account.Notifier = (*LogNotifier)(nil)

// LogNotifier implements account.Notifier by logging activation requests.
type LogNotifier struct {
	lg *zap.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(lg *zap.Logger) *LogNotifier {
	return &LogNotifier{lg: lg}
}

// ActivationRequested logs the activation event. The token is logged in full:
// this notifier is a development stand-in for a mailer, not a production sink.
func (n *LogNotifier) ActivationRequested(_ context.Context, email, token string) error {
	n.lg.Info("Account activation requested",
		zap.String("email", email),
		zap.String("token", token),
	)
	return nil
}
