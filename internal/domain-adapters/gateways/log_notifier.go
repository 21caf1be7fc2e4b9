package gateways

import (
	"context"

	"github.com/ochairo/pkggate/internal/domain/interfaces"
	"github.com/ochairo/pkggate/internal/domain/interfaces/gateways"
)

// LogNotifier writes notifications to the log instead of sending them
type LogNotifier struct {
	logger interfaces.Logger
}

// NewLogNotifier creates a dry-run notifier
func NewLogNotifier(logger interfaces.Logger) *LogNotifier {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &LogNotifier{logger: logger}
}

var _ gateways.Notifier = (*LogNotifier)(nil)

func (n *LogNotifier) Notify(_ context.Context, msg gateways.Message) error {
	n.logger.Info("notification", interfaces.F("subject", msg.Subject), interfaces.F("body", msg.Body))
	return nil
}
