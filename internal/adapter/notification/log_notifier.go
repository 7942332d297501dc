package notification

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iho/memledger/internal/domain"
)

// LogNotifier writes every notification to the log.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyAboutTransfer logs the message for the account holder.
func (n *LogNotifier) NotifyAboutTransfer(ctx context.Context, account domain.Account, message string) error {
	n.logger.Info().
		Str("account_id", account.ID).
		Str("notification", message).
		Msg("transfer notification")

	return nil
}
