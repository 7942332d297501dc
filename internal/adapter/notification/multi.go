package notification

import (
	"context"
	"errors"

	"github.com/iho/memledger/internal/domain"
	"github.com/iho/memledger/internal/usecase"
)

// MultiNotifier fans a notification out to several sinks.
type MultiNotifier struct {
	sinks []usecase.Notifier
}

// NewMultiNotifier creates a new MultiNotifier.
func NewMultiNotifier(sinks ...usecase.Notifier) *MultiNotifier {
	return &MultiNotifier{sinks: sinks}
}

// NotifyAboutTransfer delivers to every sink and joins their errors.
func (n *MultiNotifier) NotifyAboutTransfer(ctx context.Context, account domain.Account, message string) error {
	var errs []error
	for _, sink := range n.sinks {
		if err := sink.NotifyAboutTransfer(ctx, account, message); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
