package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransferNotification is the payload delivered to notification sinks.
type TransferNotification struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// SentMessage is the notice for the debited account.
func SentMessage(amount decimal.Decimal, toAccountID string) string {
	return fmt.Sprintf("Amount %s is transferred to account ID %s", amount.String(), toAccountID)
}

// ReceivedMessage is the notice for the credited account.
func ReceivedMessage(amount decimal.Decimal, fromAccountID string) string {
	return fmt.Sprintf("Amount %s is transferred from account ID %s", amount.String(), fromAccountID)
}
