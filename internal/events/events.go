package events

import (
	"time"

	"github.com/heronbank/account-service/internal/models"
)

// Event types
const (
	AccountCreated     = "account.created"
	AccountUpdated     = "account.updated"
	AccountDeleted     = "account.deleted"
	AccountTransferred = "account.transferred"
)

// Stream names
const (
	AccountEventsStream = "account.events"
)

// Event is the envelope written to the Redis stream.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// AccountCreatedEvent carries the full snapshot of a new account so
// projectors can build the read model without a store round trip.
type AccountCreatedEvent struct {
	Account models.AccountView `json:"account"`
}

type AccountUpdatedEvent struct {
	Account models.AccountView `json:"account"`
}

type AccountDeletedEvent struct {
	AccountID int64 `json:"accountId"`
}

// AccountTransferredEvent carries the post-transfer snapshots of both
// sides. Balances are absolute, so redelivery is harmless.
type AccountTransferredEvent struct {
	Reference string             `json:"reference"`
	Origin    models.AccountView `json:"origin"`
	Payee     models.AccountView `json:"payee"`
}
