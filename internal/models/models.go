package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the write model persisted in PostgreSQL (source of truth).
// ID is assigned by the store on insert and never reassigned afterwards.
// Treasury is fixed at creation: a treasury account may hold a negative
// balance, a non-treasury account may not.
type Account struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	Treasury  bool            `json:"treasury"`
	CreatedAt time.Time       `json:"createdTimestamp"`
	UpdatedAt time.Time       `json:"updatedTimestamp"`
}
