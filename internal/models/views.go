package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountView is the read-optimised projection of an account, served from
// the Redis read model with a PostgreSQL fallback.
type AccountView struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	Treasury  bool            `json:"treasury"`
	CreatedAt time.Time       `json:"createdTimestamp"`
	UpdatedAt time.Time       `json:"updatedTimestamp"`
}

// ToView converts the PostgreSQL write model to the read view model.
func (a *Account) ToView() *AccountView {
	return &AccountView{
		ID:        a.ID,
		Name:      a.Name,
		Currency:  a.Currency,
		Balance:   a.Balance,
		Treasury:  a.Treasury,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
