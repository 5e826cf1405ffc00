package cqrs

import "github.com/shopspring/decimal"

type CreateAccountCommand struct {
	Name     string
	Currency string
	Balance  decimal.Decimal
	Treasury bool
}

type UpdateAccountCommand struct {
	AccountID int64
	Name      string
	Currency  string
	Balance   decimal.Decimal
	Treasury  bool
}

type DeleteAccountCommand struct {
	AccountID int64
}

// TransferCommand moves Amount from the origin account to the payee
// account. It exists only for the duration of one transfer call and is
// never persisted.
type TransferCommand struct {
	Origin int64
	Payee  int64
	Amount decimal.Decimal
}
