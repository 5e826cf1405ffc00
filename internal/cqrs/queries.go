package cqrs

// GetAccountQuery fetches a single account by id.
type GetAccountQuery struct {
	AccountID int64
}

// ListAccountsQuery fetches all accounts.
type ListAccountsQuery struct{}
