package query

import (
	"context"

	"github.com/heronbank/account-service/internal/cqrs"
	"github.com/heronbank/account-service/internal/models"
)

// AccountViewReader is the read-only slice of the read repository used by
// the query side. It deliberately excludes the cache-mutating methods:
// queries have no way to change state.
type AccountViewReader interface {
	GetByID(ctx context.Context, id int64) (*models.AccountView, error)
	List(ctx context.Context) ([]models.AccountView, error)
}

// AccountQueryService is the read side of the account API: pure
// pass-throughs to the read repository, no validation, no mutation.
type AccountQueryService struct {
	readRepo AccountViewReader
}

func NewAccountQueryService(readRepo AccountViewReader) *AccountQueryService {
	return &AccountQueryService{readRepo: readRepo}
}

// GetAccount fetches a single account view.
func (s *AccountQueryService) GetAccount(ctx context.Context, q cqrs.GetAccountQuery) (*models.AccountView, error) {
	return s.readRepo.GetByID(ctx, q.AccountID)
}

// ListAccounts fetches all account views.
func (s *AccountQueryService) ListAccounts(ctx context.Context, q cqrs.ListAccountsQuery) ([]models.AccountView, error) {
	return s.readRepo.List(ctx)
}
