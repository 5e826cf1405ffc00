package command

import (
	"context"
	"log"
	"time"

	"github.com/heronbank/account-service/internal/cqrs"
	"github.com/heronbank/account-service/internal/events"
	"github.com/heronbank/account-service/internal/models"
	"github.com/heronbank/account-service/internal/repository"
	"github.com/heronbank/account-service/internal/utils"
)

// AccountCommandService is the write side of the account API. It owns the
// account invariants: a non-treasury account never goes negative through
// an operation of this service, and the treasury flag is fixed for the
// lifetime of the account. Every mutating operation runs inside one unit
// of work; all of its writes commit together or not at all.
type AccountCommandService struct {
	store     repository.Store
	publisher *events.Publisher
}

func NewAccountCommandService(store repository.Store, publisher *events.Publisher) *AccountCommandService {
	return &AccountCommandService{
		store:     store,
		publisher: publisher,
	}
}

// CreateAccount persists a new account. The store assigns the id.
// A non-treasury account cannot start with a negative balance.
func (s *AccountCommandService) CreateAccount(ctx context.Context, cmd cqrs.CreateAccountCommand) (*models.Account, error) {
	if !cmd.Treasury && cmd.Balance.IsNegative() {
		return nil, models.NewPolicyViolation("treasury profile not allowed to create account with negative balance")
	}

	now := time.Now().UTC()
	account := &models.Account{
		Name:      cmd.Name,
		Currency:  cmd.Currency,
		Balance:   cmd.Balance,
		Treasury:  cmd.Treasury,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := tx.Insert(ctx, account); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.publish(ctx, events.AccountCreated, events.AccountCreatedEvent{Account: *account.ToView()})
	return account, nil
}

// UpdateAccount overwrites an existing account. The treasury flag is set
// only at creation; an update carrying a different value is rejected. The
// canonical id is always re-derived from the stored row, so the persisted
// id can never change whatever the caller sent.
func (s *AccountCommandService) UpdateAccount(ctx context.Context, cmd cqrs.UpdateAccountCommand) (*models.Account, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	actual, err := tx.Get(ctx, cmd.AccountID)
	if err != nil {
		return nil, err
	}
	if cmd.Treasury != actual.Treasury {
		return nil, models.NewPolicyViolation("treasury value changed")
	}

	account := &models.Account{
		ID:        actual.ID,
		Name:      cmd.Name,
		Currency:  cmd.Currency,
		Balance:   cmd.Balance,
		Treasury:  cmd.Treasury,
		CreatedAt: actual.CreatedAt,
		UpdatedAt: time.Now().UTC(),
	}
	if err := tx.Save(ctx, account); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.publish(ctx, events.AccountUpdated, events.AccountUpdatedEvent{Account: *account.ToView()})
	return account, nil
}

// DeleteAccount removes an account. Any account may be deleted regardless
// of balance or treasury state.
func (s *AccountCommandService) DeleteAccount(ctx context.Context, cmd cqrs.DeleteAccountCommand) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Get(ctx, cmd.AccountID); err != nil {
		return err
	}
	if err := tx.Delete(ctx, cmd.AccountID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.publish(ctx, events.AccountDeleted, events.AccountDeletedEvent{AccountID: cmd.AccountID})
	return nil
}

// Transfer moves an amount from the origin account to the payee account
// and returns the post-transfer origin. Both writes happen in one unit of
// work, with the payee credit issued and flushed before the origin debit:
// if the transfer is ever torn apart, money is created before it is
// destroyed, never the other way around.
func (s *AccountCommandService) Transfer(ctx context.Context, cmd cqrs.TransferCommand) (*models.Account, error) {
	if !cmd.Amount.IsPositive() {
		return nil, models.NewPolicyViolation("amount to transfer must be greater than zero")
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	origin, err := tx.Get(ctx, cmd.Origin)
	if err != nil {
		return nil, err
	}

	// Re-read the origin row and compare treasury flags before applying
	// the debit. Within one snapshot the two reads are equal, so this
	// cannot fire today; it is the hook point for detecting a concurrent
	// treasury mutation once versioned reads exist.
	actual, err := tx.Get(ctx, cmd.Origin)
	if err != nil {
		return nil, err
	}
	if origin.Treasury != actual.Treasury {
		return nil, models.NewPolicyViolation("treasury value changed")
	}

	projected := origin.Balance.Sub(cmd.Amount)
	if !origin.Treasury && projected.IsNegative() {
		return nil, models.NewPolicyViolation("treasury profile does not accept negative balance")
	}

	// A self-transfer debits and credits the same row, so the two legs
	// cancel out. Writing both would let the debit overwrite the credit;
	// commit nothing and return the account unchanged.
	if cmd.Origin == cmd.Payee {
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		return origin, nil
	}

	origin.Balance = projected
	origin.UpdatedAt = time.Now().UTC()

	payee, err := tx.Get(ctx, cmd.Payee)
	if err != nil {
		return nil, err
	}
	payee.Balance = payee.Balance.Add(cmd.Amount)
	payee.UpdatedAt = origin.UpdatedAt

	if err := tx.Save(ctx, payee); err != nil {
		return nil, err
	}
	if err := tx.Flush(ctx); err != nil {
		return nil, err
	}
	if err := tx.Save(ctx, origin); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.publish(ctx, events.AccountTransferred, events.AccountTransferredEvent{
		Reference: utils.GenerateID("trf"),
		Origin:    *origin.ToView(),
		Payee:     *payee.ToView(),
	})
	return origin, nil
}

// publish sends a domain event to the account stream. Publish failures are
// logged, not returned: the write store already committed and the read
// model can always rebuild from it on a cold read.
func (s *AccountCommandService) publish(ctx context.Context, eventType string, data any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.AccountEventsStream, eventType, data); err != nil {
		log.Printf("Failed to publish %s event: %v", eventType, err)
	}
}
