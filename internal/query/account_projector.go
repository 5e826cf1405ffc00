package query

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/heronbank/account-service/internal/events"
	"github.com/heronbank/account-service/internal/repository"
)

// AccountProjector keeps the Redis read model in step with the account
// event stream. Every event carries absolute account state, so handling
// the same event twice is harmless under at-least-once delivery.
type AccountProjector struct {
	readRepo *repository.AccountReadRepository
}

func NewAccountProjector(readRepo *repository.AccountReadRepository) *AccountProjector {
	return &AccountProjector{readRepo: readRepo}
}

// HandleAccountEvent is the events.Handler fed to the stream subscriber.
func (p *AccountProjector) HandleAccountEvent(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.AccountCreated:
		var data events.AccountCreatedEvent
		if err := decodeEventData(event, &data); err != nil {
			return err
		}
		p.readRepo.CacheView(ctx, &data.Account)

	case events.AccountUpdated:
		var data events.AccountUpdatedEvent
		if err := decodeEventData(event, &data); err != nil {
			return err
		}
		p.readRepo.CacheView(ctx, &data.Account)

	case events.AccountDeleted:
		var data events.AccountDeletedEvent
		if err := decodeEventData(event, &data); err != nil {
			return err
		}
		p.readRepo.InvalidateView(ctx, data.AccountID)

	case events.AccountTransferred:
		var data events.AccountTransferredEvent
		if err := decodeEventData(event, &data); err != nil {
			return err
		}
		p.readRepo.CacheView(ctx, &data.Origin)
		p.readRepo.CacheView(ctx, &data.Payee)
		log.Printf("Projected transfer %s: origin %d -> payee %d",
			data.Reference, data.Origin.ID, data.Payee.ID)

	default:
		log.Printf("Ignoring unknown account event type: %s", event.Type)
	}
	return nil
}

// decodeEventData re-marshals the loosely typed event payload into the
// concrete event struct.
func decodeEventData(event events.Event, out any) error {
	dataBytes, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event data: %w", event.Type, err)
	}
	if err := json.Unmarshal(dataBytes, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s event: %w", event.Type, err)
	}
	return nil
}
