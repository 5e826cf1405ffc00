package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/heronbank/account-service/internal/models"
	sharedredis "github.com/heronbank/account-service/internal/redis"
	goredis "github.com/redis/go-redis/v9"
)

const accountViewKeyPrefix = "account:view:"

func accountViewKey(id int64) string {
	return accountViewKeyPrefix + strconv.FormatInt(id, 10)
}

// AccountReadRepository serves all read operations. It treats Redis as the
// primary read store (the CQRS read model) and falls back to PostgreSQL
// transparently, warming the cache on every cold read. Reads never touch
// domain state, so no unit of work is opened here.
type AccountReadRepository struct {
	db    *sql.DB
	cache *sharedredis.ViewCache[models.AccountView]
}

func NewAccountReadRepository(db *sql.DB, redisClient *goredis.Client) *AccountReadRepository {
	return &AccountReadRepository{
		db:    db,
		cache: sharedredis.NewViewCache[models.AccountView](redisClient, 0),
	}
}

// GetByID returns an AccountView, trying Redis first then PostgreSQL.
func (r *AccountReadRepository) GetByID(ctx context.Context, id int64) (*models.AccountView, error) {
	if view, ok := r.cache.Get(ctx, accountViewKey(id)); ok {
		return view, nil
	}

	query := `
		SELECT id, name, currency, balance, treasury, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`
	var view models.AccountView
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&view.ID, &view.Name, &view.Currency,
		&view.Balance, &view.Treasury,
		&view.CreatedAt, &view.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	// Warm the cache
	r.CacheView(ctx, &view)
	return &view, nil
}

// List returns all AccountViews from PostgreSQL.
func (r *AccountReadRepository) List(ctx context.Context) ([]models.AccountView, error) {
	query := `
		SELECT id, name, currency, balance, treasury, created_at, updated_at
		FROM accounts
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var views []models.AccountView
	for rows.Next() {
		var view models.AccountView
		if err := rows.Scan(
			&view.ID, &view.Name, &view.Currency,
			&view.Balance, &view.Treasury,
			&view.CreatedAt, &view.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		views = append(views, view)
	}
	return views, rows.Err()
}

// CacheView stores or refreshes the Redis read model for an account.
// Called by the projector after every mutation event.
func (r *AccountReadRepository) CacheView(ctx context.Context, view *models.AccountView) {
	r.cache.Set(ctx, accountViewKey(view.ID), view)
}

// InvalidateView removes the Redis read model entry for a deleted account.
func (r *AccountReadRepository) InvalidateView(ctx context.Context, id int64) {
	r.cache.Delete(ctx, accountViewKey(id))
}
