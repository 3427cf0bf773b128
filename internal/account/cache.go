package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"finbase/internal/platform/redis"
	"finbase/pkg/domain"
)

// CachedBalances decorates a Store with a read-through cache for the latest
// balance snapshot, the hottest read in the model. Inserts invalidate the
// key; history reads always go to the store.
type CachedBalances struct {
	Store
	client *redis.Client
	ttl    time.Duration
}

func NewCachedBalances(store Store, client *redis.Client, ttl time.Duration) *CachedBalances {
	return &CachedBalances{Store: store, client: client, ttl: ttl}
}

type cachedBalance struct {
	ID               int64     `json:"id"`
	AccountID        int64     `json:"account_id"`
	AvailableBalance string    `json:"available_balance"`
	AsOf             time.Time `json:"as_of"`
}

func balanceCacheKey(accountID domain.AccountID) string {
	return fmt.Sprintf("finbase:balance:latest:%d", int64(accountID))
}

func (c *CachedBalances) LatestBalance(ctx context.Context, accountID domain.AccountID) (*Balance, error) {
	key := balanceCacheKey(accountID)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var cached cachedBalance
		if err := json.Unmarshal(raw, &cached); err == nil {
			if available, err := decimal.NewFromString(cached.AvailableBalance); err == nil {
				return &Balance{
					ID:               domain.BalanceID(cached.ID),
					AccountID:        domain.AccountID(cached.AccountID),
					AvailableBalance: available,
					AsOf:             cached.AsOf,
				}, nil
			}
		}
		// Unreadable entries fall through to the store and get rewritten.
	} else if !errors.Is(err, goredis.Nil) {
		return c.Store.LatestBalance(ctx, accountID)
	}

	balance, err := c.Store.LatestBalance(ctx, accountID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(cachedBalance{
		ID:               int64(balance.ID),
		AccountID:        int64(balance.AccountID),
		AvailableBalance: balance.AvailableBalance.String(),
		AsOf:             balance.AsOf,
	})
	if err == nil {
		_ = c.client.Set(ctx, key, payload, c.ttl).Err()
	}
	return balance, nil
}

func (c *CachedBalances) InsertBalance(ctx context.Context, balance *Balance) error {
	if err := c.Store.InsertBalance(ctx, balance); err != nil {
		return err
	}
	_ = c.client.Del(ctx, balanceCacheKey(balance.AccountID)).Err()
	return nil
}
