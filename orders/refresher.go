package orders

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/zerolog/log"
)

const trackedAccountTTL = time.Minute * 30

// Refresher periodically re-reconciles order history for recently served
// accounts so the optimistic store gets pruned even without request traffic.
type Refresher struct {
	reconciler *Reconciler
	interval   time.Duration

	accounts *ttlcache.Cache[string, struct{}]
}

func NewRefresher(reconciler *Reconciler, interval time.Duration) *Refresher {
	accounts := ttlcache.New(
		ttlcache.WithTTL[string, struct{}](trackedAccountTTL),
	)
	go accounts.Start()

	return &Refresher{
		reconciler: reconciler,
		interval:   interval,
		accounts:   accounts,
	}
}

// Orders delegates to the reconciler and marks the account for background
// refreshes.
func (r *Refresher) Orders(ctx context.Context, account string) ([]Order, error) {
	r.accounts.Set(account, struct{}{}, ttlcache.DefaultTTL)
	return r.reconciler.Orders(ctx, account)
}

// Run refreshes tracked accounts on the configured interval until the context
// is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, account := range r.accounts.Keys() {
				if _, err := r.reconciler.Orders(ctx, account); err != nil {
					log.Warn().Msgf("Failed to refresh orders for %s: %s", account, err)
				}
			}
		case <-ctx.Done():
			r.accounts.Stop()
			return
		}
	}
}
