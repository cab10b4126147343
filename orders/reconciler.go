package orders

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

// Source fetches orders for one protocol path. Order ids are source-specific
// and sources return disjoint order sets by construction, so results are
// concatenated without cross-source deduplication.
type Source interface {
	Orders(ctx context.Context, account string) ([]Order, error)
}

// Reconciler merges remote order history with the locally persisted
// optimistic state for one exchange.
type Reconciler struct {
	exchange string
	store    *OptimisticStore
	sources  []Source
}

func NewReconciler(exchange string, store *OptimisticStore, sources ...Source) *Reconciler {
	return &Reconciler{
		exchange: exchange,
		store:    store,
		sources:  sources,
	}
}

// Orders fetches all sources concurrently, overlays the optimistic store and
// returns the merged history sorted by creation time descending. A failed
// fetch never mutates the optimistic store.
func (r *Reconciler) Orders(ctx context.Context, account string) ([]Order, error) {
	var (
		mu      sync.Mutex
		fetched []Order
		errs    []error
	)

	var wg conc.WaitGroup
	for _, source := range r.sources {
		source := source
		wg.Go(func() {
			o, err := source.Orders(ctx, account)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			fetched = append(fetched, o...)
		})
	}
	wg.Wait()

	// parameters may have changed mid-flight, drop the stale result
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errs[0]
	}

	merged, err := r.mergeNewOrders(account, fetched)
	if err != nil {
		return nil, err
	}
	merged, err = r.overlayCancellations(account, merged)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAtMillis > merged[j].CreatedAtMillis
	})
	return merged, nil
}

// mergeNewOrders prepends locally created orders the remote sources have not
// caught up with yet and deletes the ones they have.
func (r *Reconciler) mergeNewOrders(account string, fetched []Order) ([]Order, error) {
	local, err := r.store.NewOrders(account, r.exchange)
	if err != nil {
		return nil, err
	}
	if len(local) == 0 {
		return fetched, nil
	}

	remoteIDs := make(map[uint64]struct{}, len(fetched))
	for _, o := range fetched {
		remoteIDs[o.ID] = struct{}{}
	}

	confirmed := make(map[uint64]struct{})
	pending := make([]Order, 0, len(local))
	for _, o := range local {
		if _, ok := remoteIDs[o.ID]; ok {
			confirmed[o.ID] = struct{}{}
			continue
		}
		pending = append(pending, o)
	}

	if len(confirmed) > 0 {
		if err := r.store.RemoveNewOrders(account, r.exchange, confirmed); err != nil {
			log.Warn().Msgf("Failed to prune confirmed optimistic orders: %s", err)
		}
	}
	return append(pending, fetched...), nil
}

// overlayCancellations forces locally cancelled orders to show as canceled
// until the remote status agrees, then drops the local entry.
func (r *Reconciler) overlayCancellations(account string, merged []Order) ([]Order, error) {
	cancelled, err := r.store.CancelledIDs(account, r.exchange)
	if err != nil {
		return nil, err
	}
	if len(cancelled) == 0 {
		return merged, nil
	}

	confirmed := make(map[uint64]struct{})
	for i := range merged {
		if _, ok := cancelled[merged[i].ID]; !ok {
			continue
		}

		if merged[i].Canceled {
			confirmed[merged[i].ID] = struct{}{}
			continue
		}
		merged[i].Canceled = true
	}

	if len(confirmed) > 0 {
		if err := r.store.RemoveCancelledIDs(account, r.exchange, confirmed); err != nil {
			log.Warn().Msgf("Failed to prune confirmed cancellations: %s", err)
		}
	}
	return merged, nil
}
