package orders

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/swaplane/twap-engine/store"
)

// OptimisticStore persists orders created and cancellations submitted by this
// client that are not yet visible through the remote sources. Entries are
// removed once remote data proves the action has propagated.
type OptimisticStore struct {
	db store.KeyValueReaderWriter
}

func NewOptimisticStore(db store.KeyValueReaderWriter) *OptimisticStore {
	return &OptimisticStore{db: db}
}

func ordersKey(account, exchange string) []byte {
	return []byte(fmt.Sprintf("orders-%s-%s", account, exchange))
}

func cancelledKey(account, exchange string) []byte {
	return []byte(fmt.Sprintf("cancelled-orders-%s-%s", account, exchange))
}

func (s *OptimisticStore) NewOrders(account, exchange string) ([]Order, error) {
	var o []Order
	err := s.get(ordersKey(account, exchange), &o)
	return o, err
}

func (s *OptimisticStore) AddNewOrder(account, exchange string, order Order) error {
	o, err := s.NewOrders(account, exchange)
	if err != nil {
		return err
	}

	return s.set(ordersKey(account, exchange), append([]Order{order}, o...))
}

// RemoveNewOrders deletes locally stored orders whose ids the remote sources
// already returned.
func (s *OptimisticStore) RemoveNewOrders(account, exchange string, ids map[uint64]struct{}) error {
	o, err := s.NewOrders(account, exchange)
	if err != nil {
		return err
	}

	remaining := make([]Order, 0, len(o))
	for _, order := range o {
		if _, ok := ids[order.ID]; !ok {
			remaining = append(remaining, order)
		}
	}
	if len(remaining) == len(o) {
		return nil
	}

	return s.set(ordersKey(account, exchange), remaining)
}

func (s *OptimisticStore) CancelledIDs(account, exchange string) (map[uint64]struct{}, error) {
	var ids []uint64
	if err := s.get(cancelledKey(account, exchange), &ids); err != nil {
		return nil, err
	}

	set := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (s *OptimisticStore) AddCancelledIDs(account, exchange string, ids []uint64) error {
	existing, err := s.CancelledIDs(account, exchange)
	if err != nil {
		return err
	}

	for _, id := range ids {
		existing[id] = struct{}{}
	}
	return s.setCancelled(account, exchange, existing)
}

// RemoveCancelledIDs deletes cancellation ids that the remote status already
// reflects.
func (s *OptimisticStore) RemoveCancelledIDs(account, exchange string, ids map[uint64]struct{}) error {
	if len(ids) == 0 {
		return nil
	}

	existing, err := s.CancelledIDs(account, exchange)
	if err != nil {
		return err
	}

	for id := range ids {
		delete(existing, id)
	}
	return s.setCancelled(account, exchange, existing)
}

func (s *OptimisticStore) setCancelled(account, exchange string, set map[uint64]struct{}) error {
	ids := make([]uint64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return s.set(cancelledKey(account, exchange), ids)
}

func (s *OptimisticStore) get(key []byte, out any) error {
	data, err := s.db.GetByKey(key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	return json.Unmarshal(data, out)
}

func (s *OptimisticStore) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return s.db.SetByKey(key, data)
}
