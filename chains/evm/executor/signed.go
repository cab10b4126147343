package executor

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/rs/zerolog/log"

	"github.com/swaplane/twap-engine/chains/evm/payload"
	"github.com/swaplane/twap-engine/orders"
)

// OrderSubmitter relays a signed typed-data order to the order API and
// returns the assigned order id.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, order *apitypes.TypedData, signature []byte) (uint64, error)
}

type SignedOrderArgs struct {
	Account common.Address
	Order   payload.OrderInput
}

// SubmitSignedOrder runs the signature-based submission path: build the
// typed-data order, sign it off-chain and relay it. Returns a nil order
// without error while the draft is not ready for submission.
func (e *Executor) SubmitSignedOrder(ctx context.Context, submitter OrderSubmitter, args SignedOrderArgs) (*orders.Order, error) {
	typed, ok := payload.BuildTypedOrder(args.Order, time.Now())
	if !ok {
		return nil, nil
	}

	e.mu.Lock()
	if e.state.Status != StatusIdle {
		e.mu.Unlock()
		return nil, ErrExecutionInProgress
	}
	e.state = State{
		Status:     StatusLoading,
		ActiveStep: StepCreate,
		TotalSteps: 1,
		TxHashes:   make(map[Step]common.Hash),
	}
	e.mu.Unlock()

	e.callbacks.CreateRequest()

	signature, err := e.client.SignTypedData(ctx, args.Account, *typed)
	if err != nil {
		return nil, e.fail(StepCreate, err)
	}

	id, err := submitter.SubmitOrder(ctx, typed, signature)
	if err != nil {
		return nil, e.fail(StepCreate, err)
	}

	order := e.signedOptimisticOrder(args, id)
	if err := e.store.AddNewOrder(args.Account.Hex(), e.cfg.Exchange, order); err != nil {
		log.Warn().Msgf("Failed to persist optimistic order %d: %s", id, err)
	}

	e.mu.Lock()
	e.state.Status = StatusSuccess
	e.state.ActiveStep = StepNone
	e.mu.Unlock()

	e.callbacks.CreateSuccess("")
	if e.metrics != nil {
		e.metrics.TrackOrderCreated()
	}
	return &order, nil
}

func (e *Executor) signedOptimisticOrder(args SignedOrderArgs, id uint64) orders.Order {
	return orders.Order{
		ID:              id,
		Maker:           args.Account.Hex(),
		Exchange:        e.cfg.Exchange,
		SrcToken:        args.Order.SrcToken.Hex(),
		DstToken:        args.Order.DstToken.Hex(),
		SrcAmount:       orders.NewBigInt(args.Order.SrcAmount),
		SrcChunkAmount:  orders.NewBigInt(args.Order.SrcChunkAmount),
		DstMinAmount:    orders.NewBigInt(args.Order.DstMinAmount),
		FilledSrcAmount: orders.NewBigInt(big.NewInt(0)),
		FilledDstAmount: orders.NewBigInt(big.NewInt(0)),
		DeadlineMillis:  args.Order.DeadlineMillis,
		FillDelayMillis: args.Order.FillDelayMillis,
		CreatedAtMillis: time.Now().UnixMilli(),
	}
}
