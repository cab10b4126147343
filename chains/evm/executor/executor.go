package executor

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog/log"

	"github.com/swaplane/twap-engine/analytics"
	"github.com/swaplane/twap-engine/chains/evm/calls/consts"
	"github.com/swaplane/twap-engine/chains/evm/payload"
	"github.com/swaplane/twap-engine/metrics"
	"github.com/swaplane/twap-engine/orders"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

type Step string

const (
	StepNone    Step = ""
	StepWrap    Step = "wrap"
	StepApprove Step = "approve"
	StepCreate  Step = "create"
)

var (
	ErrUserRejected          = errors.New("user rejected transaction")
	ErrInsufficientAllowance = errors.New("Insufficient allowance to perform the swap")
	ErrExecutionInProgress   = errors.New("execution already in progress")
)

// State is the externally visible progress of one execution run. Transitions
// are strictly forward; a terminal state only returns to idle through Reset.
type State struct {
	Status     Status
	ActiveStep Step
	StepIndex  int
	TotalSteps int
	TxHashes   map[Step]common.Hash
	Error      string
}

type Config struct {
	Twap         common.Address
	WrappedToken common.Address
	// store scope key, one optimistic namespace per exchange
	Exchange string
}

// CreateOrderArgs is fixed at loading-start; the draft must not be edited
// mid-run.
type CreateOrderArgs struct {
	Account     common.Address
	SrcIsNative bool
	Ask         payload.AskInput
}

// Executor runs the ordered submission steps for one exchange over the
// wallet/RPC collaborator.
type Executor struct {
	client    WalletClient
	store     *orders.OptimisticStore
	callbacks *analytics.Callbacks
	metrics   *metrics.OrderMetrics
	cfg       Config

	mu    sync.Mutex
	state State
}

func NewExecutor(client WalletClient, store *orders.OptimisticStore, callbacks *analytics.Callbacks, m *metrics.OrderMetrics, cfg Config) *Executor {
	return &Executor{
		client:    client,
		store:     store,
		callbacks: callbacks,
		metrics:   m,
		cfg:       cfg,
		state:     State{Status: StatusIdle},
	}
}

func (e *Executor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Reset returns a terminal state to idle. It is the only way out of a failed
// or successful run.
func (e *Executor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Status == StatusFailed || e.state.Status == StatusSuccess {
		e.state = State{Status: StatusIdle}
	}
}

// CreateOrder runs the wrap, approve and create steps in order. Steps are
// computed once at loading-start and fixed for the run. On success the
// created order is optimistically persisted so it shows up in history before
// any remote source reflects it.
func (e *Executor) CreateOrder(ctx context.Context, args CreateOrderArgs) (*orders.Order, error) {
	steps, err := e.begin(ctx, args)
	if err != nil {
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.StartExecution(args.Account.Hex())
	}

	var orderID uint64
	var createHash common.Hash
	for i, step := range steps {
		e.setStep(step, i)

		switch step {
		case StepWrap:
			err = e.wrap(ctx, args)
		case StepApprove:
			err = e.approve(ctx, args)
		case StepCreate:
			orderID, createHash, err = e.create(ctx, args)
		}
		if err != nil {
			return nil, e.fail(step, err)
		}
	}

	order := e.optimisticOrder(args, orderID, createHash)
	if err := e.store.AddNewOrder(args.Account.Hex(), e.cfg.Exchange, order); err != nil {
		log.Warn().Msgf("Failed to persist optimistic order %d: %s", orderID, err)
	}

	e.mu.Lock()
	e.state.Status = StatusSuccess
	e.state.ActiveStep = StepNone
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.TrackOrderCreated()
		e.metrics.EndExecution(args.Account.Hex())
	}
	return &order, nil
}

// CancelOrders is a one-shot mutation independent of the create pipeline. It
// submits a single cancel transaction and, once confirmed, optimistically
// marks the orders as canceled before any remote source reflects it.
func (e *Executor) CancelOrders(ctx context.Context, account common.Address, ids []uint64) (common.Hash, error) {
	e.callbacks.CancelRequest()

	hash, err := e.client.WriteContract(ctx, e.cfg.Twap, consts.TwapABI, "cancel", nil, []any{ids}, account)
	if err != nil {
		if isUserRejection(err) {
			return common.Hash{}, ErrUserRejected
		}
		e.callbacks.CancelError(err.Error())
		return common.Hash{}, err
	}

	if _, err := e.waitMined(ctx, hash); err != nil {
		e.callbacks.CancelError(err.Error())
		return common.Hash{}, err
	}

	if err := e.store.AddCancelledIDs(account.Hex(), e.cfg.Exchange, ids); err != nil {
		log.Warn().Msgf("Failed to persist optimistic cancellations: %s", err)
	}

	e.callbacks.CancelSuccess(hash.Hex())
	if e.metrics != nil {
		e.metrics.TrackOrdersCancelled(int64(len(ids)))
	}
	return hash, nil
}

func (e *Executor) begin(ctx context.Context, args CreateOrderArgs) ([]Step, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Status != StatusIdle {
		return nil, ErrExecutionInProgress
	}

	steps := []Step{}
	if args.SrcIsNative {
		steps = append(steps, StepWrap)
	}

	srcToken := args.Ask.SrcToken
	if args.SrcIsNative {
		srcToken = e.cfg.WrappedToken
	}
	allowance, err := e.client.Allowance(ctx, srcToken, args.Account, e.cfg.Twap)
	if err != nil {
		return nil, err
	}
	if allowance.Cmp(args.Ask.SrcAmount) < 0 {
		steps = append(steps, StepApprove)
	}
	steps = append(steps, StepCreate)

	e.state = State{
		Status:     StatusLoading,
		TotalSteps: len(steps),
		TxHashes:   make(map[Step]common.Hash),
	}
	return steps, nil
}

func (e *Executor) setStep(step Step, index int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.ActiveStep = step
	e.state.StepIndex = index
}

func (e *Executor) wrap(ctx context.Context, args CreateOrderArgs) error {
	e.callbacks.WrapRequest()

	hash, err := e.client.WriteContract(ctx, e.cfg.WrappedToken, consts.WETHABI, "deposit", args.Ask.SrcAmount, []any{}, args.Account)
	if err != nil {
		return err
	}
	e.recordHash(StepWrap, hash)

	if _, err := e.waitMined(ctx, hash); err != nil {
		return err
	}

	e.callbacks.WrapSuccess(hash.Hex())
	return nil
}

func (e *Executor) approve(ctx context.Context, args CreateOrderArgs) error {
	e.callbacks.ApproveRequest()

	token := args.Ask.SrcToken
	if args.SrcIsNative {
		token = e.cfg.WrappedToken
	}

	hash, err := e.client.WriteContract(ctx, token, consts.ERC20ABI, "approve", nil, []any{e.cfg.Twap, args.Ask.SrcAmount}, args.Account)
	if err != nil {
		return err
	}
	e.recordHash(StepApprove, hash)

	if _, err := e.waitMined(ctx, hash); err != nil {
		return err
	}

	// a confirmed approve does not guarantee the allowance actually holds,
	// re-verify before moving on to create
	_, err = Retry(ctx, AllowanceRetryPolicy, func() (struct{}, error) {
		allowance, err := e.client.Allowance(ctx, token, args.Account, e.cfg.Twap)
		if err != nil {
			return struct{}{}, err
		}
		if allowance.Cmp(args.Ask.SrcAmount) < 0 {
			return struct{}{}, fmt.Errorf("allowance %s below required %s", allowance, args.Ask.SrcAmount)
		}
		return struct{}{}, nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return ErrInsufficientAllowance
	}
	if err != nil {
		return err
	}

	e.callbacks.ApproveSuccess(hash.Hex())
	return nil
}

func (e *Executor) create(ctx context.Context, args CreateOrderArgs) (uint64, common.Hash, error) {
	e.callbacks.CreateRequest()

	ask := args.Ask
	if args.SrcIsNative {
		ask.SrcToken = e.cfg.WrappedToken
	}
	askArgs, ok := ask.Build()
	if !ok {
		return 0, common.Hash{}, errors.New("ask params not ready")
	}

	hash, err := e.client.WriteContract(ctx, e.cfg.Twap, consts.TwapABI, "ask", nil, askArgs, args.Account)
	if err != nil {
		return 0, common.Hash{}, err
	}
	e.recordHash(StepCreate, hash)

	receipt, err := e.waitMined(ctx, hash)
	if err != nil {
		return 0, common.Hash{}, err
	}

	id, ok := orderIDFromReceipt(receipt)
	if !ok {
		log.Warn().Msgf("No order id found in receipt %s, falling back to submission time", hash.Hex())
		id = uint64(time.Now().UnixMilli())
	}

	e.callbacks.CreateSuccess(hash.Hex())
	return id, hash, nil
}

func (e *Executor) waitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	receipt, err := Retry(ctx, ReceiptRetryPolicy, func() (*types.Receipt, error) {
		return e.client.TransactionReceipt(ctx, hash)
	})
	if err != nil {
		return nil, err
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("transaction %s reverted", hash.Hex())
	}
	return receipt, nil
}

// fail classifies the error. Explicit wallet rejection resets the machine to
// a neutral state without surfacing a failure; everything else is terminal
// until Reset.
func (e *Executor) fail(step Step, err error) error {
	if isUserRejection(err) {
		e.mu.Lock()
		e.state = State{Status: StatusIdle}
		e.mu.Unlock()
		return ErrUserRejected
	}

	e.mu.Lock()
	e.state.Status = StatusFailed
	e.state.Error = err.Error()
	e.mu.Unlock()

	switch step {
	case StepWrap:
		e.callbacks.WrapError(err.Error())
	case StepApprove:
		e.callbacks.ApproveError(err.Error())
	case StepCreate:
		e.callbacks.CreateError(err.Error())
	}
	if e.metrics != nil {
		e.metrics.TrackOrderFailed()
	}
	return err
}

func (e *Executor) recordHash(step Step, hash common.Hash) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.TxHashes[step] = hash
}

func (e *Executor) optimisticOrder(args CreateOrderArgs, id uint64, hash common.Hash) orders.Order {
	now := time.Now()
	srcToken := args.Ask.SrcToken
	if args.SrcIsNative {
		srcToken = e.cfg.WrappedToken
	}

	return orders.Order{
		ID:              id,
		TxHash:          hash.Hex(),
		Maker:           args.Account.Hex(),
		Exchange:        e.cfg.Exchange,
		SrcToken:        srcToken.Hex(),
		DstToken:        args.Ask.DstToken.Hex(),
		SrcAmount:       orders.NewBigInt(args.Ask.SrcAmount),
		SrcChunkAmount:  orders.NewBigInt(args.Ask.SrcChunkAmount),
		DstMinAmount:    orders.NewBigInt(args.Ask.DstMinAmount),
		FilledSrcAmount: orders.NewBigInt(big.NewInt(0)),
		FilledDstAmount: orders.NewBigInt(big.NewInt(0)),
		DeadlineMillis:  args.Ask.DeadlineMillis,
		FillDelayMillis: args.Ask.FillDelayMillis,
		CreatedAtMillis: now.UnixMilli(),
	}
}

func orderIDFromReceipt(receipt *types.Receipt) (uint64, bool) {
	createdSig := consts.TwapABI.Events["OrderCreated"].ID
	for _, l := range receipt.Logs {
		if len(l.Topics) < 2 || l.Topics[0] != createdSig {
			continue
		}
		return new(big.Int).SetBytes(l.Topics[1].Bytes()).Uint64(), true
	}
	return 0, false
}

func isUserRejection(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "user rejected") ||
		strings.Contains(msg, "user denied") ||
		strings.Contains(msg, "rejected by user")
}
