package payload

import (
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/shopspring/decimal"
)

const (
	typedDataDomainName = "Permit2"
	primaryType         = "PermitWitnessTransferFrom"

	// Validity window of the signed order quote in seconds.
	orderFreshnessSeconds = 60
)

// MaxUint256 is the protocol sentinel for "no trigger price". Zero would mean
// "triggered immediately" and is never emitted.
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// OrderInput carries every derived value required for the signature-based
// submission path.
type OrderInput struct {
	ChainID int64

	Permit2         common.Address
	Reactor         common.Address
	Executor        common.Address
	ExchangeAdapter common.Address
	Swapper         common.Address

	SrcToken common.Address
	DstToken common.Address

	SrcAmount      *big.Int
	SrcChunkAmount *big.Int
	DstMinAmount   *big.Int
	// nil when no trigger price is set
	TriggerAmount *big.Int

	DeadlineMillis  int64
	FillDelayMillis int64
	SlippagePercent decimal.Decimal
}

// BuildTypedOrder assembles the typed-structured-data order for off-chain
// signing. The nonce and deadline are bound to submission time, not
// draft-edit time. Returns false while any required field is missing.
func BuildTypedOrder(in OrderInput, now time.Time) (*apitypes.TypedData, bool) {
	if in.SrcAmount == nil || in.SrcChunkAmount == nil || in.DstMinAmount == nil {
		return nil, false
	}
	if in.DeadlineMillis == 0 || in.FillDelayMillis == 0 || in.ChainID == 0 {
		return nil, false
	}

	stop := in.TriggerAmount
	if stop == nil {
		stop = MaxUint256
	}

	nonce := strconv.FormatInt(now.UnixMilli(), 10)
	deadlineSeconds := strconv.FormatInt(in.DeadlineMillis/1000, 10)
	epochSeconds := strconv.FormatInt(in.FillDelayMillis/1000, 10)
	slippage := in.SlippagePercent.Mul(decimal.NewFromInt(10000)).Truncate(0).String()

	typedData := &apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"PermitWitnessTransferFrom": []apitypes.Type{
				{Name: "permitted", Type: "TokenPermissions"},
				{Name: "spender", Type: "address"},
				{Name: "nonce", Type: "uint256"},
				{Name: "deadline", Type: "uint256"},
				{Name: "witness", Type: "Order"},
			},
			"TokenPermissions": []apitypes.Type{
				{Name: "token", Type: "address"},
				{Name: "amount", Type: "uint256"},
			},
			"Order": []apitypes.Type{
				{Name: "reactor", Type: "address"},
				{Name: "executor", Type: "address"},
				{Name: "exchange", Type: "address"},
				{Name: "swapper", Type: "address"},
				{Name: "nonce", Type: "uint256"},
				{Name: "deadline", Type: "uint256"},
				{Name: "epoch", Type: "uint256"},
				{Name: "slippage", Type: "uint256"},
				{Name: "freshness", Type: "uint256"},
				{Name: "input", Type: "Input"},
				{Name: "output", Type: "Output"},
			},
			"Input": []apitypes.Type{
				{Name: "token", Type: "address"},
				{Name: "amount", Type: "uint256"},
				{Name: "totalAmount", Type: "uint256"},
			},
			"Output": []apitypes.Type{
				{Name: "token", Type: "address"},
				{Name: "limit", Type: "uint256"},
				{Name: "stop", Type: "uint256"},
				{Name: "recipient", Type: "address"},
			},
		},
		PrimaryType: primaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              typedDataDomainName,
			ChainId:           math.NewHexOrDecimal256(in.ChainID),
			VerifyingContract: in.Permit2.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"permitted": map[string]any{
				"token":  in.SrcToken.Hex(),
				"amount": in.SrcAmount.String(),
			},
			"spender":  in.Reactor.Hex(),
			"nonce":    nonce,
			"deadline": deadlineSeconds,
			"witness": map[string]any{
				"reactor":   in.Reactor.Hex(),
				"executor":  in.Executor.Hex(),
				"exchange":  in.ExchangeAdapter.Hex(),
				"swapper":   in.Swapper.Hex(),
				"nonce":     nonce,
				"deadline":  deadlineSeconds,
				"epoch":     epochSeconds,
				"slippage":  slippage,
				"freshness": strconv.Itoa(orderFreshnessSeconds),
				"input": map[string]any{
					"token":       in.SrcToken.Hex(),
					"amount":      in.SrcChunkAmount.String(),
					"totalAmount": in.SrcAmount.String(),
				},
				"output": map[string]any{
					"token":     in.DstToken.Hex(),
					"limit":     in.DstMinAmount.String(),
					"stop":      stop.String(),
					"recipient": in.Swapper.Hex(),
				},
			},
		},
	}
	return typedData, true
}
