package orders

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusOpen      Status = "open"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
	StatusExpired   Status = "expired"
)

// Ratio at which an order counts as fully filled. Dust left by per-chunk
// flooring would otherwise keep the progress just below 100 forever.
const completedProgressThreshold = 0.99

type BigInt struct {
	*big.Int
}

func NewBigInt(i *big.Int) *BigInt {
	return &BigInt{Int: i}
}

func (b *BigInt) UnmarshalJSON(data []byte) error {
	if b.Int == nil {
		b.Int = new(big.Int)
	}

	s := strings.Trim(string(data), "\"")
	_, ok := b.SetString(s, 10)
	if !ok {
		return fmt.Errorf("failed to parse big.Int from %s", s)
	}

	return nil
}

func (b *BigInt) MarshalJSON() ([]byte, error) {
	return []byte(b.String()), nil
}

// Order is an immutable snapshot of a created order, built either from remote
// indexer/API data or synthesized locally right after submission.
type Order struct {
	ID              uint64  `json:"id"`
	TxHash          string  `json:"txHash"`
	Maker           string  `json:"maker"`
	Exchange        string  `json:"exchange"`
	SrcToken        string  `json:"srcToken"`
	DstToken        string  `json:"dstToken"`
	SrcAmount       *BigInt `json:"srcAmount"`
	SrcChunkAmount  *BigInt `json:"srcChunkAmount"`
	DstMinAmount    *BigInt `json:"dstMinAmount"`
	FilledSrcAmount *BigInt `json:"filledSrcAmount"`
	FilledDstAmount *BigInt `json:"filledDstAmount"`
	DeadlineMillis  int64   `json:"deadline"`
	FillDelayMillis int64   `json:"fillDelay"`
	CreatedAtMillis int64   `json:"createdAt"`
	Canceled        bool    `json:"canceled"`
}

// Progress is the filled percentage of the order, reported with two decimal
// precision. A fill ratio at or above 0.99 is forced to exactly 100.
func (o *Order) Progress() float64 {
	if o.SrcAmount == nil || o.SrcAmount.Int == nil || o.SrcAmount.Sign() == 0 {
		return 0
	}
	if o.FilledSrcAmount == nil || o.FilledSrcAmount.Int == nil {
		return 0
	}

	ratio := decimal.NewFromBigInt(o.FilledSrcAmount.Int, 0).
		Div(decimal.NewFromBigInt(o.SrcAmount.Int, 0))
	if ratio.GreaterThanOrEqual(decimal.NewFromFloat(completedProgressThreshold)) {
		return 100
	}

	progress, _ := ratio.Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return progress
}

// ComputeStatus derives the order status by explicit priority: completed,
// remotely or locally canceled, open while the deadline is in the future,
// expired otherwise.
func (o *Order) ComputeStatus(now time.Time) Status {
	if o.Progress() == 100 {
		return StatusCompleted
	}
	if o.Canceled {
		return StatusCanceled
	}
	if o.DeadlineMillis > now.UnixMilli() {
		return StatusOpen
	}
	return StatusExpired
}
