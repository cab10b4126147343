package payload

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// AskInput carries every derived value required for the legacy on-chain
// "ask" submission path.
type AskInput struct {
	Exchange common.Address
	SrcToken common.Address
	DstToken common.Address

	SrcAmount      *big.Int
	SrcChunkAmount *big.Int
	DstMinAmount   *big.Int

	DeadlineMillis  int64
	FillDelayMillis int64
	BidDelaySeconds int64

	ExtraData []byte
}

// Build assembles the ordered ask argument tuple. The protocol's fill delay
// excludes the estimated inter-chunk latency of bidDelaySeconds*2 baked into
// every exchange config. Returns false while any required field is missing,
// which callers treat as "not ready yet" rather than a failure.
func (i AskInput) Build() ([]any, bool) {
	if i.SrcAmount == nil || i.SrcChunkAmount == nil || i.DstMinAmount == nil {
		return nil, false
	}
	if i.DeadlineMillis == 0 || i.FillDelayMillis == 0 {
		return nil, false
	}

	fillDelaySeconds := (i.FillDelayMillis - i.BidDelaySeconds*2*1000) / 1000
	extraData := i.ExtraData
	if extraData == nil {
		extraData = []byte{}
	}

	return []any{
		i.Exchange,
		i.SrcToken,
		i.DstToken,
		i.SrcAmount,
		i.SrcChunkAmount,
		i.DstMinAmount,
		big.NewInt(i.DeadlineMillis / 1000),
		big.NewInt(i.BidDelaySeconds),
		big.NewInt(fillDelaySeconds),
		extraData,
	}, true
}
