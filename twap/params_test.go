package twap_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/swaplane/twap-engine/twap"
)

type ParamsTestSuite struct {
	suite.Suite
}

func TestRunParamsTestSuite(t *testing.T) {
	suite.Run(t, new(ParamsTestSuite))
}

func (s *ParamsTestSuite) Test_MaxPossibleChunks() {
	chunks := twap.MaxPossibleChunks("1000", decimal.NewFromInt(1), decimal.NewFromInt(50))

	s.Equal(int64(20), chunks)
}

func (s *ParamsTestSuite) Test_MaxPossibleChunks_MissingInputs() {
	s.Equal(int64(1), twap.MaxPossibleChunks("", decimal.NewFromInt(1), decimal.NewFromInt(50)))
	s.Equal(int64(1), twap.MaxPossibleChunks("1000", decimal.Zero, decimal.NewFromInt(50)))
	s.Equal(int64(1), twap.MaxPossibleChunks("1000", decimal.NewFromInt(1), decimal.Zero))
	s.Equal(int64(1), twap.MaxPossibleChunks("10", decimal.NewFromInt(1), decimal.NewFromInt(50)))
}

func (s *ParamsTestSuite) Test_Chunks_Default() {
	s.Equal(int64(20), twap.Chunks(20, false, nil))
}

func (s *ParamsTestSuite) Test_Chunks_LimitOnlyForcesSingleChunk() {
	typed := int64(7)

	s.Equal(int64(1), twap.Chunks(50, true, &typed))
}

func (s *ParamsTestSuite) Test_Chunks_TypedValueWins() {
	typed := int64(5)

	s.Equal(int64(5), twap.Chunks(20, false, &typed))
}

func (s *ParamsTestSuite) Test_SrcChunkAmount() {
	s.Equal("333", twap.SrcChunkAmount(big.NewInt(1000), 3).String())
	s.Equal("0", twap.SrcChunkAmount(nil, 3).String())
	s.Equal("0", twap.SrcChunkAmount(big.NewInt(1000), 0).String())
}

func (s *ParamsTestSuite) Test_SrcChunkAmount_RemainderBound() {
	cases := []struct {
		src    int64
		chunks int64
	}{
		{1000, 3},
		{1, 2},
		{999999, 7},
		{0, 5},
	}

	for _, tc := range cases {
		perChunk := twap.SrcChunkAmount(big.NewInt(tc.src), tc.chunks)
		total := new(big.Int).Mul(perChunk, big.NewInt(tc.chunks))

		s.True(total.Cmp(big.NewInt(tc.src)) <= 0)
		s.True(big.NewInt(tc.src).Cmp(new(big.Int).Add(total, big.NewInt(tc.chunks))) < 0)
	}
}

func (s *ParamsTestSuite) Test_FillDelay_Defaults() {
	typed := twap.Duration{Unit: twap.Hours, Value: 1}

	s.Equal(twap.DefaultFillDelay, twap.FillDelay(true, &typed))
	s.Equal(twap.DefaultFillDelay, twap.FillDelay(false, nil))
	s.Equal(typed, twap.FillDelay(false, &typed))
}

func (s *ParamsTestSuite) Test_FillDelayError_BelowMinimum() {
	err := twap.FillDelayError(twap.Duration{Unit: twap.Minutes, Value: 2})

	s.NotNil(err)
	s.Equal(twap.ErrMinFillDelay, err.Kind)
	s.Equal("300000", err.Value)
}

func (s *ParamsTestSuite) Test_FillDelayError_AboveMaximum() {
	err := twap.FillDelayError(twap.Duration{Unit: twap.Days, Value: 31})

	s.NotNil(err)
	s.Equal(twap.ErrMaxFillDelay, err.Kind)
}

func (s *ParamsTestSuite) Test_MinDuration() {
	d := twap.MinDuration(twap.Duration{Unit: twap.Minutes, Value: 5}, 12)

	// 5m * 2 * 12 = 120m = 2h
	s.Equal(twap.Hours, d.Unit)
	s.Equal(float64(2), d.Value)
}

func (s *ParamsTestSuite) Test_OrderDuration_TypedWins() {
	minDuration := twap.Duration{Unit: twap.Hours, Value: 2}
	typed := twap.Duration{Unit: twap.Days, Value: 1}

	s.Equal(typed, twap.OrderDuration(minDuration, &typed))
	s.Equal(minDuration, twap.OrderDuration(minDuration, nil))
}

func (s *ParamsTestSuite) Test_Deadline() {
	now := time.UnixMilli(1700000000000)
	duration := twap.Duration{Unit: twap.Hours, Value: 2}

	deadline := twap.Deadline(now, duration)

	s.Equal(int64(1700000000000+2*60*60*1000+60_000), deadline)
}

func (s *ParamsTestSuite) Test_DestTokenAmount() {
	dst, ok := twap.DestTokenAmount("2", decimal.NewFromInt(3), 6)

	s.True(ok)
	s.Equal("6000000", dst.String())
}

func (s *ParamsTestSuite) Test_DestTokenAmount_MissingInputs() {
	_, ok := twap.DestTokenAmount("", decimal.NewFromInt(3), 6)
	s.False(ok)

	_, ok = twap.DestTokenAmount("2", decimal.Zero, 6)
	s.False(ok)
}

func (s *ParamsTestSuite) Test_DestMinAmountPerChunk_MarketOrderSentinel() {
	dst := twap.DestMinAmountPerChunk(big.NewInt(1000000), decimal.NewFromInt(2), true, 6, 6)

	s.Equal("1", dst.String())
}

func (s *ParamsTestSuite) Test_DestMinAmountPerChunk_MissingPriceSentinel() {
	dst := twap.DestMinAmountPerChunk(big.NewInt(1000000), decimal.Zero, false, 6, 6)

	s.Equal("1", dst.String())
}

func (s *ParamsTestSuite) Test_DestMinAmountPerChunk_LimitPrice() {
	// 1 src token at 6 decimals, price 2, dst at 18 decimals
	dst := twap.DestMinAmountPerChunk(big.NewInt(1000000), decimal.NewFromInt(2), false, 6, 18)

	s.Equal("2000000000000000000", dst.String())
}

func (s *ParamsTestSuite) Test_MinTradeSizeError() {
	err := twap.MinTradeSizeError("100", decimal.NewFromInt(1), decimal.NewFromInt(50), 4)

	s.NotNil(err)
	s.Equal(twap.ErrMinTradeSize, err.Kind)
	s.Equal("50", err.Value)
}

func (s *ParamsTestSuite) Test_MinTradeSizeError_ValidSize() {
	s.Nil(twap.MinTradeSizeError("1000", decimal.NewFromInt(1), decimal.NewFromInt(50), 4))
}
