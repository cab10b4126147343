package twap_test

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/swaplane/twap-engine/twap"
)

type PriceTestSuite struct {
	suite.Suite
}

func TestRunPriceTestSuite(t *testing.T) {
	suite.Run(t, new(PriceTestSuite))
}

func (s *PriceTestSuite) Test_PriceDeltaPercent() {
	delta := twap.PriceDeltaPercent(decimal.NewFromInt(105), decimal.NewFromInt(100), false)

	s.Equal("5", delta.String())
}

func (s *PriceTestSuite) Test_PriceDeltaPercent_Inverted() {
	delta := twap.PriceDeltaPercent(decimal.NewFromInt(105), decimal.NewFromInt(100), true)

	s.Equal("-4.76", delta.String())
}

func (s *PriceTestSuite) Test_PriceDeltaPercent_RoundsHalfUp() {
	delta := twap.PriceDeltaPercent(decimal.RequireFromString("100.125"), decimal.NewFromInt(100), false)

	s.Equal("0.13", delta.String())
}

func (s *PriceTestSuite) Test_PriceDeltaPercent_ZeroMarketPrice() {
	delta := twap.PriceDeltaPercent(decimal.NewFromInt(105), decimal.Zero, false)

	s.True(delta.IsZero())
}

func (s *PriceTestSuite) Test_TriggerPriceError_StopLossAboveMarket() {
	err := twap.TriggerPriceError(twap.KindStopLoss, decimal.NewFromInt(110), decimal.NewFromInt(100))

	s.NotNil(err)
	s.Equal(twap.ErrStopLossAboveMarket, err.Kind)
	s.Equal("100", err.Value)
}

func (s *PriceTestSuite) Test_TriggerPriceError_TakeProfitBelowMarket() {
	err := twap.TriggerPriceError(twap.KindTakeProfit, decimal.NewFromInt(90), decimal.NewFromInt(100))

	s.NotNil(err)
	s.Equal(twap.ErrTakeProfitBelowMarket, err.Kind)
}

func (s *PriceTestSuite) Test_TriggerPriceError_Consistent() {
	s.Nil(twap.TriggerPriceError(twap.KindStopLoss, decimal.NewFromInt(90), decimal.NewFromInt(100)))
	s.Nil(twap.TriggerPriceError(twap.KindTakeProfit, decimal.NewFromInt(110), decimal.NewFromInt(100)))
	s.Nil(twap.TriggerPriceError(twap.KindTwapMarket, decimal.NewFromInt(110), decimal.NewFromInt(100)))
}

func (s *PriceTestSuite) Test_Validate_Priority() {
	v := twap.DraftValidation{
		Kind:              twap.KindStopLoss,
		Balance:           big.NewInt(10),
		SrcAmount:         big.NewInt(100),
		SrcAmountUI:       "100",
		OneSrcTokenUsd:    decimal.NewFromInt(1),
		MinChunkSizeUsd:   decimal.NewFromInt(50),
		TriggerPrice:      decimal.NewFromInt(110),
		MarketPrice:       decimal.NewFromInt(100),
		Chunks:            10,
		MaxPossibleChunks: 2,
		FillDelay:         twap.Duration{Unit: twap.Minutes, Value: 1},
		Duration:          twap.Duration{Unit: twap.Minutes, Value: 1},
	}

	// balance wins over every other violation
	err := v.Validate()
	s.Equal(twap.ErrInsufficientBalance, err.Kind)

	v.Balance = big.NewInt(1000)
	err = v.Validate()
	s.Equal(twap.ErrStopLossAboveMarket, err.Kind)

	v.TriggerPrice = decimal.NewFromInt(90)
	err = v.Validate()
	s.Equal(twap.ErrMaxChunks, err.Kind)

	v.MaxPossibleChunks = 20
	v.Chunks = 4
	err = v.Validate()
	s.Equal(twap.ErrMinTradeSize, err.Kind)

	v.SrcAmountUI = "1000"
	v.SrcAmount = big.NewInt(1000)
	err = v.Validate()
	s.Equal(twap.ErrMinFillDelay, err.Kind)

	v.FillDelay = twap.Duration{Unit: twap.Minutes, Value: 5}
	err = v.Validate()
	s.Equal(twap.ErrMinOrderDuration, err.Kind)

	v.Duration = twap.Duration{Unit: twap.Hours, Value: 1}
	s.Nil(v.Validate())
}

func (s *PriceTestSuite) Test_Validate_MissingLimitPrice() {
	v := twap.DraftValidation{
		Kind:              twap.KindTwapLimit,
		SrcAmountUI:       "1000",
		Chunks:            1,
		MaxPossibleChunks: 1,
		FillDelay:         twap.Duration{Unit: twap.Minutes, Value: 5},
		Duration:          twap.Duration{Unit: twap.Hours, Value: 1},
	}

	err := v.Validate()

	s.NotNil(err)
	s.Equal(twap.ErrMissingLimitPrice, err.Kind)
}
