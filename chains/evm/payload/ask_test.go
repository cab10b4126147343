package payload_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"

	"github.com/swaplane/twap-engine/chains/evm/payload"
)

type AskTestSuite struct {
	suite.Suite

	input payload.AskInput
}

func TestRunAskTestSuite(t *testing.T) {
	suite.Run(t, new(AskTestSuite))
}

func (s *AskTestSuite) SetupTest() {
	s.input = payload.AskInput{
		Exchange:        common.HexToAddress("0x0000000000000000000000000000000000000001"),
		SrcToken:        common.HexToAddress("0x0000000000000000000000000000000000000002"),
		DstToken:        common.HexToAddress("0x0000000000000000000000000000000000000003"),
		SrcAmount:       big.NewInt(1000),
		SrcChunkAmount:  big.NewInt(100),
		DstMinAmount:    big.NewInt(1),
		DeadlineMillis:  1700000000000,
		FillDelayMillis: 600000,
		BidDelaySeconds: 30,
	}
}

func (s *AskTestSuite) Test_Build() {
	args, ok := s.input.Build()

	s.True(ok)
	s.Len(args, 10)
	s.Equal(s.input.Exchange, args[0])
	s.Equal(big.NewInt(1700000000), args[6])
	s.Equal(big.NewInt(30), args[7])
	// (600000 - 30*2*1000) / 1000
	s.Equal(big.NewInt(540), args[8])
	s.Equal([]byte{}, args[9])
}

func (s *AskTestSuite) Test_Build_MissingAmount() {
	s.input.SrcAmount = nil

	_, ok := s.input.Build()

	s.False(ok)
}

func (s *AskTestSuite) Test_Build_MissingDeadline() {
	s.input.DeadlineMillis = 0

	_, ok := s.input.Build()

	s.False(ok)
}
