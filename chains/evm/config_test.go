// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package evm_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"

	"github.com/swaplane/twap-engine/chains/evm"
	"github.com/swaplane/twap-engine/config"
	"github.com/swaplane/twap-engine/config/chain"
)

type NewEVMConfigTestSuite struct {
	suite.Suite
}

func TestRunNewEVMConfigTestSuite(t *testing.T) {
	suite.Run(t, new(NewEVMConfigTestSuite))
}

func (s *NewEVMConfigTestSuite) Test_FailedDecode() {
	_, err := evm.NewEVMConfig(map[string]interface{}{
		"bidDelaySeconds": "invalid",
	})

	s.NotNil(err)
}

func (s *NewEVMConfigTestSuite) Test_FailedGeneralConfigValidation() {
	_, err := evm.NewEVMConfig(map[string]interface{}{})

	s.NotNil(err)
}

func (s *NewEVMConfigTestSuite) Test_MissingTwapContract() {
	_, err := evm.NewEVMConfig(map[string]interface{}{
		"id":       1,
		"endpoint": "ws://domain.com",
		"name":     "evm1",
		"exchange": "0xE2a6D7c4B9C6a3F0E6a90b0f8A3E847B634De045",
	})

	s.NotNil(err)
}

func (s *NewEVMConfigTestSuite) Test_UnknownOrderType() {
	_, err := evm.NewEVMConfig(map[string]interface{}{
		"id":           1,
		"endpoint":     "ws://domain.com",
		"name":         "evm1",
		"twapContract": "0xF1b9D7c4B9C6a3F0E6a90b0f8A3E847B634De046",
		"exchange":     "0xE2a6D7c4B9C6a3F0E6a90b0f8A3E847B634De045",
		"orderType":    "immediate",
	})

	s.NotNil(err)
}

func (s *NewEVMConfigTestSuite) Test_SignedOrderTypeRequiresOrderAPI() {
	_, err := evm.NewEVMConfig(map[string]interface{}{
		"id":           1,
		"endpoint":     "ws://domain.com",
		"name":         "evm1",
		"twapContract": "0xF1b9D7c4B9C6a3F0E6a90b0f8A3E847B634De046",
		"exchange":     "0xE2a6D7c4B9C6a3F0E6a90b0f8A3E847B634De045",
		"orderType":    "signed",
	})

	s.NotNil(err)
}

func (s *NewEVMConfigTestSuite) Test_ValidConfig() {
	rawConfig := map[string]interface{}{
		"id":           1,
		"endpoint":     "ws://domain.com",
		"name":         "evm1",
		"twapContract": "0xF1b9D7c4B9C6a3F0E6a90b0f8A3E847B634De046",
		"wrappedToken": "0x4200000000000000000000000000000000000006",
		"exchange":     "0xE2a6D7c4B9C6a3F0E6a90b0f8A3E847B634De045",
		"indexerUrl":   "https://indexer.domain.com/graphql",
	}

	actualConfig, err := evm.NewEVMConfig(rawConfig)

	id := new(uint64)
	*id = 1
	s.Nil(err)
	s.Equal(*actualConfig, evm.EVMConfig{
		GeneralChainConfig: chain.GeneralChainConfig{
			Name:     "evm1",
			Endpoint: "ws://domain.com",
			Id:       id,
		},
		TwapContract:    common.HexToAddress("0xF1b9D7c4B9C6a3F0E6a90b0f8A3E847B634De046"),
		WrappedToken:    common.HexToAddress("0x4200000000000000000000000000000000000006"),
		Exchange:        common.HexToAddress("0xE2a6D7c4B9C6a3F0E6a90b0f8A3E847B634De045"),
		OrderType:       evm.OrderTypeLegacy,
		BidDelaySeconds: 60,
		MinChunkSizeUsd: 10,
		IndexerURL:      "https://indexer.domain.com/graphql",
		Tokens:          make(map[string]config.TokenConfig),
	})
}

func (s *NewEVMConfigTestSuite) Test_ValidConfigWithTokens() {
	rawConfig := map[string]interface{}{
		"id":              1,
		"endpoint":        "ws://domain.com",
		"name":            "evm1",
		"twapContract":    "0xF1b9D7c4B9C6a3F0E6a90b0f8A3E847B634De046",
		"wrappedToken":    "0x4200000000000000000000000000000000000006",
		"exchange":        "0xE2a6D7c4B9C6a3F0E6a90b0f8A3E847B634De045",
		"orderType":       "signed",
		"orderApiUrl":     "https://orders.domain.com",
		"bidDelaySeconds": 30,
		"minChunkSizeUsd": 50,
		"maxOrderSizeUsd": 100000,
		"tokens": []map[string]interface{}{
			{
				"symbol":   "usdc",
				"address":  "0xdBBE3D8c2d2b22A2611c5A94A9a12C2fCD49Eb29",
				"decimals": 6,
			},
			{
				"symbol":   "eth",
				"address":  "0x4200000000000000000000000000000000000006",
				"decimals": 18,
				"native":   true,
			},
		},
	}

	actualConfig, err := evm.NewEVMConfig(rawConfig)

	s.Nil(err)
	s.Equal(evm.OrderTypeSigned, actualConfig.OrderType)
	s.Equal(uint64(30), actualConfig.BidDelaySeconds)
	s.Equal(uint64(50), actualConfig.MinChunkSizeUsd)
	s.Equal(uint64(100000), actualConfig.MaxOrderSizeUsd)
	s.Equal(config.TokenConfig{
		Address:  common.HexToAddress("0xdBBE3D8c2d2b22A2611c5A94A9a12C2fCD49Eb29"),
		Decimals: 6,
	}, actualConfig.Tokens["usdc"])
	s.True(actualConfig.Tokens["eth"].Native)
}
