// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package evm

import (
	"fmt"

	"github.com/creasty/defaults"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mitchellh/mapstructure"

	"github.com/swaplane/twap-engine/config"
	"github.com/swaplane/twap-engine/config/chain"
)

const (
	OrderTypeLegacy = "legacy"
	OrderTypeSigned = "signed"
)

type EVMConfig struct {
	GeneralChainConfig chain.GeneralChainConfig

	TwapContract common.Address
	WrappedToken common.Address
	Exchange     common.Address

	// legacy orders submit an on-chain ask, signed orders relay a signed
	// typed-data order through the order API
	OrderType string

	BidDelaySeconds uint64
	MinChunkSizeUsd uint64
	// 0 disables the maximal order size limit
	MaxOrderSizeUsd uint64

	IndexerURL  string
	OrderAPIURL string

	Tokens map[string]config.TokenConfig
}

type RawTokenConfig struct {
	Symbol   string `mapstructure:"symbol"`
	Address  string `mapstructure:"address"`
	Decimals uint8  `mapstructure:"decimals"`
	Native   bool   `mapstructure:"native"`
}

type RawEVMConfig struct {
	chain.GeneralChainConfig `mapstructure:",squash"`

	TwapContract string `mapstructure:"twapContract"`
	WrappedToken string `mapstructure:"wrappedToken"`
	Exchange     string `mapstructure:"exchange"`

	OrderType       string `mapstructure:"orderType" default:"legacy"`
	BidDelaySeconds uint64 `mapstructure:"bidDelaySeconds" default:"60"`
	MinChunkSizeUsd uint64 `mapstructure:"minChunkSizeUsd" default:"10"`
	MaxOrderSizeUsd uint64 `mapstructure:"maxOrderSizeUsd" default:"0"`

	IndexerURL  string `mapstructure:"indexerUrl"`
	OrderAPIURL string `mapstructure:"orderApiUrl"`

	Tokens []RawTokenConfig `mapstructure:"tokens"`
}

func (c *RawEVMConfig) Validate() error {
	if err := c.GeneralChainConfig.Validate(); err != nil {
		return err
	}
	if c.TwapContract == "" {
		return fmt.Errorf("required field chain.TwapContract empty for chain %v", *c.Id)
	}
	if c.Exchange == "" {
		return fmt.Errorf("required field chain.Exchange empty for chain %v", *c.Id)
	}
	if c.OrderType != OrderTypeLegacy && c.OrderType != OrderTypeSigned {
		return fmt.Errorf("unknown order type %s for chain %v", c.OrderType, *c.Id)
	}
	if c.OrderType == OrderTypeSigned && c.OrderAPIURL == "" {
		return fmt.Errorf("required field chain.OrderAPIURL empty for signed order chain %v", *c.Id)
	}
	if c.OrderType == OrderTypeLegacy && c.IndexerURL == "" {
		return fmt.Errorf("required field chain.IndexerURL empty for legacy order chain %v", *c.Id)
	}
	return nil
}

// NewEVMConfig decodes and validates an instance of an EVMConfig from
// raw chain config
func NewEVMConfig(chainConfig map[string]interface{}) (*EVMConfig, error) {
	var c RawEVMConfig
	err := mapstructure.Decode(chainConfig, &c)
	if err != nil {
		return nil, err
	}

	err = defaults.Set(&c)
	if err != nil {
		return nil, err
	}

	err = c.Validate()
	if err != nil {
		return nil, err
	}

	tokens := make(map[string]config.TokenConfig)
	for _, t := range c.Tokens {
		tokens[t.Symbol] = config.TokenConfig{
			Address:  common.HexToAddress(t.Address),
			Decimals: t.Decimals,
			Native:   t.Native,
		}
	}

	return &EVMConfig{
		GeneralChainConfig: c.GeneralChainConfig,
		TwapContract:       common.HexToAddress(c.TwapContract),
		WrappedToken:       common.HexToAddress(c.WrappedToken),
		Exchange:           common.HexToAddress(c.Exchange),
		OrderType:          c.OrderType,
		BidDelaySeconds:    c.BidDelaySeconds,
		MinChunkSizeUsd:    c.MinChunkSizeUsd,
		MaxOrderSizeUsd:    c.MaxOrderSizeUsd,
		IndexerURL:         c.IndexerURL,
		OrderAPIURL:        c.OrderAPIURL,
		Tokens:             tokens,
	}, nil
}
