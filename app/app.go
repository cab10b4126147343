// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/swaplane/twap-engine/api"
	"github.com/swaplane/twap-engine/api/handlers"
	"github.com/swaplane/twap-engine/cache"
	"github.com/swaplane/twap-engine/chains/evm"
	"github.com/swaplane/twap-engine/config"
	"github.com/swaplane/twap-engine/health"
	"github.com/swaplane/twap-engine/observability"
	"github.com/swaplane/twap-engine/orders"
	"github.com/swaplane/twap-engine/price"
	"github.com/swaplane/twap-engine/protocol/indexer"
	"github.com/swaplane/twap-engine/protocol/orderapi"
	"github.com/swaplane/twap-engine/store"
)

var Version string

func Run() error {
	var err error

	configFlag := viper.GetString(config.ConfigFlagName)

	var configuration *config.Config
	if strings.ToLower(configFlag) == "env" {
		configuration, err = config.GetConfigFromENV()
		panicOnError(err)
	} else {
		configuration, err = config.GetConfigFromFile(configFlag)
		panicOnError(err)
	}

	err = observability.ConfigureLogger(configuration.EngineConfig.LogLevel, os.Stdout)
	panicOnError(err)

	log.Info().Msg("Successfully loaded configuration")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mp, err := observability.InitMetricProvider(ctx, configuration.EngineConfig.OpenTelemetryCollectorURL)
	panicOnError(err)
	defer func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			log.Error().Msgf("Error shutting down meter provider: %v", err)
		}
	}()

	storePath := viper.GetString(config.StoreFlagName)
	if configuration.EngineConfig.StorePath != "" {
		storePath = configuration.EngineConfig.StorePath
	}
	db, err := store.NewLvlDB(storePath)
	panicOnError(err)
	defer db.Close()
	optimisticStore := orders.NewOptimisticStore(db)

	priceAPI := price.NewCoinmarketcapAPI(
		configuration.EngineConfig.PriceAPIURL,
		configuration.EngineConfig.PriceAPIKey)
	priceCache := cache.NewPriceCache(priceAPI)
	defer priceCache.Stop()

	go health.StartHealthEndpoint(configuration.EngineConfig.HealthPort)

	refreshInterval := time.Duration(configuration.EngineConfig.OrderRefreshInterval) * time.Second
	orderProviders := make(map[uint64]handlers.OrderProvider)
	quoteEnvs := make(map[uint64]handlers.ChainQuoteEnv)

	for _, chainConfig := range configuration.ChainConfigs {
		switch chainConfig["type"] {
		case "evm":
			{
				config, err := evm.NewEVMConfig(chainConfig)
				panicOnError(err)

				chainID := *config.GeneralChainConfig.Id
				log.Info().Uint64("chain", chainID).Msgf("Registering EVM chain")

				sources := make([]orders.Source, 0, 2)
				if config.IndexerURL != "" {
					sources = append(sources, indexer.NewIndexerAPI(config.IndexerURL, config.Exchange.Hex()))
				}
				if config.OrderAPIURL != "" {
					sources = append(sources, orderapi.NewOrderAPI(config.OrderAPIURL, chainID))
				}

				reconciler := orders.NewReconciler(config.Exchange.Hex(), optimisticStore, sources...)
				refresher := orders.NewRefresher(reconciler, refreshInterval)
				go refresher.Run(ctx)

				orderProviders[chainID] = refresher
				quoteEnvs[chainID] = handlers.ChainQuoteEnv{
					Tokens:          config.Tokens,
					MinChunkSizeUsd: config.MinChunkSizeUsd,
					MaxOrderSizeUsd: config.MaxOrderSizeUsd,
				}
			}
		default:
			panic(fmt.Errorf("type '%s' not recognized", chainConfig["type"]))
		}
	}

	ordersHandler := handlers.NewOrdersHandler(orderProviders)
	quoteHandler := handlers.NewQuoteHandler(priceCache, quoteEnvs)

	go api.Serve(
		ctx,
		fmt.Sprintf(":%d", configuration.EngineConfig.ApiPort),
		ordersHandler,
		quoteHandler,
	)

	log.Info().Msgf("Started twap-engine %s", Version)
	<-ctx.Done()
	log.Info().Msg("Shutting down")
	return nil
}

func panicOnError(err error) {
	if err != nil {
		panic(err)
	}
}
