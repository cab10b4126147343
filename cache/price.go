package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

const (
	PRICE_TTL = time.Minute * 1
)

type PriceSource interface {
	TokenPrice(ctx context.Context, symbol string) (float64, error)
}

// PriceCache memoizes USD token prices for PRICE_TTL. Draft recomputation
// queries prices on every keystroke, so hitting the upstream API each time
// would exhaust its rate limit.
type PriceCache struct {
	priceCache *ttlcache.Cache[string, float64]

	source PriceSource
}

func NewPriceCache(source PriceSource) *PriceCache {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, float64](PRICE_TTL),
	)

	pc := &PriceCache{
		priceCache: cache,
		source:     source,
	}

	go cache.Start()
	return pc
}

func (p *PriceCache) TokenPrice(ctx context.Context, symbol string) (float64, error) {
	cached := p.priceCache.Get(symbol)
	if cached != nil {
		return cached.Value(), nil
	}

	price, err := p.source.TokenPrice(ctx, symbol)
	if err != nil {
		return 0, err
	}

	p.priceCache.Set(symbol, price, ttlcache.DefaultTTL)
	return price, nil
}

func (p *PriceCache) Stop() {
	p.priceCache.Stop()
}
