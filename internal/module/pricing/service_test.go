package pricing_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nljewellers/ledger/internal/infra/gateway/goldapi"
	"github.com/nljewellers/ledger/internal/module/pricing"
	"github.com/nljewellers/ledger/pkg/config"
	"github.com/nljewellers/ledger/pkg/logger"
)

// mockProvider implements pricing.RateProvider for testing
type mockProvider struct {
	rates *goldapi.Rates
	err   error
	calls int
}

func (m *mockProvider) GetRates(ctx context.Context) (*goldapi.Rates, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.rates, nil
}

// mockCache implements pricing.RateCache for testing
type mockCache struct {
	fresh *goldapi.Rates
	stale *goldapi.Rates
	set   *goldapi.Rates
}

func (m *mockCache) Get(ctx context.Context) (*goldapi.Rates, bool, error) {
	return m.fresh, m.fresh != nil, nil
}

func (m *mockCache) GetStale(ctx context.Context) (*goldapi.Rates, bool, error) {
	return m.stale, m.stale != nil, nil
}

func (m *mockCache) Set(ctx context.Context, rates *goldapi.Rates) error {
	m.set = rates
	return nil
}

func testRates(gold, silver string) *goldapi.Rates {
	return &goldapi.Rates{
		GoldPerGram:   decimal.RequireFromString(gold),
		SilverPerGram: decimal.RequireFromString(silver),
		FetchedAt:     time.Now(),
	}
}

func newService(provider pricing.RateProvider, cache pricing.RateCache) *pricing.Service {
	return pricing.NewService(provider, cache, config.DefaultPurityConfig(), logger.New("development", io.Discard))
}

func TestCurrentRates(t *testing.T) {
	ctx := context.Background()

	t.Run("Cache_Hit_Skips_API", func(t *testing.T) {
		provider := &mockProvider{rates: testRates("7000", "90")}
		cache := &mockCache{fresh: testRates("6900", "88")}
		svc := newService(provider, cache)

		rates, err := svc.CurrentRates(ctx)
		require.NoError(t, err)
		assert.Equal(t, "6900", rates.GoldPerGram.String())
		assert.Zero(t, provider.calls)
	})

	t.Run("Cache_Miss_Fetches_And_Stores", func(t *testing.T) {
		provider := &mockProvider{rates: testRates("7000", "90")}
		cache := &mockCache{}
		svc := newService(provider, cache)

		rates, err := svc.CurrentRates(ctx)
		require.NoError(t, err)
		assert.Equal(t, "7000", rates.GoldPerGram.String())
		require.NotNil(t, cache.set)
		assert.Equal(t, "7000", cache.set.GoldPerGram.String())
	})

	t.Run("API_Down_Serves_Stale", func(t *testing.T) {
		provider := &mockProvider{err: errors.New("api down")}
		cache := &mockCache{stale: testRates("6800", "85")}
		svc := newService(provider, cache)

		rates, err := svc.CurrentRates(ctx)
		require.NoError(t, err)
		assert.Equal(t, "6800", rates.GoldPerGram.String())
	})

	t.Run("API_Down_No_Cache_Fails", func(t *testing.T) {
		provider := &mockProvider{err: errors.New("api down")}
		svc := newService(provider, nil)

		_, err := svc.CurrentRates(ctx)
		assert.Error(t, err)
	})
}

func TestEstimate(t *testing.T) {
	ctx := context.Background()
	provider := &mockProvider{rates: testRates("7000", "90")}
	svc := newService(provider, nil)

	t.Run("Gold_With_Making_Charge", func(t *testing.T) {
		est, err := svc.Estimate(ctx, decimal.RequireFromString("10"), "916", decimal.NewFromInt(10))
		require.NoError(t, err)

		// 10g x 0.916 x 7000 = 64120, plus 10% making charge
		assert.True(t, est.MetalValue.Equal(decimal.RequireFromString("64120")))
		assert.True(t, est.MakingCharge.Equal(decimal.RequireFromString("6412")))
		assert.True(t, est.TotalValue.Equal(decimal.RequireFromString("70532")))
		assert.True(t, est.RatePerGram.Equal(decimal.RequireFromString("7000")))
	})

	t.Run("Silver_Uses_Silver_Rate", func(t *testing.T) {
		est, err := svc.Estimate(ctx, decimal.RequireFromString("100"), "925", decimal.Zero)
		require.NoError(t, err)

		// 100g x 0.925 x 90 = 8325
		assert.True(t, est.MetalValue.Equal(decimal.RequireFromString("8325")))
		assert.True(t, est.RatePerGram.Equal(decimal.RequireFromString("90")))
		assert.True(t, est.MakingCharge.IsZero())
	})

	t.Run("Unknown_Purity", func(t *testing.T) {
		_, err := svc.Estimate(ctx, decimal.NewFromInt(1), "833", decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("Negative_Weight", func(t *testing.T) {
		_, err := svc.Estimate(ctx, decimal.RequireFromString("-1"), "916", decimal.Zero)
		assert.Error(t, err)
	})
}
