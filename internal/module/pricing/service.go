// Package pricing implements the gold calculator: live spot rates and
// value estimates for a weight at a given purity.
package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nljewellers/ledger/internal/infra/gateway/goldapi"
	"github.com/nljewellers/ledger/pkg/config"
	"github.com/nljewellers/ledger/pkg/logger"
)

// RateProvider fetches live per-gram rates.
type RateProvider interface {
	GetRates(ctx context.Context) (*goldapi.Rates, error)
}

// RateCache caches rates with a fresh and a stale window.
type RateCache interface {
	Get(ctx context.Context) (*goldapi.Rates, bool, error)
	GetStale(ctx context.Context) (*goldapi.Rates, bool, error)
	Set(ctx context.Context, rates *goldapi.Rates) error
}

// Service answers rate and estimate queries.
type Service struct {
	provider RateProvider
	cache    RateCache // may be nil when Redis is not configured
	purities *config.PurityConfig
	log      *logger.Logger
}

// NewService creates a pricing service.
func NewService(provider RateProvider, cache RateCache, purities *config.PurityConfig, log *logger.Logger) *Service {
	return &Service{
		provider: provider,
		cache:    cache,
		purities: purities,
		log:      log.WithField("component", "pricing"),
	}
}

// CurrentRates returns per-gram rates: cache first, then the API, then the
// stale cache window when the API is down.
func (s *Service) CurrentRates(ctx context.Context) (*goldapi.Rates, error) {
	if s.cache != nil {
		rates, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.log.WithError(err).Warn("rate cache read failed")
		} else if ok {
			return rates, nil
		}
	}

	rates, err := s.provider.GetRates(ctx)
	if err == nil {
		if s.cache != nil {
			if cacheErr := s.cache.Set(ctx, rates); cacheErr != nil {
				s.log.WithError(cacheErr).Warn("rate cache write failed")
			}
		}
		return rates, nil
	}

	if s.cache != nil {
		stale, ok, staleErr := s.cache.GetStale(ctx)
		if staleErr == nil && ok {
			s.log.WithError(err).Warn("price API failed, serving stale rates")
			return stale, nil
		}
	}

	return nil, fmt.Errorf("failed to fetch rates: %w", err)
}

// Estimate is the calculator result for one weight/purity pair.
type Estimate struct {
	WeightGrams   decimal.Decimal `json:"weightGrams"`
	Purity        string          `json:"purity"`
	Fineness      decimal.Decimal `json:"fineness"`
	RatePerGram   decimal.Decimal `json:"ratePerGram"`   // fine metal rate
	MetalValue    decimal.Decimal `json:"metalValue"`    // weight × fineness × rate
	MakingCharge  decimal.Decimal `json:"makingCharge"`  // percentage applied on metal value
	TotalValue    decimal.Decimal `json:"totalValue"`
}

// Estimate computes the value of a weight at a purity, with an optional
// making-charge percentage on top of the metal value.
func (s *Service) Estimate(ctx context.Context, weight decimal.Decimal, purity string, makingPct decimal.Decimal) (*Estimate, error) {
	if weight.IsNegative() {
		return nil, fmt.Errorf("weight cannot be negative")
	}

	p, ok := s.purities.Get(purity)
	if !ok {
		return nil, fmt.Errorf("unknown purity code %q", purity)
	}

	rates, err := s.CurrentRates(ctx)
	if err != nil {
		return nil, err
	}

	rate := rates.GoldPerGram
	if p.Metal == "silver" {
		rate = rates.SilverPerGram
	}

	f := decimal.NewFromFloat(p.Fineness)
	metal := weight.Mul(f).Mul(rate).Round(2)
	making := metal.Mul(makingPct).Div(decimal.NewFromInt(100)).Round(2)

	return &Estimate{
		WeightGrams:  weight,
		Purity:       purity,
		Fineness:     f,
		RatePerGram:  rate,
		MetalValue:   metal,
		MakingCharge: making,
		TotalValue:   metal.Add(making),
	}, nil
}
