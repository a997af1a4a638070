package quote

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/weiwei-tsao/gold-catalog/internal/platform/cache"
)

// GramsPerTroyOunce converts the upstream per-ounce quote to grams.
const GramsPerTroyOunce = 31.1035

const cacheKey = "gold:pricePerGram"

// OunceQuoter returns the gold price per troy ounce.
type OunceQuoter interface {
	PricePerOunce(ctx context.Context) (float64, error)
}

// Service answers the internal gold endpoint.
type Service struct {
	quoter OunceQuoter
	cache  cache.Store
	ttl    time.Duration
}

// NewService creates a quote service. A nil store or a zero ttl disables caching.
func NewService(quoter OunceQuoter, store cache.Store, ttl time.Duration) *Service {
	if store == nil {
		ttl = 0
	}
	return &Service{quoter: quoter, cache: store, ttl: ttl}
}

// PricePerGram returns the price per gram formatted with two decimals.
// Errors from the quoter are returned unchanged so callers can inspect them.
func (s *Service) PricePerGram(ctx context.Context) (string, error) {
	if s.ttl > 0 {
		if val, ok, err := s.cache.Get(ctx, cacheKey); err != nil {
			slog.Warn("quote cache read failed", "error", err)
		} else if ok {
			return val, nil
		}
	}

	perOunce, err := s.quoter.PricePerOunce(ctx)
	if err != nil {
		return "", err
	}
	perGram := FormatPerGram(perOunce)

	if s.ttl > 0 {
		if err := s.cache.Set(ctx, cacheKey, perGram, s.ttl); err != nil {
			slog.Warn("quote cache write failed", "error", err)
		}
	}
	return perGram, nil
}

// FormatPerGram converts a per-ounce price to a per-gram string with two decimals.
func FormatPerGram(perOunce float64) string {
	return strconv.FormatFloat(perOunce/GramsPerTroyOunce, 'f', 2, 64)
}

// ParsePerGram is the inverse of FormatPerGram for callers that need the number.
func ParsePerGram(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price per gram %q: %w", s, err)
	}
	return v, nil
}
