// Package upstream wires the concrete brokerage/crypto-provider clients
// against fetcher.Client and composes the crypto failover policy.
package upstream

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

var errNoCryptoSource = errors.New("upstream: no crypto source configured")

// client is satisfied by vci.Client, cryptocompare.Client and
// siblingproxy.Client alike; kept unexported since callers only need the
// fetcher.Client-shaped composite below.
type client interface {
	FetchBatch(ctx context.Context, symbols []string, start, end time.Time, iv models.Interval) (map[string][]models.OHLCV, error)
}

// CryptoSource picks a primary crypto upstream and falls back to the
// other on primary failure, per the sibling-instance proxy preference
// rule: when a sibling proxy is configured it is primary, otherwise the
// crypto provider is used directly and the sibling (if also configured)
// is the fallback.
type CryptoSource struct {
	primary  client
	fallback client
	log      zerolog.Logger
}

// NewCryptoSource builds the composite. Either argument may be nil; at
// least one must be non-nil. If siblingProxy is non-nil it is primary.
func NewCryptoSource(siblingProxy, provider client, log zerolog.Logger) *CryptoSource {
	log = log.With().Str("component", "crypto_source").Logger()
	if siblingProxy != nil {
		return &CryptoSource{primary: siblingProxy, fallback: provider, log: log}
	}
	return &CryptoSource{primary: provider, fallback: siblingProxy, log: log}
}

func (s *CryptoSource) FetchBatch(ctx context.Context, symbols []string, start, end time.Time, iv models.Interval) (map[string][]models.OHLCV, error) {
	if s.primary == nil && s.fallback == nil {
		return nil, errNoCryptoSource
	}

	if s.primary != nil {
		data, err := s.primary.FetchBatch(ctx, symbols, start, end, iv)
		if err == nil {
			return data, nil
		}
		if s.fallback == nil {
			return nil, err
		}
		s.log.Warn().Err(err).Msg("primary crypto source failed, trying fallback")
	}
	return s.fallback.FetchBatch(ctx, symbols, start, end, iv)
}
