// Package httpclient implements the upstream client pool: an ordered set
// of egress clients (one direct, N proxy-bound), startup proxy probing,
// and the shuffle/retry/backoff request algorithm shared by every
// upstream integration.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quanhua92/aipriceaction-sub000/internal/apperr"
	"github.com/quanhua92/aipriceaction-sub000/internal/ratelimit"
)

const (
	defaultTimeout    = 30 * time.Second
	proxyProbeTimeout = 10 * time.Second
	maxRetries        = 5
	maxBackoff        = 60 * time.Second
)

// Egress is one candidate HTTP client, either direct or routed through a
// single upstream proxy.
type Egress struct {
	Label  string
	Client *http.Client
}

// Pool fans a single logical request out across every configured egress,
// gated by a shared sliding-window rate limiter.
type Pool struct {
	mu         sync.RWMutex
	egresses   []Egress
	limiter    *ratelimit.SlidingWindow
	log        zerolog.Logger
	timeout    time.Duration
	backoffUnit time.Duration

	directEnabled bool
	proxyURIs     []string
	probeURL      string
}

// NewPool builds a pool from a direct-egress flag and a list of proxy
// URIs. Each proxy is probed on construction with a short-timeout GET to
// probeURL; proxies that fail the probe are dropped. If probeURL is empty,
// probing is skipped (useful for tests).
func NewPool(directEnabled bool, proxyURIs []string, probeURL string, limiter *ratelimit.SlidingWindow, log zerolog.Logger) *Pool {
	p := &Pool{
		limiter:       limiter,
		log:           log.With().Str("component", "httpclient").Logger(),
		timeout:       defaultTimeout,
		backoffUnit:   time.Second,
		directEnabled: directEnabled,
		proxyURIs:     proxyURIs,
		probeURL:      probeURL,
	}
	p.egresses = p.buildEgresses()
	return p
}

// buildEgresses probes every configured proxy URI and returns the set
// that currently responds; dropped proxies are logged but never
// prevent the remaining egresses from being used.
func (p *Pool) buildEgresses() []Egress {
	var egresses []Egress

	if p.directEnabled {
		egresses = append(egresses, Egress{Label: "direct", Client: &http.Client{Timeout: defaultTimeout}})
	}

	for _, proxyURI := range p.proxyURIs {
		client, err := clientForProxy(proxyURI)
		if err != nil {
			p.log.Warn().Err(err).Str("proxy", proxyURI).Msg("invalid proxy URI, dropping")
			continue
		}
		if p.probeURL != "" && !probe(client, p.probeURL) {
			p.log.Warn().Str("proxy", proxyURI).Msg("proxy failed probe, dropping")
			continue
		}
		egresses = append(egresses, Egress{Label: proxyURI, Client: client})
	}

	return egresses
}

// Reprobe re-runs the startup probe against every originally configured
// proxy and swaps in the resulting egress set. A proxy that was dropped
// at startup (or by a previous Reprobe) is retried here, and one that
// has gone stale is dropped. Called periodically by the maintenance
// cron job; safe to call concurrently with Do.
func (p *Pool) Reprobe() {
	fresh := p.buildEgresses()
	p.mu.Lock()
	before := len(p.egresses)
	p.egresses = fresh
	p.mu.Unlock()
	p.log.Info().Int("before", before).Int("after", len(fresh)).Msg("egress pool reprobed")
}

func (p *Pool) snapshot() []Egress {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.egresses
}

func clientForProxy(proxyURI string) (*http.Client, error) {
	parsed, err := url.Parse(proxyURI)
	if err != nil {
		return nil, fmt.Errorf("parse proxy uri: %w", err)
	}
	transport := &http.Transport{Proxy: http.ProxyURL(parsed)}
	return &http.Client{Transport: transport, Timeout: defaultTimeout}, nil
}

func probe(client *http.Client, probeURL string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), proxyProbeTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 500
}

// Request describes one logical upstream call.
type Request struct {
	Method  string
	URL     string
	Body    any // marshaled to JSON if non-nil
	Headers map[string]string
}

// Do executes Request per the pool's shuffle/retry/backoff algorithm and
// unmarshals the JSON response body into out. Returns
// apperr.ErrExhaustedAllEgresses if every client, across every retry,
// failed.
func (p *Pool) Do(ctx context.Context, req Request, out any) error {
	egresses := p.snapshot()
	if len(egresses) == 0 {
		return fmt.Errorf("no egress clients configured: %w", apperr.ErrFatal)
	}

	var bodyBytes []byte
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", apperr.ErrInvalidInput)
		}
		bodyBytes = b
	}

	order := shuffledIndices(len(egresses))

	for _, idx := range order {
		eg := egresses[idx]
		for attempt := 1; attempt <= maxRetries; attempt++ {
			if err := p.limiter.Acquire(ctx); err != nil {
				return err
			}

			status, respBody, err := p.attempt(ctx, eg, req.Method, req.URL, bodyBytes, req.Headers)
			if err != nil {
				p.log.Debug().Err(err).Str("egress", eg.Label).Int("attempt", attempt).Msg("request error, will retry")
				p.backoff(ctx, attempt)
				continue
			}

			if status >= 200 && status < 300 {
				if out == nil {
					return nil
				}
				if err := json.Unmarshal(respBody, out); err != nil {
					p.log.Debug().Err(err).Str("egress", eg.Label).Msg("json parse failed, retrying")
					p.backoff(ctx, attempt)
					continue
				}
				return nil
			}

			if status == 429 || status == 403 || status >= 500 {
				p.log.Debug().Str("egress", eg.Label).Int("status", status).Int("attempt", attempt).Msg("retryable status")
				p.backoff(ctx, attempt)
				continue
			}

			// Any other non-2xx status (e.g. 4xx other than 403/429): abort
			// immediately, don't try other clients.
			return fmt.Errorf("upstream returned status %d: %w", status, apperr.ErrInvalidInput)
		}
	}

	return apperr.ErrExhaustedAllEgresses
}

func (p *Pool) attempt(ctx context.Context, eg Egress, method, rawURL string, body []byte, headers map[string]string) (int, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		if strings.EqualFold(k, "Host") {
			httpReq.Host = v
			continue
		}
		httpReq.Header.Set(k, v)
	}

	resp, err := eg.Client.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", apperr.ErrNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", apperr.ErrNetwork, err)
	}
	return resp.StatusCode, respBody, nil
}

func (p *Pool) backoff(ctx context.Context, attempt int) {
	unit := p.backoffUnit
	if unit <= 0 {
		unit = time.Second
	}
	delay := time.Duration(1<<uint(attempt-1)) * unit
	if delay > maxBackoff {
		delay = maxBackoff
	}
	jitter := time.Duration(rand.Int63n(int64(unit)))
	delay += jitter

	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}

func shuffledIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rand.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	return idx
}
