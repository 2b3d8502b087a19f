// Package server implements the HTTP query API of §6.1: ticker history,
// health, sector groups, and the analytics endpoints, served over the
// shared datastore.Store instances.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/quanhua92/aipriceaction-sub000/internal/datastore"
	srvmw "github.com/quanhua92/aipriceaction-sub000/internal/server/middleware"
	"github.com/quanhua92/aipriceaction-sub000/internal/tickergroups"
	"github.com/quanhua92/aipriceaction-sub000/internal/worker"
)

// Options configures Server construction.
type Options struct {
	Port    int
	DevMode bool

	MarketStore *datastore.Store
	CryptoStore *datastore.Store
	Groups      tickergroups.Groups
	Health      *worker.HealthStats

	RateLimitRPS   float64
	RateLimitBurst int

	Log zerolog.Logger
}

// Server wires the chi router and its http.Server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server

	marketStore *datastore.Store
	cryptoStore *datastore.Store
	groups      tickergroups.Groups
	health      *worker.HealthStats

	limiter *srvmw.IPLimiter
	log     zerolog.Logger
}

// New builds a Server and wires its middleware and routes. Call Start
// to begin serving.
func New(opts Options) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		marketStore: opts.MarketStore,
		cryptoStore: opts.CryptoStore,
		groups:      opts.Groups,
		health:      opts.Health,
		limiter:     srvmw.NewIPLimiter(opts.RateLimitRPS, opts.RateLimitBurst, 15*time.Minute),
		log:         opts.Log.With().Str("component", "server").Logger(),
	}

	s.setupMiddleware(opts.DevMode)
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(chimw.Recoverer)
	s.router.Use(srvmw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(chimw.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.router.Use(s.limiter.Middleware)

	if !devMode {
		s.router.Use(chimw.Compress(5))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/tickers", s.handleTickers)
	s.router.Get("/tickers/group", s.handleTickerGroups)

	s.router.Route("/analysis", func(r chi.Router) {
		r.Get("/top-performers", s.handleTopPerformers)
		r.Get("/ma-scores-by-sector", s.handleMAScoresBySector)
		r.Get("/volume-profile", s.handleVolumeProfile)
	})
}

// Start serves until the listener fails or Shutdown is called; returns
// http.ErrServerClosed on a clean shutdown.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("starting http server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", srvmw.RequestIDFromContext(r.Context())).
			Msg("http request")
	})
}

// storeFor selects the market or crypto datastore by the request's mode
// parameter ("vn", the default, or "crypto"). This extends §6.1's
// formal query-parameter list with the "mode" switch §6.5 requires: a
// sibling instance proxies crypto data through this same /tickers
// endpoint with mode=crypto.
func (s *Server) storeFor(mode string) *datastore.Store {
	if mode == "crypto" {
		return s.cryptoStore
	}
	return s.marketStore
}
