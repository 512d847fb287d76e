package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/taproom/pkg/domain/model"
	"github.com/secmon-lab/taproom/pkg/domain/types"
	"github.com/secmon-lab/taproom/pkg/service/metrics"
	"github.com/secmon-lab/taproom/pkg/utils/errutil"
	"github.com/secmon-lab/taproom/pkg/utils/logging"
	"github.com/secmon-lab/taproom/pkg/utils/safe"
)

// BeerUseCase is the engine behind the beer endpoints
type BeerUseCase interface {
	DefaultCount() int
	Ingest(ctx context.Context, count int) (*model.IngestReport, error)
	QueryByFilter(ctx context.Context, dim types.Dimension, explicit string, mem model.FilterMemory) ([]*model.Beer, model.FilterMemory, error)
	GetBeer(ctx context.Context, id int64) (*model.Beer, error)
	ListBeers(ctx context.Context) ([]*model.Beer, error)
	CreateBeer(ctx context.Context, draft *model.BeerDraft) (*model.Beer, error)
	UpdateBeer(ctx context.Context, id int64, patch *model.BeerPatch) (*model.Beer, error)
	DeleteBeer(ctx context.Context, id int64) (*model.Beer, error)
}

type Server struct {
	router       *chi.Mux
	metrics      *metrics.Collector
	secureCookie bool
}

type Options func(*Server)

// WithMetrics records request metrics and serves them on /metrics
func WithMetrics(collector *metrics.Collector) Options {
	return func(s *Server) {
		s.metrics = collector
	}
}

// WithSecureCookie marks filter memory cookies as Secure
func WithSecureCookie(secure bool) Options {
	return func(s *Server) {
		s.secureCookie = secure
	}
}

func New(beerUC BeerUseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	r.Use(s.accessLogger)
	r.Use(middleware.Recoverer)

	h := &beerHandler{uc: beerUC, secureCookie: s.secureCookie}

	r.Get("/new-beers", h.newBeers)
	r.Route("/saved-beers", func(r chi.Router) {
		r.Get("/", h.savedBeers)
		r.Post("/", h.createBeer)
		r.Put("/{id}", h.updateBeer)
		r.Delete("/{id}", h.deleteBeer)
	})
	r.Get("/beers-by-style", h.query(types.DimensionStyle, "style"))
	r.Get("/beers-by-brand", h.query(types.DimensionBrand, "brand"))
	r.Get("/beers-alcohol-upperlimit", h.query(types.DimensionAlcoholUpper, "limit"))
	r.Get("/beers-alcohol-lowerlimit", h.query(types.DimensionAlcoholLower, "limit"))

	r.Get("/health", healthHandler)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger logs every request and attaches a request scoped logger to
// the context
func (s *Server) accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.Default().With(slog.String("request_id", middleware.GetReqID(r.Context())))
		r = r.WithContext(logging.With(r.Context(), logger))

		defer func() {
			elapsed := time.Since(start)
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", elapsed,
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			s.metrics.ObserveHTTP(r.Method, route, ww.Status(), elapsed)
		}()

		next.ServeHTTP(ww, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(ctx, w, data)
}
