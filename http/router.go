package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"cadastro/db"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Pessoas   db.Repository[db.Pessoa]
	Enderecos db.Repository[db.Endereco]
	// Health is pinged by GET /health; nil always reports ok.
	Health Pinger
	Logger *slog.Logger
	Policy StatusPolicy
	// Registry enables request metrics and GET /metrics when set.
	Registry *prometheus.Registry
	// Limiter enables the global rate limit when set.
	Limiter *rate.Limiter
}

func NewRouter(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var metrics *Metrics
	if cfg.Registry != nil {
		metrics = NewMetrics(cfg.Registry)
	}
	tracer := otel.Tracer("cadastro/http")

	router := httprouter.New()
	handle := func(method, path string, h httprouter.Handle) {
		router.Handle(method, path, instrument(path, metrics, tracer, h))
	}

	pessoas := NewPessoaResource(cfg.Pessoas, cfg.Policy)
	handle(http.MethodPost, "/api/pessoas", pessoas.Create)
	handle(http.MethodPut, "/api/pessoas", pessoas.Update)
	handle(http.MethodGet, "/api/pessoas", pessoas.ListAll)
	handle(http.MethodGet, "/api/pessoas/:id", pessoas.GetById)
	handle(http.MethodDelete, "/api/pessoas/:id", pessoas.DeleteById)

	enderecos := NewEnderecoResource(cfg.Enderecos, cfg.Policy)
	handle(http.MethodPost, "/api/enderecos", enderecos.Create)
	handle(http.MethodPut, "/api/enderecos", enderecos.Update)
	handle(http.MethodGet, "/api/enderecos", enderecos.ListAll)
	handle(http.MethodGet, "/api/enderecos/:id", enderecos.GetById)
	handle(http.MethodDelete, "/api/enderecos/:id", enderecos.DeleteById)

	router.GET("/health", health(cfg.Health))
	if cfg.Registry != nil {
		router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}

	// preflight requests; CORS headers are added by the middleware
	router.GlobalOPTIONS = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	var h http.Handler = router
	if cfg.Limiter != nil {
		h = RateLimit(cfg.Limiter)(h)
	}
	h = CORS(h)
	h = middleware.Recoverer(h)
	h = RequestLogger(logger)(h)
	h = middleware.RealIP(h)
	return h
}

func health(pinger Pinger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if pinger != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := pinger.Ping(ctx); err != nil {
				logger(r.Context()).WarnContext(r.Context(), "health check failed", "error", err)
				writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	}
}
