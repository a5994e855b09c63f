package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"standup-audit-bot/internal/domain"
	"standup-audit-bot/internal/usecase/audit"
)

// CheckRunner запускает проверку вручную с публикацией в тестовый канал.
type CheckRunner interface {
	RunTest(ctx context.Context, label string) (domain.CheckReport, error)
}

// Server оборачивает chi.Router с базовыми middlewares.
type Server struct {
	Router chi.Router
	log    zerolog.Logger
	srv    *http.Server
}

// NewServer создаёт HTTP сервер с health, метриками и ручным запуском проверок.
func NewServer(logger zerolog.Logger, addr string, runner CheckRunner) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/api/v1/checks/{label}/run", runCheckHandler(logger, runner))

	return &Server{
		Router: r,
		log:    logger,
		srv: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 15 * time.Second,
			WriteTimeout:      5 * time.Minute,
		},
	}
}

// Start запускает http.Server и блокируется до его остановки.
// Если Shutdown уже был вызван, сразу возвращает nil.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.srv.Addr).Msg("HTTP сервер запущен")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown корректно завершает работу сервера.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func runCheckHandler(logger zerolog.Logger, runner CheckRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		label := chi.URLParam(r, "label")
		// Проверка доводится до конца, даже если клиент отключился.
		report, err := runner.RunTest(context.WithoutCancel(r.Context()), label)
		switch {
		case errors.Is(err, audit.ErrUnknownDirection):
			writeError(w, http.StatusNotFound, "unknown check")
		case errors.Is(err, audit.ErrNoTestChannel):
			writeError(w, http.StatusPreconditionFailed, "TEST_CHANNEL_ID is not configured")
		case err != nil:
			logger.Error().Err(err).Str("check", label).Msg("http: ручной запуск завершился ошибкой")
			writeError(w, http.StatusBadGateway, err.Error())
		default:
			writeJSON(w, http.StatusOK, report)
		}
	}
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("took", time.Since(start)).
				Msg("http: запрос")
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
