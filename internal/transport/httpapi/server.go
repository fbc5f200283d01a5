package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"DealsTracker/internal/domain"
	"DealsTracker/internal/usecase"
)

const maxBodyBytes = 1 << 20

// SeedLoader returns the curated deals used by the seed endpoint.
type SeedLoader func() ([]domain.Deal, error)

// Services groups the use cases exposed over HTTP.
type Services struct {
	Deals       *usecase.Deals
	Review      *usecase.ReviewQueue
	Intake      *usecase.Intake
	Ingestor    *usecase.Ingestor
	Chat        *usecase.Chat
	Maintenance *usecase.Maintenance
	Trigger     *usecase.TriggerAuthorizer
	SeedLoader  SeedLoader
}

// Server is the JSON API in front of the use cases.
type Server struct {
	svc             Services
	schedulerHeader string
	logger          *slog.Logger
}

func New(svc Services, schedulerHeader string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{svc: svc, schedulerHeader: schedulerHeader, logger: logger}
}

// Routes returns a chi.Router with every endpoint mounted under /api.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.health)
		r.Get("/dashboard", s.dashboard)

		r.Route("/deals", func(r chi.Router) {
			r.Get("/", s.listDeals)
			r.Post("/", s.createDeal)
			r.Get("/public", s.publicDeals)
			r.Post("/seed", s.seed)
			r.Post("/fix-dates", s.fixDates)
			r.Get("/{id}", s.getDeal)
			r.Put("/{id}", s.updateDeal)
			r.Delete("/{id}", s.deleteDeal)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/stats", s.adminStats)
			r.Get("/pending", s.pendingDeals)
			r.Post("/review", s.review)
		})

		r.Post("/extract-deal", s.extractDeal)
		r.Get("/cron/fetch-deals", s.fetchDeals)
		r.Post("/cron/fetch-deals", s.fetchDeals)
		r.Post("/ai-chat", s.chat)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: code, Message: message})
}

// fail maps a use-case error onto a status and error code.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, status, code, err.Error())
}

func classify(err error) (int, string) {
	var parseErr *domain.ParseError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrDuplicate):
		return http.StatusConflict, "duplicate"
	case errors.Is(err, domain.ErrNotADeal):
		return http.StatusUnprocessableEntity, "not_a_deal"
	case errors.As(err, &parseErr):
		return http.StatusUnprocessableEntity, "parse"
	case errors.Is(err, domain.ErrInvalid):
		return http.StatusBadRequest, "invalid"
	case errors.Is(err, domain.ErrQuotaExhausted):
		return http.StatusTooManyRequests, "quota"
	case errors.Is(err, domain.ErrNoArticleText):
		return http.StatusBadRequest, "no_text"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrNotConfigured):
		return http.StatusInternalServerError, "config"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return &domain.ValidationError{Field: "body", Reason: err.Error()}
	}
	return nil
}
