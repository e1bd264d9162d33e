package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dgallion1/contractlens/internal/config"
	"github.com/dgallion1/contractlens/internal/llm"
	"github.com/dgallion1/contractlens/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Extractor turns an uploaded file into document text.
type Extractor interface {
	Extract(data []byte, filename string) (string, error)
}

// Service runs analyses and answers questions over document text.
type Service interface {
	Analyze(ctx context.Context, text string) (*pipeline.Result, error)
	Ask(ctx context.Context, text, question string) (*pipeline.Answer, error)
}

// Server is the HTTP API server for the contract analyzer.
type Server struct {
	router    chi.Router
	extractor Extractor
	service   Service
	stats     *llm.Stats
	log       *slog.Logger
	cfg       config.Config
}

// NewServer creates and configures the HTTP server. stats may be nil.
func NewServer(ext Extractor, svc Service, stats *llm.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		extractor: ext,
		service:   svc,
		stats:     stats,
		log:       log,
		cfg:       cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public endpoints.
	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Options("/analyze", s.handleAnalyzeOptions)

	r.Group(func(r chi.Router) {
		if s.cfg.ServiceAPIKey != "" {
			r.Use(AuthMiddleware(s.cfg.ServiceAPIKey, s.log))
		}

		r.Post("/analyze", s.handleAnalyze)
		r.Post("/ask", s.handleAsk)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Contract Analyzer API is running"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
