// Package api provides the HTTP API server and handlers for the Ryha CMS.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ryhaapp/ryha-server/internal/logger"
	"github.com/ryhaapp/ryha-server/internal/media/images"
	"github.com/ryhaapp/ryha-server/internal/ratelimit"
	"github.com/ryhaapp/ryha-server/internal/store"
)

// Options configures the HTTP surface.
type Options struct {
	Version     string
	CORSOrigins []string
	// Login attempts allowed per client IP.
	LoginRatePerSecond float64
	LoginBurst         int
	// Read-aloud requests allowed per client IP.
	SpeechRatePerSecond float64
	SpeechBurst         int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store         *store.Store
	services      *Services
	media         *images.Storage
	router        *chi.Mux
	api           huma.API
	logger        *slog.Logger
	loginLimiter  *ratelimit.KeyedRateLimiter
	speechLimiter *ratelimit.KeyedRateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
// media may be nil, in which case /media returns 404.
func NewServer(st *store.Store, services *Services, media *images.Storage, opts Options, log *slog.Logger) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.LoginRatePerSecond <= 0 {
		opts.LoginRatePerSecond = 0.2
	}
	if opts.LoginBurst <= 0 {
		opts.LoginBurst = 5
	}
	if opts.SpeechRatePerSecond <= 0 {
		opts.SpeechRatePerSecond = 0.5
	}
	if opts.SpeechBurst <= 0 {
		opts.SpeechBurst = 10
	}

	s := &Server{
		store:         st,
		services:      services,
		media:         media,
		router:        chi.NewRouter(),
		logger:        logger.OrDiscard(log),
		loginLimiter:  ratelimit.New(opts.LoginRatePerSecond, opts.LoginBurst),
		speechLimiter: ratelimit.New(opts.SpeechRatePerSecond, opts.SpeechBurst),
	}

	s.setupMiddleware(opts.CORSOrigins)

	humaConfig := huma.DefaultConfig("Ryha CMS API", opts.Version)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, used by tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	s.loginLimiter.Stop()
	s.speechLimiter.Stop()
}

func (s *Server) setupMiddleware(origins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerPublicPostRoutes()
	s.registerSpeechRoutes()
	s.registerTaxonomyRoutes()
	s.registerSearchRoutes()
	s.registerAuthRoutes()
	s.registerAdminPostRoutes()
	s.registerAdminTaxonomyRoutes()
	s.registerGenerationRoutes()

	s.router.Get(images.URLPrefix+"{name}", s.handleMedia)
}
