package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	leagueservice "github.com/stridelabs/stride-backend/app/modules/league/application"
	leaguequeue "github.com/stridelabs/stride-backend/app/modules/league/infrastructure/queue"
	userservice "github.com/stridelabs/stride-backend/app/modules/user/application"
	"github.com/stridelabs/stride-backend/config"
)

// Server is the backend's HTTP surface: league endpoints, user profile
// endpoints, and health. Authentication is terminated upstream; the
// gateway injects the caller identity as the X-User-ID header.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer wires the chi router. The join endpoint carries a per-client
// rate limit since it is the only write amplified by retry loops.
func NewServer(
	cfg *config.Config,
	league leagueservice.Service,
	users userservice.Service,
	queue leaguequeue.QueueService,
	logger *slog.Logger,
) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	h := &handlers{
		league: league,
		users:  users,
		queue:  queue,
		logger: logger,
	}

	joinLimiter := newRateLimiter(cfg.HTTP.JoinRatePerSecond, cfg.HTTP.JoinRateBurst)

	r.Route("/api", func(r chi.Router) {
		r.Route("/league", func(r chi.Router) {
			r.With(joinLimiter.middleware).Post("/join", h.joinLeague)
			r.Get("/me", h.currentStanding)
			r.Get("/rooms/{roomID}/leaderboard", h.roomLeaderboard)
			r.Get("/history", h.outcomeHistory)
			r.Get("/tiers", h.listTiers)
		})
		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.registerUser)
			r.Get("/{userID}", h.getUser)
			r.Patch("/{userID}", h.updateUser)
		})
		r.Route("/admin", func(r chi.Router) {
			r.Post("/league/rollover", h.scheduleRollover)
			r.Get("/league/jobs", h.scheduledJobs)
		})
	})
	r.Get("/healthz", h.healthz)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.HTTP.Addr,
			Handler:      r,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		},
		logger: logger,
	}
}

// Start blocks serving requests until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.logger.Info("http server listening", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
