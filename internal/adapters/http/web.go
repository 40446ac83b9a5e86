package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"bookclub/internal/adapters/http/metrics"
	"bookclub/internal/adapters/http/middleware"
	bookStore "bookclub/internal/adapters/storage/book"
	galleryStore "bookclub/internal/adapters/storage/gallery"
	meetupStore "bookclub/internal/adapters/storage/meetup"
	memberStore "bookclub/internal/adapters/storage/member"
	portalStore "bookclub/internal/adapters/storage/portal"
	profileStore "bookclub/internal/adapters/storage/profile"
	suggestionStore "bookclub/internal/adapters/storage/suggestion"
	voteStore "bookclub/internal/adapters/storage/vote"
	"bookclub/internal/application/orchestrators"
)

// Stores holds all storage dependencies.
type Stores struct {
	Profiles    profileStore.Store
	Members     memberStore.Store
	Books       bookStore.Store
	Suggestions suggestionStore.Store
	Votes       voteStore.Store
	Gallery     galleryStore.Store
	Meetups     meetupStore.Store
	Portal      portalStore.Store
}

// Mailer sends the account emails.
type Mailer interface {
	SendWelcome(ctx context.Context, to, name, password string) error
	SendInvite(ctx context.Context, to, name, token string) error
	SendReset(ctx context.Context, to, name, token string) error
}

// Pinger reports database reachability for /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Default limits applied when Config leaves them zero.
const (
	DefaultRateLimit         = 10
	DefaultAuthRatePerMinute = 10
)

// Config holds the HTTP settings.
type Config struct {
	Secure            bool   // cookies carry the Secure flag
	CSRFKey           []byte // 32 bytes
	TrustedOrigins    []string
	StaticDir         string
	RateLimit         int // sustained requests per second per IP
	AuthRatePerMinute int // login, forgot and reset attempts per minute per IP
	SlowRequest       time.Duration
}

// Deps are the collaborators of the server.
type Deps struct {
	Stores  Stores
	Mailer  Mailer
	Issuer  *middleware.TokenIssuer
	Metrics *metrics.Metrics // may be nil
	Log     *zap.Logger      // may be nil
	DB      Pinger           // may be nil
	Clock   func() time.Time // nil means time.Now
}

// Server serves the JSON API and the static site.
type Server struct {
	cfg     Config
	stores  Stores
	mailer  Mailer
	issuer  *middleware.TokenIssuer
	metrics *metrics.Metrics
	log     *zap.Logger
	db      Pinger
	clock   func() time.Time
}

// NewServer creates a server.
// PRE: deps.Stores are all set, deps.Issuer and deps.Mailer are non-nil
func NewServer(cfg Config, deps Deps) *Server {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.AuthRatePerMinute <= 0 {
		cfg.AuthRatePerMinute = DefaultAuthRatePerMinute
	}
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Server{
		cfg:     cfg,
		stores:  deps.Stores,
		mailer:  deps.Mailer,
		issuer:  deps.Issuer,
		metrics: deps.Metrics,
		log:     log,
		db:      deps.DB,
		clock:   clock,
	}
}

// now returns the server clock in UTC.
func (s *Server) now() time.Time {
	return s.clock().UTC()
}

// orchestratorClock adapts the server clock for orchestrator deps.
func (s *Server) orchestratorClock() orchestrators.Clock {
	return orchestrators.Clock(s.clock)
}

// ValidateSession drops sessions of deleted or deactivated profiles and
// refreshes the identity fields so role changes apply on the next request.
func (s *Server) ValidateSession(ctx context.Context, session middleware.Session) (middleware.Session, error) {
	p, err := s.stores.Profiles.GetByID(ctx, session.ProfileID)
	if err != nil {
		return middleware.Session{}, err
	}
	if !p.IsActive {
		return middleware.Session{}, orchestrators.ErrAccountDeactivated
	}
	session.Email = p.Email
	session.Name = p.FullName
	session.Role = p.Role
	session.Image = p.AvatarURL
	return session, nil
}

// Handler builds the router.
//
// Middleware order, outermost first: RequestID, RealIP, Timing, Recover,
// SecurityHeaders, RateLimit, Auth, CSRF.
func (s *Server) Handler() http.Handler {
	limiter := middleware.NewRateLimiter(float64(s.cfg.RateLimit), s.cfg.RateLimit*2, s.log)
	authLimiter := middleware.NewRateLimiter(float64(s.cfg.AuthRatePerMinute)/60, s.cfg.AuthRatePerMinute, s.log)

	r := chi.NewRouter()
	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		middleware.Timing(s.metrics, s.log, s.cfg.SlowRequest),
		middleware.Recover(s.log),
		middleware.SecurityHeaders,
		middleware.RateLimit(limiter),
		middleware.Auth(s.issuer, s),
		middleware.CSRF(s.cfg.CSRFKey, s.cfg.Secure, s.cfg.TrustedOrigins),
	)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusNotFound, "Not found")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.RateLimit(authLimiter)).Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.Get("/session", s.handleSession)
			r.Get("/csrf", s.handleCSRFToken)
			r.With(middleware.RateLimit(authLimiter)).Post("/forgot-password", s.handleForgotPassword)
			r.With(middleware.RateLimit(authLimiter)).Post("/reset-password", s.handleResetPassword)
		})

		r.Route("/admin", func(r chi.Router) {
			r.With(middleware.RequireAdmin).Get("/stats", s.handleAdminStats)
			r.With(middleware.RequireAdmin).Get("/users", s.handleListUsers)
			r.With(middleware.RequireAdmin).Post("/users", s.handleCreateUser)
			r.With(middleware.RequireAdmin).Put("/users", s.handleUpdateUser)
			r.With(middleware.RequireRole(roleSuperAdmin)).Delete("/users", s.handleDeleteUser)
		})

		r.Get("/members", s.handleListMembers)
		r.With(middleware.RequireAdmin).Post("/members", s.handleCreateMember)
		r.With(middleware.RequireAdmin).Put("/members", s.handleUpdateMember)
		r.With(middleware.RequireAdmin).Delete("/members", s.handleDeleteMember)

		r.With(middleware.RequireAuth).Get("/member/profile", s.handleGetMemberProfile)
		r.With(middleware.RequireAuth).Put("/member/profile", s.handleUpdateMemberProfile)
		r.With(middleware.RequireAuth).Post("/member/profile", s.handleLinkMember)

		r.Get("/books", s.handleListBooks)
		r.With(middleware.RequireAdmin).Post("/books", s.handleCreateBook)
		r.With(middleware.RequireAdmin).Put("/books", s.handleUpdateBook)
		r.With(middleware.RequireAdmin).Delete("/books", s.handleDeleteBook)

		r.Get("/suggestions", s.handleSuggestionBoard)
		r.With(middleware.RequireAuth).Post("/suggestions", s.handleCreateSuggestion)
		r.With(middleware.RequireAuth).Delete("/suggestions", s.handleDeleteSuggestion)

		r.With(middleware.RequireAuth).Post("/votes", s.handleCastVote)
		r.With(middleware.RequireAuth).Delete("/votes", s.handleRetractVote)

		r.Get("/portal-status", s.handleGetPortalStatus)
		r.With(middleware.RequireAdmin).Put("/portal-status", s.handleUpsertPortalStatus)

		r.Get("/gallery", s.handleListGallery)
		r.With(middleware.RequireAuth).Post("/gallery", s.handleCreateGalleryItem)
		r.With(middleware.RequireAdmin).Put("/gallery", s.handleUpdateGalleryItem)
		r.With(middleware.RequireAdmin).Delete("/gallery", s.handleDeleteGalleryItem)

		r.Get("/meetups", s.handleListMeetups)
		r.Get("/meetups/timeline", s.handleMeetupTimeline)
		r.Get("/meetups/{id}/calendar", s.handleMeetupCalendar)
		r.With(middleware.RequireAdmin).Post("/meetups", s.handleCreateMeetup)
		r.With(middleware.RequireAdmin).Put("/meetups", s.handleUpdateMeetup)
		r.With(middleware.RequireAdmin).Delete("/meetups", s.handleDeleteMeetup)

		r.Get("/calendar", s.handleCalendar)
	})

	if s.cfg.StaticDir != "" {
		files := http.FileServer(http.Dir(s.cfg.StaticDir))
		r.With(middleware.PageGuard).Handle("/*", files)
	} else {
		r.With(middleware.PageGuard).Handle("/*", http.NotFoundHandler())
	}
	return r
}

// handleHealth pings the database.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.log.Error("health_check_failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
