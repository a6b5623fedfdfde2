package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Anshika-404/MockMate/internal/call"
	"github.com/Anshika-404/MockMate/internal/config"
	"github.com/Anshika-404/MockMate/internal/feedback"
	"github.com/Anshika-404/MockMate/internal/models"
)

// Consumer-side interfaces over the services the server orchestrates.

type sessionGateway interface {
	SignUp(ctx context.Context, idToken, name, email string) (*models.User, error)
	SignIn(ctx context.Context, email, idToken string) (string, error)
	Resolve(ctx context.Context, token string) (*models.User, error)
	Destroy(ctx context.Context, token string) error
	SessionCookie(token string) *http.Cookie
	ClearCookie() *http.Cookie
	CookieName() string
}

type questionService interface {
	Generate(ctx context.Context, req models.GenerateRequest) (*models.Interview, error)
}

type feedbackService interface {
	Generate(ctx context.Context, params feedback.Params) feedback.Result
	Find(ctx context.Context, interviewID, userID string) (*models.Feedback, error)
}

type interviewReader interface {
	GetInterview(ctx context.Context, id string) (*models.Interview, error)
	ListInterviewsByUser(ctx context.Context, userID string) ([]*models.Interview, error)
	ListAvailableInterviews(ctx context.Context, excludeUserID string, limit int) ([]*models.Interview, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP API server
type Server struct {
	config     config.ServerConfig
	router     *chi.Mux
	auth       sessionGateway
	questions  questionService
	feedback   feedbackService
	interviews interviewReader
	runner     *call.Runner
	registry   *call.Registry
	health     []pinger
	sessionMW  *SessionMiddleware
}

// NewServer creates a new API server
func NewServer(
	cfg config.ServerConfig,
	gateway sessionGateway,
	questions questionService,
	feedbackSvc feedbackService,
	interviews interviewReader,
	runner *call.Runner,
	registry *call.Registry,
	health ...pinger,
) *Server {
	s := &Server{
		config:     cfg,
		auth:       gateway,
		questions:  questions,
		feedback:   feedbackSvc,
		interviews: interviews,
		runner:     runner,
		registry:   registry,
		health:     health,
		sessionMW:  NewSessionMiddleware(gateway),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Plain HTTP routes run under a request timeout. The call gateway does
	// not: it hijacks the connection and holds it open for the length of
	// the interview.
	requestTimeout := middleware.Timeout(150 * time.Second)

	r.Group(func(r chi.Router) {
		r.Use(requestTimeout)

		// Health check (public)
		r.Get("/health", s.handleHealth)
		r.Get("/ready", s.handleReady)

		// Question generation keeps its legacy path and wire contract.
		r.Post("/api/vapi/generate", s.handleGenerate)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(requestTimeout)

			// Auth entry points (no session required)
			r.Post("/auth/signup", s.handleSignUp)
			r.Post("/auth/signin", s.handleSignIn)

			// Session-protected routes
			r.Group(func(r chi.Router) {
				r.Use(s.sessionMW.Authenticate)

				r.Post("/auth/signout", s.handleSignOut)
				r.Get("/auth/me", s.handleMe)

				r.Get("/dashboard", s.handleDashboard)

				r.Get("/interviews/{id}", s.handleGetInterview)
				r.Get("/interviews/{id}/feedback", s.handleGetFeedback)
				r.Post("/interviews/{id}/feedback", s.handleRegenerateFeedback)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(s.sessionMW.Authenticate)
			r.Get("/interviews/{id}/call", s.handleCallWS)
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
