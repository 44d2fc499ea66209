// File: internal/infra/web/server.go
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"carta-do-futuro/internal/domain/ports/adapter"
	"carta-do-futuro/internal/infra/logging"
	"carta-do-futuro/internal/infra/redis"
	"carta-do-futuro/internal/usecase"
)

type Server struct {
	checkoutUC    usecase.CheckoutUseCase
	entitlementUC usecase.EntitlementUseCase
	resumeUC      usecase.ResumeUseCase
	letterUC      usecase.LetterUseCase
	profileUC     usecase.ProfileUseCase
	gateway       adapter.PaymentGateway
	verifier      adapter.TokenVerifier
	signature     *SignatureVerifier
	limiter       *redis.RateLimiter // may be nil
	log           *zerolog.Logger
}

func NewServer(
	checkoutUC usecase.CheckoutUseCase,
	entitlementUC usecase.EntitlementUseCase,
	resumeUC usecase.ResumeUseCase,
	letterUC usecase.LetterUseCase,
	profileUC usecase.ProfileUseCase,
	gateway adapter.PaymentGateway,
	verifier adapter.TokenVerifier,
	signature *SignatureVerifier,
	limiter *redis.RateLimiter,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		checkoutUC:    checkoutUC,
		entitlementUC: entitlementUC,
		resumeUC:      resumeUC,
		letterUC:      letterUC,
		profileUC:     profileUC,
		gateway:       gateway,
		verifier:      verifier,
		signature:     signature,
		limiter:       limiter,
		log:           logger,
	}
}

// Router assembles the public HTTP surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogContext)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/api/mercado-pago/create-checkout", s.authenticated(s.handleCreateCheckout))
	r.Post("/api/mercado-pago/webhook", s.handleWebhook)

	r.Post("/api/checkout/resume-token", s.handleIssueResumeToken)
	r.Post("/api/checkout/resume", s.authenticated(s.handleResumeCheckout))

	r.Route("/api/profile", func(r chi.Router) {
		r.Post("/", s.authenticated(s.handleRegisterProfile))
		r.Get("/", s.authenticated(s.handleGetProfile))
	})

	r.Route("/api/letters", func(r chi.Router) {
		r.Post("/", s.authenticated(s.handleCreateLetter))
		r.Get("/", s.authenticated(s.handleListLetters))
		r.Get("/{id}", s.authenticated(s.handleGetLetter))
		r.Delete("/{id}", s.authenticated(s.handleDeleteLetter))
		r.Get("/{id}/media", s.authenticated(s.handleLetterMedia))
	})

	return r
}

type ctxKey string

const callerKey ctxKey = "caller"

// requestLogContext mirrors chi's request id into the logging context so
// handlers deriving a logger via logging.With emit it as request_id.
func requestLogContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			r = r.WithContext(logging.WithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// authenticated validates the bearer token before the wrapped handler runs.
// The resolved caller is placed in the request context.
func (s *Server) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing or malformed authorization header", "")
			return
		}
		caller, err := s.verifier.VerifyToken(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid identity token", "")
			return
		}
		ctx := context.WithValue(r.Context(), callerKey, caller)
		ctx = logging.WithUserID(ctx, caller.ID)
		next(w, r.WithContext(ctx))
	}
}

func callerFrom(ctx context.Context) *adapter.AuthUser {
	caller, _ := ctx.Value(callerKey).(*adapter.AuthUser)
	return caller
}

func bearerToken(r *http.Request) string {
	hdr := r.Header.Get("Authorization")
	if hdr == "" || !strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
		return ""
	}
	return strings.TrimSpace(hdr[7:])
}

// allowCheckout applies the per-user checkout rate limit when a limiter is
// configured. Limiter outages fail open; checkout must not depend on Redis.
func (s *Server) allowCheckout(ctx context.Context, userID string) bool {
	if s.limiter == nil {
		return true
	}
	ok, err := s.limiter.Allow(ctx, redis.CheckoutKey(userID), 10, time.Minute)
	if err != nil {
		s.log.Warn().Err(err).Msg("rate limiter unavailable")
		return true
	}
	return ok
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	body := struct {
		Error   string `json:"error"`
		Details string `json:"details,omitempty"`
	}{Error: msg, Details: details}
	writeJSON(w, status, body)
}
