// Package rest exposes the identity service over HTTP/JSON.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/investdesk/internal/logging"
	"github.com/dmitrijs2005/investdesk/internal/server/auth"
	"github.com/dmitrijs2005/investdesk/internal/server/models"
	"github.com/dmitrijs2005/investdesk/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

// IdentityService is what the handlers need from services.IdentityService.
type IdentityService interface {
	Register(ctx context.Context, email string, password []byte) error
	VerifyEmail(ctx context.Context, email, code string) error
	ResendCode(ctx context.Context, email string) error
	Login(ctx context.Context, email string, password []byte, ip string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Authenticate(ctx context.Context, accessToken string) (auth.Identity, error)
	ListSessions(ctx context.Context, id auth.Identity) ([]models.Session, error)
	DeleteSession(ctx context.Context, id auth.Identity, sessionID int64) error
}

type Server struct {
	address  string
	basePath string
	identity IdentityService
	logger   logging.Logger
	mux      *http.ServeMux
}

func NewServer(address, basePath string, l logging.Logger, identity IdentityService) *Server {
	s := &Server{
		address:  address,
		basePath: strings.TrimRight(basePath, "/"),
		identity: identity,
		logger:   l.With("module", "http_server"),
		mux:      http.NewServeMux(),
	}
	s.initRoutes()
	return s
}

func (s *Server) initRoutes() {
	s.route("POST /auth/register", s.handleRegister)
	s.route("POST /auth/verify-email", s.handleVerifyEmail)
	s.route("POST /auth/resend-verification-code", s.handleResendCode)
	s.route("POST /auth/login", s.handleLogin)
	s.route("POST /auth/refresh", s.handleRefresh)

	s.route("GET /auth/me", s.requireAuth(s.handleMe))
	s.route("GET /auth/sessions", s.requireAuth(s.handleSessions))
	s.route("DELETE /auth/sessions/{id}", s.requireAuth(s.handleDeleteSession))
}

// route registers pattern ("METHOD /path") under the base path.
func (s *Server) route(pattern string, h http.HandlerFunc) {
	method, path, _ := strings.Cut(pattern, " ")
	s.mux.Handle(method+" "+s.basePath+path, s.logRequests(h))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String(), "base_path", s.basePath)

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-done
}
