package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/investdesk/internal/client/models"
	"github.com/dmitrijs2005/investdesk/internal/common"
	"github.com/dmitrijs2005/investdesk/internal/logging"
	"github.com/dmitrijs2005/investdesk/internal/netx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTimeout = 10 * time.Second

	refreshKey = "refresh"
	// expirySkew treats a JWT as expired slightly early so it does not lapse
	// in transit.
	expirySkew = 5 * time.Second
)

// errNoRefreshToken means a 401 could not be recovered because no refresh
// token is stored. Callers get the original 401 instead.
var errNoRefreshToken = errors.New("no refresh token")

// CredentialStore is the part of the credential store the gateway needs.
type CredentialStore interface {
	Tokens() (accessToken, refreshToken string)
	SetTokens(ctx context.Context, accessToken, refreshToken string) error
	Clear(ctx context.Context) error
}

// Refresher exchanges a refresh token for a new pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error)
}

// Request is one call to the identity service. Path is relative to the
// gateway's base URL.
type Request struct {
	Method string
	Path   string
	Body   any
	// Public requests carry no bearer credential and a 401 on them is final.
	Public bool
}

// failedRefresh is the outcome of the last refresh that ended the session,
// keyed by the access token the triggering request was sent with.
type failedRefresh struct {
	accessToken string
	err         error
}

// pendingRequest threads per-call state through the gateway. retried is set
// before the single replay so a request is never replayed twice.
type pendingRequest struct {
	req         *Request
	requestID   string
	retried     bool
	tokenAtSend string
}

// Gateway sends requests to the identity service, attaching the bearer token
// and recovering from one 401 per request by refreshing the token pair.
//
// Concurrent 401s share one refresh: the first starts it, the others wait for
// its outcome. The refresh is not tied to any caller's context, so a caller
// giving up does not cancel it for the others.
type Gateway struct {
	baseURL   string
	http      *http.Client
	timeout   time.Duration
	store     CredentialStore
	refresher Refresher
	logger    logging.Logger
	onExpired func(ctx context.Context)
	now       func() time.Time

	refreshes singleflight.Group

	mu          sync.Mutex
	lastFailure *failedRefresh
}

type GatewayOption func(*Gateway)

// WithHTTPClient replaces the default client; its Timeout is overridden
// only when zero.
func WithHTTPClient(c *http.Client) GatewayOption {
	return func(g *Gateway) { g.http = c }
}

func WithTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func WithLogger(l logging.Logger) GatewayOption {
	return func(g *Gateway) { g.logger = l }
}

// WithSessionExpiredHandler registers the callback fired after credentials
// were cleared because the session could not be refreshed. The UI uses it
// to return to its unauthenticated entry point.
func WithSessionExpiredHandler(fn func(ctx context.Context)) GatewayOption {
	return func(g *Gateway) { g.onExpired = fn }
}

func withClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) { g.now = now }
}

func NewGateway(baseURL string, store CredentialStore, refresher Refresher, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		baseURL:   strings.TrimRight(baseURL, "/"),
		timeout:   DefaultTimeout,
		store:     store,
		refresher: refresher,
		logger:    logging.Nop(),
		onExpired: func(context.Context) {},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.http == nil {
		g.http = &http.Client{}
	}
	if g.http.Timeout == 0 {
		g.http.Timeout = g.timeout
	}
	return g
}

// BaseURL is the configured endpoint, as used in diagnostics.
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// Do sends req and decodes a 2xx JSON body into out (which may be nil).
// A 401 on a non-public request triggers at most one refresh-and-replay; the
// replay's outcome is returned as is.
func (g *Gateway) Do(ctx context.Context, req *Request, out any) error {
	p := &pendingRequest{req: req, requestID: uuid.NewString()}

	for {
		err := g.send(ctx, p, out)
		if req.Public || p.retried || !errors.Is(err, ErrUnauthorized) {
			return err
		}
		p.retried = true

		if rerr := g.awaitFreshToken(ctx, p); rerr != nil {
			if errors.Is(rerr, errNoRefreshToken) {
				return err
			}
			g.logger.Warn(ctx, "request rejected after failed refresh",
				"request_id", p.requestID, "path", req.Path, "error", rerr)
			return rerr
		}

		g.logger.Debug(ctx, "replaying request with refreshed token",
			"request_id", p.requestID, "path", req.Path)
	}
}

// awaitFreshToken makes sure the store holds a token pair newer than the one
// p was sent with, refreshing at most once across all concurrent callers.
func (g *Gateway) awaitFreshToken(ctx context.Context, p *pendingRequest) error {
	if current, _ := g.store.Tokens(); current != "" && current != p.tokenAtSend {
		return nil
	}

	detached := context.WithoutCancel(ctx)
	sentWith := p.tokenAtSend
	ch := g.refreshes.DoChan(refreshKey, func() (any, error) {
		return nil, g.refresh(detached, sentWith)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// refresh rotates the pair on behalf of a request sent with sentWith. A
// caller can reach it after an earlier refresh for the same token has
// settled; it then reuses that outcome instead of refreshing again.
func (g *Gateway) refresh(ctx context.Context, sentWith string) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	accessToken, refreshToken := g.store.Tokens()
	if accessToken != "" && accessToken != sentWith {
		return nil
	}
	if failed := g.failureFor(sentWith); failed != nil {
		return failed
	}

	if refreshToken == "" {
		g.fail(ctx, sentWith, errNoRefreshToken)
		return errNoRefreshToken
	}

	g.logger.Info(ctx, "refreshing session tokens")

	pair, err := g.refresher.Refresh(ctx, refreshToken)
	if err != nil {
		g.fail(ctx, sentWith, err)
		return err
	}

	// The server has already retired the old pair, so a pair that cannot be
	// stored ends the session.
	if err := g.store.SetTokens(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		err = fmt.Errorf("store refreshed tokens: %w", err)
		g.fail(ctx, sentWith, err)
		return err
	}

	g.mu.Lock()
	g.lastFailure = nil
	g.mu.Unlock()

	g.logger.Info(ctx, "session tokens refreshed")
	return nil
}

func (g *Gateway) failureFor(accessToken string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lastFailure == nil || g.lastFailure.accessToken != accessToken {
		return nil
	}
	return g.lastFailure.err
}

func (g *Gateway) fail(ctx context.Context, sentWith string, cause error) {
	g.mu.Lock()
	g.lastFailure = &failedRefresh{accessToken: sentWith, err: cause}
	g.mu.Unlock()

	g.expire(ctx, cause)
}

// expire is the only path to a forced logout.
func (g *Gateway) expire(ctx context.Context, cause error) {
	g.logger.Warn(ctx, "session expired, clearing credentials", "cause", cause)
	if err := g.store.Clear(ctx); err != nil {
		g.logger.Error(ctx, "failed to clear credentials", "error", err)
	}
	g.onExpired(ctx)
}

func (g *Gateway) send(ctx context.Context, p *pendingRequest, out any) error {
	accessToken, _ := g.store.Tokens()
	p.tokenAtSend = accessToken

	var body io.Reader
	if p.req.Body != nil {
		b, err := json.Marshal(p.req.Body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, p.req.Method, g.baseURL+p.req.Path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(common.RequestIDHeader, p.requestID)
	if !p.req.Public && accessToken != "" && g.usable(accessToken) {
		httpReq.Header.Set(common.AuthorizationHeader, common.BearerPrefix+accessToken)
	}

	resp, err := g.http.Do(httpReq)
	if err != nil {
		return g.transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeStatusError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// usable reports whether the token should be attached. Tokens are opaque;
// only a token that parses as a JWT with a past exp claim is withheld.
func (g *Gateway) usable(token string) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return g.now().Add(expirySkew).Before(claims.ExpiresAt.Time)
}

func (g *Gateway) transportError(err error) error {
	switch {
	case netx.IsUnreachable(err):
		return fmt.Errorf("%w: cannot connect to %s, check the address and that the service is running: %v",
			ErrUnreachable, g.baseURL, err)
	case netx.IsTimeout(err):
		return fmt.Errorf("%w: %s did not answer within %s", ErrTimeout, g.baseURL, g.timeout)
	default:
		return fmt.Errorf("request to %s failed: %w", g.baseURL, err)
	}
}

func decodeStatusError(resp *http.Response) error {
	se := &StatusError{StatusCode: resp.StatusCode}

	var payload struct {
		Message string `json:"message"`
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(b, &payload) == nil {
		se.Message = payload.Message
	}
	return se
}
