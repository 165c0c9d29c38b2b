package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Mode represents the session token strategy applied to incoming requests.
type Mode string

const (
	// ModeHMAC issues and verifies HS256 signed tokens carrying the session id.
	ModeHMAC Mode = "hmac"
	// ModeNoop disables signing and treats the bearer token as the session id (useful for local development and tests).
	ModeNoop Mode = "noop"
)

// CookieName is the cookie carrying the session token for browser clients.
const CookieName = "portal_session"

// Config captures the inputs required to initialize a token codec.
type Config struct {
	Mode   Mode
	Secret string
	Issuer string
}

// SessionClaims identifies the client session a request belongs to.
type SessionClaims struct {
	SessionID string
	Token     string
}

// Verifier verifies a session token and returns the associated claims.
type Verifier interface {
	Verify(ctx context.Context, token string) (SessionClaims, error)
}

// Signer mints a token for a session id.
type Signer interface {
	Sign(sessionID string) (string, error)
}

// Codec both signs and verifies session tokens.
type Codec interface {
	Verifier
	Signer
}

var (
	errMissingToken      = errors.New("session token missing")
	errInvalidAuthHeader = errors.New("authorization header is malformed")
)

type ctxKey string

const sessionCtxKey ctxKey = "portal:session"

// Middleware attaches the verified session claims to the request context. Requests without a token,
// or with a token that fails verification, continue anonymously; the session gate decides what an
// anonymous caller may see.
func Middleware(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				next.ServeHTTP(w, r)
				return
			}

			token, err := TokenFromRequest(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), claims)))
		})
	}
}

// TokenFromRequest reads the session token from the session cookie, falling back to a bearer token.
func TokenFromRequest(r *http.Request) (string, error) {
	if cookie, err := r.Cookie(CookieName); err == nil && strings.TrimSpace(cookie.Value) != "" {
		return strings.TrimSpace(cookie.Value), nil
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errMissingToken
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errInvalidAuthHeader
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errInvalidAuthHeader
	}

	return token, nil
}

// WithSession stores claims on a context.
func WithSession(ctx context.Context, claims SessionClaims) context.Context {
	return context.WithValue(ctx, sessionCtxKey, claims)
}

// SessionFromContext extracts the session claims from the request context.
func SessionFromContext(ctx context.Context) (SessionClaims, bool) {
	value, ok := ctx.Value(sessionCtxKey).(SessionClaims)
	return value, ok
}

// NewCodec constructs a Codec matching the supplied configuration.
func NewCodec(cfg Config) (Codec, error) {
	switch cfg.Mode {
	case ModeHMAC:
		return newHMACCodec(cfg)
	case ModeNoop:
		return noopCodec{}, nil
	default:
		return nil, fmt.Errorf("unsupported auth mode: %s", cfg.Mode)
	}
}
