package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errMissingSessionID = errors.New("token missing sid claim")

const defaultIssuer = "intern-portal"

// hmacCodec signs session ids into HS256 JWTs. Tokens carry no expiry: the session lives until logout.
type hmacCodec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

type sessionTokenClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func newHMACCodec(cfg Config) (Codec, error) {
	if len(cfg.Secret) < 16 {
		return nil, fmt.Errorf("session secret must be at least 16 bytes")
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = defaultIssuer
	}
	return &hmacCodec{secret: []byte(cfg.Secret), issuer: issuer, now: time.Now}, nil
}

func (c *hmacCodec) Sign(sessionID string) (string, error) {
	if sessionID == "" {
		return "", errMissingSessionID
	}
	claims := sessionTokenClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   c.issuer,
			IssuedAt: jwt.NewNumericDate(c.now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (c *hmacCodec) Verify(_ context.Context, token string) (SessionClaims, error) {
	var claims sessionTokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
	)
	if err != nil {
		return SessionClaims{}, fmt.Errorf("token verification failed: %w", err)
	}
	if claims.SessionID == "" {
		return SessionClaims{}, errMissingSessionID
	}
	return SessionClaims{SessionID: claims.SessionID, Token: token}, nil
}

func (c *hmacCodec) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
	return c.secret, nil
}
