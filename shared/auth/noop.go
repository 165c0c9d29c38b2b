package auth

import (
	"context"
	"errors"
)

type noopCodec struct{}

func (noopCodec) Verify(_ context.Context, token string) (SessionClaims, error) {
	if token == "" {
		return SessionClaims{}, errors.New("token must not be empty")
	}
	return SessionClaims{SessionID: token, Token: token}, nil
}

func (noopCodec) Sign(sessionID string) (string, error) {
	if sessionID == "" {
		return "", errors.New("session id must not be empty")
	}
	return sessionID, nil
}
