package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/internhub/portal-service/internal/intern"
	"github.com/internhub/portal-service/internal/portal"
	"github.com/internhub/portal-service/internal/session"
	sharedauth "github.com/internhub/portal-service/shared/auth"
	"github.com/internhub/portal-service/shared/dto"
	sharederrors "github.com/internhub/portal-service/shared/errors"
	"github.com/internhub/portal-service/shared/logging"
)

const (
	authTimeout     = 10 * time.Second
	maxPayloadBytes = 64 << 10
)

// Deps are the collaborators the portal routes need.
type Deps struct {
	Portal   *portal.Service
	Interns  *intern.Service
	Sessions session.Backend
	Tokens   sharedauth.Codec
	Logger   *slog.Logger

	// AuthLimiter throttles signup and login. Nil disables throttling.
	AuthLimiter    *IPRateLimiter
	AllowedOrigins []string
	SecureCookie   bool
}

type handler struct {
	deps   Deps
	logger *slog.Logger
}

type authResponse struct {
	Session  session.Session `json:"session"`
	Token    string          `json:"token"`
	Redirect string          `json:"redirect"`
}

type referralResponse struct {
	Name         string `json:"name"`
	ReferralCode string `json:"referralCode"`
}

// RegisterRoutes mounts the portal API under /v1.
func RegisterRoutes(r chi.Router, deps Deps) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &handler{deps: deps, logger: logger}

	r.Route("/v1", func(r chi.Router) {
		r.Use(CORSMiddleware(deps.AllowedOrigins))
		r.Use(sharedauth.Middleware(deps.Tokens))

		r.Group(func(r chi.Router) {
			r.Use(RateLimitMiddleware(deps.AuthLimiter))
			r.Post("/auth/signup", h.signup)
			r.Post("/auth/login", h.login)
		})
		r.Post("/auth/logout", h.logout)

		r.Get("/session", h.currentSession)
		r.Get("/dashboard", h.dashboard)
		r.Get("/leaderboard", h.leaderboard)
		r.Get("/referral-code", h.referralCode)
	})
}

func (h *handler) signup(w http.ResponseWriter, r *http.Request) {
	var input intern.SignupInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, r, sharederrors.CodeBadRequest, err.Error(), "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), authTimeout)
	defer cancel()

	res, err := h.deps.Interns.Signup(ctx, input)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.startSession(w, r, http.StatusCreated, res.DisplayName)
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var input intern.LoginInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, r, sharederrors.CodeBadRequest, err.Error(), "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), authTimeout)
	defer cancel()

	res, err := h.deps.Interns.Login(ctx, input)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.startSession(w, r, http.StatusOK, res.DisplayName)
}

// startSession reuses the caller's session id when it has one, otherwise mints a new one.
func (h *handler) startSession(w http.ResponseWriter, r *http.Request, status int, name string) {
	sid, token := h.sessionIdentity(r)
	if sid == "" {
		id, err := uuid.NewV7()
		if err != nil {
			h.respondServiceError(w, r, err)
			return
		}
		sid = id.String()
		signed, err := h.deps.Tokens.Sign(sid)
		if err != nil {
			h.respondServiceError(w, r, err)
			return
		}
		token = signed
	}

	var nav navigation
	gate := session.NewGate(h.deps.Sessions.Scope(sid), nav.navigate)
	sess, err := gate.EstablishSession(r.Context(), name)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	nav.navigate(session.ViewDashboard)

	h.setCookie(w, token)
	writeJSON(w, status, authResponse{Session: sess, Token: token, Redirect: nav.to.Path()})
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	gate, nav := h.gate(r)
	if err := gate.ClearSession(r.Context()); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	nav.navigate(session.ViewLogin)

	h.clearCookie(w)
	writeJSON(w, http.StatusOK, dto.RedirectResponse{Redirect: nav.to.Path()})
}

func (h *handler) currentSession(w http.ResponseWriter, r *http.Request) {
	gate, _ := h.gate(r)
	sess, err := gate.Current(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *handler) dashboard(w http.ResponseWriter, r *http.Request) {
	gate, _ := h.gate(r)
	view, err := h.deps.Portal.Dashboard(r.Context(), gate)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	gate, _ := h.gate(r)
	view, err := h.deps.Portal.Leaderboard(r.Context(), gate)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handler) referralCode(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, r, sharederrors.CodeBadRequest, "name is required", "")
		return
	}
	writeJSON(w, http.StatusOK, referralResponse{Name: name, ReferralCode: portal.ReferralCode(name)})
}

// gate binds a session gate to the caller's session. Anonymous callers get a gate with no store.
func (h *handler) gate(r *http.Request) (*session.Gate, *navigation) {
	nav := &navigation{}
	sid, _ := h.sessionIdentity(r)
	if sid == "" {
		return session.NewGate(nil, nav.navigate), nav
	}
	return session.NewGate(h.deps.Sessions.Scope(sid), nav.navigate), nav
}

func (h *handler) sessionIdentity(r *http.Request) (sid, token string) {
	claims, ok := sharedauth.SessionFromContext(r.Context())
	if !ok {
		return "", ""
	}
	return claims.SessionID, claims.Token
}

func (h *handler) setCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sharedauth.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.deps.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *handler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sharedauth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.deps.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// navigation records the last view the gate or a handler asked the client to move to.
type navigation struct {
	to session.View
}

func (n *navigation) navigate(v session.View) { n.to = v }

func (h *handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var redirect *session.RedirectError
	switch {
	case errors.As(err, &redirect):
		writeError(w, r, sharederrors.CodeUnauthorized, "please log in to continue", redirect.To.Path())
	case errors.Is(err, portal.ErrFetchFailure):
		writeError(w, r, sharederrors.CodeUpstream, "failed to load portal data, please retry", "")
	case errors.Is(err, intern.ErrValidation), errors.Is(err, session.ErrMissingName):
		writeError(w, r, sharederrors.CodeBadRequest, detail(err), "")
	case errors.Is(err, intern.ErrNotRegistered):
		writeError(w, r, sharederrors.CodeNotFound, "Looks like you're a new user. Please sign up.", session.ViewSignup.Path())
	case errors.Is(err, intern.ErrLookup):
		h.logRequestError(r, "login lookup failed", err)
		writeError(w, r, sharederrors.CodeInternal, "failed to log in, please retry", "")
	case errors.Is(err, intern.ErrPersist):
		h.logRequestError(r, "signup persist failed", err)
		writeError(w, r, sharederrors.CodeInternal, "failed to create account, please retry", "")
	default:
		h.logRequestError(r, "request failed", err)
		writeError(w, r, sharederrors.CodeInternal, "internal server error", "")
	}
}

func (h *handler) logRequestError(r *http.Request, msg string, err error) {
	logger := logging.WithRequestID(r.Context(), h.logger, middleware.GetReqID(r.Context()))
	logger.ErrorContext(r.Context(), msg,
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
}

// detail strips the sentinel prefix from a wrapped validation error.
func detail(err error) string {
	msg := strings.TrimSpace(err.Error())
	if i := strings.Index(msg, ":"); i >= 0 {
		msg = strings.TrimSpace(msg[i+1:])
	}
	return msg
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxPayloadBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, code, message, redirect string) {
	writeJSON(w, sharederrors.ToStatusCode(code), sharederrors.ErrorResponse{
		Code:      code,
		Message:   message,
		Redirect:  redirect,
		RequestID: middleware.GetReqID(r.Context()),
	})
}
