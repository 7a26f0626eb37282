package handler

import (
	"errors"
	"net/http"

	"github.com/signon/signon-go/internal/crypto"
	"github.com/signon/signon-go/internal/middleware"
	"github.com/signon/signon-go/internal/model"
	"github.com/signon/signon-go/internal/service"
)

// AuthHandler translates HTTP requests into auth service calls and attaches
// the session cookie on success.
type AuthHandler struct {
	service       *service.AuthService
	issuer        *crypto.TokenIssuer
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, issuer *crypto.TokenIssuer, secureCookies bool) *AuthHandler {
	return &AuthHandler{service: svc, issuer: issuer, secureCookies: secureCookies}
}

// HandleSignUp handles POST /api/v1/auth/register requests.
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if errs := validateRegister(req); errs != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Validation failed",
			"errors":  errs,
		})
		return
	}

	user, err := h.service.CreateUser(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			writeJSON(w, http.StatusBadRequest, messageResponse("User with this email already exists"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, messageResponse("internal server error"))
		return
	}

	token, err := h.issuer.Sign(user.ID, user.Email, user.Role)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, messageResponse("internal server error"))
		return
	}
	setSessionCookie(w, token, h.issuer.TTL(), h.secureCookies)

	writeJSON(w, http.StatusCreated, model.AuthResponse{
		Message: "User registered successfully",
		User:    user.Sanitize(),
	})
}

// HandleSignIn handles POST /api/v1/auth/login requests. Unknown email and
// wrong password answer identically so the response doesn't reveal which
// accounts exist.
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if errs := validateLogin(req); errs != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Validation failed",
			"errors":  errs,
		})
		return
	}

	user, err := h.service.AuthenticateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) || errors.Is(err, service.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, messageResponse("Invalid email or password"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, messageResponse("internal server error"))
		return
	}

	token, err := h.issuer.Sign(user.ID, user.Email, user.Role)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, messageResponse("internal server error"))
		return
	}
	setSessionCookie(w, token, h.issuer.TTL(), h.secureCookies)

	writeJSON(w, http.StatusOK, model.AuthResponse{
		Message: "Logged in successfully",
		User:    user.Sanitize(),
	})
}

// HandleSignOut handles POST /api/v1/auth/logout requests.
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, h.secureCookies)
	writeJSON(w, http.StatusOK, messageResponse("Logged out successfully"))
}

// HandleMe handles GET /api/v1/auth/me requests. The session middleware has
// already validated the token; the response comes straight from its claims.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, messageResponse("unauthorized"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":    claims.UserID,
		"email": claims.Email,
		"role":  claims.Role,
	})
}
