package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/tradersfamily/campaign-data-api/internal/domain"
	"github.com/tradersfamily/campaign-data-api/internal/http/middleware"
	"github.com/tradersfamily/campaign-data-api/internal/http/response"
	"github.com/tradersfamily/campaign-data-api/internal/observability"
	"github.com/tradersfamily/campaign-data-api/internal/security"
	"github.com/tradersfamily/campaign-data-api/internal/service"
)

// AuthAPI is the slice of the auth service the handler needs.
type AuthAPI interface {
	Register(ctx context.Context, fullName, email string, role domain.Role, password string) (*domain.User, error)
	VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	Logout(ctx context.Context, userID uint) error
}

// CookieSettings carries the profile-dependent cookie attributes. Secure is
// off only in the development profile.
type CookieSettings struct {
	Secure     bool
	RefreshTTL time.Duration
	CSRFTTL    time.Duration
}

type AuthHandler struct {
	auth    AuthAPI
	csrf    *service.CSRFGuard
	cookies CookieSettings
}

func NewAuthHandler(auth AuthAPI, csrf *service.CSRFGuard, cookies CookieSettings) *AuthHandler {
	return &AuthHandler{auth: auth, csrf: csrf, cookies: cookies}
}

type registerRequest struct {
	FullName        string `json:"fullname"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	if req.Email == "" || req.Password == "" {
		response.Error(w, r, http.StatusBadRequest, response.CodeBadRequest, "email and password are required", nil)
		return
	}
	if req.Password != req.ConfirmPassword {
		response.Error(w, r, http.StatusBadRequest, response.CodeBadRequest, "passwords do not match", nil)
		return
	}
	user, err := h.auth.Register(r.Context(), req.FullName, req.Email, domain.Role(req.Role), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			response.Error(w, r, http.StatusBadRequest, response.CodeBadRequest, "invalid role", nil)
		case errors.Is(err, service.ErrDuplicateEmail):
			response.Error(w, r, http.StatusConflict, response.CodeConflict, "email already registered", nil)
		default:
			response.Internal(w, r)
		}
		return
	}
	observability.Audit(r, "auth.register", "user_id", user.ID)
	response.JSON(w, r, http.StatusCreated, map[string]any{"user_id": user.ID})
}

// CSRFToken verifies credentials and hands the caller the anti-forgery token
// for its browser session, mirrored into an HTTP-only cookie. The login form
// presents the token on the actual login request.
func (h *AuthHandler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	email, password, ok := formCredentials(r)
	if !ok {
		response.Error(w, r, http.StatusBadRequest, response.CodeBadRequest, "invalid form body", nil)
		return
	}
	if _, err := h.auth.VerifyCredentials(r.Context(), email, password); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrAccountDeleted) {
			response.Unauthorized(w, r, "Invalid email or password")
			return
		}
		response.Internal(w, r)
		return
	}

	sid := security.GetCookie(r, middleware.BrowserSessionCookieName)
	if sid == "" {
		sid = uuid.NewString()
	}
	token, err := h.csrf.Issue(r.Context(), sid)
	if err != nil {
		response.Internal(w, r)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.BrowserSessionCookieName,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(h.cookies.CSRFTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CSRFCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookies.CSRFTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	response.JSON(w, r, http.StatusOK, map[string]string{"csrf_token": token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	email, password, ok := formCredentials(r)
	if !ok {
		response.Error(w, r, http.StatusBadRequest, response.CodeBadRequest, "invalid form body", nil)
		return
	}
	result, err := h.auth.Login(r.Context(), email, password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Unauthorized(w, r, "Invalid email or password")
		case errors.Is(err, service.ErrAccountDeleted):
			response.Unauthorized(w, r, "Account has been deleted")
		default:
			response.Internal(w, r)
		}
		return
	}

	// The refresh token never appears in a response body. The dashboard keeps
	// only the access token; renewal happens server side.
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    result.RefreshToken,
		Path:     "/",
		MaxAge:   int(h.cookies.RefreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	w.Header().Set("Authentication", strconv.FormatUint(uint64(result.UserID), 10))
	observability.Audit(r, "auth.login", "user_id", result.UserID, "role", result.Role)
	response.JSON(w, r, http.StatusOK, map[string]any{
		"access_token": result.AccessToken,
		"token_type":   "Bearer",
		"role":         result.Role,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, r, "missing auth context")
		return
	}
	if err := h.auth.Logout(r.Context(), user.ID); err != nil {
		response.Internal(w, r)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	observability.Audit(r, "auth.logout", "user_id", user.ID)
	response.JSON(w, r, http.StatusOK, map[string]string{"message": "successfully logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, r, "missing auth context")
		return
	}
	response.JSON(w, r, http.StatusOK, user)
}

func formCredentials(r *http.Request) (email, password string, ok bool) {
	if err := r.ParseForm(); err != nil {
		return "", "", false
	}
	email = r.PostFormValue("username")
	password = r.PostFormValue("password")
	if email == "" || password == "" {
		return "", "", false
	}
	return email, password, true
}
