package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/krishisakhi/backend/internal/domain"
	"github.com/krishisakhi/backend/internal/featureflags"
	"github.com/krishisakhi/backend/internal/security/middleware"
	"github.com/krishisakhi/backend/internal/security/ratelimit"
	"github.com/krishisakhi/backend/internal/service"
)

// AuthHandler handles registration, login and account settings
type AuthHandler struct {
	auth          *service.AuthService
	limiter       *ratelimit.Limiter
	loginAttempts int
	flags         featureflags.Flags
	logger        *slog.Logger
}

// NewAuthHandler creates a new auth handler. loginAttempts caps login tries
// per phone number per minute.
func NewAuthHandler(
	auth *service.AuthService,
	limiter *ratelimit.Limiter,
	loginAttempts int,
	flags featureflags.Flags,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:          auth,
		limiter:       limiter,
		loginAttempts: loginAttempts,
		flags:         flags,
		logger:        logger,
	}
}

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Location string `json:"location"`
	Language string `json:"language"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// ChangePasswordRequest is the body of POST /api/auth/change-password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.auth.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Password: req.Password,
		Location: req.Location,
		Language: req.Language,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	phone := strings.TrimSpace(req.Phone)
	ip := middleware.ClientIP(r)
	if h.limiter != nil && !h.limiter.AllowStrict("login:"+phone+"|"+ip, h.loginAttempts, time.Minute) {
		h.logger.Warn("login attempts exceeded", slog.String("phone", phone), slog.String("ip", ip))
		writeError(w, http.StatusTooManyRequests, "too many login attempts")
		return
	}

	result, err := h.auth.Login(r.Context(), phone, req.Password)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// DemoLogin handles POST /api/auth/demo-login. It is only routed when the
// DEMO_LOGIN flag is on.
func (h *AuthHandler) DemoLogin(w http.ResponseWriter, r *http.Request) {
	if !h.flags.Enabled(featureflags.DemoLogin) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	result, err := h.auth.DemoLogin(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ChangePassword handles POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := farmerID(w, r)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.auth.ChangePassword(r.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FarmerResponse is the public view of a farmer
type FarmerResponse struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Phone     string          `json:"phone"`
	Email     string          `json:"email"`
	Location  string          `json:"location"`
	Language  domain.Language `json:"language"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Profile handles GET /api/farmers/me
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := farmerID(w, r)
	if !ok {
		return
	}

	farmer, err := h.auth.Profile(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, FarmerResponse{
		ID:        farmer.ID,
		Name:      farmer.Name,
		Phone:     farmer.Phone,
		Email:     farmer.Email,
		Location:  farmer.Location,
		Language:  farmer.Language,
		CreatedAt: farmer.CreatedAt,
	})
}

// UpdateLanguage handles PATCH /api/farmers/me/language
func (h *AuthHandler) UpdateLanguage(w http.ResponseWriter, r *http.Request) {
	id, ok := farmerID(w, r)
	if !ok {
		return
	}

	var req struct {
		Language string `json:"language"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	lang, err := h.auth.UpdateLanguage(r.Context(), id, req.Language)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]domain.Language{"language": lang})
}
