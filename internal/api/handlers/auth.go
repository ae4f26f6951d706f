package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/Harshitk-cp/askdesk/internal/domain"
	"github.com/Harshitk-cp/askdesk/internal/service"
	"go.uber.org/zap"
)

type IdentityService interface {
	Register(ctx context.Context, in service.RegisterInput) (*domain.AuthResult, error)
	Login(ctx context.Context, email, password string) (*domain.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error)
	Logout(ctx context.Context, refreshToken string)
}

type AuthHandler struct {
	svc    IdentityService
	logger *zap.Logger
}

func NewAuthHandler(svc IdentityService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	CompanyName string `json:"companyName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.Register(r.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		if errors.Is(err, service.ErrDuplicateEmail) || errors.Is(err, service.ErrCompanyConflict) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("registration failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	writeSuccess(w, http.StatusCreated, res, "User registered successfully")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	writeSuccess(w, http.StatusOK, res, "Login successful")
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	tokens, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			writeError(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		h.logger.Error("token refresh failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Token refresh failed")
		return
	}

	writeSuccess(w, http.StatusOK, tokens, "Token refreshed successfully")
}

// Logout always reports success, even for a missing or unknown token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	_ = decodeJSON(w, r, &req)
	if req.RefreshToken != "" {
		h.svc.Logout(r.Context(), req.RefreshToken)
	}
	writeSuccess(w, http.StatusOK, nil, "Logout successful")
}
