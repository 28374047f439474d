package handlers

import (
	"errors"
	"net/http"

	"github.com/soundbuddy/soundbuddy/internal/apperrors"
	"github.com/soundbuddy/soundbuddy/internal/handlers/render"
	"github.com/soundbuddy/soundbuddy/internal/logger"
	"github.com/soundbuddy/soundbuddy/internal/models"
	"github.com/soundbuddy/soundbuddy/internal/service/auth"
)

type AuthHandler struct {
	authService authService
	logger      logger.Logger
}

func NewAuth(auth authService, l logger.Logger) *AuthHandler {
	return &AuthHandler{authService: auth, logger: l}
}

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	type RegisterRequest struct {
		Name     string   `json:"name" validate:"required,max=100"`
		Email    string   `json:"email" validate:"required,email"`
		Password string   `json:"password" validate:"required,min=6"`
		UserType string   `json:"userType" validate:"omitempty,oneof=musician contractor both"`
		Tags     []string `json:"tags"`
	}
	type RegisterResponse struct {
		User         userResponse `json:"user"`
		AccessToken  string       `json:"accessToken"`
		RefreshToken string       `json:"refreshToken"`
	}

	data, err := render.BindAndValidate[RegisterRequest](w, r)
	if err != nil {
		return
	}

	user, pair, err := h.authService.Register(r.Context(), auth.RegisterParams{
		Name:     data.Name,
		Email:    data.Email,
		Password: data.Password,
		Role:     models.Role(data.UserType),
		Tags:     data.Tags,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "User already exists", http.StatusBadRequest)
		default:
			h.logger.Error("Failed to register user", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.authService.SetTokenPairToResponse(w, pair)
	render.JSONWithStatus(w, RegisterResponse{
		User:         newUserResponse(user),
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
	}, http.StatusCreated)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	type LoginResponse struct {
		User         userResponse `json:"user"`
		AccessToken  string       `json:"accessToken"`
		RefreshToken string       `json:"refreshToken"`
	}

	data, err := render.BindAndValidate[LoginRequest](w, r)
	if err != nil {
		return
	}

	user, pair, err := h.authService.Login(r.Context(), data.Email, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, "Invalid email or password", http.StatusBadRequest)
		default:
			h.logger.Error("Failed to login user", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.authService.SetTokenPairToResponse(w, pair)
	render.JSON(w, LoginResponse{
		User:         newUserResponse(user),
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
	})
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	refresh, err := h.authService.ReadRefreshToken(r)
	if err != nil {
		render.ServiceError(w, "Refresh token not provided", http.StatusUnauthorized)
		return
	}

	pair, err := h.authService.RefreshPair(r.Context(), refresh)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrTokenExpired):
			// 401, not 403: the client should re-login, not give up entirely
			render.ServiceError(w, "Refresh token expired", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrTokenInvalid):
			render.ServiceError(w, "Invalid refresh token", http.StatusForbidden)
		case errors.Is(err, apperrors.ErrTokenNotAssociated):
			render.ServiceError(w, "Token not associated with any user", http.StatusForbidden)
		case errors.Is(err, apperrors.ErrTokenMismatch):
			render.ServiceError(w, "Token not associated with this user", http.StatusForbidden)
		default:
			h.logger.Error("Failed to refresh tokens", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.authService.SetTokenPairToResponse(w, pair)
	render.JSON(w, tokenPairResponse{
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
	})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	access, err := h.authService.ReadAccessToken(r)
	if err != nil {
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	err = h.authService.Logout(r.Context(), access)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserNotFound),
			errors.Is(err, apperrors.ErrTokenExpired),
			errors.Is(err, apperrors.ErrTokenInvalid):
			render.ServiceError(w, "Forbidden", http.StatusForbidden)
		default:
			h.logger.Error("Failed to logout user", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.authService.ClearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
