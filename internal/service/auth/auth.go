package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soundbuddy/soundbuddy/internal/apperrors"
	"github.com/soundbuddy/soundbuddy/internal/models"
	"github.com/soundbuddy/soundbuddy/internal/repository"
	"github.com/soundbuddy/soundbuddy/internal/service/auth/tokenmanager"
)

const (
	defaultAccessHeaderName  = "Authorization"
	defaultAccessAuthScheme  = "Bearer"
	defaultRefreshCookieName = "refreshToken"
)

type Config struct {
	// Hasher to use during registration and login
	// Defaults to bcrypt
	Hasher PasswordHasher

	// Transport details for tokens
	// Defaults: "Authorization" header, "Bearer" scheme, "refreshToken" cookie
	AccessHeaderName  string
	AccessAuthScheme  string
	RefreshCookieName string
}

type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
	Tags     []string
}

// Auth service
// The per user session state is the stored refresh token: nil means logged
// out, anything else is the single live session
type AuthService struct {
	token  *tokenmanager.TokenManager
	hasher PasswordHasher

	userRepo repository.UserRepo

	accessHeaderName  string
	accessAuthScheme  string
	refreshCookieName string
}

func NewService(cfg Config, tokenManager *tokenmanager.TokenManager, userRepo repository.UserRepo) (*AuthService, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	setDefaultString := func(field *string, def string) {
		if *field == "" {
			*field = def
		}
	}
	setDefaultString(&cfg.AccessHeaderName, defaultAccessHeaderName)
	setDefaultString(&cfg.AccessAuthScheme, defaultAccessAuthScheme)
	setDefaultString(&cfg.RefreshCookieName, defaultRefreshCookieName)

	return &AuthService{
		token:             tokenManager,
		hasher:            hasher,
		userRepo:          userRepo,
		accessHeaderName:  cfg.AccessHeaderName,
		accessAuthScheme:  cfg.AccessAuthScheme,
		refreshCookieName: cfg.RefreshCookieName,
	}, nil
}

// Register creates a user and logs it in right away
// Email uniqueness is decided by the store, not by a pre check here
func (s *AuthService) Register(ctx context.Context, arg RegisterParams) (models.User, models.TokenPair, error) {
	var pair models.TokenPair

	hash, err := s.hasher.Hash(arg.Password)
	if err != nil {
		return models.User{}, pair, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	user, err := s.userRepo.CreateUser(ctx, repository.CreateUserParams{
		Name:           arg.Name,
		Email:          arg.Email,
		HashedPassword: hash,
		Role:           arg.Role,
		Tags:           arg.Tags,
	})
	if err != nil {
		return user, pair, err
	}

	pair, err = s.token.IssuePair(ctx, user)
	if err != nil {
		return user, pair, fmt.Errorf("token could not be generated, sorry. %w", err)
	}
	user.RefreshToken = &pair.Refresh.Value

	return user, pair, nil
}

// Login verifies credentials and issues a fresh token pair
// A new pair overwrites the stored refresh token, so a login from a second
// device silently revokes the first device's refresh capability
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error) {
	var pair models.TokenPair

	// "no such email" and "wrong password" are deliberately the same error
	// to avoid user enumeration
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return user, pair, apperrors.ErrInvalidCredentials
		}
		return user, pair, err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return user, pair, apperrors.ErrInvalidCredentials
	}

	user, err = s.userRepo.SetLastLogin(ctx, user.ID, time.Now())
	if err != nil {
		return user, pair, fmt.Errorf("can't record login time. Err: %w", err)
	}

	pair, err = s.token.IssuePair(ctx, user)
	if err != nil {
		return user, pair, fmt.Errorf("token could not be generated, sorry. %w", err)
	}
	user.RefreshToken = &pair.Refresh.Value

	return user, pair, nil
}

// RefreshPair rotates tokens: validates the presented refresh token and
// issues a brand new pair, which makes the old refresh token unusable
//
// Checks run in the same order as verification on the wire:
//  1. signature and expiry (expired and garbage fail distinctly)
//  2. exact match lookup against stored refresh tokens; a token that was
//     already rotated or revoked matches nobody
//  3. identity inside the token must be the user the lookup found
func (s *AuthService) RefreshPair(ctx context.Context, refresh string) (models.TokenPair, error) {
	var pair models.TokenPair

	claimedID, err := s.token.ParseRefresh(refresh)
	if err != nil {
		return pair, err
	}

	user, err := s.userRepo.GetUserByRefreshToken(ctx, refresh)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return pair, apperrors.ErrTokenNotAssociated
		}
		return pair, err
	}

	if claimedID != user.ID {
		return pair, apperrors.ErrTokenMismatch
	}

	pair, err = s.token.IssuePair(ctx, user)
	if err != nil {
		return pair, fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	return pair, nil
}

// Logout ends the caller's session
// The caller is identified by its access token; the stored refresh token is
// cleared so no future refresh succeeds. Access tokens already in the wild
// stay valid until they expire, that's accepted
func (s *AuthService) Logout(ctx context.Context, access string) error {
	userID, err := s.token.ParseAccess(access)
	if err != nil {
		return err
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if _, err := s.userRepo.SetRefreshToken(ctx, user.ID, nil); err != nil {
		return fmt.Errorf("can't clear refresh token. Err: %w", err)
	}

	return nil
}

// AuthenticateRequest validates the access token of the request and returns
// the identity it carries
// Stateless on purpose: the signature is trusted, the store is not consulted
func (s *AuthService) AuthenticateRequest(r *http.Request) (uuid.UUID, error) {
	access, err := s.ReadAccessToken(r)
	if err != nil {
		return uuid.Nil, err
	}

	return s.token.ParseAccess(access)
}

// ReadAccessToken extracts the bearer access token from the request header
func (s *AuthService) ReadAccessToken(r *http.Request) (string, error) {
	header := r.Header.Get(s.accessHeaderName)
	if header == "" {
		return "", apperrors.ErrTokenMissing
	}

	token, found := strings.CutPrefix(header, s.accessAuthScheme+" ")
	if !found || token == "" {
		return "", apperrors.ErrTokenMissing
	}

	return token, nil
}

// ReadRefreshToken extracts the refresh token from the request
// Header takes precedence over the cookie when both are present
func (s *AuthService) ReadRefreshToken(r *http.Request) (string, error) {
	if token, err := s.ReadAccessToken(r); err == nil {
		return token, nil
	}

	cookie, err := r.Cookie(s.refreshCookieName)
	if err != nil || cookie.Value == "" {
		return "", apperrors.ErrTokenMissing
	}

	return cookie.Value, nil
}

// SetTokenPairToResponse writes tokens to the response transport headers:
// access token to the auth header, refresh token to an HttpOnly cookie
// Response bodies carry the same tokens as JSON, handlers decide that part
func (s *AuthService) SetTokenPairToResponse(w http.ResponseWriter, pair models.TokenPair) {
	w.Header().Set(s.accessHeaderName, s.accessAuthScheme+" "+pair.Access.Value)

	http.SetCookie(w, &http.Cookie{
		Name:     s.refreshCookieName,
		Value:    pair.Refresh.Value,
		Path:     "/",
		MaxAge:   int(time.Until(pair.Refresh.ExpiresAt).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// SetTokenPairToRequest is the client side mirror of SetTokenPairToResponse
// Useful in tests to authenticate outgoing requests
func (s *AuthService) SetTokenPairToRequest(r *http.Request, pair models.TokenPair) {
	r.Header.Set(s.accessHeaderName, s.accessAuthScheme+" "+pair.Access.Value)
	r.AddCookie(&http.Cookie{Name: s.refreshCookieName, Value: pair.Refresh.Value})
}

// ClearRefreshCookie expires the refresh cookie on the client
func (s *AuthService) ClearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
