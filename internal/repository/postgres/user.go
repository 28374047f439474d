package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/soundbuddy/soundbuddy/internal/apperrors"
	"github.com/soundbuddy/soundbuddy/internal/models"
	"github.com/soundbuddy/soundbuddy/internal/repository"
)

type UserRepo struct {
	DB DBTX
}

const userColumns = `id, created_at, updated_at, name, email, password_hash, role, tags, refresh_token, last_login_at`

const createUser = `-- name: CreateUser
INSERT INTO users (id, name, email, password_hash, role, tags)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + userColumns

func (r *UserRepo) CreateUser(ctx context.Context, arg repository.CreateUserParams) (models.User, error) {
	role := arg.Role
	if role == "" {
		role = models.RoleMusician
	}
	tags := arg.Tags
	if tags == nil {
		tags = []string{}
	}

	rows, _ := r.DB.Query(ctx, createUser, uuid.New(), arg.Name, arg.Email, arg.HashedPassword, role, tags)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return user, apperrors.ErrUserAlreadyExists
		}

		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByID = `-- name: GetUserByID
SELECT ` + userColumns + ` FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, userID)
	return collectUser(rows)
}

const getUserByEmail = `-- name: GetUserByEmail
SELECT ` + userColumns + ` FROM users
WHERE email = $1
`

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByEmail, email)
	return collectUser(rows)
}

const getUserByRefreshToken = `-- name: GetUserByRefreshToken
SELECT ` + userColumns + ` FROM users
WHERE refresh_token = $1
`

func (r *UserRepo) GetUserByRefreshToken(ctx context.Context, token string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByRefreshToken, token)
	return collectUser(rows)
}

const setRefreshToken = `-- name: SetRefreshToken
UPDATE users
SET refresh_token = $2, updated_at = now()
WHERE id = $1
RETURNING ` + userColumns

// Set or clear (token = nil) the stored refresh token
// The previous token, whatever it was, stops being anyone's current token
func (r *UserRepo) SetRefreshToken(ctx context.Context, userID uuid.UUID, token *string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, setRefreshToken, userID, token)
	return collectUser(rows)
}

const setLastLogin = `-- name: SetLastLogin
UPDATE users
SET last_login_at = $2, updated_at = now()
WHERE id = $1
RETURNING ` + userColumns

func (r *UserRepo) SetLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) (models.User, error) {
	rows, _ := r.DB.Query(ctx, setLastLogin, userID, at)
	return collectUser(rows)
}

const clearExpiredRefreshTokens = `-- name: ClearExpiredRefreshTokens
UPDATE users
SET refresh_token = NULL, updated_at = now()
WHERE refresh_token IS NOT NULL AND updated_at < $1
`

// Clear stored refresh tokens last written before the cutoff
// updated_at is bumped on every token write, so it bounds the token age
func (r *UserRepo) ClearExpiredRefreshTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.DB.Exec(ctx, clearExpiredRefreshTokens, cutoff)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return tag.RowsAffected(), nil
}

const listUsers = `-- name: ListUsers
SELECT ` + userColumns + ` FROM users
ORDER BY created_at
`

func (r *UserRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, _ := r.DB.Query(ctx, listUsers)
	users, err := pgx.CollectRows(rows, rowToUser)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return users, nil
}

func collectUser(rows pgx.Rows) (models.User, error) {
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.Name, &u.Email,
		&u.HashedPassword, &u.Role, &u.Tags, &u.RefreshToken, &u.LastLoginAt,
	)
	return u, err
}
