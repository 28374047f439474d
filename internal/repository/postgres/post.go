package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/soundbuddy/soundbuddy/internal/apperrors"
	"github.com/soundbuddy/soundbuddy/internal/models"
	"github.com/soundbuddy/soundbuddy/internal/repository"
)

type PostRepo struct {
	DB DBTX
}

const postColumns = `id, author_id, created_at, updated_at, content, media_type, media_url, media_name, likes, tags`

const createPost = `-- name: CreatePost
INSERT INTO posts (id, author_id, content, media_type, media_url, media_name, tags)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + postColumns

func (r *PostRepo) CreatePost(ctx context.Context, arg repository.CreatePostParams) (models.Post, error) {
	var mediaType, mediaURL, mediaName *string
	if arg.Media != nil {
		t := string(arg.Media.Type)
		mediaType, mediaURL, mediaName = &t, &arg.Media.URL, &arg.Media.Name
	}
	tags := arg.Tags
	if tags == nil {
		tags = []string{}
	}

	rows, _ := r.DB.Query(ctx, createPost, uuid.New(), arg.AuthorID, arg.Content, mediaType, mediaURL, mediaName, tags)
	post, err := pgx.CollectOneRow(rows, rowToPost)
	if err != nil {
		return post, fmt.Errorf("db error: %w", err)
	}

	return post, nil
}

const getPost = `-- name: GetPost
SELECT ` + postColumns + ` FROM posts
WHERE id = $1
`

func (r *PostRepo) GetPost(ctx context.Context, postID uuid.UUID) (models.Post, error) {
	rows, _ := r.DB.Query(ctx, getPost, postID)
	return collectPost(rows)
}

const listPosts = `-- name: ListPosts
SELECT ` + postColumns + ` FROM posts
ORDER BY created_at DESC
`

func (r *PostRepo) ListPosts(ctx context.Context) ([]models.Post, error) {
	rows, _ := r.DB.Query(ctx, listPosts)
	posts, err := pgx.CollectRows(rows, rowToPost)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return posts, nil
}

const addLike = `-- name: AddLike
UPDATE posts
SET likes = likes + 1, updated_at = now()
WHERE id = $1
RETURNING ` + postColumns

func (r *PostRepo) AddLike(ctx context.Context, postID uuid.UUID) (models.Post, error) {
	rows, _ := r.DB.Query(ctx, addLike, postID)
	return collectPost(rows)
}

const removeLike = `-- name: RemoveLike
UPDATE posts
SET likes = GREATEST(likes - 1, 0), updated_at = now()
WHERE id = $1
RETURNING ` + postColumns

func (r *PostRepo) RemoveLike(ctx context.Context, postID uuid.UUID) (models.Post, error) {
	rows, _ := r.DB.Query(ctx, removeLike, postID)
	return collectPost(rows)
}

func collectPost(rows pgx.Rows) (models.Post, error) {
	post, err := pgx.CollectOneRow(rows, rowToPost)

	switch {
	case err == nil:
		return post, nil
	case errors.Is(err, pgx.ErrNoRows):
		return post, apperrors.ErrPostNotFound
	default:
		return post, fmt.Errorf("db error: %w", err)
	}
}

func rowToPost(row pgx.CollectableRow) (models.Post, error) {
	var p models.Post
	var mediaType, mediaURL, mediaName *string

	err := row.Scan(
		&p.ID, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt, &p.Content,
		&mediaType, &mediaURL, &mediaName, &p.Likes, &p.Tags,
	)
	if err != nil {
		return p, err
	}

	if mediaType != nil {
		p.Media = &models.Media{Type: models.MediaType(*mediaType)}
		if mediaURL != nil {
			p.Media.URL = *mediaURL
		}
		if mediaName != nil {
			p.Media.Name = *mediaName
		}
	}

	return p, nil
}
