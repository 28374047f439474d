package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/soundbuddy/soundbuddy/internal/apperrors"
	"github.com/soundbuddy/soundbuddy/internal/handlers/render"
	"github.com/soundbuddy/soundbuddy/internal/handlers/userctx"
	"github.com/soundbuddy/soundbuddy/internal/logger"
	"github.com/soundbuddy/soundbuddy/internal/models"
)

type PostHandler struct {
	postService postService
	logger      logger.Logger
}

func NewPost(posts postService, l logger.Logger) *PostHandler {
	return &PostHandler{postService: posts, logger: l}
}

type mediaPayload struct {
	Type string `json:"type" validate:"required,oneof=image video audio"`
	URL  string `json:"url" validate:"required,url"`
	Name string `json:"name"`
}

type postResponse struct {
	ID        uuid.UUID     `json:"id"`
	AuthorID  uuid.UUID     `json:"authorId"`
	Content   string        `json:"content"`
	Media     *mediaPayload `json:"media,omitempty"`
	Likes     int32         `json:"likes"`
	Tags      []string      `json:"tags"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func newPostResponse(p models.Post) postResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	response := postResponse{
		ID:        p.ID,
		AuthorID:  p.AuthorID,
		Content:   p.Content,
		Likes:     p.Likes,
		Tags:      tags,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Media != nil {
		response.Media = &mediaPayload{
			Type: string(p.Media.Type),
			URL:  p.Media.URL,
			Name: p.Media.Name,
		}
	}

	return response
}

func (h *PostHandler) create(w http.ResponseWriter, r *http.Request) {
	type CreatePostRequest struct {
		Content string        `json:"content" validate:"required,max=500"`
		Media   *mediaPayload `json:"media"`
	}

	userID, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data, err := render.BindAndValidate[CreatePostRequest](w, r)
	if err != nil {
		return
	}

	var media *models.Media
	if data.Media != nil {
		media = &models.Media{
			Type: models.MediaType(data.Media.Type),
			URL:  data.Media.URL,
			Name: data.Media.Name,
		}
	}

	post, err := h.postService.CreatePost(r.Context(), userID, data.Content, media)
	if err != nil {
		h.logger.Error("Failed to create post", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSONWithStatus(w, newPostResponse(post), http.StatusCreated)
}

func (h *PostHandler) list(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.ListFeed(r.Context())
	if err != nil {
		h.logger.Error("Failed to list posts", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		response = append(response, newPostResponse(p))
	}

	render.JSON(w, response)
}

func (h *PostHandler) like(w http.ResponseWriter, r *http.Request) {
	postID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ServiceError(w, "Invalid post id", http.StatusBadRequest)
		return
	}

	post, err := h.postService.Like(r.Context(), postID)

	switch {
	case err == nil:
		render.JSON(w, newPostResponse(post))
	case errors.Is(err, apperrors.ErrPostNotFound):
		render.ServiceError(w, "Post not found", http.StatusNotFound)
	default:
		h.logger.Error("Failed to like post", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *PostHandler) unlike(w http.ResponseWriter, r *http.Request) {
	postID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ServiceError(w, "Invalid post id", http.StatusBadRequest)
		return
	}

	post, err := h.postService.Unlike(r.Context(), postID)

	switch {
	case err == nil:
		render.JSON(w, newPostResponse(post))
	case errors.Is(err, apperrors.ErrPostNotFound):
		render.ServiceError(w, "Post not found", http.StatusNotFound)
	default:
		h.logger.Error("Failed to unlike post", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}
