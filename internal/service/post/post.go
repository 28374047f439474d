package post

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/soundbuddy/soundbuddy/internal/models"
	"github.com/soundbuddy/soundbuddy/internal/repository"
)

// Hashtags look like #word, terminated by whitespace or another '#'
var hashtagRe = regexp.MustCompile(`#[^\s#]+`)

type PostService struct {
	postRepo repository.PostRepo
}

func NewService(postRepo repository.PostRepo) *PostService {
	return &PostService{postRepo: postRepo}
}

// CreatePost stores a new feed post for the author
// Tags are not accepted from the caller, they are extracted from content
func (s *PostService) CreatePost(ctx context.Context, authorID uuid.UUID, content string, media *models.Media) (models.Post, error) {
	post, err := s.postRepo.CreatePost(ctx, repository.CreatePostParams{
		AuthorID: authorID,
		Content:  content,
		Media:    media,
		Tags:     ExtractTags(content),
	})
	if err != nil {
		return post, fmt.Errorf("can't create post. Err: %w", err)
	}

	return post, nil
}

// ListFeed returns all posts, newest first
func (s *PostService) ListFeed(ctx context.Context) ([]models.Post, error) {
	posts, err := s.postRepo.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't list posts. Err: %w", err)
	}

	return posts, nil
}

func (s *PostService) Like(ctx context.Context, postID uuid.UUID) (models.Post, error) {
	return s.postRepo.AddLike(ctx, postID)
}

// Unlike never drops the counter below zero, the repo clamps it
func (s *PostService) Unlike(ctx context.Context, postID uuid.UUID) (models.Post, error) {
	return s.postRepo.RemoveLike(ctx, postID)
}

// ExtractTags pulls lowercased hashtags out of post content
func ExtractTags(content string) []string {
	matches := hashtagRe.FindAllString(content, -1)

	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, strings.ToLower(strings.TrimPrefix(m, "#")))
	}

	return tags
}
