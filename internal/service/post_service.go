package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/inkwellhq/inkwell/internal/domain"
	"github.com/inkwellhq/inkwell/internal/repository"

	"github.com/google/uuid"
)

var ErrNotPostAuthor = errors.New("not the post author")

type CreatePostInput struct {
	Title string
	Body  string
}

type PostService struct {
	posts repository.PostRepository
}

func NewPostService(posts repository.PostRepository) *PostService {
	return &PostService{posts: posts}
}

func (s *PostService) Create(ctx context.Context, authorID uint, in CreatePostInput) (*domain.Post, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || strings.TrimSpace(in.Body) == "" {
		return nil, ErrInvalidInput
	}
	now := time.Now().UTC()
	post := &domain.Post{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Title:     in.Title,
		Body:      in.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.posts.Save(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) Get(ctx context.Context, id string) (*domain.Post, error) {
	return s.posts.FindByID(ctx, id)
}

func (s *PostService) ListRecent(ctx context.Context, limit int) ([]domain.Post, error) {
	return s.posts.ListRecent(ctx, limit)
}

func (s *PostService) ListByAuthor(ctx context.Context, authorID uint) ([]domain.Post, error) {
	return s.posts.ListByAuthor(ctx, authorID)
}

// Delete removes a post after verifying ownership.
func (s *PostService) Delete(ctx context.Context, authorID uint, id string) error {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != authorID {
		return ErrNotPostAuthor
	}
	return s.posts.Delete(ctx, id)
}
