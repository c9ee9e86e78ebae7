package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/inkwellhq/inkwell/internal/domain"
	"github.com/inkwellhq/inkwell/internal/repository"
)

type inMemoryPostRepo struct {
	mu    sync.Mutex
	posts map[string]domain.Post
}

func newInMemoryPostRepo() *inMemoryPostRepo {
	return &inMemoryPostRepo{posts: make(map[string]domain.Post)}
}

func (r *inMemoryPostRepo) Save(_ context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[post.ID] = *post
	return nil
}

func (r *inMemoryPostRepo) FindByID(_ context.Context, id string) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrPostNotFound
	}
	return &p, nil
}

func (r *inMemoryPostRepo) ListRecent(_ context.Context, limit int) ([]domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Post, 0, len(r.posts))
	for _, p := range r.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *inMemoryPostRepo) ListByAuthor(_ context.Context, authorID uint) ([]domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Post
	for _, p := range r.posts {
		if p.AuthorID == authorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *inMemoryPostRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return repository.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

func TestCreatePostAssignsIDAndTimestamps(t *testing.T) {
	svc := NewPostService(newInMemoryPostRepo())
	post, err := svc.Create(context.Background(), 3, CreatePostInput{Title: "  Hello  ", Body: "world"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if post.ID == "" {
		t.Fatal("expected generated id")
	}
	if post.Title != "Hello" {
		t.Fatalf("title %q, want trimmed", post.Title)
	}
	if post.AuthorID != 3 {
		t.Fatalf("author %d, want 3", post.AuthorID)
	}
	if post.CreatedAt.IsZero() || !post.CreatedAt.Equal(post.UpdatedAt) {
		t.Fatalf("timestamps not set: created=%v updated=%v", post.CreatedAt, post.UpdatedAt)
	}
}

func TestCreatePostRejectsBlankFields(t *testing.T) {
	svc := NewPostService(newInMemoryPostRepo())
	for _, in := range []CreatePostInput{{Title: "", Body: "b"}, {Title: "t", Body: "   "}} {
		if _, err := svc.Create(context.Background(), 1, in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("input %+v: expected ErrInvalidInput, got %v", in, err)
		}
	}
}

func TestDeletePostEnforcesOwnership(t *testing.T) {
	repo := newInMemoryPostRepo()
	svc := NewPostService(repo)
	post, err := svc.Create(context.Background(), 3, CreatePostInput{Title: "t", Body: "b"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), 4, post.ID); !errors.Is(err, ErrNotPostAuthor) {
		t.Fatalf("expected ErrNotPostAuthor, got %v", err)
	}
	if _, err := repo.FindByID(context.Background(), post.ID); err != nil {
		t.Fatalf("post deleted by non-author: %v", err)
	}

	if err := svc.Delete(context.Background(), 3, post.ID); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	if _, err := repo.FindByID(context.Background(), post.ID); !errors.Is(err, repository.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound after delete, got %v", err)
	}
}

func TestDeleteMissingPost(t *testing.T) {
	svc := NewPostService(newInMemoryPostRepo())
	if err := svc.Delete(context.Background(), 1, "nope"); !errors.Is(err, repository.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}
