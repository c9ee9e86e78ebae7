package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/inkwellhq/inkwell/internal/domain"
	"github.com/inkwellhq/inkwell/internal/observability"

	"github.com/redis/go-redis/v9"
)

var ErrPostNotFound = errors.New("post not found")

type PostRepository interface {
	Save(ctx context.Context, post *domain.Post) error
	FindByID(ctx context.Context, id string) (*domain.Post, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Post, error)
	ListByAuthor(ctx context.Context, authorID uint) ([]domain.Post, error)
	Delete(ctx context.Context, id string) error
}

// RedisPostRepository keeps each post as a JSON document under
// <prefix>:doc:<id>, with a time-ordered zset index for the feed and a
// per-author set index.
type RedisPostRepository struct {
	client redis.UniversalClient
	prefix string
}

func NewPostRepository(client redis.UniversalClient, prefix string) *RedisPostRepository {
	if prefix == "" {
		prefix = "posts"
	}
	return &RedisPostRepository{client: client, prefix: prefix}
}

func (r *RedisPostRepository) Save(ctx context.Context, post *domain.Post) error {
	doc, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("marshal post: %w", err)
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.docKey(post.ID), doc, 0)
	pipe.ZAdd(ctx, r.recentKey(), redis.Z{Score: float64(post.CreatedAt.UnixMilli()), Member: post.ID})
	pipe.SAdd(ctx, r.authorKey(post.AuthorID), post.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		observability.RecordRepositoryOperation(ctx, "post", "save", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "post", "save", "success")
	return nil
}

func (r *RedisPostRepository) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	raw, err := r.client.Get(ctx, r.docKey(id)).Result()
	if err == redis.Nil {
		observability.RecordRepositoryOperation(ctx, "post", "find_by_id", "not_found")
		return nil, ErrPostNotFound
	}
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "post", "find_by_id", "error")
		return nil, err
	}
	var post domain.Post
	if err := json.Unmarshal([]byte(raw), &post); err != nil {
		observability.RecordRepositoryOperation(ctx, "post", "find_by_id", "error")
		return nil, fmt.Errorf("unmarshal post %s: %w", id, err)
	}
	observability.RecordRepositoryOperation(ctx, "post", "find_by_id", "success")
	return &post, nil
}

func (r *RedisPostRepository) ListRecent(ctx context.Context, limit int) ([]domain.Post, error) {
	if limit <= 0 {
		limit = 20
	}
	ids, err := r.client.ZRevRange(ctx, r.recentKey(), 0, int64(limit)-1).Result()
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "post", "list_recent", "error")
		return nil, err
	}
	posts, err := r.fetchDocs(ctx, ids)
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "post", "list_recent", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "post", "list_recent", "success")
	return posts, nil
}

func (r *RedisPostRepository) ListByAuthor(ctx context.Context, authorID uint) ([]domain.Post, error) {
	ids, err := r.client.SMembers(ctx, r.authorKey(authorID)).Result()
	if err != nil && err != redis.Nil {
		observability.RecordRepositoryOperation(ctx, "post", "list_by_author", "error")
		return nil, err
	}
	posts, err := r.fetchDocs(ctx, ids)
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "post", "list_by_author", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "post", "list_by_author", "success")
	return posts, nil
}

func (r *RedisPostRepository) Delete(ctx context.Context, id string) error {
	post, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.docKey(id))
	pipe.ZRem(ctx, r.recentKey(), id)
	pipe.SRem(ctx, r.authorKey(post.AuthorID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		observability.RecordRepositoryOperation(ctx, "post", "delete", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "post", "delete", "success")
	return nil
}

func (r *RedisPostRepository) fetchDocs(ctx context.Context, ids []string) ([]domain.Post, error) {
	posts := make([]domain.Post, 0, len(ids))
	if len(ids) == 0 {
		return posts, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.docKey(id)
	}
	docs, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, doc := range docs {
		raw, ok := doc.(string)
		if !ok {
			// Index entry without a document: stale index, skip it.
			continue
		}
		var post domain.Post
		if err := json.Unmarshal([]byte(raw), &post); err != nil {
			return nil, fmt.Errorf("unmarshal post %s: %w", ids[i], err)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (r *RedisPostRepository) docKey(id string) string { return fmt.Sprintf("%s:doc:%s", r.prefix, id) }

func (r *RedisPostRepository) recentKey() string { return r.prefix + ":recent" }

func (r *RedisPostRepository) authorKey(authorID uint) string {
	return fmt.Sprintf("%s:author:%d", r.prefix, authorID)
}
