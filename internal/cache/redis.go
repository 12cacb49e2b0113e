package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pribylovaa/web3-hub/internal/models"
)

const defaultKey = "web3hub:news:batch"

// Redis — кэш батча в одном ключе (JSON-строка, без TTL).
type Redis struct {
	rdb *redis.Client
	key string
}

// NewRedis создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если key пустой — используется "web3hub:news:batch".
func NewRedis(ctx context.Context, redisURL, key string) (*Redis, error) {
	const op = "cache.NewRedis"

	if key == "" {
		key = defaultKey
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	return &Redis{rdb: rdb, key: key}, nil
}

// Load читает батч по ключу.
func (r *Redis) Load(ctx context.Context) ([]models.NewsArticle, error) {
	const op = "cache.Redis.Load"

	data, err := r.rdb.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var articles []models.NewsArticle
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}
	if len(articles) == 0 {
		return nil, ErrEmpty
	}

	return articles, nil
}

// Save заменяет батч одной командой SET.
func (r *Redis) Save(ctx context.Context, articles []models.NewsArticle) error {
	const op = "cache.Redis.Save"

	data, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("%s: encode: %w", op, err)
	}

	if err := r.rdb.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *Redis) Close() error { return r.rdb.Close() }
