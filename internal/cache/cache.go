// cache хранит последний успешный батч новостей.
// Батч перезаписывается целиком, истории нет.
package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/pribylovaa/web3-hub/internal/config"
)

// ErrEmpty — в кэше ещё ничего не сохранено.
var ErrEmpty = errors.New("cache is empty")

// Open создаёт кэш по cfg.Backend. Для redis выполняется fail-fast Ping.
// Возвращаемое значение реализует news.Cache и io.Closer.
func Open(ctx context.Context, cfg config.CacheConfig) (Store, error) {
	const op = "cache.Open"

	switch cfg.Backend {
	case config.CacheFile, "":
		return NewFile(cfg.Path), nil
	case config.CacheRedis:
		r, err := NewRedis(ctx, cfg.RedisURL, cfg.Key)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%s: unknown backend %q", op, cfg.Backend)
	}
}
