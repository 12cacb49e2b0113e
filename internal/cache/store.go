package cache

import (
	"context"

	"github.com/pribylovaa/web3-hub/internal/models"
)

// Store — общий контракт реализаций кэша.
type Store interface {
	// Load возвращает последний сохранённый батч или ErrEmpty.
	Load(ctx context.Context) ([]models.NewsArticle, error)
	// Save атомарно заменяет батч.
	Save(ctx context.Context, articles []models.NewsArticle) error
	// Close освобождает ресурсы.
	Close() error
}
