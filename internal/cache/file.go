package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pribylovaa/web3-hub/internal/models"
)

// File — кэш в одном JSON-файле.
//
// Особенности:
//   - запись идёт во временный файл в той же директории и затем rename поверх цели,
//     читатель видит либо старый, либо новый батч целиком;
//   - отсутствующий, пустой файл или пустой массив → ErrEmpty.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile создаёт файловый кэш. Директория создаётся при первой записи.
func NewFile(path string) *File {
	return &File{path: path}
}

// Load читает батч из файла. Чтение локальное, ctx не проверяется.
func (f *File) Load(_ context.Context) ([]models.NewsArticle, error) {
	const op = "cache.File.Load"

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(data) == 0 {
		return nil, ErrEmpty
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

// Save перезаписывает файл батчем articles.
func (f *File) Save(ctx context.Context, articles []models.NewsArticle) error {
	const op = "cache.File.Save"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: encode: %w", op, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%s: mkdir: %w", op, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%s: create temp: %w", op, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: write: %w", op, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: sync: %w", op, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: close: %w", op, err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("%s: rename: %w", op, err)
	}

	return nil
}

// Close — у файлового кэша нечего закрывать.
func (f *File) Close() error { return nil }
