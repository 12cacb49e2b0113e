// news собирает батч Web3-новостей из RSS-лент, обогащает его через LLM
// и держит последний удачный батч в кэше как запасной вариант.
package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/pribylovaa/web3-hub/internal/config"
	"github.com/pribylovaa/web3-hub/internal/metrics"
	"github.com/pribylovaa/web3-hub/internal/models"
	"github.com/pribylovaa/web3-hub/internal/prompt"
	"github.com/pribylovaa/web3-hub/pkg/log"
)

// ErrNoNews — свежий батч собрать не удалось, и кэш пуст или не читается.
var ErrNoNews = errors.New("no news available")

// FeedFetcher загружает и парсит одну ленту.
//
// Требования к реализации:
//  1. Link нормализован (без #fragment и трекинговых параметров);
//  2. PublishedAt в UTC, допускается нулевое значение;
//  3. реализация уважает ctx.
//
//go:generate mockgen -destination=../../mocks/news.go -package=mocks github.com/pribylovaa/web3-hub/internal/news FeedFetcher,TextGenerator,Cache
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]models.FeedItem, error)
}

// TextGenerator — внешний генератор текста для aiSummary/aiAnalysis.
type TextGenerator interface {
	Generate(ctx context.Context, p prompt.Prompt) (string, error)
}

// Cache — хранилище последнего успешного батча.
type Cache interface {
	Load(ctx context.Context) ([]models.NewsArticle, error)
	Save(ctx context.Context, articles []models.NewsArticle) error
}

// Исходы прогона для метрики ingest_total.
const (
	resultFresh  = "fresh"
	resultCache  = "cache"
	resultFailed = "failed"
)

// cacheLoadTimeout — таймаут чтения кэша при откате.
const cacheLoadTimeout = 5 * time.Second

// Pipeline — пайплайн загрузки новостей.
type Pipeline struct {
	fetcher   FeedFetcher
	generator TextGenerator
	cache     Cache
	cfg       config.NewsConfig
	metrics   *metrics.Metrics

	now   func() time.Time
	newID func() string

	group singleflight.Group
}

// Option настраивает Pipeline.
type Option func(*Pipeline)

// WithClock подменяет источник текущего времени (дата для записей без pubDate).
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithIDSuffix подменяет генератор случайного суффикса id.
func WithIDSuffix(gen func() string) Option {
	return func(p *Pipeline) { p.newID = gen }
}

// New создаёт Pipeline. generator может быть nil: тогда поля AI заполняются заглушками.
func New(fetcher FeedFetcher, generator TextGenerator, cache Cache, cfg config.NewsConfig, m *metrics.Metrics, opts ...Option) *Pipeline {
	if cfg.MaxArticles <= 0 {
		cfg.MaxArticles = 25
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 3 * time.Minute
	}

	p := &Pipeline{
		fetcher:   fetcher,
		generator: generator,
		cache:     cache,
		cfg:       cfg,
		metrics:   m,
		now:       time.Now,
		newID:     func() string { return uuid.NewString()[:8] },
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Ingest возвращает свежий батч или, если он пуст либо сборка упала, последний из кэша.
// Ошибка (ErrNoNews) возникает только когда и кэш недоступен.
//
// Параллельные вызовы в одном процессе схлопываются в один прогон. Прогон идёт
// на контексте без отмены, ограниченном cfg.RunTimeout: отмена одного вызывающего
// не обрывает его для остальных. Вызывающий, чей ctx истёк раньше, получает кэш.
// Каждый вызывающий получает свою копию среза.
func (p *Pipeline) Ingest(ctx context.Context) ([]models.NewsArticle, error) {
	const op = "news.Pipeline.Ingest"

	ch := p.group.DoChan("ingest", func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cfg.RunTimeout)
		defer cancel()

		return p.ingest(runCtx)
	})

	select {
	case res := <-ch:
		if res.Shared {
			log.From(ctx).Debug("ingest_shared", slog.String("op", op))
		}
		if res.Err != nil {
			return nil, res.Err
		}

		return slices.Clone(res.Val.([]models.NewsArticle)), nil
	case <-ctx.Done():
		log.From(ctx).Warn("ingest_caller_done",
			slog.String("op", op),
			slog.String("err", ctx.Err().Error()),
		)

		return p.fromCache(ctx, ctx.Err())
	}
}

func (p *Pipeline) ingest(ctx context.Context) ([]models.NewsArticle, error) {
	const op = "news.Pipeline.Ingest"

	lg := log.From(ctx)
	started := time.Now()

	batch, err := p.build(ctx)
	if err == nil && len(batch) > 0 {
		if serr := p.cache.Save(ctx, batch); serr != nil {
			p.metrics.CacheOp("save", "error")
			lg.Warn("cache_save_failed",
				slog.String("op", op),
				slog.String("err", serr.Error()),
			)
		} else {
			p.metrics.CacheOp("save", "ok")
		}

		p.metrics.Ingest(resultFresh)
		lg.Info("ingest_saved",
			slog.String("op", op),
			slog.Int("articles", len(batch)),
			slog.Duration("took", time.Since(started)),
		)

		return batch, nil
	}

	attrs := []any{slog.String("op", op)}
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
	} else {
		attrs = append(attrs, slog.String("reason", "empty_batch"))
	}
	lg.Warn("cache_fallback", attrs...)

	return p.fromCache(ctx, err)
}

// fromCache отдаёт последний сохранённый батч. Чтение идёт на собственном
// коротком таймауте: истёкший ctx прогона или запроса его не отменяет.
// cause — причина, по которой свежего батча нет (может быть nil).
func (p *Pipeline) fromCache(ctx context.Context, cause error) ([]models.NewsArticle, error) {
	const op = "news.Pipeline.Ingest"

	lg := log.From(ctx)

	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheLoadTimeout)
	defer cancel()

	cached, cerr := p.cache.Load(loadCtx)
	if cerr != nil || len(cached) == 0 {
		p.metrics.CacheOp("load", "error")
		p.metrics.Ingest(resultFailed)

		cause = errors.Join(cause, cerr)
		lg.Error("ingest_failed",
			slog.String("op", op),
			slog.Any("err", cause),
		)
		if cause != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrNoNews, cause)
		}
		return nil, fmt.Errorf("%s: %w", op, ErrNoNews)
	}

	p.metrics.CacheOp("load", "ok")
	p.metrics.Ingest(resultCache)
	lg.Info("ingest_from_cache",
		slog.String("op", op),
		slog.Int("articles", len(cached)),
	)

	return cached, nil
}

// build — шаги сборки батча до сохранения. Паника превращается в ошибку.
func (p *Pipeline) build(ctx context.Context) (batch []models.NewsArticle, err error) {
	defer func() {
		if r := recover(); r != nil {
			batch, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()

	fetched, err := p.fetchAll(ctx)
	if err != nil {
		return nil, err
	}

	drafts := p.normalize(fetched)
	drafts = dedup(drafts)
	drafts = filter(drafts)
	drafts = newestFirst(drafts, p.cfg.MaxArticles)
	if len(drafts) == 0 {
		return nil, nil
	}

	return p.assemble(ctx, drafts)
}
