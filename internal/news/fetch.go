package news

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/pribylovaa/web3-hub/internal/models"
	"github.com/pribylovaa/web3-hub/pkg/log"
)

// sourceItems — элементы одной ленты вместе с именем источника.
type sourceItems struct {
	source string
	items  []models.FeedItem
}

// panicTrap собирает паники из горутин errgroup: первая паника валит весь батч.
type panicTrap struct {
	once sync.Once
	err  error
}

func (t *panicTrap) guard(fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				t.once.Do(func() { t.err = fmt.Errorf("panic: %v", r) })
			}
		}()
		return fn()
	}
}

// fetchAll опрашивает источники не более чем cfg.Concurrency одновременно.
// Результат идёт в порядке источников из конфига, независимо от порядка завершения.
// Упавший после всех попыток источник пропускается.
func (p *Pipeline) fetchAll(ctx context.Context) ([]sourceItems, error) {
	const op = "news.Pipeline.fetchAll"

	lg := log.From(ctx)
	sources := p.cfg.Sources
	out := make([]sourceItems, len(sources))

	var (
		g    errgroup.Group
		trap panicTrap
	)
	g.SetLimit(p.cfg.Concurrency)

	for i, src := range sources {
		i, src := i, src
		g.Go(trap.guard(func() error {
			items, err := p.fetchWithRetry(ctx, src)
			if err != nil {
				p.metrics.FeedFetch(src.Name, "skipped")
				lg.Warn("feed_skipped",
					slog.String("op", op),
					slog.String("source", src.Name),
					slog.String("url", src.URL),
					slog.String("err", err.Error()),
				)
				return nil
			}

			p.metrics.FeedFetch(src.Name, "ok")
			out[i] = sourceItems{source: src.Name, items: items}
			return nil
		}))
	}

	_ = g.Wait()
	if trap.err != nil {
		return nil, trap.err
	}

	return out, nil
}

// fetchWithRetry — до cfg.RetryAttempts попыток с экспоненциальной паузой
// в пределах [RetryMinDelay, RetryMaxDelay].
func (p *Pipeline) fetchWithRetry(ctx context.Context, src models.Source) ([]models.FeedItem, error) {
	const op = "news.Pipeline.fetchWithRetry"

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.cfg.RetryMinDelay
	bo.MaxInterval = p.cfg.RetryMaxDelay
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(p.cfg.RetryAttempts-1)), ctx)

	var items []models.FeedItem
	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		var ferr error
		items, ferr = p.fetcher.Fetch(ctx, src.URL)
		return ferr
	}, policy, func(err error, wait time.Duration) {
		log.From(ctx).Debug("feed_retry",
			slog.String("op", op),
			slog.String("source", src.Name),
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.String("err", err.Error()),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %s after %d attempts: %w", op, src.Name, attempt, err)
	}

	return items, nil
}
