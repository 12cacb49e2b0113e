package news

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pribylovaa/web3-hub/pkg/log"
)

// StartRefresh периодически прогоняет Ingest, чтобы кэш оставался тёплым.
//
// Особенности:
//   - первый прогон выполняется сразу;
//   - ошибки прогона логируются и не останавливают цикл;
//   - останавливается по ctx.
func (p *Pipeline) StartRefresh(ctx context.Context, interval time.Duration) error {
	const op = "news.Pipeline.StartRefresh"

	if interval <= 0 {
		return fmt.Errorf("%s: interval must be > 0", op)
	}
	if len(p.cfg.Sources) == 0 {
		return fmt.Errorf("%s: no sources configured", op)
	}

	lg := log.From(ctx)
	lg.Info("refresh_start",
		slog.String("op", op),
		slog.Int("sources", len(p.cfg.Sources)),
		slog.Duration("interval", interval),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.refreshOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			lg.Info("refresh_stop", slog.String("op", op))
			return nil
		case <-ticker.C:
			p.refreshOnce(ctx)
		}
	}
}

func (p *Pipeline) refreshOnce(ctx context.Context) {
	const op = "news.Pipeline.refreshOnce"

	if _, err := p.Ingest(ctx); err != nil {
		log.From(ctx).Warn("refresh_tick_error",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	}
}
