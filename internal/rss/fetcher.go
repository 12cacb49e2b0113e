// rss загружает RSS/Atom-ленты и приводит элементы к models.FeedItem.
package rss

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/pribylovaa/web3-hub/internal/models"
	"github.com/pribylovaa/web3-hub/pkg/log"
)

// maxFeedBytes — верхняя граница размера ответа ленты.
const maxFeedBytes = 10 << 20

const userAgent = "web3-hub/1.0 (+rss)"

// Fetcher реализует news.FeedFetcher поверх gofeed.
// HTTP-клиент настраивается извне (таймауты, прокси и т.д.).
type Fetcher struct {
	client *http.Client
}

// New создаёт Fetcher. nil-клиент заменяется клиентом с таймаутом 15s.
func New(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	return &Fetcher{client: client}
}

// Fetch загружает одну ленту. Любой не-200 ответ — ошибка (ретраи решает вызывающий).
// Элементы без ссылки сохраняются: фильтрация — забота пайплайна.
func (f *Fetcher) Fetch(ctx context.Context, src string) ([]models.FeedItem, error) {
	const op = "rss.Fetcher.Fetch"

	lg := log.From(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: new_request: %w", op, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		lg.Warn("http_error",
			slog.String("op", op),
			slog.String("url", src),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: do: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxFeedBytes))
		return nil, fmt.Errorf("%s: status=%d", op, resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: parse: %w", op, err)
	}

	out := make([]models.FeedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil {
			continue
		}

		pub := publishedAt(it)
		if pub.IsZero() && strings.TrimSpace(it.Published) != "" {
			lg.Debug("date_parse_failed",
				slog.String("op", op),
				slog.String("url", src),
				slog.String("value", it.Published),
			)
		}

		out = append(out, models.FeedItem{
			Title:          strings.TrimSpace(it.Title),
			Link:           canonicalLink(it.Link, it.GUID),
			ContentSnippet: snippet(it),
			Content:        strings.TrimSpace(it.Content),
			PublishedAt:    pub,
		})
	}

	return out, nil
}

// publishedAt берёт разобранную gofeed дату, затем Updated, затем пробует сырые строки.
func publishedAt(it *gofeed.Item) time.Time {
	if it.PublishedParsed != nil {
		return it.PublishedParsed.UTC()
	}
	if it.UpdatedParsed != nil {
		return it.UpdatedParsed.UTC()
	}

	for _, raw := range []string{it.Published, it.Updated} {
		if t, err := parsePubDate(raw); err == nil {
			return t
		}
	}

	return time.Time{}
}

// snippet — текст без разметки: description, а если его нет — content.
func snippet(it *gofeed.Item) string {
	if s := htmlToText(it.Description); s != "" {
		return s
	}

	return htmlToText(it.Content)
}
