package news

import (
	"sort"
	"strings"
	"time"

	"github.com/pribylovaa/web3-hub/internal/models"
)

// draft — запись после нормализации, до категоризации и обогащения.
type draft struct {
	source  string
	title   string
	url     string
	excerpt string
	date    time.Time
}

// normalize превращает элементы лент в черновики.
// Пустые поля заменяются заглушками, отсутствующая дата — текущим временем.
func (p *Pipeline) normalize(fetched []sourceItems) []draft {
	now := p.now().UTC()

	var out []draft
	for _, s := range fetched {
		for _, it := range s.items {
			d := draft{
				source:  s.source,
				title:   strings.TrimSpace(it.Title),
				url:     strings.TrimSpace(it.Link),
				excerpt: firstNonEmpty(it.ContentSnippet, it.Content),
				date:    it.PublishedAt.UTC(),
			}
			if d.title == "" {
				d.title = models.NoTitle
			}
			if d.excerpt == "" {
				d.excerpt = models.NoExcerpt
			}
			if it.PublishedAt.IsZero() {
				d.date = now
			}

			out = append(out, d)
		}
	}

	return out
}

// dedup оставляет первое вхождение каждого url.
func dedup(in []draft) []draft {
	seen := make(map[string]struct{}, len(in))
	out := in[:0:0]

	for _, d := range in {
		if _, ok := seen[d.url]; ok {
			continue
		}
		seen[d.url] = struct{}{}
		out = append(out, d)
	}

	return out
}

// filter убирает записи без заголовка и без ссылки.
func filter(in []draft) []draft {
	out := in[:0:0]
	for _, d := range in {
		if d.title == models.NoTitle || d.url == "" {
			continue
		}
		out = append(out, d)
	}

	return out
}

// newestFirst сортирует по дате (свежие первыми) и обрезает до limit.
// Сортировка стабильная: при равных датах сохраняется порядок источников.
func newestFirst(in []draft, limit int) []draft {
	sort.SliceStable(in, func(i, j int) bool {
		return in[i].date.After(in[j].date)
	})
	if len(in) > limit {
		in = in[:limit]
	}

	return in
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}

	return ""
}
