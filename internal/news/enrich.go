package news

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/pribylovaa/web3-hub/internal/models"
	"github.com/pribylovaa/web3-hub/internal/prompt"
	"github.com/pribylovaa/web3-hub/pkg/log"
)

// Лимиты длины полей обогащения, в символах, с учётом многоточия.
const (
	summaryLimit  = 100
	analysisLimit = 150
	ellipsis      = "..."
)

var errNoGenerator = errors.New("text generator is not configured")

// assemble категоризирует черновики, обогащает их и собирает итоговые записи.
// Обогащение идёт параллельно в пределах cfg.Concurrency, порядок записей сохраняется.
func (p *Pipeline) assemble(ctx context.Context, drafts []draft) ([]models.NewsArticle, error) {
	out := make([]models.NewsArticle, len(drafts))

	var (
		g    errgroup.Group
		trap panicTrap
	)
	g.SetLimit(p.cfg.Concurrency)

	for i, d := range drafts {
		i, d := i, d
		g.Go(trap.guard(func() error {
			a := models.NewsArticle{
				ID:       slug(d.source) + "-" + p.newID(),
				Source:   d.source,
				Title:    d.title,
				URL:      d.url,
				Excerpt:  d.excerpt,
				Date:     d.date.Format(time.RFC3339),
				Category: categorize(d.title, d.excerpt),
				Entities: []string{"Web3", d.source},
			}
			if d.excerpt != models.NoExcerpt {
				a.AISummary = p.summary(ctx, a)
				a.AIAnalysis = p.analysis(ctx, a)
			}

			out[i] = a
			return nil
		}))
	}

	_ = g.Wait()
	if trap.err != nil {
		return nil, trap.err
	}

	return out, nil
}

// summary — краткое содержание до 100 символов либо заглушка из excerpt.
func (p *Pipeline) summary(ctx context.Context, a models.NewsArticle) string {
	text, err := p.generate(ctx, prompt.NewsSummary, a, summaryLimit)
	if err != nil {
		p.fallback(ctx, "summary", a, err)
		return truncate(a.Excerpt, summaryLimit)
	}

	return truncate(text, summaryLimit)
}

// analysis — комментарий до 150 символов либо заглушка из категории и заголовка.
func (p *Pipeline) analysis(ctx context.Context, a models.NewsArticle) string {
	text, err := p.generate(ctx, prompt.NewsAnalysis, a, analysisLimit)
	if err != nil {
		p.fallback(ctx, "analysis", a, err)
		return truncate("Key development in "+a.Category+": "+a.Title, analysisLimit)
	}

	return truncate(text, analysisLimit)
}

func (p *Pipeline) generate(ctx context.Context, name string, a models.NewsArticle, limit int) (string, error) {
	if p.generator == nil {
		return "", errNoGenerator
	}

	pr, err := prompt.Render(name, prompt.NewsVars{
		Title:    a.Title,
		Excerpt:  a.Excerpt,
		Category: a.Category,
		Limit:    limit,
	})
	if err != nil {
		return "", err
	}

	text, err := p.generator.Generate(ctx, pr)
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("empty generation")
	}

	return text, nil
}

func (p *Pipeline) fallback(ctx context.Context, field string, a models.NewsArticle, err error) {
	const op = "news.Pipeline.enrich"

	p.metrics.EnrichFallback(field)
	if errors.Is(err, errNoGenerator) {
		return
	}

	log.From(ctx).Warn("enrichment_fallback",
		slog.String("op", op),
		slog.String("field", field),
		slog.String("url", a.URL),
		slog.String("err", err.Error()),
	)
}

// truncate укорачивает s до limit символов, заканчивая многоточием.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	if limit <= len(ellipsis) {
		return string([]rune(s)[:limit])
	}

	r := []rune(s)[:limit-len(ellipsis)]
	return strings.TrimRightFunc(string(r), isSpace) + ellipsis
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\n' }

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// slug — "The Block" → "the-block".
func slug(s string) string {
	s = nonSlug.ReplaceAllString(strings.ToLower(s), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "news"
	}

	return s
}
