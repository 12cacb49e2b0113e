package models

import "time"

// Заглушки для полей, которых нет в исходной ленте.
const (
	NoTitle   = "No title available"
	NoExcerpt = "No excerpt available"
)

// Категории новостей. Порядок проверки ключевых слов задаётся в news.categorize.
const (
	CategoryDeFi       = "DeFi"
	CategoryNFTs       = "NFTs"
	CategoryRegulation = "Regulation"
	CategoryDAOs       = "DAOs"
	CategoryGaming     = "Gaming"
	CategoryLayer2     = "Layer 2"
	CategoryWeb3       = "Web3"
)

// Source — именованный RSS-источник.
type Source struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url"  json:"url"`
}

// FeedItem — элемент ленты после парсинга, до нормализации пайплайном.
//
// Требования к реализации FeedFetcher:
//   - Link нормализован (без #fragment и трекинговых параметров);
//   - PublishedAt в UTC, допускается нулевое значение.
type FeedItem struct {
	Title          string
	Link           string
	ContentSnippet string
	Content        string
	PublishedAt    time.Time
}

// NewsArticle — итоговая запись батча, в таком виде отдаётся по API и пишется в кэш.
type NewsArticle struct {
	ID         string   `json:"id"`
	Source     string   `json:"source"`
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Excerpt    string   `json:"excerpt"`
	Date       string   `json:"date"`
	Category   string   `json:"category"`
	AISummary  string   `json:"aiSummary,omitempty"`
	AIAnalysis string   `json:"aiAnalysis,omitempty"`
	Entities   []string `json:"entities"`
}
