// config предоставляет структуру конфигурации web3-hub
// и функции загрузки из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/pribylovaa/web3-hub/internal/models"
)

// Поддерживаемые значения llm.provider и cache.backend.
const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
	ProviderCohere = "cohere"

	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config — корневая конфигурация сервиса.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	HTTP      HTTPConfig      `yaml:"http"`
	GRPC      GRPCConfig      `yaml:"grpc"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
	Chain     ChainConfig     `yaml:"chain"`
	Credits   CreditsConfig   `yaml:"credits"`
	LLM       LLMConfig       `yaml:"llm"`
	News      NewsConfig      `yaml:"news"`
	Cache     CacheConfig     `yaml:"cache"`
	Market    MarketConfig    `yaml:"market"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// TimeoutConfig — таймауты запросов и исходящих вызовов.
type TimeoutConfig struct {
	// Service — общий дедлайн HTTP-запроса.
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"60s"`
	RPC     time.Duration `yaml:"rpc"     env:"RPC_TIMEOUT"     env-default:"10s"`
	LLM     time.Duration `yaml:"llm"     env:"LLM_TIMEOUT"     env-default:"30s"`
	Feed    time.Duration `yaml:"feed"    env:"FEED_TIMEOUT"    env-default:"15s"`
}

// HTTPConfig — публичный REST API.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

// GRPCConfig — gRPC-сервер со стандартным health-сервисом.
type GRPCConfig struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"50070"`
}

// MetricsConfig — отдельный HTTP для Prometheus и проб.
type MetricsConfig struct {
	Host string `yaml:"host" env:"METRICS_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"METRICS_PORT" env-default:"9090"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// Addr возвращает адрес в формате host:port.
func (g GRPCConfig) Addr() string { return net.JoinHostPort(g.Host, g.Port) }

// Addr возвращает адрес в формате host:port.
func (m MetricsConfig) Addr() string { return net.JoinHostPort(m.Host, m.Port) }

// ChainConfig — JSON-RPC узел и контракт токена, баланс которого гейтит фичи.
type ChainConfig struct {
	RPCURL       string `yaml:"rpc_url"       env:"RPC_URL"       env-default:"https://dream-rpc.somnia.network"`
	TokenAddress string `yaml:"token_address" env:"TOKEN_ADDRESS"`
}

// CreditsConfig — пороги баланса по фичам. Значения задаёт продукт, не выводятся.
type CreditsConfig struct {
	Chatbot                int64 `yaml:"chatbot"                  env:"CREDITS_CHATBOT"                  env-default:"1"`
	SmartContractGenerator int64 `yaml:"smart_contract_generator" env:"CREDITS_SMART_CONTRACT_GENERATOR" env-default:"5"`
	TradeAssistant         int64 `yaml:"trade_assistant"          env:"CREDITS_TRADE_ASSISTANT"          env-default:"3"`
	AskPeople              int64 `yaml:"ask_people"               env:"CREDITS_ASK_PEOPLE"               env-default:"2"`
	NewsInsights           int64 `yaml:"news_insights"            env:"CREDITS_NEWS_INSIGHTS"            env-default:"1"`
	SomniaEcosystem        int64 `yaml:"somnia_ecosystem"         env:"CREDITS_SOMNIA_ECOSYSTEM"         env-default:"9"`
	GamingBot              int64 `yaml:"gaming_bot"               env:"CREDITS_GAMING_BOT"               env-default:"11"`
	NFTStudio              int64 `yaml:"nft_studio"               env:"CREDITS_NFT_STUDIO"               env-default:"8"`
	TokenLauncher          int64 `yaml:"token_launcher"           env:"CREDITS_TOKEN_LAUNCHER"           env-default:"12"`
	DAOGovernance          int64 `yaml:"dao_governance"           env:"CREDITS_DAO_GOVERNANCE"           env-default:"15"`
	DeFiStrategist         int64 `yaml:"defi_strategist"          env:"CREDITS_DEFI_STRATEGIST"          env-default:"20"`
	PortfolioManager       int64 `yaml:"portfolio_manager"        env:"CREDITS_PORTFOLIO_MANAGER"        env-default:"25"`
}

// Thresholds возвращает пороги в виде карты по идентификатору фичи.
func (c CreditsConfig) Thresholds() map[models.Feature]int64 {
	return map[models.Feature]int64{
		models.FeatureChatbot:                c.Chatbot,
		models.FeatureSmartContractGenerator: c.SmartContractGenerator,
		models.FeatureTradeAssistant:         c.TradeAssistant,
		models.FeatureAskPeople:              c.AskPeople,
		models.FeatureNewsInsights:           c.NewsInsights,
		models.FeatureSomniaEcosystem:        c.SomniaEcosystem,
		models.FeatureGamingBot:              c.GamingBot,
		models.FeatureNFTStudio:              c.NFTStudio,
		models.FeatureTokenLauncher:          c.TokenLauncher,
		models.FeatureDAOGovernance:          c.DAOGovernance,
		models.FeatureDeFiStrategist:         c.DeFiStrategist,
		models.FeaturePortfolioManager:       c.PortfolioManager,
	}
}

// LLMConfig — провайдер генерации текста.
type LLMConfig struct {
	Provider    string  `yaml:"provider"    env:"LLM_PROVIDER"    env-default:"groq"`
	APIKey      string  `yaml:"api_key"     env:"LLM_API_KEY"`
	Model       string  `yaml:"model"       env:"LLM_MODEL"`
	BaseURL     string  `yaml:"base_url"    env:"LLM_BASE_URL"`
	MaxTokens   int32   `yaml:"max_tokens"  env:"LLM_MAX_TOKENS"  env-default:"1024"`
	Temperature float32 `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.7"`
}

// NewsConfig — параметры пайплайна новостей.
type NewsConfig struct {
	// Список источников. ENV NEWS_SOURCES в формате "name|url,name|url".
	Sources       Sources       `yaml:"sources"         env:"NEWS_SOURCES"`
	MaxArticles   int           `yaml:"max_articles"    env:"NEWS_MAX_ARTICLES"   env-default:"25"`
	RetryAttempts int           `yaml:"retry_attempts"  env:"NEWS_RETRY_ATTEMPTS" env-default:"3"`
	RetryMinDelay time.Duration `yaml:"retry_min_delay" env:"NEWS_RETRY_MIN_DELAY" env-default:"1s"`
	RetryMaxDelay time.Duration `yaml:"retry_max_delay" env:"NEWS_RETRY_MAX_DELAY" env-default:"5s"`
	// Concurrency — сколько лент качать одновременно; 1 — последовательно.
	Concurrency int `yaml:"concurrency" env:"NEWS_CONCURRENCY" env-default:"1"`
	// RefreshInterval — период фонового обновления кэша; 0 — выключено.
	RefreshInterval time.Duration `yaml:"refresh_interval" env:"NEWS_REFRESH_INTERVAL" env-default:"0s"`
	// RunTimeout — верхняя граница одного общего прогона; от отмены вызывающих он не зависит.
	RunTimeout time.Duration `yaml:"run_timeout" env:"NEWS_RUN_TIMEOUT" env-default:"3m"`
}

// CacheConfig — хранилище последнего успешного батча новостей.
type CacheConfig struct {
	Backend  string `yaml:"backend"   env:"CACHE_BACKEND" env-default:"file"`
	Path     string `yaml:"path"      env:"CACHE_PATH"    env-default:"data/news-cache.json"`
	RedisURL string `yaml:"redis_url" env:"REDIS_URL"`
	Key      string `yaml:"key"       env:"CACHE_KEY"     env-default:"web3hub:news:batch"`
}

// MarketConfig — CoinMarketCap.
type MarketConfig struct {
	APIKey  string `yaml:"api_key"  env:"CMC_API_KEY"`
	BaseURL string `yaml:"base_url" env:"CMC_BASE_URL" env-default:"https://pro-api.coinmarketcap.com"`
}

// RateLimitConfig — лимит запросов к API на один IP.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"   env:"RATE_LIMIT_RPS"   env-default:"5"`
	Burst int     `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"10"`
	// TrustedProxies — адреса или CIDR прокси, чьему X-Forwarded-For можно верить.
	// Пусто — клиентом всегда считается адрес соединения.
	TrustedProxies []string `yaml:"trusted_proxies" env:"RATE_LIMIT_TRUSTED_PROXIES" env-separator:","`
}

// Proxies разбирает TrustedProxies; одиночный адрес превращается в префикс /32 или /128.
func (r RateLimitConfig) Proxies() ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(r.TrustedProxies))
	for _, raw := range r.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			pfx, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid cidr %q: %w", raw, err)
			}
			out = append(out, pfx.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", raw, err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}

	return out, nil
}

// Sources — список источников с разбором из ENV.
type Sources []models.Source

// SetValue реализует cleanenv.Setter: "CoinDesk|https://...,Decrypt|https://...".
func (s *Sources) SetValue(raw string) error {
	var out Sources
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, url, ok := strings.Cut(part, "|")
		if !ok || strings.TrimSpace(name) == "" || strings.TrimSpace(url) == "" {
			return fmt.Errorf("invalid news source %q: want name|url", part)
		}

		out = append(out, models.Source{Name: strings.TrimSpace(name), URL: strings.TrimSpace(url)})
	}

	*s = out
	return nil
}

// DefaultSources — пять Web3-лент, которые опрашиваются, если список не задан.
func DefaultSources() Sources {
	return Sources{
		{Name: "CoinDesk", URL: "https://www.coindesk.com/arc/outboundfeeds/rss/"},
		{Name: "Cointelegraph", URL: "https://cointelegraph.com/rss"},
		{Name: "Decrypt", URL: "https://decrypt.co/feed"},
		{Name: "The Block", URL: "https://www.theblock.co/rss.xml"},
		{Name: "Bitcoin Magazine", URL: "https://bitcoinmagazine.com/.rss/full/"},
	}
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) error {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("config file does not exist: %s", p)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		return nil
	}

	switch {
	case path != "":
		if err := tryRead(path); err != nil {
			return nil, err
		}
	case os.Getenv("CONFIG_PATH") != "":
		if err := tryRead(os.Getenv("CONFIG_PATH")); err != nil {
			return nil, err
		}
	default:
		if _, err := os.Stat("local.yaml"); err == nil {
			if err := cleanenv.ReadConfig("local.yaml", &cfg); err != nil {
				return nil, fmt.Errorf("failed to read local.yaml: %w", err)
			}
		} else if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read env: %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults — значения, которые нельзя выразить через env-default.
func (c *Config) applyDefaults() {
	if len(c.News.Sources) == 0 {
		c.News.Sources = DefaultSources()
	}
}

// validate — базовая валидация значений.
func (c *Config) validate() error {
	for feature, v := range c.Credits.Thresholds() {
		if v < 0 {
			return fmt.Errorf("credits.%s must be >= 0", feature)
		}
	}
	if c.Chain.TokenAddress != "" && !common.IsHexAddress(c.Chain.TokenAddress) {
		return fmt.Errorf("chain.token_address is not a valid address")
	}
	if c.News.MaxArticles < 1 || c.News.MaxArticles > 100 {
		return fmt.Errorf("news.max_articles must be in [1, 100]")
	}
	if c.News.RetryAttempts < 1 {
		return fmt.Errorf("news.retry_attempts must be >= 1")
	}
	if c.News.RetryMinDelay > c.News.RetryMaxDelay {
		return fmt.Errorf("news.retry_min_delay must be <= news.retry_max_delay")
	}
	if c.News.Concurrency < 1 {
		return fmt.Errorf("news.concurrency must be >= 1")
	}
	if c.News.RunTimeout <= 0 {
		return fmt.Errorf("news.run_timeout must be > 0")
	}
	for _, src := range c.News.Sources {
		if src.Name == "" || src.URL == "" {
			return fmt.Errorf("news.sources: name and url are required")
		}
	}
	switch c.Cache.Backend {
	case CacheFile:
		if c.Cache.Path == "" {
			return fmt.Errorf("cache.path is required for file backend")
		}
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("cache.redis_url is required for redis backend")
		}
	default:
		return fmt.Errorf("cache.backend must be one of: file, redis")
	}
	switch c.LLM.Provider {
	case ProviderGroq, ProviderGemini, ProviderCohere:
	default:
		return fmt.Errorf("llm.provider must be one of: groq, gemini, cohere")
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit values must be >= 0")
	}
	if _, err := c.RateLimit.Proxies(); err != nil {
		return fmt.Errorf("rate_limit.trusted_proxies: %w", err)
	}
	return nil
}
