package config

import (
	"net/netip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/web3-hub/internal/models"
)

// writeFile — утилита записи временного файла конфигурации.
func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

// chdir — смена текущего рабочего каталога с автоматическим откатом.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

// Полный корректный YAML (не зависит от дефолтов).
const sampleYAML = `
env: "prod"
http:
  host: "127.0.0.1"
  port: "8181"
chain:
  rpc_url: "https://rpc.example"
  token_address: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
credits:
  chatbot: 2
  gaming_bot: 30
llm:
  provider: "gemini"
  api_key: "k"
news:
  sources:
    - name: "A"
      url: "https://a.example/rss.xml"
    - name: "B"
      url: "https://b.example/feed"
  max_articles: 10
  retry_attempts: 2
  retry_min_delay: "100ms"
  retry_max_delay: "1s"
  concurrency: 3
cache:
  backend: "file"
  path: "/tmp/news.json"
`

// Некорректный YAML — для проверки ошибок парсинга.
const brokenYAML = `
news:
  sources: [{name: "A", url: "https://a"
`

func TestHTTPConfig_Addr(t *testing.T) {
	t.Parallel()
	cfg := HTTPConfig{Host: "127.0.0.1", Port: "8080"}
	require.Equal(t, "127.0.0.1:8080", cfg.Addr())
}

// TestLoad_WithExplicitPath_OK — явный путь имеет высший приоритет.
func TestLoad_WithExplicitPath_OK(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", sampleYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, "127.0.0.1:8181", cfg.HTTP.Addr())
	require.Equal(t, "https://rpc.example", cfg.Chain.RPCURL)
	require.EqualValues(t, 2, cfg.Credits.Chatbot)
	require.EqualValues(t, 30, cfg.Credits.GamingBot)
	// Не заданные в YAML пороги берутся из env-default.
	require.EqualValues(t, 5, cfg.Credits.SmartContractGenerator)
	require.Equal(t, ProviderGemini, cfg.LLM.Provider)
	require.Equal(t, Sources{
		{Name: "A", URL: "https://a.example/rss.xml"},
		{Name: "B", URL: "https://b.example/feed"},
	}, cfg.News.Sources)
	require.Equal(t, 10, cfg.News.MaxArticles)
	require.Equal(t, 100*time.Millisecond, cfg.News.RetryMinDelay)
	require.Equal(t, 3, cfg.News.Concurrency)
	require.Equal(t, "/tmp/news.json", cfg.Cache.Path)
}

// TestLoad_WithExplicitPath_FileDoesNotExist — явный путь на несуществующий файл.
func TestLoad_WithExplicitPath_FileDoesNotExist(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")
	_, err := Load(missing)
	require.Error(t, err)
	require.Contains(t, err.Error(), "config file does not exist")
}

// TestLoad_WithExplicitPath_BrokenYAML — битый YAML по явному пути.
func TestLoad_WithExplicitPath_BrokenYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "broken.yaml", brokenYAML)

	_, err := Load(cfgPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read config")
}

// TestLoad_EnvOnly_Defaults — без файлов действуют дефолты, включая пять лент и пороги.
func TestLoad_EnvOnly_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "local", cfg.Env)
	require.Len(t, cfg.News.Sources, 5)
	require.Equal(t, 25, cfg.News.MaxArticles)
	require.Equal(t, 3, cfg.News.RetryAttempts)
	require.Equal(t, time.Second, cfg.News.RetryMinDelay)
	require.Equal(t, 5*time.Second, cfg.News.RetryMaxDelay)
	require.Equal(t, 3*time.Minute, cfg.News.RunTimeout)
	require.Empty(t, cfg.RateLimit.TrustedProxies)
	require.Equal(t, CacheFile, cfg.Cache.Backend)
	require.Equal(t, ProviderGroq, cfg.LLM.Provider)

	th := cfg.Credits.Thresholds()
	require.Len(t, th, len(models.AllFeatures()))
	require.EqualValues(t, 1, th[models.FeatureChatbot])
	require.EqualValues(t, 5, th[models.FeatureSmartContractGenerator])
	require.EqualValues(t, 3, th[models.FeatureTradeAssistant])
	require.EqualValues(t, 2, th[models.FeatureAskPeople])
	require.EqualValues(t, 1, th[models.FeatureNewsInsights])
	require.EqualValues(t, 9, th[models.FeatureSomniaEcosystem])
	require.EqualValues(t, 11, th[models.FeatureGamingBot])
}

// TestLoad_EnvOnly_Overrides — ENV переопределяет дефолты, включая NEWS_SOURCES.
func TestLoad_EnvOnly_Overrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("CREDITS_CHATBOT", "4")
	t.Setenv("NEWS_SOURCES", "One|https://one.example/rss, Two|https://two.example/rss")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("RATE_LIMIT_TRUSTED_PROXIES", "10.0.0.0/8,127.0.0.1")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.RateLimit.TrustedProxies)

	require.EqualValues(t, 4, cfg.Credits.Chatbot)
	require.Equal(t, Sources{
		{Name: "One", URL: "https://one.example/rss"},
		{Name: "Two", URL: "https://two.example/rss"},
	}, cfg.News.Sources)
	require.Equal(t, CacheRedis, cfg.Cache.Backend)
}

// TestLoad_WithCONFIG_PATH_WinsOverLocal — CONFIG_PATH важнее local.yaml.
func TestLoad_WithCONFIG_PATH_WinsOverLocal(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	writeFile(t, dir, "local.yaml", `env: "local"`)
	envPath := writeFile(t, dir, "from_env.yaml", `env: "dev"`)
	t.Setenv("CONFIG_PATH", envPath)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "dev", cfg.Env)
}

// TestLoad_WithLocalYAML_OK — если нет CONFIG_PATH, берётся ./local.yaml.
func TestLoad_WithLocalYAML_OK(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, ".", "local.yaml", sampleYAML)
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Env)
}

func TestSources_SetValue_Invalid(t *testing.T) {
	t.Parallel()

	var s Sources
	require.Error(t, s.SetValue("no-separator"))
	require.Error(t, s.SetValue("|https://x"))
	require.NoError(t, s.SetValue(" , A|https://a ,"))
	require.Equal(t, Sources{{Name: "A", URL: "https://a"}}, s)
}

func TestRateLimitConfig_Proxies(t *testing.T) {
	t.Parallel()

	got, err := RateLimitConfig{TrustedProxies: []string{"10.1.2.3/8", " 127.0.0.1 ", "", "::1"}}.Proxies()
	require.NoError(t, err)
	require.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("127.0.0.1/32"),
		netip.MustParsePrefix("::1/128"),
	}, got)

	_, err = RateLimitConfig{TrustedProxies: []string{"proxy.local"}}.Proxies()
	require.Error(t, err)
}

// TestValidate — таблица невалидных конфигураций.
func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		return Config{
			Credits: CreditsConfig{Chatbot: 1},
			LLM:     LLMConfig{Provider: ProviderGroq},
			News: NewsConfig{
				Sources:       DefaultSources(),
				MaxArticles:   25,
				RetryAttempts: 3,
				RetryMinDelay: time.Second,
				RetryMaxDelay: 5 * time.Second,
				Concurrency:   1,
				RunTimeout:    time.Minute,
			},
			Cache: CacheConfig{Backend: CacheFile, Path: "x.json"},
		}
	}

	base := valid()
	require.NoError(t, base.validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"negative threshold", func(c *Config) { c.Credits.Chatbot = -1 }, "credits.chatbot"},
		{"bad token address", func(c *Config) { c.Chain.TokenAddress = "0x123" }, "token_address"},
		{"max articles", func(c *Config) { c.News.MaxArticles = 0 }, "max_articles"},
		{"retry attempts", func(c *Config) { c.News.RetryAttempts = 0 }, "retry_attempts"},
		{"delays", func(c *Config) { c.News.RetryMinDelay = time.Minute }, "retry_min_delay"},
		{"concurrency", func(c *Config) { c.News.Concurrency = 0 }, "concurrency"},
		{"run timeout", func(c *Config) { c.News.RunTimeout = 0 }, "run_timeout"},
		{"trusted proxy", func(c *Config) { c.RateLimit.TrustedProxies = []string{"10.0.0.0/33"} }, "trusted_proxies"},
		{"cache backend", func(c *Config) { c.Cache.Backend = "s3" }, "cache.backend"},
		{"redis url", func(c *Config) { c.Cache.Backend = CacheRedis }, "redis_url"},
		{"llm provider", func(c *Config) { c.LLM.Provider = "openai" }, "llm.provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		_ = MustLoad(filepath.Join(t.TempDir(), "nope.yaml"))
	})
}
