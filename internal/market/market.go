// market — клиент CoinMarketCap для /api/crypto и котировок торгового ассистента.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pribylovaa/web3-hub/internal/models"
)

var (
	// ErrInvalidQuery — неизвестный type или limit вне [1, 100].
	// Транспорт: 400.
	ErrInvalidQuery = errors.New("invalid market query")
	// ErrUpstream — CoinMarketCap недоступен или ответил ошибкой.
	// Транспорт: 500.
	ErrUpstream = errors.New("market data upstream error")
	// ErrNotFound — монета с таким символом не найдена.
	ErrNotFound = errors.New("coin not found")
)

const (
	DefaultLimit = 10
	MaxLimit     = 100

	aiTag = "ai-big-data"
)

// Client — минимальный клиент CMC Pro API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New создаёт клиента. nil-клиент заменяется клиентом с таймаутом 10s.
func New(baseURL, apiKey string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    client,
	}
}

// ParseQuery проверяет параметры /api/crypto. Пустые значения → top и DefaultLimit.
func ParseQuery(kind, limit string) (models.CoinKind, int, error) {
	k := models.CoinKind(strings.ToLower(strings.TrimSpace(kind)))
	switch k {
	case "":
		k = models.CoinsTop
	case models.CoinsTop, models.CoinsTrending, models.CoinsAI:
	default:
		return "", 0, fmt.Errorf("type %q: %w", kind, ErrInvalidQuery)
	}

	n := DefaultLimit
	if s := strings.TrimSpace(limit); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > MaxLimit {
			return "", 0, fmt.Errorf("limit %q: %w", limit, ErrInvalidQuery)
		}
		n = v
	}

	return k, n, nil
}

// Coins возвращает выборку kind размером не больше limit.
func (c *Client) Coins(ctx context.Context, kind models.CoinKind, limit int) ([]models.Coin, error) {
	const op = "market.Client.Coins"

	if limit < 1 || limit > MaxLimit {
		return nil, fmt.Errorf("%s: limit %d: %w", op, limit, ErrInvalidQuery)
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("convert", "USD")

	var path string
	switch kind {
	case models.CoinsTop:
		path = "/v1/cryptocurrency/listings/latest"
		q.Set("start", "1")
	case models.CoinsTrending:
		path = "/v1/cryptocurrency/trending/latest"
	case models.CoinsAI:
		path = "/v1/cryptocurrency/listings/latest"
		q.Set("start", "1")
		q.Set("tag", aiTag)
	default:
		return nil, fmt.Errorf("%s: kind %q: %w", op, kind, ErrInvalidQuery)
	}

	var body struct {
		Data []coinDTO `json:"data"`
	}
	if err := c.get(ctx, path, q, &body); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]models.Coin, 0, len(body.Data))
	for _, d := range body.Data {
		out = append(out, d.toModel())
	}
	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

// Quote возвращает котировку по тикеру (ETH, BTC, ...).
func (c *Client) Quote(ctx context.Context, symbol string) (models.Coin, error) {
	const op = "market.Client.Quote"

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return models.Coin{}, fmt.Errorf("%s: empty symbol: %w", op, ErrInvalidQuery)
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("convert", "USD")

	var body struct {
		Data map[string][]coinDTO `json:"data"`
	}
	if err := c.get(ctx, "/v2/cryptocurrency/quotes/latest", q, &body); err != nil {
		return models.Coin{}, fmt.Errorf("%s: %w", op, err)
	}

	list := body.Data[symbol]
	if len(list) == 0 {
		return models.Coin{}, fmt.Errorf("%s: %s: %w", op, symbol, ErrNotFound)
	}

	return list[0].toModel(), nil
}

// get выполняет GET и декодирует JSON. Любой не-200 → ErrUpstream.
func (c *Client) get(ctx context.Context, path string, q url.Values, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("new_request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-CMC_PRO_API_KEY", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var st statusDTO
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = json.Unmarshal(raw, &st)
		if msg := st.Status.ErrorMessage; msg != "" {
			return fmt.Errorf("%w: status=%d: %s", ErrUpstream, resp.StatusCode, msg)
		}
		return fmt.Errorf("%w: status=%d", ErrUpstream, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}

	return nil
}

type statusDTO struct {
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
}

type quoteDTO struct {
	Price            float64 `json:"price"`
	PercentChange24h float64 `json:"percent_change_24h"`
	MarketCap        float64 `json:"market_cap"`
	Volume24h        float64 `json:"volume_24h"`
}

type coinDTO struct {
	ID      int64               `json:"id"`
	Name    string              `json:"name"`
	Symbol  string              `json:"symbol"`
	Slug    string              `json:"slug"`
	CMCRank int                 `json:"cmc_rank"`
	Quote   map[string]quoteDTO `json:"quote"`
}

func (d coinDTO) toModel() models.Coin {
	usd := d.Quote["USD"]

	return models.Coin{
		ID:               d.ID,
		Name:             d.Name,
		Symbol:           d.Symbol,
		Slug:             d.Slug,
		Rank:             d.CMCRank,
		PriceUSD:         usd.Price,
		PercentChange24h: usd.PercentChange24h,
		MarketCapUSD:     usd.MarketCap,
		Volume24hUSD:     usd.Volume24h,
	}
}
