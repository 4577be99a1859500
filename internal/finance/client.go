package finance

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/bluele/gcache"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	cacheTTL       = 10 * time.Minute
)

// labels maps ticker symbols to the short names the dashboard shows.
var labels = map[string]string{
	"^GSPC":   "S&P 500",
	"^DJI":    "DOW",
	"^IXIC":   "NASDAQ",
	"BTC-USD": "BTC",
	"ETH-USD": "ETH",
	"GC=F":    "GOLD",
}

// Quote is one ticker's latest price and daily move.
type Quote struct {
	Symbol        string
	Label         string
	Price         float64
	ChangePercent float64
}

// Client fetches quotes from the Yahoo chart endpoint, caching per symbol
// so the poll loop can ask every cycle.
type Client struct {
	client  *http.Client
	baseURL string
	cache   gcache.Cache
}

// NewClient creates a quote client.
func NewClient() *Client {
	return &Client{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: defaultBaseURL,
		cache:   gcache.New(16).LRU().Expiration(cacheTTL).Build(),
	}
}

// Quotes fetches every symbol it can. A symbol that fails is logged and
// left out; the rest still come back.
func (c *Client) Quotes(ctx context.Context, symbols []string) []Quote {
	quotes := make([]Quote, 0, len(symbols))
	for _, symbol := range symbols {
		quote, err := c.quote(ctx, symbol)
		if err != nil {
			log.Printf("Finance: failed to fetch %s (skipping): %v", symbol, err)
			continue
		}
		quotes = append(quotes, quote)
	}
	return quotes
}

// chartResponse mirrors the slice of the Yahoo payload we read.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
			} `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

func (c *Client) quote(ctx context.Context, symbol string) (Quote, error) {
	if cached, err := c.cache.Get(symbol); err == nil {
		return cached.(Quote), nil
	}

	endpoint := fmt.Sprintf("%s/%s?interval=1d&range=1d", c.baseURL, url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to create request: %w", err)
	}
	// The endpoint rejects clients without a browser-looking agent.
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to fetch quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("quote API returned status %d", resp.StatusCode)
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Quote{}, fmt.Errorf("failed to decode quote response: %w", err)
	}
	if len(payload.Chart.Result) == 0 {
		return Quote{}, fmt.Errorf("quote response for %s had no result", symbol)
	}

	meta := payload.Chart.Result[0].Meta
	quote := Quote{
		Symbol: symbol,
		Label:  displayLabel(symbol),
		Price:  meta.RegularMarketPrice,
	}
	if meta.ChartPreviousClose != 0 {
		quote.ChangePercent = (meta.RegularMarketPrice - meta.ChartPreviousClose) / meta.ChartPreviousClose * 100
	}

	c.cache.Set(symbol, quote)
	return quote, nil
}

// displayLabel picks the dashboard name for a symbol, falling back to the
// symbol itself.
func displayLabel(symbol string) string {
	if label, ok := labels[symbol]; ok {
		return label
	}
	return symbol
}
