package finance

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func chartFixture(symbol string, price, prevClose float64) string {
	return fmt.Sprintf(`{"chart":{"result":[{"meta":{"symbol":%q,"regularMarketPrice":%v,"chartPreviousClose":%v}}]}}`,
		symbol, price, prevClose)
}

func testClientFor(server *httptest.Server) *Client {
	c := NewClient()
	c.client = server.Client()
	c.baseURL = server.URL
	return c
}

func TestQuotesFetchesAndLabels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "GSPC"):
			w.Write([]byte(chartFixture("^GSPC", 5650.0, 5600.0)))
		case strings.Contains(r.URL.Path, "BTC-USD"):
			w.Write([]byte(chartFixture("BTC-USD", 98000.0, 100000.0)))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	quotes := testClientFor(server).Quotes(context.Background(), []string{"^GSPC", "BTC-USD"})

	if len(quotes) != 2 {
		t.Fatalf("got %d quotes, want 2", len(quotes))
	}
	if quotes[0].Label != "S&P 500" || quotes[0].Price != 5650.0 {
		t.Errorf("quotes[0] = %+v, want S&P 500 at 5650", quotes[0])
	}
	wantChange := (5650.0 - 5600.0) / 5600.0 * 100
	if quotes[0].ChangePercent != wantChange {
		t.Errorf("change = %v, want %v", quotes[0].ChangePercent, wantChange)
	}
	if quotes[1].ChangePercent >= 0 {
		t.Errorf("BTC change = %v, want negative", quotes[1].ChangePercent)
	}
}

func TestQuotesSkipsFailedSymbols(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "GOOD") {
			w.Write([]byte(chartFixture("GOOD", 10.0, 10.0)))
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	quotes := testClientFor(server).Quotes(context.Background(), []string{"BAD", "GOOD"})

	if len(quotes) != 1 || quotes[0].Symbol != "GOOD" {
		t.Errorf("quotes = %+v, want only GOOD", quotes)
	}
}

func TestQuotesServedFromCache(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(chartFixture("^GSPC", 5650.0, 5600.0)))
	}))
	defer server.Close()

	c := testClientFor(server)
	c.Quotes(context.Background(), []string{"^GSPC"})
	c.Quotes(context.Background(), []string{"^GSPC"})

	if requests != 1 {
		t.Errorf("upstream requests = %d, want 1", requests)
	}
}

func TestDisplayLabelFallsBack(t *testing.T) {
	if got := displayLabel("TSLA"); got != "TSLA" {
		t.Errorf("displayLabel(TSLA) = %q, want TSLA", got)
	}
	if got := displayLabel("GC=F"); got != "GOLD" {
		t.Errorf("displayLabel(GC=F) = %q, want GOLD", got)
	}
}
