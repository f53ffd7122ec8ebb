package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// FinnhubBaseURL is the default API root.
const FinnhubBaseURL = "https://finnhub.io/api/v1"

// ErrMissingAPIKey is returned when no Finnhub token is configured.
var ErrMissingAPIKey = errors.New("finnhub API key is not set")

// Finnhub fetches quotes from the Finnhub REST API.
type Finnhub struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewFinnhub returns a client with the given key and request timeout.
func NewFinnhub(apiKey string, timeout time.Duration) (*Finnhub, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &Finnhub{
		BaseURL: FinnhubBaseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: timeout},
	}, nil
}

// finnhubQuote is the subset of /quote we read. C is the current price.
type finnhubQuote struct {
	C decimal.NullDecimal `json:"c"`
}

// Quote implements Quoter. A zero or absent current price is an error.
func (f *Finnhub) Quote(ctx context.Context, ticker string) (decimal.Decimal, error) {
	if f.APIKey == "" {
		return decimal.Zero, ErrMissingAPIKey
	}

	q := url.Values{}
	q.Set("symbol", ticker)
	q.Set("token", f.APIKey)
	addr := f.BaseURL + "/quote?" + q.Encode()

	var data finnhubQuote
	if err := f.getJSON(ctx, addr, &data); err != nil {
		return decimal.Zero, fmt.Errorf("quote %s: %w", ticker, err)
	}
	if !data.C.Valid || !data.C.Decimal.IsPositive() {
		return decimal.Zero, fmt.Errorf("quote %s: no current price", ticker)
	}
	return data.C.Decimal, nil
}

func (f *Finnhub) getJSON(ctx context.Context, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s%s: %s", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, data)
}
