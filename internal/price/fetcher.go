// Package price fetches spot prices for valuing swapper holdings.
package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Coin IDs on CoinGecko.
const (
	CoinETH   = "ethereum"
	CoinStETH = "staked-ether"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// Fetcher retrieves prices from CoinGecko's simple price endpoint.
type Fetcher struct {
	client   *http.Client
	baseURL  string
	currency string
}

// NewFetcher creates a fetcher quoting in currency (default "usd").
func NewFetcher(currency string) *Fetcher {
	if currency == "" {
		currency = "usd"
	}
	return &Fetcher{
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  defaultBaseURL,
		currency: strings.ToLower(currency),
	}
}

// Currency returns the quote currency.
func (f *Fetcher) Currency() string { return f.currency }

// Prices returns the price of each coin ID. Coins the API does not know are
// missing from the result.
func (f *Fetcher) Prices(ctx context.Context, ids ...string) (map[string]float64, error) {
	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s", f.baseURL, strings.Join(ids, ","), f.currency)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching prices: HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading price response: %w", err)
	}

	// {"ethereum":{"usd":1234.56}, ...}
	var raw map[string]map[string]float64
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing price response: %w", err)
	}
	prices := make(map[string]float64, len(raw))
	for id, quotes := range raw {
		if p, ok := quotes[f.currency]; ok {
			prices[id] = p
		}
	}
	return prices, nil
}

// Price returns the price of one coin.
func (f *Fetcher) Price(ctx context.Context, id string) (float64, error) {
	prices, err := f.Prices(ctx, id)
	if err != nil {
		return 0, err
	}
	p, ok := prices[id]
	if !ok {
		return 0, fmt.Errorf("no %s price for %s", f.currency, id)
	}
	return p, nil
}
