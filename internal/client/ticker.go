package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// TickerClient fetches token unit prices from a CoinGecko-compatible API.
type TickerClient struct {
	baseURL string
	client  *http.Client
}

// NewTickerClient creates a new ticker client
func NewTickerClient(baseURL string) *TickerClient {
	return &TickerClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Price returns the unit price of tickerID in the given fiat currency as a
// decimal string.
func (c *TickerClient) Price(ctx context.Context, tickerID, currency string) (string, error) {
	tickerID = strings.ToLower(tickerID)
	currency = strings.ToLower(currency)
	u := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s",
		c.baseURL, url.QueryEscape(tickerID), url.QueryEscape(currency))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build rate request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to get rate: status %d", resp.StatusCode)
	}

	// Response shape: {"<tickerID>": {"<currency>": 1.23}}
	var priceResp map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&priceResp); err != nil {
		return "", fmt.Errorf("failed to decode rate: %w", err)
	}

	rate, ok := priceResp[tickerID][currency]
	if !ok || rate <= 0 {
		return "", fmt.Errorf("no %s/%s rate in response", tickerID, currency)
	}
	return strconv.FormatFloat(rate, 'f', -1, 64), nil
}
