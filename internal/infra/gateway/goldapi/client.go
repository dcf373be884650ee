// Package goldapi fetches live precious-metal spot rates from a
// metalpriceapi-style JSON endpoint.
package goldapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

const (
	requestTimeout = 10 * time.Second

	// troyOunceGrams converts the API's per-ounce quotes to per-gram.
	troyOunceGrams = "31.1034768"

	symbolGold   = "XAU"
	symbolSilver = "XAG"
)

// Client is a metal price API client.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new metal price client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		baseURL: baseURL,
	}
}

// ratesResponse is the /latest reply shape.
type ratesResponse struct {
	Success bool               `json:"success"`
	Base    string             `json:"base"`
	Rates   map[string]float64 `json:"rates"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Rates holds per-gram INR prices for fine gold and silver.
type Rates struct {
	GoldPerGram   decimal.Decimal `json:"goldPerGram"`
	SilverPerGram decimal.Decimal `json:"silverPerGram"`
	FetchedAt     time.Time       `json:"fetchedAt"`
}

// GetRates fetches the current INR rates per gram of fine metal.
func (c *Client) GetRates(ctx context.Context) (*Rates, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("base", "INR")
	params.Set("currencies", symbolGold+","+symbolSilver)

	reqURL := fmt.Sprintf("%s/latest?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	var rr ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !rr.Success {
		return nil, fmt.Errorf("price API error: %s", rr.Error.Message)
	}

	gold, err := perGram(rr.Rates, symbolGold)
	if err != nil {
		return nil, err
	}
	silver, err := perGram(rr.Rates, symbolSilver)
	if err != nil {
		return nil, err
	}

	return &Rates{
		GoldPerGram:   gold,
		SilverPerGram: silver,
		FetchedAt:     time.Now().UTC(),
	}, nil
}

// perGram converts an INR-per-symbol quote into INR per gram. The API
// reports rates as "INR value of 1 unit" with metals quoted per troy ounce,
// inverted against the base.
func perGram(rates map[string]float64, symbol string) (decimal.Decimal, error) {
	r, ok := rates[symbol]
	if !ok || r == 0 {
		return decimal.Decimal{}, fmt.Errorf("%s rate missing from response", symbol)
	}

	// rate field is symbol-per-INR; invert to INR per ounce first.
	perOunce := decimal.NewFromInt(1).Div(decimal.NewFromFloat(r))
	return perOunce.Div(decimal.RequireFromString(troyOunceGrams)).Round(2), nil
}
