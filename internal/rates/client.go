package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"kassza/internal/core"
	"kassza/internal/log"
)

// Rate is one quoted conversion between two currencies.
type Rate struct {
	Base   core.Currency `json:"base"`
	Target core.Currency `json:"target"`
	Rate   float64       `json:"rate"`
	Date   string        `json:"date"`
}

// Result is what the dashboard embeds: either a rate or a human-readable
// error, never both. A failed lookup is not a failed dashboard.
type Result struct {
	Data *Rate  `json:"data,omitempty"`
	Err  string `json:"error,omitempty"`
}

// frankfurterResponse mirrors the JSON shape of api.frankfurter.app/latest.
type frankfurterResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *log.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.WithComponent(log.ComponentRates),
	}
}

// Current fetches the latest base→target rate. It never fails the caller:
// any fault comes back as Result.Err.
func (c *Client) Current(ctx context.Context, base, target core.Currency) Result {
	rate, err := c.fetch(ctx, base, target)
	if err != nil {
		c.logger.ErrorContext(ctx, "exchange rate lookup failed",
			log.FieldCurrency, string(base), "target", string(target), log.FieldError, err)
		return Result{Err: "exchange rate unavailable"}
	}
	return Result{Data: rate}
}

func (c *Client) fetch(ctx context.Context, base, target core.Currency) (*Rate, error) {
	u := fmt.Sprintf("%s?base=%s&symbols=%s",
		c.baseURL, url.QueryEscape(string(base)), url.QueryEscape(string(target)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates API returned status %d", resp.StatusCode)
	}

	var payload frankfurterResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	value, ok := payload.Rates[string(target)]
	if !ok {
		return nil, fmt.Errorf("rate for %s missing from response", target)
	}

	return &Rate{
		Base:   base,
		Target: target,
		Rate:   value,
		Date:   payload.Date,
	}, nil
}
