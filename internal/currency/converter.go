// Package currency converts catalog prices into the payment provider's
// settlement currency.
package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

var ErrRateUnavailable = errors.New("exchange rate unavailable")

type Config struct {
	Local      string
	Settlement string
	CacheTTL   time.Duration
}

// RateSource returns how many units of quote one unit of base buys.
type RateSource interface {
	Rate(ctx context.Context, base, quote string) (float64, error)
}

// Converter turns a local price into settlement units using a cached rate.
type Converter struct {
	source     RateSource
	local      string
	settlement string
	cache      *cache.Cache
}

func NewConverter(source RateSource, cfg Config) *Converter {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Converter{
		source:     source,
		local:      strings.ToUpper(cfg.Local),
		settlement: strings.ToUpper(cfg.Settlement),
		cache:      cache.New(ttl, 2*ttl),
	}
}

func (c *Converter) SettlementCurrency() string {
	return c.settlement
}

// Convert returns floor(amount / rate(settlement, local)). It never falls
// back to the unconverted amount.
func (c *Converter) Convert(ctx context.Context, amount int64) (int64, error) {
	if c.local == c.settlement {
		return amount, nil
	}

	rate, err := c.rate(ctx)
	if err != nil {
		return 0, err
	}
	return int64(math.Floor(float64(amount) / rate)), nil
}

func (c *Converter) rate(ctx context.Context) (float64, error) {
	key := c.settlement + ":" + c.local
	if cached, found := c.cache.Get(key); found {
		return cached.(float64), nil
	}

	rate, err := c.source.Rate(ctx, c.settlement, c.local)
	if err != nil {
		return 0, err
	}
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, fmt.Errorf("%w: %s/%s rate %v", ErrRateUnavailable, c.settlement, c.local, rate)
	}

	c.cache.Set(key, rate, cache.DefaultExpiration)
	return rate, nil
}

// HTTPRateSource queries an open.er-api.com compatible endpoint:
// GET {baseURL}/latest/{base} -> {"result": "success", "rates": {...}}.
type HTTPRateSource struct {
	baseURL string
	client  *http.Client
}

func NewHTTPRateSource(baseURL string, timeout time.Duration) *HTTPRateSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPRateSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type latestResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

func (s *HTTPRateSource) Rate(ctx context.Context, base, quote string) (float64, error) {
	url := fmt.Sprintf("%s/latest/%s", s.baseURL, strings.ToUpper(base))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRateUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", ErrRateUnavailable, resp.StatusCode)
	}

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("%w: decode: %v", ErrRateUnavailable, err)
	}
	if body.Result != "" && body.Result != "success" {
		return 0, fmt.Errorf("%w: result %q", ErrRateUnavailable, body.Result)
	}

	rate, ok := body.Rates[strings.ToUpper(quote)]
	if !ok {
		return 0, fmt.Errorf("%w: no %s rate", ErrRateUnavailable, quote)
	}
	return rate, nil
}
