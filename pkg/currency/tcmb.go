// Package currency fetches the current USD/TRY exchange rate from the
// Turkish central bank's daily rates feed. Lookups are cached briefly and
// degrade to "no quote" on any failure; callers treat an absent quote as a
// normal input, never as an error.
package currency

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SourceLabel identifies the rate feed in quotes and reports.
const SourceLabel = "TCMB today.xml"

// Quote is a fetched exchange rate.
type Quote struct {
	Rate   float64 `json:"rate"`
	Date   string  `json:"date,omitempty"`
	Source string  `json:"source"`
}

// Client fetches and caches the USD/TRY rate.
type Client struct {
	logger *zap.Logger
	http   *http.Client
	url    string
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	cached    *Quote
	fetchedAt time.Time
}

// NewClient creates a rate client. A non-positive ttl disables caching.
func NewClient(logger *zap.Logger, url string, ttl, timeout time.Duration) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		logger: logger,
		http:   &http.Client{Timeout: timeout},
		url:    url,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Current returns the cached quote when fresh, otherwise fetches a new one.
// It returns nil when no rate could be obtained.
func (c *Client) Current(ctx context.Context) *Quote {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && c.ttl > 0 && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.cached
	}

	quote, err := c.fetch(ctx)
	if err != nil {
		c.logger.Warn("exchange rate lookup failed",
			zap.String("op", "currency.Current"),
			zap.Error(err),
		)
		// Keep serving a stale quote within a failure window rather than
		// dropping TRY figures outright.
		return c.cached
	}

	c.cached = quote
	c.fetchedAt = c.now()
	return quote
}

// Rate returns the current rate as an optional value, the shape the
// feasibility calculator consumes.
func (c *Client) Rate(ctx context.Context) *float64 {
	quote := c.Current(ctx)
	if quote == nil {
		return nil
	}
	r := quote.Rate
	return &r
}

type tarihDate struct {
	Date       string         `xml:"Tarih,attr"`
	Currencies []tcmbCurrency `xml:"Currency"`
}

type tcmbCurrency struct {
	Code         string `xml:"CurrencyCode,attr"`
	ForexSelling string `xml:"ForexSelling"`
	ForexBuying  string `xml:"ForexBuying"`
}

func (c *Client) fetch(ctx context.Context) (*Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building rate request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching rates: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading rate feed: %w", err)
	}

	var feed tarihDate
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parsing rate feed: %w", err)
	}

	for _, cur := range feed.Currencies {
		if cur.Code != "USD" {
			continue
		}
		raw := strings.TrimSpace(cur.ForexSelling)
		if raw == "" {
			raw = strings.TrimSpace(cur.ForexBuying)
		}
		if raw == "" {
			return nil, fmt.Errorf("USD entry carries no selling or buying rate")
		}
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing USD rate %q: %w", raw, err)
		}
		return &Quote{Rate: rate, Date: feed.Date, Source: SourceLabel}, nil
	}

	return nil, fmt.Errorf("rate feed has no USD entry")
}
