// Package alphavantage is a thin client for the Alpha Vantage quote and
// daily time-series endpoints.
package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const DefaultBaseURL = "https://www.alphavantage.co"

type Client struct {
	http    *http.Client
	baseURL *url.URL
	apiKey  string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if u, err := url.Parse(raw); err == nil {
			c.baseURL = u
		}
	}
}

func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("apiKey required")
	}
	u, _ := url.Parse(DefaultBaseURL)
	c := &Client{
		http:    http.DefaultClient,
		baseURL: u,
		apiKey:  apiKey,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *Client) doJSON(ctx context.Context, q map[string]string, out any) error {
	u := *c.baseURL
	u.Path = "/query"
	qq := u.Query()
	for k, v := range q {
		qq.Set(k, v)
	}
	qq.Set("apikey", c.apiKey)
	u.RawQuery = qq.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET /query: %s: %s", resp.Status, string(b))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Quote returns the latest global quote for symbol. A price that does not
// parse as a finite number is an upstream failure; change fields are decoded
// leniently and fall back to zero.
func (c *Client) Quote(ctx context.Context, symbol string) (*Quote, error) {
	var qr quoteResponse
	err := c.doJSON(ctx, map[string]string{
		"function": "GLOBAL_QUOTE",
		"symbol":   symbol,
	}, &qr)
	if err != nil {
		return nil, err
	}

	gq := qr.GlobalQuote
	price, err := parseNumber(gq.Price)
	if err != nil {
		return nil, fmt.Errorf("quote %s: bad price %q: %w", symbol, gq.Price, err)
	}
	change, _ := parseNumber(gq.Change)
	percent, _ := parseNumber(strings.TrimSuffix(strings.TrimSpace(gq.ChangePercent), "%"))

	return &Quote{
		Symbol:        symbol,
		Price:         price,
		Change:        change,
		PercentChange: percent,
	}, nil
}

// DailySeries returns up to count daily closes for symbol, newest first.
// Dates are ISO-8601 so lexical order is chronological order.
func (c *Client) DailySeries(ctx context.Context, symbol string, count int) ([]ClosePoint, error) {
	var sr seriesResponse
	err := c.doJSON(ctx, map[string]string{
		"function":   "TIME_SERIES_DAILY",
		"symbol":     symbol,
		"outputsize": "compact",
	}, &sr)
	if err != nil {
		return nil, err
	}
	if len(sr.Series) == 0 {
		return nil, fmt.Errorf("no daily series for %s", symbol)
	}

	dates := make([]string, 0, len(sr.Series))
	for d := range sr.Series {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	if count > 0 && len(dates) > count {
		dates = dates[:count]
	}

	points := make([]ClosePoint, 0, len(dates))
	for _, d := range dates {
		f, err := parseNumber(sr.Series[d].Close)
		if err != nil {
			return nil, fmt.Errorf("series %s: bad close %q on %s: %w", symbol, sr.Series[d].Close, d, err)
		}
		points = append(points, ClosePoint{Date: d, Close: f})
	}
	return points, nil
}

func parseNumber(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a finite number")
	}
	return f, nil
}
