// Package openmeteo is a thin client for the Open-Meteo forecast API. The
// forecast sub-documents are passed through to the dashboard untouched.
package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
)

const DefaultBaseURL = "https://api.open-meteo.com"

// Field selections requested from the forecast endpoint. The dashboard
// renders exactly these.
const (
	currentFields = "temperature_2m,apparent_temperature,relative_humidity_2m,precipitation,weather_code,wind_speed_10m"
	dailyFields   = "weather_code,temperature_2m_max,temperature_2m_min,precipitation_probability_max,sunrise,sunset"
	hourlyFields  = "temperature_2m,precipitation_probability,weather_code"
)

// Coord is a WGS84 coordinate pair.
type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Forecast carries the raw forecast sub-documents. Hourly may be absent.
type Forecast struct {
	Current json.RawMessage `json:"current"`
	Daily   json.RawMessage `json:"daily"`
	Hourly  json.RawMessage `json:"hourly,omitempty"`
}

type Client struct {
	http    *http.Client
	baseURL *url.URL
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

// New builds a client. Open-Meteo needs no API key.
func New(opts ...Option) *Client {
	u, _ := url.Parse(DefaultBaseURL)
	c := &Client{http: http.DefaultClient, baseURL: u}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Forecast fetches current, daily and hourly conditions for loc. tz is an
// IANA timezone name; empty means let the provider pick one from the
// coordinates.
func (c *Client) Forecast(ctx context.Context, loc Coord, tz string) (*Forecast, error) {
	if tz == "" {
		tz = "auto"
	}
	q := map[string]string{
		"latitude":  strconv.FormatFloat(loc.Lat, 'f', 4, 64),
		"longitude": strconv.FormatFloat(loc.Lon, 'f', 4, 64),
		"timezone":  tz,
		"current":   currentFields,
		"daily":     dailyFields,
		"hourly":    hourlyFields,
	}

	var f Forecast
	if err := c.doJSON(ctx, "/v1/forecast", q, &f); err != nil {
		return nil, err
	}
	if len(f.Current) == 0 {
		return nil, errors.New("forecast missing current conditions")
	}
	return &f, nil
}

func (c *Client) doJSON(ctx context.Context, p string, q map[string]string, out any) error {
	u := *c.baseURL
	u.Path = path.Join(u.Path, p)
	qq := u.Query()
	for k, v := range q {
		qq.Set(k, v)
	}
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
		return fmt.Errorf("GET %s: %s: %s", p, resp.Status, string(b))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
