// Package tomtom is a thin client for the TomTom routing and search APIs,
// covering the two calls the dashboard needs: a traffic-aware route between
// two coordinates and free-text geocoding.
package tomtom

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

const DefaultBaseURL = "https://api.tomtom.com"

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

func (c *Client) doJSON(ctx context.Context, p string, q map[string]string, out any) error {
	u := *c.baseURL
	u.Path = path.Join(u.Path, p)
	qq := u.Query()
	for k, v := range q {
		qq.Set(k, v)
	}
	qq.Set("key", c.apiKey)
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

func formatCoord(c Coord) string {
	return strconv.FormatFloat(c.Lat, 'f', 6, 64) + "," + strconv.FormatFloat(c.Lon, 'f', 6, 64)
}

// Route returns the current traffic-aware route from origin to dest. A
// response whose summary carries neither travel time is treated as an
// upstream failure, not as a zero-length commute.
func (c *Client) Route(ctx context.Context, origin, dest Coord) (*Route, error) {
	p := fmt.Sprintf("/routing/1/calculateRoute/%s:%s/json", formatCoord(origin), formatCoord(dest))
	var rr routeResponse
	err := c.doJSON(ctx, p, map[string]string{
		"traffic":              "true",
		"computeTravelTimeFor": "all",
	}, &rr)
	if err != nil {
		return nil, err
	}
	if len(rr.Routes) == 0 {
		return nil, errors.New("no route returned")
	}
	s := rr.Routes[0].Summary
	if s.TravelTimeInSeconds == 0 && s.NoTrafficTravelTimeInSeconds == 0 {
		return nil, errors.New("route summary missing travel times")
	}
	return &Route{
		TravelTimeSec:          s.TravelTimeInSeconds,
		NoTrafficTravelTimeSec: s.NoTrafficTravelTimeInSeconds,
		DistanceMeters:         s.LengthInMeters,
	}, nil
}

// Geocode resolves free-text input to a single best candidate.
func (c *Client) Geocode(ctx context.Context, query string, opts GeocodeOptions) (*Place, error) {
	q := map[string]string{"limit": "1"}
	if opts.Bias != nil {
		q["lat"] = strconv.FormatFloat(opts.Bias.Lat, 'f', 6, 64)
		q["lon"] = strconv.FormatFloat(opts.Bias.Lon, 'f', 6, 64)
	}
	if opts.BBox != nil {
		q["topLeft"] = formatCoord(opts.BBox.TopLeft)
		q["btmRight"] = formatCoord(opts.BBox.BottomRight)
	}

	var sr searchResponse
	if err := c.doJSON(ctx, "/search/2/search/"+query+".json", q, &sr); err != nil {
		return nil, err
	}
	if len(sr.Results) == 0 {
		return nil, fmt.Errorf("no location match for %q", query)
	}
	r := sr.Results[0]
	return &Place{
		Label: r.Address.FreeformAddress,
		Lat:   r.Position.Lat,
		Lon:   r.Position.Lon,
	}, nil
}
