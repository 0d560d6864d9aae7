package alphavantage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	c, err := New("test-key", WithBaseURL(ts.URL), WithHTTPClient(ts.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestQuote(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("function") != "GLOBAL_QUOTE" {
			http.Error(w, "unexpected function", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"Global Quote":{"01. symbol":"SPY","05. price":"512.3400","09. change":"-2.1100","10. change percent":"-0.4102%"}}`))
	}))

	q, err := c.Quote(context.Background(), "SPY")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if q.Price != 512.34 {
		t.Errorf("price = %v, want 512.34", q.Price)
	}
	if q.Change != -2.11 {
		t.Errorf("change = %v, want -2.11", q.Change)
	}
	if q.PercentChange != -0.4102 {
		t.Errorf("percent change = %v, want -0.4102", q.PercentChange)
	}
}

func TestQuoteBadPrice(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty quote", `{"Global Quote":{}}`},
		{"non-numeric price", `{"Global Quote":{"05. price":"n/a"}}`},
		{"rate limit note instead of quote", `{"Note":"Thank you for using Alpha Vantage!"}`},
	}

	for _, tt := range tests {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(tt.body))
		}))
		if _, err := c.Quote(context.Background(), "SPY"); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestDailySeriesNewestFirst(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("function") != "TIME_SERIES_DAILY" {
			http.Error(w, "unexpected function", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"Time Series (Daily)":{
			"2025-06-02":{"4. close":"510.10"},
			"2025-06-04":{"4. close":"512.34"},
			"2025-06-03":{"4. close":"511.25"}
		}}`))
	}))

	points, err := c.DailySeries(context.Background(), "SPY", 2)
	if err != nil {
		t.Fatalf("DailySeries: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	if points[0].Date != "2025-06-04" || points[1].Date != "2025-06-03" {
		t.Errorf("series not newest-first: %+v", points)
	}
	if points[0].Close != 512.34 {
		t.Errorf("close = %v, want 512.34", points[0].Close)
	}
}

func TestDailySeriesEmpty(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	if _, err := c.DailySeries(context.Background(), "SPY", 30); err == nil {
		t.Fatal("expected error for empty series")
	}
}
