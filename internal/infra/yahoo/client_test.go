package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"stock_go/internal/domain"
	"stock_go/internal/infra"
)

func newTestClient(baseURL string) *Client {
	cfg := &infra.Config{}
	cfg.API.Yahoo.BaseURL = baseURL
	cfg.API.Yahoo.Host = "test-host"
	cfg.API.Yahoo.Key = "test-key"
	cfg.API.Yahoo.Region = "US"
	cfg.API.Yahoo.TimeoutSec = 2
	return NewClient(cfg, nil)
}

func TestFetchQuote_RawAsString(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-RapidAPI-Key"); got != "test-key" {
			t.Errorf("X-RapidAPI-Key = %q, want test-key", got)
		}
		if got := r.Header.Get("X-RapidAPI-Host"); got != "test-host" {
			t.Errorf("X-RapidAPI-Host = %q, want test-host", got)
		}
		if got := r.URL.Query().Get("symbol"); got != "AAPL" {
			t.Errorf("symbol query = %q, want AAPL", got)
		}
		if got := r.URL.Query().Get("region"); got != "US" {
			t.Errorf("region query = %q, want US", got)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"price":{"regularMarketPrice":{"raw":"123.45","fmt":"123.45"}}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	quote, err := client.FetchQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchQuote failed: %v", err)
	}
	if quote.Symbol != "AAPL" {
		t.Errorf("symbol = %q, want AAPL", quote.Symbol)
	}
	if quote.Price.String() != "123.45" {
		t.Errorf("price = %s, want 123.45", quote.Price)
	}
}

func TestFetchQuote_RawAsNumber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"price":{"regularMarketPrice":{"raw":231.5}}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	quote, err := client.FetchQuote(context.Background(), "MSFT")
	if err != nil {
		t.Fatalf("FetchQuote failed: %v", err)
	}
	if quote.Price.String() != "231.5" {
		t.Errorf("price = %s, want 231.5", quote.Price)
	}
}

func TestFetchQuote_MissingPath(t *testing.T) {
	bodies := []string{
		`{}`,
		`{"price":{}}`,
		`{"price":{"regularMarketPrice":{}}}`,
		`{"summaryDetail":{"previousClose":{"raw":1.0}}}`,
	}

	for _, body := range bodies {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(body))
		}))

		client := newTestClient(server.URL)
		_, err := client.FetchQuote(context.Background(), "AAPL")
		if !errors.Is(err, domain.ErrPriceUnavailable) {
			t.Errorf("body %s: err = %v, want ErrPriceUnavailable", body, err)
		}
		server.Close()
	}
}

func TestFetchQuote_NonNumericLeaf(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"price":{"regularMarketPrice":{"raw":"not-a-price"}}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchQuote(context.Background(), "AAPL")
	if !errors.Is(err, domain.ErrPriceUnavailable) {
		t.Errorf("err = %v, want ErrPriceUnavailable", err)
	}
}

func TestFetchQuote_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchQuote(context.Background(), "AAPL")
	if !errors.Is(err, domain.ErrPriceUnavailable) {
		t.Errorf("err = %v, want ErrPriceUnavailable", err)
	}
}

func TestFetchQuote_UpstreamStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message":"rate limited"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchQuote(context.Background(), "AAPL")

	var up *domain.UpstreamError
	if !errors.As(err, &up) {
		t.Fatalf("err = %v, want *domain.UpstreamError", err)
	}
	if up.Status != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", up.Status)
	}
	if up.Body == "" {
		t.Error("expected raw body to be carried on the error")
	}
}

func TestFetchQuote_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := newTestClient(server.URL)
	_, err := client.FetchQuote(context.Background(), "AAPL")

	var up *domain.UpstreamError
	if !errors.As(err, &up) {
		t.Fatalf("err = %v, want *domain.UpstreamError", err)
	}
	if up.Status != 0 {
		t.Errorf("status = %d, want 0 for transport failure", up.Status)
	}
	if up.Err == nil {
		t.Error("expected wrapped transport cause")
	}
}

func TestFetchQuote_EmptySymbol(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchQuote(context.Background(), "")
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
	if called {
		t.Error("empty symbol must not hit the network")
	}
}

func TestFetchQuote_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"price":{"regularMarketPrice":{"raw":1}}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchQuote(ctx, "AAPL")
	var up *domain.UpstreamError
	if !errors.As(err, &up) {
		t.Fatalf("err = %v, want *domain.UpstreamError", err)
	}
}
