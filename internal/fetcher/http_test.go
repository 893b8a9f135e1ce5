package fetcher

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/IshaanNene/episodepdf/internal/config"
	"github.com/IshaanNene/episodepdf/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const testPage = `<html><body><p>第1集</p></body></html>`

func newTestFetcher(t *testing.T) *HTTPFetcher {
	t.Helper()
	cfg := config.DefaultConfig()
	f, err := NewHTTPFetcher(&cfg.Fetcher, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func mustRequest(t *testing.T, raw string) *types.Request {
	t.Helper()
	req, err := types.NewRequest(raw)
	if err != nil {
		t.Fatal(err)
	}
	return req
}

func TestHTTPFetchPlain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept-Language") == "" {
			t.Error("expected Accept-Language header")
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(testPage))
	}))
	defer srv.Close()

	resp, err := newTestFetcher(t).Fetch(context.Background(), mustRequest(t, srv.URL))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(resp.Body) != testPage {
		t.Errorf("unexpected body: %q", resp.Body)
	}
	if !resp.IsSuccess() {
		t.Errorf("expected success, got %d", resp.StatusCode)
	}
}

func TestHTTPFetchCompressed(t *testing.T) {
	encoders := map[string]func(*bytes.Buffer) ([]byte, error){
		"gzip": func(b *bytes.Buffer) ([]byte, error) {
			zw := gzip.NewWriter(b)
			if _, err := zw.Write([]byte(testPage)); err != nil {
				return nil, err
			}
			err := zw.Close()
			return b.Bytes(), err
		},
		"br": func(b *bytes.Buffer) ([]byte, error) {
			bw := brotli.NewWriter(b)
			if _, err := bw.Write([]byte(testPage)); err != nil {
				return nil, err
			}
			err := bw.Close()
			return b.Bytes(), err
		},
	}

	for encoding, encode := range encoders {
		t.Run(encoding, func(t *testing.T) {
			payload, err := encode(&bytes.Buffer{})
			if err != nil {
				t.Fatal(err)
			}
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Encoding", encoding)
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				_, _ = w.Write(payload)
			}))
			defer srv.Close()

			resp, err := newTestFetcher(t).Fetch(context.Background(), mustRequest(t, srv.URL))
			if err != nil {
				t.Fatalf("fetch: %v", err)
			}
			if string(resp.Body) != testPage {
				t.Errorf("unexpected body: %q", resp.Body)
			}
		})
	}
}

func TestHTTPFetchCharset(t *testing.T) {
	gbk, err := simplifiedchinese.GBK.NewEncoder().String(testPage)
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=gbk")
		_, _ = w.Write([]byte(gbk))
	}))
	defer srv.Close()

	resp, err := newTestFetcher(t).Fetch(context.Background(), mustRequest(t, srv.URL))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(string(resp.Body), "第1集") {
		t.Errorf("body was not decoded to UTF-8: %q", resp.Body)
	}
}

func TestHTTPFetchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher(t).Fetch(context.Background(), mustRequest(t, srv.URL))
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", fe.StatusCode)
	}
}

func TestHTTPFetchEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := newTestFetcher(t).Fetch(context.Background(), mustRequest(t, srv.URL))
	if !errors.Is(err, types.ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestHTTPFetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if _, err := newTestFetcher(t).Fetch(context.Background(), mustRequest(t, url)); err == nil {
		t.Error("expected error for closed server")
	}
}

type countingFetcher struct {
	calls []time.Time
}

func (c *countingFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	c.calls = append(c.calls, time.Now())
	return &types.Response{Request: req, StatusCode: 200}, nil
}
func (c *countingFetcher) Close() error { return nil }
func (c *countingFetcher) Type() string { return "counting" }

func TestPoliteFetcherDelay(t *testing.T) {
	inner := &countingFetcher{}
	delay := 30 * time.Millisecond
	f := NewPolite(inner, delay, testLogger)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := f.Fetch(context.Background(), mustRequest(t, "https://example.com/")); err != nil {
			t.Fatal(err)
		}
	}

	if len(inner.calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(inner.calls))
	}
	if inner.calls[0].Sub(start) < delay {
		t.Error("first request should also wait the delay")
	}
	for i := 1; i < len(inner.calls); i++ {
		if gap := inner.calls[i].Sub(inner.calls[i-1]); gap < delay {
			t.Errorf("requests %d and %d only %s apart", i-1, i, gap)
		}
	}
	if f.Type() != "counting" {
		t.Errorf("Type should delegate, got %q", f.Type())
	}
}

func TestPoliteFetcherCancel(t *testing.T) {
	inner := &countingFetcher{}
	f := NewPolite(inner, time.Hour, testLogger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Fetch(ctx, mustRequest(t, "https://example.com/")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(inner.calls) != 0 {
		t.Error("cancelled fetch must not reach the wrapped fetcher")
	}
}

func TestNewUnknownType(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Fetcher.Type = "ftp"
	if _, err := New(cfg, testLogger); !errors.Is(err, types.ErrNoFetcher) {
		t.Errorf("expected ErrNoFetcher, got %v", err)
	}
}
