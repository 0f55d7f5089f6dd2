package yookassaimpl

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/orgball2608/post-publisher-bot/internal/domain"
	pkgerrors "github.com/orgball2608/post-publisher-bot/pkg/errors"
	"github.com/orgball2608/post-publisher-bot/pkg/logger"
	"github.com/orgball2608/post-publisher-bot/pkg/retry"
)

func newTestClient(baseURL string) *YookassaImpl {
	return &YookassaImpl{
		HTTP:      &http.Client{Timeout: time.Second},
		BaseURL:   baseURL,
		ShopID:    "shop",
		SecretKey: "secret",
		Retry: retry.Config{
			MaxRetries:      2,
			InitialInterval: time.Millisecond,
			MaxInterval:     2 * time.Millisecond,
			Multiplier:      1.5,
		},
		Logger: logger.New(logger.Opts{Env: "test", Output: io.Discard}),
	}
}

func TestQueryStatus(t *testing.T) {
	tests := []struct {
		provider string
		want     domain.PaymentStatus
	}{
		{"succeeded", domain.PaymentStatusSucceeded},
		{"canceled", domain.PaymentStatusFailed},
		{"pending", domain.PaymentStatusPending},
		{"waiting_for_capture", domain.PaymentStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				user, pass, ok := r.BasicAuth()
				if !ok || user != "shop" || pass != "secret" {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				if r.URL.Path != "/payments/2c1f-11" {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				_, _ = w.Write([]byte(`{"id":"2c1f-11","status":"` + tt.provider + `","paid":false}`))
			}))
			defer srv.Close()

			got, err := newTestClient(srv.URL).QueryStatus(context.Background(), "2c1f-11")
			if err != nil {
				t.Fatalf("QueryStatus() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("QueryStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQueryStatusRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"id":"p","status":"succeeded"}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).QueryStatus(context.Background(), "p")
	if err != nil {
		t.Fatalf("QueryStatus() error = %v", err)
	}
	if got != domain.PaymentStatusSucceeded || calls.Load() != 2 {
		t.Fatalf("got %q after %d calls", got, calls.Load())
	}
}

func TestQueryStatusClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"type":"error","code":"not_found"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).QueryStatus(context.Background(), "missing")
	if !pkgerrors.IsProviderQuery(err) {
		t.Fatalf("QueryStatus() error = %v, want provider query failure", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestQueryStatusEmptyReference(t *testing.T) {
	_, err := newTestClient("http://127.0.0.1:0").QueryStatus(context.Background(), "")
	if !pkgerrors.IsProviderQuery(err) {
		t.Fatalf("QueryStatus() error = %v, want provider query failure", err)
	}
}
