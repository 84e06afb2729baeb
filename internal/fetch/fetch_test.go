package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(maxAttempts int) *Client {
	return NewClient(Options{
		MaxAttempts:    maxAttempts,
		Backoff:        time.Millisecond,
		BackoffMode:    BackoffFixed,
		ConnectTimeout: 500 * time.Millisecond,
		ReadTimeout:    500 * time.Millisecond,
	})
}

func TestGetSucceedsAfterRetryableStatus(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := newTestClient(4)

	var body struct {
		OK bool `json:"ok"`
	}
	if err := client.GetJSON(context.Background(), server.URL, &body); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if !body.OK {
		t.Error("GetJSON() did not decode body")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d requests, want 3", got)
	}
}

func TestGetExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(3)

	_, err := client.Get(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Get() should fail when every attempt returns 502")
	}
	if !errors.Is(err, ErrTransient) {
		t.Errorf("Get() error = %v, want ErrTransient", err)
	}
	if errors.Is(err, ErrFatal) {
		t.Error("exhausted retries should not be classified as fatal")
	}

	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Get() error type = %T, want *Error", err)
	}
	if fetchErr.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want %d", fetchErr.StatusCode, http.StatusBadGateway)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d requests, want 3", got)
	}
}

func TestGetNonRetryableStatusIsFatal(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"not found", http.StatusNotFound},
		{"forbidden", http.StatusForbidden},
		{"bad request", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := newTestClient(4).Get(context.Background(), server.URL)
			if !errors.Is(err, ErrFatal) {
				t.Errorf("Get() error = %v, want ErrFatal", err)
			}
			if got := calls.Load(); got != 1 {
				t.Errorf("server saw %d requests, want 1", got)
			}
		})
	}
}

func TestGetConnectionRefusedIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(2).Get(context.Background(), url)
	if err == nil {
		t.Fatal("Get() against a closed server should fail")
	}
	if !errors.Is(err, ErrTransient) {
		t.Errorf("Get() error = %v, want ErrTransient", err)
	}

	var fetchErr *Error
	if errors.As(err, &fetchErr) && fetchErr.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", fetchErr.Attempts)
	}
}

func TestGetInvalidJSONIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	var v map[string]any
	err := newTestClient(2).GetJSON(context.Background(), server.URL, &v)
	if !errors.Is(err, ErrFatal) {
		t.Errorf("GetJSON() error = %v, want ErrFatal", err)
	}
}

func TestGetCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(4).Get(ctx, server.URL)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Get() error = %v, want context.Canceled", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := NewClient(Options{}).Options()

	if opts.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("MaxAttempts = %d, want %d", opts.MaxAttempts, DefaultMaxAttempts)
	}
	if opts.BackoffMode != BackoffLinear {
		t.Errorf("BackoffMode = %q, want %q", opts.BackoffMode, BackoffLinear)
	}
	if opts.ConnectTimeout != DefaultConnectTimeout {
		t.Errorf("ConnectTimeout = %v, want %v", opts.ConnectTimeout, DefaultConnectTimeout)
	}
	if opts.ReadTimeout != DefaultReadTimeout {
		t.Errorf("ReadTimeout = %v, want %v", opts.ReadTimeout, DefaultReadTimeout)
	}
	if len(opts.RetryableStatus) != len(DefaultRetryableStatus) {
		t.Errorf("RetryableStatus = %v, want %v", opts.RetryableStatus, DefaultRetryableStatus)
	}
}

func TestDelay(t *testing.T) {
	linear := &Client{opts: Options{Backoff: time.Second, BackoffMode: BackoffLinear}}
	fixed := &Client{opts: Options{Backoff: time.Second, BackoffMode: BackoffFixed}}

	for attempt := 1; attempt <= 3; attempt++ {
		if got, want := linear.delay(attempt), time.Duration(attempt)*time.Second; got != want {
			t.Errorf("linear delay(%d) = %v, want %v", attempt, got, want)
		}
		if got := fixed.delay(attempt); got != time.Second {
			t.Errorf("fixed delay(%d) = %v, want 1s", attempt, got)
		}
	}
}
