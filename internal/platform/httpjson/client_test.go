package httpjson_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "yuki/internal/platform/errors"
	"yuki/internal/platform/httpjson"
)

func TestPostSendsJSONAndReturnsAnyStatus(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/echo" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"echo": in["code"]})
	}))
	defer srv.Close()

	c := httpjson.New(srv.URL+"/", time.Second, srv.Client())
	res, err := c.Post(context.Background(), "/api/echo", map[string]string{"code": "ABC123"})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if res.OK() || res.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 response, got %d", res.Status)
	}
	if string(res.Body) != "{\"echo\":\"ABC123\"}\n" {
		t.Fatalf("unexpected body %q", res.Body)
	}
}

func TestPostCancelledVersusFailed(t *testing.T) {
	t.Parallel()
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	c := httpjson.New(srv.URL, 0, srv.Client())
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if _, err := c.Post(ctx, "/slow", struct{}{}); !errors.Is(err, apperrors.ErrNetworkCancelled) {
		t.Fatalf("expected cancelled, got %v", err)
	}

	timeoutClient := httpjson.New(srv.URL, 20*time.Millisecond, srv.Client())
	if _, err := timeoutClient.Post(context.Background(), "/slow", struct{}{}); !errors.Is(err, apperrors.ErrNetworkFailed) {
		t.Fatalf("expected failed on timeout, got %v", err)
	}

	dead := httpjson.New("http://127.0.0.1:1", time.Second, nil)
	if _, err := dead.Post(context.Background(), "/x", struct{}{}); !errors.Is(err, apperrors.ErrNetworkFailed) {
		t.Fatalf("expected failed on refused connection, got %v", err)
	}
}
