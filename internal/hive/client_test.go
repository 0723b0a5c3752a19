package hive

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hiveintelligencexyz/hive-mcp/internal/config"
	"github.com/hiveintelligencexyz/hive-mcp/internal/models"
)

func newTestClient(baseURL string) *Client {
	return NewClient(&config.HiveConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
	})
}

func TestClient_Search(t *testing.T) {
	t.Run("successful search", func(t *testing.T) {
		var gotAuth, gotPath string
		var gotBody models.SearchRequest

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotPath = r.URL.Path
			json.NewDecoder(r.Body).Decode(&gotBody)

			json.NewEncoder(w).Encode(map[string]interface{}{
				"response":     "ETH is $3000",
				"data_sources": []map[string]string{{"url": "https://example.com"}},
			})
		}))
		defer srv.Close()

		client := newTestClient(srv.URL)
		resp, err := client.Search(context.Background(), &models.SearchRequest{Prompt: "price of ETH"})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if gotAuth != "Bearer test-key" {
			t.Errorf("Expected bearer credential, got %q", gotAuth)
		}
		if gotPath != "/search" {
			t.Errorf("Expected /search path, got %q", gotPath)
		}
		if gotBody.Prompt != "price of ETH" {
			t.Errorf("Expected prompt forwarded, got %q", gotBody.Prompt)
		}
		if resp.Response != "ETH is $3000" {
			t.Errorf("Unexpected response: %q", resp.Response)
		}
		if len(resp.DataSources) == 0 {
			t.Error("Expected data_sources carried through")
		}
	})

	t.Run("request omits unset optional fields", func(t *testing.T) {
		var rawBody map[string]interface{}

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&rawBody)
			json.NewEncoder(w).Encode(map[string]string{"response": "ok"})
		}))
		defer srv.Close()

		client := newTestClient(srv.URL)
		_, err := client.Search(context.Background(), &models.SearchRequest{Prompt: "q"})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if _, ok := rawBody["messages"]; ok {
			t.Error("Expected messages omitted from wire request")
		}
		if _, ok := rawBody["include_data_sources"]; ok {
			t.Error("Expected include_data_sources omitted from wire request")
		}
	})

	t.Run("non-2xx becomes APIError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limited"}`))
		}))
		defer srv.Close()

		client := newTestClient(srv.URL)
		_, err := client.Search(context.Background(), &models.SearchRequest{Prompt: "q"})

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("Expected *APIError, got %v", err)
		}
		if apiErr.StatusCode != 429 {
			t.Errorf("Expected status 429, got %d", apiErr.StatusCode)
		}
		if apiErr.StatusText != "Too Many Requests" {
			t.Errorf("Expected status text 'Too Many Requests', got %q", apiErr.StatusText)
		}
		if apiErr.Body != `{"error":"rate limited"}` {
			t.Errorf("Expected raw body preserved, got %q", apiErr.Body)
		}
	})

	t.Run("unreachable provider becomes NetworkError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		client := newTestClient(url)
		_, err := client.Search(context.Background(), &models.SearchRequest{Prompt: "q"})

		var netErr *NetworkError
		if !errors.As(err, &netErr) {
			t.Fatalf("Expected *NetworkError, got %v", err)
		}
		if netErr.Code != "ECONNREFUSED" {
			t.Errorf("Expected ECONNREFUSED, got %q", netErr.Code)
		}
	})

	t.Run("deadline becomes TimeoutError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(500 * time.Millisecond)
		}))
		defer srv.Close()

		client := newTestClient(srv.URL)
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := client.Search(ctx, &models.SearchRequest{Prompt: "q"})

		var timeoutErr *TimeoutError
		if !errors.As(err, &timeoutErr) {
			t.Fatalf("Expected *TimeoutError, got %v", err)
		}
	})

	t.Run("malformed reply body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer srv.Close()

		client := newTestClient(srv.URL)
		_, err := client.Search(context.Background(), &models.SearchRequest{Prompt: "q"})
		if err == nil {
			t.Fatal("Expected parse error")
		}

		var apiErr *APIError
		var netErr *NetworkError
		if errors.As(err, &apiErr) || errors.As(err, &netErr) {
			t.Errorf("Expected unclassified error, got %T", err)
		}
	})

	t.Run("no retry on failure", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := newTestClient(srv.URL)
		_, err := client.Search(context.Background(), &models.SearchRequest{Prompt: "q"})
		if err == nil {
			t.Fatal("Expected error from 500")
		}
		if got := calls.Load(); got != 1 {
			t.Errorf("Expected exactly 1 outbound request, got %d", got)
		}
	})
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(&config.HiveConfig{APIKey: "k"})
	if client.baseURL != "https://api.hiveintelligence.xyz/v1" {
		t.Errorf("Unexpected default base URL: %q", client.baseURL)
	}
	if client.client.Timeout != 0 {
		t.Errorf("Expected unbounded call by default, got %v", client.client.Timeout)
	}
}
