package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type roundTrip func(*http.Request) *http.Response

func (rt roundTrip) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt(req), nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestEmbeddingsSuccess(t *testing.T) {
	client := &Client{
		BaseURL: "https://api.test/v1/",
		APIKey:  "secret",
		Model:   "embed-test",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				if req.URL.String() != "https://api.test/v1/embeddings" {
					t.Fatalf("unexpected URL %s", req.URL)
				}
				if req.Header.Get("Authorization") != "Bearer secret" {
					t.Fatalf("missing bearer token")
				}
				var body embeddingRequest
				if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
					t.Fatalf("decode request: %v", err)
				}
				if body.Model != "embed-test" || len(body.Input) != 2 {
					t.Fatalf("unexpected request %+v", body)
				}
				// Out of order on purpose; the client sorts by index.
				return jsonResponse(200, `{"data":[
					{"index":1,"embedding":[0,1]},
					{"index":0,"embedding":[1,0]}
				]}`)
			}),
		},
	}

	out, err := client.Embeddings(context.Background(), []string{"circuit breaker", "voltage regulator"})
	if err != nil {
		t.Fatalf("Embeddings: %v", err)
	}
	if len(out) != 2 || out[0][0] != 1 || out[1][1] != 1 {
		t.Fatalf("unexpected vectors %v", out)
	}
}

func TestEmbeddingsAPIError(t *testing.T) {
	client := &Client{
		BaseURL: "https://api.test/v1",
		Model:   "embed-test",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				return jsonResponse(400, `{"error":{"message":"bad input"}}`)
			}),
		},
	}
	_, err := client.Embeddings(context.Background(), []string{"x"})
	if err == nil || !strings.Contains(err.Error(), "bad input") {
		t.Fatalf("expected API error, got %v", err)
	}
}

func TestEmbeddingsRetriesServerErrors(t *testing.T) {
	calls := 0
	client := &Client{
		BaseURL:    "https://api.test/v1",
		Model:      "embed-test",
		MaxRetries: 3,
		Backoff:    time.Millisecond,
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				calls++
				if calls < 3 {
					return jsonResponse(503, `{}`)
				}
				return jsonResponse(200, `{"data":[{"index":0,"embedding":[0.5]}]}`)
			}),
		},
	}

	out, err := client.Embeddings(context.Background(), []string{"x"})
	if err != nil {
		t.Fatalf("Embeddings: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
	if len(out) != 1 || out[0][0] != 0.5 {
		t.Errorf("unexpected vectors %v", out)
	}
}

func TestEmbeddingsGivesUp(t *testing.T) {
	calls := 0
	client := &Client{
		BaseURL:    "https://api.test/v1",
		Model:      "embed-test",
		MaxRetries: 1,
		Backoff:    time.Millisecond,
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				calls++
				return jsonResponse(429, `{}`)
			}),
		},
	}
	if _, err := client.Embeddings(context.Background(), []string{"x"}); err == nil {
		t.Fatal("expected error after retries")
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestEmbeddingsCountMismatch(t *testing.T) {
	client := &Client{
		BaseURL: "https://api.test/v1",
		Model:   "embed-test",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				return jsonResponse(200, `{"data":[{"index":0,"embedding":[1]}]}`)
			}),
		},
	}
	if _, err := client.Embeddings(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected count mismatch error")
	}
}

func TestEmbeddingsRequiresModel(t *testing.T) {
	client := &Client{BaseURL: "https://api.test/v1"}
	if _, err := client.Embeddings(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected configuration error")
	}
}
