package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

// Client calls an OpenAI-compatible embeddings endpoint.
type Client struct {
	BaseURL string // API root, e.g. https://api.openai.com/v1
	APIKey  string
	Model   string

	// MaxRetries bounds retries on 429 and 5xx responses and transport errors.
	MaxRetries int
	// Backoff is the first retry delay; it doubles on each attempt.
	Backoff time.Duration

	HTTPClient *http.Client
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Embeddings returns one vector per input, in input order.
func (c *Client) Embeddings(ctx context.Context, inputs []string) ([][]float64, error) {
	if c.BaseURL == "" || c.Model == "" {
		return nil, fmt.Errorf("llm: base URL and model required")
	}
	if len(inputs) == 0 {
		return nil, nil
	}

	var payload *embeddingResponse
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		var err error
		payload, err = c.send(ctx, inputs)
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(payload.Data) != len(inputs) {
		return nil, fmt.Errorf("llm: expected %d embeddings, got %d", len(inputs), len(payload.Data))
	}
	sort.SliceStable(payload.Data, func(i, j int) bool {
		return payload.Data[i].Index < payload.Data[j].Index
	})
	out := make([][]float64, len(payload.Data))
	for i, d := range payload.Data {
		if len(d.Embedding) == 0 {
			return nil, fmt.Errorf("llm: empty embedding at index %d", d.Index)
		}
		out[i] = d.Embedding
	}
	return out, nil
}

func (c *Client) send(ctx context.Context, inputs []string) (*embeddingResponse, error) {
	reqBody, err := json.Marshal(embeddingRequest{Model: c.Model, Input: inputs})
	if err != nil {
		return nil, err
	}
	url := strings.TrimRight(c.BaseURL, "/") + "/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, retry.RetryableError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.RetryableError(err)
	}

	var payload embeddingResponse
	decodeErr := json.Unmarshal(body, &payload)

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, retry.RetryableError(fmt.Errorf("llm: embeddings request failed: %s", resp.Status))
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("llm error: %s", payload.Error.Message)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("llm: embeddings request failed: %s", resp.Status)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return &payload, nil
}

func (c *Client) backoff() retry.Backoff {
	base := c.Backoff
	if base <= 0 {
		base = 200 * time.Millisecond
	}
	b := retry.NewExponential(base)
	b = retry.WithCappedDuration(5*time.Second, b)
	retries := c.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return retry.WithMaxRetries(uint64(retries), b)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}
