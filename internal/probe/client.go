package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// httpClient wraps http.Client with a base URL.
type httpClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *httpClient {
	return &httpClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *httpClient) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

func (c *httpClient) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

type screeningRequest struct {
	ExamScore string   `json:"exam_score"`
	Grades    []string `json:"grades"`
}

// reply is the union of the success and error bodies of POST /screenings.
type reply struct {
	Status  int
	Total   float64 `json:"total"`
	Message string  `json:"message"`
	Code    string  `json:"code"`
}

// screen posts one case to /screenings and decodes the reply.
func (c *httpClient) screen(ctx context.Context, tc Case) (reply, error) {
	resp, err := c.postJSON(ctx, "/screenings", screeningRequest{
		ExamScore: tc.Input.ExamScore,
		Grades:    tc.Input.Grades,
	})
	if err != nil {
		return reply{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return reply{}, fmt.Errorf("failed to read response: %w", err)
	}
	r := reply{Status: resp.StatusCode}
	if err := json.Unmarshal(body, &r); err != nil {
		return reply{}, fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	return r, nil
}
