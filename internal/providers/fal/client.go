package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"imagegw/internal/gateway"
	"imagegw/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("fal: api key is required")

const defaultBaseURL = "https://fal.run"

// Options configures the fal.ai client.
type Options struct {
	APIKey         string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client calls fal.ai model endpoints synchronously. Each Invoke performs
// exactly one HTTP request.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
	Error  string          `json:"error"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	logger := opts.Logger
	if logger == nil {
		l := infra.Logger(zerolog.Nop())
		logger = &l
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Invoke posts call.Payload to the model endpoint named by call.Endpoint and
// returns the decoded JSON object.
func (c *Client) Invoke(ctx context.Context, call gateway.ProviderCall) (gateway.Response, error) {
	endpoint := strings.Trim(strings.TrimSpace(call.Endpoint), "/")
	if endpoint == "" {
		return nil, errors.New("fal: endpoint is required")
	}
	payload := call.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("fal: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("fal: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Key "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fal: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fal: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, statusError(resp.StatusCode, raw)
	}

	var decoded gateway.Response
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("fal: decode response: %w", err)
	}
	if decoded == nil {
		return nil, errors.New("fal: empty response")
	}
	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("fal: call completed")
	return decoded, nil
}

func statusError(status int, raw []byte) error {
	var detail errorResponse
	if err := json.Unmarshal(raw, &detail); err == nil {
		if msg := detailMessage(detail); msg != "" {
			return fmt.Errorf("fal: status %d: %s", status, msg)
		}
	}
	text := strings.TrimSpace(string(raw))
	if len(text) > 512 {
		text = text[:512]
	}
	return fmt.Errorf("fal: status %d: %s", status, text)
}

// detailMessage flattens fal's error detail, which is either a string or a
// list of validation entries carrying a "msg" field.
func detailMessage(detail errorResponse) string {
	if len(detail.Detail) > 0 {
		var text string
		if err := json.Unmarshal(detail.Detail, &text); err == nil {
			return strings.TrimSpace(text)
		}
		var entries []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(detail.Detail, &entries); err == nil {
			msgs := make([]string, 0, len(entries))
			for _, e := range entries {
				if m := strings.TrimSpace(e.Msg); m != "" {
					msgs = append(msgs, m)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	return strings.TrimSpace(detail.Error)
}

var _ gateway.Invoker = (*Client)(nil)
