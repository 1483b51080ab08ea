// Package imagefetch downloads result images returned by providers.
package imagefetch

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"imagegw/internal/gateway"
)

const defaultMaxBytes int64 = 32 << 20

// ErrTooLarge is returned when the image exceeds the configured size cap.
var ErrTooLarge = errors.New("imagefetch: image exceeds size limit")

// Options configures the fetch client.
type Options struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	MaxBytes   int64
}

// Client fetches image bytes over HTTP(S) or decodes them from data URLs.
type Client struct {
	httpClient *http.Client
	maxBytes   int64
}

// NewClient builds a Client with defaults for missing options.
func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &Client{httpClient: client, maxBytes: maxBytes}
}

// Fetch returns the bytes behind rawURL. Any non-2xx status is an error.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	trimmed := strings.TrimSpace(rawURL)
	if strings.HasPrefix(strings.ToLower(trimmed), "data:") {
		return c.decodeDataURL(trimmed)
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("imagefetch: invalid image url: %q", rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("imagefetch: build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imagefetch: download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("imagefetch: download status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("imagefetch: read image: %w", err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

// decodeDataURL handles data:[<mime>][;base64],<payload>.
func (c *Client) decodeDataURL(dataURL string) ([]byte, error) {
	comma := strings.IndexByte(dataURL, ',')
	if comma < 0 {
		return nil, errors.New("imagefetch: malformed data url")
	}
	meta, payload := dataURL[len("data:"):comma], dataURL[comma+1:]
	var data []byte
	if strings.HasSuffix(strings.ToLower(meta), ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("imagefetch: decode data url: %w", err)
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("imagefetch: decode data url: %w", err)
		}
		data = []byte(unescaped)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

var _ gateway.Fetcher = (*Client)(nil)
