// Package pollinations adapts the keyless Pollinations text-to-image service.
// The service serves the image directly at a URL derived from the prompt, so
// Invoke only builds that URL and leaves the single GET to the result fetcher.
package pollinations

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"imagegw/internal/gateway"
)

const defaultBaseURL = "https://image.pollinations.ai"

// Options configures the client.
type Options struct {
	BaseURL string
}

// Client implements gateway.Invoker for Pollinations.
type Client struct {
	baseURL string
}

// NewClient builds a Client.
func NewClient(opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{baseURL: base}
}

// Invoke returns a synthetic response of the form {"image": {"url": ...}}.
func (c *Client) Invoke(ctx context.Context, call gateway.ProviderCall) (gateway.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	imageURL, err := c.ImageURL(call.Payload)
	if err != nil {
		return nil, err
	}
	return gateway.Response{
		"image": map[string]any{"url": imageURL},
	}, nil
}

// ImageURL renders the Pollinations URL for a text-to-image payload.
func (c *Client) ImageURL(payload map[string]any) (string, error) {
	prompt, _ := payload["prompt"].(string)
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("pollinations: prompt is required")
	}
	query := url.Values{}
	for _, key := range []string{"width", "height", "nologo", "enhance", "seed", "model"} {
		if v, ok := payload[key]; ok {
			query.Set(key, formatValue(v))
		}
	}
	u := fmt.Sprintf("%s/prompt/%s", c.baseURL, url.PathEscape(prompt))
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u, nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

var _ gateway.Invoker = (*Client)(nil)
