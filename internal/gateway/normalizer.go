package gateway

import (
	"context"
	"encoding/base64"
	"strings"
)

// Extractor looks for an image URL at one known location of a provider
// response.
type Extractor struct {
	Name    string
	Extract func(Response) (string, bool)
}

// DefaultExtractors lists the known response layouts in priority order.
var DefaultExtractors = []Extractor{
	{Name: "image.url", Extract: func(r Response) (string, bool) { return imageURL(r) }},
	{Name: "images[0].url", Extract: func(r Response) (string, bool) { return firstImagesURL(r) }},
	{Name: "data.image.url", Extract: func(r Response) (string, bool) { return imageURL(nested(r, "data")) }},
	{Name: "data.images[0].url", Extract: func(r Response) (string, bool) { return firstImagesURL(nested(r, "data")) }},
}

// ExtractImageURL returns the URL found at the first location of extractors
// that yields a non-empty value, along with that location's name.
func ExtractImageURL(resp Response, extractors []Extractor) (string, string, error) {
	for _, ex := range extractors {
		if url, ok := ex.Extract(resp); ok {
			return url, ex.Name, nil
		}
	}
	return "", "", newError(KindUpstreamShape, ErrNoImageURL, nil)
}

// Normalizer converts provider responses into an ImageResult.
type Normalizer struct {
	fetcher    Fetcher
	extractors []Extractor
}

// NewNormalizer uses DefaultExtractors when extractors is empty.
func NewNormalizer(fetcher Fetcher, extractors ...Extractor) *Normalizer {
	if len(extractors) == 0 {
		extractors = DefaultExtractors
	}
	return &Normalizer{fetcher: fetcher, extractors: extractors}
}

// Normalize extracts the image URL from resp, fetches it once and encodes the
// bytes as standard base64.
func (n *Normalizer) Normalize(ctx context.Context, resp Response) (ImageResult, error) {
	url, _, err := n.Extract(resp)
	if err != nil {
		return ImageResult{}, err
	}
	data, err := n.FetchBytes(ctx, url)
	if err != nil {
		return ImageResult{}, err
	}
	return Encode(data), nil
}

// Extract probes resp with the configured extractors.
func (n *Normalizer) Extract(resp Response) (string, string, error) {
	return ExtractImageURL(resp, n.extractors)
}

// FetchBytes performs the single outbound fetch for url.
func (n *Normalizer) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	if n.fetcher == nil {
		return nil, newError(KindUpstreamFetch, ErrFetchFailed, nil)
	}
	data, err := n.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, newError(KindUpstreamFetch, ErrFetchFailed, err)
	}
	return data, nil
}

// Encode wraps raw image bytes into an ImageResult.
func Encode(data []byte) ImageResult {
	return ImageResult{EncodedBytes: base64.StdEncoding.EncodeToString(data)}
}

func nested(r Response, key string) Response {
	if r == nil {
		return nil
	}
	if m, ok := r[key].(map[string]any); ok {
		return Response(m)
	}
	if m, ok := r[key].(Response); ok {
		return m
	}
	return nil
}

func imageURL(r Response) (string, bool) {
	return urlField(nested(r, "image"))
}

func firstImagesURL(r Response) (string, bool) {
	if r == nil {
		return "", false
	}
	var first any
	switch images := r["images"].(type) {
	case []any:
		if len(images) > 0 {
			first = images[0]
		}
	case []map[string]any:
		if len(images) > 0 {
			first = images[0]
		}
	}
	switch item := first.(type) {
	case map[string]any:
		return urlField(Response(item))
	case Response:
		return urlField(item)
	}
	return "", false
}

func urlField(r Response) (string, bool) {
	if r == nil {
		return "", false
	}
	url, _ := r["url"].(string)
	url = strings.TrimSpace(url)
	return url, url != ""
}
