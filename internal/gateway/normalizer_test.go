package gateway

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"
)

type stubFetcher struct {
	mu     sync.Mutex
	bodies map[string][]byte
	err    error
	calls  []string
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, url)
	if s.err != nil {
		return nil, s.err
	}
	data, ok := s.bodies[url]
	if !ok {
		return nil, errors.New("status 404")
	}
	return data, nil
}

func imageAt(url string) map[string]any { return map[string]any{"url": url} }

func imagesAt(url string) []any { return []any{map[string]any{"url": url}} }

func TestExtractImageURLEachLocation(t *testing.T) {
	tests := []struct {
		name     string
		resp     Response
		location string
	}{
		{name: "direct image", resp: Response{"image": imageAt("u1")}, location: "image.url"},
		{name: "images list", resp: Response{"images": imagesAt("u1")}, location: "images[0].url"},
		{name: "data image", resp: Response{"data": map[string]any{"image": imageAt("u1")}}, location: "data.image.url"},
		{name: "data images list", resp: Response{"data": map[string]any{"images": imagesAt("u1")}}, location: "data.images[0].url"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			url, location, err := ExtractImageURL(tc.resp, DefaultExtractors)
			if err != nil {
				t.Fatalf("ExtractImageURL returned error: %v", err)
			}
			if url != "u1" || location != tc.location {
				t.Fatalf("got (%q, %q), want (u1, %q)", url, location, tc.location)
			}
		})
	}
}

func TestExtractImageURLPriority(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		want string
	}{
		{
			name: "image beats data.images",
			resp: Response{
				"image": imageAt("direct"),
				"data":  map[string]any{"images": imagesAt("nested")},
			},
			want: "direct",
		},
		{
			name: "images beats data.image",
			resp: Response{
				"images": imagesAt("list"),
				"data":   map[string]any{"image": imageAt("nested")},
			},
			want: "list",
		},
		{
			name: "image beats images",
			resp: Response{"image": imageAt("direct"), "images": imagesAt("list")},
			want: "direct",
		},
		{
			name: "data.image beats data.images",
			resp: Response{"data": map[string]any{"image": imageAt("a"), "images": imagesAt("b")}},
			want: "a",
		},
		{
			name: "empty url falls through",
			resp: Response{"image": imageAt(""), "images": imagesAt("list")},
			want: "list",
		},
		{
			name: "only first list entry counts",
			resp: Response{
				"images": []any{map[string]any{"url": ""}, map[string]any{"url": "second"}},
				"data":   map[string]any{"image": imageAt("nested")},
			},
			want: "nested",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			url, _, err := ExtractImageURL(tc.resp, DefaultExtractors)
			if err != nil {
				t.Fatalf("ExtractImageURL returned error: %v", err)
			}
			if url != tc.want {
				t.Fatalf("url = %q, want %q", url, tc.want)
			}
		})
	}
}

func TestExtractImageURLNoMatch(t *testing.T) {
	for _, resp := range []Response{
		nil,
		{},
		{"image": "not-an-object"},
		{"images": []any{}},
		{"data": "x"},
		{"result": map[string]any{"url": "elsewhere"}},
	} {
		_, _, err := ExtractImageURL(resp, DefaultExtractors)
		if !errors.Is(err, ErrNoImageURL) {
			t.Fatalf("resp %v: err = %v, want ErrNoImageURL", resp, err)
		}
		if KindOf(err) != KindUpstreamShape {
			t.Fatalf("kind = %v, want upstream_shape", KindOf(err))
		}
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	fetcher := &stubFetcher{bodies: map[string][]byte{"http://x/img.png": png}}
	n := NewNormalizer(fetcher)
	resp := Response{"data": map[string]any{"images": imagesAt("http://x/img.png")}}

	got, err := n.Normalize(context.Background(), resp)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if want := base64.StdEncoding.EncodeToString(png); got.EncodedBytes != want {
		t.Fatalf("image = %q, want %q", got.EncodedBytes, want)
	}
	if len(fetcher.calls) != 1 {
		t.Fatalf("fetch calls = %d, want 1", len(fetcher.calls))
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	fetcher := &stubFetcher{bodies: map[string][]byte{"u": []byte("bytes")}}
	n := NewNormalizer(fetcher)
	resp := Response{"image": imageAt("u")}

	first, err := n.Normalize(context.Background(), resp)
	if err != nil {
		t.Fatalf("first Normalize: %v", err)
	}
	second, err := n.Normalize(context.Background(), resp)
	if err != nil {
		t.Fatalf("second Normalize: %v", err)
	}
	if first != second {
		t.Fatalf("results differ: %q vs %q", first.EncodedBytes, second.EncodedBytes)
	}
}

func TestNormalizeFetchFailure(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("imagefetch: download status 500")}
	n := NewNormalizer(fetcher)

	_, err := n.Normalize(context.Background(), Response{"image": imageAt("u")})
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("err = %v, want ErrFetchFailed", err)
	}
	if KindOf(err) != KindUpstreamFetch {
		t.Fatalf("kind = %v, want upstream_fetch", KindOf(err))
	}
	if MessageOf(err) != "Failed to fetch result image" {
		t.Fatalf("message = %q", MessageOf(err))
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Fatalf("cause missing from %q", err.Error())
	}
}

func TestNormalizeNoURLSkipsFetch(t *testing.T) {
	fetcher := &stubFetcher{}
	n := NewNormalizer(fetcher)
	if _, err := n.Normalize(context.Background(), Response{"status": "ok"}); !errors.Is(err, ErrNoImageURL) {
		t.Fatalf("err = %v, want ErrNoImageURL", err)
	}
	if len(fetcher.calls) != 0 {
		t.Fatalf("fetch calls = %d, want 0", len(fetcher.calls))
	}
}

func TestRedactPayload(t *testing.T) {
	resp := Response{
		"input":  map[string]any{"image_url": "data:image/png;base64," + strings.Repeat("A", 100)},
		"status": "done",
	}
	got := RedactPayload(resp, 0)
	if strings.Contains(got, strings.Repeat("A", 100)) {
		t.Fatalf("data url not redacted: %s", got)
	}
	if !strings.Contains(got, "data:<redacted") || !strings.Contains(got, `"status":"done"`) {
		t.Fatalf("unexpected payload: %s", got)
	}

	long := RedactPayload(Response{"text": strings.Repeat("x", 200)}, 50)
	if !strings.HasSuffix(long, "...(truncated)") || len(long) != 50+len("...(truncated)") {
		t.Fatalf("payload not truncated: %q", long)
	}
}
