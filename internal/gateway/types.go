package gateway

import (
	"context"
	"strings"
)

// EditKind enumerates the supported edit operations.
type EditKind int

const (
	EditKindModify EditKind = iota
	EditKindTransform
	EditKindRemoveBackground
)

func (k EditKind) String() string {
	switch k {
	case EditKindModify:
		return "modify"
	case EditKindTransform:
		return "transform"
	case EditKindRemoveBackground:
		return "remove-background"
	}
	return "unknown"
}

// ParseEditKind maps the wire name of an edit type onto EditKind. An empty name
// selects the default modify operation and "inpaint" is an alias for it.
func ParseEditKind(name string) (EditKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "modify", "inpaint":
		return EditKindModify, nil
	case "transform":
		return EditKindTransform, nil
	case "remove-background":
		return EditKindRemoveBackground, nil
	default:
		return EditKindModify, validationError(ErrUnsupportedEditKind)
	}
}

// Provider identifies an upstream image backend.
type Provider string

const (
	ProviderFal          Provider = "fal"
	ProviderPollinations Provider = "pollinations"
)

// GenerationRequest asks for a text-to-image generation.
type GenerationRequest struct {
	Prompt string
	Width  int
	Height int
}

// EditRequest asks for an edit of SourceImage, which is a data URL or a remote
// image URL.
type EditRequest struct {
	Prompt      string
	SourceImage string
	Kind        EditKind
}

// ProviderCall describes exactly one upstream invocation.
type ProviderCall struct {
	Provider Provider
	Endpoint string
	Payload  map[string]any
}

// Response is a provider's decoded JSON body. Its shape differs per provider.
type Response map[string]any

// ImageResult is the only artifact returned to callers.
type ImageResult struct {
	EncodedBytes string `json:"image"`
}

// Invoker performs a ProviderCall against an upstream provider.
type Invoker interface {
	Invoke(ctx context.Context, call ProviderCall) (Response, error)
}

// Fetcher retrieves the bytes behind an image URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Stage names a step of the per-request pipeline.
type Stage string

const (
	StageResolving       Stage = "resolving"
	StageCallingProvider Stage = "calling_provider"
	StageExtractingURL   Stage = "extracting_url"
	StageFetchingBytes   Stage = "fetching_bytes"
	StageEncoding        Stage = "encoding"
	StageDone            Stage = "done"
)
