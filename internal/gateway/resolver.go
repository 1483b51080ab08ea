package gateway

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	DefaultWidth        = 1024
	DefaultHeight       = 1024
	DefaultMaxDimension = 2048

	// EditInferenceSteps keeps image-conditioned edits on the fast path of
	// the schnell model.
	EditInferenceSteps = 4

	EndpointFluxSchnell       = "fal-ai/flux/schnell"
	EndpointBackgroundRemoval = "fal-ai/birefnet"
	EndpointPollinationsImage = "prompt"
)

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	GenerateProvider Provider
	MaxDimension     int
}

// Resolver turns requests into provider calls. It performs no I/O.
type Resolver struct {
	generateProvider Provider
	maxDimension     int
}

// NewResolver builds a Resolver, defaulting to fal for text-to-image.
func NewResolver(opts ResolverOptions) *Resolver {
	provider := opts.GenerateProvider
	if provider == "" {
		provider = ProviderFal
	}
	maxDim := opts.MaxDimension
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	return &Resolver{generateProvider: provider, maxDimension: maxDim}
}

// ResolveGenerate builds the text-to-image call for req.
func (r *Resolver) ResolveGenerate(req GenerationRequest) (ProviderCall, error) {
	prompt := normalizePrompt(req.Prompt)
	if prompt == "" {
		return ProviderCall{}, validationError(ErrEmptyPrompt)
	}
	width, height := req.Width, req.Height
	if width == 0 {
		width = DefaultWidth
	}
	if height == 0 {
		height = DefaultHeight
	}
	if width < 0 || height < 0 || width > r.maxDimension || height > r.maxDimension {
		return ProviderCall{}, validationError(ErrInvalidSize)
	}

	if r.generateProvider == ProviderPollinations {
		return ProviderCall{
			Provider: ProviderPollinations,
			Endpoint: EndpointPollinationsImage,
			Payload: map[string]any{
				"prompt":  prompt,
				"width":   width,
				"height":  height,
				"nologo":  true,
				"enhance": true,
			},
		}, nil
	}
	return ProviderCall{
		Provider: ProviderFal,
		Endpoint: EndpointFluxSchnell,
		Payload: map[string]any{
			"prompt": prompt,
			"image_size": map[string]any{
				"width":  width,
				"height": height,
			},
			"num_images": 1,
		},
	}, nil
}

// ResolveEdit builds the edit call for req. A missing source image is rejected
// before anything else is looked at.
func (r *Resolver) ResolveEdit(req EditRequest) (ProviderCall, error) {
	source := strings.TrimSpace(req.SourceImage)
	if source == "" {
		return ProviderCall{}, validationError(ErrNoImage)
	}

	switch req.Kind {
	case EditKindRemoveBackground:
		return ProviderCall{
			Provider: ProviderFal,
			Endpoint: EndpointBackgroundRemoval,
			Payload:  map[string]any{"image_url": source},
		}, nil
	case EditKindModify, EditKindTransform:
		return ProviderCall{
			Provider: ProviderFal,
			Endpoint: EndpointFluxSchnell,
			Payload: map[string]any{
				"prompt":              normalizePrompt(req.Prompt),
				"image_url":           source,
				"num_inference_steps": EditInferenceSteps,
			},
		}, nil
	default:
		return ProviderCall{}, validationError(ErrUnsupportedEditKind)
	}
}

func normalizePrompt(prompt string) string {
	return strings.TrimSpace(norm.NFC.String(prompt))
}
