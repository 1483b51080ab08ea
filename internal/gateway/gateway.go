// Package gateway resolves image requests into upstream provider calls and
// normalizes provider responses into a single base64 image.
package gateway

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Recorder receives pipeline observations. A nil Recorder is ignored.
type Recorder interface {
	ObserveRequest(operation, outcome string)
	ObserveStageFailure(stage Stage, kind Kind)
	ObserveUpstream(provider Provider, endpoint string, took time.Duration)
	ObserveFetch(took time.Duration, size int)
}

// Options configures a Gateway.
type Options struct {
	Resolver        *Resolver
	Invokers        map[Provider]Invoker
	Fetcher         Fetcher
	Extractors      []Extractor
	UpstreamTimeout time.Duration
	FetchTimeout    time.Duration
	// DiagnosticLimit caps the logged size of unrecognized provider payloads.
	DiagnosticLimit int
	Logger          zerolog.Logger
	Recorder        Recorder
}

// Gateway runs one request through resolve, invoke and normalize. It holds no
// per-request state and is safe for concurrent use.
type Gateway struct {
	resolver        *Resolver
	invokers        map[Provider]Invoker
	normalizer      *Normalizer
	upstreamTimeout time.Duration
	fetchTimeout    time.Duration
	diagLimit       int
	logger          zerolog.Logger
	recorder        Recorder
}

// New builds a Gateway from opts.
func New(opts Options) *Gateway {
	resolver := opts.Resolver
	if resolver == nil {
		resolver = NewResolver(ResolverOptions{})
	}
	invokers := make(map[Provider]Invoker, len(opts.Invokers))
	for p, inv := range opts.Invokers {
		invokers[p] = inv
	}
	return &Gateway{
		resolver:        resolver,
		invokers:        invokers,
		normalizer:      NewNormalizer(opts.Fetcher, opts.Extractors...),
		upstreamTimeout: opts.UpstreamTimeout,
		fetchTimeout:    opts.FetchTimeout,
		diagLimit:       opts.DiagnosticLimit,
		logger:          opts.Logger,
		recorder:        opts.Recorder,
	}
}

// Generate produces an image from a text prompt.
func (g *Gateway) Generate(ctx context.Context, req GenerationRequest) (ImageResult, error) {
	g.logger.Debug().Str("intent", "generate").Str("prompt", req.Prompt).
		Int("width", req.Width).Int("height", req.Height).Msg("gateway: request")
	call, err := g.resolver.ResolveGenerate(req)
	return g.finish(ctx, "generate", call, err)
}

// Edit modifies an uploaded image according to req.Kind.
func (g *Gateway) Edit(ctx context.Context, req EditRequest) (ImageResult, error) {
	g.logger.Debug().Str("intent", "edit").Str("edit_kind", req.Kind.String()).
		Str("prompt", req.Prompt).Msg("gateway: request")
	call, err := g.resolver.ResolveEdit(req)
	return g.finish(ctx, "edit:"+req.Kind.String(), call, err)
}

func (g *Gateway) finish(ctx context.Context, operation string, call ProviderCall, resolveErr error) (ImageResult, error) {
	if resolveErr != nil {
		return g.fail(operation, StageResolving, resolveErr)
	}
	result, stage, err := g.run(ctx, call)
	if err != nil {
		return g.fail(operation, stage, err)
	}
	if g.recorder != nil {
		g.recorder.ObserveRequest(operation, "ok")
	}
	return result, nil
}

func (g *Gateway) run(ctx context.Context, call ProviderCall) (ImageResult, Stage, error) {
	resp, err := g.invoke(ctx, call)
	if err != nil {
		return ImageResult{}, StageCallingProvider, err
	}

	url, location, err := g.normalizer.Extract(resp)
	if err != nil {
		g.logger.Error().
			Str("provider", string(call.Provider)).
			Str("endpoint", call.Endpoint).
			Str("response", RedactPayload(resp, g.diagLimit)).
			Msg("gateway: no image url in provider response")
		return ImageResult{}, StageExtractingURL, err
	}
	g.logger.Debug().Str("location", location).Str("url", url).Msg("gateway: image url resolved")

	data, err := g.fetch(ctx, url)
	if err != nil {
		return ImageResult{}, StageFetchingBytes, err
	}
	return Encode(data), StageDone, nil
}

func (g *Gateway) invoke(ctx context.Context, call ProviderCall) (Response, error) {
	inv, ok := g.invokers[call.Provider]
	if !ok || inv == nil {
		return nil, newError(KindUpstreamCall, ErrUpstreamCall, nil)
	}
	callCtx, cancel := withTimeout(ctx, g.upstreamTimeout)
	defer cancel()

	start := time.Now()
	resp, err := inv.Invoke(callCtx, call)
	if g.recorder != nil {
		g.recorder.ObserveUpstream(call.Provider, call.Endpoint, time.Since(start))
	}
	if err != nil {
		g.logger.Error().Err(err).
			Str("provider", string(call.Provider)).
			Str("endpoint", call.Endpoint).
			Msg("gateway: provider call failed")
		return nil, newError(KindUpstreamCall, ErrUpstreamCall, err)
	}
	return resp, nil
}

func (g *Gateway) fetch(ctx context.Context, url string) ([]byte, error) {
	fetchCtx, cancel := withTimeout(ctx, g.fetchTimeout)
	defer cancel()

	start := time.Now()
	data, err := g.normalizer.FetchBytes(fetchCtx, url)
	if err != nil {
		g.logger.Error().Err(err).Msg("gateway: fetch result image failed")
		return nil, err
	}
	if g.recorder != nil {
		g.recorder.ObserveFetch(time.Since(start), len(data))
	}
	return data, nil
}

func (g *Gateway) fail(operation string, stage Stage, err error) (ImageResult, error) {
	kind := KindOf(err)
	if g.recorder != nil {
		g.recorder.ObserveStageFailure(stage, kind)
		g.recorder.ObserveRequest(operation, kind.String())
	}
	g.logger.Debug().Str("operation", operation).Str("stage", string(stage)).
		Str("kind", kind.String()).Msg("gateway: request failed")
	return ImageResult{}, err
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
