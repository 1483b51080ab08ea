package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"imagegw/internal/gateway"
	"imagegw/internal/infra"
)

// ImageGateway is the core the handlers delegate to.
type ImageGateway interface {
	Generate(ctx context.Context, req gateway.GenerationRequest) (gateway.ImageResult, error)
	Edit(ctx context.Context, req gateway.EditRequest) (gateway.ImageResult, error)
}

type App struct {
	Config  *infra.Config
	Logger  zerolog.Logger
	Gateway ImageGateway
}

func NewApp(cfg *infra.Config, logger zerolog.Logger, gw ImageGateway) *App {
	return &App{Config: cfg, Logger: logger, Gateway: gw}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, errorResponse{Error: message})
}

// gatewayError maps a gateway failure onto the uniform error response.
func (a *App) gatewayError(w http.ResponseWriter, r *http.Request, err error) {
	kind := gateway.KindOf(err)
	code := http.StatusInternalServerError
	if kind == gateway.KindValidation {
		code = http.StatusBadRequest
	}
	logger := a.requestLogger(r)
	evt := logger.Warn()
	if code >= http.StatusInternalServerError {
		evt = logger.Error()
	}
	evt.Err(err).Str("kind", kind.String()).Int("status", code).Msg("image request failed")
	a.error(w, code, gateway.MessageOf(err))
}

func (a *App) requestLogger(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.Logger
}

func (a *App) maxRequestBytes() int64 {
	if a.Config != nil && a.Config.MaxRequestBytes > 0 {
		return a.Config.MaxRequestBytes
	}
	return 25 << 20
}
