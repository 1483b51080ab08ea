package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"imagegw/internal/gateway"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type editRequest struct {
	Prompt      string `json:"prompt"`
	ImageBase64 string `json:"imageBase64"`
	EditType    string `json:"editType"`
}

// Generate handles POST /api/generate.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !a.decode(w, r, &req) {
		return
	}
	result, err := a.Gateway.Generate(r.Context(), gateway.GenerationRequest{
		Prompt: req.Prompt,
		Width:  req.Width,
		Height: req.Height,
	})
	if err != nil {
		a.gatewayError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, result)
}

// Edit handles POST /api/edit.
func (a *App) Edit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if !a.decode(w, r, &req) {
		return
	}
	kind, err := gateway.ParseEditKind(req.EditType)
	if err != nil && req.ImageBase64 != "" {
		a.gatewayError(w, r, err)
		return
	}
	// With no image the gateway reports "No image uploaded" whatever the type.
	result, err := a.Gateway.Edit(r.Context(), gateway.EditRequest{
		Prompt:      req.Prompt,
		SourceImage: req.ImageBase64,
		Kind:        kind,
	})
	if err != nil {
		a.gatewayError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, result)
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, a.maxRequestBytes())
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		// An empty body is an empty request; validation reports what is missing.
		if errors.Is(err, io.EOF) {
			return true
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		a.error(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
