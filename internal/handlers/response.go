package handlers

import (
	"encoding/json"

	"github.com/gesthub/gesthub/internal/model"
	xhttp "github.com/gesthub/gesthub/pkg/http"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	return json.Unmarshal(ctx.PostBody(), dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, errorResponse{Error: msg})
}

// writeServiceError maps an operation error onto its HTTP status.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	kind := model.Kind(err)
	status := xhttp.StatusInternalServerError
	msg := xhttp.StatusText(status)
	switch kind {
	case "validation":
		status, msg = xhttp.StatusBadRequest, err.Error()
	case "constraint":
		status, msg = xhttp.StatusUnprocessableEntity, err.Error()
	case "not_found":
		status, msg = xhttp.StatusNotFound, err.Error()
	case "transient":
		status, msg = xhttp.StatusServiceUnavailable, "storage unavailable, try again"
	}
	writeJSON(ctx, status, errorResponse{Error: msg, Kind: kind})
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func param(ctx *xhttp.RequestCtx, name string) string {
	v, _ := ctx.UserValue(name).(string)
	return v
}
