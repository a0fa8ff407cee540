package handlers

import (
	"context"
	"time"

	"github.com/fasthttp/router"
	"github.com/gesthub/gesthub/internal/composer"
	"github.com/gesthub/gesthub/internal/model"
	xhttp "github.com/gesthub/gesthub/pkg/http"
)

type FormsService interface {
	Pickup(ctx context.Context, form model.PickupForm) (*model.Nota, composer.Message, error)
	Collection(ctx context.Context, form model.CollectionForm) (composer.Message, error)
	Quote(ctx context.Context, form model.QuoteForm) (composer.Message, error)
}

// Clock is the time source used to render badges.
type Clock interface {
	Now() time.Time
}

type FormsHandler struct {
	svc   FormsService
	clock Clock
}

func RegisterFormsRoutes(e *router.Group, h *FormsHandler) {
	e.POST("/pickups", h.ClientPickup)
	e.POST("/collections", h.ScheduleCollection)
	e.POST("/quotes", h.RequestQuote)
}

func NewFormsHandler(svc FormsService, clock Clock) *FormsHandler {
	return &FormsHandler{svc: svc, clock: clock}
}

type pickupResponse struct {
	Nota    notaView         `json:"nota"`
	Message composer.Message `json:"message"`
}

func (h *FormsHandler) ClientPickup(ctx *xhttp.RequestCtx) {
	var form model.PickupForm
	if err := readJSON(ctx, &form); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	n, msg, err := h.svc.Pickup(ctx, form)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, pickupResponse{
		Nota:    newNotaView(n, ViewDashboard, h.clock.Now()),
		Message: msg,
	})
}

func (h *FormsHandler) ScheduleCollection(ctx *xhttp.RequestCtx) {
	var form model.CollectionForm
	if err := readJSON(ctx, &form); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	msg, err := h.svc.Collection(ctx, form)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, msg)
}

func (h *FormsHandler) RequestQuote(ctx *xhttp.RequestCtx) {
	var form model.QuoteForm
	if err := readJSON(ctx, &form); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	msg, err := h.svc.Quote(ctx, form)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, msg)
}
