package handlers

import (
	"context"
	"time"

	"github.com/fasthttp/router"
	"github.com/gesthub/gesthub/internal/composer"
	"github.com/gesthub/gesthub/internal/model"
	xhttp "github.com/gesthub/gesthub/pkg/http"
)

type NotaService interface {
	List(ctx context.Context, q model.NotaQuery) ([]*model.Nota, error)
	Get(ctx context.Context, id string) (*model.Nota, error)
	Create(ctx context.Context, n *model.Nota) (*model.Nota, error)
	SendReminderByID(ctx context.Context, id string) (*model.Nota, composer.Message, error)
	Preview(ctx context.Context, id string) (*model.Nota, composer.Message, error)
	MarkCollected(ctx context.Context, id string) (*model.Nota, error)
	UpdateNote(ctx context.Context, id, note string) (*model.Nota, error)
	RefreshStatus(ctx context.Context) ([]*model.Nota, error)
	Delete(ctx context.Context, id string) error
	Now() time.Time
}

type ExportService interface {
	Export(ctx context.Context, q model.NotaQuery) (string, []byte, error)
}

type NotaHandler struct {
	svc    NotaService
	export ExportService
}

func RegisterNotaRoutes(e *router.Group, h *NotaHandler) {
	e.GET("/notas", h.ListNotas)
	e.GET("/notas/export", h.ExportNotas)
	e.POST("/notas", h.CreateNota)
	e.POST("/notas/status/refresh", h.RefreshStatus)
	e.GET("/notas/{id}", h.GetNota)
	e.GET("/notas/{id}/preview", h.PreviewReminder)
	e.POST("/notas/{id}/reminder", h.SendReminder)
	e.POST("/notas/{id}/collected", h.MarkCollected)
	e.PUT("/notas/{id}/note", h.UpdateNote)
	e.DELETE("/notas/{id}", h.DeleteNota)
}

func NewNotaHandler(svc NotaService, export ExportService) *NotaHandler {
	return &NotaHandler{
		svc:    svc,
		export: export,
	}
}

type createNotaRequest struct {
	CompanyName    string     `json:"company_name"`
	InvoiceNumber  string     `json:"invoice_number"`
	IssuedAt       *time.Time `json:"issued_at"`
	MessageSentAt  *time.Time `json:"message_sent_at"`
	FirstMessageAt *time.Time `json:"first_message_at"`
	MessageCount   int        `json:"message_count"`
	ContactName    string     `json:"contact_name"`
	ContactPhone   string     `json:"contact_phone"`
	Status         string     `json:"status"`
	Note           string     `json:"note"`
}

func (r createNotaRequest) toModel() *model.Nota {
	n := &model.Nota{
		CompanyName:   r.CompanyName,
		InvoiceNumber: r.InvoiceNumber,
		MessageCount:  r.MessageCount,
		ContactName:   r.ContactName,
		ContactPhone:  r.ContactPhone,
		Status:        model.NotaStatus(r.Status),
		Note:          r.Note,
	}
	if r.IssuedAt != nil {
		n.IssuedAt = *r.IssuedAt
	}
	if r.MessageSentAt != nil {
		n.MessageSentAt = *r.MessageSentAt
	}
	if r.FirstMessageAt != nil {
		n.FirstMessageAt = *r.FirstMessageAt
	}
	return n
}

type updateNoteRequest struct {
	Note string `json:"note"`
}

type listResponse struct {
	Items []notaView `json:"items"`
	Total int        `json:"total"`
}

type reminderResponse struct {
	Nota    notaView         `json:"nota"`
	Message composer.Message `json:"message"`
}

type refreshResponse struct {
	Total int `json:"total"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *NotaHandler) ListNotas(ctx *xhttp.RequestCtx) {
	q := h.parseQuery(ctx)
	items, err := h.svc.List(ctx, q)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, listResponse{
		Items: newNotaViews(items, parseView(query(ctx, "view")), q.Now),
		Total: len(items),
	})
}

func (h *NotaHandler) ExportNotas(ctx *xhttp.RequestCtx) {
	filename, data, err := h.export.Export(ctx, h.parseQuery(ctx))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.Response.Header.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response.Header.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Response.SetStatusCode(xhttp.StatusOK)
	ctx.Response.SetBodyRaw(data)
}

func (h *NotaHandler) GetNota(ctx *xhttp.RequestCtx) {
	n, err := h.svc.Get(ctx, param(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, h.view(ctx, n))
}

func (h *NotaHandler) CreateNota(ctx *xhttp.RequestCtx) {
	var req createNotaRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	n, err := h.svc.Create(ctx, req.toModel())
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, h.view(ctx, n))
}

func (h *NotaHandler) PreviewReminder(ctx *xhttp.RequestCtx) {
	n, msg, err := h.svc.Preview(ctx, param(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, reminderResponse{Nota: h.view(ctx, n), Message: msg})
}

func (h *NotaHandler) SendReminder(ctx *xhttp.RequestCtx) {
	n, msg, err := h.svc.SendReminderByID(ctx, param(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, reminderResponse{Nota: h.view(ctx, n), Message: msg})
}

func (h *NotaHandler) MarkCollected(ctx *xhttp.RequestCtx) {
	n, err := h.svc.MarkCollected(ctx, param(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, h.view(ctx, n))
}

func (h *NotaHandler) UpdateNote(ctx *xhttp.RequestCtx) {
	var req updateNoteRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	n, err := h.svc.UpdateNote(ctx, param(ctx, "id"), req.Note)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, h.view(ctx, n))
}

func (h *NotaHandler) RefreshStatus(ctx *xhttp.RequestCtx) {
	notas, err := h.svc.RefreshStatus(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, refreshResponse{Total: len(notas)})
}

func (h *NotaHandler) DeleteNota(ctx *xhttp.RequestCtx) {
	if err := h.svc.Delete(ctx, param(ctx, "id")); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.Response.SetStatusCode(xhttp.StatusNoContent)
}

func (h *NotaHandler) parseQuery(ctx *xhttp.RequestCtx) model.NotaQuery {
	return model.NotaQuery{
		Tab:    model.Tab(query(ctx, "tab")),
		Status: query(ctx, "status"),
		Search: query(ctx, "q"),
		Order:  model.SortOrder(query(ctx, "order")),
		Now:    h.svc.Now(),
	}.Normalize()
}

func (h *NotaHandler) view(ctx *xhttp.RequestCtx, n *model.Nota) notaView {
	return newNotaView(n, parseView(query(ctx, "view")), h.svc.Now())
}
