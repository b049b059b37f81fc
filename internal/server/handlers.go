package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pwnholic/taskcard/internal"
	"github.com/pwnholic/taskcard/internal/exports"
	"github.com/pwnholic/taskcard/internal/form"
	"github.com/pwnholic/taskcard/internal/render"
	"github.com/pwnholic/taskcard/internal/task"
)

var (
	ErrNoTask       = errors.New("no task has been generated yet")
	ErrInvalidInput = errors.New("invalid request body")
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	ws       *Workspace
	pipeline *exports.Pipeline
}

func NewHandlers(ws *Workspace, pipeline *exports.Pipeline) *Handlers {
	return &Handlers{ws: ws, pipeline: pipeline}
}

// HealthCheck handler for monitoring
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func (h *Handlers) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", newPageView(h.ws.Form.Snapshot(), ""))
}

func wantsJSON(c *gin.Context) bool {
	return c.ContentType() == gin.MIMEJSON || c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, form.ErrMissingField),
		errors.Is(err, task.ErrInvalidPrice),
		errors.Is(err, task.ErrUnknownJobType),
		errors.Is(err, exports.ErrEmptySeed):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoTask), errors.Is(err, render.ErrNotMounted):
		return http.StatusNotFound
	case errors.Is(err, form.ErrBusy), errors.Is(err, exports.ErrExportInProgress):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, exports.ErrSave):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	internal.Warn("[%s] %s %s: %v", requestID(c), c.Request.Method, c.Request.URL.Path, err)
	if wantsJSON(c) {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.HTML(status, "index.html", newPageView(h.ws.Form.Snapshot(), err.Error()))
}

// Submit accepts the form as JSON or as urlencoded fields.
func (h *Handlers) Submit(c *gin.Context) {
	var fields form.Fields
	if err := c.ShouldBind(&fields); err != nil {
		h.fail(c, fmt.Errorf("%w: %w", ErrInvalidInput, err))
		return
	}

	h.ws.Form.SetFields(fields)
	data, err := h.ws.Form.Submit(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	internal.Info("[%s] generated task for %s (%s)", requestID(c), data.PhoneNumber, data.JobType)
	if wantsJSON(c) {
		c.JSON(http.StatusCreated, gin.H{"task": data, "view": newCardView(data)})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handlers) Current(c *gin.Context) {
	data, ok := h.ws.Form.Current()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrNoTask.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": data, "view": newCardView(data)})
}

func (h *Handlers) Reset(c *gin.Context) {
	release, err := h.pipeline.Hold(h.ws.Card)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer release()
	if err := h.ws.Reset(); err != nil {
		h.fail(c, err)
		return
	}
	if wantsJSON(c) {
		c.Status(http.StatusNoContent)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handlers) ExportImage(c *gin.Context) {
	h.export(c, h.pipeline.ExportImage)
}

func (h *Handlers) ExportDocument(c *gin.Context) {
	h.export(c, h.pipeline.ExportDocument)
}

type exportFunc func(ctx context.Context, region exports.Region, seed string) (exports.Artifact, error)

func (h *Handlers) export(c *gin.Context, run exportFunc) {
	data, ok := h.ws.Form.Current()
	if !ok {
		h.fail(c, ErrNoTask)
		return
	}

	art, err := run(c.Request.Context(), h.ws.Card, data.PhoneNumber)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Name))
	c.Data(http.StatusOK, art.ContentType, art.Data)
}
