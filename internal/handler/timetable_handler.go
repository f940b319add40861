package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/limaJavier/coursetabling/internal/apperrors"
	"github.com/limaJavier/coursetabling/internal/response"
	"github.com/limaJavier/coursetabling/internal/service"
	"github.com/limaJavier/coursetabling/pkg/model"
)

const defaultPDFTitle = "Timetable"

type timetableService interface {
	Solve(ctx context.Context, raw model.RawModelInput) (*service.Solution, error)
	Render(entries []model.ScheduleEntry, title string) ([]byte, error)
}

type renderRequest struct {
	Title   string                `json:"title"`
	Entries []model.ScheduleEntry `json:"entries" binding:"required"`
}

// TimetableHandler exposes timetable generation and rendering.
type TimetableHandler struct {
	service timetableService
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc timetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Generate decodes a problem instance from the body and solves it.
func (h *TimetableHandler) Generate(c *gin.Context) {
	raw, err := model.RawInputFromReader(c.Request.Body)
	if err != nil {
		response.Error(c, apperrors.Wrap(err, apperrors.ErrValidation, "invalid problem instance"))
		return
	}

	solution, err := h.service.Solve(c.Request.Context(), raw)
	if err != nil {
		var meta map[string]any
		if solution != nil {
			meta = map[string]any{"solve_id": solution.SolveID, "status": solution.Result.Status}
		}
		response.Error(c, err, meta)
		return
	}
	response.JSON(c, http.StatusOK, solution)
}

// RenderPDF renders the posted schedule entries as a PDF attachment.
func (h *TimetableHandler) RenderPDF(c *gin.Context) {
	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.Wrap(err, apperrors.ErrValidation, "invalid render payload"))
		return
	}
	if req.Title == "" {
		req.Title = defaultPDFTitle
	}

	document, err := h.service.Render(req.Entries, req.Title)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "timetable.pdf"))
	c.Data(http.StatusOK, "application/pdf", document)
}
