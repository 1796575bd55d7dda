package handler

import (
	"net/http"
	"time"

	"anoa.com/schoolhub/internal/entity"
	"anoa.com/schoolhub/internal/middleware"
	"anoa.com/schoolhub/internal/modules/progress/dto"
	progressService "anoa.com/schoolhub/internal/modules/progress/service"
	"anoa.com/schoolhub/internal/view"
	"anoa.com/schoolhub/pkg/apperror"
	"anoa.com/schoolhub/pkg/response"
	"anoa.com/schoolhub/pkg/validator"
	"github.com/gin-gonic/gin"
)

type ProgressHandler struct {
	service progressService.ProgressService
	view    *view.Renderer
}

func NewProgressHandler(service progressService.ProgressService, renderer *view.Renderer) *ProgressHandler {
	return &ProgressHandler{
		service: service,
		view:    renderer,
	}
}

func (h *ProgressHandler) RecordPage(c *gin.Context) {
	form := dto.RecordInput{AcademicYear: progressService.CurrentAcademicYear(time.Now())}
	if teacher := middleware.CurrentPrincipal(c); teacher != nil && teacher.Teacher != nil {
		form.Subject = teacher.Teacher.Subject
	}
	h.renderForm(c, http.StatusOK, form, nil, "")
}

func (h *ProgressHandler) renderForm(c *gin.Context, status int, input dto.RecordInput, fieldErrors map[string]string, message string) {
	ctx := c.Request.Context()
	teacher := middleware.CurrentPrincipal(c)

	students, err := h.service.Students(ctx, teacher)
	if err != nil {
		h.view.Error(c, err)
		return
	}
	recent, err := h.service.Recent(ctx, teacher)
	if err != nil {
		h.view.Error(c, err)
		return
	}

	data := gin.H{
		"Title":    "Record progress",
		"Form":     input,
		"Students": students,
		"Recent":   recent,
		"Terms":    entity.Terms,
	}
	if fieldErrors != nil {
		data["Errors"] = fieldErrors
	}
	if message != "" {
		data["Error"] = message
	}
	h.view.HTML(c, status, "progress_form.html", data)
}

func (h *ProgressHandler) Record(c *gin.Context) {
	var input dto.RecordInput
	if err := c.ShouldBind(&input); err != nil {
		h.renderForm(c, http.StatusBadRequest, input, validator.FieldErrors(err), "")
		return
	}

	if _, err := h.service.Record(c.Request.Context(), middleware.CurrentPrincipal(c), input); err != nil {
		status := apperror.MapErrorToStatus(err)
		if status == http.StatusBadRequest {
			h.renderForm(c, status, input, nil, apperror.PublicMessage(err))
			return
		}
		h.view.Error(c, err)
		return
	}
	h.view.Redirect(c, "/dashboard/progress/record", "Progress recorded.")
}

func (h *ProgressHandler) View(c *gin.Context) {
	reports, err := h.service.ForStudent(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		h.view.Error(c, err)
		return
	}
	h.view.HTML(c, http.StatusOK, "progress_view.html", gin.H{
		"Title":   "My progress",
		"Reports": reports,
	})
}

func (h *ProgressHandler) ViewJSON(c *gin.Context) {
	reports, err := h.service.ForStudent(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.OK(c, reports)
}
