package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"anoa.com/schoolhub/internal/entity"
	"anoa.com/schoolhub/internal/middleware"
	"anoa.com/schoolhub/internal/modules/attendance/dto"
	attendanceService "anoa.com/schoolhub/internal/modules/attendance/service"
	"anoa.com/schoolhub/internal/view"
	"anoa.com/schoolhub/pkg/apperror"
	"github.com/gin-gonic/gin"
)

const statusField = "status_"

type AttendanceHandler struct {
	service attendanceService.AttendanceService
	view    *view.Renderer
}

func NewAttendanceHandler(service attendanceService.AttendanceService, renderer *view.Renderer) *AttendanceHandler {
	return &AttendanceHandler{
		service: service,
		view:    renderer,
	}
}

// sheetDate reads the date field, falling back to today.
func sheetDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now(), nil
	}
	return time.Parse(dto.DateLayout, raw)
}

func (h *AttendanceHandler) TakePage(c *gin.Context) {
	var query dto.SheetQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.view.Error(c, apperror.ErrInvalidInput)
		return
	}
	day, err := sheetDate(query.Date)
	if err != nil {
		h.view.Error(c, apperror.ErrInvalidInput)
		return
	}
	h.renderSheet(c, http.StatusOK, day, "")
}

func (h *AttendanceHandler) renderSheet(c *gin.Context, status int, day time.Time, message string) {
	sheet, err := h.service.Sheet(c.Request.Context(), middleware.CurrentPrincipal(c), day)
	if err != nil {
		h.view.Error(c, err)
		return
	}
	data := gin.H{
		"Title":    "Take attendance",
		"Sheet":    sheet,
		"Statuses": []string{entity.AttendancePresent, entity.AttendanceLate, entity.AttendanceAbsent},
	}
	if message != "" {
		data["Error"] = message
	}
	h.view.HTML(c, status, "attendance_form.html", data)
}

// Take reads one status_<student id> field per student on the sheet.
func (h *AttendanceHandler) Take(c *gin.Context) {
	day, err := sheetDate(c.PostForm("date"))
	if err != nil {
		h.view.Error(c, apperror.ErrInvalidInput)
		return
	}

	if err := c.Request.ParseForm(); err != nil {
		h.view.Error(c, apperror.ErrBadRequest)
		return
	}
	statuses := map[uint]string{}
	for key, values := range c.Request.PostForm {
		if !strings.HasPrefix(key, statusField) || len(values) == 0 {
			continue
		}
		id, err := strconv.ParseUint(strings.TrimPrefix(key, statusField), 10, 64)
		if err != nil {
			h.view.Error(c, apperror.ErrInvalidInput)
			return
		}
		statuses[uint(id)] = values[0]
	}

	n, err := h.service.Record(c.Request.Context(), middleware.CurrentPrincipal(c), day, statuses)
	if err != nil {
		status := apperror.MapErrorToStatus(err)
		if status == http.StatusBadRequest {
			h.renderSheet(c, status, day, apperror.PublicMessage(err))
			return
		}
		h.view.Error(c, err)
		return
	}
	h.view.Redirect(c, "/dashboard/attendance/take?date="+day.Format(dto.DateLayout),
		"Attendance saved for "+strconv.Itoa(n)+" students.")
}

func (h *AttendanceHandler) View(c *gin.Context) {
	attendance, err := h.service.ForStudent(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		h.view.Error(c, err)
		return
	}
	h.view.HTML(c, http.StatusOK, "attendance_view.html", gin.H{
		"Title":      "My attendance",
		"Attendance": attendance,
	})
}
