package handler

import (
	"net/http"
	"strconv"

	"anoa.com/schoolhub/internal/middleware"
	"anoa.com/schoolhub/internal/modules/assignment/dto"
	assignmentService "anoa.com/schoolhub/internal/modules/assignment/service"
	"anoa.com/schoolhub/internal/view"
	"anoa.com/schoolhub/pkg/apperror"
	"anoa.com/schoolhub/pkg/response"
	"anoa.com/schoolhub/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AssignmentHandler struct {
	service assignmentService.AssignmentService
	view    *view.Renderer
}

func NewAssignmentHandler(service assignmentService.AssignmentService, renderer *view.Renderer) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		view:    renderer,
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// upload opens the optional "file" form field. The returned closer is never nil.
func upload(c *gin.Context) (*dto.Upload, func(), error) {
	fileHeader, err := c.FormFile("file")
	if err != nil || fileHeader == nil {
		return nil, func() {}, nil
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &dto.Upload{Reader: file, FileName: fileHeader.Filename}, func() { file.Close() }, nil
}

// Teacher pages

func (h *AssignmentHandler) NewPage(c *gin.Context) {
	h.renderForm(c, http.StatusOK, dto.AssignmentInput{}, nil, "")
}

func (h *AssignmentHandler) renderForm(c *gin.Context, status int, input dto.AssignmentInput, fieldErrors map[string]string, message string) {
	classes, err := h.service.Classes(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		h.view.Error(c, err)
		return
	}
	data := gin.H{
		"Title":   "New assignment",
		"Form":    input,
		"Classes": classes,
	}
	if fieldErrors != nil {
		data["Errors"] = fieldErrors
	}
	if message != "" {
		data["Error"] = message
	}
	h.view.HTML(c, status, "assignment_form.html", data)
}

func (h *AssignmentHandler) Create(c *gin.Context) {
	var input dto.AssignmentInput
	if err := c.ShouldBind(&input); err != nil {
		h.renderForm(c, http.StatusBadRequest, input, validator.FieldErrors(err), "")
		return
	}

	file, closeFile, err := upload(c)
	if err != nil {
		h.view.Error(c, apperror.ErrBadRequest)
		return
	}
	defer closeFile()

	a, err := h.service.Create(c.Request.Context(), middleware.CurrentPrincipal(c), input, file)
	if err != nil {
		status := apperror.MapErrorToStatus(err)
		if status == http.StatusForbidden || status >= http.StatusInternalServerError {
			h.view.Error(c, err)
			return
		}
		h.renderForm(c, status, input, nil, apperror.PublicMessage(err))
		return
	}
	h.view.Redirect(c, "/dashboard/assignments/"+strconv.FormatUint(uint64(a.ID), 10)+"/submissions", "Assignment created.")
}

func (h *AssignmentHandler) TeacherList(c *gin.Context) {
	items, err := h.service.ListForTeacher(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		h.view.Error(c, err)
		return
	}
	h.view.HTML(c, http.StatusOK, "assignments_teacher.html", gin.H{
		"Title":       "Assignments",
		"Assignments": items,
	})
}

func (h *AssignmentHandler) Submissions(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.view.Error(c, apperror.ErrNotFound)
		return
	}
	overview, err := h.service.Overview(c.Request.Context(), middleware.CurrentPrincipal(c), id)
	if err != nil {
		h.view.Error(c, err)
		return
	}
	h.view.HTML(c, http.StatusOK, "assignment_submissions.html", gin.H{
		"Title":    overview.Assignment.Title,
		"Overview": overview,
	})
}

func (h *AssignmentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.view.Error(c, apperror.ErrNotFound)
		return
	}
	if err := h.service.Delete(c.Request.Context(), middleware.CurrentPrincipal(c), id); err != nil {
		h.view.Error(c, err)
		return
	}
	h.view.Redirect(c, "/dashboard/assignments/manage", "Assignment deleted.")
}

func (h *AssignmentHandler) Grade(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.view.Error(c, apperror.ErrNotFound)
		return
	}
	var input dto.GradeInput
	if err := c.ShouldBind(&input); err != nil {
		h.view.Error(c, apperror.ErrInvalidInput)
		return
	}
	sub, err := h.service.Grade(c.Request.Context(), middleware.CurrentPrincipal(c), id, input)
	if err != nil {
		h.view.Error(c, err)
		return
	}
	h.view.Redirect(c, "/dashboard/assignments/"+strconv.FormatUint(uint64(sub.AssignmentID), 10)+"/submissions", "Grade saved.")
}

// Student pages

func (h *AssignmentHandler) StudentList(c *gin.Context) {
	items, err := h.service.ListForStudent(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		h.view.Error(c, err)
		return
	}
	h.view.HTML(c, http.StatusOK, "assignments_student.html", gin.H{
		"Title":       "My assignments",
		"Assignments": items,
	})
}

func (h *AssignmentHandler) SubmitPage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.view.Error(c, apperror.ErrNotFound)
		return
	}
	item, err := h.service.ForStudent(c.Request.Context(), middleware.CurrentPrincipal(c), id)
	if err != nil {
		h.view.Error(c, err)
		return
	}
	h.view.HTML(c, http.StatusOK, "assignment_submit.html", gin.H{
		"Title": item.Assignment.Title,
		"Item":  item,
		"Form":  dto.SubmissionInput{},
	})
}

func (h *AssignmentHandler) Submit(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.view.Error(c, apperror.ErrNotFound)
		return
	}
	ctx := c.Request.Context()
	principal := middleware.CurrentPrincipal(c)

	var input dto.SubmissionInput
	bindErr := c.ShouldBind(&input)

	file, closeFile, err := upload(c)
	if err != nil {
		h.view.Error(c, apperror.ErrBadRequest)
		return
	}
	defer closeFile()

	if bindErr == nil {
		if _, err = h.service.Submit(ctx, principal, id, input, file); err == nil {
			h.view.Redirect(c, "/dashboard/assignments", "Assignment submitted.")
			return
		}
	}

	item, loadErr := h.service.ForStudent(ctx, principal, id)
	if loadErr != nil {
		h.view.Error(c, loadErr)
		return
	}
	data := gin.H{"Title": item.Assignment.Title, "Item": item, "Form": input}
	status := http.StatusBadRequest
	if bindErr != nil {
		data["Errors"] = validator.FieldErrors(bindErr)
	} else {
		status = apperror.MapErrorToStatus(err)
		if status >= http.StatusInternalServerError {
			h.view.Error(c, err)
			return
		}
		data["Error"] = apperror.PublicMessage(err)
	}
	h.view.HTML(c, status, "assignment_submit.html", data)
}

// JSON API

// ListJSON returns the caller's assignments: a teacher's own set or the ones
// aimed at a student.
func (h *AssignmentHandler) ListJSON(c *gin.Context) {
	principal := middleware.CurrentPrincipal(c)
	if principal.IsTeacher() {
		items, err := h.service.ListForTeacher(c.Request.Context(), principal)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		response.OK(c, items)
		return
	}
	items, err := h.service.ListForStudent(c.Request.Context(), principal)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.OK(c, items)
}
