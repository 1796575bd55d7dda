package handler

import (
	"net/http"
	"strconv"

	"anoa.com/schoolhub/internal/middleware"
	"anoa.com/schoolhub/internal/modules/transfer/dto"
	transferService "anoa.com/schoolhub/internal/modules/transfer/service"
	"anoa.com/schoolhub/internal/view"
	"anoa.com/schoolhub/pkg/apperror"
	"anoa.com/schoolhub/pkg/validator"
	"github.com/gin-gonic/gin"
)

type TransferHandler struct {
	service transferService.TransferService
	view    *view.Renderer
}

func NewTransferHandler(service transferService.TransferService, renderer *view.Renderer) *TransferHandler {
	return &TransferHandler{
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

func (h *TransferHandler) RequestPage(c *gin.Context) {
	h.view.HTML(c, http.StatusOK, "tc_request.html", gin.H{
		"Title": "Request transfer certificate",
		"Form":  dto.RequestInput{},
	})
}

func (h *TransferHandler) Request(c *gin.Context) {
	var input dto.RequestInput
	if err := c.ShouldBind(&input); err != nil {
		h.view.HTML(c, http.StatusBadRequest, "tc_request.html", gin.H{
			"Title":  "Request transfer certificate",
			"Form":   input,
			"Errors": validator.FieldErrors(err),
		})
		return
	}

	req, err := h.service.Request(c.Request.Context(), middleware.CurrentPrincipal(c), input)
	if err != nil {
		status := apperror.MapErrorToStatus(err)
		if status >= http.StatusInternalServerError || status == http.StatusForbidden {
			h.view.Error(c, err)
			return
		}
		h.view.HTML(c, status, "tc_request.html", gin.H{
			"Title": "Request transfer certificate",
			"Form":  input,
			"Error": apperror.PublicMessage(err),
		})
		return
	}
	h.view.Redirect(c, "/dashboard/tc/my", "Request "+req.Number+" submitted.")
}

func (h *TransferHandler) Mine(c *gin.Context) {
	reqs, err := h.service.Mine(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		h.view.Error(c, err)
		return
	}
	h.view.HTML(c, http.StatusOK, "tc_my.html", gin.H{
		"Title":    "My transfer certificates",
		"Requests": reqs,
	})
}

func (h *TransferHandler) Manage(c *gin.Context) {
	reqs, err := h.service.Queue(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		h.view.Error(c, err)
		return
	}
	h.view.HTML(c, http.StatusOK, "tc_manage.html", gin.H{
		"Title":    "Transfer certificate requests",
		"Requests": reqs,
	})
}

// Approve accepts an optional "certificate" file.
func (h *TransferHandler) Approve(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.view.Error(c, apperror.ErrNotFound)
		return
	}
	var input dto.ReviewInput
	if err := c.ShouldBind(&input); err != nil {
		h.view.Error(c, apperror.ErrInvalidInput)
		return
	}

	var certificate *dto.Upload
	if fileHeader, err := c.FormFile("certificate"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			h.view.Error(c, apperror.ErrBadRequest)
			return
		}
		defer file.Close()
		certificate = &dto.Upload{Reader: file, FileName: fileHeader.Filename}
	}

	req, err := h.service.Approve(c.Request.Context(), middleware.CurrentPrincipal(c), id, input, certificate)
	if err != nil {
		h.view.Error(c, err)
		return
	}
	h.view.Redirect(c, "/dashboard/tc/manage", "Request "+req.Number+" approved.")
}

func (h *TransferHandler) Reject(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.view.Error(c, apperror.ErrNotFound)
		return
	}
	var input dto.ReviewInput
	if err := c.ShouldBind(&input); err != nil {
		h.view.Error(c, apperror.ErrInvalidInput)
		return
	}
	req, err := h.service.Reject(c.Request.Context(), middleware.CurrentPrincipal(c), id, input)
	if err != nil {
		h.view.Error(c, err)
		return
	}
	h.view.Redirect(c, "/dashboard/tc/manage", "Request "+req.Number+" rejected.")
}
