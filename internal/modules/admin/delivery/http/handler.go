package handler

import (
	"net/http"
	"strconv"

	"anoa.com/schoolhub/internal/entity"
	"anoa.com/schoolhub/internal/middleware"
	"anoa.com/schoolhub/internal/modules/admin/dto"
	adminService "anoa.com/schoolhub/internal/modules/admin/service"
	"anoa.com/schoolhub/internal/view"
	"anoa.com/schoolhub/pkg/apperror"
	"anoa.com/schoolhub/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService adminService.AdminService
	view         *view.Renderer
}

func NewAdminHandler(adminService adminService.AdminService, renderer *view.Renderer) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		view:         renderer,
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func (h *AdminHandler) renderCodes(c *gin.Context, status int, data gin.H) {
	codes, err := h.adminService.ListCodes(c.Request.Context())
	if err != nil {
		h.view.Error(c, err)
		return
	}
	data["Title"] = "Registration codes"
	data["Codes"] = codes
	h.view.HTML(c, status, "admin_codes.html", data)
}

func (h *AdminHandler) CodesPage(c *gin.Context) {
	h.renderCodes(c, http.StatusOK, gin.H{})
}

func (h *AdminHandler) GenerateCode(c *gin.Context) {
	var input dto.GenerateCodeInput
	if err := c.ShouldBind(&input); err != nil {
		h.renderCodes(c, http.StatusBadRequest, gin.H{"Errors": validator.FieldErrors(err)})
		return
	}

	code, err := h.adminService.GenerateCode(c.Request.Context(), input)
	if err != nil {
		h.view.Error(c, err)
		return
	}
	h.renderCodes(c, http.StatusCreated, gin.H{"NewCode": code})
}

func (h *AdminHandler) DeleteCode(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.view.Error(c, apperror.ErrNotFound)
		return
	}
	if err := h.adminService.DeleteCode(c.Request.Context(), id); err != nil {
		h.view.Redirect(c, "/admin/codes", "Could not delete code: "+apperror.PublicMessage(err))
		return
	}
	h.view.Redirect(c, "/admin/codes", "Registration code deleted.")
}

func (h *AdminHandler) renderUsers(c *gin.Context, status int, data gin.H) {
	users, err := h.adminService.ListUsers(c.Request.Context())
	if err != nil {
		h.view.Error(c, err)
		return
	}
	data["Title"] = "Users"
	data["Users"] = users
	h.view.HTML(c, status, "admin_users.html", data)
}

func (h *AdminHandler) UsersPage(c *gin.Context) {
	h.renderUsers(c, http.StatusOK, gin.H{})
}

func (h *AdminHandler) ResetPassword(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.view.Error(c, apperror.ErrNotFound)
		return
	}
	reset, err := h.adminService.ResetPassword(c.Request.Context(), entity.PrincipalKind(c.Param("kind")), id)
	if err != nil {
		h.view.Error(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	h.renderUsers(c, http.StatusOK, gin.H{"ResetPassword": reset})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.view.Error(c, apperror.ErrNotFound)
		return
	}
	actor := middleware.CurrentPrincipal(c)
	if err := h.adminService.DeleteUser(c.Request.Context(), actor, entity.PrincipalKind(c.Param("kind")), id); err != nil {
		h.view.Redirect(c, "/admin/users", "Could not delete user: "+apperror.PublicMessage(err))
		return
	}
	h.view.Redirect(c, "/admin/users", "User deleted.")
}

func (h *AdminHandler) AssignTeacher(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.view.Error(c, apperror.ErrNotFound)
		return
	}
	var input dto.AssignTeacherInput
	if err := c.ShouldBind(&input); err != nil {
		h.view.Redirect(c, "/admin/users", "Could not assign teacher: "+apperror.PublicMessage(apperror.ErrInvalidInput))
		return
	}

	var teacherID *uint
	if input.TeacherID != "" {
		parsed, err := strconv.ParseUint(input.TeacherID, 10, 64)
		if err != nil {
			h.view.Redirect(c, "/admin/users", "Could not assign teacher: "+apperror.PublicMessage(apperror.ErrInvalidInput))
			return
		}
		tid := uint(parsed)
		teacherID = &tid
	}

	account, err := h.adminService.AssignTeacher(c.Request.Context(), id, teacherID)
	if err != nil {
		h.view.Redirect(c, "/admin/users", "Could not assign teacher: "+apperror.PublicMessage(err))
		return
	}
	h.view.Redirect(c, "/admin/users", "Teacher updated for "+account.Username+".")
}
