package handler

import (
	"errors"
	"net/http"

	"anoa.com/schoolhub/internal/middleware"
	"anoa.com/schoolhub/internal/modules/auth/dto"
	authService "anoa.com/schoolhub/internal/modules/auth/service"
	"anoa.com/schoolhub/internal/modules/auth/session"
	"anoa.com/schoolhub/internal/view"
	"anoa.com/schoolhub/pkg/apperror"
	"anoa.com/schoolhub/pkg/logger"
	"anoa.com/schoolhub/pkg/response"
	"anoa.com/schoolhub/pkg/validator"
	"github.com/gin-gonic/gin"
)

const (
	msgRoleMismatchStudent = "That registration code is for teachers. Please use the teacher registration form."
	msgRoleMismatchTeacher = "That registration code is not a teacher code. Please use the student registration form."
	msgRegistered          = "Registration successful! Please log in."
	msgLoggedOut           = "You have been logged out."
	msgPasswordChanged     = "Your password has been changed."
)

type AuthHandler struct {
	auth     authService.AuthService
	sessions *session.Manager
	view     *view.Renderer
}

func NewAuthHandler(auth authService.AuthService, sessions *session.Manager, renderer *view.Renderer) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
		view:     renderer,
	}
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	if middleware.CurrentPrincipal(c) != nil {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}
	h.view.HTML(c, http.StatusOK, "login.html", gin.H{
		"Title": "Log in",
		"Form":  dto.LoginInput{Next: c.Query("next")},
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBind(&input); err != nil {
		h.view.HTML(c, http.StatusBadRequest, "login.html", gin.H{
			"Title":  "Log in",
			"Form":   input,
			"Errors": validator.FieldErrors(err),
		})
		return
	}

	principal, err := h.auth.Login(c.Request.Context(), input, c.ClientIP())
	if err != nil {
		status := apperror.MapErrorToStatus(err)
		if status >= http.StatusInternalServerError {
			logger.Error("login failed", err, nil)
		}
		h.view.HTML(c, status, "login.html", gin.H{
			"Title": "Log in",
			"Form":  input,
			"Error": apperror.PublicMessage(err),
		})
		return
	}

	if err := h.sessions.Bind(c.Writer, c.Request, session.MarkerFor(principal)); err != nil {
		h.view.Error(c, apperror.Storage(err))
		return
	}

	h.view.Redirect(c, middleware.SafeNext(input.Next, "/dashboard"), "Welcome back, "+principal.FullName()+"!")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Unbind(c.Writer, c.Request, msgLoggedOut); err != nil {
		logger.Warnf("failed to clear session: %v", err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) RegisterPage(c *gin.Context) {
	h.view.HTML(c, http.StatusOK, "register.html", gin.H{"Title": "Register"})
}

func (h *AuthHandler) StudentRegisterPage(c *gin.Context) {
	h.view.HTML(c, http.StatusOK, "register_student.html", gin.H{
		"Title": "Student registration",
		"Form":  dto.StudentRegistrationInput{RegistrationCode: c.Query("code")},
	})
}

func (h *AuthHandler) RegisterStudent(c *gin.Context) {
	var input dto.StudentRegistrationInput
	bindErr := c.ShouldBind(&input)

	page := func(status int, fields map[string]string, message string) {
		h.view.HTML(c, status, "register_student.html", gin.H{
			"Title":  "Student registration",
			"Form":   input,
			"Errors": fields,
			"Error":  message,
		})
	}
	if bindErr != nil {
		page(http.StatusBadRequest, validator.FieldErrors(bindErr), "")
		return
	}

	_, err := h.auth.RegisterStudent(c.Request.Context(), input)
	if errors.Is(err, apperror.ErrRoleMismatch) {
		h.view.Redirect(c, "/auth/register/teacher", msgRoleMismatchStudent)
		return
	}
	if err != nil {
		fields, message := registrationFailure(err)
		page(apperror.MapErrorToStatus(err), fields, message)
		return
	}

	h.view.Redirect(c, "/auth/login", msgRegistered)
}

func (h *AuthHandler) TeacherRegisterPage(c *gin.Context) {
	h.view.HTML(c, http.StatusOK, "register_teacher.html", gin.H{
		"Title": "Teacher registration",
		"Form":  dto.TeacherRegistrationInput{RegistrationCode: c.Query("code")},
	})
}

func (h *AuthHandler) RegisterTeacher(c *gin.Context) {
	var input dto.TeacherRegistrationInput
	bindErr := c.ShouldBind(&input)

	page := func(status int, fields map[string]string, message string) {
		h.view.HTML(c, status, "register_teacher.html", gin.H{
			"Title":  "Teacher registration",
			"Form":   input,
			"Errors": fields,
			"Error":  message,
		})
	}
	if bindErr != nil {
		page(http.StatusBadRequest, validator.FieldErrors(bindErr), "")
		return
	}

	_, err := h.auth.RegisterTeacher(c.Request.Context(), input)
	if errors.Is(err, apperror.ErrRoleMismatch) {
		h.view.Redirect(c, "/auth/register/student", msgRoleMismatchTeacher)
		return
	}
	if err != nil {
		fields, message := registrationFailure(err)
		page(apperror.MapErrorToStatus(err), fields, message)
		return
	}

	h.view.Redirect(c, "/auth/login", msgRegistered)
}

// registrationFailure maps a service error onto form fields where one applies.
func registrationFailure(err error) (map[string]string, string) {
	switch {
	case errors.Is(err, apperror.ErrUsernameTaken):
		return map[string]string{"username": "This username is already taken."}, ""
	case errors.Is(err, apperror.ErrEmailTaken):
		return map[string]string{"email": "This email is already registered."}, ""
	case errors.Is(err, apperror.ErrCodeNotFound):
		return map[string]string{"registration_code": "Invalid registration code."}, ""
	case errors.Is(err, apperror.ErrCodeAlreadyUsed):
		return map[string]string{"registration_code": "This registration code has already been used."}, ""
	}
	if apperror.MapErrorToStatus(err) >= http.StatusInternalServerError {
		logger.Error("registration failed", err, nil)
	}
	return map[string]string{}, apperror.PublicMessage(err)
}

func (h *AuthHandler) ChangePasswordPage(c *gin.Context) {
	h.view.HTML(c, http.StatusOK, "change_password.html", gin.H{"Title": "Change password"})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	page := func(status int, fields map[string]string, message string) {
		h.view.HTML(c, status, "change_password.html", gin.H{
			"Title":  "Change password",
			"Errors": fields,
			"Error":  message,
		})
	}

	var input dto.ChangePasswordInput
	if err := c.ShouldBind(&input); err != nil {
		page(http.StatusBadRequest, validator.FieldErrors(err), "")
		return
	}

	err := h.auth.ChangePassword(c.Request.Context(), middleware.CurrentPrincipal(c), input)
	if errors.Is(err, apperror.ErrInvalidCredentials) {
		page(http.StatusBadRequest, map[string]string{"current_password": apperror.PublicMessage(err)}, "")
		return
	}
	if err != nil {
		page(apperror.MapErrorToStatus(err), map[string]string{}, apperror.PublicMessage(err))
		return
	}

	h.view.Redirect(c, "/dashboard", msgPasswordChanged)
}

// IssueToken is the JSON login: same credential check, bearer token out.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ValidationError(c, validator.FieldErrors(err))
		return
	}

	principal, err := h.auth.Login(c.Request.Context(), input, c.ClientIP())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	tok, err := h.auth.IssueToken(principal)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, tok)
}

func (h *AuthHandler) Me(c *gin.Context) {
	principal := middleware.CurrentPrincipal(c)
	if principal == nil {
		response.ResponseError(c, apperror.ErrUnauthorized)
		return
	}
	response.OK(c, dto.NewPrincipalResponse(principal))
}
