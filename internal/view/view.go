// Package view renders HTML pages with the data every layout needs.
package view

import (
	"net/http"

	"anoa.com/schoolhub/internal/middleware"
	"anoa.com/schoolhub/internal/modules/auth/session"
	"anoa.com/schoolhub/pkg/apperror"
	"anoa.com/schoolhub/pkg/logger"
	"github.com/gin-gonic/gin"
)

type Renderer struct {
	sessions *session.Manager
}

func NewRenderer(sessions *session.Manager) *Renderer {
	return &Renderer{sessions: sessions}
}

// HTML renders template name with the current principal, pending flashes and
// an empty error map filled in when the caller did not set them.
func (r *Renderer) HTML(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["CurrentUser"] = middleware.CurrentPrincipal(c)
	data["Flashes"] = r.sessions.Flashes(c.Writer, c.Request)
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = map[string]string{}
	}
	c.HTML(status, name, data)
}

// Redirect queues flashes and answers 303 See Other.
func (r *Renderer) Redirect(c *gin.Context, location string, flashes ...string) {
	for _, f := range flashes {
		if err := r.sessions.AddFlash(c.Writer, c.Request, f); err != nil {
			logger.Warnf("failed to save flash: %v", err)
		}
	}
	c.Redirect(http.StatusSeeOther, location)
}

// Error renders the error page for err. Server side failures are logged and
// shown as a generic message.
func (r *Renderer) Error(c *gin.Context, err error) {
	status := apperror.MapErrorToStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", err, map[string]any{"path": c.Request.URL.Path})
	}
	r.HTML(c, status, "error.html", gin.H{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": apperror.PublicMessage(err),
	})
}
