package handler

import (
	"log"
	"net/http"
	"strconv"

	"anoa.com/schoolhub/internal/middleware"
	"anoa.com/schoolhub/internal/modules/announcement/dto"
	announcementService "anoa.com/schoolhub/internal/modules/announcement/service"
	"anoa.com/schoolhub/internal/view"
	"anoa.com/schoolhub/pkg/apperror"
	"anoa.com/schoolhub/pkg/response"
	"anoa.com/schoolhub/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

type AnnouncementHandler struct {
	service     announcementService.AnnouncementService
	view        *view.Renderer
	redisClient *redis.Client
	upgrader    websocket.Upgrader
}

func NewAnnouncementHandler(service announcementService.AnnouncementService, renderer *view.Renderer, redisClient *redis.Client) *AnnouncementHandler {
	return &AnnouncementHandler{
		service:     service,
		view:        renderer,
		redisClient: redisClient,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// attachment opens the optional "attachment" upload. The returned closer is never nil.
func attachment(c *gin.Context) (*dto.Attachment, func(), error) {
	fileHeader, err := c.FormFile("attachment")
	if err != nil || fileHeader == nil {
		return nil, func() {}, nil
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &dto.Attachment{Reader: file, FileName: fileHeader.Filename}, func() { file.Close() }, nil
}

// HTML pages

func (h *AnnouncementHandler) Home(c *gin.Context) {
	items, err := h.service.Latest(c.Request.Context(), 5)
	if err != nil {
		h.view.Error(c, err)
		return
	}
	h.view.HTML(c, http.StatusOK, "index.html", gin.H{"Announcements": items})
}

func (h *AnnouncementHandler) NewsPage(c *gin.Context) {
	query := c.Query("q")
	if query != "" {
		items, err := h.service.Search(c.Request.Context(), query)
		if err != nil {
			h.view.Error(c, err)
			return
		}
		h.view.HTML(c, http.StatusOK, "news.html", gin.H{"Title": "News", "Announcements": items, "Query": query})
		return
	}

	var filter dto.ListFilter
	_ = c.ShouldBindQuery(&filter)
	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.view.Error(c, err)
		return
	}

	data := gin.H{"Title": "News", "Announcements": page.Data, "Query": ""}
	if page.Meta.CurrentPage < page.Meta.TotalPages {
		data["NextPage"] = page.Meta.CurrentPage + 1
	}
	h.view.HTML(c, http.StatusOK, "news.html", data)
}

func (h *AnnouncementHandler) NewsDetail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.view.Error(c, apperror.ErrNotFound)
		return
	}
	a, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.view.Error(c, err)
		return
	}
	h.view.HTML(c, http.StatusOK, "news_detail.html", gin.H{
		"Title":        a.Title,
		"Announcement": a,
		"CanEdit":      h.service.CanEdit(middleware.CurrentPrincipal(c), a),
	})
}

func (h *AnnouncementHandler) NewPage(c *gin.Context) {
	h.view.HTML(c, http.StatusOK, "announcement_form.html", gin.H{
		"Title": "New announcement",
		"Form":  dto.AnnouncementInput{},
	})
}

func (h *AnnouncementHandler) Create(c *gin.Context) {
	var input dto.AnnouncementInput
	if err := c.ShouldBind(&input); err != nil {
		h.view.HTML(c, http.StatusBadRequest, "announcement_form.html", gin.H{
			"Title":  "New announcement",
			"Form":   input,
			"Errors": validator.FieldErrors(err),
		})
		return
	}

	file, closeFile, err := attachment(c)
	if err != nil {
		h.view.Error(c, apperror.ErrBadRequest)
		return
	}
	defer closeFile()

	a, err := h.service.Create(c.Request.Context(), middleware.CurrentPrincipal(c), input, file)
	if err != nil {
		h.formError(c, 0, input, err)
		return
	}
	h.view.Redirect(c, "/news/"+strconv.FormatUint(uint64(a.ID), 10), "Announcement published.")
}

func (h *AnnouncementHandler) EditPage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.view.Error(c, apperror.ErrNotFound)
		return
	}
	a, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.view.Error(c, err)
		return
	}
	if !h.service.CanEdit(middleware.CurrentPrincipal(c), a) {
		h.view.Error(c, apperror.ErrForbidden)
		return
	}
	h.view.HTML(c, http.StatusOK, "announcement_form.html", gin.H{
		"Title":          "Edit announcement",
		"AnnouncementID": a.ID,
		"Form":           dto.AnnouncementInput{Title: a.Title, Content: a.Content},
	})
}

func (h *AnnouncementHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.view.Error(c, apperror.ErrNotFound)
		return
	}

	var input dto.AnnouncementInput
	if err := c.ShouldBind(&input); err != nil {
		h.view.HTML(c, http.StatusBadRequest, "announcement_form.html", gin.H{
			"Title":          "Edit announcement",
			"AnnouncementID": id,
			"Form":           input,
			"Errors":         validator.FieldErrors(err),
		})
		return
	}

	file, closeFile, err := attachment(c)
	if err != nil {
		h.view.Error(c, apperror.ErrBadRequest)
		return
	}
	defer closeFile()

	if _, err := h.service.Update(c.Request.Context(), middleware.CurrentPrincipal(c), id, input, file); err != nil {
		h.formError(c, id, input, err)
		return
	}
	h.view.Redirect(c, "/news/"+c.Param("id"), "Announcement updated.")
}

func (h *AnnouncementHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.view.Error(c, apperror.ErrNotFound)
		return
	}
	if err := h.service.Delete(c.Request.Context(), middleware.CurrentPrincipal(c), id); err != nil {
		h.view.Error(c, err)
		return
	}
	h.view.Redirect(c, "/news", "Announcement deleted.")
}

func (h *AnnouncementHandler) formError(c *gin.Context, id uint, input dto.AnnouncementInput, err error) {
	status := apperror.MapErrorToStatus(err)
	if status == http.StatusForbidden || status == http.StatusNotFound {
		h.view.Error(c, err)
		return
	}
	data := gin.H{
		"Title": "Announcement",
		"Form":  input,
		"Error": apperror.PublicMessage(err),
	}
	if id != 0 {
		data["AnnouncementID"] = id
	}
	h.view.HTML(c, status, "announcement_form.html", data)
}

// JSON API

func (h *AnnouncementHandler) List(c *gin.Context) {
	var filter dto.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ValidationError(c, validator.FieldErrors(err))
		return
	}
	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *AnnouncementHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.ResponseError(c, apperror.ErrNotFound)
		return
	}
	a, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.OK(c, dto.NewAnnouncementResponse(a))
}

func (h *AnnouncementHandler) CreateJSON(c *gin.Context) {
	var input dto.AnnouncementInput
	if err := c.ShouldBind(&input); err != nil {
		response.ValidationError(c, validator.FieldErrors(err))
		return
	}

	file, closeFile, err := attachment(c)
	if err != nil {
		response.ResponseError(c, apperror.ErrBadRequest)
		return
	}
	defer closeFile()

	a, err := h.service.Create(c.Request.Context(), middleware.CurrentPrincipal(c), input, file)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Created(c, dto.NewAnnouncementResponse(a))
}

func (h *AnnouncementHandler) DeleteJSON(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.ResponseError(c, apperror.ErrNotFound)
		return
	}
	if err := h.service.Delete(c.Request.Context(), middleware.CurrentPrincipal(c), id); err != nil {
		response.ResponseError(c, err)
		return
	}
	response.Message(c, "announcement deleted")
}

func (h *AnnouncementHandler) Search(c *gin.Context) {
	items, err := h.service.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	data := make([]dto.AnnouncementResponse, 0, len(items))
	for i := range items {
		data = append(data, dto.NewAnnouncementResponse(&items[i]))
	}
	response.OK(c, data)
}

// HandleWebSocket streams newly published announcements to the client.
func (h *AnnouncementHandler) HandleWebSocket(c *gin.Context) {
	if h.redisClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live updates are not available"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	pubsub := h.redisClient.Subscribe(ctx, announcementService.Channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		log.Printf("Failed to subscribe to redis channel: %v", err)
		return
	}
	ch := pubsub.Channel()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				log.Printf("Failed to write message to websocket: %v", err)
				return
			}
		case <-clientClosed:
			return
		case <-ctx.Done():
			return
		}
	}
}
