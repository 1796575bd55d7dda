package dto

import (
	"io"
	"time"

	"anoa.com/schoolhub/internal/entity"
)

type AnnouncementInput struct {
	Title   string `form:"title" json:"title" binding:"required,max=200"`
	Content string `form:"content" json:"content" binding:"required"`
}

// Attachment is an uploaded file handed to the storage collaborator.
type Attachment struct {
	Reader   io.Reader
	FileName string
}

type AnnouncementResponse struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	AttachmentURL *string   `json:"attachment_url,omitempty"`
	AuthorName    string    `json:"author_name"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewAnnouncementResponse(a *entity.Announcement) AnnouncementResponse {
	return AnnouncementResponse{
		ID:            a.ID,
		Title:         a.Title,
		Content:       a.Content,
		AttachmentURL: a.AttachmentURL,
		AuthorName:    a.AuthorName,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
}

type PaginatedAnnouncementResponse struct {
	Data []AnnouncementResponse `json:"data"`
	Meta PaginationMeta         `json:"meta"`
}

type ListFilter struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=50"`
}
