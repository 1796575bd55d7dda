package entity

import "time"

type Announcement struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	Title         string        `gorm:"size:200;not null" json:"title"`
	Content       string        `gorm:"type:text;not null" json:"content"`
	AttachmentURL *string       `gorm:"type:text" json:"attachment_url,omitempty"`
	AuthorKind    PrincipalKind `gorm:"size:10;not null" json:"author_kind"`
	AuthorID      uint          `gorm:"not null" json:"author_id"`
	AuthorName    string        `gorm:"size:120" json:"author_name"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Announcement) TableName() string {
	return "announcements"
}
