package dto

import "anoa.com/schoolhub/internal/entity"

type Stats struct {
	Students      int64 `json:"students"`
	Admins        int64 `json:"admins"`
	Teachers      int64 `json:"teachers"`
	UnusedCodes   int64 `json:"unused_codes"`
	Announcements int64 `json:"announcements"`
}

// Dashboard holds whatever the principal's landing page shows. Only the part
// matching the principal is filled.
type Dashboard struct {
	Template      string                `json:"-"`
	Stats         *Stats                `json:"stats,omitempty"`
	Students      []entity.Account      `json:"students,omitempty"`
	Announcements []entity.Announcement `json:"announcements,omitempty"`
}
