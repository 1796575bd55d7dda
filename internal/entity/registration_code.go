package entity

import "time"

// RegistrationCode gates self-registration. UsedBy points into either
// principal table, so it carries no foreign key.
type RegistrationCode struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Role      string    `gorm:"size:20;not null" json:"role"`
	IsUsed    bool      `gorm:"not null;default:false" json:"is_used"`
	UsedBy    *uint     `json:"used_by,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (RegistrationCode) TableName() string {
	return "registration_codes"
}
