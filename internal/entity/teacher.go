package entity

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Teacher lives in its own table and id space; ids may collide with Account ids.
type Teacher struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Username         string    `gorm:"size:80;uniqueIndex;not null" json:"username"`
	Email            string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash     string    `gorm:"size:255;not null" json:"-"`
	FirstName        string    `gorm:"size:50" json:"first_name"`
	LastName         string    `gorm:"size:50" json:"last_name"`
	Subject          string    `gorm:"size:100" json:"subject"`
	Qualification    string    `gorm:"size:200" json:"qualification"`
	RegistrationCode string    `gorm:"size:20" json:"registration_code,omitempty"`
	Role             string    `gorm:"size:20;not null;default:teacher" json:"role"`
	Students         []Account `gorm:"foreignKey:TeacherID;constraint:OnDelete:SET NULL" json:"students,omitempty"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Teacher) TableName() string {
	return "teachers"
}

func (t *Teacher) BeforeSave(tx *gorm.DB) error {
	t.Role = RoleTeacher
	return nil
}

func (t *Teacher) FullName() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}
