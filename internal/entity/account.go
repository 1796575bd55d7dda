package entity

import (
	"strings"
	"time"
)

const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// Account is the generic principal: admins and students.
type Account struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Username         string    `gorm:"size:80;uniqueIndex;not null" json:"username"`
	Email            string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash     string    `gorm:"size:255;not null" json:"-"`
	Role             string    `gorm:"size:20;not null;default:student" json:"role"`
	FirstName        string    `gorm:"size:50" json:"first_name"`
	LastName         string    `gorm:"size:50" json:"last_name"`
	ClassName        string    `gorm:"size:20" json:"class_name"`
	RegistrationCode string    `gorm:"size:20" json:"registration_code,omitempty"`
	TeacherID        *uint     `gorm:"index" json:"teacher_id,omitempty"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Account) TableName() string {
	return "accounts"
}

func (a *Account) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a *Account) IsStudent() bool {
	return a.Role == RoleStudent
}

// TaughtBy reports whether teacherID is the account's assigned teacher.
func (a *Account) TaughtBy(teacherID uint) bool {
	return a.TeacherID != nil && *a.TeacherID == teacherID
}
