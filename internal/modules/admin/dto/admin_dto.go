package dto

import "anoa.com/schoolhub/internal/entity"

type GenerateCodeInput struct {
	Role string `json:"role" form:"role" binding:"required,oneof=student teacher admin"`
}

type UserList struct {
	Accounts []entity.Account `json:"accounts"`
	Teachers []entity.Teacher `json:"teachers"`
}

// PasswordReset carries a freshly generated password. It is shown once and
// never stored in clear text.
type PasswordReset struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AssignTeacherInput carries the teacher id from the users page. Empty
// unassigns the student.
type AssignTeacherInput struct {
	TeacherID string `form:"teacher_id" json:"teacher_id" binding:"omitempty,numeric"`
}
