package dto

import "anoa.com/schoolhub/internal/entity"

type LoginInput struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
	Next     string `form:"next" json:"-"`
}

type StudentRegistrationInput struct {
	Username         string `form:"username" binding:"required,min=4,max=20"`
	Email            string `form:"email" binding:"required,email"`
	Password         string `form:"password" binding:"required,min=6"`
	ConfirmPassword  string `form:"confirm_password" binding:"required,eqfield=Password"`
	FirstName        string `form:"first_name" binding:"required,max=50"`
	LastName         string `form:"last_name" binding:"required,max=50"`
	ClassName        string `form:"class_name" binding:"required,max=20"`
	RegistrationCode string `form:"registration_code" binding:"required,max=20"`
}

type TeacherRegistrationInput struct {
	Username         string `form:"username" binding:"required,min=4,max=20"`
	Email            string `form:"email" binding:"required,email"`
	Password         string `form:"password" binding:"required,min=6"`
	ConfirmPassword  string `form:"confirm_password" binding:"required,eqfield=Password"`
	FirstName        string `form:"first_name" binding:"required,max=50"`
	LastName         string `form:"last_name" binding:"required,max=50"`
	Subject          string `form:"subject" binding:"required,max=100"`
	Qualification    string `form:"qualification" binding:"required,max=200"`
	RegistrationCode string `form:"registration_code" binding:"required,max=20"`
}

type ChangePasswordInput struct {
	CurrentPassword string `form:"current_password" binding:"required"`
	NewPassword     string `form:"new_password" binding:"required,min=6"`
	ConfirmPassword string `form:"confirm_password" binding:"required,eqfield=NewPassword"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
}

type PrincipalResponse struct {
	Kind     entity.PrincipalKind `json:"kind"`
	ID       uint                 `json:"id"`
	Username string               `json:"username"`
	Email    string               `json:"email"`
	Role     string               `json:"role"`
	FullName string               `json:"full_name"`
}

func NewPrincipalResponse(p *entity.Principal) PrincipalResponse {
	return PrincipalResponse{
		Kind:     p.Kind(),
		ID:       p.ID(),
		Username: p.Username(),
		Email:    p.Email(),
		Role:     p.Role(),
		FullName: p.FullName(),
	}
}
