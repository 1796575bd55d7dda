package testutil

import (
	"testing"

	"anoa.com/schoolhub/internal/entity"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Classroom is a small school: Teacher has Ana (10A) and Bayu (10B),
// OtherTeacher has Citra (10A), Dewi has no teacher yet.
type Classroom struct {
	Admin        *entity.Account
	Teacher      *entity.Teacher
	OtherTeacher *entity.Teacher
	Ana          *entity.Account
	Bayu         *entity.Account
	Citra        *entity.Account
	Dewi         *entity.Account
}

func NewClassroom(t testing.TB, db *gorm.DB) *Classroom {
	t.Helper()

	c := &Classroom{
		Admin:        &entity.Account{Username: "admin", Email: "admin@school.id", PasswordHash: "x", Role: entity.RoleAdmin},
		Teacher:      &entity.Teacher{Username: "budi", Email: "budi@school.id", PasswordHash: "x", FirstName: "Budi", LastName: "Santoso", Subject: "Mathematics"},
		OtherTeacher: &entity.Teacher{Username: "sari", Email: "sari@school.id", PasswordHash: "x", FirstName: "Sari", Subject: "Biology"},
	}
	require.NoError(t, db.Create(c.Admin).Error)
	require.NoError(t, db.Create(c.Teacher).Error)
	require.NoError(t, db.Create(c.OtherTeacher).Error)

	student := func(username, class string, teacherID *uint) *entity.Account {
		a := &entity.Account{
			Username:     username,
			Email:        username + "@school.id",
			PasswordHash: "x",
			Role:         entity.RoleStudent,
			FirstName:    username,
			ClassName:    class,
			TeacherID:    teacherID,
		}
		require.NoError(t, db.Create(a).Error)
		return a
	}
	c.Ana = student("ana", "10A", &c.Teacher.ID)
	c.Bayu = student("bayu", "10B", &c.Teacher.ID)
	c.Citra = student("citra", "10A", &c.OtherTeacher.ID)
	c.Dewi = student("dewi", "10A", nil)
	return c
}

func (c *Classroom) AdminPrincipal() *entity.Principal {
	return entity.AccountPrincipal(c.Admin)
}

func (c *Classroom) TeacherPrincipal() *entity.Principal {
	return entity.TeacherPrincipal(c.Teacher)
}

func (c *Classroom) OtherTeacherPrincipal() *entity.Principal {
	return entity.TeacherPrincipal(c.OtherTeacher)
}

func StudentPrincipal(a *entity.Account) *entity.Principal {
	return entity.AccountPrincipal(a)
}
