package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrincipalAccount(t *testing.T) {
	p := AccountPrincipal(&Account{ID: 7, Username: "ana", Email: "ana@school.id", Role: RoleStudent, FirstName: "Ana", LastName: "Putri"})

	assert.Equal(t, KindAccount, p.Kind())
	assert.Equal(t, uint(7), p.ID())
	assert.Equal(t, "ana", p.Username())
	assert.Equal(t, "Ana Putri", p.FullName())
	assert.Equal(t, RoleStudent, p.Role())
	assert.False(t, p.IsAdmin())
	assert.False(t, p.IsTeacher())
	assert.True(t, p.IsStudent())
	assert.True(t, p.HasRole(RoleAdmin, RoleStudent))
}

func TestPrincipalTeacher(t *testing.T) {
	p := TeacherPrincipal(&Teacher{ID: 7, Username: "budi", FirstName: "Budi"})

	assert.Equal(t, KindTeacher, p.Kind())
	assert.Equal(t, uint(7), p.ID())
	assert.Equal(t, RoleTeacher, p.Role())
	assert.Equal(t, "Budi", p.FullName())
	assert.True(t, p.IsTeacher())
	assert.False(t, p.IsStudent())
	assert.False(t, p.HasRole(RoleAdmin))
}

func TestPrincipalConstructorsRejectNil(t *testing.T) {
	assert.Nil(t, AccountPrincipal(nil))
	assert.Nil(t, TeacherPrincipal(nil))
}

func TestPrincipalKindValid(t *testing.T) {
	assert.True(t, KindAccount.Valid())
	assert.True(t, KindTeacher.Valid())
	assert.False(t, PrincipalKind("").Valid())
	assert.False(t, PrincipalKind("admin").Valid())
}

func TestAssignmentTargets(t *testing.T) {
	teacherID, otherID := uint(3), uint(4)
	a := &Assignment{TeacherID: teacherID, ClassName: "10A"}

	assert.True(t, a.Targets(&Account{TeacherID: &teacherID, ClassName: "10A"}))
	assert.False(t, a.Targets(&Account{TeacherID: &teacherID, ClassName: "10B"}))
	assert.False(t, a.Targets(&Account{TeacherID: &otherID, ClassName: "10A"}))
	assert.False(t, a.Targets(&Account{ClassName: "10A"}))
	assert.False(t, a.Targets(nil))

	everyone := &Assignment{TeacherID: teacherID}
	assert.True(t, everyone.Targets(&Account{TeacherID: &teacherID, ClassName: "12C"}))
}

func TestAccountTaughtBy(t *testing.T) {
	teacherID := uint(4)
	a := &Account{Role: RoleStudent, TeacherID: &teacherID}
	assert.True(t, a.IsStudent())
	assert.True(t, a.TaughtBy(4))
	assert.False(t, a.TaughtBy(5))

	a.TeacherID = nil
	assert.False(t, a.TaughtBy(4))
	assert.False(t, (&Account{Role: RoleAdmin}).IsStudent())
}
