package service_test

import (
	"context"
	"testing"

	"anoa.com/schoolhub/internal/modules/roster/repository"
	"anoa.com/schoolhub/internal/modules/roster/service"
	"anoa.com/schoolhub/internal/testutil"
	"anoa.com/schoolhub/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentsListsOnlyOwnRoster(t *testing.T) {
	db := testutil.NewDB(t)
	c := testutil.NewClassroom(t, db)
	svc := service.NewRosterService(repository.NewRosterRepository(db))
	ctx := context.Background()

	students, err := svc.Students(ctx, c.TeacherPrincipal())
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "ana", students[0].Username)
	assert.Equal(t, "bayu", students[1].Username)

	_, err = svc.Students(ctx, testutil.StudentPrincipal(c.Ana))
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = svc.Students(ctx, c.AdminPrincipal())
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestStudentOf(t *testing.T) {
	db := testutil.NewDB(t)
	c := testutil.NewClassroom(t, db)
	svc := service.NewRosterService(repository.NewRosterRepository(db))
	ctx := context.Background()

	s, err := svc.StudentOf(ctx, c.TeacherPrincipal(), c.Ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana", s.Username)

	_, err = svc.StudentOf(ctx, c.TeacherPrincipal(), c.Citra.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = svc.StudentOf(ctx, c.TeacherPrincipal(), c.Dewi.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = svc.StudentOf(ctx, c.TeacherPrincipal(), c.Admin.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = svc.StudentOf(ctx, testutil.StudentPrincipal(c.Bayu), c.Ana.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	s, err = svc.StudentOf(ctx, c.AdminPrincipal(), c.Citra.ID)
	require.NoError(t, err)
	assert.Equal(t, "citra", s.Username)
}

func TestStudentAndTeacherOf(t *testing.T) {
	db := testutil.NewDB(t)
	c := testutil.NewClassroom(t, db)
	svc := service.NewRosterService(repository.NewRosterRepository(db))
	ctx := context.Background()

	ana, err := svc.Student(ctx, testutil.StudentPrincipal(c.Ana))
	require.NoError(t, err)
	teacher, err := svc.TeacherOf(ctx, ana)
	require.NoError(t, err)
	require.NotNil(t, teacher)
	assert.Equal(t, "budi", teacher.Username)

	teacher, err = svc.TeacherOf(ctx, c.Dewi)
	require.NoError(t, err)
	assert.Nil(t, teacher)

	_, err = svc.Student(ctx, c.TeacherPrincipal())
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = svc.Student(ctx, c.AdminPrincipal())
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}
