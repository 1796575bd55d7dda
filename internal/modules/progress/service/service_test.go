package service_test

import (
	"context"
	"testing"
	"time"

	"anoa.com/schoolhub/internal/entity"
	"anoa.com/schoolhub/internal/modules/progress/dto"
	"anoa.com/schoolhub/internal/modules/progress/repository"
	"anoa.com/schoolhub/internal/modules/progress/service"
	rosterRepo "anoa.com/schoolhub/internal/modules/roster/repository"
	rosterService "anoa.com/schoolhub/internal/modules/roster/service"
	"anoa.com/schoolhub/internal/testutil"
	"anoa.com/schoolhub/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (service.ProgressService, *testutil.Classroom) {
	t.Helper()
	db := testutil.NewDB(t)
	roster := rosterService.NewRosterService(rosterRepo.NewRosterRepository(db))
	return service.NewProgressService(repository.NewProgressRepository(db), roster), testutil.NewClassroom(t, db)
}

func input(studentID uint, term, year, grade string) dto.RecordInput {
	return dto.RecordInput{
		StudentID:    studentID,
		Subject:      "Mathematics",
		Grade:        grade,
		Term:         term,
		AcademicYear: year,
	}
}

func TestCurrentAcademicYear(t *testing.T) {
	assert.Equal(t, "2025-2026", service.CurrentAcademicYear(time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-2025", service.CurrentAcademicYear(time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)))
}

func TestRecordReplacesSameTerm(t *testing.T) {
	svc, class := newService(t)
	ctx := context.Background()
	teacher := class.TeacherPrincipal()

	first, err := svc.Record(ctx, teacher, input(class.Ana.ID, "first_term", "2024-2025", "B"))
	require.NoError(t, err)
	second, err := svc.Record(ctx, teacher, input(class.Ana.ID, "first_term", "2024-2025", "A"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "A", second.Grade)

	_, err = svc.Record(ctx, teacher, input(class.Ana.ID, "second_term", "2024-2025", "A-"))
	require.NoError(t, err)
	_, err = svc.Record(ctx, teacher, input(class.Ana.ID, "first_term", "2025-2026", "B+"))
	require.NoError(t, err)

	reports, err := svc.ForStudent(ctx, testutil.StudentPrincipal(class.Ana))
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "2025-2026", reports[0].AcademicYear)
	require.Len(t, reports[1].Records, 2)
	assert.Equal(t, "first_term", reports[1].Records[0].Term)
	assert.Equal(t, "A", reports[1].Records[0].Grade)

	recent, err := svc.Recent(ctx, teacher)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	require.NotNil(t, recent[0].Student)
	assert.Equal(t, "ana", recent[0].Student.Username)
}

func TestRecordChecksRosterAndFormat(t *testing.T) {
	svc, class := newService(t)
	ctx := context.Background()
	teacher := class.TeacherPrincipal()

	_, err := svc.Record(ctx, teacher, input(class.Citra.ID, "first_term", "2024-2025", "A"))
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = svc.Record(ctx, teacher, input(class.Admin.ID, "first_term", "2024-2025", "A"))
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	for _, year := range []string{"2024", "2024-2026", "24-25", "abcd-efgh"} {
		_, err = svc.Record(ctx, teacher, input(class.Ana.ID, "first_term", year, "A"))
		assert.ErrorIs(t, err, service.ErrAcademicYear, year)
	}

	_, err = svc.Record(ctx, teacher, input(class.Ana.ID, "fourth_term", "2024-2025", "A"))
	assert.ErrorIs(t, err, service.ErrTerm)

	_, err = svc.Record(ctx, class.AdminPrincipal(), input(class.Ana.ID, "first_term", "2024-2025", "A"))
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestStudentsSeeOnlyOwnProgress(t *testing.T) {
	svc, class := newService(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, class.TeacherPrincipal(), input(class.Ana.ID, "first_term", "2024-2025", "A"))
	require.NoError(t, err)

	reports, err := svc.ForStudent(ctx, testutil.StudentPrincipal(class.Bayu))
	require.NoError(t, err)
	assert.Empty(t, reports)

	_, err = svc.ForStudent(ctx, class.TeacherPrincipal())
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	students, err := svc.Students(ctx, class.TeacherPrincipal())
	require.NoError(t, err)
	assert.Len(t, students, 2)
	_, err = svc.Students(ctx, testutil.StudentPrincipal(class.Ana))
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.Equal(t, []string{"first_term", "second_term", "third_term"}, entity.Terms)
}
