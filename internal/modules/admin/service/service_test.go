package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"anoa.com/schoolhub/internal/entity"
	"anoa.com/schoolhub/internal/modules/admin/dto"
	"anoa.com/schoolhub/internal/modules/admin/repository"
	"anoa.com/schoolhub/internal/modules/admin/service"
	"anoa.com/schoolhub/internal/testutil"
	"anoa.com/schoolhub/pkg/apperror"
	"anoa.com/schoolhub/pkg/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T) (service.AdminService, *gorm.DB) {
	t.Helper()
	db := testutil.NewSeededDB(t)
	return service.NewAdminService(repository.NewAdminRepository(db)), db
}

func TestGenerateCode(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	code, err := svc.GenerateCode(ctx, dto.GenerateCodeInput{Role: entity.RoleTeacher})
	require.NoError(t, err)
	assert.Len(t, code.Code, 8)
	for _, r := range code.Code {
		assert.True(t, strings.ContainsRune(password.CodeCharset, r))
	}
	assert.Equal(t, entity.RoleTeacher, code.Role)
	assert.False(t, code.IsUsed)

	codes, err := svc.ListCodes(ctx)
	require.NoError(t, err)
	require.Len(t, codes, 4)
	assert.Equal(t, code.Code, codes[0].Code, "newest first")

	_, err = svc.GenerateCode(ctx, dto.GenerateCodeInput{Role: "janitor"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestDeleteCode(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	code, err := svc.GenerateCode(ctx, dto.GenerateCodeInput{Role: entity.RoleStudent})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteCode(ctx, code.ID))
	assert.ErrorIs(t, svc.DeleteCode(ctx, code.ID), apperror.ErrNotFound)

	var used entity.RegistrationCode
	require.NoError(t, db.Where("code = ?", "STUDENT2024").First(&used).Error)
	require.NoError(t, db.Model(&used).Update("is_used", true).Error)

	assert.ErrorIs(t, svc.DeleteCode(ctx, used.ID), apperror.ErrCodeAlreadyUsed)

	var count int64
	db.Model(&entity.RegistrationCode{}).Where("id = ?", used.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestResetPassword(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	hash, err := password.Hash("oldpassword")
	require.NoError(t, err)
	teacher := entity.Teacher{Username: "mrsmith", Email: "smith@school.local", PasswordHash: hash}
	require.NoError(t, db.Create(&teacher).Error)

	reset, err := svc.ResetPassword(ctx, entity.KindTeacher, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, "mrsmith", reset.Username)
	assert.Len(t, reset.Password, 8)

	var reloaded entity.Teacher
	require.NoError(t, db.First(&reloaded, teacher.ID).Error)
	assert.True(t, password.Verify(reloaded.PasswordHash, reset.Password))
	assert.False(t, password.Verify(reloaded.PasswordHash, "oldpassword"))

	_, err = svc.ResetPassword(ctx, entity.KindAccount, 999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = svc.ResetPassword(ctx, "robot", teacher.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	admin := entity.Account{Username: "admin", Email: "admin@school.local", PasswordHash: "x", Role: entity.RoleAdmin}
	teacher := entity.Teacher{Username: "mrsmith", Email: "smith@school.local", PasswordHash: "x"}
	require.NoError(t, db.Create(&admin).Error)
	require.NoError(t, db.Create(&teacher).Error)
	student := entity.Account{Username: "pupil", Email: "pupil@school.local", PasswordHash: "x", Role: entity.RoleStudent, TeacherID: &teacher.ID}
	require.NoError(t, db.Create(&student).Error)

	actor := entity.AccountPrincipal(&admin)

	err := svc.DeleteUser(ctx, actor, entity.KindAccount, admin.ID)
	assert.ErrorIs(t, err, service.ErrDeleteSelf)

	// A teacher sharing the admin's numeric id is a different principal.
	require.NoError(t, svc.DeleteUser(ctx, actor, entity.KindTeacher, teacher.ID))

	var reloaded entity.Account
	require.NoError(t, db.First(&reloaded, student.ID).Error)
	assert.Nil(t, reloaded.TeacherID)

	require.NoError(t, svc.DeleteUser(ctx, actor, entity.KindAccount, student.ID))
	assert.ErrorIs(t, svc.DeleteUser(ctx, actor, entity.KindAccount, student.ID), apperror.ErrNotFound)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users.Accounts, 1)
	assert.Empty(t, users.Teachers)
}

func TestDeleteUserReleasesIdentityClaims(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	teacher := entity.Teacher{Username: "mrsmith", Email: "smith@school.local", PasswordHash: "x"}
	require.NoError(t, db.Create(&teacher).Error)
	claims := entity.ClaimsFor(entity.KindTeacher, teacher.Username, teacher.Email)
	require.NoError(t, db.Create(&claims).Error)
	other := entity.ClaimsFor(entity.KindAccount, "keep", "keep@school.local")
	require.NoError(t, db.Create(&other).Error)

	require.NoError(t, svc.DeleteUser(ctx, nil, entity.KindTeacher, teacher.ID))

	var keys []string
	require.NoError(t, db.Model(&entity.IdentityClaim{}).Order("claim_key").Pluck("claim_key", &keys).Error)
	assert.Equal(t, []string{"email:keep@school.local", "username:keep"}, keys)
}

func TestAssignTeacher(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	class := testutil.NewClassroom(t, db)

	account, err := svc.AssignTeacher(ctx, class.Dewi.ID, &class.OtherTeacher.ID)
	require.NoError(t, err)
	assert.True(t, account.TaughtBy(class.OtherTeacher.ID))

	var reloaded entity.Account
	require.NoError(t, db.First(&reloaded, class.Dewi.ID).Error)
	require.NotNil(t, reloaded.TeacherID)
	assert.Equal(t, class.OtherTeacher.ID, *reloaded.TeacherID)

	_, err = svc.AssignTeacher(ctx, class.Dewi.ID, nil)
	require.NoError(t, err)
	require.NoError(t, db.First(&reloaded, class.Dewi.ID).Error)
	assert.Nil(t, reloaded.TeacherID)

	missing := uint(9999)
	_, err = svc.AssignTeacher(ctx, class.Dewi.ID, &missing)
	assert.ErrorIs(t, err, service.ErrNoSuchTeacher)
	_, err = svc.AssignTeacher(ctx, class.Admin.ID, &class.Teacher.ID)
	assert.ErrorIs(t, err, service.ErrNotAStudent)
	_, err = svc.AssignTeacher(ctx, missing, &class.Teacher.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteUserRemovesClassroomRecords(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	class := testutil.NewClassroom(t, db)

	assignment := entity.Assignment{TeacherID: class.Teacher.ID, Title: "Fractions", DueDate: time.Now()}
	require.NoError(t, db.Create(&assignment).Error)
	for _, student := range []*entity.Account{class.Ana, class.Bayu} {
		require.NoError(t, db.Create(&entity.AssignmentSubmission{
			AssignmentID: assignment.ID, StudentID: student.ID, FileURL: "/uploads/x", Status: entity.SubmissionSubmitted, SubmittedAt: time.Now(),
		}).Error)
	}
	require.NoError(t, db.Create(&entity.AttendanceRecord{StudentID: class.Ana.ID, Date: entity.SchoolDay(time.Now()), Status: entity.AttendancePresent, MarkedBy: class.Teacher.ID}).Error)
	require.NoError(t, db.Create(&entity.ProgressRecord{StudentID: class.Ana.ID, TeacherID: class.Teacher.ID, Subject: "Mathematics", Term: "first_term", AcademicYear: "2024-2025", Grade: "A"}).Error)
	require.NoError(t, db.Create(&entity.TransferRequest{Number: "TC-1", StudentID: class.Ana.ID, Reason: "moving", Status: entity.TransferPending}).Error)

	require.NoError(t, svc.DeleteUser(ctx, class.AdminPrincipal(), entity.KindAccount, class.Ana.ID))
	for _, model := range []any{&entity.AttendanceRecord{}, &entity.ProgressRecord{}, &entity.TransferRequest{}} {
		var count int64
		require.NoError(t, db.Model(model).Where("student_id = ?", class.Ana.ID).Count(&count).Error)
		assert.Zero(t, count)
	}
	var submissions int64
	require.NoError(t, db.Model(&entity.AssignmentSubmission{}).Count(&submissions).Error)
	assert.Equal(t, int64(1), submissions, "Bayu's hand-in stays")

	require.NoError(t, svc.DeleteUser(ctx, class.AdminPrincipal(), entity.KindTeacher, class.Teacher.ID))
	var assignments int64
	require.NoError(t, db.Model(&entity.Assignment{}).Count(&assignments).Error)
	require.NoError(t, db.Model(&entity.AssignmentSubmission{}).Count(&submissions).Error)
	assert.Zero(t, assignments)
	assert.Zero(t, submissions)
}
