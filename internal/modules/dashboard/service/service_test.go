package service_test

import (
	"context"
	"testing"

	"anoa.com/schoolhub/internal/entity"
	announcementRepository "anoa.com/schoolhub/internal/modules/announcement/repository"
	announcementService "anoa.com/schoolhub/internal/modules/announcement/service"
	"anoa.com/schoolhub/internal/modules/dashboard/repository"
	"anoa.com/schoolhub/internal/modules/dashboard/service"
	"anoa.com/schoolhub/internal/testutil"
	"anoa.com/schoolhub/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type world struct {
	db      *gorm.DB
	admin   *entity.Account
	student *entity.Account
	teacher *entity.Teacher
}

func newWorld(t *testing.T) (service.DashboardService, *world) {
	t.Helper()
	db := testutil.NewSeededDB(t)

	w := &world{db: db}
	w.teacher = &entity.Teacher{Username: "budi", Email: "budi@school.local", PasswordHash: "x"}
	require.NoError(t, db.Create(w.teacher).Error)
	w.admin = &entity.Account{Username: "admin", Email: "admin@school.local", PasswordHash: "x", Role: entity.RoleAdmin}
	require.NoError(t, db.Create(w.admin).Error)
	w.student = &entity.Account{Username: "ana", Email: "ana@school.local", PasswordHash: "x", Role: entity.RoleStudent, TeacherID: &w.teacher.ID}
	require.NoError(t, db.Create(w.student).Error)
	other := &entity.Account{Username: "dewi", Email: "dewi@school.local", PasswordHash: "x", Role: entity.RoleStudent}
	require.NoError(t, db.Create(other).Error)

	require.NoError(t, db.Create(&entity.Announcement{Title: "Sports day", Content: "Friday", AuthorKind: entity.KindTeacher, AuthorID: w.teacher.ID}).Error)

	announcements := announcementService.NewAnnouncementService(announcementRepository.NewAnnouncementRepository(db), nil, nil, nil)
	return service.NewDashboardService(repository.NewDashboardRepository(db), announcements), w
}

func TestTeacherDashboardListsOwnStudents(t *testing.T) {
	svc, w := newWorld(t)

	d, err := svc.For(context.Background(), entity.TeacherPrincipal(w.teacher))
	require.NoError(t, err)
	assert.Equal(t, "dashboard_teacher.html", d.Template)
	require.Len(t, d.Students, 1)
	assert.Equal(t, "ana", d.Students[0].Username)
	assert.Nil(t, d.Stats)
}

func TestAdminDashboardCounts(t *testing.T) {
	svc, w := newWorld(t)

	d, err := svc.For(context.Background(), entity.AccountPrincipal(w.admin))
	require.NoError(t, err)
	assert.Equal(t, "dashboard_admin.html", d.Template)
	require.NotNil(t, d.Stats)
	assert.EqualValues(t, 2, d.Stats.Students)
	assert.EqualValues(t, 1, d.Stats.Admins)
	assert.EqualValues(t, 1, d.Stats.Teachers)
	assert.EqualValues(t, 3, d.Stats.UnusedCodes)
	assert.EqualValues(t, 1, d.Stats.Announcements)
}

func TestStudentDashboardShowsAnnouncements(t *testing.T) {
	svc, w := newWorld(t)

	d, err := svc.For(context.Background(), entity.AccountPrincipal(w.student))
	require.NoError(t, err)
	assert.Equal(t, "dashboard_student.html", d.Template)
	require.Len(t, d.Announcements, 1)
	assert.Equal(t, "Sports day", d.Announcements[0].Title)
}

func TestDashboardRequiresPrincipal(t *testing.T) {
	svc, _ := newWorld(t)
	_, err := svc.For(context.Background(), nil)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}
