package service

import (
	"context"

	"anoa.com/schoolhub/internal/entity"
	announcementService "anoa.com/schoolhub/internal/modules/announcement/service"
	"anoa.com/schoolhub/internal/modules/dashboard/dto"
	"anoa.com/schoolhub/internal/modules/dashboard/repository"
	"anoa.com/schoolhub/pkg/apperror"
)

const latestAnnouncements = 5

type DashboardService interface {
	// For picks the dashboard matching the principal's kind and role.
	For(ctx context.Context, principal *entity.Principal) (*dto.Dashboard, error)
	Stats(ctx context.Context) (*dto.Stats, error)
}

type dashboardService struct {
	repo          repository.DashboardRepository
	announcements announcementService.AnnouncementService
}

func NewDashboardService(repo repository.DashboardRepository, announcements announcementService.AnnouncementService) DashboardService {
	return &dashboardService{
		repo:          repo,
		announcements: announcements,
	}
}

func (s *dashboardService) For(ctx context.Context, principal *entity.Principal) (*dto.Dashboard, error) {
	if principal == nil {
		return nil, apperror.ErrUnauthorized
	}

	switch {
	case principal.IsTeacher():
		students, err := s.repo.StudentsOf(ctx, principal.ID())
		if err != nil {
			return nil, apperror.Storage(err)
		}
		return &dto.Dashboard{Template: "dashboard_teacher.html", Students: students}, nil
	case principal.IsAdmin():
		stats, err := s.Stats(ctx)
		if err != nil {
			return nil, err
		}
		return &dto.Dashboard{Template: "dashboard_admin.html", Stats: stats}, nil
	default:
		latest, err := s.announcements.Latest(ctx, latestAnnouncements)
		if err != nil {
			return nil, err
		}
		return &dto.Dashboard{Template: "dashboard_student.html", Announcements: latest}, nil
	}
}

func (s *dashboardService) Stats(ctx context.Context) (*dto.Stats, error) {
	var stats dto.Stats
	var err error

	if stats.Students, err = s.repo.CountAccountsByRole(ctx, entity.RoleStudent); err != nil {
		return nil, apperror.Storage(err)
	}
	if stats.Admins, err = s.repo.CountAccountsByRole(ctx, entity.RoleAdmin); err != nil {
		return nil, apperror.Storage(err)
	}
	if stats.Teachers, err = s.repo.CountTeachers(ctx); err != nil {
		return nil, apperror.Storage(err)
	}
	if stats.UnusedCodes, err = s.repo.CountUnusedCodes(ctx); err != nil {
		return nil, apperror.Storage(err)
	}
	if stats.Announcements, err = s.announcements.Count(ctx); err != nil {
		return nil, err
	}
	return &stats, nil
}
