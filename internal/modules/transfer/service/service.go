package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"anoa.com/schoolhub/internal/entity"
	rosterService "anoa.com/schoolhub/internal/modules/roster/service"
	"anoa.com/schoolhub/internal/modules/transfer/dto"
	"anoa.com/schoolhub/internal/modules/transfer/repository"
	"anoa.com/schoolhub/pkg/apperror"
	"anoa.com/schoolhub/pkg/logger"
	"anoa.com/schoolhub/pkg/password"
	"anoa.com/schoolhub/pkg/storage"
	"gorm.io/gorm"
)

// CertificateCategory holds issued transfer certificates.
const CertificateCategory = "tc"

const numberCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

var (
	ErrAlreadyPending  = apperror.New(http.StatusConflict, "You already have a transfer request waiting for review.", apperror.ErrBadRequest)
	ErrAlreadyReviewed = apperror.New(http.StatusConflict, "This request has already been reviewed.", apperror.ErrBadRequest)
	ErrNoteRequired    = apperror.New(http.StatusBadRequest, "Please give a reason for the rejection.", apperror.ErrInvalidInput)
)

type TransferService interface {
	Request(ctx context.Context, student *entity.Principal, input dto.RequestInput) (*entity.TransferRequest, error)
	Mine(ctx context.Context, student *entity.Principal) ([]entity.TransferRequest, error)

	// Queue lists what the reviewer may decide on: every request for an
	// admin, the teacher's own students for a teacher.
	Queue(ctx context.Context, reviewer *entity.Principal) ([]entity.TransferRequest, error)
	Approve(ctx context.Context, reviewer *entity.Principal, id uint, input dto.ReviewInput, certificate *dto.Upload) (*entity.TransferRequest, error)
	Reject(ctx context.Context, reviewer *entity.Principal, id uint, input dto.ReviewInput) (*entity.TransferRequest, error)
}

type transferService struct {
	repo    repository.TransferRepository
	roster  rosterService.RosterService
	storage storage.FileStorage
	now     func() time.Time
}

func NewTransferService(repo repository.TransferRepository, roster rosterService.RosterService, fileStorage storage.FileStorage) TransferService {
	return &transferService{
		repo:    repo,
		roster:  roster,
		storage: fileStorage,
		now:     time.Now,
	}
}

func (s *transferService) number(studentID uint) (string, error) {
	suffix, err := password.Generate(4, numberCharset)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TC-%d-%s-%s", studentID, s.now().UTC().Format("20060102"), suffix), nil
}

func (s *transferService) Request(ctx context.Context, student *entity.Principal, input dto.RequestInput) (*entity.TransferRequest, error) {
	account, err := s.roster.Student(ctx, student)
	if err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, apperror.ErrInvalidInput
	}

	pending, err := s.repo.HasPending(ctx, account.ID)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	if pending {
		return nil, ErrAlreadyPending
	}

	number, err := s.number(account.ID)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	req := &entity.TransferRequest{
		Number:    number,
		StudentID: account.ID,
		Reason:    reason,
		Status:    entity.TransferPending,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		if errors.Is(err, repository.ErrPendingExists) {
			return nil, ErrAlreadyPending
		}
		return nil, apperror.Storage(err)
	}

	logger.Infof("student %d requested transfer certificate %s", account.ID, req.Number)
	return req, nil
}

func (s *transferService) Mine(ctx context.Context, student *entity.Principal) ([]entity.TransferRequest, error) {
	if student == nil || !student.IsStudent() {
		return nil, apperror.ErrForbidden
	}
	reqs, err := s.repo.ByStudent(ctx, student.ID())
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return reqs, nil
}

func (s *transferService) Queue(ctx context.Context, reviewer *entity.Principal) ([]entity.TransferRequest, error) {
	var teacherID *uint
	switch {
	case reviewer == nil:
		return nil, apperror.ErrForbidden
	case reviewer.IsAdmin():
	case reviewer.IsTeacher():
		id := reviewer.ID()
		teacherID = &id
	default:
		return nil, apperror.ErrForbidden
	}
	reqs, err := s.repo.Queue(ctx, teacherID)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return reqs, nil
}

// reviewable loads a pending request the reviewer is allowed to decide.
func (s *transferService) reviewable(ctx context.Context, reviewer *entity.Principal, id uint) (*entity.TransferRequest, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, apperror.Storage(err)
	}
	if _, err := s.roster.StudentOf(ctx, reviewer, req.StudentID); err != nil {
		return nil, err
	}
	if !req.IsPending() {
		return nil, ErrAlreadyReviewed
	}
	return req, nil
}

func (s *transferService) decide(ctx context.Context, reviewer *entity.Principal, req *entity.TransferRequest, status, note string) error {
	now := s.now()
	reviewerID := reviewer.ID()
	req.Status = status
	req.ReviewNote = note
	req.ReviewerKind = reviewer.Kind()
	req.ReviewerID = &reviewerID
	req.ReviewedAt = &now

	if err := s.repo.Review(ctx, req); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAlreadyReviewed
		}
		return apperror.Storage(err)
	}
	logger.Infof("%s %d %s transfer request %s", reviewer.Kind(), reviewerID, status, req.Number)
	return nil
}

func (s *transferService) Approve(ctx context.Context, reviewer *entity.Principal, id uint, input dto.ReviewInput, certificate *dto.Upload) (*entity.TransferRequest, error) {
	req, err := s.reviewable(ctx, reviewer, id)
	if err != nil {
		return nil, err
	}

	var url string
	if certificate != nil && certificate.Reader != nil {
		url, err = s.storage.Save(ctx, CertificateCategory, req.Number+"-"+certificate.FileName, certificate.Reader)
		if err != nil {
			return nil, apperror.Storage(err)
		}
		req.CertificateURL = &url
	}

	if err := s.decide(ctx, reviewer, req, entity.TransferApproved, strings.TrimSpace(input.Note)); err != nil {
		if url != "" {
			if delErr := s.storage.Delete(ctx, url); delErr != nil {
				logger.Warnf("failed to delete certificate %s: %v", url, delErr)
			}
		}
		return nil, err
	}
	return req, nil
}

func (s *transferService) Reject(ctx context.Context, reviewer *entity.Principal, id uint, input dto.ReviewInput) (*entity.TransferRequest, error) {
	note := strings.TrimSpace(input.Note)
	if note == "" {
		return nil, ErrNoteRequired
	}
	req, err := s.reviewable(ctx, reviewer, id)
	if err != nil {
		return nil, err
	}
	if err := s.decide(ctx, reviewer, req, entity.TransferRejected, note); err != nil {
		return nil, err
	}
	return req, nil
}
