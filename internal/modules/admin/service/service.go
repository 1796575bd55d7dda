package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"anoa.com/schoolhub/internal/entity"
	"anoa.com/schoolhub/internal/modules/admin/dto"
	"anoa.com/schoolhub/internal/modules/admin/repository"
	"anoa.com/schoolhub/pkg/apperror"
	"anoa.com/schoolhub/pkg/logger"
	"anoa.com/schoolhub/pkg/password"
	"gorm.io/gorm"
)

const (
	codeLength     = 8
	codeAttempts   = 5
	passwordLength = 8
)

var (
	ErrDeleteSelf    = apperror.New(http.StatusBadRequest, "You cannot delete your own account.", apperror.ErrInvalidInput)
	ErrNotAStudent   = apperror.New(http.StatusBadRequest, "Only students can be assigned to a teacher.", apperror.ErrInvalidInput)
	ErrNoSuchTeacher = apperror.New(http.StatusBadRequest, "That teacher does not exist.", apperror.ErrInvalidInput)
)

type AdminService interface {
	ListCodes(ctx context.Context) ([]entity.RegistrationCode, error)
	GenerateCode(ctx context.Context, input dto.GenerateCodeInput) (*entity.RegistrationCode, error)
	DeleteCode(ctx context.Context, id uint) error

	ListUsers(ctx context.Context) (*dto.UserList, error)
	ResetPassword(ctx context.Context, kind entity.PrincipalKind, id uint) (*dto.PasswordReset, error)
	DeleteUser(ctx context.Context, actor *entity.Principal, kind entity.PrincipalKind, id uint) error
	// AssignTeacher puts a student on a teacher's roster. A nil teacherID
	// takes the student off any roster.
	AssignTeacher(ctx context.Context, accountID uint, teacherID *uint) (*entity.Account, error)
}

type adminService struct {
	repo repository.AdminRepository
}

func NewAdminService(repo repository.AdminRepository) AdminService {
	return &adminService{repo: repo}
}

func notFoundOrStorage(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.ErrNotFound
	}
	return apperror.Storage(err)
}

func (s *adminService) ListCodes(ctx context.Context) ([]entity.RegistrationCode, error) {
	codes, err := s.repo.ListCodes(ctx)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return codes, nil
}

func (s *adminService) GenerateCode(ctx context.Context, input dto.GenerateCodeInput) (*entity.RegistrationCode, error) {
	switch input.Role {
	case entity.RoleStudent, entity.RoleTeacher, entity.RoleAdmin:
	default:
		return nil, apperror.ErrInvalidInput
	}

	for attempt := 0; attempt < codeAttempts; attempt++ {
		value, err := password.Generate(codeLength, password.CodeCharset)
		if err != nil {
			return nil, fmt.Errorf("failed to generate registration code: %w", err)
		}

		exists, err := s.repo.CodeExists(ctx, value)
		if err != nil {
			return nil, apperror.Storage(err)
		}
		if exists {
			continue
		}

		code := &entity.RegistrationCode{Code: value, Role: input.Role}
		if err := s.repo.CreateCode(ctx, code); err != nil {
			return nil, apperror.Storage(err)
		}
		logger.Infof("generated %s registration code %s", code.Role, code.Code)
		return code, nil
	}
	return nil, apperror.Storage(errors.New("could not find a free registration code"))
}

func (s *adminService) DeleteCode(ctx context.Context, id uint) error {
	err := s.repo.DeleteUnusedCode(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperror.ErrCodeAlreadyUsed):
		return err
	default:
		return notFoundOrStorage(err)
	}
}

func (s *adminService) ListUsers(ctx context.Context) (*dto.UserList, error) {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	teachers, err := s.repo.ListTeachers(ctx)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return &dto.UserList{Accounts: accounts, Teachers: teachers}, nil
}

func (s *adminService) ResetPassword(ctx context.Context, kind entity.PrincipalKind, id uint) (*dto.PasswordReset, error) {
	var username string
	switch kind {
	case entity.KindAccount:
		account, err := s.repo.FindAccountByID(ctx, id)
		if err != nil {
			return nil, notFoundOrStorage(err)
		}
		username = account.Username
	case entity.KindTeacher:
		teacher, err := s.repo.FindTeacherByID(ctx, id)
		if err != nil {
			return nil, notFoundOrStorage(err)
		}
		username = teacher.Username
	default:
		return nil, apperror.ErrNotFound
	}

	plain, err := password.Generate(passwordLength, password.ResetCharset)
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}
	hash, err := password.Hash(plain)
	if err != nil {
		return nil, err
	}

	if kind == entity.KindTeacher {
		err = s.repo.UpdateTeacherPassword(ctx, id, hash)
	} else {
		err = s.repo.UpdateAccountPassword(ctx, id, hash)
	}
	if err != nil {
		return nil, apperror.Storage(err)
	}

	logger.Infof("password reset for %s %q", kind, username)
	return &dto.PasswordReset{Username: username, Password: plain}, nil
}

func (s *adminService) DeleteUser(ctx context.Context, actor *entity.Principal, kind entity.PrincipalKind, id uint) error {
	var err error
	switch kind {
	case entity.KindAccount:
		if actor != nil && actor.Kind() == entity.KindAccount && actor.ID() == id {
			return ErrDeleteSelf
		}
		err = s.repo.DeleteAccount(ctx, id)
	case entity.KindTeacher:
		err = s.repo.DeleteTeacher(ctx, id)
	default:
		return apperror.ErrNotFound
	}
	if err != nil {
		return notFoundOrStorage(err)
	}
	logger.Infof("deleted %s %d", kind, id)
	return nil
}

func (s *adminService) AssignTeacher(ctx context.Context, accountID uint, teacherID *uint) (*entity.Account, error) {
	account, err := s.repo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, notFoundOrStorage(err)
	}
	if !account.IsStudent() {
		return nil, ErrNotAStudent
	}
	if teacherID != nil {
		if _, err := s.repo.FindTeacherByID(ctx, *teacherID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNoSuchTeacher
			}
			return nil, apperror.Storage(err)
		}
	}

	if err := s.repo.SetTeacher(ctx, account.ID, teacherID); err != nil {
		return nil, apperror.Storage(err)
	}
	account.TeacherID = teacherID
	if teacherID == nil {
		logger.Infof("student %q unassigned from teacher", account.Username)
	} else {
		logger.Infof("student %q assigned to teacher %d", account.Username, *teacherID)
	}
	return account, nil
}
