package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"anoa.com/schoolhub/internal/entity"
	"anoa.com/schoolhub/internal/modules/auth/dto"
	"anoa.com/schoolhub/internal/modules/auth/repository"
	"anoa.com/schoolhub/internal/modules/auth/session"
	"anoa.com/schoolhub/pkg/apperror"
	"anoa.com/schoolhub/pkg/logger"
	"anoa.com/schoolhub/pkg/password"
	"anoa.com/schoolhub/pkg/ratelimit"
	"anoa.com/schoolhub/pkg/token"
	"gorm.io/gorm"
)

var ErrWrongCurrentPassword = apperror.New(http.StatusBadRequest, "Current password is incorrect.", apperror.ErrInvalidCredentials)

type AuthService interface {
	// Login checks the Teacher table first, then Account. Any failure is
	// reported as apperror.ErrInvalidCredentials.
	Login(ctx context.Context, input dto.LoginInput, clientIP string) (*entity.Principal, error)
	RegisterStudent(ctx context.Context, input dto.StudentRegistrationInput) (*entity.Account, error)
	RegisterTeacher(ctx context.Context, input dto.TeacherRegistrationInput) (*entity.Teacher, error)
	// Resolve maps a session marker to the current principal, or nil.
	Resolve(ctx context.Context, marker session.Marker) *entity.Principal
	ChangePassword(ctx context.Context, principal *entity.Principal, input dto.ChangePasswordInput) error
	IssueToken(principal *entity.Principal) (*dto.TokenResponse, error)
	ResolveToken(ctx context.Context, raw string) (*entity.Principal, error)
}

type Options struct {
	// LegacySessionFallback resolves kind-less markers Teacher first, then Account.
	// When false such markers resolve to nobody.
	LegacySessionFallback bool
}

type authService struct {
	repo    repository.Repository
	tokens  *token.Issuer
	limiter *ratelimit.Limiter
	opts    Options
}

func NewAuthService(repo repository.Repository, tokens *token.Issuer, limiter *ratelimit.Limiter, opts Options) AuthService {
	return &authService{
		repo:    repo,
		tokens:  tokens,
		limiter: limiter,
		opts:    opts,
	}
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput, clientIP string) (*entity.Principal, error) {
	throttleKey := clientIP + "|" + strings.ToLower(input.Username)
	blocked, err := s.limiter.Blocked(ctx, throttleKey)
	if err != nil {
		logger.Warnf("login throttle check failed: %v", err)
	}
	if blocked {
		ttl, err := s.limiter.TTL(ctx, throttleKey)
		if err != nil {
			logger.Warnf("login throttle ttl lookup failed: %v", err)
		}
		return nil, throttledError(ttl)
	}

	principal, err := s.authenticate(ctx, input.Username, input.Password)
	if err != nil {
		if errors.Is(err, apperror.ErrInvalidCredentials) {
			if hitErr := s.limiter.Hit(ctx, throttleKey); hitErr != nil {
				logger.Warnf("login throttle update failed: %v", hitErr)
			}
		}
		return nil, err
	}

	if err := s.limiter.Reset(ctx, throttleKey); err != nil {
		logger.Warnf("login throttle reset failed: %v", err)
	}
	return principal, nil
}

// throttledError tells the user how long the lockout lasts, rounded up to
// whole minutes.
func throttledError(ttl time.Duration) error {
	if ttl <= 0 {
		return apperror.New(http.StatusTooManyRequests, "Too many failed login attempts. Try again later.", apperror.ErrRateLimitExceeded)
	}
	minutes := int((ttl + time.Minute - 1) / time.Minute)
	unit := "minutes"
	if minutes == 1 {
		unit = "minute"
	}
	msg := fmt.Sprintf("Too many failed login attempts. Try again in %d %s.", minutes, unit)
	return apperror.New(http.StatusTooManyRequests, msg, apperror.ErrRateLimitExceeded)
}

func (s *authService) authenticate(ctx context.Context, username, plain string) (*entity.Principal, error) {
	teacher, err := s.repo.FindTeacherByUsername(ctx, username)
	switch {
	case err == nil:
		if password.Verify(teacher.PasswordHash, plain) {
			return entity.TeacherPrincipal(teacher), nil
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperror.Storage(err)
	}

	account, err := s.repo.FindAccountByUsername(ctx, username)
	switch {
	case err == nil:
		if password.Verify(account.PasswordHash, plain) {
			return entity.AccountPrincipal(account), nil
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperror.Storage(err)
	}

	return nil, apperror.ErrInvalidCredentials
}

func (s *authService) RegisterStudent(ctx context.Context, input dto.StudentRegistrationInput) (*entity.Account, error) {
	code, err := s.usableCode(ctx, input.RegistrationCode)
	if err != nil {
		return nil, err
	}
	if code.Role == entity.RoleTeacher {
		return nil, apperror.ErrRoleMismatch
	}
	if err := checkAvailable(ctx, s.repo, input.Username, input.Email); err != nil {
		return nil, err
	}

	hash, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	account := &entity.Account{
		Username:         input.Username,
		Email:            input.Email,
		PasswordHash:     hash,
		Role:             code.Role,
		FirstName:        input.FirstName,
		LastName:         input.LastName,
		ClassName:        input.ClassName,
		RegistrationCode: code.Code,
	}

	err = s.repo.Transaction(ctx, func(tx repository.Repository) error {
		if err := reserveIdentity(ctx, tx, entity.KindAccount, input.Username, input.Email); err != nil {
			return err
		}
		if err := tx.CreateAccount(ctx, account); err != nil {
			return err
		}
		return tx.ConsumeCode(ctx, code.ID, account.ID)
	})
	if err != nil {
		return nil, registrationError(err)
	}

	logger.Infof("registered %s account %q with code %s", account.Role, account.Username, code.Code)
	return account, nil
}

func (s *authService) RegisterTeacher(ctx context.Context, input dto.TeacherRegistrationInput) (*entity.Teacher, error) {
	code, err := s.usableCode(ctx, input.RegistrationCode)
	if err != nil {
		return nil, err
	}
	if code.Role != entity.RoleTeacher {
		return nil, apperror.ErrRoleMismatch
	}
	if err := checkAvailable(ctx, s.repo, input.Username, input.Email); err != nil {
		return nil, err
	}

	hash, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	teacher := &entity.Teacher{
		Username:         input.Username,
		Email:            input.Email,
		PasswordHash:     hash,
		FirstName:        input.FirstName,
		LastName:         input.LastName,
		Subject:          input.Subject,
		Qualification:    input.Qualification,
		RegistrationCode: code.Code,
	}

	err = s.repo.Transaction(ctx, func(tx repository.Repository) error {
		if err := reserveIdentity(ctx, tx, entity.KindTeacher, input.Username, input.Email); err != nil {
			return err
		}
		if err := tx.CreateTeacher(ctx, teacher); err != nil {
			return err
		}
		return tx.ConsumeCode(ctx, code.ID, teacher.ID)
	})
	if err != nil {
		return nil, registrationError(err)
	}

	logger.Infof("registered teacher %q with code %s", teacher.Username, code.Code)
	return teacher, nil
}

func (s *authService) usableCode(ctx context.Context, raw string) (*entity.RegistrationCode, error) {
	code, err := s.repo.FindCode(ctx, strings.TrimSpace(raw))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrCodeNotFound
		}
		return nil, apperror.Storage(err)
	}
	if code.IsUsed {
		return nil, apperror.ErrCodeAlreadyUsed
	}
	return code, nil
}

// checkAvailable is the early check that keeps the common case off the
// write path. reserveIdentity repeats it under the transaction.
func checkAvailable(ctx context.Context, repo repository.Repository, username, email string) error {
	taken, err := repo.UsernameExists(ctx, username)
	if err != nil {
		return apperror.Storage(err)
	}
	if taken {
		return apperror.ErrUsernameTaken
	}

	taken, err = repo.EmailExists(ctx, email)
	if err != nil {
		return apperror.Storage(err)
	}
	if taken {
		return apperror.ErrEmailTaken
	}
	return nil
}

// reserveIdentity re-checks both principal tables inside tx and then claims
// the names, so two sign-ups racing past checkAvailable cannot both commit.
func reserveIdentity(ctx context.Context, tx repository.Repository, kind entity.PrincipalKind, username, email string) error {
	if err := checkAvailable(ctx, tx, username, email); err != nil {
		return err
	}
	return tx.ClaimIdentity(ctx, kind, username, email)
}

func registrationError(err error) error {
	switch {
	case errors.Is(err, apperror.ErrCodeAlreadyUsed),
		errors.Is(err, apperror.ErrUsernameTaken),
		errors.Is(err, apperror.ErrEmailTaken):
		return err
	}
	logger.Error("registration transaction rolled back", err, nil)
	return apperror.Storage(err)
}

func (s *authService) Resolve(ctx context.Context, marker session.Marker) *entity.Principal {
	if marker.ID == 0 {
		return nil
	}

	switch marker.Kind {
	case entity.KindTeacher:
		return s.teacherPrincipal(ctx, marker.ID)
	case entity.KindAccount:
		return s.accountPrincipal(ctx, marker.ID)
	case "":
		if !s.opts.LegacySessionFallback {
			return nil
		}
		if p := s.teacherPrincipal(ctx, marker.ID); p != nil {
			return p
		}
		return s.accountPrincipal(ctx, marker.ID)
	}
	return nil
}

func (s *authService) teacherPrincipal(ctx context.Context, id uint) *entity.Principal {
	teacher, err := s.repo.FindTeacherByID(ctx, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("failed to load teacher for session", err, map[string]any{"teacher_id": id})
		}
		return nil
	}
	return entity.TeacherPrincipal(teacher)
}

func (s *authService) accountPrincipal(ctx context.Context, id uint) *entity.Principal {
	account, err := s.repo.FindAccountByID(ctx, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("failed to load account for session", err, map[string]any{"account_id": id})
		}
		return nil
	}
	return entity.AccountPrincipal(account)
}

func (s *authService) ChangePassword(ctx context.Context, principal *entity.Principal, input dto.ChangePasswordInput) error {
	if principal == nil {
		return apperror.ErrUnauthorized
	}
	if !password.Verify(principal.PasswordHash(), input.CurrentPassword) {
		return ErrWrongCurrentPassword
	}

	hash, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	err = s.repo.Transaction(ctx, func(tx repository.Repository) error {
		if principal.Teacher != nil {
			return tx.UpdateTeacherPassword(ctx, principal.Teacher.ID, hash)
		}
		return tx.UpdateAccountPassword(ctx, principal.Account.ID, hash)
	})
	if err != nil {
		logger.Error("password change rolled back", err, map[string]any{"kind": principal.Kind(), "id": principal.ID()})
		return apperror.Storage(err)
	}

	if principal.Teacher != nil {
		principal.Teacher.PasswordHash = hash
	} else {
		principal.Account.PasswordHash = hash
	}
	return nil
}

func (s *authService) IssueToken(principal *entity.Principal) (*dto.TokenResponse, error) {
	signed, expiresAt, err := s.tokens.Issue(string(principal.Kind()), principal.ID())
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

// ResolveToken accepts only tokens that carry a principal kind.
func (s *authService) ResolveToken(ctx context.Context, raw string) (*entity.Principal, error) {
	kind, id, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, apperror.ErrUnauthorized
	}
	marker := session.Marker{Kind: entity.PrincipalKind(kind), ID: id}
	if !marker.Kind.Valid() {
		return nil, apperror.ErrUnauthorized
	}

	principal := s.Resolve(ctx, marker)
	if principal == nil {
		return nil, apperror.ErrUnauthorized
	}
	return principal, nil
}
