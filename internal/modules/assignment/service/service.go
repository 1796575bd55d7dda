package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"anoa.com/schoolhub/internal/entity"
	"anoa.com/schoolhub/internal/modules/assignment/dto"
	"anoa.com/schoolhub/internal/modules/assignment/repository"
	rosterService "anoa.com/schoolhub/internal/modules/roster/service"
	"anoa.com/schoolhub/pkg/apperror"
	"anoa.com/schoolhub/pkg/logger"
	"anoa.com/schoolhub/pkg/storage"
	"gorm.io/gorm"
)

const (
	// AttachmentCategory holds files teachers attach to an assignment.
	AttachmentCategory = "assignments"
	// SubmissionCategory holds the files students hand in.
	SubmissionCategory = "submissions"
)

var (
	ErrAlreadyGraded  = apperror.New(http.StatusConflict, "This submission has already been graded.", apperror.ErrBadRequest)
	ErrFileRequired   = apperror.New(http.StatusBadRequest, "Please choose a file to submit.", apperror.ErrInvalidInput)
	ErrNoStudentsHere = apperror.New(http.StatusBadRequest, "You have no students in that class.", apperror.ErrInvalidInput)
)

type AssignmentService interface {
	Create(ctx context.Context, teacher *entity.Principal, input dto.AssignmentInput, file *dto.Upload) (*entity.Assignment, error)
	ListForTeacher(ctx context.Context, teacher *entity.Principal) ([]dto.AssignmentSummary, error)
	Overview(ctx context.Context, teacher *entity.Principal, id uint) (*dto.AssignmentOverview, error)
	Delete(ctx context.Context, teacher *entity.Principal, id uint) error
	Grade(ctx context.Context, teacher *entity.Principal, submissionID uint, input dto.GradeInput) (*entity.AssignmentSubmission, error)
	// Classes lists the distinct classes on the teacher's roster.
	Classes(ctx context.Context, teacher *entity.Principal) ([]string, error)

	ListForStudent(ctx context.Context, student *entity.Principal) ([]dto.StudentAssignment, error)
	ForStudent(ctx context.Context, student *entity.Principal, id uint) (*dto.StudentAssignment, error)
	Submit(ctx context.Context, student *entity.Principal, id uint, input dto.SubmissionInput, file *dto.Upload) (*entity.AssignmentSubmission, error)
}

type assignmentService struct {
	repo    repository.AssignmentRepository
	roster  rosterService.RosterService
	storage storage.FileStorage
	now     func() time.Time
}

func NewAssignmentService(repo repository.AssignmentRepository, roster rosterService.RosterService, fileStorage storage.FileStorage) AssignmentService {
	return &assignmentService{
		repo:    repo,
		roster:  roster,
		storage: fileStorage,
		now:     time.Now,
	}
}

func notFoundOrStorage(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.ErrNotFound
	}
	return apperror.Storage(err)
}

// overdue reports whether the due day has fully passed.
func overdue(a *entity.Assignment, at time.Time) bool {
	return !at.Before(a.DueDate.AddDate(0, 0, 1))
}

func (s *assignmentService) save(ctx context.Context, category string, file *dto.Upload) (string, error) {
	url, err := s.storage.Save(ctx, category, file.FileName, file.Reader)
	if err != nil {
		return "", apperror.Storage(err)
	}
	return url, nil
}

func (s *assignmentService) drop(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.storage.Delete(ctx, url); err != nil {
		logger.Warnf("failed to delete file %s: %v", url, err)
	}
}

func (s *assignmentService) Classes(ctx context.Context, teacher *entity.Principal) ([]string, error) {
	students, err := s.roster.Students(ctx, teacher)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var classes []string
	for _, st := range students {
		if st.ClassName != "" && !seen[st.ClassName] {
			seen[st.ClassName] = true
			classes = append(classes, st.ClassName)
		}
	}
	return classes, nil
}

func (s *assignmentService) Create(ctx context.Context, teacher *entity.Principal, input dto.AssignmentInput, file *dto.Upload) (*entity.Assignment, error) {
	students, err := s.roster.Students(ctx, teacher)
	if err != nil {
		return nil, err
	}

	due, err := time.Parse(dto.DateLayout, strings.TrimSpace(input.DueDate))
	if err != nil {
		return nil, apperror.ErrInvalidInput
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperror.ErrInvalidInput
	}

	className := strings.TrimSpace(input.ClassName)
	if className != "" && len(targeted(students, className)) == 0 {
		return nil, ErrNoStudentsHere
	}

	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		subject = teacher.Teacher.Subject
	}

	a := &entity.Assignment{
		TeacherID:   teacher.ID(),
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Subject:     subject,
		ClassName:   className,
		DueDate:     entity.SchoolDay(due),
	}

	if file != nil && file.Reader != nil {
		url, err := s.save(ctx, AttachmentCategory, file)
		if err != nil {
			return nil, err
		}
		a.AttachmentURL = &url
	}

	if err := s.repo.Create(ctx, a); err != nil {
		if a.AttachmentURL != nil {
			s.drop(ctx, *a.AttachmentURL)
		}
		return nil, apperror.Storage(err)
	}

	logger.Infof("teacher %d set assignment %d for class %q", a.TeacherID, a.ID, a.ClassName)
	return a, nil
}

func targeted(students []entity.Account, className string) []entity.Account {
	if className == "" {
		return students
	}
	var out []entity.Account
	for _, st := range students {
		if st.ClassName == className {
			out = append(out, st)
		}
	}
	return out
}

func (s *assignmentService) ListForTeacher(ctx context.Context, teacher *entity.Principal) ([]dto.AssignmentSummary, error) {
	students, err := s.roster.Students(ctx, teacher)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListByTeacher(ctx, teacher.ID())
	if err != nil {
		return nil, apperror.Storage(err)
	}

	ids := make([]uint, 0, len(items))
	for _, a := range items {
		ids = append(ids, a.ID)
	}
	counts, err := s.repo.CountSubmissions(ctx, ids)
	if err != nil {
		return nil, apperror.Storage(err)
	}

	out := make([]dto.AssignmentSummary, 0, len(items))
	for _, a := range items {
		out = append(out, dto.AssignmentSummary{
			Assignment: a,
			Submitted:  counts[a.ID],
			Targeted:   len(targeted(students, a.ClassName)),
		})
	}
	return out, nil
}

// owned loads the assignment and checks it belongs to teacher.
func (s *assignmentService) owned(ctx context.Context, teacher *entity.Principal, id uint) (*entity.Assignment, error) {
	if teacher == nil || !teacher.IsTeacher() {
		return nil, apperror.ErrForbidden
	}
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOrStorage(err)
	}
	if a.TeacherID != teacher.ID() {
		return nil, apperror.ErrForbidden
	}
	return a, nil
}

func (s *assignmentService) Overview(ctx context.Context, teacher *entity.Principal, id uint) (*dto.AssignmentOverview, error) {
	a, err := s.owned(ctx, teacher, id)
	if err != nil {
		return nil, err
	}
	students, err := s.roster.Students(ctx, teacher)
	if err != nil {
		return nil, err
	}
	submissions, err := s.repo.Submissions(ctx, a.ID)
	if err != nil {
		return nil, apperror.Storage(err)
	}

	handedIn := make(map[uint]bool, len(submissions))
	for _, sub := range submissions {
		handedIn[sub.StudentID] = true
	}
	var missing []entity.Account
	for _, st := range targeted(students, a.ClassName) {
		if !handedIn[st.ID] {
			missing = append(missing, st)
		}
	}

	return &dto.AssignmentOverview{Assignment: *a, Submissions: submissions, Missing: missing}, nil
}

func (s *assignmentService) Delete(ctx context.Context, teacher *entity.Principal, id uint) error {
	a, err := s.owned(ctx, teacher, id)
	if err != nil {
		return err
	}
	submissions, err := s.repo.Submissions(ctx, a.ID)
	if err != nil {
		return apperror.Storage(err)
	}
	if err := s.repo.Delete(ctx, a.ID); err != nil {
		return notFoundOrStorage(err)
	}

	if a.AttachmentURL != nil {
		s.drop(ctx, *a.AttachmentURL)
	}
	for _, sub := range submissions {
		s.drop(ctx, sub.FileURL)
	}
	return nil
}

func (s *assignmentService) Grade(ctx context.Context, teacher *entity.Principal, submissionID uint, input dto.GradeInput) (*entity.AssignmentSubmission, error) {
	if teacher == nil || !teacher.IsTeacher() {
		return nil, apperror.ErrForbidden
	}
	sub, err := s.repo.FindSubmissionByID(ctx, submissionID)
	if err != nil {
		return nil, notFoundOrStorage(err)
	}
	if sub.Assignment == nil || sub.Assignment.TeacherID != teacher.ID() {
		return nil, apperror.ErrForbidden
	}
	grade := strings.TrimSpace(input.Grade)
	if grade == "" {
		return nil, apperror.ErrInvalidInput
	}

	now := s.now()
	sub.Grade = grade
	sub.Feedback = strings.TrimSpace(input.Feedback)
	sub.Status = entity.SubmissionGraded
	sub.GradedAt = &now
	if err := s.repo.SaveGrade(ctx, sub); err != nil {
		return nil, apperror.Storage(err)
	}
	return sub, nil
}

func (s *assignmentService) ListForStudent(ctx context.Context, student *entity.Principal) ([]dto.StudentAssignment, error) {
	account, err := s.roster.Student(ctx, student)
	if err != nil {
		return nil, err
	}
	if account.TeacherID == nil {
		return []dto.StudentAssignment{}, nil
	}

	items, err := s.repo.ListForClass(ctx, *account.TeacherID, account.ClassName)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	ids := make([]uint, 0, len(items))
	for _, a := range items {
		ids = append(ids, a.ID)
	}
	submissions, err := s.repo.SubmissionsByStudent(ctx, account.ID, ids)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	byAssignment := make(map[uint]*entity.AssignmentSubmission, len(submissions))
	for i := range submissions {
		byAssignment[submissions[i].AssignmentID] = &submissions[i]
	}

	now := s.now()
	out := make([]dto.StudentAssignment, 0, len(items))
	for i := range items {
		out = append(out, dto.StudentAssignment{
			Assignment: items[i],
			Submission: byAssignment[items[i].ID],
			Overdue:    overdue(&items[i], now),
		})
	}
	return out, nil
}

// visible loads an assignment the student is a target of. Assignments for
// other classes or teachers are reported as missing.
func (s *assignmentService) visible(ctx context.Context, student *entity.Principal, id uint) (*entity.Account, *entity.Assignment, error) {
	account, err := s.roster.Student(ctx, student)
	if err != nil {
		return nil, nil, err
	}
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, notFoundOrStorage(err)
	}
	if !a.Targets(account) {
		return nil, nil, apperror.ErrNotFound
	}
	return account, a, nil
}

func (s *assignmentService) ForStudent(ctx context.Context, student *entity.Principal, id uint) (*dto.StudentAssignment, error) {
	account, a, err := s.visible(ctx, student, id)
	if err != nil {
		return nil, err
	}
	out := &dto.StudentAssignment{Assignment: *a, Overdue: overdue(a, s.now())}

	sub, err := s.repo.FindSubmission(ctx, a.ID, account.ID)
	switch {
	case err == nil:
		out.Submission = sub
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperror.Storage(err)
	}
	return out, nil
}

func (s *assignmentService) Submit(ctx context.Context, student *entity.Principal, id uint, input dto.SubmissionInput, file *dto.Upload) (*entity.AssignmentSubmission, error) {
	account, a, err := s.visible(ctx, student, id)
	if err != nil {
		return nil, err
	}
	if file == nil || file.Reader == nil {
		return nil, ErrFileRequired
	}

	previous, err := s.repo.FindSubmission(ctx, a.ID, account.ID)
	switch {
	case err == nil:
		if previous.IsGraded() {
			return nil, ErrAlreadyGraded
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		previous = nil
	default:
		return nil, apperror.Storage(err)
	}

	url, err := s.save(ctx, SubmissionCategory, file)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sub := &entity.AssignmentSubmission{
		AssignmentID: a.ID,
		StudentID:    account.ID,
		FileURL:      url,
		Comments:     strings.TrimSpace(input.Comments),
		Status:       entity.SubmissionSubmitted,
		Late:         overdue(a, now),
		SubmittedAt:  now,
	}
	if err := s.repo.UpsertSubmission(ctx, sub); err != nil {
		s.drop(ctx, url)
		return nil, apperror.Storage(err)
	}

	if previous != nil && previous.FileURL != url {
		s.drop(ctx, previous.FileURL)
	}
	logger.Infof("student %d submitted assignment %d", account.ID, a.ID)
	return sub, nil
}
