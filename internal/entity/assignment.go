package entity

import "time"

const (
	SubmissionSubmitted = "submitted"
	SubmissionGraded    = "graded"
)

// Assignment is set by a teacher for their students. An empty ClassName
// targets every student of the teacher.
type Assignment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TeacherID     uint      `gorm:"index;not null" json:"teacher_id"`
	Teacher       *Teacher  `gorm:"constraint:OnDelete:CASCADE" json:"teacher,omitempty"`
	Title         string    `gorm:"size:100;not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	Subject       string    `gorm:"size:100" json:"subject"`
	ClassName     string    `gorm:"size:20;index" json:"class_name"`
	DueDate       time.Time `gorm:"not null" json:"due_date"`
	AttachmentURL *string   `gorm:"type:text" json:"attachment_url,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Assignment) TableName() string {
	return "assignments"
}

func (a *Assignment) Targets(student *Account) bool {
	if student == nil || student.TeacherID == nil || *student.TeacherID != a.TeacherID {
		return false
	}
	return a.ClassName == "" || a.ClassName == student.ClassName
}

// AssignmentSubmission is one student's hand-in. A student has at most one
// per assignment; resubmitting replaces the file until it is graded.
type AssignmentSubmission struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	AssignmentID uint        `gorm:"uniqueIndex:idx_submission_student;not null" json:"assignment_id"`
	Assignment   *Assignment `gorm:"constraint:OnDelete:CASCADE" json:"assignment,omitempty"`
	StudentID    uint        `gorm:"uniqueIndex:idx_submission_student;not null" json:"student_id"`
	Student      *Account    `gorm:"constraint:OnDelete:CASCADE" json:"student,omitempty"`
	FileURL      string      `gorm:"type:text;not null" json:"file_url"`
	Comments     string      `gorm:"type:text" json:"comments"`
	Status       string      `gorm:"size:20;not null;default:submitted" json:"status"`
	Late         bool        `gorm:"not null;default:false" json:"late"`
	Grade        string      `gorm:"size:5" json:"grade,omitempty"`
	Feedback     string      `gorm:"type:text" json:"feedback,omitempty"`
	SubmittedAt  time.Time   `gorm:"not null" json:"submitted_at"`
	GradedAt     *time.Time  `json:"graded_at,omitempty"`
}

func (AssignmentSubmission) TableName() string {
	return "assignment_submissions"
}

func (s *AssignmentSubmission) IsGraded() bool {
	return s.Status == SubmissionGraded
}
