package entity

import "time"

var Terms = []string{"first_term", "second_term", "third_term"}

func ValidTerm(term string) bool {
	for _, t := range Terms {
		if t == term {
			return true
		}
	}
	return false
}

// ProgressRecord is a student's grade in one subject for one term. The same
// subject, term and academic year is recorded at most once per student.
type ProgressRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	StudentID    uint      `gorm:"uniqueIndex:idx_progress_term;not null" json:"student_id"`
	Student      *Account  `gorm:"constraint:OnDelete:CASCADE" json:"student,omitempty"`
	TeacherID    uint      `gorm:"index;not null" json:"teacher_id"`
	Subject      string    `gorm:"size:100;uniqueIndex:idx_progress_term;not null" json:"subject"`
	Term         string    `gorm:"size:20;uniqueIndex:idx_progress_term;not null" json:"term"`
	AcademicYear string    `gorm:"size:9;uniqueIndex:idx_progress_term;not null" json:"academic_year"`
	Grade        string    `gorm:"size:5;not null" json:"grade"`
	Remarks      string    `gorm:"type:text" json:"remarks"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ProgressRecord) TableName() string {
	return "progress_records"
}
