package dto

import (
	"io"

	"anoa.com/schoolhub/internal/entity"
)

// DateLayout is the HTML date input format used for due dates.
const DateLayout = "2006-01-02"

type AssignmentInput struct {
	Title       string `form:"title" json:"title" binding:"required,max=100"`
	Description string `form:"description" json:"description" binding:"required"`
	Subject     string `form:"subject" json:"subject" binding:"max=100"`
	ClassName   string `form:"class_name" json:"class_name" binding:"max=20"`
	DueDate     string `form:"due_date" json:"due_date" binding:"required,datetime=2006-01-02"`
}

type SubmissionInput struct {
	Comments string `form:"comments" json:"comments" binding:"max=2000"`
}

type GradeInput struct {
	Grade    string `form:"grade" json:"grade" binding:"required,max=5"`
	Feedback string `form:"feedback" json:"feedback" binding:"max=2000"`
}

// Upload is a file handed to the storage collaborator.
type Upload struct {
	Reader   io.Reader
	FileName string
}

// AssignmentSummary is one row of the teacher's assignment list.
type AssignmentSummary struct {
	Assignment entity.Assignment `json:"assignment"`
	Submitted  int64             `json:"submitted"`
	Targeted   int               `json:"targeted"`
}

// AssignmentOverview is what the teacher sees for one assignment: every
// submission and the targeted students who have not handed in yet.
type AssignmentOverview struct {
	Assignment  entity.Assignment             `json:"assignment"`
	Submissions []entity.AssignmentSubmission `json:"submissions"`
	Missing     []entity.Account              `json:"missing"`
}

// StudentAssignment pairs an assignment with the student's own submission.
type StudentAssignment struct {
	Assignment entity.Assignment            `json:"assignment"`
	Submission *entity.AssignmentSubmission `json:"submission,omitempty"`
	Overdue    bool                         `json:"overdue"`
}
