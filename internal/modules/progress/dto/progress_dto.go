package dto

import "anoa.com/schoolhub/internal/entity"

type RecordInput struct {
	StudentID    uint   `form:"student_id" json:"student_id" binding:"required"`
	Subject      string `form:"subject" json:"subject" binding:"required,max=100"`
	Grade        string `form:"grade" json:"grade" binding:"required,max=5"`
	Remarks      string `form:"remarks" json:"remarks"`
	Term         string `form:"term" json:"term" binding:"required,oneof=first_term second_term third_term"`
	AcademicYear string `form:"academic_year" json:"academic_year" binding:"required,len=9"`
}

// YearReport groups a student's records for one academic year.
type YearReport struct {
	AcademicYear string                  `json:"academic_year"`
	Records      []entity.ProgressRecord `json:"records"`
}
