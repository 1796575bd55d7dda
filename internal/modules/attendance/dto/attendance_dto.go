package dto

import (
	"time"

	"anoa.com/schoolhub/internal/entity"
)

const DateLayout = "2006-01-02"

type SheetQuery struct {
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// SheetRow is one student on the teacher's attendance sheet.
type SheetRow struct {
	Student entity.Account `json:"student"`
	Status  string         `json:"status"`
	Marked  bool           `json:"marked"`
}

type Sheet struct {
	Date time.Time  `json:"date"`
	Rows []SheetRow `json:"rows"`
}

type Summary struct {
	Present int     `json:"present"`
	Absent  int     `json:"absent"`
	Late    int     `json:"late"`
	Rate    float64 `json:"rate"`
}

type StudentAttendance struct {
	Records []entity.AttendanceRecord `json:"records"`
	Summary Summary                   `json:"summary"`
}
