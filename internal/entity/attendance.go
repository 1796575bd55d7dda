package entity

import "time"

const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
)

func ValidAttendanceStatus(status string) bool {
	switch status {
	case AttendancePresent, AttendanceAbsent, AttendanceLate:
		return true
	}
	return false
}

// AttendanceRecord is one student's status on one school day. Date is
// midnight UTC; recording the same day again overwrites the status.
type AttendanceRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID uint      `gorm:"uniqueIndex:idx_attendance_day;not null" json:"student_id"`
	Student   *Account  `gorm:"constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Date      time.Time `gorm:"uniqueIndex:idx_attendance_day;not null" json:"date"`
	Status    string    `gorm:"size:20;not null;default:present" json:"status"`
	MarkedBy  uint      `gorm:"index;not null" json:"marked_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

// SchoolDay truncates t to its calendar day in UTC.
func SchoolDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
