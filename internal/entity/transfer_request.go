package entity

import "time"

const (
	TransferPending  = "pending"
	TransferApproved = "approved"
	TransferRejected = "rejected"
)

// TransferRequest is a student's request for a transfer certificate. It is
// reviewed by an admin or by the student's own teacher. A student has at most
// one pending request.
type TransferRequest struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	Number         string        `gorm:"size:50;uniqueIndex;not null" json:"number"`
	StudentID      uint          `gorm:"index;uniqueIndex:idx_transfer_pending,where:status = 'pending';not null" json:"student_id"`
	Student        *Account      `gorm:"constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Reason         string        `gorm:"type:text;not null" json:"reason"`
	Status         string        `gorm:"size:20;not null;default:pending" json:"status"`
	CertificateURL *string       `gorm:"type:text" json:"certificate_url,omitempty"`
	ReviewNote     string        `gorm:"type:text" json:"review_note,omitempty"`
	ReviewerKind   PrincipalKind `gorm:"size:10" json:"reviewer_kind,omitempty"`
	ReviewerID     *uint         `json:"reviewer_id,omitempty"`
	ReviewedAt     *time.Time    `json:"reviewed_at,omitempty"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

func (TransferRequest) TableName() string {
	return "transfer_requests"
}

func (r *TransferRequest) IsPending() bool {
	return r.Status == TransferPending
}
