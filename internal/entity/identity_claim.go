package entity

import "time"

// IdentityClaim reserves a username or email for one principal. Accounts and
// teachers live in separate tables, so the unique index on Key is what keeps
// a name from being registered twice across both.
type IdentityClaim struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	Key       string        `gorm:"column:claim_key;size:160;uniqueIndex;not null" json:"key"`
	Kind      PrincipalKind `gorm:"size:20;not null" json:"kind"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

func (IdentityClaim) TableName() string {
	return "identity_claims"
}

func UsernameClaim(username string) string {
	return "username:" + username
}

func EmailClaim(email string) string {
	return "email:" + email
}

// ClaimsFor returns the username and email claims of one principal.
func ClaimsFor(kind PrincipalKind, username, email string) []IdentityClaim {
	return []IdentityClaim{
		{Key: UsernameClaim(username), Kind: kind},
		{Key: EmailClaim(email), Kind: kind},
	}
}
