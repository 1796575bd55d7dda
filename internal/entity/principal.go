package entity

// PrincipalKind tags which table a session marker points into.
type PrincipalKind string

const (
	KindAccount PrincipalKind = "account"
	KindTeacher PrincipalKind = "teacher"
)

func (k PrincipalKind) Valid() bool {
	return k == KindAccount || k == KindTeacher
}

// Principal is the current user. Exactly one of Account and Teacher is set.
type Principal struct {
	Account *Account
	Teacher *Teacher
}

func AccountPrincipal(a *Account) *Principal {
	if a == nil {
		return nil
	}
	return &Principal{Account: a}
}

func TeacherPrincipal(t *Teacher) *Principal {
	if t == nil {
		return nil
	}
	return &Principal{Teacher: t}
}

func (p *Principal) Kind() PrincipalKind {
	if p.Teacher != nil {
		return KindTeacher
	}
	return KindAccount
}

func (p *Principal) ID() uint {
	if p.Teacher != nil {
		return p.Teacher.ID
	}
	return p.Account.ID
}

func (p *Principal) Username() string {
	if p.Teacher != nil {
		return p.Teacher.Username
	}
	return p.Account.Username
}

func (p *Principal) Email() string {
	if p.Teacher != nil {
		return p.Teacher.Email
	}
	return p.Account.Email
}

func (p *Principal) Role() string {
	if p.Teacher != nil {
		return RoleTeacher
	}
	return p.Account.Role
}

func (p *Principal) FullName() string {
	if p.Teacher != nil {
		return p.Teacher.FullName()
	}
	return p.Account.FullName()
}

func (p *Principal) PasswordHash() string {
	if p.Teacher != nil {
		return p.Teacher.PasswordHash
	}
	return p.Account.PasswordHash
}

func (p *Principal) IsAdmin() bool {
	return p.Account != nil && p.Account.IsAdmin()
}

func (p *Principal) IsTeacher() bool {
	return p.Teacher != nil
}

func (p *Principal) IsStudent() bool {
	return p.Account != nil && p.Account.Role == RoleStudent
}

// HasRole reports whether the principal's role is one of roles.
func (p *Principal) HasRole(roles ...string) bool {
	role := p.Role()
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
