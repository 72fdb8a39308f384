package models

// User is a registered member of the rental service.
type User struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
}

// UserPatch carries the fields of a partial user update; nil fields are left untouched.
type UserPatch struct {
	Name  *string
	Email *string
}

// Apply merges the non-nil fields of the patch into u.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
}

// UserSummary is the short user form embedded into booking responses.
type UserSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
