package model

import (
	"time"
)

type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	Nickname     string    `db:"nickname"`
	AgeGroup     string    `db:"age_group"`
	PasswordHash string    `db:"password_hash"`
	IsActive     bool      `db:"is_active"`
	IsStaff      bool      `db:"is_staff"`
	IsSuperuser  bool      `db:"is_superuser"`
	DateJoined   time.Time `db:"date_joined"`
}

// AgeGroups is the fixed set of selectable age brackets, in display order.
var AgeGroups = []string{
	"under-10", "10s", "20s", "30s", "40s", "50s", "60s", "70s", "80s", "over-90",
}

func ValidAgeGroup(v string) bool {
	for _, g := range AgeGroups {
		if g == v {
			return true
		}
	}
	return false
}

// DisplayName returns the nickname, falling back to the email local part.
func (u *User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	for i := 0; i < len(u.Email); i++ {
		if u.Email[i] == '@' {
			return u.Email[:i]
		}
	}
	return u.Email
}
