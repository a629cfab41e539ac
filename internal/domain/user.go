package domain

import "time"

type UserRole string

const (
	UserRoleStudent UserRole = "STUDENT"
	UserRoleTutor   UserRole = "TUTOR"
	UserRoleAdmin   UserRole = "ADMIN"
)

type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         UserRole   `json:"role"`
	Premium      bool       `json:"premium"`
	PremiumUntil *time.Time `json:"premium_until,omitempty"`
	BalanceCents int64      `json:"balance_cents"`
	CreatedOn    time.Time  `json:"created_on"`
	UpdatedOn    time.Time  `json:"updated_on"`
}

// IsPremiumActive reports whether the premium flag is set and still inside
// its validity window. A nil PremiumUntil means no expiry.
func (u *User) IsPremiumActive(now time.Time) bool {
	if !u.Premium {
		return false
	}
	if u.PremiumUntil == nil {
		return true
	}
	return now.Before(*u.PremiumUntil)
}
