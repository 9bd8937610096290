package domain

import "time"

// Session holds the latest issued token pair for a user. There is at most one
// row per user: a second login overwrites the row in place, which orphans the
// previously issued pair. Revoked or expired rows stay around for audit.
type Session struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SessionID    string    `gorm:"size:64;not null" json:"session_id"`
	UserID       uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Role         Role      `gorm:"size:32;not null" json:"role"`
	LoggedIn     bool      `gorm:"not null" json:"logged_in"`
	AccessToken  string    `gorm:"size:1024;index;not null" json:"-"`
	RefreshToken string    `gorm:"size:1024;not null" json:"-"`
	ExpiresAt    time.Time `gorm:"index;not null" json:"expires_at"`
	Revoked      bool      `gorm:"not null" json:"revoked"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Usable reports whether the row can still back an authenticated request.
func (s *Session) Usable(now time.Time) bool {
	return !s.Revoked && s.ExpiresAt.After(now)
}
