package entity

import "time"

// Session is the server-side identity behind a session cookie. UserID is
// the user's unique_id. Only id, full_name, email and phone serialize; Role
// stays server-side for admin checks.
type Session struct {
	ID        string    `json:"-"`
	UserID    string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      Role      `json:"-"`
	CreatedAt time.Time `json:"-"`
}

func (s *Session) IsAdmin() bool { return s != nil && s.Role == RoleAdmin }
