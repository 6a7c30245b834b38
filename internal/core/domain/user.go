package domain

// Role is the authorization level of an account. Wire values are lowercase.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User models an account as returned by GET /auth/me. Users are only ever
// decoded from API responses, never built locally.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// DisplayName returns the full name when set, otherwise the email.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	return u.Email
}
