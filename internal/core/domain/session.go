package domain

// Session is a read-only projection of who is currently logged in.
type Session struct {
	User      *User
	Token     string
	IsLoading bool
}

// IsAuthenticated is true only when both a user and a token are present.
func (s Session) IsAuthenticated() bool {
	return s.User != nil && s.Token != ""
}

// IsAdmin is true when the session user has the admin role.
func (s Session) IsAdmin() bool {
	return s.User != nil && s.User.Role == RoleAdmin
}
