package domain

// Credentials is the persisted token pair. An empty string means absent.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// Empty reports whether neither token is stored.
func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

// TokenPair is the body of a successful POST /auth/login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// AccessToken is the body of a successful POST /auth/refresh.
type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}
