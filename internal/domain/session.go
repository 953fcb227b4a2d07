package domain

// User is the identity record returned by the auth endpoint alongside the
// access token. The backend is the system of record; the client only caches it.
type User struct {
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// Session pairs a bearer token with the user it authenticates. The two are
// always persisted and cleared together.
type Session struct {
	Token string `json:"token" yaml:"token"`
	User  User   `json:"user" yaml:"user"`

	// Capabilities is derived from User.Permissions at session load and is
	// not persisted.
	Capabilities CapabilitySet `json:"-" yaml:"-"`
}

// Valid reports whether the session carries both a token and a user record.
func (s *Session) Valid() bool {
	return s != nil && s.Token != "" && s.User.Username != ""
}
