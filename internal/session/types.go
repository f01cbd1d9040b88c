package session

// User is the signed-in identity. A nil *User means anonymous.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (u *User) clone() *User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}

// State is a point-in-time view of the session.
type State struct {
	User    *User `json:"user"`
	Loading bool  `json:"loading"`
}

// SignedIn reports whether an identity is present.
func (s State) SignedIn() bool {
	return s.User != nil
}

// Transition describes an identity change. Either side may be nil.
type Transition struct {
	Previous *User
	Current  *User
}

// Credentials carries the email/password pair submitted on sign-in or sign-up.
type Credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}
