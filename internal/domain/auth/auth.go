package auth

import (
	"crypto/subtle"

	"github.com/go-faster/errors"
)

// ErrInvalidCredentials is returned when a manager login does not match.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Credentials identify the store manager.
type Credentials struct {
	Username string
	Password string
}

// Gate guards the manager menu with a fixed set of credentials.
type Gate struct {
	username []byte
	password []byte
}

// NewGate creates a Gate that accepts only the given credentials.
func NewGate(c Credentials) *Gate {
	return &Gate{
		username: []byte(c.Username),
		password: []byte(c.Password),
	}
}

// Authenticate reports whether the username and password match.
func (g *Gate) Authenticate(username, password string) bool {
	// Both comparisons always run.
	userOK := subtle.ConstantTimeCompare([]byte(username), g.username)
	passOK := subtle.ConstantTimeCompare([]byte(password), g.password)
	return userOK&passOK == 1
}

// Check is Authenticate returning ErrInvalidCredentials on mismatch.
func (g *Gate) Check(username, password string) error {
	if !g.Authenticate(username, password) {
		return ErrInvalidCredentials
	}
	return nil
}
