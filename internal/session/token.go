package session

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/xelth-com/fabtrack/internal/models"
)

var (
	// ErrNoSession means the browser has no live session
	ErrNoSession = errors.New("no session")
	// ErrBadToken means the stored bearer token cannot be decoded
	ErrBadToken = errors.New("undecodable token")
)

// Identity is what the page layer needs from the token: who and which role.
type Identity struct {
	UserID string
	Role   models.Role
}

// IsAdmin gates admin-only affordances
func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

type tokenClaims struct {
	User struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
	jwt.RegisteredClaims
}

// DecodeToken reads the { user: { id, role } } payload WITHOUT verifying the
// signature. The result only decides what to render; the API re-checks
// authorization on every request.
func DecodeToken(token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrBadToken
	}

	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrBadToken, err)
	}
	if claims.User.ID == "" {
		return Identity{}, fmt.Errorf("%w: missing user id", ErrBadToken)
	}
	role, ok := models.ParseRole(claims.User.Role)
	if !ok {
		return Identity{}, fmt.Errorf("%w: unknown role %q", ErrBadToken, claims.User.Role)
	}
	return Identity{UserID: claims.User.ID, Role: role}, nil
}
