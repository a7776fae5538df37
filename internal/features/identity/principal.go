package identity

import (
	"context"
	"errors"
	"strings"
)

// Role is what a session may do: students submit and track, teachers triage.
type Role int

const (
	RoleStudent Role = iota
	RoleTeacher
)

func (r Role) String() string {
	switch r {
	case RoleTeacher:
		return "teacher"
	default:
		return "student"
	}
}

// Principal is an authenticated session. Anonymous sessions have no email.
type Principal struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
}

// Anonymous reports whether the principal carries no email.
func (p *Principal) Anonymous() bool {
	return p == nil || strings.TrimSpace(p.Email) == ""
}

// ResolveRole maps a principal to a role. A nil principal is a student.
func ResolveRole(p *Principal) Role {
	if p.Anonymous() {
		return RoleStudent
	}
	return RoleTeacher
}

var (
	// ErrInvalidCredentials is returned for any failed credential sign-in. Its
	// message is shown as-is and never says whether the email exists.
	ErrInvalidCredentials = errors.New("Email hoặc mật khẩu không chính xác.")
	// ErrAuthSetup means an anonymous session could not be established where
	// one was required.
	ErrAuthSetup = errors.New("could not establish an anonymous session")
	// ErrInvalidSession means a presented token could not be verified.
	ErrInvalidSession = errors.New("invalid or expired session")
)

// AuthService is the session provider seen by a single client.
type AuthService interface {
	SignInAnonymously(ctx context.Context) (*Principal, error)
	SignInWithCredentials(ctx context.Context, email, password string) (*Principal, error)
	SignOut(ctx context.Context) error
	// OnPrincipalChanged registers fn for every session change, including the
	// current state right away. A nil principal means signed out.
	OnPrincipalChanged(fn func(*Principal)) (unsubscribe func())
}

// Verifier turns a bearer token into a principal.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// ChainVerifier tries each verifier in order and returns the first success.
type ChainVerifier []Verifier

func (c ChainVerifier) Verify(ctx context.Context, token string) (*Principal, error) {
	for _, v := range c {
		if v == nil {
			continue
		}
		if p, err := v.Verify(ctx, token); err == nil {
			return p, nil
		}
	}
	return nil, ErrInvalidSession
}
