package identity

import (
	"context"
	"fmt"
)

// RequestSession ensures a session for a single API request: the caller's
// verified principal when present, otherwise a freshly issued anonymous one.
type RequestSession struct {
	principal *Principal
	auth      *Authenticator
	issued    *Session
}

func NewRequestSession(principal *Principal, auth *Authenticator) *RequestSession {
	return &RequestSession{principal: principal, auth: auth}
}

func (r *RequestSession) EnsureSession(ctx context.Context) (*Principal, error) {
	if r.principal != nil {
		return r.principal, nil
	}
	if r.auth == nil {
		return nil, ErrAuthSetup
	}

	s, err := r.auth.Anonymous(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthSetup, err)
	}
	r.issued = s
	r.principal = s.Principal
	return s.Principal, nil
}

// Issued returns the session created by EnsureSession, if any, so it can be
// handed back to the client.
func (r *RequestSession) Issued() *Session {
	return r.issued
}
