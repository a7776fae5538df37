package identity

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Resolver decides the role of the current session and makes sure a session
// exists before reads that need one.
type Resolver struct {
	auth   AuthService
	logger *zap.Logger

	mu      sync.RWMutex
	current *Principal
}

func NewResolver(auth AuthService, logger *zap.Logger) *Resolver {
	return &Resolver{auth: auth, logger: logger}
}

// Resolve records p as the current principal and returns its role. When p is
// nil an anonymous session is started; if that fails the role is still
// Student so submission keeps working.
func (r *Resolver) Resolve(ctx context.Context, p *Principal) Role {
	r.setCurrent(p)
	if p != nil {
		return ResolveRole(p)
	}

	anon, err := r.auth.SignInAnonymously(ctx)
	if err != nil {
		r.logger.Warn("Anonymous sign-in failed, continuing as student", zap.Error(err))
		return RoleStudent
	}
	r.setCurrent(anon)
	return RoleStudent
}

// Current returns the last principal seen, or nil.
func (r *Resolver) Current() *Principal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// EnsureSession returns the current principal, signing in anonymously when
// there is none. Failure is reported as ErrAuthSetup.
func (r *Resolver) EnsureSession(ctx context.Context) (*Principal, error) {
	if p := r.Current(); p != nil {
		return p, nil
	}

	anon, err := r.auth.SignInAnonymously(ctx)
	if err != nil {
		r.logger.Error("Anonymous session required but not established", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrAuthSetup, err)
	}
	r.setCurrent(anon)
	return anon, nil
}

func (r *Resolver) setCurrent(p *Principal) {
	r.mu.Lock()
	r.current = p
	r.mu.Unlock()
}
