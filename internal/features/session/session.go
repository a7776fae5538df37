package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xyz-asif/schoolsafe/internal/features/identity"
	"github.com/xyz-asif/schoolsafe/internal/features/reports"
)

// State is what the client should render.
type State int

const (
	// StateStudent has no live subscription.
	StateStudent State = iota
	// StateLoading is a teacher waiting for the first snapshot.
	StateLoading
	// StateLive is a teacher with a current snapshot.
	StateLive
	// StateAccessRestricted means the store refused the teacher; sign out to recover.
	StateAccessRestricted
	// StateReconnecting is a teacher whose subscription dropped. Reports holds
	// the last snapshot until a new subscription delivers.
	StateReconnecting
)

const (
	minRetryDelay = time.Second
	maxRetryDelay = 30 * time.Second
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLive:
		return "live"
	case StateAccessRestricted:
		return "access_restricted"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "student"
	}
}

// Source opens live report subscriptions.
type Source interface {
	Subscribe(ctx context.Context) (*reports.Subscription, error)
}

// View is an immutable copy of the session state.
type View struct {
	Principal *identity.Principal
	Role      identity.Role
	State     State
	Reports   []*reports.Report
}

// Session is the event loop of one portal client. Principal changes are
// resolved to a role before any subscription opens; leaving the teacher role
// closes the subscription; every snapshot replaces the local list.
type Session struct {
	auth     identity.AuthService
	resolver *identity.Resolver
	source   Source
	logger   *zap.Logger

	retryDelay time.Duration

	mu      sync.Mutex
	view    View
	pending *identity.Principal
	changed chan struct{}
	updates chan struct{}

	unsubscribe func()
	cancel      context.CancelFunc
	done        chan struct{}
	closeOnce   sync.Once
}

func New(auth identity.AuthService, source Source, logger *zap.Logger) *Session {
	return &Session{
		auth:       auth,
		resolver:   identity.NewResolver(auth, logger),
		source:     source,
		logger:     logger,
		retryDelay: minRetryDelay,
		changed:    make(chan struct{}, 1),
		updates:    make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
}

// Start registers for principal changes and runs the loop until Close or ctx
// is done.
func (s *Session) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	go s.run(ctx)
	s.unsubscribe = s.auth.OnPrincipalChanged(func(p *identity.Principal) {
		s.mu.Lock()
		s.pending = p
		s.mu.Unlock()
		select {
		case s.changed <- struct{}{}:
		default:
		}
	})
}

// View returns the current state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.view
	v.Reports = append([]*reports.Report(nil), s.view.Reports...)
	return v
}

// Updates signals after each state change. Signals coalesce.
func (s *Session) Updates() <-chan struct{} {
	return s.updates
}

// Resolver exposes the session's identity resolver, e.g. for tracking lookups.
func (s *Session) Resolver() *identity.Resolver {
	return s.resolver
}

// SignOut is the recovery action from StateAccessRestricted.
func (s *Session) SignOut(ctx context.Context) error {
	return s.auth.SignOut(ctx)
}

// Close stops the loop and releases any open subscription. It is safe to call
// more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		if s.cancel != nil {
			s.cancel()
			<-s.done
		}
	})
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	var sub *reports.Subscription
	defer func() { sub.Close() }()
	var events <-chan reports.Event

	// retry fires while a teacher has no open subscription after a failure.
	var retry <-chan time.Time
	delay := s.retryDelay

	var principal *identity.Principal
	role := identity.RoleStudent

	open := func() {
		opened, err := s.source.Subscribe(ctx)
		if err != nil {
			s.logger.Error("Failed to open report subscription", zap.Error(err))
			if errors.Is(err, reports.ErrPermissionDenied) {
				s.publish(func(v *View) {
					v.Principal, v.Role, v.State, v.Reports = principal, role, StateAccessRestricted, nil
				})
				return
			}
			retry, delay = time.After(delay), nextDelay(delay)
			return
		}
		sub, events, retry = opened, opened.C, nil
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-s.changed:
			s.mu.Lock()
			p := s.pending
			s.mu.Unlock()

			role = s.resolver.Resolve(ctx, p)
			principal = p
			if role != identity.RoleTeacher {
				sub.Close()
				sub, events, retry = nil, nil, nil
				delay = s.retryDelay
				s.publish(func(v *View) {
					v.Principal, v.Role, v.State, v.Reports = s.resolver.Current(), role, StateStudent, nil
				})
				continue
			}
			if sub == nil && retry == nil {
				s.publish(func(v *View) {
					v.Principal, v.Role, v.State, v.Reports = principal, role, StateLoading, nil
				})
				open()
			}

		case <-retry:
			retry = nil
			if role == identity.RoleTeacher && sub == nil {
				open()
			}

		case ev, ok := <-events:
			if !ok {
				sub.Close()
				sub, events = nil, nil
				s.logger.Warn("Report subscription closed, reconnecting", zap.Duration("delay", delay))
				s.publish(func(v *View) { v.State = StateReconnecting })
				retry, delay = time.After(delay), nextDelay(delay)
				continue
			}
			if ev.Err != nil {
				s.logger.Warn("Report subscription error", zap.Error(ev.Err))
				if errors.Is(ev.Err, reports.ErrPermissionDenied) {
					sub.Close()
					sub, events = nil, nil
					s.publish(func(v *View) { v.State, v.Reports = StateAccessRestricted, nil })
				}
				continue
			}
			delay = s.retryDelay
			list := ev.Reports
			s.publish(func(v *View) { v.State, v.Reports = StateLive, list })
		}
	}
}

func nextDelay(d time.Duration) time.Duration {
	if d *= 2; d > maxRetryDelay {
		return maxRetryDelay
	}
	return d
}

func (s *Session) publish(update func(*View)) {
	s.mu.Lock()
	update(&s.view)
	s.mu.Unlock()

	select {
	case s.updates <- struct{}{}:
	default:
	}
}
