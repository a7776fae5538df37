package tracking

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xyz-asif/schoolsafe/internal/features/identity"
	"github.com/xyz-asif/schoolsafe/internal/features/reports"
)

// PermissionDeniedCode identifies a lookup refused by store access rules.
const PermissionDeniedCode = "permission-denied"

// SessionEnsurer provides the session a store read runs under.
type SessionEnsurer interface {
	EnsureSession(ctx context.Context) (*identity.Principal, error)
}

// LookupStatus is the outcome of a successful lookup call.
type LookupStatus int

const (
	StatusFound LookupStatus = iota
	StatusNotFound
)

// Result is returned for both found and unknown codes.
type Result struct {
	Status        LookupStatus
	Report        *reports.Report
	AwaitingReply bool
}

// FailureKind separates access-rule failures from connectivity failures.
type FailureKind int

const (
	KindConnectivity FailureKind = iota
	KindPermission
)

func (k FailureKind) String() string {
	if k == KindPermission {
		return "permission"
	}
	return "connectivity"
}

// LookupError is a store failure during lookup.
type LookupError struct {
	Kind FailureKind
	// Code is set for permission failures so operators can tell them apart.
	Code string
	Err  error
}

func (e *LookupError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tracking lookup failed (%s): %v", e.Code, e.Err)
	}
	return fmt.Sprintf("tracking lookup failed: %v", e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// Service resolves tracking codes. It never writes.
type Service struct {
	repo   reports.Repository
	logger *zap.Logger
}

func NewService(repo reports.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Lookup normalises code and finds its report. An unknown code is a
// StatusNotFound result, not an error. A missing session that cannot be
// established fails with identity.ErrAuthSetup before the store is touched.
func (s *Service) Lookup(ctx context.Context, sessions SessionEnsurer, code string) (*Result, error) {
	if _, err := sessions.EnsureSession(ctx); err != nil {
		if errors.Is(err, identity.ErrAuthSetup) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", identity.ErrAuthSetup, err)
	}

	code = Normalize(code)
	if !Valid(code) {
		return &Result{Status: StatusNotFound}, nil
	}

	report, err := s.repo.FindOneByField(ctx, reports.FieldTrackingCode, code)
	if errors.Is(err, reports.ErrNotFound) {
		return &Result{Status: StatusNotFound}, nil
	}
	if err != nil {
		lookupErr := &LookupError{Kind: KindConnectivity, Err: err}
		if errors.Is(err, reports.ErrPermissionDenied) {
			lookupErr.Kind = KindPermission
			lookupErr.Code = PermissionDeniedCode
		}
		s.logger.Error("Tracking lookup failed", zap.Stringer("kind", lookupErr.Kind), zap.Error(err))
		return nil, lookupErr
	}

	return &Result{
		Status:        StatusFound,
		Report:        report,
		AwaitingReply: report.AdminReply == "",
	}, nil
}
