package reports

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xyz-asif/schoolsafe/internal/features/identity"
)

// AnonymousCreator is recorded as createdBy when no session exists.
const AnonymousCreator = "anonymous_guest"

// CodeIssuer hands out tracking codes for new reports.
type CodeIssuer interface {
	Issue(ctx context.Context) (string, error)
}

// Service owns the incident lifecycle: submission, status changes, admin
// replies and attaching triage results. Writes are last-write-wins.
type Service struct {
	repo       Repository
	codes      CodeIssuer
	schoolName string
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(repo Repository, codes CodeIssuer, schoolName string, logger *zap.Logger) *Service {
	return &Service{
		repo:       repo,
		codes:      codes,
		schoolName: schoolName,
		logger:     logger,
		now:        time.Now,
	}
}

// Submit validates req and stores a new Pending report. The returned report
// carries its id and tracking code.
func (s *Service) Submit(ctx context.Context, req SubmitRequest, principal *identity.Principal) (*Report, error) {
	category, err := ValidateSubmit(&req)
	if err != nil {
		return nil, err
	}

	code, err := s.codes.Issue(ctx)
	if err != nil {
		return nil, fmt.Errorf("issue tracking code: %w", err)
	}

	report := &Report{
		Title:        req.Title,
		Description:  req.Description,
		Category:     category,
		Location:     req.Location,
		ClassGroup:   req.ClassGroup,
		Timestamp:    s.now().UnixMilli(),
		Status:       StatusPending,
		Identity:     Anonymous{},
		TrackingCode: code,
		CreatedBy:    AnonymousCreator,
		SchoolName:   s.schoolName,
		EvidenceURL:  req.EvidenceURL,
	}
	if !req.Anonymous {
		report.Identity = Disclosed{Name: req.StudentName, Contact: req.StudentContact}
	}
	if principal != nil && principal.UID != "" {
		report.CreatedBy = principal.UID
	}

	id, err := s.repo.Create(ctx, report)
	if err != nil {
		s.logger.Error("Report submission failed", zap.String("trackingCode", code), zap.Error(err))
		return nil, err
	}
	report.ID = id

	s.logger.Info("Report submitted",
		zap.String("id", id),
		zap.String("category", category.Key()),
		zap.Bool("anonymous", report.Anonymous()),
	)
	return report, nil
}

// SetStatus overwrites the status. Any transition is allowed and re-applying
// the current value is a plain rewrite.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := s.repo.UpdateFields(ctx, id, Fields{FieldStatus: status}); err != nil {
		return err
	}
	s.logger.Info("Report status updated", zap.String("id", id), zap.String("status", status.Key()))
	return nil
}

// SetAdminReply overwrites the reply shown to trackers and returns the text
// as stored. Blank text is rejected without touching the store.
func (s *Service) SetAdminReply(ctx context.Context, id, text string) (string, error) {
	reply, err := ValidateReply(text)
	if err != nil {
		return "", err
	}
	if err := s.repo.UpdateFields(ctx, id, Fields{FieldAdminReply: reply}); err != nil {
		return "", err
	}
	s.logger.Info("Admin reply saved", zap.String("id", id))
	return reply, nil
}

// AttachAnalysis persists a triage result on the report.
func (s *Service) AttachAnalysis(ctx context.Context, id string, analysis AIAnalysis) error {
	a := analysis
	return s.repo.UpdateFields(ctx, id, Fields{FieldAIAnalysis: &a})
}

func (s *Service) Get(ctx context.Context, id string) (*Report, error) {
	return s.repo.Get(ctx, id)
}

// Subscribe opens a live ordered snapshot stream.
func (s *Service) Subscribe(ctx context.Context) (*Subscription, error) {
	return s.repo.SubscribeOrdered(ctx)
}

// Snapshot returns the current ordered list with a single read.
func (s *Service) Snapshot(ctx context.Context) ([]*Report, error) {
	return s.repo.ListOrdered(ctx)
}
