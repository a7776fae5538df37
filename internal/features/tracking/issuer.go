package tracking

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xyz-asif/schoolsafe/internal/features/reports"
)

// maxIssueAttempts bounds regeneration when a code is already taken.
const maxIssueAttempts = 5

// Issuer hands out codes for new reports, re-drawing while a code is taken.
// Uniqueness stays best-effort: a failed existence check accepts the code.
type Issuer struct {
	repo     reports.Repository
	logger   *zap.Logger
	generate func() (string, error)
}

var _ reports.CodeIssuer = (*Issuer)(nil)

func NewIssuer(repo reports.Repository, logger *zap.Logger) *Issuer {
	return &Issuer{repo: repo, logger: logger, generate: Generate}
}

func (i *Issuer) Issue(ctx context.Context) (string, error) {
	var code string
	for attempt := 1; attempt <= maxIssueAttempts; attempt++ {
		var err error
		code, err = i.generate()
		if err != nil {
			return "", err
		}

		_, err = i.repo.FindOneByField(ctx, reports.FieldTrackingCode, code)
		if errors.Is(err, reports.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			i.logger.Warn("Tracking code check failed, accepting code", zap.Error(err))
			return code, nil
		}
		i.logger.Debug("Tracking code collision", zap.Int("attempt", attempt))
	}

	i.logger.Warn("Tracking code still colliding after retries", zap.Int("attempts", maxIssueAttempts))
	return code, nil
}
