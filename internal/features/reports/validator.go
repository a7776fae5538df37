package reports

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xyz-asif/schoolsafe/internal/pkg/validator"
)

var (
	// ErrInvalidInput is wrapped by every submission validation failure.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptyReply is returned for blank admin replies before any store call.
	ErrEmptyReply = errors.New("reply must not be empty")
	// ErrInvalidStatus is returned for a status outside the enumeration.
	ErrInvalidStatus = errors.New("invalid status")
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// ValidateSubmit checks and normalises a submission in place.
func ValidateSubmit(req *SubmitRequest) (Category, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Location = strings.TrimSpace(req.Location)
	req.ClassGroup = NormalizeClassGroup(req.ClassGroup)
	req.StudentName = strings.TrimSpace(req.StudentName)
	req.StudentContact = strings.TrimSpace(req.StudentContact)
	req.EvidenceURL = strings.TrimSpace(req.EvidenceURL)

	if req.Title == "" {
		return "", invalid("title is required")
	}
	if len(req.Title) > maxTitleLength {
		return "", invalid("title must be at most %d characters", maxTitleLength)
	}
	if req.Description == "" {
		return "", invalid("description is required")
	}
	if len(req.Description) > maxDescriptionLength {
		return "", invalid("description must be at most %d characters", maxDescriptionLength)
	}

	category, err := ParseCategory(strings.TrimSpace(req.Category))
	if err != nil {
		return "", invalid("%v", err)
	}

	if !req.Anonymous && req.StudentName == "" {
		return "", invalid("studentName is required when not anonymous")
	}
	if req.EvidenceURL != "" && !validator.IsSecureURL(req.EvidenceURL) {
		return "", invalid("evidenceUrl must be an https URL")
	}

	return category, nil
}

// NormalizeClassGroup trims and upper-cases a class label such as "7b".
func NormalizeClassGroup(classGroup string) string {
	return strings.ToUpper(strings.TrimSpace(classGroup))
}

// ValidateReply trims the reply text and rejects blank input.
func ValidateReply(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}
