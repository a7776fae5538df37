package triage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xyz-asif/schoolsafe/internal/features/reports"
)

// Fallback is the analysis used whenever the completion service cannot
// produce a usable result.
func Fallback() reports.AIAnalysis {
	return reports.AIAnalysis{
		Urgency:         reports.UrgencyMedium,
		Summary:         "Không thể tóm tắt tự động.",
		SuggestedAction: "Giáo viên nên trực tiếp xác minh thông tin.",
		EducationalNote: "Luôn lắng nghe học sinh với thái độ cầu thị.",
	}
}

// Analyzer turns a report into a triage bundle.
type Analyzer struct {
	completer         Completer
	schoolName        string
	systemInstruction string
	logger            *zap.Logger
}

func NewAnalyzer(completer Completer, schoolName, systemInstruction string, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		completer:         completer,
		schoolName:        schoolName,
		systemInstruction: systemInstruction,
		logger:            logger,
	}
}

// Analyze never fails: any completion or parsing problem yields Fallback.
func (a *Analyzer) Analyze(ctx context.Context, r *reports.Report) reports.AIAnalysis {
	if a.completer == nil {
		return Fallback()
	}

	text, err := a.completer.Complete(ctx, BuildPrompt(r, a.schoolName), a.systemInstruction, AnalysisSchema())
	if err != nil {
		a.logger.Warn("AI analysis failed, using fallback", zap.String("reportId", r.ID), zap.Error(err))
		return Fallback()
	}

	analysis, err := ParseAnalysis(text)
	if err != nil {
		a.logger.Warn("AI analysis unusable, using fallback", zap.String("reportId", r.ID), zap.Error(err))
		return Fallback()
	}
	return analysis
}

type analysisPayload struct {
	Urgency         *string `json:"urgency"`
	Summary         *string `json:"summary"`
	SuggestedAction *string `json:"suggestedAction"`
	EducationalNote *string `json:"educationalNote"`
}

// ParseAnalysis decodes a completion. All four fields must be present and
// urgency must be one of the four levels.
func ParseAnalysis(text string) (reports.AIAnalysis, error) {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return reports.AIAnalysis{}, errors.New("empty completion")
	}

	var p analysisPayload
	if err := json.Unmarshal([]byte(clean), &p); err != nil {
		return reports.AIAnalysis{}, fmt.Errorf("decode completion: %w", err)
	}

	switch {
	case p.Urgency == nil:
		return reports.AIAnalysis{}, errors.New("missing urgency")
	case p.Summary == nil:
		return reports.AIAnalysis{}, errors.New("missing summary")
	case p.SuggestedAction == nil:
		return reports.AIAnalysis{}, errors.New("missing suggestedAction")
	case p.EducationalNote == nil:
		return reports.AIAnalysis{}, errors.New("missing educationalNote")
	}

	urgency := reports.Urgency(strings.TrimSpace(*p.Urgency))
	if !urgency.Valid() {
		return reports.AIAnalysis{}, fmt.Errorf("unknown urgency %q", *p.Urgency)
	}

	return reports.AIAnalysis{
		Urgency:         urgency,
		Summary:         *p.Summary,
		SuggestedAction: *p.SuggestedAction,
		EducationalNote: *p.EducationalNote,
	}, nil
}
