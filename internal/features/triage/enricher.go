package triage

import (
	"context"

	"go.uber.org/zap"

	"github.com/xyz-asif/schoolsafe/internal/features/reports"
	"github.com/xyz-asif/schoolsafe/internal/pkg/notify"
)

// AnalysisStore persists a triage result on a report.
type AnalysisStore interface {
	AttachAnalysis(ctx context.Context, id string, analysis reports.AIAnalysis) error
}

// AlertSender delivers urgent-report alerts to staff.
type AlertSender interface {
	Send(ctx context.Context, alert notify.Alert) error
}

// Enricher attaches triage to reports on view.
type Enricher struct {
	analyzer *Analyzer
	store    AnalysisStore
	alerts   AlertSender
	logger   *zap.Logger
}

func NewEnricher(analyzer *Analyzer, store AnalysisStore, alerts AlertSender, logger *zap.Logger) *Enricher {
	return &Enricher{analyzer: analyzer, store: store, alerts: alerts, logger: logger}
}

// Ensure returns the report's analysis, running triage only when none is
// attached yet. The result is set on r and persisted best-effort.
func (e *Enricher) Ensure(ctx context.Context, r *reports.Report) reports.AIAnalysis {
	if r.AIAnalysis != nil {
		return *r.AIAnalysis
	}
	return e.run(ctx, r)
}

// Reanalyze runs triage even when an analysis is already attached.
func (e *Enricher) Reanalyze(ctx context.Context, r *reports.Report) reports.AIAnalysis {
	return e.run(ctx, r)
}

func (e *Enricher) run(ctx context.Context, r *reports.Report) reports.AIAnalysis {
	analysis := e.analyzer.Analyze(ctx, r)
	a := analysis
	r.AIAnalysis = &a

	if e.store != nil && r.ID != "" {
		if err := e.store.AttachAnalysis(ctx, r.ID, analysis); err != nil {
			e.logger.Warn("Failed to persist AI analysis", zap.String("reportId", r.ID), zap.Error(err))
		}
	}

	if analysis.Urgency.Urgent() && e.alerts != nil {
		if err := e.alerts.Send(ctx, urgentAlert(r, analysis)); err != nil {
			e.logger.Warn("Failed to send urgent report alert", zap.String("reportId", r.ID), zap.Error(err))
		}
	}
	return analysis
}

func urgentAlert(r *reports.Report, analysis reports.AIAnalysis) notify.Alert {
	color := "warning"
	if analysis.Urgency == reports.UrgencyEmergency {
		color = "danger"
	}

	fields := []notify.Field{
		{Title: "Mức độ", Value: string(analysis.Urgency)},
		{Title: "Danh mục", Value: string(r.Category)},
	}
	if r.ClassGroup != "" {
		fields = append(fields, notify.Field{Title: "Lớp", Value: r.ClassGroup})
	}
	if r.Location != "" {
		fields = append(fields, notify.Field{Title: "Vị trí", Value: r.Location})
	}

	return notify.Alert{
		Title:  "Báo cáo cần xử lý gấp: " + r.Title,
		Text:   analysis.Summary + "\n" + analysis.SuggestedAction,
		Color:  color,
		Fields: fields,
		Footer: r.SchoolName,
	}
}
