package panels

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Krimson/vitals-console/console/internal/fallback"
	"github.com/Krimson/vitals-console/console/internal/render"
	"github.com/Krimson/vitals-console/console/pkg/models"
)

// AnalysisNotAvailable is the card notice when the failure is surfaced
const AnalysisNotAvailable = "Analysis not available."

// ErrAnalysisSuperseded is returned when another patient was selected while
// the analysis was in flight. The card is left untouched.
var ErrAnalysisSuperseded = errors.New("analysis superseded by a newer selection")

type AnalysisAPI interface {
	Analyze(ctx context.Context, patientID string) (*models.AnalysisResult, error)
}

// AnalysisPanel fills the analysis card for the selected patient
type AnalysisPanel struct {
	api      AnalysisAPI
	fallback *fallback.Provider
	renderer *render.Renderer
	policy   Policy
	logger   *zap.Logger
}

func NewAnalysisPanel(api AnalysisAPI, fb *fallback.Provider, renderer *render.Renderer, policies Policies, logger *zap.Logger) *AnalysisPanel {
	return &AnalysisPanel{
		api:      api,
		fallback: fb,
		renderer: renderer,
		policy:   policies.For(EndpointAnalyze),
		logger:   logger,
	}
}

// Load satisfies the controller's analysis hook. The card is drawn through
// apply, which refuses once the selection has moved on.
func (p *AnalysisPanel) Load(ctx context.Context, patientID string, apply func(draw func()) bool) {
	_, _ = p.analyze(ctx, patientID, apply)
}

// Analyze fetches the remote assessment. The card color always follows the
// level, whatever color the backend sent.
func (p *AnalysisPanel) Analyze(ctx context.Context, patientID string) (models.AnalysisResult, error) {
	return p.analyze(ctx, patientID, nil)
}

func (p *AnalysisPanel) analyze(ctx context.Context, patientID string, apply func(draw func()) bool) (models.AnalysisResult, error) {
	show := func(draw func()) bool {
		if apply == nil {
			draw()
			return true
		}
		return apply(draw)
	}

	result, err := p.api.Analyze(ctx, patientID)
	if err == nil {
		a := *result
		a.Color = a.Level.Color()
		if !show(func() { p.renderer.RenderAnalysis(a, "") }) {
			return models.AnalysisResult{}, ErrAnalysisSuperseded
		}
		return a, nil
	}

	if p.policy == PolicyFallback {
		p.logger.Warn("Analysis request failed, using demo data",
			zap.String("patient_id", patientID),
			zap.Error(err),
		)
		a := p.fallback.Analysis(patientID)
		if !show(func() { p.renderer.RenderAnalysis(a, fallback.Notice) }) {
			return models.AnalysisResult{}, ErrAnalysisSuperseded
		}
		return a, nil
	}

	p.logger.Error("Analysis request failed", zap.String("patient_id", patientID), zap.Error(err))
	if !show(func() {
		p.renderer.Board().Update(func(s *render.Snapshot) {
			s.Analysis.Notice = AnalysisNotAvailable
		})
	}) {
		return models.AnalysisResult{}, ErrAnalysisSuperseded
	}
	return models.AnalysisResult{}, err
}
