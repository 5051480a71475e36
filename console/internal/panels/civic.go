package panels

import (
	"context"

	"go.uber.org/zap"

	"github.com/Krimson/vitals-console/console/internal/fallback"
	"github.com/Krimson/vitals-console/console/internal/render"
	"github.com/Krimson/vitals-console/console/pkg/models"
)

// StepsNotAvailable replaces the step list when the failure is surfaced
const StepsNotAvailable = "Could not load steps."

type StepsAPI interface {
	Steps(ctx context.Context, topic string) (*models.StepsResponse, error)
}

// CivicPanel looks up civic-process steps
type CivicPanel struct {
	api      StepsAPI
	fallback *fallback.Provider
	renderer *render.Renderer
	policy   Policy
	logger   *zap.Logger
}

func NewCivicPanel(api StepsAPI, fb *fallback.Provider, renderer *render.Renderer, policies Policies, logger *zap.Logger) *CivicPanel {
	return &CivicPanel{
		api:      api,
		fallback: fb,
		renderer: renderer,
		policy:   policies.For(EndpointSteps),
		logger:   logger,
	}
}

// Lookup renders the steps for topic. With the fallback policy a failed call
// yields the demo steps and a nil error.
func (p *CivicPanel) Lookup(ctx context.Context, topic string) ([]string, error) {
	resp, err := p.api.Steps(ctx, topic)
	if err == nil {
		p.renderer.RenderSteps(topic, resp.Steps, "")
		return resp.Steps, nil
	}

	if p.policy == PolicyFallback {
		p.logger.Warn("Steps request failed, using demo data", zap.String("topic", topic), zap.Error(err))
		steps := p.fallback.Steps(topic)
		p.renderer.RenderSteps(topic, steps, fallback.Notice)
		return steps, nil
	}

	p.logger.Error("Steps request failed", zap.String("topic", topic), zap.Error(err))
	p.renderer.RenderSteps(topic, nil, StepsNotAvailable)
	return nil, err
}

// Demo renders the built-in steps for topic without calling the backend
func (p *CivicPanel) Demo(topic string) []string {
	steps := p.fallback.Steps(topic)
	p.renderer.RenderSteps(topic, steps, "")
	return steps
}
