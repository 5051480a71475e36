package panels

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Krimson/vitals-console/console/internal/fallback"
	"github.com/Krimson/vitals-console/console/internal/render"
	"github.com/Krimson/vitals-console/console/pkg/models"
)

// Wallet notices for surfaced failures
const (
	LoadFailed = "Could not load profile."
	SaveFailed = "Could not save profile"
)

type WalletAPI interface {
	Emergency(ctx context.Context) (*models.EmergencyProfile, error)
	SaveEmergency(ctx context.Context, profile models.EmergencyProfile) (*models.SaveEmergencyResponse, error)
	QR(ctx context.Context, text string) (*models.QRResponse, error)
}

// WalletPanel loads, saves and displays the emergency profile
type WalletPanel struct {
	api      WalletAPI
	fallback *fallback.Provider
	renderer *render.Renderer
	policy   Policy
	logger   *zap.Logger

	mu        sync.Mutex
	displayed models.EmergencyProfile
}

func NewWalletPanel(api WalletAPI, fb *fallback.Provider, renderer *render.Renderer, policies Policies, logger *zap.Logger) *WalletPanel {
	return &WalletPanel{
		api:      api,
		fallback: fb,
		renderer: renderer,
		policy:   policies.For(EndpointEmergency),
		logger:   logger,
	}
}

// Load fetches and shows the saved profile
func (p *WalletPanel) Load(ctx context.Context) (models.EmergencyProfile, error) {
	profile, err := p.api.Emergency(ctx)
	if err != nil {
		if p.policy != PolicyFallback {
			p.logger.Error("Emergency profile request failed", zap.Error(err))
			p.setNotice(LoadFailed)
			return models.EmergencyProfile{}, err
		}
		p.logger.Warn("Emergency profile request failed, using demo data", zap.Error(err))
		demo := p.fallback.Wallet()
		p.show(ctx, demo, fallback.Notice)
		return demo, nil
	}

	p.show(ctx, *profile, "")
	return *profile, nil
}

// Save posts input. Blank fields keep the currently displayed values.
// A failed save is always surfaced.
func (p *WalletPanel) Save(ctx context.Context, input models.EmergencyProfile) (models.EmergencyProfile, error) {
	p.mu.Lock()
	shown := p.displayed
	p.mu.Unlock()

	body := models.EmergencyProfile{
		Name:         firstNonEmpty(input.Name, shown.Name),
		ID:           firstNonEmpty(input.ID, shown.ID),
		ICE:          firstNonEmpty(input.ICE, shown.ICE),
		MedicalNotes: firstNonEmpty(input.MedicalNotes, shown.MedicalNotes),
	}

	resp, err := p.api.SaveEmergency(ctx, body)
	if err != nil {
		p.logger.Error("Saving emergency profile failed", zap.Error(err))
		p.setNotice(SaveFailed)
		return models.EmergencyProfile{}, fmt.Errorf("failed to save profile: %w", err)
	}

	p.show(ctx, resp.Profile, "")
	return resp.Profile, nil
}

// Displayed returns the profile currently on the card
func (p *WalletPanel) Displayed() models.EmergencyProfile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.displayed
}

func (p *WalletPanel) show(ctx context.Context, profile models.EmergencyProfile, notice string) {
	p.mu.Lock()
	p.displayed = profile
	p.mu.Unlock()

	p.renderer.RenderWallet(profile, notice)
	p.renderQR(ctx, profile.ID)
}

func (p *WalletPanel) setNotice(notice string) {
	p.renderer.Board().Update(func(s *render.Snapshot) {
		s.Wallet.Notice = notice
	})
}

// QR failures are always surfaced as "QR not available"
func (p *WalletPanel) renderQR(ctx context.Context, id string) {
	if id == "" {
		p.renderer.RenderQR("", "", false)
		return
	}

	resp, err := p.api.QR(ctx, id)
	if err != nil {
		p.logger.Warn("QR request failed", zap.String("id", id), zap.Error(err))
		p.renderer.RenderQR(id, "", false)
		return
	}
	p.renderer.RenderQR(id, resp.DataURL, true)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
