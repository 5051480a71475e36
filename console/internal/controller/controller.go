// Package controller orchestrates patient selection and dashboard refreshes.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Krimson/vitals-console/console/internal/render"
	"github.com/Krimson/vitals-console/console/pkg/models"
)

// Status lines shown on the dashboard
const (
	StatusLoading        = "Loading…"
	StatusLoadFailed     = "Could not load data."
	StatusPatientsFailed = "Could not load patients."
)

const DefaultVitalsHours = 48

var (
	ErrNoPatient  = errors.New("no patient selected")
	ErrSuperseded = errors.New("refresh superseded by a newer request")
)

// State of the dashboard
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DashboardAPI is the part of the backend client the controller needs
type DashboardAPI interface {
	Patients(ctx context.Context) (*models.PatientsResponse, error)
	VitalsAndSummary(ctx context.Context, patientID string, hours int) (*models.VitalsSeries, *models.SummaryResponse, error)
}

// AnalysisLoader refreshes the analysis card for a patient. It must draw
// through apply, which returns false without drawing when another patient
// has been selected since the load began.
type AnalysisLoader interface {
	Load(ctx context.Context, patientID string, apply func(draw func()) bool)
}

type Options struct {
	Hours    int
	Analysis AnalysisLoader
	Logger   *zap.Logger
}

// Controller owns the selected patient, the request generation and the chart
// handles. A refresh result is applied only when its generation is still the
// latest one issued; an analysis result only when its selection is.
type Controller struct {
	api      DashboardAPI
	renderer *render.Renderer
	charts   *render.ChartRegistry
	analysis AnalysisLoader
	hours    int
	logger   *zap.Logger

	mu         sync.Mutex
	state      State
	selected   string
	patients   []models.Patient
	generation uint64
	selection  uint64
	listeners  []func(State)
}

func New(api DashboardAPI, renderer *render.Renderer, opts Options) *Controller {
	if opts.Hours <= 0 {
		opts.Hours = DefaultVitalsHours
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Controller{
		api:      api,
		renderer: renderer,
		charts:   render.NewChartRegistry(),
		analysis: opts.Analysis,
		hours:    opts.Hours,
		logger:   opts.Logger,
	}
}

// OnStateChange registers fn to run on every state transition. fn runs with
// the controller lock held and must not call back into the controller.
func (c *Controller) OnStateChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Start loads the patient list, selects the first patient and refreshes
func (c *Controller) Start(ctx context.Context) error {
	patients, err := c.LoadPatients(ctx)
	if err != nil {
		return err
	}
	if len(patients) == 0 {
		c.logger.Info("No patients to display")
		return nil
	}
	return c.Select(ctx, patients[0].ID)
}

// LoadPatients fetches and renders the patient list
func (c *Controller) LoadPatients(ctx context.Context) ([]models.Patient, error) {
	resp, err := c.api.Patients(ctx)
	if err != nil {
		c.logger.Error("Failed to load patients", zap.Error(err))
		c.renderer.SetStatus(StatusPatientsFailed)
		return nil, fmt.Errorf("failed to load patients: %w", err)
	}

	c.mu.Lock()
	c.patients = append([]models.Patient(nil), resp.Patients...)
	selected := c.selected
	c.mu.Unlock()

	c.renderer.RenderPatients(resp.Patients, selected)
	c.logger.Debug("Patients loaded", zap.Int("count", len(resp.Patients)))
	return resp.Patients, nil
}

// Select makes patientID current, refreshes the dashboard and then the
// analysis card. The refresh error is returned.
func (c *Controller) Select(ctx context.Context, patientID string) error {
	if patientID == "" {
		return ErrNoPatient
	}

	c.mu.Lock()
	c.selected = patientID
	c.selection++
	sel := c.selection
	c.mu.Unlock()
	c.renderer.MarkSelected(patientID)

	err := c.Refresh(ctx)

	if c.analysis != nil && !errors.Is(err, ErrSuperseded) {
		c.analysis.Load(ctx, patientID, func(draw func()) bool {
			return c.applyIfSelected(sel, patientID, draw)
		})
	}
	return err
}

// applyIfSelected runs draw under the lock when sel is still the latest
// selection
func (c *Controller) applyIfSelected(sel uint64, patientID string, draw func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sel != c.selection {
		c.logger.Info("Discarding stale analysis",
			zap.String("patient_id", patientID),
			zap.String("selected", c.selected),
		)
		return false
	}
	draw()
	return true
}

// Refresh re-fetches vitals and summary for the selected patient. Both calls
// run concurrently and must both succeed. On failure prior slots stay on
// screen and only the status line changes.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.selected == "" {
		c.mu.Unlock()
		return ErrNoPatient
	}
	c.generation++
	gen := c.generation
	patientID := c.selected
	c.setStateLocked(StateLoading)
	c.renderer.SetStatus(StatusLoading)
	c.mu.Unlock()

	vitals, summary, err := c.api.VitalsAndSummary(ctx, patientID, c.hours)
	if err == nil {
		err = vitals.Validate()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.logger.Info("Discarding stale refresh",
			zap.String("patient_id", patientID),
			zap.Uint64("generation", gen),
			zap.Uint64("latest_generation", c.generation),
		)
		return ErrSuperseded
	}

	if err != nil {
		c.logger.Error("Dashboard refresh failed",
			zap.String("patient_id", patientID),
			zap.Uint64("generation", gen),
			zap.Error(err),
		)
		c.setStateLocked(StateFailed)
		c.renderer.SetStatus(StatusLoadFailed)
		return fmt.Errorf("failed to refresh %s: %w", patientID, err)
	}

	c.renderer.RenderDashboard(c.charts, patientID, summary, vitals)
	c.renderer.SetStatus("")
	c.setStateLocked(StateReady)

	c.logger.Debug("Dashboard refreshed",
		zap.String("patient_id", patientID),
		zap.Uint64("generation", gen),
		zap.Int("samples", vitals.Len()),
		zap.Int("alerts", len(summary.Alerts)),
	)
	return nil
}

func (c *Controller) setStateLocked(s State) {
	c.state = s
	c.renderer.SetState(s.String())
	for _, fn := range c.listeners {
		fn(s)
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

func (c *Controller) Patients() []models.Patient {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Patient(nil), c.patients...)
}

func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Charts exposes the chart registry for inspection
func (c *Controller) Charts() *render.ChartRegistry {
	return c.charts
}

// Close destroys every live chart
func (c *Controller) Close() {
	c.charts.DestroyAll()
}
