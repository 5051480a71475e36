package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Krimson/vitals-console/console/pkg/models"
)

// Client talks to the monitoring backend. Every call is a single attempt:
// no retries and no backoff.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient creates a client for baseURL. A zero timeout means none.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetRetryCount(0).
		SetLogger(logger.Sugar()).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	return &Client{
		http:   client,
		logger: logger,
	}
}

// FetchJSON issues GET path and decodes the body into out
func (c *Client) FetchJSON(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// PostJSON issues POST path with a JSON body and decodes the reply into out
func (c *Client) PostJSON(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	requestID := uuid.NewString()
	req := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", requestID)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Debug("API call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return &RequestError{Method: method, Path: path, Err: err}
	}

	c.logger.Debug("API call completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("elapsed", time.Since(start)),
	)

	if !resp.IsSuccess() {
		return &RequestError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("unexpected status %s", resp.Status()),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &DecodeError{Path: path, Err: err}
	}
	return nil
}

// ===== Endpoints =====

// Ping GET /api/ping
func (c *Client) Ping(ctx context.Context) (*models.PingResponse, error) {
	var resp models.PingResponse
	if err := c.FetchJSON(ctx, "/api/ping", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Steps GET /api/steps?topic=
func (c *Client) Steps(ctx context.Context, topic string) (*models.StepsResponse, error) {
	var resp models.StepsResponse
	if err := c.FetchJSON(ctx, "/api/steps?topic="+url.QueryEscape(topic), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Emergency GET /api/emergency
func (c *Client) Emergency(ctx context.Context) (*models.EmergencyProfile, error) {
	var resp models.EmergencyProfile
	if err := c.FetchJSON(ctx, "/api/emergency", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SaveEmergency POST /api/emergency
func (c *Client) SaveEmergency(ctx context.Context, profile models.EmergencyProfile) (*models.SaveEmergencyResponse, error) {
	body := map[string]string{
		"name":          profile.Name,
		"id":            profile.ID,
		"ice":           profile.ICE,
		"medical_notes": profile.MedicalNotes,
	}

	var resp models.SaveEmergencyResponse
	if err := c.PostJSON(ctx, "/api/emergency", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QR GET /api/qr?text=
func (c *Client) QR(ctx context.Context, text string) (*models.QRResponse, error) {
	var resp models.QRResponse
	if err := c.FetchJSON(ctx, "/api/qr?text="+url.QueryEscape(text), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Patients GET /api/patients
func (c *Client) Patients(ctx context.Context) (*models.PatientsResponse, error) {
	var resp models.PatientsResponse
	if err := c.FetchJSON(ctx, "/api/patients", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Vitals GET /api/patient/{id}/vitals?hours=
func (c *Client) Vitals(ctx context.Context, patientID string, hours int) (*models.VitalsSeries, error) {
	path := fmt.Sprintf("/api/patient/%s/vitals?hours=%d", url.PathEscape(patientID), hours)

	var resp models.VitalsSeries
	if err := c.FetchJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Summary GET /api/patient/{id}/summary
func (c *Client) Summary(ctx context.Context, patientID string) (*models.SummaryResponse, error) {
	var resp models.SummaryResponse
	if err := c.FetchJSON(ctx, "/api/patient/"+url.PathEscape(patientID)+"/summary", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Analyze GET /api/patient/{id}/analyze
func (c *Client) Analyze(ctx context.Context, patientID string) (*models.AnalysisResult, error) {
	var resp models.AnalysisResult
	if err := c.FetchJSON(ctx, "/api/patient/"+url.PathEscape(patientID)+"/analyze", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VitalsAndSummary issues both dashboard calls in parallel and waits for both.
// If either fails the pair fails. The sibling call is not cancelled.
func (c *Client) VitalsAndSummary(ctx context.Context, patientID string, hours int) (*models.VitalsSeries, *models.SummaryResponse, error) {
	var (
		g       errgroup.Group
		vitals  *models.VitalsSeries
		summary *models.SummaryResponse
	)

	g.Go(func() error {
		v, err := c.Vitals(ctx, patientID, hours)
		if err != nil {
			return err
		}
		vitals = v
		return nil
	})
	g.Go(func() error {
		s, err := c.Summary(ctx, patientID)
		if err != nil {
			return err
		}
		summary = s
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return vitals, summary, nil
}
