package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Krimson/vitals-console/console/internal/stubapi"
	"github.com/Krimson/vitals-console/console/pkg/models"
)

func newStubClient(t *testing.T) (*Client, *stubapi.Server) {
	t.Helper()
	stub := stubapi.New()
	stub.Now = func() time.Time { return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC) }
	srv := httptest.NewServer(stub.Router())
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 0, zap.NewNop()), stub
}

func TestPatients(t *testing.T) {
	c, _ := newStubClient(t)

	resp, err := c.Patients(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Patients, 3)
	require.Equal(t, "Amina E.", resp.Patients[0].Name)
	require.Equal(t, "3B-12", resp.Patients[0].Bed)
}

func TestEmergencyRoundTrip(t *testing.T) {
	c, _ := newStubClient(t)
	ctx := context.Background()

	saved, err := c.SaveEmergency(ctx, models.EmergencyProfile{Name: "A", ID: "B", ICE: "C", MedicalNotes: "D"})
	require.NoError(t, err)
	require.True(t, saved.OK)

	got, err := c.Emergency(ctx)
	require.NoError(t, err)
	require.Equal(t, "A", got.Name)
	require.Equal(t, "B", got.ID)
	require.Equal(t, "C", got.ICE)
	require.Equal(t, "D", got.MedicalNotes)
	require.NotEmpty(t, got.UpdatedAt)
}

func TestStatusFailureIsRequestError(t *testing.T) {
	c, stub := newStubClient(t)
	stub.Fail(stubapi.RouteSteps, http.StatusInternalServerError)

	_, err := c.Steps(context.Background(), "birth certificate")
	require.Error(t, err)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	require.Equal(t, http.StatusInternalServerError, reqErr.StatusCode)
	require.Equal(t, http.MethodGet, reqErr.Method)
	require.False(t, reqErr.Transport())
	require.True(t, IsRequestError(err))
}

func TestTransportFailureIsRequestError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c := NewClient(addr, time.Second, zap.NewNop())
	_, err := c.Patients(context.Background())

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	require.True(t, reqErr.Transport())
	require.Equal(t, "/api/patients", reqErr.Path)
}

func TestMalformedJSONIsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"patients": "nope"}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, 0, zap.NewNop())
	_, err := c.Patients(context.Background())

	var decErr *DecodeError
	require.True(t, errors.As(err, &decErr))
	require.False(t, IsRequestError(err))
}

func TestRequestCarriesRequestID(t *testing.T) {
	ids := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids <- r.Header.Get("X-Request-ID")
		_, _ = w.Write([]byte(`{"ok":true,"version":"1.1.0","time":"now"}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, 0, zap.NewNop())
	ping, err := c.Ping(context.Background())
	require.NoError(t, err)
	require.True(t, ping.OK)
	require.Len(t, <-ids, 36)
}

func TestVitalsAndSummary(t *testing.T) {
	c, _ := newStubClient(t)

	vitals, summary, err := c.VitalsAndSummary(context.Background(), "p002", 24)
	require.NoError(t, err)
	require.Equal(t, 48, vitals.Len())
	require.NoError(t, vitals.Validate())
	require.NotNil(t, summary.Alerts)
}

func TestVitalsAndSummary_EitherFailureFailsPair(t *testing.T) {
	for _, route := range []string{stubapi.RouteVitals, stubapi.RouteSummary} {
		t.Run(route, func(t *testing.T) {
			c, stub := newStubClient(t)
			stub.Fail(route, http.StatusBadGateway)

			vitals, summary, err := c.VitalsAndSummary(context.Background(), "p001", 48)
			require.Error(t, err)
			require.Nil(t, vitals)
			require.Nil(t, summary)
			require.Equal(t, 1, stub.Calls(stubapi.RouteVitals))
			require.Equal(t, 1, stub.Calls(stubapi.RouteSummary))
		})
	}
}

func TestQuerySpecialCharacters(t *testing.T) {
	c, _ := newStubClient(t)

	resp, err := c.Steps(context.Background(), "id card & more")
	require.NoError(t, err)
	require.Equal(t, "id card & more", resp.Topic)
}
