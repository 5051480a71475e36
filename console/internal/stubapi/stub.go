// Package stubapi is an in-memory stand-in for the monitoring backend. It
// serves the same JSON contract with deterministic demo data and lets tests
// inject failures or hold responses.
package stubapi

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/Krimson/vitals-console/console/pkg/models"
)

// Route names used for failure injection, holds and call counters
const (
	RoutePing          = "ping"
	RouteSteps         = "steps"
	RouteEmergencyGet  = "emergency.get"
	RouteEmergencyPost = "emergency.post"
	RouteQR            = "qr"
	RoutePatients      = "patients"
	RouteVitals        = "vitals"
	RouteSummary       = "summary"
	RouteAnalyze       = "analyze"
)

const stepMinutes = 30

// Server is the stub backend
type Server struct {
	Now func() time.Time

	mu        sync.Mutex
	patients  []models.Patient
	profile   models.EmergencyProfile
	analyses  map[string]models.AnalysisResult
	summaries map[string]models.SummaryResponse
	vitals    map[string]models.VitalsSeries
	failures  map[string]int
	holds     map[string]chan struct{}
	calls     map[string]int
}

// New creates a stub seeded with the three demo patients and the demo wallet
func New() *Server {
	return &Server{
		Now: time.Now,
		patients: []models.Patient{
			{ID: "p001", Name: "Amina E.", Age: intPtr(64), Bed: "3B-12", MRN: "MRN-1001", Status: "Stable", Risk: 12},
			{ID: "p002", Name: "Rahim K.", Age: intPtr(72), Bed: "4A-03", MRN: "MRN-1002", Status: "Watch", Risk: 38},
			{ID: "p003", Name: "Leyla S.", Age: intPtr(58), Bed: "2C-07", MRN: "MRN-1003", Status: "Critical", Risk: 72},
		},
		profile: models.EmergencyProfile{
			Name:         "Demo User",
			ID:           "AZ-ABC-123456",
			ICE:          "+1 480 555 1212",
			MedicalNotes: "No known allergies. Blood type O+.",
		},
		analyses:  make(map[string]models.AnalysisResult),
		summaries: make(map[string]models.SummaryResponse),
		vitals:    make(map[string]models.VitalsSeries),
		failures:  make(map[string]int),
		holds:     make(map[string]chan struct{}),
		calls:     make(map[string]int),
	}
}

// Router registers the backend routes
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/ping", s.wrap(RoutePing, s.handlePing)).Methods("GET")
	api.HandleFunc("/steps", s.wrap(RouteSteps, s.handleSteps)).Methods("GET")
	api.HandleFunc("/emergency", s.wrap(RouteEmergencyGet, s.handleGetEmergency)).Methods("GET")
	api.HandleFunc("/emergency", s.wrap(RouteEmergencyPost, s.handleSaveEmergency)).Methods("POST")
	api.HandleFunc("/qr", s.wrap(RouteQR, s.handleQR)).Methods("GET")
	api.HandleFunc("/patients", s.wrap(RoutePatients, s.handlePatients)).Methods("GET")
	api.HandleFunc("/patient/{id}/vitals", s.wrap(RouteVitals, s.handleVitals)).Methods("GET")
	api.HandleFunc("/patient/{id}/summary", s.wrap(RouteSummary, s.handleSummary)).Methods("GET")
	api.HandleFunc("/patient/{id}/analyze", s.wrap(RouteAnalyze, s.handleAnalyze)).Methods("GET")

	return router
}

// ===== Test controls =====

// Fail makes route answer with status until Heal is called
func (s *Server) Fail(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = status
}

func (s *Server) Heal(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, route)
}

// Hold blocks requests to route for patientID (empty for non-patient routes)
// until the returned release function is called.
func (s *Server) Hold(route, patientID string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.holds[holdKey(route, patientID)] = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.holds, holdKey(route, patientID))
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

func (s *Server) SetPatients(patients []models.Patient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patients = append([]models.Patient(nil), patients...)
}

// SetAnalysis enables /analyze for a patient. Without it the route answers 404.
func (s *Server) SetAnalysis(patientID string, result models.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses[patientID] = result
}

// SetSummary overrides the generated summary for a patient
func (s *Server) SetSummary(patientID string, summary models.SummaryResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[patientID] = summary
}

// SetVitals overrides the generated series for a patient
func (s *Server) SetVitals(patientID string, series models.VitalsSeries) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vitals[patientID] = series
}

func (s *Server) Profile() models.EmergencyProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

func holdKey(route, patientID string) string {
	return route + ":" + patientID
}

func (s *Server) wrap(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := mux.Vars(r)["id"]

		s.mu.Lock()
		s.calls[route]++
		status, failing := s.failures[route]
		hold := s.holds[holdKey(route, patientID)]
		s.mu.Unlock()

		if hold != nil {
			select {
			case <-hold:
			case <-r.Context().Done():
				return
			}
		}

		if failing {
			respondError(w, status, fmt.Sprintf("%s unavailable", route))
			return
		}
		next(w, r)
	}
}

// ===== Handlers =====

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.PingResponse{
		OK:      true,
		Version: "stub",
		Time:    s.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleSteps(w http.ResponseWriter, r *http.Request) {
	topic := strings.TrimSpace(r.URL.Query().Get("topic"))
	steps := LookupSteps(topic)
	if steps == nil {
		steps = []string{"Sorry, no steps found for this topic yet."}
	}
	respondJSON(w, http.StatusOK, models.StepsResponse{Topic: topic, Steps: steps})
}

func (s *Server) handleGetEmergency(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.Profile())
}

func (s *Server) handleSaveEmergency(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		body = map[string]interface{}{}
	}

	s.mu.Lock()
	fields := map[string]*string{
		"name":          &s.profile.Name,
		"id":            &s.profile.ID,
		"ice":           &s.profile.ICE,
		"medical_notes": &s.profile.MedicalNotes,
	}
	for key, field := range fields {
		if value, ok := body[key].(string); ok {
			*field = value
		}
	}
	s.profile.UpdatedAt = s.Now().UTC().Format(time.RFC3339)
	profile := s.profile
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, models.SaveEmergencyResponse{OK: true, Profile: profile})
}

func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	text := strings.TrimSpace(r.URL.Query().Get("text"))
	if text == "" {
		respondError(w, http.StatusBadRequest, "Missing ?text=")
		return
	}
	// not a real image: the payload is the text itself
	respondJSON(w, http.StatusOK, models.QRResponse{
		DataURL: "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(text)),
	})
}

func (s *Server) handlePatients(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	patients := append([]models.Patient(nil), s.patients...)
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, models.PatientsResponse{Patients: patients})
}

func (s *Server) handleVitals(w http.ResponseWriter, r *http.Request) {
	patientID := mux.Vars(r)["id"]
	hours := getQueryInt(r, "hours", 48)

	s.mu.Lock()
	series, ok := s.vitals[patientID]
	s.mu.Unlock()
	if !ok {
		series = GenerateSeries(patientID, hours, s.Now())
	}

	respondJSON(w, http.StatusOK, series)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	patientID := mux.Vars(r)["id"]

	s.mu.Lock()
	summary, ok := s.summaries[patientID]
	s.mu.Unlock()
	if !ok {
		series := GenerateSeries(patientID, 48, s.Now())
		summary = Summarize(series)
	}

	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	patientID := mux.Vars(r)["id"]

	s.mu.Lock()
	result, ok := s.analyses[patientID]
	s.mu.Unlock()
	if !ok {
		respondError(w, http.StatusNotFound, "analysis not available")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ===== Demo data =====

// GenerateSeries produces a deterministic series for a patient: the seed is
// derived from the id, samples are every 30 minutes ending near now.
func GenerateSeries(patientID string, hours int, now time.Time) models.VitalsSeries {
	seed := int64(0)
	for _, b := range []byte(patientID) {
		seed += int64(b)
	}
	rnd := rand.New(rand.NewSource(seed))

	points := hours * 60 / stepMinutes
	if points < 2 {
		points = 2
	}
	start := now.Add(-time.Duration(hours) * time.Hour).Truncate(time.Minute)

	baseHR := float64(68 + rnd.Intn(11))
	baseSpO2 := float64(94 + rnd.Intn(4))
	baseRR := float64(14 + rnd.Intn(5))
	baseTemp := 36.8 + rnd.Float64()*0.4
	baseSys := float64(110 + rnd.Intn(16))
	baseDia := float64(70 + rnd.Intn(13))

	series := models.VitalsSeries{
		Timestamps: make([]string, 0, points),
		HR:         make([]float64, 0, points),
		SpO2:       make([]float64, 0, points),
		BPSys:      make([]float64, 0, points),
		BPDia:      make([]float64, 0, points),
		RR:         make([]float64, 0, points),
		Temp:       make([]float64, 0, points),
	}

	for i := 0; i < points; i++ {
		ts := start.Add(time.Duration(i*stepMinutes) * time.Minute)
		series.Timestamps = append(series.Timestamps, ts.Format("2006-01-02T15:04"))

		series.HR = append(series.HR, clamp(math.Trunc(baseHR+rnd.NormFloat64()*4), 40, 150))
		series.SpO2 = append(series.SpO2, clamp(math.Trunc(baseSpO2+rnd.NormFloat64()*1.2), 85, 100))
		series.RR = append(series.RR, clamp(math.Trunc(baseRR+rnd.NormFloat64()*2), 6, 40))
		series.Temp = append(series.Temp, round1(clamp(baseTemp+rnd.NormFloat64()*0.15, 34, 41)))

		sys := clamp(math.Trunc(baseSys+rnd.NormFloat64()*6), 80, 200)
		dia := clamp(math.Trunc(baseDia+rnd.NormFloat64()*5), 40, 120)
		if dia > sys-20 {
			dia = math.Max(sys-20, 40)
		}
		series.BPSys = append(series.BPSys, sys)
		series.BPDia = append(series.BPDia, dia)
	}
	series.LastUpdated = series.Timestamps[len(series.Timestamps)-1]

	return series
}

// Summarize derives latest values, 24h deltas and ranges plus threshold alerts
func Summarize(series models.VitalsSeries) models.SummaryResponse {
	n := series.Len()
	if n == 0 {
		return models.SummaryResponse{Alerts: []string{}}
	}

	cut := n * 24 / 48
	if cut < 1 {
		cut = 1
	}
	idx := n - cut

	last := func(values []float64) float64 { return values[n-1] }
	delta := func(values []float64) models.Delta { return models.NumberDelta(last(values) - values[idx]) }
	window := func(values []float64) models.Range {
		r := models.Range{Min: values[idx], Max: values[idx]}
		for _, v := range values[idx:] {
			r.Min = math.Min(r.Min, v)
			r.Max = math.Max(r.Max, v)
		}
		return r
	}

	latest := models.Metrics{
		HR:    last(series.HR),
		SpO2:  last(series.SpO2),
		BPSys: last(series.BPSys),
		BPDia: last(series.BPDia),
		RR:    last(series.RR),
		Temp:  last(series.Temp),
	}

	resp := models.SummaryResponse{
		Summary: models.Summary{
			Latest: latest,
			Deltas: models.Deltas{
				HR:    delta(series.HR),
				SpO2:  delta(series.SpO2),
				BPSys: delta(series.BPSys),
				BPDia: delta(series.BPDia),
				RR:    delta(series.RR),
				Temp:  models.NumberDelta(round1(last(series.Temp) - series.Temp[idx])),
			},
			Range24h: models.Ranges{
				HR:    window(series.HR),
				SpO2:  window(series.SpO2),
				BPSys: window(series.BPSys),
				BPDia: window(series.BPDia),
				RR:    window(series.RR),
				Temp:  window(series.Temp),
			},
		},
		Alerts:      []string{},
		LastUpdated: series.LastUpdated,
	}

	if latest.SpO2 < 92 {
		resp.Alerts = append(resp.Alerts, "Low SpO₂")
	}
	if latest.HR > 110 {
		resp.Alerts = append(resp.Alerts, "Tachycardia")
	}
	if latest.Temp >= 38.0 {
		resp.Alerts = append(resp.Alerts, "Fever")
	}
	if latest.BPSys >= 160 {
		resp.Alerts = append(resp.Alerts, "Hypertension")
	}

	return resp
}

// ===== Utilities =====

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":  message,
		"status": status,
	})
}

func getQueryInt(r *http.Request, key string, defaultValue int) int {
	value, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func intPtr(v int) *int {
	return &v
}
