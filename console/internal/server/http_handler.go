package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Krimson/vitals-console/console/internal/controller"
	"github.com/Krimson/vitals-console/console/internal/panels"
	"github.com/Krimson/vitals-console/console/internal/render"
	"github.com/Krimson/vitals-console/console/pkg/models"
)

// Deps are the console components the board API drives
type Deps struct {
	Controller *controller.Controller
	Civic      *panels.CivicPanel
	Wallet     *panels.WalletPanel
	Analysis   *panels.AnalysisPanel
	Board      *render.Board
	Page       panels.Page
	Logger     *zap.Logger
}

// HTTPHandler serves the board API
type HTTPHandler struct {
	deps   Deps
	logger *zap.Logger
}

func NewHTTPHandler(deps Deps) *HTTPHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{deps: deps, logger: logger}
}

// RegisterRoutes registers the board routes on router
func (h *HTTPHandler) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api/board").Subrouter()

	api.HandleFunc("", h.GetBoard).Methods("GET")
	api.HandleFunc("/page", h.GetPage).Methods("GET")
	api.HandleFunc("/refresh", h.Refresh).Methods("POST")
	api.HandleFunc("/patients", h.ListPatients).Methods("GET")
	api.HandleFunc("/patients/{id}/select", h.SelectPatient).Methods("POST")
	api.HandleFunc("/patients/{id}/analyze", h.AnalyzePatient).Methods("POST")
	api.HandleFunc("/steps", h.GetSteps).Methods("GET")
	api.HandleFunc("/wallet", h.GetWallet).Methods("GET")
	api.HandleFunc("/wallet", h.SaveWallet).Methods("POST")
}

// GetBoard returns the current slot snapshot
// @Summary Current board
// @Description Returns every display slot of the board
// @Tags Board
// @Produce json
// @Success 200 {object} render.Snapshot
// @Router /api/board [get]
func (h *HTTPHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.deps.Board.Snapshot())
}

// GetPage returns the mounted page
// @Summary Mounted page
// @Tags Board
// @Produce json
// @Success 200 {object} PageResponse
// @Router /api/board/page [get]
func (h *HTTPHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, PageResponse{
		Name:   h.deps.Page.Name,
		Panels: h.deps.Page.Panels,
	})
}

// Refresh re-fetches the dashboard for the selected patient
// @Summary Refresh dashboard
// @Tags Dashboard
// @Produce json
// @Success 200 {object} render.Snapshot
// @Failure 404 {object} ErrorResponse "Dashboard not mounted"
// @Failure 409 {object} ErrorResponse "No patient selected or superseded"
// @Failure 502 {object} ErrorResponse "Backend failure"
// @Router /api/board/refresh [post]
func (h *HTTPHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if !h.mounted(w, panels.PanelDashboard) {
		return
	}
	if err := h.deps.Controller.Refresh(r.Context()); err != nil {
		h.respondControllerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.deps.Board.Snapshot())
}

// ListPatients returns the patient list filtered by q
// @Summary Patients
// @Description Case-insensitive filter over name, bed and MRN
// @Tags Dashboard
// @Produce json
// @Param q query string false "Search term"
// @Success 200 {object} models.PatientsResponse
// @Failure 404 {object} ErrorResponse "Dashboard not mounted"
// @Router /api/board/patients [get]
func (h *HTTPHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	if !h.mounted(w, panels.PanelDashboard) {
		return
	}
	patients := render.FilterPatients(h.deps.Controller.Patients(), r.URL.Query().Get("q"))
	respondJSON(w, http.StatusOK, models.PatientsResponse{Patients: patients})
}

// SelectPatient makes a patient current and refreshes the dashboard
// @Summary Select patient
// @Tags Dashboard
// @Produce json
// @Param id path string true "Patient ID"
// @Success 200 {object} render.Snapshot
// @Failure 404 {object} ErrorResponse "Dashboard not mounted"
// @Failure 409 {object} ErrorResponse "Superseded by a newer selection"
// @Failure 502 {object} ErrorResponse "Backend failure"
// @Router /api/board/patients/{id}/select [post]
func (h *HTTPHandler) SelectPatient(w http.ResponseWriter, r *http.Request) {
	if !h.mounted(w, panels.PanelDashboard) {
		return
	}
	patientID := mux.Vars(r)["id"]

	if err := h.deps.Controller.Select(r.Context(), patientID); err != nil {
		h.respondControllerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.deps.Board.Snapshot())
}

// AnalyzePatient re-runs the analysis card
// @Summary Analyze patient
// @Tags Analysis
// @Produce json
// @Param id path string true "Patient ID"
// @Success 200 {object} models.AnalysisResult
// @Failure 404 {object} ErrorResponse "Analysis not mounted"
// @Failure 502 {object} ErrorResponse "Backend failure"
// @Router /api/board/patients/{id}/analyze [post]
func (h *HTTPHandler) AnalyzePatient(w http.ResponseWriter, r *http.Request) {
	if !h.mounted(w, panels.PanelAnalysis) {
		return
	}
	patientID := mux.Vars(r)["id"]

	result, err := h.deps.Analysis.Analyze(r.Context(), patientID)
	if err != nil {
		h.logger.Error("Analysis failed", zap.String("patient_id", patientID), zap.Error(err))
		respondError(w, http.StatusBadGateway, panels.AnalysisNotAvailable)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetSteps runs the civic steps lookup
// @Summary Civic steps
// @Tags Civic
// @Produce json
// @Param topic query string true "Topic, e.g. birth"
// @Success 200 {object} models.StepsResponse
// @Failure 400 {object} ErrorResponse "Missing topic"
// @Failure 404 {object} ErrorResponse "Civic panel not mounted"
// @Failure 502 {object} ErrorResponse "Backend failure"
// @Router /api/board/steps [get]
func (h *HTTPHandler) GetSteps(w http.ResponseWriter, r *http.Request) {
	if !h.mounted(w, panels.PanelCivic) {
		return
	}
	topic := strings.TrimSpace(r.URL.Query().Get("topic"))
	if topic == "" {
		respondError(w, http.StatusBadRequest, "topic parameter is required")
		return
	}

	steps, err := h.deps.Civic.Lookup(r.Context(), topic)
	if err != nil {
		respondError(w, http.StatusBadGateway, panels.StepsNotAvailable)
		return
	}
	respondJSON(w, http.StatusOK, models.StepsResponse{Topic: topic, Steps: steps})
}

// GetWallet loads the emergency profile
// @Summary Emergency wallet
// @Tags Wallet
// @Produce json
// @Success 200 {object} models.EmergencyProfile
// @Failure 404 {object} ErrorResponse "Wallet not mounted"
// @Failure 502 {object} ErrorResponse "Backend failure"
// @Router /api/board/wallet [get]
func (h *HTTPHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	if !h.mounted(w, panels.PanelWallet) {
		return
	}
	profile, err := h.deps.Wallet.Load(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, panels.LoadFailed)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// SaveWallet saves the emergency profile; blank fields keep displayed values
// @Summary Save emergency wallet
// @Tags Wallet
// @Accept json
// @Produce json
// @Param request body models.EmergencyProfile true "Profile fields"
// @Success 200 {object} models.SaveEmergencyResponse
// @Failure 400 {object} ErrorResponse "Invalid request body"
// @Failure 404 {object} ErrorResponse "Wallet not mounted"
// @Failure 502 {object} ErrorResponse "Backend failure"
// @Router /api/board/wallet [post]
func (h *HTTPHandler) SaveWallet(w http.ResponseWriter, r *http.Request) {
	if !h.mounted(w, panels.PanelWallet) {
		return
	}
	var input models.EmergencyProfile
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := h.deps.Wallet.Save(r.Context(), input)
	if err != nil {
		respondError(w, http.StatusBadGateway, panels.SaveFailed)
		return
	}
	respondJSON(w, http.StatusOK, models.SaveEmergencyResponse{OK: true, Profile: profile})
}

func (h *HTTPHandler) mounted(w http.ResponseWriter, panel panels.Panel) bool {
	if h.deps.Page.Mounts(panel) {
		return true
	}
	respondError(w, http.StatusNotFound, "Panel "+string(panel)+" is not mounted on page "+h.deps.Page.Name)
	return false
}

func (h *HTTPHandler) respondControllerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, controller.ErrNoPatient):
		respondError(w, http.StatusConflict, "No patient selected")
	case errors.Is(err, controller.ErrSuperseded):
		respondError(w, http.StatusConflict, "Superseded by a newer request")
	default:
		respondError(w, http.StatusBadGateway, controller.StatusLoadFailed)
	}
}

// ===== Utilities =====

// PageResponse describes the mounted page
type PageResponse struct {
	Name   string         `json:"name"`
	Panels []panels.Panel `json:"panels"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Error("Failed to encode JSON response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Status: status})
}
