package render

import (
	"time"

	"github.com/Krimson/vitals-console/console/pkg/models"
)

// Renderer projects responses onto the board. It is the only component that
// tears down and recreates charts.
type Renderer struct {
	board   *Board
	factory ChartFactory
	loc     *time.Location
}

func NewRenderer(board *Board, factory ChartFactory, loc *time.Location) *Renderer {
	if factory == nil {
		factory = NewASCIIChart
	}
	if loc == nil {
		loc = time.Local
	}
	return &Renderer{
		board:   board,
		factory: factory,
		loc:     loc,
	}
}

func (r *Renderer) Board() *Board {
	return r.board
}

// RenderDashboard writes KPIs, badges, the range table and all four charts
// for one summary and series pair. Every chart slot is destroyed before the
// new charts are created.
func (r *Renderer) RenderDashboard(charts *ChartRegistry, patientID string, summary *models.SummaryResponse, vitals *models.VitalsSeries) {
	latest := summary.Summary.Latest
	deltas := summary.Summary.Deltas

	kpis := map[string]KPI{
		SlotKPIHR:   kpi(FormatNumber(latest.HR)+" bpm", deltas.HR),
		SlotKPISpO2: kpi(FormatNumber(latest.SpO2)+"%", deltas.SpO2),
		SlotKPIBP:   kpi(FormatNumber(latest.BPSys)+"/"+FormatNumber(latest.BPDia)+" mmHg", BPDelta(deltas.BPSys, deltas.BPDia)),
		SlotKPIRR:   kpi(FormatNumber(latest.RR)+"/min", deltas.RR),
		SlotKPITemp: kpi(FormatNumber(latest.Temp)+" °C", deltas.Temp),
	}

	rng := summary.Summary.Range24h
	rows := []RangeRow{
		rangeRow("HR (bpm)", rng.HR),
		rangeRow("SpO₂ (%)", rng.SpO2),
		rangeRow("BP Sys (mmHg)", rng.BPSys),
		rangeRow("BP Dia (mmHg)", rng.BPDia),
		rangeRow("RR (breaths/min)", rng.RR),
		rangeRow("Temp (°C)", rng.Temp),
	}

	labels := TimeLabels(vitals.Timestamps, r.loc)
	specs := []ChartSpec{
		{Slot: SlotChartHR, Title: "HR (bpm)", Labels: labels, Series: []Series{
			{Label: "HR (bpm)", Values: vitals.HR},
		}},
		{Slot: SlotChartSpO2, Title: "SpO₂ (%)", Labels: labels, Series: []Series{
			{Label: "SpO₂ (%)", Values: vitals.SpO2},
		}},
		{Slot: SlotChartBP, Title: "Blood pressure", Labels: labels, Series: []Series{
			{Label: "Systolic", Values: vitals.BPSys},
			{Label: "Diastolic", Values: vitals.BPDia},
		}},
		{Slot: SlotChartRRTemp, Title: "RR / Temp", Labels: labels, Series: []Series{
			{Label: "RR (/min)", Values: vitals.RR},
			{Label: "Temp (°C)", Values: vitals.Temp, Secondary: true},
		}},
	}

	for _, slot := range ChartSlots {
		charts.Destroy(slot)
	}
	views := make(map[string]ChartView, len(specs))
	for _, spec := range specs {
		chart := r.factory(spec)
		charts.Replace(spec.Slot, chart)
		views[spec.Slot] = ChartView{Title: spec.Title, Labels: labels, Plot: chart.Render()}
	}

	r.board.Update(func(s *Snapshot) {
		s.PatientID = patientID
		for slot, v := range kpis {
			s.KPIs[slot] = v
		}
		s.Badges[SlotRiskBadge] = RiskBadge(summary.Alerts)
		s.Badges[SlotStatusBadge] = StatusBadge(summary.Alerts)
		s.Ranges = rows
		s.Charts = views
	})
}

// RenderAnalysis paints the analysis card. The border color follows the level.
func (r *Renderer) RenderAnalysis(a models.AnalysisResult, notice string) {
	card := AnalysisCard{
		Headline:    AnalysisHeadline(a),
		Reasons:     AnalysisReasons(a),
		BorderColor: a.Level.Color(),
		Mood:        a.Mood,
		Notice:      notice,
	}
	r.board.Update(func(s *Snapshot) {
		if card.Mood == "" {
			// the mood selector keeps its value when the analysis has none
			card.Mood = s.Analysis.Mood
		}
		s.Analysis = card
	})
}

// RenderPatients fills the selector and sidebar
func (r *Renderer) RenderPatients(patients []models.Patient, selectedID string) {
	options := make([]PatientOption, 0, len(patients))
	for _, p := range patients {
		options = append(options, PatientOption{
			ID:       p.ID,
			Label:    PatientLabel(p),
			Sub:      PatientSub(p),
			Bucket:   p.Bucket(),
			Selected: p.ID == selectedID,
		})
	}
	r.board.Update(func(s *Snapshot) {
		s.Patients = options
	})
}

// MarkSelected moves the selection marker in the patient list
func (r *Renderer) MarkSelected(patientID string) {
	r.board.Update(func(s *Snapshot) {
		for i := range s.Patients {
			s.Patients[i].Selected = s.Patients[i].ID == patientID
		}
	})
}

// RenderWallet shows the wallet card. Empty fields render as "—" and the QR
// slot resets until RenderQR fills it.
func (r *Renderer) RenderWallet(p models.EmergencyProfile, notice string) {
	card := WalletCard{
		Visible: true,
		Name:    orEmpty(p.Name),
		ID:      orEmpty(p.ID),
		ICE:     orEmpty(p.ICE),
		Notes:   orEmpty(p.MedicalNotes),
		QR:      "QR",
		Notice:  notice,
	}
	r.board.Update(func(s *Snapshot) {
		s.Wallet = card
	})
}

// RenderQR fills the QR slot: "QR" without an id, the data URL on success,
// "QR not available" otherwise.
func (r *Renderer) RenderQR(id, dataURL string, ok bool) {
	qr := "QR"
	switch {
	case id == "":
	case ok && dataURL != "":
		qr = dataURL
	default:
		qr = "QR not available"
	}
	r.board.Update(func(s *Snapshot) {
		s.Wallet.QR = qr
	})
}

func (r *Renderer) RenderSteps(topic string, steps []string, notice string) {
	view := StepsView{Topic: topic, Steps: append([]string(nil), steps...), Notice: notice}
	r.board.Update(func(s *Snapshot) {
		s.Steps = view
	})
}

// SetStatus sets the dashboard status line
func (r *Renderer) SetStatus(text string) {
	r.board.Update(func(s *Snapshot) {
		s.Status = text
	})
}

func (r *Renderer) SetState(state string) {
	r.board.Update(func(s *Snapshot) {
		s.State = state
	})
}

func kpi(value string, d models.Delta) KPI {
	text, tone := FormatDelta(d)
	return KPI{Value: value, Delta: text, Tone: tone}
}

func rangeRow(label string, rng models.Range) RangeRow {
	return RangeRow{Label: label, Min: FormatNumber(rng.Min), Max: FormatNumber(rng.Max)}
}
