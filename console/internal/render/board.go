package render

import (
	"sync"

	"github.com/Krimson/vitals-console/console/pkg/models"
)

// Slot names
const (
	SlotKPIHR   = "kpiHr"
	SlotKPISpO2 = "kpiSpO2"
	SlotKPIBP   = "kpiBp"
	SlotKPIRR   = "kpiRr"
	SlotKPITemp = "kpiTemp"

	SlotRiskBadge   = "riskBadge"
	SlotStatusBadge = "statusBadge"

	SlotChartHR     = "chartHr"
	SlotChartSpO2   = "chartSpO2"
	SlotChartBP     = "chartBp"
	SlotChartRRTemp = "chartRrTemp"
)

// ChartSlots lists the dashboard chart slots in display order
var ChartSlots = []string{SlotChartHR, SlotChartSpO2, SlotChartBP, SlotChartRRTemp}

// Tone is the color role of a delta
type Tone string

const (
	ToneAction  Tone = "action"
	ToneAction2 Tone = "action-2"
	ToneMuted   Tone = "muted"
)

type KPI struct {
	Value string `json:"value"`
	Delta string `json:"delta"`
	Tone  Tone   `json:"tone"`
}

type Badge struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

type RangeRow struct {
	Label string `json:"label"`
	Min   string `json:"min"`
	Max   string `json:"max"`
}

// ChartView is the rendered output of one live chart
type ChartView struct {
	Title  string   `json:"title"`
	Labels []string `json:"labels"`
	Plot   string   `json:"plot"`
}

type AnalysisCard struct {
	Headline    string `json:"headline"`
	Reasons     string `json:"reasons"`
	BorderColor string `json:"border_color"`
	Mood        string `json:"mood,omitempty"`
	Notice      string `json:"notice,omitempty"`
}

type PatientOption struct {
	ID       string            `json:"id"`
	Label    string            `json:"label"`
	Sub      string            `json:"sub"`
	Bucket   models.RiskBucket `json:"bucket"`
	Selected bool              `json:"selected"`
}

type WalletCard struct {
	Visible bool   `json:"visible"`
	Name    string `json:"name"`
	ID      string `json:"id"`
	ICE     string `json:"ice"`
	Notes   string `json:"notes"`
	QR      string `json:"qr"`
	Notice  string `json:"notice,omitempty"`
}

type StepsView struct {
	Topic  string   `json:"topic"`
	Steps  []string `json:"steps"`
	Notice string   `json:"notice,omitempty"`
}

// Snapshot is a copy of every slot on the board
type Snapshot struct {
	State     string               `json:"state"`
	PatientID string               `json:"patient_id,omitempty"`
	Status    string               `json:"status"`
	KPIs      map[string]KPI       `json:"kpis"`
	Badges    map[string]Badge     `json:"badges"`
	Ranges    []RangeRow           `json:"ranges"`
	Charts    map[string]ChartView `json:"charts"`
	Analysis  AnalysisCard         `json:"analysis"`
	Patients  []PatientOption      `json:"patients"`
	Wallet    WalletCard           `json:"wallet"`
	Steps     StepsView            `json:"steps"`
}

// Clone returns a deep copy
func (s Snapshot) Clone() Snapshot {
	out := s
	out.KPIs = make(map[string]KPI, len(s.KPIs))
	for k, v := range s.KPIs {
		out.KPIs[k] = v
	}
	out.Badges = make(map[string]Badge, len(s.Badges))
	for k, v := range s.Badges {
		out.Badges[k] = v
	}
	out.Charts = make(map[string]ChartView, len(s.Charts))
	for k, v := range s.Charts {
		v.Labels = append([]string(nil), v.Labels...)
		out.Charts[k] = v
	}
	out.Ranges = append([]RangeRow(nil), s.Ranges...)
	out.Patients = append([]PatientOption(nil), s.Patients...)
	out.Steps.Steps = append([]string(nil), s.Steps.Steps...)
	return out
}

// Board holds the current slot values and notifies observers after each update
type Board struct {
	mu       sync.RWMutex
	snapshot Snapshot

	// serializes notifications so observers see updates in order
	notifyMu  sync.Mutex
	observers []func(Snapshot)
}

func NewBoard() *Board {
	return &Board{
		snapshot: Snapshot{
			KPIs:   make(map[string]KPI),
			Badges: make(map[string]Badge),
			Charts: make(map[string]ChartView),
		},
	}
}

// Subscribe registers fn to receive a copy of the board after every update.
// Observers must not call Update.
func (b *Board) Subscribe(fn func(Snapshot)) {
	b.notifyMu.Lock()
	defer b.notifyMu.Unlock()
	b.observers = append(b.observers, fn)
}

// Update applies fn to the board and then notifies observers
func (b *Board) Update(fn func(*Snapshot)) {
	b.notifyMu.Lock()
	defer b.notifyMu.Unlock()

	b.mu.Lock()
	fn(&b.snapshot)
	snap := b.snapshot.Clone()
	b.mu.Unlock()

	for _, observer := range b.observers {
		observer(snap.Clone())
	}
}

func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshot.Clone()
}
