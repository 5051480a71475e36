package panels

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Panel names a mountable panel
type Panel string

const (
	PanelDashboard Panel = "dashboard"
	PanelAnalysis  Panel = "analysis"
	PanelWallet    Panel = "wallet"
	PanelCivic     Panel = "civic"
)

var (
	ErrUnknownPage  = errors.New("unknown page")
	ErrUnknownPanel = errors.New("unknown panel")
)

// Layout maps page variants to the panels they mount
type Layout struct {
	Pages map[string][]Panel `yaml:"pages"`
}

// Page is one resolved page variant
type Page struct {
	Name   string
	Panels []Panel
}

func (p Page) Mounts(panel Panel) bool {
	for _, mounted := range p.Panels {
		if mounted == panel {
			return true
		}
	}
	return false
}

func DefaultLayout() Layout {
	return Layout{Pages: map[string][]Panel{
		"all":       {PanelDashboard, PanelAnalysis, PanelWallet, PanelCivic},
		"dashboard": {PanelDashboard, PanelAnalysis},
		"wallet":    {PanelWallet},
		"civic":     {PanelCivic},
	}}
}

// LoadLayout reads a YAML layout file:
//
//	pages:
//	  ward: [dashboard, analysis]
//	  kiosk: [civic, wallet]
func LoadLayout(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("failed to read layout: %w", err)
	}

	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return Layout{}, fmt.Errorf("failed to parse layout %s: %w", path, err)
	}
	if err := layout.Validate(); err != nil {
		return Layout{}, err
	}
	return layout, nil
}

func (l Layout) Validate() error {
	if len(l.Pages) == 0 {
		return fmt.Errorf("layout defines no pages")
	}
	for _, name := range l.PageNames() {
		for _, panel := range l.Pages[name] {
			switch panel {
			case PanelDashboard, PanelAnalysis, PanelWallet, PanelCivic:
			default:
				return fmt.Errorf("page %q: %w %q", name, ErrUnknownPanel, panel)
			}
		}
	}
	return nil
}

func (l Layout) Page(name string) (Page, error) {
	panels, ok := l.Pages[name]
	if !ok {
		return Page{}, fmt.Errorf("%w %q", ErrUnknownPage, name)
	}
	return Page{Name: name, Panels: append([]Panel(nil), panels...)}, nil
}

// PageNames returns the page names in sorted order
func (l Layout) PageNames() []string {
	names := make([]string, 0, len(l.Pages))
	for name := range l.Pages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
