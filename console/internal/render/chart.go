package render

import (
	"strings"
	"sync"

	"github.com/guptarohit/asciigraph"
)

// Series is one plotted line. A secondary series gets its own axis and is
// drawn below the primary ones.
type Series struct {
	Label     string
	Values    []float64
	Secondary bool
}

// ChartSpec describes a chart to build
type ChartSpec struct {
	Slot   string
	Title  string
	Labels []string
	Series []Series
}

// Chart is a live plotting widget. Destroy releases it; a destroyed chart
// must not be rendered again.
type Chart interface {
	Render() string
	Destroy()
	Destroyed() bool
}

// ChartFactory builds a chart from a spec
type ChartFactory func(spec ChartSpec) Chart

type asciiChart struct {
	mu        sync.Mutex
	spec      ChartSpec
	plot      string
	destroyed bool
}

// NewASCIIChart plots the spec as a terminal line chart
func NewASCIIChart(spec ChartSpec) Chart {
	return &asciiChart{spec: spec, plot: plotSeries(spec)}
}

func plotSeries(spec ChartSpec) string {
	var primary, secondary []Series
	for _, s := range spec.Series {
		if len(s.Values) == 0 {
			continue
		}
		if s.Secondary {
			secondary = append(secondary, s)
		} else {
			primary = append(primary, s)
		}
	}
	if len(primary)+len(secondary) == 0 {
		return spec.Title + ": no data"
	}

	span := ""
	if n := len(spec.Labels); n > 0 {
		span = " " + spec.Labels[0] + " to " + spec.Labels[n-1]
	}

	var plots []string
	if len(primary) > 0 {
		caption := spec.Title
		if len(secondary) > 0 {
			caption = seriesLabels(primary)
		}
		plots = append(plots, plotAxis(primary, caption+span, asciigraph.Red, asciigraph.Blue))
	}
	for _, s := range secondary {
		plots = append(plots, plotAxis([]Series{s}, s.Label+span, asciigraph.Blue))
	}
	return strings.Join(plots, "\n\n")
}

// plotAxis draws series sharing one y axis
func plotAxis(series []Series, caption string, colors ...asciigraph.AnsiColor) string {
	data := make([][]float64, 0, len(series))
	for _, s := range series {
		data = append(data, s.Values)
	}
	return asciigraph.PlotMany(data,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Precision(1),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors[:min(len(data), len(colors))]...),
	)
}

func seriesLabels(series []Series) string {
	labels := make([]string, 0, len(series))
	for _, s := range series {
		labels = append(labels, s.Label)
	}
	return strings.Join(labels, " / ")
}

func (c *asciiChart) Render() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return ""
	}
	return c.plot
}

func (c *asciiChart) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.destroyed = true
	c.plot = ""
}

func (c *asciiChart) Destroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

// ChartRegistry owns one chart handle per slot
type ChartRegistry struct {
	mu     sync.Mutex
	charts map[string]Chart
}

func NewChartRegistry() *ChartRegistry {
	return &ChartRegistry{charts: make(map[string]Chart)}
}

// Replace destroys the chart in slot, if any, then installs c
func (r *ChartRegistry) Replace(slot string, c Chart) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.charts[slot]; ok && old != c {
		old.Destroy()
	}
	r.charts[slot] = c
}

// Destroy tears down the chart in slot. Safe to call on an empty slot.
func (r *ChartRegistry) Destroy(slot string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.charts[slot]; ok {
		old.Destroy()
		delete(r.charts, slot)
	}
}

func (r *ChartRegistry) DestroyAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for slot, c := range r.charts {
		c.Destroy()
		delete(r.charts, slot)
	}
}

func (r *ChartRegistry) Get(slot string) (Chart, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.charts[slot]
	return c, ok
}

// Live counts held charts that are not destroyed
func (r *ChartRegistry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.charts {
		if !c.Destroyed() {
			n++
		}
	}
	return n
}
