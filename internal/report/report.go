// internal/report/report.go
// Package report renders scanned runs into one self-contained HTML document and a JSON manifest.
package report

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mwiater/yolometrics/internal/aliases"
	"github.com/mwiater/yolometrics/internal/imagedata"
	"github.com/mwiater/yolometrics/internal/resolve"
	"github.com/mwiater/yolometrics/internal/scan"
)

// DefaultTitle heads reports generated without an explicit title.
const DefaultTitle = "YOLOmetrics Report"

//go:embed templates/report.html.tmpl
var reportTemplateHTML string

//go:embed templates/report.css
var reportCSS string

//go:embed templates/loader.js
var loaderJS string

var reportTemplate = template.Must(template.New("yolometrics-report").Parse(reportTemplateHTML))

// Options controls report rendering.
type Options struct {
	Title string
	// Generated is printed in the footer when set.
	Generated time.Time
}

// Tab is one metric or gallery tab of a run panel. Key is the record output key the tab shows.
type Tab struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Key   string `json:"key"`
}

var metricLabels = map[aliases.MetricKey]string{
	aliases.PR:  "Precision-Recall",
	aliases.P:   "Precision vs Confidence",
	aliases.R:   "Recall vs Confidence",
	aliases.F1:  "F1 vs Confidence",
	aliases.CM:  "Confusion Matrix",
	aliases.CMN: "Confusion Matrix (Normalized)",
}

// Tabs lists the tabs of every run panel: one per metric in table order, then the three galleries.
func Tabs(table *aliases.Table) []Tab {
	tabs := make([]Tab, 0, len(table.Keys())+3)
	for _, k := range table.Keys() {
		tabs = append(tabs, Tab{
			ID:    "tab-" + strings.ReplaceAll(strings.ToLower(string(k)), "_", "-"),
			Label: metricLabels[k],
			Key:   table.CanonicalKey(k),
		})
	}
	return append(tabs,
		Tab{ID: "tab-val-labels", Label: "Validation Batches (Labels)", Key: aliases.LabelsTag},
		Tab{ID: "tab-val-pred", Label: "Validation Batches (Pred)", Key: aliases.PredTag},
		Tab{ID: "tab-all-images", Label: "All Images", Key: aliases.GenericTag},
	)
}

type pageData struct {
	Title     string
	Generated string
	Style     template.CSS
	Script    template.JS
	AliasJSON template.JS
	TabJSON   template.JS
	Runs      []runView
}

type runView struct {
	ID     string
	Name   string
	Active bool
	Tabs   []tabView
}

type tabView struct {
	ID     string
	Tab    string
	Label  string
	Active bool
	Cards  []cardView
}

type cardView struct {
	Run        string
	Config     string
	Tab        string
	Label      string
	Kind       string
	Image      imageView
	Images     []imageView
	Categories []categoryView
	Fallback   bool
	Source     string
}

type imageView struct {
	Src template.URL
	Alt string
}

type categoryView struct {
	ID     string
	Label  string
	Active bool
	Images []imageView
}

// Generate renders runs as a standalone HTML report. The alias payload embedded in the page is
// validated before rendering.
func Generate(runs []scan.Run, table *aliases.Table, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, runs, table, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render writes the report to w. Output written before a failure is not rolled back.
func Render(w io.Writer, runs []scan.Run, table *aliases.Table, opts Options) error {
	payload, err := table.MarshalPayload()
	if err != nil {
		return err
	}
	tabs := Tabs(table)
	tabJSON, err := json.Marshal(tabs)
	if err != nil {
		return fmt.Errorf("marshal tab list: %w", err)
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = DefaultTitle
	}
	data := pageData{
		Title:     title,
		Style:     template.CSS(reportCSS),
		Script:    template.JS(loaderJS),
		AliasJSON: template.JS(payload),
		TabJSON:   template.JS(tabJSON),
		Runs:      buildRunViews(runs, tabs),
	}
	if !opts.Generated.IsZero() {
		data.Generated = opts.Generated.Format("2006-01-02 15:04:05 MST")
	}

	if err := reportTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func buildRunViews(runs []scan.Run, tabs []Tab) []runView {
	views := make([]runView, 0, len(runs))
	for i, run := range runs {
		runID := "run-" + strconv.Itoa(i)
		rv := runView{ID: runID, Name: run.Name, Active: i == 0}
		for j, tab := range tabs {
			tv := tabView{
				ID:     runID + "-" + tab.ID,
				Tab:    tab.ID,
				Label:  tab.Label,
				Active: j == 0,
			}
			for c, rec := range run.Configs {
				tv.Cards = append(tv.Cards, buildCard(run.Name, rec, tab, tv.ID+"-c"+strconv.Itoa(c)))
			}
			rv.Tabs = append(rv.Tabs, tv)
		}
		views = append(views, rv)
	}
	return views
}

func buildCard(runName string, rec *resolve.Record, tab Tab, idPrefix string) cardView {
	card := cardView{
		Run:    runName,
		Config: rec.Name,
		Tab:    tab.ID,
		Label:  tab.Label,
		Kind:   "missing",
	}
	entry, ok := rec.Entry(tab.Key)
	if !ok {
		return card
	}

	switch e := entry.(type) {
	case resolve.Single:
		if e.Ref == nil {
			return card
		}
		card.Kind = "single"
		card.Image = newImageView(e.Ref, tab.Label)
		for _, m := range rec.Metrics {
			if m.OutputKey == tab.Key && m.Fallback {
				card.Fallback = true
				card.Source = m.File
			}
		}
	case resolve.Gallery:
		if len(e.Refs) == 0 {
			return card
		}
		card.Kind = "gallery"
		for _, ref := range e.Refs {
			card.Images = append(card.Images, newImageView(ref, tab.Label))
		}
	case resolve.Categorized:
		if len(e.Categories) == 0 {
			return card
		}
		card.Kind = "categorized"
		for i, cat := range e.Categories {
			cv := categoryView{
				ID:     idPrefix + "-k" + strconv.Itoa(i),
				Label:  cat.Label,
				Active: i == 0,
			}
			for _, ref := range cat.Refs {
				cv.Images = append(cv.Images, newImageView(ref, cat.Label))
			}
			card.Categories = append(card.Categories, cv)
		}
	}
	return card
}

// newImageView marks the data URL as trusted; html/template would otherwise filter data: sources.
func newImageView(ref *imagedata.Ref, alt string) imageView {
	return imageView{Src: template.URL(ref.DataURL()), Alt: alt}
}
