// internal/report/manifest.go
package report

import (
	"encoding/json"
	"fmt"

	"github.com/mwiater/yolometrics/internal/aliases"
	"github.com/mwiater/yolometrics/internal/resolve"
	"github.com/mwiater/yolometrics/internal/scan"
)

// Manifest describes what a report holds without the image bytes.
type Manifest struct {
	Version      int           `json:"version"`
	ConfigSuffix string        `json:"configSuffix"`
	Runs         []ManifestRun `json:"runs"`
}

type ManifestRun struct {
	Name    string           `json:"name"`
	Path    string           `json:"path"`
	Configs []ManifestConfig `json:"configs"`
}

type ManifestConfig struct {
	Name      string            `json:"name"`
	Path      string            `json:"path"`
	Keys      []string          `json:"keys"`
	Metrics   []ManifestMetric  `json:"metrics"`
	Galleries []ManifestGallery `json:"galleries,omitempty"`
}

type ManifestMetric struct {
	resolve.MetricMatch
	Bytes  int `json:"bytes,omitempty"`
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
}

type ManifestGallery struct {
	Key    string   `json:"key"`
	Kind   string   `json:"kind"`
	Files  []string `json:"files"`
	Labels []string `json:"labels,omitempty"`
}

// BuildManifest summarizes runs: per configuration, the output keys, how each metric resolved and
// which files landed in each gallery.
func BuildManifest(runs []scan.Run, table *aliases.Table) Manifest {
	m := Manifest{
		Version:      aliases.PayloadVersion,
		ConfigSuffix: table.ConfigSuffix(),
		Runs:         make([]ManifestRun, 0, len(runs)),
	}
	for _, run := range runs {
		mr := ManifestRun{Name: run.Name, Path: run.Path, Configs: make([]ManifestConfig, 0, len(run.Configs))}
		for _, rec := range run.Configs {
			mr.Configs = append(mr.Configs, manifestConfig(rec))
		}
		m.Runs = append(m.Runs, mr)
	}
	return m
}

func manifestConfig(rec *resolve.Record) ManifestConfig {
	mc := ManifestConfig{Name: rec.Name, Path: rec.Path, Keys: rec.Keys()}
	for _, match := range rec.Metrics {
		mm := ManifestMetric{MetricMatch: match}
		if match.Ref != nil {
			mm.Bytes = match.Ref.Size()
			mm.Width = match.Ref.Width
			mm.Height = match.Ref.Height
		}
		mc.Metrics = append(mc.Metrics, mm)
	}
	for _, tag := range []string{aliases.LabelsTag, aliases.PredTag, aliases.GenericTag} {
		entry, ok := rec.Entry(tag)
		if !ok {
			continue
		}
		g := ManifestGallery{Key: tag}
		switch e := entry.(type) {
		case resolve.Gallery:
			g.Kind = "gallery"
		case resolve.Categorized:
			g.Kind = "categorized"
			g.Labels = e.Labels()
		}
		for _, ref := range entry.Images() {
			g.Files = append(g.Files, ref.Name)
		}
		mc.Galleries = append(mc.Galleries, g)
	}
	return mc
}

// MarshalManifest renders the manifest as indented JSON.
func MarshalManifest(runs []scan.Run, table *aliases.Table) ([]byte, error) {
	data, err := json.MarshalIndent(BuildManifest(runs, table), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return append(data, '\n'), nil
}
