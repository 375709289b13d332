// internal/resolve/gallery.go
package resolve

import (
	"strconv"
	"strings"

	"github.com/mwiater/yolometrics/internal/aliases"
	"github.com/mwiater/yolometrics/internal/imagedata"
	"github.com/mwiater/yolometrics/internal/logging"
)

// classifyGalleries sorts every remaining accepted image into the labeled, predicted or generic
// gallery. Validation batches are categorized with one synthetic batch_N label per image, in
// encounter order; images are never merged into an existing batch even if their names share a
// batch number. Any file named like a metric alias is left to the metric resolver.
func (r *Resolver) classifyGalleries(rec *Record, lookup Lookup) {
	var labels, preds, generic []*imagedata.Ref

	for _, name := range lookup.SortedNames() {
		if !r.table.Accepts(name) {
			continue
		}
		if _, isMetric := r.table.MetricFile(name); isMetric {
			continue
		}
		f := lookup[name]
		ref, err := r.load(f.Path)
		if err != nil {
			logging.LogScanEvent("warn", rec.Path, f.Name, "unreadable", err)
			continue
		}
		switch classify(name) {
		case galleryLabels:
			labels = append(labels, ref)
		case galleryPred:
			preds = append(preds, ref)
		default:
			generic = append(generic, ref)
		}
	}

	if len(labels) > 0 {
		rec.set(aliases.LabelsTag, categorize(labels))
	}
	if len(preds) > 0 {
		rec.set(aliases.PredTag, categorize(preds))
	}
	if len(generic) > 0 {
		rec.set(aliases.GenericTag, Gallery{Refs: generic})
	}
}

type galleryKind int

const (
	galleryGeneric galleryKind = iota
	galleryLabels
	galleryPred
)

func classify(name string) galleryKind {
	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lower, aliases.BatchPrefix) && strings.Contains(lower, "_labels"):
		return galleryLabels
	case strings.HasPrefix(lower, aliases.BatchPrefix) && strings.Contains(lower, "_pred"):
		return galleryPred
	default:
		return galleryGeneric
	}
}

func categorize(refs []*imagedata.Ref) Categorized {
	cats := make([]Category, 0, len(refs))
	for _, ref := range refs {
		label := "batch_" + strconv.Itoa(len(cats)+1)
		cats = append(cats, Category{Label: label, Refs: []*imagedata.Ref{ref}})
	}
	return Categorized{Categories: cats}
}
