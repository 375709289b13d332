// internal/resolve/resolver.go
// Package resolve assigns the image files of one configuration directory to metric keys and
// galleries.
package resolve

import (
	"strings"

	"github.com/mwiater/yolometrics/internal/aliases"
	"github.com/mwiater/yolometrics/internal/logging"
)

// Resolver resolves configuration directories against an alias table. It holds no per-call state
// and may be shared between goroutines as long as load is safe for concurrent use.
type Resolver struct {
	table *aliases.Table
	load  LoadFunc
}

// NewResolver returns a resolver reading files through load.
func NewResolver(table *aliases.Table, load LoadFunc) *Resolver {
	return &Resolver{table: table, load: load}
}

// Resolve builds the record of one configuration directory from its file lookup.
func (r *Resolver) Resolve(name, path string, lookup Lookup) *Record {
	rec := newRecord(name, path)
	r.resolveMetrics(rec, lookup)
	r.classifyGalleries(rec, lookup)
	return rec
}

// resolveMetrics stores every metric's canonical key, a secondary key for non-primary extension
// hits, and applies the table fallbacks. A file that cannot be read counts as absent.
func (r *Resolver) resolveMetrics(rec *Record, lookup Lookup) {
	primary := r.table.PrimaryExtension()

	for _, key := range r.table.Keys() {
		stems := r.table.Stems(key)
		match := MetricMatch{Key: key, OutputKey: r.table.CanonicalKey(key)}

	search:
		for _, stem := range stems {
			for _, ext := range r.table.Extensions() {
				f, ok := lookup[strings.ToLower(stem+ext)]
				if !ok {
					continue
				}
				ref, err := r.load(f.Path)
				if err != nil {
					logging.LogScanEvent("warn", rec.Path, f.Name, "unreadable", err)
					continue
				}
				match.File = f.Name
				match.Extension = ext
				match.Ref = ref
				break search
			}
		}

		if match.Ref == nil {
			rec.set(match.OutputKey, Missing{})
		} else {
			rec.set(match.OutputKey, Single{Ref: match.Ref})
			if !strings.EqualFold(match.Extension, primary) {
				rec.set(stems[0]+match.Extension, Single{Ref: match.Ref})
			}
		}
		rec.Metrics = append(rec.Metrics, match)
	}

	for _, fb := range r.table.Fallbacks() {
		applyFallback(rec, fb)
	}
}

// applyFallback copies the source metric into the target when the target is missing. It never
// replaces a resolved target.
func applyFallback(rec *Record, fb aliases.Fallback) {
	from, to := -1, -1
	for i, m := range rec.Metrics {
		switch m.Key {
		case fb.From:
			from = i
		case fb.To:
			to = i
		}
	}
	if from < 0 || to < 0 {
		return
	}
	src := rec.Metrics[from]
	dst := rec.Metrics[to]
	if dst.Found() || !src.Found() {
		return
	}
	rec.set(dst.OutputKey, Single{Ref: src.Ref})
	dst.File = src.File
	dst.Extension = src.Extension
	dst.Ref = src.Ref
	dst.Fallback = true
	rec.Metrics[to] = dst
}
