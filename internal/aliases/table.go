// internal/aliases/table.go
package aliases

import (
	"fmt"
	"strings"
)

const (
	// LabelsTag is the output key of the labeled validation batch gallery.
	LabelsTag = "VAL_LABELS"
	// PredTag is the output key of the predicted validation batch gallery.
	PredTag = "VAL_PRED"
	// GenericTag is the output key of the catch-all gallery.
	GenericTag = "ALL_IMAGES"
	// BatchPrefix marks validation batch images.
	BatchPrefix = "val_batch"
	// DefaultConfigSuffix is the directory name suffix of a configuration directory.
	DefaultConfigSuffix = "_config"
)

// Table is the immutable alias registry shared by every resolution pass. It is safe for
// concurrent use; accessors hand out copies.
type Table struct {
	keys         []MetricKey
	base         map[MetricKey][]string
	stems        map[MetricKey][]string
	exts         []string
	configSuffix string
	metricFiles  map[string]MetricKey
}

// New builds a table from base stems (expanded with box variants) and ordered extensions.
// Every metric key must be present with at least one stem.
func New(base map[MetricKey][]string, exts []string, configSuffix string) (*Table, error) {
	if len(exts) == 0 {
		return nil, fmt.Errorf("alias table needs at least one extension")
	}
	if configSuffix == "" {
		configSuffix = DefaultConfigSuffix
	}
	t := &Table{
		keys:         append([]MetricKey(nil), MetricKeys...),
		base:         make(map[MetricKey][]string, len(MetricKeys)),
		stems:        make(map[MetricKey][]string, len(MetricKeys)),
		configSuffix: configSuffix,
		metricFiles:  make(map[string]MetricKey),
	}
	for k := range base {
		if !isMetricKey(k) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, k)
		}
	}
	for _, e := range exts {
		if !strings.HasPrefix(e, ".") || len(e) < 2 {
			return nil, fmt.Errorf("invalid extension %q", e)
		}
		t.exts = append(t.exts, strings.ToLower(e))
	}
	t.exts = dedupe(t.exts)

	for _, k := range t.keys {
		stems := dedupe(base[k])
		if len(stems) == 0 {
			return nil, fmt.Errorf("metric %s has no stems", k)
		}
		t.base[k] = stems
		t.stems[k] = Expand(stems)
		for _, s := range t.stems[k] {
			for _, e := range t.exts {
				name := strings.ToLower(s + e)
				if _, ok := t.metricFiles[name]; !ok {
					t.metricFiles[name] = k
				}
			}
		}
	}
	return t, nil
}

// MustNew is New for inputs known to be valid.
func MustNew(base map[MetricKey][]string, exts []string, configSuffix string) *Table {
	t, err := New(base, exts, configSuffix)
	if err != nil {
		panic(err)
	}
	return t
}

// Default returns a table built from the built-in stems and extensions.
func Default() *Table {
	return MustNew(DefaultBaseStems(), DefaultExtensions, DefaultConfigSuffix)
}

// Keys returns the metric keys in resolution order.
func (t *Table) Keys() []MetricKey {
	return append([]MetricKey(nil), t.keys...)
}

// Stems returns the expanded stem list of k in match priority order.
func (t *Table) Stems(k MetricKey) []string {
	return append([]string(nil), t.stems[k]...)
}

// BaseStems returns the un-expanded stems of k.
func (t *Table) BaseStems(k MetricKey) []string {
	return append([]string(nil), t.base[k]...)
}

// Extensions returns the accepted extensions in match priority order.
func (t *Table) Extensions() []string {
	return append([]string(nil), t.exts...)
}

// PrimaryExtension is the extension used for canonical output keys.
func (t *Table) PrimaryExtension() string {
	return t.exts[0]
}

// ConfigSuffix is the name suffix that marks configuration directories.
func (t *Table) ConfigSuffix() string {
	return t.configSuffix
}

// CanonicalKey is the output key a resolved metric is always stored under.
func (t *Table) CanonicalKey(k MetricKey) string {
	stems := t.stems[k]
	if len(stems) == 0 {
		return ""
	}
	return stems[0] + t.exts[0]
}

// Accepts reports whether name carries one of the accepted extensions.
func (t *Table) Accepts(name string) bool {
	low := strings.ToLower(name)
	for _, e := range t.exts {
		if strings.HasSuffix(low, e) {
			return true
		}
	}
	return false
}

// MetricFile reports which metric, if any, lists name (stem plus extension) among its aliases.
func (t *Table) MetricFile(name string) (MetricKey, bool) {
	k, ok := t.metricFiles[strings.ToLower(name)]
	return k, ok
}

// IsConfigDir reports whether a directory name marks a configuration directory.
// The suffix test is case-sensitive.
func (t *Table) IsConfigDir(name string) bool {
	return strings.HasSuffix(name, t.configSuffix)
}
