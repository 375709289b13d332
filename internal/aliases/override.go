// internal/aliases/override.go
package aliases

import (
	"fmt"
	"os"
	"sort"

	"go.yaml.in/yaml/v3"
)

// Overrides extends the built-in stems. Extra stems are appended after the built-in ones for
// their key, so built-in names keep precedence.
//
//	stems:
//	  PR: [precisionrecall]
//	  CM_N: [cm_normalised]
type Overrides struct {
	Stems map[string][]string `yaml:"stems"`
}

// LoadOverrides reads an alias override file.
func LoadOverrides(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, fmt.Errorf("could not read alias file %q: %w", path, err)
	}
	return ParseOverrides(data)
}

// ParseOverrides decodes override YAML. Unknown metric keys are rejected, as are two names that
// fold to the same key (PR and pr), since their stems would have no defined order.
func ParseOverrides(data []byte) (Overrides, error) {
	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Overrides{}, fmt.Errorf("could not parse alias overrides: %w", err)
	}
	seen := make(map[MetricKey]string, len(o.Stems))
	for _, name := range sortedNames(o.Stems) {
		k, err := ParseMetricKey(name)
		if err != nil {
			return Overrides{}, err
		}
		if prev, ok := seen[k]; ok {
			return Overrides{}, fmt.Errorf("%w: %q and %q both name %s", ErrDuplicateMetric, prev, name, k)
		}
		seen[k] = name
	}
	return o, nil
}

// Apply returns base with the override stems appended per key. Names that fold to one key are
// visited in sorted order.
func (o Overrides) Apply(base map[MetricKey][]string) map[MetricKey][]string {
	out := make(map[MetricKey][]string, len(base))
	for k, stems := range base {
		out[k] = append([]string(nil), stems...)
	}
	names := sortedNames(o.Stems)
	for _, k := range MetricKeys {
		for _, name := range names {
			parsed, err := ParseMetricKey(name)
			if err != nil || parsed != k {
				continue
			}
			out[k] = append(out[k], o.Stems[name]...)
		}
	}
	return out
}

func sortedNames(stems map[string][]string) []string {
	names := make([]string, 0, len(stems))
	for name := range stems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build loads the optional override file and builds the table. An empty path yields the
// built-in table with the given config suffix.
func Build(aliasFile, configSuffix string) (*Table, error) {
	base := DefaultBaseStems()
	if aliasFile != "" {
		o, err := LoadOverrides(aliasFile)
		if err != nil {
			return nil, err
		}
		base = o.Apply(base)
	}
	return New(base, DefaultExtensions, configSuffix)
}
