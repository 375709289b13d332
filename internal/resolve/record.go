// internal/resolve/record.go
package resolve

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/mwiater/yolometrics/internal/aliases"
	"github.com/mwiater/yolometrics/internal/imagedata"
)

// File is one regular file inside a configuration directory.
type File struct {
	Name string
	Path string
}

// Lookup maps a lowercased file name to the file it names.
type Lookup map[string]File

// NewLookup indexes files by lowercased name. When two names fold together the first one wins.
func NewLookup(files []File) Lookup {
	l := make(Lookup, len(files))
	for _, f := range files {
		low := strings.ToLower(f.Name)
		if _, ok := l[low]; ok {
			continue
		}
		l[low] = f
	}
	return l
}

// SortedNames returns the lowercased names in ascending order.
func (l Lookup) SortedNames() []string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadFunc reads the file at path into an image reference.
type LoadFunc func(path string) (*imagedata.Ref, error)

// MetricMatch records how one metric key was resolved.
type MetricMatch struct {
	Key       aliases.MetricKey `json:"key"`
	OutputKey string            `json:"outputKey"`
	File      string            `json:"file,omitempty"`
	Extension string            `json:"extension,omitempty"`
	Fallback  bool              `json:"fallback,omitempty"`
	Ref       *imagedata.Ref    `json:"-"`
}

// Found reports whether the metric resolved to an image.
func (m MetricMatch) Found() bool {
	return m.Ref != nil
}

// Record is the resolved content of one configuration directory.
type Record struct {
	Name    string
	Path    string
	Metrics []MetricMatch
	entries map[string]Entry
	order   []string
}

func newRecord(name, path string) *Record {
	return &Record{Name: name, Path: path, entries: make(map[string]Entry)}
}

func (r *Record) set(key string, e Entry) {
	if _, ok := r.entries[key]; !ok {
		r.order = append(r.order, key)
	}
	r.entries[key] = e
}

// Entry returns the entry stored under an output key.
func (r *Record) Entry(key string) (Entry, bool) {
	e, ok := r.entries[key]
	return e, ok
}

// Keys returns the output keys in insertion order: canonical metric keys in table order with any
// secondary extension keys after their metric, then gallery tags.
func (r *Record) Keys() []string {
	return append([]string(nil), r.order...)
}

// Metric returns the match for key.
func (r *Record) Metric(key aliases.MetricKey) (MetricMatch, bool) {
	for _, m := range r.Metrics {
		if m.Key == key {
			return m, true
		}
	}
	return MetricMatch{}, false
}

// MarshalJSON renders the output keys in order, mapping each to its entry.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.entries[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
