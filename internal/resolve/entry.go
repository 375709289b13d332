// internal/resolve/entry.go
package resolve

import (
	"bytes"
	"encoding/json"

	"github.com/mwiater/yolometrics/internal/imagedata"
)

// Entry is the value stored under one output key of a configuration record. It is one of
// Missing, Single, Gallery or Categorized; consumers switch on the concrete type.
type Entry interface {
	isEntry()
	// Images lists every image held by the entry in display order.
	Images() []*imagedata.Ref
}

// Missing marks a metric that no file resolved.
type Missing struct{}

// Single holds one resolved image.
type Single struct {
	Ref *imagedata.Ref
}

// Gallery is a flat ordered list of images.
type Gallery struct {
	Refs []*imagedata.Ref
}

// Category is one labeled group inside a categorized gallery.
type Category struct {
	Label string
	Refs  []*imagedata.Ref
}

// Categorized is an ordered label -> images mapping.
type Categorized struct {
	Categories []Category
}

func (Missing) isEntry()     {}
func (Single) isEntry()      {}
func (Gallery) isEntry()     {}
func (Categorized) isEntry() {}

func (Missing) Images() []*imagedata.Ref { return nil }

func (s Single) Images() []*imagedata.Ref {
	if s.Ref == nil {
		return nil
	}
	return []*imagedata.Ref{s.Ref}
}

func (g Gallery) Images() []*imagedata.Ref {
	return append([]*imagedata.Ref(nil), g.Refs...)
}

func (c Categorized) Images() []*imagedata.Ref {
	var out []*imagedata.Ref
	for _, cat := range c.Categories {
		out = append(out, cat.Refs...)
	}
	return out
}

// Labels returns the category labels in order.
func (c Categorized) Labels() []string {
	labels := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		labels = append(labels, cat.Label)
	}
	return labels
}

// MarshalJSON renders Missing as null.
func (Missing) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// MarshalJSON renders the image as its data URL.
func (s Single) MarshalJSON() ([]byte, error) {
	if s.Ref == nil {
		return []byte("null"), nil
	}
	return json.Marshal(s.Ref.DataURL())
}

// MarshalJSON renders the gallery as an array of data URLs.
func (g Gallery) MarshalJSON() ([]byte, error) {
	return json.Marshal(dataURLs(g.Refs))
}

// MarshalJSON renders an object whose keys follow category order.
func (c Categorized) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cat := range c.Categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		label, err := json.Marshal(cat.Label)
		if err != nil {
			return nil, err
		}
		urls, err := json.Marshal(dataURLs(cat.Refs))
		if err != nil {
			return nil, err
		}
		buf.Write(label)
		buf.WriteByte(':')
		buf.Write(urls)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func dataURLs(refs []*imagedata.Ref) []string {
	urls := make([]string, 0, len(refs))
	for _, r := range refs {
		urls = append(urls, r.DataURL())
	}
	return urls
}
