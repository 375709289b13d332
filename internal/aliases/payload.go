// internal/aliases/payload.go
package aliases

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// PayloadVersion is bumped whenever the serialized payload changes shape.
const PayloadVersion = 1

// Fallback copies one metric into another when the target resolved to nothing.
type Fallback struct {
	From MetricKey `json:"from"`
	To   MetricKey `json:"to"`
}

// GalleryTags names the output keys of the three galleries.
type GalleryTags struct {
	Labels  string `json:"labels"`
	Pred    string `json:"pred"`
	Generic string `json:"generic"`
}

// Payload is the serialized table embedded in generated reports. The browser loader resolves
// user-selected folders from this payload alone, so it carries everything resolution needs.
// JSON objects do not keep key order; Keys carries it.
type Payload struct {
	Version      int                    `json:"version"`
	Keys         []MetricKey            `json:"keys"`
	Alias        map[MetricKey][]string `json:"alias"`
	Exts         []string               `json:"exts"`
	Canonical    map[MetricKey]string   `json:"canonical"`
	Fallbacks    []Fallback             `json:"fallbacks"`
	Galleries    GalleryTags            `json:"galleries"`
	BatchPrefix  string                 `json:"batchPrefix"`
	ConfigSuffix string                 `json:"configSuffix"`
}

// Fallbacks lists the metric fallbacks applied after resolution, in order.
func (t *Table) Fallbacks() []Fallback {
	return []Fallback{{From: CM, To: CMN}}
}

// Payload describes the table for the browser loader.
func (t *Table) Payload() Payload {
	p := Payload{
		Version:   PayloadVersion,
		Keys:      t.Keys(),
		Alias:     make(map[MetricKey][]string, len(t.keys)),
		Exts:      t.Extensions(),
		Canonical: make(map[MetricKey]string, len(t.keys)),
		Fallbacks: t.Fallbacks(),
		Galleries: GalleryTags{
			Labels:  LabelsTag,
			Pred:    PredTag,
			Generic: GenericTag,
		},
		BatchPrefix:  BatchPrefix,
		ConfigSuffix: t.configSuffix,
	}
	for _, k := range t.keys {
		p.Alias[k] = t.Stems(k)
		p.Canonical[k] = t.CanonicalKey(k)
	}
	return p
}

// MarshalPayload serializes the payload and checks it against the payload schema.
func (t *Table) MarshalPayload() ([]byte, error) {
	data, err := json.Marshal(t.Payload())
	if err != nil {
		return nil, fmt.Errorf("marshal alias payload: %w", err)
	}
	if err := ValidatePayload(data); err != nil {
		return nil, err
	}
	return data, nil
}

// ValidatePayload checks serialized payload bytes against the payload JSON schema.
func ValidatePayload(data []byte) error {
	result, err := gojsonschema.Validate(payloadSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("alias payload schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("alias payload failed validation: %s", strings.Join(details, "; "))
}

var payloadSchemaLoader = gojsonschema.NewStringLoader(payloadSchema)

const payloadSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "keys", "alias", "exts", "canonical", "fallbacks", "galleries", "batchPrefix", "configSuffix"],
  "definitions": {
    "metricKey": {"type": "string", "enum": ["PR", "P", "R", "F1", "CM", "CM_N"]},
    "stemList": {"type": "array", "minItems": 1, "items": {"type": "string", "minLength": 1}}
  },
  "properties": {
    "version": {"type": "integer", "minimum": 1},
    "keys": {"type": "array", "minItems": 6, "maxItems": 6, "uniqueItems": true, "items": {"$ref": "#/definitions/metricKey"}},
    "alias": {
      "type": "object",
      "required": ["PR", "P", "R", "F1", "CM", "CM_N"],
      "additionalProperties": false,
      "properties": {
        "PR": {"$ref": "#/definitions/stemList"},
        "P": {"$ref": "#/definitions/stemList"},
        "R": {"$ref": "#/definitions/stemList"},
        "F1": {"$ref": "#/definitions/stemList"},
        "CM": {"$ref": "#/definitions/stemList"},
        "CM_N": {"$ref": "#/definitions/stemList"}
      }
    },
    "exts": {"type": "array", "minItems": 1, "uniqueItems": true, "items": {"type": "string", "pattern": "^\\.[a-z0-9]+$"}},
    "canonical": {
      "type": "object",
      "required": ["PR", "P", "R", "F1", "CM", "CM_N"],
      "additionalProperties": {"type": "string", "minLength": 1}
    },
    "fallbacks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["from", "to"],
        "properties": {
          "from": {"$ref": "#/definitions/metricKey"},
          "to": {"$ref": "#/definitions/metricKey"}
        }
      }
    },
    "galleries": {
      "type": "object",
      "required": ["labels", "pred", "generic"],
      "properties": {
        "labels": {"type": "string", "minLength": 1},
        "pred": {"type": "string", "minLength": 1},
        "generic": {"type": "string", "minLength": 1}
      }
    },
    "batchPrefix": {"type": "string", "minLength": 1},
    "configSuffix": {"type": "string", "minLength": 1}
  }
}`
