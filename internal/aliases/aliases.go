// internal/aliases/aliases.go
// Package aliases holds the metric alias table: the filename stems and extensions that map loosely
// named evaluation images onto a fixed set of metric keys.
package aliases

import (
	"errors"
	"fmt"
	"strings"
)

// MetricKey identifies one of the semantic metric images a configuration directory can hold.
type MetricKey string

const (
	PR  MetricKey = "PR"
	P   MetricKey = "P"
	R   MetricKey = "R"
	F1  MetricKey = "F1"
	CM  MetricKey = "CM"
	CMN MetricKey = "CM_N"
)

// ErrUnknownMetric is returned when a metric key outside the closed set is referenced.
var ErrUnknownMetric = errors.New("unknown metric key")

// ErrDuplicateMetric is returned when two names in one alias file fold to the same metric key.
var ErrDuplicateMetric = errors.New("duplicate metric key")

// MetricKeys lists every metric key in table order. Table order is resolution order.
var MetricKeys = []MetricKey{PR, P, R, F1, CM, CMN}

// DefaultExtensions lists the accepted image suffixes in match priority order.
var DefaultExtensions = []string{".png", ".jpg", ".jpeg", ".webp", ".svg"}

// DefaultBaseStems returns the built-in un-prefixed stems for every metric key.
func DefaultBaseStems() map[MetricKey][]string {
	return map[MetricKey][]string{
		PR: {"pr_curve", "pr-curve", "prcurve", "precision_recall_curve", "precision-recall", "pr"},
		P:  {"p_curve", "p-curve", "pcurve", "precision_curve", "precision", "boxpcurve"},
		R:  {"r_curve", "r-curve", "rcurve", "recall_curve", "recall"},
		F1: {"f1_curve", "f1-curve", "f1curve", "f1"},
		CM: {"confusion_matrix", "confusion-matrix", "cm"},
		CMN: {
			"confusion_matrix_normalized",
			"confusion-matrix-normalized",
			"normalized_confusion_matrix",
			"confusion_matrix_norm",
			"confusion-matrix-norm",
			"confusionmatrix_normalized",
			"confusionmatrix-normalized",
			"confusion_matrix_normalised",
			"confusion-matrix-normalised",
			"cm_normalized",
			"cm_norm",
			"cm-normalized",
			"cm-norm",
		},
	}
}

// ParseMetricKey converts a case-insensitive key name into a MetricKey.
func ParseMetricKey(name string) (MetricKey, error) {
	want := strings.TrimSpace(name)
	for _, k := range MetricKeys {
		if strings.EqualFold(string(k), want) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetric, name)
}

func isMetricKey(k MetricKey) bool {
	for _, known := range MetricKeys {
		if k == known {
			return true
		}
	}
	return false
}

// Expand adds the box-prefixed variants of every base stem. Each stem s yields s, boxs, box_s and
// box-s in that order; duplicates are dropped case-insensitively keeping the first casing seen.
func Expand(stems []string) []string {
	variants := make([]string, 0, len(stems)*4)
	seen := make(map[string]struct{}, len(stems)*4)
	for _, s := range stems {
		for _, v := range []string{s, "box" + s, "box_" + s, "box-" + s} {
			low := strings.ToLower(v)
			if _, ok := seen[low]; ok {
				continue
			}
			seen[low] = struct{}{}
			variants = append(variants, v)
		}
	}
	return variants
}

// dedupe folds a stem list case-insensitively, keeping first occurrences.
func dedupe(stems []string) []string {
	out := make([]string, 0, len(stems))
	seen := make(map[string]struct{}, len(stems))
	for _, s := range stems {
		low := strings.ToLower(s)
		if _, ok := seen[low]; ok {
			continue
		}
		seen[low] = struct{}{}
		out = append(out, s)
	}
	return out
}
