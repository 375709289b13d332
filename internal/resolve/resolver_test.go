package resolve

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mwiater/yolometrics/internal/aliases"
	"github.com/mwiater/yolometrics/internal/imagedata"
)

// memDir is an in-memory configuration directory: file name -> contents. Names listed in broken
// fail to load.
type memDir struct {
	files  map[string]string
	broken map[string]bool
	loads  []string
}

func (d *memDir) lookup() Lookup {
	files := make([]File, 0, len(d.files))
	for name := range d.files {
		files = append(files, File{Name: name, Path: "/cfg/" + name})
	}
	return NewLookup(files)
}

func (d *memDir) load(path string) (*imagedata.Ref, error) {
	name := strings.TrimPrefix(path, "/cfg/")
	d.loads = append(d.loads, name)
	if d.broken[name] {
		return nil, errors.New("permission denied")
	}
	content, ok := d.files[name]
	if !ok {
		return nil, errors.New("no such file")
	}
	return &imagedata.Ref{Name: name, MIME: imagedata.MIMEType(name), Data: []byte(content)}, nil
}

func resolveDir(t *testing.T, d *memDir) *Record {
	t.Helper()
	return NewResolver(aliases.Default(), d.load).Resolve("a_config", "/cfg", d.lookup())
}

func singleName(t *testing.T, rec *Record, key string) string {
	t.Helper()
	e, ok := rec.Entry(key)
	if !ok {
		t.Fatalf("no entry for %q (keys %v)", key, rec.Keys())
	}
	s, ok := e.(Single)
	if !ok {
		t.Fatalf("entry %q is %T, want Single", key, e)
	}
	return s.Ref.Name
}

func TestEmptyDirectoryYieldsAllMissing(t *testing.T) {
	rec := resolveDir(t, &memDir{files: map[string]string{"notes.txt": "x"}})
	tbl := aliases.Default()
	if len(rec.Keys()) != len(tbl.Keys()) {
		t.Fatalf("keys = %v, want only canonical metric keys", rec.Keys())
	}
	for _, k := range tbl.Keys() {
		e, ok := rec.Entry(tbl.CanonicalKey(k))
		if !ok {
			t.Fatalf("missing canonical key for %s", k)
		}
		if _, isMissing := e.(Missing); !isMissing {
			t.Fatalf("%s resolved to %T", k, e)
		}
	}
	for _, tag := range []string{aliases.LabelsTag, aliases.PredTag, aliases.GenericTag} {
		if _, ok := rec.Entry(tag); ok {
			t.Fatalf("unexpected gallery %s", tag)
		}
	}
}

func TestConfusionMatrixFallback(t *testing.T) {
	d := &memDir{files: map[string]string{"confusion_matrix.png": "cm-bytes"}}
	rec := resolveDir(t, d)

	if got := singleName(t, rec, "confusion_matrix_normalized.png"); got != "confusion_matrix.png" {
		t.Fatalf("CM_N resolved to %q", got)
	}
	cm, _ := rec.Entry("confusion_matrix.png")
	cmn, _ := rec.Entry("confusion_matrix_normalized.png")
	if cm.(Single).Ref != cmn.(Single).Ref {
		t.Fatal("fallback must reuse the CM reference")
	}
	m, _ := rec.Metric(aliases.CMN)
	if !m.Fallback || m.File != "confusion_matrix.png" {
		t.Fatalf("unexpected CM_N provenance: %+v", m)
	}

	first, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(resolveDir(t, d))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("resolution is not idempotent")
	}
}

func TestFallbackNeverOverwritesNormalized(t *testing.T) {
	rec := resolveDir(t, &memDir{files: map[string]string{
		"confusion_matrix.png": "cm",
		"cm_norm.png":          "cmn",
	}})
	if got := singleName(t, rec, "confusion_matrix_normalized.png"); got != "cm_norm.png" {
		t.Fatalf("CM_N = %q, want cm_norm.png", got)
	}
	if m, _ := rec.Metric(aliases.CMN); m.Fallback {
		t.Fatal("fallback flag set on a resolved CM_N")
	}
}

func TestFallbackNeedsConfusionMatrix(t *testing.T) {
	rec := resolveDir(t, &memDir{files: map[string]string{"pr_curve.png": "pr"}})
	e, _ := rec.Entry("confusion_matrix_normalized.png")
	if _, ok := e.(Missing); !ok {
		t.Fatalf("CM_N = %T, want Missing", e)
	}
}

func TestBoxPrefixedUppercaseBeatsLaterStem(t *testing.T) {
	// P's list is p_curve, boxp_curve, box_p_curve, ..., so boxP_curve precedes precision.
	rec := resolveDir(t, &memDir{files: map[string]string{
		"boxP_curve.PNG": "box",
		"precision.png":  "plain",
	}})
	if got := singleName(t, rec, "p_curve.png"); got != "boxP_curve.PNG" {
		t.Fatalf("P resolved to %q", got)
	}
}

func TestFirstMatchWinsPerMetric(t *testing.T) {
	// For every key: the earlier stem wins over a later stem even when the later one has the
	// primary extension, and for one stem the earlier extension wins.
	cases := []struct {
		key       aliases.MetricKey
		files     []string
		want      string
		secondary string
	}{
		{aliases.PR, []string{"pr.png", "box_pr-curve.jpg"}, "box_pr-curve.jpg", "pr_curve.jpg"},
		{aliases.PR, []string{"pr_curve.jpg", "pr_curve.png"}, "pr_curve.png", ""},
		{aliases.P, []string{"precision.png", "p-curve.webp"}, "p-curve.webp", "p_curve.webp"},
		{aliases.P, []string{"p_curve.svg", "p_curve.jpeg"}, "p_curve.jpeg", "p_curve.jpeg"},
		{aliases.R, []string{"recall.png", "rcurve.svg"}, "rcurve.svg", "r_curve.svg"},
		{aliases.R, []string{"R_Curve.WEBP", "r_curve.JPG"}, "r_curve.JPG", "r_curve.jpg"},
		{aliases.F1, []string{"f1.png", "box-f1_curve.jpg"}, "box-f1_curve.jpg", "f1_curve.jpg"},
		{aliases.F1, []string{"f1curve.svg", "f1curve.webp"}, "f1curve.webp", "f1_curve.webp"},
		{aliases.CM, []string{"cm.png", "confusion-matrix.jpg"}, "confusion-matrix.jpg", "confusion_matrix.jpg"},
		{aliases.CM, []string{"confusion_matrix.jpeg", "confusion_matrix.PNG"}, "confusion_matrix.PNG", ""},
		{aliases.CMN, []string{"cm-norm.png", "boxconfusion_matrix_normalized.svg"}, "boxconfusion_matrix_normalized.svg", "confusion_matrix_normalized.svg"},
		{aliases.CMN, []string{"cm_norm.webp", "cm_norm.jpg"}, "cm_norm.jpg", "confusion_matrix_normalized.jpg"},
	}
	tbl := aliases.Default()
	for _, tc := range cases {
		files := map[string]string{}
		for _, f := range tc.files {
			files[f] = f
		}
		rec := resolveDir(t, &memDir{files: files})
		if got := singleName(t, rec, tbl.CanonicalKey(tc.key)); got != tc.want {
			t.Fatalf("%s with %v resolved to %q, want %q", tc.key, tc.files, got, tc.want)
		}
		if tc.secondary != "" {
			if got := singleName(t, rec, tc.secondary); got != tc.want {
				t.Fatalf("%s secondary key %q = %q", tc.key, tc.secondary, got)
			}
		}
	}
}

func TestPrimaryExtensionHasNoSecondaryKey(t *testing.T) {
	rec := resolveDir(t, &memDir{files: map[string]string{"f1_curve.png": "f1"}})
	for _, k := range rec.Keys() {
		if strings.HasPrefix(k, "f1_curve.") && k != "f1_curve.png" {
			t.Fatalf("unexpected secondary key %q", k)
		}
	}
}

func TestUnreadableFileFallsThroughToNextCandidate(t *testing.T) {
	d := &memDir{
		files: map[string]string{
			"pr_curve.png": "locked",
			"pr_curve.jpg": "ok",
			"r_curve.png":  "locked",
		},
		broken: map[string]bool{"pr_curve.png": true, "r_curve.png": true},
	}
	rec := resolveDir(t, d)
	if got := singleName(t, rec, "pr_curve.png"); got != "pr_curve.jpg" {
		t.Fatalf("PR = %q, want pr_curve.jpg", got)
	}
	e, _ := rec.Entry("r_curve.png")
	if _, ok := e.(Missing); !ok {
		t.Fatalf("R = %T, want Missing", e)
	}
}

func TestMetricFilesStayOutOfGalleries(t *testing.T) {
	rec := resolveDir(t, &memDir{files: map[string]string{
		"pr_curve.png":  "a",
		"pr_curve.jpg":  "b",
		"results.png":   "c",
		"labels.jpg":    "d",
		"train_log.csv": "e",
	}})
	e, ok := rec.Entry(aliases.GenericTag)
	if !ok {
		t.Fatal("expected generic gallery")
	}
	g := e.(Gallery)
	var names []string
	for _, r := range g.Refs {
		names = append(names, r.Name)
	}
	if strings.Join(names, ",") != "labels.jpg,results.png" {
		t.Fatalf("generic gallery = %v", names)
	}
}

// TestLosingAliasFileAppearsNowhere pins the accepted loss: pr.png names a PR alias, so it never
// enters a gallery, even though the higher-priority pr_curve.png won the metric.
func TestLosingAliasFileAppearsNowhere(t *testing.T) {
	rec := resolveDir(t, &memDir{files: map[string]string{
		"pr_curve.png": "a",
		"pr.png":       "b",
		"boxpr.jpg":    "c",
		"notes.png":    "d",
	}})
	if got := singleName(t, rec, "pr_curve.png"); got != "pr_curve.png" {
		t.Fatalf("PR resolved to %s", got)
	}
	for _, key := range rec.Keys() {
		e, _ := rec.Entry(key)
		for _, ref := range e.Images() {
			if ref.Name == "pr.png" || ref.Name == "boxpr.jpg" {
				t.Fatalf("losing alias file %s surfaced under %s", ref.Name, key)
			}
		}
	}
	e, ok := rec.Entry(aliases.GenericTag)
	if !ok || len(e.Images()) != 1 || e.Images()[0].Name != "notes.png" {
		t.Fatalf("generic gallery should hold only notes.png, got %+v", e)
	}
}

func TestValidationBatchesNeverMerge(t *testing.T) {
	rec := resolveDir(t, &memDir{files: map[string]string{
		"val_batch0_labels.jpg": "l0",
		"val_batch1_labels.jpg": "l1",
		"val_batch0_pred.jpg":   "p0",
	}})
	e, ok := rec.Entry(aliases.LabelsTag)
	if !ok {
		t.Fatal("expected labels gallery")
	}
	labels := e.(Categorized)
	if strings.Join(labels.Labels(), ",") != "batch_1,batch_2" {
		t.Fatalf("labels = %v", labels.Labels())
	}
	for _, c := range labels.Categories {
		if len(c.Refs) != 1 {
			t.Fatalf("category %s holds %d images", c.Label, len(c.Refs))
		}
	}
	if labels.Categories[0].Refs[0].Name != "val_batch0_labels.jpg" {
		t.Fatalf("unexpected order: %s", labels.Categories[0].Refs[0].Name)
	}

	e, ok = rec.Entry(aliases.PredTag)
	if !ok {
		t.Fatal("expected pred gallery")
	}
	if got := e.(Categorized).Labels(); len(got) != 1 || got[0] != "batch_1" {
		t.Fatalf("pred labels = %v", got)
	}
	if _, ok := rec.Entry(aliases.GenericTag); ok {
		t.Fatal("no generic images expected")
	}
}

func TestSameBatchNumberStillGetsTwoCategories(t *testing.T) {
	// val_batch2_labels.jpg and val_batch2_labels_extra.png describe the same batch, but batch
	// identity is not inferred from names: each image gets its own synthetic key.
	rec := resolveDir(t, &memDir{files: map[string]string{
		"val_batch2_labels.jpg":       "a",
		"val_batch2_labels_extra.png": "b",
	}})
	e, _ := rec.Entry(aliases.LabelsTag)
	if got := len(e.(Categorized).Categories); got != 2 {
		t.Fatalf("categories = %d, want 2", got)
	}
}

func TestClassifyRules(t *testing.T) {
	cases := map[string]galleryKind{
		"val_batch0_labels.jpg":  galleryLabels,
		"VAL_BATCH3_LABELS.PNG":  galleryLabels,
		"val_batch1_pred.jpg":    galleryPred,
		"val_batch_labels_pred":  galleryLabels,
		"train_batch0.jpg":       galleryGeneric,
		"my_val_batch0_pred.jpg": galleryGeneric,
		"val_batch5.jpg":         galleryGeneric,
	}
	for name, want := range cases {
		if got := classify(name); got != want {
			t.Fatalf("classify(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestRecordKeyOrder(t *testing.T) {
	rec := resolveDir(t, &memDir{files: map[string]string{
		"pr_curve.jpg":          "a",
		"val_batch0_pred.jpg":   "b",
		"val_batch0_labels.jpg": "c",
		"extra.png":             "d",
	}})
	want := []string{
		"pr_curve.png", "pr_curve.jpg", "p_curve.png", "r_curve.png", "f1_curve.png",
		"confusion_matrix.png", "confusion_matrix_normalized.png",
		aliases.LabelsTag, aliases.PredTag, aliases.GenericTag,
	}
	if strings.Join(rec.Keys(), ",") != strings.Join(want, ",") {
		t.Fatalf("keys = %v\nwant %v", rec.Keys(), want)
	}
}

func TestRecordJSONShapes(t *testing.T) {
	rec := resolveDir(t, &memDir{files: map[string]string{
		"pr_curve.png":          "a",
		"val_batch0_labels.jpg": "b",
		"zz.png":                "c",
	}})
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("record JSON invalid: %v\n%s", err, data)
	}
	if s, ok := decoded["pr_curve.png"].(string); !ok || !strings.HasPrefix(s, "data:image/png;base64,") {
		t.Fatalf("pr_curve.png = %v", decoded["pr_curve.png"])
	}
	if decoded["p_curve.png"] != nil {
		t.Fatalf("missing metric should be null, got %v", decoded["p_curve.png"])
	}
	labels, ok := decoded[aliases.LabelsTag].(map[string]any)
	if !ok || len(labels["batch_1"].([]any)) != 1 {
		t.Fatalf("labels = %v", decoded[aliases.LabelsTag])
	}
	if all, ok := decoded[aliases.GenericTag].([]any); !ok || len(all) != 1 {
		t.Fatalf("generic = %v", decoded[aliases.GenericTag])
	}
}

func TestNewLookupFirstFoldedNameWins(t *testing.T) {
	l := NewLookup([]File{{Name: "PR_curve.png", Path: "/a"}, {Name: "pr_curve.PNG", Path: "/b"}})
	if len(l) != 1 || l["pr_curve.png"].Path != "/a" {
		t.Fatalf("lookup = %v", l)
	}
}
