// internal/cli/cli_test.go
package yolometrics

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mwiater/yolometrics/internal/aliases"
	"github.com/mwiater/yolometrics/internal/appconfig"
	"github.com/mwiater/yolometrics/internal/logging"
	"github.com/mwiater/yolometrics/internal/report"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("img"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
}

func sampleRoot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTree(t, dir,
		"run1/a_config/pr_curve.png",
		"run1/a_config/confusion_matrix.png",
		"run1/a_config/val_batch0_pred.jpg",
		"run1/b_config/results.png",
		"run2/c_config/F1_curve.jpg",
	)
	return dir
}

func TestGenerateWritesReport(t *testing.T) {
	dir := sampleRoot(t)
	out, err := execute(t, "generate", "--root", dir, "--title", "Sweep 7", "--manifest", "manifest.json")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	reportPath := filepath.Join(dir, appconfig.DefaultOutput)
	if !strings.Contains(out, "Wrote "+reportPath) {
		t.Fatalf("expected success line, got %q", out)
	}

	doc, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	html := string(doc)
	for _, want := range []string{"<title>Sweep 7</title>", `id="aliasData"`, "a_config", "c_config"} {
		if !strings.Contains(html, want) {
			t.Fatalf("report missing %q", want)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var m report.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("manifest is not JSON: %v", err)
	}
	if len(m.Runs) != 2 || m.Runs[0].Name != "run1" || len(m.Runs[0].Configs) != 2 {
		t.Fatalf("unexpected manifest runs: %+v", m.Runs)
	}
}

func TestGenerateLogsSummary(t *testing.T) {
	dir := sampleRoot(t)
	logPath := filepath.Join(t.TempDir(), "logs", "yolometrics.log")
	t.Cleanup(func() { _ = logging.Close() })

	if _, err := execute(t, "generate", "--root", dir, "--logFile", logPath); err != nil {
		t.Fatalf("generate: %v", err)
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	want := "wrote report " + filepath.Join(dir, appconfig.DefaultOutput)
	if !strings.Contains(string(data), want) || !strings.Contains(string(data), "2 runs, 3 configurations") {
		t.Fatalf("log missing summary:\n%s", data)
	}
}

func TestGenerateWithoutRuns(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "generate", "--root", dir, "--output", "empty.html")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out, "No runs") {
		t.Fatalf("expected a warning, got %q", out)
	}
	doc, err := os.ReadFile(filepath.Join(dir, "empty.html"))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(doc), "No runs loaded") {
		t.Fatalf("empty report should carry the no-runs message")
	}
}

func TestGenerateErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := execute(t, "generate", "--root", filepath.Join(dir, "absent")); err == nil {
		t.Fatalf("missing root should fail")
	}
	if _, err := execute(t, "generate", "--root", dir, "--workers", "0"); !errors.Is(err, appconfig.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := execute(t, "generate", "--root", dir, "--config", filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("explicit missing config should fail")
	}

	aliasFile := filepath.Join(dir, "aliases.yaml")
	if err := os.WriteFile(aliasFile, []byte("stems:\n  BOGUS: [x]\n"), 0o644); err != nil {
		t.Fatalf("write alias file: %v", err)
	}
	if _, err := execute(t, "generate", "--root", dir, "--aliasFile", aliasFile); err == nil {
		t.Fatalf("unknown metric key in alias file should fail")
	}
}

// TestConfigFileAndFlags checks that file values apply and flags override them.
func TestConfigFileAndFlags(t *testing.T) {
	dir := sampleRoot(t)
	cfgPath := filepath.Join(dir, "settings.yaml")
	body := "root: " + dir + "\ntitle: From File\nworkers: 3\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, err := execute(t, "show", "config", "--config", cfgPath, "--workers", "5")
	if err != nil {
		t.Fatalf("show config: %v", err)
	}
	for _, want := range []string{"Config file: " + cfgPath, "From File", "Workers:          5", "Root:             " + dir} {
		if !strings.Contains(out, want) {
			t.Fatalf("show config missing %q:\n%s", want, out)
		}
	}
}

func TestInspect(t *testing.T) {
	dir := sampleRoot(t)
	out, err := execute(t, "inspect", "--root", dir)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"a_config", "pr_curve.png", "confusion_matrix.png (fallback)", "2 runs, 3 configurations"} {
		if !strings.Contains(out, want) {
			t.Fatalf("inspect missing %q:\n%s", want, out)
		}
	}

	out, err = execute(t, "inspect", "--root", dir, "--json")
	if err != nil {
		t.Fatalf("inspect --json: %v", err)
	}
	var m report.Manifest
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("inspect --json is not JSON: %v\n%s", err, out)
	}
	if len(m.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(m.Runs))
	}

	out, err = execute(t, "inspect", "--root", dir, "--dump")
	if err != nil {
		t.Fatalf("inspect --dump: %v", err)
	}
	if !strings.Contains(out, "a_config") {
		t.Fatalf("dump missing config name:\n%s", out)
	}

	out, err = execute(t, "inspect", "--root", t.TempDir())
	if err != nil || !strings.Contains(out, "No runs") {
		t.Fatalf("expected empty warning, got %q (%v)", out, err)
	}
}

func TestAliasesCommand(t *testing.T) {
	out, err := execute(t, "aliases", "--configSuffix", "_eval")
	if err != nil {
		t.Fatalf("aliases: %v", err)
	}
	if err := aliases.ValidatePayload([]byte(out)); err != nil {
		t.Fatalf("printed payload does not validate: %v", err)
	}
	var p aliases.Payload
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if p.ConfigSuffix != "_eval" || len(p.Keys) != 6 {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestShowMetricsAndListCommands(t *testing.T) {
	out, err := execute(t, "show", "metrics")
	if err != nil {
		t.Fatalf("show metrics: %v", err)
	}
	for _, want := range []string{"PR, P, R, F1, CM, CM_N", "confusion_matrix_normalized.png", "CM_N falls back to CM"} {
		if !strings.Contains(out, want) {
			t.Fatalf("show metrics missing %q:\n%s", want, out)
		}
	}

	out, err = execute(t, "list", "commands")
	if err != nil {
		t.Fatalf("list commands: %v", err)
	}
	for _, want := range []string{"yolometrics generate", "yolometrics show config", "yolometrics browse"} {
		if !strings.Contains(out, want) {
			t.Fatalf("list commands missing %q:\n%s", want, out)
		}
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil || out != "yolometrics dev\n" {
		t.Fatalf("unexpected version output %q (%v)", out, err)
	}
}
