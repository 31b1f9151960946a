package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testScenario = `name: %s
config:
  start_date: 2026-01-05
  quarter_end_date: 2026-02-02
  wip_limit: 1
issues:
  - {key: A, summary: Groundwork, team: Core, sp: 1}
  - {key: B, summary: Feature, team: Core, sp: %d}
dependencies:
  - {from: A, to: B}
`

func setup(t *testing.T) (dir, cfg string) {
	t.Helper()
	dir = t.TempDir()
	cfg = filepath.Join(dir, "config.yaml")
	data := fmt.Sprintf("planlog:\n  backend: jsonl\n  path: %s\n", filepath.Join(dir, "runs.jsonl"))
	if err := os.WriteFile(cfg, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir, cfg
}

func scenarioFile(t *testing.T, dir, name string, points int) string {
	t.Helper()
	path := filepath.Join(dir, name+".yaml")
	if err := os.WriteFile(path, fmt.Appendf(nil, testScenario, name, points), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetOut(nil)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestScheduleCommand(t *testing.T) {
	dir, cfg := setup(t)
	sc := scenarioFile(t, dir, "baseline", 3)

	out, err := execute(t, "-c", cfg, "schedule", "-s", sc, "--format", "csv")
	if err != nil {
		t.Fatalf("schedule csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two rows, got %q", out)
	}
	if lines[2] != "B,Feature,Core,2026-01-12,2026-02-02,3.00,scheduled,A,0.00,true" {
		t.Errorf("unexpected row %q", lines[2])
	}

	out, err = execute(t, "-c", cfg, "schedule", "-s", sc, "--format", "json")
	if err != nil {
		t.Fatalf("schedule json: %v", err)
	}
	if !strings.Contains(out, `"scenario": "baseline"`) || !strings.Contains(out, `"critical": [`) {
		t.Errorf("unexpected json output %s", out)
	}

	if _, err := execute(t, "-c", cfg, "schedule", "-s", sc, "--format", "xml"); err == nil {
		t.Errorf("expected format error")
	}

	target := filepath.Join(dir, "plan.csv")
	t.Cleanup(func() { scheduleOutput = "" })
	if _, err := execute(t, "-c", cfg, "schedule", "-s", sc, "--format", "csv", "-o", target); err != nil {
		t.Fatalf("schedule to file: %v", err)
	}
	if data, err := os.ReadFile(target); err != nil || !strings.HasPrefix(string(data), "key,summary") {
		t.Fatalf("export file not written: %v", err)
	}
	scheduleOutput = ""

	out, err = execute(t, "-c", cfg, "runs", "--scenario", "baseline")
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if got := strings.Count(out, "baseline"); got != 3 {
		t.Errorf("expected three recorded runs, got %d in %q", got, out)
	}
}

func TestSlackCommand(t *testing.T) {
	dir, cfg := setup(t)
	sc := scenarioFile(t, dir, "baseline", 3)
	out, err := execute(t, "-c", cfg, "slack", "-s", sc)
	if err != nil {
		t.Fatalf("slack: %v", err)
	}
	if !strings.Contains(out, "critical path (2): [A B]") {
		t.Errorf("unexpected slack output %q", out)
	}

	override := filepath.Join(dir, "slow.jsonc")
	jsonc := `{
  // two weeks per point
  "start_date": "2026-01-05",
  "quarter_end_date": "2026-03-02",
  "sp_to_weeks": 2,
  "wip_limit": 1,
}`
	if err := os.WriteFile(override, []byte(jsonc), 0o644); err != nil {
		t.Fatalf("write scenario config: %v", err)
	}
	t.Cleanup(func() { slackConfig = "" })
	out, err = execute(t, "-c", cfg, "slack", "-s", sc, "--scenario-config", override)
	if err != nil {
		t.Fatalf("slack with scenario config: %v", err)
	}
	if !strings.Contains(out, "2026-03-02") || !strings.Contains(out, "critical path (2): [A B]") {
		t.Errorf("scenario config not applied: %q", out)
	}
}

func TestCompareCommand(t *testing.T) {
	dir, cfg := setup(t)
	base := scenarioFile(t, dir, "baseline", 1)
	alt := scenarioFile(t, dir, "bigger", 2)
	out, err := execute(t, "-c", cfg, "compare", "-s", base, "-s", alt)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if !strings.Contains(out, "+7") {
		t.Errorf("expected a seven day delta for B, got %q", out)
	}
}
