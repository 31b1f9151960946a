package scheduler

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kilianp07/quarterplan/core/model"
)

const yamlConfig = `start_date: 2026-01-01
quarter_end_date: 2026-03-31
anchor_date: 2026-01-29
sp_to_weeks: 0.5
team_sizes:
  Alpha: 3
vacation_weeks:
  Alpha: 2
sickleave_buffer: 0.1
wip_limit: 2
lane_mode: Assignee
`

func TestDecodeConfigYAML(t *testing.T) {
	cfg, err := DecodeConfig(bytes.NewBufferString(yamlConfig), "yaml")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !cfg.StartDate.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("bad start %v", cfg.StartDate)
	}
	if cfg.AnchorDate == nil || cfg.AnchorDate.Day() != 29 {
		t.Fatalf("bad anchor %v", cfg.AnchorDate)
	}
	if cfg.LaneMode != model.LaneModeAssignee || cfg.WIPLimit != 2 || cfg.SPToWeeks != 0.5 {
		t.Fatalf("bad cfg %#v", cfg)
	}
	if cfg.TeamSizes["Alpha"] != 3 || cfg.VacationWeeks["Alpha"] != 2 {
		t.Fatalf("bad lanes %#v", cfg)
	}
}

func TestDecodeConfigJSON(t *testing.T) {
	cfg, err := DecodeConfig(bytes.NewBufferString(`{"start_date":"2026-04-01","quarter_end_date":"2026-06-30","wip_limit":1}`), "json")
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if cfg.AnchorDate != nil {
		t.Fatalf("unexpected anchor")
	}
	if cfg.SPToWeeks != 1 || cfg.LaneMode != model.LaneModeTeam {
		t.Fatalf("defaults not applied %#v", cfg)
	}
}

func TestDecodeConfigJSONC(t *testing.T) {
	doc := `{
		// planning window
		"start_date": "2026-04-01",
		"quarter_end_date": "2026-06-30",
		"team_sizes": {"Alpha": 2,},
	}`
	cfg, err := DecodeConfig(bytes.NewBufferString(doc), "jsonc")
	if err != nil {
		t.Fatalf("jsonc: %v", err)
	}
	if cfg.TeamSizes["Alpha"] != 2 {
		t.Fatalf("team sizes not decoded %#v", cfg.TeamSizes)
	}
	if _, err := DecodeConfig(bytes.NewBufferString(`{"start_date": `), "json"); err == nil {
		t.Fatalf("expected error for truncated json")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yml")
	if err := os.WriteFile(path, []byte(yamlConfig), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := LoadConfig(path + ".missing"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestDecodeConfigErrors(t *testing.T) {
	cases := map[string]string{
		"toml": `{}`,
		"json": `{"start_date":"01/01/2026","quarter_end_date":"2026-03-31"}`,
		"yaml": "quarter_end_date: 2026-03-31\n",
		"yml":  "start_date: 2026-01-01\nquarter_end_date: 2026-03-31\nlane_mode: squad\n",
	}
	for format, data := range cases {
		if _, err := DecodeConfig(bytes.NewBufferString(data), format); err == nil {
			t.Fatalf("%s: expected error", format)
		}
	}
}

func TestParseDateKeepsCalendarDay(t *testing.T) {
	for _, s := range []string{"2026-01-01", "2026-01-29", "2026-12-31", "2025-02-28"} {
		d, err := ParseDate(s)
		if err != nil {
			t.Fatalf("parse %s: %v", s, err)
		}
		if d.Format(time.DateOnly) != s {
			t.Fatalf("day shifted: %s -> %s", s, d.Format(time.DateOnly))
		}
	}
	if d, err := ParseDate(""); err != nil || !d.IsZero() {
		t.Fatalf("empty date should be zero")
	}
}
