package scenarios

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/quarterplan/core/analysis"
	"github.com/kilianp07/quarterplan/core/model"
	"github.com/kilianp07/quarterplan/core/scheduler"
)

func TestScenario(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		sc, err := Load(f)
		require.NoError(t, err, f)
		t.Run(sc.Name, func(t *testing.T) {
			issues, deps, cfg, err := sc.Inputs()
			require.NoError(t, err)
			res := scheduler.Schedule(issues, deps, cfg)
			require.Len(t, res.Issues, len(issues))
			slack := analysis.ComputeSlack(res.Scheduled, deps, cfg.QuarterEndDate)
			for _, msg := range sc.Check(res, slack) {
				t.Error(msg)
			}
		})
	}
}

func TestInputs(t *testing.T) {
	sc, err := Decode(strings.NewReader(`name: inline
config:
  start_date: 2026-01-05
  quarter_end_date: 2026-03-30
  lane_mode: assignee
issues:
  - {key: A, assignee: ana, team: Core, sp: 0, epicKey: EP-1, type: Story}
  - {key: B}
dependencies:
  - {from: A, to: B}
  - {from: Z, to: B}
`))
	require.NoError(t, err)
	issues, deps, cfg, err := sc.Inputs()
	require.NoError(t, err)
	assert.Equal(t, model.LaneModeAssignee, cfg.LaneMode)
	assert.Equal(t, 1.0, cfg.SPToWeeks)
	require.Len(t, issues, 2)
	assert.True(t, issues[0].Estimated())
	assert.Equal(t, "EP-1", issues[0].EpicKey)
	assert.Equal(t, "Story", issues[0].IssueType)
	assert.False(t, issues[1].Estimated())
	assert.Equal(t, []string{"A", "Z"}, deps["B"])
}

func TestInputsOverrideConfig(t *testing.T) {
	// The document config is invalid on its own; the override replaces it.
	sc, err := Decode(strings.NewReader("config: {}\nissues: [{key: A, sp: 1}]\n"))
	require.NoError(t, err)
	_, _, _, err = sc.Inputs()
	require.Error(t, err)

	cfg, err := scheduler.DecodeConfig(strings.NewReader(`{
  // two week sprints per point
  "start_date": "2026-01-05",
  "quarter_end_date": "2026-03-30",
  "sp_to_weeks": 2,
}`), "jsonc")
	require.NoError(t, err)
	sc.OverrideConfig(cfg)
	_, _, got, err := sc.Inputs()
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.SPToWeeks)
	assert.Equal(t, cfg.StartDate, got.StartDate)
}

func TestInputsErrors(t *testing.T) {
	cases := map[string]string{
		"duplicate": "config: {start_date: 2026-01-05, quarter_end_date: 2026-03-30}\nissues: [{key: A}, {key: A}]\n",
		"no key":    "config: {start_date: 2026-01-05, quarter_end_date: 2026-03-30}\nissues: [{summary: x}]\n",
		"no dates":  "config: {}\nissues: [{key: A}]\n",
		"lane mode": "config: {start_date: 2026-01-05, quarter_end_date: 2026-03-30, lane_mode: epic}\nissues: [{key: A}]\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			sc, err := Decode(strings.NewReader(doc))
			require.NoError(t, err)
			_, _, _, err = sc.Inputs()
			assert.Error(t, err)
		})
	}
}

func TestCheckReportsFailures(t *testing.T) {
	sc, err := Load(filepath.Join("testdata", "done_accepted_todo.yaml"))
	require.NoError(t, err)
	sc.Expected.Reasons["B"] = string(model.ReasonAlreadyDone)
	sc.Expected.Critical = []string{"C"}
	sc.Expected.Before = append(sc.Expected.Before, [2]string{"C", "B"})
	issues, deps, cfg, err := sc.Inputs()
	require.NoError(t, err)
	res := scheduler.Schedule(issues, deps, cfg)
	slack := analysis.ComputeSlack(res.Scheduled, deps, cfg.QuarterEndDate)
	assert.Len(t, sc.Check(res, slack), 3)
}

func TestLoadInvalid(t *testing.T) {
	if _, err := Load("no-file.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
	tmp, err := os.CreateTemp(t.TempDir(), "bad*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmp.WriteString(":"); err != nil {
		t.Fatal(err)
	}
	if err := tmp.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(tmp.Name()); err == nil {
		t.Fatal("expected unmarshal error")
	}
	if _, err := Decode(strings.NewReader("name: empty\n")); err == nil {
		t.Fatal("expected error for scenario without issues")
	}
}
