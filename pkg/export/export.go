// Package export renders schedules for downstream consumers such as
// spreadsheets and Gantt tools.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"github.com/kilianp07/quarterplan/core/analysis"
	"github.com/kilianp07/quarterplan/core/model"
)

// Row is one exported schedule line.
type Row struct {
	model.ScheduledIssue
	SlackWeeks *float64 `json:"slack_weeks,omitempty"`
	Critical   bool     `json:"critical"`
}

// Document is the JSON form of a schedule.
type Document struct {
	Scenario     string                        `json:"scenario,omitempty"`
	Issues       []Row                         `json:"issues"`
	Reasons      map[model.ScheduledReason]int `json:"reasons"`
	Critical     []string                      `json:"critical"`
	HorizonWeeks float64                       `json:"horizon_weeks"`
}

// Rows joins the schedule with its slack report, in result order.
func Rows(res model.ScheduleResult, slack analysis.SlackReport) []Row {
	rows := make([]Row, len(res.Issues))
	for i, s := range res.Issues {
		rows[i] = Row{ScheduledIssue: s, Critical: slack.IsCritical(s.Key)}
		if v, ok := slack.Slack[s.Key]; ok {
			rows[i].SlackWeeks = &v
		}
	}
	return rows
}

// NewDocument builds the JSON document for a run.
func NewDocument(scenario string, res model.ScheduleResult, slack analysis.SlackReport) Document {
	critical := slack.Critical
	if critical == nil {
		critical = []string{}
	}
	return Document{
		Scenario:     scenario,
		Issues:       Rows(res, slack),
		Reasons:      res.Counts(),
		Critical:     critical,
		HorizonWeeks: slack.HorizonWeeks,
	}
}

// WriteJSON writes the schedule to w in JSON format.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// CSVHeader lists the columns written by WriteCSV.
var CSVHeader = []string{
	"key", "summary", "lane", "start_date", "end_date", "duration_weeks",
	"reason", "blocked_by", "slack_weeks", "critical",
}

// WriteCSV writes the schedule to w in CSV format. Missing dates and
// values are empty cells; blocked_by keys are separated by semicolons.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Key,
			r.Summary,
			r.Lane,
			formatDate(r.StartDate),
			formatDate(r.EndDate),
			formatFloat(r.DurationWeeks),
			string(r.ScheduledReason),
			strings.Join(r.BlockedBy, ";"),
			formatFloat(r.SlackWeeks),
			strconv.FormatBool(r.Critical),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

// ErrUnknownFormat is returned for output formats other than json and csv.
var ErrUnknownFormat = errors.New("unknown export format")

// Write renders doc to w as "json" or "csv".
func Write(w io.Writer, format string, doc Document) error {
	switch format {
	case "json":
		return WriteJSON(w, doc)
	case "csv":
		return WriteCSV(w, doc.Issues)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteFile renders doc and replaces the file at path in one step, so
// readers never observe a partial export.
func WriteFile(path, format string, doc Document) error {
	var buf bytes.Buffer
	if err := Write(&buf, format, doc); err != nil {
		return err
	}
	return atomic.WriteFile(path, &buf)
}
