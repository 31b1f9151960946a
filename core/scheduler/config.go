package scheduler

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/quarterplan/core/model"
)

// ConfigDef is the file representation of a ScenarioConfig. Dates use the
// YYYY-MM-DD layout and are read as calendar dates in UTC.
type ConfigDef struct {
	StartDate       string             `json:"start_date" yaml:"start_date"`
	QuarterEndDate  string             `json:"quarter_end_date" yaml:"quarter_end_date"`
	AnchorDate      string             `json:"anchor_date,omitempty" yaml:"anchor_date,omitempty"`
	SPToWeeks       float64            `json:"sp_to_weeks" yaml:"sp_to_weeks"`
	TeamSizes       map[string]float64 `json:"team_sizes,omitempty" yaml:"team_sizes,omitempty"`
	VacationWeeks   map[string]float64 `json:"vacation_weeks,omitempty" yaml:"vacation_weeks,omitempty"`
	SickleaveBuffer float64            `json:"sickleave_buffer" yaml:"sickleave_buffer"`
	WIPLimit        int                `json:"wip_limit" yaml:"wip_limit"`
	LaneMode        string             `json:"lane_mode" yaml:"lane_mode"`
}

// ParseDate parses a YYYY-MM-DD date. An empty string yields the zero time.
func ParseDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, strings.TrimSpace(s))
}

// ToModel converts the definition into a ScenarioConfig.
func (d ConfigDef) ToModel() (model.ScenarioConfig, error) {
	start, err := ParseDate(d.StartDate)
	if err != nil {
		return model.ScenarioConfig{}, fmt.Errorf("start_date: %w", err)
	}
	if start.IsZero() {
		return model.ScenarioConfig{}, fmt.Errorf("start_date is required")
	}
	end, err := ParseDate(d.QuarterEndDate)
	if err != nil {
		return model.ScenarioConfig{}, fmt.Errorf("quarter_end_date: %w", err)
	}
	if end.IsZero() {
		return model.ScenarioConfig{}, fmt.Errorf("quarter_end_date is required")
	}
	mode, err := model.ParseLaneMode(d.LaneMode)
	if err != nil {
		return model.ScenarioConfig{}, err
	}
	cfg := model.ScenarioConfig{
		StartDate:       start,
		QuarterEndDate:  end,
		SPToWeeks:       d.SPToWeeks,
		TeamSizes:       d.TeamSizes,
		VacationWeeks:   d.VacationWeeks,
		SickleaveBuffer: d.SickleaveBuffer,
		WIPLimit:        d.WIPLimit,
		LaneMode:        mode,
	}
	if cfg.SPToWeeks == 0 {
		cfg.SPToWeeks = 1
	}
	anchor, err := ParseDate(d.AnchorDate)
	if err != nil {
		return model.ScenarioConfig{}, fmt.Errorf("anchor_date: %w", err)
	}
	if !anchor.IsZero() {
		cfg.AnchorDate = &anchor
	}
	return cfg, nil
}

// LoadConfig loads a scenario configuration from a JSON or YAML file.
func LoadConfig(path string) (model.ScenarioConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.ScenarioConfig{}, err
	}
	defer func() { _ = f.Close() }()
	return DecodeConfig(f, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
}

// DecodeConfig reads a scenario configuration from r. JSON input may carry
// comments and trailing commas.
func DecodeConfig(r io.Reader, format string) (model.ScenarioConfig, error) {
	var def ConfigDef
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&def); err != nil {
			return model.ScenarioConfig{}, err
		}
	case "json", "jsonc":
		data, err := io.ReadAll(r)
		if err != nil {
			return model.ScenarioConfig{}, err
		}
		standardized, err := hujson.Standardize(data)
		if err != nil {
			return model.ScenarioConfig{}, fmt.Errorf("invalid JSONC: %w", err)
		}
		if err := json.Unmarshal(standardized, &def); err != nil {
			return model.ScenarioConfig{}, err
		}
	default:
		return model.ScenarioConfig{}, fmt.Errorf("unsupported config format: %s", format)
	}
	return def.ToModel()
}
