package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Tuning holds planner, reconstructor and fatigue knobs that may be overridden
// from a YAML file. Zero values in the file keep the defaults.
type Tuning struct {
	Planner struct {
		AnchorCapacity  int     `yaml:"anchor_capacity"`
		ShortlistCap    int     `yaml:"shortlist_cap"`
		MinStops        int     `yaml:"min_stops"`
		LeftoverCount   int     `yaml:"leftover_count"`
		LeftoverRadius  float64 `yaml:"leftover_radius_km"`
		EnrichBatchSize int     `yaml:"enrich_batch_size"`
	} `yaml:"planner"`

	Graph struct {
		MaxNodes     int           `yaml:"max_nodes"`
		CallInterval time.Duration `yaml:"call_interval"`
		Mode         string        `yaml:"mode"`
	} `yaml:"graph"`

	Schedule struct {
		DayStart    string  `yaml:"day_start"`
		MinShrink   int     `yaml:"min_shrink_minutes"`
		ShrinkRatio float64 `yaml:"shrink_ratio"`
	} `yaml:"schedule"`

	Fatigue struct {
		RateConstant   float64 `yaml:"rate_constant"`
		TransitCredit  float64 `yaml:"transit_recovery_per_minute"`
		SmoothingAlpha float64 `yaml:"smoothing_alpha"`
		TraceLimit     int     `yaml:"trace_limit"`
	} `yaml:"fatigue"`
}

func DefaultTuning() Tuning {
	var t Tuning
	t.Planner.AnchorCapacity = 1
	t.Planner.ShortlistCap = 16
	t.Planner.MinStops = 4
	t.Planner.LeftoverCount = 5
	t.Planner.LeftoverRadius = 5
	t.Planner.EnrichBatchSize = 3
	t.Graph.MaxNodes = 8
	t.Graph.CallInterval = 100 * time.Millisecond
	t.Graph.Mode = "walking"
	t.Schedule.DayStart = "09:00"
	t.Schedule.MinShrink = 45
	t.Schedule.ShrinkRatio = 0.5
	t.Fatigue.RateConstant = 0.06
	t.Fatigue.TransitCredit = 0.5
	t.Fatigue.SmoothingAlpha = 0.3
	t.Fatigue.TraceLimit = 20
	return t
}

// LoadTuning reads a YAML tuning file on top of DefaultTuning.
func LoadTuning(path string) (Tuning, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("load tuning: read %q: %w", path, err)
	}

	t := DefaultTuning()
	if err := yaml.Unmarshal(b, &t); err != nil {
		return Tuning{}, fmt.Errorf("load tuning: parse %q: %w", path, err)
	}
	return t, nil
}

// DayStartOffset parses Schedule.DayStart ("HH:MM") into an offset from midnight.
func (t Tuning) DayStartOffset() (time.Duration, error) {
	hm, err := time.Parse("15:04", t.Schedule.DayStart)
	if err != nil {
		return 0, fmt.Errorf("tuning: day_start %q: %w", t.Schedule.DayStart, err)
	}
	return time.Duration(hm.Hour())*time.Hour + time.Duration(hm.Minute())*time.Minute, nil
}
