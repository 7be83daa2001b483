package model

import "time"

// IndustryBenchmark is a peer-distribution row for one industry and one
// scoring dimension ("overall", a category, or a subcategory). Read-only
// reference data refreshed out-of-band by the benchmark feed.
type IndustryBenchmark struct {
	Industry   string  `json:"industry"`
	Dimension  string  `json:"dimension"`
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"stddev"`
	SampleSize int     `json:"sample_size"`
}

// RegulatoryCalendarEntry is one upcoming compliance deadline from the
// external regulatory calendar feed. ReadinessWeights blends category or
// subcategory scores into the readiness score checked against
// ReadinessThreshold; an empty map defaults to the overall score.
type RegulatoryCalendarEntry struct {
	ID                 string             `json:"id" yaml:"id"`
	Industry           string             `json:"industry" yaml:"industry"`
	Name               string             `json:"name" yaml:"name"`
	Description        string             `json:"description,omitempty" yaml:"description,omitempty"`
	Deadline           time.Time          `json:"deadline" yaml:"deadline"`
	TimelineDays       int                `json:"timeline_days" yaml:"timeline_days"`
	ReadinessThreshold float64            `json:"readiness_threshold" yaml:"readiness_threshold"`
	ReadinessWeights   map[string]float64 `json:"readiness_weights,omitempty" yaml:"readiness_weights,omitempty"`
	Severity           string             `json:"severity,omitempty" yaml:"severity,omitempty"`
	TypicalPenalty     string             `json:"typical_penalty,omitempty" yaml:"typical_penalty,omitempty"`
}
