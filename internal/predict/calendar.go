package predict

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sustainly/esg-cli/internal/model"
)

type calendarFile struct {
	Entries []model.RegulatoryCalendarEntry `yaml:"entries"`
}

// LoadCalendarFile reads the regulatory calendar from a YAML file.
// Entries missing an id, name, or deadline are skipped with a warning.
func LoadCalendarFile(path string) ([]model.RegulatoryCalendarEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "predict: read calendar %s", path)
	}
	var f calendarFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "predict: parse calendar %s", path)
	}
	return validateEntries(f.Entries), nil
}

// ParseCalendarCSV reads calendar entries from a CSV feed with columns
// id, industry, name, deadline (RFC 3339 date), timeline_days,
// readiness_threshold. Malformed rows are skipped with a warning.
func ParseCalendarCSV(r io.Reader) ([]model.RegulatoryCalendarEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var entries []model.RegulatoryCalendarEntry
	line := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "predict: read calendar csv")
		}
		line++
		if line == 1 && record[0] == "id" {
			continue // header
		}
		if len(record) < 6 {
			zap.L().Warn("predict: skipping short calendar row", zap.Int("line", line))
			continue
		}

		deadline, err := time.Parse("2006-01-02", record[3])
		if err != nil {
			zap.L().Warn("predict: skipping calendar row with bad deadline",
				zap.Int("line", line), zap.String("deadline", record[3]))
			continue
		}
		timelineDays, err := strconv.Atoi(record[4])
		if err != nil {
			zap.L().Warn("predict: skipping calendar row with bad timeline_days",
				zap.Int("line", line), zap.String("timeline_days", record[4]))
			continue
		}
		threshold, err := strconv.ParseFloat(record[5], 64)
		if err != nil {
			zap.L().Warn("predict: skipping calendar row with bad readiness_threshold",
				zap.Int("line", line), zap.String("readiness_threshold", record[5]))
			continue
		}

		entries = append(entries, model.RegulatoryCalendarEntry{
			ID:                 record[0],
			Industry:           record[1],
			Name:               record[2],
			Deadline:           deadline,
			TimelineDays:       timelineDays,
			ReadinessThreshold: threshold,
		})
	}
	return validateEntries(entries), nil
}

func validateEntries(entries []model.RegulatoryCalendarEntry) []model.RegulatoryCalendarEntry {
	valid := entries[:0:0]
	for _, e := range entries {
		if e.ID == "" || e.Name == "" || e.Deadline.IsZero() {
			zap.L().Warn("predict: skipping invalid calendar entry",
				zap.String("id", e.ID), zap.String("name", e.Name))
			continue
		}
		if e.TimelineDays <= 0 {
			e.TimelineDays = 90
		}
		valid = append(valid, e)
	}
	return valid
}
