// Package importer reads questionnaire answers from CSV, XLSX, and YAML
// files.
package importer

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sustainly/esg-cli/internal/fetcher"
	"github.com/sustainly/esg-cli/internal/model"
)

// Load reads answers from path, dispatching on the file extension
// (.csv, .xlsx, .yaml/.yml).
func Load(path string) ([]model.Answer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	case ".xlsx":
		return LoadXLSX(path)
	case ".yaml", ".yml":
		return LoadYAML(path)
	default:
		return nil, eris.Errorf("importer: unsupported answer file %s", path)
	}
}

// LoadCSV reads answers from a CSV file with a header row:
// question_id, value, type. Malformed rows are skipped with a warning.
// The type column may be empty; normalization then uses the catalog's
// declared type.
func LoadCSV(path string) ([]model.Answer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "importer: open %s", path)
	}
	defer f.Close()

	var answers []model.Answer
	err = fetcher.ForEachCSV(f, true, func(row []string) error {
		if a, ok := parseAnswerRow(row); ok {
			answers = append(answers, a)
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "importer: read %s", path)
	}

	zap.L().Info("importer: answers loaded",
		zap.String("file", path),
		zap.Int("answers", len(answers)),
	)
	return answers, nil
}

// LoadXLSX reads answers from the first sheet of an XLSX workbook with
// the same column layout as LoadCSV.
func LoadXLSX(path string) ([]model.Answer, error) {
	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{SkipRows: 1})
	if err != nil {
		return nil, eris.Wrapf(err, "importer: read %s", path)
	}

	var answers []model.Answer
	for _, row := range rows {
		if a, ok := parseAnswerRow(row); ok {
			answers = append(answers, a)
		}
	}

	zap.L().Info("importer: answers loaded",
		zap.String("file", path),
		zap.Int("answers", len(answers)),
	)
	return answers, nil
}

// LoadYAML reads answers from a YAML file with a top-level answers list.
// YAML files carry user input, not imports.
func LoadYAML(path string) ([]model.Answer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "importer: open %s", path)
	}

	var doc struct {
		Answers []model.Answer `yaml:"answers"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(err, "importer: parse %s", path)
	}

	for i := range doc.Answers {
		if doc.Answers[i].Provenance == "" {
			doc.Answers[i].Provenance = model.ProvenanceUser
		}
	}
	return doc.Answers, nil
}

func parseAnswerRow(row []string) (model.Answer, bool) {
	if len(row) < 2 || row[0] == "" {
		zap.L().Warn("importer: skipping short row", zap.Strings("row", row))
		return model.Answer{}, false
	}

	value, err := parseValue(row[1])
	if err != nil {
		zap.L().Warn("importer: skipping row with bad value",
			zap.String("question_id", row[0]),
			zap.String("value", row[1]),
		)
		return model.Answer{}, false
	}

	var vt model.ValueType
	if len(row) > 2 && row[2] != "" {
		vt = model.ValueType(strings.ToLower(row[2]))
		if !vt.Valid() {
			zap.L().Warn("importer: skipping row with bad value type",
				zap.String("question_id", row[0]),
				zap.String("type", row[2]),
			)
			return model.Answer{}, false
		}
	}

	return model.Answer{
		QuestionID: strings.ToLower(row[0]),
		Value:      value,
		ValueType:  vt,
		Provenance: model.ProvenanceCSVImport,
	}, true
}

// parseValue accepts numbers plus yes/no and true/false spellings for
// boolean questions.
func parseValue(s string) (float64, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "y":
		return 1, nil
	case "no", "false", "n":
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "importer: parse value %q", s)
	}
	return v, nil
}
