package catalog

import (
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sustainly/esg-cli/internal/model"
)

type catalogFile struct {
	Questions []model.QuestionSpec `yaml:"questions"`
}

// LoadFile reads a YAML catalog file and returns the validated catalog.
// File entries override built-in questions with the same id; the rest of
// the built-in retail set is kept so partial files extend rather than
// replace the defaults.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: read %s", path)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "catalog: parse %s", path)
	}
	if len(f.Questions) == 0 {
		return nil, eris.Errorf("catalog: %s contains no questions", path)
	}

	override := make(map[string]model.QuestionSpec, len(f.Questions))
	for _, q := range f.Questions {
		override[q.ID] = q
	}

	merged := make([]model.QuestionSpec, 0, len(f.Questions)+10)
	for _, q := range DefaultRetail() {
		if o, ok := override[q.ID]; ok {
			merged = append(merged, o)
			delete(override, q.ID)
			continue
		}
		merged = append(merged, q)
	}
	for _, q := range f.Questions {
		if _, ok := override[q.ID]; ok {
			merged = append(merged, q)
		}
	}

	c, err := New(merged)
	if err != nil {
		return nil, err
	}
	zap.L().Info("catalog: loaded",
		zap.String("path", path),
		zap.Int("questions", c.Len()),
	)
	return c, nil
}
