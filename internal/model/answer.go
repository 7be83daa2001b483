package model

// ValueType describes how a raw answer value is interpreted during
// normalization.
type ValueType string

const (
	ValueNumeric    ValueType = "numeric"
	ValueBoolean    ValueType = "boolean"
	ValuePercentage ValueType = "percentage"
)

// Valid reports whether v is a known value type.
func (v ValueType) Valid() bool {
	switch v {
	case ValueNumeric, ValueBoolean, ValuePercentage:
		return true
	}
	return false
}

// Provenance records where an answer came from. User input always wins
// over imports, which win over LLM suggestions.
type Provenance string

const (
	ProvenanceUser      Provenance = "user_input"
	ProvenanceLLM       Provenance = "llm_suggested"
	ProvenanceCSVImport Provenance = "csv_import"
)

func (p Provenance) rank() int {
	switch p {
	case ProvenanceUser:
		return 3
	case ProvenanceCSVImport:
		return 2
	case ProvenanceLLM:
		return 1
	}
	return 0
}

// Beats reports whether an answer with provenance p should replace one
// with provenance other for the same question.
func (p Provenance) Beats(other Provenance) bool {
	return p.rank() > other.rank()
}

// Answer is a single questionnaire response. Boolean answers carry 1 for
// yes and 0 for no; percentages are 0-100.
type Answer struct {
	QuestionID string     `json:"question_id" yaml:"question_id"`
	Value      float64    `json:"value" yaml:"value"`
	ValueType  ValueType  `json:"value_type" yaml:"value_type"`
	Provenance Provenance `json:"provenance,omitempty" yaml:"provenance,omitempty"`
}
