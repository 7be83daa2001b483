package scoring

import "fmt"

// UnknownQuestionError marks an answer whose question id is not in the
// catalog. It is recovered locally: the answer is dropped and processing
// continues.
type UnknownQuestionError struct {
	QuestionID string
}

func (e *UnknownQuestionError) Error() string {
	return fmt.Sprintf("unknown question id %q", e.QuestionID)
}

// IncompleteAssessmentError is returned when too few questions were
// answered for the score to be meaningful.
type IncompleteAssessmentError struct {
	Answered int
	Total    int
	Minimum  float64
}

func (e *IncompleteAssessmentError) Error() string {
	return fmt.Sprintf("incomplete assessment: %d of %d questions answered, need at least %.0f%%",
		e.Answered, e.Total, e.Minimum*100)
}

// DegradedBenchmarkWarning notes that a percentile was computed against
// the global distribution because the industry has no benchmark row. It is
// carried in the warnings list, never as a failure.
type DegradedBenchmarkWarning struct {
	Industry string
}

func (e *DegradedBenchmarkWarning) Error() string {
	return fmt.Sprintf("degraded benchmark: no data for %q, percentile uses the global distribution", e.Industry)
}
