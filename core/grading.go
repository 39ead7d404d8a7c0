package core

// Scorer is an optional plugin invoked at grading time on a submission's
// text (eg. automated essay scoring). Implementations are external.
type Scorer interface {
	Score(text string) (float64, error)
}
