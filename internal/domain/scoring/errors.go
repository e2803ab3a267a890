package scoring

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientLabelVariance is returned when a stage's labels hold fewer
	// than two classes.
	ErrInsufficientLabelVariance = errors.New("insufficient label variance")
	// ErrEmptyFeatures is returned when a stage encodes to zero columns.
	ErrEmptyFeatures = errors.New("empty feature set")
	// ErrNoRows is returned when a stage has nothing to train on.
	ErrNoRows = errors.New("no labeled rows")
	// ErrInvalidInput is returned by classifiers on malformed matrices.
	ErrInvalidInput = errors.New("invalid classifier input")
	// ErrClassifierPanic wraps a panic raised inside a classifier.
	ErrClassifierPanic = errors.New("classifier panicked")
)

// StageError reports why a stage produced no probabilities.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
