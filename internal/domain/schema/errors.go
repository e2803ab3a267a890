package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for schema errors.
var (
	ErrCollision         = errors.New("schema normalization collision")
	ErrMissingIdentifier = errors.New("missing identifier column")
)

// CollisionError reports original headers that normalize to the same name.
type CollisionError struct {
	Source     string
	Normalized string
	Originals  []string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("%s: headers %q all normalize to %q", e.Source, strings.Join(e.Originals, `", "`), e.Normalized)
}

func (e *CollisionError) Unwrap() error { return ErrCollision }

// MissingIdentifierError reports a table without any identifier column.
type MissingIdentifierError struct {
	Source  string
	Columns []string
}

func (e *MissingIdentifierError) Error() string {
	return fmt.Sprintf("%s: no identifier column among %v", e.Source, e.Columns)
}

func (e *MissingIdentifierError) Unwrap() error { return ErrMissingIdentifier }
