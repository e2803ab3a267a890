package service

import "errors"

var (
	// ErrNoCaseTable is the one fatal pipeline condition: no case extract
	// could be read and resolved, so there is nothing to join onto.
	ErrNoCaseTable = errors.New("no usable case table")
	// ErrWriteOutput wraps failures writing the consolidated artifact.
	ErrWriteOutput = errors.New("failed to write consolidated output")
)
