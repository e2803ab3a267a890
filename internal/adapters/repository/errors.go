package repository

import "errors"

// Sentinel kinds for priority store errors.
var (
	ErrInvalidLimit = errors.New("invalid limit")
	ErrInvalidScore = errors.New("invalid score")
	ErrEmptyDebtor  = errors.New("empty debtor key")
)
