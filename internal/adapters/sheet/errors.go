package sheet

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	ErrNoHeader          = errors.New("sheet has no header row")
	ErrRead              = errors.New("failed to read sheet")
	ErrWrite             = errors.New("failed to write sheet")
)
