package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoRecords is returned by PickRecord when there is nothing to pick.
	ErrNoRecords = errors.New("tui: no records to pick from")
)
