package service

import "errors"

// Errors shared by the session and config managers so callers can match
// them without importing either package.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
)
