package apperror

import "errors"

var (
	ErrInvalidCell       = errors.New("invalid cell coordinates")
	ErrUnknownIntent     = errors.New("unknown intent")
	ErrInvalidGame       = errors.New("invalid game state")
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionIDRequired = errors.New("session id is required")
)
