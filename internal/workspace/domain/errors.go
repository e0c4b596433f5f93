package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrProjectNotFound   = errors.New("project not found")
	ErrSectionNotFound   = errors.New("section not found")
	ErrFileNotFound      = errors.New("file not found")
	ErrCommentRequired   = errors.New("comment is required for status correction")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInvalidCurrency   = errors.New("unsupported currency")
	ErrInvalidType       = errors.New("transaction type must be income or expense")
	ErrNameRequired      = errors.New("name required")
	ErrAlreadyExists     = errors.New("already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrNoEngineers       = errors.New("no engineers available")
	ErrStorageQuota      = errors.New("local storage quota exceeded, data not saved")
	ErrRemoteUnavailable = errors.New("remote project server unavailable")
)
