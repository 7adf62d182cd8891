package services

import "errors"

var (
	ErrInvalidMode      = errors.New("invalid import mode")
	ErrParseFailed      = errors.New("taxonomy file could not be parsed")
	ErrImportInProgress = errors.New("another taxonomy import is in progress")
	ErrNameRequired     = errors.New("name is required")
	ErrSlugExhausted    = errors.New("no free slug found")
)
