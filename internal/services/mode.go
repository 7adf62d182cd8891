package services

import (
	"fmt"
	"strings"
)

// Mode selects what an import does to the store
type Mode string

const (
	// ModePreview parses and reports without touching the store
	ModePreview Mode = "preview"
	// ModeImport creates and updates records named in the file
	ModeImport Mode = "import"
	// ModeSync is ModeImport plus deactivation of everything the file omits
	ModeSync Mode = "sync"
)

// ParseMode reads the mode query parameter. An empty value means ModeImport.
func ParseMode(raw string) (Mode, error) {
	switch mode := Mode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case "":
		return ModeImport, nil
	case ModePreview, ModeImport, ModeSync:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, raw)
	}
}

// Mutates reports whether the mode writes to the store
func (m Mode) Mutates() bool {
	return m == ModeImport || m == ModeSync
}
