package domain

import (
	"time"

	"github.com/google/uuid"
)

// ResolutionLogEntry records the outcome of resolving one root query node.
type ResolutionLogEntry struct {
	ID           uuid.UUID     `json:"id"`
	RootKey      string        `json:"root_key"`
	Collection   string        `json:"collection"`
	Total        int           `json:"total"`
	ItemCount    int           `json:"item_count"`
	Duration     time.Duration `json:"duration"`
	ErrorMessage string        `json:"error_message,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Failed reports whether the root resolution ended in an error.
func (e ResolutionLogEntry) Failed() bool {
	return e.ErrorMessage != ""
}
