// Package backend wires the configured data supplier, theme store and
// upload recorder.
package backend

import (
	"context"

	"bankdash/internal/sources"
	"bankdash/internal/storage"
	"bankdash/internal/theme"
	"bankdash/internal/upload"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result holds everything the server needs from the backend. Recorder and
// Repository are nil unless SQLite is in use.
type Result struct {
	Supplier   sources.Supplier
	Themes     theme.Store
	Recorder   upload.Recorder
	Repository *storage.SQLiteRepository
	Cleanup    CleanupFunc
}

// Close runs the cleanup function, if any.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	Create(ctx context.Context, config Config) (*Result, error)
}

// SourceType names a data supplier.
type SourceType string

const (
	MemorySource   SourceType = "memory"
	JSONFileSource SourceType = "jsonfile"
	SQLiteSource   SourceType = "sqlite"
	SheetsSource   SourceType = "sheets"
)

func (st SourceType) String() string { return string(st) }

// IsValid returns true if the source type is known
func (st SourceType) IsValid() bool {
	switch st {
	case MemorySource, JSONFileSource, SQLiteSource, SheetsSource:
		return true
	default:
		return false
	}
}
