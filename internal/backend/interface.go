package backend

import (
	"context"
	"time"

	"cuotas/internal/ports"
)

// CleanupFunc releases the resources held by a backend.
type CleanupFunc func() error

// BackendResult is a ready-to-use ledger. Writer is always set; for
// read-only backends every write fails with core.ErrReadOnly.
type BackendResult struct {
	Reader   ports.LedgerReader
	Writer   ports.LedgerWriter
	ReadOnly bool
	Cleanup  CleanupFunc
}

// Close runs Cleanup when one is set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// API specific
	APIBaseURL    string
	APITimeout    time.Duration
	APIMaxRetries int
	// APICacheTTL caches course, goal and category reads; zero disables it.
	APICacheTTL time.Duration
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	APIBackend    BackendType = "api"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, APIBackend:
		return true
	default:
		return false
	}
}
