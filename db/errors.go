package db

import "fmt"

// Common errors
var (
	ErrInsightNotFound    = fmt.Errorf("insight not found")
	ErrInvalidInput       = fmt.Errorf("invalid input")
	ErrDatabaseConnection = fmt.Errorf("database connection error")

	// ErrCacheUnavailable wraps read/write failures of the insight
	// store. Callers treat reads as a miss and writes as a no-op.
	ErrCacheUnavailable = fmt.Errorf("insight cache unavailable")
)
