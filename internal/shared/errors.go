package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrConfigIncomplete   = fmt.Errorf("configuration incomplete")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrListingFailed      = fmt.Errorf("unable to enumerate source playlist")
	ErrPaginationLoop     = fmt.Errorf("pagination token repeated")
	ErrInsertFailed       = fmt.Errorf("failed to insert playlist item")

	// Checkpoint errors
	ErrCheckpointIO     = fmt.Errorf("checkpoint I/O failed")
	ErrCheckpointLocked = fmt.Errorf("checkpoint is locked by another process")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
