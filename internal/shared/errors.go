package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Library and update errors
	ErrItemNotFound       = fmt.Errorf("library item not found")
	ErrUpdateFailed       = fmt.Errorf("library update failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Report errors
	ErrMessageNotFound = fmt.Errorf("failure message not found")
	ErrNoFailures      = fmt.Errorf("no update failures to export")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
