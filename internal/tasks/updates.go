package tasks

import (
	"fmt"

	"github.com/desertthunder/updatelog/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchLibrary Phase = iota
	CheckItems
	RecordErrors
	Cleanup
)

func (p Phase) String() string {
	switch p {
	case FetchLibrary:
		return "fetch_library"
	case CheckItems:
		return "check_items"
	case RecordErrors:
		return "record_errors"
	case Cleanup:
		return "cleanup"
	default:
		return ""
	}
}

func fetchLibraryUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLibrary,
		Step:    1,
		Total:   1,
		Message: "Fetching library items...",
	}
}

func checkItemUpdate(step, total int, item *models.LibraryItem) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CheckItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, item.Title()),
		Data:    item,
	}
}

func itemFailedUpdate(step, total int, item *models.LibraryItem, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CheckItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, item.Title(), err),
		Data:    item,
	}
}

func recordErrorsUpdate(failed int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RecordErrors,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Recording %d update errors...", failed),
	}
}

func cleanupUpdate(removed int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Cleanup,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Removed %d unused messages", removed),
	}
}
