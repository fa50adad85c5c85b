// package models defines the data model for the library update error log
package models

import (
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() int64            // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

var (
	_ Model = (*LibraryItem)(nil)
	_ Model = (*UpdateError)(nil)
)

// ItemIDs returns the item IDs of records in record order, without duplicates.
func ItemIDs(records []FailureRecord) []int64 {
	seen := make(map[int64]bool, len(records))
	ids := make([]int64, 0, len(records))
	for _, r := range records {
		if seen[r.ItemID] {
			continue
		}
		seen[r.ItemID] = true
		ids = append(ids, r.ItemID)
	}
	return ids
}
