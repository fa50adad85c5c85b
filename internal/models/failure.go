package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// FailureMessage is the shared text describing one failure cause.
//
// Created by the update job the first time a distinct description is seen; immutable thereafter.
type FailureMessage struct {
	ID   int64  `json:"id"`
	Text string `json:"message"`
}

// FailureRecord is one item's failure from a single update pass.
//
// MessageID must resolve to a [FailureMessage] supplied alongside the record.
type FailureRecord struct {
	ItemID    int64  `json:"item_id"`
	ItemTitle string `json:"item_title"`
	SourceID  int64  `json:"source_id"`
	MessageID int64  `json:"message_id"`
}

// UpdateError is a persisted [FailureRecord] tagged with the run that produced it.
type UpdateError struct {
	id        int64
	sequence  int
	runID     string
	record    FailureRecord
	createdAt time.Time
}

// NewUpdateError creates an UpdateError for runID.
func NewUpdateError(runID string, record FailureRecord) *UpdateError {
	return &UpdateError{
		runID:     runID,
		record:    record,
		createdAt: time.Now(),
	}
}

func (e *UpdateError) ID() int64                { return e.id }
func (e *UpdateError) Sequence() int            { return e.sequence }
func (e *UpdateError) RunID() string            { return e.runID }
func (e *UpdateError) Record() FailureRecord    { return e.record }
func (e *UpdateError) CreatedAt() time.Time     { return e.createdAt }
func (e *UpdateError) SetID(id int64)           { e.id = id }
func (e *UpdateError) SetSequence(seq int)      { e.sequence = seq }
func (e *UpdateError) SetCreatedAt(t time.Time) { e.createdAt = t }

// Validate checks that the error references an item and a message.
func (e *UpdateError) Validate() error {
	var errs []error
	if strings.TrimSpace(e.runID) == "" {
		errs = append(errs, errors.New("run id is required"))
	}
	if e.record.ItemID <= 0 {
		errs = append(errs, fmt.Errorf("invalid item id %d", e.record.ItemID))
	}
	if e.record.MessageID <= 0 {
		errs = append(errs, fmt.Errorf("invalid message id %d", e.record.MessageID))
	}
	return errors.Join(errs...)
}

// Records unwraps errs into their [FailureRecord] values, preserving order.
func Records(errs []*UpdateError) []FailureRecord {
	records := make([]FailureRecord, len(errs))
	for i, e := range errs {
		records[i] = e.record
	}
	return records
}
