// Package models defines domain entities for the library update error log.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): plain values exchanged between the update job, the report generator and the UI
//   - [FailureMessage] : Deduplicated description of one failure cause
//   - [FailureRecord] : One item's failure outcome from a single update pass
//
// 2. Persistent Entities: database-backed models with validation
//   - [LibraryItem] : A tracked item checked by the update job
//   - [UpdateError] : A stored [FailureRecord] tagged with the update run that produced it
//
// Persistent entities implement the [Model] interface.
package models
