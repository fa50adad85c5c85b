// Package ui implements the update error screen using bubbletea's Elm architecture.
//
// The screen lists every failure from the last library update pass, one row per item, with a selection marker.
// Rows are selected with space, select-all, or invert, then handed to the migration workflow as a batch.
// The export key writes the grouped error report and opens it with the platform viewer.
//
// The [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Update passes started from the screen stream [tasks.ProgressUpdate] values through a channel and reload the list when done.
package ui
