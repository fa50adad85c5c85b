package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/updatelog/internal/models"
)

var _ list.Item = failureItem{}

// failureItem wraps [models.FailureRecord] to implement [list.Item].
type failureItem struct {
	record   models.FailureRecord
	source   string
	message  string
	selected bool
}

func (i failureItem) FilterValue() string { return i.record.ItemTitle }
func (i failureItem) Title() string {
	marker := "[ ]"
	if i.selected {
		marker = "[x]"
	}
	return fmt.Sprintf("%s %s", marker, i.record.ItemTitle)
}
func (i failureItem) Description() string {
	return fmt.Sprintf("%s • %s", i.source, i.message)
}
