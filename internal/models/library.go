package models

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// LibraryItem is a tracked item the update job checks against its source.
type LibraryItem struct {
	id        int64
	title     string
	sourceID  int64
	url       string
	createdAt time.Time
	updatedAt time.Time
}

// NewLibraryItem creates a LibraryItem with creation timestamps set to now.
func NewLibraryItem(title string, sourceID int64, rawURL string) *LibraryItem {
	now := time.Now()
	return &LibraryItem{
		title:     title,
		sourceID:  sourceID,
		url:       rawURL,
		createdAt: now,
		updatedAt: now,
	}
}

func (i *LibraryItem) ID() int64            { return i.id }
func (i *LibraryItem) Title() string        { return i.title }
func (i *LibraryItem) SourceID() int64      { return i.sourceID }
func (i *LibraryItem) URL() string          { return i.url }
func (i *LibraryItem) CreatedAt() time.Time { return i.createdAt }
func (i *LibraryItem) UpdatedAt() time.Time { return i.updatedAt }

func (i *LibraryItem) SetID(id int64)           { i.id = id }
func (i *LibraryItem) SetCreatedAt(t time.Time) { i.createdAt = t }
func (i *LibraryItem) SetUpdatedAt(t time.Time) { i.updatedAt = t }

// Validate requires a title and an absolute http(s) URL.
func (i *LibraryItem) Validate() error {
	if strings.TrimSpace(i.title) == "" {
		return errors.New("title is required")
	}

	u, err := url.Parse(i.url)
	if err != nil {
		return errors.New("invalid url: " + err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("url must use http or https")
	}
	if u.Host == "" {
		return errors.New("url must include a host")
	}
	return nil
}

// Failure builds the [FailureRecord] for this item with the given message.
func (i *LibraryItem) Failure(messageID int64) FailureRecord {
	return FailureRecord{
		ItemID:    i.id,
		ItemTitle: i.title,
		SourceID:  i.sourceID,
		MessageID: messageID,
	}
}
