package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/updatelog/internal/models"
	"github.com/desertthunder/updatelog/internal/shared"
	"github.com/urfave/cli/v3"
)

const (
	titleWidth  = 32
	sourceWidth = 16
)

type libraryRow struct {
	ID       int64  `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	SourceID int64  `json:"source_id" yaml:"source_id"`
	Source   string `json:"source" yaml:"source"`
	URL      string `json:"url" yaml:"url"`
}

// LibraryAdd tracks a new library item.
func (r *Runner) LibraryAdd(ctx context.Context, cmd *cli.Command) error {
	item := models.NewLibraryItem(cmd.String("title"), int64(cmd.Int("source")), cmd.String("url"))
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	s, err := r.openStore()
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.library.Create(item); err != nil {
		return err
	}

	r.logger.Debug("library item added", "id", item.ID(), "source", item.SourceID())
	return r.writePlain("✓ Added %s (ID: %d, source: %s)\n", item.Title(), item.ID(), r.sources.Name(item.SourceID()))
}

// LibraryList prints tracked items in insertion order.
func (r *Runner) LibraryList(ctx context.Context, cmd *cli.Command) error {
	s, err := r.openStore()
	if err != nil {
		return err
	}
	defer s.close()

	items, err := s.library.List()
	if err != nil {
		return err
	}

	if cmd.Bool("json") || cmd.Bool("yaml") {
		out := make([]libraryRow, len(items))
		for i, item := range items {
			out[i] = libraryRow{
				ID:       item.ID(),
				Title:    item.Title(),
				SourceID: item.SourceID(),
				Source:   r.sources.Name(item.SourceID()),
				URL:      item.URL(),
			}
		}
		if cmd.Bool("yaml") {
			return r.writeYAML(out)
		}
		return r.writeJSON(out, true)
	}

	if len(items) == 0 {
		return r.writePlain("No library items. Add one with 'updatelog library add'.\n")
	}

	r.writePlainHeader(fmt.Sprintf("Library (%d items)", len(items)))
	for _, item := range items {
		if err := r.writePlain("%4d  %s  %s  %s\n", item.ID(), cell(item.Title(), titleWidth), cell(r.sources.Name(item.SourceID()), sourceWidth), item.URL()); err != nil {
			return err
		}
	}
	return nil
}

// LibraryRemove deletes a library item. Its update errors are removed with it.
func (r *Runner) LibraryRemove(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("id")
	if raw == "" {
		return fmt.Errorf("%w: item id", shared.ErrMissingArgument)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q is not an item id", shared.ErrInvalidArgument, raw)
	}

	s, err := r.openStore()
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.library.Delete(id); err != nil {
		return err
	}
	if _, err := s.messages.DeleteUnreferenced(); err != nil {
		r.logger.Warn("failed to prune messages", "error", err)
	}

	return r.writePlain("✓ Removed item %d\n", id)
}
