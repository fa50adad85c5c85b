package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/desertthunder/updatelog/internal/models"
	"github.com/desertthunder/updatelog/internal/shared"
	"github.com/urfave/cli/v3"
)

type failureRow struct {
	ItemID    int64  `json:"item_id" yaml:"item_id"`
	ItemTitle string `json:"item_title" yaml:"item_title"`
	SourceID  int64  `json:"source_id" yaml:"source_id"`
	Source    string `json:"source" yaml:"source"`
	MessageID int64  `json:"message_id" yaml:"message_id"`
	Message   string `json:"message" yaml:"message"`
}

// ErrorsList prints the failures of the last update pass in recorded order.
func (r *Runner) ErrorsList(ctx context.Context, cmd *cli.Command) error {
	s, err := r.openStore()
	if err != nil {
		return err
	}
	defer s.close()

	records, messages, err := s.failures().Load()
	if err != nil {
		return err
	}

	texts := make(map[int64]string, len(messages))
	for _, m := range messages {
		texts[m.ID] = m.Text
	}

	if cmd.Bool("json") || cmd.Bool("yaml") {
		out := make([]failureRow, len(records))
		for i, rec := range records {
			out[i] = failureRow{
				ItemID:    rec.ItemID,
				ItemTitle: rec.ItemTitle,
				SourceID:  rec.SourceID,
				Source:    r.sources.Name(rec.SourceID),
				MessageID: rec.MessageID,
				Message:   texts[rec.MessageID],
			}
		}
		if cmd.Bool("yaml") {
			return r.writeYAML(out)
		}
		return r.writeJSON(out, true)
	}

	if len(records) == 0 {
		return r.writePlain("No update errors.\n")
	}

	r.writePlainHeader(fmt.Sprintf("Update errors (%d)", len(records)))
	for _, rec := range records {
		if err := r.writePlain("%4d  %s  %s  %s\n", rec.ItemID, cell(rec.ItemTitle, titleWidth), cell(r.sources.Name(rec.SourceID), sourceWidth), texts[rec.MessageID]); err != nil {
			return err
		}
	}
	return nil
}

// ErrorsExport writes the grouped error report and optionally opens it.
func (r *Runner) ErrorsExport(ctx context.Context, cmd *cli.Command) error {
	s, err := r.openStore()
	if err != nil {
		return err
	}
	defer s.close()

	records, messages, err := s.failures().Load()
	if err != nil {
		return err
	}

	path, err := r.exportReport(records, messages, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("report exported", "path", path, "failures", len(records))
	if err := r.writePlain("✓ Report written to %s\n", path); err != nil {
		return err
	}

	if cmd.Bool("open") {
		if err := r.opener.Open(path); err != nil {
			return fmt.Errorf("report written to %s but could not be opened: %w", path, err)
		}
	}
	return nil
}

// ErrorsClear deletes every recorded failure along with the messages only they referenced.
func (r *Runner) ErrorsClear(ctx context.Context, cmd *cli.Command) error {
	s, err := r.openStore()
	if err != nil {
		return err
	}
	defer s.close()

	n, err := s.errors.DeleteAll()
	if err != nil {
		return err
	}
	if _, err := s.messages.DeleteUnreferenced(); err != nil {
		return err
	}
	return r.writePlain("✓ Cleared %d update errors\n", n)
}

// ErrorsMigrate hands the given failed items to the migration workflow.
//
// Every id must belong to a current failure; nothing is handed off otherwise.
func (r *Runner) ErrorsMigrate(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return fmt.Errorf("%w: at least one item id", shared.ErrMissingArgument)
	}

	ids := make([]int64, 0, len(args))
	for _, raw := range args {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not an item id", shared.ErrInvalidArgument, raw)
		}
		ids = append(ids, id)
	}

	s, err := r.openStore()
	if err != nil {
		return err
	}
	defer s.close()

	records, _, err := s.failures().Load()
	if err != nil {
		return err
	}

	failed := make(map[int64]bool)
	for _, id := range models.ItemIDs(records) {
		failed[id] = true
	}
	for _, id := range ids {
		if !failed[id] {
			return fmt.Errorf("%w: item %d has no recorded failure", shared.ErrItemNotFound, id)
		}
	}

	return printMigrator{logger: r.logger, output: r.output}.Migrate(ctx, ids)
}

// ErrorsGuide opens the troubleshooting guide referenced by the report preamble.
func (r *Runner) ErrorsGuide(ctx context.Context, cmd *cli.Command) error {
	url := r.config.Report.HelpURL
	if url == "" {
		return fmt.Errorf("%w: report.help_url is not set", shared.ErrMissingConfig)
	}

	r.logger.Info("opening troubleshooting guide", "url", url)
	if err := r.browse(url); err != nil {
		return errors.Join(err, r.writePlain("Open %s in your browser\n", url))
	}
	return nil
}
