package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/updatelog/internal/shared"
	"github.com/desertthunder/updatelog/internal/tasks"
	"github.com/urfave/cli/v3"
)

// UpdateRun checks every library item and records the failures.
func (r *Runner) UpdateRun(ctx context.Context, cmd *cli.Command) error {
	s, err := r.openStore()
	if err != nil {
		return err
	}
	defer s.close()

	r.writePlain("Running library update...\n\n")

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchLibrary:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.CheckItems:
				r.writePlain("   %s\n", update.Message)
			case tasks.RecordErrors, tasks.Cleanup:
				r.writePlain("\n📝 %s\n", update.Message)
			}
		}
	}()

	result, err := r.newUpdater(s, r.logger).Run(ctx, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Update Summary")
	r.writePlain("Checked: %d\n", result.Checked)
	r.writePlain("Failed:  %d\n", result.Failed)
	r.writePlain("Run:     %s\n", result.RunID)

	if result.Failed == 0 || !cmd.Bool("open") {
		return nil
	}

	records, messages, err := s.failures().Load()
	if err != nil {
		return err
	}

	path, err := r.exportReport(records, messages, "")
	if err != nil {
		if errors.Is(err, shared.ErrNoFailures) {
			return nil
		}
		return err
	}

	r.writePlain("\nReport: %s\n", path)
	if err := r.opener.Open(path); err != nil {
		return fmt.Errorf("report written to %s but could not be opened: %w", path, err)
	}
	return nil
}
