package main

import (
	"context"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/updatelog/internal/models"
	"github.com/desertthunder/updatelog/internal/shared"
	"github.com/desertthunder/updatelog/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive update error screen.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if !r.isTerminal() {
		return fmt.Errorf("%w: the error screen needs an interactive terminal, use 'errors list' instead", shared.ErrInvalidArgument)
	}

	s, err := r.openStore()
	if err != nil {
		return err
	}
	defer s.close()

	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := filepath.Join(filepath.Dir(r.config.ReportPath()), "updatelog-tui.log")
	fileLogger, logFile, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer logFile.Close()
	fileLogger.SetLevel(r.logger.GetLevel())
	defer r.SetLogger(r.logger)
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, ui.ModelOpts{
		Loader:  s.failures(),
		Sources: r.sources.Name,
		Export: func(records []models.FailureRecord, messages []models.FailureMessage) (string, error) {
			return r.exportReport(records, messages, "")
		},
		Opener:   r.opener,
		Migrator: printMigrator{logger: fileLogger},
		Updater:  r.newUpdater(s, fileLogger),
		Logger:   fileLogger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
