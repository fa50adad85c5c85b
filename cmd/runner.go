package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/updatelog/internal/formatter"
	"github.com/desertthunder/updatelog/internal/models"
	"github.com/desertthunder/updatelog/internal/repositories"
	"github.com/desertthunder/updatelog/internal/shared"
	"github.com/desertthunder/updatelog/internal/sources"
	"github.com/desertthunder/updatelog/internal/tasks"
	"github.com/desertthunder/updatelog/internal/ui"
	"github.com/mattn/go-runewidth"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	opener     ui.Opener
	browse     func(url string) error
	db         *sql.DB
	sources    *sources.Registry
	isTerminal func() bool
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Opener     ui.Opener
	Browse     func(url string) error
	DB         *sql.DB // Shared connection; when nil each command opens the configured database
	IsTerminal func() bool
}

// store bundles the repositories a command needs.
type store struct {
	library  *repositories.LibraryRepository
	messages *repositories.MessageRepository
	errors   *repositories.UpdateErrorRepository
	close    func() error
}

func (s *store) failures() repositories.FailureStore {
	return repositories.FailureStore{Errors: s.errors, Messages: s.messages}
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.UpdateTimeout()}
	}
	if opts.Opener == nil {
		opts.Opener = shared.FileOpener{}
	}
	if opts.Browse == nil {
		opts.Browse = shared.OpenBrowser
	}
	if opts.IsTerminal == nil {
		opts.IsTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		opener:     opts.Opener,
		browse:     opts.Browse,
		db:         opts.DB,
		sources:    sources.NewRegistry(opts.Config.Sources),
		isTerminal: opts.IsTerminal,
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, libraryCommand, updateCommand, errorsCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openStore opens the configured database and applies pending migrations.
func (r *Runner) openStore() (*store, error) {
	db := r.db
	closeFn := func() error { return nil }

	if db == nil {
		var err error
		if db, err = shared.NewDatabase(r.config.Database.Path); err != nil {
			return nil, err
		}
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		closeFn = db.Close

		if err := shared.RunMigrations(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return &store{
		library:  repositories.NewLibraryRepository(db),
		messages: repositories.NewMessageRepository(db),
		errors:   repositories.NewUpdateErrorRepository(db),
		close:    closeFn,
	}, nil
}

func (r *Runner) newUpdater(s *store, logger *log.Logger) *tasks.Updater {
	return tasks.NewUpdater(tasks.UpdaterOpts{
		Items:     s.library,
		Messages:  s.messages,
		Errors:    s.errors,
		Checker:   tasks.NewHTTPChecker(r.httpClient, r.config.Update.UserAgent),
		RateLimit: r.config.Update.RateLimit,
		Timeout:   r.config.UpdateTimeout(),
		Logger:    logger,
	})
}

// exportReport writes the grouped error report to path, or to the configured report path when empty.
func (r *Runner) exportReport(records []models.FailureRecord, messages []models.FailureMessage, path string) (string, error) {
	if len(records) == 0 {
		return "", shared.ErrNoFailures
	}
	if path == "" {
		path = r.config.ReportPath()
	}

	req := formatter.ReportRequest{
		Records:  records,
		Messages: messages,
		Resolve:  r.sources.Name,
		Preamble: formatter.Preamble(r.config.Report.HelpTemplate, r.config.Report.HelpURL),
	}
	return formatter.ExportReport(req, path)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writeYAML(data any) error {
	output, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// cell pads or truncates s to exactly width terminal columns.
func cell(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

// printMigrator is the CLI's migration entry point. It reports every batch it receives.
type printMigrator struct {
	logger *log.Logger
	output io.Writer
}

func (m printMigrator) Migrate(ctx context.Context, ids []int64) error {
	m.logger.Info("handing items to migration", "count", len(ids), "ids", ids)
	if m.output == nil {
		return nil
	}
	if _, err := fmt.Fprintf(m.output, "Migrating %d items: %v\n", len(ids), ids); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
