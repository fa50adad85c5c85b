package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/updatelog/internal/formatter"
	"github.com/desertthunder/updatelog/internal/models"
	"github.com/desertthunder/updatelog/internal/selection"
	"github.com/desertthunder/updatelog/internal/shared"
	"github.com/desertthunder/updatelog/internal/tasks"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

// Loader supplies the current failures and the messages they reference.
type Loader interface {
	Load() ([]models.FailureRecord, []models.FailureMessage, error)
}

// Opener shows a file to the user.
type Opener interface {
	Open(path string) error
}

// Migrator receives the item IDs chosen for migration.
type Migrator interface {
	Migrate(ctx context.Context, ids []int64) error
}

// UpdateRunner runs a library update pass.
type UpdateRunner interface {
	Run(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*tasks.UpdateResult, error)
}

// ExportFunc writes the report for records and returns the path written.
type ExportFunc func(records []models.FailureRecord, messages []models.FailureMessage) (string, error)

// ModelOpts configures a [Model]. Updater and Opener are optional.
type ModelOpts struct {
	Loader   Loader
	Sources  formatter.SourceNameFunc
	Export   ExportFunc
	Opener   Opener
	Migrator Migrator
	Updater  UpdateRunner
	Logger   *log.Logger
}

type failuresLoadedMsg struct {
	records  []models.FailureRecord
	messages []models.FailureMessage
	err      error
}

type exportDoneMsg struct {
	path string
	err  error
}

type migrateDoneMsg struct {
	ids           []int64
	fromSelection bool // hand-off of the selection rather than the current row
	err           error
}

type progressUpdateMsg tasks.ProgressUpdate

type updateCompleteMsg struct {
	result *tasks.UpdateResult
	err    error
}

// Model represents the error screen state.
type Model struct {
	ctx          context.Context
	opts         ModelOpts
	logger       *log.Logger
	records      []models.FailureRecord
	messages     map[int64]string
	allMessages  []models.FailureMessage
	selection    *selection.Set
	changed      bool
	list         list.Model
	updating     bool
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	result       *tasks.UpdateResult
	runErr       error
	status       string
	statusStyle  statusKind
	err          error
	help         help.Model
	keys         keyMap
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusWarn
	statusError
)

// NewModel creates the error screen model.
func NewModel(ctx context.Context, opts ModelOpts) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if opts.Sources == nil {
		opts.Sources = func(id int64) string { return fmt.Sprintf("%d", id) }
	}

	l := list.New(nil, list.NewDefaultDelegate(), defaultWidth, defaultHeight-4)
	l.Title = "Update errors"
	l.SetShowHelp(false)

	m := &Model{
		ctx:       ctx,
		opts:      opts,
		logger:    shared.WithLogger(logger, "component", "ui"),
		messages:  make(map[int64]string),
		selection: selection.New(nil),
		list:      l,
		help:      help.New(),
		keys:      newKeyMap(),
	}
	m.selection.OnChange = func() { m.changed = true }
	return m
}

// Init loads the failures recorded by the last update pass.
func (m *Model) Init() tea.Cmd {
	return m.loadFailures()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		if m.updating {
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		}
		return m.handleKeys(msg)

	case failuresLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		return m, m.setFailures(msg.records, msg.messages)

	case exportDoneMsg:
		if msg.err != nil {
			m.logger.Error("export failed", "error", msg.err)
			m.setStatus(statusError, fmt.Sprintf("Export failed: %v", msg.err))
			return m, nil
		}
		m.setStatus(statusInfo, fmt.Sprintf("Report written to %s", msg.path))
		return m, nil

	case migrateDoneMsg:
		if msg.err != nil {
			m.logger.Error("migration hand-off failed", "error", msg.err)
			m.setStatus(statusError, fmt.Sprintf("Migration failed: %v", msg.err))
			return m, nil
		}
		m.setStatus(statusInfo, fmt.Sprintf("Sent %d items to migration", len(msg.ids)))
		if msg.fromSelection {
			m.selection.ClearAll()
		}
		return m, m.refreshItems()

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case updateCompleteMsg:
		m.updating = false
		m.progressChan = nil
		if msg.err != nil {
			m.setStatus(statusError, fmt.Sprintf("Update failed: %v", msg.err))
			return m, nil
		}
		m.setStatus(statusInfo, fmt.Sprintf("Checked %d items, %d failed", msg.result.Checked, msg.result.Failed))
		return m, m.loadFailures()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	universe := m.selection.Universe()

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggle):
		if item, ok := m.currentItem(); ok {
			m.selection.Toggle(item.record.ItemID)
		}
	case key.Matches(msg, m.keys.selectAll):
		m.selection.ToggleAll(universe)
	case key.Matches(msg, m.keys.invert):
		m.selection.Invert(universe)
	case key.Matches(msg, m.keys.export):
		return m, m.export()
	case key.Matches(msg, m.keys.migrate):
		return m, m.migrate(m.selection.Selected(), true)
	case key.Matches(msg, m.keys.migrateOne):
		if item, ok := m.currentItem(); ok {
			return m, m.migrate([]int64{item.record.ItemID}, false)
		}
		return m, nil
	case key.Matches(msg, m.keys.update):
		return m, m.startUpdate()
	default:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	if m.changed {
		return m, m.refreshItems()
	}
	return m, nil
}

// View renders the error screen.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	if m.updating {
		title := styles.title.Render("Updating library")
		step := fmt.Sprintf("%s (%d/%d)", m.progress.Phase, m.progress.Step, m.progress.Total)
		return fmt.Sprintf("%s\n\n%s\n%s", title, step, m.progress.Message)
	}

	if len(m.records) == 0 {
		body := styles.ok.Render("No update errors")
		return fmt.Sprintf("%s\n\n%s\n\n%s", body, m.renderStatus(), m.help.ShortHelpView([]key.Binding{m.keys.update, m.keys.quit}))
	}

	counts := styles.help.Render(fmt.Sprintf("%d of %d selected", m.selection.Len(), len(m.selection.Universe())))
	return fmt.Sprintf("%s\n%s\n%s\n%s", m.list.View(), counts, m.renderStatus(), m.help.View(m.keys))
}

func (m *Model) renderStatus() string {
	switch m.statusStyle {
	case statusError:
		return styles.err.Render(m.status)
	case statusWarn:
		return styles.warn.Render(m.status)
	default:
		return styles.ok.Render(m.status)
	}
}

func (m *Model) setStatus(kind statusKind, text string) {
	m.statusStyle = kind
	m.status = text
}

// setFailures replaces the displayed records and prunes the selection to the new universe.
func (m *Model) setFailures(records []models.FailureRecord, messages []models.FailureMessage) tea.Cmd {
	m.records = records
	m.allMessages = messages
	m.messages = make(map[int64]string, len(messages))
	for _, msg := range messages {
		m.messages[msg.ID] = msg.Text
	}

	m.selection.SetUniverse(models.ItemIDs(records))
	m.list.Title = fmt.Sprintf("Update errors (%d)", len(records))
	return m.refreshItems()
}

func (m *Model) refreshItems() tea.Cmd {
	m.changed = false
	items := make([]list.Item, len(m.records))
	for i, r := range m.records {
		items[i] = failureItem{
			record:   r,
			source:   m.opts.Sources(r.SourceID),
			message:  m.messages[r.MessageID],
			selected: m.selection.IsSelected(r.ItemID),
		}
	}
	return m.list.SetItems(items)
}

func (m *Model) currentItem() (failureItem, bool) {
	item, ok := m.list.SelectedItem().(failureItem)
	return item, ok
}

func (m *Model) loadFailures() tea.Cmd {
	return func() tea.Msg {
		if m.opts.Loader == nil {
			return failuresLoadedMsg{err: fmt.Errorf("%w: no failure loader", shared.ErrServiceUnavailable)}
		}
		records, messages, err := m.opts.Loader.Load()
		return failuresLoadedMsg{records: records, messages: messages, err: err}
	}
}

// export is suppressed when there is nothing to report.
func (m *Model) export() tea.Cmd {
	if len(m.records) == 0 || m.opts.Export == nil {
		m.setStatus(statusWarn, "Nothing to export")
		return nil
	}

	records := append([]models.FailureRecord(nil), m.records...)
	messages := append([]models.FailureMessage(nil), m.allMessages...)
	export, opener := m.opts.Export, m.opts.Opener

	return func() tea.Msg {
		path, err := export(records, messages)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		if opener != nil {
			if err := opener.Open(path); err != nil {
				return exportDoneMsg{path: path, err: fmt.Errorf("report written to %s but could not be opened: %w", path, err)}
			}
		}
		return exportDoneMsg{path: path}
	}
}

func (m *Model) migrate(ids []int64, fromSelection bool) tea.Cmd {
	if len(ids) == 0 {
		m.setStatus(statusWarn, "Nothing selected")
		return nil
	}
	if m.opts.Migrator == nil {
		m.setStatus(statusWarn, "Migration is not available")
		return nil
	}

	migrator, ctx := m.opts.Migrator, m.ctx
	return func() tea.Msg {
		return migrateDoneMsg{ids: ids, fromSelection: fromSelection, err: migrator.Migrate(ctx, ids)}
	}
}

func (m *Model) startUpdate() tea.Cmd {
	if m.opts.Updater == nil {
		m.setStatus(statusWarn, "Updates are not available")
		return nil
	}

	m.updating = true
	m.progress = tasks.ProgressUpdate{}
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progress := m.progressChan

	go func() {
		result, err := m.opts.Updater.Run(m.ctx, progress)
		m.result = result
		m.runErr = err
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress := m.progressChan
	return func() tea.Msg {
		if progress == nil {
			return updateCompleteMsg{result: m.result, err: m.runErr}
		}

		update, ok := <-progress
		if !ok {
			return updateCompleteMsg{result: m.result, err: m.runErr}
		}
		return progressUpdateMsg(update)
	}
}
