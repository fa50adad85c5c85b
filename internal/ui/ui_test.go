package ui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/updatelog/internal/models"
	"github.com/desertthunder/updatelog/internal/tasks"
	th "github.com/desertthunder/updatelog/internal/testing"
)

type stubLoader struct {
	records  []models.FailureRecord
	messages []models.FailureMessage
	err      error
	calls    int
}

func (l *stubLoader) Load() ([]models.FailureRecord, []models.FailureMessage, error) {
	l.calls++
	return l.records, l.messages, l.err
}

type stubUpdater struct {
	result *tasks.UpdateResult
	err    error
}

func (u *stubUpdater) Run(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*tasks.UpdateResult, error) {
	progress <- tasks.ProgressUpdate{Phase: tasks.CheckItems, Step: 1, Total: 1, Message: "[1/1] a"}
	return u.result, u.err
}

type exportCall struct {
	records  []models.FailureRecord
	messages []models.FailureMessage
}

type testHarness struct {
	model    *Model
	loader   *stubLoader
	opener   *th.MockOpener
	migrator *th.MockMigrator
	exports  *[]exportCall
}

func sampleFailures() ([]models.FailureRecord, []models.FailureMessage) {
	records := []models.FailureRecord{
		{ItemID: 10, ItemTitle: "Alpha", SourceID: 1, MessageID: 1},
		{ItemID: 20, ItemTitle: "Beta", SourceID: 2, MessageID: 2},
		{ItemID: 30, ItemTitle: "Gamma", SourceID: 1, MessageID: 1},
	}
	messages := []models.FailureMessage{{ID: 1, Text: "Network error"}, {ID: 2, Text: "Parse error"}}
	return records, messages
}

func newHarness(t *testing.T, records []models.FailureRecord, messages []models.FailureMessage) testHarness {
	t.Helper()

	exports := &[]exportCall{}
	h := testHarness{
		loader:   &stubLoader{records: records, messages: messages},
		opener:   &th.MockOpener{},
		migrator: &th.MockMigrator{},
		exports:  exports,
	}

	h.model = NewModel(context.Background(), ModelOpts{
		Loader: h.loader,
		Sources: func(id int64) string {
			return map[int64]string{1: "Local", 2: "Feed (EN)"}[id]
		},
		Export: func(r []models.FailureRecord, m []models.FailureMessage) (string, error) {
			*exports = append(*exports, exportCall{records: r, messages: m})
			return "/tmp/report.txt", nil
		},
		Opener:   h.opener,
		Migrator: h.migrator,
		Logger:   log.New(io.Discard),
	})

	h.model.Update(h.model.Init()())
	return h
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press sends a key and feeds any resulting message back into the model.
func (h testHarness) press(k string) tea.Cmd {
	_, cmd := h.model.Update(keyMsg(k))
	return cmd
}

func (h testHarness) run(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	h.model.Update(msg)
	return msg
}

func TestModelLoad(t *testing.T) {
	t.Run("builds one row per record", func(t *testing.T) {
		records, messages := sampleFailures()
		h := newHarness(t, records, messages)

		items := h.model.list.Items()
		if len(items) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(items))
		}

		first := items[0].(failureItem)
		if first.Title() != "[ ] Alpha" {
			t.Errorf("unexpected title %q", first.Title())
		}
		if first.Description() != "Local • Network error" {
			t.Errorf("unexpected description %q", first.Description())
		}
	})

	t.Run("load error is shown", func(t *testing.T) {
		h := newHarness(t, nil, nil)
		h.loader.err = errors.New("database locked")
		h.model.Update(h.model.Init()())

		if !strings.Contains(h.model.View(), "database locked") {
			t.Error("expected load error in view")
		}
	})

	t.Run("reload prunes stale selection", func(t *testing.T) {
		records, messages := sampleFailures()
		h := newHarness(t, records, messages)

		h.press("a")
		h.loader.records = records[:1]
		h.model.Update(h.model.Init()())

		if got := h.model.selection.Selected(); len(got) != 1 || got[0] != 10 {
			t.Errorf("expected only item 10 to remain selected, got %v", got)
		}
	})
}

func TestModelSelection(t *testing.T) {
	t.Run("toggle marks current row", func(t *testing.T) {
		records, messages := sampleFailures()
		h := newHarness(t, records, messages)

		h.press("x")
		if !h.model.selection.IsSelected(10) {
			t.Fatal("expected item 10 selected")
		}
		if got := h.model.list.Items()[0].(failureItem).Title(); got != "[x] Alpha" {
			t.Errorf("expected marker to update, got %q", got)
		}

		h.press("space")
		if h.model.selection.IsSelected(10) {
			t.Error("expected item 10 deselected after second toggle")
		}
	})

	t.Run("select all then clear", func(t *testing.T) {
		records, messages := sampleFailures()
		h := newHarness(t, records, messages)

		h.press("a")
		if h.model.selection.Len() != 3 {
			t.Fatalf("expected all 3 selected, got %d", h.model.selection.Len())
		}

		h.press("a")
		if h.model.selection.Len() != 0 {
			t.Errorf("expected selection cleared, got %d", h.model.selection.Len())
		}
	})

	t.Run("invert", func(t *testing.T) {
		records, messages := sampleFailures()
		h := newHarness(t, records, messages)

		h.press("x")
		h.press("i")

		got := h.model.selection.Selected()
		if len(got) != 2 || got[0] != 20 || got[1] != 30 {
			t.Errorf("expected [20 30], got %v", got)
		}
	})
}

func TestModelActions(t *testing.T) {
	t.Run("export writes and opens report", func(t *testing.T) {
		records, messages := sampleFailures()
		h := newHarness(t, records, messages)

		msg := h.run(h.press("e"))
		done, ok := msg.(exportDoneMsg)
		if !ok || done.err != nil {
			t.Fatalf("expected successful export, got %#v", msg)
		}

		if len(*h.exports) != 1 || len((*h.exports)[0].records) != 3 {
			t.Errorf("expected one export of 3 records, got %v", *h.exports)
		}
		if len(h.opener.Opened) != 1 || h.opener.Opened[0] != "/tmp/report.txt" {
			t.Errorf("expected report opened, got %v", h.opener.Opened)
		}
		if !strings.Contains(h.model.status, "/tmp/report.txt") {
			t.Errorf("expected status to name the report, got %q", h.model.status)
		}
	})

	t.Run("export suppressed when empty", func(t *testing.T) {
		h := newHarness(t, nil, nil)

		if cmd := h.press("e"); cmd != nil {
			t.Fatal("expected no export command for an empty list")
		}
		if len(*h.exports) != 0 {
			t.Error("exporter should not be called")
		}
	})

	t.Run("open failure is reported", func(t *testing.T) {
		records, messages := sampleFailures()
		h := newHarness(t, records, messages)
		h.opener.Err = errors.New("no viewer")

		h.run(h.press("e"))
		if !strings.Contains(h.model.status, "no viewer") {
			t.Errorf("expected open failure in status, got %q", h.model.status)
		}
	})

	t.Run("migrate selected hands off ids in display order", func(t *testing.T) {
		records, messages := sampleFailures()
		h := newHarness(t, records, messages)

		h.press("a")
		h.run(h.press("m"))

		if len(h.migrator.Batches) != 1 {
			t.Fatalf("expected 1 batch, got %d", len(h.migrator.Batches))
		}
		batch := h.migrator.Batches[0]
		if len(batch) != 3 || batch[0] != 10 || batch[2] != 30 {
			t.Errorf("unexpected batch %v", batch)
		}
		if h.model.selection.Len() != 0 {
			t.Error("expected selection cleared after hand-off")
		}
	})

	t.Run("migrate with nothing selected", func(t *testing.T) {
		records, messages := sampleFailures()
		h := newHarness(t, records, messages)

		if cmd := h.press("m"); cmd != nil {
			t.Fatal("expected no migrate command")
		}
		if h.model.status != "Nothing selected" {
			t.Errorf("unexpected status %q", h.model.status)
		}
	})

	t.Run("enter migrates current item", func(t *testing.T) {
		records, messages := sampleFailures()
		h := newHarness(t, records, messages)

		h.run(h.press("enter"))
		if len(h.migrator.Batches) != 1 || len(h.migrator.Batches[0]) != 1 || h.migrator.Batches[0][0] != 10 {
			t.Errorf("expected [10], got %v", h.migrator.Batches)
		}
	})

	t.Run("enter keeps the selection of other rows", func(t *testing.T) {
		records, messages := sampleFailures()
		h := newHarness(t, records, messages)

		h.press("x")
		h.press("i")
		h.run(h.press("enter"))

		if len(h.migrator.Batches) != 1 || len(h.migrator.Batches[0]) != 1 || h.migrator.Batches[0][0] != 10 {
			t.Errorf("expected [10], got %v", h.migrator.Batches)
		}
		got := h.model.selection.Selected()
		if len(got) != 2 || got[0] != 20 || got[1] != 30 {
			t.Errorf("expected selection [20 30] kept, got %v", got)
		}
	})

	t.Run("migration failure keeps selection", func(t *testing.T) {
		records, messages := sampleFailures()
		h := newHarness(t, records, messages)
		h.migrator.Err = errors.New("busy")

		h.press("a")
		h.run(h.press("m"))

		if h.model.selection.Len() != 3 {
			t.Error("expected selection kept after failed hand-off")
		}
		if !strings.Contains(h.model.status, "busy") {
			t.Errorf("expected failure in status, got %q", h.model.status)
		}
	})

	t.Run("quit", func(t *testing.T) {
		h := newHarness(t, nil, nil)

		cmd := h.press("q")
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestModelUpdate(t *testing.T) {
	t.Run("progress then reload", func(t *testing.T) {
		records, messages := sampleFailures()
		h := newHarness(t, nil, nil)
		h.model.opts.Updater = &stubUpdater{result: &tasks.UpdateResult{Checked: 3, Failed: 3}}
		h.loader.records, h.loader.messages = records, messages

		msg := h.run(h.press("r"))
		if _, ok := msg.(progressUpdateMsg); !ok {
			t.Fatalf("expected progress message, got %#v", msg)
		}
		if !strings.Contains(h.model.View(), "[1/1] a") {
			t.Error("expected progress message in view")
		}

		msg = h.model.waitForProgress()()
		if _, ok := msg.(updateCompleteMsg); !ok {
			t.Fatalf("expected completion message, got %#v", msg)
		}
		_, cmd := h.model.Update(msg)
		h.run(cmd)

		if h.model.updating {
			t.Error("expected update to finish")
		}
		if len(h.model.list.Items()) != 3 {
			t.Errorf("expected reloaded rows, got %d", len(h.model.list.Items()))
		}
	})

	t.Run("unavailable updater", func(t *testing.T) {
		h := newHarness(t, nil, nil)

		if cmd := h.press("r"); cmd != nil {
			t.Fatal("expected no update command")
		}
	})
}
