package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/updatelog/internal/formatter"
	"github.com/desertthunder/updatelog/internal/shared"
	tu "github.com/desertthunder/updatelog/internal/testing"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

type commandHarness struct {
	runner  *Runner
	output  *bytes.Buffer
	opener  *tu.MockOpener
	rt      *tu.MockRoundTripper
	browsed []string
	dir     string
}

// newCommandHarness wires a Runner to an in-memory database and a mock HTTP transport answering with status.
func newCommandHarness(t *testing.T, status int) *commandHarness {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	h := &commandHarness{
		output: &bytes.Buffer{},
		opener: &tu.MockOpener{},
		dir:    t.TempDir(),
	}
	h.rt = tu.NewMockRoundTripper(&http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(""))}, nil)

	config := shared.DefaultConfig()
	config.Update.RateLimit = 0
	config.Report.Dir = h.dir

	h.runner = NewRunner(RunnerOpts{
		Config:     config,
		HTTPClient: &http.Client{Transport: h.rt},
		Logger:     shared.NewLogger(&bytes.Buffer{}),
		Output:     h.output,
		Opener:     h.opener,
		Browse: func(url string) error {
			h.browsed = append(h.browsed, url)
			return nil
		},
		DB: db,
	})
	return h
}

func (h *commandHarness) run(t *testing.T, args ...string) error {
	t.Helper()
	app := &cli.Command{Name: "updatelog", Commands: h.runner.register()}
	return app.Run(t.Context(), append([]string{"updatelog"}, args...))
}

func (h *commandHarness) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	h.output.Reset()
	if err := h.run(t, args...); err != nil {
		t.Fatalf("%s failed: %v", strings.Join(args, " "), err)
	}
	return h.output.String()
}

func (h *commandHarness) addItems(t *testing.T) {
	t.Helper()
	h.mustRun(t, "library", "add", "--title", "Alpha", "--url", "https://example.com/a", "--source", "1")
	h.mustRun(t, "library", "add", "--title", "Beta", "--url", "https://example.com/b", "--source", "2")
	h.mustRun(t, "library", "add", "--title", "Gamma", "--url", "https://example.com/c", "--source", "9")
}

func TestLibraryCommands(t *testing.T) {
	t.Run("add and list", func(t *testing.T) {
		h := newCommandHarness(t, http.StatusOK)
		h.addItems(t)

		out := h.mustRun(t, "library", "list")
		for _, want := range []string{"Alpha", "Local", "Beta", "Feed (EN)", "Gamma"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("list as JSON", func(t *testing.T) {
		h := newCommandHarness(t, http.StatusOK)
		h.addItems(t)

		var items []libraryRow
		if err := json.Unmarshal([]byte(h.mustRun(t, "library", "list", "--json")), &items); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(items) != 3 || items[1].Source != "Feed (EN)" {
			t.Errorf("unexpected items: %+v", items)
		}
	})

	t.Run("list as YAML", func(t *testing.T) {
		h := newCommandHarness(t, http.StatusOK)
		h.addItems(t)

		var items []libraryRow
		if err := yaml.Unmarshal([]byte(h.mustRun(t, "library", "list", "--yaml")), &items); err != nil {
			t.Fatalf("invalid YAML: %v", err)
		}
		if len(items) != 3 || items[2].Source != "9" || items[0].URL != "https://example.com/a" {
			t.Errorf("unexpected items: %+v", items)
		}
	})

	t.Run("list truncates wide titles", func(t *testing.T) {
		h := newCommandHarness(t, http.StatusOK)
		long := strings.Repeat("漫", 40)
		h.mustRun(t, "library", "add", "--title", long, "--url", "https://example.com/wide")

		out := h.mustRun(t, "library", "list")
		if strings.Contains(out, long) {
			t.Error("expected long title to be truncated")
		}
		if !strings.Contains(out, "…") {
			t.Errorf("expected ellipsis in output:\n%s", out)
		}
	})

	t.Run("add rejects invalid url", func(t *testing.T) {
		h := newCommandHarness(t, http.StatusOK)

		err := h.run(t, "library", "add", "--title", "Bad", "--url", "not a url")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("remove", func(t *testing.T) {
		h := newCommandHarness(t, http.StatusOK)
		h.addItems(t)

		h.mustRun(t, "library", "remove", "1")
		if out := h.mustRun(t, "library", "list"); strings.Contains(out, "Alpha") {
			t.Errorf("expected Alpha removed:\n%s", out)
		}
	})

	t.Run("remove unknown item", func(t *testing.T) {
		h := newCommandHarness(t, http.StatusOK)

		if err := h.run(t, "library", "remove", "42"); !errors.Is(err, shared.ErrItemNotFound) {
			t.Fatalf("expected ErrItemNotFound, got %v", err)
		}
	})

	t.Run("remove with invalid id", func(t *testing.T) {
		h := newCommandHarness(t, http.StatusOK)

		if err := h.run(t, "library", "remove", "abc"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestUpdateCommand(t *testing.T) {
	t.Run("records failures", func(t *testing.T) {
		h := newCommandHarness(t, http.StatusInternalServerError)
		h.addItems(t)

		out := h.mustRun(t, "update", "run")
		if !strings.Contains(out, "Failed:  3") {
			t.Errorf("expected 3 failures in summary:\n%s", out)
		}
		if len(h.rt.Requests) != 3 {
			t.Errorf("expected 3 requests, got %d", len(h.rt.Requests))
		}
		if got := h.rt.Requests[0].Header.Get("User-Agent"); got != "updatelog/0.1" {
			t.Errorf("expected configured user agent, got %q", got)
		}
		if len(h.opener.Opened) != 0 {
			t.Error("report should not be opened without --open")
		}
	})

	t.Run("open exports the report", func(t *testing.T) {
		h := newCommandHarness(t, http.StatusNotFound)
		h.addItems(t)

		h.mustRun(t, "update", "run", "--open")

		want := filepath.Join(h.dir, "updatelog_update_errors.txt")
		if len(h.opener.Opened) != 1 || h.opener.Opened[0] != want {
			t.Fatalf("expected %s opened, got %v", want, h.opener.Opened)
		}
		report := tu.MustReadFile(t, want)
		if !strings.Contains(report, "! HTTP 404\n  # Local\n    - Alpha\n") {
			t.Errorf("unexpected report:\n%s", report)
		}
	})

	t.Run("no failures", func(t *testing.T) {
		h := newCommandHarness(t, http.StatusOK)
		h.addItems(t)

		out := h.mustRun(t, "update", "run", "--open")
		if !strings.Contains(out, "Failed:  0") {
			t.Errorf("expected no failures:\n%s", out)
		}
		if len(h.opener.Opened) != 0 {
			t.Error("nothing should be opened when no items fail")
		}
	})
}

func TestErrorsCommands(t *testing.T) {
	t.Run("list in recorded order", func(t *testing.T) {
		h := newCommandHarness(t, http.StatusBadGateway)
		h.addItems(t)
		h.mustRun(t, "update", "run")

		var failures []failureRow
		if err := json.Unmarshal([]byte(h.mustRun(t, "errors", "list", "--json")), &failures); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(failures) != 3 {
			t.Fatalf("expected 3 failures, got %d", len(failures))
		}
		if failures[0].ItemTitle != "Alpha" || failures[2].ItemTitle != "Gamma" {
			t.Errorf("unexpected order: %+v", failures)
		}
		if failures[0].Message != "HTTP 502" || failures[2].Source != "9" {
			t.Errorf("unexpected failure details: %+v", failures[0])
		}
	})

	t.Run("export writes grouped report", func(t *testing.T) {
		h := newCommandHarness(t, http.StatusInternalServerError)
		h.addItems(t)
		h.mustRun(t, "update", "run")

		path := filepath.Join(h.dir, "out", "report.txt")
		out := h.mustRun(t, "errors", "export", "--output", path, "--open")
		if !strings.Contains(out, path) {
			t.Errorf("expected path in output:\n%s", out)
		}

		preamble := formatter.Preamble(h.runner.config.Report.HelpTemplate, h.runner.config.Report.HelpURL)
		want := preamble + "\n\n" +
			"! HTTP 500\n" +
			"  # Local\n" +
			"    - Alpha\n" +
			"  # Feed (EN)\n" +
			"    - Beta\n" +
			"  # 9\n" +
			"    - Gamma\n"
		if got := tu.MustReadFile(t, path); got != want {
			t.Errorf("unexpected report:\n%q\nwant:\n%q", got, want)
		}
		if len(h.opener.Opened) != 1 || h.opener.Opened[0] != path {
			t.Errorf("expected report opened, got %v", h.opener.Opened)
		}
	})

	t.Run("export with no failures", func(t *testing.T) {
		h := newCommandHarness(t, http.StatusOK)
		path := filepath.Join(h.dir, "report.txt")

		err := h.run(t, "errors", "export", "--output", path)
		if !errors.Is(err, shared.ErrNoFailures) {
			t.Fatalf("expected ErrNoFailures, got %v", err)
		}
		tu.AssertFileNotExists(t, path)
	})

	t.Run("export open failure", func(t *testing.T) {
		h := newCommandHarness(t, http.StatusInternalServerError)
		h.addItems(t)
		h.mustRun(t, "update", "run")
		h.opener.Err = errors.New("no viewer")

		path := filepath.Join(h.dir, "report.txt")
		if err := h.run(t, "errors", "export", "--output", path, "--open"); err == nil {
			t.Fatal("expected open error")
		}
		tu.AssertFileExists(t, path)
	})

	t.Run("clear", func(t *testing.T) {
		h := newCommandHarness(t, http.StatusInternalServerError)
		h.addItems(t)
		h.mustRun(t, "update", "run")

		if out := h.mustRun(t, "errors", "clear"); !strings.Contains(out, "Cleared 3") {
			t.Errorf("unexpected output %q", out)
		}
		if out := h.mustRun(t, "errors", "list"); !strings.Contains(out, "No update errors") {
			t.Errorf("expected no errors after clear:\n%s", out)
		}
	})

	t.Run("migrate", func(t *testing.T) {
		h := newCommandHarness(t, http.StatusInternalServerError)
		h.addItems(t)
		h.mustRun(t, "update", "run")

		if out := h.mustRun(t, "errors", "migrate", "3", "1"); out != "Migrating 2 items: [3 1]\n" {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("migrate rejects items without failures", func(t *testing.T) {
		h := newCommandHarness(t, http.StatusOK)
		h.addItems(t)
		h.mustRun(t, "update", "run")

		if err := h.run(t, "errors", "migrate", "1"); !errors.Is(err, shared.ErrItemNotFound) {
			t.Fatalf("expected ErrItemNotFound, got %v", err)
		}
	})

	t.Run("migrate argument validation", func(t *testing.T) {
		h := newCommandHarness(t, http.StatusOK)

		if err := h.run(t, "errors", "migrate"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if err := h.run(t, "errors", "migrate", "x1"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("guide opens help url", func(t *testing.T) {
		h := newCommandHarness(t, http.StatusOK)

		h.mustRun(t, "errors", "guide")
		if len(h.browsed) != 1 || h.browsed[0] != h.runner.config.Report.HelpURL {
			t.Errorf("expected help url opened, got %v", h.browsed)
		}
	})

	t.Run("guide falls back to printing the url", func(t *testing.T) {
		h := newCommandHarness(t, http.StatusOK)
		browseErr := errors.New("no browser")
		h.runner.browse = func(string) error { return browseErr }

		err := h.run(t, "errors", "guide")
		if !errors.Is(err, browseErr) {
			t.Fatalf("expected browse error, got %v", err)
		}
		if !strings.Contains(h.output.String(), h.runner.config.Report.HelpURL) {
			t.Errorf("expected url printed, got %q", h.output.String())
		}
	})

	t.Run("guide reports output failure with browse failure", func(t *testing.T) {
		h := newCommandHarness(t, http.StatusOK)
		browseErr := errors.New("no browser")
		h.runner.browse = func(string) error { return browseErr }
		h.runner.output = &tu.FWriter{}

		err := h.run(t, "errors", "guide")
		if !errors.Is(err, browseErr) {
			t.Fatalf("expected browse error, got %v", err)
		}
		if err == nil || !strings.Contains(err.Error(), "failed to write output") {
			t.Errorf("expected write failure joined, got %v", err)
		}
	})

	t.Run("guide without url", func(t *testing.T) {
		h := newCommandHarness(t, http.StatusOK)
		h.runner.config.Report.HelpURL = ""

		if err := h.run(t, "errors", "guide"); !errors.Is(err, shared.ErrMissingConfig) {
			t.Fatalf("expected ErrMissingConfig, got %v", err)
		}
	})
}

func TestTUICommand(t *testing.T) {
	t.Run("requires a terminal", func(t *testing.T) {
		h := newCommandHarness(t, http.StatusOK)
		h.runner.isTerminal = func() bool { return false }

		if err := h.run(t, "tui"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestSetupDatabase(t *testing.T) {
	t.Run("loads existing config and migrates", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "config.toml")
		dbPath := filepath.Join(dir, "data", "updatelog.db")

		content := "[database]\npath = \"" + filepath.ToSlash(dbPath) + "\"\n\n" +
			"[[sources]]\nid = 7\nname = \"Archive\"\nlang = \"de\"\n"
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			t.Fatalf("failed to create data dir: %v", err)
		}

		h := newCommandHarness(t, http.StatusOK)
		h.runner.db = nil

		if err := h.run(t, "setup", "database", "--config", configPath); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		tu.AssertFileExists(t, dbPath)

		if h.runner.configPath != configPath {
			t.Errorf("expected config path %s, got %s", configPath, h.runner.configPath)
		}
		if got := h.runner.sources.Name(7); got != "Archive (DE)" {
			t.Errorf("expected sources from the loaded config, got %q", got)
		}
	})
}
