package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/updatelog/internal/models"
	"github.com/desertthunder/updatelog/internal/shared"
)

// UnknownFailure is recorded when a check fails without a description.
const UnknownFailure = "Unknown error"

// UpdateResult summarizes one update pass.
type UpdateResult struct {
	RunID    string                 // Run id the errors were recorded under
	Checked  int                    // Number of items checked
	Failed   int                    // Number of items that failed
	Failures []models.FailureRecord // Failures in check order
}

// ItemLister supplies the library items to check.
type ItemLister interface {
	List() ([]*models.LibraryItem, error)
}

// MessageStore deduplicates failure descriptions.
type MessageStore interface {
	GetOrCreate(text string) (*models.FailureMessage, error)
	DeleteUnreferenced() (int64, error)
}

// ErrorStore persists the errors of a pass, superseding the previous one.
type ErrorStore interface {
	ReplaceRun(runID string, errs []*models.UpdateError) error
}

// Checker checks a single item against its source. A non-nil error is a failure.
type Checker interface {
	Check(ctx context.Context, item *models.LibraryItem) error
}

// UpdaterOpts configures an [Updater].
type UpdaterOpts struct {
	Items     ItemLister
	Messages  MessageStore
	Errors    ErrorStore
	Checker   Checker
	RateLimit float64       // Checks per second; zero disables pacing
	Timeout   time.Duration // Per-item timeout; zero disables it
	Logger    *log.Logger
}

// Updater runs library update passes.
type Updater struct {
	items    ItemLister
	messages MessageStore
	errors   ErrorStore
	checker  Checker
	limiter  *rate.Limiter
	timeout  time.Duration
	logger   *log.Logger
}

// NewUpdater creates an Updater from opts.
func NewUpdater(opts UpdaterOpts) *Updater {
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Updater{
		items:    opts.Items,
		messages: opts.Messages,
		errors:   opts.Errors,
		checker:  opts.Checker,
		limiter:  rate.NewLimiter(limit, 1),
		timeout:  opts.Timeout,
		logger:   shared.WithLogger(logger, "component", "updater"),
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (u *Updater) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run checks every library item and records the failures as a new run.
func (u *Updater) Run(ctx context.Context, progress chan<- ProgressUpdate) (*UpdateResult, error) {
	if u.items == nil || u.messages == nil || u.errors == nil || u.checker == nil {
		return nil, fmt.Errorf("%w: updater not fully configured", shared.ErrServiceUnavailable)
	}

	u.sendProgress(progress, fetchLibraryUpdate())

	items, err := u.items.List()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list library: %v", shared.ErrUpdateFailed, err)
	}

	result := &UpdateResult{RunID: shared.GenerateID()}
	logger := shared.WithLogger(u.logger, "run", result.RunID)
	logger.Debug("starting update", "items", len(items))

	var errs []*models.UpdateError
	total := len(items)

	for i, item := range items {
		if err := u.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrUpdateFailed, err)
		}

		u.sendProgress(progress, checkItemUpdate(i+1, total, item))
		result.Checked++

		checkErr := u.check(ctx, item)
		if checkErr == nil {
			continue
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrUpdateFailed, ctx.Err())
		}

		u.sendProgress(progress, itemFailedUpdate(i+1, total, item, checkErr))
		logger.Warn("item update failed", "item", item.ID(), "source", item.SourceID(), "error", checkErr)

		msg, err := u.messages.GetOrCreate(failureText(checkErr))
		if err != nil {
			return nil, fmt.Errorf("%w: failed to record message: %v", shared.ErrUpdateFailed, err)
		}

		record := item.Failure(msg.ID)
		errs = append(errs, models.NewUpdateError(result.RunID, record))
		result.Failures = append(result.Failures, record)
		result.Failed++
	}

	u.sendProgress(progress, recordErrorsUpdate(result.Failed))
	if err := u.errors.ReplaceRun(result.RunID, errs); err != nil {
		return nil, fmt.Errorf("%w: failed to record errors: %v", shared.ErrUpdateFailed, err)
	}

	removed, err := u.messages.DeleteUnreferenced()
	if err != nil {
		logger.Warn("failed to prune messages", "error", err)
	} else {
		u.sendProgress(progress, cleanupUpdate(removed))
	}

	logger.Info("update complete", "checked", result.Checked, "failed", result.Failed)
	return result, nil
}

func (u *Updater) check(ctx context.Context, item *models.LibraryItem) error {
	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}
	return u.checker.Check(ctx, item)
}

func failureText(err error) string {
	if text := strings.TrimSpace(err.Error()); text != "" {
		return text
	}
	return UnknownFailure
}
