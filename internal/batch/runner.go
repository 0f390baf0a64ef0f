package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"tes3conv/internal/convert"
	"tes3conv/internal/fileutil"
	"tes3conv/internal/logging"
	"tes3conv/internal/preflight"
	"tes3conv/internal/services"
)

const (
	defaultWorkers = 4
	// progressBucket is the aggregate percent step between progress logs.
	progressBucket = 10
)

// Options configures a Runner.
type Options struct {
	Pipeline *convert.Pipeline
	Logger   *slog.Logger
	Workers  int
	// LockDir holds the per-output lock files.
	LockDir   string
	Localize  bool
	Compact   bool
	Overwrite bool
	// MinFreeBytes is required in every output directory before the batch
	// starts. Zero selects preflight.MinFreeBytes.
	MinFreeBytes uint64
	// OnProgress, when set, receives aggregate progress after every value an
	// item reports. Calls are serialized.
	OnProgress func(Update)
}

// Update is a snapshot of batch progress.
type Update struct {
	Item      Item
	Value     float64
	Completed int
	Failed    int
	Total     int
	// Percent is the mean progress over all items, counting finished items
	// (successful or not) as 100.
	Percent float64
}

// Outcome is the result of one item.
type Outcome struct {
	Item   Item
	Result convert.Result
	Err    error
}

// Succeeded reports whether the item converted.
func (o Outcome) Succeeded() bool { return o.Err == nil }

// Summary aggregates a finished batch. Outcomes follow item order.
type Summary struct {
	Outcomes  []Outcome
	Succeeded int
	Failed    int
	StartedAt time.Time
	Duration  time.Duration
}

// Errors joins every item failure, or returns nil when all items converted.
func (s Summary) Errors() error {
	var errs []error
	for _, o := range s.Outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.Item.Describe(), o.Err))
		}
	}
	return errors.Join(errs...)
}

// Runner converts items concurrently.
type Runner struct {
	opts   Options
	logger *slog.Logger
}

// NewRunner validates opts and builds a Runner.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Pipeline == nil {
		return nil, services.Wrap(services.ErrConfiguration, "batch", "build runner", "pipeline is required", nil)
	}
	if opts.LockDir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "batch", "build runner", "lock directory is required", nil)
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.MinFreeBytes == 0 {
		opts.MinFreeBytes = preflight.MinFreeBytes
	}
	return &Runner{opts: opts, logger: logging.NewComponentLogger(opts.Logger, "batch")}, nil
}

// Run converts every item and returns once all have finished. Per-item
// failures are reported in the Summary; the error return is reserved for a
// batch that could not start.
func (r *Runner) Run(ctx context.Context, items []Item) (Summary, error) {
	summary := Summary{StartedAt: time.Now().UTC(), Outcomes: make([]Outcome, len(items))}
	if len(items) == 0 {
		return summary, services.Wrap(services.ErrValidation, "batch", "run", "no inputs to convert", nil)
	}

	blocked := r.checkOutputDirs(items)
	tracker := newTracker(items, r.opts.OnProgress, r.logger)

	r.logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.Int("items", len(items)),
		logging.Int("workers", r.opts.Workers),
	)

	var g errgroup.Group
	g.SetLimit(r.opts.Workers)
	for idx, item := range items {
		summary.Outcomes[idx].Item = item
		if err, ok := blocked[outputDir(item)]; ok {
			summary.Outcomes[idx].Err = err
			tracker.finish(idx, err)
			continue
		}
		g.Go(func() error {
			res, err := r.convertItem(ctx, idx, item, tracker)
			summary.Outcomes[idx].Result = res
			summary.Outcomes[idx].Err = err
			tracker.finish(idx, err)
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range summary.Outcomes {
		if o.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	summary.Duration = time.Since(summary.StartedAt)

	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.Duration("duration", summary.Duration),
	}
	if summary.Failed > 0 {
		r.logger.Warn("batch finished with failures", logging.Args(attrs...)...)
	} else {
		r.logger.Info("batch finished", logging.Args(attrs...)...)
	}
	return summary, nil
}

func (r *Runner) convertItem(ctx context.Context, idx int, item Item, tracker *tracker) (convert.Result, error) {
	req := convert.Request{
		InputPath: item.InputPath,
		Direction: item.Direction,
		Localize:  r.opts.Localize,
		Compact:   r.opts.Compact,
		Overwrite: r.opts.Overwrite,
	}
	if err := ctx.Err(); err != nil {
		return convert.Result{InputPath: item.InputPath, Direction: item.Direction},
			fmt.Errorf("batch canceled before %s: %w", item.Describe(), err)
	}

	output := convert.OutputPath(item.InputPath, item.Direction)
	lock, err := fileutil.LockOutput(ctx, r.opts.LockDir, output)
	if err != nil {
		return convert.Result{InputPath: item.InputPath, OutputPath: output, Direction: item.Direction},
			services.Wrap(services.ErrIO, "batch", "lock output", output, err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logging.WarnWithContext(r.logger, "output lock release failed", "lock_release_failed",
				logging.String("lock", lock.Path()),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the stale lock file if conversions hang"),
				logging.String(logging.FieldImpact, "later conversions of this output may wait"),
			)
		}
	}()

	sink := convert.FuncSink(func(v float64) error {
		tracker.report(idx, v)
		return nil
	})
	return r.opts.Pipeline.Convert(ctx, req, sink)
}

// checkOutputDirs runs preflight once per distinct output directory and
// returns the failures keyed by directory.
func (r *Runner) checkOutputDirs(items []Item) map[string]error {
	blocked := make(map[string]error)
	checked := make(map[string]bool)
	for _, item := range items {
		dir := outputDir(item)
		if checked[dir] {
			continue
		}
		checked[dir] = true
		result := preflight.CheckOutputDir(dir, r.opts.MinFreeBytes)
		if result.Passed {
			continue
		}
		logging.WarnWithContext(r.logger, "output directory not usable", "preflight_failed",
			logging.String("dir", dir),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldErrorHint, "check permissions and free space"),
			logging.String(logging.FieldImpact, "files in this directory are skipped"),
		)
		blocked[dir] = services.Wrap(services.ErrValidation, "batch", "preflight", result.Detail, nil)
	}
	return blocked
}

func outputDir(item Item) string {
	return filepath.Dir(convert.OutputPath(item.InputPath, item.Direction))
}

// tracker folds per-item progress into batch progress.
type tracker struct {
	mu        sync.Mutex
	items     []Item
	values    []float64
	done      []bool
	completed int
	failed    int
	notify    func(Update)
	sampler   *logging.ProgressSampler
	logger    *slog.Logger
}

func newTracker(items []Item, notify func(Update), logger *slog.Logger) *tracker {
	return &tracker{
		items:   items,
		values:  make([]float64, len(items)),
		done:    make([]bool, len(items)),
		notify:  notify,
		sampler: logging.NewProgressSampler(progressBucket),
		logger:  logger,
	}
}

// report records an intermediate value. Terminal values are left to finish
// so each item ends with exactly one update.
func (t *tracker) report(idx int, value float64) {
	if value < 0 || value >= convert.ProgressDone {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values[idx] = value
	t.emit(idx, value)
}

func (t *tracker) finish(idx int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done[idx] {
		return
	}
	t.done[idx] = true
	t.values[idx] = convert.ProgressDone
	t.completed++
	if err != nil {
		t.failed++
	}
	value := convert.ProgressDone
	if err != nil {
		value = convert.ProgressFailed
	}
	t.emit(idx, value)
}

// emit must be called with mu held.
func (t *tracker) emit(idx int, value float64) {
	var sum float64
	for _, v := range t.values {
		sum += v
	}
	update := Update{
		Item:      t.items[idx],
		Value:     value,
		Completed: t.completed,
		Failed:    t.failed,
		Total:     len(t.items),
		Percent:   sum / float64(len(t.items)),
	}
	if t.sampler.ShouldLog(update.Percent, "") {
		t.logger.Info("batch progress",
			logging.Float64("progress_percent", update.Percent),
			logging.Int("completed", update.Completed),
			logging.Int("failed", update.Failed),
			logging.Int("total", update.Total),
		)
	}
	if t.notify != nil {
		t.notify(update)
	}
}
