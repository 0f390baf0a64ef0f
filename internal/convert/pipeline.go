package convert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"tes3conv/internal/fileutil"
	"tes3conv/internal/logging"
	"tes3conv/internal/plugin"
	"tes3conv/internal/services"
)

// BackupSuffix is appended to an existing output copied aside before it is
// replaced.
const BackupSuffix = ".bak"

// PluginCodec reads and writes binary plugin files.
type PluginCodec interface {
	Load(path string) (plugin.ObjectSet, error)
	Save(path string, set plugin.ObjectSet) error
}

// TextCodec converts object sets to and from JSON text.
type TextCodec interface {
	Encode(set plugin.ObjectSet, compact bool) (string, error)
	Decode(text string) (plugin.ObjectSet, error)
}

// Recorder receives the outcome of every conversion the pipeline runs.
type Recorder interface {
	RecordConversion(ctx context.Context, req Request, res Result, convErr error) error
}

// Options configures a Pipeline.
type Options struct {
	Logger *slog.Logger
	// Plugins defaults to a windows-1251 plugin.Codec.
	Plugins PluginCodec
	// Text defaults to plugin.JSON.
	Text TextCodec
	// BackupExisting copies an output that is about to be overwritten to
	// <output>.bak first.
	BackupExisting bool
	Recorder       Recorder
}

// Pipeline runs conversions. It holds no per-conversion state and may be
// shared by concurrent callers.
type Pipeline struct {
	logger   *slog.Logger
	plugins  PluginCodec
	text     TextCodec
	backup   bool
	recorder Recorder
}

// NewPipeline builds a Pipeline, filling unset options with defaults.
func NewPipeline(opts Options) (*Pipeline, error) {
	plugins := opts.Plugins
	if plugins == nil {
		codec, err := plugin.NewCodec(plugin.DefaultEncoding)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "", "build plugin codec", "", err)
		}
		plugins = codec
	}
	text := opts.Text
	if text == nil {
		text = plugin.JSON{}
	}
	return &Pipeline{
		logger:   logging.NewComponentLogger(opts.Logger, "pipeline"),
		plugins:  plugins,
		text:     text,
		backup:   opts.BackupExisting,
		recorder: opts.Recorder,
	}, nil
}

// Convert runs req to completion, reporting progress to sink (which may be
// nil). The returned Result is populated on failure too.
func (p *Pipeline) Convert(ctx context.Context, req Request, sink ProgressSink) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	res := Result{
		RequestID:  uuid.NewString(),
		InputPath:  req.InputPath,
		OutputPath: OutputPath(req.InputPath, req.Direction),
		Direction:  req.Direction,
		Localized:  req.Localize,
		Compact:    req.Compact && req.Direction == ToText,
		StartedAt:  time.Now().UTC(),
	}
	ctx = services.WithRequestID(ctx, res.RequestID)
	ctx = services.WithDirection(ctx, req.Direction.String())
	ctx = services.WithInputPath(ctx, req.InputPath)
	logger := logging.WithContext(ctx, p.logger)

	rep := newReporter(sink)
	err := p.run(ctx, logger, req, &res, rep)
	if err != nil {
		rep.fail()
	}
	res.Progress = rep.values()
	res.FinishedAt = time.Now().UTC()

	if err != nil {
		logging.ErrorWithContext(logger, "File conversion error", "conversion_failed",
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.String("output", res.OutputPath),
			logging.String(logging.FieldErrorHint, Hint(err)),
			logging.Error(err),
		)
	} else {
		logger.Info("Conversion completed successfully",
			logging.String(logging.FieldEventType, "conversion_complete"),
			logging.String("output", res.OutputPath),
			logging.Duration("duration", res.Duration()),
		)
	}
	p.record(ctx, logger, req, res, err)
	return res, err
}

func (p *Pipeline) run(ctx context.Context, logger *slog.Logger, req Request, res *Result, rep *reporter) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("conversion not started: %w", err)
	}
	if err := req.validate(); err != nil {
		return err
	}
	if samePath(req.InputPath, res.OutputPath) {
		return services.Wrap(services.ErrValidation, "validate", "derive output", "output would replace the input file", nil)
	}
	exists, err := fileExists(res.OutputPath)
	if err != nil {
		return services.Wrap(services.ErrIO, "validate", "stat output", res.OutputPath, err)
	}
	if exists && !req.Overwrite {
		return services.Wrap(services.ErrFileExists, "validate", "check output", res.OutputPath+" already exists", nil)
	}
	if exists && p.backup {
		backup := res.OutputPath + BackupSuffix
		if err := fileutil.CopyFileVerified(res.OutputPath, backup); err != nil {
			return services.Wrap(services.ErrIO, "validate", "back up existing output", backup, err)
		}
		res.BackupPath = backup
		logger.Info("existing output backed up",
			logging.String(logging.FieldEventType, "output_backup"),
			logging.String("backup", backup),
		)
	}

	var stages []stage
	if req.Direction == ToText {
		stages = p.textStages(req, res.OutputPath)
	} else {
		stages = p.binaryStages(req, res.OutputPath)
	}

	for _, st := range stages {
		if err := runStage(ctx, logger, st); err != nil {
			return err
		}
		if st.progress == 0 {
			continue
		}
		if err := rep.advance(st.progress); err != nil {
			if st.progress < ProgressDone {
				return err
			}
			res.SinkDetached = true
			logging.WarnWithContext(logger, "progress sink rejected completion", "sink_detached",
				logging.Error(err),
				logging.String(logging.FieldImpact, "output was written; the caller was not notified"),
				logging.String(logging.FieldErrorHint, "keep the progress consumer attached until the job finishes"),
			)
		}
	}
	return nil
}

func (p *Pipeline) record(ctx context.Context, logger *slog.Logger, req Request, res Result, convErr error) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.RecordConversion(context.WithoutCancel(ctx), req, res, convErr); err != nil {
		logging.WarnWithContext(logger, "conversion history write failed", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "conversion is missing from the history journal"),
			logging.String(logging.FieldErrorHint, "check paths.history_db permissions"),
		)
	}
}

// Hint suggests a next step for a conversion error.
func Hint(err error) string {
	switch {
	case errors.Is(err, services.ErrFileExists):
		return "pass --overwrite to replace the existing file"
	case errors.Is(err, services.ErrDecode):
		return "input is not a valid plugin or JSON document"
	case errors.Is(err, services.ErrEncode):
		return "object set cannot be written in the configured plugin encoding"
	case errors.Is(err, services.ErrSink):
		return "progress consumer went away before the conversion finished"
	case errors.Is(err, services.ErrValidation):
		return "check the input path"
	default:
		return "check file permissions and free disk space"
	}
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
