package convert

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"tes3conv/internal/fileutil"
	"tes3conv/internal/localize"
	"tes3conv/internal/logging"
	"tes3conv/internal/plugin"
	"tes3conv/internal/services"
)

// stage is one step of a conversion. A non-zero progress value is reported
// once run succeeds.
type stage struct {
	name     string
	progress float64
	run      func(ctx context.Context) error
}

func runStage(ctx context.Context, logger *slog.Logger, st stage) error {
	stageCtx := services.WithStage(ctx, st.name)
	stageLogger := logging.WithContext(stageCtx, logger)
	started := time.Now()
	stageLogger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))

	if err := st.run(stageCtx); err != nil {
		stageLogger.Debug("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.Error(err),
		)
		return err
	}

	stageLogger.Debug("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// textStages dumps a plugin to JSON.
func (p *Pipeline) textStages(req Request, output string) []stage {
	var (
		set  plugin.ObjectSet
		text string
	)
	stages := []stage{
		{name: "load", progress: ProgressLoaded, run: func(context.Context) error {
			loaded, err := p.plugins.Load(req.InputPath)
			if err != nil {
				return classifyLoadError(err, req.InputPath)
			}
			set = loaded
			return nil
		}},
		{name: "serialize", run: func(context.Context) error {
			encoded, err := p.text.Encode(set, req.Compact)
			if err != nil {
				return services.Wrap(services.ErrEncode, "serialize", "encode json", "", err)
			}
			text = encoded
			return nil
		}},
	}
	if req.Localize {
		stages = append(stages, stage{name: "localize", run: func(context.Context) error {
			text = localize.ToLegacy(text)
			return nil
		}})
	}
	return append(stages, stage{name: "write", progress: ProgressDone, run: func(context.Context) error {
		if err := writeText(output, text); err != nil {
			return services.Wrap(services.ErrIO, "write", "write json", output, err)
		}
		return nil
	}})
}

// binaryStages builds a plugin from JSON.
func (p *Pipeline) binaryStages(req Request, output string) []stage {
	var (
		text string
		set  plugin.ObjectSet
	)
	stages := []stage{
		{name: "read", progress: ProgressLoaded, run: func(context.Context) error {
			content, err := readText(req.InputPath)
			if err != nil {
				return services.Wrap(services.ErrIO, "read", "read json", req.InputPath, err)
			}
			text = content
			return nil
		}},
	}
	if req.Localize {
		stages = append(stages, stage{name: "localize", run: func(context.Context) error {
			text = localize.ToNative(text)
			return nil
		}})
	}
	return append(stages,
		stage{name: "decode", progress: ProgressDecoded, run: func(context.Context) error {
			decoded, err := p.text.Decode(text)
			if err != nil {
				return services.Wrap(services.ErrDecode, "decode", "parse json", req.InputPath, err)
			}
			set = decoded
			return nil
		}},
		stage{name: "save", progress: ProgressDone, run: func(context.Context) error {
			if err := p.plugins.Save(output, set); err != nil {
				if errors.Is(err, plugin.ErrInvalidObjectSet) {
					return services.Wrap(services.ErrEncode, "save", "encode plugin", output, err)
				}
				return services.Wrap(services.ErrIO, "save", "write plugin", output, err)
			}
			return nil
		}},
	)
}

func classifyLoadError(err error, path string) error {
	if errors.Is(err, plugin.ErrMalformed) {
		return services.Wrap(services.ErrDecode, "load", "parse plugin", path, err)
	}
	return services.Wrap(services.ErrIO, "load", "read plugin", path, err)
}

// readText reads a UTF-8 document, dropping a byte order mark. UTF-16 files
// with a BOM are decoded as well.
func readText(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(file, decoder))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func writeText(path, text string) error {
	return fileutil.WriteFileAtomic(path, []byte(text), 0o644)
}
