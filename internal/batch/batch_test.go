package batch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"tes3conv/internal/batch"
	"tes3conv/internal/convert"
	"tes3conv/internal/services"
	"tes3conv/internal/testsupport"
)

func newRunner(t *testing.T, mutate func(*batch.Options)) *batch.Runner {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	pipeline, err := convert.NewPipeline(convert.Options{Plugins: testsupport.MustCodec(t)})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	opts := batch.Options{
		Pipeline:     pipeline,
		Workers:      2,
		LockDir:      filepath.Join(cfg.Paths.LogDir, "locks"),
		MinFreeBytes: 1,
	}
	if mutate != nil {
		mutate(&opts)
	}
	runner, err := batch.NewRunner(opts)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return runner
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	set := testsupport.SamplePlugin(t)
	testsupport.WritePlugin(t, filepath.Join(dir, "a.esp"), set)
	testsupport.WritePlugin(t, filepath.Join(dir, "b.ESM"), set)
	testsupport.WriteText(t, filepath.Join(dir, "c.json"), "[]")
	testsupport.WriteText(t, filepath.Join(dir, "notes.txt"), "skip me")
	testsupport.WriteText(t, filepath.Join(dir, ".hidden.esp"), "skip me")
	testsupport.WritePlugin(t, filepath.Join(dir, "sub", "d.esp"), set)

	items, err := batch.Expand([]string{dir}, batch.ExpandOptions{})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := map[string]convert.Direction{
		filepath.Join(dir, "a.esp"):  convert.ToText,
		filepath.Join(dir, "b.ESM"):  convert.ToText,
		filepath.Join(dir, "c.json"): convert.ToBinary,
	}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %+v", len(want), items)
	}
	for _, item := range items {
		dir, ok := want[item.InputPath]
		if !ok {
			t.Fatalf("unexpected item %s", item.InputPath)
		}
		if item.Direction != dir {
			t.Fatalf("%s: direction = %v, want %v", item.InputPath, item.Direction, dir)
		}
	}

	items, err = batch.Expand([]string{dir}, batch.ExpandOptions{Recursive: true})
	if err != nil {
		t.Fatalf("Expand recursive: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("expected 4 items with recursion, got %d", len(items))
	}

	toText := convert.ToText
	items, err = batch.Expand([]string{dir, filepath.Join(dir, "a.esp")}, batch.ExpandOptions{Direction: &toText})
	if err != nil {
		t.Fatalf("Expand forced: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("forced direction should keep only plugins once each, got %+v", items)
	}

	items, err = batch.Expand([]string{filepath.Join(dir, "notes.txt")}, batch.ExpandOptions{})
	if err != nil {
		t.Fatalf("Expand explicit file: %v", err)
	}
	if len(items) != 1 || items[0].Direction != convert.ToText {
		t.Fatalf("explicit files are always included, got %+v", items)
	}

	if _, err := batch.Expand([]string{filepath.Join(dir, "missing")}, batch.ExpandOptions{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for missing input, got %v", err)
	}
}

func TestRunConvertsAll(t *testing.T) {
	dir := t.TempDir()
	var items []batch.Item
	for _, name := range []string{"one.esp", "two.esp", "three.esp"} {
		path := filepath.Join(dir, name)
		testsupport.WritePlugin(t, path, testsupport.SamplePlugin(t))
		items = append(items, batch.Item{InputPath: path, Direction: convert.ToText})
	}

	var (
		mu      sync.Mutex
		updates []batch.Update
	)
	runner := newRunner(t, func(o *batch.Options) {
		o.OnProgress = func(u batch.Update) {
			mu.Lock()
			updates = append(updates, u)
			mu.Unlock()
		}
	})
	summary, err := runner.Run(context.Background(), items)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Succeeded != 3 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if err := summary.Errors(); err != nil {
		t.Fatalf("expected no errors, got %v", err)
	}
	for i, o := range summary.Outcomes {
		if o.Item != items[i] {
			t.Fatalf("outcome %d out of order: %+v", i, o.Item)
		}
		if _, err := os.Stat(o.Result.OutputPath); err != nil {
			t.Fatalf("missing output %s: %v", o.Result.OutputPath, err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(updates) == 0 {
		t.Fatal("expected progress updates")
	}
	last := updates[len(updates)-1]
	if last.Completed != 3 || last.Total != 3 || last.Percent != 100 {
		t.Fatalf("unexpected final update: %+v", last)
	}
}

func TestRunCollectsFailures(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.esp")
	bad := filepath.Join(dir, "bad.esp")
	testsupport.WritePlugin(t, good, testsupport.SamplePlugin(t))
	testsupport.WriteText(t, bad, "not a plugin")

	runner := newRunner(t, nil)
	summary, err := runner.Run(context.Background(), []batch.Item{
		{InputPath: bad, Direction: convert.ToText},
		{InputPath: good, Direction: convert.ToText},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Succeeded != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if got := services.Kind(summary.Outcomes[0].Err); got != "decode" {
		t.Fatalf("bad plugin kind = %q, want decode", got)
	}
	if !summary.Outcomes[1].Succeeded() {
		t.Fatalf("good plugin failed: %v", summary.Outcomes[1].Err)
	}
	if !errors.Is(summary.Errors(), services.ErrDecode) {
		t.Fatalf("joined errors should carry the decode marker, got %v", summary.Errors())
	}
	if msg := summary.Errors().Error(); !strings.Contains(msg, batch.Item{InputPath: bad, Direction: convert.ToText}.Describe()) {
		t.Fatalf("joined errors should name the failed item, got %q", msg)
	}
}

func TestRunReportsTerminalValueOnce(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.esp")
	bad := filepath.Join(dir, "bad.esp")
	testsupport.WritePlugin(t, good, testsupport.SamplePlugin(t))
	testsupport.WriteText(t, bad, "not a plugin")

	var (
		mu     sync.Mutex
		values = map[string][]float64{}
	)
	runner := newRunner(t, func(o *batch.Options) {
		o.OnProgress = func(u batch.Update) {
			mu.Lock()
			values[u.Item.InputPath] = append(values[u.Item.InputPath], u.Value)
			mu.Unlock()
		}
	})
	if _, err := runner.Run(context.Background(), []batch.Item{
		{InputPath: bad, Direction: convert.ToText},
		{InputPath: good, Direction: convert.ToText},
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if got := values[bad]; !reflect.DeepEqual(got, []float64{-1}) {
		t.Fatalf("bad plugin updates = %v, want [-1]", got)
	}
	if got := values[good]; !reflect.DeepEqual(got, []float64{33, 100}) {
		t.Fatalf("good plugin updates = %v, want [33 100]", got)
	}
}

func TestRunSharedOutputIsSerialized(t *testing.T) {
	dir := t.TempDir()
	esp := filepath.Join(dir, "shared.esp")
	esm := filepath.Join(dir, "shared.esm")
	testsupport.WritePlugin(t, esp, testsupport.SamplePlugin(t))
	testsupport.WritePlugin(t, esm, testsupport.SamplePlugin(t))

	runner := newRunner(t, nil)
	summary, err := runner.Run(context.Background(), []batch.Item{
		{InputPath: esp, Direction: convert.ToText},
		{InputPath: esm, Direction: convert.ToText},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Succeeded != 1 || summary.Failed != 1 {
		t.Fatalf("expected exactly one winner for a shared output, got %+v", summary)
	}
	for _, o := range summary.Outcomes {
		if o.Err != nil && !errors.Is(o.Err, services.ErrFileExists) {
			t.Fatalf("loser should hit the overwrite guard, got %v", o.Err)
		}
	}
}

func TestRunBlockedOutputDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plugin.esp")
	testsupport.WritePlugin(t, path, testsupport.SamplePlugin(t))

	runner := newRunner(t, func(o *batch.Options) { o.MinFreeBytes = ^uint64(0) })
	summary, err := runner.Run(context.Background(), []batch.Item{{InputPath: path, Direction: convert.ToText}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Failed != 1 || !errors.Is(summary.Outcomes[0].Err, services.ErrValidation) {
		t.Fatalf("expected preflight failure, got %+v", summary.Outcomes[0])
	}
	if _, err := os.Stat(convert.OutputPath(path, convert.ToText)); !os.IsNotExist(err) {
		t.Fatalf("no output should be written, stat err=%v", err)
	}
}

func TestRunCanceled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plugin.esp")
	testsupport.WritePlugin(t, path, testsupport.SamplePlugin(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, err := newRunner(t, nil).Run(ctx, []batch.Item{{InputPath: path, Direction: convert.ToText}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := services.Kind(summary.Outcomes[0].Err); got != "canceled" {
		t.Fatalf("kind = %q, want canceled", got)
	}
}

func TestRunRejectsEmptyBatch(t *testing.T) {
	_, err := newRunner(t, nil).Run(context.Background(), nil)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewRunnerRequiresPipelineAndLockDir(t *testing.T) {
	if _, err := batch.NewRunner(batch.Options{LockDir: t.TempDir()}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error without pipeline, got %v", err)
	}
	pipeline, err := convert.NewPipeline(convert.Options{})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	if _, err := batch.NewRunner(batch.Options{Pipeline: pipeline}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error without lock dir, got %v", err)
	}
}
