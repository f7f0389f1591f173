package format

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/pyorder/internal/discover"
	"github.com/phobologic/pyorder/internal/errors"
)

// Status is the outcome for one file.
type Status string

const (
	StatusUnchanged Status = "unchanged"
	StatusChanged   Status = "changed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Result is what happened to one file.
type Result struct {
	Path   string
	Status Status
	// Detail says why a file was skipped.
	Detail  string
	Err     error
	Elapsed time.Duration
}

// Summary collects the results of one run in input order.
type Summary struct {
	Results []Result
	Elapsed time.Duration
}

// Count returns the number of results with status s.
func (s Summary) Count(status Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// Changed returns the number of files that were (or, in check mode, would
// be) rewritten.
func (s Summary) Changed() int { return s.Count(StatusChanged) }

// Failed returns the number of files that could not be formatted.
func (s Summary) Failed() int { return s.Count(StatusFailed) }

// Runner formats batches of files.
type Runner struct {
	Formatters []Formatter
	// Filter selects the files to format; nil formats every Python file.
	Filter *discover.Filter
	// Jobs bounds concurrency; 0 means one per CPU.
	Jobs int
	// Check reports what would change without writing.
	Check bool
	// Logger defaults to the logger carried by the context.
	Logger *log.Logger
}

// Run formats paths and returns one result per distinct path. Failures are
// recorded per file and never stop the batch.
func (r *Runner) Run(ctx context.Context, paths []string) Summary {
	start := time.Now()
	logger := r.Logger
	if logger == nil {
		logger = log.FromContext(ctx)
	}
	ctx = log.WithContext(ctx, logger)

	paths = dedupe(paths)
	results := make([]Result, len(paths))

	jobs := r.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		g.Go(func() error {
			results[i] = r.file(gctx, logger, path)
			return nil
		})
	}
	_ = g.Wait()

	return Summary{Results: results, Elapsed: time.Since(start)}
}

func (r *Runner) file(ctx context.Context, logger *log.Logger, path string) Result {
	start := time.Now()
	res := Result{Path: path}

	if r.Filter != nil && !r.Filter.Match(path) {
		logger.Debug("skipped", "path", path, "reason", "filtered")
		return Result{Path: path, Status: StatusSkipped, Detail: "filtered"}
	}
	if err := ctx.Err(); err != nil {
		return r.fail(logger, path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return r.fail(logger, path, errors.Wrap(errors.IOFailure, err, "reading"))
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return r.fail(logger, path, errors.Wrap(errors.IOFailure, err, "reading"))
	}
	if len(bytes.TrimSpace(src)) == 0 {
		logger.Debug("skipped", "path", path, "reason", "empty")
		return Result{Path: path, Status: StatusSkipped, Detail: "empty"}
	}

	out := src
	for _, f := range r.Formatters {
		formatted, err := f.Format(ctx, path, out)
		if err != nil {
			return r.fail(logger, path, err)
		}
		out = formatted
	}

	res.Status = StatusUnchanged
	if !bytes.Equal(out, src) {
		res.Status = StatusChanged
		if r.Check {
			logger.Info("would reformat", "path", path)
		} else {
			if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
				return r.fail(logger, path, errors.Wrap(errors.IOFailure, err, "writing"))
			}
			logger.Info("reformatted", "path", path)
		}
	}
	res.Elapsed = time.Since(start)
	logger.Debug("done", "path", path, "status", res.Status, "elapsed", res.Elapsed.Round(time.Microsecond))
	return res
}

func (r *Runner) fail(logger *log.Logger, path string, err error) Result {
	logger.Errorf("%s: %v", path, err)
	return Result{Path: path, Status: StatusFailed, Err: err}
}

// dedupe drops repeated paths, keeping the first occurrence.
func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		key := filepath.Clean(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}
