// Package generate runs markgen jobs.
//
// A job is rendered by reading its source, inferring declarations with the
// codegen package, rendering them in the job's language and optionally
// piping the result through a formatter. The rendered bytes are then either
// written to the destination or compared with it.
package generate

import (
	"context"
	"path/filepath"
	"runtime"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/markgen/codegen"
	"github.com/teranos/markgen/codegen/golang"
	"github.com/teranos/markgen/codegen/rust"
	"github.com/teranos/markgen/config"
	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/files"
	"github.com/teranos/markgen/logger"
	"github.com/teranos/markgen/value"
)

// DefaultCacheSize is the number of parsed sources kept between runs.
const DefaultCacheSize = 256

// Result reports what happened to one job's destination.
type Result struct {
	Job  string
	Dest string
	// Written is false when the destination already held the output.
	Written bool
	// Status and Line are set by Check.
	Status   files.Status
	Line     int
	Duration time.Duration
}

// Runner executes jobs of one configuration. It is safe for concurrent use
// and keeps parsed sources cached across runs, so watch mode only re-parses
// files whose content changed.
type Runner struct {
	cfg         *config.Config
	cache       *lru.Cache[string, value.Value]
	logger      *zap.SugaredLogger
	parallelism int
}

// NewRunner creates a runner for cfg.
func NewRunner(cfg *config.Config) (*Runner, error) {
	cache, err := lru.New[string, value.Value](DefaultCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create source cache")
	}
	return &Runner{
		cfg:         cfg,
		cache:       cache,
		logger:      logger.ComponentLogger("generate"),
		parallelism: runtime.GOMAXPROCS(0),
	}, nil
}

// SetParallelism limits how many jobs run at once. Values below one mean
// one job at a time.
func (r *Runner) SetParallelism(n int) {
	if n < 1 {
		n = 1
	}
	r.parallelism = n
}

// Generate renders every job and writes its destination.
func (r *Runner) Generate(ctx context.Context, jobs []config.Job) ([]Result, error) {
	return r.each(ctx, jobs, func(ctx context.Context, res *config.Resolved, content []byte) (Result, error) {
		if err := files.EnsureDestination(res.Dest, res.CreateDirs); err != nil {
			return Result{}, err
		}
		written, err := files.Write(res.Dest, content, res.WriteOnlyIfChanged)
		if err != nil {
			return Result{}, err
		}
		return Result{Written: written}, nil
	})
}

// Check renders every job and compares it with the destination on disk
// without writing anything.
func (r *Runner) Check(ctx context.Context, jobs []config.Job) ([]Result, error) {
	return r.each(ctx, jobs, func(ctx context.Context, res *config.Resolved, content []byte) (Result, error) {
		cmp, err := files.Compare(res.Dest, content)
		if err != nil {
			return Result{}, err
		}
		return Result{Status: cmp.Status, Line: cmp.Line}, nil
	})
}

type finishFunc func(ctx context.Context, res *config.Resolved, content []byte) (Result, error)

// each renders jobs in parallel and hands each output to finish. The first
// failure cancels the remaining jobs. Results are in job order; jobs that
// did not complete are left out.
func (r *Runner) each(ctx context.Context, jobs []config.Job, finish finishFunc) ([]Result, error) {
	results := make([]Result, len(jobs))
	done := make([]bool, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(r.parallelism, len(jobs))))

	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			log := logger.ChildLogger(r.logger, logger.FieldJob, job.Name)

			res, content, err := r.Render(gctx, job)
			if err != nil {
				log.Debugw("Job failed", logger.FieldErrorKind, errors.Kind(err))
				return errors.Wrapf(err, "job %q", job.Name)
			}
			result, err := finish(gctx, res, content)
			if err != nil {
				return errors.Wrapf(err, "job %q", job.Name)
			}

			result.Job = job.Name
			result.Dest = res.Dest
			result.Duration = time.Since(start)
			results[i] = result
			done[i] = true

			log.Infow("Job finished",
				logger.FieldDest, res.Dest,
				logger.FieldBytes, len(content),
				logger.FieldDurationMS, result.Duration.Milliseconds())
			return nil
		})
	}

	err := g.Wait()

	completed := results[:0]
	for i, ok := range done {
		if ok {
			completed = append(completed, results[i])
		}
	}
	return completed, err
}

// Render produces the final content of one job's destination without
// touching it.
func (r *Runner) Render(ctx context.Context, job config.Job) (*config.Resolved, []byte, error) {
	res, err := r.cfg.Resolve(job)
	if err != nil {
		return nil, nil, err
	}
	g, err := NewGenerator(res)
	if err != nil {
		return nil, nil, err
	}
	if ext := filepath.Ext(res.Dest); ext != "."+g.FileExtension() {
		r.logger.Warnw("Destination extension does not match language",
			logger.FieldJob, job.Name,
			logger.FieldDest, res.Dest,
			logger.FieldLanguage, g.Language())
	}

	out, err := r.generate(g, res)
	if err != nil {
		return nil, nil, err
	}

	content := []byte(out)
	if res.FormatCommand != "" {
		content, err = runFormatter(ctx, res.FormatCommand, r.cfg.Dir(), content)
		if err != nil {
			return nil, nil, err
		}
	}
	return res, content, nil
}

func (r *Runner) generate(g codegen.Generator, res *config.Resolved) (string, error) {
	name, opts := res.TypeName, res.Options

	switch res.Kind {
	case config.KindEnumFromFilenames:
		return codegen.GenerateEnumFromFilenames(g, res.Source, name, opts)
	case config.KindStructsFromFiles:
		return codegen.GenerateStructsFromFiles(g, res.Source, name, opts)
	}

	v, err := r.load(res)
	if err != nil {
		return "", err
	}
	sourcePath := filepath.ToSlash(res.Job.Source)

	switch res.Kind {
	case config.KindStruct:
		return codegen.GenerateStruct(g, v, name, sourcePath, opts)
	case config.KindEnum:
		return codegen.GenerateEnumFromKeys(g, v, name, sourcePath, opts)
	case config.KindStructsFromValues:
		return codegen.GenerateStructsFromValues(g, v, name, sourcePath, opts)
	}
	return "", errors.NewUnsupportedError("unknown job kind %q", res.Kind)
}

// NewGenerator returns the backend for a resolved job's language.
func NewGenerator(res *config.Resolved) (codegen.Generator, error) {
	switch res.Language {
	case "rust":
		return rust.NewGenerator(), nil
	case "go":
		return golang.NewGenerator(res.Package), nil
	}
	err := errors.NewUnsupportedError("unknown language %q", res.Language)
	return nil, errors.WithHint(err, "language is rust or go")
}
