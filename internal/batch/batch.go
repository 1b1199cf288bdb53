// Package batch renders every theory file of a directory. Each job builds
// its own project, so parsers, rasterizers, sinks and speech engines are
// never shared between goroutines.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/chess2video/internal/config"
	"github.com/ivlev/chess2video/internal/engine"
	"github.com/ivlev/chess2video/internal/system"
)

// Job is one input file and the video it produces.
type Job struct {
	Input  string
	Output string
}

// Outcome is the result of a job. Err is set when the job failed.
type Outcome struct {
	Job
	Result *engine.Result
	Err    error
}

// OutputPath names the video for input inside dir, following
// "<name>_<timestamp>.mp4" with spaces replaced.
func OutputPath(input, dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.mp4", stem(input), now.Format("2006-01-02_15-04-05")))
}

// outputPathWithExt is OutputPath with the source extension kept in the
// name: "<name>_<ext>_<timestamp>.mp4".
func outputPathWithExt(input, dir string, now time.Time) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input), "."))
	return filepath.Join(dir, fmt.Sprintf("%s_%s_%s.mp4", stem(input), ext, now.Format("2006-01-02_15-04-05")))
}

func stem(input string) string {
	base := filepath.Base(input)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ReplaceAll(name, " ", "_")
}

// Jobs lists the supported theory files in dir, sorted by name. Files that
// differ only by extension keep it in their video name so no two jobs
// write the same output.
func Jobs(dir, outDir string) ([]Job, error) {
	files, err := system.ListFiles(dir, system.TheoryExtensions)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("в %s нет файлов теории (%s)", dir, strings.Join(system.TheoryExtensions, ", "))
	}
	stems := make(map[string]int, len(files))
	for _, f := range files {
		stems[stem(f)]++
	}

	now := time.Now()
	jobs := make([]Job, len(files))
	for i, f := range files {
		out := OutputPath(f, outDir, now)
		if stems[stem(f)] > 1 {
			out = outputPathWithExt(f, outDir, now)
		}
		jobs[i] = Job{Input: f, Output: out}
	}
	return jobs, nil
}

// Runner executes jobs with at most Workers running at once.
type Runner struct {
	Config  *config.Config
	Workers int
	// NewProject builds the project for one job; defaults to engine.NewVideoProject.
	NewProject func(cfg *config.Config) *engine.VideoProject
}

// Run processes all jobs. A failing job does not stop the others; the
// returned error joins every job failure, or reports cancellation.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Outcome, error) {
	newProject := r.NewProject
	if newProject == nil {
		newProject = engine.NewVideoProject
	}
	workers := r.Workers
	if workers <= 0 {
		workers = system.CollectHostStats(ctx).DefaultWorkers()
	}
	fmt.Printf("[*] Пакетный режим: %d файлов, потоков: %d\n", len(jobs), workers)

	outcomes := make([]Outcome, len(jobs))
	var g errgroup.Group
	g.SetLimit(workers)

	for i, job := range jobs {
		i, job := i, job
		outcomes[i].Job = job
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			cfg := *r.Config
			cfg.InputPath = job.Input
			cfg.OutputVideo = job.Output

			res, err := newProject(&cfg).Run(ctx)
			outcomes[i].Result = res
			outcomes[i].Err = err
			if err != nil {
				log.Printf("[!] %s: %v", filepath.Base(job.Input), err)
				return nil
			}
			fmt.Printf("[+++] %s -> %s\n", filepath.Base(job.Input), job.Output)
			return nil
		})
	}
	g.Wait()
	if err := ctx.Err(); err != nil {
		return outcomes, err
	}

	var errs []error
	for _, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(o.Input), o.Err))
		}
	}
	return outcomes, errors.Join(errs...)
}
