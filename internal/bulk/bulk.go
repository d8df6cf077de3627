// Package bulk runs a batch of posts through one shared recorder,
// strictly one at a time.
package bulk

import (
	"context"
	"fmt"
	"time"

	"github.com/ivlev/blog2video/internal/content"
	"github.com/ivlev/blog2video/internal/recorder"
)

// Bulk items get a longer floor than single runs.
const DefaultMinRuntime = 30.0

// Result records one item's outcome.
type Result struct {
	ID       string
	PostID   int
	Path     string
	Duration float64
	Err      error
	Elapsed  time.Duration
}

// Report is the running batch state handed to the progress callback
// after every item.
type Report struct {
	Done      int
	Succeeded int
	Failed    int
	Total     int
}

// Ratio is the batch completion fraction in [0,1].
func (r Report) Ratio() float64 {
	if r.Total == 0 {
		return 1
	}
	return float64(r.Done) / float64(r.Total)
}

// Queue drives the batch. The recorder is a singleton: the next item
// never starts before the previous run has fully finalized.
type Queue struct {
	Source   content.Source
	Recorder *recorder.Recorder
	Output   func(id string) string // per-item output path
	OnReport func(Report)
}

// Run processes every listed item sequentially. A failing item is
// recorded and the batch moves on; only a cancelled context stops it.
func (q *Queue) Run(ctx context.Context) ([]Result, error) {
	ids, err := q.Source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list content items: %w", err)
	}
	fmt.Printf("[*] Bulk run: %d item(s)\n", len(ids))

	results := make([]Result, 0, len(ids))
	rep := Report{Total: len(ids)}
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		fmt.Printf("[*] Item %d/%d: %s\n", i+1, len(ids), id)

		res := q.runOne(ctx, id)
		results = append(results, res)

		rep.Done++
		if res.Err != nil {
			rep.Failed++
			fmt.Printf("[!] Item %s failed: %v\n", id, res.Err)
		} else {
			rep.Succeeded++
			fmt.Printf("[+++] Item %s done in %s\n", id, res.Elapsed.Round(time.Second))
		}
		if q.OnReport != nil {
			q.OnReport(rep)
		}
	}
	fmt.Printf("[*] Bulk finished: %d ok, %d failed\n", rep.Succeeded, rep.Failed)
	return results, nil
}

func (q *Queue) runOne(ctx context.Context, id string) Result {
	start := time.Now()
	res := Result{ID: id}

	in, err := q.Source.Fetch(ctx, id)
	if err != nil {
		res.Err = fmt.Errorf("fetch: %w", err)
		res.Elapsed = time.Since(start)
		return res
	}
	res.PostID = in.PostID

	q.Recorder.Reset()
	if q.Output != nil {
		q.Recorder.SetOutput(q.Output(id))
	}
	art, err := q.Recorder.Generate(ctx, in)
	if err != nil {
		res.Err = err
		res.Elapsed = time.Since(start)
		return res
	}
	res.Path = art.Path
	res.Duration = art.Duration
	res.Elapsed = time.Since(start)
	return res
}
