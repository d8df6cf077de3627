// Package recorder drives a generation run end to end: storyline
// build, asset resolution, music synthesis, the paced frame loop and
// the encoder handoff.
package recorder

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/ivlev/blog2video/internal/assets"
	"github.com/ivlev/blog2video/internal/content"
	"github.com/ivlev/blog2video/internal/music"
	"github.com/ivlev/blog2video/internal/render"
	"github.com/ivlev/blog2video/internal/storyline"
	"github.com/ivlev/blog2video/internal/system"
	"github.com/ivlev/blog2video/internal/theme"
	"github.com/ivlev/blog2video/internal/video"
)

// State tracks where a run is. Transitions are strictly forward;
// Reset returns a finished recorder to Idle.
type State int32

const (
	StateIdle State = iota
	StateBuilding
	StateLoadingAssets
	StateRecording
	StateFinalizing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBuilding:
		return "building"
	case StateLoadingAssets:
		return "loading_assets"
	case StateRecording:
		return "recording"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Progress is delivered to the progress callback every 15 frames.
type Progress struct {
	Percent    int
	SceneIndex int
	SceneCount int
	SceneLabel string
	ETA        time.Duration
}

// Options configures a Recorder for one or more runs.
type Options struct {
	Width      int
	Height     int
	FPS        int
	MinRuntime float64

	// Realtime paces the frame loop at 1/FPS wall clock, matching how
	// long a viewer would wait. Off, the loop runs as fast as the
	// encoder accepts frames.
	Realtime bool

	Music    bool
	MoodHint string

	// MusicPath points at a ready-made audio file to use instead of
	// the synthesized bed.
	MusicPath string

	Encoder    string
	Quality    int
	WorkDir    string
	OutputPath string

	// PlanPath loads a hand-tuned scene plan instead of building the
	// storyline from the content.
	PlanPath string

	OnProgress func(Progress)
}

// Artifact describes the produced video.
type Artifact struct {
	Path      string
	Duration  float64
	Frames    int
	Mood      string
	SizeBytes int64
}

// Recorder runs one generation at a time.
type Recorder struct {
	opts   Options
	fonts  *render.FontSet
	loader *assets.Loader
	sink   video.Sink
	state  atomic.Int32
}

func New(opts Options, fonts *render.FontSet, loader *assets.Loader, sink video.Sink) *Recorder {
	return &Recorder{opts: opts, fonts: fonts, loader: loader, sink: sink}
}

// State reports the current lifecycle state.
func (r *Recorder) State() State { return State(r.state.Load()) }

// Reset returns a finished recorder to Idle so it can run again.
// No-op while a run is in flight.
func (r *Recorder) Reset() {
	r.state.CompareAndSwap(int32(StateDone), int32(StateIdle))
	r.state.CompareAndSwap(int32(StateFailed), int32(StateIdle))
}

// SetOutput redirects the next run's output file. Only honored while
// idle, a running encode keeps its path.
func (r *Recorder) SetOutput(path string) {
	if r.State() == StateIdle {
		r.opts.OutputPath = path
	}
}

// Generate produces one video from the content payload. A second call
// while a run is active is rejected.
func (r *Recorder) Generate(ctx context.Context, in *content.Input) (*Artifact, error) {
	if !r.state.CompareAndSwap(int32(StateIdle), int32(StateBuilding)) {
		return nil, fmt.Errorf("generation already in progress (state %s)", r.State())
	}
	art, err := r.run(ctx, in)
	if err != nil {
		r.state.Store(int32(StateFailed))
		return nil, err
	}
	r.state.Store(int32(StateDone))
	return art, nil
}

func (r *Recorder) run(ctx context.Context, in *content.Input) (*Artifact, error) {
	in.Normalize()
	th := theme.Resolve(in.Style)

	var scenes []storyline.Scene
	if r.opts.PlanPath != "" {
		fmt.Printf("[*] Loading scene plan: %s\n", r.opts.PlanPath)
		plan, err := storyline.ReadPlan(r.opts.PlanPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read scene plan: %w", err)
		}
		scenes = plan.Timeline(in, &th)
	} else {
		fmt.Printf("[*] Building storyline...\n")
		scenes = storyline.Build(in, &th, r.opts.MinRuntime)
	}
	totDur := storyline.TotalDuration(scenes)
	fmt.Printf("[*] %d scenes, %.1fs total\n", len(scenes), totDur)

	r.state.Store(int32(StateLoadingAssets))
	fmt.Printf("[*] Loading media...\n")
	r.loader.Resolve(ctx, scenes)

	audioPath, mood := "", ""
	switch {
	case r.opts.Music && r.opts.MusicPath != "":
		if _, err := os.Stat(r.opts.MusicPath); err != nil {
			fmt.Printf("[!] Music file unavailable, continuing without audio: %v\n", err)
		} else {
			audioPath, mood = r.opts.MusicPath, "custom"
			fmt.Printf("[*] Using music track: %s\n", r.opts.MusicPath)
		}
	case r.opts.Music:
		moodText := in.Title + " " + in.Excerpt
		if r.opts.MoodHint != "" {
			moodText = r.opts.MoodHint
		}
		p := filepath.Join(r.opts.WorkDir, fmt.Sprintf("music-%d.wav", in.PostID))
		// the bed runs a touch past the picture so the mux never cuts
		// a note mid-decay
		m, err := music.Synthesize(p, totDur+2, moodText)
		if err != nil {
			fmt.Printf("[!] Music synthesis failed, continuing without audio: %v\n", err)
		} else {
			audioPath, mood = p, m
			fmt.Printf("[*] Mood: %s\n", m)
		}
	}

	r.state.Store(int32(StateRecording))
	if err := r.sink.Start(ctx, video.Params{
		Width:      r.opts.Width,
		Height:     r.opts.Height,
		FPS:        r.opts.FPS,
		AudioPath:  audioPath,
		Encoder:    r.opts.Encoder,
		Quality:    r.opts.Quality,
		OutputPath: r.opts.OutputPath,
	}); err != nil {
		return nil, fmt.Errorf("failed to start encoder: %w", err)
	}

	frames, err := r.record(ctx, scenes, &th)
	if err != nil {
		r.sink.Finalize()
		return nil, err
	}

	r.state.Store(int32(StateFinalizing))
	fmt.Printf("[*] Finalizing...\n")
	if err := r.sink.Finalize(); err != nil {
		return nil, err
	}

	art := &Artifact{
		Path:     r.opts.OutputPath,
		Duration: totDur,
		Frames:   frames,
		Mood:     mood,
	}
	if fi, err := os.Stat(r.opts.OutputPath); err == nil {
		art.SizeBytes = fi.Size()
	}
	fmt.Printf("[+++] Done! %.0fs video (%.1f MB)\n", totDur, float64(art.SizeBytes)/1024/1024)
	return art, nil
}

// record runs the frame loop: render, fade, encode, pace.
func (r *Recorder) record(ctx context.Context, scenes []storyline.Scene, th *theme.Theme) (int, error) {
	rend := render.NewRenderer(r.opts.Width, r.opts.Height, th, r.fonts)

	img := system.GetImage(image.Rect(0, 0, r.opts.Width, r.opts.Height))
	defer system.PutImage(img)
	c := render.NewCanvas(img)

	fade := int(float64(r.opts.FPS) * 0.5)
	totFrames := 0
	for i := range scenes {
		totFrames += int(scenes[i].Duration * float64(r.opts.FPS))
	}

	var ticker *time.Ticker
	if r.opts.Realtime {
		ticker = time.NewTicker(time.Second / time.Duration(r.opts.FPS))
		defer ticker.Stop()
	}

	t0 := time.Now()
	fi := 0
	for si := range scenes {
		s := &scenes[si]
		sf := int(s.Duration * float64(r.opts.FPS))
		fmt.Printf("[*] Scene %d/%d: %s\n", si+1, len(scenes), s.Label())

		for f := 0; f < sf; f++ {
			if err := ctx.Err(); err != nil {
				return fi, err
			}
			p := float64(f) / float64(sf)
			rend.DrawScene(c, s, p)
			if f < fade {
				rend.DrawFade(c, 1-float64(f)/float64(fade))
			}
			if f > sf-fade {
				rend.DrawFade(c, float64(f-(sf-fade))/float64(fade))
			}
			if err := r.sink.WriteFrame(img); err != nil {
				return fi, fmt.Errorf("frame %d: %w", fi, err)
			}
			fi++

			if fi%15 == 0 && r.opts.OnProgress != nil {
				elapsed := time.Since(t0).Seconds()
				rate := float64(fi) / elapsed
				r.opts.OnProgress(Progress{
					Percent:    fi * 100 / totFrames,
					SceneIndex: si + 1,
					SceneCount: len(scenes),
					SceneLabel: s.Label(),
					ETA:        time.Duration(float64(totFrames-fi)/rate) * time.Second,
				})
			}
			if ticker != nil {
				select {
				case <-ticker.C:
				case <-ctx.Done():
					return fi, ctx.Err()
				}
			}
		}
	}
	if r.opts.OnProgress != nil {
		r.opts.OnProgress(Progress{Percent: 100, SceneIndex: len(scenes), SceneCount: len(scenes)})
	}
	return fi, nil
}
