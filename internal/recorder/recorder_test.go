package recorder

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivlev/blog2video/internal/assets"
	"github.com/ivlev/blog2video/internal/content"
	"github.com/ivlev/blog2video/internal/render"
	"github.com/ivlev/blog2video/internal/storyline"
	"github.com/ivlev/blog2video/internal/video"
)

type memSink struct {
	params  video.Params
	frames  int
	started bool
	done    bool
}

func (m *memSink) Start(ctx context.Context, p video.Params) error {
	m.params = p
	m.started = true
	return nil
}

func (m *memSink) WriteFrame(img *image.RGBA) error {
	m.frames++
	return nil
}

func (m *memSink) Finalize() error {
	m.done = true
	return nil
}

// short words keep the asset loader off the network
func testInput() *content.Input {
	return &content.Input{
		PostID:     7,
		Title:      "Hi",
		Paragraphs: []string{"a b c", "d e f"},
		SiteName:   "Site",
	}
}

func testRecorder(t *testing.T, sink video.Sink, opts Options) *Recorder {
	t.Helper()
	fonts, err := render.LoadFonts("", "")
	if err != nil {
		t.Fatalf("LoadFonts: %v", err)
	}
	if opts.Width == 0 {
		opts = Options{Width: 160, Height: 90, FPS: 10, MinRuntime: 20,
			WorkDir: t.TempDir(), OutputPath: filepath.Join(t.TempDir(), "out.mp4")}
	}
	return New(opts, fonts, assets.NewLoader("", "", 2), sink)
}

func TestGenerateFrameCount(t *testing.T) {
	sink := &memSink{}
	r := testRecorder(t, sink, Options{})

	art, err := r.Generate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if r.State() != StateDone {
		t.Errorf("state = %s, want done", r.State())
	}
	if !sink.started || !sink.done {
		t.Errorf("sink lifecycle incomplete: started=%v done=%v", sink.started, sink.done)
	}
	// the floor stretches the runtime to at least 20s
	if art.Duration < 20 {
		t.Errorf("duration = %f, want >= 20", art.Duration)
	}
	want := int(art.Duration * 10)
	if sink.frames != want {
		t.Errorf("frames = %d, want %d", sink.frames, want)
	}
	if art.Frames != sink.frames {
		t.Errorf("artifact frames %d != sink frames %d", art.Frames, sink.frames)
	}
	if sink.params.AudioPath != "" {
		t.Errorf("music disabled but audio path = %q", sink.params.AudioPath)
	}
}

func TestGenerateProgress(t *testing.T) {
	var reports []Progress
	fonts, err := render.LoadFonts("", "")
	if err != nil {
		t.Fatalf("LoadFonts: %v", err)
	}
	sink := &memSink{}
	r := New(Options{
		Width: 160, Height: 90, FPS: 10, MinRuntime: 20,
		WorkDir: t.TempDir(), OutputPath: filepath.Join(t.TempDir(), "out.mp4"),
		OnProgress: func(p Progress) { reports = append(reports, p) },
	}, fonts, assets.NewLoader("", "", 2), sink)

	if _, err := r.Generate(context.Background(), testInput()); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(reports) < 2 {
		t.Fatalf("expected several progress reports, got %d", len(reports))
	}
	last := reports[len(reports)-1]
	if last.Percent != 100 {
		t.Errorf("final percent = %d, want 100", last.Percent)
	}
	prev := -1
	for _, p := range reports {
		if p.Percent < prev {
			t.Errorf("progress went backwards: %d after %d", p.Percent, prev)
		}
		prev = p.Percent
	}
}

func TestGenerateBusyAndReset(t *testing.T) {
	sink := &memSink{}
	r := testRecorder(t, sink, Options{})

	if _, err := r.Generate(context.Background(), testInput()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	// finished but not reset: a new run must be rejected
	if _, err := r.Generate(context.Background(), testInput()); err == nil {
		t.Fatal("expected rejection while not idle")
	}
	r.Reset()
	if r.State() != StateIdle {
		t.Fatalf("state after reset = %s", r.State())
	}
	if _, err := r.Generate(context.Background(), testInput()); err != nil {
		t.Fatalf("run after reset: %v", err)
	}
}

func TestGenerateWithMusic(t *testing.T) {
	sink := &memSink{}
	fonts, err := render.LoadFonts("", "")
	if err != nil {
		t.Fatalf("LoadFonts: %v", err)
	}
	r := New(Options{
		Width: 160, Height: 90, FPS: 10, MinRuntime: 20,
		Music: true, MoodHint: "technology code ai",
		WorkDir: t.TempDir(), OutputPath: filepath.Join(t.TempDir(), "out.mp4"),
	}, fonts, assets.NewLoader("", "", 2), sink)

	art, err := r.Generate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if art.Mood != "tech" {
		t.Errorf("mood = %q, want tech", art.Mood)
	}
	if sink.params.AudioPath == "" {
		t.Error("expected an audio bed path")
	}
}

func TestGenerateFromPlan(t *testing.T) {
	sink := &memSink{}
	fonts, err := render.LoadFonts("", "")
	if err != nil {
		t.Fatalf("LoadFonts: %v", err)
	}
	plan := &storyline.Plan{Version: "1.0", Scenes: []storyline.PlanScene{
		{Type: storyline.SceneBrandIntro, Duration: 2},
		{Type: storyline.SceneContent, Duration: 3, Text: "a b c", SceneNumber: 1, TotalScenes: 1},
	}}
	planPath := filepath.Join(t.TempDir(), "plan.yaml")
	if err := storyline.WritePlan(plan, planPath); err != nil {
		t.Fatalf("WritePlan: %v", err)
	}
	r := New(Options{
		Width: 160, Height: 90, FPS: 10, MinRuntime: 20,
		PlanPath: planPath,
		WorkDir:  t.TempDir(), OutputPath: filepath.Join(t.TempDir(), "out.mp4"),
	}, fonts, assets.NewLoader("", "", 2), sink)

	art, err := r.Generate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	// hand-tuned plan durations are honored, the floor does not apply
	if art.Duration != 5 {
		t.Errorf("duration = %f, want the plan's 5s", art.Duration)
	}
	if sink.frames != 50 {
		t.Errorf("frames = %d, want 50", sink.frames)
	}
}

func TestGenerateFromPlanMissingFile(t *testing.T) {
	sink := &memSink{}
	fonts, err := render.LoadFonts("", "")
	if err != nil {
		t.Fatalf("LoadFonts: %v", err)
	}
	r := New(Options{
		Width: 160, Height: 90, FPS: 10, MinRuntime: 20,
		PlanPath: filepath.Join(t.TempDir(), "absent.yaml"),
		WorkDir:  t.TempDir(), OutputPath: filepath.Join(t.TempDir(), "out.mp4"),
	}, fonts, assets.NewLoader("", "", 2), sink)

	if _, err := r.Generate(context.Background(), testInput()); err == nil {
		t.Fatal("expected an error for a missing plan file")
	}
	if r.State() != StateFailed {
		t.Errorf("state = %s, want failed", r.State())
	}
}

func TestGenerateCustomMusicPath(t *testing.T) {
	sink := &memSink{}
	fonts, err := render.LoadFonts("", "")
	if err != nil {
		t.Fatalf("LoadFonts: %v", err)
	}
	track := filepath.Join(t.TempDir(), "bed.wav")
	if err := os.WriteFile(track, []byte("RIFF"), 0644); err != nil {
		t.Fatal(err)
	}
	r := New(Options{
		Width: 160, Height: 90, FPS: 10, MinRuntime: 20,
		Music: true, MusicPath: track,
		WorkDir: t.TempDir(), OutputPath: filepath.Join(t.TempDir(), "out.mp4"),
	}, fonts, assets.NewLoader("", "", 2), sink)

	art, err := r.Generate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if sink.params.AudioPath != track {
		t.Errorf("audio path = %q, want %q", sink.params.AudioPath, track)
	}
	if art.Mood != "custom" {
		t.Errorf("mood = %q, want custom", art.Mood)
	}
}

func TestGenerateMusicFailureDowngrades(t *testing.T) {
	sink := &memSink{}
	fonts, err := render.LoadFonts("", "")
	if err != nil {
		t.Fatalf("LoadFonts: %v", err)
	}
	r := New(Options{
		Width: 160, Height: 90, FPS: 10, MinRuntime: 20,
		Music:   true,
		WorkDir: filepath.Join(t.TempDir(), "missing", "deeper"),
		OutputPath: filepath.Join(t.TempDir(), "out.mp4"),
	}, fonts, assets.NewLoader("", "", 2), sink)

	art, err := r.Generate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("music failure must not fail the run: %v", err)
	}
	if art.Mood != "" || sink.params.AudioPath != "" {
		t.Errorf("expected video-only downgrade, got mood=%q audio=%q", art.Mood, sink.params.AudioPath)
	}
}

func TestGenerateCancel(t *testing.T) {
	sink := &memSink{}
	r := testRecorder(t, sink, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Generate(ctx, testInput()); err == nil {
		t.Fatal("expected cancellation error")
	}
	if r.State() != StateFailed {
		t.Errorf("state = %s, want failed", r.State())
	}
}
