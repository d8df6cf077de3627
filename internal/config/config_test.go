package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingPathIsZero(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Width != 0 || cfg.FPS != 0 {
		t.Errorf("zero config expected, got %+v", cfg)
	}
	if !cfg.Realtime || !cfg.Music {
		t.Errorf("realtime and music must default to on, got %+v", cfg)
	}
}

func TestLoadFileValuesSurviveDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	data := "realtime: false\nmusic: false\nquality: 30\noutput: clips/final.mp4\n"
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Realtime || cfg.Music {
		t.Errorf("file toggles lost: realtime=%v music=%v", cfg.Realtime, cfg.Music)
	}
	cfg.ApplyDefaults()
	if cfg.Quality != 30 {
		t.Errorf("file quality clobbered: %d", cfg.Quality)
	}
	if cfg.OutputVideo != "clips/final.mp4" {
		t.Errorf("file output clobbered: %q", cfg.OutputVideo)
	}
	if cfg.Realtime || cfg.Music {
		t.Errorf("defaults re-enabled file toggles: %+v", cfg)
	}
}

func TestLoadYAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	data := "width: 720\nheight: 1280\nfps: 25\nmin_duration: 35\nmood: tech\n"
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Width != 720 || cfg.Height != 1280 || cfg.FPS != 25 {
		t.Errorf("dims = %dx%d@%d", cfg.Width, cfg.Height, cfg.FPS)
	}
	if cfg.MinDuration != 35 || cfg.MoodHint != "tech" {
		t.Errorf("min=%f mood=%q", cfg.MinDuration, cfg.MoodHint)
	}
}

func TestLoadBadYAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	os.WriteFile(p, []byte(":\n  - ["), 0o644)
	if _, err := Load(p); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyPreset(t *testing.T) {
	var cfg Config
	if err := cfg.ApplyPreset("9:16"); err != nil {
		t.Fatalf("ApplyPreset: %v", err)
	}
	if cfg.Width != 720 || cfg.Height != 1280 {
		t.Errorf("9:16 = %dx%d", cfg.Width, cfg.Height)
	}
	if err := cfg.ApplyPreset("4:5"); err != nil {
		t.Fatalf("ApplyPreset: %v", err)
	}
	if cfg.Width != 1080 || cfg.Height != 1350 {
		t.Errorf("4:5 = %dx%d", cfg.Width, cfg.Height)
	}
	if err := cfg.ApplyPreset("21:9"); err == nil {
		t.Error("unknown preset accepted")
	}
	if err := cfg.ApplyPreset(""); err != nil {
		t.Errorf("empty preset must be a no-op: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Width != 1280 || cfg.Height != 720 || cfg.FPS != 30 {
		t.Errorf("defaults = %dx%d@%d", cfg.Width, cfg.Height, cfg.FPS)
	}
	if cfg.MinDuration != 20 || cfg.VideoEncoder != "libx264" || cfg.Quality != 23 {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.OutputVideo != "" {
		t.Errorf("output must stay empty for auto naming, got %q", cfg.OutputVideo)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestApplyDefaultsQualityFollowsEncoder(t *testing.T) {
	cases := []struct {
		encoder string
		want    int
	}{
		{"h264_videotoolbox", 75},
		{"h264_nvenc", 28},
		{"libx264", 23},
		{"", 23},
	}
	for _, tc := range cases {
		cfg := Config{VideoEncoder: tc.encoder}
		cfg.ApplyDefaults()
		if cfg.Quality != tc.want {
			t.Errorf("%q: quality = %d, want %d", tc.encoder, cfg.Quality, tc.want)
		}
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{Width: 1281, Height: 720, FPS: 30, Quality: 23}
	if err := cfg.Validate(); err == nil {
		t.Error("odd width accepted")
	}
	cfg = Config{Width: 1280, Height: 720, FPS: 500, Quality: 23}
	if err := cfg.Validate(); err == nil {
		t.Error("absurd fps accepted")
	}
	cfg = Config{Width: 1280, Height: 720, FPS: 30, Quality: 400}
	if err := cfg.Validate(); err == nil {
		t.Error("quality out of range accepted")
	}
}
