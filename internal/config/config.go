package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries every knob of a generation run. Zero values are
// filled by ApplyDefaults, so a partial YAML file is fine.
type Config struct {
	InputPath   string `yaml:"input"`
	InputDir    string `yaml:"input_dir"`
	OutputVideo string `yaml:"output"`
	WorkDir     string `yaml:"work_dir"`

	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	FPS    int    `yaml:"fps"`
	Preset string `yaml:"preset"`

	MinDuration float64 `yaml:"min_duration"`
	Realtime    bool    `yaml:"realtime"`

	VideoEncoder string `yaml:"encoder"`
	Quality      int    `yaml:"quality"`

	Music     bool   `yaml:"music"`
	MoodHint  string `yaml:"mood"`
	MusicPath string `yaml:"music_path"`

	HeadingFont string `yaml:"heading_font"`
	BodyFont    string `yaml:"body_font"`

	UploadURL   string `yaml:"upload_url"`
	UploadToken string `yaml:"upload_token"`

	PexelsKey  string `yaml:"pexels_key"`
	PixabayKey string `yaml:"pixabay_key"`

	Workers int `yaml:"workers"`
}

// Presets map the supported aspect ratios to canvas sizes.
var presets = map[string][2]int{
	"16:9": {1280, 720},
	"9:16": {720, 1280},
	"4:5":  {1080, 1350},
}

// Load reads a YAML config file. Realtime and Music start on so the
// file only has to mention them to switch them off. A missing path
// yields the seeded Config without error, flags and defaults take over.
func Load(path string) (Config, error) {
	cfg := Config{Realtime: true, Music: true}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyPreset overrides Width and Height from a named aspect preset.
func (c *Config) ApplyPreset(name string) error {
	if name == "" {
		return nil
	}
	wh, ok := presets[name]
	if !ok {
		return fmt.Errorf("unknown preset %q, supported: 16:9, 9:16, 4:5", name)
	}
	c.Preset = name
	c.Width, c.Height = wh[0], wh[1]
	return nil
}

// ApplyDefaults fills unset fields. The quality default follows the
// encoder's scale: CRF for x264, CQ for nvenc, bitrate basis for
// VideoToolbox. OutputVideo is left empty so the caller can tell
// "not configured" apart from an explicit path and auto-name the file.
func (c *Config) ApplyDefaults() {
	if c.Width <= 0 {
		c.Width = 1280
	}
	if c.Height <= 0 {
		c.Height = 720
	}
	if c.FPS <= 0 {
		c.FPS = 30
	}
	if c.MinDuration <= 0 {
		c.MinDuration = 20
	}
	if c.VideoEncoder == "" {
		c.VideoEncoder = "libx264"
	}
	if c.Quality <= 0 {
		switch c.VideoEncoder {
		case "h264_videotoolbox":
			c.Quality = 75
		case "h264_nvenc":
			c.Quality = 28
		default:
			c.Quality = 23
		}
	}
	if c.WorkDir == "" {
		c.WorkDir = "work"
	}
}

// Validate rejects combinations the encoder cannot handle.
func (c *Config) Validate() error {
	if c.Width%2 != 0 || c.Height%2 != 0 {
		return fmt.Errorf("dimensions must be even for yuv420p, got %dx%d", c.Width, c.Height)
	}
	if c.FPS < 1 || c.FPS > 120 {
		return fmt.Errorf("fps out of range: %d", c.FPS)
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("quality out of range: %d", c.Quality)
	}
	return nil
}
