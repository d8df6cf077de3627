package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
)

// Params describes one encoding session.
type Params struct {
	Width      int
	Height     int
	FPS        int
	AudioPath  string // optional WAV bed muxed alongside the frames
	Encoder    string // ffmpeg video encoder name
	Quality    int    // CRF for libx264, CQ for nvenc, bitrate basis for videotoolbox
	OutputPath string
}

// Sink consumes rendered frames and produces the final container.
type Sink interface {
	Start(ctx context.Context, p Params) error
	WriteFrame(img *image.RGBA) error
	Finalize() error
}

// FFmpegSink streams raw RGBA frames into a single ffmpeg process over
// stdin and muxes the audio bed in the same pass.
type FFmpegSink struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
}

func (s *FFmpegSink) Start(ctx context.Context, p Params) error {
	if s.cmd != nil {
		return fmt.Errorf("encoder already started")
	}
	args := buildArgs(p)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stderr = &s.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}
	s.cmd = cmd
	s.stdin = stdin
	return nil
}

func buildArgs(p Params) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-framerate", fmt.Sprintf("%d", p.FPS),
		"-i", "-",
	}
	if p.AudioPath != "" {
		args = append(args, "-i", p.AudioPath)
	}
	args = append(args, "-map", "0:v")
	if p.AudioPath != "" {
		args = append(args, "-map", "1:a", "-c:a", "aac", "-b:a", "192k", "-shortest")
	}
	args = append(args, "-c:v", p.Encoder, "-pix_fmt", "yuv420p")

	switch p.Encoder {
	case "h264_videotoolbox":
		args = append(args, "-b:v", fmt.Sprintf("%dk", p.Quality*100))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", p.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", p.Quality), "-preset", "medium")
	}

	args = append(args, "-movflags", "+faststart", p.OutputPath)
	return args
}

func (s *FFmpegSink) WriteFrame(img *image.RGBA) error {
	if s.stdin == nil {
		return fmt.Errorf("encoder not started")
	}
	bounds := img.Bounds()
	rgba := img
	if rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	if _, err := s.stdin.Write(rgba.Pix); err != nil {
		return fmt.Errorf("write raw error: %w", err)
	}
	return nil
}

// Finalize closes the frame stream and waits for ffmpeg to flush the
// container. The sink is reusable after it returns.
func (s *FFmpegSink) Finalize() error {
	if s.cmd == nil {
		return fmt.Errorf("encoder not started")
	}
	s.stdin.Close()
	err := s.cmd.Wait()
	out := s.stderr.String()

	s.cmd = nil
	s.stdin = nil
	s.stderr.Reset()

	if err != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", err, out)
	}
	return nil
}
