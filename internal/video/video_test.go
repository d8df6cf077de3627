package video

import (
	"strings"
	"testing"
)

func TestBuildArgsVideoOnly(t *testing.T) {
	args := strings.Join(buildArgs(Params{
		Width: 1280, Height: 720, FPS: 30,
		Encoder: "libx264", Quality: 23, OutputPath: "out.mp4",
	}), " ")

	for _, want := range []string{
		"-f rawvideo",
		"-pixel_format rgba",
		"-video_size 1280x720",
		"-framerate 30",
		"-i -",
		"-c:v libx264",
		"-crf 23",
		"-pix_fmt yuv420p",
		"out.mp4",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("args missing %q: %s", want, args)
		}
	}
	if strings.Contains(args, "-c:a") {
		t.Errorf("no audio input but audio codec set: %s", args)
	}
}

func TestBuildArgsWithAudio(t *testing.T) {
	args := strings.Join(buildArgs(Params{
		Width: 720, Height: 1280, FPS: 25, AudioPath: "bed.wav",
		Encoder: "libx264", Quality: 20, OutputPath: "v.mp4",
	}), " ")

	for _, want := range []string{
		"-i bed.wav",
		"-map 0:v",
		"-map 1:a",
		"-c:a aac",
		"-shortest",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("args missing %q: %s", want, args)
		}
	}
}

func TestBuildArgsEncoderQuality(t *testing.T) {
	vt := strings.Join(buildArgs(Params{Encoder: "h264_videotoolbox", Quality: 75}), " ")
	if !strings.Contains(vt, "-b:v 7500k") {
		t.Errorf("videotoolbox bitrate missing: %s", vt)
	}
	nv := strings.Join(buildArgs(Params{Encoder: "h264_nvenc", Quality: 28}), " ")
	if !strings.Contains(nv, "-cq 28") {
		t.Errorf("nvenc cq missing: %s", nv)
	}
}

func TestSinkLifecycleGuards(t *testing.T) {
	var s FFmpegSink
	if err := s.WriteFrame(nil); err == nil {
		t.Error("WriteFrame before Start must fail")
	}
	if err := s.Finalize(); err == nil {
		t.Error("Finalize before Start must fail")
	}
}
