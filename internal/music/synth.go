package music

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	// SampleRate of the rendered bed, matching the capture sink input.
	SampleRate = 44100

	// masterGain keeps the bed low enough not to overpower narration.
	masterGain = 0.15
)

func oscillate(w Waveform, phase float64) float64 {
	// phase in [0,1)
	switch w {
	case WaveSine:
		return math.Sin(2 * math.Pi * phase)
	case WaveTriangle:
		return 4*math.Abs(phase-0.5) - 1
	case WaveSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case WaveSawtooth:
		return 2*phase - 1
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// Render realizes a note-event list as mono float samples of exactly
// dur seconds. Notes are additive; the result is clipped to [-1,1].
func Render(events []NoteEvent, dur float64) []float64 {
	n := int(dur * SampleRate)
	out := make([]float64, n)
	dt := 1.0 / SampleRate

	for _, ev := range events {
		start := int(ev.Start * SampleRate)
		stop := int(ev.Stop * SampleRate)
		if start < 0 {
			start = 0
		}
		if stop > n {
			stop = n
		}

		phase := 0.0
		for i := start; i < stop; i++ {
			t := float64(i) * dt
			freq := ev.Freq
			if ev.VibratoDepth > 0 {
				freq += ev.VibratoDepth * math.Sin(2*math.Pi*ev.VibratoFreq*t)
			}
			phase += freq * dt
			phase -= math.Floor(phase)
			out[i] += oscillate(ev.Wave, phase) * gainAt(ev.Env, t)
		}
	}

	for i := range out {
		v := out[i] * masterGain
		if v > 1 {
			v = 1
		}
		if v < -1 {
			v = -1
		}
		out[i] = v
	}
	return out
}

// WriteWAV encodes mono float samples as 16-bit PCM WAV.
func WriteWAV(path string, samples []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: SampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, len(samples)),
	}
	for i, s := range samples {
		buf.Data[i] = int(s * 32767)
	}

	enc := wav.NewEncoder(f, SampleRate, 16, 1, 1)
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Synthesize picks a mood from the keyword text, generates the note
// events for dur seconds and renders them to a WAV file at path.
// Returns the selected mood name.
func Synthesize(path string, dur float64, moodText string) (string, error) {
	if dur <= 0 {
		return "", fmt.Errorf("invalid track duration: %f", dur)
	}
	profile := SelectMood(moodText)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	events := GenerateNotes(profile, dur, rng)
	samples := Render(events, dur)

	if err := WriteWAV(path, samples); err != nil {
		return profile.Name, err
	}
	return profile.Name, nil
}
