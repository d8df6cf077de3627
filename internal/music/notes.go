package music

import "math/rand"

// EnvPoint is a gain breakpoint; gain is linearly interpolated between
// consecutive points and zero outside the first and last.
type EnvPoint struct {
	Time float64
	Gain float64
}

// NoteEvent is one declarative note: what to play and when. The whole
// track is generated as a list of these up front, then realized by the
// PCM renderer.
type NoteEvent struct {
	Freq  float64
	Wave  Waveform
	Start float64
	Stop  float64
	Env   []EnvPoint

	// Slow pitch modulation for pad notes, in Hz of depth.
	VibratoFreq  float64
	VibratoDepth float64
}

const (
	padGain   = 0.04
	arpGain   = 0.04
	arpAttack = 0.03
)

// padWave keeps the sustained layer soft: square profiles pad with
// triangle, everything else pads with sine.
func padWave(w Waveform) Waveform {
	if w == WaveSquare {
		return WaveTriangle
	}
	return WaveSine
}

// GenerateNotes composes the two layers of a mood over dur seconds:
// one sustained pad note per base frequency with staggered fade
// envelopes and slow vibrato, plus a probabilistic arpeggio at the
// profile's step interval.
func GenerateNotes(p Profile, dur float64, rng *rand.Rand) []NoteEvent {
	var events []NoteEvent

	// Pad layer
	for i, freq := range p.Notes {
		start := float64(i) * 0.3
		if start >= dur {
			break
		}
		attackEnd := 2 + float64(i)*0.5
		sustainEnd := dur - 3
		if attackEnd > dur {
			attackEnd = dur
		}
		if sustainEnd < attackEnd {
			sustainEnd = attackEnd
		}
		events = append(events, NoteEvent{
			Freq:  freq,
			Wave:  padWave(p.Wave),
			Start: start,
			Stop:  dur,
			Env: []EnvPoint{
				{Time: 0, Gain: 0},
				{Time: attackEnd, Gain: padGain},
				{Time: sustainEnd, Gain: padGain},
				{Time: dur, Gain: 0},
			},
			VibratoFreq:  0.1 + float64(i)*0.05,
			VibratoDepth: 2,
		})
	}

	// Arpeggio layer
	steps := int(dur / p.ArpStep)
	for i := 0; i < steps; i++ {
		if rng.Float64() >= p.Chance {
			continue
		}
		t := float64(i) * p.ArpStep
		freq := p.Notes[rng.Intn(len(p.Notes))]
		if rng.Float64() > 0.8 {
			freq *= 2
		}
		stop := t + p.ArpStep
		if stop > dur {
			stop = dur
		}
		events = append(events, NoteEvent{
			Freq:  freq,
			Wave:  p.Wave,
			Start: t,
			Stop:  stop,
			Env: []EnvPoint{
				{Time: t, Gain: 0},
				{Time: t + arpAttack, Gain: arpGain},
				{Time: t + p.ArpStep*0.8, Gain: 0.001},
				{Time: stop, Gain: 0},
			},
		})
	}

	return events
}

// gainAt evaluates an envelope at absolute time t.
func gainAt(env []EnvPoint, t float64) float64 {
	if len(env) == 0 {
		return 0
	}
	if t <= env[0].Time {
		return env[0].Gain
	}
	for i := 1; i < len(env); i++ {
		if t <= env[i].Time {
			span := env[i].Time - env[i-1].Time
			if span <= 0 {
				return env[i].Gain
			}
			f := (t - env[i-1].Time) / span
			return env[i-1].Gain + f*(env[i].Gain-env[i-1].Gain)
		}
	}
	return env[len(env)-1].Gain
}
