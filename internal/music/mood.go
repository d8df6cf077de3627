package music

import "strings"

// Waveform names the oscillator shape used for a note.
type Waveform string

const (
	WaveSine     Waveform = "sine"
	WaveTriangle Waveform = "triangle"
	WaveSquare   Waveform = "square"
	WaveSawtooth Waveform = "sawtooth"
)

// Profile bundles the musical parameters of one mood: a chord of base
// frequencies, an oscillator shape, the arpeggio step interval and the
// per-step trigger probability.
type Profile struct {
	Name     string
	Keywords []string
	Tempo    float64
	Notes    []float64
	Wave     Waveform
	ArpStep  float64
	Chance   float64
}

// Catalog order matters: earlier profiles win score ties.
var Catalog = []Profile{
	{
		Name:     "upbeat",
		Keywords: []string{"fun", "happy", "joy", "exciting", "party", "celebrate", "win"},
		Tempo:    0.2,
		Notes:    []float64{261.63, 329.63, 392, 523.25, 587.33, 783.99},
		Wave:     WaveSquare,
		ArpStep:  0.12,
		Chance:   0.4,
	},
	{
		Name:     "corporate",
		Keywords: []string{"business", "finance", "money", "office", "work", "market"},
		Tempo:    0.5,
		Notes:    []float64{220, 277.18, 329.63, 440},
		Wave:     WaveTriangle,
		ArpStep:  0.2,
		Chance:   0.35,
	},
	{
		Name:     "cinematic",
		Keywords: []string{"movie", "film", "epic", "story", "journey", "history"},
		Tempo:    1.0,
		Notes:    []float64{196, 261.63, 311.13, 392, 523.25},
		Wave:     WaveSawtooth,
		ArpStep:  0.3,
		Chance:   0.3,
	},
	{
		Name:     "relaxing",
		Keywords: []string{"peace", "calm", "nature", "yoga", "health", "meditate"},
		Tempo:    1.5,
		Notes:    []float64{261.63, 329.63, 392, 493.88},
		Wave:     WaveSine,
		ArpStep:  0.4,
		Chance:   0.3,
	},
	{
		Name:     "tech",
		Keywords: []string{"technology", "computer", "code", "ai", "robot", "future", "science"},
		Tempo:    0.15,
		Notes:    []float64{220, 261.63, 329.63, 440, 523.25},
		Wave:     WaveTriangle,
		ArpStep:  0.1,
		Chance:   0.5,
	},
}

// Ambient is the fallback profile when no keyword scores.
var Ambient = Profile{
	Name:    "ambient",
	Tempo:   0.8,
	Notes:   []float64{261.63, 329.63, 392, 440, 523.25},
	Wave:    WaveSine,
	ArpStep: 0.25,
	Chance:  0.3,
}

// SelectMood scores the catalog by case-insensitive keyword occurrence
// counts in text. Highest score wins, ties keep the earlier catalog
// entry; a zero top score falls back to the ambient profile.
func SelectMood(text string) Profile {
	t := strings.ToLower(text)

	best := Ambient
	maxScore := 0
	for _, p := range Catalog {
		score := 0
		for _, k := range p.Keywords {
			score += strings.Count(t, k)
		}
		if score > maxScore {
			maxScore = score
			best = p
		}
	}
	return best
}
