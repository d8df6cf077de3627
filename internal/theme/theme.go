package theme

import (
	"image/color"
	"regexp"
	"strconv"
	"strings"
)

// Theme is the closed palette shared by every scene renderer.
// Resolved once per generation run and immutable afterwards.
type Theme struct {
	Primary    string
	Secondary  string
	Accent     string
	Background string
	Text       string
	FontHead   string
	FontBody   string
}

// RawStyle carries the style tokens as the host hands them over:
// possibly empty, possibly wrapped in CSS var() decorations.
type RawStyle struct {
	Primary     string `yaml:"primary" json:"primary"`
	Secondary   string `yaml:"secondary" json:"secondary"`
	Accent      string `yaml:"accent" json:"accent"`
	Background  string `yaml:"background" json:"background"`
	Text        string `yaml:"text" json:"text"`
	FontHeading string `yaml:"font_heading" json:"fontHeading"`
	FontBody    string `yaml:"font_body" json:"fontBody"`
}

// ChartColors is the fixed palette cycled by chart renderers.
var ChartColors = []string{
	"#6c63ff", "#ff6b6b", "#ffcc00", "#2ed573",
	"#1e90ff", "#ff6348", "#a29bfe", "#55efc4",
}

var fontVarRe = regexp.MustCompile(`var\([^)]+\)`)

// CleanFont strips CSS var() wrappers and quotes around a font family name.
func CleanFont(raw string) string {
	if raw == "" {
		return ""
	}
	s := fontVarRe.ReplaceAllString(raw, "")
	s = strings.NewReplacer(`"`, "", `'`, "").Replace(s)
	return strings.TrimSpace(s)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

// Resolve builds a fully-populated Theme, applying defaults for any
// missing token. It never fails: unparseable values keep their defaults.
func Resolve(raw RawStyle) Theme {
	return Theme{
		Primary:    orDefault(raw.Primary, "#6c63ff"),
		Secondary:  orDefault(raw.Secondary, "#ff6b6b"),
		Accent:     orDefault(raw.Accent, "#ffcc00"),
		Background: orDefault(raw.Background, "#0f0c29"),
		Text:       orDefault(raw.Text, "#ffffff"),
		FontHead:   orDefault(CleanFont(raw.FontHeading), "Arial, sans-serif"),
		FontBody:   orDefault(CleanFont(raw.FontBody), "Arial, sans-serif"),
	}
}

// Parse converts a #rgb or #rrggbb hex string to an opaque color.
// Invalid input yields opaque black, matching the reference behavior
// of zeroed channels rather than an error.
func Parse(hex string) color.NRGBA {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.NRGBA{A: 255}
	}
	r, _ := strconv.ParseUint(h[0:2], 16, 8)
	g, _ := strconv.ParseUint(h[2:4], 16, 8)
	b, _ := strconv.ParseUint(h[4:6], 16, 8)
	return color.NRGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
}

func clamp255(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Adjust lightens (delta > 0) or darkens (delta < 0) a hex color.
func Adjust(hex string, delta int) color.NRGBA {
	c := Parse(hex)
	return color.NRGBA{
		R: clamp255(int(c.R) + delta),
		G: clamp255(int(c.G) + delta),
		B: clamp255(int(c.B) + delta),
		A: 255,
	}
}

// ChartColor cycles the fixed palette by index.
func ChartColor(i int) color.NRGBA {
	return Parse(ChartColors[i%len(ChartColors)])
}
