package render

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Align selects horizontal text anchoring relative to the x coordinate.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// TextWidth measures a string in pixels for the given face.
func TextWidth(face font.Face, s string) float64 {
	return float64(font.MeasureString(face, s)) / 64
}

// DrawText draws a single line of text. y is the baseline.
func (c *Canvas) DrawText(face font.Face, s string, x, y float64, col color.NRGBA, align Align) {
	w := TextWidth(face, s)
	switch align {
	case AlignCenter:
		x -= w / 2
	case AlignRight:
		x -= w
	}
	d := font.Drawer{
		Dst:  c.Img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)},
	}
	d.DrawString(s)
}

// WrapLines splits text into lines no wider than maxWidth. Words that
// alone exceed the width get a line of their own.
func WrapLines(face font.Face, text string, maxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	cur := words[0]
	for _, w := range words[1:] {
		cand := cur + " " + w
		if TextWidth(face, cand) > maxWidth {
			lines = append(lines, cur)
			cur = w
		} else {
			cur = cand
		}
	}
	return append(lines, cur)
}
