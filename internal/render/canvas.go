package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/ivlev/blog2video/internal/system"
)

// Canvas wraps one RGBA frame buffer with the drawing primitives the
// scene renderers need. Not safe for concurrent use; the frame loop is
// strictly sequential anyway.
type Canvas struct {
	Img *image.RGBA
	W   float64
	H   float64
}

// NewCanvas wraps an existing frame buffer.
func NewCanvas(img *image.RGBA) *Canvas {
	b := img.Bounds()
	return &Canvas{Img: img, W: float64(b.Dx()), H: float64(b.Dy())}
}

func withAlpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = uint8(clamp01(a) * float64(c.A))
	return c
}

// Fill paints the whole frame with an opaque color.
func (c *Canvas) Fill(col color.NRGBA) {
	draw.Draw(c.Img, c.Img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

// blendRow alpha-blends col into one pixel row [x0,x1).
func (c *Canvas) blendRow(y, x0, x1 int, col color.NRGBA) {
	if y < 0 || y >= int(c.H) {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > int(c.W) {
		x1 = int(c.W)
	}
	a := uint32(col.A)
	if a == 0 {
		return
	}
	inv := 255 - a
	pix := c.Img.Pix
	off := c.Img.PixOffset(x0, y)
	for x := x0; x < x1; x++ {
		pix[off] = uint8((uint32(col.R)*a + uint32(pix[off])*inv) / 255)
		pix[off+1] = uint8((uint32(col.G)*a + uint32(pix[off+1])*inv) / 255)
		pix[off+2] = uint8((uint32(col.B)*a + uint32(pix[off+2])*inv) / 255)
		pix[off+3] = 255
		off += 4
	}
}

// FillRect alpha-blends a rectangle.
func (c *Canvas) FillRect(x, y, w, h float64, col color.NRGBA) {
	y0, y1 := int(y), int(y+h)
	for yy := y0; yy < y1; yy++ {
		c.blendRow(yy, int(x), int(x+w), col)
	}
}

// Overlay blends a full-frame black veil; this is the fade compositor.
func (c *Canvas) Overlay(alpha float64) {
	c.FillRect(0, 0, c.W, c.H, color.NRGBA{A: uint8(clamp01(alpha) * 255)})
}

func (c *Canvas) fillPath(col color.NRGBA, trace func(r *vector.Rasterizer)) {
	r := vector.NewRasterizer(int(c.W), int(c.H))
	trace(r)
	r.Draw(c.Img, c.Img.Bounds(), image.NewUniform(col), image.Point{})
}

// FillRoundedRect draws an anti-aliased rounded rectangle.
func (c *Canvas) FillRoundedRect(x, y, w, h, rad float64, col color.NRGBA) {
	if rad > w/2 {
		rad = w / 2
	}
	if rad > h/2 {
		rad = h / 2
	}
	fx, fy, fw, fh, fr := float32(x), float32(y), float32(w), float32(h), float32(rad)
	c.fillPath(col, func(r *vector.Rasterizer) {
		r.MoveTo(fx+fr, fy)
		r.LineTo(fx+fw-fr, fy)
		r.QuadTo(fx+fw, fy, fx+fw, fy+fr)
		r.LineTo(fx+fw, fy+fh-fr)
		r.QuadTo(fx+fw, fy+fh, fx+fw-fr, fy+fh)
		r.LineTo(fx+fr, fy+fh)
		r.QuadTo(fx, fy+fh, fx, fy+fh-fr)
		r.LineTo(fx, fy+fr)
		r.QuadTo(fx, fy, fx+fr, fy)
		r.ClosePath()
	})
}

const circleSegments = 48

// FillCircle draws an anti-aliased filled circle.
func (c *Canvas) FillCircle(cx, cy, rad float64, col color.NRGBA) {
	if rad <= 0 {
		return
	}
	c.fillPath(col, func(r *vector.Rasterizer) {
		r.MoveTo(float32(cx+rad), float32(cy))
		for i := 1; i <= circleSegments; i++ {
			a := 2 * math.Pi * float64(i) / circleSegments
			r.LineTo(float32(cx+math.Cos(a)*rad), float32(cy+math.Sin(a)*rad))
		}
		r.ClosePath()
	})
}

// StrokeCircle draws a circle outline of the given line width.
func (c *Canvas) StrokeCircle(cx, cy, rad, width float64, col color.NRGBA) {
	if rad <= 0 {
		return
	}
	outer, inner := rad+width/2, rad-width/2
	if inner < 0 {
		inner = 0
	}
	c.fillPath(col, func(r *vector.Rasterizer) {
		r.MoveTo(float32(cx+outer), float32(cy))
		for i := 1; i <= circleSegments; i++ {
			a := 2 * math.Pi * float64(i) / circleSegments
			r.LineTo(float32(cx+math.Cos(a)*outer), float32(cy+math.Sin(a)*outer))
		}
		r.ClosePath()
		// reverse winding carves the hole
		r.MoveTo(float32(cx+inner), float32(cy))
		for i := circleSegments - 1; i >= 0; i-- {
			a := 2 * math.Pi * float64(i) / circleSegments
			r.LineTo(float32(cx+math.Cos(a)*inner), float32(cy+math.Sin(a)*inner))
		}
		r.ClosePath()
	})
}

// FillWedge draws a pie wedge from angle a0 to a1 (radians).
func (c *Canvas) FillWedge(cx, cy, rad, a0, a1 float64, col color.NRGBA) {
	if a1 <= a0 || rad <= 0 {
		return
	}
	steps := int(math.Ceil((a1 - a0) / (2 * math.Pi) * circleSegments))
	if steps < 2 {
		steps = 2
	}
	c.fillPath(col, func(r *vector.Rasterizer) {
		r.MoveTo(float32(cx), float32(cy))
		for i := 0; i <= steps; i++ {
			a := a0 + (a1-a0)*float64(i)/float64(steps)
			r.LineTo(float32(cx+math.Cos(a)*rad), float32(cy+math.Sin(a)*rad))
		}
		r.ClosePath()
	})
}

// Line draws a straight line of the given width.
func (c *Canvas) Line(x0, y0, x1, y1, width float64, col color.NRGBA) {
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	nx, ny := -dy/length*width/2, dx/length*width/2
	c.fillPath(col, func(r *vector.Rasterizer) {
		r.MoveTo(float32(x0+nx), float32(y0+ny))
		r.LineTo(float32(x1+nx), float32(y1+ny))
		r.LineTo(float32(x1-nx), float32(y1-ny))
		r.LineTo(float32(x0-nx), float32(y0-ny))
		r.ClosePath()
	})
}

// GradientStop is one color stop of a gradient, Pos in [0,1].
type GradientStop struct {
	Pos   float64
	Color color.NRGBA
}

func gradientAt(stops []GradientStop, f float64) color.NRGBA {
	if len(stops) == 0 {
		return color.NRGBA{}
	}
	if f <= stops[0].Pos {
		return stops[0].Color
	}
	for i := 1; i < len(stops); i++ {
		if f <= stops[i].Pos {
			span := stops[i].Pos - stops[i-1].Pos
			if span <= 0 {
				return stops[i].Color
			}
			t := (f - stops[i-1].Pos) / span
			a, b := stops[i-1].Color, stops[i].Color
			return color.NRGBA{
				R: uint8(lerp(float64(a.R), float64(b.R), t)),
				G: uint8(lerp(float64(a.G), float64(b.G), t)),
				B: uint8(lerp(float64(a.B), float64(b.B), t)),
				A: uint8(lerp(float64(a.A), float64(b.A), t)),
			}
		}
	}
	return stops[len(stops)-1].Color
}

// VerticalGradient blends a top-to-bottom gradient over the frame.
func (c *Canvas) VerticalGradient(stops []GradientStop) {
	h := int(c.H)
	for y := 0; y < h; y++ {
		col := gradientAt(stops, float64(y)/c.H)
		c.blendRow(y, 0, int(c.W), col)
	}
}

// DiagonalGradient fills the frame corner-to-corner (opaque).
func (c *Canvas) DiagonalGradient(c0, c1 color.NRGBA) {
	w, h := int(c.W), int(c.H)
	for y := 0; y < h; y++ {
		fy := float64(y) / c.H
		for x := 0; x < w; x++ {
			f := (float64(x)/c.W + fy) / 2
			c.Img.Set(x, y, gradientAt([]GradientStop{{0, c0}, {1, c1}}, f))
		}
	}
}

// RadialGradient fills the frame with a radial blend from center color
// c0 out to c1 at radius rad (opaque).
func (c *Canvas) RadialGradient(cx, cy, rad float64, c0, c1 color.NRGBA) {
	w, h := int(c.W), int(c.H)
	stops := []GradientStop{{0, c0}, {1, c1}}
	for y := 0; y < h; y++ {
		dy := float64(y) - cy
		for x := 0; x < w; x++ {
			dx := float64(x) - cx
			f := math.Hypot(dx, dy) / rad
			if f > 1 {
				f = 1
			}
			c.Img.Set(x, y, gradientAt(stops, f))
		}
	}
}

// DrawImageRect scales src into the destination rectangle, clipped to
// the frame.
func (c *Canvas) DrawImageRect(src image.Image, x, y, w, h float64) {
	dr := image.Rect(int(x), int(y), int(x+w), int(y+h))
	xdraw.ApproxBiLinear.Scale(c.Img, dr, src, src.Bounds(), xdraw.Over, nil)
}

// DrawImageBlurred draws src covering the rect through a heavy blur,
// approximated by a round trip through a 1/8-scale buffer.
func (c *Canvas) DrawImageBlurred(src image.Image, x, y, w, h float64) {
	smallW, smallH := int(c.W)/8, int(c.H)/8
	if smallW < 1 || smallH < 1 {
		c.DrawImageRect(src, x, y, w, h)
		return
	}
	small := system.GetImage(image.Rect(0, 0, smallW, smallH))
	defer system.PutImage(small)

	xdraw.ApproxBiLinear.Scale(small, small.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	dr := image.Rect(int(x), int(y), int(x+w), int(y+h))
	xdraw.BiLinear.Scale(c.Img, dr, small, small.Bounds(), xdraw.Over, nil)
}
