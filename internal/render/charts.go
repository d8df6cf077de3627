package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/ivlev/blog2video/internal/storyline"
	"github.com/ivlev/blog2video/internal/theme"
)

func formatValue(v float64, unit string) string {
	if unit == "%" {
		return fmt.Sprintf("%.0f%%", v)
	}
	if v > 1000 {
		return fmt.Sprintf("%.1fK", v/1000)
	}
	return fmt.Sprintf("%.0f", v)
}

func (r *Renderer) drawBarChart(c *Canvas, s *storyline.Scene, p float64) {
	k := r.k()
	c.DiagonalGradient(theme.Adjust(r.Theme.Background, 20), r.bg)
	data := s.Data
	n := len(data)
	if n == 0 {
		return
	}

	title := s.Title
	if title == "" {
		title = "Data"
	}
	c.textMiddle(r.Fonts.Heading(36*k), title, c.W/2, 50*k, r.txt, AlignCenter)

	chartX, chartY := 120*k, 100*k
	chartW, chartH := c.W-240*k, c.H-200*k
	barW := math.Min(80*k, chartW/float64(n)*0.6)
	gap := (chartW - barW*float64(n)) / float64(n+1)
	maxVal := 1.0
	for _, d := range data {
		if d.Value > maxVal {
			maxVal = d.Value
		}
	}

	// axis and gridlines
	axis := withAlpha(r.txt, 0.2)
	c.Line(chartX, chartY, chartX, chartY+chartH, k, axis)
	c.Line(chartX, chartY+chartH, chartX+chartW, chartY+chartH, k, axis)
	for i := 0; i <= 4; i++ {
		gy := chartY + chartH - chartH*float64(i)/4
		c.Line(chartX, gy, chartX+chartW, gy, k, withAlpha(r.txt, 0.08))
		c.textMiddle(r.Fonts.Body(14*k), formatValue(maxVal*float64(i)/4, ""),
			chartX-10*k, gy, withAlpha(r.txt, 0.4), AlignRight)
	}

	animP := Ease(math.Min(1, p*1.8))
	for i, d := range data {
		x := chartX + gap + float64(i)*(barW+gap)
		barH := d.Value / maxVal * chartH * animP
		y := chartY + chartH - barH
		col := theme.ChartColor(i)
		dark := darken(col, 40)
		// vertical two-stop fill, brighter at the top
		steps := int(barH)
		for sy := 0; sy < steps; sy++ {
			f := float64(sy) / math.Max(barH, 1)
			row := color.NRGBA{
				R: uint8(lerp(float64(col.R), float64(dark.R), f)),
				G: uint8(lerp(float64(col.G), float64(dark.G), f)),
				B: uint8(lerp(float64(col.B), float64(dark.B), f)),
				A: 255,
			}
			c.blendRow(int(y)+sy, int(x), int(x+barW), row)
		}
		c.FillRoundedRect(x, y, barW, math.Min(2*k, barH), k, col)

		if animP > 0.3 {
			c.DrawText(r.Fonts.BodyBold(18*k).Face, formatValue(d.Value, d.Unit),
				x+barW/2, y-8*k, r.txt, AlignCenter)
		}
		lbl := []rune(d.Label)
		if len(lbl) > 12 {
			lbl = append(lbl[:11], '…')
		}
		c.wrapTop(r.Fonts.Body(14*k), string(lbl), x+barW/2, chartY+chartH+10*k, barW+gap, 18*k,
			withAlpha(r.txt, 0.75), AlignCenter)
	}
	c.textMiddle(r.Fonts.Body(16*k), s.SiteName, c.W-30*k, c.H-25*k, withAlpha(r.txt, 0.35), AlignRight)
}

func (r *Renderer) drawPieChart(c *Canvas, s *storyline.Scene, p float64) {
	k := r.k()
	c.DiagonalGradient(theme.Adjust(r.Theme.Background, 20), r.bg)
	data := s.Data
	if len(data) == 0 {
		return
	}

	title := s.Title
	if title == "" {
		title = "Distribution"
	}
	c.textMiddle(r.Fonts.Heading(36*k), title, c.W/2, 45*k, r.txt, AlignCenter)

	cx, cy := c.W/2-150*k, c.H/2+20*k
	radius := math.Min(c.W, c.H) * 0.28
	total := 0.0
	for _, d := range data {
		total += d.Value
	}
	if total == 0 {
		total = 1
	}
	animP := Ease(math.Min(1, p*1.8))
	startAngle := -math.Pi / 2
	for i, d := range data {
		sliceAngle := d.Value / total * 2 * math.Pi * animP
		c.FillWedge(cx, cy, radius, startAngle, startAngle+sliceAngle, theme.ChartColor(i))
		if animP > 0.5 {
			mid := startAngle + sliceAngle/2
			lx := cx + math.Cos(mid)*(radius+25*k)
			ly := cy + math.Sin(mid)*(radius+25*k)
			align := AlignLeft
			if mid > math.Pi/2 || mid < -math.Pi/2 {
				align = AlignRight
			}
			c.textMiddle(r.Fonts.Body(14*k), fmt.Sprintf("%.0f%%", d.Value), lx, ly,
				withAlpha(r.txt, 0.6), align)
		}
		startAngle += sliceAngle
	}

	// donut hole with the running total
	c.FillCircle(cx, cy, radius*0.5, r.bg)
	c.textMiddle(r.Fonts.Heading(22*k), "Total", cx, cy-10*k, withAlpha(r.txt, 0.3), AlignCenter)
	suffix := ""
	if data[0].Unit == "%" {
		suffix = "%"
	}
	c.textMiddle(r.Fonts.Heading(28*k), fmt.Sprintf("%.0f%s", total, suffix), cx, cy+18*k, r.txt, AlignCenter)

	legX := c.W/2 + 80*k
	legY := c.H/2 - float64(len(data))*20*k
	for i, d := range data {
		y := legY + float64(i)*42*k
		c.FillRoundedRect(legX, y, 18*k, 18*k, 4*k, theme.ChartColor(i))
		c.textMiddle(r.Fonts.Body(18*k), d.Label, legX+28*k, y+9*k, r.txt, AlignLeft)
	}
	c.textMiddle(r.Fonts.Body(16*k), s.SiteName, c.W-30*k, c.H-25*k, withAlpha(r.txt, 0.35), AlignRight)
}

func darken(c color.NRGBA, delta int) color.NRGBA {
	clamp := func(v int) uint8 {
		if v < 0 {
			return 0
		}
		if v > 255 {
			return 255
		}
		return uint8(v)
	}
	return color.NRGBA{
		R: clamp(int(c.R) - delta),
		G: clamp(int(c.G) - delta),
		B: clamp(int(c.B) - delta),
		A: c.A,
	}
}
