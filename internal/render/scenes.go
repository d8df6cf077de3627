package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/ivlev/blog2video/internal/storyline"
	"github.com/ivlev/blog2video/internal/theme"
)

// Reference layout is authored at 1280x720; everything scales from it.
const (
	refW = 1280.0
	refH = 720.0
)

// Renderer paints storyline scenes onto frame buffers.
type Renderer struct {
	W     int
	H     int
	Theme *theme.Theme
	Fonts *FontSet

	// palette parsed once, the frame loop reads these every frame
	pri, sec, acc, bg, txt color.NRGBA

	qrCache map[string]image.Image
}

func NewRenderer(w, h int, th *theme.Theme, fonts *FontSet) *Renderer {
	return &Renderer{
		W: w, H: h, Theme: th, Fonts: fonts,
		pri:     theme.Parse(th.Primary),
		sec:     theme.Parse(th.Secondary),
		acc:     theme.Parse(th.Accent),
		bg:      theme.Parse(th.Background),
		txt:     theme.Parse(th.Text),
		qrCache: make(map[string]image.Image),
	}
}

// k is the uniform scale factor applied to fonts and fixed offsets.
func (r *Renderer) k() float64 {
	return math.Min(float64(r.W)/refW, float64(r.H)/refH)
}

// DrawScene renders one frame of the scene at progress p in [0,1].
func (r *Renderer) DrawScene(c *Canvas, s *storyline.Scene, p float64) {
	switch s.Type {
	case storyline.SceneBrandIntro:
		r.drawBrandIntro(c, s, p)
	case storyline.SceneTitleCard:
		r.drawTitleCard(c, s, p)
	case storyline.SceneImageSlide:
		r.drawImageSlide(c, s, p)
	case storyline.SceneContent:
		r.drawContent(c, s, p)
	case storyline.SceneBarChart:
		r.drawBarChart(c, s, p)
	case storyline.ScenePieChart:
		r.drawPieChart(c, s, p)
	case storyline.SceneTakeaway:
		r.drawTakeaway(c, s, p)
	case storyline.SceneOutro:
		r.drawOutro(c, s, p)
	default:
		c.Fill(r.bg)
	}
}

// DrawFade composites the black cross-fade veil at strength fp.
func (r *Renderer) DrawFade(c *Canvas, fp float64) {
	c.Overlay(fp)
}

// textMiddle draws a line with its vertical center at y, like a canvas
// middle baseline.
func (c *Canvas) textMiddle(face SizedFace, s string, x, y float64, col color.NRGBA, align Align) {
	c.DrawText(face.Face, s, x, y+face.Size*0.35, col, align)
}

// wrapMiddle centers wrapped lines vertically around y.
func (c *Canvas) wrapMiddle(face SizedFace, text string, x, y, maxWidth, lineHeight float64, col color.NRGBA) {
	lines := WrapLines(face.Face, text, maxWidth)
	sy := y - float64(len(lines)-1)*lineHeight/2
	for i, ln := range lines {
		c.textMiddle(face, ln, x, sy+float64(i)*lineHeight, col, AlignCenter)
	}
}

// wrapTop draws wrapped lines flowing down from y, top baseline.
func (c *Canvas) wrapTop(face SizedFace, text string, x, y, maxWidth, lineHeight float64, col color.NRGBA, align Align) {
	for i, ln := range WrapLines(face.Face, text, maxWidth) {
		c.DrawText(face.Face, ln, x, y+face.Size*0.8+float64(i)*lineHeight, col, align)
	}
}

func (r *Renderer) drawBrandIntro(c *Canvas, s *storyline.Scene, p float64) {
	k := r.k()
	c.RadialGradient(c.W/2, c.H/2, c.W*0.8, theme.Adjust(r.Theme.Background, 40), r.bg)

	for i := 0; i < 50; i++ {
		a := p*2 + float64(i)*0.7
		rad := (150 + math.Sin(float64(i)*0.5)*250) * k
		x := c.W/2 + math.Cos(a)*rad
		y := c.H/2 + math.Sin(a*0.6)*rad*0.5
		c.FillCircle(x, y, (2+math.Sin(float64(i))*1.5)*k,
			withAlpha(r.pri, 0.08+math.Sin(p*3+float64(i))*0.06))
	}
	c.StrokeCircle(c.W/2, c.H/2, (180+math.Sin(p*3)*20)*k, 2*k, withAlpha(r.pri, 0.15*Ease(p)))

	al := Ease(math.Min(1, p*2.5))
	c.textMiddle(r.Fonts.Heading(76*k), s.SiteName, c.W/2, c.H/2-35*k, withAlpha(r.txt, al), AlignCenter)
	lw := 240 * al * k
	c.FillRect(c.W/2-lw/2, c.H/2+10*k, lw, 3*k, withAlpha(r.pri, al))
	c.textMiddle(r.Fonts.Body(26*k), s.SiteDesc, c.W/2, c.H/2+45*k, withAlpha(r.txt, 0.65*al), AlignCenter)
	c.textMiddle(r.Fonts.Body(18*k), s.SiteURL, c.W/2, c.H/2+80*k, withAlpha(r.txt, 0.4*al), AlignCenter)
}

func (r *Renderer) drawTitleCard(c *Canvas, s *storyline.Scene, p float64) {
	k := r.k()
	if s.Image != nil {
		sc := 1.1 + p*0.1
		dw, dh := c.W*sc, c.H*sc
		c.DrawImageBlurred(s.Image, -(dw-c.W)/2, -(dh-c.H)/2, dw, dh)
		c.Overlay(0.65)
	} else {
		c.DiagonalGradient(theme.Adjust(r.Theme.Background, 15), r.bg)
	}
	c.VerticalGradient([]GradientStop{
		{0, color.NRGBA{A: 77}},
		{0.5, color.NRGBA{A: 153}},
		{1, color.NRGBA{A: 102}},
	})

	ty := c.H/2 - 20*k
	if s.Image != nil {
		al := Ease(math.Min(1, p*3))
		iw, ih := 400*k, 250*k
		ix, iy := c.W/2-iw/2, 80*k
		c.FillRoundedRect(ix-4*k, iy-4*k, iw+8*k, ih+8*k, 12*k, withAlpha(r.pri, al))
		c.DrawImageRect(s.Image, ix, iy, iw, ih)
		ty = 420 * k
	}
	oy := math.Max(0, (1-p*2)*40) * k
	al := Ease(math.Min(1, p*2))
	c.wrapMiddle(r.Fonts.Heading(58*k), s.Title, c.W/2, ty+oy, c.W-180*k, 68*k, withAlpha(r.txt, al))
	bw := 100 * al * k
	c.FillRect(c.W/2-bw/2, ty+60*k+oy, bw, 3*k, withAlpha(r.pri, al))
	c.textMiddle(r.Fonts.Body(20*k), s.SiteName, 30*k, c.H-30*k, withAlpha(r.txt, 0.5*al), AlignLeft)
}

func (r *Renderer) drawImageSlide(c *Canvas, s *storyline.Scene, p float64) {
	k := r.k()
	c.Fill(r.bg)
	if s.Image == nil {
		fallback := *s
		fallback.Type = storyline.SceneContent
		fallback.Text = s.Caption
		if fallback.Text == "" {
			fallback.Text = "Image"
		}
		fallback.SceneNumber, fallback.TotalScenes = 1, 1
		fallback.Image = nil
		r.drawContent(c, &fallback, p)
		return
	}
	al := Ease(math.Min(1, p*2.5))
	b := s.Image.Bounds()
	maxW, maxH := c.W-160*k, c.H-200*k
	ratio := math.Min(math.Min(maxW/float64(b.Dx()), maxH/float64(b.Dy())), 1)
	iw, ih := float64(b.Dx())*ratio, float64(b.Dy())*ratio
	ix, iy := (c.W-iw)/2, 60*k

	c.FillRoundedRect(ix-5*k, iy-5*k, iw+10*k, ih+10*k, 10*k, withAlpha(r.pri, al))
	scale := 1 + p*0.05
	sw, sh := iw*scale, ih*scale
	c.DrawImageRect(s.Image, ix-(sw-iw)/2, iy-(sh-ih)/2, sw, sh)

	if s.Caption != "" {
		c.wrapTop(r.Fonts.Italic(24*k), s.Caption, c.W/2, iy+ih+30*k, c.W-120*k, 32*k,
			withAlpha(r.txt, 0.8*al), AlignCenter)
	}
	c.textMiddle(r.Fonts.Body(16*k), s.SiteName, c.W-30*k, c.H-25*k, withAlpha(r.txt, 0.4*al), AlignRight)
}

func (r *Renderer) drawContent(c *Canvas, s *storyline.Scene, p float64) {
	k := r.k()
	if s.Image != nil {
		sc := 1.05 + p*0.12
		dw := c.W * sc
		b := s.Image.Bounds()
		ratio := float64(b.Dy()) / float64(b.Dx())
		dh := math.Max(c.H*sc, dw*ratio)
		c.DrawImageRect(s.Image, -(dw-c.W)/2+math.Sin(p*1.5)*15*k, -(dh-c.H)/2, dw, dh)
		c.VerticalGradient([]GradientStop{
			{0, color.NRGBA{A: 38}},
			{0.5, color.NRGBA{A: 77}},
			{0.75, color.NRGBA{A: 179}},
			{1, color.NRGBA{A: 217}},
		})
	} else {
		h1 := float64((s.SceneNumber*35 + 220) % 360)
		c.DiagonalGradient(hslToRGB(h1, 0.35, 0.12), hslToRGB(math.Mod(h1+25, 360), 0.45, 0.20))
		blob := hslToRGB(h1, 0.5, 0.4)
		blob.A = 20
		for i := 0; i < 5; i++ {
			c.FillCircle((100+float64(i)*280)*k, (150+math.Sin(p*2+float64(i))*40)*k,
				(60+math.Sin(float64(i))*30)*k, blob)
		}
	}

	// scene badge
	c.FillRoundedRect(30*k, 25*k, 130*k, 40*k, 20*k, withAlpha(r.pri, 0.9))
	white := color.NRGBA{255, 255, 255, 255}
	c.textMiddle(r.Fonts.BodyBold(16*k), fmt.Sprintf("Scene %d / %d", s.SceneNumber, s.TotalScenes),
		95*k, 46*k, white, AlignCenter)
	c.textMiddle(r.Fonts.Body(16*k), s.SiteName, c.W-30*k, 46*k, withAlpha(r.txt, 0.45), AlignRight)

	// narration band with the typewriter reveal
	bH := 200 * k
	bY := c.H - bH - 25*k
	c.FillRoundedRect(35*k, bY, c.W-70*k, bH, 14*k, color.NRGBA{A: 166})
	c.FillRect(35*k, bY, c.W-70*k, 3*k, r.pri)

	runes := []rune(s.Text)
	ch := TypewriterCount(p, len(runes))
	c.wrapTop(r.Fonts.Body(26*k), string(runes[:ch]), 60*k, bY+22*k, c.W-140*k, 36*k, r.txt, AlignLeft)
	if ch < len(runes) && math.Sin(p*20) > 0 {
		c.FillRect(62*k, bY+22*k, 2*k, 28*k, r.acc)
	}
}

func (r *Renderer) drawTakeaway(c *Canvas, s *storyline.Scene, p float64) {
	k := r.k()
	c.RadialGradient(c.W/2, c.H/2, c.W*0.7, r.sec, theme.Adjust(r.Theme.Secondary, -50))

	white := color.NRGBA{255, 255, 255, 255}
	for i := 0; i < 8; i++ {
		c.StrokeCircle(c.W/2+math.Cos(float64(i)*0.8)*200*k, c.H/2+math.Sin(float64(i)*0.8)*150*k,
			(80+float64(i)*20)*k, k, withAlpha(white, 0.06))
	}
	c.textMiddle(r.Fonts.Heading(280*k), "“", c.W/2-200*k, c.H/2-60*k, withAlpha(white, 0.1), AlignCenter)

	al := Ease(math.Min(1, p*2.5))
	c.wrapMiddle(r.Fonts.Heading(34*k), s.Text, c.W/2, c.H/2, c.W-200*k, 46*k, withAlpha(white, al))
	c.textMiddle(r.Fonts.Body(18*k), "— Key Takeaway —", c.W/2, c.H-70*k, withAlpha(white, 0.65*al), AlignCenter)
	c.textMiddle(r.Fonts.Body(18*k), s.SiteName, c.W/2, c.H-42*k, withAlpha(white, 0.65*al), AlignCenter)
}

func (r *Renderer) drawOutro(c *Canvas, s *storyline.Scene, p float64) {
	k := r.k()
	c.RadialGradient(c.W/2, c.H/2, c.W*0.8, theme.Adjust(r.Theme.Background, 35), r.bg)

	for i := 0; i < 80; i++ {
		x := (math.Sin(float64(i)*7.3)*0.5 + 0.5) * c.W
		y := (math.Cos(float64(i)*4.1)*0.5 + 0.5) * c.H
		c.FillCircle(x, y, 1.5*k, withAlpha(r.txt, 0.1+math.Sin(p*3+float64(i))*0.1))
	}
	al := Ease(math.Min(1, p*2))
	c.textMiddle(r.Fonts.Heading(50*k), "Thanks for Watching!", c.W/2, c.H/2-90*k, withAlpha(r.txt, al), AlignCenter)
	c.FillRect(c.W/2-80*k, c.H/2-40*k, 160*k, 3*k, withAlpha(r.pri, al))
	c.wrapMiddle(r.Fonts.Body(28*k), "“"+s.Title+"”", c.W/2, c.H/2+10*k, c.W-200*k, 36*k,
		withAlpha(r.pri, 0.85*al))
	c.textMiddle(r.Fonts.BodyBold(26*k), "Read the full article at", c.W/2, c.H/2+80*k, withAlpha(r.acc, al), AlignCenter)
	c.textMiddle(r.Fonts.Heading(30*k), s.SiteURL, c.W/2, c.H/2+120*k, withAlpha(r.txt, al), AlignCenter)

	if s.SiteURL != "" {
		if qr := r.qrImage(s.SiteURL, int(92*k)); qr != nil {
			qsz := 92 * k
			c.FillRoundedRect(c.W-qsz-34*k, c.H-qsz-34*k, qsz+8*k, qsz+8*k, 6*k, withAlpha(r.txt, al))
			c.DrawImageRect(qr, c.W-qsz-30*k, c.H-qsz-30*k, qsz, qsz)
		}
	}
	c.textMiddle(r.Fonts.Body(18*k), "© "+s.SiteName, c.W/2, c.H-35*k, withAlpha(r.txt, 0.35*al), AlignCenter)
}

func (r *Renderer) qrImage(url string, size int) image.Image {
	if size < 21 {
		return nil
	}
	if img, ok := r.qrCache[url]; ok {
		return img
	}
	code, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return nil
	}
	img := code.Image(size)
	r.qrCache[url] = img
	return img
}

// hslToRGB converts HSL (h in degrees, s and l in [0,1]) to NRGBA.
func hslToRGB(h, s, l float64) color.NRGBA {
	c := (1 - math.Abs(2*l-1)) * s
	hp := math.Mod(h, 360) / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))
	var rf, gf, bf float64
	switch {
	case hp < 1:
		rf, gf, bf = c, x, 0
	case hp < 2:
		rf, gf, bf = x, c, 0
	case hp < 3:
		rf, gf, bf = 0, c, x
	case hp < 4:
		rf, gf, bf = 0, x, c
	case hp < 5:
		rf, gf, bf = x, 0, c
	default:
		rf, gf, bf = c, 0, x
	}
	m := l - c/2
	return color.NRGBA{
		R: uint8((rf + m) * 255),
		G: uint8((gf + m) * 255),
		B: uint8((bf + m) * 255),
		A: 255,
	}
}
