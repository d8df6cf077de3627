package render

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontSet holds the three typefaces the renderers use and caches faces
// by size. Custom TTF paths override the embedded Go fonts; any load
// failure falls back silently, so a usable set always comes back.
type FontSet struct {
	heading *opentype.Font
	body    *opentype.Font
	italic  *opentype.Font

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

type faceKey struct {
	kind string
	size float64
}

func parseFont(customPath string, fallback []byte) (*opentype.Font, error) {
	data := fallback
	if customPath != "" {
		if b, err := os.ReadFile(customPath); err == nil {
			data = b
		} else {
			fmt.Printf("[!] Failed to read font %s, using embedded fallback\n", customPath)
		}
	}
	return opentype.Parse(data)
}

// LoadFonts builds a FontSet. Empty paths select the embedded Go
// fonts: bold for headings, regular for body text, italic for captions.
func LoadFonts(headingPath, bodyPath string) (*FontSet, error) {
	heading, err := parseFont(headingPath, gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse heading font: %w", err)
	}
	body, err := parseFont(bodyPath, goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse body font: %w", err)
	}
	italic, err := opentype.Parse(goitalic.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse italic font: %w", err)
	}

	return &FontSet{
		heading: heading,
		body:    body,
		italic:  italic,
		faces:   make(map[faceKey]font.Face),
	}, nil
}

func (fs *FontSet) face(kind string, f *opentype.Font, size float64) font.Face {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	key := faceKey{kind: kind, size: size}
	if face, ok := fs.faces[key]; ok {
		return face
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		// opentype.NewFace only fails on invalid options; keep drawing
		face = basicFallbackFace()
	}
	fs.faces[key] = face
	return face
}

func basicFallbackFace() font.Face {
	f, _ := opentype.Parse(goregular.TTF)
	face, _ := opentype.NewFace(f, &opentype.FaceOptions{Size: 16, DPI: 72})
	return face
}

// SizedFace pairs a face with the pixel size it was built at, which
// the renderers need for baseline math.
type SizedFace struct {
	Face font.Face
	Size float64
}

// Heading returns the bold display face at the given pixel size.
func (fs *FontSet) Heading(size float64) SizedFace {
	return SizedFace{fs.face("heading", fs.heading, size), size}
}

// Body returns the text face at the given pixel size.
func (fs *FontSet) Body(size float64) SizedFace {
	return SizedFace{fs.face("body", fs.body, size), size}
}

// BodyBold returns the bold face at body sizes, used for badges and
// calls to action.
func (fs *FontSet) BodyBold(size float64) SizedFace {
	return SizedFace{fs.face("bodybold", fs.heading, size), size}
}

// Italic returns the caption face at the given pixel size.
func (fs *FontSet) Italic(size float64) SizedFace {
	return SizedFace{fs.face("italic", fs.italic, size), size}
}
