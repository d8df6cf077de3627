// Package assets resolves scene imagery: direct URLs first, then stock
// media lookups, then generated placeholders. Every failure degrades to
// a nil image, the renderers all have imageless paths.
package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/blog2video/internal/storyline"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

const (
	defaultPexelsBase       = "https://api.pexels.com/v1/search"
	defaultPixabayBase      = "https://pixabay.com/api/"
	defaultPollinationsBase = "https://image.pollinations.ai/prompt/"
)

// Loader fetches and decodes remote images with a URL-keyed cache.
type Loader struct {
	Client     *http.Client
	PexelsKey  string
	PixabayKey string
	Workers    int

	// overridable in tests
	PexelsBase       string
	PixabayBase      string
	PollinationsBase string

	mu    sync.Mutex
	cache map[string]image.Image
}

func NewLoader(pexelsKey, pixabayKey string, workers int) *Loader {
	if workers < 1 {
		workers = 4
	}
	return &Loader{
		Client:           &http.Client{Timeout: 20 * time.Second},
		PexelsKey:        pexelsKey,
		PixabayKey:       pixabayKey,
		Workers:          workers,
		PexelsBase:       defaultPexelsBase,
		PixabayBase:      defaultPixabayBase,
		PollinationsBase: defaultPollinationsBase,
		cache:            make(map[string]image.Image),
	}
}

// Resolve fills Scene.Image for the whole storyline. Scenes are
// processed in parallel, bounded by Workers. Never fails the run:
// scenes whose imagery cannot be found render without one.
func (l *Loader) Resolve(ctx context.Context, scenes []storyline.Scene) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.Workers)
	for i := range scenes {
		s := &scenes[i]
		g.Go(func() error {
			l.resolveScene(ctx, s)
			return nil
		})
	}
	g.Wait()
}

func (l *Loader) resolveScene(ctx context.Context, s *storyline.Scene) {
	if s.ImageURL != "" {
		if img, err := l.FetchImage(ctx, s.ImageURL); err == nil {
			s.Image = img
			return
		}
		s.ImageURL = ""
	}
	if s.Type != storyline.SceneContent {
		return
	}

	// stock media lookup from the distinctive words of the narration
	if kw := Keywords(s.Text, 5, 3); kw != "" {
		fmt.Printf("[*] Fetching stock: %s...\n", kw)
		if u := l.stockImageURL(ctx, kw); u != "" {
			if img, err := l.FetchImage(ctx, u); err == nil {
				s.ImageURL = u
				s.Image = img
				return
			}
		}
	}

	// generated image as the last resort
	if kw := Keywords(s.Text, 4, 5); kw != "" {
		u := l.PollinationsBase + url.PathEscape(kw+" cinematic") + "?width=1280&height=720&nologo=true"
		if img, err := l.FetchImage(ctx, u); err == nil {
			s.ImageURL = u
			s.Image = img
		}
	}
}

// Keywords picks up to max words longer than minLen runes.
func Keywords(text string, minLen, max int) string {
	var out []string
	for _, w := range strings.Fields(text) {
		if len([]rune(w)) > minLen {
			out = append(out, w)
			if len(out) == max {
				break
			}
		}
	}
	return strings.Join(out, " ")
}

// FetchImage downloads and decodes one image, caching by URL.
func (l *Loader) FetchImage(ctx context.Context, u string) (image.Image, error) {
	l.mu.Lock()
	if img, ok := l.cache[u]; ok {
		l.mu.Unlock()
		return img, nil
	}
	l.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch %s: status %d", u, resp.StatusCode)
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("image decode %s: %w", u, err)
	}

	l.mu.Lock()
	l.cache[u] = img
	l.mu.Unlock()
	return img, nil
}

type pexelsResponse struct {
	Photos []struct {
		Src struct {
			Large2x string `json:"large2x"`
		} `json:"src"`
	} `json:"photos"`
}

type pixabayResponse struct {
	Hits []struct {
		LargeImageURL string `json:"largeImageURL"`
	} `json:"hits"`
}

// stockImageURL asks Pexels then Pixabay for a photo URL. Returns ""
// when neither has a key or a hit.
func (l *Loader) stockImageURL(ctx context.Context, query string) string {
	if l.PexelsKey != "" {
		u := l.PexelsBase + "?query=" + url.QueryEscape(query) + "&per_page=1&orientation=landscape"
		var pr pexelsResponse
		if err := l.getJSON(ctx, u, l.PexelsKey, &pr); err != nil {
			fmt.Printf("[!] Pexels fetch failed: %v\n", err)
		} else if len(pr.Photos) > 0 {
			return pr.Photos[0].Src.Large2x
		}
	}
	if l.PixabayKey != "" {
		u := l.PixabayBase + "?key=" + url.QueryEscape(l.PixabayKey) +
			"&q=" + url.QueryEscape(query) + "&per_page=3&image_type=photo&orientation=horizontal"
		var pr pixabayResponse
		if err := l.getJSON(ctx, u, "", &pr); err != nil {
			fmt.Printf("[!] Pixabay fetch failed: %v\n", err)
		} else if len(pr.Hits) > 0 {
			return pr.Hits[0].LargeImageURL
		}
	}
	return ""
}

func (l *Loader) getJSON(ctx context.Context, u, auth string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := l.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
