package content

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ivlev/blog2video/internal/theme"
)

// Input is the payload handed over by the host content-extraction
// collaborator. Treated as read-only; missing fields are normalized
// to empty values by Normalize.
type Input struct {
	PostID          int        `json:"post_id"`
	Title           string     `json:"post_title"`
	Excerpt         string     `json:"post_excerpt"`
	Paragraphs      []string   `json:"paragraphs"`
	FeaturedImage   string     `json:"post_image"`
	ContentImages   []string   `json:"content_images"`
	ImageData       []ImageRef `json:"image_data"`
	Tables          []Table    `json:"chart_data"`
	Stats           []Stat     `json:"stats"`
	SiteName        string     `json:"site_name"`
	SiteURL         string     `json:"site_url"`
	SiteDescription string     `json:"site_description"`

	Style theme.RawStyle `json:"theme_style"`
}

// ImageRef is a standalone image with its caption.
type ImageRef struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Table is a raw table lifted from the post body, header row included.
type Table struct {
	Rows [][]string `json:"rows"`
}

// Stat is one extracted numeric statistic. Unit "%" marks percentages.
type Stat struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

const maxStats = 8

// Normalize fills in defaults for missing fields: nil slices become
// empty, strings are trimmed, the title gets a fallback and the stat
// list is capped.
func (in *Input) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		in.Title = "Untitled"
	}
	in.Excerpt = strings.TrimSpace(in.Excerpt)
	if in.SiteName == "" {
		in.SiteName = "Our Website"
	}
	if in.Paragraphs == nil {
		in.Paragraphs = []string{}
	}
	if in.ContentImages == nil {
		in.ContentImages = []string{}
	}
	if in.ImageData == nil {
		in.ImageData = []ImageRef{}
	}
	if in.Tables == nil {
		in.Tables = []Table{}
	}
	if in.Stats == nil {
		in.Stats = []Stat{}
	}
	if len(in.Stats) > maxStats {
		in.Stats = in.Stats[:maxStats]
	}
}

// Images returns the featured image followed by in-content images,
// empty entries dropped. Order matters: index 0 backs the title card.
func (in *Input) Images() []string {
	imgs := make([]string, 0, 1+len(in.ContentImages))
	if in.FeaturedImage != "" {
		imgs = append(imgs, in.FeaturedImage)
	}
	for _, u := range in.ContentImages {
		if u != "" {
			imgs = append(imgs, u)
		}
	}
	return imgs
}

// Load reads and normalizes a content payload from a JSON file.
func Load(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var in Input
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to parse content payload %s: %w", path, err)
	}
	in.Normalize()
	return &in, nil
}
