package storyline

import (
	"image"
	"math"
	"regexp"
	"strconv"

	"github.com/ivlev/blog2video/internal/content"
	"github.com/ivlev/blog2video/internal/theme"
)

// SceneType tags the visual treatment of one timed segment.
type SceneType string

const (
	SceneBrandIntro SceneType = "brand_intro"
	SceneTitleCard  SceneType = "title_card"
	SceneImageSlide SceneType = "image_slide"
	SceneContent    SceneType = "content"
	SceneBarChart   SceneType = "bar_chart"
	ScenePieChart   SceneType = "pie_chart"
	SceneTakeaway   SceneType = "takeaway"
	SceneOutro      SceneType = "outro"
)

var labels = map[SceneType]string{
	SceneBrandIntro: "🏠 Intro",
	SceneTitleCard:  "📰 Title",
	SceneImageSlide: "🖼 Image",
	SceneContent:    "📝 Content",
	SceneBarChart:   "📊 Bar Chart",
	ScenePieChart:   "📈 Pie Chart",
	SceneTakeaway:   "💡 Takeaway",
	SceneOutro:      "👋 Outro",
}

// DataPoint is one labeled value on a chart scene.
type DataPoint struct {
	Label string  `yaml:"label"`
	Value float64 `yaml:"value"`
	Unit  string  `yaml:"unit,omitempty"`
}

// Scene is one segment of the storyline. Immutable after Build except
// for Image, which the asset loader resolves (nil on load failure),
// and Duration, which the floor distribution may raise.
type Scene struct {
	Type     SceneType
	Duration float64

	Title   string
	Text    string
	Caption string

	ImageURL string
	Image    image.Image

	SceneNumber int
	TotalScenes int

	Data []DataPoint

	SiteName string
	SiteURL  string
	SiteDesc string

	Theme *theme.Theme
}

// Label is the human-readable scene tag used in progress reporting.
func (s *Scene) Label() string {
	if l, ok := labels[s.Type]; ok {
		return l
	}
	return string(s.Type)
}

// Scene pacing, in seconds.
const (
	durIntro          = 3.5
	durTitle          = 3.5
	durImageSlide     = 3.5
	durContent        = 4.5
	durContentSingle  = 6.0
	durChart          = 4.0
	durTakeaway       = 4.0
	durOutro          = 4.0
	maxImageSlides    = 3
	maxChartPoints    = 6
	minChartPoints    = 2
	DefaultMinRuntime = 20.0
)

var nonNumericRe = regexp.MustCompile(`[^0-9.]`)

// parseNumeric extracts the numeric value from a table cell,
// stripping currency signs, separators and units ("$1,200" -> 1200).
func parseNumeric(s string) float64 {
	v, err := strconv.ParseFloat(nonNumericRe.ReplaceAllString(s, ""), 64)
	if err != nil {
		return 0
	}
	return v
}

// Build transforms a content payload into the ordered scene sequence.
// The sequence always opens with brand intro + title card and closes
// with takeaway + outro; the middle is driven by what the post has.
func Build(in *content.Input, th *theme.Theme, minRuntime float64) []Scene {
	imgs := in.Images()
	imgAt := func(i int) string {
		if len(imgs) == 0 {
			return ""
		}
		return imgs[i%len(imgs)]
	}

	sc := []Scene{
		{
			Type: SceneBrandIntro, Duration: durIntro,
			SiteName: in.SiteName, SiteURL: in.SiteURL, SiteDesc: in.SiteDescription,
		},
		{
			Type: SceneTitleCard, Duration: durTitle,
			Title: in.Title, ImageURL: imgAt(0), SiteName: in.SiteName,
		},
	}

	for i, im := range in.ImageData {
		if i >= maxImageSlides {
			break
		}
		sc = append(sc, Scene{
			Type: SceneImageSlide, Duration: durImageSlide,
			ImageURL: im.Src, Caption: im.Alt, SiteName: in.SiteName,
		})
	}

	if len(in.Paragraphs) > 0 {
		total := len(in.Paragraphs)
		for i, text := range in.Paragraphs {
			// i+1: the first content scene skips the title-card image
			sc = append(sc, Scene{
				Type: SceneContent, Duration: durContent,
				Text: text, SceneNumber: i + 1, TotalScenes: total,
				ImageURL: imgAt(i + 1), SiteName: in.SiteName,
			})
		}
	} else {
		text := in.Excerpt
		if text == "" {
			text = in.Title
		}
		sc = append(sc, Scene{
			Type: SceneContent, Duration: durContentSingle,
			Text: text, SceneNumber: 1, TotalScenes: 1,
			ImageURL: imgAt(0), SiteName: in.SiteName,
		})
	}

	sc = append(sc, buildChartScenes(in)...)

	takeaway := in.Excerpt
	if takeaway == "" && len(in.Paragraphs) > 0 {
		takeaway = in.Paragraphs[0]
	}
	if takeaway == "" {
		takeaway = in.Title
	}
	sc = append(sc,
		Scene{Type: SceneTakeaway, Duration: durTakeaway, Text: takeaway, SiteName: in.SiteName},
		Scene{Type: SceneOutro, Duration: durOutro, Title: in.Title, SiteName: in.SiteName, SiteURL: in.SiteURL},
	)

	EnsureMinRuntime(sc, minRuntime)

	for i := range sc {
		sc[i].Theme = th
	}
	return sc
}

// buildChartScenes derives pie/bar scenes from extracted stats and the
// first usable table. The stat split heuristic is preserved from the
// reference behavior: percentages feed a pie, the rest feed bars, and
// percentage-only posts still get a bar rendition.
func buildChartScenes(in *content.Input) []Scene {
	var out []Scene

	if len(in.Stats) >= minChartPoints {
		var pct, num []DataPoint
		for _, s := range in.Stats {
			dp := DataPoint{Label: s.Label, Value: s.Value, Unit: s.Unit}
			if s.Unit == "%" {
				pct = append(pct, dp)
			} else {
				num = append(num, dp)
			}
		}
		if len(pct) >= minChartPoints {
			out = append(out, Scene{
				Type: ScenePieChart, Duration: durChart,
				Data: capPoints(pct), Title: "Key Statistics", SiteName: in.SiteName,
			})
		}
		if len(num) >= minChartPoints {
			out = append(out, Scene{
				Type: SceneBarChart, Duration: durChart,
				Data: capPoints(num), Title: "By the Numbers", SiteName: in.SiteName,
			})
		} else if len(pct) >= minChartPoints && len(num) == 0 {
			out = append(out, Scene{
				Type: SceneBarChart, Duration: durChart,
				Data: capPoints(pct), Title: "Key Metrics", SiteName: in.SiteName,
			})
		}
	}

	if len(in.Tables) > 0 {
		tbl := in.Tables[0]
		if len(tbl.Rows) >= 2 {
			var points []DataPoint
			for r := 1; r < len(tbl.Rows) && r < maxChartPoints+1; r++ {
				row := tbl.Rows[r]
				label := "Item " + strconv.Itoa(r)
				if len(row) > 0 && row[0] != "" {
					label = row[0]
				}
				val := 0.0
				if len(row) > 1 {
					val = parseNumeric(row[1])
				}
				points = append(points, DataPoint{Label: label, Value: val})
			}
			if len(points) >= minChartPoints {
				title := "Data Overview"
				if len(tbl.Rows[0]) > 0 && tbl.Rows[0][0] != "" {
					title = tbl.Rows[0][0]
				}
				out = append(out, Scene{
					Type: SceneBarChart, Duration: durChart,
					Data: points, Title: title, SiteName: in.SiteName,
				})
			}
		}
	}

	return out
}

func capPoints(pts []DataPoint) []DataPoint {
	if len(pts) > maxChartPoints {
		return pts[:maxChartPoints]
	}
	return pts
}

// TotalDuration sums scene durations in seconds.
func TotalDuration(scenes []Scene) float64 {
	total := 0.0
	for i := range scenes {
		total += scenes[i].Duration
	}
	return total
}

// EnsureMinRuntime distributes any shortfall below the floor evenly
// across content scenes, ceiling-divided. Already-compliant timelines
// are left untouched, so the pass is idempotent.
func EnsureMinRuntime(scenes []Scene, floor float64) {
	if floor <= 0 {
		floor = DefaultMinRuntime
	}
	total := TotalDuration(scenes)
	if total >= floor {
		return
	}

	var contentIdx []int
	for i := range scenes {
		if scenes[i].Type == SceneContent {
			contentIdx = append(contentIdx, i)
		}
	}
	n := len(contentIdx)
	if n == 0 {
		n = 1
	}

	extra := math.Ceil((floor - total) / float64(n))
	for _, i := range contentIdx {
		scenes[i].Duration += extra
	}
}
