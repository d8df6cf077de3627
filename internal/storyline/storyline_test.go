package storyline

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivlev/blog2video/internal/content"
	"github.com/ivlev/blog2video/internal/theme"
)

func testTheme() *theme.Theme {
	th := theme.Resolve(theme.RawStyle{})
	return &th
}

func countType(scenes []Scene, t SceneType) int {
	n := 0
	for i := range scenes {
		if scenes[i].Type == t {
			n++
		}
	}
	return n
}

func TestBuildEmptyInput(t *testing.T) {
	in := &content.Input{}
	in.Normalize()

	scenes := Build(in, testTheme(), DefaultMinRuntime)

	if TotalDuration(scenes) < DefaultMinRuntime {
		t.Errorf("Total duration %.1f below floor %.1f", TotalDuration(scenes), DefaultMinRuntime)
	}
	if n := countType(scenes, SceneContent); n != 1 {
		t.Errorf("Expected exactly one content scene, got %d", n)
	}
	for i := range scenes {
		if scenes[i].Type == SceneContent && scenes[i].Text != "Untitled" {
			t.Errorf("Fallback content text should be the title, got %q", scenes[i].Text)
		}
	}

	// Minimum skeleton: intro, title, content, takeaway, outro
	if len(scenes) < 5 {
		t.Errorf("Expected at least 5 scenes, got %d", len(scenes))
	}
	if scenes[0].Type != SceneBrandIntro || scenes[1].Type != SceneTitleCard {
		t.Error("Storyline must open with brand intro then title card")
	}
	if scenes[len(scenes)-1].Type != SceneOutro || scenes[len(scenes)-2].Type != SceneTakeaway {
		t.Error("Storyline must close with takeaway then outro")
	}
}

func TestBuildContentScenes(t *testing.T) {
	in := &content.Input{
		Title:      "Test",
		Paragraphs: []string{"One.", "Two.", "Three."},
	}
	in.Normalize()

	scenes := Build(in, testTheme(), DefaultMinRuntime)

	want := 1
	for i := range scenes {
		s := &scenes[i]
		if s.Type != SceneContent {
			continue
		}
		if s.SceneNumber != want {
			t.Errorf("Expected scene number %d, got %d", want, s.SceneNumber)
		}
		if s.TotalScenes != 3 {
			t.Errorf("Expected total 3, got %d", s.TotalScenes)
		}
		want++
	}
	if want-1 != 3 {
		t.Errorf("Expected 3 content scenes, got %d", want-1)
	}
}

func TestRoundRobinImages(t *testing.T) {
	in := &content.Input{
		Title:         "Test",
		FeaturedImage: "a.png",
		ContentImages: []string{"b.png"},
		Paragraphs:    []string{"p1", "p2", "p3"},
	}
	in.Normalize()

	scenes := Build(in, testTheme(), 0)

	var got []string
	for i := range scenes {
		if scenes[i].Type == SceneContent {
			got = append(got, scenes[i].ImageURL)
		}
	}
	// imgs = [a b]; content i gets imgs[(i+1)%2]: b, a, b
	expected := []string{"b.png", "a.png", "b.png"}
	for i, e := range expected {
		if got[i] != e {
			t.Errorf("Content scene %d: expected image %s, got %s", i+1, e, got[i])
		}
	}

	if scenes[1].ImageURL != "a.png" {
		t.Errorf("Title card should use the featured image, got %s", scenes[1].ImageURL)
	}
}

func TestEnsureMinRuntimeIdempotent(t *testing.T) {
	in := &content.Input{Title: "T", Paragraphs: []string{"a", "b"}}
	in.Normalize()

	scenes := Build(in, testTheme(), 30)
	first := make([]float64, len(scenes))
	for i := range scenes {
		first[i] = scenes[i].Duration
	}

	// A compliant timeline must pass through unchanged
	EnsureMinRuntime(scenes, 30)
	for i := range scenes {
		if math.Abs(scenes[i].Duration-first[i]) > 1e-9 {
			t.Errorf("Scene %d duration changed on second pass: %.2f -> %.2f", i, first[i], scenes[i].Duration)
		}
	}
}

func TestEnsureMinRuntimeOnlyContentGrows(t *testing.T) {
	in := &content.Input{Title: "T", Paragraphs: []string{"a"}}
	in.Normalize()

	scenes := Build(in, testTheme(), 60)

	for i := range scenes {
		s := &scenes[i]
		switch s.Type {
		case SceneBrandIntro, SceneTitleCard:
			if s.Duration != durIntro {
				t.Errorf("%s duration changed to %.1f", s.Type, s.Duration)
			}
		case SceneTakeaway, SceneOutro:
			if s.Duration != durTakeaway {
				t.Errorf("%s duration changed to %.1f", s.Type, s.Duration)
			}
		}
	}
	if TotalDuration(scenes) < 60 {
		t.Errorf("Floor not reached: %.1f", TotalDuration(scenes))
	}
}

func TestChartFromTable(t *testing.T) {
	in := &content.Input{
		Title: "T",
		Tables: []content.Table{{Rows: [][]string{
			{"Quarter", "Revenue"},
			{"Q1", "$1,200"},
			{"Q2", "$2,400.50"},
			{"Q3", "980"},
		}}},
	}
	in.Normalize()

	scenes := Build(in, testTheme(), 0)

	var chart *Scene
	for i := range scenes {
		if scenes[i].Type == SceneBarChart {
			chart = &scenes[i]
		}
	}
	if chart == nil {
		t.Fatal("Expected a bar chart scene from table rows")
	}
	if len(chart.Data) != 3 {
		t.Fatalf("Expected min(rows-1, 6) = 3 data points, got %d", len(chart.Data))
	}
	if chart.Data[0].Value != 1200 {
		t.Errorf(`"$1,200" should parse to 1200, got %v`, chart.Data[0].Value)
	}
	if chart.Data[1].Value != 2400.50 {
		t.Errorf(`"$2,400.50" should parse to 2400.5, got %v`, chart.Data[1].Value)
	}
	if chart.Title != "Quarter" {
		t.Errorf("Chart title should come from the header row, got %q", chart.Title)
	}
}

func TestChartTableCap(t *testing.T) {
	rows := [][]string{{"H", "V"}}
	for i := 0; i < 10; i++ {
		rows = append(rows, []string{"r", "1"})
	}
	in := &content.Input{Title: "T", Tables: []content.Table{{Rows: rows}}}
	in.Normalize()

	scenes := Build(in, testTheme(), 0)
	for i := range scenes {
		if scenes[i].Type == SceneBarChart && len(scenes[i].Data) != 6 {
			t.Errorf("Expected cap at 6 points, got %d", len(scenes[i].Data))
		}
	}
}

func TestPercentageStatsPieChart(t *testing.T) {
	in := &content.Input{
		Title: "Test",
		Stats: []content.Stat{
			{Label: "Growth", Value: 42, Unit: "%"},
			{Label: "Retention", Value: 88, Unit: "%"},
		},
	}
	in.Normalize()

	scenes := Build(in, testTheme(), DefaultMinRuntime)

	var pie *Scene
	for i := range scenes {
		if scenes[i].Type == ScenePieChart {
			pie = &scenes[i]
		}
	}
	if pie == nil {
		t.Fatal("Expected a pie chart from two percentage stats")
	}
	if len(pie.Data) != 2 {
		t.Fatalf("Expected 2 data points, got %d", len(pie.Data))
	}
	if sum := pie.Data[0].Value + pie.Data[1].Value; sum != 130 {
		t.Errorf("Raw values should sum to 130, got %v", sum)
	}

	// Percentage-only stats also produce the bar rendition
	if countType(scenes, SceneBarChart) != 1 {
		t.Error("Expected a Key Metrics bar chart for percentage-only stats")
	}
}

func TestEndToEndTimelineShape(t *testing.T) {
	in := &content.Input{
		Title:      "Test",
		Paragraphs: []string{"Sentence one.", "Sentence two."},
	}
	in.Normalize()

	scenes := Build(in, testTheme(), DefaultMinRuntime)

	expected := []SceneType{SceneBrandIntro, SceneTitleCard, SceneContent, SceneContent, SceneTakeaway, SceneOutro}
	if len(scenes) != len(expected) {
		t.Fatalf("Expected %d scenes, got %d", len(expected), len(scenes))
	}
	for i, e := range expected {
		if scenes[i].Type != e {
			t.Errorf("Scene %d: expected %s, got %s", i, e, scenes[i].Type)
		}
	}
	if TotalDuration(scenes) < DefaultMinRuntime {
		t.Errorf("Total duration %.1f below floor", TotalDuration(scenes))
	}
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"$1,200", 1200},
		{"42%", 42},
		{"3.5k users", 3.5},
		{"n/a", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseNumeric(tt.in); got != tt.want {
			t.Errorf("parseNumeric(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPlanWriteRead(t *testing.T) {
	in := &content.Input{Title: "Plan", Paragraphs: []string{"a"}}
	in.Normalize()
	scenes := Build(in, testTheme(), DefaultMinRuntime)

	tmp := filepath.Join(t.TempDir(), "plan.yaml")
	if err := WritePlan(ToPlan(scenes), tmp); err != nil {
		t.Fatalf("WritePlan failed: %v", err)
	}

	p, err := ReadPlan(tmp)
	if err != nil {
		t.Fatalf("ReadPlan failed: %v", err)
	}
	if len(p.Scenes) != len(scenes) {
		t.Errorf("Plan scene count mismatch: %d vs %d", len(p.Scenes), len(scenes))
	}
	if p.Scenes[1].Title != "Plan" {
		t.Errorf("Title card plan entry lost its title: %+v", p.Scenes[1])
	}

	os.Remove(tmp)
}

func TestPlanTimelineRoundTrip(t *testing.T) {
	in := &content.Input{
		Title:      "Plan",
		Paragraphs: []string{"first", "second"},
		SiteName:   "Site",
		SiteURL:    "https://example.com",
	}
	in.Normalize()
	th := testTheme()
	built := Build(in, th, DefaultMinRuntime)

	back := ToPlan(built).Timeline(in, th)
	if len(back) != len(built) {
		t.Fatalf("Rebuilt scene count %d, want %d", len(back), len(built))
	}
	for i := range built {
		if back[i].Type != built[i].Type || back[i].Duration != built[i].Duration {
			t.Errorf("Scene %d: %s/%.1fs, want %s/%.1fs",
				i, back[i].Type, back[i].Duration, built[i].Type, built[i].Duration)
		}
		if back[i].Text != built[i].Text || back[i].ImageURL != built[i].ImageURL {
			t.Errorf("Scene %d content drifted: %+v", i, back[i])
		}
		if back[i].SiteName != "Site" || back[i].Theme != th {
			t.Errorf("Scene %d lost site or theme: %+v", i, back[i])
		}
	}
	if back[len(back)-1].SiteURL != "https://example.com" {
		t.Error("Outro must carry the site URL after a plan round trip")
	}
}
