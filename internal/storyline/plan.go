package storyline

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/blog2video/internal/content"
	"github.com/ivlev/blog2video/internal/theme"
)

// Plan is the serializable form of a built storyline, used to inspect
// or hand-tune the scene sequence before a run.
type Plan struct {
	Version string      `yaml:"version"`
	Scenes  []PlanScene `yaml:"scenes"`
}

// PlanScene mirrors Scene minus the runtime-only fields (decoded
// images, theme reference).
type PlanScene struct {
	Type        SceneType   `yaml:"type"`
	Duration    float64     `yaml:"duration"`
	Title       string      `yaml:"title,omitempty"`
	Text        string      `yaml:"text,omitempty"`
	Caption     string      `yaml:"caption,omitempty"`
	ImageURL    string      `yaml:"image,omitempty"`
	SceneNumber int         `yaml:"scene_number,omitempty"`
	TotalScenes int         `yaml:"total_scenes,omitempty"`
	Data        []DataPoint `yaml:"data,omitempty"`
}

// ToPlan strips a storyline down to its serializable form.
func ToPlan(scenes []Scene) *Plan {
	p := &Plan{Version: "1.0", Scenes: make([]PlanScene, len(scenes))}
	for i := range scenes {
		s := &scenes[i]
		p.Scenes[i] = PlanScene{
			Type:        s.Type,
			Duration:    s.Duration,
			Title:       s.Title,
			Text:        s.Text,
			Caption:     s.Caption,
			ImageURL:    s.ImageURL,
			SceneNumber: s.SceneNumber,
			TotalScenes: s.TotalScenes,
			Data:        s.Data,
		}
	}
	return p
}

// Timeline rebuilds a renderable storyline from the plan. Site fields
// and the theme come from the content payload; durations are taken
// as-is, a hand-tuned plan is not re-floored. Images are resolved
// later by the asset loader.
func (p *Plan) Timeline(in *content.Input, th *theme.Theme) []Scene {
	sc := make([]Scene, len(p.Scenes))
	for i := range p.Scenes {
		ps := &p.Scenes[i]
		sc[i] = Scene{
			Type:        ps.Type,
			Duration:    ps.Duration,
			Title:       ps.Title,
			Text:        ps.Text,
			Caption:     ps.Caption,
			ImageURL:    ps.ImageURL,
			SceneNumber: ps.SceneNumber,
			TotalScenes: ps.TotalScenes,
			Data:        ps.Data,
			SiteName:    in.SiteName,
			SiteURL:     in.SiteURL,
			SiteDesc:    in.SiteDescription,
			Theme:       th,
		}
	}
	return sc
}

// WritePlan writes a storyline plan to a YAML file.
func WritePlan(p *Plan, path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadPlan reads a storyline plan from a YAML file.
func ReadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
