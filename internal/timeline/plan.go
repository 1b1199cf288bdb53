package timeline

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/chess2video/internal/theory"
)

// PlanVersion is written into every plan file.
const PlanVersion = "1.0"

// Plan is the scheduled video written to disk for inspection or later review.
type Plan struct {
	Version       string    `yaml:"version" json:"version"`
	Title         string    `yaml:"title,omitempty" json:"title,omitempty"`
	Defaults      Defaults  `yaml:"defaults" json:"defaults"`
	MoveCount     int       `yaml:"move_count" json:"move_count"`
	TotalDuration float64   `yaml:"total_duration" json:"total_duration"`
	TotalFrames   int       `yaml:"total_frames" json:"total_frames"`
	Segments      []Segment `yaml:"segments" json:"segments"`
}

// NewPlan schedules doc and wraps the result with its totals.
func NewPlan(doc *theory.Document, d Defaults) *Plan {
	segments := Schedule(doc, d)
	return &Plan{
		Version:       PlanVersion,
		Title:         doc.Title,
		Defaults:      d,
		MoveCount:     doc.MoveCount,
		TotalDuration: TotalDuration(doc, d),
		TotalFrames:   TotalFrames(segments),
		Segments:      segments,
	}
}

// WritePlan writes a plan to a YAML file
func WritePlan(plan *Plan, path string) error {
	data, err := yaml.Marshal(plan)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// ReadPlan reads a plan from a YAML file
func ReadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, err
	}

	return &plan, nil
}

// PlanPathFor derives "<video>.plan.yaml" from the output video path.
func PlanPathFor(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".plan.yaml"
}
