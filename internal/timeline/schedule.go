// Package timeline turns a theory document into an ordered list of video
// segments. Scheduling is a pure function of the document and the defaults.
package timeline

import (
	"fmt"
	"math"

	"github.com/ivlev/chess2video/internal/theory"
)

// Kind is the role of a segment in the video.
type Kind string

const (
	KindIntro Kind = "intro"
	KindMove  Kind = "move"
	KindOutro Kind = "outro"
)

// OutroCaption is shown under the final position.
const OutroCaption = "End of theory demonstration"

// TransitionShare is the part of a move segment spent before the move lands.
const TransitionShare = 0.3

// Defaults are the durations used when the document has no override.
type Defaults struct {
	MoveDuration  float64 `yaml:"move_duration" json:"move_duration"`
	FPS           int     `yaml:"fps" json:"fps"`
	IntroDuration float64 `yaml:"intro_duration" json:"intro_duration"`
	OutroDuration float64 `yaml:"outro_duration" json:"outro_duration"`
}

func DefaultSettings() Defaults {
	return Defaults{
		MoveDuration:  2.0,
		FPS:           30,
		IntroDuration: 3.0,
		OutroDuration: 2.0,
	}
}

// Segment is one self-contained unit of output with a fixed frame count.
// Move segments carry the position before and after the move; the outro
// carries the final position in both fields.
type Segment struct {
	Kind             Kind    `yaml:"kind" json:"kind"`
	Index            int     `yaml:"index" json:"index"`
	Duration         float64 `yaml:"duration" json:"duration"`
	Frames           int     `yaml:"frames" json:"frames"`
	TransitionFrames int     `yaml:"transition_frames,omitempty" json:"transition_frames,omitempty"`
	HoldFrames       int     `yaml:"hold_frames,omitempty" json:"hold_frames,omitempty"`

	Title       string `yaml:"title,omitempty" json:"title,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Caption     string `yaml:"caption,omitempty" json:"caption,omitempty"`

	SAN       string `yaml:"san,omitempty" json:"san,omitempty"`
	From      string `yaml:"from,omitempty" json:"from,omitempty"`
	To        string `yaml:"to,omitempty" json:"to,omitempty"`
	FENBefore string `yaml:"fen_before,omitempty" json:"fen_before,omitempty"`
	FENAfter  string `yaml:"fen_after,omitempty" json:"fen_after,omitempty"`
}

// FrameCount converts seconds into a whole number of frames.
func FrameCount(seconds float64, fps int) int {
	return int(math.Round(seconds * float64(fps)))
}

// SplitFrames divides a move segment into transition and hold phases.
// The two parts always add up to frames.
func SplitFrames(frames int) (transition, hold int) {
	transition = int(math.Round(float64(frames) * TransitionShare))
	if transition > frames {
		transition = frames
	}
	return transition, frames - transition
}

// DefaultCaption is the annotation used for moves the author did not comment on.
func DefaultCaption(index int, san string) string {
	return fmt.Sprintf("Move %d: %s", index+1, san)
}

// HasIntro reports whether the document gets a title card.
func HasIntro(doc *theory.Document) bool {
	return doc.Title != "" || doc.Description != ""
}

// moveDuration resolves the duration of move i.
func moveDuration(timings map[int]float64, i int, d Defaults) float64 {
	if s, ok := timings[i]; ok {
		return s
	}
	return d.MoveDuration
}

// Schedule walks the document once and returns intro, move and outro segments in order.
func Schedule(doc *theory.Document, d Defaults) []Segment {
	timings := doc.TimingMap()
	annotations := doc.AnnotationMap()
	segments := make([]Segment, 0, len(doc.Moves)+2)

	if HasIntro(doc) {
		segments = append(segments, Segment{
			Kind:        KindIntro,
			Index:       -1,
			Duration:    d.IntroDuration,
			Frames:      FrameCount(d.IntroDuration, d.FPS),
			Title:       doc.Title,
			Description: doc.Description,
		})
	}

	for i, m := range doc.Moves {
		dur := moveDuration(timings, i, d)
		frames := FrameCount(dur, d.FPS)
		transition, hold := SplitFrames(frames)

		caption, ok := annotations[i]
		if !ok {
			caption = DefaultCaption(i, m.SAN)
		}

		segments = append(segments, Segment{
			Kind:             KindMove,
			Index:            i,
			Duration:         dur,
			Frames:           frames,
			TransitionFrames: transition,
			HoldFrames:       hold,
			Caption:          caption,
			SAN:              m.SAN,
			From:             m.From,
			To:               m.To,
			FENBefore:        m.FENBefore,
			FENAfter:         m.FENAfter,
		})
	}

	final := doc.FinalFEN()
	segments = append(segments, Segment{
		Kind:      KindOutro,
		Index:     -1,
		Duration:  d.OutroDuration,
		Frames:    FrameCount(d.OutroDuration, d.FPS),
		Caption:   OutroCaption,
		FENBefore: final,
		FENAfter:  final,
	})

	return segments
}

// TotalDuration predicts the video length in seconds without building segments.
// The intro duration is always counted, even when the document has no title
// and Schedule emits no intro segment; TotalFrames gives the exact length.
func TotalDuration(doc *theory.Document, d Defaults) float64 {
	timings := doc.TimingMap()
	total := d.IntroDuration + d.OutroDuration
	for i := range doc.Moves {
		total += moveDuration(timings, i, d)
	}
	return total
}

// TotalFrames is the exact number of frames the sink will receive.
func TotalFrames(segments []Segment) int {
	n := 0
	for _, s := range segments {
		n += s.Frames
	}
	return n
}
