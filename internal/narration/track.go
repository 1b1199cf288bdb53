package narration

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/ivlev/chess2video/internal/timeline"
	"github.com/ivlev/chess2video/internal/video"
)

// Script is the text spoken over a segment. The outro is silent.
func Script(seg timeline.Segment) string {
	switch seg.Kind {
	case timeline.KindIntro:
		parts := make([]string, 0, 2)
		for _, s := range []string{seg.Title, seg.Description} {
			if s = strings.TrimSpace(s); s != "" {
				parts = append(parts, strings.TrimRight(s, "."))
			}
		}
		if len(parts) == 0 {
			return ""
		}
		return strings.Join(parts, ". ") + "."
	case timeline.KindMove:
		return seg.Caption
	default:
		return ""
	}
}

// Prepare synthesizes one clip per segment into dir. Each clip lasts as
// long as the frames of its segment at fps, so the track stays in sync
// with the video. Segments whose synthesis fails fall back to silence;
// the second result counts clips that carry speech.
func Prepare(ctx context.Context, s Synthesizer, segments []timeline.Segment, fps int, dir string) ([]video.Clip, int, error) {
	if fps <= 0 {
		return nil, 0, fmt.Errorf("invalid fps %d", fps)
	}
	clips := make([]video.Clip, len(segments))
	spoken := 0

	for i, seg := range segments {
		clips[i] = video.Clip{Duration: float64(seg.Frames) / float64(fps)}

		text := Script(seg)
		if text == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		path, err := s.Synthesize(ctx, text, filepath.Join(dir, fmt.Sprintf("narration_%03d", i)))
		if err != nil {
			log.Printf("[!] Озвучка сегмента %d пропущена: %v", i, err)
			continue
		}
		if path != "" {
			clips[i].Path = path
			spoken++
		}
	}
	return clips, spoken, nil
}
