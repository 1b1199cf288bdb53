package renderer

import (
	"fmt"
	"math"
	"strings"
)

// GenerateFadeFilter creates an FFmpeg video filter that fades the whole video
// in from black at the start and out at the end. Returns "" when fade is off.
func GenerateFadeFilter(totalDuration, fade float64) string {
	if fade <= 0 || totalDuration <= 0 {
		return ""
	}
	// Both fades must fit into the video
	if fade*2 > totalDuration {
		fade = totalDuration / 2
	}

	parts := []string{
		fmt.Sprintf("fade=t=in:st=0:d=%.3f", fade),
		fmt.Sprintf("fade=t=out:st=%.3f:d=%.3f", totalDuration-fade, fade),
	}
	return strings.Join(parts, ",")
}

// fitFadeOut is the fade applied to the end of a clip that has to be cut.
const fitFadeOut = 0.15

// GenerateFitAudioFilter pads a narration clip with silence or cuts it so
// that it lasts exactly duration seconds. length is the measured clip
// length; a clip longer than duration fades out before the cut. Pass 0
// when the length is unknown.
func GenerateFitAudioFilter(duration, length float64) string {
	if length > duration {
		fade := math.Min(fitFadeOut, duration)
		return fmt.Sprintf("atrim=0:%.3f,afade=t=out:st=%.3f:d=%.3f", duration, duration-fade, fade)
	}
	return fmt.Sprintf("apad=whole_dur=%.3f,atrim=0:%.3f", duration, duration)
}
