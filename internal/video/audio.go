package video

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ivlev/chess2video/internal/renderer"
)

// Clip: озвучка одного сегмента. Пустой Path означает тишину.
type Clip struct {
	Path     string
	Duration float64
	// Length: измеренная длина файла, 0 если неизвестна.
	Length float64
}

const narrationRate = 24000

// BuildNarrationTrack подгоняет каждый клип под длительность своего сегмента
// и склеивает их последовательно в одну дорожку.
func BuildNarrationTrack(ctx context.Context, ffmpeg string, clips []Clip, out string) error {
	if len(clips) == 0 {
		return errors.New("нет клипов для озвучки")
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary(ffmpeg), buildNarrationArgs(clips, out)...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg narration error: %v, output: %s", err, string(output))
	}
	return nil
}

func buildNarrationArgs(clips []Clip, out string) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	var graph strings.Builder
	var labels strings.Builder

	for i, c := range clips {
		if c.Path == "" {
			args = append(args,
				"-f", "lavfi",
				"-t", fmt.Sprintf("%.3f", c.Duration),
				"-i", fmt.Sprintf("anullsrc=r=%d:cl=mono", narrationRate))
		} else {
			args = append(args, "-i", c.Path)
		}
		fmt.Fprintf(&graph, "[%d:a]aresample=%d,aformat=channel_layouts=mono,%s,asetpts=PTS-STARTPTS[a%d];",
			i, narrationRate, renderer.GenerateFitAudioFilter(c.Duration, c.Length), i)
		fmt.Fprintf(&labels, "[a%d]", i)
	}
	fmt.Fprintf(&graph, "%sconcat=n=%d:v=0:a=1[aout]", labels.String(), len(clips))

	args = append(args,
		"-filter_complex", graph.String(),
		"-map", "[aout]",
		"-c:a", "aac", "-b:a", "128k",
		out)
	return args
}

// MuxAudio накладывает дорожку озвучки на видео без перекодирования картинки.
func MuxAudio(ctx context.Context, ffmpeg, videoPath, audioPath, out string) error {
	cmd := exec.CommandContext(ctx, ffmpegBinary(ffmpeg), buildMuxArgs(videoPath, audioPath, out)...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg mux error: %v, output: %s", err, string(output))
	}
	return nil
}

func buildMuxArgs(videoPath, audioPath, out string) []string {
	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v", "-map", "1:a",
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		"-movflags", "+faststart",
		out,
	}
}

func ffmpegBinary(path string) string {
	if path == "" {
		return "ffmpeg"
	}
	return path
}
