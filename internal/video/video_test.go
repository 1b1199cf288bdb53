package video

import (
	"bytes"
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestBuildSinkArgs(t *testing.T) {
	args := buildSinkArgs(SinkOptions{
		Path: "out.mp4", Width: 800, Height: 900, FPS: 30,
		Encoder: "libx264", Quality: 23, Filter: "fade=t=in:st=0:d=0.500",
	})
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"-f rawvideo", "-pixel_format rgba", "-video_size 800x900",
		"-framerate 30", "-i -", "-vf fade=t=in:st=0:d=0.500",
		"-c:v libx264", "-crf 23",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}
	if args[len(args)-1] != "out.mp4" {
		t.Errorf("output path must be last, got %q", args[len(args)-1])
	}

	noFilter := strings.Join(buildSinkArgs(SinkOptions{Path: "o.mp4", Width: 2, Height: 2, FPS: 24, Encoder: "libx264"}), " ")
	if strings.Contains(noFilter, "-vf") {
		t.Error("no -vf expected without filter")
	}
}

func TestQualityArgs(t *testing.T) {
	tests := []struct {
		encoder string
		want    string
	}{
		{"h264_videotoolbox", "-b:v 7500k"},
		{"h264_nvenc", "-cq 75"},
		{"libx264", "-crf 75 -preset medium"},
	}
	for _, tt := range tests {
		if got := strings.Join(qualityArgs(tt.encoder, 75), " "); got != tt.want {
			t.Errorf("qualityArgs(%s) = %q, want %q", tt.encoder, got, tt.want)
		}
	}
}

func TestOpenFailsWithoutFFmpeg(t *testing.T) {
	_, err := OpenFFmpegSink(context.Background(), SinkOptions{
		Path:    filepath.Join(t.TempDir(), "out.mp4"),
		Width:   8,
		Height:  8,
		FPS:     30,
		Encoder: "libx264",
		FFmpeg:  "/nonexistent/ffmpeg",
	})
	if !errors.Is(err, ErrSinkOpen) {
		t.Fatalf("expected ErrSinkOpen, got %v", err)
	}

	_, err = OpenFFmpegSink(context.Background(), SinkOptions{Path: "x.mp4", Width: 0, Height: 8, FPS: 30})
	if !errors.Is(err, ErrSinkOpen) {
		t.Fatalf("expected ErrSinkOpen for bad geometry, got %v", err)
	}
}

func TestWriteFrameReportsEncoderLog(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a shell script in place of ffmpeg")
	}
	dir := t.TempDir()
	fake := filepath.Join(dir, "ffmpeg")
	script := "#!/bin/sh\necho 'Unknown encoder libfoo' >&2\nexit 1\n"
	if err := os.WriteFile(fake, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "out.mp4")
	s, err := OpenFFmpegSink(context.Background(), SinkOptions{
		Path: out, Width: 256, Height: 256, FPS: 30, Encoder: "libfoo", FFmpeg: fake,
	})
	if err != nil {
		t.Fatal(err)
	}

	frame := image.NewRGBA(image.Rect(0, 0, 256, 256))
	var werr error
	for i := 0; i < 200 && werr == nil; i++ {
		werr = s.WriteFrame(frame)
	}
	if werr == nil {
		t.Fatal("expected a write error once ffmpeg exited")
	}
	if !strings.Contains(werr.Error(), "Unknown encoder libfoo") {
		t.Errorf("error should carry the ffmpeg log: %v", werr)
	}
	if err := s.WriteFrame(frame); err == nil || err.Error() != werr.Error() {
		t.Errorf("later writes = %v, want the first failure", err)
	}

	os.WriteFile(out, []byte("partial"), 0644)
	if err := s.Abort(); err != nil {
		t.Fatalf("Abort: %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("Abort must remove the partial file")
	}
}

func TestWriteRawRGBA(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Pix[0] = 7

	var buf bytes.Buffer
	if err := writeRawRGBA(&buf, img); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 4*4*4 || buf.Bytes()[0] != 7 {
		t.Errorf("unexpected raw output (%d bytes)", buf.Len())
	}

	// A sub-image has a wider stride and must be repacked.
	big := image.NewRGBA(image.Rect(0, 0, 8, 8))
	sub := big.SubImage(image.Rect(2, 2, 6, 6)).(*image.RGBA)
	buf.Reset()
	if err := writeRawRGBA(&buf, sub); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 4*4*4 {
		t.Errorf("sub-image packed to %d bytes, want 64", buf.Len())
	}
}

func TestBuildNarrationArgs(t *testing.T) {
	args := buildNarrationArgs([]Clip{
		{Path: "", Duration: 3},
		{Path: "m0.mp3", Duration: 2},
		{Path: "m1.mp3", Duration: 2.5},
		{Path: "m2.mp3", Duration: 2, Length: 3.5},
	}, "track.m4a")
	joined := strings.Join(args, " ")

	if !strings.Contains(joined, "-f lavfi -t 3.000 -i anullsrc=r=24000:cl=mono") {
		t.Errorf("silent clip missing: %s", joined)
	}
	if !strings.Contains(joined, "-i m0.mp3") || !strings.Contains(joined, "-i m1.mp3") {
		t.Errorf("clip inputs missing: %s", joined)
	}
	if !strings.Contains(joined, "apad=whole_dur=2.500,atrim=0:2.500") {
		t.Errorf("clip not fitted to segment: %s", joined)
	}
	if !strings.Contains(joined, "[3:a]aresample=24000,aformat=channel_layouts=mono,atrim=0:2.000,afade=t=out:st=1.850:d=0.150") {
		t.Errorf("long clip not cut with a fade: %s", joined)
	}
	if !strings.Contains(joined, "[a0][a1][a2][a3]concat=n=4:v=0:a=1[aout]") {
		t.Errorf("concat graph missing: %s", joined)
	}
	if args[len(args)-1] != "track.m4a" {
		t.Errorf("output must be last")
	}
}

func TestBuildMuxArgs(t *testing.T) {
	joined := strings.Join(buildMuxArgs("v.mp4", "a.m4a", "final.mp4"), " ")
	for _, want := range []string{"-i v.mp4", "-i a.m4a", "-map 0:v", "-map 1:a", "-c:v copy", "-shortest"} {
		if !strings.Contains(joined, want) {
			t.Errorf("mux args missing %q", want)
		}
	}
}
