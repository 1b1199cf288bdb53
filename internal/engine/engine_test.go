package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivlev/chess2video/internal/config"
	"github.com/ivlev/chess2video/internal/narration"
	"github.com/ivlev/chess2video/internal/theory"
	"github.com/ivlev/chess2video/internal/timeline"
	"github.com/ivlev/chess2video/internal/video"
)

const italian = "Italian Game\n1. e4 e5 2. Nf3"

type flatBoard struct{ size int }

func (b flatBoard) Size() int { return b.size }

func (b flatBoard) Board(string, ...string) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, b.size, b.size))
	draw.Draw(img, img.Rect, image.NewUniform(color.RGBA{R: 0x60, G: 0x90, B: 0x60, A: 0xFF}), image.Point{}, draw.Src)
	return img, nil
}

// memorySink counts frames and writes an empty file on Close.
type memorySink struct {
	opts      video.SinkOptions
	frames    int
	failAt    int
	closed    bool
	aborted   bool
	frameSize image.Rectangle
}

func (s *memorySink) WriteFrame(img *image.RGBA) error {
	if s.failAt > 0 && s.frames == s.failAt {
		return errors.New("broken pipe")
	}
	s.frameSize = img.Rect
	s.frames++
	return nil
}

func (s *memorySink) Close() error {
	s.closed = true
	return os.WriteFile(s.opts.Path, []byte("video"), 0644)
}

func (s *memorySink) Abort() error {
	s.aborted = true
	return nil
}

func newTestProject(t *testing.T, text string) (*VideoProject, *memorySink) {
	t.Helper()
	cfg := config.Default()
	cfg.InputPath = "test.txt"
	cfg.OutputVideo = filepath.Join(t.TempDir(), "out.mp4")
	cfg.VideoEncoder = "libx264"

	p := NewVideoProject(cfg)
	p.Text = text
	p.Board = flatBoard{size: 200}
	p.Speaker = narration.Nop{}

	sink := &memorySink{}
	p.OpenSink = func(_ context.Context, opts video.SinkOptions) (video.Sink, error) {
		sink.opts = opts
		return sink, nil
	}
	return p, sink
}

func TestRunFrameCounts(t *testing.T) {
	p, sink := newTestProject(t, italian)

	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	// intro 3s + 3 moves x 2s + outro 2s at 30 fps
	if res.Plan.TotalFrames != 330 || sink.frames != 330 {
		t.Errorf("frames: plan %d, sink %d, want 330", res.Plan.TotalFrames, sink.frames)
	}
	if res.Plan.TotalDuration != 11.0 {
		t.Errorf("duration = %.2f, want 11.0", res.Plan.TotalDuration)
	}
	if !sink.closed || sink.aborted {
		t.Errorf("sink closed=%v aborted=%v", sink.closed, sink.aborted)
	}
	if sink.opts.Width != 200 || sink.opts.Height != 300 || sink.frameSize != image.Rect(0, 0, 200, 300) {
		t.Errorf("frame geometry %dx%d, %v", sink.opts.Width, sink.opts.Height, sink.frameSize)
	}
	if res.SizeBytes != 5 {
		t.Errorf("size = %d", res.SizeBytes)
	}
}

func TestRunEmptyTheory(t *testing.T) {
	p, sink := newTestProject(t, "zzz qqq Kx9")
	opened := false
	p.OpenSink = func(context.Context, video.SinkOptions) (video.Sink, error) {
		opened = true
		return sink, nil
	}

	_, err := p.Run(context.Background())
	if !errors.Is(err, theory.ErrEmptyTheory) {
		t.Fatalf("expected ErrEmptyTheory, got %v", err)
	}
	if opened {
		t.Error("sink must not be opened for an empty document")
	}
}

func TestRunSinkOpenFailure(t *testing.T) {
	p, _ := newTestProject(t, italian)
	p.OpenSink = func(context.Context, video.SinkOptions) (video.Sink, error) {
		return nil, fmt.Errorf("%w: ffmpeg start: not found", video.ErrSinkOpen)
	}

	_, err := p.Run(context.Background())
	if !errors.Is(err, video.ErrSinkOpen) {
		t.Fatalf("expected ErrSinkOpen, got %v", err)
	}
}

func TestRunAbortsOnWriteError(t *testing.T) {
	p, sink := newTestProject(t, italian)
	sink.failAt = 100

	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if !sink.aborted || sink.closed {
		t.Errorf("sink closed=%v aborted=%v, want aborted only", sink.closed, sink.aborted)
	}
	if sink.frames != 100 {
		t.Errorf("frames written before failure = %d", sink.frames)
	}
}

func TestRunCancelled(t *testing.T) {
	p, sink := newTestProject(t, italian)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !sink.aborted {
		t.Error("cancelled run must abort the sink")
	}
}

func TestDryRunWritesPlan(t *testing.T) {
	p, sink := newTestProject(t, italian)
	p.Config.DryRun = true

	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sink.frames != 0 || sink.closed {
		t.Error("dry run must not render")
	}

	plan, err := timeline.ReadPlan(timeline.PlanPathFor(p.Config.OutputVideo))
	if err != nil {
		t.Fatal(err)
	}
	if plan.TotalFrames != res.Plan.TotalFrames || plan.Title != "Italian Game" || len(plan.Segments) != 5 {
		t.Errorf("plan = %+v", plan)
	}
}

func TestThumbnail(t *testing.T) {
	p, _ := newTestProject(t, italian)
	p.Config.Thumbnail = true

	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Thumbnail != ThumbnailPath(p.Config.OutputVideo) {
		t.Fatalf("thumbnail = %q", res.Thumbnail)
	}

	f, err := os.Open(res.Thumbnail)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 200, 300) {
		t.Errorf("thumbnail bounds %v", img.Bounds())
	}
}

func TestThumbnailPath(t *testing.T) {
	if got := ThumbnailPath("output/italian.mp4"); got != "output/italian_thumbnail.png" {
		t.Errorf("ThumbnailPath = %q", got)
	}
}

// textSpeaker writes the narration text instead of audio.
type textSpeaker struct{}

func (textSpeaker) Name() string { return "text" }

func (textSpeaker) Synthesize(_ context.Context, text, base string) (string, error) {
	path := base + ".txt"
	return path, os.WriteFile(path, []byte(text), 0644)
}

func TestNarrationWithoutFFmpegKeepsSilentVideo(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	p, sink := newTestProject(t, italian)
	p.Speaker = textSpeaker{}

	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sink.opts.Path == p.Config.OutputVideo {
		t.Error("narrated runs render to an intermediate file")
	}
	if _, err := os.Stat(p.Config.OutputVideo); err != nil {
		t.Errorf("output missing: %v", err)
	}
	if _, err := os.Stat(sink.opts.Path); !os.IsNotExist(err) {
		t.Error("intermediate file must be removed")
	}
	if res.Narrated != 0 {
		t.Errorf("narrated = %d without ffmpeg", res.Narrated)
	}
}

func TestMeasureClips(t *testing.T) {
	p, _ := newTestProject(t, italian)
	lengths := map[string]float64{"a.mp3": 1.5, "b.mp3": 3.2}
	var measured []string
	p.MeasureClip = func(path string) (float64, error) {
		measured = append(measured, path)
		if l, ok := lengths[path]; ok {
			return l, nil
		}
		return 0, errors.New("ffprobe missing")
	}

	segments := []timeline.Segment{
		{Kind: timeline.KindIntro, Title: "X"},
		{Kind: timeline.KindMove, Caption: "Move 1: e4"},
		{Kind: timeline.KindMove, Caption: "Move 1... e5"},
		{Kind: timeline.KindMove, Caption: "Move 2: Nf3 develops the knight toward the centre and eyes the pawn"},
	}
	clips := []video.Clip{
		{Duration: 3},
		{Path: "a.mp3", Duration: 2},
		{Path: "b.mp3", Duration: 2},
		{Path: "c.mp3", Duration: 2},
	}

	if n := p.measureClips(segments, clips); n != 2 {
		t.Errorf("trimmed = %d, want 2", n)
	}
	if fmt.Sprint(measured) != "[a.mp3 b.mp3 c.mp3]" {
		t.Errorf("measured %v", measured)
	}
	if clips[1].Length != 1.5 || clips[2].Length != 3.2 {
		t.Errorf("lengths = %.1f, %.1f", clips[1].Length, clips[2].Length)
	}
	if clips[3].Length != 0 {
		t.Errorf("unmeasured clip length = %.1f, want 0", clips[3].Length)
	}
}
