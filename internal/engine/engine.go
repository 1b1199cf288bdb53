package engine

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ivlev/chess2video/internal/board"
	"github.com/ivlev/chess2video/internal/compose"
	"github.com/ivlev/chess2video/internal/config"
	"github.com/ivlev/chess2video/internal/narration"
	"github.com/ivlev/chess2video/internal/notation"
	"github.com/ivlev/chess2video/internal/renderer"
	"github.com/ivlev/chess2video/internal/system"
	"github.com/ivlev/chess2video/internal/theory"
	"github.com/ivlev/chess2video/internal/timeline"
	"github.com/ivlev/chess2video/internal/video"
)

// thumbnailPly: сколько первых ходов показывает превью.
const thumbnailPly = 5

const defaultThumbnailCaption = "Chess Theory"

// SinkFactory открывает приёмник кадров. В тестах подменяется фейком.
type SinkFactory func(ctx context.Context, opts video.SinkOptions) (video.Sink, error)

func openFFmpeg(ctx context.Context, opts video.SinkOptions) (video.Sink, error) {
	return video.OpenFFmpegSink(ctx, opts)
}

// Result: итог одного прогона.
type Result struct {
	Output    string
	Plan      *timeline.Plan
	Report    *notation.Report
	Thumbnail string
	Narrated  int
	SizeBytes int64
	Elapsed   time.Duration
}

// SizeMB: размер выходного файла в мегабайтах.
func (r *Result) SizeMB() float64 {
	return float64(r.SizeBytes) / (1 << 20)
}

// VideoProject владеет всем состоянием одной генерации: парсером,
// растеризатором доски, движком озвучки и приёмником кадров.
type VideoProject struct {
	Config   *config.Config
	Parser   *notation.Parser
	Speaker  narration.Synthesizer
	OpenSink SinkFactory
	// Board подменяет растеризатор доски; по умолчанию board.Rasterizer.
	Board renderer.BoardRasterizer
	// Text используется вместо чтения Config.InputPath, если задан.
	Text string
	// MeasureClip измеряет длину клипа озвучки; по умолчанию ffprobe.
	MeasureClip func(path string) (float64, error)
}

func NewVideoProject(cfg *config.Config) *VideoProject {
	parser := notation.NewParser()
	parser.Verbose = cfg.Verbose
	return &VideoProject{
		Config:      cfg,
		Parser:      parser,
		Speaker:     narration.New(cfg.Speech()),
		OpenSink:    openFFmpeg,
		MeasureClip: system.GetMediaDuration,
	}
}

func (p *VideoProject) Run(ctx context.Context) (*Result, error) {
	startTime := time.Now()
	cfg := p.Config

	doc, rep, err := p.parse()
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.InputPath, err)
	}
	if rep.Rejected > 0 || rep.DroppedTimingLines > 0 {
		log.Printf("[!] Пропущено токенов: %d, строк TIMING: %d", rep.Rejected, rep.DroppedTimingLines)
	}

	plan := timeline.NewPlan(doc, cfg.Timing())
	res := &Result{Output: cfg.OutputVideo, Plan: plan, Report: rep}

	fmt.Println("--- [PROJECT: CHESS THEORY] ---")
	fmt.Printf("[*] Источник: %s | Формат: %s | Ходов: %d\n", cfg.InputPath, rep.Format, doc.MoveCount)
	fmt.Printf("[*] Кадр: %dx%d @ %d FPS | Длительность: %.2fs | Кадров: %d\n",
		cfg.BoardSize, cfg.BoardSize+compose.BandHeight, cfg.FPS, plan.TotalDuration, plan.TotalFrames)
	fmt.Println("-----------------------------")

	if cfg.PlanPath != "" || cfg.DryRun {
		planPath := cfg.PlanPath
		if planPath == "" {
			planPath = timeline.PlanPathFor(cfg.OutputVideo)
		}
		if err := timeline.WritePlan(plan, planPath); err != nil {
			return nil, fmt.Errorf("ошибка записи плана: %w", err)
		}
		fmt.Printf("[*] План сохранён: %s\n", planPath)
	}
	if cfg.DryRun {
		res.Elapsed = time.Since(startTime)
		return res, nil
	}

	fr, err := p.frameRenderer()
	if err != nil {
		return nil, err
	}

	_, mute := p.Speaker.(narration.Nop)
	speaking := p.Speaker != nil && !mute
	target := cfg.OutputVideo
	if speaking {
		ext := filepath.Ext(target)
		target = strings.TrimSuffix(target, ext) + ".silent" + ext
		defer os.Remove(target)
	}

	renderStart := time.Now()
	if err := p.render(ctx, fr, plan, target); err != nil {
		return nil, err
	}
	renderTime := time.Since(renderStart)

	if speaking {
		n, err := p.narrate(ctx, plan.Segments, target)
		if err != nil {
			return nil, err
		}
		res.Narrated = n
	}

	if cfg.Thumbnail {
		path, err := p.writeThumbnail(fr, doc)
		if err != nil {
			log.Printf("[!] Не удалось сохранить превью: %v", err)
		} else {
			res.Thumbnail = path
		}
	}

	if fi, err := os.Stat(cfg.OutputVideo); err == nil {
		res.SizeBytes = fi.Size()
	}
	res.Elapsed = time.Since(startTime)

	if cfg.ShowStats {
		p.report(ctx, res, renderTime)
	}
	return res, nil
}

func (p *VideoProject) parse() (*theory.Document, *notation.Report, error) {
	if p.Text != "" {
		doc, rep := p.Parser.Parse(p.Text)
		return doc, rep, nil
	}
	doc, rep, err := p.Parser.ParseFile(p.Config.InputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка чтения источника: %w", err)
	}
	return doc, rep, nil
}

func (p *VideoProject) frameRenderer() (*renderer.FrameRenderer, error) {
	b := p.Board
	if b == nil {
		palette, err := board.LookupPalette(p.Config.Style)
		if err != nil {
			return nil, err
		}
		b = board.NewRasterizer(p.Config.BoardSize, palette)
	}
	composer, err := compose.NewComposer(b.Size())
	if err != nil {
		return nil, err
	}
	fr := renderer.NewFrameRenderer(b, composer)
	fr.QRBadge = p.Config.QRBadge
	return fr, nil
}

// render пишет все сегменты в приёмник по порядку. При любой ошибке
// недописанный файл удаляется.
func (p *VideoProject) render(ctx context.Context, fr *renderer.FrameRenderer, plan *timeline.Plan, path string) error {
	bounds := fr.Bounds()
	sink, err := p.OpenSink(ctx, video.SinkOptions{
		Path:    path,
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
		FPS:     p.Config.FPS,
		Encoder: p.Config.VideoEncoder,
		Quality: p.Config.Quality,
		Filter:  renderer.GenerateFadeFilter(float64(plan.TotalFrames)/float64(p.Config.FPS), p.Config.FadeDuration),
	})
	if err != nil {
		return err
	}

	emit := func(frame *image.RGBA) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return sink.WriteFrame(frame)
	}

	total := len(plan.Segments)
	for i, seg := range plan.Segments {
		if err := fr.Render(seg, emit); err != nil {
			if aerr := sink.Abort(); aerr != nil {
				log.Printf("[!] Ошибка остановки кодирования: %v", aerr)
			}
			return fmt.Errorf("сегмент %d (%s): %w", i, seg.Kind, err)
		}
		fmt.Printf("[>] Готово: %d/%d\n", i+1, total)
	}

	if err := sink.Close(); err != nil {
		return fmt.Errorf("ошибка финализации видео: %w", err)
	}
	return nil
}

// narrate озвучивает сегменты, собирает дорожку и накладывает её на
// немое видео silent, записывая результат в Config.OutputVideo.
// Если звук собрать не удалось, остаётся видео без звука.
func (p *VideoProject) narrate(ctx context.Context, segments []timeline.Segment, silent string) (int, error) {
	tempDir, err := os.MkdirTemp("", "chess2video_")
	if err != nil {
		return 0, err
	}
	defer os.RemoveAll(tempDir)

	fmt.Printf("[*] Озвучка (%s)...\n", p.Speaker.Name())
	clips, spoken, err := narration.Prepare(ctx, p.Speaker, segments, p.Config.FPS, tempDir)
	if err != nil {
		return 0, err
	}
	if spoken == 0 {
		log.Printf("[!] Ни один сегмент не озвучен, видео сохраняется без звука")
		return 0, os.Rename(silent, p.Config.OutputVideo)
	}
	p.measureClips(segments, clips)

	track := filepath.Join(tempDir, "narration.m4a")
	err = video.BuildNarrationTrack(ctx, "", clips, track)
	if err == nil {
		err = video.MuxAudio(ctx, "", silent, track, p.Config.OutputVideo)
	}
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		log.Printf("[!] Ошибка наложения звука, видео сохраняется без звука: %v", err)
		os.Remove(p.Config.OutputVideo)
		return 0, os.Rename(silent, p.Config.OutputVideo)
	}
	return spoken, nil
}

// measureClips записывает в клипы их измеренную длину и предупреждает о
// клипах длиннее своего сегмента. Если измерить не удалось, длина
// оценивается по числу слов. Возвращает число клипов, которые будут обрезаны.
func (p *VideoProject) measureClips(segments []timeline.Segment, clips []video.Clip) int {
	measure := p.MeasureClip
	if measure == nil {
		measure = system.GetMediaDuration
	}

	trimmed := 0
	for i := range clips {
		c := &clips[i]
		if c.Path == "" {
			continue
		}
		length, err := measure(c.Path)
		if err != nil {
			if p.Config.Verbose {
				log.Printf("[!] Длина клипа %d не измерена: %v", i, err)
			}
			length = narration.EstimateDuration(narration.Script(segments[i]), p.Config.Rate)
		} else {
			c.Length = length
		}
		if length > c.Duration {
			trimmed++
			log.Printf("[!] Озвучка сегмента %d (%.1fs) длиннее сегмента (%.1fs) и будет обрезана", i, length, c.Duration)
		}
	}
	return trimmed
}

// ThumbnailPath: путь превью рядом с видео.
func ThumbnailPath(videoPath string) string {
	ext := filepath.Ext(videoPath)
	return strings.TrimSuffix(videoPath, ext) + "_thumbnail.png"
}

func (p *VideoProject) writeThumbnail(fr *renderer.FrameRenderer, doc *theory.Document) (string, error) {
	caption := doc.Title
	if caption == "" {
		caption = defaultThumbnailCaption
	}
	img, err := fr.Still(doc.FENAfterPly(thumbnailPly), caption)
	if err != nil {
		return "", err
	}

	path := ThumbnailPath(p.Config.OutputVideo)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

func (p *VideoProject) report(ctx context.Context, res *Result, renderTime time.Duration) {
	host := system.CollectHostStats(ctx)
	frames := res.Plan.TotalFrames
	fps := float64(frames) / res.Elapsed.Seconds()

	fmt.Printf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Host: %s\n"+
			"Total Time: %.2fs\n"+
			"Rendering + Encoding: %.2fs\n"+
			"Frames: %d\n"+
			"Effective FPS: %.2f\n"+
			"----------------------------\n",
		p.Config.BuildVersion, host, res.Elapsed.Seconds(), renderTime.Seconds(), frames, fps,
	)

	// Логирование в файл
	logEntry := fmt.Sprintf("[%s] Build: %s | Input: %s | Moves: %d | Frames: %d | Total: %.2fs | Render: %.2fs | FPS: %.2f | CPU: %d | Load: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		filepath.Base(p.Config.InputPath),
		res.Plan.MoveCount,
		frames,
		res.Elapsed.Seconds(),
		renderTime.Seconds(),
		fps,
		host.LogicalCPUs,
		host.Load1,
	)
	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		log.Printf("[!] Не удалось записать benchmark.log: %v", err)
	}
}
