package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// ErrSinkOpen означает, что ffmpeg не удалось запустить или файл назначения недоступен.
var ErrSinkOpen = errors.New("cannot open video sink")

// Sink принимает кадры строго по порядку.
type Sink interface {
	WriteFrame(img *image.RGBA) error
	// Close дописывает файл и ждёт завершения кодирования.
	Close() error
	// Abort прерывает кодирование и удаляет недописанный файл.
	Abort() error
}

// SinkOptions описывает выходной поток.
type SinkOptions struct {
	Path    string
	Width   int
	Height  int
	FPS     int
	Encoder string
	Quality int
	// Filter: дополнительный -vf фильтр, например затемнение в начале и конце.
	Filter string
	// FFmpeg: путь к бинарнику, по умолчанию "ffmpeg".
	FFmpeg string
}

// FFmpegSink кодирует кадры, передавая raw RGBA в stdin ffmpeg.
// Лог ffmpeg читается только после cmd.Wait: до этого в него пишет exec.
type FFmpegSink struct {
	opts    SinkOptions
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	log     bytes.Buffer
	frames  int
	done    bool
	failed  error
	waited  bool
	waitErr error
}

// OpenFFmpegSink запускает ffmpeg. Любая ошибка оборачивает ErrSinkOpen,
// и в этом случае ни один кадр ещё не записан.
func OpenFFmpegSink(ctx context.Context, opts SinkOptions) (*FFmpegSink, error) {
	if opts.FFmpeg == "" {
		opts.FFmpeg = "ffmpeg"
	}
	if opts.Width <= 0 || opts.Height <= 0 || opts.FPS <= 0 {
		return nil, fmt.Errorf("%w: invalid geometry %dx%d@%d", ErrSinkOpen, opts.Width, opts.Height, opts.FPS)
	}
	if dir := filepath.Dir(opts.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSinkOpen, err)
		}
	}

	s := &FFmpegSink{opts: opts}
	s.cmd = exec.CommandContext(ctx, opts.FFmpeg, buildSinkArgs(opts)...)
	s.cmd.Stdout = &s.log
	s.cmd.Stderr = &s.log

	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdin pipe: %v", ErrSinkOpen, err)
	}
	if err := s.cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg start: %v", ErrSinkOpen, err)
	}
	s.stdin = stdin
	return s, nil
}

func buildSinkArgs(opts SinkOptions) []string {
	// Используем rawvideo через stdin для исключения I/O на диск
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-framerate", fmt.Sprintf("%d", opts.FPS),
		"-i", "-",
	}
	if opts.Filter != "" {
		args = append(args, "-vf", opts.Filter)
	}
	args = append(args,
		"-r", fmt.Sprintf("%d", opts.FPS),
		"-pix_fmt", "yuv420p",
		"-c:v", opts.Encoder,
	)
	args = append(args, qualityArgs(opts.Encoder, opts.Quality)...)
	args = append(args, "-movflags", "+faststart", opts.Path)
	return args
}

// qualityArgs переводит общий уровень качества в параметры конкретного энкодера.
func qualityArgs(encoder string, quality int) []string {
	switch encoder {
	case "h264_videotoolbox":
		// VideoToolbox часто не поддерживает -q:v напрямую на всех версиях. Используем битрейт.
		bitrate := quality * 100 // кбит/с. 75 -> 7.5Мбит/с
		return []string{"-b:v", fmt.Sprintf("%dk", bitrate)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default: // libx264
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

func (s *FFmpegSink) WriteFrame(img *image.RGBA) error {
	if s.done {
		return errors.New("write to closed sink")
	}
	if s.failed != nil {
		return s.failed
	}
	if b := img.Bounds(); b.Dx() != s.opts.Width || b.Dy() != s.opts.Height {
		return fmt.Errorf("frame %dx%d does not match sink %dx%d", b.Dx(), b.Dy(), s.opts.Width, s.opts.Height)
	}
	if err := writeRawRGBA(s.stdin, img); err != nil {
		// ffmpeg больше не читает stdin: останавливаем его и только потом читаем лог.
		s.stdin.Close()
		if s.cmd.Process != nil {
			s.cmd.Process.Kill()
		}
		s.wait()
		s.failed = fmt.Errorf("write frame %d: %w (%s)", s.frames, err, s.log.String())
		return s.failed
	}
	s.frames++
	return nil
}

// wait дожидается ffmpeg один раз; повторные вызовы возвращают ту же ошибку.
func (s *FFmpegSink) wait() error {
	if !s.waited {
		s.waited = true
		s.waitErr = s.cmd.Wait()
	}
	return s.waitErr
}

// Frames возвращает число переданных кадров.
func (s *FFmpegSink) Frames() int {
	return s.frames
}

func (s *FFmpegSink) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	if s.failed != nil {
		return s.failed
	}
	s.stdin.Close()
	if err := s.wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w\nLog: %s", err, s.log.String())
	}
	return nil
}

func (s *FFmpegSink) Abort() error {
	if s.done {
		return nil
	}
	s.done = true
	s.stdin.Close()
	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	s.wait()
	if err := os.Remove(s.opts.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	// Проверяем, является ли изображение уже RGBA и имеет ли стандартный шаг (stride)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Rect, img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}
