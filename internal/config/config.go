package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/chess2video/internal/board"
	"github.com/ivlev/chess2video/internal/narration"
	"github.com/ivlev/chess2video/internal/timeline"
)

var (
	allowedFPS   = []int{24, 30, 60}
	allowedSizes = []int{600, 800, 1024, 1280}
)

type Config struct {
	InputPath   string `yaml:"input"`
	OutputVideo string `yaml:"output"`
	OutputDir   string `yaml:"output_dir"`

	BoardSize     int     `yaml:"size"`
	Style         string  `yaml:"style"`
	FPS           int     `yaml:"fps"`
	MoveDuration  float64 `yaml:"move_duration"`
	IntroDuration float64 `yaml:"intro_duration"`
	OutroDuration float64 `yaml:"outro_duration"`
	FadeDuration  float64 `yaml:"fade"`
	QRBadge       bool    `yaml:"qr_badge"`

	Narrate         bool   `yaml:"narrate"`
	NarrationEngine string `yaml:"narration_engine"`
	Rate            int    `yaml:"rate"`
	Voice           string `yaml:"voice"`
	SpeechModel     string `yaml:"speech_model"`

	Thumbnail bool   `yaml:"thumbnail"`
	PlanPath  string `yaml:"plan"`
	DryRun    bool   `yaml:"dry_run"`
	Verbose   bool   `yaml:"verbose"`

	VideoEncoder string `yaml:"encoder"`
	Quality      int    `yaml:"quality"`
	Workers      int    `yaml:"workers"`
	ShowStats    bool   `yaml:"stats"`

	BuildVersion string `yaml:"-"`
}

// Default возвращает настройки по умолчанию.
func Default() *Config {
	d := timeline.DefaultSettings()
	return &Config{
		OutputDir:       "output",
		BoardSize:       800,
		Style:           board.DefaultPalette,
		FPS:             d.FPS,
		MoveDuration:    d.MoveDuration,
		IntroDuration:   d.IntroDuration,
		OutroDuration:   d.OutroDuration,
		NarrationEngine: "auto",
		Rate:            narration.DefaultRate,
	}
}

// LoadFile накладывает значения из YAML-файла поверх cfg.
// Ключи, которых нет в файле, не меняются.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("чтение конфигурации: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}
	return nil
}

// Validate проверяет диапазоны и собирает все ошибки сразу.
func (c *Config) Validate() error {
	var errs []error
	if !contains(allowedFPS, c.FPS) {
		errs = append(errs, fmt.Errorf("fps must be one of %v, got %d", allowedFPS, c.FPS))
	}
	if !contains(allowedSizes, c.BoardSize) {
		errs = append(errs, fmt.Errorf("size must be one of %v, got %d", allowedSizes, c.BoardSize))
	}
	if _, err := board.LookupPalette(c.Style); err != nil {
		errs = append(errs, err)
	}
	if c.MoveDuration <= 0 {
		errs = append(errs, fmt.Errorf("move duration must be positive, got %.2f", c.MoveDuration))
	}
	if c.IntroDuration < 0 || c.OutroDuration < 0 {
		errs = append(errs, errors.New("intro and outro durations cannot be negative"))
	}
	if c.FadeDuration < 0 {
		errs = append(errs, errors.New("fade duration cannot be negative"))
	}
	if c.Narrate && c.Rate <= 0 {
		errs = append(errs, fmt.Errorf("narration rate must be positive, got %d", c.Rate))
	}
	switch strings.ToLower(c.NarrationEngine) {
	case "", "auto", "openai", "system", "none":
	default:
		errs = append(errs, fmt.Errorf("unknown narration engine %q", c.NarrationEngine))
	}
	return errors.Join(errs...)
}

// Timing переводит настройки в параметры планировщика.
func (c *Config) Timing() timeline.Defaults {
	return timeline.Defaults{
		MoveDuration:  c.MoveDuration,
		FPS:           c.FPS,
		IntroDuration: c.IntroDuration,
		OutroDuration: c.OutroDuration,
	}
}

// Speech переводит настройки в параметры движка озвучки.
func (c *Config) Speech() narration.Options {
	engine := c.NarrationEngine
	if !c.Narrate {
		engine = "none"
	}
	return narration.Options{
		Engine: engine,
		Rate:   c.Rate,
		Voice:  c.Voice,
		Model:  c.SpeechModel,
	}
}

// DefaultQuality подбирает качество под энкодер, если оно не задано явно.
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75 // Хорошее качество для VideoToolbox
	case "h264_nvenc":
		return 28 // Эквивалент CRF для NVENC
	default:
		return 23 // Стандартный CRF для x264
	}
}

func contains(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
