package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ivlev/chess2video/internal/batch"
	"github.com/ivlev/chess2video/internal/board"
	"github.com/ivlev/chess2video/internal/config"
	"github.com/ivlev/chess2video/internal/engine"
	"github.com/ivlev/chess2video/internal/system"
	"github.com/ivlev/chess2video/internal/theory"
)

// version задаётся при сборке: -ldflags "-X main.version=..."
var version = "dev"

const theoryDir = "input/theory"

func main() {
	// .env может содержать OPENAI_API_KEY для озвучки
	if err := godotenv.Load(); err == nil {
		fmt.Println("[*] Загружены переменные окружения из .env")
	}

	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits(4096)

	// Создаем нужные директории, если их нет
	for _, d := range []string{theoryDir, "output"} {
		os.MkdirAll(d, 0755)
	}

	cfg := config.Default()
	cfg.BuildVersion = version

	configPtr := flag.String("config", "", "YAML-файл с настройками (флаги командной строки имеют приоритет)")
	flag.StringVar(&cfg.InputPath, "input", "", "Файл теории или папка для пакетной обработки (по умолчанию: самый свежий файл в input/theory/)")
	flag.StringVar(&cfg.OutputVideo, "output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	flag.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "Папка для автоматически названных видео")
	flag.IntVar(&cfg.BoardSize, "size", cfg.BoardSize, "Размер доски в пикселях: 600, 800, 1024, 1280")
	flag.StringVar(&cfg.Style, "style", cfg.Style, "Цвета доски: "+strings.Join(board.PaletteNames(), ", "))
	flag.IntVar(&cfg.FPS, "fps", cfg.FPS, "FPS: 24, 30, 60")
	flag.Float64Var(&cfg.MoveDuration, "move-duration", cfg.MoveDuration, "Длительность показа одного хода (сек)")
	flag.Float64Var(&cfg.IntroDuration, "intro-duration", cfg.IntroDuration, "Длительность титульного экрана (сек)")
	flag.Float64Var(&cfg.OutroDuration, "outro-duration", cfg.OutroDuration, "Длительность финального экрана (сек)")
	flag.Float64Var(&cfg.FadeDuration, "fade", cfg.FadeDuration, "Затемнение в начале и конце видео (сек, 0 - выключено)")
	flag.BoolVar(&cfg.QRBadge, "qr", cfg.QRBadge, "QR-код со ссылкой на анализ финальной позиции")
	flag.BoolVar(&cfg.Narrate, "narrate", cfg.Narrate, "Озвучить аннотации")
	flag.StringVar(&cfg.NarrationEngine, "narrator", cfg.NarrationEngine, "Движок озвучки: auto, openai, system, none")
	flag.IntVar(&cfg.Rate, "rate", cfg.Rate, "Скорость речи (слов в минуту)")
	flag.StringVar(&cfg.Voice, "voice", cfg.Voice, "Голос OpenAI TTS (alloy, echo, nova, ...)")
	flag.BoolVar(&cfg.Thumbnail, "thumbnail", cfg.Thumbnail, "Сохранить превью рядом с видео")
	flag.StringVar(&cfg.PlanPath, "plan", cfg.PlanPath, "Сохранить план сегментов в YAML")
	flag.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "Только разобрать теорию и сохранить план, без рендера")
	flag.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Подробный журнал разбора")
	flag.IntVar(&cfg.Quality, "quality", cfg.Quality, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "Параллельные задачи в пакетном режиме (0 - по ресурсам машины)")
	flag.BoolVar(&cfg.ShowStats, "stats", cfg.ShowStats, "Показать отчёт о производительности и дописать benchmark.log")
	versionPtr := flag.Bool("version", false, "Показать версию")

	flag.Parse()

	if *versionPtr {
		fmt.Println("chess2video", version)
		return
	}

	if *configPtr != "" {
		applyConfigFile(cfg, *configPtr)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Ошибка настроек: %v", err)
	}

	if !cfg.DryRun {
		if err := system.CheckFFmpeg(); err != nil {
			log.Fatalf("[-] Ошибка: %v", err)
		}
		if cfg.VideoEncoder == "" {
			cfg.VideoEncoder = system.GetBestH264Encoder()
			if cfg.VideoEncoder != "libx264" {
				fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", cfg.VideoEncoder)
			}
		}
		if cfg.Quality == 0 {
			cfg.Quality = config.DefaultQuality(cfg.VideoEncoder)
		}
	}

	if cfg.InputPath == "" {
		latest, err := system.FindLatestTheory(theoryDir)
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Положите файл теории в %s/", err, theoryDir)
		}
		cfg.InputPath = latest
		fmt.Printf("[*] Выбран файл: %s\n", cfg.InputPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fi, err := os.Stat(cfg.InputPath)
	if err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}
	if fi.IsDir() {
		runBatch(ctx, cfg)
		return
	}

	if cfg.OutputVideo == "" {
		cfg.OutputVideo = batch.OutputPath(cfg.InputPath, cfg.OutputDir, time.Now())
	}

	res, err := engine.NewVideoProject(cfg).Run(ctx)
	if errors.Is(err, theory.ErrEmptyTheory) {
		log.Fatalf("[-] Ошибка: в %s не найдено ни одного допустимого хода", cfg.InputPath)
	}
	if err != nil {
		log.Fatalf("[-] Ошибка проекта: %v", err)
	}

	if cfg.DryRun {
		fmt.Printf("[+++] План готов: %d ходов, %.2fs, %d кадров\n",
			res.Plan.MoveCount, res.Plan.TotalDuration, res.Plan.TotalFrames)
		return
	}
	fmt.Printf("[+++] Успех! Результат: %s\n", res.Output)
	fmt.Printf("[*] Ходов: %d | Длительность: %.2fs | Размер: %.2f MB\n",
		res.Plan.MoveCount, res.Plan.TotalDuration, res.SizeMB())
	if res.Thumbnail != "" {
		fmt.Printf("[*] Превью: %s\n", res.Thumbnail)
	}
}

// applyConfigFile загружает YAML и затем заново применяет флаги, заданные
// явно, чтобы они перекрывали значения из файла.
func applyConfigFile(cfg *config.Config, path string) {
	explicit := map[string]string{}
	flag.Visit(func(f *flag.Flag) {
		explicit[f.Name] = f.Value.String()
	})

	if err := config.LoadFile(cfg, path); err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}
	for name, value := range explicit {
		if err := flag.Set(name, value); err != nil {
			log.Fatalf("[-] Ошибка флага -%s: %v", name, err)
		}
	}
	fmt.Printf("[*] Настройки загружены: %s\n", path)
}

func runBatch(ctx context.Context, cfg *config.Config) {
	if cfg.OutputVideo != "" {
		log.Printf("[!] -output игнорируется в пакетном режиме, используется -output-dir %s", cfg.OutputDir)
	}
	jobs, err := batch.Jobs(cfg.InputPath, cfg.OutputDir)
	if err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}

	r := &batch.Runner{Config: cfg, Workers: cfg.Workers}
	outcomes, err := r.Run(ctx, jobs)

	done := 0
	for _, o := range outcomes {
		if o.Err == nil && o.Result != nil {
			done++
		}
	}
	fmt.Printf("[*] Пакет завершён: %d из %d\n", done, len(jobs))
	if err != nil {
		log.Fatalf("[-] Ошибки пакетной обработки:\n%v", err)
	}
}
