package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/ivlev/blog2video/internal/assets"
	"github.com/ivlev/blog2video/internal/bulk"
	"github.com/ivlev/blog2video/internal/config"
	"github.com/ivlev/blog2video/internal/content"
	"github.com/ivlev/blog2video/internal/recorder"
	"github.com/ivlev/blog2video/internal/render"
	"github.com/ivlev/blog2video/internal/storyline"
	"github.com/ivlev/blog2video/internal/system"
	"github.com/ivlev/blog2video/internal/theme"
	"github.com/ivlev/blog2video/internal/uploader"
	"github.com/ivlev/blog2video/internal/video"
)

func main() {
	// raise system limits (macOS/Linux)
	system.InitResourceLimits()

	// make sure the working directories exist
	dirs := []string{"input/content", "output", "work"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	inputPtr := flag.String("input", "", "Путь к JSON контента (по умолчанию: самый свежий файл в input/content/)")
	configPtr := flag.String("config", "", "Путь к YAML-конфигу")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	widthPtr := flag.Int("width", 0, "Ширина")
	heightPtr := flag.Int("height", 0, "Высота")
	fpsPtr := flag.Int("fps", 0, "FPS")
	presetPtr := flag.String("preset", "", "Пресет формата: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	minDurPtr := flag.Float64("min-duration", 0, "Минимальная длительность видео в секундах")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	noMusicPtr := flag.Bool("no-music", false, "Отключить генерацию музыки")
	moodPtr := flag.String("mood", "", "Подсказка для выбора настроения музыки")
	musicPathPtr := flag.String("music", "", "Готовый аудиофайл вместо синтезированной музыки")
	noRealtimePtr := flag.Bool("no-realtime", false, "Рендерить быстрее реального времени")
	uploadPtr := flag.Bool("upload", false, "Загрузить результат на сервер после генерации")
	bulkPtr := flag.Bool("bulk", false, "Обработать все файлы из input/content/ по очереди")
	dumpPlanPtr := flag.String("dump-plan", "", "Сохранить план сцен в YAML и выйти")
	planPtr := flag.String("plan", "", "Готовый YAML-план сцен вместо автоматической раскадровки")

	flag.Parse()

	// .env carries the stock media API keys
	godotenv.Load()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("[-] Ошибка конфига: %v", err)
	}
	applyFlags(&cfg, *inputPtr, *outputPtr, *widthPtr, *heightPtr, *fpsPtr, *minDurPtr, *qualityPtr, *moodPtr)
	if err := cfg.ApplyPreset(*presetPtr); err != nil {
		log.Fatalf("[-] %v", err)
	}
	if cfg.VideoEncoder == "" {
		encoderName := system.GetBestH264Encoder()
		if encoderName != "libx264" {
			fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", encoderName)
		}
		cfg.VideoEncoder = encoderName
	}
	cfg.ApplyDefaults()

	// boolean flags override the config only when given explicitly
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "no-realtime":
			cfg.Realtime = !*noRealtimePtr
		case "no-music":
			cfg.Music = !*noMusicPtr
		}
	})
	if *musicPathPtr != "" {
		cfg.MusicPath = *musicPathPtr
	}
	if cfg.PexelsKey == "" {
		cfg.PexelsKey = os.Getenv("PEXELS_API_KEY")
	}
	if cfg.PixabayKey == "" {
		cfg.PixabayKey = os.Getenv("PIXABAY_API_KEY")
	}
	if cfg.UploadURL == "" {
		cfg.UploadURL = os.Getenv("BTV_UPLOAD_URL")
	}
	if cfg.UploadToken == "" {
		cfg.UploadToken = os.Getenv("BTV_UPLOAD_TOKEN")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Ошибка конфига: %v", err)
	}

	snap := system.TakeSnapshot()
	fmt.Printf("[*] Система: %s\n", snap)
	workers := cfg.Workers
	if workers <= 0 {
		workers = snap.RecommendedWorkers()
	}

	fonts, err := render.LoadFonts(cfg.HeadingFont, cfg.BodyFont)
	if err != nil {
		log.Fatalf("[-] Ошибка шрифтов: %v", err)
	}
	loader := assets.NewLoader(cfg.PexelsKey, cfg.PixabayKey, workers)
	ctx := context.Background()

	if *bulkPtr {
		runBulk(ctx, &cfg, fonts, loader)
		return
	}

	inputPath := cfg.InputPath
	if inputPath == "" {
		latest, err := content.FindLatest("input/content")
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Положите JSON в input/content/", err)
		}
		inputPath = latest
		fmt.Printf("[*] Выбран файл: %s\n", inputPath)
	}

	in, err := content.Load(inputPath)
	if err != nil {
		log.Fatalf("[-] Ошибка контента: %v", err)
	}

	if *dumpPlanPtr != "" {
		in.Normalize()
		th := theme.Resolve(in.Style)
		scenes := storyline.Build(in, &th, cfg.MinDuration)
		if err := storyline.WritePlan(storyline.ToPlan(scenes), *dumpPlanPtr); err != nil {
			log.Fatalf("[-] Ошибка записи плана: %v", err)
		}
		fmt.Printf("[+++] План сцен сохранен: %s\n", *dumpPlanPtr)
		return
	}

	outputPath := cfg.OutputVideo
	if outputPath == "" {
		outputPath = autoOutputName(inputPath)
	}

	opts := recorderOptions(&cfg, outputPath)
	opts.PlanPath = *planPtr
	rec := recorder.New(opts, fonts, loader, &video.FFmpegSink{})
	art, err := rec.Generate(ctx, in)
	if err != nil {
		log.Fatalf("[-] Ошибка генерации: %v", err)
	}
	fmt.Printf("[+++] Успех! Результат: %s\n", art.Path)

	if *uploadPtr {
		if cfg.UploadURL == "" {
			log.Fatalf("[-] Не задан upload_url (флаг, конфиг или BTV_UPLOAD_URL)")
		}
		fmt.Printf("[*] Загрузка на сервер...\n")
		url, err := uploader.New(cfg.UploadURL, cfg.UploadToken).Upload(ctx, art.Path, in.PostID)
		if err != nil {
			log.Fatalf("[-] Ошибка загрузки: %v", err)
		}
		fmt.Printf("[+++] Видео доступно: %s\n", url)
	}
}

func applyFlags(cfg *config.Config, input, output string, w, h, fps int, minDur float64, quality int, mood string) {
	if input != "" {
		cfg.InputPath = input
	}
	if output != "" {
		cfg.OutputVideo = output
	}
	if w > 0 {
		cfg.Width = w
	}
	if h > 0 {
		cfg.Height = h
	}
	if fps > 0 {
		cfg.FPS = fps
	}
	if minDur > 0 {
		cfg.MinDuration = minDur
	}
	if quality > 0 {
		cfg.Quality = quality
	}
	if mood != "" {
		cfg.MoodHint = mood
	}
}

func recorderOptions(cfg *config.Config, outputPath string) recorder.Options {
	return recorder.Options{
		Width:      cfg.Width,
		Height:     cfg.Height,
		FPS:        cfg.FPS,
		MinRuntime: cfg.MinDuration,
		Realtime:   cfg.Realtime,
		Music:      cfg.Music,
		MoodHint:   cfg.MoodHint,
		MusicPath:  cfg.MusicPath,
		Encoder:    cfg.VideoEncoder,
		Quality:    cfg.Quality,
		WorkDir:    cfg.WorkDir,
		OutputPath: outputPath,
		OnProgress: func(p recorder.Progress) {
			fmt.Printf("[*] %d%% — сцена %d/%d %s (осталось ~%s)\n",
				p.Percent, p.SceneIndex, p.SceneCount, p.SceneLabel, p.ETA.Round(time.Second))
		},
	}
}

func autoOutputName(inputPath string) string {
	base := filepath.Base(inputPath)
	name := base[:len(base)-len(filepath.Ext(base))]
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join("output", fmt.Sprintf("%s_%s.mp4", name, timestamp))
}

func runBulk(ctx context.Context, cfg *config.Config, fonts *render.FontSet, loader *assets.Loader) {
	dir := cfg.InputDir
	if dir == "" {
		dir = "input/content"
	}
	minDur := cfg.MinDuration
	if minDur < bulk.DefaultMinRuntime {
		minDur = bulk.DefaultMinRuntime
	}
	opts := recorderOptions(cfg, cfg.OutputVideo)
	opts.MinRuntime = minDur

	rec := recorder.New(opts, fonts, loader, &video.FFmpegSink{})
	q := &bulk.Queue{
		Source:   content.NewFileSource(dir),
		Recorder: rec,
		Output: func(id string) string {
			base := filepath.Base(id)
			name := base[:len(base)-len(filepath.Ext(base))]
			return filepath.Join("output", name+".mp4")
		},
		OnReport: func(r bulk.Report) {
			fmt.Printf("[*] Пакет: %d/%d (ок %d, ошибок %d)\n", r.Done, r.Total, r.Succeeded, r.Failed)
		},
	}
	results, err := q.Run(ctx)
	if err != nil {
		log.Fatalf("[-] Ошибка пакетной обработки: %v", err)
	}
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		fmt.Printf("[!] Завершено с ошибками: %d из %d\n", failed, len(results))
		os.Exit(1)
	}
	fmt.Printf("[+++] Успех! Обработано: %d\n", len(results))
}
