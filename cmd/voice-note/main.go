package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nguyentantai21042004/voice-note/internal/config"
	"github.com/nguyentantai21042004/voice-note/internal/engine"
	"github.com/nguyentantai21042004/voice-note/internal/export"
	"github.com/nguyentantai21042004/voice-note/internal/intake"
	"github.com/nguyentantai21042004/voice-note/internal/logger"
	"github.com/nguyentantai21042004/voice-note/internal/pipeline"
	"github.com/nguyentantai21042004/voice-note/internal/processor"
	"github.com/nguyentantai21042004/voice-note/internal/watcher"
)

const defaultConfigPath = "config.yaml"

type flags struct {
	configPath  string
	file        string
	watch       bool
	refine      bool
	modelSize   string
	language    string
	llmURL      string
	llmModel    string
	credentials string
	set         map[string]bool
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.configPath, "config", defaultConfigPath, "path to YAML config")
	flag.StringVar(&f.file, "file", "", "media file or directory to process once")
	flag.BoolVar(&f.watch, "watch", false, "watch the input folder for new media")
	flag.BoolVar(&f.refine, "refine", false, "refine the transcript before generating the note")
	flag.StringVar(&f.modelSize, "model-size", "", "transcription model size (tiny, base, small, medium, large)")
	flag.StringVar(&f.language, "language", "", "spoken language code, or auto")
	flag.StringVar(&f.llmURL, "llm-url", "", "LLM base URL")
	flag.StringVar(&f.llmModel, "llm-model", "", "LLM model name")
	flag.StringVar(&f.credentials, "credentials", "", "service account JSON file; switches transcription to the gcp profile")
	flag.Parse()

	f.set = make(map[string]bool)
	flag.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f
}

func main() {
	ctx := context.Background()
	f := parseFlags()

	// .env is optional; it only feeds the hosted LLM key env var.
	_ = godotenv.Load()

	cfg, err := loadConfig(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log.Info(ctx, "========================================")
	log.Info(ctx, "Voice Note Pipeline")
	log.Info(ctx, "========================================")
	log.Info(ctx, "System: %s/%s", runtime.GOOS, runtime.GOARCH)
	log.Info(ctx, "Engine: %s", cfg.Engine.BaseURL)
	log.Info(ctx, "Transcription: profile=%s model=%s language=%s",
		cfg.Transcription.Profile, cfg.Transcription.ModelSize, cfg.Transcription.Language)

	llm, err := cfg.LLMSettings()
	if err != nil {
		log.Error(ctx, "Invalid LLM settings: %v", err)
		os.Exit(1)
	}
	log.Info(ctx, "LLM: %s (refine=%t)", llm, cfg.Pipeline.Refine)

	if err := ensureDirectories(cfg); err != nil {
		log.Error(ctx, "Failed to create directories: %v", err)
		os.Exit(1)
	}

	// Initialize dependencies
	validator := intake.New(cfg.Intake.Extensions)
	client := engine.New(cfg.Engine.BaseURL, log,
		engine.WithTimeout(time.Duration(cfg.Engine.TimeoutSeconds)*time.Second))
	profile := engine.ProfileLocal
	if cfg.Transcription.Profile == config.ProfileGCP {
		profile = engine.ProfileCredential
	}
	newSession := func() pipeline.Session {
		return pipeline.New(validator, client, log, pipeline.WithProfile(profile))
	}
	proc := processor.New(cfg, validator, newSession, export.New(cfg.Paths.Output, log), log)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info(ctx, "Shutdown signal received")
		cancel()
	}()

	if !f.watch {
		if err := runOnce(ctx, proc, f.file, cfg.Paths.Input); err != nil {
			log.Error(ctx, "%v", err)
			os.Exit(1)
		}
		return
	}

	if err := runWatch(ctx, cfg, validator, proc, log); err != nil {
		log.Error(ctx, "Watcher error: %v", err)
		os.Exit(1)
	}
	log.Info(ctx, "Voice Note Pipeline stopped")
}

// loadConfig reads the YAML config, falling back to defaults when the default
// path does not exist, and applies command line overrides.
func loadConfig(f flags) (*config.Config, error) {
	var cfg *config.Config
	if _, err := os.Stat(f.configPath); errors.Is(err, os.ErrNotExist) && !f.set["config"] {
		cfg = config.Default()
	} else {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if f.set["refine"] {
		cfg.Pipeline.Refine = f.refine
	}
	if f.modelSize != "" {
		cfg.Transcription.ModelSize = f.modelSize
	}
	if f.language != "" {
		cfg.Transcription.Language = f.language
	}
	if f.llmURL != "" {
		cfg.LLM.BaseURL = f.llmURL
	}
	if f.llmModel != "" {
		cfg.LLM.Model = f.llmModel
	}
	if f.credentials != "" {
		cfg.Transcription.Profile = config.ProfileGCP
		cfg.Transcription.CredentialsFile = f.credentials
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// runOnce processes a single file, every media file in a directory, or the
// current inbox contents when target is empty.
func runOnce(ctx context.Context, proc processor.Processor, target, inbox string) error {
	if target == "" {
		target = inbox
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("stat %s: %w", target, err)
	}
	if !info.IsDir() {
		return proc.Process(ctx, target)
	}

	paths, err := proc.Discover(target)
	if err != nil {
		return fmt.Errorf("discover media: %w", err)
	}
	return proc.ProcessAll(ctx, paths)
}

func runWatch(ctx context.Context, cfg *config.Config, v intake.Validator, proc processor.Processor, log logger.Logger) error {
	// Files already waiting in the inbox are handled once the watch is in place.
	backlog := func() ([]string, error) {
		return proc.Discover(cfg.Paths.Input)
	}

	w, err := watcher.New(cfg.Paths.Input, v.Accepts, proc.Process, log, cfg.Performance.MaxConcurrent,
		watcher.WithBacklog(backlog))
	if err != nil {
		return err
	}
	defer w.Stop()

	log.Info(ctx, "========================================")
	log.Info(ctx, "Voice Note Pipeline is ready!")
	log.Info(ctx, "Monitoring: %s", cfg.Paths.Input)
	log.Info(ctx, "Output: %s", cfg.Paths.Output)
	log.Info(ctx, "Accepted: %v", v.Extensions())
	log.Info(ctx, "Press Ctrl+C to stop")
	log.Info(ctx, "========================================")

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Input,
		cfg.Paths.Output,
		cfg.Paths.Archived,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
