package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"CohereChat/internal/backend"
	"CohereChat/internal/chatbot"
	"CohereChat/internal/config"
	"CohereChat/internal/telemetry"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run starts the chat and returns the process exit code: 0 after a clean
// session, 1 when startup or the session fails.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	envFile := config.EnvFile()
	if err := config.LoadEnvFile(envFile); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	flags := flag.NewFlagSet("coherechat", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&cfg.Model, "model", cfg.Model, "Model identifier (default "+config.DefaultCohereModel+" for cohere, "+config.DefaultOpenAIModel+" for openai)")
	flags.StringVar(&cfg.Backend, "backend", cfg.Backend, "LLM backend (cohere|openai)")
	flags.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable debug logging")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	cfg, err = config.Normalize(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	cfg.APIKey, err = config.LoadCredential(envFile, config.CredentialVar(cfg.Backend))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	cfg.Profile, err = config.LoadProfile(cfg.ProfilePath, cfg.Backend)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logger, logFile, err := telemetry.InitLogger(cfg.LogDir, cfg.Debug)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracer, meter, shutdown, err := telemetry.InitTelemetry(ctx, cfg.LogDir)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize telemetry: %v\n", err)
		return 1
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("failed to shut down telemetry", "error", err)
		}
	}()

	instruments, err := telemetry.NewInstruments(meter)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize metrics: %v\n", err)
		return 1
	}

	opts := []chatbot.Option{
		chatbot.WithLogger(logger),
		chatbot.WithTracer(tracer),
		chatbot.WithInstruments(instruments),
	}
	if cfg.LedgerPath != "" {
		ledger, err := telemetry.OpenLedger(cfg.LedgerPath)
		if err != nil {
			logger.Warn("failed to open turn ledger, continuing without it", "path", cfg.LedgerPath, "error", err)
		} else {
			defer ledger.Close()
			opts = append(opts, chatbot.WithRecorder(ledger))
		}
	}

	client, err := backend.New(cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if cfg.Debug {
		logger.Debug("debug mode enabled", "backend", cfg.Backend, "model", cfg.Model, "log_dir", cfg.LogDir)
	}

	bot := chatbot.New(client, chatbot.Settings{
		Backend:        cfg.Backend,
		Model:          cfg.Model,
		Temperature:    config.Temperature,
		SystemPrompt:   cfg.Profile.SystemPrompt,
		FallbackModels: cfg.Profile.FallbackModels,
	}, stdin, stdout, opts...)

	if err := bot.Run(ctx); err != nil {
		logger.Error("chat session failed", "error", err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
