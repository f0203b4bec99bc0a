package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docvoice/internal/api"
	"github.com/dgallion1/docvoice/internal/audiostore"
	"github.com/dgallion1/docvoice/internal/config"
	"github.com/dgallion1/docvoice/internal/parser"
	"github.com/dgallion1/docvoice/internal/pipeline"
	"github.com/dgallion1/docvoice/internal/speech"
	"github.com/spf13/cobra"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "docvoice:", err)
		os.Exit(1)
	}

	if err := newRootCmd(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "docvoice:", err)
		if errors.Is(err, parser.ErrInputNotFound) || errors.Is(err, parser.ErrInvalidDocument) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "docvoice",
		Short: "Convert a document's text to a spoken MP3",
		Long: `docvoice extracts text from a document page by page and synthesizes
it to an MP3 via the Google Translate speech endpoint. Pages that fail
to extract are skipped so partially damaged documents still produce
partial audio. With no flags it reads simple.pdf and writes Audio.mp3.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.Context(), cfg, verbose)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.InputPath, "input", "i", cfg.InputPath, "input document (pdf, txt, md, html, docx)")
	f.StringVarP(&cfg.OutputPath, "output", "o", cfg.OutputPath, "output MP3 path")
	f.StringVarP(&cfg.Language, "lang", "l", cfg.Language, "speech language code")
	f.BoolVar(&cfg.Slow, "slow", cfg.Slow, "use the reduced speaking rate")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable info logging")

	cmd.AddCommand(newServeCmd(cfg))

	return cmd
}

// newLogger writes JSON logs to stderr so stdout stays reserved for
// the no-text message.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runConvert(ctx context.Context, cfg config.Config, verbose bool) error {
	log := newLogger(verbose)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	synth := speech.NewGoogleClient(cfg.Language,
		speech.WithEndpoint(cfg.TTSEndpoint),
		speech.WithSlow(cfg.Slow),
		speech.WithChunkLimit(cfg.ChunkLimit),
		speech.WithTimeout(cfg.TTSTimeout),
	)
	defer synth.Close()

	_, err := pipeline.Run(ctx, cfg, synth, log)
	if errors.Is(err, pipeline.ErrNoExtractableText) {
		fmt.Println(pipeline.NoTextMessage)
		return nil
	}
	return err
}

func newServeCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the document-to-speech HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&cfg.Port, "port", "p", cfg.Port, "listen port")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	factory := func(language string, slow bool) speech.Synthesizer {
		if language == "" {
			language = cfg.Language
		}
		return speech.NewGoogleClient(language,
			speech.WithEndpoint(cfg.TTSEndpoint),
			speech.WithSlow(slow),
			speech.WithChunkLimit(cfg.ChunkLimit),
			speech.WithTimeout(cfg.TTSTimeout),
		)
	}

	store := audiostore.New(cfg.AudioDir)
	orch := pipeline.NewOrchestrator(cfg, factory, store, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting docvoice", "port", cfg.Port, "audio_dir", cfg.AudioDir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
