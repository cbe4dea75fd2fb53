package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/pvolkov/babelroom/internal/adapters/http"
	ws "github.com/pvolkov/babelroom/internal/adapters/signal"
	"github.com/pvolkov/babelroom/internal/app"
	"github.com/pvolkov/babelroom/internal/auth"
	"github.com/pvolkov/babelroom/internal/config"
	"github.com/pvolkov/babelroom/internal/provider"
	"github.com/pvolkov/babelroom/internal/provider/gemini"
	"github.com/pvolkov/babelroom/internal/provider/whisper"
	"github.com/pvolkov/babelroom/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	st := store.New(db)

	geminiPool, err := provider.NewKeyPool("gemini", cfg.Providers.GeminiKeys)
	if err != nil {
		log.Fatal().Err(err).Msg("no Gemini credentials configured")
	}
	whisperPool, err := provider.NewKeyPool("whisper", cfg.Providers.WhisperKeys)
	if err != nil {
		log.Fatal().Err(err).Msg("no Whisper credentials configured")
	}

	geminiExec := &provider.Executor{
		Pool:             geminiPool,
		Classify:         gemini.Classify,
		RetryFactor:      cfg.Providers.RetryFactor,
		TransientRetries: cfg.Providers.TransientRetries,
		BackoffBase:      cfg.Providers.BackoffBase,
	}
	whisperExec := &provider.Executor{
		Pool:             whisperPool,
		Classify:         whisper.Classify,
		RetryFactor:      cfg.Providers.RetryFactor,
		TransientRetries: cfg.Providers.TransientRetries,
		BackoffBase:      cfg.Providers.BackoffBase,
	}

	translator := provider.NewTranslator(gemini.Ops{}, geminiExec, cfg.Languages.Fallback, cfg.Providers.TranslateTimeout)
	transcriber := provider.NewTranscriber(whisper.Ops{}, whisperExec, cfg.Providers.TranscribeTimeout)
	synthesizer := provider.NewSynthesizer(gemini.Ops{}, geminiExec, cfg.Providers.SynthesizeTimeout)

	// Quota windows roll over on the provider's clock; the flags are cleared
	// on a coarse operational interval rather than tracked per key.
	if cfg.Providers.ResetInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Providers.ResetInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					geminiPool.Reset()
					whisperPool.Reset()
				}
			}
		}()
	}

	registry := app.NewRegistry()
	dispatcher := &app.Dispatcher{
		Registry:         registry,
		Messages:         st,
		Members:          st,
		Translator:       translator,
		Transcriber:      transcriber,
		Synthesizer:      synthesizer,
		SynthesisEnabled: cfg.Languages.SynthesisEnabled,
	}

	authMgr := auth.NewManager(cfg.Server.Secret)
	wsCtl := &ws.Controller{
		Registry:     registry,
		Dispatcher:   dispatcher,
		Store:        st,
		Translator:   translator,
		HistoryLimit: cfg.HistoryLimit,
		ReadLimit:    cfg.Server.ReadLimit,
		PingPeriod:   cfg.Server.PingPeriod,
	}
	handlers := &router.Handlers{
		Store:        st,
		Auth:         authMgr,
		Translator:   translator,
		HistoryLimit: cfg.HistoryLimit,
	}

	r := router.SetupRouter(ctx, cfg, handlers, authMgr, wsCtl)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("babelroom server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
