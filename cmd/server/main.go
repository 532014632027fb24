package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"knowledge-inbox/internal/chunker"
	"knowledge-inbox/internal/composer"
	"knowledge-inbox/internal/config"
	"knowledge-inbox/internal/embedding"
	"knowledge-inbox/internal/fetcher"
	"knowledge-inbox/internal/rag"
	"knowledge-inbox/internal/server"
	"knowledge-inbox/internal/store"
	"knowledge-inbox/internal/store/memory"
	"knowledge-inbox/internal/store/pg"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", "./configs/config.yaml", "Path to the config file")
	useMemory := flag.Bool("memory", false, "Use the in-memory store instead of Postgres")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if cfg.Database.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx := context.Background()

	var st store.Store
	if *useMemory {
		st = memory.NewStore()
		log.Info().Msg("Using in-memory store")
	} else {
		db := pg.Connect(&cfg.Database)
		defer db.Close()
		pgStore := pg.New(db)
		if err := pgStore.Init(ctx); err != nil {
			log.Fatal().Err(err).Msg("Error initializing database")
		}
		st = pgStore
	}

	ch, err := chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid chunking configuration")
	}

	var comp composer.Composer
	if key := cfg.OpenAI.APIKey(); key != "" {
		comp, err = composer.NewExternalModel(key, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, cfg.OpenAI.Timeout())
		if err != nil {
			log.Fatal().Err(err).Msg("Error initializing answer model")
		}
		log.Info().Msg("External model enabled for answer generation")
	} else {
		log.Info().Msg("Running in local-only answer mode")
	}

	svc := rag.NewService(st, ch, embedding.New(), comp)
	srv := server.New(svc, st, fetcher.New(cfg.Fetcher.Timeout()), cfg.RAG.TopK)

	httpSrv := &http.Server{Addr: cfg.Server.Addr(), Handler: srv.Router()}
	go func() {
		log.Info().Str("addr", httpSrv.Addr).Msg("Server started")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("Shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
	}
}
