package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/sketchroom/internal/config"
	"github.com/scythe504/sketchroom/internal/game"
	"github.com/scythe504/sketchroom/internal/logger"
	"github.com/scythe504/sketchroom/internal/server"
	"github.com/scythe504/sketchroom/internal/websocket"
	"github.com/scythe504/sketchroom/internal/words"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("[main] invalid configuration")
	}
	logger.Init(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	corpus, closeCorpus, err := openCorpus(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("[main] could not load word corpus")
	}
	defer closeCorpus()

	hub := websocket.NewHub()
	rooms := game.NewDirectory(ctx, game.DirectoryOptions{
		Settings:    cfg.RoomSettings(),
		Words:       corpus,
		Broadcaster: hub,
	})
	defer rooms.Close()

	ws := websocket.NewHandler(hub, rooms, websocket.HandlerOptions{
		AllowedOrigin: cfg.AllowedOrigin,
		ChatRate:      cfg.ChatRate,
		ChatBurst:     cfg.ChatBurst,
	})
	srv := server.NewHTTPServer(cfg.Addr(), server.New(cfg.AllowedOrigin, rooms, corpus, ws))

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		log.Info().Msg("[main] shutting down gracefully, press Ctrl+C again to force")
		stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("[main] server forced to shutdown")
		}
	}()

	log.Info().Str("addr", srv.Addr).Msg("[main] listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("[main] http server error")
	}

	<-done
	log.Info().Msg("[main] graceful shutdown complete")
}

// openCorpus picks the word source: Postgres when DATABASE_URL is set,
// then a CSV file, then the embedded list.
func openCorpus(ctx context.Context, cfg config.Config) (game.WordSource, func(), error) {
	if cfg.DatabaseURL != "" {
		pc, err := words.NewPostgresCorpus(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := pc.EnsureSchema(ctx); err != nil {
			pc.Close()
			return nil, nil, err
		}
		if err := pc.Seed(ctx, words.DefaultWords()); err != nil {
			pc.Close()
			return nil, nil, err
		}
		log.Info().Msg("[openCorpus] using postgres word corpus")
		return pc, pc.Close, nil
	}

	list := words.DefaultWords()
	if cfg.WordsFile != "" {
		var err error
		if list, err = words.ReadCsvFile(cfg.WordsFile); err != nil {
			return nil, nil, err
		}
	}

	corpus := words.NewMemoryCorpus(words.Texts(list), nil)
	log.Info().Int("words", corpus.Size()).Msg("[openCorpus] using in-memory word corpus")
	return corpus, func() {}, nil
}
