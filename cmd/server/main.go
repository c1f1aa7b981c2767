package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"snappy/auth"
	"snappy/domain/event"
	"snappy/gateway"
	"snappy/internal"
	"snappy/moderation"
	"snappy/projection"
	"snappy/repositories"
	"snappy/runtime"
	"snappy/runtime/workers"
	"snappy/services"
	"snappy/sink"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so that every defer (database close, index
// close) executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := internal.GetLoggerFromString(config.LogLevel)

	auth.SetSigningKey([]byte(config.JwtSecret))

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	// 2. Storage (BadgerDB + Bluge)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	indexWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = indexWriter.Close()
	}()

	// 3. Moderation
	censored, err := moderation.LoadCensoredWords()
	if err != nil {
		return fmt.Errorf("censored words loading failed: %w", err)
	}
	moderator, err := moderation.NewModerator(censored.Words, charReplacement)
	if err != nil {
		return fmt.Errorf("moderator setup failed: %w", err)
	}

	// 4. Repositories & Services
	messageRepository := repositories.NewMessageRepository(db, log)
	userRepository := repositories.NewUserRepository(db)
	searchIndex := repositories.NewSearchIndex(indexWriter, log)

	events := make(chan event.DomainEvent, config.EventBufferSize)
	timeline := projection.NewTimeline(config.TailSize)

	messageService := services.NewMessageService(messageRepository, moderator, events, log)
	historyService := services.NewHistoryService(messageRepository, log)
	searchService := services.NewSearchService(searchIndex, log)
	authService := services.NewAuthService(userRepository, config.AuthTokenDuration)
	userService := services.NewUserService(userRepository, log)

	// 5. Presence & Workers
	presence := runtime.NewPresence()
	fanout := workers.NewEventFanout(log, events).
		Add(sink.NewIndexSink(searchIndex, log), sink.NewTimelineSink(timeline))
	stats := workers.NewStatsWorker(log, config.StatsInterval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	supervisor := workers.NewSupervisor(log)
	supervisor.Add(fanout, stats)
	supervisorDone := make(chan struct{})
	go func() {
		defer close(supervisorDone)
		supervisor.Run(ctx)
	}()

	// 6. Debug inspector (separate port, read-only view over the store)
	internal.StartDebugServer(db, config.DebugPort, nil, func() map[string]any {
		snapshot := stats.Latest()
		return map[string]any{
			"Online":     len(presence.Online()),
			"CPU":        fmt.Sprintf("%.1f%%", snapshot.CpuPercent),
			"RAM":        fmt.Sprintf("%.1f%%", snapshot.RamPercent),
			"Sampled at": snapshot.SampledAt.Format(time.RFC822),
		}
	})

	// 7. HTTP & Websocket server
	handlers := gateway.NewHandlers(authService, userService,
		messageService, historyService, searchService, timeline, log)
	router := gateway.NewRouter(handlers, presence, moderator, gateway.RouterConfig{
		SendBufferSize: config.SendBufferSize,
		AllowedOrigin:  config.WsAllowedOrigin,
	}, log)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown failed", "err", err)
	}

	supervisor.Stop()
	<-supervisorDone
	log.Info("Program stopped cleanly")

	return nil
}
