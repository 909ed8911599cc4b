package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"product-chat-be/internal/bootstrap"
	"product-chat-be/internal/config"
	"product-chat-be/internal/model"
	"product-chat-be/internal/server"
	"product-chat-be/internal/tracer"
	"product-chat-be/pkg/database"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.IsProduction())
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}
	if err := database.Migrate(gormDB, &model.ChatSession{}, &model.ChatMessage{}, &model.Product{}); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	container, err := bootstrap.NewContainer(gormDB, cfg)
	if err != nil {
		log.Fatalf("Bootstrap failed: %v", err)
	}
	defer container.Close()
	defer container.Logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := container.ConsumerService.Consume(ctx); err != nil {
		container.Logger.Error("MAIN", "failed to start consumer", map[string]interface{}{
			"error": err.Error(),
		})
	}

	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(); err != nil {
			container.Logger.Warn("MAIN", "server shutdown failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	if err := srv.Run(); err != nil {
		container.Logger.Error("MAIN", "server stopped", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
