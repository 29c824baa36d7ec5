// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/odedby/tasknest/internal/bot"
	"github.com/odedby/tasknest/internal/config"
	"github.com/odedby/tasknest/internal/database"
	"github.com/odedby/tasknest/internal/mirror"
	"github.com/odedby/tasknest/internal/notify"
	"github.com/odedby/tasknest/internal/repository"
	"github.com/odedby/tasknest/internal/server"
	"github.com/odedby/tasknest/internal/service"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(database.Config{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database connection: %v", err)
		}
	}()

	taskRepo := repository.NewTaskRepository(db)
	taskService := service.NewTaskService(taskRepo)
	formatter := notify.NewFormatter(cfg.Server.BaseURL, cfg.Chat.Users)
	botRouter := bot.NewRouter(taskService, formatter)
	srv := server.New(taskService, formatter, botRouter)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("🚀 tasknest server listening on port %s", cfg.Server.HTTPPort)
		return srv.Listen(":" + cfg.Server.HTTPPort)
	})

	if cfg.Mirror.Enabled {
		syncer := mirror.NewSyncer(taskService, mirror.NewFileWriter(cfg.Mirror.Dir), cfg.Mirror.Interval)
		g.Go(func() error {
			if err := syncer.Run(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		log.Println("📴 Shutting down server...")
		return srv.Shutdown()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Server exited with error: %v", err)
	}
	log.Println("✅ Server shutdown complete")
}
