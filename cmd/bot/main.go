package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"relay_bot/internal/app"
	"relay_bot/internal/config"
	"relay_bot/internal/logger"
)

func main() {
	// 本地开发从 .env 读取，生产环境可没有这个文件
	_ = godotenv.Load()

	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatalf("Failed to load config: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		logger.L().Fatalf("Failed to initialize app: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := application.Run(ctx); err != nil {
			logger.L().Errorf("Bot stopped with error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.L().Info("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := application.Close(shutdownCtx); err != nil {
		logger.L().Errorf("Shutdown error: %v", err)
	}
	logger.L().Info("Bye")
}
