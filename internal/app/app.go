package app

import (
	"context"
	"fmt"

	"relay_bot/internal/config"
	"relay_bot/internal/logger"
	"relay_bot/internal/mongo"
	"relay_bot/internal/telegram"
)

// App 应用服务容器
// 负责管理所有服务的生命周期（初始化、运行、关闭）
type App struct {
	MongoDB     *mongo.Client
	TelegramBot *telegram.Bot
}

// New 初始化应用及其所有服务
// 按顺序初始化各个服务，任何服务初始化失败都会返回错误
func New(cfg *config.Config) (*App, error) {
	app := &App{}

	// 初始化 MongoDB
	mongoClient, err := mongo.InitFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init MongoDB failed: %w", err)
	}
	app.MongoDB = mongoClient
	logger.L().Info("MongoDB initialized successfully")

	// 初始化 Telegram Bot（含中继管线）
	app.TelegramBot, err = telegram.InitFromConfig(cfg, mongoClient.Database())
	if err != nil {
		_ = app.Close(context.Background())
		return nil, fmt.Errorf("init Telegram bot failed: %w", err)
	}
	logger.L().Info("Telegram bot initialized successfully")

	return app, nil
}

// Run 运行应用，阻塞到 ctx 取消
func (a *App) Run(ctx context.Context) error {
	return a.TelegramBot.Start(ctx)
}

// Close 优雅关闭所有服务
// 先停 Bot（排空中继队列），再断数据库连接
func (a *App) Close(ctx context.Context) error {
	if a.TelegramBot != nil {
		if err := a.TelegramBot.Stop(ctx); err != nil {
			logger.L().Errorf("Failed to stop Telegram bot: %v", err)
		}
	}

	if a.MongoDB != nil {
		if err := a.MongoDB.Close(ctx); err != nil {
			return fmt.Errorf("close MongoDB failed: %w", err)
		}
	}
	return nil
}
