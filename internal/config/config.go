package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config 应用程序配置
type Config struct {
	TelegramToken       string  // Telegram Bot API Token
	BotOwnerIDs         []int64 // Bot管理员ID列表
	MongoURI            string  // MongoDB连接URI
	MongoDBName         string  // MongoDB数据库名称
	RuleCacheTTLSeconds int     // 规则缓存有效期（秒，0 表示不缓存）
	RelayWorkers        int     // 中继 worker 协程数量
	RelayQueueSize      int     // 中继队列容量
	RelayRatePerSecond  int     // 出站调用速率限制（次/秒）
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	if mongoDBName == "" {
		mongoDBName = "relay_bot"
	}

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDBName:   mongoDBName,
	}

	// 解析BOT_OWNER_IDS
	ownerIDsStr := os.Getenv("BOT_OWNER_IDS")
	if ownerIDsStr != "" {
		var err error
		cfg.BotOwnerIDs, err = parseOwnerIDs(ownerIDsStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse BOT_OWNER_IDS: %w", err)
		}
	}

	var err error
	cfg.RuleCacheTTLSeconds, err = intEnv("RULE_CACHE_TTL_SECONDS", 30, 0)
	if err != nil {
		return nil, err
	}
	cfg.RelayWorkers, err = intEnv("RELAY_WORKERS", 4, 1)
	if err != nil {
		return nil, err
	}
	cfg.RelayQueueSize, err = intEnv("RELAY_QUEUE_SIZE", 256, 1)
	if err != nil {
		return nil, err
	}
	cfg.RelayRatePerSecond, err = intEnv("RELAY_RATE_PER_SECOND", 25, 1)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseOwnerIDs 解析逗号分隔的用户ID字符串
// 支持格式: "123456789" 或 "123456789,987654321"
func parseOwnerIDs(s string) ([]int64, error) {
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid owner ID %q: %w", part, err)
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("no valid owner IDs found")
	}

	return ids, nil
}

// intEnv 读取整数环境变量，空值用默认值，低于下限报错
func intEnv(name string, def, min int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	if value < min {
		return 0, fmt.Errorf("%s must be >= %d, got %d", name, min, value)
	}
	return value, nil
}
