package telegram

import (
	"context"
	"fmt"
	"time"

	"relay_bot/internal/config"
	"relay_bot/internal/logger"
	"relay_bot/internal/telegram/models"
	"relay_bot/internal/telegram/relay"
	"relay_bot/internal/telegram/repository"
	"relay_bot/internal/telegram/service"

	"github.com/go-telegram/bot"
	"go.mongodb.org/mongo-driver/mongo"
)

// Config Telegram Bot 配置
type Config struct {
	Token          string        // Bot Token
	OwnerIDs       []int64       // Owner 用户 IDs
	Debug          bool          // 是否开启调试模式
	RuleCacheTTL   time.Duration // 规则缓存有效期（0 表示不缓存）
	RelayWorkers   int           // 中继 worker 协程数量
	RelayQueueSize int           // 中继队列容量
	RelayRate      int           // 出站调用速率（次/秒）
}

// Bot Telegram Bot 服务
type Bot struct {
	bot       *bot.Bot
	db        *mongo.Database
	ownerIDs  []int64
	startTime time.Time

	userRepo   repository.UserRepository
	ruleRepo   repository.RuleRepository
	recordRepo repository.RelayRecordRepository

	userService service.UserService
	ruleService service.RuleService

	matcher    *relay.Matcher
	engine     *relay.Engine
	relayQueue *relay.MemoryQueue
	limiter    *relay.RateLimiter

	workerPool  *WorkerPool
	mediaGroups *MediaGroupCollector
}

// New 创建 Telegram Bot 实例
func New(cfg Config, db *mongo.Database) (*Bot, error) {
	// 验证配置
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram token cannot be empty")
	}
	if cfg.RelayWorkers <= 0 {
		cfg.RelayWorkers = 4
	}
	if cfg.RelayQueueSize <= 0 {
		cfg.RelayQueueSize = 256
	}
	if cfg.RelayRate <= 0 {
		cfg.RelayRate = 25
	}

	// 创建 repositories
	userRepo := repository.NewUserRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	recordRepo := repository.NewRelayRecordRepository(db)

	telegramBot := &Bot{
		db:         db,
		ownerIDs:   cfg.OwnerIDs,
		startTime:  time.Now(),
		userRepo:   userRepo,
		ruleRepo:   ruleRepo,
		recordRepo: recordRepo,
	}

	// 创建 bot 实例，非命令消息统一进入中继入口
	opts := []bot.Option{
		bot.WithDefaultHandler(telegramBot.handleInbound),
	}
	if cfg.Debug {
		opts = append(opts, bot.WithDebug())
	}

	b, err := bot.New(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	telegramBot.bot = b

	// 组装中继管线：匹配 → 决策 → 调度 → 队列 → 执行
	telegramBot.matcher = relay.NewMatcher(ruleRepo, cfg.RuleCacheTTL)
	telegramBot.limiter = relay.NewRateLimiter(cfg.RelayRate)
	executor := relay.NewBotExecutor(b, telegramBot.limiter)
	telegramBot.relayQueue = relay.NewMemoryQueue(cfg.RelayWorkers, cfg.RelayQueueSize, executor, recordRepo)
	telegramBot.engine = relay.NewEngine(telegramBot.matcher, relay.NewScheduler(telegramBot.relayQueue))

	// 创建 services
	telegramBot.userService = service.NewUserService(userRepo)
	telegramBot.ruleService = service.NewRuleService(ruleRepo, telegramBot.matcher.InvalidateCache)

	// Handler 工作池与相册收集器
	telegramBot.workerPool = NewWorkerPool(8, 128)
	telegramBot.mediaGroups = NewMediaGroupCollector(2*time.Second, telegramBot.relayMediaGroup)

	// 初始化 owners
	if err := telegramBot.initOwners(context.Background()); err != nil {
		logger.L().Warnf("Failed to initialize owners: %v", err)
	}

	// 注册 handlers
	telegramBot.registerHandlers()

	// 初始化数据库索引
	if err := telegramBot.ensureIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}

	logger.L().Info("Telegram relay bot initialized successfully")
	return telegramBot, nil
}

// InitFromConfig 从应用配置初始化 Telegram Bot
func InitFromConfig(cfg *config.Config, db *mongo.Database) (*Bot, error) {
	telegramCfg := Config{
		Token:          cfg.TelegramToken,
		OwnerIDs:       cfg.BotOwnerIDs,
		Debug:          false, // 可根据需要从环境变量读取
		RuleCacheTTL:   time.Duration(cfg.RuleCacheTTLSeconds) * time.Second,
		RelayWorkers:   cfg.RelayWorkers,
		RelayQueueSize: cfg.RelayQueueSize,
		RelayRate:      cfg.RelayRatePerSecond,
	}
	return New(telegramCfg, db)
}

// Start 启动 Bot（阻塞式，应在 goroutine 中运行）
func (b *Bot) Start(ctx context.Context) error {
	logger.L().Info("Starting Telegram relay bot...")
	b.bot.Start(ctx)
	logger.L().Info("Telegram relay bot stopped")
	return nil
}

// Stop 停止 Bot 并回收中继资源
// 队列关闭会等待在途任务完成，放在最前
func (b *Bot) Stop(ctx context.Context) error {
	logger.L().Info("Stopping Telegram relay bot...")
	b.relayQueue.Shutdown()
	b.workerPool.Shutdown()
	b.limiter.Close()
	return nil
}

// initOwners 初始化 owner 角色
func (b *Bot) initOwners(ctx context.Context) error {
	for _, ownerID := range b.ownerIDs {
		user, err := b.userRepo.GetByTelegramID(ctx, ownerID)
		if err != nil {
			// 用户不存在，创建 owner 记录
			user = &models.User{
				TelegramID:   ownerID,
				Role:         models.RoleOwner,
				CreatedAt:    time.Now(),
				UpdatedAt:    time.Now(),
				LastActiveAt: time.Now(),
			}
			if err := b.userRepo.CreateOrUpdate(ctx, user); err != nil {
				logger.L().Warnf("Failed to create owner %d: %v", ownerID, err)
				continue
			}
			logger.L().Infof("Initialized owner: %d", ownerID)
		} else if user.Role != models.RoleOwner {
			// 用户存在但角色不是 owner，更新为 owner
			user.Role = models.RoleOwner
			user.UpdatedAt = time.Now()
			if err := b.userRepo.CreateOrUpdate(ctx, user); err != nil {
				logger.L().Warnf("Failed to update owner role for %d: %v", ownerID, err)
				continue
			}
			logger.L().Infof("Updated user %d to owner", ownerID)
		}
	}
	return nil
}

// ensureIndexes 确保所有数据库索引存在
func (b *Bot) ensureIndexes(ctx context.Context) error {
	if err := b.userRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to ensure user indexes: %w", err)
	}
	logger.L().Debug("User indexes ensured")

	if err := b.ruleRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to ensure rule indexes: %w", err)
	}
	logger.L().Debug("Rule indexes ensured")

	if err := b.recordRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to ensure relay record indexes: %w", err)
	}
	logger.L().Debug("Relay record indexes ensured")

	return nil
}
