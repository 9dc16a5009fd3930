package telegram

import (
	"context"
	"fmt"
	"strings"

	"relay_bot/internal/logger"
	"relay_bot/internal/telegram/models"
	"relay_bot/internal/telegram/service"

	"github.com/go-telegram/bot"
	botModels "github.com/go-telegram/bot/models"
)

// registerHandlers 注册所有命令处理器（异步执行）
func (b *Bot) registerHandlers() {
	// 普通命令 - 异步执行
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact,
		b.asyncHandler(b.handleStart))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/ping", bot.MatchTypeExact,
		b.asyncHandler(b.handlePing))

	// 管理员命令（仅 Owner） - 异步执行
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/grant", bot.MatchTypePrefix,
		b.asyncHandler(b.RequireOwner(b.handleGrantAdmin)))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/revoke", bot.MatchTypePrefix,
		b.asyncHandler(b.RequireOwner(b.handleRevokeAdmin)))

	// 规则管理命令（Admin+） - 异步执行
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/rules", bot.MatchTypeExact,
		b.asyncHandler(b.RequireAdmin(b.handleListRules)))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/addrule", bot.MatchTypePrefix,
		b.asyncHandler(b.RequireAdmin(b.handleAddRule)))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/delrule", bot.MatchTypePrefix,
		b.asyncHandler(b.RequireAdmin(b.handleDeleteRule)))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/rule_on", bot.MatchTypePrefix,
		b.asyncHandler(b.RequireAdmin(b.handleEnableRule)))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/rule_off", bot.MatchTypePrefix,
		b.asyncHandler(b.RequireAdmin(b.handleDisableRule)))

	// 运行状态（Admin+）
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/status", bot.MatchTypeExact,
		b.asyncHandler(b.RequireAdmin(b.handleStatus)))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/admins", bot.MatchTypeExact,
		b.asyncHandler(b.RequireAdmin(b.handleListAdmins)))

	logger.L().Debug("All handlers registered with async execution")
}

// asyncHandler 把 handler 包装成经工作池异步执行
func (b *Bot) asyncHandler(handler bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
		b.workerPool.Submit(HandlerTask{
			Ctx:         ctx,
			BotInstance: botInstance,
			Update:      update,
			Handler:     handler,
		})
	}
}

// isCommandUpdate 判断更新是否应交给注册的命令 handler
// 命令只存在于普通消息里；频道贴文即使以 "/" 开头也照常中继
func isCommandUpdate(update *botModels.Update) bool {
	return update.Message != nil && strings.HasPrefix(update.Message.Text, "/")
}

// handleInbound 默认 handler：所有非命令更新的入口
// 频道消息和群消息进中继管线，相册消息先进收集器
func (b *Bot) handleInbound(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if isCommandUpdate(update) {
		return
	}

	msg := update.Message
	if msg == nil {
		msg = update.ChannelPost
	}
	if msg == nil {
		return
	}

	if msg.MediaGroupID != "" {
		b.mediaGroups.Add(msg)
		return
	}

	b.relayMessage(ctx, msg)
}

// relayMessage 把单条消息送入中继管线
func (b *Bot) relayMessage(ctx context.Context, msg *botModels.Message) {
	inbound := toInboundMessage(msg)
	if err := b.engine.HandleMessage(ctx, inbound); err != nil {
		logger.L().Errorf("Relay failed for message %d in chat %d: %v", msg.ID, msg.Chat.ID, err)
	}
}

// relayMediaGroup 相册收齐后逐条送入中继管线
// 收集器的回调在定时器协程里触发，使用后台上下文
func (b *Bot) relayMediaGroup(messages []*botModels.Message) {
	for _, msg := range messages {
		b.relayMessage(context.Background(), msg)
	}
}

// handleStart 处理 /start 命令
func (b *Bot) handleStart(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	// 使用 Service 注册/更新用户
	userInfo := &service.TelegramUserInfo{
		TelegramID: update.Message.From.ID,
		Username:   update.Message.From.Username,
		FirstName:  update.Message.From.FirstName,
		LastName:   update.Message.From.LastName,
	}

	if err := b.userService.RegisterOrUpdateUser(ctx, userInfo); err != nil {
		b.sendErrorMessage(ctx, update.Message.Chat.ID, "注册失败，请稍后重试")
		return
	}

	welcomeText := fmt.Sprintf(
		"👋 你好, %s!\n\n本 Bot 负责频道消息中继。\n\n可用命令:\n/start - 开始\n/ping - 测试连接\n/rules - 查看转发规则（需要管理员权限）\n/status - 运行状态（需要管理员权限）",
		update.Message.From.FirstName,
	)

	b.sendMessage(ctx, update.Message.Chat.ID, welcomeText)
}

// handlePing 处理 /ping 命令
func (b *Bot) handlePing(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil {
		return
	}

	// 更新用户活跃时间
	if update.Message.From != nil {
		_ = b.userService.UpdateUserActivity(ctx, update.Message.From.ID)
	}

	b.sendMessage(ctx, update.Message.Chat.ID, "🏓 Pong!")
}

// handleGrantAdmin 处理 /grant 命令（授予管理员权限）
func (b *Bot) handleGrantAdmin(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	// 解析命令参数
	parts := strings.Fields(update.Message.Text)
	if len(parts) < 2 {
		b.sendErrorMessage(ctx, update.Message.Chat.ID,
			"用法: /grant <user_id>\n例如: /grant 123456789")
		return
	}

	var targetID int64
	_, err := fmt.Sscanf(parts[1], "%d", &targetID)
	if err != nil {
		b.sendErrorMessage(ctx, update.Message.Chat.ID, "无效的用户 ID")
		return
	}

	// 使用 Service 授予管理员权限（包含业务验证）
	if err := b.userService.GrantAdminPermission(ctx, targetID, update.Message.From.ID); err != nil {
		b.sendErrorMessage(ctx, update.Message.Chat.ID, err.Error())
		return
	}

	b.sendSuccessMessage(ctx, update.Message.Chat.ID,
		fmt.Sprintf("已授予用户 %d 管理员权限", targetID))
}

// handleRevokeAdmin 处理 /revoke 命令（撤销管理员权限）
func (b *Bot) handleRevokeAdmin(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	// 解析命令参数
	parts := strings.Fields(update.Message.Text)
	if len(parts) < 2 {
		b.sendErrorMessage(ctx, update.Message.Chat.ID,
			"用法: /revoke <user_id>\n例如: /revoke 123456789")
		return
	}

	var targetID int64
	_, err := fmt.Sscanf(parts[1], "%d", &targetID)
	if err != nil {
		b.sendErrorMessage(ctx, update.Message.Chat.ID, "无效的用户 ID")
		return
	}

	// 使用 Service 撤销管理员权限（包含业务验证）
	if err := b.userService.RevokeAdminPermission(ctx, targetID, update.Message.From.ID); err != nil {
		b.sendErrorMessage(ctx, update.Message.Chat.ID, err.Error())
		return
	}

	b.sendSuccessMessage(ctx, update.Message.Chat.ID,
		fmt.Sprintf("已撤销用户 %d 的管理员权限", targetID))
}

// handleListAdmins 处理 /admins 命令（列出所有管理员）
func (b *Bot) handleListAdmins(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil {
		return
	}

	// 使用 Service 获取管理员列表
	admins, err := b.userService.ListAllAdmins(ctx)
	if err != nil {
		b.sendErrorMessage(ctx, update.Message.Chat.ID, "查询失败")
		return
	}

	if len(admins) == 0 {
		b.sendMessage(ctx, update.Message.Chat.ID, "📝 暂无管理员")
		return
	}

	var text strings.Builder
	text.WriteString("👥 管理员列表:\n\n")
	for i, admin := range admins {
		roleEmoji := "👤"
		if admin.Role == models.RoleOwner {
			roleEmoji = "👑"
		}
		text.WriteString(fmt.Sprintf("%d. %s %s (@%s) - ID: %d\n",
			i+1,
			roleEmoji,
			admin.FirstName,
			admin.Username,
			admin.TelegramID,
		))
	}

	b.sendMessage(ctx, update.Message.Chat.ID, text.String())
}
