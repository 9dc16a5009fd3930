package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"relay_bot/internal/telegram/models"

	"github.com/go-telegram/bot"
	botModels "github.com/go-telegram/bot/models"
)

// handleListRules 处理 /rules 命令（列出全部转发规则）
func (b *Bot) handleListRules(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil {
		return
	}

	rules, err := b.ruleService.ListRules(ctx)
	if err != nil {
		b.sendErrorMessage(ctx, update.Message.Chat.ID, "查询失败")
		return
	}

	if len(rules) == 0 {
		b.sendMessage(ctx, update.Message.Chat.ID, "📝 暂无转发规则\n\n使用 /addrule 添加规则")
		return
	}

	var text strings.Builder
	text.WriteString("📋 转发规则列表:\n\n")
	for i, rule := range rules {
		stateEmoji := "▶️"
		if !rule.IsEnabled {
			stateEmoji = "⏸"
		}
		mode := "直接转发"
		if !rule.Edits.Empty() {
			mode = "编辑后发送"
		}
		text.WriteString(fmt.Sprintf("%d. %s <b>%s</b>\n   源: %d\n   目标: %s\n   模式: %s\n\n",
			i+1,
			stateEmoji,
			rule.RuleName,
			rule.SourceChannelID,
			formatTargetList(rule.TargetChannelIDs),
			mode,
		))
	}

	b.sendMessage(ctx, update.Message.Chat.ID, text.String())
}

// handleAddRule 处理 /addrule 命令
// 用法: /addrule <名称> <源频道ID> <目标ID>[,<目标ID>...]
func (b *Bot) handleAddRule(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil {
		return
	}

	parts := strings.Fields(update.Message.Text)
	if len(parts) < 4 {
		b.sendErrorMessage(ctx, update.Message.Chat.ID,
			"用法: /addrule <名称> <源频道ID> <目标ID>[,<目标ID>...]\n例如: /addrule news-mirror -1001234567890 -1009876543210")
		return
	}

	sourceID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		b.sendErrorMessage(ctx, update.Message.Chat.ID, "无效的源频道 ID")
		return
	}

	targetIDs, err := parseTargetList(parts[3])
	if err != nil {
		b.sendErrorMessage(ctx, update.Message.Chat.ID, err.Error())
		return
	}

	rule := &models.ForwardingRule{
		RuleName:         parts[1],
		SourceChannelID:  sourceID,
		TargetChannelIDs: targetIDs,
		IsEnabled:        true,
	}

	if err := b.ruleService.CreateRule(ctx, rule); err != nil {
		b.sendErrorMessage(ctx, update.Message.Chat.ID, err.Error())
		return
	}

	b.sendSuccessMessage(ctx, update.Message.Chat.ID,
		fmt.Sprintf("规则 %s 已创建: %d → %s", rule.RuleName, sourceID, formatTargetList(targetIDs)))
}

// handleDeleteRule 处理 /delrule 命令
func (b *Bot) handleDeleteRule(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil {
		return
	}

	ruleName, ok := singleRuleNameArg(update.Message.Text, "/delrule")
	if !ok {
		b.sendErrorMessage(ctx, update.Message.Chat.ID, "用法: /delrule <规则名称>")
		return
	}

	if err := b.ruleService.DeleteRule(ctx, ruleName); err != nil {
		b.sendErrorMessage(ctx, update.Message.Chat.ID, err.Error())
		return
	}

	b.sendSuccessMessage(ctx, update.Message.Chat.ID, fmt.Sprintf("规则 %s 已删除", ruleName))
}

// handleEnableRule 处理 /rule_on 命令
func (b *Bot) handleEnableRule(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	b.setRuleState(ctx, update, "/rule_on", true)
}

// handleDisableRule 处理 /rule_off 命令
func (b *Bot) handleDisableRule(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	b.setRuleState(ctx, update, "/rule_off", false)
}

// setRuleState 启停规则的公共逻辑
func (b *Bot) setRuleState(ctx context.Context, update *botModels.Update, command string, enabled bool) {
	if update.Message == nil {
		return
	}

	ruleName, ok := singleRuleNameArg(update.Message.Text, command)
	if !ok {
		b.sendErrorMessage(ctx, update.Message.Chat.ID, fmt.Sprintf("用法: %s <规则名称>", command))
		return
	}

	if err := b.ruleService.SetRuleEnabled(ctx, ruleName, enabled); err != nil {
		b.sendErrorMessage(ctx, update.Message.Chat.ID, err.Error())
		return
	}

	if enabled {
		b.sendSuccessMessage(ctx, update.Message.Chat.ID, fmt.Sprintf("规则 %s 已启用", ruleName))
	} else {
		b.sendSuccessMessage(ctx, update.Message.Chat.ID, fmt.Sprintf("规则 %s 已停用", ruleName))
	}
}

// singleRuleNameArg 解析只带一个规则名参数的命令
func singleRuleNameArg(text, command string) (string, bool) {
	parts := strings.Fields(text)
	if len(parts) != 2 || parts[0] != command {
		return "", false
	}
	return parts[1], true
}

// parseTargetList 解析逗号分隔的目标 ID 列表
func parseTargetList(arg string) ([]int64, error) {
	raw := strings.Split(arg, ",")
	targets := make([]int64, 0, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		id, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("无效的目标 ID: %s", item)
		}
		targets = append(targets, id)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("至少需要一个目标 ID")
	}
	return targets, nil
}

// formatTargetList 格式化目标 ID 列表
func formatTargetList(targets []int64) string {
	parts := make([]string, 0, len(targets))
	for _, id := range targets {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ", ")
}
