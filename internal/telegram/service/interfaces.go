package service

import (
	"context"

	"relay_bot/internal/telegram/models"
)

// UserService 用户业务逻辑接口
type UserService interface {
	// RegisterOrUpdateUser 注册或更新用户
	RegisterOrUpdateUser(ctx context.Context, info *TelegramUserInfo) error

	// GrantAdminPermission 授予管理员权限（包含业务验证）
	GrantAdminPermission(ctx context.Context, targetID, grantedBy int64) error

	// RevokeAdminPermission 撤销管理员权限（包含业务验证）
	RevokeAdminPermission(ctx context.Context, targetID, revokedBy int64) error

	// GetUserInfo 获取用户信息
	GetUserInfo(ctx context.Context, telegramID int64) (*models.User, error)

	// ListAllAdmins 列出所有管理员
	ListAllAdmins(ctx context.Context) ([]*models.User, error)

	// CheckOwnerPermission 检查是否为 Owner
	CheckOwnerPermission(ctx context.Context, telegramID int64) (bool, error)

	// CheckAdminPermission 检查是否为 Admin+
	CheckAdminPermission(ctx context.Context, telegramID int64) (bool, error)

	// UpdateUserActivity 更新用户活跃时间
	UpdateUserActivity(ctx context.Context, telegramID int64) error
}

// RuleService 转发规则业务逻辑接口
type RuleService interface {
	// CreateRule 创建转发规则（包含参数验证）
	CreateRule(ctx context.Context, rule *models.ForwardingRule) error

	// DeleteRule 删除转发规则
	DeleteRule(ctx context.Context, ruleName string) error

	// SetRuleEnabled 启用/停用规则
	SetRuleEnabled(ctx context.Context, ruleName string, enabled bool) error

	// GetRule 获取单条规则
	GetRule(ctx context.Context, ruleName string) (*models.ForwardingRule, error)

	// ListRules 列出全部规则
	ListRules(ctx context.Context) ([]*models.ForwardingRule, error)
}

// TelegramUserInfo Telegram 用户信息 DTO
type TelegramUserInfo struct {
	TelegramID   int64
	Username     string
	FirstName    string
	LastName     string
	LanguageCode string
	IsPremium    bool
}
