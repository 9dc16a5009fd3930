package repository

import (
	"context"

	"relay_bot/internal/telegram/models"
)

// RuleRepository 转发规则数据访问接口
// 中继核心只读取规则，规则的增删改只发生在管理命令路径
type RuleRepository interface {
	// Create 创建转发规则
	Create(ctx context.Context, rule *models.ForwardingRule) error

	// GetByName 根据规则名称获取规则
	GetByName(ctx context.Context, ruleName string) (*models.ForwardingRule, error)

	// GetBySourceChannel 根据源频道 key 获取全部规则
	GetBySourceChannel(ctx context.Context, sourceChannelID int64) ([]*models.ForwardingRule, error)

	// ListAll 列出全部规则
	ListAll(ctx context.Context) ([]*models.ForwardingRule, error)

	// SetEnabled 启用/停用规则
	SetEnabled(ctx context.Context, ruleName string, enabled bool) error

	// Delete 删除规则
	Delete(ctx context.Context, ruleName string) error

	// EnsureIndexes 确保索引存在
	EnsureIndexes(ctx context.Context) error
}

// RelayRecordRepository 中继记录数据访问接口
type RelayRecordRepository interface {
	// CreateRecord 创建中继记录
	CreateRecord(ctx context.Context, record *models.RelayRecord) error

	// GetRecordsByJobID 根据任务 ID 查询记录
	GetRecordsByJobID(ctx context.Context, jobID string) ([]*models.RelayRecord, error)

	// EnsureIndexes 确保索引存在
	EnsureIndexes(ctx context.Context) error
}

// UserRepository 用户数据访问接口
type UserRepository interface {
	// CreateOrUpdate 创建或更新用户
	CreateOrUpdate(ctx context.Context, user *models.User) error

	// GetByTelegramID 根据 Telegram ID 获取用户
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)

	// UpdateLastActive 更新用户最后活跃时间
	UpdateLastActive(ctx context.Context, telegramID int64) error

	// GrantAdmin 授予管理员权限
	GrantAdmin(ctx context.Context, telegramID int64, grantedBy int64) error

	// RevokeAdmin 撤销管理员权限
	RevokeAdmin(ctx context.Context, telegramID int64) error

	// ListAdmins 列出所有管理员
	ListAdmins(ctx context.Context) ([]*models.User, error)

	// EnsureIndexes 确保索引存在
	EnsureIndexes(ctx context.Context) error
}
