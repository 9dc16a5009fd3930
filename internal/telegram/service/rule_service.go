package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"relay_bot/internal/logger"
	"relay_bot/internal/telegram/models"
	"relay_bot/internal/telegram/repository"
)

// RuleServiceImpl 转发规则服务实现
// onChange 在规则变更后回调（用于失效中继侧的规则缓存），可为 nil
type RuleServiceImpl struct {
	ruleRepo repository.RuleRepository
	onChange func(sourceChannelID int64)
}

// NewRuleService 创建规则服务
func NewRuleService(ruleRepo repository.RuleRepository, onChange func(sourceChannelID int64)) RuleService {
	return &RuleServiceImpl{
		ruleRepo: ruleRepo,
		onChange: onChange,
	}
}

// CreateRule 创建转发规则（包含参数验证）
func (s *RuleServiceImpl) CreateRule(ctx context.Context, rule *models.ForwardingRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}

	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		logger.L().Errorf("Failed to create rule %s: %v", rule.RuleName, err)
		return fmt.Errorf("创建规则失败: %w", err)
	}

	logger.L().Infof("Rule %s created: source=%d targets=%v", rule.RuleName, rule.SourceChannelID, rule.TargetChannelIDs)
	s.notifyChange(rule.SourceChannelID)
	return nil
}

// DeleteRule 删除转发规则
func (s *RuleServiceImpl) DeleteRule(ctx context.Context, ruleName string) error {
	rule, err := s.ruleRepo.GetByName(ctx, ruleName)
	if err != nil {
		return fmt.Errorf("规则不存在: %s", ruleName)
	}

	if err := s.ruleRepo.Delete(ctx, ruleName); err != nil {
		logger.L().Errorf("Failed to delete rule %s: %v", ruleName, err)
		return fmt.Errorf("删除规则失败: %w", err)
	}

	logger.L().Infof("Rule %s deleted", ruleName)
	s.notifyChange(rule.SourceChannelID)
	return nil
}

// SetRuleEnabled 启用/停用规则
func (s *RuleServiceImpl) SetRuleEnabled(ctx context.Context, ruleName string, enabled bool) error {
	rule, err := s.ruleRepo.GetByName(ctx, ruleName)
	if err != nil {
		return fmt.Errorf("规则不存在: %s", ruleName)
	}

	if rule.IsEnabled == enabled {
		if enabled {
			return fmt.Errorf("规则已经是启用状态")
		}
		return fmt.Errorf("规则已经是停用状态")
	}

	if err := s.ruleRepo.SetEnabled(ctx, ruleName, enabled); err != nil {
		logger.L().Errorf("Failed to set rule %s enabled=%v: %v", ruleName, enabled, err)
		return fmt.Errorf("更新规则失败: %w", err)
	}

	logger.L().Infof("Rule %s enabled=%v", ruleName, enabled)
	s.notifyChange(rule.SourceChannelID)
	return nil
}

// GetRule 获取单条规则
func (s *RuleServiceImpl) GetRule(ctx context.Context, ruleName string) (*models.ForwardingRule, error) {
	rule, err := s.ruleRepo.GetByName(ctx, ruleName)
	if err != nil {
		return nil, fmt.Errorf("规则不存在: %s", ruleName)
	}
	return rule, nil
}

// ListRules 列出全部规则
func (s *RuleServiceImpl) ListRules(ctx context.Context) ([]*models.ForwardingRule, error) {
	rules, err := s.ruleRepo.ListAll(ctx)
	if err != nil {
		logger.L().Errorf("Failed to list rules: %v", err)
		return nil, fmt.Errorf("获取规则列表失败")
	}
	return rules, nil
}

// notifyChange 通知规则变更
func (s *RuleServiceImpl) notifyChange(sourceChannelID int64) {
	if s.onChange != nil {
		s.onChange(sourceChannelID)
	}
}

// validateRule 校验规则参数
func validateRule(rule *models.ForwardingRule) error {
	name := strings.TrimSpace(rule.RuleName)
	if name == "" {
		return fmt.Errorf("规则名称不能为空")
	}
	// 规则名会出现在任务操作 key 里，竖线是 key 的分隔符
	if strings.ContainsAny(name, "| \t\n") {
		return fmt.Errorf("规则名称不能包含空白字符或竖线")
	}
	rule.RuleName = name

	if rule.SourceChannelID == 0 {
		return fmt.Errorf("源频道 ID 不能为 0")
	}

	if len(rule.TargetChannelIDs) == 0 {
		return fmt.Errorf("至少需要一个目标频道")
	}
	seen := make(map[int64]struct{}, len(rule.TargetChannelIDs))
	for _, targetID := range rule.TargetChannelIDs {
		if targetID == 0 {
			return fmt.Errorf("目标频道 ID 不能为 0")
		}
		if targetID == rule.SourceChannelID {
			return fmt.Errorf("目标频道不能与源频道相同")
		}
		if _, dup := seen[targetID]; dup {
			return fmt.Errorf("目标频道重复: %d", targetID)
		}
		seen[targetID] = struct{}{}
	}

	if rule.Filters.IsRegex && rule.Filters.ContainsText != "" {
		pattern := rule.Filters.ContainsText
		if rule.Filters.RegexCaseInsensitive {
			pattern = "(?i)" + pattern
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("文本过滤正则无效: %v", err)
		}
	}

	if rule.Filters.MinMessageLength < 0 || rule.Filters.MaxMessageLength < 0 {
		return fmt.Errorf("消息长度限制不能为负数")
	}
	if rule.Filters.MaxMessageLength > 0 && rule.Filters.MinMessageLength > rule.Filters.MaxMessageLength {
		return fmt.Errorf("最小长度不能大于最大长度")
	}

	return nil
}
