package relay

import (
	"context"
	"fmt"
	"time"

	"relay_bot/internal/logger"
	"relay_bot/internal/telegram/models"
	"relay_bot/internal/telegram/repository"
)

// ComputeSourceKey 计算会话在规则库中的源 key
// 私聊不能作为规则源，返回 ok=false，调用方不应查询规则库
// 频道/超级群的 ID 已是频道编码形式，原样使用
// 普通群按线性公式换算成频道编码形式；该公式相对真实存量数据的正确性
// 尚未核实（见 DESIGN.md），换算时会记一条 debug 日志便于排查
func ComputeSourceKey(chatID int64, kind ChatKind) (int64, bool) {
	switch kind {
	case ChatKindPrivate:
		return 0, false
	case ChatKindChannel, ChatKindSupergroup:
		return chatID, true
	case ChatKindGroup:
		key := -(channelIDMarker + abs64(chatID))
		logger.L().Debugf("Basic group id %d mapped to source key %d", chatID, key)
		return key, true
	default:
		return 0, false
	}
}

// Matcher 规则匹配器
// 对规则库只读，可选挂接 TTL 缓存
type Matcher struct {
	rules repository.RuleRepository
	cache *ruleCache
}

// NewMatcher 创建规则匹配器
// cacheTTL <= 0 时关闭缓存
func NewMatcher(rules repository.RuleRepository, cacheTTL time.Duration) *Matcher {
	return &Matcher{
		rules: rules,
		cache: newRuleCache(cacheTTL),
	}
}

// Match 返回对该会话启用的全部规则
// 私聊直接返回空（不查规则库）；查询失败向上传播，由外层决定整体重试
func (m *Matcher) Match(ctx context.Context, chatID int64, kind ChatKind) ([]*models.ForwardingRule, error) {
	key, ok := ComputeSourceKey(chatID, kind)
	if !ok {
		return nil, nil
	}

	if cached, hit := m.cache.Get(key); hit {
		return cached, nil
	}

	all, err := m.rules.GetBySourceChannel(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("rule lookup failed for source %d: %w", key, err)
	}

	enabled := make([]*models.ForwardingRule, 0, len(all))
	for _, rule := range all {
		if rule.IsEnabled {
			enabled = append(enabled, rule)
		}
	}

	m.cache.Set(key, enabled)
	return enabled, nil
}

// InvalidateCache 规则变更后丢弃对应源的缓存条目
func (m *Matcher) InvalidateCache(sourceKey int64) {
	m.cache.Delete(sourceKey)
}
