package relay

import (
	"context"
	"errors"
	"fmt"

	"relay_bot/internal/logger"
)

// Engine 消息中继引擎
// 入站消息 → 身份解析 + 格式翻译（各一次）→ 规则匹配 → 逐规则决策 → 逐目标入队
type Engine struct {
	matcher   *Matcher
	scheduler *Scheduler
}

// NewEngine 创建中继引擎
func NewEngine(matcher *Matcher, scheduler *Scheduler) *Engine {
	return &Engine{
		matcher:   matcher,
		scheduler: scheduler,
	}
}

// HandleMessage 处理一条入站消息
// 规则查询失败原样向上传播（外层按整次调用重试）；
// 入队的终态失败按 (规则, 目标) 粒度隔离：单个失败不影响其余目标或规则，
// 所有失败最后合并返回
func (e *Engine) HandleMessage(ctx context.Context, msg *InboundMessage) error {
	sender := ResolveSender(msg)
	wireSpans := TranslateSpans(msg.Spans, msg.Content)

	rules, err := e.matcher.Match(ctx, msg.ChatID, msg.ChatKind)
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		logger.L().Debugf("No relay rules for chat %d (%s), message %d skipped",
			msg.ChatID, msg.ChatKind, msg.MessageID)
		return nil
	}

	logger.L().Infof("Relaying message %d from chat %d: %d rule(s) matched",
		msg.MessageID, msg.ChatID, len(rules))

	var errs []error
	for _, rule := range rules {
		if len(rule.TargetChannelIDs) == 0 {
			logger.L().Warnf("Rule %s has no targets, skipped", rule.RuleName)
			continue
		}

		if !ruleAccepts(rule.Filters, msg) {
			logger.L().Debugf("Rule %s filters rejected message %d", rule.RuleName, msg.MessageID)
			continue
		}

		jobs := Decide(rule, msg, wireSpans, sender)
		for _, job := range jobs {
			jobID, err := e.scheduler.EnqueueWithRetry(ctx, job)
			if err != nil {
				errs = append(errs, fmt.Errorf("rule %s target %d: %w", rule.RuleName, job.TargetID, err))
				continue
			}
			logger.L().Debugf("Relay job enqueued: job_id=%s rule=%s target=%d mode=%s",
				jobID, rule.RuleName, job.TargetID, job.Mode)
		}
	}

	return errors.Join(errs...)
}
