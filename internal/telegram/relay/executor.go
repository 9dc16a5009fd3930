package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"relay_bot/internal/logger"

	"github.com/go-telegram/bot"
)

// Executor 中继执行器
// 消费任务载荷，完成真正的协议调用；返回目标端生成的消息 ID
type Executor interface {
	ProcessAndRelay(ctx context.Context, job *RelayJob) (int, error)
}

const (
	// maxSendAttempts 单次协议调用的尝试上限
	maxSendAttempts = 3
	// defaultSendRetryDelay 限流响应未携带 RetryAfter 时的兜底等待
	defaultSendRetryDelay = 5 * time.Second
	// maxSendExponentialBackoff 指数退避上限
	maxSendExponentialBackoff = 30 * time.Second
)

// BotExecutor 基于 Bot API 的执行器实现
// 直接转发走 ForwardMessage，自定义发送走 SendMessage + 线上格式标记
type BotExecutor struct {
	bot     *bot.Bot
	limiter *RateLimiter
}

// NewBotExecutor 创建执行器
func NewBotExecutor(b *bot.Bot, limiter *RateLimiter) *BotExecutor {
	return &BotExecutor{
		bot:     b,
		limiter: limiter,
	}
}

// ProcessAndRelay 执行一次中继，带类型感知重试
func (e *BotExecutor) ProcessAndRelay(ctx context.Context, job *RelayJob) (int, error) {
	targetID := job.TargetID

	var lastErr error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return 0, fmt.Errorf("rate limiter wait error: %w", err)
			}
		}

		messageID, err := e.relayOnce(ctx, job, targetID)
		if err == nil {
			return messageID, nil
		}
		lastErr = err

		// 群升级为超级群：换新 ID 重试
		if newID, ok := migrateToChatIDFromError(err); ok {
			logger.L().Warnf("Target %d migrated to %d, retrying with new id", targetID, newID)
			targetID = newID
			continue
		}

		if !shouldRetrySend(err) {
			return 0, err
		}

		if attempt < maxSendAttempts {
			delay := calculateSendRetryDelay(err, attempt, targetID)
			logger.L().Warnf("Relay attempt %d failed for target %d: %v, retrying in %v",
				attempt, targetID, err, delay)

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				if !timer.Stop() {
					<-timer.C
				}
				return 0, ctx.Err()
			case <-timer.C:
			}
		}
	}

	return 0, fmt.Errorf("relay failed after %d attempts: %w", maxSendAttempts, lastErr)
}

// relayOnce 按任务模式做一次协议调用
func (e *BotExecutor) relayOnce(ctx context.Context, job *RelayJob, targetID int64) (int, error) {
	switch job.Mode {
	case ModeDirectForward:
		msg, err := e.bot.ForwardMessage(ctx, &bot.ForwardMessageParams{
			ChatID:     targetID,
			FromChatID: job.SourceChatID,
			MessageID:  job.SourceMessageID,
		})
		if err != nil {
			return 0, err
		}
		return msg.ID, nil

	case ModeCustomSend:
		if job.Content == "" {
			// 编辑管线可能清空全部内容（如纯媒体消息丢弃说明文字后）
			logger.L().Warnf("Custom send skipped, empty content: rule=%s target=%d",
				job.Rule.RuleName, targetID)
			return 0, nil
		}
		msg, err := e.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:   targetID,
			Text:     job.Content,
			Entities: job.WireSpans,
		})
		if err != nil {
			return 0, err
		}
		return msg.ID, nil

	default:
		return 0, fmt.Errorf("unknown relay mode: %s", job.Mode)
	}
}

// shouldRetrySend 判断协议错误是否值得重试
// 权限/参数类错误重试没有意义，限流和未知错误可重试
func shouldRetrySend(err error) bool {
	if err == nil {
		return false
	}

	var tooMany *bot.TooManyRequestsError
	if errors.As(err, &tooMany) {
		return true
	}

	var migrate *bot.MigrateError
	if errors.As(err, &migrate) {
		return false
	}

	if errors.Is(err, bot.ErrorForbidden) ||
		errors.Is(err, bot.ErrorBadRequest) ||
		errors.Is(err, bot.ErrorUnauthorized) ||
		errors.Is(err, bot.ErrorNotFound) {
		return false
	}

	return true
}

// migrateToChatIDFromError 从迁移错误中提取新的会话 ID
func migrateToChatIDFromError(err error) (int64, bool) {
	if err == nil {
		return 0, false
	}

	var migrate *bot.MigrateError
	if !errors.As(err, &migrate) {
		return 0, false
	}
	if migrate.MigrateToChatID == 0 {
		return 0, false
	}

	return int64(migrate.MigrateToChatID), true
}

// calculateSendRetryDelay 计算重试等待
// 限流错误优先用服务端给的 RetryAfter 并叠加按目标散开的抖动；
// 其余错误按指数退避（1s 起步，封顶 maxSendExponentialBackoff）
func calculateSendRetryDelay(err error, attempt int, targetID int64) time.Duration {
	var tooMany *bot.TooManyRequestsError
	if errors.As(err, &tooMany) {
		base := defaultSendRetryDelay
		if tooMany.RetryAfter > 0 {
			base = time.Duration(tooMany.RetryAfter) * time.Second
		}
		return base + sendRetryJitter(targetID)
	}

	if attempt < 1 {
		attempt = 1
	}
	delay := time.Second << (attempt - 1)
	if delay > maxSendExponentialBackoff {
		delay = maxSendExponentialBackoff
	}
	return delay
}

// sendRetryJitter 按目标 ID 产生确定性的抖动，避免多目标同时重试
func sendRetryJitter(targetID int64) time.Duration {
	return time.Duration(abs64(targetID)%5+1) * 200 * time.Millisecond
}
