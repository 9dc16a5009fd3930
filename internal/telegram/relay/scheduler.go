package relay

import (
	"context"
	"fmt"
	"time"

	"relay_bot/internal/logger"
)

// Enqueuer 任务入队原语
// 入队不保证幂等：调用方重试可能产生重复任务，这是有记录的取舍
type Enqueuer interface {
	// Enqueue 提交任务，返回后端分配的任务 ID
	Enqueue(ctx context.Context, job *RelayJob) (string, error)
}

// enqueueBackoff 入队重试的固定退避表
var enqueueBackoff = [...]time.Duration{
	100 * time.Millisecond,
	200 * time.Millisecond,
	400 * time.Millisecond,
	800 * time.Millisecond,
	1000 * time.Millisecond,
}

// enqueueAttempts 总尝试次数（含首次）
const enqueueAttempts = 5

// Scheduler 任务调度适配器
// 包装入队原语，对提交失败做有界重试
type Scheduler struct {
	queue Enqueuer
}

// NewScheduler 创建调度适配器
func NewScheduler(queue Enqueuer) *Scheduler {
	return &Scheduler{queue: queue}
}

// EnqueueWithRetry 带重试地提交任务
// 每次尝试都带操作 key {messageId}|{ruleName}|{targetId} 便于日志关联
// 重试等待是协作式的：可被 ctx 取消，且不会阻塞其他在途消息
func (s *Scheduler) EnqueueWithRetry(ctx context.Context, job *RelayJob) (string, error) {
	opKey := fmt.Sprintf("%d|%s|%d", job.SourceMessageID, job.Rule.RuleName, job.TargetID)

	var lastErr error
	for attempt := 1; attempt <= enqueueAttempts; attempt++ {
		jobID, err := s.queue.Enqueue(ctx, job)
		if err == nil {
			if attempt > 1 {
				logger.L().Infof("Enqueue succeeded after retry: op=%s attempt=%d job_id=%s", opKey, attempt, jobID)
			}
			return jobID, nil
		}

		lastErr = err
		if attempt == enqueueAttempts {
			break
		}

		delay := enqueueBackoff[attempt-1]
		logger.L().Warnf("Enqueue attempt %d failed: op=%s err=%v, retrying in %v", attempt, opKey, err, delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			return "", fmt.Errorf("enqueue canceled: op=%s: %w", opKey, ctx.Err())
		case <-timer.C:
		}
	}

	logger.L().Errorf("Enqueue failed after %d attempts: op=%s err=%v", enqueueAttempts, opKey, lastErr)
	return "", lastErr
}
