package relay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"relay_bot/internal/logger"
	"relay_bot/internal/telegram/models"
	"relay_bot/internal/telegram/repository"
)

// queueTask 入队后的任务单元
type queueTask struct {
	id  string
	job *RelayJob
}

// MemoryQueue 进程内任务队列（入队后端的默认实现）
// 有界通道 + 固定 worker 协程；入队即交接：任务之后在后台上下文里执行，
// 不随触发方的 ctx 取消
type MemoryQueue struct {
	tasks    chan queueTask
	wg       sync.WaitGroup
	executor Executor
	records  repository.RelayRecordRepository // 可为 nil（不落审计记录）
	workers  int

	// mu 保护 closed 与 tasks 的发送端，保证关闭与入队互斥
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewMemoryQueue 创建并启动任务队列
// workers: worker 协程数量；queueSize: 队列容量
// records 可传 nil，此时不写审计记录
func NewMemoryQueue(workers, queueSize int, executor Executor, records repository.RelayRecordRepository) *MemoryQueue {
	q := &MemoryQueue{
		tasks:    make(chan queueTask, queueSize),
		executor: executor,
		records:  records,
		workers:  workers,
	}

	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}

	logger.L().Infof("Relay queue started with %d workers, queue size %d", workers, queueSize)
	return q
}

// Enqueue 提交任务，返回分配的任务 ID
// 队列已满或已关闭时立即返回错误，交由上层的重试包装处理
func (q *MemoryQueue) Enqueue(ctx context.Context, job *RelayJob) (string, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return "", fmt.Errorf("relay queue is shut down")
	}

	id := uuid.New().String()

	select {
	case q.tasks <- queueTask{id: id, job: job}:
		return id, nil
	case <-ctx.Done():
		return "", ctx.Err()
	default:
		return "", fmt.Errorf("relay queue is full (capacity %d)", cap(q.tasks))
	}
}

// worker 工作协程，带 panic recovery
func (q *MemoryQueue) worker(idx int) {
	defer q.wg.Done()

	logger.L().Debugf("Relay worker %d started", idx)

	for task := range q.tasks {
		q.runTask(task)
	}

	logger.L().Debugf("Relay worker %d stopped", idx)
}

// runTask 执行单个任务并落审计记录
// 用独立的后台上下文执行：触发请求的取消不影响已入队任务
func (q *MemoryQueue) runTask(task queueTask) {
	defer func() {
		if r := recover(); r != nil {
			logger.L().Errorf("Relay worker: executor panic recovered: job_id=%s panic=%v", task.id, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	relayedID, err := q.executor.ProcessAndRelay(ctx, task.job)

	record := &models.RelayRecord{
		JobID:            task.id,
		RuleName:         task.job.Rule.RuleName,
		SourceChatID:     task.job.SourceChatID,
		SourceMessageID:  task.job.SourceMessageID,
		TargetChatID:     task.job.TargetID,
		RelayedMessageID: relayedID,
		Mode:             string(task.job.Mode),
		Status:           models.RelayStatusSuccess,
		CreatedAt:        time.Now(),
	}

	if err != nil {
		record.Status = models.RelayStatusFailed
		record.Error = err.Error()
		logger.L().Errorf("Relay job failed: job_id=%s rule=%s target=%d err=%v",
			task.id, task.job.Rule.RuleName, task.job.TargetID, err)
	} else {
		logger.L().Debugf("Relay job completed: job_id=%s rule=%s target=%d message_id=%d",
			task.id, task.job.Rule.RuleName, task.job.TargetID, relayedID)
	}

	if q.records != nil {
		if recErr := q.records.CreateRecord(ctx, record); recErr != nil {
			logger.L().Errorf("Failed to save relay record: job_id=%s err=%v", task.id, recErr)
		}
	}
}

// QueueStats 队列运行状态
type QueueStats struct {
	Workers       int
	QueueLength   int
	QueueCapacity int
}

// Stats 返回当前队列状态
func (q *MemoryQueue) Stats() QueueStats {
	return QueueStats{
		Workers:       q.workers,
		QueueLength:   len(q.tasks),
		QueueCapacity: cap(q.tasks),
	}
}

// Shutdown 优雅关闭：不再接受新任务，等待在途任务完成
func (q *MemoryQueue) Shutdown() {
	q.closeOnce.Do(func() {
		logger.L().Info("Shutting down relay queue...")
		q.mu.Lock()
		q.closed = true
		close(q.tasks)
		q.mu.Unlock()
		q.wg.Wait()
		logger.L().Info("Relay queue shut down successfully")
	})
}
