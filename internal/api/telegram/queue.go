package telegram

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"chefbot/internal/pkg/common"

	"go.uber.org/zap"
)

// ErrQueueFull 隊列已滿
var ErrQueueFull = errors.New("update queue is full")

// ErrQueueClosed 隊列已關閉
var ErrQueueClosed = errors.New("update queue is closed")

// Job 隊列中的工作
type Job func(ctx context.Context)

// Status 隊列狀態
type Status struct {
	QueueLength    int   `json:"queue_length"`
	ProcessedCount int64 `json:"processed_count"`
	MaxQueueSize   int   `json:"max_queue_size"`
	Workers        int   `json:"workers"`
}

// Queue 固定數量 worker 的工作隊列，避免慢速的食譜生成阻塞長輪詢
type Queue struct {
	jobs      chan Job
	workers   int
	processed int64
	wg        sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewQueue 創建新的隊列
func NewQueue(workers, size int) *Queue {
	if workers <= 0 {
		workers = 1
	}
	if size <= 0 {
		size = 1
	}
	return &Queue{
		jobs:    make(chan Job, size),
		workers: workers,
	}
}

// Start 啟動 worker，ctx 會傳給每個工作
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go func(id int) {
			defer q.wg.Done()
			for job := range q.jobs {
				q.run(ctx, id, job)
			}
		}(i)
	}
}

func (q *Queue) run(ctx context.Context, worker int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			common.LogError("Telegram job panicked", zap.Int("worker", worker), zap.Any("error", r))
		}
		atomic.AddInt64(&q.processed, 1)
	}()
	job(ctx)
}

// Enqueue 將工作加入隊列，隊列滿時立即回傳 ErrQueueFull
func (q *Queue) Enqueue(job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Status 獲取隊列狀態
func (q *Queue) Status() Status {
	return Status{
		QueueLength:    len(q.jobs),
		ProcessedCount: atomic.LoadInt64(&q.processed),
		MaxQueueSize:   cap(q.jobs),
		Workers:        q.workers,
	}
}

// Close 停止接收工作並等待已排入的工作完成
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
}
