package workers

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/farellandr/coursehub/internal/logger"
	"github.com/farellandr/coursehub/internal/services"
)

// CourseNotifier sends the update emails for one course.
type CourseNotifier interface {
	NotifyCourseUpdated(ctx context.Context, courseID uint) services.NotifyResult
}

// Notifier runs course update notifications on a fixed pool of goroutines
// fed by a bounded queue.
type Notifier struct {
	service CourseNotifier
	jobs    chan uint
	workers int
	timeout time.Duration

	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
}

func NewNotifier(service CourseNotifier, workers, queueSize int) *Notifier {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Notifier{
		service: service,
		jobs:    make(chan uint, queueSize),
		workers: workers,
		timeout: 5 * time.Minute,
	}
}

func (n *Notifier) Start(ctx context.Context) {
	for i := 0; i < n.workers; i++ {
		n.wg.Add(1)
		go n.run(ctx, i)
	}
	logger.Info("notifier started", "workers", n.workers, "queue", cap(n.jobs))
}

// Enqueue schedules a notification and reports whether it was accepted.
// It never blocks: a full queue or a stopped notifier drops the job.
func (n *Notifier) Enqueue(courseID uint) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.stopped {
		return false
	}
	select {
	case n.jobs <- courseID:
		return true
	default:
		return false
	}
}

// Stop closes the queue and waits for queued jobs to drain.
func (n *Notifier) Stop() {
	n.stopOnce.Do(func() {
		n.mu.Lock()
		n.stopped = true
		close(n.jobs)
		n.mu.Unlock()
	})
	n.wg.Wait()
	logger.Info("notifier stopped")
}

func (n *Notifier) run(ctx context.Context, worker int) {
	defer n.wg.Done()
	for courseID := range n.jobs {
		n.handle(ctx, worker, courseID)
	}
}

func (n *Notifier) handle(ctx context.Context, worker int, courseID uint) {
	jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()
	jobCtx = logger.WithRequestID(jobCtx, "notify-"+strconv.FormatUint(uint64(courseID), 10))

	result := n.service.NotifyCourseUpdated(jobCtx, courseID)
	var err error
	if len(result.Failed) > 0 {
		err = &deliveryError{failed: result.Failed}
	}
	logger.WorkerLog("notifier", "course_update", err,
		"worker_id", worker, "course_id", courseID, "sent", result.Sent, "status", result.Status)
}

type deliveryError struct {
	failed []string
}

func (e *deliveryError) Error() string {
	return strconv.Itoa(len(e.failed)) + " deliveries failed"
}
