package service

import (
	"context"
	"sync"
	"time"

	"learnhub_backend/internal/config"
	"learnhub_backend/internal/repository"
	"learnhub_backend/pkg/logger"
	"learnhub_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// GradingWorker drains the grading queue with a fixed pool of workers.
// Enqueue never blocks the submit path: a full queue is logged and the
// submission is picked up later by the stale sweep, which also covers
// submissions whose grading pass failed or whose process died mid-queue.
type GradingWorker struct {
	grader      *GradingService
	submissions *repository.SubmissionRepository

	queue      chan uint
	workers    int
	timeout    time.Duration
	sweepEvery time.Duration
	staleAfter time.Duration

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func NewGradingWorker(grader *GradingService, submissions *repository.SubmissionRepository, cfg config.GradingConfig, scorerTimeoutSeconds int) *GradingWorker {
	return &GradingWorker{
		grader:      grader,
		submissions: submissions,
		queue:       make(chan uint, cfg.QueueSize),
		workers:     cfg.Workers,
		timeout:     time.Duration(scorerTimeoutSeconds+10) * time.Second,
		sweepEvery:  time.Duration(cfg.SweepMinutes) * time.Minute,
		staleAfter:  time.Duration(cfg.StaleAfterMinutes) * time.Minute,
		stop:        make(chan struct{}),
	}
}

func (w *GradingWorker) Start() {
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.run()
	}
	w.wg.Add(1)
	go w.sweep()
	logger.Log.Info("grading workers started",
		zap.Int("workers", w.workers),
		zap.Int("queueSize", cap(w.queue)))
}

// Stop shuts the pool down. In-flight grading passes finish; queued ids
// that were not picked up are recovered by the next process's sweep.
func (w *GradingWorker) Stop() {
	w.once.Do(func() { close(w.stop) })
	w.wg.Wait()
}

// Enqueue hands a submission to the pool without blocking.
func (w *GradingWorker) Enqueue(submissionID uint) {
	select {
	case w.queue <- submissionID:
		monitoring.GradingQueueDepth.Set(float64(len(w.queue)))
	default:
		logger.Log.Warn("grading queue full, deferring to sweep",
			zap.Uint("submissionId", submissionID))
	}
}

func (w *GradingWorker) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.stop:
			return
		case submissionID := <-w.queue:
			monitoring.GradingQueueDepth.Set(float64(len(w.queue)))
			w.grade(submissionID)
		}
	}
}

func (w *GradingWorker) grade(submissionID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	if err := w.grader.GradeSubmission(ctx, submissionID); err != nil {
		monitoring.GradingOutcomes.WithLabelValues("failed").Inc()
		logger.Log.Error("grading pass failed",
			zap.Uint("submissionId", submissionID), zap.Error(err))
		return
	}
	monitoring.GradingOutcomes.WithLabelValues("graded").Inc()
}

// sweep periodically re-enqueues submissions that have sat ungraded past
// the staleness window.
func (w *GradingWorker) sweep() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-w.staleAfter)
			ids, err := w.submissions.ListStaleUngraded(cutoff, cap(w.queue)/2)
			if err != nil {
				logger.Log.Error("stale grading sweep failed", zap.Error(err))
				continue
			}
			if len(ids) == 0 {
				continue
			}
			logger.Log.Info("re-enqueueing stale ungraded submissions", zap.Int("count", len(ids)))
			for _, id := range ids {
				w.Enqueue(id)
			}
		}
	}
}
