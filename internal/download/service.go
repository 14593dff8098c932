package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/ytget/yt-downloader-bot/internal/model"
	"github.com/ytget/yt-downloader-bot/internal/platform"
)

// Limits for parallel transfers
const (
	MinParallel     = 1
	MaxParallel     = 10
	DefaultParallel = 2
)

// Task ID prefix
const (
	TaskIDPrefix = "task-"
)

// File permissions for downloaded media
const (
	DefaultFilePermissions = 0644
)

// Service handles download operations. Only in-flight tasks are tracked;
// a task leaves the registry as soon as it finishes.
type Service struct {
	tasks       map[string]*model.DownloadTask
	tasksMutex  sync.RWMutex
	sem         *semaphore.Weighted
	maxParallel int
	activeCount int
	downloadDir string
	onUpdate    func(*model.DownloadTask)
	logger      *slog.Logger
}

// NewService creates a new download service
func NewService(downloadDir string, maxParallel int, logger *slog.Logger) *Service {
	maxParallel = clampParallel(maxParallel)
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		tasks:       make(map[string]*model.DownloadTask),
		sem:         semaphore.NewWeighted(int64(maxParallel)),
		maxParallel: maxParallel,
		downloadDir: downloadDir,
		logger:      logger,
	}
}

func clampParallel(n int) int {
	if n < MinParallel {
		return MinParallel
	}
	if n > MaxParallel {
		return MaxParallel
	}
	return n
}

// SetUpdateCallback sets the callback function for task updates
func (s *Service) SetUpdateCallback(callback func(*model.DownloadTask)) {
	s.onUpdate = callback
}

// DownloadDir returns the directory files are written to
func (s *Service) DownloadDir() string {
	return s.downloadDir
}

// Download runs the transfer of req.Option on a worker goroutine and blocks
// until it finishes. The returned task is finished in every case; err is
// non-nil when the transfer failed or was cancelled.
func (s *Service) Download(ctx context.Context, req Request) (*model.DownloadTask, error) {
	if req.Option == nil || req.Option.Transfer == nil {
		return nil, fmt.Errorf("download request has no transfer option")
	}

	task := &model.DownloadTask{
		ID:         generateTaskID(),
		ChatID:     req.ChatID,
		Kind:       req.Option.Kind,
		Title:      req.Title,
		OutputPath: platform.OutputPath(s.downloadDir, req.Title, req.Option.Extension()),
		Status:     model.TaskStatusPending,
		BytesTotal: req.Option.Size,
	}

	s.tasksMutex.Lock()
	s.tasks[task.ID] = task
	s.tasksMutex.Unlock()
	s.notifyUpdate(task)

	done := make(chan error, 1)
	go func() {
		done <- s.startTask(ctx, task, req.Option)
	}()

	// The transfer observes ctx itself, so waiting here always terminates
	// once the worker returns.
	err := <-done
	return task, err
}

// startTask performs one transfer while holding a semaphore slot
func (s *Service) startTask(ctx context.Context, task *model.DownloadTask, opt *model.Option) (err error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		s.finishTask(task, err)
		return err
	}
	defer s.sem.Release(1)

	s.tasksMutex.Lock()
	s.activeCount++
	task.Status = model.TaskStatusDownloading
	task.StartedAt = time.Now()
	s.tasksMutex.Unlock()
	s.notifyUpdate(task)

	defer func() {
		s.tasksMutex.Lock()
		s.activeCount--
		s.tasksMutex.Unlock()
		s.finishTask(task, err)
	}()

	if err := platform.CreateDirectoryIfNotExists(s.downloadDir); err != nil {
		return fmt.Errorf("failed to ensure download dir: %w", err)
	}

	f, err := os.OpenFile(task.OutputPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, DefaultFilePermissions)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	transferErr := opt.Transfer(ctx, f, func(done, total int64) {
		s.updateTaskProgress(task, done, total)
	})
	closeErr := f.Close()
	if transferErr != nil {
		os.Remove(task.OutputPath)
		return transferErr
	}
	if closeErr != nil {
		os.Remove(task.OutputPath)
		return fmt.Errorf("failed to close output file: %w", closeErr)
	}
	return nil
}

// finishTask records the final status of a task
func (s *Service) finishTask(task *model.DownloadTask, err error) {
	s.tasksMutex.Lock()
	switch {
	case err == nil:
		task.Status = model.TaskStatusCompleted
		task.Progress = 1.0
		task.Percent = 100
	case errors.Is(err, context.Canceled):
		task.Status = model.TaskStatusStopped
		task.LastError = err.Error()
	default:
		task.Status = model.TaskStatusError
		task.LastError = err.Error()
	}
	task.FinishedAt = time.Now()
	delete(s.tasks, task.ID)
	snapshot := *task
	s.tasksMutex.Unlock()

	if err != nil {
		s.logger.Warn("download_failed",
			"task_id", snapshot.ID,
			"chat_id", snapshot.ChatID,
			"title", snapshot.GetDisplayTitle(),
			"status", snapshot.Status,
			"err", err,
		)
	} else {
		s.logger.Info("download_done",
			"task_id", snapshot.ID,
			"chat_id", snapshot.ChatID,
			"path", snapshot.OutputPath,
			"size", humanize.IBytes(uint64(snapshot.BytesDone)),
			"elapsed", snapshot.Elapsed().Round(time.Millisecond),
		)
	}

	s.notifyUpdate(task)
}

// updateTaskProgress updates byte counters, notifying only on percent changes
func (s *Service) updateTaskProgress(task *model.DownloadTask, done, total int64) {
	s.tasksMutex.Lock()
	before := task.Percent
	task.UpdateProgress(done, total)
	changed := task.Percent != before
	s.tasksMutex.Unlock()

	if changed {
		s.notifyUpdate(task)
	}
}

// GetAllTasks returns the tasks still waiting for a slot or transferring
func (s *Service) GetAllTasks() []*model.DownloadTask {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()

	tasks := make([]*model.DownloadTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, task)
	}
	return tasks
}

// ActiveCount returns the number of transfers currently running
func (s *Service) ActiveCount() int {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	return s.activeCount
}

// notifyUpdate calls the update callback if set
func (s *Service) notifyUpdate(task *model.DownloadTask) {
	if s.onUpdate != nil {
		s.onUpdate(task)
	}
}

// generateTaskID generates a unique, time ordered task ID
func generateTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to random UUID if the clock based generator fails
		return TaskIDPrefix + uuid.NewString()
	}
	return TaskIDPrefix + id.String()
}
