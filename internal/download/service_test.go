package download

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ytget/yt-downloader-bot/internal/model"
)

func writeOption(kind model.OptionKind, payload string) *model.Option {
	return &model.Option{
		Kind: kind,
		Size: int64(len(payload)),
		Transfer: func(ctx context.Context, w io.Writer, progress model.ProgressFunc) error {
			n, err := io.WriteString(w, payload)
			if progress != nil {
				progress(int64(n), int64(len(payload)))
			}
			return err
		},
	}
}

func TestNewService(t *testing.T) {
	service := NewService("/tmp", 2, nil)

	if service.downloadDir != "/tmp" {
		t.Errorf("Expected downloadDir to be '/tmp', got '%s'", service.downloadDir)
	}

	if service.maxParallel != 2 {
		t.Errorf("Expected maxParallel to be 2, got %d", service.maxParallel)
	}

	if len(service.tasks) != 0 {
		t.Errorf("Expected empty tasks map, got %d items", len(service.tasks))
	}
}

func TestNewServiceClampsParallel(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, MinParallel},
		{-3, MinParallel},
		{5, 5},
		{42, MaxParallel},
	}

	for _, tt := range tests {
		service := NewService("/tmp", tt.in, nil)
		if service.maxParallel != tt.want {
			t.Errorf("NewService(%d): expected maxParallel %d, got %d", tt.in, tt.want, service.maxParallel)
		}
	}
}

func TestDownloadWritesFile(t *testing.T) {
	dir := t.TempDir()
	service := NewService(dir, 1, nil)

	task, err := service.Download(context.Background(), Request{
		ChatID: 7,
		Title:  "My: Video?",
		Option: writeOption(model.OptionHigh, "video-bytes"),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.Status != model.TaskStatusCompleted {
		t.Errorf("Expected status Completed, got %s", task.Status)
	}

	expectedPath := filepath.Join(dir, "My Video.mp4")
	if task.OutputPath != expectedPath {
		t.Errorf("Expected output path '%s', got '%s'", expectedPath, task.OutputPath)
	}

	data, err := os.ReadFile(task.OutputPath)
	if err != nil {
		t.Fatalf("Expected file to exist: %v", err)
	}
	if string(data) != "video-bytes" {
		t.Errorf("Expected file content 'video-bytes', got '%s'", string(data))
	}

	if task.Percent != 100 {
		t.Errorf("Expected percent 100, got %d", task.Percent)
	}
	if task.ChatID != 7 {
		t.Errorf("Expected chat ID 7, got %d", task.ChatID)
	}
}

func TestDownloadAudioExtension(t *testing.T) {
	dir := t.TempDir()
	service := NewService(dir, 1, nil)

	task, err := service.Download(context.Background(), Request{
		Title:  "song",
		Option: writeOption(model.OptionAudio, "a"),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if filepath.Ext(task.OutputPath) != ".mp3" {
		t.Errorf("Expected .mp3 extension, got '%s'", task.OutputPath)
	}
}

func TestDownloadTransferError(t *testing.T) {
	dir := t.TempDir()
	service := NewService(dir, 1, nil)
	transferErr := errors.New("stream reset")

	opt := &model.Option{
		Kind: model.OptionHigh,
		Transfer: func(ctx context.Context, w io.Writer, progress model.ProgressFunc) error {
			io.WriteString(w, "partial")
			return transferErr
		},
	}

	task, err := service.Download(context.Background(), Request{Title: "broken", Option: opt})
	if !errors.Is(err, transferErr) {
		t.Fatalf("Expected transfer error, got %v", err)
	}

	if task.Status != model.TaskStatusError {
		t.Errorf("Expected status Error, got %s", task.Status)
	}
	if task.LastError != "stream reset" {
		t.Errorf("Expected last error 'stream reset', got '%s'", task.LastError)
	}
	if _, statErr := os.Stat(task.OutputPath); !os.IsNotExist(statErr) {
		t.Errorf("Expected partial file to be removed, stat error: %v", statErr)
	}
}

func TestDownloadCancelled(t *testing.T) {
	service := NewService(t.TempDir(), 1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opt := &model.Option{
		Kind: model.OptionHigh,
		Transfer: func(ctx context.Context, w io.Writer, progress model.ProgressFunc) error {
			return ctx.Err()
		},
	}

	task, err := service.Download(ctx, Request{Title: "cancelled", Option: opt})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if task.Status != model.TaskStatusStopped {
		t.Errorf("Expected status Stopped, got %s", task.Status)
	}
}

func TestDownloadRequiresOption(t *testing.T) {
	service := NewService(t.TempDir(), 1, nil)

	if _, err := service.Download(context.Background(), Request{Title: "x"}); err == nil {
		t.Error("Expected error for missing option, got nil")
	}
	if len(service.GetAllTasks()) != 0 {
		t.Error("Expected no task to be registered")
	}
}

func TestDownloadRespectsParallelLimit(t *testing.T) {
	service := NewService(t.TempDir(), 2, nil)

	var running, peak int32
	release := make(chan struct{})

	opt := func() *model.Option {
		return &model.Option{
			Kind: model.OptionHigh,
			Transfer: func(ctx context.Context, w io.Writer, progress model.ProgressFunc) error {
				n := atomic.AddInt32(&running, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				<-release
				atomic.AddInt32(&running, -1)
				return nil
			},
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			title := "item-" + string(rune('a'+i))
			if _, err := service.Download(context.Background(), Request{Title: title, Option: opt()}); err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		}(i)
	}

	// Let the workers pile up on the semaphore before releasing them
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&peak); got > 2 {
		t.Errorf("Expected at most 2 parallel transfers, got %d", got)
	}
	if service.ActiveCount() != 0 {
		t.Errorf("Expected no active transfers, got %d", service.ActiveCount())
	}
	if len(service.GetAllTasks()) != 0 {
		t.Errorf("Expected finished tasks to be dropped, got %d", len(service.GetAllTasks()))
	}
}

func TestFinishedTasksAreForgotten(t *testing.T) {
	service := NewService(t.TempDir(), 1, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	opt := &model.Option{
		Kind: model.OptionLow,
		Transfer: func(ctx context.Context, w io.Writer, progress model.ProgressFunc) error {
			close(started)
			<-release
			_, err := w.Write([]byte("x"))
			return err
		},
	}

	done := make(chan *model.DownloadTask, 1)
	go func() {
		task, err := service.Download(context.Background(), Request{ChatID: 7, Title: "inflight", Option: opt})
		if err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
		done <- task
	}()

	<-started
	inFlight := service.GetAllTasks()
	if len(inFlight) != 1 {
		t.Fatalf("Expected 1 task in flight, got %d", len(inFlight))
	}
	if inFlight[0].ChatID != 7 {
		t.Errorf("Expected chat 7, got %d", inFlight[0].ChatID)
	}
	if service.ActiveCount() != 1 {
		t.Errorf("Expected 1 active transfer, got %d", service.ActiveCount())
	}

	close(release)
	task := <-done
	if task.Status != model.TaskStatusCompleted {
		t.Errorf("Expected status Completed, got %s", task.Status)
	}
	if len(service.GetAllTasks()) != 0 {
		t.Errorf("Expected registry to be empty, got %d tasks", len(service.GetAllTasks()))
	}
}

func TestUpdateCallback(t *testing.T) {
	service := NewService(t.TempDir(), 1, nil)

	var mu sync.Mutex
	var statuses []model.TaskStatus
	service.SetUpdateCallback(func(task *model.DownloadTask) {
		mu.Lock()
		statuses = append(statuses, task.Status)
		mu.Unlock()
	})

	if _, err := service.Download(context.Background(), Request{Title: "cb", Option: writeOption(model.OptionHigh, "abc")}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(statuses) < 3 {
		t.Fatalf("Expected at least 3 updates, got %d", len(statuses))
	}
	if statuses[0] != model.TaskStatusPending {
		t.Errorf("Expected first update Pending, got %s", statuses[0])
	}
	if statuses[len(statuses)-1] != model.TaskStatusCompleted {
		t.Errorf("Expected last update Completed, got %s", statuses[len(statuses)-1])
	}
}

func TestGenerateTaskID(t *testing.T) {
	id1 := generateTaskID()
	id2 := generateTaskID()

	if id1 == id2 {
		t.Error("Expected different task IDs")
	}

	if !strings.HasPrefix(id1, TaskIDPrefix) {
		t.Errorf("Expected task ID to start with '%s', got '%s'", TaskIDPrefix, id1)
	}

	// "task-" + 36 characters of UUID
	if len(id1) != len(TaskIDPrefix)+36 {
		t.Errorf("Expected task ID length %d, got %d", len(TaskIDPrefix)+36, len(id1))
	}
}
