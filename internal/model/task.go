package model

import (
	"strings"
	"time"
)

// DownloadTask represents a single blocking transfer run by the download service
type DownloadTask struct {
	ID         string
	ChatID     int64
	Kind       OptionKind
	Title      string // source title
	OutputPath string // path to downloaded file
	Status     TaskStatus
	Progress   float64 // 0.0 to 1.0
	Percent    int     // 0 to 100
	BytesDone  int64
	BytesTotal int64
	LastError  string    // last error message if any
	StartedAt  time.Time // when the transfer started
	FinishedAt time.Time // when the transfer finished
}

// UpdateProgress sets byte counters and derived percentages
func (dt *DownloadTask) UpdateProgress(done, total int64) {
	dt.BytesDone = done
	if total > 0 {
		dt.BytesTotal = total
		dt.Progress = float64(done) / float64(total)
		if dt.Progress > 1 {
			dt.Progress = 1
		}
		dt.Percent = int(dt.Progress * 100)
	}
}

// Elapsed returns how long the task ran, or has been running
func (dt *DownloadTask) Elapsed() time.Duration {
	if dt.StartedAt.IsZero() {
		return 0
	}
	if dt.FinishedAt.IsZero() {
		return time.Since(dt.StartedAt)
	}
	return dt.FinishedAt.Sub(dt.StartedAt)
}

// GetDisplayTitle returns title or the output file name
func (dt *DownloadTask) GetDisplayTitle() string {
	if dt.Title != "" {
		return dt.Title
	}

	if dt.OutputPath != "" {
		// Extract just the filename without path (support both / and \ separators)
		parts := strings.FieldsFunc(dt.OutputPath, func(r rune) bool {
			return r == '/' || r == '\\'
		})
		if len(parts) > 0 {
			filename := parts[len(parts)-1]
			if idx := strings.LastIndex(filename, "."); idx > 0 {
				filename = filename[:idx]
			}
			return filename
		}
	}

	return dt.ID
}
