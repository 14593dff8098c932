package transcode

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// FFmpeg constants for audio conversion
const (
	// Audio codec settings
	AudioCodec   = "libmp3lame"
	AudioBitrate = "192k"

	// Output suffix used while converting
	TranscodedSuffix = ".transcoded"

	// Executable and I/O constants
	FFmpegCommand       = "ffmpeg"
	FFprobeCommand      = "ffprobe"
	FFprobeLogLevel     = "error"
	FFprobeShowEntries  = "format=duration"
	FFprobeOutputFormat = "csv=p=0"
	ProgressPipeTarget  = "pipe:2"
	ProgressTimePrefix  = "out_time_us="
	OutputExtensionMP3  = ".mp3"
)

// ErrFFmpegMissing is returned when ffmpeg is not on PATH
var ErrFFmpegMissing = errors.New("ffmpeg executable not found")

// Service converts audio files with ffmpeg
type Service struct {
	ffmpegPath string
	logger     *slog.Logger
}

// NewService creates a new transcode service, looking ffmpeg up on PATH
func NewService(logger *slog.Logger) *Service {
	return NewServiceWithBinary(FFmpegCommand, logger)
}

// NewServiceWithBinary creates a transcode service using the given ffmpeg binary
func NewServiceWithBinary(binary string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		path = ""
	}
	return &Service{ffmpegPath: path, logger: logger}
}

// Available reports whether ffmpeg was found
func (s *Service) Available() bool {
	return s.ffmpegPath != ""
}

// ToMP3 converts inputPath in place to MP3 and returns the final path.
// duration is used for progress logging; when zero it is probed with ffprobe.
func (s *Service) ToMP3(ctx context.Context, inputPath string, duration time.Duration) (string, error) {
	if !s.Available() {
		return "", ErrFFmpegMissing
	}
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return "", fmt.Errorf("input file does not exist: %s", inputPath)
	}

	if duration <= 0 {
		probed, err := getMediaDuration(ctx, inputPath)
		if err != nil {
			s.logger.Debug("ffprobe_failed", "path", inputPath, "err", err)
		}
		duration = probed
	}

	outputPath := generateOutputPath(inputPath)
	cmd := exec.CommandContext(ctx, s.ffmpegPath, BuildFFmpegArgs(inputPath, outputPath)...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		s.monitorProgress(stderr, inputPath, duration)
	}()
	<-progressDone

	if err := cmd.Wait(); err != nil {
		os.Remove(outputPath)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("ffmpeg failed: %w", err)
	}

	finalPath := finalOutputPath(inputPath)
	if err := os.Rename(outputPath, finalPath); err != nil {
		os.Remove(outputPath)
		return "", fmt.Errorf("failed to move converted file: %w", err)
	}
	if finalPath != inputPath {
		os.Remove(inputPath)
	}
	return finalPath, nil
}

// BuildFFmpegArgs builds the ffmpeg command arguments
func BuildFFmpegArgs(inputPath, outputPath string) []string {
	return []string{
		"-y",                            // Overwrite output file
		"-i", inputPath,                 // Input file
		"-vn",                           // Drop any video stream
		"-c:a", AudioCodec,              // Audio codec
		"-b:a", AudioBitrate,            // Audio bitrate
		"-f", "mp3",                     // Output container
		"-progress", ProgressPipeTarget, // Progress to stderr
		"-nostats",                      // No stats output
		outputPath,                      // Output file
	}
}

// getMediaDuration gets the duration of a media file using ffprobe
func getMediaDuration(ctx context.Context, filePath string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, FFprobeCommand, "-v", FFprobeLogLevel, "-show_entries", FFprobeShowEntries, "-of", FFprobeOutputFormat, filePath)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to run ffprobe: %w", err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return time.Duration(seconds * float64(time.Second)), nil
}

// monitorProgress logs ffmpeg progress in 25% steps
func (s *Service) monitorProgress(stderr io.Reader, inputPath string, total time.Duration) {
	scanner := bufio.NewScanner(stderr)
	lastStep := 0

	for scanner.Scan() {
		pos, ok := parseProgressLine(scanner.Text())
		if !ok || total <= 0 {
			continue
		}
		percent := progressPercent(pos, total)
		if step := percent / 25; step > lastStep {
			lastStep = step
			s.logger.Debug("transcode_progress", "path", inputPath, "percent", percent)
		}
	}
}

// parseProgressLine parses "out_time_us=123456" into a position
func parseProgressLine(line string) (time.Duration, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, ProgressTimePrefix) {
		return 0, false
	}
	us, err := strconv.ParseInt(strings.TrimPrefix(line, ProgressTimePrefix), 10, 64)
	if err != nil || us < 0 {
		return 0, false
	}
	return time.Duration(us) * time.Microsecond, true
}

// progressPercent converts a position into a 0..100 percentage
func progressPercent(pos, total time.Duration) int {
	if total <= 0 {
		return 0
	}
	progress := float64(pos) / float64(total)
	if progress > 1.0 {
		progress = 1.0
	}
	return int(progress * 100)
}

// generateOutputPath generates the temporary output path for a converted file
func generateOutputPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	baseName := strings.TrimSuffix(inputPath, ext)
	return baseName + TranscodedSuffix + OutputExtensionMP3
}

// finalOutputPath is the path the converted file ends up at
func finalOutputPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + OutputExtensionMP3
}
