package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/ytget/ytdlp/v2/client"

	"github.com/ytget/yt-downloader-bot/internal/bot"
	"github.com/ytget/yt-downloader-bot/internal/config"
	"github.com/ytget/yt-downloader-bot/internal/download"
	"github.com/ytget/yt-downloader-bot/internal/logutil"
	"github.com/ytget/yt-downloader-bot/internal/model"
	"github.com/ytget/yt-downloader-bot/internal/platform"
	"github.com/ytget/yt-downloader-bot/internal/session"
	"github.com/ytget/yt-downloader-bot/internal/transcode"
)

// HTTP client settings for platform requests
const (
	HTTPRetries   = 3
	HTTPUserAgent = "yt-downloader-bot"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bot with Telegram long polling",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := config.NewSettings(viper.GetViper())
			if err := settings.Validate(); err != nil {
				return fmt.Errorf("%w (set telegram.bot_token, YTBOT_TELEGRAM_BOT_TOKEN or BOT_TOKEN)", err)
			}

			logger, err := logutil.LoggerFromSettings(settings)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, settings, logger)
		},
	}

	cmd.Flags().String("token", "", "Telegram bot token.")
	cmd.Flags().String("download-dir", "", "Directory for downloaded media.")
	cmd.Flags().Int("max-parallel", config.DefaultMaxParallel, "Concurrent transfers (1..10).")
	cmd.Flags().Bool("transcode-mp3", false, "Convert audio to MP3 with ffmpeg before sending.")
	cmd.Flags().String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error.")
	cmd.Flags().String("log-format", config.DefaultLogFormat, "Log format: text or json.")
	_ = viper.BindPFlag(config.KeyBotToken, cmd.Flags().Lookup("token"))
	_ = viper.BindPFlag(config.KeyDownloadDir, cmd.Flags().Lookup("download-dir"))
	_ = viper.BindPFlag(config.KeyMaxParallel, cmd.Flags().Lookup("max-parallel"))
	_ = viper.BindPFlag(config.KeyTranscodeMP3, cmd.Flags().Lookup("transcode-mp3"))
	_ = viper.BindPFlag(config.KeyLogLevel, cmd.Flags().Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyLogFormat, cmd.Flags().Lookup("log-format"))

	return cmd
}

func serve(ctx context.Context, settings *config.Settings, logger *slog.Logger) error {
	downloadsDir := settings.GetDownloadDirectory()
	if err := platform.CreateDirectoryIfNotExists(downloadsDir); err != nil {
		return fmt.Errorf("failed to ensure downloads dir: %w", err)
	}

	api, err := tgbotapi.NewBotAPI(settings.GetBotToken())
	if err != nil {
		return fmt.Errorf("telegram auth: %w", err)
	}
	api.Debug = settings.GetTelegramDebug()

	httpClient := client.NewWith(client.Config{
		Timeout:   settings.GetHTTPTimeout(),
		Retries:   HTTPRetries,
		UserAgent: HTTPUserAgent,
	}).HTTPClient

	playlists := platform.NewPlaylistParserService(httpClient)
	playlists.SetTimeout(settings.GetHTTPTimeout())
	resolver := platform.NewYouTubeResolver(httpClient, playlists, logger)
	resolver.SetTimeout(settings.GetHTTPTimeout())

	downloadSvc := download.NewService(downloadsDir, settings.GetMaxParallelDownloads(), logger)
	downloadSvc.SetUpdateCallback(func(task *model.DownloadTask) {
		logger.Debug("download_progress", "task_id", task.ID, "status", task.Status, "percent", task.Percent)
	})

	handler := bot.NewHandler(
		bot.NewTelegramMessenger(api, logger),
		resolver,
		downloadSvc,
		session.NewStore(),
		bot.Options{
			Caption:         settings.GetCaption(),
			ChannelURL:      settings.GetChannelURL(),
			DeveloperURL:    settings.GetDeveloperURL(),
			FallbackQuality: settings.GetFallbackQuality(),
			BulkPause:       settings.GetBulkPause(),
			TranscodeMP3:    settings.GetTranscodeMP3(),
		},
		logger,
	)
	if settings.GetTranscodeMP3() {
		tc := transcode.NewService(logger)
		if !tc.Available() {
			logger.Warn("ffmpeg_not_found", "hint", "audio is sent without conversion")
		}
		handler.SetTranscoder(tc)
	}

	dispatcher := bot.NewDispatcher(ctx, settings.GetMaxConcurrentChats(), handler.Handle, logger)
	defer dispatcher.Stop()

	logger.Info("bot_started",
		"version", version,
		"bot", api.Self.UserName,
		"download_dir", downloadsDir,
		"max_parallel", settings.GetMaxParallelDownloads(),
		"http_timeout", settings.GetHTTPTimeout(),
	)

	err = bot.Poll(ctx, api, settings.GetPollTimeout(), dispatcher, logger)
	if inFlight := downloadSvc.GetAllTasks(); len(inFlight) > 0 {
		logger.Warn("downloads_interrupted", "tasks", len(inFlight), "active", downloadSvc.ActiveCount())
	}
	if errors.Is(err, context.Canceled) {
		logger.Info("bot_stopped")
		return nil
	}
	return err
}
