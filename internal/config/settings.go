package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ytget/yt-downloader-bot/internal/platform"
)

// EnvPrefix is the prefix for environment overrides, e.g. YTBOT_DOWNLOAD_DIR
const EnvPrefix = "YTBOT"

// Settings keys
const (
	KeyBotToken           = "telegram.bot_token"
	KeyPollTimeout        = "telegram.poll_timeout"
	KeyTelegramDebug      = "telegram.debug"
	KeyDownloadDir        = "download.dir"
	KeyMaxParallel        = "download.max_parallel"
	KeyFallbackQuality    = "download.fallback_quality"
	KeyHTTPTimeout        = "download.http_timeout"
	KeyTranscodeMP3       = "audio.transcode_mp3"
	KeyBulkPause          = "bulk.pause"
	KeyMaxConcurrentChats = "bot.max_concurrent_chats"
	KeyCaption            = "bot.caption"
	KeyChannelURL         = "bot.channel_url"
	KeyDeveloperURL       = "bot.developer_url"
	KeyLogLevel           = "logging.level"
	KeyLogFormat          = "logging.format"
	KeyLogAddSource       = "logging.add_source"
)

// Default values
const (
	DefaultPollTimeout        = 60
	DefaultMaxParallel        = 2
	DefaultFallbackQuality    = "360p"
	DefaultHTTPTimeout        = 30 * time.Second
	DefaultBulkPause          = time.Second
	DefaultMaxConcurrentChats = 16
	DefaultCaption            = "✅ JOIN @TELSABOTS"
	DefaultChannelURL         = "https://t.me/TELSABOTS"
	DefaultDeveloperURL       = "https://t.me/alluddin"
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
)

// Parallel download bounds
const (
	MinParallel = 1
	MaxParallel = 10
)

// ErrMissingToken is returned by Validate when no bot token is configured
var ErrMissingToken = errors.New("telegram bot token is not configured")

// legacyEnv maps plain environment variables onto settings keys
var legacyEnv = map[string]string{
	KeyBotToken: "BOT_TOKEN",
}

// Settings is a typed read view over viper
type Settings struct {
	v *viper.Viper
}

// NewSettings creates a settings manager over v with defaults registered.
// A nil v uses the global viper instance.
func NewSettings(v *viper.Viper) *Settings {
	if v == nil {
		v = viper.GetViper()
	}
	SetDefaults(v)
	return &Settings{v: v}
}

// SetDefaults registers default values and env bindings on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPollTimeout, DefaultPollTimeout)
	v.SetDefault(KeyTelegramDebug, false)
	v.SetDefault(KeyMaxParallel, DefaultMaxParallel)
	v.SetDefault(KeyFallbackQuality, DefaultFallbackQuality)
	v.SetDefault(KeyHTTPTimeout, DefaultHTTPTimeout)
	v.SetDefault(KeyTranscodeMP3, false)
	v.SetDefault(KeyBulkPause, DefaultBulkPause)
	v.SetDefault(KeyMaxConcurrentChats, DefaultMaxConcurrentChats)
	v.SetDefault(KeyCaption, DefaultCaption)
	v.SetDefault(KeyChannelURL, DefaultChannelURL)
	v.SetDefault(KeyDeveloperURL, DefaultDeveloperURL)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)
	v.SetDefault(KeyLogAddSource, false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	for key, env := range legacyEnv {
		_ = v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.NewReplacer(".", "_").Replace(key)), env)
	}
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; existing variables are kept.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ReadConfigFile reads an optional config file into the settings
func (s *Settings) ReadConfigFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	s.v.SetConfigFile(path)
	if err := s.v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Validate checks that required settings are present
func (s *Settings) Validate() error {
	if s.GetBotToken() == "" {
		return ErrMissingToken
	}
	return nil
}

// GetBotToken returns the Telegram bot token
func (s *Settings) GetBotToken() string {
	return strings.TrimSpace(s.v.GetString(KeyBotToken))
}

// GetPollTimeout returns the long polling timeout in seconds
func (s *Settings) GetPollTimeout() int {
	value := s.v.GetInt(KeyPollTimeout)
	if value <= 0 {
		return DefaultPollTimeout
	}
	return value
}

// GetTelegramDebug returns whether the Telegram client logs requests
func (s *Settings) GetTelegramDebug() bool {
	return s.v.GetBool(KeyTelegramDebug)
}

// GetDownloadDirectory returns the configured download directory
func (s *Settings) GetDownloadDirectory() string {
	dir := strings.TrimSpace(s.v.GetString(KeyDownloadDir))
	if dir == "" {
		return platform.DefaultDownloadDir()
	}
	return dir
}

// GetMaxParallelDownloads returns the maximum number of parallel downloads
func (s *Settings) GetMaxParallelDownloads() int {
	return clampParallel(s.v.GetInt(KeyMaxParallel))
}

func clampParallel(count int) int {
	if count < MinParallel {
		return MinParallel
	}
	if count > MaxParallel {
		return MaxParallel
	}
	return count
}

// GetFallbackQuality returns the quality label of the low tier option
func (s *Settings) GetFallbackQuality() string {
	q := strings.TrimSpace(s.v.GetString(KeyFallbackQuality))
	if q == "" {
		return DefaultFallbackQuality
	}
	return q
}

// GetHTTPTimeout returns the timeout for platform metadata requests
func (s *Settings) GetHTTPTimeout() time.Duration {
	d := s.v.GetDuration(KeyHTTPTimeout)
	if d <= 0 {
		return DefaultHTTPTimeout
	}
	return d
}

// GetTranscodeMP3 returns whether audio is converted with ffmpeg before sending
func (s *Settings) GetTranscodeMP3() bool {
	return s.v.GetBool(KeyTranscodeMP3)
}

// GetBulkPause returns the pause between playlist items
func (s *Settings) GetBulkPause() time.Duration {
	d := s.v.GetDuration(KeyBulkPause)
	if d < 0 {
		return DefaultBulkPause
	}
	return d
}

// GetMaxConcurrentChats returns how many chats are processed at once
func (s *Settings) GetMaxConcurrentChats() int {
	value := s.v.GetInt(KeyMaxConcurrentChats)
	if value <= 0 {
		return DefaultMaxConcurrentChats
	}
	return value
}

// GetCaption returns the promo caption attached to delivered media
func (s *Settings) GetCaption() string {
	return s.v.GetString(KeyCaption)
}

// GetChannelURL returns the channel link on the start panel
func (s *Settings) GetChannelURL() string {
	return s.v.GetString(KeyChannelURL)
}

// GetDeveloperURL returns the developer link on the start panel
func (s *Settings) GetDeveloperURL() string {
	return s.v.GetString(KeyDeveloperURL)
}

// GetLogLevel returns the slog level name
func (s *Settings) GetLogLevel() string {
	return s.v.GetString(KeyLogLevel)
}

// GetLogFormat returns the slog handler format (text or json)
func (s *Settings) GetLogFormat() string {
	return s.v.GetString(KeyLogFormat)
}

// GetLogAddSource returns whether log records carry source positions
func (s *Settings) GetLogAddSource() bool {
	return s.v.GetBool(KeyLogAddSource)
}
