package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ytget/yt-downloader-bot/internal/config"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

func Execute() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "yt-downloader-bot",
		Short: "Telegram bot that downloads YouTube videos, audio and playlists",
	}

	cobra.OnInitialize(initConfig)

	cmd.PersistentFlags().String("config", "", "Config file path (optional).")
	cmd.PersistentFlags().String("env-file", ".env", "Dotenv file loaded before reading the environment.")
	_ = viper.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("env_file", cmd.PersistentFlags().Lookup("env-file"))

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func initConfig() {
	if err := config.LoadDotEnv(viper.GetString("env_file")); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load env file: %v\n", err)
	}

	settings := config.NewSettings(viper.GetViper())
	if err := settings.ReadConfigFile(viper.GetString("config")); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
	}
}
