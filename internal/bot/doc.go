package bot

// Package bot implements the chat side of the downloader: command panels,
// the single video menu and its callback state machine, playlist runs, and
// the per-chat update dispatcher feeding them from Telegram.
