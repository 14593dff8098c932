package platform

// Package platform contains the video-platform glue and filesystem helpers:
// single video resolution and stream selection via kkdai/youtube, playlist
// enumeration with a ytdlp fallback, and safe download paths.
