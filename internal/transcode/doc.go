package transcode

// Package transcode converts downloaded audio streams to MP3 with ffmpeg.
