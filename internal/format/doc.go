package format

// Package format renders byte counts and durations as short human-readable
// strings for captions and menu buttons.
