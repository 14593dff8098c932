package download

// Package download runs blocking media transfers off the caller's goroutine.
// It bounds parallel transfers, tracks task lifecycle, and reports progress
// through an update callback.
