package model

// TaskStatus represents the status of a download task
type TaskStatus string

const (
	// TaskStatusPending means the task is queued but not started
	TaskStatusPending TaskStatus = "Pending"

	// TaskStatusDownloading means the transfer is in progress
	TaskStatusDownloading TaskStatus = "Downloading"

	// TaskStatusStopped means the task was cancelled before finishing
	TaskStatusStopped TaskStatus = "Stopped"

	// TaskStatusCompleted means the task finished successfully
	TaskStatusCompleted TaskStatus = "Completed"

	// TaskStatusError means the task failed with an error
	TaskStatusError TaskStatus = "Error"
)

// String returns the string representation of TaskStatus
func (ts TaskStatus) String() string {
	return string(ts)
}

// IsActive returns true if the task is in an active state
func (ts TaskStatus) IsActive() bool {
	return ts == TaskStatusDownloading
}

// IsFinished returns true if the task is in a finished state (completed, stopped, or error)
func (ts TaskStatus) IsFinished() bool {
	return ts == TaskStatusCompleted || ts == TaskStatusStopped || ts == TaskStatusError
}

// SelectionState tracks where a chat is in the pick-download-upload cycle
type SelectionState string

const (
	// SelectionIdle means no menu is pending
	SelectionIdle SelectionState = "idle"

	// SelectionAwaitingChoice means a quality menu was shown
	SelectionAwaitingChoice SelectionState = "awaiting-choice"

	// SelectionTransferring means one blocking transfer is in flight
	SelectionTransferring SelectionState = "transferring"

	// SelectionDelivered is terminal: media was sent
	SelectionDelivered SelectionState = "delivered"

	// SelectionFailed is terminal: the failure was reported to the user
	SelectionFailed SelectionState = "failed"
)

// IsTerminal returns true for delivered and failed
func (s SelectionState) IsTerminal() bool {
	return s == SelectionDelivered || s == SelectionFailed
}

// CanTransition reports whether moving from s to next is a legal step
func (s SelectionState) CanTransition(next SelectionState) bool {
	switch s {
	case SelectionIdle:
		return next == SelectionAwaitingChoice
	case SelectionAwaitingChoice:
		return next == SelectionTransferring || next == SelectionDelivered || next == SelectionFailed
	case SelectionTransferring:
		return next == SelectionDelivered || next == SelectionFailed
	default:
		return false
	}
}
