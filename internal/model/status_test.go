package model

import "testing"

func TestTaskStatus_IsActive(t *testing.T) {
	tests := []struct {
		status   TaskStatus
		expected bool
	}{
		{TaskStatusPending, false},
		{TaskStatusDownloading, true},
		{TaskStatusStopped, false},
		{TaskStatusCompleted, false},
		{TaskStatusError, false},
	}

	for _, test := range tests {
		result := test.status.IsActive()
		if result != test.expected {
			t.Errorf("TaskStatus(%s).IsActive() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestTaskStatus_IsFinished(t *testing.T) {
	tests := []struct {
		status   TaskStatus
		expected bool
	}{
		{TaskStatusPending, false},
		{TaskStatusDownloading, false},
		{TaskStatusStopped, true},
		{TaskStatusCompleted, true},
		{TaskStatusError, true},
	}

	for _, test := range tests {
		result := test.status.IsFinished()
		if result != test.expected {
			t.Errorf("TaskStatus(%s).IsFinished() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestTaskStatus_String(t *testing.T) {
	status := TaskStatusDownloading
	expected := "Downloading"
	result := status.String()

	if result != expected {
		t.Errorf("TaskStatus.String() = %s, expected %s", result, expected)
	}
}

func TestSelectionState_CanTransition(t *testing.T) {
	tests := []struct {
		from, to SelectionState
		expected bool
	}{
		{SelectionIdle, SelectionAwaitingChoice, true},
		{SelectionIdle, SelectionTransferring, false},
		{SelectionAwaitingChoice, SelectionTransferring, true},
		{SelectionAwaitingChoice, SelectionDelivered, true},
		{SelectionTransferring, SelectionDelivered, true},
		{SelectionTransferring, SelectionFailed, true},
		{SelectionTransferring, SelectionIdle, false},
		{SelectionDelivered, SelectionTransferring, false},
		{SelectionFailed, SelectionAwaitingChoice, false},
	}

	for _, test := range tests {
		result := test.from.CanTransition(test.to)
		if result != test.expected {
			t.Errorf("%s -> %s = %v, expected %v", test.from, test.to, result, test.expected)
		}
	}
}

func TestSelectionState_IsTerminal(t *testing.T) {
	if !SelectionDelivered.IsTerminal() || !SelectionFailed.IsTerminal() {
		t.Error("delivered and failed should be terminal")
	}
	if SelectionTransferring.IsTerminal() || SelectionIdle.IsTerminal() {
		t.Error("transferring and idle should not be terminal")
	}
}
