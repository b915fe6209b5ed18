package domain

import (
	"encoding/json"
	"fmt"
)

// PipelineStatus represents the execution state of a pipeline or job as
// reported by GitLab.
type PipelineStatus string

const (
	StatusCreated            PipelineStatus = "created"
	StatusWaitingForResource PipelineStatus = "waiting_for_resource"
	StatusPreparing          PipelineStatus = "preparing"
	StatusPending            PipelineStatus = "pending"
	StatusRunning            PipelineStatus = "running"
	StatusSuccess            PipelineStatus = "success"
	StatusFailed             PipelineStatus = "failed"
	StatusCanceled           PipelineStatus = "canceled"
	StatusCanceling          PipelineStatus = "canceling"
	StatusSkipped            PipelineStatus = "skipped"
	StatusManual             PipelineStatus = "manual"
	StatusScheduled          PipelineStatus = "scheduled"
)

var spinnerFrames = [...]string{"◜", "◠", "◝", "◞", "◡", "◟"}

// ParseStatus maps a GitLab status string onto a PipelineStatus.
// The second return value is false for anything outside the known set.
func ParseStatus(s string) (PipelineStatus, bool) {
	switch st := PipelineStatus(s); st {
	case StatusCreated, StatusWaitingForResource, StatusPreparing, StatusPending,
		StatusRunning, StatusSuccess, StatusFailed, StatusCanceled, StatusCanceling,
		StatusSkipped, StatusManual, StatusScheduled:
		return st, true
	}
	return "", false
}

// UnmarshalJSON rejects statuses GitLab is not documented to return.
func (s *PipelineStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	st, ok := ParseStatus(raw)
	if !ok {
		return fmt.Errorf("unknown pipeline status %q", raw)
	}
	*s = st
	return nil
}

// IsActive reports whether work is in flight. Active statuses are animated.
func (s PipelineStatus) IsActive() bool {
	switch s {
	case StatusRunning, StatusPending, StatusWaitingForResource, StatusPreparing:
		return true
	}
	return false
}

func (s PipelineStatus) isPendingLike() bool {
	return s == StatusPending || s == StatusWaitingForResource || s == StatusPreparing
}

// Symbol returns the static glyph for the status.
func (s PipelineStatus) Symbol() string {
	switch s {
	case StatusSuccess:
		return "●"
	case StatusRunning:
		return "◐"
	case StatusPending, StatusWaitingForResource, StatusPreparing:
		return "○"
	case StatusFailed:
		return "✕"
	case StatusCanceled, StatusCanceling, StatusSkipped:
		return "⊘"
	case StatusManual:
		return "▶"
	default:
		return "◯"
	}
}

// AnimatedSymbol returns a spinner frame for active statuses. Running jobs
// spin faster than pending ones.
func (s PipelineStatus) AnimatedSymbol(tick uint8) string {
	switch {
	case s == StatusRunning:
		return spinnerFrames[(int(tick)/4)%len(spinnerFrames)]
	case s.isPendingLike():
		return spinnerFrames[(int(tick)/6)%len(spinnerFrames)]
	}
	return s.Symbol()
}

// String returns the label shown to the user.
func (s PipelineStatus) String() string {
	if s == StatusWaitingForResource {
		return "waiting"
	}
	return string(s)
}
