package model

const (
	TimerIdle    = "idle"
	TimerReady   = "ready"
	TimerRunning = "running"
	TimerExpired = "expired"
)

const DefaultQuickTaskMinutes = 25

type TimerStatus struct {
	State            string `json:"state"`
	TaskID           string `json:"taskId,omitempty"`
	Subject          string `json:"subject,omitempty"`
	Note             string `json:"note,omitempty"`
	RemainingSeconds int    `json:"remainingSeconds"`
	TotalSeconds     int    `json:"totalSeconds"`
	Version          int    `json:"version"`
}
