package model

import "time"

const QuickTaskNote = "Quick Task"

type Task struct {
	ID              string `json:"id"`
	Subject         string `json:"subject"`
	DurationMinutes int    `json:"durationMinutes"`
	Note            string `json:"note,omitempty"`
	Completed       bool   `json:"completed"`
}

// DurationSeconds is the full countdown length for the task.
func (t Task) DurationSeconds() int {
	return t.DurationMinutes * 60
}

type LogEntry struct {
	TaskID      string    `json:"taskId"`
	Subject     string    `json:"subject"`
	Note        string    `json:"note,omitempty"`
	CompletedAt time.Time `json:"completedAt"`
}

// PlanItem is one generated task before the store assigns it an id.
type PlanItem struct {
	Subject         string `json:"subject" mapstructure:"subject" yaml:"subject"`
	DurationMinutes int    `json:"durationMinutes" mapstructure:"durationMinutes" yaml:"durationMinutes"`
	Note            string `json:"note,omitempty" mapstructure:"note" yaml:"note,omitempty"`
}

type StudyPlan struct {
	Plan []PlanItem `json:"plan" yaml:"plan"`
}

// Snapshot is the session as published to subscribers. Notice is set only on
// the snapshot produced by a completion and is delivered best-effort: a
// subscriber too far behind to receive that snapshot never sees it.
type Snapshot struct {
	Version    int        `json:"version"`
	Plan       []Task     `json:"plan"`
	ActiveTask *Task      `json:"activeTask"`
	Log        []LogEntry `json:"log"`
	Notice     string     `json:"notice,omitempty"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
