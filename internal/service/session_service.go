package service

import (
	"log/slog"
	"strings"
	"sync"

	apperrors "studyflow/backend/internal/errors"
	"studyflow/backend/internal/model"
	"studyflow/backend/internal/session"
	"studyflow/backend/internal/timer"
)

const msgTaskNotFound = "task not found"

// SessionView is what every session endpoint answers with.
type SessionView struct {
	Session model.Snapshot    `json:"session"`
	Timer   model.TimerStatus `json:"timer"`
}

type QuickTaskInput struct {
	Subject         string `json:"subject"`
	DurationMinutes int    `json:"durationMinutes"`
}

// SessionService keeps the store and the countdown timer in step: selecting a
// task binds it, deleting the bound task clears the timer and an expired or
// skipped countdown completes the task in the store.
type SessionService struct {
	mu    sync.Mutex
	store *session.Store
	timer *timer.Timer
}

func NewSessionService(store *session.Store, timerOpts ...timer.Option) *SessionService {
	s := &SessionService{store: store}

	opts := append([]timer.Option{timer.OnComplete(s.taskFinished)}, timerOpts...)
	s.timer = timer.New(opts...)
	return s
}

// taskFinished runs on the timer's goroutine. It must not take s.mu: Skip
// holds it while the timer calls back.
func (s *SessionService) taskFinished(task model.Task) {
	if entry, ok := s.store.CompleteBoundTask(task.ID); ok {
		slog.Info("study task completed", "taskId", entry.TaskID, "subject", entry.Subject)
	}
}

func (s *SessionService) State() SessionView {
	return SessionView{
		Session: s.store.Snapshot(),
		Timer:   s.timer.Status(),
	}
}

// ApplyPlan replaces the plan with a freshly generated one. The active task
// goes away and the timer with it.
func (s *SessionService) ApplyPlan(items []model.PlanItem) SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.SetPlan(items)
	s.timer.Clear()
	return s.State()
}

func (s *SessionService) QuickAdd(input QuickTaskInput) (*model.Task, *SessionView, *apperrors.APIError) {
	subject := strings.TrimSpace(input.Subject)
	var problems []string
	if subject == "" {
		problems = append(problems, "Subject is required.")
	}
	if input.DurationMinutes < 1 {
		problems = append(problems, "Duration must be at least 1 minute.")
	}
	if len(problems) > 0 {
		return nil, nil, apperrors.Validation(strings.Join(problems, " "), nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.store.AddQuickTask(subject, input.DurationMinutes)
	if !ok {
		return nil, nil, apperrors.Internal("failed to add task")
	}
	s.timer.Bind(task)

	view := s.State()
	return &task, &view, nil
}

// SelectTask makes the task active and binds it to the timer. Completed tasks
// are left alone.
func (s *SessionService) SelectTask(id string) (*SessionView, *apperrors.APIError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if apiErr := s.requireTask(id); apiErr != nil {
		return nil, apiErr
	}
	if s.store.SelectTask(id) && s.timer.BoundTaskID() != id {
		task, _ := s.store.Task(id)
		s.timer.Bind(task)
	}

	view := s.State()
	return &view, nil
}

func (s *SessionService) EditTask(id string, patch session.TaskPatch) (*SessionView, *apperrors.APIError) {
	if patch.Subject != nil && strings.TrimSpace(*patch.Subject) == "" {
		return nil, apperrors.Validation("Subject is required.", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if apiErr := s.requireTask(id); apiErr != nil {
		return nil, apiErr
	}
	if task, ok := s.store.EditTask(id, patch); ok {
		s.timer.Relabel(task)
	}

	view := s.State()
	return &view, nil
}

// SetDuration changes a task's planned length. A bound timer that has not
// started picks up the new length; a running one keeps counting.
func (s *SessionService) SetDuration(id string, minutes int) (*SessionView, *apperrors.APIError) {
	if minutes < 1 {
		return nil, apperrors.Validation("Duration must be at least 1 minute.", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if apiErr := s.requireTask(id); apiErr != nil {
		return nil, apiErr
	}
	if task, ok := s.store.SetDuration(id, minutes); ok {
		s.timer.UpdateDuration(task.ID, task.DurationMinutes)
	}

	view := s.State()
	return &view, nil
}

func (s *SessionService) DeleteTask(id string) (*SessionView, *apperrors.APIError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasActive, found := s.store.DeleteTask(id)
	if !found {
		return nil, apperrors.NotFound(apperrors.CodeTaskNotFound, msgTaskNotFound)
	}
	if wasActive || s.timer.BoundTaskID() == id {
		s.timer.Clear()
	}

	view := s.State()
	return &view, nil
}

func (s *SessionService) StartTimer() SessionView {
	return s.withTimer(func(t *timer.Timer) { t.Start() })
}

func (s *SessionService) PauseTimer() SessionView {
	return s.withTimer(func(t *timer.Timer) { t.Pause() })
}

func (s *SessionService) ResetTimer() SessionView {
	return s.withTimer(func(t *timer.Timer) { t.Reset() })
}

// SkipTimer completes the bound task right away.
func (s *SessionService) SkipTimer() SessionView {
	return s.withTimer(func(t *timer.Timer) { t.Skip() })
}

func (s *SessionService) SubscribeSession() (<-chan model.Snapshot, func()) {
	return s.store.Subscribe()
}

func (s *SessionService) SubscribeTimer() (<-chan model.TimerStatus, func()) {
	return s.timer.Subscribe()
}

// Close stops the countdown and ends every subscription.
func (s *SessionService) Close() {
	s.timer.Close()
	s.store.Close()
}

func (s *SessionService) withTimer(fn func(*timer.Timer)) SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(s.timer)
	return s.State()
}

func (s *SessionService) requireTask(id string) *apperrors.APIError {
	if _, ok := s.store.Task(id); !ok {
		return apperrors.NotFound(apperrors.CodeTaskNotFound, msgTaskNotFound)
	}
	return nil
}
