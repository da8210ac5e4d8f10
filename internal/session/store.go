// Package session holds the in-memory state of one study session: the plan,
// the active task, the completion log and the chat transcript.
package session

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"studyflow/backend/internal/clock"
	"studyflow/backend/internal/model"
	"studyflow/backend/internal/pubsub"
)

// TaskPatch is a partial edit. nil means "no change".
type TaskPatch struct {
	Subject *string `json:"subject,omitempty"`
	Note    *string `json:"note,omitempty"`
}

type Option func(*Store)

func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// Store owns the plan, the active task and the log. The active task is kept
// as an id into the plan, so the plan entry and the active task can never
// diverge.
type Store struct {
	mu       sync.Mutex
	clock    clock.Clock
	newID    func() string
	version  int
	plan     []model.Task
	activeID string
	log      []model.LogEntry
	hub      *pubsub.Hub[model.Snapshot]
}

// snapshotBuffer is how many snapshots a subscriber may fall behind before
// it starts missing them. Missed snapshots take their notice with them.
const snapshotBuffer = 64

func NewStore(opts ...Option) *Store {
	s := &Store{
		clock: clock.Real{},
		newID: uuid.NewString,
		plan:  []model.Task{},
		log:   []model.LogEntry{},
		hub:   pubsub.NewHubSize[model.Snapshot](snapshotBuffer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetPlan replaces the plan wholesale and clears the active task. The log is
// left alone.
func (s *Store) SetPlan(items []model.PlanItem) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan := make([]model.Task, 0, len(items))
	for _, item := range items {
		plan = append(plan, model.Task{
			ID:              s.newID(),
			Subject:         item.Subject,
			DurationMinutes: item.DurationMinutes,
			Note:            item.Note,
		})
	}
	s.plan = plan
	s.activeID = ""
	s.commitLocked("")

	return cloneTasks(plan)
}

// AddQuickTask prepends a one-off task and makes it active.
func (s *Store) AddQuickTask(subject string, durationMinutes int) (model.Task, bool) {
	subject = strings.TrimSpace(subject)
	if subject == "" || durationMinutes < 1 {
		return model.Task{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task := model.Task{
		ID:              s.newID(),
		Subject:         subject,
		DurationMinutes: durationMinutes,
		Note:            model.QuickTaskNote,
	}
	s.plan = append([]model.Task{task}, s.plan...)
	s.activeID = task.ID
	s.commitLocked("")

	return task, true
}

// SelectTask makes the task active. Unknown and completed tasks are ignored.
func (s *Store) SelectTask(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 || s.plan[i].Completed {
		return false
	}
	if s.activeID == id {
		return true
	}
	s.activeID = id
	s.commitLocked("")
	return true
}

func (s *Store) EditTask(id string, patch TaskPatch) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 || s.plan[i].Completed {
		return model.Task{}, false
	}

	task := &s.plan[i]
	if patch.Subject != nil {
		subject := strings.TrimSpace(*patch.Subject)
		if subject == "" {
			return model.Task{}, false
		}
		task.Subject = subject
	}
	if patch.Note != nil {
		task.Note = *patch.Note
	}
	s.commitLocked("")

	return *task, true
}

func (s *Store) SetDuration(id string, minutes int) (model.Task, bool) {
	if minutes < 1 {
		return model.Task{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 || s.plan[i].Completed {
		return model.Task{}, false
	}
	s.plan[i].DurationMinutes = minutes
	s.commitLocked("")

	return s.plan[i], true
}

// DeleteTask removes the task from the plan. wasActive tells the caller that
// the timer bound to it has to be stopped.
func (s *Store) DeleteTask(id string) (wasActive bool, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return false, false
	}
	s.plan = append(s.plan[:i:i], s.plan[i+1:]...)
	if s.activeID == id {
		s.activeID = ""
		wasActive = true
	}
	s.commitLocked("")

	return wasActive, true
}

// CompleteActiveTask logs the active task, marks it completed and clears it.
func (s *Store) CompleteActiveTask() (model.LogEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.completeLocked(s.activeID)
}

// CompleteBoundTask behaves like CompleteActiveTask but only when id is still
// the active task. A countdown that expires after the user moved on to
// another task completes nothing.
func (s *Store) CompleteBoundTask(id string) (model.LogEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" || id != s.activeID {
		return model.LogEntry{}, false
	}
	return s.completeLocked(id)
}

func (s *Store) completeLocked(id string) (model.LogEntry, bool) {
	if id == "" {
		return model.LogEntry{}, false
	}
	i := s.indexLocked(id)
	if i < 0 || s.plan[i].Completed {
		s.activeID = ""
		return model.LogEntry{}, false
	}

	s.plan[i].Completed = true
	entry := model.LogEntry{
		TaskID:      id,
		Subject:     s.plan[i].Subject,
		Note:        s.plan[i].Note,
		CompletedAt: s.clock.Now(),
	}
	s.log = append(s.log, entry)
	s.activeID = ""
	s.commitLocked(fmt.Sprintf("Great job on finishing %q.", entry.Subject))

	return entry, true
}

func (s *Store) Task(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return model.Task{}, false
	}
	return s.plan[i], true
}

func (s *Store) ActiveTask() (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(s.activeID)
	if i < 0 {
		return model.Task{}, false
	}
	return s.plan[i], true
}

func (s *Store) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// Subscribe streams a snapshot after every applied mutation.
func (s *Store) Subscribe() (<-chan model.Snapshot, func()) {
	return s.hub.Subscribe()
}

func (s *Store) Close() {
	s.hub.Close()
}

func (s *Store) commitLocked(notice string) {
	s.version++
	snap := s.snapshotLocked()
	snap.Notice = notice
	s.hub.Publish(snap)
}

func (s *Store) snapshotLocked() model.Snapshot {
	snap := model.Snapshot{
		Version: s.version,
		Plan:    cloneTasks(s.plan),
		Log:     make([]model.LogEntry, 0, len(s.log)),
	}
	for i := len(s.log) - 1; i >= 0; i-- {
		snap.Log = append(snap.Log, s.log[i])
	}
	if i := s.indexLocked(s.activeID); i >= 0 {
		active := s.plan[i]
		snap.ActiveTask = &active
	}
	return snap
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.plan {
		if s.plan[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	return out
}
