// Package timer implements the countdown bound to the active study task.
package timer

import (
	"sync"
	"time"

	"studyflow/backend/internal/model"
	"studyflow/backend/internal/pubsub"
)

const DefaultTickInterval = time.Second

// CompletionFunc receives the bound task when its countdown expires or is
// skipped.
type CompletionFunc func(task model.Task)

type Option func(*Timer)

func WithScheduler(s Scheduler) Option {
	return func(t *Timer) { t.scheduler = s }
}

func WithTickInterval(d time.Duration) Option {
	return func(t *Timer) {
		if d > 0 {
			t.interval = d
		}
	}
}

func OnComplete(fn CompletionFunc) Option {
	return func(t *Timer) { t.onComplete = fn }
}

// Timer is the idle/ready/running/expired state machine. Every tick removes
// exactly one second no matter how late the scheduler delivers it.
type Timer struct {
	mu         sync.Mutex
	scheduler  Scheduler
	interval   time.Duration
	onComplete CompletionFunc

	state      string
	task       *model.Task
	remaining  int
	total      int
	version    int
	generation uint64
	cancel     func()

	hub *pubsub.Hub[model.TimerStatus]
}

func New(opts ...Option) *Timer {
	t := &Timer{
		scheduler: TickerScheduler{},
		interval:  DefaultTickInterval,
		state:     model.TimerIdle,
		hub:       pubsub.NewHub[model.TimerStatus](),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Bind loads a task at full duration. A countdown in progress is dropped
// without completing its task.
func (t *Timer) Bind(task model.Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	bound := task
	t.task = &bound
	t.total = task.DurationSeconds()
	t.remaining = t.total
	t.state = model.TimerReady
	t.publishLocked()
}

func (t *Timer) Start() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != model.TimerReady || t.task == nil || t.remaining <= 0 {
		return false
	}

	t.stopLocked()
	gen := t.generation
	t.cancel = t.scheduler.Every(t.interval, func() { t.tick(gen, true) })
	t.state = model.TimerRunning
	t.publishLocked()
	return true
}

func (t *Timer) Pause() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != model.TimerRunning {
		return false
	}
	t.stopLocked()
	t.state = model.TimerReady
	t.publishLocked()
	return true
}

// Reset rewinds the bound task to its full duration. Expired is terminal for
// the bound task, so Reset does nothing there.
func (t *Timer) Reset() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.task == nil || (t.state != model.TimerReady && t.state != model.TimerRunning) {
		return false
	}
	t.stopLocked()
	t.total = t.task.DurationSeconds()
	t.remaining = t.total
	t.state = model.TimerReady
	t.publishLocked()
	return true
}

// Tick advances a running countdown by one second.
func (t *Timer) Tick() {
	t.tick(0, false)
}

func (t *Timer) tick(gen uint64, scheduled bool) {
	t.mu.Lock()
	if t.state != model.TimerRunning || (scheduled && gen != t.generation) {
		t.mu.Unlock()
		return
	}

	t.remaining--
	var finished *model.Task
	if t.remaining <= 0 {
		t.remaining = 0
		t.state = model.TimerExpired
		t.stopLocked()
		task := *t.task
		finished = &task
	}
	t.publishLocked()
	cb := t.onComplete
	t.mu.Unlock()

	if finished != nil && cb != nil {
		cb(*finished)
	}
}

// Skip completes the bound task right away and unbinds it.
func (t *Timer) Skip() bool {
	t.mu.Lock()
	if t.task == nil || (t.state != model.TimerReady && t.state != model.TimerRunning) {
		t.mu.Unlock()
		return false
	}
	task := *t.task
	t.clearLocked()
	cb := t.onComplete
	t.mu.Unlock()

	if cb != nil {
		cb(task)
	}
	return true
}

// Clear unbinds without completing anything.
func (t *Timer) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.task == nil && t.state == model.TimerIdle {
		return
	}
	t.clearLocked()
}

// UpdateDuration follows a duration edit on the bound task. A ready timer is
// rewound to the new length; a running one keeps its remaining time.
func (t *Timer) UpdateDuration(taskID string, minutes int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.task == nil || t.task.ID != taskID || minutes < 1 {
		return false
	}

	t.task.DurationMinutes = minutes
	if t.state == model.TimerReady {
		t.total = t.task.DurationSeconds()
		t.remaining = t.total
	}
	t.publishLocked()
	return true
}

// Relabel copies an edited subject and note onto the bound task without
// touching the countdown.
func (t *Timer) Relabel(task model.Task) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.task == nil || t.task.ID != task.ID {
		return false
	}
	t.task.Subject = task.Subject
	t.task.Note = task.Note
	t.publishLocked()
	return true
}

// BoundTaskID returns the id of the bound task, or "" when idle.
func (t *Timer) BoundTaskID() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.task == nil {
		return ""
	}
	return t.task.ID
}

func (t *Timer) Status() model.TimerStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statusLocked()
}

// Subscribe streams the status after every transition and tick.
func (t *Timer) Subscribe() (<-chan model.TimerStatus, func()) {
	return t.hub.Subscribe()
}

// Close stops any countdown and drops subscribers.
func (t *Timer) Close() {
	t.mu.Lock()
	t.stopLocked()
	t.mu.Unlock()
	t.hub.Close()
}

func (t *Timer) clearLocked() {
	t.stopLocked()
	t.task = nil
	t.total = 0
	t.remaining = 0
	t.state = model.TimerIdle
	t.publishLocked()
}

// stopLocked cancels the live schedule and bumps the generation so a tick
// already in flight is ignored.
func (t *Timer) stopLocked() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.generation++
}

func (t *Timer) publishLocked() {
	t.version++
	t.hub.Publish(t.statusLocked())
}

func (t *Timer) statusLocked() model.TimerStatus {
	status := model.TimerStatus{
		State:            t.state,
		RemainingSeconds: t.remaining,
		TotalSeconds:     t.total,
		Version:          t.version,
	}
	if t.task != nil {
		status.TaskID = t.task.ID
		status.Subject = t.task.Subject
		status.Note = t.task.Note
	}
	return status
}
