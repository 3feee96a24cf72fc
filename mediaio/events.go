package mediaio

import (
	"sync"
	"time"
)

// EventKind identifies the type of job event.
type EventKind string

const (
	EventJobSubmitted EventKind = "job_submitted"
	EventJobPolled    EventKind = "job_polled"
	EventJobWaiting   EventKind = "job_waiting"
	EventJobDone      EventKind = "job_done"
	EventJobFailed    EventKind = "job_failed"
)

// JobEvent is a progress notification for a generation job.
type JobEvent struct {
	Kind      EventKind         `json:"kind"`
	Timestamp time.Time         `json:"timestamp"`
	JobID     string            `json:"job_id"`
	Status    JobStatus         `json:"status,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

// EventEmitter delivers job events to the host application via a channel.
// A nil *EventEmitter drops every event.
type EventEmitter struct {
	ch     chan JobEvent
	closed bool
	mu     sync.Mutex
}

// NewEventEmitter creates an EventEmitter with a buffered channel.
func NewEventEmitter(bufferSize int) *EventEmitter {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &EventEmitter{ch: make(chan JobEvent, bufferSize)}
}

// Emit sends an event without blocking. Events are dropped when the
// buffer is full or the emitter is closed.
func (e *EventEmitter) Emit(kind EventKind, job *GenerationJob, data map[string]string) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	event := JobEvent{
		Kind:      kind,
		Timestamp: time.Now(),
		Data:      data,
	}
	if job != nil {
		event.JobID = job.ID
		event.Status = job.Status
	}
	select {
	case e.ch <- event:
	default:
	}
}

// Events returns the read-only event channel.
func (e *EventEmitter) Events() <-chan JobEvent {
	return e.ch
}

// Close closes the event channel. Safe to call multiple times.
func (e *EventEmitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		close(e.ch)
	}
}
