package mediaio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventEmitterEmit(t *testing.T) {
	e := NewEventEmitter(4)
	job := &GenerationJob{ID: "job-1", Status: JobRunning}
	e.Emit(EventJobPolled, job, map[string]string{"reported": "running"})

	ev := <-e.Events()
	assert.Equal(t, EventJobPolled, ev.Kind)
	assert.Equal(t, "job-1", ev.JobID)
	assert.Equal(t, JobRunning, ev.Status)
	assert.Equal(t, "running", ev.Data["reported"])
	assert.False(t, ev.Timestamp.IsZero())
}

func TestEventEmitterDropsWhenFull(t *testing.T) {
	e := NewEventEmitter(1)
	e.Emit(EventJobSubmitted, nil, nil)
	e.Emit(EventJobDone, nil, nil)
	e.Close()

	var kinds []EventKind
	for ev := range e.Events() {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []EventKind{EventJobSubmitted}, kinds)
}

func TestEventEmitterClose(t *testing.T) {
	e := NewEventEmitter(0)
	e.Close()
	e.Close()
	e.Emit(EventJobDone, nil, nil)
	_, ok := <-e.Events()
	assert.False(t, ok)
}

func TestNilEventEmitter(t *testing.T) {
	var e *EventEmitter
	assert.NotPanics(t, func() { e.Emit(EventJobDone, nil, nil) })
}
