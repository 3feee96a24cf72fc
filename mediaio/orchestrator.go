package mediaio

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Orchestrator drives a generation job from submission to a terminal state:
// Pending on submission, Running while the backend reports not done, then
// Done with a fetched artifact or Failed with a classified error.
type Orchestrator struct {
	jobs    VideoGenerator
	policy  PollPolicy
	sleep   Sleeper
	logger  *zap.Logger
	metrics *Metrics
	events  *EventEmitter
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithJobPollPolicy overrides the job poll policy.
func WithJobPollPolicy(p PollPolicy) OrchestratorOption {
	return func(o *Orchestrator) { o.policy = p }
}

// WithJobSleeper replaces the wait used between job status queries.
func WithJobSleeper(s Sleeper) OrchestratorOption {
	return func(o *Orchestrator) { o.sleep = s }
}

// WithOrchestratorLogger sets the logger.
func WithOrchestratorLogger(l *zap.Logger) OrchestratorOption {
	return func(o *Orchestrator) { o.logger = l }
}

// WithOrchestratorMetrics sets the metrics sink.
func WithOrchestratorMetrics(m *Metrics) OrchestratorOption {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithJobEvents publishes job progress on e.
func WithJobEvents(e *EventEmitter) OrchestratorOption {
	return func(o *Orchestrator) { o.events = e }
}

// NewOrchestrator creates an Orchestrator polling through jobs.
func NewOrchestrator(jobs VideoGenerator, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		jobs:   jobs,
		policy: DefaultJobPollPolicy(),
		sleep:  SleepContext,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With(zap.String("component", "orchestrator"))
	return o
}

// Run submits a job and polls it until it is Done or Failed. The returned
// job is always non-nil; on failure its Err equals the returned error, which
// is classified for op. Status queries strictly follow submission and the
// artifact is fetched once, after the final query.
func (o *Orchestrator) Run(ctx context.Context, op string, submit func(ctx context.Context) (JobHandle, error)) (*GenerationJob, error) {
	job := &GenerationJob{ID: uuid.NewString(), Status: JobPending}
	fail := func(err error) (*GenerationJob, error) {
		job.fail(Classify(op, err))
		o.events.Emit(EventJobFailed, job, map[string]string{"error": job.Err.Error()})
		o.logger.Warn("job failed",
			zap.String("job_id", job.ID),
			zap.String("kind", string(KindOf(job.Err))),
			zap.Int("polls", job.Polls),
			zap.Error(job.Err))
		return job, job.Err
	}

	handle, err := submit(ctx)
	if err != nil {
		return fail(err)
	}
	job.Handle = handle
	job.SubmittedAt = time.Now()
	o.events.Emit(EventJobSubmitted, job, map[string]string{"handle": handle.Name})
	o.logger.Info("job submitted", zap.String("job_id", job.ID), zap.String("handle", handle.Name))

	pl := newPoller(op, o.policy, o.sleep)
	pl.onWait = func(n int) {
		o.metrics.pollWait("job")
		o.events.Emit(EventJobWaiting, job, map[string]string{"wait": strconv.Itoa(n)})
	}

	for {
		res, err := o.jobs.PollJob(ctx, job.Handle)
		if err != nil {
			return fail(err)
		}
		job.Polls++
		if res.Handle.Name != "" || res.Handle.Native != nil {
			job.Handle = res.Handle
		}
		o.events.Emit(EventJobPolled, job, map[string]string{"reported": string(res.Status)})

		if res.Status == JobDone {
			break
		}
		if res.Status == JobFailed {
			detail := res.Failure
			if detail == "" {
				detail = "backend reported job failure"
			}
			return fail(errors.New(detail))
		}

		job.Status = JobRunning
		o.logger.Debug("job running", zap.String("job_id", job.ID), zap.Int("polls", job.Polls))
		if err := pl.wait(ctx); err != nil {
			return fail(err)
		}
	}

	blob, err := o.jobs.FetchJobArtifact(ctx, job.Handle)
	if err != nil {
		return fail(err)
	}
	if blob == nil || len(blob.Data) == 0 {
		return fail(noArtifact(op))
	}

	job.complete(&GeneratedArtifact{
		Data:     blob.Data,
		MIMEType: blob.MIMEType,
		Metadata: map[string]string{},
	})
	o.metrics.observeJob(job.CompletedAt.Sub(job.SubmittedAt))
	o.events.Emit(EventJobDone, job, map[string]string{"bytes": strconv.Itoa(len(blob.Data))})
	o.logger.Info("job done",
		zap.String("job_id", job.ID),
		zap.Int("polls", job.Polls),
		zap.Int("bytes", len(blob.Data)))
	return job, nil
}
