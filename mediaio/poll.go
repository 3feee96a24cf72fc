package mediaio

import (
	"context"
	"time"
)

// Default poll intervals.
const (
	DefaultUploadPollInterval = 1 * time.Second
	DefaultJobPollInterval    = 5 * time.Second
)

// PollPolicy configures a fixed-interval polling loop. Zero MaxAttempts and
// zero Timeout poll until the backend reports a terminal state.
type PollPolicy struct {
	Interval    time.Duration // wait between status queries
	MaxAttempts int           // waits allowed before giving up; 0 = unbounded
	Timeout     time.Duration // total wall time allowed; 0 = unbounded
}

// DefaultUploadPollPolicy polls upload processing every second, unbounded.
func DefaultUploadPollPolicy() PollPolicy {
	return PollPolicy{Interval: DefaultUploadPollInterval}
}

// DefaultJobPollPolicy polls generation jobs every five seconds, unbounded.
func DefaultJobPollPolicy() PollPolicy {
	return PollPolicy{Interval: DefaultJobPollInterval}
}

// Bounded reports whether the policy limits attempts or time.
func (p PollPolicy) Bounded() bool {
	return p.MaxAttempts > 0 || p.Timeout > 0
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// poller counts waits between status queries and enforces the policy bounds.
type poller struct {
	policy  PollPolicy
	sleep   Sleeper
	now     func() time.Time
	started time.Time
	waits   int
	op      string
	onWait  func(n int)
}

func newPoller(op string, policy PollPolicy, sleep Sleeper) *poller {
	if sleep == nil {
		sleep = SleepContext
	}
	p := &poller{policy: policy, sleep: sleep, now: time.Now, op: op}
	p.started = p.now()
	return p
}

// wait blocks for one interval before the next status query. It fails with
// a KindTimeout error when the next wait would exceed the policy, and with
// the context error when ctx is cancelled.
func (p *poller) wait(ctx context.Context) error {
	if p.policy.MaxAttempts > 0 && p.waits >= p.policy.MaxAttempts {
		return newClassified(KindTimeout, p.op, ErrPollTimeout,
			"%s did not finish after %d polls", p.op, p.waits)
	}
	if p.policy.Timeout > 0 && p.now().Sub(p.started)+p.policy.Interval > p.policy.Timeout {
		return newClassified(KindTimeout, p.op, ErrPollTimeout,
			"%s did not finish within %s", p.op, p.policy.Timeout)
	}
	p.waits++
	if p.onWait != nil {
		p.onWait(p.waits)
	}
	return p.sleep(ctx, p.policy.Interval)
}
