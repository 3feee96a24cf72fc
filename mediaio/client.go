package mediaio

import (
	"reflect"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/martinemde/mmio/mediaio"

// ModelDefaults names the model used by each operation when the caller
// does not choose one.
type ModelDefaults struct {
	Analyze    string `json:"analyze" yaml:"analyze"`
	Transcribe string `json:"transcribe" yaml:"transcribe"`
	Image      string `json:"image" yaml:"image"`
	Video      string `json:"video" yaml:"video"`
}

// DefaultModelDefaults returns the built-in model choices.
func DefaultModelDefaults() ModelDefaults {
	return ModelDefaults{
		Analyze:    DefaultAnalyzeModel,
		Transcribe: DefaultTranscribeModel,
		Image:      DefaultImageModel,
		Video:      DefaultVideoModel,
	}
}

// Client is the facade over resolver, transport, orchestrator and
// classifier. It is safe for concurrent use by independent operations.
type Client struct {
	backend      MediaBackend
	text         TextGenerator
	transport    *Transport
	orchestrator *Orchestrator
	models       ModelDefaults
	resolution   MediaResolution
	thinking     ThinkingLevel
	logger       *zap.Logger
	metrics      *Metrics
	tracer       trace.Tracer

	transportOpts    []TransportOption
	orchestratorOpts []OrchestratorOption
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTextGenerator routes text generation (Analyze, Transcribe,
// ConvertDocument) to g instead of the backend.
func WithTextGenerator(g TextGenerator) ClientOption {
	return func(c *Client) { c.text = g }
}

// WithModels overrides the default model per operation. Empty fields keep
// the built-in default.
func WithModels(m ModelDefaults) ClientOption {
	return func(c *Client) {
		if m.Analyze != "" {
			c.models.Analyze = m.Analyze
		}
		if m.Transcribe != "" {
			c.models.Transcribe = m.Transcribe
		}
		if m.Image != "" {
			c.models.Image = m.Image
		}
		if m.Video != "" {
			c.models.Video = m.Video
		}
	}
}

// WithDefaults sets the media resolution and thinking level applied when a
// call does not specify them.
func WithDefaults(res MediaResolution, thinking ThinkingLevel) ClientOption {
	return func(c *Client) {
		if res != "" {
			c.resolution = res
		}
		if thinking != "" {
			c.thinking = thinking
		}
	}
}

// WithLogger sets the logger for the client and its components.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics registers engine metrics on reg.
func WithMetrics(reg prometheus.Registerer) ClientOption {
	return func(c *Client) { c.metrics = NewMetrics("mmio", reg) }
}

// WithTracerProvider sets the tracer provider. The global provider is used
// by default.
func WithTracerProvider(tp trace.TracerProvider) ClientOption {
	return func(c *Client) { c.tracer = tp.Tracer(instrumentationName) }
}

// WithEvents publishes generation job progress on e.
func WithEvents(e *EventEmitter) ClientOption {
	return func(c *Client) {
		c.orchestratorOpts = append(c.orchestratorOpts, WithJobEvents(e))
	}
}

// WithPollPolicies sets the upload and job poll policies.
func WithPollPolicies(upload, job PollPolicy) ClientOption {
	return func(c *Client) {
		c.transportOpts = append(c.transportOpts, WithUploadPollPolicy(upload))
		c.orchestratorOpts = append(c.orchestratorOpts, WithJobPollPolicy(job))
	}
}

// WithSleeper replaces the wait used by every polling loop.
func WithSleeper(s Sleeper) ClientOption {
	return func(c *Client) {
		c.transportOpts = append(c.transportOpts, WithUploadSleeper(s))
		c.orchestratorOpts = append(c.orchestratorOpts, WithJobSleeper(s))
	}
}

// WithTransportOptions passes options through to the Transport.
func WithTransportOptions(opts ...TransportOption) ClientOption {
	return func(c *Client) { c.transportOpts = append(c.transportOpts, opts...) }
}

// NewClient creates a Client over backend.
func NewClient(backend MediaBackend, opts ...ClientOption) *Client {
	c := &Client{
		backend:    backend,
		models:     DefaultModelDefaults(),
		resolution: ResolutionMedium,
		thinking:   ThinkingLow,
		logger:     zap.NewNop(),
		tracer:     otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.text == nil {
		c.text = backend
	}

	c.transport = NewTransport(backend, append([]TransportOption{
		WithTransportLogger(c.logger),
		WithTransportMetrics(c.metrics),
	}, c.transportOpts...)...)
	c.orchestrator = NewOrchestrator(backend, append([]OrchestratorOption{
		WithOrchestratorLogger(c.logger),
		WithOrchestratorMetrics(c.metrics),
	}, c.orchestratorOpts...)...)
	c.logger = c.logger.With(zap.String("component", "client"))
	return c
}

// Models returns the default model per operation.
func (c *Client) Models() ModelDefaults {
	return c.models
}

// Close releases resources held by the backend and text generator.
func (c *Client) Close() error {
	closers := []any{c.backend}
	if !samePointer(c.text, c.backend) {
		closers = append(closers, c.text)
	}
	var firstErr error
	for _, v := range closers {
		if closer, ok := v.(Closer); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// samePointer reports whether a and b are the same pointer. Values of other
// kinds may not be comparable and are treated as distinct.
func samePointer(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() != reflect.Pointer || vb.Kind() != reflect.Pointer {
		return false
	}
	return va.Type() == vb.Type() && va.Pointer() == vb.Pointer()
}
