package mediaio

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InlineThreshold is the payload size at and above which content is
// uploaded instead of embedded. It stays under typical inline request limits.
const InlineThreshold = 15 << 20

// Remote videos are referenced with this mime type.
const remoteVideoMIME = "video/mp4"

// Transport decides between inline embedding and upload-then-reference and
// owns the upload lifecycle, including the temporary staging file.
type Transport struct {
	uploader  Uploader
	threshold int
	policy    PollPolicy
	sleep     Sleeper
	tempDir   string
	logger    *zap.Logger
	metrics   *Metrics
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithThreshold overrides InlineThreshold.
func WithThreshold(n int) TransportOption {
	return func(t *Transport) { t.threshold = n }
}

// WithUploadPollPolicy overrides the upload processing poll policy.
func WithUploadPollPolicy(p PollPolicy) TransportOption {
	return func(t *Transport) { t.policy = p }
}

// WithUploadSleeper replaces the wait used between upload status queries.
func WithUploadSleeper(s Sleeper) TransportOption {
	return func(t *Transport) { t.sleep = s }
}

// WithTempDir sets the directory used to stage uploads.
func WithTempDir(dir string) TransportOption {
	return func(t *Transport) { t.tempDir = dir }
}

// WithTransportLogger sets the logger.
func WithTransportLogger(l *zap.Logger) TransportOption {
	return func(t *Transport) { t.logger = l }
}

// WithTransportMetrics sets the metrics sink.
func WithTransportMetrics(m *Metrics) TransportOption {
	return func(t *Transport) { t.metrics = m }
}

// NewTransport creates a Transport that uploads through u.
func NewTransport(u Uploader, opts ...TransportOption) *Transport {
	t := &Transport{
		uploader:  u,
		threshold: InlineThreshold,
		policy:    DefaultUploadPollPolicy(),
		sleep:     SleepContext,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With(zap.String("component", "transport"))
	return t
}

// ShouldUpload reports whether a payload of size bytes must be uploaded.
func (t *Transport) ShouldUpload(size int) bool {
	return size >= t.threshold
}

// Prepare turns a payload into request content. Remote videos are
// referenced by URL, small payloads are embedded and large payloads are
// uploaded and referenced by the URI the backend assigns.
func (t *Transport) Prepare(ctx context.Context, p MediaPayload) (Part, error) {
	if err := p.Validate(); err != nil {
		return Part{}, err
	}
	if p.Kind == PayloadRemoteVideo {
		t.metrics.transport("reference")
		return FilePart(p.Reference, remoteVideoMIME), nil
	}
	if !t.ShouldUpload(p.Size()) {
		t.metrics.transport("inline")
		return InlinePart(p.Data, p.MIMEType), nil
	}

	t.metrics.transport("upload")
	handle, err := t.Upload(ctx, p.Data, p.MIMEType)
	if err != nil {
		return Part{}, err
	}
	return FilePart(handle.URI, p.MIMEType), nil
}

// Upload stages data in a temporary file, uploads it and waits until the
// backend finishes processing. The staging file is removed on every path.
func (t *Transport) Upload(ctx context.Context, data []byte, mimeType string) (*UploadHandle, error) {
	const op = "Upload"
	if t.uploader == nil {
		return nil, fmt.Errorf("no uploader configured for %d byte payload", len(data))
	}

	f, err := os.CreateTemp(t.tempDir, "mmio-"+uuid.NewString()[:8]+"-*"+stagingExt(mimeType))
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file: %w", err)
	}
	defer func() {
		f.Close()
		if rmErr := os.Remove(f.Name()); rmErr != nil && !os.IsNotExist(rmErr) {
			t.logger.Warn("failed to remove staging file", zap.String("path", f.Name()), zap.Error(rmErr))
		}
	}()

	if _, err := f.Write(data); err != nil {
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind staging file: %w", err)
	}

	t.logger.Debug("uploading payload",
		zap.Int("bytes", len(data)),
		zap.String("mime_type", mimeType),
		zap.String("staging", f.Name()))

	handle, err := t.uploader.UploadBlob(ctx, f, int64(len(data)), mimeType)
	if err != nil {
		return nil, Classify(op, err)
	}
	if handle == nil {
		return nil, newClassified(KindUploadFailed, op, ErrUploadFailed,
			"upload of %d bytes returned no file handle", len(data))
	}
	if handle.MIMEType == "" {
		handle.MIMEType = mimeType
	}

	pl := newPoller(op, t.policy, t.sleep)
	pl.onWait = func(int) { t.metrics.pollWait("upload") }
	for !handle.State.Terminal() {
		if err := pl.wait(ctx); err != nil {
			return nil, Classify(op, err)
		}
		state, err := t.uploader.UploadStatus(ctx, *handle)
		if err != nil {
			return nil, Classify(op, err)
		}
		if err := handle.Advance(state); err != nil {
			return nil, err
		}
	}

	t.metrics.upload(handle.State)
	if handle.State == UploadFailed {
		return nil, newClassified(KindUploadFailed, op, fmt.Errorf("%w: %s", ErrUploadFailed, handle.Name),
			"upload %s failed processing", handle.Name)
	}
	t.logger.Debug("upload ready", zap.String("uri", handle.URI), zap.Int("polls", pl.waits))
	return handle, nil
}

// stagingExt picks a file suffix for mimeType so the backend can sniff it.
func stagingExt(mimeType string) string {
	for ext, m := range extMIME {
		if m == mimeType && ext != ".jpeg" {
			return ext
		}
	}
	if mt := mimetype.Lookup(mimeType); mt != nil && mt.Extension() != "" {
		return mt.Extension()
	}
	return ".bin"
}
