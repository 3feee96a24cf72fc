package mediaio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Generic binary mime type used for unknown extensions and raw input.
const OctetStream = "application/octet-stream"

// PayloadKind is the discriminator tag for MediaPayload.
type PayloadKind string

const (
	PayloadBytes       PayloadKind = "bytes"
	PayloadRemoteVideo PayloadKind = "remote-video"
)

// MediaPayload is resolved input: either bytes with a mime type, or a
// reference to a remote video. Exactly one shape is populated.
type MediaPayload struct {
	Kind      PayloadKind
	Data      []byte
	MIMEType  string
	Reference string
}

// BytesPayload creates a byte payload. An empty mime type means octet-stream.
func BytesPayload(data []byte, mimeType string) MediaPayload {
	if mimeType == "" {
		mimeType = OctetStream
	}
	return MediaPayload{Kind: PayloadBytes, Data: data, MIMEType: mimeType}
}

// RemoteVideoPayload creates a payload referencing a remote video by URL.
func RemoteVideoPayload(ref string) MediaPayload {
	return MediaPayload{Kind: PayloadRemoteVideo, Reference: ref}
}

// Validate reports whether the payload holds exactly one shape.
func (p MediaPayload) Validate() error {
	switch p.Kind {
	case PayloadBytes:
		if p.Reference != "" {
			return errors.New("byte payload must not carry a reference")
		}
	case PayloadRemoteVideo:
		if p.Reference == "" {
			return errors.New("remote-video payload requires a reference")
		}
		if len(p.Data) > 0 {
			return errors.New("remote-video payload must not carry bytes")
		}
	default:
		return fmt.Errorf("unknown payload kind %q", p.Kind)
	}
	return nil
}

// Size returns the number of payload bytes (zero for references).
func (p MediaPayload) Size() int {
	return len(p.Data)
}

// PartKind is the discriminator tag for Part.
type PartKind string

const (
	PartText   PartKind = "text"
	PartInline PartKind = "inline"
	PartFile   PartKind = "file"
)

// Part is one piece of request content sent to the backend.
type Part struct {
	Kind     PartKind
	Text     string
	Data     []byte
	MIMEType string
	FileURI  string
}

// TextPart creates a text Part.
func TextPart(text string) Part {
	return Part{Kind: PartText, Text: text}
}

// InlinePart creates a Part that embeds bytes in the request.
func InlinePart(data []byte, mimeType string) Part {
	return Part{Kind: PartInline, Data: data, MIMEType: mimeType}
}

// FilePart creates a Part that references previously uploaded or remote content.
func FilePart(uri, mimeType string) Part {
	return Part{Kind: PartFile, FileURI: uri, MIMEType: mimeType}
}

// Blob is binary data with its mime type.
type Blob struct {
	Data     []byte
	MIMEType string
}

// UploadState is the processing state of an uploaded blob.
type UploadState int

const (
	UploadUploading UploadState = iota
	UploadProcessing
	UploadReady
	UploadFailed
)

func (s UploadState) String() string {
	switch s {
	case UploadUploading:
		return "uploading"
	case UploadProcessing:
		return "processing"
	case UploadReady:
		return "ready"
	case UploadFailed:
		return "failed"
	default:
		return fmt.Sprintf("UploadState(%d)", int(s))
	}
}

// Terminal reports whether no further transitions are possible.
func (s UploadState) Terminal() bool {
	return s == UploadReady || s == UploadFailed
}

// UploadHandle tracks a blob uploaded to the backend.
type UploadHandle struct {
	Name     string
	URI      string
	MIMEType string
	State    UploadState
}

// Advance moves the handle to next. States only move forward and terminal
// states are final.
func (h *UploadHandle) Advance(next UploadState) error {
	if h.State.Terminal() && next != h.State {
		return fmt.Errorf("upload %s: cannot leave terminal state %s for %s", h.Name, h.State, next)
	}
	if next < h.State {
		return fmt.Errorf("upload %s: state regressed from %s to %s", h.Name, h.State, next)
	}
	h.State = next
	return nil
}

// JobStatus is the lifecycle state of a generation job.
type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Terminal reports whether the status is Done or Failed.
func (s JobStatus) Terminal() bool {
	return s == JobDone || s == JobFailed
}

// JobHandle is an opaque reference to a backend job. Native carries the
// backend's own operation value and must be passed back untouched.
type JobHandle struct {
	Name   string
	Native any
}

// JobPoll is the result of one status query.
type JobPoll struct {
	Handle  JobHandle
	Status  JobStatus
	Failure string // backend-reported failure detail when Status is JobFailed
}

// GenerationJob is one asynchronous generation request. Result is set if
// and only if Status is JobDone; Err is set if and only if Status is JobFailed.
type GenerationJob struct {
	ID          string
	Handle      JobHandle
	Status      JobStatus
	Result      *GeneratedArtifact
	Err         error
	Polls       int
	SubmittedAt time.Time
	CompletedAt time.Time
}

func (j *GenerationJob) complete(a *GeneratedArtifact) {
	j.Status = JobDone
	j.Result = a
	j.Err = nil
	j.CompletedAt = time.Now()
}

func (j *GenerationJob) fail(err error) {
	j.Status = JobFailed
	j.Result = nil
	j.Err = err
	j.CompletedAt = time.Now()
}

// GeneratedArtifact is the output of a generation call. Data is not
// modified after creation.
type GeneratedArtifact struct {
	Data     []byte
	MIMEType string
	Metadata map[string]string
	Path     string
}

// Save writes the artifact to path, creating parent directories, and
// records the path on the artifact.
func (a *GeneratedArtifact) Save(path string) (string, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	a.Path = path
	return path, nil
}

// AnalysisResult is the text produced by Analyze and the operations built on it.
type AnalysisResult struct {
	Text     string
	Model    string
	Duration time.Duration
}

// MediaResolution trades input fidelity for tokens.
type MediaResolution string

const (
	ResolutionLow    MediaResolution = "media_resolution_low"
	ResolutionMedium MediaResolution = "media_resolution_medium"
	ResolutionHigh   MediaResolution = "media_resolution_high"
)

// ThinkingLevel controls reasoning depth.
type ThinkingLevel string

const (
	ThinkingMinimal ThinkingLevel = "minimal"
	ThinkingLow     ThinkingLevel = "low"
	ThinkingHigh    ThinkingLevel = "high"
)

// TextRequest is a synchronous content-generation call returning text.
type TextRequest struct {
	Model           string
	Parts           []Part
	MediaResolution MediaResolution
	ThinkingLevel   ThinkingLevel
	JSONOutput      bool
}

// ImageBatchRequest targets the batch image-generation API.
type ImageBatchRequest struct {
	Model       string
	Prompt      string
	Count       int
	AspectRatio string
	ImageSize   string // empty when the model does not accept a size
}

// ImageInlineRequest targets content generation with image output.
type ImageInlineRequest struct {
	Model       string
	Parts       []Part
	AspectRatio string
	ImageSize   string // empty when the model does not accept a size
}

// VideoRequest submits an asynchronous video generation job.
type VideoRequest struct {
	Model       string
	Prompt      string
	AspectRatio string
	Resolution  string
	StartFrame  *Blob
	EndFrame    *Blob
}
