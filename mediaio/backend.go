package mediaio

import (
	"context"
	"io"
)

// Uploader stores large blobs out of band so requests can reference them.
type Uploader interface {
	// UploadBlob uploads size bytes read from r and returns a handle whose
	// state is at least UploadUploading.
	UploadBlob(ctx context.Context, r io.Reader, size int64, mimeType string) (*UploadHandle, error)

	// UploadStatus returns the current processing state of an upload.
	UploadStatus(ctx context.Context, handle UploadHandle) (UploadState, error)
}

// TextGenerator performs a synchronous call that returns text.
type TextGenerator interface {
	GenerateText(ctx context.Context, req TextRequest) (string, error)
}

// ImageGenerator produces images synchronously. A nil blob (inline) or an
// empty slice (batch) with a nil error means the backend returned no image.
type ImageGenerator interface {
	GenerateImagesBatch(ctx context.Context, req ImageBatchRequest) ([]Blob, error)
	GenerateImageInline(ctx context.Context, req ImageInlineRequest) (*Blob, error)
}

// VideoGenerator drives asynchronous video jobs.
type VideoGenerator interface {
	SubmitVideoJob(ctx context.Context, req VideoRequest) (JobHandle, error)
	PollJob(ctx context.Context, handle JobHandle) (JobPoll, error)
	FetchJobArtifact(ctx context.Context, handle JobHandle) (*Blob, error)
}

// MediaBackend is the full capability set consumed by Client.
type MediaBackend interface {
	Uploader
	TextGenerator
	ImageGenerator
	VideoGenerator
}

// Closer is implemented by backends that hold resources.
type Closer interface {
	Close() error
}
