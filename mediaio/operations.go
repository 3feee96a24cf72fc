package mediaio

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNoBackend is returned when a Client is used without a backend.
var ErrNoBackend = errors.New("mediaio: no backend configured")

// AnalyzeOptions configures Analyze. Zero values take the client defaults.
type AnalyzeOptions struct {
	Model           string
	MediaResolution MediaResolution
	ThinkingLevel   ThinkingLevel
	JSONOutput      bool
}

// ImageOptions configures GenerateImage.
type ImageOptions struct {
	Model       string
	AspectRatio string // default "1:1"
	Size        string // default "1K"; sent only to models that accept it
	Count       int    // batch API only, clamped to [1, MaxBatchImages]
	Reference   *Source
}

// VideoOptions configures GenerateVideo.
type VideoOptions struct {
	Model       string
	Resolution  string // default "1080p"
	AspectRatio string // default "16:9"
	StartFrame  *Source
	EndFrame    *Source
}

// TranscribeOptions configures Transcribe.
type TranscribeOptions struct {
	Model      string
	Timestamps bool
	Speakers   bool
	Language   string
}

// DocumentFormat is a ConvertDocument target.
type DocumentFormat string

const (
	FormatMarkdown DocumentFormat = "markdown"
	FormatJSON     DocumentFormat = "json"
	FormatText     DocumentFormat = "text"
)

var formatInstructions = map[DocumentFormat]string{
	FormatMarkdown: "Convert to clean markdown, preserving structure and formatting.",
	FormatJSON:     "Extract content as structured JSON with sections, paragraphs, and metadata.",
	FormatText:     "Extract plain text content, maintaining logical reading order.",
}

// FormatInstruction returns the instruction for format; unknown formats
// use the markdown instruction.
func FormatInstruction(format DocumentFormat) string {
	if s, ok := formatInstructions[format]; ok {
		return s
	}
	return formatInstructions[FormatMarkdown]
}

// TranscriptionPrompt builds the transcription instruction.
func TranscriptionPrompt(audio bool, opts TranscribeOptions) string {
	var parts []string
	if opts.Timestamps {
		parts = append(parts, "with timestamps in [HH:MM:SS] format")
	}
	if opts.Speakers {
		parts = append(parts, "identifying different speakers")
	}
	if opts.Language != "" {
		parts = append(parts, "in "+opts.Language)
	}
	kind := "video"
	if audio {
		kind = "audio"
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Transcribe this %s.", kind)
	}
	return fmt.Sprintf("Transcribe this %s %s.", kind, strings.Join(parts, ", "))
}

func (c *Client) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	ctx, span := c.tracer.Start(ctx, "mediaio."+name, trace.WithAttributes(attrs...))
	return ctx, span, time.Now()
}

func (c *Client) endSpan(span trace.Span, name string, start time.Time, err error) {
	c.metrics.observeOp(name, start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if kind := KindOf(err); kind != "" {
			span.SetAttributes(attribute.String("mediaio.error_kind", string(kind)))
		}
		c.metrics.classified(err)
	}
	span.End()
}

// Analyze resolves src, selects a transport and asks the text generator to
// follow prompt against the media.
func (c *Client) Analyze(ctx context.Context, src Source, prompt string, opts AnalyzeOptions) (res *AnalysisResult, err error) {
	model := CanonicalModel(firstNonEmpty(opts.Model, c.models.Analyze))
	ctx, span, start := c.startSpan(ctx, "Analyze",
		attribute.String("mediaio.model", model),
		attribute.String("mediaio.source", src.String()))
	defer func() { c.endSpan(span, "analyze", start, err) }()

	if c.text == nil {
		return nil, ErrNoBackend
	}

	payload, err := Resolve(src)
	if err != nil {
		return nil, err
	}
	part, err := c.transport.Prepare(ctx, payload)
	if err != nil {
		return nil, err
	}

	req := TextRequest{
		Model:           model,
		Parts:           []Part{part, TextPart(prompt)},
		MediaResolution: firstNonEmpty(opts.MediaResolution, c.resolution),
		ThinkingLevel:   firstNonEmpty(opts.ThinkingLevel, c.thinking),
		JSONOutput:      opts.JSONOutput,
	}
	c.logger.Debug("analyze",
		zap.String("model", model),
		zap.String("part", string(part.Kind)),
		zap.Bool("json", opts.JSONOutput))

	text, err := c.text.GenerateText(ctx, req)
	if err != nil {
		return nil, Classify(fmt.Sprintf("Analysis (%s)", model), err)
	}
	return &AnalysisResult{Text: text, Model: model, Duration: time.Since(start)}, nil
}

// GenerateImage creates one image from prompt. The model's capabilities
// choose between the batch API and inline content generation.
func (c *Client) GenerateImage(ctx context.Context, prompt string, opts ImageOptions) (art *GeneratedArtifact, err error) {
	model := CanonicalModel(firstNonEmpty(opts.Model, c.models.Image))
	ratio := firstNonEmpty(opts.AspectRatio, "1:1")
	size := firstNonEmpty(opts.Size, "1K")
	caps := ImageCapabilities(model)

	ctx, span, start := c.startSpan(ctx, "GenerateImage",
		attribute.String("mediaio.model", model),
		attribute.String("mediaio.image_api", string(caps.ImageAPI)))
	defer func() { c.endSpan(span, "generate_image", start, err) }()

	if c.backend == nil {
		return nil, ErrNoBackend
	}
	if caps.ImageAPI == ImageAPIBatch {
		return c.generateImageBatch(ctx, prompt, model, ratio, size, opts.Count, caps)
	}
	return c.generateImageInline(ctx, prompt, model, ratio, size, opts.Reference, caps)
}

func (c *Client) generateImageBatch(ctx context.Context, prompt, model, ratio, size string, count int, caps ModelInfo) (*GeneratedArtifact, error) {
	op := fmt.Sprintf("Image generation (%s)", model)
	req := ImageBatchRequest{
		Model:       model,
		Prompt:      prompt,
		Count:       clampCount(count, caps.MaxImages),
		AspectRatio: ratio,
	}
	if caps.SupportsImageSize {
		req.ImageSize = size
	}

	images, err := c.backend.GenerateImagesBatch(ctx, req)
	if err != nil {
		return nil, Classify(op, err)
	}
	if len(images) == 0 || len(images[0].Data) == 0 {
		return nil, noArtifact(op)
	}
	return &GeneratedArtifact{
		Data:     images[0].Data,
		MIMEType: firstNonEmpty(images[0].MIMEType, "image/png"),
		Metadata: map[string]string{
			"model": model,
			"ratio": ratio,
			"count": strconv.Itoa(len(images)),
		},
	}, nil
}

func (c *Client) generateImageInline(ctx context.Context, prompt, model, ratio, size string, ref *Source, caps ModelInfo) (*GeneratedArtifact, error) {
	op := fmt.Sprintf("Image generation (%s)", model)
	var parts []Part
	if ref != nil {
		payload, err := Resolve(*ref)
		if err != nil {
			return nil, err
		}
		if payload.Kind != PayloadBytes {
			return nil, fmt.Errorf("reference image must be image bytes, got %s", payload.Kind)
		}
		part, err := c.transport.Prepare(ctx, payload)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	parts = append(parts, TextPart(prompt))

	req := ImageInlineRequest{Model: model, Parts: parts, AspectRatio: ratio}
	if caps.SupportsImageSize {
		req.ImageSize = size
	}

	blob, err := c.backend.GenerateImageInline(ctx, req)
	if err != nil {
		return nil, Classify(op, err)
	}
	if blob == nil || len(blob.Data) == 0 {
		return nil, noArtifact(op)
	}
	return &GeneratedArtifact{
		Data:     blob.Data,
		MIMEType: firstNonEmpty(blob.MIMEType, "image/png"),
		Metadata: map[string]string{"model": model, "ratio": ratio},
	}, nil
}

// GenerateVideo submits an asynchronous video job, optionally interpolating
// between start and end frames, and waits for the result.
func (c *Client) GenerateVideo(ctx context.Context, prompt string, opts VideoOptions) (art *GeneratedArtifact, err error) {
	model := CanonicalModel(firstNonEmpty(opts.Model, c.models.Video))
	resolution := firstNonEmpty(opts.Resolution, "1080p")
	ratio := firstNonEmpty(opts.AspectRatio, "16:9")
	op := fmt.Sprintf("Video generation (%s)", model)

	ctx, span, start := c.startSpan(ctx, "GenerateVideo",
		attribute.String("mediaio.model", model),
		attribute.String("mediaio.resolution", resolution))
	defer func() { c.endSpan(span, "generate_video", start, err) }()

	if c.backend == nil {
		return nil, ErrNoBackend
	}

	req := VideoRequest{Model: model, Prompt: prompt, AspectRatio: ratio, Resolution: resolution}
	var g errgroup.Group
	g.Go(func() (err error) {
		req.StartFrame, err = resolveFrame(opts.StartFrame)
		return err
	})
	g.Go(func() (err error) {
		req.EndFrame, err = resolveFrame(opts.EndFrame)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	job, err := c.orchestrator.Run(ctx, op, func(ctx context.Context) (JobHandle, error) {
		return c.backend.SubmitVideoJob(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	artifact := job.Result
	artifact.MIMEType = firstNonEmpty(artifact.MIMEType, "video/mp4")
	artifact.Metadata["model"] = model
	artifact.Metadata["resolution"] = resolution
	artifact.Metadata["ratio"] = ratio
	artifact.Metadata["job_id"] = job.ID
	return artifact, nil
}

func resolveFrame(src *Source) (*Blob, error) {
	if src == nil {
		return nil, nil
	}
	payload, err := Resolve(*src)
	if err != nil {
		return nil, err
	}
	if payload.Kind != PayloadBytes {
		return nil, fmt.Errorf("video frame must be image bytes, got %s", payload.Kind)
	}
	return &Blob{Data: payload.Data, MIMEType: payload.MIMEType}, nil
}

// Transcribe asks for a transcript of an audio or video source.
func (c *Client) Transcribe(ctx context.Context, src Source, opts TranscribeOptions) (*AnalysisResult, error) {
	prompt := TranscriptionPrompt(IsAudioSource(src), opts)
	return c.Analyze(ctx, src, prompt, AnalyzeOptions{
		Model: firstNonEmpty(opts.Model, c.models.Transcribe),
	})
}

// ConvertDocument converts a document to markdown, json or plain text.
// JSON output is requested from the backend only for the json format.
func (c *Client) ConvertDocument(ctx context.Context, src Source, format DocumentFormat, model string) (*AnalysisResult, error) {
	return c.Analyze(ctx, src, FormatInstruction(format), AnalyzeOptions{
		Model:      model,
		JSONOutput: format == FormatJSON,
	})
}

func clampCount(n, max int) int {
	if max <= 0 {
		max = MaxBatchImages
	}
	if n < 1 {
		return 1
	}
	if n > max {
		return max
	}
	return n
}

func firstNonEmpty[T ~string](vals ...T) T {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
