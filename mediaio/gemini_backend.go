package mediaio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiBackend implements MediaBackend on the Gemini API.
type GeminiBackend struct {
	client *genai.Client
	logger *zap.Logger
}

// GeminiOption configures a GeminiBackend.
type GeminiOption func(*geminiConfig)

type geminiConfig struct {
	baseURL string
	logger  *zap.Logger
}

// WithGeminiBaseURL routes requests through a proxy or test server.
func WithGeminiBaseURL(url string) GeminiOption {
	return func(c *geminiConfig) { c.baseURL = url }
}

// WithGeminiLogger sets the backend logger.
func WithGeminiLogger(l *zap.Logger) GeminiOption {
	return func(c *geminiConfig) { c.logger = l }
}

// NewGeminiBackend creates a backend authenticated with apiKey.
func NewGeminiBackend(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiBackend, error) {
	cfg := &geminiConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}
	config := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.baseURL != "" {
		config.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.baseURL}
	}
	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiBackend{
		client: client,
		logger: cfg.logger.With(zap.String("component", "gemini")),
	}, nil
}

// UploadBlob implements Uploader.
func (g *GeminiBackend) UploadBlob(ctx context.Context, r io.Reader, size int64, mimeType string) (*UploadHandle, error) {
	f, err := g.client.Files.Upload(ctx, r, &genai.UploadFileConfig{MIMEType: mimeType})
	if err != nil {
		return nil, err
	}
	g.logger.Debug("file uploaded",
		zap.String("name", f.Name),
		zap.Int64("size", size),
		zap.String("state", string(f.State)))
	return &UploadHandle{
		Name:     f.Name,
		URI:      f.URI,
		MIMEType: firstNonEmpty(f.MIMEType, mimeType),
		State:    uploadStateFromFile(f.State),
	}, nil
}

// UploadStatus implements Uploader.
func (g *GeminiBackend) UploadStatus(ctx context.Context, h UploadHandle) (UploadState, error) {
	f, err := g.client.Files.Get(ctx, h.Name, nil)
	if err != nil {
		return h.State, err
	}
	return uploadStateFromFile(f.State), nil
}

func uploadStateFromFile(s genai.FileState) UploadState {
	switch s {
	case genai.FileStateActive:
		return UploadReady
	case genai.FileStateFailed:
		return UploadFailed
	default:
		return UploadProcessing
	}
}

// GenerateText implements TextGenerator.
func (g *GeminiBackend) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	contents, err := toGeminiContents(req.Parts)
	if err != nil {
		return "", err
	}
	resp, err := g.client.Models.GenerateContent(ctx, req.Model, contents, textConfig(req))
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func textConfig(req TextRequest) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if req.MediaResolution != "" {
		config.MediaResolution = genai.MediaResolution(strings.ToUpper(string(req.MediaResolution)))
	}
	if req.ThinkingLevel != "" {
		config.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingLevel: genai.ThinkingLevel(strings.ToUpper(string(req.ThinkingLevel))),
		}
	}
	if req.JSONOutput {
		config.ResponseMIMEType = "application/json"
	}
	return config
}

// GenerateImagesBatch implements ImageGenerator.
func (g *GeminiBackend) GenerateImagesBatch(ctx context.Context, req ImageBatchRequest) ([]Blob, error) {
	config := &genai.GenerateImagesConfig{
		NumberOfImages: int32(req.Count),
		AspectRatio:    req.AspectRatio,
		ImageSize:      req.ImageSize,
	}
	resp, err := g.client.Models.GenerateImages(ctx, req.Model, req.Prompt, config)
	if err != nil {
		return nil, err
	}
	var out []Blob
	for _, gi := range resp.GeneratedImages {
		if gi == nil || gi.Image == nil || len(gi.Image.ImageBytes) == 0 {
			continue
		}
		out = append(out, Blob{Data: gi.Image.ImageBytes, MIMEType: gi.Image.MIMEType})
	}
	return out, nil
}

// GenerateImageInline implements ImageGenerator.
func (g *GeminiBackend) GenerateImageInline(ctx context.Context, req ImageInlineRequest) (*Blob, error) {
	contents, err := toGeminiContents(req.Parts)
	if err != nil {
		return nil, err
	}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
		ImageConfig:        &genai.ImageConfig{AspectRatio: req.AspectRatio, ImageSize: req.ImageSize},
	}
	resp, err := g.client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return nil, err
	}
	return firstInlineImage(resp), nil
}

func firstInlineImage(resp *genai.GenerateContentResponse) *Blob {
	if resp == nil {
		return nil
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if p != nil && p.InlineData != nil && len(p.InlineData.Data) > 0 {
				return &Blob{Data: p.InlineData.Data, MIMEType: p.InlineData.MIMEType}
			}
		}
	}
	return nil
}

// SubmitVideoJob implements VideoGenerator.
func (g *GeminiBackend) SubmitVideoJob(ctx context.Context, req VideoRequest) (JobHandle, error) {
	config := &genai.GenerateVideosConfig{
		AspectRatio: req.AspectRatio,
		Resolution:  req.Resolution,
	}
	if req.EndFrame != nil {
		config.LastFrame = geminiImage(req.EndFrame)
	}
	op, err := g.client.Models.GenerateVideos(ctx, req.Model, req.Prompt, geminiImage(req.StartFrame), config)
	if err != nil {
		return JobHandle{}, err
	}
	return JobHandle{Name: op.Name, Native: op}, nil
}

// PollJob implements VideoGenerator.
func (g *GeminiBackend) PollJob(ctx context.Context, h JobHandle) (JobPoll, error) {
	op, err := g.client.Operations.GetVideosOperation(ctx, videoOperation(h), nil)
	if err != nil {
		return JobPoll{}, err
	}
	return jobPollFromOperation(op), nil
}

// FetchJobArtifact implements VideoGenerator.
func (g *GeminiBackend) FetchJobArtifact(ctx context.Context, h JobHandle) (*Blob, error) {
	op := videoOperation(h)
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 {
		return nil, nil
	}
	video := op.Response.GeneratedVideos[0].Video
	if video == nil {
		return nil, nil
	}
	mime := firstNonEmpty(video.MIMEType, "video/mp4")
	if len(video.VideoBytes) > 0 {
		return &Blob{Data: video.VideoBytes, MIMEType: mime}, nil
	}
	if video.URI == "" {
		return nil, nil
	}
	data, err := g.client.Files.Download(ctx, genai.NewDownloadURIFromVideo(video), nil)
	if err != nil {
		return nil, err
	}
	return &Blob{Data: data, MIMEType: mime}, nil
}

func videoOperation(h JobHandle) *genai.GenerateVideosOperation {
	if op, ok := h.Native.(*genai.GenerateVideosOperation); ok && op != nil {
		return op
	}
	return &genai.GenerateVideosOperation{Name: h.Name}
}

func jobPollFromOperation(op *genai.GenerateVideosOperation) JobPoll {
	res := JobPoll{Handle: JobHandle{Name: op.Name, Native: op}}
	switch {
	case op.Error != nil:
		res.Status = JobFailed
		res.Failure = operationFailure(op.Error)
	case op.Done:
		res.Status = JobDone
	default:
		res.Status = JobRunning
	}
	return res
}

func operationFailure(e map[string]any) string {
	if msg, ok := e["message"].(string); ok && msg != "" {
		return msg
	}
	return fmt.Sprint(e)
}

func geminiImage(b *Blob) *genai.Image {
	if b == nil {
		return nil
	}
	return &genai.Image{ImageBytes: b.Data, MIMEType: b.MIMEType}
}

func toGeminiContents(parts []Part) ([]*genai.Content, error) {
	content := &genai.Content{Role: "user"}
	for i, p := range parts {
		switch p.Kind {
		case PartText:
			content.Parts = append(content.Parts, &genai.Part{Text: p.Text})
		case PartInline:
			content.Parts = append(content.Parts, &genai.Part{
				InlineData: &genai.Blob{Data: p.Data, MIMEType: p.MIMEType},
			})
		case PartFile:
			content.Parts = append(content.Parts, &genai.Part{
				FileData: &genai.FileData{FileURI: p.FileURI, MIMEType: p.MIMEType},
			})
		default:
			return nil, fmt.Errorf("part %d: unknown part kind %q", i, p.Kind)
		}
	}
	if len(content.Parts) == 0 {
		return nil, errors.New("request has no content parts")
	}
	return []*genai.Content{content}, nil
}
