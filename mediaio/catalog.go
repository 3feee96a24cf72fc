package mediaio

import "strings"

// Task identifies what a model is used for.
type Task string

const (
	TaskAnalyze Task = "analyze"
	TaskImage   Task = "image"
	TaskVideo   Task = "video"
)

// ImageAPI selects which image-generation call a model accepts.
type ImageAPI string

const (
	ImageAPINone   ImageAPI = ""
	ImageAPIBatch  ImageAPI = "batch"  // N images per call, no reference image
	ImageAPIInline ImageAPI = "inline" // content generation with image output
)

// MaxBatchImages is the largest image count the batch API accepts.
const MaxBatchImages = 4

// ModelInfo describes a known model and the options it accepts.
type ModelInfo struct {
	ID                string   `json:"id"`
	DisplayName       string   `json:"display_name"`
	Task              Task     `json:"task"`
	ImageAPI          ImageAPI `json:"image_api,omitempty"`
	SupportsImageSize bool     `json:"supports_image_size"`
	SupportsReference bool     `json:"supports_reference"`
	MaxImages         int      `json:"max_images,omitempty"`
	Aliases           []string `json:"aliases,omitempty"`
}

// Default models per operation.
const (
	DefaultAnalyzeModel    = "gemini-3-flash-preview"
	DefaultTranscribeModel = "gemini-3-flash-preview"
	DefaultImageModel      = "gemini-2.5-flash-image"
	DefaultVideoModel      = "veo-3.1-generate-preview"
)

// Models is the built-in capability table.
var Models = []ModelInfo{
	// Analysis
	{ID: "gemini-3-flash-preview", DisplayName: "Gemini 3 Flash (Preview)", Task: TaskAnalyze,
		Aliases: []string{"gemini-flash", "gemini-3-flash"}},
	{ID: "gemini-3-pro-preview", DisplayName: "Gemini 3 Pro (Preview)", Task: TaskAnalyze,
		Aliases: []string{"gemini-pro", "gemini-3-pro"}},

	// Batch image generation
	{ID: "imagen-4.0-generate-001", DisplayName: "Imagen 4", Task: TaskImage,
		ImageAPI: ImageAPIBatch, SupportsImageSize: true, MaxImages: MaxBatchImages,
		Aliases: []string{"imagen-4", "imagen"}},
	{ID: "imagen-4.0-ultra-generate-001", DisplayName: "Imagen 4 Ultra", Task: TaskImage,
		ImageAPI: ImageAPIBatch, SupportsImageSize: true, MaxImages: MaxBatchImages,
		Aliases: []string{"imagen-4-ultra"}},
	{ID: "imagen-4.0-fast-generate-001", DisplayName: "Imagen 4 Fast", Task: TaskImage,
		ImageAPI: ImageAPIBatch, SupportsImageSize: false, MaxImages: MaxBatchImages,
		Aliases: []string{"imagen-4-fast"}},

	// Inline image generation
	{ID: "gemini-2.5-flash-image", DisplayName: "Gemini 2.5 Flash Image", Task: TaskImage,
		ImageAPI: ImageAPIInline, SupportsImageSize: false, SupportsReference: true, MaxImages: 1,
		Aliases: []string{"nano-banana"}},
	{ID: "gemini-3-pro-image-preview", DisplayName: "Gemini 3 Pro Image (Preview)", Task: TaskImage,
		ImageAPI: ImageAPIInline, SupportsImageSize: true, SupportsReference: true, MaxImages: 1,
		Aliases: []string{"nano-banana-pro"}},

	// Video generation
	{ID: "veo-3.1-generate-preview", DisplayName: "Veo 3.1 (Preview)", Task: TaskVideo,
		Aliases: []string{"veo", "veo-3.1"}},
	{ID: "veo-3.1-fast-generate-preview", DisplayName: "Veo 3.1 Fast (Preview)", Task: TaskVideo,
		Aliases: []string{"veo-fast"}},
}

// GetModelInfo returns the catalog entry for a model id or alias, or nil.
func GetModelInfo(modelID string) *ModelInfo {
	for i := range Models {
		if Models[i].ID == modelID {
			return &Models[i]
		}
		for _, alias := range Models[i].Aliases {
			if alias == modelID {
				return &Models[i]
			}
		}
	}
	return nil
}

// ListModels returns all known models, optionally filtered by task.
func ListModels(task Task) []ModelInfo {
	if task == "" {
		result := make([]ModelInfo, len(Models))
		copy(result, Models)
		return result
	}
	var result []ModelInfo
	for _, m := range Models {
		if m.Task == task {
			result = append(result, m)
		}
	}
	return result
}

// ImageCapabilities returns the image options accepted by model. Catalog
// entries win; unlisted ids fall back to the naming convention of the
// service: "imagen-" ids use the batch API and accept a size unless they
// are a fast variant, other ids use inline generation and accept a size
// only for pro variants.
func ImageCapabilities(model string) ModelInfo {
	if info := GetModelInfo(model); info != nil && info.ImageAPI != ImageAPINone {
		return *info
	}
	return inferImageCapabilities(model)
}

func inferImageCapabilities(model string) ModelInfo {
	lower := strings.ToLower(model)
	if strings.HasPrefix(model, "imagen-") {
		return ModelInfo{
			ID: model, Task: TaskImage, ImageAPI: ImageAPIBatch,
			SupportsImageSize: !strings.Contains(lower, "fast"),
			MaxImages:         MaxBatchImages,
		}
	}
	return ModelInfo{
		ID: model, Task: TaskImage, ImageAPI: ImageAPIInline,
		SupportsImageSize: strings.Contains(lower, "pro"),
		SupportsReference: true,
		MaxImages:         1,
	}
}

// CanonicalModel resolves an alias to its catalog id. Unknown ids are
// returned unchanged.
func CanonicalModel(model string) string {
	if info := GetModelInfo(model); info != nil {
		return info.ID
	}
	return model
}
