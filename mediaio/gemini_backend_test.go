package mediaio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestToGeminiContents(t *testing.T) {
	contents, err := toGeminiContents([]Part{
		InlinePart([]byte("img"), "image/png"),
		FilePart("https://files.example/abc", "video/mp4"),
		TextPart("describe"),
	})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	c := contents[0]
	assert.Equal(t, "user", c.Role)
	require.Len(t, c.Parts, 3)
	assert.Equal(t, []byte("img"), c.Parts[0].InlineData.Data)
	assert.Equal(t, "image/png", c.Parts[0].InlineData.MIMEType)
	assert.Equal(t, "https://files.example/abc", c.Parts[1].FileData.FileURI)
	assert.Equal(t, "describe", c.Parts[2].Text)
}

func TestToGeminiContentsErrors(t *testing.T) {
	_, err := toGeminiContents(nil)
	assert.Error(t, err)
	_, err = toGeminiContents([]Part{{Kind: "bogus"}})
	assert.Error(t, err)
}

func TestTextConfig(t *testing.T) {
	cfg := textConfig(TextRequest{
		MediaResolution: ResolutionMedium,
		ThinkingLevel:   ThinkingLow,
		JSONOutput:      true,
	})
	assert.Equal(t, genai.MediaResolution("MEDIA_RESOLUTION_MEDIUM"), cfg.MediaResolution)
	require.NotNil(t, cfg.ThinkingConfig)
	assert.Equal(t, genai.ThinkingLevel("LOW"), cfg.ThinkingConfig.ThinkingLevel)
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)

	bare := textConfig(TextRequest{})
	assert.Nil(t, bare.ThinkingConfig)
	assert.Empty(t, bare.ResponseMIMEType)
}

func TestUploadStateFromFile(t *testing.T) {
	assert.Equal(t, UploadReady, uploadStateFromFile(genai.FileStateActive))
	assert.Equal(t, UploadFailed, uploadStateFromFile(genai.FileStateFailed))
	assert.Equal(t, UploadProcessing, uploadStateFromFile(genai.FileStateProcessing))
	assert.Equal(t, UploadProcessing, uploadStateFromFile(genai.FileState("")))
}

func TestJobPollFromOperation(t *testing.T) {
	running := jobPollFromOperation(&genai.GenerateVideosOperation{Name: "operations/1"})
	assert.Equal(t, JobRunning, running.Status)
	assert.Equal(t, "operations/1", running.Handle.Name)

	done := jobPollFromOperation(&genai.GenerateVideosOperation{Name: "operations/1", Done: true})
	assert.Equal(t, JobDone, done.Status)

	failed := jobPollFromOperation(&genai.GenerateVideosOperation{
		Name:  "operations/1",
		Done:  true,
		Error: map[string]any{"code": 8, "message": "RESOURCE_EXHAUSTED limit: 0"},
	})
	assert.Equal(t, JobFailed, failed.Status)
	assert.Equal(t, "RESOURCE_EXHAUSTED limit: 0", failed.Failure)
}

func TestVideoOperationFromHandle(t *testing.T) {
	op := &genai.GenerateVideosOperation{Name: "operations/7"}
	assert.Same(t, op, videoOperation(JobHandle{Name: "operations/7", Native: op}))
	assert.Equal(t, "operations/9", videoOperation(JobHandle{Name: "operations/9"}).Name)
}

func TestFirstInlineImage(t *testing.T) {
	assert.Nil(t, firstInlineImage(nil))
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "here you go"},
				{InlineData: &genai.Blob{Data: []byte("png"), MIMEType: "image/png"}},
			}},
		}},
	}
	assert.Equal(t, &Blob{Data: []byte("png"), MIMEType: "image/png"}, firstInlineImage(resp))
	assert.Nil(t, firstInlineImage(&genai.GenerateContentResponse{}))
}

func TestGeminiImage(t *testing.T) {
	assert.Nil(t, geminiImage(nil))
	img := geminiImage(&Blob{Data: []byte("x"), MIMEType: "image/png"})
	assert.Equal(t, []byte("x"), img.ImageBytes)
	assert.Equal(t, "image/png", img.MIMEType)
}
