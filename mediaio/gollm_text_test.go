package mediaio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposePrompt(t *testing.T) {
	prompt, system, err := composePrompt(TextRequest{
		Parts: []Part{
			InlinePart([]byte("line one\nline two"), "text/plain; charset=utf-8"),
			TextPart("Summarize"),
		},
	})
	require.NoError(t, err)
	assert.Empty(t, system)
	assert.Contains(t, prompt, "line one\nline two")
	assert.True(t, strings.HasSuffix(prompt, "Summarize"), "instruction should come last: %q", prompt)
}

func TestComposePromptJSON(t *testing.T) {
	_, system, err := composePrompt(TextRequest{
		Parts:      []Part{InlinePart([]byte(`{"a":1}`), "application/json"), TextPart("Extract")},
		JSONOutput: true,
	})
	require.NoError(t, err)
	assert.Equal(t, jsonSystemPrompt, system)
}

func TestComposePromptRejectsBinary(t *testing.T) {
	tests := []Part{
		InlinePart([]byte{0xFF, 0xD8}, "image/jpeg"),
		FilePart("https://files.example/abc", "video/mp4"),
		{Kind: "mystery"},
	}
	for _, p := range tests {
		_, _, err := composePrompt(TextRequest{Parts: []Part{p, TextPart("x")}})
		assert.Error(t, err, "%s part %s", p.Kind, p.MIMEType)
	}
}

func TestComposePromptEmpty(t *testing.T) {
	_, _, err := composePrompt(TextRequest{Parts: []Part{TextPart("")}})
	assert.Error(t, err)
}

func TestIsTextualMIME(t *testing.T) {
	for m, want := range map[string]bool{
		"text/plain":               true,
		"text/markdown":            true,
		"Application/JSON":         true,
		"application/yaml":         true,
		"application/pdf":          false,
		"image/png":                false,
		OctetStream:                false,
		"text/csv; charset=latin1": true,
	} {
		assert.Equal(t, want, isTextualMIME(m), m)
	}
}
