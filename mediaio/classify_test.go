package mediaio

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want ErrorKind
	}{
		{"zero limit", "429 RESOURCE_EXHAUSTED: Quota exceeded for metric generate_requests, limit: 0", KindQuotaExhausted},
		{"free tier marker", "RESOURCE_EXHAUSTED quota generativelanguage.googleapis.com/free_tier_requests", KindQuotaExhausted},
		{"free tier uppercase", "RESOURCE_EXHAUSTED FREE_TIER exceeded", KindQuotaExhausted},
		{"rate limit", "RESOURCE_EXHAUSTED: too many requests, limit: 60", KindTransient},
		{"billing", "Imagen API is only accessible to billed users at this time.", KindBillingRequired},
		{"payment", "Payment method required", KindBillingRequired},
		{"permission denied", "PERMISSION_DENIED: Permission denied on resource", KindBillingRequired},
		{"not authorized", "caller is not authorized", KindBillingRequired},
		{"unavailable", "503 UNAVAILABLE: model overloaded", KindTransient},
		{"deadline", "DEADLINE_EXCEEDED", KindTransient},
		{"unknown", "invalid argument: prompt is empty", KindUnknown},
		{"empty", "", KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyMessage(tt.msg))
		})
	}
}

func TestQuotaRequiresResourceExhausted(t *testing.T) {
	assert.False(t, IsQuotaExhaustedMessage("limit: 0"))
	assert.False(t, IsQuotaExhaustedMessage("free_tier"))
	assert.True(t, IsQuotaExhaustedMessage("RESOURCE_EXHAUSTED limit: 0"))
}

func TestClassifyQuotaAddsRemediation(t *testing.T) {
	cause := errors.New("Error 429, RESOURCE_EXHAUSTED, limit: 0")
	err := Classify("Image generation (imagen-4.0-generate-001)", cause)

	var ce *ClassifiedError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindQuotaExhausted, ce.Kind)
	assert.Contains(t, ce.Error(), "Image generation (imagen-4.0-generate-001) failed.")
	assert.Contains(t, ce.Error(), "[FREE TIER LIMITATION]")
	assert.Contains(t, ce.Error(), "Don't retry")
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsTerminal(err))
	assert.False(t, IsTransient(err))
}

func TestClassifyBillingAddsRemediation(t *testing.T) {
	err := Classify("Video generation (veo-3.1-generate-preview)", errors.New("billing account not enabled"))
	assert.Equal(t, KindBillingRequired, KindOf(err))
	assert.Contains(t, err.Error(), "[BILLING REQUIRED]")
	assert.Contains(t, err.Error(), "https://aistudio.google.com/apikey")
	assert.True(t, IsTerminal(err))
}

func TestClassifyKeepsOtherMessagesVerbatim(t *testing.T) {
	err := Classify("Analysis", errors.New("503 UNAVAILABLE"))
	assert.Equal(t, KindTransient, KindOf(err))
	assert.Equal(t, "503 UNAVAILABLE", err.Error())
	assert.True(t, IsTransient(err))
	assert.False(t, IsTerminal(err))

	err = Classify("Analysis", errors.New("bad request"))
	assert.Equal(t, KindUnknown, KindOf(err))
	assert.Equal(t, "bad request", err.Error())
}

func TestClassifyIsIdempotent(t *testing.T) {
	once := Classify("Upload", errors.New("RESOURCE_EXHAUSTED limit: 0"))
	twice := Classify("Video generation (veo)", once)
	assert.Same(t, once, twice)

	wrapped := fmt.Errorf("outer: %w", once)
	assert.Same(t, wrapped, Classify("other", wrapped))
}

func TestClassifyNil(t *testing.T) {
	assert.NoError(t, Classify("op", nil))
}

func TestClassifiedErrorIs(t *testing.T) {
	err := noArtifact("Image generation (m)")
	assert.ErrorIs(t, err, &ClassifiedError{Kind: KindNoArtifactProduced})
	assert.ErrorIs(t, err, &ClassifiedError{Kind: KindNoArtifactProduced, Op: "Image generation (m)"})
	assert.NotErrorIs(t, err, &ClassifiedError{Kind: KindNoArtifactProduced, Op: "other"})
	assert.NotErrorIs(t, err, &ClassifiedError{Kind: KindTimeout})
	assert.ErrorIs(t, err, ErrNoArtifact)
}

func TestKindOfUnclassified(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
	assert.False(t, IsTerminal(errors.New("plain")))
}
