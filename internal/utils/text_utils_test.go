package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", TruncateRunes("short", 10))
	assert.Equal(t, "exact", TruncateRunes("exact", 5))
	assert.Equal(t, "abc"+TruncationMarker, TruncateRunes("abcdef", 3))
	assert.Equal(t, "anything", TruncateRunes("anything", 0))

	// multi-byte characters count once
	assert.Equal(t, "héé"+TruncationMarker, TruncateRunes("héééé", 3))
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "Senior Backend Engineer", CollapseWhitespace("  Senior \t Backend\n\nEngineer "))
	assert.Empty(t, CollapseWhitespace(" \n\t "))
}

func TestTextProcessor(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	invalid := "valid" + string([]byte{0xff, 0xfe}) + "text"
	assert.Equal(t, "validtext", tp.SanitizeUTF8(invalid))
	assert.Equal(t, "fine", tp.SanitizeUTF8("fine"))
}
