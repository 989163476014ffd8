package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	ChannelID string `json:"channelId"`
	Size      int64  `json:"size"`
	Nested    []item `json:"items"`
}

type item struct {
	Name string `json:"name"`
}

func TestPayloadDecodesJSONShapes(t *testing.T) {
	p, err := Payload[samplePayload](map[string]any{
		"channelId": "c1",
		"size":      float64(42), // JSON numbers arrive as float64
		"items":     []any{map[string]any{"name": "a.png"}},
		"ignored":   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", p.ChannelID)
	assert.Equal(t, int64(42), p.Size)
	require.Len(t, p.Nested, 1)
	assert.Equal(t, "a.png", p.Nested[0].Name)
}

func TestPayloadNilMap(t *testing.T) {
	p, err := Payload[samplePayload](nil)
	require.NoError(t, err)
	assert.Empty(t, p.ChannelID)
}

func TestPayloadRejectsWrongShape(t *testing.T) {
	_, err := Payload[samplePayload](map[string]any{
		"items": "not a list",
	}, Options{WeaklyTypedInput: false})
	assert.Error(t, err)
}
