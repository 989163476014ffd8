package chat

import (
	"encoding/json"
	"errors"
	"testing"

	"Connectify/tools/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrame(t *testing.T) {
	f, err := ParseFrame([]byte(`{"event":"send-message","data":{"channelId":"c1","content":"hi"}}`))
	require.NoError(t, err)
	assert.Equal(t, EvSendMessage, f.Event)
	assert.Equal(t, "c1", f.Data["channelId"])

	_, err = ParseFrame([]byte(`{"data":{}}`))
	assert.Error(t, err)

	_, err = ParseFrame([]byte(`not json`))
	assert.Error(t, err)
}

func TestEncodeFrameRoundTrip(t *testing.T) {
	raw := EncodeFrame(EvNewMessage, map[string]any{"id": "m1"})
	require.NotNil(t, raw)

	var got struct {
		Event string         `json:"event"`
		Data  map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, EvNewMessage, got.Event)
	assert.Equal(t, "m1", got.Data["id"])
}

func TestErrorFrameKeepsClientMessages(t *testing.T) {
	raw := errorFrame(errs.Validation("channelId is required"))
	var got struct {
		Event string            `json:"event"`
		Data  map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, EvError, got.Event)
	assert.Equal(t, "channelId is required", got.Data["message"])
}

func TestErrorFrameHidesInternalDetail(t *testing.T) {
	for _, err := range []error{
		errs.WrapStore(errors.New("mongo: socket closed"), "insert message"),
		errors.New("plain failure"),
	} {
		raw := errorFrame(err)
		var got struct {
			Data map[string]string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "Server error", got.Data["message"])
	}
}
