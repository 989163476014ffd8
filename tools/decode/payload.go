package decode

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// Options controls Decode behavior.
type Options struct {
	// Lenient coercion ("123" -> int, 1.0 -> int64). Defaults to true,
	// which is what JSON-over-websocket payloads need: every number
	// arrives as float64.
	WeaklyTypedInput bool
}

func DefaultOptions() Options {
	return Options{WeaklyTypedInput: true}
}

// Payload decodes a dynamic event payload (map[string]any straight out of
// a JSON frame) into a typed struct T. Field names follow the `json` tag.
// Unknown fields are ignored; type mismatches fail, so a malformed frame
// is rejected before it reaches any handler logic.
func Payload[T any](m map[string]any, opts ...Options) (*T, error) {
	if m == nil {
		m = map[string]any{}
	}

	cfg := DefaultOptions()
	if len(opts) > 0 {
		cfg = opts[0]
	}

	var out T
	decCfg := &mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &out,
		WeaklyTypedInput: cfg.WeaklyTypedInput,
		DecodeHook:       floatToIntHook(),
	}

	dec, err := mapstructure.NewDecoder(decCfg)
	if err != nil {
		return nil, fmt.Errorf("new decoder: %w", err)
	}
	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &out, nil
}

// floatToIntHook converts float64 (the only JSON number type) to the
// integer kinds used by payload structs.
func floatToIntHook() mapstructure.DecodeHookFunc {
	return func(from, to reflect.Kind, data any) (any, error) {
		if from != reflect.Float64 {
			return data, nil
		}
		switch to {
		case reflect.Int:
			return int(data.(float64)), nil
		case reflect.Int32:
			return int32(data.(float64)), nil
		case reflect.Int64:
			return int64(data.(float64)), nil
		}
		return data, nil
	}
}
