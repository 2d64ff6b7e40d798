package vm

import (
	"fmt"
	"reflect"

	"github.com/ugorji/go/codec"
)

// stateHandle encodes contract state records as canonical msgpack
var stateHandle = newStateHandle()

func newStateHandle() *codec.MsgpackHandle {
	h := &codec.MsgpackHandle{}
	h.WriteExt = true
	h.RawToString = true
	h.Canonical = true
	h.MapType = reflect.TypeOf(map[string]any(nil))
	return h
}

func encodeState(v any) ([]byte, error) {
	var buf []byte
	if err := codec.NewEncoderBytes(&buf, stateHandle).Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return buf, nil
}

func decodeState(data []byte, v any) error {
	if err := codec.NewDecoderBytes(data, stateHandle).Decode(v); err != nil {
		return fmt.Errorf("failed to decode state: %w", err)
	}
	return nil
}
