package service

import (
	"encoding/json"
	"fmt"
)

// codecName matches the Content-Type suffix of Connect JSON requests, so this
// codec replaces the built-in protobuf JSON codec.
const codecName = "json"

// jsonCodec marshals plain Go structs. The API has no generated protobuf
// messages, so the default codecs cannot be used.
type jsonCodec struct{}

func (jsonCodec) Name() string { return codecName }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", msg, err)
	}
	return b, nil
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("failed to unmarshal %T: %w", msg, err)
	}
	return nil
}
