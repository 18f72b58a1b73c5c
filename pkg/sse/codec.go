package sse

import (
	"encoding/json"
	"errors"
)

// Codec deserializes a data frame payload into a typed value.
//
// Truncated must report whether err was caused by the input ending in the
// middle of a value. Those errors are retried once more bytes arrive, every
// other error marks the frame as malformed.
type Codec interface {
	Unmarshal(data []byte, v any) error
	Truncated(err error) bool
}

// JSONCodec is the default Codec, backed by encoding/json.
type JSONCodec struct{}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// unexpectedEnd is the message encoding/json uses for input that stops
// mid-value, including empty input.
const unexpectedEnd = "unexpected end of JSON input"

func (JSONCodec) Truncated(err error) bool {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return syntaxErr.Error() == unexpectedEnd
	}
	return false
}
