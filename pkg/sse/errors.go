package sse

import (
	"errors"
	"fmt"

	"github.com/papercomputeco/cloudctl/pkg/utils"
)

// ErrTruncatedFrame is wrapped by a DecodeError when a data frame ends before
// its JSON value is complete and no more bytes can arrive for it.
var ErrTruncatedFrame = errors.New("truncated data frame")

// DecodeError reports a single malformed data frame. The frame has already
// been consumed from the buffer, so decoding can continue with the next one.
type DecodeError struct {
	// Frame is the raw payload after the "data: " prefix.
	Frame []byte

	// Err is the underlying codec error or ErrTruncatedFrame.
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding data frame %q: %v", utils.Truncate(string(e.Frame), 64), e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// TransportError reports a failure reading the underlying byte stream.
// It is terminal: a Stream that returned one produces no further events.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("reading event stream: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
