package sse

import (
	"bytes"
)

var dataPrefix = []byte("data: ")

// Decoder incrementally extracts "data: <json>\n" frames from the bytes handed
// to Feed and unmarshals their payloads into T.
//
// Every Decode call resolves to exactly one of three outcomes:
//
//   - produced: ok is true and event holds the decoded value
//   - malformed: err is a *DecodeError and the offending frame was consumed
//   - need more data: ok is false and err is nil
//
// A need-more-data result that shrank Buffered means a non-data line was
// discarded. Callers should keep calling Decode until a call leaves the
// buffer untouched, then Feed more bytes.
//
// The buffer is only mutated once an outcome is known: a frame whose JSON is
// cut short is left in place, byte for byte, until the rest of it arrives.
//
// A Decoder is not safe for concurrent use.
type Decoder[T any] struct {
	buf   []byte
	codec Codec
}

// NewDecoder returns a Decoder using the encoding/json backed JSONCodec.
func NewDecoder[T any]() *Decoder[T] {
	return NewDecoderWithCodec[T](JSONCodec{})
}

// NewDecoderWithCodec returns a Decoder that unmarshals payloads with codec.
func NewDecoderWithCodec[T any](codec Codec) *Decoder[T] {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &Decoder[T]{codec: codec}
}

// Feed appends p to the tail of the buffer. p is copied.
func (d *Decoder[T]) Feed(p []byte) {
	d.buf = append(d.buf, p...)
}

// Buffered returns the number of bytes not yet consumed.
func (d *Decoder[T]) Buffered() int {
	return len(d.buf)
}

// Reset discards all buffered bytes.
func (d *Decoder[T]) Reset() {
	d.buf = d.buf[:0]
}

// Decode attempts to extract exactly one frame from the front of the buffer.
func (d *Decoder[T]) Decode() (event T, ok bool, err error) {
	return d.decode(false)
}

// Flush is Decode for a byte source that has been exhausted. Unterminated
// trailing content is resolved instead of waited on: a data frame is decoded
// or reported as malformed (ErrTruncatedFrame when its value never
// completed), anything else is discarded. Every call consumes bytes, so
// calling Flush until Buffered returns zero always terminates.
func (d *Decoder[T]) Flush() (event T, ok bool, err error) {
	return d.decode(true)
}

func (d *Decoder[T]) decode(final bool) (event T, ok bool, err error) {
	if len(d.buf) == 0 {
		return event, false, nil
	}

	if !bytes.HasPrefix(d.buf, dataPrefix) {
		i := bytes.IndexByte(d.buf, '\n')
		switch {
		case i >= 0:
			d.consume(i + 1)
		case final:
			d.consume(len(d.buf))
		}
		return event, false, nil
	}

	start := len(dataPrefix)
	end := start
	first := true

	// Each pass widens the candidate payload by one physical line. Newlines
	// are whitespace to JSON, so a value may legitimately span several.
	for {
		nl := bytes.IndexByte(d.buf[end:], '\n')
		terminated := nl >= 0
		if terminated {
			end += nl
		} else {
			end = len(d.buf)
		}

		next := end
		if terminated {
			next = end + 1
		}
		payload := d.buf[start:end]

		// "data: \n" carries nothing to decode and would otherwise look
		// truncated forever.
		if first && (terminated || final) && len(bytes.TrimSpace(payload)) == 0 {
			d.consume(next)
			return event, false, nil
		}
		first = false

		var v T
		perr := d.codec.Unmarshal(payload, &v)
		switch {
		case perr == nil:
			d.consume(next)
			return v, true, nil

		case !d.codec.Truncated(perr):
			// Malformed. An unterminated frame is held until its newline
			// arrives so the error is reported once, for the whole frame.
			if !terminated && !final {
				return event, false, nil
			}
			return event, false, d.fail(payload, next, perr)

		case !terminated:
			if final {
				return event, false, d.fail(payload, next, ErrTruncatedFrame)
			}
			return event, false, nil
		}

		// Truncated at a newline. A following data line means this frame
		// will never complete.
		if bytes.HasPrefix(d.buf[next:], dataPrefix) {
			return event, false, d.fail(payload, next, ErrTruncatedFrame)
		}
		end = next
	}
}

// consume drops the first n bytes, keeping the tail in the same backing
// array.
func (d *Decoder[T]) consume(n int) {
	m := copy(d.buf, d.buf[n:])
	d.buf = d.buf[:m]
}

func (d *Decoder[T]) fail(payload []byte, n int, err error) error {
	frame := bytes.Clone(payload)
	d.consume(n)
	return &DecodeError{Frame: frame, Err: err}
}
