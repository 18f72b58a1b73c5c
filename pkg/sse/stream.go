package sse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/papercomputeco/cloudctl/pkg/logger"
)

const defaultReadSize = 4 * 1024

type streamConfig struct {
	tee      io.Writer
	readSize int
	codec    Codec
	logger   *slog.Logger
}

// StreamOption configures a Stream.
type StreamOption func(*streamConfig)

// WithTee copies every raw byte read from the source to w, in order and
// before it is decoded.
func WithTee(w io.Writer) StreamOption {
	return func(c *streamConfig) {
		c.tee = w
	}
}

// WithReadSize sets the size of each read from the source.
func WithReadSize(n int) StreamOption {
	return func(c *streamConfig) {
		if n > 0 {
			c.readSize = n
		}
	}
}

// WithCodec replaces the default JSONCodec.
func WithCodec(codec Codec) StreamOption {
	return func(c *streamConfig) {
		c.codec = codec
	}
}

// WithLogger sets the logger used to report skipped and malformed frames.
func WithLogger(l *slog.Logger) StreamOption {
	return func(c *streamConfig) {
		c.logger = l
	}
}

// Stream pulls bytes from a source io.Reader, typically an HTTP response
// body, and decodes them into a sequence of T values.
//
// ┌──────────────────┐
// │ source io.Reader │
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐   ┌───────────────────┐
// │  Stream.Next()   │──▶│ tee io.Writer     │
// └──────────────────┘   └───────────────────┘
// │
// ▼
// ┌──────────────────┐
// │   Decoder[T]     │
// └──────────────────┘
//
// Bytes are only read when the caller asks for the next event, so a slow
// consumer throttles the source. A Stream is tied to one live connection and
// is not restartable.
type Stream[T any] struct {
	src    io.Reader
	dec    *Decoder[T]
	tee    io.Writer
	chunk  []byte
	logger *slog.Logger

	// eof is set once src has reported io.EOF.
	eof bool

	// err is the terminal error, returned by every call once set.
	err error
}

// NewStream returns a Stream decoding events of type T from src.
func NewStream[T any](src io.Reader, opts ...StreamOption) *Stream[T] {
	cfg := &streamConfig{
		readSize: defaultReadSize,
		codec:    JSONCodec{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.Nop()
	}

	return &Stream[T]{
		src:    src,
		dec:    NewDecoderWithCodec[T](cfg.codec),
		tee:    cfg.tee,
		chunk:  make([]byte, cfg.readSize),
		logger: cfg.logger,
	}
}

// Next blocks until the next event is decoded.
//
// A *DecodeError reports one malformed frame; the stream remains usable and
// Next may be called again. io.EOF marks the end of the stream. A
// *TransportError or a context error is terminal, and buffered bytes are
// discarded.
func (s *Stream[T]) Next(ctx context.Context) (T, error) {
	var zero T
	if s.err != nil {
		return zero, s.err
	}

	for {
		if err := ctx.Err(); err != nil {
			return zero, s.terminate(err)
		}

		if s.eof {
			if s.dec.Buffered() == 0 {
				s.err = io.EOF
				return zero, io.EOF
			}

			event, ok, err := s.dec.Flush()
			if ok {
				return event, nil
			}
			if err != nil {
				s.logger.Debug("malformed trailing frame", "error", err)
				return zero, err
			}
			continue
		}

		before := s.dec.Buffered()
		event, ok, err := s.dec.Decode()
		switch {
		case ok:
			return event, nil
		case err != nil:
			s.logger.Debug("malformed frame", "error", err)
			return zero, err
		case s.dec.Buffered() < before:
			s.logger.Debug("skipped non-data line", "bytes", before-s.dec.Buffered())
			continue
		}

		if err := s.fill(ctx); err != nil {
			return zero, s.terminate(err)
		}
	}
}

// All returns an iterator over the remaining events. Malformed frames are
// yielded as errors and iteration continues; iteration stops at the end of
// the stream or after yielding a terminal error.
func (s *Stream[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			event, err := s.Next(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(event, err) {
				return
			}
			if s.err != nil {
				return
			}
		}
	}
}

// Close closes the source if it is an io.Closer. Subsequent calls to Next
// return io.EOF.
func (s *Stream[T]) Close() error {
	s.dec.Reset()
	if s.err == nil {
		s.err = io.EOF
	}
	if closer, ok := s.src.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (s *Stream[T]) fill(ctx context.Context) error {
	n, err := s.src.Read(s.chunk)
	if n > 0 {
		if s.tee != nil {
			if _, werr := s.tee.Write(s.chunk[:n]); werr != nil {
				return &TransportError{Err: fmt.Errorf("writing tee: %w", werr)}
			}
		}
		s.dec.Feed(s.chunk[:n])
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		s.eof = true
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return &TransportError{Err: err}
	}
}

func (s *Stream[T]) terminate(err error) error {
	s.dec.Reset()
	s.err = err
	return err
}
