// Package speech prepares annotated text for a speech synthesizer and hands it off.
package speech

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/f3rmion/kotoba/internal/japanese"
)

// ErrNothingToSpeak means the text had no speakable characters.
var ErrNothingToSpeak = errors.New("nothing to speak")

// Prepare strips annotations and unspeakable characters from text.
func Prepare(text string) (string, error) {
	s := japanese.ExtractSpeakable(text)
	if s == "" {
		return "", ErrNothingToSpeak
	}
	return s, nil
}

// Sink receives speakable text.
type Sink interface {
	Speak(ctx context.Context, text string) error
}

// Say prepares text and sends it to sink.
func Say(ctx context.Context, sink Sink, text string) (string, error) {
	s, err := Prepare(text)
	if err != nil {
		return "", err
	}
	if err := sink.Speak(ctx, s); err != nil {
		return "", fmt.Errorf("speaking: %w", err)
	}
	return s, nil
}

// WriterSink writes each text on its own line, e.g. to a synthesizer's stdin.
type WriterSink struct {
	W io.Writer
}

// Speak writes text followed by a newline.
func (s WriterSink) Speak(_ context.Context, text string) error {
	_, err := fmt.Fprintln(s.W, text)
	return err
}
