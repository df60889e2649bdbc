package paragraph

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

var (
	// ErrNoBlanks means the paragraph has no readings to quiz on, or could not be fetched.
	ErrNoBlanks = errors.New("paragraph has no blanks")
	// ErrNotFound is returned by providers for unknown paragraph ids.
	ErrNotFound = errors.New("paragraph not found")
)

// Provider supplies annotated paragraph text.
type Provider interface {
	FetchParagraph(ctx context.Context, id string) (annotated, translation string, err error)
}

// Service starts paragraph quizzes from a Provider.
type Service struct {
	provider Provider
	log      logrus.FieldLogger
}

// NewService creates a service. A nil logger discards output.
func NewService(provider Provider, log logrus.FieldLogger) *Service {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Service{provider: provider, log: log}
}

// Start fetches a paragraph and generates its quiz. Provider failures and
// paragraphs without readings both report ErrNoBlanks so callers can show a
// single empty state; the provider error stays in the chain.
func (s *Service) Start(ctx context.Context, id string) (State, error) {
	annotated, translation, err := s.provider.FetchParagraph(ctx, id)
	if err != nil {
		s.log.WithError(err).WithField("paragraph", id).Warn("fetching paragraph failed")
		return State{}, fmt.Errorf("%w: fetching paragraph %s: %w", ErrNoBlanks, id, err)
	}

	state := Generate(id, translation, annotated)
	if len(state.Blanks) == 0 {
		return State{}, fmt.Errorf("paragraph %s: %w", id, ErrNoBlanks)
	}

	s.log.WithFields(logrus.Fields{"paragraph": id, "blanks": len(state.Blanks)}).Debug("paragraph quiz started")
	return state, nil
}

// Listen applies one recognized utterance and logs what it filled.
func (s *Service) Listen(state State, recognized string) (State, []string) {
	next, filled := state.Fill(recognized)
	if len(filled) > 0 {
		s.log.WithFields(logrus.Fields{
			"paragraph": state.ParagraphID,
			"filled":    filled,
			"progress":  next.Progress(),
		}).Debug("blanks filled")
	}
	return next, filled
}
