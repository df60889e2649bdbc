// Package selection draws multiple-choice quizzes from a study catalog, either
// uniformly at random or weighted toward items the learner keeps missing.
package selection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/f3rmion/kotoba/internal/kotoba"
)

// OptionCount is the number of choices in every quiz.
const OptionCount = 4

// ErrInsufficientData means no quiz could be built: no correct item, or fewer than
// OptionCount-1 distinct distractors even after topping up from the whole catalog.
var ErrInsufficientData = errors.New("not enough study items for a quiz")

// Provider supplies study items and persists learning weights.
type Provider interface {
	// FetchAll returns every item at level (LevelAll means no filter).
	FetchAll(ctx context.Context, level kotoba.Level) ([]kotoba.StudyItem, error)
	// FetchRandom returns one random item at level, or nil when there is none.
	FetchRandom(ctx context.Context, level kotoba.Level) (*kotoba.StudyItem, error)
	// FetchForLearningMode returns priority items sorted by descending weight and a
	// small distractor pool that excludes them.
	FetchForLearningMode(ctx context.Context, level kotoba.Level) (priority, pool []kotoba.StudyItem, err error)
	// ReportAnswer records an answer so the provider can compute the item's new weight.
	ReportAnswer(ctx context.Context, id int64, correct bool, previousWeight float64) error
}

// Quiz is one multiple-choice question. Options[CorrectIndex] == CorrectAnswer.
type Quiz struct {
	Prompt        string
	CorrectAnswer string
	Options       []string
	CorrectIndex  int
	Item          kotoba.StudyItem

	// Weighted is set when Item came from a learning cursor; only those quizzes
	// report answers back to the provider.
	Weighted bool
}

// Engine builds quizzes. It holds no cursor; callers own their Cursor values.
type Engine struct {
	provider Provider
	quizType QuizType
	rng      *rand.Rand
	log      logrus.FieldLogger
}

// NewEngine creates an engine. A nil rng is seeded from the clock and a nil
// logger discards output.
func NewEngine(provider Provider, quizType QuizType, rng *rand.Rand, log logrus.FieldLogger) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Engine{provider: provider, quizType: quizType, rng: rng, log: log}
}

// QuizType returns the engine's current quiz type.
func (e *Engine) QuizType() QuizType {
	return e.quizType
}

// SetQuizType changes which fields later quizzes ask about.
func (e *Engine) SetQuizType(q QuizType) {
	e.quizType = q
}

// RandomQuiz draws a uniformly random item at level and three distractors.
func (e *Engine) RandomQuiz(ctx context.Context, level kotoba.Level) (Quiz, error) {
	item, err := e.provider.FetchRandom(ctx, level)
	if err != nil {
		return Quiz{}, fmt.Errorf("%w: fetching random item: %w", ErrInsufficientData, err)
	}
	if item == nil {
		return Quiz{}, fmt.Errorf("no items at level %s: %w", level, ErrInsufficientData)
	}

	candidates, err := e.provider.FetchAll(ctx, level)
	if err != nil {
		return Quiz{}, fmt.Errorf("%w: fetching items: %w", ErrInsufficientData, err)
	}
	return e.build(ctx, *item, candidates, level != kotoba.LevelAll)
}

// NextQuiz draws the next learning-mode quiz from cursor. The cursor is reset when
// level changes and reloaded from the provider when empty or exhausted. If there
// are no priority items the draw falls back to RandomQuiz and the cursor stays put.
// Priority items that fail to build are skipped; when every remaining one fails the
// last error is returned and the next call reloads.
func (e *Engine) NextQuiz(ctx context.Context, cursor *Cursor, level kotoba.Level) (Quiz, error) {
	if cursor.Level != level {
		cursor.Reset()
		cursor.Level = level
	}

	if cursor.Exhausted() {
		priority, pool, err := e.provider.FetchForLearningMode(ctx, level)
		if err != nil {
			return Quiz{}, fmt.Errorf("%w: loading learning queue: %w", ErrInsufficientData, err)
		}
		cursor.load(priority, pool)
		e.log.WithFields(logrus.Fields{
			"level":    level,
			"priority": len(priority),
			"pool":     len(pool),
		}).Debug("learning queue loaded")
	}

	if len(cursor.Priority) == 0 {
		e.log.WithField("level", level).Debug("no priority items, drawing at random")
		return e.RandomQuiz(ctx, level)
	}

	// Items that cannot be quizzed in the current direction (no meaning, no
	// reading) are stepped over so they never block the queue.
	var lastErr error
	for !cursor.Exhausted() {
		item := cursor.Priority[cursor.Position]
		cursor.Position++
		q, err := e.build(ctx, item, cursor.Pool, true)
		if err != nil {
			e.log.WithError(err).WithField("item", item.ID).Debug("skipping item")
			lastErr = err
			continue
		}
		q.Weighted = true
		return q, nil
	}
	return Quiz{}, lastErr
}

// CheckAnswer reports whether selected is the correct option. In learning mode,
// answers to weighted quizzes are reported to the provider; a failed report is
// logged and does not change the result.
func (e *Engine) CheckAnswer(ctx context.Context, q Quiz, selected int, learning bool) bool {
	correct := selected == q.CorrectIndex
	if !learning || !q.Weighted {
		return correct
	}
	if err := e.provider.ReportAnswer(ctx, q.Item.ID, correct, q.Item.LearningWeight); err != nil {
		e.log.WithError(err).WithField("item", q.Item.ID).Warn("reporting answer failed")
	}
	return correct
}

// build assembles a quiz around item. Distractors are drawn from candidates first;
// when topUp is set and candidates run short, the unfiltered catalog fills the rest.
func (e *Engine) build(ctx context.Context, item kotoba.StudyItem, candidates []kotoba.StudyItem, topUp bool) (Quiz, error) {
	answer := e.quizType.AnswerOf(item)
	if answer == "" {
		return Quiz{}, fmt.Errorf("item %d has no %s answer: %w", item.ID, e.quizType.Name, ErrInsufficientData)
	}

	used := map[string]bool{answer: true}
	picked := map[int64]bool{item.ID: true}
	distractors := e.pickDistractors(candidates, used, picked, OptionCount-1)

	if len(distractors) < OptionCount-1 && topUp {
		all, err := e.provider.FetchAll(ctx, kotoba.LevelAll)
		if err != nil {
			return Quiz{}, fmt.Errorf("%w: fetching catalog: %w", ErrInsufficientData, err)
		}
		distractors = append(distractors, e.pickDistractors(all, used, picked, OptionCount-1-len(distractors))...)
	}
	if len(distractors) < OptionCount-1 {
		return Quiz{}, fmt.Errorf("only %d distractors for item %d: %w", len(distractors), item.ID, ErrInsufficientData)
	}

	options := append([]string{answer}, distractors...)
	e.rng.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	return Quiz{
		Prompt:        e.quizType.PromptOf(item),
		CorrectAnswer: answer,
		Options:       options,
		CorrectIndex:  lo.IndexOf(options, answer),
		Item:          item,
	}, nil
}

// pickDistractors returns up to n random answers from candidates whose ids and
// answers are not already used, marking what it takes.
func (e *Engine) pickDistractors(candidates []kotoba.StudyItem, used map[string]bool, picked map[int64]bool, n int) []string {
	pool := lo.Filter(candidates, func(c kotoba.StudyItem, _ int) bool { return !picked[c.ID] })
	e.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	var out []string
	for _, c := range pool {
		if len(out) == n {
			break
		}
		answer := e.quizType.AnswerOf(c)
		if answer == "" || used[answer] {
			continue
		}
		used[answer] = true
		picked[c.ID] = true
		out = append(out, answer)
	}
	return out
}
