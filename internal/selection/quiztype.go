package selection

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/f3rmion/kotoba/internal/kotoba"
)

// Field selects one side of a study item.
type Field int

const (
	FieldText Field = iota
	FieldReading
	FieldMeaning
)

// readingSeparator joins multiple readings of one item.
const readingSeparator = "、"

// fieldSeparator joins the fields of a multi-field prompt or answer.
const fieldSeparator = " / "

// Of returns the field's value for item.
func (f Field) Of(item kotoba.StudyItem) string {
	switch f {
	case FieldReading:
		return strings.Join(lo.Compact(item.Readings), readingSeparator)
	case FieldMeaning:
		return strings.TrimSpace(item.Meaning)
	default:
		return strings.TrimSpace(item.Text)
	}
}

// QuizType says which fields form the prompt and which form the answer.
type QuizType struct {
	Name   string
	Prompt []Field
	Answer []Field
}

// Built-in quiz types. Each forward type has an inverse with prompt and answer swapped.
var (
	TextToMeaning = QuizType{Name: "text-meaning", Prompt: []Field{FieldText}, Answer: []Field{FieldMeaning}}
	TextToReading = QuizType{Name: "text-reading", Prompt: []Field{FieldText}, Answer: []Field{FieldReading}}
	TextToFull    = QuizType{Name: "text-full", Prompt: []Field{FieldText}, Answer: []Field{FieldReading, FieldMeaning}}

	MeaningToText = TextToMeaning.Inverse()
	ReadingToText = TextToReading.Inverse()
	FullToText    = TextToFull.Inverse()
)

// QuizTypes lists the built-in quiz types.
var QuizTypes = []QuizType{TextToMeaning, MeaningToText, TextToReading, ReadingToText, TextToFull, FullToText}

// Inverse swaps prompt and answer.
func (q QuizType) Inverse() QuizType {
	from, to, ok := strings.Cut(q.Name, "-")
	name := q.Name + "-inverse"
	if ok {
		name = to + "-" + from
	}
	return QuizType{Name: name, Prompt: q.Answer, Answer: q.Prompt}
}

// PromptOf renders the prompt side of item.
func (q QuizType) PromptOf(item kotoba.StudyItem) string {
	return render(q.Prompt, item)
}

// AnswerOf renders the answer side of item.
func (q QuizType) AnswerOf(item kotoba.StudyItem) string {
	return render(q.Answer, item)
}

func render(fields []Field, item kotoba.StudyItem) string {
	parts := lo.Map(fields, func(f Field, _ int) string { return f.Of(item) })
	return strings.Join(lo.Compact(parts), fieldSeparator)
}

// ParseQuizType looks up a built-in quiz type by name.
func ParseQuizType(name string) (QuizType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	qt, ok := lo.Find(QuizTypes, func(q QuizType) bool { return q.Name == name })
	if !ok {
		names := lo.Map(QuizTypes, func(q QuizType, _ int) string { return q.Name })
		return QuizType{}, fmt.Errorf("unknown quiz type %q (want one of %s)", name, strings.Join(names, ", "))
	}
	return qt, nil
}
