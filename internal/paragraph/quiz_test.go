package paragraph

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/f3rmion/kotoba/internal/furigana"
)

func TestGenerate_BlankPerReading(t *testing.T) {
	text := "今日[きょう]は晴れ[はれ]です。[ん]"
	s := Generate("p1", "It is sunny today.", text)

	if s.Original != text || s.Translation != "It is sunny today." || s.ParagraphID != "p1" {
		t.Fatalf("metadata not preserved: %+v", s)
	}
	want := []string{"きょう", "はれ", "ん"}
	if len(s.Blanks) != len(want) {
		t.Fatalf("expected %d blanks, got %d", len(want), len(s.Blanks))
	}
	for i, b := range s.Blanks {
		if b.Index != i || b.Answer != want[i] {
			t.Fatalf("blank %d = %+v", i, b)
		}
		if got := text[b.Start:b.End]; got != "["+want[i]+"]" {
			t.Fatalf("blank %d range covers %q", i, got)
		}
	}
	if s.FilledCount() != 0 || s.Progress() != 0 || s.IsComplete() {
		t.Fatalf("fresh quiz must be empty")
	}
}

func TestGenerate_NoBlanks(t *testing.T) {
	s := Generate("p", "", "ただのテキスト")
	if len(s.Blanks) != 0 {
		t.Fatalf("expected no blanks")
	}
	if s.Progress() != 0 {
		t.Fatalf("progress must be 0 without blanks")
	}
	if !s.IsComplete() {
		t.Fatalf("a quiz without blanks is trivially complete")
	}
}

func TestFill_LiteralTiersLeaveShortInnerReadingUnfilled(t *testing.T) {
	s := Generate("p", "", "今日[きょう]は晴れ[はれ]です")

	// きょう matches loosely (3+ chars). はれ is two characters followed by kana,
	// which none of the literal tiers accept, so it needs its own utterance.
	s, filled := s.Fill("きょうははれです")
	if !reflect.DeepEqual(filled, []string{"きょう"}) {
		t.Fatalf("first utterance filled %v", filled)
	}
	if s.Progress() != 0.5 {
		t.Fatalf("progress = %v", s.Progress())
	}

	s, filled = s.Fill("はれです")
	if filled != nil {
		t.Fatalf("two-character answer followed by kana should not fill, got %v", filled)
	}

	s, filled = s.Fill("はれ")
	if !reflect.DeepEqual(filled, []string{"はれ"}) {
		t.Fatalf("second utterance filled %v", filled)
	}
	if !s.IsComplete() {
		t.Fatalf("expected completion")
	}
}

func TestFill_OneUtteranceFillsSeveralBlanks(t *testing.T) {
	s := Generate("p", "", "木[き]の下で今日[きょう]")
	s, filled := s.Fill("きょうのき")
	if !reflect.DeepEqual(filled, []string{"き", "きょう"}) {
		t.Fatalf("filled %v", filled)
	}
	if !s.IsComplete() {
		t.Fatalf("expected completion")
	}
}

func TestGenerate_BlankEndsAtFirstCloseBracket(t *testing.T) {
	s := Generate("p", "", "[食[た]べる]")
	if len(s.Blanks) != 1 || s.Blanks[0].Answer != "食[た" {
		t.Fatalf("unexpected blanks %+v", s.Blanks)
	}
}

func TestFill_DoesNotMutateReceiver(t *testing.T) {
	before := Generate("p", "", "雨[あめ]と風[かぜ]")
	after, filled := before.Fill("あめ")
	if len(filled) != 1 {
		t.Fatalf("filled %v", filled)
	}
	if before.FilledCount() != 0 {
		t.Fatalf("receiver was mutated")
	}
	if _, ok := after.Filled(0); !ok {
		t.Fatalf("blank 0 should be filled")
	}
	again, _ := after.Fill("かぜ")
	if after.FilledCount() != 1 || again.FilledCount() != 2 {
		t.Fatalf("snapshots leaked: %d / %d", after.FilledCount(), again.FilledCount())
	}
}

func TestFill_IgnoresEmptyUtterance(t *testing.T) {
	s := Generate("p", "", "雨[あめ]")
	next, filled := s.Fill("hello!")
	if filled != nil || next.FilledCount() != 0 {
		t.Fatalf("non-japanese utterance must not fill anything")
	}
}

func TestFill_MonotoneProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	s := Generate("p", "", "今日[きょう]は雨[あめ]、明日[あした]は晴れ[はれ]。木[き]の下[した]で")
	utterances := []string{"き", "あめ", "した", "はれ", "あしたはあめ", "きょう", "おはよう", "した、き"}

	prev := map[int]string{}
	for i := 0; i < 50; i++ {
		next, _ := s.Fill(utterances[rng.Intn(len(utterances))])
		if next.FilledCount() < s.FilledCount() {
			t.Fatalf("filled count decreased")
		}
		for idx, answer := range prev {
			if got, ok := next.Filled(idx); !ok || got != answer {
				t.Fatalf("blank %d changed from %q to %q", idx, answer, got)
			}
		}
		for _, b := range next.Blanks {
			if v, ok := next.Filled(b.Index); ok {
				prev[b.Index] = v
			}
		}
		s = next
	}
}

func TestMasked(t *testing.T) {
	s := Generate("p", "", "今日[きょう]は晴れ[はれ]です")
	s, _ = s.Fill("きょう")
	if got := s.Masked("＿"); got != "今日[きょう]は晴れ＿です" {
		t.Fatalf("Masked = %q", got)
	}
}

func TestMatch_Tiers(t *testing.T) {
	tests := []struct {
		name, heard, answer string
		want                Tier
	}{
		{"exact", "あめ", "あめ", ExactMatch},
		{"two chars followed by kana", "あめです", "あめ", NoMatch},
		{"two chars before a space", "あめ です", "あめ", BoundaryMatch},
		{"two chars after punctuation", "はい!あめ", "あめ", BoundaryMatch},
		{"two chars inside kana", "きょうははれです", "はれ", NoMatch},
		{"two chars at end", "きょうははれ", "はれ", NoMatch},
		{"single char anywhere", "やまのき", "き", SingleCharMatch},
		{"three chars anywhere", "きょうははれです", "きょう", LooseMatch},
		{"empty answer", "あめ", "", NoMatch},
		{"empty heard", "", "あめ", NoMatch},
		{"absent", "かぜ", "あめ", NoMatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Match(tt.heard, tt.answer); got != tt.want {
				t.Fatalf("Match(%q, %q) = %v, want %v", tt.heard, tt.answer, got, tt.want)
			}
		})
	}
}

func TestContainsAtBoundary(t *testing.T) {
	if !containsAtBoundary("あめ!かぜ", "あめ") {
		t.Fatalf("edge + punctuation should count as a boundary")
	}
	if !containsAtBoundary("かぜ あめ", "あめ") {
		t.Fatalf("space + edge should count as a boundary")
	}
	if containsAtBoundary("かあめ", "あめ") {
		t.Fatalf("kana before the match is not a boundary")
	}
	if !containsAtBoundary("かあめ あめ", "あめ") {
		t.Fatalf("a later occurrence at a boundary should count")
	}
}

type fakeParagraphs struct {
	mu    sync.Mutex
	texts map[string][2]string
	err   error
}

func (f *fakeParagraphs) FetchParagraph(ctx context.Context, id string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", "", f.err
	}
	t, ok := f.texts[id]
	if !ok {
		return "", "", ErrNotFound
	}
	return t[0], t[1], nil
}

func TestService_Start(t *testing.T) {
	provider := &fakeParagraphs{texts: map[string][2]string{
		"weather": {"今日[きょう]は晴れ[はれ]", "Sunny today"},
		"plain":   {"こんにちは", "Hello"},
	}}
	svc := NewService(provider, nil)
	ctx := context.Background()

	state, err := svc.Start(ctx, "weather")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(state.Blanks) != 2 || state.Translation != "Sunny today" {
		t.Fatalf("unexpected state %+v", state)
	}

	if _, err := svc.Start(ctx, "plain"); !errors.Is(err, ErrNoBlanks) {
		t.Fatalf("expected ErrNoBlanks, got %v", err)
	}

	_, err = svc.Start(ctx, "missing")
	if !errors.Is(err, ErrNoBlanks) || !errors.Is(err, ErrNotFound) {
		t.Fatalf("provider failure should wrap both sentinels, got %v", err)
	}

	state, filled := svc.Listen(state, "きょう")
	if len(filled) != 1 || state.FilledCount() != 1 {
		t.Fatalf("Listen filled %v", filled)
	}
	if !strings.Contains(state.Masked("__"), "[きょう]") {
		t.Fatalf("masked text should reveal filled answer")
	}
}

func TestSegments_HidesUnfilledReadings(t *testing.T) {
	s := Generate("p", "", "今日[きょう]は[ん]雨[あめ]")
	s, _ = s.Fill("あめ")

	hidden := func(answer string) string {
		return strings.Repeat("＿", len([]rune(answer)))
	}
	want := []furigana.Segment{
		{Text: "今日", Furigana: "＿＿＿", Annotated: true},
		{Text: "は"},
		{Text: "", Furigana: "＿", Annotated: true},
		{Text: "雨", Furigana: "あめ", Annotated: true},
	}
	if got := s.Segments(hidden); !reflect.DeepEqual(got, want) {
		t.Fatalf("Segments = %+v, want %+v", got, want)
	}
}
