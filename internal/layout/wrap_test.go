package layout

import (
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/f3rmion/kotoba/internal/furigana"
	"github.com/f3rmion/kotoba/internal/glyph"
	"golang.org/x/image/font/gofont/goregular"
)

func cells(s furigana.Segment) float64 {
	return SegmentWidth(TerminalMeasurer{}, Options{ShowFurigana: true})(s)
}

func TestSegmentWidth_UsesWiderOfTextAndReading(t *testing.T) {
	w := SegmentWidth(TerminalMeasurer{}, Options{Padding: 1, ShowFurigana: true})
	if got := w(furigana.Segment{Text: "私", Furigana: "わたし", Annotated: true}); got != 7 {
		t.Fatalf("width = %v, want 7 (6 reading cells + 1 padding)", got)
	}
	if got := w(furigana.Segment{Text: "学生", Furigana: "が", Annotated: true}); got != 5 {
		t.Fatalf("width = %v, want 5", got)
	}
	if got := w(furigana.Segment{Text: "a"}); got != 2 {
		t.Fatalf("width = %v, want 2", got)
	}
}

func TestSegmentWidth_HiddenFuriganaTakesNoRoom(t *testing.T) {
	w := SegmentWidth(TerminalMeasurer{}, Options{})
	if got := w(furigana.Segment{Text: "私", Furigana: "わたし", Annotated: true}); got != 2 {
		t.Fatalf("width = %v, want 2", got)
	}
}

func TestWrap_GreedyLines(t *testing.T) {
	segs := furigana.Parse("私[わたし]は学生[がくせい]です")
	// widths: 私=6 は=2 学生=8 で=2 す=2
	lines := Wrap(segs, 10, cells)
	want := [][]string{{"私", "は"}, {"学生", "で"}, {"す"}}
	if got := texts(lines); !reflect.DeepEqual(got, want) {
		t.Fatalf("lines = %v, want %v", got, want)
	}
}

func TestWrap_OversizedSegmentGetsOwnLine(t *testing.T) {
	segs := furigana.Parse("あ漢字[かんじかんじかんじ]い")
	lines := Wrap(segs, 4, cells)
	want := [][]string{{"あ"}, {"漢字"}, {"い"}}
	if got := texts(lines); !reflect.DeepEqual(got, want) {
		t.Fatalf("lines = %v, want %v", got, want)
	}
}

func TestWrap_ZeroWidthBudget(t *testing.T) {
	segs := furigana.Parse("あいう")
	lines := Wrap(segs, 0, cells)
	if len(lines) != 3 {
		t.Fatalf("expected one segment per line, got %v", texts(lines))
	}
}

func TestWrap_Empty(t *testing.T) {
	if lines := Wrap(nil, 10, cells); len(lines) != 0 {
		t.Fatalf("expected no lines, got %v", lines)
	}
}

func TestWrap_ProgressProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	alphabet := []string{"私[わたし]", "は", "学生[がくせい]", "a", "。", "日本語[にほんご]", "で"}
	for i := 0; i < 300; i++ {
		src := ""
		for n := rng.Intn(15); n > 0; n-- {
			src += alphabet[rng.Intn(len(alphabet))]
		}
		segs := furigana.Parse(src)
		budget := float64(rng.Intn(20))
		lines := Wrap(segs, budget, cells)

		var flat []furigana.Segment
		for _, line := range lines {
			if len(line) == 0 {
				t.Fatalf("empty line for %q", src)
			}
			flat = append(flat, line...)
		}
		if len(segs) == 0 && len(flat) == 0 {
			continue
		}
		if !reflect.DeepEqual(flat, segs) {
			t.Fatalf("segments reordered or lost for %q", src)
		}
		for j, w := range LineWidths(lines, cells) {
			if len(lines[j]) > 1 && w > budget {
				t.Fatalf("multi-segment line %d exceeds budget %v: %v", j, budget, w)
			}
		}
	}
}

func TestFontMeasurer_HalfSizeRuby(t *testing.T) {
	face, err := glyph.NewFace(goregular.TTF, 20)
	if err != nil {
		t.Fatalf("NewFace: %v", err)
	}
	m := NewFontMeasurer(face)
	text := m.TextWidth("abc")
	ruby := m.FuriganaWidth("abc")
	if ruby*2 != text {
		t.Fatalf("ruby width %v should be half of %v", ruby, text)
	}
}

func texts(lines [][]furigana.Segment) [][]string {
	out := make([][]string, len(lines))
	for i, line := range lines {
		for _, s := range line {
			out[i] = append(out[i], s.Text)
		}
	}
	return out
}

func TestRenderRuby(t *testing.T) {
	segs := furigana.Parse("私[わたし]は")

	shown := SegmentWidth(TerminalMeasurer{}, Options{ShowFurigana: true})
	got := RenderRuby(Wrap(segs, 80, shown), shown, true)
	if got != "わたし\n私    は" {
		t.Fatalf("RenderRuby = %q", got)
	}

	plain := SegmentWidth(TerminalMeasurer{}, Options{})
	got = RenderRuby(Wrap(segs, 80, plain), plain, false)
	if got != "私は" {
		t.Fatalf("RenderRuby without furigana = %q", got)
	}
}

func TestRenderRuby_OneRowPairPerLine(t *testing.T) {
	segs := furigana.Parse("私[わたし]は学生[がくせい]です")
	lines := Wrap(segs, 10, cells)
	out := RenderRuby(lines, cells, true)
	if rows := strings.Count(out, "\n") + 1; rows != 2*len(lines) {
		t.Fatalf("expected %d rows, got %d:\n%s", 2*len(lines), rows, out)
	}
}
