package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/f3rmion/kotoba/internal/furigana"
	"github.com/f3rmion/kotoba/internal/glyph"
	"github.com/f3rmion/kotoba/internal/japanese"
	"github.com/f3rmion/kotoba/internal/layout"
)

var parseCmd = &cobra.Command{
	Use:   "parse <annotated text>",
	Short: "Show how annotated text is split and laid out",
	Long: `Parse text with kanji[reading] annotations into furigana segments,
then wrap and render it with readings above the kanji.

With --font-size the text is measured in pixels with a CJK font instead of
terminal cells, and --width is a pixel budget. Readings are measured at half
the main size.

Examples:
  kotoba parse "今日[きょう]は雨[あめ]が降[ふ]っています。"
  kotoba parse --width 12 --segments "私[わたし]は学生[がくせい]です"
  kotoba parse --font-size 24 --width 200 "私[わたし]は学生[がくせい]です"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().Int("width", 0, "line width in cells, or pixels with --font-size (default from config, else 40)")
	parseCmd.Flags().Bool("segments", false, "list the parsed segments")
	parseCmd.Flags().Bool("no-furigana", false, "hide readings")
	parseCmd.Flags().Float64("font-size", 0, "measure with a CJK font at this size in points")
	parseCmd.Flags().String("font", "", "font file for --font-size (default searches system fonts)")
}

func runParse(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	segments := furigana.Parse(text)

	if show, _ := cmd.Flags().GetBool("segments"); show {
		for i, s := range segments {
			if s.HasFurigana() {
				fmt.Printf("%3d  %s  [%s]\n", i, s.Text, s.Furigana)
			} else {
				fmt.Printf("%3d  %s\n", i, s.Text)
			}
		}
		fmt.Println()
	}

	width, _ := cmd.Flags().GetInt("width")
	if width <= 0 {
		width = settings.Layout.Width
	}
	if width <= 0 {
		width = 40
	}
	noFurigana, _ := cmd.Flags().GetBool("no-furigana")
	show := settings.Layout.ShowFurigana && !noFurigana
	opts := layout.Options{Padding: settings.Layout.Padding, ShowFurigana: show}

	fontSize, _ := cmd.Flags().GetFloat64("font-size")
	if fontSize > 0 {
		if err := printPixelLayout(cmd, segments, float64(width), fontSize, opts); err != nil {
			return err
		}
	} else {
		widthOf := layout.SegmentWidth(layout.TerminalMeasurer{}, opts)
		lines := layout.Wrap(segments, float64(width), widthOf)
		fmt.Println(layout.RenderRuby(lines, widthOf, show))
	}

	fmt.Println()
	fmt.Printf("Annotated: %s\n", furigana.Annotate(segments))
	fmt.Printf("Plain:     %s\n", furigana.PlainText(segments))
	fmt.Printf("Readings:  %s\n", strings.Join(furigana.Readings(segments), "、"))
	fmt.Printf("Reading:   %s\n", japanese.ReadingForm(text))
	fmt.Printf("Hiragana:  %s\n", japanese.KatakanaToHiragana(japanese.ReadingForm(text)))
	fmt.Printf("Speakable: %s\n", japanese.ExtractSpeakable(text))
	return nil
}

// printPixelLayout wraps segments with font metrics and prints each line with
// its width in pixels.
func printPixelLayout(cmd *cobra.Command, segments []furigana.Segment, width, size float64, opts layout.Options) error {
	paths := glyph.DefaultFontPaths
	if font, _ := cmd.Flags().GetString("font"); font != "" {
		paths = []string{font}
	}
	face, err := glyph.LoadFace(paths, size)
	if err != nil {
		return fmt.Errorf("loading font: %w", err)
	}

	for i, row := range pixelRows(face, segments, width, opts) {
		fmt.Printf("%3d  %6.1fpx  %s\n", i, row.width, row.text)
	}
	return nil
}

type pixelRow struct {
	width float64
	text  string
}

// pixelRows wraps segments under a pixel budget measured with face.
func pixelRows(face *glyph.Face, segments []furigana.Segment, width float64, opts layout.Options) []pixelRow {
	widthOf := layout.SegmentWidth(layout.NewFontMeasurer(face), opts)
	lines := layout.Wrap(segments, width, widthOf)
	rows := make([]pixelRow, len(lines))
	for i, w := range layout.LineWidths(lines, widthOf) {
		rows[i] = pixelRow{width: w, text: furigana.Annotate(lines[i])}
	}
	return rows
}
