package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/f3rmion/kotoba/internal/speech"
)

var speakCmd = &cobra.Command{
	Use:   "speak <text>",
	Short: "Prepare text for a speech synthesizer",
	Long: `Strip furigana annotations and non-Japanese characters from text and
hand the result to a speech synthesizer.

By default the text is written to stdout so it can be piped into a
synthesizer. With --clipboard it is copied to the system clipboard.

Examples:
  kotoba speak "雨[あめ]が降[ふ]る" | say -v Kyoko
  kotoba speak --clipboard "今日[きょう]は晴[は]れです"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSpeak,
}

func init() {
	rootCmd.AddCommand(speakCmd)
	speakCmd.Flags().Bool("clipboard", false, "copy to the clipboard instead of printing")
}

func runSpeak(cmd *cobra.Command, args []string) error {
	var sink speech.Sink = speech.WriterSink{W: os.Stdout}
	clip, _ := cmd.Flags().GetBool("clipboard")
	if clip {
		sink = speech.NewClipboardSink()
	}

	spoken, err := speech.Say(cmd.Context(), sink, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if clip {
		fmt.Fprintf(os.Stderr, "Copied: %s\n", spoken)
	}
	return nil
}
