package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/f3rmion/kotoba/internal/kotoba"
	"github.com/f3rmion/kotoba/internal/paragraph"
)

var paragraphCmd = &cobra.Command{
	Use:   "paragraph [id]",
	Short: "Fill in paragraph readings from stdin",
	Long: `Start a paragraph quiz and read recognized speech or typed text from
stdin, one utterance per line. Each line fills the blanks whose readings
it matches.

Without an id, the available paragraphs are listed.

Examples:
  kotoba paragraph --level N5
  kotoba paragraph p1
  echo "きょう" | kotoba paragraph p1`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParagraph,
}

func init() {
	rootCmd.AddCommand(paragraphCmd)
	paragraphCmd.Flags().String("level", "", "JLPT level filter for the list (default from config)")
}

const blankPlaceholder = "＿＿"

func runParagraph(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	if len(args) == 0 {
		levelFlag, _ := cmd.Flags().GetString("level")
		if levelFlag == "" {
			levelFlag = settings.Quiz.Level
		}
		ps, err := st.ListParagraphs(ctx, kotoba.ParseLevel(levelFlag))
		if err != nil {
			return err
		}
		if len(ps) == 0 {
			fmt.Println("No paragraphs. Import some with 'kotoba import paragraphs'.")
		}
		for _, p := range ps {
			fmt.Printf("%-12s %-4s %s\n", p.ID, p.Level, p.Title)
		}
		return nil
	}

	service := paragraph.NewService(st, log)
	state, err := service.Start(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Println(state.Masked(blankPlaceholder))
	if state.Translation != "" {
		fmt.Println(state.Translation)
	}

	in := bufio.NewScanner(os.Stdin)
	for !state.IsComplete() {
		fmt.Print("> ")
		if !in.Scan() {
			break
		}
		var filled []string
		state, filled = service.Listen(state, in.Text())
		if len(filled) == 0 {
			fmt.Println("No match")
			continue
		}
		fmt.Printf("Filled: %s\n", strings.Join(filled, ", "))
		fmt.Println(state.Masked(blankPlaceholder))
	}

	fmt.Printf("\n%d/%d readings (%.0f%%)\n", state.FilledCount(), len(state.Blanks), state.Progress()*100)
	return nil
}
