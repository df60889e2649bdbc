package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/f3rmion/kotoba/internal/kotoba"
	"github.com/f3rmion/kotoba/internal/selection"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Run multiple-choice quizzes on the command line",
	Long: `Ask multiple-choice questions and read answers (1-4) from stdin.

In learning mode items with the highest learning weight come first and
every answer updates the item's weight.

Examples:
  kotoba quiz --level N5 --count 5
  kotoba quiz --learning --type reading-text`,
	RunE: runQuiz,
}

func init() {
	rootCmd.AddCommand(quizCmd)
	quizCmd.Flags().String("level", "", "JLPT level N5-N1 or ALL (default from config)")
	quizCmd.Flags().String("type", "", "quiz type, e.g. text-meaning, meaning-text, text-reading (default from config)")
	quizCmd.Flags().Bool("learning", false, "weighted learning mode")
	quizCmd.Flags().Int("count", 10, "number of questions")
}

func runQuiz(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	typeName, _ := cmd.Flags().GetString("type")
	engine, err := newEngine(st, typeName)
	if err != nil {
		return err
	}

	levelFlag, _ := cmd.Flags().GetString("level")
	if levelFlag == "" {
		levelFlag = settings.Quiz.Level
	}
	level := kotoba.ParseLevel(levelFlag)

	learning, _ := cmd.Flags().GetBool("learning")
	if !cmd.Flags().Changed("learning") {
		learning = settings.Quiz.Mode == "learning"
	}
	count, _ := cmd.Flags().GetInt("count")

	ctx := cmd.Context()
	in := bufio.NewScanner(os.Stdin)
	var cursor selection.Cursor
	var asked, right int

	for asked < count {
		var q selection.Quiz
		if learning {
			q, err = engine.NextQuiz(ctx, &cursor, level)
		} else {
			q, err = engine.RandomQuiz(ctx, level)
		}
		if errors.Is(err, selection.ErrInsufficientData) {
			return fmt.Errorf("cannot quiz at level %s: %w\nImport items with 'kotoba import items'", level, err)
		}
		if err != nil {
			return err
		}

		fmt.Printf("\n%s\n", q.Prompt)
		for i, opt := range q.Options {
			fmt.Printf("  %d. %s\n", i+1, opt)
		}

		choice, ok := readChoice(in, len(q.Options))
		if !ok {
			break
		}
		asked++
		if engine.CheckAnswer(ctx, q, choice, learning) {
			right++
			fmt.Println("Correct!")
		} else {
			fmt.Printf("Wrong. Answer: %s\n", q.CorrectAnswer)
		}
	}

	if asked > 0 {
		fmt.Printf("\nScore: %d/%d\n", right, asked)
	}
	return nil
}

// readChoice prompts until it reads a number in 1..n. It returns false at end of input.
func readChoice(in *bufio.Scanner, n int) (int, bool) {
	for {
		fmt.Print("> ")
		if !in.Scan() {
			return 0, false
		}
		v, err := strconv.Atoi(strings.TrimSpace(in.Text()))
		if err == nil && v >= 1 && v <= n {
			return v - 1, true
		}
		fmt.Fprintf(os.Stderr, "Enter a number from 1 to %d\n", n)
	}
}
