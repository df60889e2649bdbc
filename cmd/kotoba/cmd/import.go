package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/f3rmion/kotoba/internal/anki"
	"github.com/f3rmion/kotoba/internal/catalog"
	"github.com/f3rmion/kotoba/internal/kotoba"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import study items and paragraphs",
	Long:  `Commands for loading kanji, words and reading paragraphs into the study database.`,
}

var importItemsCmd = &cobra.Command{
	Use:   "items <file.jsonl>",
	Short: "Import kanji and words from JSON Lines",
	Long: `Import study items from a JSON Lines file, one item per line:

  {"text": "学生", "readings": ["がくせい"], "meaning": "student", "level": "N5"}
  {"text": "学生[がくせい]", "meaning": "student", "kind": "word"}

Annotated text supplies the readings. Items already in the database keep
their learning weight.

Example:
  kotoba import items n5.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runImportItems,
}

var importParagraphsCmd = &cobra.Command{
	Use:   "paragraphs <file.jsonl>",
	Short: "Import reading paragraphs from JSON Lines",
	Long: `Import paragraphs from a JSON Lines file, one paragraph per line:

  {"id": "p1", "title": "天気", "text": "今日[きょう]は雨[あめ]です。", "translation": "It rains today.", "level": "N5"}

Every [reading] in the text becomes a blank to fill in.

Example:
  kotoba import paragraphs reading.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runImportParagraphs,
}

var importAnkiCmd = &cobra.Command{
	Use:   "anki <file.apkg>",
	Short: "Import study items from an Anki deck",
	Long: `Read an Anki .apkg file and import its notes as study items.

Field names default to the anki section of config.yaml. Use --inspect to
list the note types and their fields before importing.

Examples:
  kotoba import anki core2k.apkg --inspect
  kotoba import anki core2k.apkg --expression Vocab --reading Kana --meaning English --level N4`,
	Args: cobra.ExactArgs(1),
	RunE: runImportAnki,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.AddCommand(importItemsCmd)
	importCmd.AddCommand(importParagraphsCmd)
	importCmd.AddCommand(importAnkiCmd)

	importAnkiCmd.Flags().Bool("inspect", false, "show note types and sample notes without importing")
	importAnkiCmd.Flags().String("expression", "", "field holding the kanji or word")
	importAnkiCmd.Flags().String("reading", "", "field holding the kana reading")
	importAnkiCmd.Flags().String("meaning", "", "field holding the meaning")
	importAnkiCmd.Flags().String("kind", "word", "item kind (kanji or word)")
	importAnkiCmd.Flags().String("level", "N5", "JLPT level for imported items")
}

func runImportItems(cmd *cobra.Command, args []string) error {
	items, stats, err := catalog.LoadItems(args[0])
	if err != nil {
		return err
	}
	reportSkipped(stats)
	return saveItems(cmd.Context(), items)
}

func runImportParagraphs(cmd *cobra.Command, args []string) error {
	paragraphs, stats, err := catalog.LoadParagraphs(args[0])
	if err != nil {
		return err
	}
	reportSkipped(stats)

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	for _, p := range paragraphs {
		if err := st.UpsertParagraph(ctx, p); err != nil {
			return err
		}
	}
	fmt.Printf("Imported %d paragraphs\n", len(paragraphs))
	return nil
}

func runImportAnki(cmd *cobra.Command, args []string) error {
	deck, err := anki.Open(args[0])
	if err != nil {
		return err
	}

	if inspect, _ := cmd.Flags().GetBool("inspect"); inspect {
		printDeck(deck)
		return nil
	}

	mapping := anki.Mapping{
		Expression: settings.Anki.Expression,
		Reading:    settings.Anki.Reading,
		Meaning:    settings.Anki.Meaning,
	}
	if v, _ := cmd.Flags().GetString("expression"); v != "" {
		mapping.Expression = v
	}
	if v, _ := cmd.Flags().GetString("reading"); v != "" {
		mapping.Reading = v
	}
	if v, _ := cmd.Flags().GetString("meaning"); v != "" {
		mapping.Meaning = v
	}

	kindFlag, _ := cmd.Flags().GetString("kind")
	kind := kotoba.ItemKind(strings.ToLower(kindFlag))
	if kind != kotoba.KindKanji && kind != kotoba.KindWord {
		return fmt.Errorf("unknown kind %q (want kanji or word)", kindFlag)
	}
	levelFlag, _ := cmd.Flags().GetString("level")
	level := kotoba.ParseLevel(levelFlag)
	if level == kotoba.LevelAll {
		return fmt.Errorf("level must be one of N5-N1, got %q", levelFlag)
	}

	items := deck.StudyItems(mapping, kind, level)
	if skipped := len(deck.Notes) - len(items); skipped > 0 {
		fmt.Fprintf(os.Stderr, "Warning: skipped %d notes without Japanese in field %q\n", skipped, mapping.Expression)
	}
	return saveItems(cmd.Context(), items)
}

func saveItems(ctx context.Context, items []kotoba.StudyItem) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := st.UpsertItems(ctx, items)
	if err != nil {
		return err
	}
	total, err := st.CountItems(ctx, kotoba.LevelAll)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d items (%d in catalog)\n", n, total)
	return nil
}

func reportSkipped(stats catalog.Stats) {
	if stats.Skipped > 0 {
		fmt.Fprintf(os.Stderr, "Warning: skipped %d of %d records\n", stats.Skipped, stats.Read+stats.Skipped)
	}
	log.WithFields(logrus.Fields{"read": stats.Read, "skipped": stats.Skipped}).Info("catalog parsed")
}

// printDeck lists the note types of deck and a few sample notes.
func printDeck(deck *anki.Deck) {
	fmt.Printf("Deck: %s\n", deck.Path)
	fmt.Printf("Notes: %d\n\n", len(deck.Notes))

	ids := make([]int64, 0, len(deck.Models))
	for id := range deck.Models {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	fmt.Println("Note types:")
	for _, id := range ids {
		m := deck.Models[id]
		names := make([]string, len(m.Fields))
		for i, f := range m.Fields {
			names[i] = f.Name
		}
		fmt.Printf("  %s: %s\n", m.Name, strings.Join(names, ", "))
	}

	fmt.Println("\nSample notes:")
	for _, n := range deck.Notes[:min(3, len(deck.Notes))] {
		fmt.Printf("  [%s]\n", n.Model)
		keys := make([]string, 0, len(n.Fields))
		for k := range n.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("    %s: %s\n", k, truncate(anki.CleanField(n.Fields[k]), 60))
		}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
