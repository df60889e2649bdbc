package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/f3rmion/kotoba/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize kotoba configuration",
	Long: `Initialize kotoba configuration in your config directory.

This writes config.yaml with every setting at its default value and
creates the study database. Edit config.yaml to change the quiz mode,
JLPT level, furigana layout or learning weights.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "overwrite existing configuration")
}

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	configDir, err := config.EnsureConfigDir(getConfigDir())
	if err != nil {
		return err
	}

	path := filepath.Join(configDir, config.FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists: %s\nUse --force to overwrite", path)
	}

	fmt.Printf("Initializing kotoba configuration in %s\n\n", configDir)

	if err := config.Save(path, config.Default()); err != nil {
		return err
	}
	fmt.Printf("  Created %s\n", config.FileName)

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	fmt.Printf("  Created %s\n", settings.Database.Path)

	fmt.Println()
	fmt.Println("Configuration initialized!")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Run 'kotoba import items <file.jsonl>' or 'kotoba import anki <deck.apkg>'")
	fmt.Println("  2. Run 'kotoba import paragraphs <file.jsonl>' for reading practice")
	fmt.Println("  3. Run 'kotoba' to start studying")

	return nil
}
