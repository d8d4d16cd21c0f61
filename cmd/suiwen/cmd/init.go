package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/f3rmion/suiwen/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize suiwen configuration",
	Long: `Write config.yaml with the default settings to your config directory.

Edit it to set:
  - dictionary.extra  (.jsonl or .yaml files merged over the built-in table)
  - reader            (starting text, file picker directory, CJK font)
  - speech            (TTS command, voice and rate)
  - stroke            (animation colors and speed)
  - server            (listen address, session TTL, CORS origins)

Every key can also be set from the environment, e.g. SUIWEN_SERVER_ADDR.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "overwrite existing configuration")
}

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	configDir := getConfigDir()
	path := filepath.Join(configDir, config.FileName)

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists: %s\nUse --force to overwrite", path)
	}

	if err := config.EnsureConfigDir(configDir); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	cfg := config.Default()
	cfg.Reader.FileDir, _ = os.UserHomeDir()
	if err := config.Save(path, cfg); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Created %s\n\n", path)
	fmt.Fprintln(w, "Next steps:")
	fmt.Fprintln(w, "  1. Set speech.command to a TTS program that speaks Mandarin (espeak-ng, say)")
	fmt.Fprintln(w, "  2. Run 'suiwen lookup 学' to check the dictionary")
	fmt.Fprintln(w, "  3. Run 'suiwen' to start reading")

	return nil
}
