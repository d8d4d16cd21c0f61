package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/suiwen/internal/annotate"
	"github.com/f3rmion/suiwen/internal/dict"
	"github.com/f3rmion/suiwen/internal/fileio"
	"github.com/f3rmion/suiwen/internal/hanzi"
	"github.com/spf13/cobra"
)

var markedStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#ffe66d")).
	Bold(true)

var annotateCmd = &cobra.Command{
	Use:   "annotate [text]",
	Short: "Mark the dictionary characters of a text",
	Long: `Annotate a text and print it with every dictionary character marked.

The text comes from the arguments, from --file (.txt, .docx or .xlsx), or
from stdin when neither is given.

Formats:
  ansi   highlighted for the terminal (default)
  html   spans with class "highlighted-char" and a data-char attribute
  json   the token list with the events of each marked character

Example:
  suiwen annotate 我学京剧
  suiwen annotate --file lesson.docx --format html`,
	RunE: runAnnotate,
}

func init() {
	rootCmd.AddCommand(annotateCmd)
	annotateCmd.Flags().StringP("file", "f", "", "read the text from a file")
	annotateCmd.Flags().String("format", "ansi", "output format: ansi, html or json")
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "ansi", "html", "json":
	default:
		return fmt.Errorf("unknown format %q: want ansi, html or json", format)
	}

	_, d, err := setup("", "")
	if err != nil {
		return err
	}

	file, _ := cmd.Flags().GetString("file")
	text, err := readInput(cmd.InOrStdin(), file, args)
	if err != nil {
		return err
	}

	return writeAnnotated(cmd.OutOrStdout(), annotate.Annotate(text, d), format, d)
}

// readInput returns the joined args, the contents of file, or stdin.
func readInput(stdin io.Reader, file string, args []string) (string, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case file != "":
		text, err := fileio.Import(file)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", file, err)
		}
		return text, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

func writeAnnotated(w io.Writer, tokens []annotate.Token, format string, d *dict.Dictionary) error {
	switch format {
	case "html":
		_, err := fmt.Fprintln(w, annotate.HTML(tokens))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(annotate.Events(tokens))
	}

	var b strings.Builder
	for _, t := range tokens {
		if t.Kind == annotate.Marked {
			b.WriteString(markedStyle.Render(t.Text))
		} else {
			b.WriteString(t.Text)
		}
	}
	fmt.Fprintln(w, b.String())

	glyphs := annotate.Glyphs(tokens)
	if len(glyphs) == 0 {
		_, err := fmt.Fprintln(w, "\n(no dictionary characters)")
		return err
	}
	fmt.Fprintf(w, "\n%d characters:", len(glyphs))
	byLevel := annotate.ByLevel(tokens, d)
	for _, level := range []hanzi.Level{hanzi.LevelBasic, hanzi.LevelIntermediate, hanzi.LevelAdvanced} {
		if chars := byLevel[level]; len(chars) > 0 {
			fmt.Fprintf(w, "\n  %s: %s", level.Label(), strings.Join(chars, " "))
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
