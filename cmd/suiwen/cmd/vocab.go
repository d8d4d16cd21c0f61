package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/f3rmion/suiwen/internal/anki"
	"github.com/f3rmion/suiwen/internal/dict"
	"github.com/f3rmion/suiwen/internal/fileio"
	"github.com/f3rmion/suiwen/internal/hanzi"
	"github.com/f3rmion/suiwen/internal/session"
	"github.com/spf13/cobra"
)

const defaultDeckName = "随文识字::生字本"

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Move the vocabulary notebook to and from Anki",
	Long: `Export notebook characters as an Anki deck, or collect the characters
of an Anki deck into a notebook.

The notebook is a learning data file, the same JSON the reader exports and
'suiwen --restore' reads.`,
}

var vocabExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write notebook characters to an Anki deck",
	Long: `Write one Basic card per character: the character on the front, pinyin
and meaning on the back. Characters come from --chars, from the notebook in
--data, or both.

Example:
  suiwen vocab export --chars 学京剧 --out 京剧.apkg
  suiwen vocab export --data 识字学习数据_2024-03-01.json`,
	RunE: runVocabExport,
}

var vocabImportCmd = &cobra.Command{
	Use:   "import <deck.apkg>",
	Short: "Add the characters of an Anki deck to a notebook",
	Long: `Read an Anki package and add every dictionary character of one of its
fields to the notebook in --data. The field holding Chinese text is detected
when --field is not given. The notebook file is created when missing.

Example:
  suiwen vocab import HSK1.apkg --data notebook.json`,
	Args: cobra.ExactArgs(1),
	RunE: runVocabImport,
}

func init() {
	rootCmd.AddCommand(vocabCmd)
	vocabCmd.AddCommand(vocabExportCmd)
	vocabCmd.AddCommand(vocabImportCmd)

	vocabExportCmd.Flags().String("chars", "", "characters to export")
	vocabExportCmd.Flags().String("data", "", "learning data file whose notebook to export")
	vocabExportCmd.Flags().StringP("out", "o", "", "deck file (default 生字本_YYYY-MM-DD.apkg)")
	vocabExportCmd.Flags().String("deck", defaultDeckName, "deck name")

	vocabImportCmd.Flags().String("field", "", "note field with the characters (detected when empty)")
	vocabImportCmd.Flags().String("data", "", "learning data file to update (default 识字学习数据_YYYY-MM-DD.json)")
}

// loadNotebook restores a session from the learning data at path and returns
// it with the saved practice history. A missing file gives an empty session.
func loadNotebook(d *dict.Dictionary, path string) (*session.Session, []hanzi.PracticeRecord, error) {
	sess := session.New(d, session.WithText(""))
	if path == "" {
		return sess, nil, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return sess, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("opening learning data: %w", err)
	}
	defer f.Close()

	snap, err := fileio.ReadSnapshot(f)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	sess.Restore(snap)
	return sess, snap.History, nil
}

func runVocabExport(cmd *cobra.Command, args []string) error {
	chars, _ := cmd.Flags().GetString("chars")
	data, _ := cmd.Flags().GetString("data")
	out, _ := cmd.Flags().GetString("out")
	deck, _ := cmd.Flags().GetString("deck")

	if chars == "" && data == "" {
		return fmt.Errorf("nothing to export: give --chars or --data")
	}

	_, d, err := setup("", "")
	if err != nil {
		return err
	}

	sess, _, err := loadNotebook(d, data)
	if err != nil {
		return err
	}

	var skipped []string
	for _, r := range chars {
		c := string(r)
		if strings.TrimSpace(c) == "" || sess.InVocab(c) {
			continue
		}
		if !sess.AddToVocab(c) {
			skipped = append(skipped, c)
		}
	}

	items := sess.Vocab()
	if len(items) == 0 {
		return fmt.Errorf("no dictionary characters to export")
	}

	if out == "" {
		out = "生字本_" + time.Now().Format("2006-01-02") + ".apkg"
	}
	if err := anki.WriteVocabDeck(out, deck, items); err != nil {
		return fmt.Errorf("writing deck: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Wrote %s: %d cards in deck %q\n", out, len(items), deck)
	if len(skipped) > 0 {
		fmt.Fprintf(w, "Skipped (not in dictionary): %s\n", strings.Join(skipped, " "))
	}
	return nil
}

func runVocabImport(cmd *cobra.Command, args []string) error {
	field, _ := cmd.Flags().GetString("field")
	data, _ := cmd.Flags().GetString("data")

	_, d, err := setup("", "")
	if err != nil {
		return err
	}

	pkg, err := anki.OpenPackage(args[0])
	if err != nil {
		return fmt.Errorf("opening deck: %w", err)
	}
	defer pkg.Close()

	w := cmd.OutOrStdout()
	fmt.Fprint(w, pkg.Summary())

	if field == "" {
		field = pkg.DetectChineseField()
		if field == "" {
			return fmt.Errorf("no field with Chinese text in %s: use --field", filepath.Base(args[0]))
		}
		fmt.Fprintf(w, "  Field: %s (detected)\n", field)
	}

	if data == "" {
		data = fileio.DataFileName(time.Now())
	}
	sess, history, err := loadNotebook(d, data)
	if err != nil {
		return err
	}

	added, unknown := 0, 0
	for _, c := range pkg.Hanzi(field) {
		switch {
		case sess.InVocab(c):
		case sess.AddToVocab(c):
			added++
		default:
			unknown++
		}
	}

	if err := writeFile(data, func(f io.Writer) error {
		return fileio.WriteSnapshot(f, sess.Snapshot(history))
	}); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nAdded %d characters to %s (%d in notebook, %d not in dictionary)\n",
		added, data, len(sess.Vocab()), unknown)
	return nil
}
