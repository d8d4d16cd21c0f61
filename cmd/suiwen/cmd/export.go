package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/f3rmion/suiwen/internal/fileio"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Convert a text file to another format",
	Long: `Read a text (.txt, .docx or .xlsx) and save it as txt, doc or xlsx.

Without --out the file is named 随文识字_YYYY-MM-DD with the extension of the
format. Use --out - to write to stdout.

Example:
  suiwen export --in lesson.docx --format txt
  suiwen export --in lesson.txt --format xlsx --out lesson.xlsx`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("in", "", "text file to read (required)")
	exportCmd.Flags().String("format", "txt", "output format: txt, doc or xlsx")
	exportCmd.Flags().StringP("out", "o", "", "output file")
	exportCmd.MarkFlagRequired("in")
}

func runExport(cmd *cobra.Command, args []string) error {
	in, _ := cmd.Flags().GetString("in")
	name, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")

	format, err := fileio.ParseFormat(name)
	if err != nil {
		return err
	}
	if format == fileio.FormatJSON {
		return fmt.Errorf("json holds learning data; use the vocabulary notebook export instead")
	}

	text, err := fileio.Import(in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", in, err)
	}

	now := time.Now()
	title := fileio.DefaultFileName(now)
	if out == "" {
		out = title + format.Ext()
	}

	if out == "-" {
		return fileio.Export(cmd.OutOrStdout(), format, title, text)
	}
	if err := writeFile(out, func(w io.Writer) error {
		return fileio.Export(w, format, title, text)
	}); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d lines)\n", out, strings.Count(text, "\n")+1)
	return nil
}

// writeFile creates path and fills it with write.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
