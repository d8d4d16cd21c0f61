package fileio

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/f3rmion/suiwen/internal/hanzi"
	"github.com/xuri/excelize/v2"
)

// Format is an export format.
type Format string

const (
	FormatTxt  Format = "txt"
	FormatDoc  Format = "doc"  // HTML wrapper that word processors open
	FormatXlsx Format = "xlsx" // One sheet, one row of text lines
	FormatJSON Format = "json" // Learning data
)

// ParseFormat accepts a format name, with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(s), ".")); f {
	case FormatTxt, FormatDoc, FormatXlsx, FormatJSON:
		return f, nil
	case "docx":
		return FormatDoc, nil
	}
	return "", fmt.Errorf("export format %q: %w", s, ErrUnsupportedFormat)
}

// Ext returns the file extension of f including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatTxt:
		return "text/plain; charset=utf-8"
	case FormatDoc:
		return "application/msword"
	case FormatXlsx:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatJSON:
		return "application/json; charset=utf-8"
	}
	return "application/octet-stream"
}

// DefaultFileName returns the suggested base name for a saved text.
func DefaultFileName(now time.Time) string {
	return "随文识字_" + now.Format("2006-01-02")
}

// DataFileName returns the suggested name of a learning data export.
func DataFileName(now time.Time) string {
	return "识字学习数据_" + now.Format("2006-01-02") + FormatJSON.Ext()
}

// Export writes text to w in the given format. title names the document in
// the doc format. Use WriteSnapshot for FormatJSON.
func Export(w io.Writer, format Format, title, text string) error {
	switch format {
	case FormatTxt:
		_, err := io.WriteString(w, text)
		return err
	case FormatDoc:
		return writeDoc(w, title, text)
	case FormatXlsx:
		return writeXlsx(w, text)
	}
	return fmt.Errorf("exporting text as %q: %w", format, ErrUnsupportedFormat)
}

func writeDoc(w io.Writer, title, text string) error {
	var b strings.Builder
	b.WriteString("<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title>\n</head>\n<body>\n")
	b.WriteString(`<div style="font-family: Arial, sans-serif; font-size: 12pt; line-height: 1.5;">`)
	for _, line := range strings.Split(text, "\n") {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(line))
		b.WriteString("</p>")
	}
	b.WriteString("</div>\n</body>\n</html>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// writeXlsx puts every line of text in its own cell of the first row.
func writeXlsx(w io.Writer, text string) error {
	f := excelize.NewFile()
	defer f.Close()

	lines := strings.Split(text, "\n")
	row := make([]interface{}, len(lines))
	for i, line := range lines {
		row[i] = line
	}
	if err := f.SetSheetRow("Sheet1", "A1", &row); err != nil {
		return fmt.Errorf("writing row: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing xlsx: %w", err)
	}
	return nil
}

// WriteSnapshot writes learning data as indented JSON.
func WriteSnapshot(w io.Writer, snap hanzi.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encoding learning data: %w", err)
	}
	return nil
}

// ReadSnapshot reads learning data written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (hanzi.Snapshot, error) {
	var snap hanzi.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return hanzi.Snapshot{}, fmt.Errorf("decoding learning data: %w", err)
	}
	return snap, nil
}
