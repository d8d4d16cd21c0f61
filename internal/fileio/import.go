// Package fileio reads reading texts out of documents and writes them back.
package fileio

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for file types that cannot be imported or
// exported.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ImportExtensions lists the file types Import accepts.
var ImportExtensions = []string{".txt", ".docx", ".xlsx"}

// utf8BOM prefixes text files saved by some Windows editors.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Import reads the text of the file at path.
func Import(path string) (string, error) {
	if !Supported(path) {
		return "", fmt.Errorf("importing %s: %w", filepath.Base(path), ErrUnsupportedFormat)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return Read(filepath.Base(path), data)
}

// Supported reports whether the extension of name can be imported.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range ImportExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Read extracts the text of a document named name. The extension of name
// selects the format.
func Read(name string, data []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		text = string(bytes.TrimPrefix(data, utf8BOM))
	case ".docx":
		text, err = readDocx(data)
	case ".xlsx":
		text, err = readXlsx(data)
	default:
		return "", fmt.Errorf("importing %s: %w", name, ErrUnsupportedFormat)
	}
	if err != nil {
		return "", fmt.Errorf("importing %s: %w", name, err)
	}
	return text, nil
}

// readDocx returns the raw text of word/document.xml, one line per paragraph.
func readDocx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening docx: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("word/document.xml not found")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("opening document.xml: %w", err)
	}
	defer rc.Close()

	return paragraphText(rc)
}

// paragraphText walks WordprocessingML and collects the w:t runs of each w:p.
// A paragraph nested in another one, as in a text box, becomes its own line
// ahead of the enclosing paragraph.
func paragraphText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		lines  []string
		open   []*strings.Builder
		inText bool
	)
	current := func() *strings.Builder {
		if len(open) == 0 {
			return nil
		}
		return open[len(open)-1]
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			line := current()
			switch t.Name.Local {
			case "p":
				open = append(open, &strings.Builder{})
			case "t":
				inText = true
			case "tab":
				if line != nil {
					line.WriteByte('\t')
				}
			case "br", "cr":
				if line != nil {
					line.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if line := current(); line != nil {
					lines = append(lines, line.String())
					open = open[:len(open)-1]
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if line := current(); inText && line != nil {
				line.Write(t)
			}
		}
	}

	return strings.Join(lines, "\n"), nil
}

// readXlsx joins the cells of each row of the first sheet with a space and
// the rows with newlines.
func readXlsx(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("opening xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}

	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = strings.Join(row, " ")
	}
	return strings.Join(lines, "\n"), nil
}
