package fileio

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/f3rmion/suiwen/internal/hanzi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>我学京剧。</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">京剧</w:t></w:r><w:r><w:t>很好看。</w:t></w:r></w:p>
    <w:p><w:r><w:t>老师</w:t><w:tab/><w:t>唱戏</w:t></w:r></w:p>
    <w:sectPr/>
  </w:body>
</w:document>`

func docx(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestReadTxt(t *testing.T) {
	text, err := Read("a.TXT", append([]byte{0xEF, 0xBB, 0xBF}, "我学京剧。"...))
	require.NoError(t, err)
	assert.Equal(t, "我学京剧。", text)
}

func TestReadDocx(t *testing.T) {
	data := docx(t, map[string]string{
		"[Content_Types].xml": `<Types/>`,
		"word/document.xml":   documentXML,
	})

	text, err := Read("lesson.docx", data)
	require.NoError(t, err)
	assert.Equal(t, "我学京剧。\n京剧很好看。\n老师\t唱戏", text)
}

func TestReadDocxTextBox(t *testing.T) {
	body := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>我学</w:t></w:r>` +
		`<w:r><w:pict><w:txbxContent><w:p><w:r><w:t>框</w:t></w:r></w:p></w:txbxContent></w:pict></w:r>` +
		`<w:r><w:t>京剧</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>唱戏</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	text, err := Read("box.docx", docx(t, map[string]string{"word/document.xml": body}))
	require.NoError(t, err)
	assert.Equal(t, "框\n我学京剧\n唱戏", text)
}

func TestReadDocxMalformed(t *testing.T) {
	_, err := Read("lesson.docx", []byte("not a zip"))
	assert.Error(t, err)

	_, err = Read("lesson.docx", docx(t, map[string]string{"word/other.xml": "<x/>"}))
	assert.Error(t, err)
}

func TestReadXlsx(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"我", "学"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"京剧"}))
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	text, err := Read("lesson.xlsx", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "我 学\n京剧", text)
}

func TestReadUnsupported(t *testing.T) {
	_, err := Read("lesson.pdf", []byte("%PDF"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Import(filepath.Join(t.TempDir(), "lesson.doc"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestImport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lesson.txt")
	require.NoError(t, os.WriteFile(path, []byte("我跟老师学唱戏。"), 0644))

	text, err := Import(path)
	require.NoError(t, err)
	assert.Equal(t, "我跟老师学唱戏。", text)

	_, err = Import(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a.txt"))
	assert.True(t, Supported("B.DOCX"))
	assert.True(t, Supported("c.xlsx"))
	assert.False(t, Supported("d.doc"))
	assert.False(t, Supported("noext"))
}

func TestExportTxt(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, FormatTxt, "", "我学京剧。\n京剧很好看。"))
	assert.Equal(t, "我学京剧。\n京剧很好看。", buf.String())
}

func TestExportDoc(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, FormatDoc, "随文识字_2026-03-01", "我学<京剧>\n好看"))

	out := buf.String()
	assert.Contains(t, out, "<title>随文识字_2026-03-01</title>")
	assert.Contains(t, out, "<p>我学&lt;京剧&gt;</p><p>好看</p>")
	assert.Contains(t, out, `<meta charset="utf-8">`)
}

func TestExportXlsx(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, FormatXlsx, "", "我学京剧。\n京剧很好看。"))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Sheet1"}, f.GetSheetList())
	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"我学京剧。", "京剧很好看。"}}, rows)
}

func TestExportUnsupported(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Export(&buf, FormatJSON, "", "x"), ErrUnsupportedFormat)
	assert.ErrorIs(t, Export(&buf, "pdf", "", "x"), ErrUnsupportedFormat)
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"txt":   FormatTxt,
		".XLSX": FormatXlsx,
		"docx":  FormatDoc,
		"doc":   FormatDoc,
		"json":  FormatJSON,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Equal(t, ".xlsx", FormatXlsx.Ext())
	assert.Equal(t, "application/msword", FormatDoc.ContentType())
}

func TestFileNames(t *testing.T) {
	now := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "随文识字_2026-03-01", DefaultFileName(now))
	assert.Equal(t, "识字学习数据_2026-03-01.json", DataFileName(now))
}

func TestSnapshotRoundTrip(t *testing.T) {
	snap := hanzi.Snapshot{
		Text:     "我学京剧。",
		Mastered: []string{"学"},
		Vocab: []hanzi.VocabItem{
			{Char: "京", Pinyin: "jīng", Meaning: "capital", AddedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		},
		History: []hanzi.PracticeRecord{
			{Char: "学", Answer: "xue", Correct: false, Mode: hanzi.ModeWrite, Timestamp: time.Date(2026, 3, 1, 9, 5, 0, 0, time.UTC)},
		},
		ExportDate: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, snap))
	assert.Contains(t, buf.String(), `"practice_history"`)
	assert.Contains(t, buf.String(), "我学京剧。")

	got, err := ReadSnapshot(&buf)
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	_, err = ReadSnapshot(bytes.NewReader([]byte("{")))
	assert.Error(t, err)
}
